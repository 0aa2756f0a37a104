package lox

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/xirelogy/go-lox/internal/bytecode"
	"github.com/xirelogy/go-lox/internal/compiler"
	"github.com/xirelogy/go-lox/internal/value"
	"github.com/xirelogy/go-lox/internal/vm"
)

// ErrBusy is returned when an Interpreter is entered while a previous call
// on it is still running.
var ErrBusy = errors.New("interpreter is busy; concurrent use not allowed")

// ErrInvalidImage wraps every failure to load a bytecode image.
var ErrInvalidImage = errors.New("invalid bytecode image")

// Value is the result of evaluating an expression: nil, a boolean or a number.
type Value = value.Value

// Result is the outcome of Interpret.
type Result int

const (
	ResultOK Result = iota
	ResultCompileError
	ResultRuntimeError
)

func (r Result) String() string {
	switch r {
	case ResultOK:
		return "ok"
	case ResultCompileError:
		return "compile error"
	case ResultRuntimeError:
		return "runtime error"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// Diagnostic is one reported compile error.
type Diagnostic struct {
	Line    int
	Where   string
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[line %d] Error%s: %s", d.Line, d.Where, d.Message)
}

// CompileError is returned by Eval when the source does not compile.
type CompileError struct {
	Diagnostics []Diagnostic
	Cause       error
}

func (e *CompileError) Error() string {
	parts := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		parts[i] = d.String()
	}
	return strings.Join(parts, "\n")
}

// Unwrap exposes the underlying compiler error for errors.Is/As.
func (e *CompileError) Unwrap() error {
	return e.Cause
}

// RuntimeError is an execution error attributed to a source line.
type RuntimeError struct {
	Message string
	Line    int
	Offset  int
	Cause   error
}

func (e *RuntimeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Unwrap exposes the underlying cause (if any) for errors.Is/As.
func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

func convertCompileError(err error) error {
	if err == nil {
		return nil
	}
	var cerr *compiler.Error
	if !errors.As(err, &cerr) {
		return err
	}
	out := &CompileError{
		Diagnostics: make([]Diagnostic, len(cerr.Diagnostics)),
		Cause:       err,
	}
	for i, d := range cerr.Diagnostics {
		out.Diagnostics[i] = Diagnostic{Line: d.Line, Where: d.Where, Message: d.Message}
	}
	return out
}

func convertRuntimeError(err error) error {
	if err == nil {
		return nil
	}
	if rte, ok := err.(*vm.RuntimeError); ok {
		return &RuntimeError{
			Message: rte.Message,
			Line:    rte.Line,
			Offset:  rte.Offset,
			Cause:   rte,
		}
	}
	return err
}

// Interpreter compiles and runs expressions. Each Interpreter owns its VM;
// separate Interpreters may be used from separate goroutines.
type Interpreter struct {
	core      *vm.VM
	stdout    io.Writer
	stderr    io.Writer
	logger    *slog.Logger
	printCode bool
	trace     bool
	color     bool

	mu   sync.Mutex
	busy bool
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithStdout sets where results, listings and traces are written.
func WithStdout(w io.Writer) Option {
	return func(in *Interpreter) {
		if w != nil {
			in.stdout = w
		}
	}
}

// WithStderr sets where diagnostics are written.
func WithStderr(w io.Writer) Option {
	return func(in *Interpreter) {
		if w != nil {
			in.stderr = w
		}
	}
}

// WithLogger sets the structured logger for pipeline events.
func WithLogger(l *slog.Logger) Option {
	return func(in *Interpreter) {
		if l != nil {
			in.logger = l
		}
	}
}

// WithPrintCode disassembles every successfully compiled chunk under the
// label "code" before it runs.
func WithPrintCode(enable bool) Option {
	return func(in *Interpreter) {
		in.printCode = enable
	}
}

// WithTraceExecution prints the stack and the instruction before each
// dispatch.
func WithTraceExecution(enable bool) Option {
	return func(in *Interpreter) {
		in.trace = enable
	}
}

// WithColor highlights listings and diagnostics.
func WithColor(enable bool) Option {
	return func(in *Interpreter) {
		in.color = enable
	}
}

// New constructs an Interpreter writing to os.Stdout and os.Stderr.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{
		stdout: os.Stdout,
		stderr: os.Stderr,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(in)
	}
	vmOpts := []vm.Option{
		vm.WithOutput(in.stdout),
		vm.WithLogger(in.logger),
	}
	if in.trace {
		vmOpts = append(vmOpts, vm.WithTraceHook(vm.TracePrinter(in.stdout, in.disasmOptions()...)))
	}
	in.core = vm.New(vmOpts...)
	return in
}

func (in *Interpreter) disasmOptions() []bytecode.DisassemblerOption {
	return []bytecode.DisassemblerOption{bytecode.WithColor(in.color)}
}

// Interpret compiles and runs source, printing compile diagnostics and
// runtime errors to stderr.
func (in *Interpreter) Interpret(source string) Result {
	_, err := in.Eval(source)
	return in.report(err)
}

func (in *Interpreter) report(err error) Result {
	if err == nil {
		return ResultOK
	}

	var cerr *CompileError
	var rte *RuntimeError
	switch {
	case errors.As(err, &cerr):
		for _, d := range cerr.Diagnostics {
			fmt.Fprintln(in.stderr, in.paintError(d.String()))
		}
		return ResultCompileError
	case errors.Is(err, ErrInvalidImage):
		fmt.Fprintln(in.stderr, in.paintError(err.Error()))
		return ResultCompileError
	case errors.As(err, &rte):
		fmt.Fprintln(in.stderr, in.paintError(rte.Message))
		fmt.Fprintf(in.stderr, "[line %d] in script\n", rte.Line)
		return ResultRuntimeError
	default:
		fmt.Fprintln(in.stderr, in.paintError(err.Error()))
		return ResultRuntimeError
	}
}

// Eval compiles and runs source and returns the value produced by the
// expression. The value is also printed to stdout. Failures are returned as
// *CompileError or *RuntimeError and nothing is printed to stderr.
func (in *Interpreter) Eval(source string) (Value, error) {
	release, err := in.acquire()
	if err != nil {
		return value.Nil(), err
	}
	defer release()

	chunk := bytecode.NewChunk()
	defer chunk.Free()

	in.logger.Debug("compile", "source_bytes", len(source))
	if err := compiler.Compile(source, chunk); err != nil {
		in.logger.Debug("compile failed", "error", err)
		return value.Nil(), convertCompileError(err)
	}
	in.logger.Debug("compiled", "code_bytes", chunk.Count(), "constants", len(chunk.Constants))
	return in.execute(chunk)
}

// EvalImage runs a chunk produced by CompileImage.
func (in *Interpreter) EvalImage(data []byte) (Value, error) {
	release, err := in.acquire()
	if err != nil {
		return value.Nil(), err
	}
	defer release()

	chunk, err := bytecode.DecodeImage(data)
	if err != nil {
		return value.Nil(), fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	defer chunk.Free()
	in.logger.Debug("image loaded", "code_bytes", chunk.Count(), "constants", len(chunk.Constants))
	return in.execute(chunk)
}

// RunImage is Interpret for a compiled image. An image that fails to load
// yields ResultCompileError.
func (in *Interpreter) RunImage(data []byte) Result {
	_, err := in.EvalImage(data)
	return in.report(err)
}

func (in *Interpreter) acquire() (func(), error) {
	if in == nil || in.core == nil {
		return nil, errors.New("nil interpreter")
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.busy {
		return nil, ErrBusy
	}
	in.busy = true
	return func() {
		in.mu.Lock()
		in.busy = false
		in.mu.Unlock()
	}, nil
}

func (in *Interpreter) execute(chunk *bytecode.Chunk) (Value, error) {
	if in.printCode {
		dis := bytecode.NewDisassembler(in.stdout, in.disasmOptions()...)
		if err := dis.DisassembleChunk(chunk, "code"); err != nil {
			return value.Nil(), err
		}
	}

	res, err := in.core.Run(chunk)
	if err != nil {
		return value.Nil(), convertRuntimeError(err)
	}
	return res, nil
}

func (in *Interpreter) paintError(s string) string {
	if !in.color {
		return s
	}
	c := color.New(color.FgRed)
	c.EnableColor()
	return c.Sprint(s)
}

// Disassemble compiles source and writes its listing to w without running it.
func Disassemble(w io.Writer, source string, label string) error {
	chunk := bytecode.NewChunk()
	defer chunk.Free()
	if err := compiler.Compile(source, chunk); err != nil {
		return convertCompileError(err)
	}
	return bytecode.NewDisassembler(w).DisassembleChunk(chunk, label)
}

// CompileImage compiles source into a bytecode image that EvalImage can run
// without the compiler.
func CompileImage(source string) ([]byte, error) {
	chunk := bytecode.NewChunk()
	defer chunk.Free()
	if err := compiler.Compile(source, chunk); err != nil {
		return nil, convertCompileError(err)
	}
	return bytecode.EncodeImage(chunk)
}

// IsImage reports whether data is a compiled bytecode image.
func IsImage(data []byte) bool {
	return bytecode.IsImage(data)
}
