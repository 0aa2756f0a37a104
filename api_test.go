package lox

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
)

func newTestInterpreter(opts ...Option) (*Interpreter, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	opts = append([]Option{WithStdout(&stdout), WithStderr(&stderr)}, opts...)
	return New(opts...), &stdout, &stderr
}

func TestAPIInterpretPrintsResult(t *testing.T) {
	tests := []struct {
		src string
		out string
	}{
		{"1.2 + 3.4 / 5.6", "1.80714\n"},
		{"-(1+2)", "-3\n"},
		{"1 / 0", "inf\n"},
		{"true", "true\n"},
		{"nil", "nil\n"},
		{"1e", ""},
	}
	for _, tt := range tests {
		in, stdout, stderr := newTestInterpreter()
		res := in.Interpret(tt.src)
		if tt.out == "" {
			if res != ResultCompileError {
				t.Fatalf("%q: expected compile error, got %v", tt.src, res)
			}
			continue
		}
		if res != ResultOK {
			t.Fatalf("%q: expected ok, got %v (stderr %q)", tt.src, res, stderr.String())
		}
		if stdout.String() != tt.out {
			t.Fatalf("%q: expected %q, got %q", tt.src, tt.out, stdout.String())
		}
		if stderr.Len() != 0 {
			t.Fatalf("%q: unexpected stderr %q", tt.src, stderr.String())
		}
	}
}

func TestAPIInterpretCompileError(t *testing.T) {
	in, stdout, stderr := newTestInterpreter()
	if res := in.Interpret("(1"); res != ResultCompileError {
		t.Fatalf("expected compile error, got %v", res)
	}
	if stdout.Len() != 0 {
		t.Fatalf("vm must not run after a compile error, got %q", stdout.String())
	}
	want := "[line 1] Error at end: expected ')' after expression\n"
	if stderr.String() != want {
		t.Fatalf("expected %q, got %q", want, stderr.String())
	}
}

func TestAPIInterpretRuntimeError(t *testing.T) {
	in, stdout, stderr := newTestInterpreter()
	if res := in.Interpret("1 +\n-nil"); res != ResultRuntimeError {
		t.Fatalf("expected runtime error, got %v", res)
	}
	if stdout.Len() != 0 {
		t.Fatalf("unexpected stdout %q", stdout.String())
	}
	want := "operand must be a number\n[line 2] in script\n"
	if stderr.String() != want {
		t.Fatalf("expected %q, got %q", want, stderr.String())
	}

	// the interpreter stays usable
	stderr.Reset()
	if res := in.Interpret("4 * 2"); res != ResultOK {
		t.Fatalf("expected ok after runtime error, got %v (%q)", res, stderr.String())
	}
	if stdout.String() != "8\n" {
		t.Fatalf("expected 8, got %q", stdout.String())
	}
}

func TestAPIEvalTypedErrors(t *testing.T) {
	in, _, stderr := newTestInterpreter()

	_, err := in.Eval("1 +")
	var cerr *CompileError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *CompileError, got %T (%v)", err, err)
	}
	if len(cerr.Diagnostics) != 1 || cerr.Diagnostics[0].Message != "expected expression" {
		t.Fatalf("unexpected diagnostics %+v", cerr.Diagnostics)
	}

	_, err = in.Eval("1 + true")
	var rte *RuntimeError
	if !errors.As(err, &rte) {
		t.Fatalf("expected *RuntimeError, got %T (%v)", err, err)
	}
	if rte.Message != "operands must be numbers" || rte.Line != 1 {
		t.Fatalf("unexpected runtime error %+v", rte)
	}
	if !strings.HasPrefix(rte.Error(), "line 1: ") {
		t.Fatalf("unexpected error string %q", rte.Error())
	}
	if stderr.Len() != 0 {
		t.Fatalf("Eval must not print diagnostics, got %q", stderr.String())
	}
}

func TestAPIEvalValue(t *testing.T) {
	in, _, _ := newTestInterpreter()
	v, err := in.Eval("(2 + 3) * 4")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if !v.IsNumber() || v.Num != 20 {
		t.Fatalf("expected 20, got %v", v)
	}
	v, err = in.Eval("false")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if !v.IsBool() || v.B {
		t.Fatalf("expected false, got %v", v)
	}
}

func TestAPIPrintCode(t *testing.T) {
	in, stdout, _ := newTestInterpreter(WithPrintCode(true))
	if res := in.Interpret("-1"); res != ResultOK {
		t.Fatalf("expected ok, got %v", res)
	}
	want := "== code ==\n" +
		"0000    1 OP_CONST            0 '1'\n" +
		"0002    | OP_NEG\n" +
		"0003    | OP_RETURN\n" +
		"-1\n"
	if stdout.String() != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", stdout.String(), want)
	}
}

func TestAPITraceExecution(t *testing.T) {
	in, stdout, _ := newTestInterpreter(WithTraceExecution(true))
	if res := in.Interpret("1 + 2"); res != ResultOK {
		t.Fatalf("expected ok, got %v", res)
	}
	out := stdout.String()
	for _, want := range []string{"[ 1 ][ 2 ]\n0004    | OP_ADD", "[ 3 ]\n0005    | OP_RETURN", "3\n"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected trace to contain %q, got:\n%s", want, out)
		}
	}
}

func TestAPIColorDiagnostics(t *testing.T) {
	in, _, stderr := newTestInterpreter(WithColor(true))
	in.Interpret("-nil")
	if !strings.Contains(stderr.String(), "\x1b[31m") {
		t.Fatalf("expected coloured diagnostic, got %q", stderr.String())
	}
	if !strings.Contains(stderr.String(), "[line 1] in script") {
		t.Fatalf("expected line trailer, got %q", stderr.String())
	}
}

type blockingWriter struct {
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (w *blockingWriter) Write(p []byte) (int, error) {
	w.once.Do(func() {
		close(w.started)
		<-w.release
	})
	return len(p), nil
}

func TestAPIBusyGuard(t *testing.T) {
	w := &blockingWriter{started: make(chan struct{}), release: make(chan struct{})}
	in := New(WithStdout(w))

	done := make(chan error, 1)
	go func() {
		_, err := in.Eval("1")
		done <- err
	}()
	<-w.started

	if _, err := in.Eval("2"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	close(w.release)
	if err := <-done; err != nil {
		t.Fatalf("first eval: %v", err)
	}
	if _, err := in.Eval("3"); err != nil {
		t.Fatalf("expected interpreter to be free again: %v", err)
	}
}

func TestAPIIndependentInterpreters(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			in, _, _ := newTestInterpreter()
			for j := 0; j < 50; j++ {
				v, err := in.Eval("1.5 * 4 - 2")
				if err != nil {
					errs <- err
					return
				}
				if v.Num != 4 {
					errs <- errors.New("wrong result")
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent eval: %v", err)
	}
}

func TestAPIDisassemble(t *testing.T) {
	var out bytes.Buffer
	if err := Disassemble(&out, "1 + 2", "test"); err != nil {
		t.Fatalf("disassemble: %v", err)
	}
	want := "== test ==\n" +
		"0000    1 OP_CONST            0 '1'\n" +
		"0002    | OP_CONST            1 '2'\n" +
		"0004    | OP_ADD\n" +
		"0005    | OP_RETURN\n"
	if out.String() != want {
		t.Fatalf("unexpected listing:\n%s\nwant:\n%s", out.String(), want)
	}

	var cerr *CompileError
	if err := Disassemble(&out, "+", "bad"); !errors.As(err, &cerr) {
		t.Fatalf("expected *CompileError, got %v", err)
	}
}

func TestResultString(t *testing.T) {
	if ResultOK.String() != "ok" || ResultCompileError.String() != "compile error" || ResultRuntimeError.String() != "runtime error" {
		t.Fatalf("unexpected result names")
	}
}

func TestAPIImageRoundTrip(t *testing.T) {
	data, err := CompileImage("(1 + 2) * -4")
	if err != nil {
		t.Fatalf("compile image: %v", err)
	}
	if !IsImage(data) {
		t.Fatalf("expected image header")
	}
	in, stdout, _ := newTestInterpreter()
	v, err := in.EvalImage(data)
	if err != nil {
		t.Fatalf("eval image: %v", err)
	}
	if v.Num != -12 || stdout.String() != "-12\n" {
		t.Fatalf("unexpected result %v (%q)", v, stdout.String())
	}

	var cerr *CompileError
	if _, err := CompileImage("1 +"); !errors.As(err, &cerr) {
		t.Fatalf("expected *CompileError, got %v", err)
	}
}

func TestAPIImageRuntimeErrorKeepsLines(t *testing.T) {
	data, err := CompileImage("1 +\n\n-false")
	if err != nil {
		t.Fatalf("compile image: %v", err)
	}
	in, _, stderr := newTestInterpreter()
	if res := in.RunImage(data); res != ResultRuntimeError {
		t.Fatalf("expected runtime error, got %v", res)
	}
	if stderr.String() != "operand must be a number\n[line 3] in script\n" {
		t.Fatalf("unexpected stderr %q", stderr.String())
	}
}

func TestAPIInvalidImage(t *testing.T) {
	in, stdout, stderr := newTestInterpreter()
	if _, err := in.EvalImage([]byte("1 + 2")); !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
	if res := in.RunImage([]byte("LOXC\x00\xff")); res != ResultCompileError {
		t.Fatalf("expected compile error result, got %v", res)
	}
	if stdout.Len() != 0 || !strings.Contains(stderr.String(), "invalid bytecode image") {
		t.Fatalf("unexpected output %q / %q", stdout.String(), stderr.String())
	}
}
