package vm

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xirelogy/go-lox/internal/bytecode"
)

// StackMax is the operand stack capacity.
const StackMax = 256

// VM is a stack-based bytecode interpreter. A VM runs one chunk at a time
// and is not safe for concurrent use.
type VM struct {
	chunk     *bytecode.Chunk
	ip        int
	stack     [StackMax]Value
	sp        int
	out       io.Writer
	traceHook TraceHook
	logger    *slog.Logger
}

// Option configures a VM.
type Option func(*VM)

// WithOutput sets where OP_RETURN prints its value.
func WithOutput(w io.Writer) Option {
	return func(vm *VM) {
		if w != nil {
			vm.out = w
		}
	}
}

// WithTraceHook registers a callback invoked before each instruction.
func WithTraceHook(h TraceHook) Option {
	return func(vm *VM) {
		vm.traceHook = h
	}
}

// WithLogger sets the logger for run lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(vm *VM) {
		if l != nil {
			vm.logger = l
		}
	}
}

// New constructs an idle VM.
func New(opts ...Option) *VM {
	vm := &VM{
		out:    io.Discard,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// SetTraceHook replaces the instruction trace callback (nil disables it).
func (vm *VM) SetTraceHook(h TraceHook) {
	vm.traceHook = h
}

// ResetStack empties the operand stack.
func (vm *VM) ResetStack() {
	for i := 0; i < vm.sp; i++ {
		vm.stack[i] = Value{}
	}
	vm.sp = 0
}

// StackDepth is the number of live operand stack slots.
func (vm *VM) StackDepth() int {
	return vm.sp
}

// Run executes chunk from its first byte until OP_RETURN, which prints the
// returned value and ends the run. Failures are reported as *RuntimeError
// and leave the stack empty.
func (vm *VM) Run(chunk *bytecode.Chunk) (Value, error) {
	if chunk == nil {
		return Nil(), fmt.Errorf("nil chunk")
	}
	vm.chunk = chunk
	vm.ip = 0
	vm.ResetStack()
	defer func() { vm.chunk = nil }()

	vm.logger.Debug("vm run", "bytes", chunk.Count(), "constants", len(chunk.Constants))

	code := chunk.Code
	for {
		if vm.ip >= len(code) {
			return vm.errorf("unexpected end of bytecode")
		}
		vm.trace()
		op := vm.readByte()
		switch op {
		case bytecode.OP_CONST:
			if vm.ip >= len(code) {
				return vm.errorf("unexpected end of bytecode")
			}
			idx := int(vm.readByte())
			if idx >= len(chunk.Constants) {
				return vm.errorf("constant index %d out of range", idx)
			}
			if err := vm.push(chunk.Constants[idx]); err != nil {
				return vm.fail(err)
			}
		case bytecode.OP_NIL:
			if err := vm.push(Nil()); err != nil {
				return vm.fail(err)
			}
		case bytecode.OP_TRUE:
			if err := vm.push(Bool(true)); err != nil {
				return vm.fail(err)
			}
		case bytecode.OP_FALSE:
			if err := vm.push(Bool(false)); err != nil {
				return vm.fail(err)
			}
		case bytecode.OP_NEG:
			v, err := vm.peek(0)
			if err != nil {
				return vm.fail(err)
			}
			if !v.IsNumber() {
				return vm.errorf("operand must be a number")
			}
			vm.stack[vm.sp-1] = Number(-v.Num)
		case bytecode.OP_ADD, bytecode.OP_SUB, bytecode.OP_MUL, bytecode.OP_DIV:
			b, err := vm.peek(0)
			if err != nil {
				return vm.fail(err)
			}
			a, err := vm.peek(1)
			if err != nil {
				return vm.fail(err)
			}
			if !a.IsNumber() || !b.IsNumber() {
				return vm.errorf("operands must be numbers")
			}
			vm.pop()
			vm.pop()
			// cannot overflow: two slots were just freed
			_ = vm.push(Number(arith(op, a.Num, b.Num)))
		case bytecode.OP_RETURN:
			if vm.sp == 0 {
				return vm.errorf("stack underflow")
			}
			v := vm.pop()
			fmt.Fprintln(vm.out, v.String())
			return v, nil
		default:
			return vm.errorf("unknown opcode %d", op)
		}
	}
}

func arith(op byte, a, b float64) float64 {
	switch op {
	case bytecode.OP_ADD:
		return a + b
	case bytecode.OP_SUB:
		return a - b
	case bytecode.OP_MUL:
		return a * b
	case bytecode.OP_DIV:
		return a / b
	}
	panic(fmt.Sprintf("vm: not an arithmetic opcode %d", op))
}

func (vm *VM) readByte() byte {
	b := vm.chunk.Code[vm.ip]
	vm.ip++
	return b
}

func (vm *VM) push(v Value) error {
	if vm.sp >= StackMax {
		return errStackOverflow
	}
	vm.stack[vm.sp] = v
	vm.sp++
	return nil
}

func (vm *VM) pop() Value {
	vm.sp--
	v := vm.stack[vm.sp]
	vm.stack[vm.sp] = Value{}
	return v
}

func (vm *VM) peek(distance int) (Value, error) {
	if distance >= vm.sp {
		return Nil(), errStackUnderflow
	}
	return vm.stack[vm.sp-1-distance], nil
}
