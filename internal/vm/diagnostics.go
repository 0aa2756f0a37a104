package vm

import (
	"errors"
	"fmt"

	"github.com/xirelogy/go-lox/internal/bytecode"
)

var (
	errStackOverflow  = errors.New("stack overflow")
	errStackUnderflow = errors.New("stack underflow")
)

// TraceInfo describes a single instruction dispatch for debugging/tracing.
type TraceInfo struct {
	Chunk *bytecode.Chunk
	Op    byte
	Line  int
	IP    int
	Stack []Value // bottom first; a copy
}

// TraceHook observes instruction dispatch for debugging/profiling.
type TraceHook func(TraceInfo)

// RuntimeError carries the source line of the instruction that failed.
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

// Unwrap exposes the original error, if any.
func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

func (vm *VM) errorf(format string, args ...interface{}) (Value, error) {
	return vm.newRuntimeError(fmt.Sprintf(format, args...), nil)
}

func (vm *VM) fail(cause error) (Value, error) {
	return vm.newRuntimeError(cause.Error(), cause)
}

// newRuntimeError attributes the failure to the instruction just fetched
// and clears the stack.
func (vm *VM) newRuntimeError(msg string, cause error) (Value, error) {
	offset := vm.ip - 1
	err := &RuntimeError{
		Message: msg,
		Line:    vm.chunk.LineAt(offset),
		Offset:  offset,
		Cause:   cause,
	}
	vm.ResetStack()
	vm.logger.Debug("vm runtime error", "message", msg, "line", err.Line, "offset", offset)
	return Nil(), err
}

func (vm *VM) trace() {
	if vm.traceHook == nil {
		return
	}
	stack := make([]Value, vm.sp)
	copy(stack, vm.stack[:vm.sp])
	vm.traceHook(TraceInfo{
		Chunk: vm.chunk,
		Op:    vm.chunk.Code[vm.ip],
		Line:  vm.chunk.LineAt(vm.ip),
		IP:    vm.ip,
		Stack: stack,
	})
}
