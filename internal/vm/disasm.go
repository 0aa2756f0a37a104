package vm

import (
	"fmt"
	"io"

	"github.com/xirelogy/go-lox/internal/bytecode"
)

// TracePrinter returns a hook that writes the operand stack followed by
// the disassembled instruction for each dispatch, using the same offsets
// as a full chunk listing.
func TracePrinter(w io.Writer, opts ...bytecode.DisassemblerOption) TraceHook {
	dis := bytecode.NewDisassembler(w, opts...)
	return func(info TraceInfo) {
		fmt.Fprint(w, "          ")
		for _, v := range info.Stack {
			fmt.Fprintf(w, "[ %s ]", v.String())
		}
		fmt.Fprintln(w)
		if info.Chunk != nil {
			dis.DisassembleInstruction(info.Chunk, info.IP)
		}
	}
}
