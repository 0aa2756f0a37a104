package bytecode

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Disassembler formats bytecode as a readable assembly-style listing.
type Disassembler struct {
	w       io.Writer
	offset  func(a ...interface{}) string
	opcode  func(a ...interface{}) string
	warning func(a ...interface{}) string
}

// DisassemblerOption configures a Disassembler.
type DisassemblerOption func(*Disassembler)

// WithColor highlights offsets, opcodes and warnings with ANSI colours.
func WithColor(enable bool) DisassemblerOption {
	return func(d *Disassembler) {
		if !enable {
			return
		}
		d.offset = paint(color.FgYellow)
		d.opcode = paint(color.FgCyan)
		d.warning = paint(color.FgRed)
	}
}

func paint(attr color.Attribute) func(a ...interface{}) string {
	c := color.New(attr)
	c.EnableColor()
	return c.SprintFunc()
}

// NewDisassembler constructs a disassembler that writes to w.
func NewDisassembler(w io.Writer, opts ...DisassemblerOption) *Disassembler {
	d := &Disassembler{
		w:       w,
		offset:  fmt.Sprint,
		opcode:  fmt.Sprint,
		warning: fmt.Sprint,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DisassembleChunk prints a "== label ==" header followed by every
// instruction in chunk.
func (d *Disassembler) DisassembleChunk(chunk *Chunk, label string) error {
	if chunk == nil {
		return fmt.Errorf("nil chunk")
	}
	fmt.Fprintf(d.w, "== %s ==\n", label)
	for offset := 0; offset < len(chunk.Code); {
		offset = d.DisassembleInstruction(chunk, offset)
	}
	return nil
}

// DisassembleInstruction prints the instruction at offset and returns the
// offset of the next one.
func (d *Disassembler) DisassembleInstruction(chunk *Chunk, offset int) int {
	fmt.Fprint(d.w, d.offset(fmt.Sprintf("%04d", offset)), " ")
	if offset > 0 && chunk.LineAt(offset) == chunk.LineAt(offset-1) {
		fmt.Fprint(d.w, "   | ")
	} else {
		fmt.Fprintf(d.w, "%4d ", chunk.LineAt(offset))
	}

	op := chunk.Code[offset]
	name, ok := OpName(op)
	if !ok {
		fmt.Fprintln(d.w, d.warning(fmt.Sprintf("Unknown opcode %d", op)))
		return offset + 1
	}

	switch op {
	case OP_CONST:
		return d.constantInstruction(name, chunk, offset)
	default:
		fmt.Fprintln(d.w, d.opcode(name))
		return offset + 1
	}
}

func (d *Disassembler) constantInstruction(name string, chunk *Chunk, offset int) int {
	padded := fmt.Sprintf("%-16s", name)
	if offset+1 >= len(chunk.Code) {
		fmt.Fprintf(d.w, "%s %s\n", d.opcode(padded), d.warning("<missing operand>"))
		return offset + 2
	}
	idx := int(chunk.Code[offset+1])
	fmt.Fprintf(d.w, "%s %4d '%s'\n", d.opcode(padded), idx, formatConstRef(chunk, idx))
	return offset + 2
}

func formatConstRef(chunk *Chunk, idx int) string {
	if idx >= len(chunk.Constants) {
		return "<invalid>"
	}
	return chunk.Constants[idx].String()
}
