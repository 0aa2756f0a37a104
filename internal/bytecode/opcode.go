package bytecode

// OpCode values. Operands follow the opcode byte in the code stream.
const (
	OP_CONST byte = iota // idx8: push Constants[idx]
	OP_NIL
	OP_TRUE
	OP_FALSE
	_ // reserved
	_ // reserved
	_ // reserved
	_ // reserved

	OP_ADD
	OP_SUB
	OP_MUL
	OP_DIV
	OP_NEG
	_ // reserved
	_ // reserved
	_ // reserved

	OP_RETURN
)

// MaxConstants is the number of pool entries a one-byte operand can address.
const MaxConstants = 256

// OpName returns the mnemonic for op and whether op is defined.
func OpName(op byte) (string, bool) {
	switch op {
	case OP_CONST:
		return "OP_CONST", true
	case OP_NIL:
		return "OP_NIL", true
	case OP_TRUE:
		return "OP_TRUE", true
	case OP_FALSE:
		return "OP_FALSE", true
	case OP_ADD:
		return "OP_ADD", true
	case OP_SUB:
		return "OP_SUB", true
	case OP_MUL:
		return "OP_MUL", true
	case OP_DIV:
		return "OP_DIV", true
	case OP_NEG:
		return "OP_NEG", true
	case OP_RETURN:
		return "OP_RETURN", true
	default:
		return "", false
	}
}

// OperandWidth is the number of operand bytes following op.
func OperandWidth(op byte) int {
	if op == OP_CONST {
		return 1
	}
	return 0
}
