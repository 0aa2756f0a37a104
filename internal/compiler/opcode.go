package compiler

import "github.com/xirelogy/go-lox/internal/bytecode"

const (
	OP_CONST  = bytecode.OP_CONST
	OP_NIL    = bytecode.OP_NIL
	OP_TRUE   = bytecode.OP_TRUE
	OP_FALSE  = bytecode.OP_FALSE
	OP_ADD    = bytecode.OP_ADD
	OP_SUB    = bytecode.OP_SUB
	OP_MUL    = bytecode.OP_MUL
	OP_DIV    = bytecode.OP_DIV
	OP_NEG    = bytecode.OP_NEG
	OP_RETURN = bytecode.OP_RETURN
)
