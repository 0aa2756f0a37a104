package vm

import "github.com/xirelogy/go-lox/internal/value"

type Value = value.Value

func Nil() Value { return value.Nil() }
func Bool(b bool) Value {
	return value.Bool(b)
}
func Number(n float64) Value {
	return value.Number(n)
}
