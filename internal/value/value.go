package value

import (
	"fmt"
	"math"
	"strconv"
)

// Kind tags the active variant of a Value.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindNumber
)

// Value is the closed set of runtime values: nil, booleans and numbers.
type Value struct {
	Kind Kind
	B    bool
	Num  float64
}

func Nil() Value { return Value{Kind: KindNil} }
func Bool(b bool) Value {
	return Value{Kind: KindBool, B: b}
}
func Number(n float64) Value {
	return Value{Kind: KindNumber, Num: n}
}

func (v Value) IsNil() bool    { return v.Kind == KindNil }
func (v Value) IsBool() bool   { return v.Kind == KindBool }
func (v Value) IsNumber() bool { return v.Kind == KindNumber }

// String renders the value the way the interpreter prints it.
func (v Value) String() string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.B {
			return "true"
		}
		return "false"
	case KindNumber:
		return FormatNumber(v.Num)
	}
	panic(fmt.Sprintf("value: unknown kind %d", v.Kind))
}

// TypeName names the variant for diagnostics.
func (v Value) TypeName() string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	}
	panic(fmt.Sprintf("value: unknown kind %d", v.Kind))
}

// Equal reports whether a and b hold the same variant and payload.
// NaN is never equal to itself.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNil:
		return true
	case KindBool:
		return a.B == b.B
	case KindNumber:
		return a.Num == b.Num
	}
	panic(fmt.Sprintf("value: unknown kind %d", a.Kind))
}

// FormatNumber renders n with six significant digits and trailing zeros
// trimmed, matching C's %g. NaN prints as "nan" regardless of sign.
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "nan"
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	}
	return strconv.FormatFloat(n, 'g', 6, 64)
}
