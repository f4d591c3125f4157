// Package value defines the compile-time constant pool entries and the
// runtime values the VM pushes and pops.
package value

import (
	"fmt"
	"strconv"
)

// Kind tags a runtime Value's active variant.
type Kind int

const (
	Nil Kind = iota
	Bool
	Int
	Float
	String
	Symbol
)

func (k Kind) String() string {
	switch k {
	case Nil:
		return "nil"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case Symbol:
		return "symbol"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a tagged runtime value. Only the field matching Kind is
// meaningful.
type Value struct {
	Kind Kind
	B    bool
	I    int64
	F    float64
	Text string // backs String and Symbol; may reference chunk-owned text
}

func NilValue() Value          { return Value{Kind: Nil} }
func BoolValue(b bool) Value   { return Value{Kind: Bool, B: b} }
func IntValue(i int64) Value   { return Value{Kind: Int, I: i} }
func FloatValue(f float64) Value { return Value{Kind: Float, F: f} }
func StringValue(s string) Value { return Value{Kind: String, Text: s} }
func SymbolValue(s string) Value { return Value{Kind: Symbol, Text: s} }

// IsFalsey reports whether v is falsey: exactly NIL or BOOL(false).
// Everything else - including INT(0) and the empty string - is truthy.
func (v Value) IsFalsey() bool {
	return v.Kind == Nil || (v.Kind == Bool && !v.B)
}

// Equal implements strict, cross-variant-false equality: two values are
// equal only when they share a variant and compare equal within it.
// INT(1) is never equal to FLOAT(1.0).
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case Nil:
		return true
	case Bool:
		return v.B == o.B
	case Int:
		return v.I == o.I
	case Float:
		return v.F == o.F
	case String, Symbol:
		return v.Text == o.Text
	default:
		return false
	}
}

// String renders v the way the VM's tracer and OP_RETURN print it.
func (v Value) String() string {
	switch v.Kind {
	case Nil:
		return "nil"
	case Bool:
		return strconv.FormatBool(v.B)
	case Int:
		return strconv.FormatInt(v.I, 10)
	case Float:
		return strconv.FormatFloat(v.F, 'g', -1, 64)
	case String:
		return strconv.Quote(v.Text)
	case Symbol:
		return v.Text
	default:
		return "?"
	}
}
