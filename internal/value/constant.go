package value

// ConstantKind tags a compile-time constant pool entry's active variant.
type ConstantKind int

const (
	ConstInt ConstantKind = iota
	ConstFloat
	ConstString
	ConstSymbol
)

// Constant is one compile-time entry in a chunk's constant pool. Unlike
// Value, String/Symbol constants own their text outright.
type Constant struct {
	Kind  ConstantKind
	Int   int64
	Float float64
	Text  string
}

func ConstIntValue(i int64) Constant      { return Constant{Kind: ConstInt, Int: i} }
func ConstFloatValue(f float64) Constant  { return Constant{Kind: ConstFloat, Float: f} }
func ConstStringValue(s string) Constant  { return Constant{Kind: ConstString, Text: s} }
func ConstSymbolValue(s string) Constant  { return Constant{Kind: ConstSymbol, Text: s} }

// ToValue loads a constant pool entry as the runtime Value OP_CONSTANT
// pushes for it.
func (c Constant) ToValue() Value {
	switch c.Kind {
	case ConstInt:
		return IntValue(c.Int)
	case ConstFloat:
		return FloatValue(c.Float)
	case ConstString:
		return StringValue(c.Text)
	case ConstSymbol:
		return SymbolValue(c.Text)
	default:
		return NilValue()
	}
}
