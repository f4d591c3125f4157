// Package bytecode implements the code generator and the passive Chunk
// container it emits: the byte-encoded instruction stream, per-byte line
// numbers, and the constant pool a chunk is compiled with.
package bytecode

import "fmt"

// Op is a dense, stable-ordinal opcode. Ordinals are part of the external
// interface (spec §6) and must never change.
type Op byte

const (
	OpConstant   Op = 0
	opNegate     Op = 1 // reserved, unused - no surface syntax emits this
	OpAdd        Op = 2
	OpSubtract   Op = 3
	OpMultiply   Op = 4
	OpDivide     Op = 5
	OpReturn     Op = 6
	OpNil        Op = 7
	OpTrue       Op = 8
	OpFalse      Op = 9
	OpNot        Op = 10
	OpEqual      Op = 11
	OpLt         Op = 12
	OpGt         Op = 13
	OpLte        Op = 14
	OpGte        Op = 15
	OpLen        Op = 16
	OpPrint      Op = 17
	OpPop        Op = 18
	OpDef        Op = 19
	OpDefSym     Op = 20
	OpSym        Op = 21
	OpJmpIfFalse Op = 22
	OpJmp        Op = 23
)

var opNames = map[Op]string{
	OpConstant:   "OP_CONSTANT",
	opNegate:     "OP_NEGATE",
	OpAdd:        "OP_ADD",
	OpSubtract:   "OP_SUBTRACT",
	OpMultiply:   "OP_MULTIPLY",
	OpDivide:     "OP_DIVIDE",
	OpReturn:     "OP_RETURN",
	OpNil:        "OP_NIL",
	OpTrue:       "OP_TRUE",
	OpFalse:      "OP_FALSE",
	OpNot:        "OP_NOT",
	OpEqual:      "OP_EQUAL",
	OpLt:         "OP_LT",
	OpGt:         "OP_GT",
	OpLte:        "OP_LTE",
	OpGte:        "OP_GTE",
	OpLen:        "OP_LEN",
	OpPrint:      "OP_PRINT",
	OpPop:        "OP_POP",
	OpDef:        "OP_DEF",
	OpDefSym:     "OP_DEFSYM",
	OpSym:        "OP_SYM",
	OpJmpIfFalse: "OP_JMPIFFALSE",
	OpJmp:        "OP_JMP",
}

func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("OP(%d)", byte(op))
}

// OperandBytes returns the fixed operand width for op: 0 for opcodes with no
// operand, 1 for a constant-pool index or an absolute jump target.
func (op Op) OperandBytes() int {
	switch op {
	case OpConstant, OpSym, OpDefSym, OpJmpIfFalse, OpJmp:
		return 1
	default:
		return 0
	}
}
