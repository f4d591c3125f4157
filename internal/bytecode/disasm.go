package bytecode

import "fmt"

// Disassemble renders every instruction in c as a multi-line string, one
// line per instruction, in the same format DisassembleInstruction produces.
// It is a read-only debugging aid; nothing in the compile/execute path
// depends on it.
func Disassemble(c *Chunk, name string) string {
	out := fmt.Sprintf("== %s ==\n", name)
	offset := 0
	for offset < len(c.Code) {
		line, next := DisassembleInstruction(c, offset)
		out += line + "\n"
		offset = next
	}
	return out
}

// DisassembleInstruction formats the single instruction at offset and
// returns the offset of the instruction that follows it.
func DisassembleInstruction(c *Chunk, offset int) (string, int) {
	op := Op(c.Code[offset])
	linePrefix := fmt.Sprintf("%04d ", offset)
	if offset > 0 && c.Lines[offset] == c.Lines[offset-1] {
		linePrefix += "   | "
	} else {
		linePrefix += fmt.Sprintf("%4d ", c.Lines[offset])
	}

	switch op.OperandBytes() {
	case 0:
		return linePrefix + op.String(), offset + 1
	case 1:
		operand := c.Code[offset+1]
		switch op {
		case OpConstant, OpSym, OpDefSym:
			cst := c.ConstantAt(operand)
			return fmt.Sprintf("%s%-14s %4d '%v'", linePrefix, op.String(), operand, cst.ToValue()), offset + 2
		case OpJmpIfFalse, OpJmp:
			return fmt.Sprintf("%s%-14s %4d -> %d", linePrefix, op.String(), operand, operand), offset + 2
		default:
			return fmt.Sprintf("%s%-14s %4d", linePrefix, op.String(), operand), offset + 2
		}
	default:
		return fmt.Sprintf("%sUnknown opcode %d", linePrefix, op), offset + 1
	}
}
