package bytecode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sexpvm/sexpvm/internal/ast"
)

func TestDisassembleAnnotatesConstantOperand(t *testing.T) {
	tree, err := ast.NewParser("(+ 1 2)").Parse()
	require.NoError(t, err)
	chunk, err := Compile("(+ 1 2)", tree)
	require.NoError(t, err)

	out := Disassemble(chunk, "test")
	require.Contains(t, out, "== test ==")
	require.Contains(t, out, "OP_CONSTANT")
	require.Contains(t, out, "OP_ADD")
	require.Contains(t, out, "OP_RETURN")
}

func TestDisassembleInstructionAdvancesByOperandWidth(t *testing.T) {
	tree, err := ast.NewParser("(+ 1 2)").Parse()
	require.NoError(t, err)
	chunk, err := Compile("(+ 1 2)", tree)
	require.NoError(t, err)

	line, next := DisassembleInstruction(chunk, 0)
	require.Contains(t, line, "OP_CONSTANT")
	require.Equal(t, 2, next) // one opcode byte + one operand byte

	line, next = DisassembleInstruction(chunk, next)
	require.Contains(t, line, "OP_CONSTANT")
	require.Equal(t, 4, next)
}

func TestDisassembleJumpShowsTarget(t *testing.T) {
	tree, err := ast.NewParser("(if true 1 2)").Parse()
	require.NoError(t, err)
	chunk, err := Compile("(if true 1 2)", tree)
	require.NoError(t, err)

	out := Disassemble(chunk, "cond")
	require.True(t, strings.Contains(out, "OP_JMPIFFALSE") && strings.Contains(out, "->"))
}
