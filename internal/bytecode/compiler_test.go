package bytecode

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/sexpvm/sexpvm/internal/ast"
)

func compileSource(t *testing.T, source string) *Chunk {
	t.Helper()
	tree, err := ast.NewParser(source).Parse()
	require.NoError(t, err)
	chunk, err := Compile(source, tree)
	require.NoError(t, err)
	return chunk
}

func TestCodeAndLinesSameLength(t *testing.T) {
	chunk := compileSource(t, "(+ 1 2)")
	require.Len(t, chunk.Lines, len(chunk.Code))
}

func TestLastInstructionIsReturn(t *testing.T) {
	chunk := compileSource(t, "(+ 1 2)")
	require.Equal(t, OpReturn, Op(chunk.Code[len(chunk.Code)-1]))
}

func TestSimpleAddEncoding(t *testing.T) {
	chunk := compileSource(t, "(+ 1 2)")
	// OP_CONSTANT 0, OP_CONSTANT 1, OP_ADD, OP_RETURN
	want := []Op{OpConstant, OpConstant, OpAdd, OpReturn}
	require.Len(t, chunk.Code, 6) // two 2-byte constants + 2 one-byte ops
	got := []Op{Op(chunk.Code[0]), Op(chunk.Code[2]), Op(chunk.Code[4]), Op(chunk.Code[5])}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected opcode sequence (-want +got):\n%s", diff)
	}
}

func TestVariadicBinaryOperatorRejected(t *testing.T) {
	tree, err := ast.NewParser("(- 10 3 2)").Parse()
	require.NoError(t, err)
	_, err = Compile("(- 10 3 2)", tree)
	require.Error(t, err)
	require.Contains(t, err.Error(), "requires exactly 2 operand(s), got 3")
}

func TestTopLevelSequencingEmitsPop(t *testing.T) {
	chunk := compileSource(t, "(def x 7) (+ x 1)")
	popCount := 0
	for _, b := range chunk.Code {
		if Op(b) == OpPop {
			popCount++
		}
	}
	require.Equal(t, 1, popCount, "exactly one top-level OP_POP between the two expressions")
}

func TestDefFormEmitsDefSymThenValueThenDef(t *testing.T) {
	chunk := compileSource(t, "(def x 7)")
	require.Equal(t, OpDefSym, Op(chunk.Code[0]))
	require.Equal(t, OpConstant, Op(chunk.Code[2])) // value 7
	require.Equal(t, OpDef, Op(chunk.Code[4]))
}

func TestIfFormPatchesBothJumps(t *testing.T) {
	chunk := compileSource(t, "(if true 1 2)")

	jmpIfFalseOffset := -1
	jmpOffset := -1
	for i := 0; i < len(chunk.Code); {
		op := Op(chunk.Code[i])
		switch op {
		case OpJmpIfFalse:
			jmpIfFalseOffset = i
		case OpJmp:
			jmpOffset = i
		}
		i += 1 + op.OperandBytes()
	}
	require.GreaterOrEqual(t, jmpIfFalseOffset, 0)
	require.GreaterOrEqual(t, jmpOffset, 0)

	thenTarget := int(chunk.Code[jmpIfFalseOffset+1])
	require.Equal(t, jmpOffset+2, thenTarget, "OP_JMPIFFALSE should target the instruction right after OP_JMP")

	elseTarget := int(chunk.Code[jmpOffset+1])
	require.Equal(t, len(chunk.Code)-1, elseTarget, "OP_JMP should target the end of the else-branch, right before the terminal OP_RETURN")
}

func TestIfWithoutElseEmitsNil(t *testing.T) {
	chunk := compileSource(t, "(if nil 1)")
	// the patched OP_JMPIFFALSE target starts the absent else-branch: it
	// should hold OP_NIL.
	found := false
	for i := 0; i < len(chunk.Code); i += 1 + Op(chunk.Code[i]).OperandBytes() {
		if Op(chunk.Code[i]) == OpJmpIfFalse {
			found = Op(chunk.Code[chunk.Code[i+1]]) == OpNil
		}
	}
	require.True(t, found, "an absent else-branch must emit OP_NIL")
}

func TestEmptyProgramReturnsNilRatherThanUnderflowing(t *testing.T) {
	chunk := compileSource(t, "")
	require.Equal(t, []Op{OpNil, OpReturn}, []Op{Op(chunk.Code[0]), Op(chunk.Code[1])})
}

func TestStringConstantStripsQuotes(t *testing.T) {
	chunk := compileSource(t, `(len "hello")`)
	require.Equal(t, "hello", chunk.Constants[0].Text)
}

func TestJumpOperandsAreValidCodeIndices(t *testing.T) {
	chunk := compileSource(t, "(if (= 1 1) (+ 1 1) (- 1 1))")
	for i := 0; i < len(chunk.Code); {
		op := Op(chunk.Code[i])
		if op == OpJmp || op == OpJmpIfFalse {
			target := int(chunk.Code[i+1])
			require.GreaterOrEqual(t, target, 0)
			require.Less(t, target, len(chunk.Code))
		}
		i += 1 + op.OperandBytes()
	}
}

func TestConstantAndSymbolOperandsInBounds(t *testing.T) {
	chunk := compileSource(t, "(def x 7) (+ x 1)")
	for i := 0; i < len(chunk.Code); {
		op := Op(chunk.Code[i])
		switch op {
		case OpConstant, OpSym, OpDefSym:
			require.Less(t, int(chunk.Code[i+1]), len(chunk.Constants))
		}
		i += 1 + op.OperandBytes()
	}
}
