package bytecode

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sexpvm/sexpvm/internal/value"
)

func TestFingerprintStableForIdenticalChunks(t *testing.T) {
	a := NewChunk()
	a.WriteOp(OpConstant, 1)
	a.Write(a.AddConstant(value.ConstIntValue(7)), 1)
	a.WriteOp(OpReturn, 1)

	b := NewChunk()
	b.WriteOp(OpConstant, 1)
	b.Write(b.AddConstant(value.ConstIntValue(7)), 1)
	b.WriteOp(OpReturn, 1)

	require.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestFingerprintDiffersOnDifferentConstants(t *testing.T) {
	a := NewChunk()
	a.WriteOp(OpConstant, 1)
	a.Write(a.AddConstant(value.ConstIntValue(7)), 1)
	a.WriteOp(OpReturn, 1)

	b := NewChunk()
	b.WriteOp(OpConstant, 1)
	b.Write(b.AddConstant(value.ConstIntValue(8)), 1)
	b.WriteOp(OpReturn, 1)

	require.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestAddConstantOverflowPanics(t *testing.T) {
	c := NewChunk()
	for i := 0; i < maxConstants; i++ {
		c.AddConstant(value.ConstIntValue(int64(i)))
	}
	require.Panics(t, func() {
		c.AddConstant(value.ConstIntValue(999))
	})
}

func TestPatchJumpWritesAbsoluteOffset(t *testing.T) {
	c := NewChunk()
	c.WriteOp(OpJmp, 1)
	operand := len(c.Code)
	c.Write(0, 1)
	c.WriteOp(OpNil, 1)
	c.PatchJump(operand)
	require.Equal(t, byte(len(c.Code)), c.Code[operand])
}
