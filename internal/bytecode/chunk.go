package bytecode

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/sexpvm/sexpvm/internal/invariant"
	"github.com/sexpvm/sexpvm/internal/value"
)

// maxConstants bounds the constant pool at 256 entries: a one-byte operand
// indexes it.
const maxConstants = 256

// Chunk is the code generator's output: a flat byte-encoded instruction
// stream, a parallel per-byte source line table, and the constant pool the
// stream's OP_CONSTANT/OP_SYM/OP_DEFSYM operands index into. Chunks are not
// persisted; a Chunk only ever exists in memory between compile and run.
type Chunk struct {
	Code      []byte
	Lines     []int
	Constants []value.Constant
}

// NewChunk returns an empty chunk ready for a code generator to write into.
func NewChunk() *Chunk {
	return &Chunk{}
}

// Write appends one raw byte to the instruction stream, recording line as
// its source line.
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// WriteOp appends op's opcode byte.
func (c *Chunk) WriteOp(op Op, line int) int {
	c.Write(byte(op), line)
	return len(c.Code) - 1
}

// AddConstant appends c to the pool and returns its index, panicking (an
// invariant violation, not a user error) if the pool would exceed 256
// entries - the code generator is responsible for rejecting programs with
// too many distinct literals before it ever calls this.
func (c *Chunk) AddConstant(cst value.Constant) byte {
	invariant.Invariant(len(c.Constants) < maxConstants, "constant pool overflow: %d entries", len(c.Constants))
	c.Constants = append(c.Constants, cst)
	return byte(len(c.Constants) - 1)
}

// PatchJump overwrites the one-byte absolute jump target written at
// operandOffset with the current end of the instruction stream, which is
// where the code generator has just finished emitting the jump's target
// expression.
func (c *Chunk) PatchJump(operandOffset int) {
	target := len(c.Code)
	invariant.Invariant(target <= 0xff, "jump target out of range: %d", target)
	c.Code[operandOffset] = byte(target)
}

// ConstantAt returns the pool entry at index i. Callers - the VM and the
// disassembler - trust the code generator to have only ever emitted indices
// within range; an out-of-range index is a VM invariant violation, not a
// user-facing runtime error.
func (c *Chunk) ConstantAt(i byte) value.Constant {
	invariant.InRange(int(i), 0, len(c.Constants)-1, "constant index")
	return c.Constants[i]
}

// Fingerprint returns a short content-addressed identifier (an 8-byte
// BLAKE2b digest, hex-encoded) for c's code, line table and constant pool,
// used to correlate a VM trace session with the chunk it is
// executing without printing the full instruction stream on every run.
func (c *Chunk) Fingerprint() string {
	h, err := blake2b.New(8, nil)
	invariant.Postcondition(err == nil, "blake2b.New(8, nil) failed: %v", err)
	h.Write(c.Code)
	var lineBuf [8]byte
	for _, ln := range c.Lines {
		binary.LittleEndian.PutUint64(lineBuf[:], uint64(ln))
		h.Write(lineBuf[:])
	}
	for _, cst := range c.Constants {
		fmt.Fprintf(h, "%d:%d:%f:%s;", cst.Kind, cst.Int, cst.Float, cst.Text)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
