package value

import "golox/pkg/chunk"

// Chunk is a growable bytecode stream: a flat instruction byte sequence,
// a parallel per-byte source-line array (for runtime-error reporting),
// and a constant pool addressed by one-byte index. It lives here rather
// than in package chunk because an ObjFunction owns one directly (the
// clox original embeds "Chunk chunk;" inside ObjFunction) and a chunk's
// constant pool holds Values — so the dependency has to run this
// direction, and package chunk (which only defines the OpCode
// vocabulary) can't import back without a cycle.
//
// Invariant: len(Code) == len(Lines) always.
type Chunk struct {
	Code      []byte
	Lines     []int
	Constants []Value
}

// NewChunk returns an empty Chunk ready to receive bytes.
func NewChunk() *Chunk {
	return &Chunk{}
}

// Write appends a single bytecode byte produced by source line `line`.
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// WriteOp appends an opcode byte.
func (c *Chunk) WriteOp(op chunk.OpCode, line int) {
	c.Write(byte(op), line)
}

// AddConstant appends v to the constant pool and returns its index. The
// caller must check against chunk.MaxConstants before emitting an
// OP_CONSTANT (or similar) that references the returned index — a chunk
// may hold at most chunk.MaxConstants constants, addressed by one byte.
func (c *Chunk) AddConstant(v Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}
