package bytecode

import "github.com/xirelogy/go-lox/internal/value"

// Chunk is a compiled bytecode sequence with its constant pool.
// Lines[i] is the source line of Code[i].
type Chunk struct {
	Code      []byte
	Lines     []int
	Constants []value.Value
}

// NewChunk returns an empty chunk.
func NewChunk() *Chunk {
	return &Chunk{}
}

// Write appends one byte of code along with the source line it came from.
func (c *Chunk) Write(b byte, line int) {
	if cap(c.Code) < len(c.Code)+1 {
		capacity := growCapacity(cap(c.Code))
		c.Code = grow(c.Code, capacity)
		c.Lines = grow(c.Lines, capacity)
	}
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// AddConstant appends v to the constant pool and returns its index.
// The pool itself is unbounded; callers enforce MaxConstants.
func (c *Chunk) AddConstant(v value.Value) int {
	if cap(c.Constants) < len(c.Constants)+1 {
		c.Constants = grow(c.Constants, growCapacity(cap(c.Constants)))
	}
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// Free drops all storage and returns the chunk to its empty state.
func (c *Chunk) Free() {
	c.Code = nil
	c.Lines = nil
	c.Constants = nil
}

// Count is the number of bytes of code.
func (c *Chunk) Count() int {
	return len(c.Code)
}

// LineAt returns the source line for a code offset, or 0 when out of range.
func (c *Chunk) LineAt(offset int) int {
	if offset < 0 || offset >= len(c.Lines) {
		return 0
	}
	return c.Lines[offset]
}

func growCapacity(capacity int) int {
	if capacity < 8 {
		return 8
	}
	return capacity * 2
}

func grow[T any](s []T, capacity int) []T {
	out := make([]T, len(s), capacity)
	copy(out, s)
	return out
}
