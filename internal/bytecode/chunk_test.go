package bytecode

import (
	"testing"

	"github.com/xirelogy/go-lox/internal/value"
)

func TestChunkWriteKeepsLinesParallel(t *testing.T) {
	chunk := NewChunk()
	for i := 0; i < 100; i++ {
		chunk.Write(OP_NIL, i/10+1)
		if len(chunk.Code) != len(chunk.Lines) {
			t.Fatalf("after %d writes: code %d bytes, lines %d entries", i+1, len(chunk.Code), len(chunk.Lines))
		}
	}
	if chunk.Count() != 100 {
		t.Fatalf("expected 100 bytes, got %d", chunk.Count())
	}
	if chunk.LineAt(55) != 6 {
		t.Fatalf("expected line 6 at offset 55, got %d", chunk.LineAt(55))
	}
	if chunk.LineAt(-1) != 0 || chunk.LineAt(100) != 0 {
		t.Fatalf("expected 0 for out-of-range offsets")
	}
}

func TestChunkGrowth(t *testing.T) {
	chunk := NewChunk()
	expected := []int{8, 8, 8, 8, 8, 8, 8, 8, 16}
	for i, want := range expected {
		chunk.Write(OP_NIL, 1)
		if cap(chunk.Code) != want {
			t.Fatalf("after %d writes: expected capacity %d, got %d", i+1, want, cap(chunk.Code))
		}
		if cap(chunk.Lines) != cap(chunk.Code) {
			t.Fatalf("line table capacity %d differs from code capacity %d", cap(chunk.Lines), cap(chunk.Code))
		}
	}
	for i := 0; i < 8; i++ {
		chunk.Write(OP_NIL, 1)
	}
	if cap(chunk.Code) != 32 {
		t.Fatalf("expected capacity 32 after 17 writes, got %d", cap(chunk.Code))
	}
}

func TestChunkAddConstant(t *testing.T) {
	chunk := NewChunk()
	for i := 0; i < 300; i++ {
		if idx := chunk.AddConstant(value.Number(float64(i))); idx != i {
			t.Fatalf("expected index %d, got %d", i, idx)
		}
	}
	if chunk.Constants[299].Num != 299 {
		t.Fatalf("constant order not preserved")
	}
}

func TestChunkFree(t *testing.T) {
	chunk := NewChunk()
	chunk.Write(OP_RETURN, 1)
	chunk.AddConstant(value.Bool(true))
	chunk.Free()
	if chunk.Count() != 0 || len(chunk.Lines) != 0 || len(chunk.Constants) != 0 {
		t.Fatalf("expected empty chunk after free")
	}
	if cap(chunk.Code) != 0 {
		t.Fatalf("expected storage released")
	}
	chunk.Write(OP_NIL, 2)
	if chunk.Count() != 1 || chunk.LineAt(0) != 2 {
		t.Fatalf("chunk not reusable after free")
	}
}
