package bytecode

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/xirelogy/go-lox/internal/value"
)

func sampleChunk() *Chunk {
	c := NewChunk()
	c.Write(OP_CONST, 1)
	c.Write(byte(c.AddConstant(value.Number(1.5))), 1)
	c.Write(OP_CONST, 2)
	c.Write(byte(c.AddConstant(value.Number(math.Inf(1)))), 2)
	c.Write(OP_ADD, 2)
	c.Write(OP_NEG, 3)
	c.Write(OP_RETURN, 3)
	c.AddConstant(value.Bool(true))
	c.AddConstant(value.Nil())
	return c
}

func TestImageRoundTrip(t *testing.T) {
	c := sampleChunk()
	data, err := EncodeImage(c)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !IsImage(data) {
		t.Fatalf("expected image header")
	}
	got, err := DecodeImage(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(got.Code, c.Code) {
		t.Fatalf("code differs: %v vs %v", got.Code, c.Code)
	}
	for i := range c.Lines {
		if got.Lines[i] != c.Lines[i] {
			t.Fatalf("line %d differs: %d vs %d", i, got.Lines[i], c.Lines[i])
		}
	}
	if len(got.Constants) != len(c.Constants) {
		t.Fatalf("expected %d constants, got %d", len(c.Constants), len(got.Constants))
	}
	for i := range c.Constants {
		if !value.Equal(got.Constants[i], c.Constants[i]) {
			t.Fatalf("constant %d differs: %v vs %v", i, got.Constants[i], c.Constants[i])
		}
	}
}

func TestImageDeterministic(t *testing.T) {
	a, err := EncodeImage(sampleChunk())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	b, err := EncodeImage(sampleChunk())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("expected identical encodings")
	}
}

func TestDecodeImageErrors(t *testing.T) {
	if _, err := DecodeImage([]byte("1 + 2")); !errors.Is(err, ErrNotImage) {
		t.Fatalf("expected ErrNotImage, got %v", err)
	}
	if _, err := DecodeImage(append([]byte("LOXC\x00"), 0xff)); err == nil {
		t.Fatalf("expected error for corrupt body")
	}

	body, err := imageEncMode.Marshal(image{Version: ImageVersion, Code: []byte{OP_NIL, OP_RETURN}, Lines: []int{1}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := DecodeImage(append([]byte("LOXC\x00"), body...)); err == nil {
		t.Fatalf("expected error for mismatched line table")
	}

	body, err = imageEncMode.Marshal(image{Version: ImageVersion + 1})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := DecodeImage(append([]byte("LOXC\x00"), body...)); err == nil {
		t.Fatalf("expected error for unknown version")
	}

	body, err = imageEncMode.Marshal(image{Version: ImageVersion, Constants: []wireValue{{Kind: 9}}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := DecodeImage(append([]byte("LOXC\x00"), body...)); err == nil {
		t.Fatalf("expected error for unknown value kind")
	}
}
