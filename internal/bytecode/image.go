package bytecode

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/xirelogy/go-lox/internal/value"
)

// ImageVersion is bumped whenever the opcode set or the layout changes.
const ImageVersion = 1

var imageMagic = []byte("LOXC\x00")

// ErrNotImage is returned by DecodeImage for data without the image header.
var ErrNotImage = errors.New("not a bytecode image")

var imageEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	imageEncMode = em
}

type image struct {
	Version   uint8       `cbor:"1,keyasint"`
	Code      []byte      `cbor:"2,keyasint"`
	Lines     []int       `cbor:"3,keyasint"`
	Constants []wireValue `cbor:"4,keyasint,omitempty"`
}

type wireValue struct {
	Kind uint8   `cbor:"1,keyasint"`
	B    bool    `cbor:"2,keyasint,omitempty"`
	Num  float64 `cbor:"3,keyasint,omitempty"`
}

// IsImage reports whether data starts with the image header.
func IsImage(data []byte) bool {
	return bytes.HasPrefix(data, imageMagic)
}

// EncodeImage serializes a compiled chunk. Equal chunks encode to equal bytes.
func EncodeImage(c *Chunk) ([]byte, error) {
	if c == nil {
		return nil, errors.New("nil chunk")
	}
	img := image{
		Version: ImageVersion,
		Code:    c.Code,
		Lines:   c.Lines,
	}
	for _, v := range c.Constants {
		img.Constants = append(img.Constants, wireValue{Kind: uint8(v.Kind), B: v.B, Num: v.Num})
	}
	body, err := imageEncMode.Marshal(img)
	if err != nil {
		return nil, fmt.Errorf("bytecode: marshal image: %w", err)
	}
	return append(append([]byte{}, imageMagic...), body...), nil
}

// DecodeImage rebuilds a chunk from EncodeImage output. The code itself is
// not verified; the VM reports bad operands when it reaches them.
func DecodeImage(data []byte) (*Chunk, error) {
	if !IsImage(data) {
		return nil, ErrNotImage
	}
	var img image
	if err := cbor.Unmarshal(data[len(imageMagic):], &img); err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal image: %w", err)
	}
	if img.Version != ImageVersion {
		return nil, fmt.Errorf("bytecode: image version %d, want %d", img.Version, ImageVersion)
	}
	if len(img.Lines) != len(img.Code) {
		return nil, fmt.Errorf("bytecode: image has %d lines for %d bytes of code", len(img.Lines), len(img.Code))
	}
	if len(img.Constants) > MaxConstants {
		return nil, fmt.Errorf("bytecode: image has %d constants, max %d", len(img.Constants), MaxConstants)
	}

	c := NewChunk()
	for i, b := range img.Code {
		c.Write(b, img.Lines[i])
	}
	for i, w := range img.Constants {
		v, err := w.value()
		if err != nil {
			return nil, fmt.Errorf("bytecode: constant %d: %w", i, err)
		}
		c.AddConstant(v)
	}
	return c, nil
}

func (w wireValue) value() (value.Value, error) {
	switch value.Kind(w.Kind) {
	case value.KindNil:
		return value.Nil(), nil
	case value.KindBool:
		return value.Bool(w.B), nil
	case value.KindNumber:
		return value.Number(w.Num), nil
	}
	return value.Nil(), fmt.Errorf("unknown value kind %d", w.Kind)
}
