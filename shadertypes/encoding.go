package shadertypes

import (
	"encoding/binary"
	"errors"
	"fmt"
	stdmath "math"

	"fluid-demo/math"
)

// Records are written as little-endian IEEE-754 float32 words, which is the
// in-memory representation on every GPU and host the demo targets. Values
// are copied bit for bit: NaN payloads and signed zeros survive.

var (
	ErrShortBuffer  = errors.New("shadertypes: buffer too short")
	ErrBufferLength = errors.New("shadertypes: buffer length is not a multiple of the record size")
)

func appendVec2(b []byte, v math.Vec2) []byte {
	b = binary.LittleEndian.AppendUint32(b, stdmath.Float32bits(v.X))
	return binary.LittleEndian.AppendUint32(b, stdmath.Float32bits(v.Y))
}

func putVec2(b []byte, v math.Vec2) {
	binary.LittleEndian.PutUint32(b[0:4], stdmath.Float32bits(v.X))
	binary.LittleEndian.PutUint32(b[4:8], stdmath.Float32bits(v.Y))
}

func readVec2(b []byte) math.Vec2 {
	return math.Vec2{
		X: stdmath.Float32frombits(binary.LittleEndian.Uint32(b[0:4])),
		Y: stdmath.Float32frombits(binary.LittleEndian.Uint32(b[4:8])),
	}
}

// AppendBinary appends the 16-byte encoding of v to b.
func (v Vertex) AppendBinary(b []byte) ([]byte, error) {
	b = appendVec2(b, v.Position)
	return appendVec2(b, v.Texcoord), nil
}

func (v Vertex) MarshalBinary() ([]byte, error) {
	return v.AppendBinary(make([]byte, 0, VertexSize))
}

// UnmarshalBinary decodes exactly one vertex.
func (v *Vertex) UnmarshalBinary(data []byte) error {
	if len(data) != VertexSize {
		return fmt.Errorf("vertex: got %d bytes, want %d: %w", len(data), VertexSize, ErrShortBuffer)
	}
	v.Position = readVec2(data[VertexPositionOffset:])
	v.Texcoord = readVec2(data[VertexTexcoordOffset:])
	return nil
}

// AppendBinary appends the 24-byte encoding of c to b.
func (c ForcingConstant) AppendBinary(b []byte) ([]byte, error) {
	b = appendVec2(b, c.A)
	b = appendVec2(b, c.B)
	return appendVec2(b, c.Force), nil
}

func (c ForcingConstant) MarshalBinary() ([]byte, error) {
	return c.AppendBinary(make([]byte, 0, ForcingConstantSize))
}

// UnmarshalBinary decodes exactly one forcing constant.
func (c *ForcingConstant) UnmarshalBinary(data []byte) error {
	if len(data) != ForcingConstantSize {
		return fmt.Errorf("forcing constant: got %d bytes, want %d: %w", len(data), ForcingConstantSize, ErrShortBuffer)
	}
	c.A = readVec2(data[ForcingAOffset:])
	c.B = readVec2(data[ForcingBOffset:])
	c.Force = readVec2(data[ForcingForceOffset:])
	return nil
}

// PutForcingConstant writes c into the first ForcingConstantSize bytes of b.
// It is used to stamp a constant into a mapped or staged buffer slot.
func PutForcingConstant(b []byte, c ForcingConstant) error {
	if len(b) < ForcingConstantSize {
		return fmt.Errorf("forcing constant: slot of %d bytes: %w", len(b), ErrShortBuffer)
	}
	putVec2(b[ForcingAOffset:], c.A)
	putVec2(b[ForcingBOffset:], c.B)
	putVec2(b[ForcingForceOffset:], c.Force)
	return nil
}

// EncodeVertices appends vs to dst with a stride of VertexStride.
func EncodeVertices(dst []byte, vs []Vertex) []byte {
	if cap(dst)-len(dst) < len(vs)*VertexStride {
		grown := make([]byte, len(dst), len(dst)+len(vs)*VertexStride)
		copy(grown, dst)
		dst = grown
	}
	for _, v := range vs {
		dst = appendVec2(dst, v.Position)
		dst = appendVec2(dst, v.Texcoord)
	}
	return dst
}

// DecodeVertices splits b into VertexStride-sized records.
func DecodeVertices(b []byte) ([]Vertex, error) {
	if len(b)%VertexStride != 0 {
		return nil, fmt.Errorf("vertex buffer of %d bytes: %w", len(b), ErrBufferLength)
	}
	vs := make([]Vertex, len(b)/VertexStride)
	for i := range vs {
		rec := b[i*VertexStride:]
		vs[i] = Vertex{
			Position: readVec2(rec[VertexPositionOffset:]),
			Texcoord: readVec2(rec[VertexTexcoordOffset:]),
		}
	}
	return vs, nil
}

// PutVertex overwrites the i-th record of an encoded vertex buffer.
func PutVertex(b []byte, i int, v Vertex) error {
	if i < 0 || (i+1)*VertexStride > len(b) {
		return fmt.Errorf("vertex %d in buffer of %d bytes: %w", i, len(b), ErrShortBuffer)
	}
	off := i * VertexStride
	putVec2(b[off+VertexPositionOffset:], v.Position)
	putVec2(b[off+VertexTexcoordOffset:], v.Texcoord)
	return nil
}
