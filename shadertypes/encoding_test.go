package shadertypes

import (
	"encoding/binary"
	stdmath "math"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fluid-demo/math"
)

func f32(bits uint32) float32 { return stdmath.Float32frombits(bits) }

func TestTwoVerticesBytes(t *testing.T) {
	buf := EncodeVertices(nil, []Vertex{
		{Position: math.NewVec2(0, 0), Texcoord: math.NewVec2(0, 0)},
		{Position: math.NewVec2(1, 1), Texcoord: math.NewVec2(1, 1)},
	})
	require.Len(t, buf, 2*VertexStride)

	assert.Equal(t, make([]byte, 16), buf[:16])

	one := []byte{0x00, 0x00, 0x80, 0x3f} // 1.0f little-endian
	for i := 0; i < 4; i++ {
		assert.Equal(t, one, buf[16+4*i:20+4*i], "word %d of second vertex", i)
	}
}

func TestForcingConstantBytes(t *testing.T) {
	c := ForcingConstant{
		A:     math.NewVec2(10, 20),
		B:     math.NewVec2(30, 40),
		Force: math.NewVec2(1, -1),
	}
	b, err := c.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, ForcingConstantSize)

	word := func(off int) float32 { return f32(binary.LittleEndian.Uint32(b[off:])) }
	assert.Equal(t, float32(10), word(ForcingAOffset))
	assert.Equal(t, float32(20), word(ForcingAOffset+4))
	assert.Equal(t, float32(30), word(ForcingBOffset))
	assert.Equal(t, float32(40), word(ForcingBOffset+4))
	assert.Equal(t, float32(1), word(ForcingForceOffset))
	assert.Equal(t, float32(-1), word(ForcingForceOffset+4))
}

// The encoding must match the struct's own memory image, which is what a
// zero-copy upload of a []Vertex would send.
func TestEncodingMatchesMemoryImage(t *testing.T) {
	vs := []Vertex{
		{Position: math.NewVec2(-1, 0.25), Texcoord: math.NewVec2(0.5, 3)},
		{Position: math.NewVec2(7, -8), Texcoord: math.NewVec2(9, 10)},
	}
	raw := unsafe.Slice((*byte)(unsafe.Pointer(&vs[0])), len(vs)*VertexStride)
	assert.Equal(t, raw, EncodeVertices(nil, vs))

	c := ForcingConstant{A: math.NewVec2(1, 2), B: math.NewVec2(3, 4), Force: math.NewVec2(5, 6)}
	rawC := unsafe.Slice((*byte)(unsafe.Pointer(&c)), ForcingConstantSize)
	enc, err := c.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, rawC, enc)
}

func TestRoundTripIsBitExact(t *testing.T) {
	specials := []float32{
		f32(0x80000000), // -0
		f32(0x7fc00001), // quiet NaN with payload
		f32(0x7f800001), // signalling NaN
		float32(stdmath.Inf(-1)),
		f32(0x00000001), // smallest denormal
		stdmath.MaxFloat32,
	}

	for _, s := range specials {
		c := ForcingConstant{A: math.NewVec2(s, 1), B: math.NewVec2(2, s), Force: math.NewVec2(s, s)}
		b, err := c.MarshalBinary()
		require.NoError(t, err)

		var got ForcingConstant
		require.NoError(t, got.UnmarshalBinary(b))
		assert.Equal(t, stdmath.Float32bits(s), stdmath.Float32bits(got.A.X))
		assert.Equal(t, stdmath.Float32bits(s), stdmath.Float32bits(got.B.Y))
		assert.Equal(t, stdmath.Float32bits(s), stdmath.Float32bits(got.Force.X))
		assert.Equal(t, stdmath.Float32bits(s), stdmath.Float32bits(got.Force.Y))

		v := Vertex{Position: math.NewVec2(s, 0), Texcoord: math.NewVec2(0, s)}
		vb, err := v.MarshalBinary()
		require.NoError(t, err)
		var gotV Vertex
		require.NoError(t, gotV.UnmarshalBinary(vb))
		assert.Equal(t, stdmath.Float32bits(s), stdmath.Float32bits(gotV.Position.X))
		assert.Equal(t, stdmath.Float32bits(s), stdmath.Float32bits(gotV.Texcoord.Y))
	}
}

func TestDecodeVertices(t *testing.T) {
	quad := FullscreenQuad()
	got, err := DecodeVertices(EncodeVertices(nil, quad))
	require.NoError(t, err)
	assert.Equal(t, quad, got)

	_, err = DecodeVertices(make([]byte, VertexStride+3))
	assert.ErrorIs(t, err, ErrBufferLength)

	empty, err := DecodeVertices(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestEncodeVerticesAppends(t *testing.T) {
	prefix := []byte{0xde, 0xad}
	buf := EncodeVertices(prefix, FullscreenQuad())
	assert.Len(t, buf, 2+4*VertexStride)
	assert.Equal(t, prefix, buf[:2])
}

func TestPutVertex(t *testing.T) {
	buf := EncodeVertices(nil, FullscreenQuad())
	v := Vertex{Position: math.NewVec2(0.5, 0.5), Texcoord: math.NewVec2(0.75, 0.75)}
	require.NoError(t, PutVertex(buf, 2, v))

	got, err := DecodeVertices(buf)
	require.NoError(t, err)
	assert.Equal(t, v, got[2])
	assert.Equal(t, FullscreenQuad()[3], got[3])

	assert.ErrorIs(t, PutVertex(buf, 4, v), ErrShortBuffer)
	assert.ErrorIs(t, PutVertex(buf, -1, v), ErrShortBuffer)
}

func TestPutForcingConstant(t *testing.T) {
	slot := make([]byte, 256)
	c := ForcingConstant{A: math.NewVec2(1, 2), B: math.NewVec2(3, 4), Force: math.NewVec2(5, 6)}
	require.NoError(t, PutForcingConstant(slot, c))

	var got ForcingConstant
	require.NoError(t, got.UnmarshalBinary(slot[:ForcingConstantSize]))
	assert.Equal(t, c, got)
	assert.Equal(t, make([]byte, 256-ForcingConstantSize), slot[ForcingConstantSize:])

	assert.ErrorIs(t, PutForcingConstant(make([]byte, 23), c), ErrShortBuffer)
}

func TestUnmarshalRejectsShortInput(t *testing.T) {
	var v Vertex
	assert.ErrorIs(t, v.UnmarshalBinary(make([]byte, 8)), ErrShortBuffer)
	var c ForcingConstant
	assert.ErrorIs(t, c.UnmarshalBinary(make([]byte, 16)), ErrShortBuffer)
}
