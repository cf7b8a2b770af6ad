package shadertypes

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fluid-demo/math"
)

func TestVertexLayoutConstants(t *testing.T) {
	var v Vertex
	assert.Equal(t, uintptr(16), unsafe.Sizeof(v))
	assert.Equal(t, uintptr(0), unsafe.Offsetof(v.Position))
	assert.Equal(t, uintptr(8), unsafe.Offsetof(v.Texcoord))
	assert.Equal(t, uintptr(4), unsafe.Alignof(v))
}

func TestForcingConstantLayoutConstants(t *testing.T) {
	var c ForcingConstant
	assert.Equal(t, uintptr(24), unsafe.Sizeof(c))
	assert.Equal(t, uintptr(0), unsafe.Offsetof(c.A))
	assert.Equal(t, uintptr(8), unsafe.Offsetof(c.B))
	assert.Equal(t, uintptr(16), unsafe.Offsetof(c.Force))
	assert.Equal(t, uintptr(4), unsafe.Alignof(c))
}

func TestVertexSliceHasNoGaps(t *testing.T) {
	vs := make([]Vertex, 3)
	base := uintptr(unsafe.Pointer(&vs[0]))
	assert.Equal(t, uintptr(VertexStride), uintptr(unsafe.Pointer(&vs[1]))-base)
	assert.Equal(t, uintptr(2*VertexStride), uintptr(unsafe.Pointer(&vs[2]))-base)
}

func TestVertexAttributesMatchLayout(t *testing.T) {
	attrs := VertexAttributes()
	layout := VertexLayout()
	require.Len(t, attrs, len(layout.Fields))
	for i, a := range attrs {
		f := layout.Fields[i]
		assert.Equal(t, uint32(i), a.Location)
		assert.Equal(t, f.Name, a.Name)
		assert.Equal(t, f.Offset, a.Offset)
		assert.Equal(t, int32(f.Components), a.Components)
	}
}

func TestFullscreenQuad(t *testing.T) {
	quad := FullscreenQuad()
	require.Len(t, quad, 4)
	for _, v := range quad {
		assert.Contains(t, []float32{-1, 1}, v.Position.X)
		assert.Contains(t, []float32{-1, 1}, v.Position.Y)
		// texcoord maps clip space [-1,1] onto [0,1]
		assert.Equal(t, v.Position.Add(math.Vec2One).Mul(0.5), v.Texcoord)
	}
	assert.Equal(t, []Vertex{
		{Position: math.NewVec2(-1, -1), Texcoord: math.NewVec2(0, 0)},
		{Position: math.NewVec2(1, -1), Texcoord: math.NewVec2(1, 0)},
		{Position: math.NewVec2(-1, 1), Texcoord: math.NewVec2(0, 1)},
		{Position: math.NewVec2(1, 1), Texcoord: math.NewVec2(1, 1)},
	}, quad, "triangle strip order")
}
