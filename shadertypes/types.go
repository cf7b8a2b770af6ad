// Package shadertypes is the single Go declaration of the memory layout
// shared between host code and shader code in the fluid demo: the quad
// vertex format, the per-update forcing constant and the grid resolution.
//
// Every shader-side copy of these declarations is generated from this
// package (see shadertypes/codegen) and checked against it (see
// internal/headerscan), so field order and widths have exactly one owner.
package shadertypes

import (
	"unsafe"

	"fluid-demo/math"
)

// Vertex is one corner of the textured quad the simulation is drawn on.
type Vertex struct {
	Position math.Vec2 `shader:"position"` // offset 0
	Texcoord math.Vec2 `shader:"texcoord"` // offset 8
}

// ForcingConstant is the externally applied force for one solver update:
// Force is applied along the segment A→B. Callers own every field; the
// payload has no invariant beyond its shape.
type ForcingConstant struct {
	A     math.Vec2 `shader:"a"`     // offset 0
	B     math.Vec2 `shader:"b"`     // offset 8
	Force math.Vec2 `shader:"force"` // offset 16
}

const (
	VertexSize           = 16
	VertexStride         = VertexSize
	VertexPositionOffset = 0
	VertexTexcoordOffset = 8

	ForcingConstantSize    = 24
	ForcingAOffset         = 0
	ForcingBOffset         = 8
	ForcingForceOffset     = 16
	ForcingConstantBinding = 0
)

// Layout assertions. A negative array length fails the build, so these
// break compilation as soon as a struct drifts from the constants above.
var (
	_ [VertexSize - unsafe.Sizeof(Vertex{})]struct{}
	_ [unsafe.Sizeof(Vertex{}) - VertexSize]struct{}
	_ [VertexPositionOffset - unsafe.Offsetof(Vertex{}.Position)]struct{}
	_ [unsafe.Offsetof(Vertex{}.Position) - VertexPositionOffset]struct{}
	_ [VertexTexcoordOffset - unsafe.Offsetof(Vertex{}.Texcoord)]struct{}
	_ [unsafe.Offsetof(Vertex{}.Texcoord) - VertexTexcoordOffset]struct{}

	_ [ForcingConstantSize - unsafe.Sizeof(ForcingConstant{})]struct{}
	_ [unsafe.Sizeof(ForcingConstant{}) - ForcingConstantSize]struct{}
	_ [ForcingAOffset - unsafe.Offsetof(ForcingConstant{}.A)]struct{}
	_ [unsafe.Offsetof(ForcingConstant{}.A) - ForcingAOffset]struct{}
	_ [ForcingBOffset - unsafe.Offsetof(ForcingConstant{}.B)]struct{}
	_ [unsafe.Offsetof(ForcingConstant{}.B) - ForcingBOffset]struct{}
	_ [ForcingForceOffset - unsafe.Offsetof(ForcingConstant{}.Force)]struct{}
	_ [unsafe.Offsetof(ForcingConstant{}.Force) - ForcingForceOffset]struct{}
)

// Attribute describes one vertex-fetch input.
type Attribute struct {
	Location   uint32
	Name       string
	Components int32
	Offset     int
}

// VertexAttributes returns the vertex-fetch configuration matching Vertex.
// Locations follow declaration order.
func VertexAttributes() []Attribute {
	return []Attribute{
		{Location: 0, Name: "position", Components: 2, Offset: VertexPositionOffset},
		{Location: 1, Name: "texcoord", Components: 2, Offset: VertexTexcoordOffset},
	}
}

// quadCorners are the texture-space corners of FullscreenQuad in strip order.
var quadCorners = [4][2]float32{{0, 0}, {1, 0}, {0, 1}, {1, 1}}

// FullscreenQuad returns a clip-space quad as a 4-vertex triangle strip.
// Texture coordinates follow the GL convention (v grows upward).
func FullscreenQuad() []Vertex {
	quad := make([]Vertex, len(quadCorners))
	for i, c := range quadCorners {
		uv := math.Vec2FromArray(c)
		quad[i] = Vertex{Position: uv.Mul(2).Sub(math.Vec2One), Texcoord: uv}
	}
	return quad
}
