package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"fluid-demo/internal/logging"
	"fluid-demo/shadertypes"
)

// VertexBuffer holds the OpenGL objects for an uploaded vertex array.
type VertexBuffer struct {
	VAO   uint32
	VBO   uint32
	Count int32
}

// NewVertexBuffer uploads vs straight from Go memory. shadertypes asserts at
// compile time that a []Vertex has the shader's stride and offsets, so no
// repacking happens.
func NewVertexBuffer(vs []shadertypes.Vertex) (*VertexBuffer, error) {
	if len(vs) == 0 {
		return nil, fmt.Errorf("empty vertex buffer")
	}
	vb := &VertexBuffer{Count: int32(len(vs))}

	gl.GenVertexArrays(1, &vb.VAO)
	gl.GenBuffers(1, &vb.VBO)
	gl.BindVertexArray(vb.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, vb.VBO)
	gl.BufferData(gl.ARRAY_BUFFER,
		len(vs)*shadertypes.VertexStride,
		gl.Ptr(vs),
		gl.STATIC_DRAW)

	BindVertexLayout(shadertypes.VertexAttributes(), shadertypes.VertexStride)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if err := checkError("upload vertices"); err != nil {
		vb.Delete()
		return nil, err
	}
	logging.Logger().Debug("vertex buffer uploaded", "vbo", vb.VBO, "vertices", vb.Count, "bytes", len(vs)*shadertypes.VertexStride)
	return vb, nil
}

// BindVertexLayout configures the currently bound VAO to read attrs from
// the currently bound ARRAY_BUFFER.
func BindVertexLayout(attrs []shadertypes.Attribute, stride int) {
	for _, a := range attrs {
		gl.EnableVertexAttribArray(a.Location)
		gl.VertexAttribPointer(a.Location, a.Components, gl.FLOAT, false, int32(stride), gl.PtrOffset(a.Offset))
	}
}

// Bytes reads the vertex buffer back from the driver.
func (vb *VertexBuffer) Bytes() ([]byte, error) {
	return ReadBuffer(gl.ARRAY_BUFFER, vb.VBO, 0, int(vb.Count)*shadertypes.VertexStride)
}

func (vb *VertexBuffer) Delete() {
	if vb.VAO != 0 {
		gl.DeleteVertexArrays(1, &vb.VAO)
		vb.VAO = 0
	}
	if vb.VBO != 0 {
		gl.DeleteBuffers(1, &vb.VBO)
		vb.VBO = 0
	}
}

// ReadBuffer copies size bytes at offset out of buffer id.
func ReadBuffer(target, id uint32, offset, size int) ([]byte, error) {
	out := make([]byte, size)
	if size == 0 {
		return out, nil
	}
	gl.BindBuffer(target, id)
	gl.GetBufferSubData(target, offset, size, gl.Ptr(out))
	gl.BindBuffer(target, 0)
	if err := checkError("read buffer"); err != nil {
		return nil, err
	}
	return out, nil
}
