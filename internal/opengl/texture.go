package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"fluid-demo/shadertypes"
)

// GridTexture is a square RG32F texture with one texel per simulation cell.
// Its size is derived from the same GridSize the shaders compile with.
type GridTexture struct {
	ID   uint32
	Grid shadertypes.GridSize
}

// NewGridTexture allocates an uninitialised GridSize×GridSize texture.
// Call from the thread that owns the GL context.
func NewGridTexture(grid shadertypes.GridSize) (*GridTexture, error) {
	if !grid.Valid() {
		return nil, fmt.Errorf("grid texture %d: %w", uint16(grid), shadertypes.ErrInvalidGridSize)
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	n := int32(grid.Cells())
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RG32F, n, n, 0, gl.RG, gl.FLOAT, nil)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	tex := &GridTexture{ID: id, Grid: grid}
	if err := checkError("allocate grid texture"); err != nil {
		tex.Delete()
		return nil, err
	}
	return tex, nil
}

// Size reports the allocated level-0 dimensions.
func (t *GridTexture) Size() (int, int) {
	var w, h int32
	gl.BindTexture(gl.TEXTURE_2D, t.ID)
	gl.GetTexLevelParameteriv(gl.TEXTURE_2D, 0, gl.TEXTURE_WIDTH, &w)
	gl.GetTexLevelParameteriv(gl.TEXTURE_2D, 0, gl.TEXTURE_HEIGHT, &h)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return int(w), int(h)
}

func (t *GridTexture) Delete() {
	if t == nil || t.ID == 0 {
		return
	}
	gl.DeleteTextures(1, &t.ID)
	t.ID = 0
}
