package opengl

import (
	"fmt"
	"strings"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// BlockLayout is a uniform block's layout as reported by the driver.
type BlockLayout struct {
	Name     string
	DataSize int
	Offsets  map[string]int // member name → byte offset
}

// QueryUniformBlock asks the driver where it placed each member of block.
func QueryUniformBlock(program uint32, block string) (BlockLayout, error) {
	out := BlockLayout{Name: block, Offsets: map[string]int{}}

	idx := gl.GetUniformBlockIndex(program, gl.Str(block+"\x00"))
	if idx == gl.INVALID_INDEX {
		return out, fmt.Errorf("uniform block %s not found: %w", block, ErrGL)
	}

	var size, count int32
	gl.GetActiveUniformBlockiv(program, idx, gl.UNIFORM_BLOCK_DATA_SIZE, &size)
	gl.GetActiveUniformBlockiv(program, idx, gl.UNIFORM_BLOCK_ACTIVE_UNIFORMS, &count)
	out.DataSize = int(size)
	if count == 0 {
		return out, checkError("query uniform block")
	}

	raw := make([]int32, count)
	gl.GetActiveUniformBlockiv(program, idx, gl.UNIFORM_BLOCK_ACTIVE_UNIFORM_INDICES, &raw[0])
	indices := make([]uint32, count)
	for i, v := range raw {
		indices[i] = uint32(v)
	}
	offsets := make([]int32, count)
	gl.GetActiveUniformsiv(program, count, &indices[0], gl.UNIFORM_OFFSET, &offsets[0])

	var maxLen int32
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORM_MAX_LENGTH, &maxLen)
	for i, u := range indices {
		name := strings.Repeat("\x00", int(maxLen+1))
		var n int32
		gl.GetActiveUniformName(program, u, maxLen+1, &n, gl.Str(name))
		// instance-named blocks report "Block.member"
		member := name[:n]
		if dot := strings.LastIndexByte(member, '.'); dot >= 0 {
			member = member[dot+1:]
		}
		out.Offsets[member] = int(offsets[i])
	}
	return out, checkError("query uniform block")
}

// QueryAttributes returns the driver's location for each named vertex input;
// -1 marks an input the linker dropped.
func QueryAttributes(program uint32, names []string) map[string]int32 {
	out := make(map[string]int32, len(names))
	for _, n := range names {
		out[n] = gl.GetAttribLocation(program, gl.Str(n+"\x00"))
	}
	return out
}
