package opengl

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"fluid-demo/shadertypes"
	"fluid-demo/shadertypes/codegen"
)

var ErrGL = errors.New("opengl error")

// probeVertSrc reads both vertex inputs so neither is optimised away.
const probeVertSrc = `
out vec2 fragUV;
void main() {
    gl_Position = vec4(position, 0.0, 1.0);
    fragUV = texcoord;
}
`

// probeFragSrc touches every member of the forcing block so the block is
// active and the driver reports its layout.
const probeFragSrc = `
in  vec2 fragUV;
out vec4 outColor;
void main() {
    vec2 seg = forcing.b - forcing.a;
    outColor = vec4(fragUV + forcing.force * length(seg) / FLUID_SIZE, 0.0, 1.0);
}
`

// NewLayoutProgram compiles a program whose declarations are generated
// from the Go layout for grid, and binds its forcing block to binding.
func NewLayoutProgram(grid shadertypes.GridSize, binding uint32) (uint32, error) {
	opts := codegen.DefaultOptions()
	opts.GridSize = grid
	opts.Binding = binding

	var decl bytes.Buffer
	if err := codegen.Generate(&decl, codegen.LangGLSL, opts); err != nil {
		return 0, err
	}
	vert := "#version 410 core\n#define FLUID_VERTEX_INPUTS\n" + decl.String() + probeVertSrc
	frag := "#version 410 core\n" + decl.String() + probeFragSrc

	prog, err := newProgram(vert, frag)
	if err != nil {
		return 0, err
	}
	block := gl.GetUniformBlockIndex(prog, gl.Str(shadertypes.ForcingConstantLayout().Name+"\x00"))
	if block == gl.INVALID_INDEX {
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("uniform block %s is not active: %w", shadertypes.ForcingConstantLayout().Name, ErrGL)
	}
	gl.UniformBlockBinding(prog, block, binding)
	return prog, checkError("bind uniform block")
}

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)
	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("link failed: %v", log)
	}
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile failed: %v", log)
	}
	return shader, nil
}

// checkError drains the GL error queue.
func checkError(op string) error {
	var codes []string
	for code := gl.GetError(); code != gl.NO_ERROR; code = gl.GetError() {
		codes = append(codes, fmt.Sprintf("0x%04x", code))
	}
	if len(codes) > 0 {
		return fmt.Errorf("%s: %s: %w", op, strings.Join(codes, ", "), ErrGL)
	}
	return nil
}
