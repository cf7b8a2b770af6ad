package core

import (
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

// Context is an OpenGL context owned by an invisible window. It is used to
// talk to the driver, never to present frames.
type Context struct {
	Handle   *glfw.Window
	Renderer string
	Version  string
}

type ContextConfig struct {
	Major, Minor int
	Debug        bool
}

func DefaultContextConfig() ContextConfig {
	return ContextConfig{
		Major: 4,
		Minor: 1,
	}
}

// NewContext creates the window, makes its context current on the calling
// (main) thread and loads GL entry points.
func NewContext(config ContextConfig) (*Context, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, config.Major)
	glfw.WindowHint(glfw.ContextVersionMinor, config.Minor)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLDebugContext, boolToInt(config.Debug))

	handle, err := glfw.CreateWindow(1, 1, "fluid-demo", nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create GL %d.%d context: %w", config.Major, config.Minor, err)
	}
	handle.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		handle.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("failed to load GL functions: %w", err)
	}

	return &Context{
		Handle:   handle,
		Renderer: gl.GoStr(gl.GetString(gl.RENDERER)),
		Version:  gl.GoStr(gl.GetString(gl.VERSION)),
	}, nil
}

func (c *Context) Destroy() {
	c.Handle.Destroy()
	glfw.Terminate()
}

func boolToInt(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}
