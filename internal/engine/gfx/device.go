// Package gfx defines the small, GL-shaped graphics API used by the pick-alpha
// pipeline, so the same code can drive a real OpenGL context or a CPU device.
package gfx

import "fmt"

// Handle identifies a device resource (shader, program, buffer, vertex array,
// texture or render target). Zero is never a valid resource.
type Handle uint32

// Stage is a programmable pipeline stage.
type Stage int

const (
	StageVertex Stage = iota
	StageFragment
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Primitive is a draw topology.
type Primitive int

const (
	TriangleStrip Primitive = iota
	Triangles
)

// ContextAttributes describes the context a caller needs.
type ContextAttributes struct {
	Major int
	Minor int

	// PremultipliedAlpha reports whether the drawing buffer holds
	// premultiplied colors. Pick-alpha always asks for false.
	PremultipliedAlpha bool

	// PreserveDrawingBuffer keeps the last rendered frame readable until the
	// next explicit clear.
	PreserveDrawingBuffer bool
}

func (a ContextAttributes) String() string {
	return fmt.Sprintf("%d.%d (premultiplied=%t, preserve=%t)",
		a.Major, a.Minor, a.PremultipliedAlpha, a.PreserveDrawingBuffer)
}

// Info describes the device behind a context.
type Info struct {
	Vendor   string
	Renderer string
	Version  string
}

// Device is the set of graphics calls the pipeline makes.
//
// Textures and render targets are RGBA8. Pixel rows passed to CreateTexture
// and returned by ReadPixels are bottom-up, as in OpenGL.
type Device interface {
	Info() Info

	CreateShader(stage Stage, source string) Handle
	CompileShader(sh Handle) (ok bool, infoLog string)
	DeleteShader(sh Handle)

	CreateProgram() Handle
	AttachShader(prog, sh Handle)
	LinkProgram(prog Handle) (ok bool, infoLog string)
	DeleteProgram(prog Handle)
	UseProgram(prog Handle)

	// AttribLocation and UniformLocation return -1 for unknown names.
	AttribLocation(prog Handle, name string) int32
	UniformLocation(prog Handle, name string) int32

	// Uniform setters apply to the program in use. Location -1 is ignored.
	Uniform1i(loc int32, v int32)
	Uniform1f(loc int32, v float32)
	Uniform3f(loc int32, x, y, z float32)

	CreateVertexArray() Handle
	BindVertexArray(vao Handle)
	DeleteVertexArray(vao Handle)

	// CreateStaticBuffer uploads immutable vertex data and leaves the buffer
	// bound as the current array buffer.
	CreateStaticBuffer(data []float32) Handle
	DeleteBuffer(buf Handle)

	// VertexAttrib enables the attribute at loc in the bound vertex array and
	// points it at float data in the bound array buffer.
	VertexAttrib(loc int32, size, strideBytes, offsetBytes int)

	// CreateTexture uploads width*height RGBA8 pixels with clamp-to-edge
	// wrapping and linear filtering.
	CreateTexture(width, height int, pix []byte) Handle
	BindTexture(unit int, tex Handle)
	DeleteTexture(tex Handle)

	// CreateRenderTarget allocates an offscreen RGBA8 color buffer.
	CreateRenderTarget(width, height int) (Handle, error)
	// BindRenderTarget directs draws and reads to rt; 0 selects the default
	// target.
	BindRenderTarget(rt Handle)
	RenderTargetTexture(rt Handle) Handle
	DeleteRenderTarget(rt Handle)

	Viewport(x, y, width, height int)
	ClearColor(r, g, b, a float32)
	Clear()
	DrawArrays(mode Primitive, first, count int)
	ReadPixels(x, y, width, height int) []byte
}

// Counts is a census of live device resources.
type Counts struct {
	Shaders       int
	Programs      int
	Buffers       int
	VertexArrays  int
	Textures      int
	RenderTargets int
}

// Total returns the number of live resources of all kinds.
func (c Counts) Total() int {
	return c.Shaders + c.Programs + c.Buffers + c.VertexArrays + c.Textures + c.RenderTargets
}

// Counter is implemented by devices that track their live resources.
type Counter interface {
	Live() Counts
}

// Rect is an axis-aligned rectangle in display coordinates.
type Rect struct {
	X, Y float64
	W, H float64
}
