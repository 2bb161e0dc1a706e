// Package gldevice implements gfx.Device on an OpenGL 4.1 core context.
//
// A context must be current on the calling thread before New is called, and
// every method must be called from that thread.
package gldevice

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/pickalpha/internal/engine/gfx"
)

var (
	_ gfx.Device  = (*Device)(nil)
	_ gfx.Counter = (*Device)(nil)
)

// Device drives the current OpenGL context.
type Device struct {
	info    gfx.Info
	live    gfx.Counts
	targets map[gfx.Handle]uint32 // framebuffer -> color texture
}

// New loads GL entry points for the current context and verifies that it
// satisfies attrs.
func New(attrs gfx.ContextAttributes) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, &gfx.ContextUnavailableError{Requested: attrs, Err: err}
	}

	var major, minor int32
	gl.GetIntegerv(gl.MAJOR_VERSION, &major)
	gl.GetIntegerv(gl.MINOR_VERSION, &minor)
	if int(major) < attrs.Major || (int(major) == attrs.Major && int(minor) < attrs.Minor) {
		return nil, &gfx.ContextUnavailableError{
			Requested: attrs,
			Err:       fmt.Errorf("context reports version %d.%d", major, minor),
		}
	}

	d := &Device{
		info: gfx.Info{
			Vendor:   gl.GoStr(gl.GetString(gl.VENDOR)),
			Renderer: gl.GoStr(gl.GetString(gl.RENDERER)),
			Version:  gl.GoStr(gl.GetString(gl.VERSION)),
		},
		targets: make(map[gfx.Handle]uint32),
	}

	// Straight (non-premultiplied) output: fragments are written as-is.
	gl.Disable(gl.BLEND)
	gl.Disable(gl.DEPTH_TEST)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)

	return d, nil
}

// Info implements gfx.Device.
func (d *Device) Info() gfx.Info { return d.info }

// Live implements gfx.Counter.
func (d *Device) Live() gfx.Counts { return d.live }

func glStage(stage gfx.Stage) uint32 {
	if stage == gfx.StageFragment {
		return gl.FRAGMENT_SHADER
	}
	return gl.VERTEX_SHADER
}

func (d *Device) CreateShader(stage gfx.Stage, source string) gfx.Handle {
	shader := gl.CreateShader(glStage(stage))
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	d.live.Shaders++
	return gfx.Handle(shader)
}

func (d *Device) CompileShader(sh gfx.Handle) (bool, string) {
	gl.CompileShader(uint32(sh))

	var status int32
	gl.GetShaderiv(uint32(sh), gl.COMPILE_STATUS, &status)
	if status == gl.TRUE {
		return true, ""
	}

	var logLen int32
	gl.GetShaderiv(uint32(sh), gl.INFO_LOG_LENGTH, &logLen)
	if logLen <= 0 {
		return false, ""
	}
	log := make([]byte, logLen)
	gl.GetShaderInfoLog(uint32(sh), logLen, nil, &log[0])
	return false, gl.GoStr(&log[0])
}

func (d *Device) DeleteShader(sh gfx.Handle) {
	if sh == 0 {
		return
	}
	gl.DeleteShader(uint32(sh))
	d.live.Shaders--
}

func (d *Device) CreateProgram() gfx.Handle {
	d.live.Programs++
	return gfx.Handle(gl.CreateProgram())
}

func (d *Device) AttachShader(prog, sh gfx.Handle) {
	gl.AttachShader(uint32(prog), uint32(sh))
}

func (d *Device) LinkProgram(prog gfx.Handle) (bool, string) {
	gl.LinkProgram(uint32(prog))

	var status int32
	gl.GetProgramiv(uint32(prog), gl.LINK_STATUS, &status)
	if status == gl.TRUE {
		return true, ""
	}

	var logLen int32
	gl.GetProgramiv(uint32(prog), gl.INFO_LOG_LENGTH, &logLen)
	if logLen <= 0 {
		return false, ""
	}
	log := make([]byte, logLen)
	gl.GetProgramInfoLog(uint32(prog), logLen, nil, &log[0])
	return false, gl.GoStr(&log[0])
}

func (d *Device) DeleteProgram(prog gfx.Handle) {
	if prog == 0 {
		return
	}
	gl.DeleteProgram(uint32(prog))
	d.live.Programs--
}

func (d *Device) UseProgram(prog gfx.Handle) {
	gl.UseProgram(uint32(prog))
}

func (d *Device) AttribLocation(prog gfx.Handle, name string) int32 {
	return gl.GetAttribLocation(uint32(prog), gl.Str(name+"\x00"))
}

func (d *Device) UniformLocation(prog gfx.Handle, name string) int32 {
	return gl.GetUniformLocation(uint32(prog), gl.Str(name+"\x00"))
}

func (d *Device) Uniform1i(loc int32, v int32) {
	if loc >= 0 {
		gl.Uniform1i(loc, v)
	}
}

func (d *Device) Uniform1f(loc int32, v float32) {
	if loc >= 0 {
		gl.Uniform1f(loc, v)
	}
}

func (d *Device) Uniform3f(loc int32, x, y, z float32) {
	if loc >= 0 {
		gl.Uniform3f(loc, x, y, z)
	}
}

func (d *Device) CreateVertexArray() gfx.Handle {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	d.live.VertexArrays++
	return gfx.Handle(vao)
}

func (d *Device) BindVertexArray(vao gfx.Handle) {
	gl.BindVertexArray(uint32(vao))
}

func (d *Device) DeleteVertexArray(vao gfx.Handle) {
	if vao == 0 {
		return
	}
	v := uint32(vao)
	gl.DeleteVertexArrays(1, &v)
	d.live.VertexArrays--
}

func (d *Device) CreateStaticBuffer(data []float32) gfx.Handle {
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	if len(data) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.STATIC_DRAW)
	}
	d.live.Buffers++
	return gfx.Handle(vbo)
}

func (d *Device) DeleteBuffer(buf gfx.Handle) {
	if buf == 0 {
		return
	}
	b := uint32(buf)
	gl.DeleteBuffers(1, &b)
	d.live.Buffers--
}

func (d *Device) VertexAttrib(loc int32, size, strideBytes, offsetBytes int) {
	if loc < 0 {
		return
	}
	gl.EnableVertexAttribArray(uint32(loc))
	gl.VertexAttribPointerWithOffset(uint32(loc), int32(size), gl.FLOAT, false, int32(strideBytes), uintptr(offsetBytes))
}

func (d *Device) CreateTexture(width, height int, pix []byte) gfx.Handle {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)

	var ptr unsafe.Pointer
	if len(pix) > 0 {
		ptr = gl.Ptr(pix)
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, ptr)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	d.live.Textures++
	return gfx.Handle(tex)
}

func (d *Device) BindTexture(unit int, tex gfx.Handle) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, uint32(tex))
}

func (d *Device) DeleteTexture(tex gfx.Handle) {
	if tex == 0 {
		return
	}
	t := uint32(tex)
	gl.DeleteTextures(1, &t)
	d.live.Textures--
}

func (d *Device) CreateRenderTarget(width, height int) (gfx.Handle, error) {
	var prevFBO int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prevFBO)

	var fbo uint32
	gl.GenFramebuffers(1, &fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)

	var color uint32
	gl.GenTextures(1, &color)
	gl.BindTexture(gl.TEXTURE_2D, color)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, color, 0)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))
	if status != gl.FRAMEBUFFER_COMPLETE {
		gl.DeleteFramebuffers(1, &fbo)
		gl.DeleteTextures(1, &color)
		return 0, fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}

	d.targets[gfx.Handle(fbo)] = color
	d.live.RenderTargets++
	return gfx.Handle(fbo), nil
}

func (d *Device) BindRenderTarget(rt gfx.Handle) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(rt))
}

func (d *Device) RenderTargetTexture(rt gfx.Handle) gfx.Handle {
	return gfx.Handle(d.targets[rt])
}

func (d *Device) DeleteRenderTarget(rt gfx.Handle) {
	color, ok := d.targets[rt]
	if !ok {
		return
	}
	fbo := uint32(rt)
	gl.DeleteFramebuffers(1, &fbo)
	gl.DeleteTextures(1, &color)
	delete(d.targets, rt)
	d.live.RenderTargets--
}

func (d *Device) Viewport(x, y, width, height int) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

func (d *Device) ClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
}

func (d *Device) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (d *Device) DrawArrays(mode gfx.Primitive, first, count int) {
	glMode := uint32(gl.TRIANGLES)
	if mode == gfx.TriangleStrip {
		glMode = gl.TRIANGLE_STRIP
	}
	gl.DrawArrays(glMode, int32(first), int32(count))
}

func (d *Device) ReadPixels(x, y, width, height int) []byte {
	pix := make([]byte, width*height*4)
	if len(pix) == 0 {
		return pix
	}
	gl.ReadPixels(int32(x), int32(y), int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix))
	return pix
}
