// Package softdevice implements gfx.Device on the CPU.
//
// GLSL sources are checked structurally (declarations, braces, main, #error)
// and linked by matching stage interfaces, but shading is done by Go
// functions supplied through Options. Every live resource is tracked so
// callers can assert on leaks.
package softdevice

import (
	"fmt"
	"sort"

	"github.com/Faultbox/pickalpha/internal/engine/gfx"
)

// VertexFunc transforms one vertex. attrs holds the enabled attributes in
// location order. It returns the clip-space position (w is taken as 1) and
// the values to interpolate across the primitive.
type VertexFunc func(attrs [][]float32) (x, y float32, varyings []float32)

// FragmentFunc shades one fragment and returns straight RGBA in [0,1].
type FragmentFunc func(f *Fragment) [4]float32

// Options configure a Device.
type Options struct {
	// Vertex defaults to PassthroughVertex.
	Vertex VertexFunc
	// Fragment defaults to a function that samples unit 0 at the first two
	// varyings.
	Fragment FragmentFunc
	// MaxTextureSize bounds textures and render targets. Zero means 16384.
	MaxTextureSize int
}

// PassthroughVertex uses attribute 0 as the clip-space xy position and
// forwards every other attribute as varyings.
func PassthroughVertex(attrs [][]float32) (float32, float32, []float32) {
	if len(attrs) == 0 || len(attrs[0]) < 2 {
		return 0, 0, nil
	}
	var varyings []float32
	for _, a := range attrs[1:] {
		varyings = append(varyings, a...)
	}
	return attrs[0][0], attrs[0][1], varyings
}

func sampleFirstUnit(f *Fragment) [4]float32 {
	if len(f.Varyings) < 2 {
		return [4]float32{}
	}
	return f.Texture(0, f.Varyings[0], f.Varyings[1])
}

type shaderObject struct {
	stage    gfx.Stage
	source   string
	compiled bool
	decls    []declaration
}

type programObject struct {
	shaders  []gfx.Handle
	linked   bool
	attribs  []string
	uniforms []string
	ints     map[int32]int32
	floats   map[int32][]float32
}

type attribPointer struct {
	buffer gfx.Handle
	size   int
	stride int
	offset int
}

type vertexArray struct {
	attribs map[int32]attribPointer
}

type surface struct {
	width  int
	height int
	pix    []byte // bottom-up RGBA8
}

var (
	_ gfx.Device  = (*Device)(nil)
	_ gfx.Counter = (*Device)(nil)
)

// Device is a CPU implementation of gfx.Device.
type Device struct {
	opts Options
	next gfx.Handle

	shaders  map[gfx.Handle]*shaderObject
	programs map[gfx.Handle]*programObject
	buffers  map[gfx.Handle][]float32
	vaos     map[gfx.Handle]*vertexArray
	textures map[gfx.Handle]*surface
	targets  map[gfx.Handle]*surface

	program     gfx.Handle
	vao         gfx.Handle
	arrayBuffer gfx.Handle
	units       [16]gfx.Handle
	target      gfx.Handle
	viewport    [4]int
	clear       [4]float32

	draws int
}

// New returns a device with an empty default target.
func New(opts Options) *Device {
	if opts.Vertex == nil {
		opts.Vertex = PassthroughVertex
	}
	if opts.Fragment == nil {
		opts.Fragment = sampleFirstUnit
	}
	if opts.MaxTextureSize <= 0 {
		opts.MaxTextureSize = 16384
	}
	return &Device{
		opts:     opts,
		shaders:  make(map[gfx.Handle]*shaderObject),
		programs: make(map[gfx.Handle]*programObject),
		buffers:  make(map[gfx.Handle][]float32),
		vaos:     make(map[gfx.Handle]*vertexArray),
		textures: make(map[gfx.Handle]*surface),
		targets:  make(map[gfx.Handle]*surface),
	}
}

func (d *Device) alloc() gfx.Handle {
	d.next++
	return d.next
}

// Info implements gfx.Device.
func (d *Device) Info() gfx.Info {
	return gfx.Info{Vendor: "pickalpha", Renderer: "software", Version: "4.1 software"}
}

// Live implements gfx.Counter.
func (d *Device) Live() gfx.Counts {
	return gfx.Counts{
		Shaders:       len(d.shaders),
		Programs:      len(d.programs),
		Buffers:       len(d.buffers),
		VertexArrays:  len(d.vaos),
		Textures:      len(d.textures),
		RenderTargets: len(d.targets),
	}
}

// Draws returns how many draw calls produced fragments.
func (d *Device) Draws() int { return d.draws }

func (d *Device) CreateShader(stage gfx.Stage, source string) gfx.Handle {
	h := d.alloc()
	d.shaders[h] = &shaderObject{stage: stage, source: source}
	return h
}

func (d *Device) CompileShader(sh gfx.Handle) (bool, string) {
	s, ok := d.shaders[sh]
	if !ok {
		return false, fmt.Sprintf("invalid shader %d", sh)
	}
	decls, err := checkSource(s.stage, s.source)
	if err != nil {
		s.compiled = false
		return false, err.Error()
	}
	s.compiled = true
	s.decls = decls
	return true, ""
}

func (d *Device) DeleteShader(sh gfx.Handle) {
	delete(d.shaders, sh)
}

func (d *Device) CreateProgram() gfx.Handle {
	h := d.alloc()
	d.programs[h] = &programObject{
		ints:   make(map[int32]int32),
		floats: make(map[int32][]float32),
	}
	return h
}

func (d *Device) AttachShader(prog, sh gfx.Handle) {
	if p, ok := d.programs[prog]; ok {
		p.shaders = append(p.shaders, sh)
	}
}

func (d *Device) LinkProgram(prog gfx.Handle) (bool, string) {
	p, ok := d.programs[prog]
	if !ok {
		return false, fmt.Sprintf("invalid program %d", prog)
	}
	p.linked = false

	var vert, frag *shaderObject
	for _, h := range p.shaders {
		s, ok := d.shaders[h]
		if !ok {
			continue
		}
		if !s.compiled {
			return false, "error: linking with uncompiled shader"
		}
		switch s.stage {
		case gfx.StageVertex:
			vert = s
		case gfx.StageFragment:
			frag = s
		}
	}
	if vert == nil {
		return false, "error: program lacks a vertex shader"
	}
	if frag == nil {
		return false, "error: program lacks a fragment shader"
	}

	outputs := make(map[string]string)
	var attribs []string
	uniforms := make(map[string]string)
	var uniformOrder []string
	addUniform := func(dcl declaration) error {
		if typ, seen := uniforms[dcl.name]; seen {
			if typ != dcl.typ {
				return fmt.Errorf("error: uniform `%s' declared as type `%s' and type `%s'", dcl.name, typ, dcl.typ)
			}
			return nil
		}
		uniforms[dcl.name] = dcl.typ
		uniformOrder = append(uniformOrder, dcl.name)
		return nil
	}

	for _, dcl := range vert.decls {
		switch dcl.qualifier {
		case "in":
			attribs = append(attribs, dcl.name)
		case "out":
			outputs[dcl.name] = dcl.typ
		case "uniform":
			if err := addUniform(dcl); err != nil {
				return false, err.Error()
			}
		}
	}
	for _, dcl := range frag.decls {
		switch dcl.qualifier {
		case "in":
			typ, ok := outputs[dcl.name]
			if !ok {
				return false, fmt.Sprintf("error: fragment shader input `%s' has no matching output in the previous stage", dcl.name)
			}
			if typ != dcl.typ {
				return false, fmt.Sprintf("error: `%s' declared as type `%s' in the vertex shader and `%s' in the fragment shader", dcl.name, typ, dcl.typ)
			}
		case "uniform":
			if err := addUniform(dcl); err != nil {
				return false, err.Error()
			}
		}
	}

	p.attribs = attribs
	p.uniforms = uniformOrder
	p.linked = true
	return true, ""
}

func (d *Device) DeleteProgram(prog gfx.Handle) {
	delete(d.programs, prog)
	if d.program == prog {
		d.program = 0
	}
}

func (d *Device) UseProgram(prog gfx.Handle) {
	d.program = prog
}

func indexOf(names []string, name string) int32 {
	for i, n := range names {
		if n == name {
			return int32(i)
		}
	}
	return -1
}

func (d *Device) AttribLocation(prog gfx.Handle, name string) int32 {
	p, ok := d.programs[prog]
	if !ok || !p.linked {
		return -1
	}
	return indexOf(p.attribs, name)
}

func (d *Device) UniformLocation(prog gfx.Handle, name string) int32 {
	p, ok := d.programs[prog]
	if !ok || !p.linked {
		return -1
	}
	return indexOf(p.uniforms, name)
}

func (d *Device) current() *programObject {
	return d.programs[d.program]
}

func (d *Device) Uniform1i(loc int32, v int32) {
	if p := d.current(); p != nil && loc >= 0 {
		p.ints[loc] = v
	}
}

func (d *Device) Uniform1f(loc int32, v float32) {
	if p := d.current(); p != nil && loc >= 0 {
		p.floats[loc] = []float32{v}
	}
}

func (d *Device) Uniform3f(loc int32, x, y, z float32) {
	if p := d.current(); p != nil && loc >= 0 {
		p.floats[loc] = []float32{x, y, z}
	}
}

func (d *Device) CreateVertexArray() gfx.Handle {
	h := d.alloc()
	d.vaos[h] = &vertexArray{attribs: make(map[int32]attribPointer)}
	d.vao = h
	return h
}

func (d *Device) BindVertexArray(vao gfx.Handle) {
	d.vao = vao
}

func (d *Device) DeleteVertexArray(vao gfx.Handle) {
	delete(d.vaos, vao)
	if d.vao == vao {
		d.vao = 0
	}
}

func (d *Device) CreateStaticBuffer(data []float32) gfx.Handle {
	h := d.alloc()
	d.buffers[h] = append([]float32(nil), data...)
	d.arrayBuffer = h
	return h
}

func (d *Device) DeleteBuffer(buf gfx.Handle) {
	delete(d.buffers, buf)
	if d.arrayBuffer == buf {
		d.arrayBuffer = 0
	}
}

func (d *Device) VertexAttrib(loc int32, size, strideBytes, offsetBytes int) {
	va, ok := d.vaos[d.vao]
	if !ok || loc < 0 {
		return
	}
	va.attribs[loc] = attribPointer{
		buffer: d.arrayBuffer,
		size:   size,
		stride: strideBytes,
		offset: offsetBytes,
	}
}

func (d *Device) CreateTexture(width, height int, pix []byte) gfx.Handle {
	h := d.alloc()
	s := &surface{width: width, height: height, pix: make([]byte, width*height*4)}
	copy(s.pix, pix)
	d.textures[h] = s
	return h
}

func (d *Device) BindTexture(unit int, tex gfx.Handle) {
	if unit >= 0 && unit < len(d.units) {
		d.units[unit] = tex
	}
}

func (d *Device) DeleteTexture(tex gfx.Handle) {
	delete(d.textures, tex)
	for i, t := range d.units {
		if t == tex {
			d.units[i] = 0
		}
	}
}

func (d *Device) CreateRenderTarget(width, height int) (gfx.Handle, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("render target size %dx%d invalid", width, height)
	}
	if width > d.opts.MaxTextureSize || height > d.opts.MaxTextureSize {
		return 0, fmt.Errorf("render target size %dx%d exceeds %d", width, height, d.opts.MaxTextureSize)
	}
	h := d.alloc()
	d.targets[h] = &surface{width: width, height: height, pix: make([]byte, width*height*4)}
	return h, nil
}

func (d *Device) BindRenderTarget(rt gfx.Handle) {
	d.target = rt
}

// RenderTargetTexture returns rt itself; targets can be sampled directly.
func (d *Device) RenderTargetTexture(rt gfx.Handle) gfx.Handle {
	if _, ok := d.targets[rt]; ok {
		return rt
	}
	return 0
}

func (d *Device) DeleteRenderTarget(rt gfx.Handle) {
	delete(d.targets, rt)
	if d.target == rt {
		d.target = 0
	}
}

func (d *Device) Viewport(x, y, width, height int) {
	d.viewport = [4]int{x, y, width, height}
}

func (d *Device) ClearColor(r, g, b, a float32) {
	d.clear = [4]float32{r, g, b, a}
}

func (d *Device) Clear() {
	t := d.targets[d.target]
	if t == nil {
		return
	}
	px := toBytes(d.clear)
	for i := 0; i < len(t.pix); i += 4 {
		copy(t.pix[i:i+4], px[:])
	}
}

func (d *Device) ReadPixels(x, y, width, height int) []byte {
	out := make([]byte, width*height*4)
	t := d.targets[d.target]
	if t == nil {
		return out
	}
	for row := 0; row < height; row++ {
		sy := y + row
		if sy < 0 || sy >= t.height {
			continue
		}
		for col := 0; col < width; col++ {
			sx := x + col
			if sx < 0 || sx >= t.width {
				continue
			}
			src := (sy*t.width + sx) * 4
			dst := (row*width + col) * 4
			copy(out[dst:dst+4], t.pix[src:src+4])
		}
	}
	return out
}

// boundAttribs returns the enabled attribute pointers of the bound vertex
// array in location order.
func (d *Device) boundAttribs() []attribPointer {
	va := d.vaos[d.vao]
	if va == nil {
		return nil
	}
	locs := make([]int, 0, len(va.attribs))
	for loc := range va.attribs {
		locs = append(locs, int(loc))
	}
	sort.Ints(locs)
	ptrs := make([]attribPointer, 0, len(locs))
	for _, loc := range locs {
		ptrs = append(ptrs, va.attribs[int32(loc)])
	}
	return ptrs
}

func (d *Device) fetch(ptrs []attribPointer, index int) [][]float32 {
	attrs := make([][]float32, len(ptrs))
	for i, p := range ptrs {
		buf := d.buffers[p.buffer]
		stride := p.stride
		if stride == 0 {
			stride = p.size * 4
		}
		start := (p.offset + index*stride) / 4
		vals := make([]float32, p.size)
		for c := 0; c < p.size; c++ {
			if start+c < len(buf) {
				vals[c] = buf[start+c]
			}
		}
		attrs[i] = vals
	}
	return attrs
}
