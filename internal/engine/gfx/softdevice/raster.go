package softdevice

import (
	"math"

	"github.com/Faultbox/pickalpha/internal/engine/gfx"
)

// Fragment is the input to a FragmentFunc.
type Fragment struct {
	// X and Y are window coordinates of the pixel, origin bottom-left.
	X, Y int
	// Varyings are the interpolated vertex outputs.
	Varyings []float32

	dev  *Device
	prog *programObject
}

// Texture samples the texture bound to unit at (u, v) with bilinear
// filtering and clamp-to-edge wrapping. A missing texture samples as
// transparent black.
func (f *Fragment) Texture(unit int, u, v float32) [4]float32 {
	if unit < 0 || unit >= len(f.dev.units) {
		return [4]float32{}
	}
	h := f.dev.units[unit]
	t := f.dev.textures[h]
	if t == nil {
		t = f.dev.targets[h]
	}
	if t == nil {
		return [4]float32{}
	}
	return t.sample(float64(u), float64(v))
}

// Int returns an int uniform by name, or 0.
func (f *Fragment) Int(name string) int32 {
	loc := indexOf(f.prog.uniforms, name)
	return f.prog.ints[loc]
}

// Float returns a float uniform by name, or 0.
func (f *Fragment) Float(name string) float32 {
	v := f.vec(name, 1)
	return v[0]
}

// Vec3 returns a vec3 uniform by name, or zero.
func (f *Fragment) Vec3(name string) [3]float32 {
	v := f.vec(name, 3)
	return [3]float32{v[0], v[1], v[2]}
}

func (f *Fragment) vec(name string, n int) []float32 {
	out := make([]float32, n)
	loc := indexOf(f.prog.uniforms, name)
	copy(out, f.prog.floats[loc])
	return out
}

// snap removes the rounding noise barycentric interpolation leaves on
// coordinates that should land exactly on a texel center.
func snap(x float64) float64 {
	r := math.Round(x)
	if math.Abs(x-r) < 1e-6 {
		return r
	}
	return x
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (s *surface) texel(x, y int) [4]float64 {
	x = clampInt(x, 0, s.width-1)
	y = clampInt(y, 0, s.height-1)
	i := (y*s.width + x) * 4
	return [4]float64{
		float64(s.pix[i]) / 255,
		float64(s.pix[i+1]) / 255,
		float64(s.pix[i+2]) / 255,
		float64(s.pix[i+3]) / 255,
	}
}

func (s *surface) sample(u, v float64) [4]float32 {
	if s.width == 0 || s.height == 0 {
		return [4]float32{}
	}
	tx := snap(u*float64(s.width) - 0.5)
	ty := snap(v*float64(s.height) - 0.5)
	x0 := int(math.Floor(tx))
	y0 := int(math.Floor(ty))
	fx := tx - float64(x0)
	fy := ty - float64(y0)

	c00 := s.texel(x0, y0)
	c10 := s.texel(x0+1, y0)
	c01 := s.texel(x0, y0+1)
	c11 := s.texel(x0+1, y0+1)

	var out [4]float32
	for i := 0; i < 4; i++ {
		top := c00[i]*(1-fx) + c10[i]*fx
		bottom := c01[i]*(1-fx) + c11[i]*fx
		out[i] = float32(top*(1-fy) + bottom*fy)
	}
	return out
}

func toBytes(c [4]float32) [4]byte {
	var out [4]byte
	for i, v := range c {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		out[i] = byte(math.Round(float64(v) * 255))
	}
	return out
}

type vertex struct {
	x, y     float64 // window coordinates
	varyings []float32
}

// DrawArrays rasterizes count vertices starting at first into the bound
// render target using the program in use.
func (d *Device) DrawArrays(mode gfx.Primitive, first, count int) {
	prog := d.current()
	target := d.targets[d.target]
	if prog == nil || !prog.linked || target == nil {
		return
	}

	ptrs := d.boundAttribs()
	verts := make([]vertex, count)
	vx, vy, vw, vh := d.viewport[0], d.viewport[1], d.viewport[2], d.viewport[3]
	for i := 0; i < count; i++ {
		cx, cy, varyings := d.opts.Vertex(d.fetch(ptrs, first+i))
		verts[i] = vertex{
			x:        float64(vx) + (float64(cx)+1)/2*float64(vw),
			y:        float64(vy) + (float64(cy)+1)/2*float64(vh),
			varyings: varyings,
		}
	}

	var tris [][3]int
	switch mode {
	case gfx.TriangleStrip:
		for i := 0; i+2 < count; i++ {
			tris = append(tris, [3]int{i, i + 1, i + 2})
		}
	case gfx.Triangles:
		for i := 0; i+2 < count; i += 3 {
			tris = append(tris, [3]int{i, i + 1, i + 2})
		}
	}

	for _, tri := range tris {
		d.rasterize(prog, target, verts[tri[0]], verts[tri[1]], verts[tri[2]])
	}
	d.draws++
}

const edgeEpsilon = 1e-9

func edge(ax, ay, bx, by, px, py float64) float64 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func (d *Device) rasterize(prog *programObject, t *surface, a, b, c vertex) {
	area := edge(a.x, a.y, b.x, b.y, c.x, c.y)
	if area == 0 {
		return
	}

	minX := clampInt(int(math.Floor(math.Min(a.x, math.Min(b.x, c.x)))), 0, t.width-1)
	maxX := clampInt(int(math.Ceil(math.Max(a.x, math.Max(b.x, c.x)))), 0, t.width-1)
	minY := clampInt(int(math.Floor(math.Min(a.y, math.Min(b.y, c.y)))), 0, t.height-1)
	maxY := clampInt(int(math.Ceil(math.Max(a.y, math.Max(b.y, c.y)))), 0, t.height-1)

	n := len(a.varyings)
	frag := &Fragment{dev: d, prog: prog, Varyings: make([]float32, n)}

	for py := minY; py <= maxY; py++ {
		for px := minX; px <= maxX; px++ {
			cx := float64(px) + 0.5
			cy := float64(py) + 0.5
			w0 := edge(b.x, b.y, c.x, c.y, cx, cy) / area
			w1 := edge(c.x, c.y, a.x, a.y, cx, cy) / area
			w2 := edge(a.x, a.y, b.x, b.y, cx, cy) / area
			// Shared edges are inclusive on both sides; the overlap shades the
			// same value twice.
			if w0 < -edgeEpsilon || w1 < -edgeEpsilon || w2 < -edgeEpsilon {
				continue
			}

			for i := 0; i < n; i++ {
				var vb, vc float32
				if i < len(b.varyings) {
					vb = b.varyings[i]
				}
				if i < len(c.varyings) {
					vc = c.varyings[i]
				}
				frag.Varyings[i] = float32(w0*float64(a.varyings[i]) + w1*float64(vb) + w2*float64(vc))
			}
			frag.X, frag.Y = px, py

			px4 := toBytes(d.opts.Fragment(frag))
			i := (py*t.width + px) * 4
			copy(t.pix[i:i+4], px4[:])
		}
	}
}
