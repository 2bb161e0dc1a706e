// Package quad builds the full-screen quad the pick-alpha program draws.
package quad

import (
	"go.uber.org/zap"

	"github.com/Faultbox/pickalpha/internal/engine/gfx"
)

// Attribute names the vertex shader must declare.
const (
	PositionAttrib = "a_position"
	TexCoordAttrib = "a_texCoord"
)

const (
	floatSize = 4
	// Stride is the byte distance between vertices (vec2 position + vec2 texcoord).
	Stride = 4 * floatSize
	// TexCoordOffset is the byte offset of the texcoord within a vertex.
	TexCoordOffset = 2 * floatSize
	// VertexCount is the number of triangle-strip vertices.
	VertexCount = 4
)

// Vertices covers clip space [-1,1]x[-1,1] as a triangle strip.
var Vertices = [16]float32{
	// position  texCoord
	-1, -1, 0, 0,
	1, -1, 1, 0,
	-1, 1, 0, 1,
	1, 1, 1, 1,
}

// Quad is a vertex array bound to the quad buffer for one program.
type Quad struct {
	dev gfx.Device
	vao gfx.Handle
	vbo gfx.Handle
}

// New uploads the quad and binds its attributes by name against program.
// An attribute the program does not declare gets location -1 and is left
// unbound; that is a shader authoring error, not a runtime fault.
func New(dev gfx.Device, program gfx.Handle, log *zap.Logger) *Quad {
	if log == nil {
		log = zap.NewNop()
	}

	q := &Quad{dev: dev}
	q.vao = dev.CreateVertexArray()
	dev.BindVertexArray(q.vao)

	data := Vertices
	q.vbo = dev.CreateStaticBuffer(data[:])

	posLoc := dev.AttribLocation(program, PositionAttrib)
	dev.VertexAttrib(posLoc, 2, Stride, 0)

	texLoc := dev.AttribLocation(program, TexCoordAttrib)
	dev.VertexAttrib(texLoc, 2, Stride, TexCoordOffset)

	dev.BindVertexArray(0)

	if posLoc < 0 || texLoc < 0 {
		log.Debug("quad attribute missing from program",
			zap.Int32(PositionAttrib, posLoc),
			zap.Int32(TexCoordAttrib, texLoc),
		)
	}
	log.Debug("quad created",
		zap.Uint32("vao", uint32(q.vao)),
		zap.Uint32("vbo", uint32(q.vbo)),
	)
	return q
}

// Bind makes the quad's vertex array current.
func (q *Quad) Bind() {
	q.dev.BindVertexArray(q.vao)
}

// Draw issues the 4-vertex triangle strip. The quad must be bound.
func (q *Quad) Draw() {
	q.dev.DrawArrays(gfx.TriangleStrip, 0, VertexCount)
}

// Unbind clears the current vertex array.
func (q *Quad) Unbind() {
	q.dev.BindVertexArray(0)
}

// Destroy releases the vertex array and buffer.
func (q *Quad) Destroy() {
	if q.vao != 0 {
		q.dev.DeleteVertexArray(q.vao)
		q.vao = 0
	}
	if q.vbo != 0 {
		q.dev.DeleteBuffer(q.vbo)
		q.vbo = 0
	}
}
