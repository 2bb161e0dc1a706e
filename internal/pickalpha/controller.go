// Package pickalpha implements the pick-alpha widget: an image rendered
// through a shader that knocks out every pixel within a tolerance of a
// color picked from the image itself.
package pickalpha

import (
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/Faultbox/pickalpha/internal/engine/framebuffer"
	"github.com/Faultbox/pickalpha/internal/engine/gfx"
	"github.com/Faultbox/pickalpha/internal/engine/quad"
	"github.com/Faultbox/pickalpha/internal/engine/shader"
	"github.com/Faultbox/pickalpha/internal/engine/texture"
	"github.com/Faultbox/pickalpha/internal/export"
	"github.com/Faultbox/pickalpha/internal/pickalpha/shaders"
	"github.com/Faultbox/pickalpha/pkg/math"
)

// ContextAttributes is what Initialize asks the surface for: straight
// alpha and a drawing buffer that stays readable after each render.
var ContextAttributes = gfx.ContextAttributes{
	Major:                 4,
	Minor:                 1,
	PremultipliedAlpha:    false,
	PreserveDrawingBuffer: true,
}

// Controller owns the widget state and every GPU resource behind it. All
// methods must be called from the thread that owns the surface's context.
type Controller struct {
	surface     Surface
	log         *zap.Logger
	vertexSrc   string
	fragmentSrc string
	downloader  export.Downloader

	lifecycle Lifecycle
	state     PickState

	dev     gfx.Device
	program gfx.Handle
	quad    *quad.Quad
	canvas  *framebuffer.Framebuffer
	texture gfx.Handle
	pixels  *image.NRGBA

	uImage     int32
	uPickColor int32
	uTolerance int32
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// WithTolerance sets the initial tolerance.
func WithTolerance(t float32) Option {
	return func(c *Controller) {
		c.state.Tolerance = math.Clamp01(t)
	}
}

// WithShaderSources replaces the embedded highlight shaders. Empty strings
// keep the embedded source for that stage.
func WithShaderSources(vertex, fragment string) Option {
	return func(c *Controller) {
		if vertex != "" {
			c.vertexSrc = vertex
		}
		if fragment != "" {
			c.fragmentSrc = fragment
		}
	}
}

// WithDownloader sets where Export sends the PNG. The default writes to
// the working directory.
func WithDownloader(d export.Downloader) Option {
	return func(c *Controller) {
		if d != nil {
			c.downloader = d
		}
	}
}

// New creates an uninitialized controller for surface.
func New(surface Surface, opts ...Option) *Controller {
	c := &Controller{
		surface:     surface,
		log:         zap.NewNop(),
		vertexSrc:   shaders.VertexShader,
		fragmentSrc: shaders.FragmentShader,
		downloader:  export.DirDownloader{Dir: "."},
		state:       PickState{Tolerance: DefaultTolerance},
		uImage:      -1,
		uPickColor:  -1,
		uTolerance:  -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lifecycle returns the current lifecycle state.
func (c *Controller) Lifecycle() Lifecycle { return c.lifecycle }

// State returns a copy of the pick state.
func (c *Controller) State() PickState { return c.state }

// DisplayColor formats the current pick color as "rgb(r, g, b)".
func (c *Controller) DisplayColor() string { return c.state.DisplayColor() }

// Pixels returns the CPU copy of the loaded image, or nil.
func (c *Controller) Pixels() *image.NRGBA { return c.pixels }

// CanvasTexture returns the texture the canvas renders into, for display by
// the owner, or 0 before initialization.
func (c *Controller) CanvasTexture() gfx.Handle {
	if c.canvas == nil {
		return 0
	}
	return c.canvas.ColorTexture()
}

// Initialize acquires the graphics context and builds the program, quad
// and canvas. Context failures are returned as *gfx.ContextUnavailableError
// and shader failures as *shader.ShaderCompileError or
// *shader.ProgramLinkError; all of them leave the controller unusable.
// Initializing an initialized controller does nothing.
func (c *Controller) Initialize() error {
	if c.lifecycle == Ready || c.lifecycle == ImageLoaded {
		return nil
	}

	dev, err := c.surface.Device(ContextAttributes)
	if err != nil {
		var unavailable *gfx.ContextUnavailableError
		if !errors.As(err, &unavailable) {
			err = &gfx.ContextUnavailableError{Requested: ContextAttributes, Err: err}
		}
		return err
	}

	program, err := shader.CompileProgram(dev, c.vertexSrc, c.fragmentSrc)
	if err != nil {
		return fmt.Errorf("building highlight program: %w", err)
	}

	width, height := c.surface.BackingSize()
	canvas, err := framebuffer.New(dev, width, height)
	if err != nil {
		dev.DeleteProgram(program)
		return fmt.Errorf("creating canvas: %w", err)
	}

	c.dev = dev
	c.program = program
	c.quad = quad.New(dev, program, c.log)
	c.canvas = canvas
	c.uImage = shader.Uniform(dev, program, shaders.UniformImage)
	c.uPickColor = shader.Uniform(dev, program, shaders.UniformPickColor)
	c.uTolerance = shader.Uniform(dev, program, shaders.UniformTolerance)
	c.lifecycle = Ready

	info := dev.Info()
	c.log.Info("pick-alpha initialized",
		zap.String("renderer", info.Renderer),
		zap.String("version", info.Version),
		zap.Int("width", width),
		zap.Int("height", height),
	)
	return nil
}

// LoadImage makes img the source image: the surface is resized to the
// image's pixel size, the CPU buffer and GPU texture are rebuilt from it
// and the result is rendered. It does nothing before Initialize.
func (c *Controller) LoadImage(img image.Image) error {
	if c.dev == nil || c.program == 0 {
		c.log.Debug("load ignored: not initialized")
		return nil
	}

	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width <= 0 || height <= 0 {
		return fmt.Errorf("image has no pixels (%dx%d)", width, height)
	}

	if err := c.canvas.Resize(width, height); err != nil {
		return fmt.Errorf("resizing canvas: %w", err)
	}
	c.surface.SetBackingSize(width, height)

	c.pixels = texture.SourcePixels(img)

	// Release before create keeps at most one extra image in flight.
	if c.texture != 0 {
		c.dev.DeleteTexture(c.texture)
		c.texture = 0
	}
	c.texture = c.dev.CreateTexture(width, height, texture.FlipRows(c.pixels.Pix, width, height))

	c.state.HasImage = true
	c.lifecycle = ImageLoaded
	c.log.Debug("image loaded", zap.Int("width", width), zap.Int("height", height))

	c.Render()
	return nil
}

// Render draws the current state into the canvas. It does nothing until an
// image is loaded. With unchanged state the output is identical.
func (c *Controller) Render() {
	if c.dev == nil || c.program == 0 || c.quad == nil || c.texture == 0 || c.canvas == nil {
		return
	}

	c.canvas.Bind()
	c.canvas.Clear(0, 0, 0, 0)

	c.dev.UseProgram(c.program)
	c.quad.Bind()
	c.dev.BindTexture(0, c.texture)

	col := c.state.Color
	c.dev.Uniform1i(c.uImage, 0)
	c.dev.Uniform3f(c.uPickColor, col.X, col.Y, col.Z)
	c.dev.Uniform1f(c.uTolerance, c.state.Tolerance)

	c.quad.Draw()
	c.quad.Unbind()
	c.canvas.Unbind()
}

// PickAt samples the source pixel under the display-space point (x, y),
// makes it the pick color and re-renders. The point is mapped through the
// ratio of the surface's display size to its backing size, so picking is
// correct when the canvas is shown scaled. It reports the pixel used and
// false when no image is loaded.
func (c *Controller) PickAt(x, y float64) (image.Point, bool) {
	if c.pixels == nil {
		return image.Point{}, false
	}

	b := c.pixels.Bounds()
	px, py := MapToPixel(c.surface.DisplayRect(), b.Dx(), b.Dy(), x, y)
	p := c.pixels.NRGBAAt(px, py)

	c.state.Color = math.RGB8(p.R, p.G, p.B)
	c.log.Debug("color picked",
		zap.Int("x", px),
		zap.Int("y", py),
		zap.String("color", c.state.DisplayColor()),
	)

	c.Render()
	return image.Pt(px, py), true
}

// SetTolerance clamps t to [0,1], stores it and re-renders.
func (c *Controller) SetTolerance(t float32) {
	c.state.Tolerance = math.Clamp01(t)
	c.Render()
}

// SetPickColor sets the pick color directly, clamped to [0,1], and
// re-renders.
func (c *Controller) SetPickColor(col math.Vec3) {
	c.state.Color = col.Clamp01()
	c.Render()
}

// Snapshot renders and returns the canvas content, or nil before
// initialization.
func (c *Controller) Snapshot() (*image.NRGBA, error) {
	if c.canvas == nil {
		return nil, nil
	}
	c.Render()
	width, height := c.canvas.Size()
	return export.FromPixels(c.canvas.ReadPixels(), width, height)
}

// Export renders the current state, encodes the canvas as PNG and hands it
// to the downloader as export.ResultFilename. It returns where the file
// went, or "" when there is no canvas yet.
func (c *Controller) Export() (string, error) {
	img, err := c.Snapshot()
	if err != nil {
		return "", fmt.Errorf("reading canvas: %w", err)
	}
	if img == nil {
		return "", nil
	}

	data, err := export.EncodePNG(img)
	if err != nil {
		return "", err
	}
	location, err := c.downloader.Download(export.ResultFilename, data)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", export.ResultFilename, err)
	}

	c.log.Info("result exported", zap.String("location", location), zap.Int("bytes", len(data)))
	return location, nil
}

// Dispose releases the program, quad, texture and canvas and drops the CPU
// buffer. The pick state is kept; Initialize may be called again.
func (c *Controller) Dispose() {
	if c.texture != 0 {
		c.dev.DeleteTexture(c.texture)
		c.texture = 0
	}
	if c.canvas != nil {
		c.canvas.Destroy()
		c.canvas = nil
	}
	if c.quad != nil {
		c.quad.Destroy()
		c.quad = nil
	}
	if c.program != 0 {
		c.dev.DeleteProgram(c.program)
		c.program = 0
	}
	c.pixels = nil
	c.dev = nil
	c.state.HasImage = false
	c.uImage, c.uPickColor, c.uTolerance = -1, -1, -1

	if c.lifecycle != Uninitialized {
		c.lifecycle = Disposed
		c.log.Debug("pick-alpha disposed")
	}
}
