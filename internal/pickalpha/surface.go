package pickalpha

import (
	stdmath "math"

	"github.com/Faultbox/pickalpha/internal/engine/gfx"
)

// Surface is the externally owned drawing surface a controller renders for.
// The controller sets its backing (pixel) size; the owner decides where and
// how large it is displayed.
type Surface interface {
	// Device returns a context with the requested attributes or a
	// *gfx.ContextUnavailableError.
	Device(attrs gfx.ContextAttributes) (gfx.Device, error)
	BackingSize() (width, height int)
	SetBackingSize(width, height int)
	// DisplayRect is where the surface is shown, in the same coordinates
	// as the pointer positions passed to PickAt.
	DisplayRect() gfx.Rect
}

// MapToPixel converts a display-space point to a pixel index of a
// width x height backing store shown at r. The result is floored and
// clamped to the backing store.
func MapToPixel(r gfx.Rect, width, height int, x, y float64) (px, py int) {
	u, v := 0.0, 0.0
	if r.W > 0 {
		u = (x - r.X) / r.W
	}
	if r.H > 0 {
		v = (y - r.Y) / r.H
	}
	px = clampIndex(int(stdmath.Floor(u*float64(width))), width)
	py = clampIndex(int(stdmath.Floor(v*float64(height))), height)
	return px, py
}

func clampIndex(i, n int) int {
	if i < 0 || n <= 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Default backing size of a fresh surface, matching an unsized canvas.
const (
	DefaultSurfaceWidth  = 300
	DefaultSurfaceHeight = 150
)

var _ Surface = (*OffscreenSurface)(nil)

// OffscreenSurface is a Surface with no window behind it. Unless a display
// rect is set it is displayed 1:1 at the origin.
type OffscreenSurface struct {
	newDevice func(gfx.ContextAttributes) (gfx.Device, error)
	device    gfx.Device

	width   int
	height  int
	display *gfx.Rect
}

// NewOffscreenSurface returns a surface whose context is created on first
// use by newDevice.
func NewOffscreenSurface(newDevice func(gfx.ContextAttributes) (gfx.Device, error)) *OffscreenSurface {
	return &OffscreenSurface{
		newDevice: newDevice,
		width:     DefaultSurfaceWidth,
		height:    DefaultSurfaceHeight,
	}
}

// Device implements Surface. The device is created once and reused.
func (s *OffscreenSurface) Device(attrs gfx.ContextAttributes) (gfx.Device, error) {
	if s.device != nil {
		return s.device, nil
	}
	if s.newDevice == nil {
		return nil, &gfx.ContextUnavailableError{Requested: attrs}
	}
	dev, err := s.newDevice(attrs)
	if err != nil {
		return nil, err
	}
	s.device = dev
	return dev, nil
}

// BackingSize implements Surface.
func (s *OffscreenSurface) BackingSize() (int, int) {
	return s.width, s.height
}

// SetBackingSize implements Surface.
func (s *OffscreenSurface) SetBackingSize(width, height int) {
	s.width = width
	s.height = height
}

// DisplayRect implements Surface.
func (s *OffscreenSurface) DisplayRect() gfx.Rect {
	if s.display != nil {
		return *s.display
	}
	return gfx.Rect{W: float64(s.width), H: float64(s.height)}
}

// SetDisplayRect fixes where the surface is displayed, independent of its
// backing size.
func (s *OffscreenSurface) SetDisplayRect(r gfx.Rect) {
	s.display = &r
}
