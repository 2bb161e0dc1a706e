package app

import (
	"github.com/Faultbox/pickalpha/internal/engine/gfx"
	"github.com/Faultbox/pickalpha/internal/engine/gfx/gldevice"
	"github.com/Faultbox/pickalpha/internal/pickalpha"
)

var _ pickalpha.Surface = (*canvasView)(nil)

// canvasView is the pick-alpha surface shown inside the ImGui window. The
// canvas lives in an offscreen target; the view only remembers where the
// last frame drew it so clicks can be mapped back to pixels.
type canvasView struct {
	newDevice func(gfx.ContextAttributes) (gfx.Device, error)
	device    gfx.Device

	width   int
	height  int
	display gfx.Rect
}

func newCanvasView() *canvasView {
	return &canvasView{
		newDevice: func(attrs gfx.ContextAttributes) (gfx.Device, error) {
			dev, err := gldevice.New(attrs)
			if err != nil {
				return nil, err
			}
			return dev, nil
		},
		width:  pickalpha.DefaultSurfaceWidth,
		height: pickalpha.DefaultSurfaceHeight,
	}
}

func (v *canvasView) Device(attrs gfx.ContextAttributes) (gfx.Device, error) {
	if v.device != nil {
		return v.device, nil
	}
	dev, err := v.newDevice(attrs)
	if err != nil {
		return nil, err
	}
	v.device = dev
	return dev, nil
}

func (v *canvasView) BackingSize() (int, int) {
	return v.width, v.height
}

func (v *canvasView) SetBackingSize(width, height int) {
	v.width, v.height = width, height
}

func (v *canvasView) DisplayRect() gfx.Rect {
	return v.display
}

// place records where the canvas was drawn this frame.
func (v *canvasView) place(r gfx.Rect) {
	v.display = r
}
