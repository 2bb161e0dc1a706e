// Package framebuffer provides an offscreen color target that keeps its
// contents between frames, the way a canvas with a preserved drawing buffer
// does.
package framebuffer

import (
	"fmt"

	"github.com/Faultbox/pickalpha/internal/engine/gfx"
)

// Framebuffer manages an offscreen RGBA8 render target.
type Framebuffer struct {
	dev    gfx.Device
	target gfx.Handle
	width  int
	height int
}

// New creates a new framebuffer with the specified dimensions.
func New(dev gfx.Device, width, height int) (*Framebuffer, error) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	fb := &Framebuffer{
		dev:    dev,
		width:  width,
		height: height,
	}

	if err := fb.create(); err != nil {
		return nil, fmt.Errorf("creating framebuffer: %w", err)
	}

	return fb, nil
}

func (fb *Framebuffer) create() error {
	target, err := fb.dev.CreateRenderTarget(fb.width, fb.height)
	if err != nil {
		return err
	}
	fb.target = target
	return nil
}

// Bind makes this framebuffer the current render target and covers it with
// the viewport.
func (fb *Framebuffer) Bind() {
	fb.dev.BindRenderTarget(fb.target)
	fb.dev.Viewport(0, 0, fb.width, fb.height)
}

// Unbind restores the default render target.
func (fb *Framebuffer) Unbind() {
	fb.dev.BindRenderTarget(0)
}

// Clear clears the color buffer with the specified color. The framebuffer
// must be bound.
func (fb *Framebuffer) Clear(r, g, b, a float32) {
	fb.dev.ClearColor(r, g, b, a)
	fb.dev.Clear()
}

// ColorTexture returns the texture holding the rendered color.
func (fb *Framebuffer) ColorTexture() gfx.Handle {
	return fb.dev.RenderTargetTexture(fb.target)
}

// Size returns the framebuffer dimensions.
func (fb *Framebuffer) Size() (width, height int) {
	return fb.width, fb.height
}

// Resize reallocates the target if the dimensions have changed. The new
// target is created before the previous one is released, so a failed
// resize leaves the framebuffer as it was.
func (fb *Framebuffer) Resize(width, height int) error {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if width == fb.width && height == fb.height && fb.target != 0 {
		return nil
	}

	target, err := fb.dev.CreateRenderTarget(width, height)
	if err != nil {
		return err
	}
	fb.release()
	fb.target = target
	fb.width = width
	fb.height = height
	return nil
}

// ReadPixels reads the color buffer as bottom-up RGBA rows.
func (fb *Framebuffer) ReadPixels() []byte {
	fb.dev.BindRenderTarget(fb.target)
	pixels := fb.dev.ReadPixels(0, 0, fb.width, fb.height)
	fb.dev.BindRenderTarget(0)
	return pixels
}

func (fb *Framebuffer) release() {
	if fb.target != 0 {
		fb.dev.DeleteRenderTarget(fb.target)
		fb.target = 0
	}
}

// Destroy releases the render target.
func (fb *Framebuffer) Destroy() {
	fb.release()
}
