// Package ui provides ImGui-based user interface components.
package ui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/backend"
	"github.com/AllenDang/cimgui-go/backend/sdlbackend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/pickalpha/internal/engine/gfx"
)

// Backend wraps the ImGui SDL backend. Its window owns the OpenGL context
// everything else renders with.
type Backend struct {
	backend backend.Backend[sdlbackend.SDLWindowFlags]
}

// NewBackend creates the window and its ImGui context.
func NewBackend(title string, width, height int32) (*Backend, error) {
	b := &Backend{}

	var err error
	b.backend, err = backend.CreateBackend(sdlbackend.NewSDLBackend())
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}

	b.backend.SetBgColor(imgui.NewVec4(0.1, 0.1, 0.12, 1.0))
	b.backend.CreateWindow(title, int(width), int(height))

	if err := gl.Init(); err != nil {
		b.Destroy()
		return nil, &gfx.ContextUnavailableError{
			Requested: gfx.ContextAttributes{Major: 4, Minor: 1},
			Err:       fmt.Errorf("init opengl: %w", err),
		}
	}

	return b, nil
}

// Run starts the main render loop.
func (b *Backend) Run(renderFunc func()) {
	b.backend.Run(renderFunc)
}

// Destroy closes the window and releases the ImGui context when Run will
// not be called. The loop sees the close request at once and tears down.
func (b *Backend) Destroy() {
	b.backend.SetShouldClose(true)
	b.backend.Run(func() {})
}

// SetWindowTitle updates the window title.
func (b *Backend) SetWindowTitle(title string) {
	b.backend.SetWindowTitle(title)
}

// GetViewport returns the main viewport work area.
func (b *Backend) GetViewport() (posX, posY, width, height float32) {
	viewport := imgui.MainViewport()
	workPos := viewport.WorkPos()
	workSize := viewport.WorkSize()
	return workPos.X, workPos.Y, workSize.X, workSize.Y
}

// FitSize scales a width x height image to fit avail, keeping its aspect
// ratio. Images smaller than avail are scaled by whole steps only when
// upscale is set.
func FitSize(width, height int, avail imgui.Vec2, upscale bool) imgui.Vec2 {
	if width <= 0 || height <= 0 || avail.X <= 0 || avail.Y <= 0 {
		return imgui.NewVec2(0, 0)
	}
	w, h := float32(width), float32(height)
	scale := min(avail.X/w, avail.Y/h)
	if scale >= 1 {
		if !upscale {
			scale = 1
		} else {
			scale = float32(int(scale))
		}
	}
	return imgui.NewVec2(w*scale, h*scale)
}

// GLImage draws a GL texture whose rows are bottom-up and returns where it
// landed in screen coordinates. bg shows through transparent pixels.
func GLImage(tex gfx.Handle, size imgui.Vec2, bg imgui.Vec4) gfx.Rect {
	pos := imgui.CursorScreenPos()
	texRef := imgui.NewTextureRefTextureID(imgui.TextureID(tex))
	imgui.ImageWithBgV(
		*texRef,
		size,
		imgui.NewVec2(0, 1), // UV flipped
		imgui.NewVec2(1, 0),
		bg,
		imgui.NewVec4(1, 1, 1, 1),
	)
	return gfx.Rect{X: float64(pos.X), Y: float64(pos.Y), W: float64(size.X), H: float64(size.Y)}
}
