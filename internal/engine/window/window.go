// Package window handles SDL2 window and OpenGL context creation.
package window

import (
	"fmt"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/pickalpha/internal/engine/gfx"
	"github.com/Faultbox/pickalpha/internal/engine/gfx/gldevice"
)

func init() {
	// OpenGL calls must be made from the main thread
	runtime.LockOSThread()
}

// Config holds window configuration.
type Config struct {
	Title  string
	Width  int
	Height int
	// Hidden creates the window without showing it, for headless rendering
	// into offscreen targets.
	Hidden bool
}

// Window wraps an SDL2 window and its OpenGL 4.1 core context.
type Window struct {
	config    Config
	log       *zap.Logger
	sdlWindow *sdl.Window
	glContext sdl.GLContext
	device    *gldevice.Device
}

// New creates a new window with OpenGL context.
func New(cfg Config, log *zap.Logger) (*Window, error) {
	if log == nil {
		log = zap.NewNop()
	}
	w := &Window{
		config: cfg,
		log:    log,
	}

	log.Debug("initializing SDL2")
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	// Set OpenGL attributes BEFORE creating window
	// We want OpenGL 4.1 Core Profile (max supported on macOS)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 4)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 1)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)
	// The canvas keeps its alpha channel.
	sdl.GLSetAttribute(sdl.GL_ALPHA_SIZE, 8)

	flags := uint32(sdl.WINDOW_OPENGL)
	if cfg.Hidden {
		flags |= sdl.WINDOW_HIDDEN
	} else {
		flags |= sdl.WINDOW_RESIZABLE
	}

	var err error
	w.sdlWindow, err = sdl.CreateWindow(
		cfg.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(max(cfg.Width, 1)),
		int32(max(cfg.Height, 1)),
		flags,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	w.glContext, err = w.sdlWindow.GLCreateContext()
	if err != nil {
		w.sdlWindow.Destroy()
		sdl.Quit()
		return nil, &gfx.ContextUnavailableError{
			Requested: gfx.ContextAttributes{Major: 4, Minor: 1},
			Err:       fmt.Errorf("SDL_GL_CreateContext failed: %w", err),
		}
	}

	log.Info("window created",
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Bool("hidden", cfg.Hidden),
	)

	return w, nil
}

// Device returns the OpenGL device for this window's context, creating it
// on first use.
func (w *Window) Device(attrs gfx.ContextAttributes) (gfx.Device, error) {
	if w.device != nil {
		return w.device, nil
	}
	if err := w.sdlWindow.GLMakeCurrent(w.glContext); err != nil {
		return nil, &gfx.ContextUnavailableError{Requested: attrs, Err: err}
	}
	dev, err := gldevice.New(attrs)
	if err != nil {
		return nil, err
	}
	w.device = dev
	info := dev.Info()
	w.log.Info("OpenGL context ready",
		zap.String("vendor", info.Vendor),
		zap.String("renderer", info.Renderer),
		zap.String("version", info.Version),
		zap.Stringer("attributes", attrs),
	)
	return dev, nil
}

// Close destroys the window and cleans up SDL2.
func (w *Window) Close() {
	w.log.Debug("closing window")

	if w.glContext != nil {
		sdl.GLDeleteContext(w.glContext)
	}
	if w.sdlWindow != nil {
		w.sdlWindow.Destroy()
	}

	sdl.Quit()
}
