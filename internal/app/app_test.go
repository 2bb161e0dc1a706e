package app

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Faultbox/pickalpha/internal/config"
	"github.com/Faultbox/pickalpha/internal/engine/gfx"
	"github.com/Faultbox/pickalpha/internal/pickalpha"
	"github.com/Faultbox/pickalpha/internal/pickalpha/shaders"
)

func testView() *canvasView {
	v := newCanvasView()
	dev := shaders.NewSoftDevice()
	v.newDevice = func(gfx.ContextAttributes) (gfx.Device, error) { return dev, nil }
	return v
}

func TestCanvasViewDefaults(t *testing.T) {
	v := newCanvasView()
	if w, h := v.BackingSize(); w != pickalpha.DefaultSurfaceWidth || h != pickalpha.DefaultSurfaceHeight {
		t.Errorf("BackingSize = %dx%d", w, h)
	}
	if r := v.DisplayRect(); r != (gfx.Rect{}) {
		t.Errorf("DisplayRect = %+v before the first frame", r)
	}
}

func TestCanvasViewCachesDevice(t *testing.T) {
	v := testView()
	a, err := v.Device(pickalpha.ContextAttributes)
	if err != nil {
		t.Fatalf("Device: %v", err)
	}
	b, err := v.Device(pickalpha.ContextAttributes)
	if err != nil {
		t.Fatalf("Device: %v", err)
	}
	if a != b {
		t.Error("Device created a second context")
	}
}

func TestCanvasViewDeviceError(t *testing.T) {
	v := newCanvasView()
	cause := &gfx.ContextUnavailableError{Requested: pickalpha.ContextAttributes}
	v.newDevice = func(gfx.ContextAttributes) (gfx.Device, error) { return nil, cause }

	_, err := v.Device(pickalpha.ContextAttributes)
	if !errors.Is(err, cause) {
		t.Errorf("Device error = %v", err)
	}
	if v.device != nil {
		t.Error("failed device was cached")
	}
}

// TestPickThroughView drives the controller the way the render loop does:
// the image is drawn scaled at an offset and clicked in screen space.
func TestPickThroughView(t *testing.T) {
	v := testView()
	c := pickalpha.New(v, pickalpha.WithTolerance(0))
	if err := c.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer c.Dispose()

	img := checker(4, 4)
	if err := c.LoadImage(img); err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	v.place(gfx.Rect{X: 300, Y: 40, W: 400, H: 400})

	p, ok := c.PickAt(300+350, 40+50)
	if !ok {
		t.Fatal("PickAt did not pick")
	}
	if p.X != 3 || p.Y != 0 {
		t.Errorf("picked %v, want (3,0)", p)
	}
	if got := c.DisplayColor(); got != "rgb(255, 255, 255)" {
		t.Errorf("DisplayColor = %q", got)
	}
}

func TestPendingKeepsLatest(t *testing.T) {
	var p pending[string]
	if _, ok := p.take(); ok {
		t.Fatal("empty queue returned a value")
	}
	p.put("a.png")
	p.put("b.png")
	v, ok := p.take()
	if !ok || v != "b.png" {
		t.Errorf("take = %q, %v", v, ok)
	}
	if _, ok := p.take(); ok {
		t.Error("value taken twice")
	}
}

func TestPendingConcurrent(t *testing.T) {
	var p pending[int]
	var wg sync.WaitGroup
	for i := 1; i <= 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.put(i)
		}()
	}
	wg.Wait()
	v, ok := p.take()
	if !ok || v < 1 || v > 8 {
		t.Errorf("take = %d, %v", v, ok)
	}
}

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{0, 0, 0, 255}
			if (x+y)%2 == 1 {
				c = color.NRGBA{255, 255, 255, 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

type fakeBackend struct {
	destroyed int
}

func (b *fakeBackend) Run(func())                                        {}
func (b *fakeBackend) SetWindowTitle(string)                             {}
func (b *fakeBackend) GetViewport() (float32, float32, float32, float32) { return 0, 0, 800, 600 }
func (b *fakeBackend) Destroy()                                          { b.destroyed++ }

func fakeOpener(b *fakeBackend, opened *int) func(string, int32, int32) (windowBackend, error) {
	return func(string, int32, int32) (windowBackend, error) {
		*opened++
		return b, nil
	}
}

func TestNewApp(t *testing.T) {
	b := &fakeBackend{}
	var opened int
	a, err := newApp(config.Default(), nil, testView(), fakeOpener(b, &opened))
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	defer a.Close()

	if opened != 1 || b.destroyed != 0 {
		t.Errorf("opened = %d, destroyed = %d, want 1, 0", opened, b.destroyed)
	}
	if a.picker.Lifecycle() != pickalpha.Ready {
		t.Errorf("picker lifecycle = %v, want Ready", a.picker.Lifecycle())
	}
}

func TestNewAppShaderFileMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Picker.FragmentShader = filepath.Join(t.TempDir(), "missing.frag")

	b := &fakeBackend{}
	var opened int
	if _, err := newApp(cfg, nil, testView(), fakeOpener(b, &opened)); err == nil {
		t.Fatal("expected error for a missing shader file")
	}
	if opened != 0 {
		t.Errorf("window opened %d times before shader sources were read", opened)
	}
}

func TestNewAppReleasesWindowOnInitError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.frag")
	if err := os.WriteFile(path, []byte("#version 410 core\nvoid main() {"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg := config.Default()
	cfg.Picker.FragmentShader = path

	b := &fakeBackend{}
	var opened int
	if _, err := newApp(cfg, nil, testView(), fakeOpener(b, &opened)); err == nil {
		t.Fatal("expected error for a broken fragment shader")
	}
	if b.destroyed != 1 {
		t.Errorf("window destroyed %d times, want 1", b.destroyed)
	}
}
