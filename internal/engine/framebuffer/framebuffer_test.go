package framebuffer

import (
	"testing"

	"github.com/Faultbox/pickalpha/internal/engine/gfx/softdevice"
)

func TestNewClampsSize(t *testing.T) {
	dev := softdevice.New(softdevice.Options{})
	fb, err := New(dev, 0, -4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if w, h := fb.Size(); w != 1 || h != 1 {
		t.Errorf("Size = %dx%d, want 1x1", w, h)
	}
	if fb.ColorTexture() == 0 {
		t.Error("ColorTexture = 0")
	}
}

func TestContentsPersist(t *testing.T) {
	dev := softdevice.New(softdevice.Options{})
	fb, err := New(dev, 2, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	fb.Bind()
	fb.Clear(1, 0, 0, 1)
	fb.Unbind()

	// Nothing clears between frames; a second read sees the same data.
	for i := 0; i < 2; i++ {
		pix := fb.ReadPixels()
		if len(pix) != 2*2*4 {
			t.Fatalf("ReadPixels len = %d", len(pix))
		}
		for p := 0; p < len(pix); p += 4 {
			if pix[p] != 255 || pix[p+1] != 0 || pix[p+2] != 0 || pix[p+3] != 255 {
				t.Fatalf("read %d pixel %d = %v, want opaque red", i, p/4, pix[p:p+4])
			}
		}
	}
}

func TestResize(t *testing.T) {
	dev := softdevice.New(softdevice.Options{})
	fb, err := New(dev, 2, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	before := fb.ColorTexture()

	if err := fb.Resize(2, 2); err != nil {
		t.Fatalf("Resize same: %v", err)
	}
	if fb.ColorTexture() != before {
		t.Error("Resize to the same size reallocated")
	}

	if err := fb.Resize(5, 3); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if w, h := fb.Size(); w != 5 || h != 3 {
		t.Errorf("Size = %dx%d, want 5x3", w, h)
	}
	if n := dev.Live().RenderTargets; n != 1 {
		t.Errorf("live render targets = %d, want 1", n)
	}
	if got := len(fb.ReadPixels()); got != 5*3*4 {
		t.Errorf("ReadPixels len = %d, want %d", got, 5*3*4)
	}
}

func TestResizeTooLarge(t *testing.T) {
	dev := softdevice.New(softdevice.Options{MaxTextureSize: 8})
	fb, err := New(dev, 2, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := fb.Resize(9, 2); err == nil {
		t.Error("expected error resizing past the device limit")
	}
	if n := dev.Live().RenderTargets; n != 1 {
		t.Errorf("live render targets = %d after failed resize, want 1", n)
	}
	if w, h := fb.Size(); w != 2 || h != 2 {
		t.Errorf("Size after failed resize = %dx%d, want 2x2", w, h)
	}
	if fb.ColorTexture() == 0 {
		t.Error("ColorTexture lost after failed resize")
	}
}

func TestDestroy(t *testing.T) {
	dev := softdevice.New(softdevice.Options{})
	fb, err := New(dev, 3, 3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fb.Destroy()
	fb.Destroy()
	if live := dev.Live(); live.Total() != 0 {
		t.Errorf("live after Destroy: %+v", live)
	}
}
