package shaders

import (
	"github.com/Faultbox/pickalpha/internal/engine/gfx/softdevice"
	"github.com/Faultbox/pickalpha/pkg/math"
)

// Matches reports whether color is within tolerance of pick. Distance is
// Euclidean in RGB at 8-bit precision, normalized by sqrt(3) so tolerance 1
// covers the whole cube.
func Matches(color, pick math.Vec3, tolerance float32) bool {
	d := color.Quantize8().DistanceSq(pick.Quantize8())
	return d <= 3*tolerance*tolerance
}

// Shade is the fragment logic of FragmentShader: matched pixels keep their
// color with alpha 0, everything else passes through.
func Shade(sample [4]float32, pick math.Vec3, tolerance float32) [4]float32 {
	if Matches(math.Vec3{X: sample[0], Y: sample[1], Z: sample[2]}, pick, tolerance) {
		return [4]float32{sample[0], sample[1], sample[2], 0}
	}
	return sample
}

// SoftFragment runs Shade on the software device.
func SoftFragment(f *softdevice.Fragment) [4]float32 {
	var u, v float32
	if len(f.Varyings) >= 2 {
		u, v = f.Varyings[0], f.Varyings[1]
	}
	sample := f.Texture(int(f.Int(UniformImage)), u, v)
	pick := f.Vec3(UniformPickColor)
	return Shade(sample, math.Vec3{X: pick[0], Y: pick[1], Z: pick[2]}, f.Float(UniformTolerance))
}

// NewSoftDevice returns a software device that renders the highlight
// program.
func NewSoftDevice() *softdevice.Device {
	return softdevice.New(softdevice.Options{Fragment: SoftFragment})
}
