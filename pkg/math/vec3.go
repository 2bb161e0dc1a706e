// Package math provides the vector type used for normalized colors and
// the channel conversions around it.
package math

import "math"

// Vec3 is a 3D vector. Pick colors use it as normalized RGB.
type Vec3 struct {
	X, Y, Z float32
}

// RGB8 builds a normalized color from 8-bit channels.
func RGB8(r, g, b uint8) Vec3 {
	return Vec3{float32(r) / 255, float32(g) / 255, float32(b) / 255}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Dot returns the dot product.
func (v Vec3) Dot(other Vec3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// DistanceSq returns the squared distance to another point.
func (v Vec3) DistanceSq(other Vec3) float32 {
	d := v.Sub(other)
	return d.Dot(d)
}

// Clamp01 clamps every component to [0, 1]. NaN becomes 0.
func (v Vec3) Clamp01() Vec3 {
	return Vec3{Clamp01(v.X), Clamp01(v.Y), Clamp01(v.Z)}
}

// Quantize8 rounds every component to the nearest multiple of 1/255.
func (v Vec3) Quantize8() Vec3 {
	return Vec3{Quantize8(v.X), Quantize8(v.Y), Quantize8(v.Z)}
}

// RGB8 returns the components as rounded 8-bit channels.
func (v Vec3) RGB8() (r, g, b uint8) {
	c := v.Clamp01()
	return ToByte(c.X), ToByte(c.Y), ToByte(c.Z)
}

// Clamp01 clamps f to [0, 1]. NaN becomes 0.
func Clamp01(f float32) float32 {
	if !(f > 0) {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Quantize8 rounds f to the nearest multiple of 1/255.
func Quantize8(f float32) float32 {
	return float32(math.Floor(float64(f)*255+0.5)) / 255
}

// ToByte converts a [0,1] channel to 0..255 with rounding.
func ToByte(f float32) uint8 {
	return uint8(math.Round(float64(Clamp01(f)) * 255))
}
