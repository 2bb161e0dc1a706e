package texture

import (
	"image"

	"github.com/fogleman/gg"
)

// SourcePixels draws img into an off-screen 2D context of the image's own
// size and returns the result as straight-alpha, row-major RGBA8. The
// buffer origin is the top-left pixel regardless of img.Bounds().Min.
func SourcePixels(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy())
	dc.DrawImage(img, -b.Min.X, -b.Min.Y)

	rgba, ok := dc.Image().(*image.RGBA)
	if !ok {
		out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				out.Set(x, y, dc.Image().At(x, y))
			}
		}
		return out
	}
	return Unpremultiply(rgba)
}

// Unpremultiply converts premultiplied RGBA to straight NRGBA with the
// rounding a canvas readback applies. Fully transparent pixels become
// transparent black.
func Unpremultiply(src *image.RGBA) *image.NRGBA {
	b := src.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		srow := src.Pix[y*src.Stride:]
		drow := out.Pix[y*out.Stride:]
		for x := 0; x < b.Dx(); x++ {
			i := x * 4
			a := srow[i+3]
			switch a {
			case 0xff:
				copy(drow[i:i+4], srow[i:i+4])
			case 0:
				// transparent black
			default:
				for c := 0; c < 3; c++ {
					v := (uint32(srow[i+c])*0xff + uint32(a)/2) / uint32(a)
					if v > 0xff {
						v = 0xff
					}
					drow[i+c] = uint8(v)
				}
				drow[i+3] = a
			}
		}
	}
	return out
}

// FlipRows returns a copy of tightly packed RGBA rows in reverse order,
// converting between top-down image rows and bottom-up GL rows.
func FlipRows(pix []byte, width, height int) []byte {
	rowSize := width * 4
	out := make([]byte, len(pix))
	for y := 0; y < height; y++ {
		src := pix[(height-1-y)*rowSize : (height-y)*rowSize]
		copy(out[y*rowSize:], src)
	}
	return out
}
