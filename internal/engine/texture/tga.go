package texture

import (
	"fmt"
	"image"
	"image/color"
)

// TGA image type constants.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeRLE          = 10 // RLE compressed true-color
)

// DecodeTGA decodes a TGA image file into straight-alpha NRGBA.
// Supports uncompressed true-color (type 2) and RLE compressed (type 10)
// files at 24 or 32 bits per pixel.
func DecodeTGA(data []byte) (*image.NRGBA, error) {
	if len(data) < 18 {
		return nil, fmt.Errorf("TGA data too short")
	}

	// TGA header
	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("color-mapped TGA not supported")
	}
	if imageType != TGATypeUncompressed && imageType != TGATypeRLE {
		return nil, fmt.Errorf("unsupported TGA type %d (only uncompressed/RLE true-color supported)", imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("unsupported TGA bit depth %d (only 24/32 supported)", bpp)
	}

	offset := 18 + idLength
	if offset > len(data) {
		return nil, fmt.Errorf("TGA data truncated")
	}
	pixelData := data[offset:]

	d := tgaDecoder{
		img:           image.NewNRGBA(image.Rect(0, 0, width, height)),
		width:         width,
		height:        height,
		bytesPerPixel: bpp / 8,
		// Bit 5 of the descriptor selects top-to-bottom row order.
		topToBottom: descriptor&0x20 != 0,
	}

	if imageType == TGATypeUncompressed {
		if len(pixelData) < width*height*d.bytesPerPixel {
			return nil, fmt.Errorf("TGA pixel data truncated")
		}
		for i := 0; i < width*height; i++ {
			d.put(i, d.read(pixelData[i*d.bytesPerPixel:]))
		}
		return d.img, nil
	}

	if err := d.decodeRLE(pixelData); err != nil {
		return nil, err
	}
	return d.img, nil
}

type tgaDecoder struct {
	img           *image.NRGBA
	width         int
	height        int
	bytesPerPixel int
	topToBottom   bool
}

// read converts one BGR(A) pixel.
func (d *tgaDecoder) read(p []byte) color.NRGBA {
	c := color.NRGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if d.bytesPerPixel == 4 {
		c.A = p[3]
	}
	return c
}

// put stores the pixel at file order index i.
func (d *tgaDecoder) put(i int, c color.NRGBA) {
	x := i % d.width
	y := i / d.width
	if !d.topToBottom {
		y = d.height - 1 - y
	}
	d.img.SetNRGBA(x, y, c)
}

// decodeRLE decodes RLE-compressed TGA pixel data.
func (d *tgaDecoder) decodeRLE(pixelData []byte) error {
	pixelCount := d.width * d.height
	pixelIdx := 0
	dataIdx := 0

	for pixelIdx < pixelCount {
		if dataIdx >= len(pixelData) {
			return fmt.Errorf("TGA RLE data truncated at pixel %d of %d", pixelIdx, pixelCount)
		}
		packet := pixelData[dataIdx]
		dataIdx++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			// RLE packet - repeat single pixel
			if dataIdx+d.bytesPerPixel > len(pixelData) {
				return fmt.Errorf("TGA RLE packet truncated")
			}
			c := d.read(pixelData[dataIdx:])
			dataIdx += d.bytesPerPixel
			for i := 0; i < count && pixelIdx < pixelCount; i++ {
				d.put(pixelIdx, c)
				pixelIdx++
			}
			continue
		}

		// Raw packet - read count pixels
		for i := 0; i < count && pixelIdx < pixelCount; i++ {
			if dataIdx+d.bytesPerPixel > len(pixelData) {
				return fmt.Errorf("TGA raw packet truncated")
			}
			d.put(pixelIdx, d.read(pixelData[dataIdx:]))
			dataIdx += d.bytesPerPixel
			pixelIdx++
		}
	}

	return nil
}
