// Package texture decodes source images and prepares the pixel buffers the
// pick-alpha pipeline samples from.
package texture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/tiff" // TIFF decoder registration
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// Extensions lists the file extensions Decode understands, for file dialogs.
var Extensions = []string{"png", "jpg", "jpeg", "gif", "bmp", "tif", "tiff", "webp", "tga"}

// Decode decodes an image. name is only used to recognize TGA, which has no
// magic number; every other format is sniffed from the data.
func Decode(r io.Reader, name string) (image.Image, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("reading image: %w", err)
	}

	if strings.EqualFold(filepath.Ext(name), ".tga") {
		img, err := DecodeTGA(data)
		if err != nil {
			return nil, "", fmt.Errorf("decoding TGA: %w", err)
		}
		return img, "tga", nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decoding image: %w", err)
	}
	return img, format, nil
}

// DecodeFile opens and decodes the image at path.
func DecodeFile(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	return Decode(f, path)
}
