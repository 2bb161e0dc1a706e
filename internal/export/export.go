// Package export turns read-back canvas pixels into PNG files.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ResultFilename is the name exported results are offered under.
const ResultFilename = "pick-alpha-result.png"

// Downloader receives an encoded file, the way a browser download does.
// It returns where the data ended up.
type Downloader interface {
	Download(name string, data []byte) (string, error)
}

// DownloaderFunc adapts a function to Downloader.
type DownloaderFunc func(name string, data []byte) (string, error)

// Download implements Downloader.
func (f DownloaderFunc) Download(name string, data []byte) (string, error) {
	return f(name, data)
}

// FromPixels builds an image from bottom-up RGBA rows as returned by a GL
// read-back. The image is flipped vertically since GL has its origin at the
// bottom-left. Pixels are straight alpha.
func FromPixels(pixels []byte, width, height int) (*image.NRGBA, error) {
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		srcOffset := (height - 1 - y) * rowSize
		dstOffset := y * img.Stride
		copy(img.Pix[dstOffset:dstOffset+rowSize], pixels[srcOffset:srcOffset+rowSize])
	}
	return img, nil
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// DirDownloader saves downloads into a directory. Like a browser, it does
// not overwrite: an existing "name.png" makes the next one "name (1).png".
type DirDownloader struct {
	Dir string
}

// Download implements Downloader.
func (d DirDownloader) Download(name string, data []byte) (string, error) {
	if d.Dir != "" {
		if err := os.MkdirAll(d.Dir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 0; ; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", base, i, ext)
		}
		path := filepath.Join(d.Dir, candidate)

		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("creating file: %w", err)
		}

		if err := writeData(file, data); err != nil {
			file.Close()
			os.Remove(path)
			return "", fmt.Errorf("writing %s: %w", path, err)
		}
		if err := file.Close(); err != nil {
			os.Remove(path)
			return "", fmt.Errorf("closing %s: %w", path, err)
		}
		return path, nil
	}
}

// writeData is swapped in tests to simulate a failing disk.
var writeData = func(w io.Writer, data []byte) error {
	_, err := w.Write(data)
	return err
}
