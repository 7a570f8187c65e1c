// Package snapshot writes captured frames to image files.
package snapshot

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/image/bmp"
)

// ErrUnsupportedFormat is returned for file extensions without an encoder.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Extensions lists the supported file extensions.
var Extensions = []string{".png", ".jpg", ".jpeg", ".bmp"}

// Name returns the file name of a frame captured at t.
func Name(t time.Time, ext string) string {
	return "frame-" + t.Format("20060102-150405.000") + ext
}

// Save encodes img into the file at path, creating its directory if needed.
// The format follows the file extension.
func Save(path string, img image.Image, scale float64) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("unable to create the snapshot dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create the snapshot file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Encode(f, filepath.Ext(path), img, scale)
}

// Encode writes img to w in the format named by ext, resized by scale.
// An empty extension encodes a jpeg.
func Encode(w io.Writer, ext string, img image.Image, scale float64) error {
	res := Resize(img, scale)
	switch strings.ToLower(ext) {
	case "", ".jpg", ".jpeg":
		return imaging.Encode(w, res, imaging.JPEG, imaging.JPEGQuality(100))
	case ".png":
		return imaging.Encode(w, res, imaging.PNG)
	case ".bmp":
		return bmp.Encode(w, res)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// Resize scales img proportionally. Non positive or unit scales return the
// image unchanged.
func Resize(img image.Image, scale float64) image.Image {
	if scale <= 0 || scale == 1 {
		return img
	}
	w := int(float64(img.Bounds().Dx())*scale + 0.5)
	if w < 1 {
		w = 1
	}
	return imaging.Resize(img, w, 0, imaging.Lanczos)
}
