package snapshot

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func frame(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xff})
		}
	}
	return img
}

func TestSnapshot_Name(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 6, 7e6, time.UTC)
	assert.Equal(t, "frame-20240309-140506.007.png", Name(ts, ".png"))
}

func TestSnapshot_SaveScaled(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()

	for _, ext := range Extensions {
		path := filepath.Join(dir, "out", "frame"+ext)
		require.NoError(t, Save(path, frame(80, 60), 0.5))

		f, err := os.Open(path)
		require.NoError(t, err)
		cfg, _, err := image.DecodeConfig(f)
		f.Close()
		require.NoError(t, err, ext)
		assert.Equal(40, cfg.Width, ext)
		assert.Equal(30, cfg.Height, ext)
	}
}

func TestSnapshot_EncodeBMP(t *testing.T) {
	var buf bytes.Buffer
	src := frame(4, 3)
	require.NoError(t, Encode(&buf, ".BMP", src, 1))

	img, err := bmp.Decode(&buf)
	require.NoError(t, err)
	r, g, b, _ := img.At(3, 2).RGBA()
	assert.Equal(t, []uint32{3, 2, 0x80}, []uint32{r >> 8, g >> 8, b >> 8})
}

func TestSnapshot_Unsupported(t *testing.T) {
	err := Encode(&bytes.Buffer{}, ".tga", frame(1, 1), 1)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	err = Save(filepath.Join(t.TempDir(), "f.gif"), frame(1, 1), 1)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestSnapshot_Resize(t *testing.T) {
	src := frame(10, 10)
	assert.Same(t, src, Resize(src, 1))
	assert.Same(t, src, Resize(src, 0))
	assert.Equal(t, 1, Resize(src, 0.01).Bounds().Dx())
}
