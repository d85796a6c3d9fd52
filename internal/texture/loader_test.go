package texture

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func TestLoadPNG(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255})
	src.SetNRGBA(1, 0, color.NRGBA{0, 255, 0, 128})
	src.SetNRGBA(0, 1, color.NRGBA{0, 0, 255, 255})
	src.SetNRGBA(1, 1, color.NRGBA{10, 20, 30, 0})

	path := filepath.Join(t.TempDir(), "tex.png")
	writePNG(t, path, src)

	img, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, src.Bounds(), img.Bounds())
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{0, 255, 0, 128}, img.NRGBAAt(1, 0))
}

func TestLoadJPEGIsOpaque(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 16)
	}
	path := filepath.Join(t.TempDir(), "tex.jpg")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(f, src, nil))
	require.NoError(t, f.Close())

	img, err := Load(path)
	require.NoError(t, err)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, uint8(255), img.NRGBAAt(x, y).A)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.png"))
	require.Error(t, err)

	bad := filepath.Join(dir, "tex.gif")
	require.NoError(t, os.WriteFile(bad, []byte("GIF89a"), 0644))
	_, err = Load(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown extension")

	corrupt := filepath.Join(dir, "tex.png")
	require.NoError(t, os.WriteFile(corrupt, []byte("not an image"), 0644))
	_, err = Load(corrupt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestToNRGBA(t *testing.T) {
	n := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	assert.Same(t, n, ToNRGBA(n))

	gray := image.NewGray(image.Rect(0, 0, 2, 1))
	gray.SetGray(0, 0, color.Gray{Y: 100})
	out := ToNRGBA(gray)
	assert.Equal(t, color.NRGBA{100, 100, 100, 255}, out.NRGBAAt(0, 0))

	rgba := image.NewRGBA(image.Rect(0, 0, 1, 1))
	rgba.SetRGBA(0, 0, color.RGBA{10, 20, 30, 255})
	out = ToNRGBA(rgba)
	assert.Equal(t, color.NRGBA{10, 20, 30, 255}, out.NRGBAAt(0, 0))
}
