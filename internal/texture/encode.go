package texture

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/bmp"
)

// Format selects the on-disk encoding for engine textures.
type Format string

const (
	FormatBMP  Format = "bmp"
	FormatWebP Format = "webp"
	FormatPNG  Format = "png"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatBMP:
		return FormatBMP, nil
	case FormatWebP:
		return FormatWebP, nil
	case FormatPNG:
		return FormatPNG, nil
	}
	return "", fmt.Errorf("texture: unknown format: %q", s)
}

// Ext returns the file extension for the format, including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatWebP:
		return nativewebp.Encode(w, img, nil)
	case FormatPNG:
		return png.Encode(w, img)
	}
	return fmt.Errorf("texture: unknown format: %q", f)
}

// WriteFile encodes img into path, choosing the encoder from f.
func WriteFile(path string, img image.Image, f Format) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("texture: create %s: %w", path, err)
	}
	if err := Encode(out, img, f); err != nil {
		out.Close()
		return fmt.Errorf("texture: encode %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("texture: close %s: %w", path, err)
	}
	return nil
}
