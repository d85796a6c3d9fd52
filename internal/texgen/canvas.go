package texgen

import "image"

// Canvas holds the generator target as a flat RGB slice for cache locality.
type Canvas struct {
	Width  int
	Height int
	Pix    []uint8 // RGB interleaved, len = W*H*3
}

// NewCanvas allocates a zeroed pixel buffer.
func NewCanvas(w, h int) *Canvas {
	return &Canvas{
		Width:  w,
		Height: h,
		Pix:    make([]uint8, w*h*3),
	}
}

// Set writes one pixel.
func (c *Canvas) Set(x, y int, r, g, b uint8) {
	i := (y*c.Width + x) * 3
	c.Pix[i] = r
	c.Pix[i+1] = g
	c.Pix[i+2] = b
}

// At reads one pixel.
func (c *Canvas) At(x, y int) (r, g, b uint8) {
	i := (y*c.Width + x) * 3
	return c.Pix[i], c.Pix[i+1], c.Pix[i+2]
}

// Image converts the canvas to an opaque NRGBA image.
func (c *Canvas) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, c.Width, c.Height))
	si := 0
	di := 0
	for i := 0; i < c.Width*c.Height; i++ {
		img.Pix[di] = c.Pix[si]
		img.Pix[di+1] = c.Pix[si+1]
		img.Pix[di+2] = c.Pix[si+2]
		img.Pix[di+3] = 255
		si += 3
		di += 4
	}
	return img
}
