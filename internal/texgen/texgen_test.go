package texgen

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// genSize keeps generator tests above the minimum panel-line layout size.
const genSize = 64

func TestCanvas(t *testing.T) {
	c := NewCanvas(4, 2)
	require.Len(t, c.Pix, 4*2*3)

	c.Set(3, 1, 10, 20, 30)
	r, g, b := c.At(3, 1)
	assert.Equal(t, [3]uint8{10, 20, 30}, [3]uint8{r, g, b})

	img := c.Image()
	assert.Equal(t, image.Rect(0, 0, 4, 2), img.Bounds())
	off := img.PixOffset(3, 1)
	assert.Equal(t, []uint8{10, 20, 30, 255}, img.Pix[off:off+4])

	// Every pixel is opaque.
	for i := 3; i < len(img.Pix); i += 4 {
		assert.Equal(t, uint8(255), img.Pix[i])
	}
}

func TestGenerateDeterministic(t *testing.T) {
	cat := DefaultCatalog()
	for _, name := range []string{"Gun_A", "Gun_B", "Riffle_A", "AssaultRiffle_G"} {
		t.Run(name, func(t *testing.T) {
			spec := cat[name]
			a, err := Generate(spec, genSize)
			require.NoError(t, err)
			b, err := Generate(spec, genSize)
			require.NoError(t, err)
			assert.Equal(t, a.Pix, b.Pix)
		})
	}
}

func TestGenerateSeedChangesOutput(t *testing.T) {
	spec := Spec{Kind: KindMetal, Base: RGB{0.3, 0.3, 0.3}, Seed: 1}
	a, err := Generate(spec, genSize)
	require.NoError(t, err)

	spec.Seed = 2
	b, err := Generate(spec, genSize)
	require.NoError(t, err)

	assert.NotEqual(t, a.Pix, b.Pix)
}

func TestGenerateAllDefaults(t *testing.T) {
	for name, spec := range DefaultCatalog() {
		img, err := Generate(spec, genSize)
		require.NoError(t, err, name)
		assert.Equal(t, image.Rect(0, 0, genSize, genSize), img.Bounds(), name)
	}
}

func TestGenerateUnknownKind(t *testing.T) {
	_, err := Generate(Spec{Kind: "plasma"}, genSize)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown texture kind: "plasma"`)
}

func TestRenderSupersample(t *testing.T) {
	spec := Spec{Kind: KindWood, Base: RGB{0.4, 0.25, 0.1}, Grain: RGB{0.2, 0.1, 0.05}, Seed: 3}

	img, err := Render(spec, genSize, 2)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, genSize, genSize), img.Bounds())

	// Supersample 1 (and below) renders at the target size directly.
	direct, err := Render(spec, genSize, 1)
	require.NoError(t, err)
	plain, err := Generate(spec, genSize)
	require.NoError(t, err)
	assert.Equal(t, plain.Pix, direct.Pix)

	zero, err := Render(spec, genSize, 0)
	require.NoError(t, err)
	assert.Equal(t, plain.Pix, zero.Pix)

	// The filtered result differs from the direct render.
	assert.NotEqual(t, plain.Pix, img.Pix)
}

func TestRenderUnknownKind(t *testing.T) {
	_, err := Render(Spec{Kind: "nope"}, genSize, 2)
	require.Error(t, err)
}

func TestDownsample(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i] = 200
		src.Pix[i+1] = 100
		src.Pix[i+2] = 50
		src.Pix[i+3] = 255
	}

	dst := Downsample(src, 16)
	assert.Equal(t, image.Rect(0, 0, 16, 16), dst.Bounds())

	// A uniform opaque image stays uniform and opaque.
	for i := 0; i < len(dst.Pix); i += 4 {
		assert.InDelta(t, 200, int(dst.Pix[i]), 1)
		assert.InDelta(t, 100, int(dst.Pix[i+1]), 1)
		assert.InDelta(t, 50, int(dst.Pix[i+2]), 1)
		assert.Equal(t, uint8(255), dst.Pix[i+3])
	}
}

func TestDownsampleNoop(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	assert.Same(t, src, Downsample(src, 16))
	assert.Same(t, src, Downsample(src, 32))
}
