// Package texgen renders the procedural weapon textures used by models
// that ship without painted source art.
package texgen

import (
	"fmt"
	"image"
)

// Generate renders the texture described by spec at size×size pixels.
func Generate(spec Spec, size int) (*image.NRGBA, error) {
	c := NewCanvas(size, size)
	switch spec.Kind {
	case KindMetal:
		Metal(c, spec.Base, spec.Accent, spec.Seed)
	case KindWood:
		if spec.MetalMix {
			WoodMetal(c, spec.Base, spec.Grain, spec.Seed)
		} else {
			Wood(c, spec.Base, spec.Grain, spec.Seed)
		}
	case KindTwoTone:
		TwoTone(c, spec.Color1, spec.Color2, spec.Seed)
	default:
		return nil, fmt.Errorf("texgen: unknown texture kind: %q", spec.Kind)
	}
	return c.Image(), nil
}

// Render generates spec at size×size, rasterizing supersample times larger
// and filtering down when supersample > 1.
func Render(spec Spec, size, supersample int) (*image.NRGBA, error) {
	ss := supersample
	if ss < 1 {
		ss = 1
	}
	img, err := Generate(spec, size*ss)
	if err != nil {
		return nil, err
	}
	if ss > 1 {
		img = Downsample(img, size)
	}
	return img, nil
}
