package texgen

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Texture kinds accepted in specs.
const (
	KindMetal   = "metal"
	KindWood    = "wood"
	KindTwoTone = "two_tone"
)

// RGB is a normalized color triple.
type RGB [3]float64

// Spec describes one procedural texture.
type Spec struct {
	Kind     string `json:"type"`
	Base     RGB    `json:"base,omitempty"`      // metal/wood base color
	Accent   *RGB   `json:"accent,omitempty"`    // metal accent patches, optional
	Grain    RGB    `json:"grain,omitempty"`     // wood grain color
	Color1   RGB    `json:"color1,omitempty"`    // two_tone primary
	Color2   RGB    `json:"color2,omitempty"`    // two_tone secondary
	MetalMix bool   `json:"metal_mix,omitempty"` // wood only: metal upper half
	Seed     int    `json:"seed"`
}

// Catalog maps texture names to specs.
type Catalog map[string]Spec

// DefaultCatalog returns the built-in weapon texture set.
func DefaultCatalog() Catalog {
	return Catalog{
		"AssaultRiffle_A": {
			Kind:   KindMetal,
			Base:   RGB{0.18, 0.22, 0.15}, // military olive dark
			Accent: &RGB{0.12, 0.14, 0.10},
			Seed:   100,
		},
		"AssaultRiffle_G": {
			Kind:   KindTwoTone,
			Color1: RGB{0.40, 0.36, 0.28}, // desert tan
			Color2: RGB{0.22, 0.20, 0.16}, // dark brown
			Seed:   200,
		},
		"Gun_A": {
			Kind: KindMetal,
			Base: RGB{0.12, 0.12, 0.14}, // dark steel
			Seed: 300,
		},
		"Gun_B": {
			Kind:   KindMetal,
			Base:   RGB{0.42, 0.42, 0.44}, // silver/chrome
			Accent: &RGB{0.20, 0.20, 0.22},
			Seed:   400,
		},
		"HeavyWeapon_F": {
			Kind:   KindMetal,
			Base:   RGB{0.15, 0.18, 0.12},  // dark military green
			Accent: &RGB{0.55, 0.30, 0.08}, // orange warning details
			Seed:   500,
		},
		"Riffle_A": {
			Kind:     KindWood,
			Base:     RGB{0.45, 0.28, 0.12}, // light wood
			Grain:    RGB{0.30, 0.18, 0.08},
			MetalMix: true,
			Seed:     600,
		},
		"Shotgun_I": {
			Kind:     KindWood,
			Base:     RGB{0.35, 0.22, 0.10}, // dark wood
			Grain:    RGB{0.20, 0.12, 0.06},
			MetalMix: true,
			Seed:     700,
		},
		"Uzi_C": {
			Kind:   KindMetal,
			Base:   RGB{0.08, 0.08, 0.10}, // near-black metal
			Accent: &RGB{0.15, 0.15, 0.16},
			Seed:   800,
		},
	}
}

// LoadCatalog reads a JSON catalog file and overlays it on the built-in
// set. File entries win over built-ins of the same name.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("texgen: read catalog: %w", err)
	}
	var fromFile Catalog
	if err := json.Unmarshal(data, &fromFile); err != nil {
		return nil, fmt.Errorf("texgen: parse catalog %s: %w", path, err)
	}

	cat := DefaultCatalog()
	for name, spec := range fromFile {
		cat[name] = spec
	}
	return cat, nil
}

// Names returns the catalog's texture names in sorted order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
