package obj

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Settings are the resolved remap parameters for one model.
type Settings struct {
	Rotate float64 // yaw degrees
	Tile   float64 // UV tile factor
	Skip   bool
}

// DefaultSettings matches the original prop pass: quarter turn,
// double-tiled UVs.
func DefaultSettings() Settings {
	return Settings{Rotate: 90, Tile: 2.0}
}

// Overrides maps model stems to remap settings.
type Overrides struct {
	defaults Settings
	models   map[string]Settings
}

// overrideFile is the overrides document: named presets plus per-model
// entries that are either preset references or inline objects.
type overrideFile struct {
	Presets map[string]json.RawMessage `json:"presets"`
	Models  map[string]json.RawMessage `json:"models"`
}

// overrideEntry matches the JSON schema; nil fields inherit defaults.
type overrideEntry struct {
	Rotate *float64 `json:"rotate"`
	Tile   *float64 `json:"tile"`
	Skip   *bool    `json:"skip"`
}

// NewOverrides returns an override set holding only defaults.
func NewOverrides(defaults Settings) *Overrides {
	return &Overrides{defaults: defaults, models: make(map[string]Settings)}
}

// LoadOverrides reads a JSON override file. Model keys match file stems
// case-insensitively.
func LoadOverrides(path string, defaults Settings) (*Overrides, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("obj: read overrides: %w", err)
	}
	var file overrideFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("obj: parse overrides %s: %w", path, err)
	}

	o := NewOverrides(defaults)
	for name, rawEntry := range file.Models {
		entry, err := resolveOverride(rawEntry, file.Presets)
		if err != nil {
			return nil, fmt.Errorf("obj: overrides %s: model %q: %w", path, name, err)
		}
		st := defaults
		if entry.Rotate != nil {
			st.Rotate = *entry.Rotate
		}
		if entry.Tile != nil {
			st.Tile = *entry.Tile
		}
		if entry.Skip != nil {
			st.Skip = *entry.Skip
		}
		o.models[strings.ToLower(name)] = st
	}
	return o, nil
}

// resolveOverride resolves a raw entry that is either a preset name
// (string) or an inline config object.
func resolveOverride(raw json.RawMessage, presets map[string]json.RawMessage) (*overrideEntry, error) {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		presetRaw, ok := presets[name]
		if !ok {
			return nil, fmt.Errorf("preset %q not found", name)
		}
		raw = presetRaw
	}
	var e overrideEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// For returns the settings for a model stem.
func (o *Overrides) For(stem string) Settings {
	if st, ok := o.models[strings.ToLower(stem)]; ok {
		return st
	}
	return o.defaults
}
