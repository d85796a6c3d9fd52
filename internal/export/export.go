package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"wartimes-fbx-exporter/internal/fbx"
	"wartimes-fbx-exporter/internal/mesh"
	"wartimes-fbx-exporter/internal/scene"
	"wartimes-fbx-exporter/internal/skin"
	"wartimes-fbx-exporter/internal/skmesh"
)

// Options controls one conversion.
type Options struct {
	// Merge appends non-skinned geometries with a rigid binding.
	Merge bool
	// LeftBone and RightBone are the substrings locating the rigid
	// merge targets by bone name.
	LeftBone  string
	RightBone string
}

func DefaultOptions() Options {
	return Options{
		Merge:     true,
		LeftBone:  mesh.DefaultLeftBone,
		RightBone: mesh.DefaultRightBone,
	}
}

// Summary reports one finished conversion.
type Summary struct {
	Input    string
	Output   string
	Version  uint32
	Vertices int
	Indices  int
	Bones    int
	Merged   int
	Skin     skin.Report
}

// DefaultOutput swaps the input extension for .skmesh.
func DefaultOutput(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".skmesh"
}

// Convert runs the full pipeline on one container file: decode, extract,
// resolve the skin, assemble, merge rigid attachments, serialize.
func Convert(input, output string, opts Options, logger *log.Logger) (*Summary, error) {
	root, version, err := fbx.ParseFile(input)
	if err != nil {
		return nil, err
	}
	logger.Info("parsed container", "file", filepath.Base(input), "version", version)

	sc, err := scene.Extract(root, version, logger)
	if err != nil {
		return nil, err
	}

	sk, err := skin.Resolve(sc, logger)
	if err != nil {
		return nil, err
	}

	b := mesh.NewBuilder(logger)
	if err := b.AddSkinned(sk); err != nil {
		return nil, err
	}

	merged := 0
	if opts.Merge {
		if rigid := sc.NonSkinnedGeometries(); len(rigid) > 0 {
			left, right := mesh.FindRigidBones(sk.Bones, opts.LeftBone, opts.RightBone)
			logger.Info("merging rigid geometries", "count", len(rigid), "left", left, "right", right)
			for _, g := range rigid {
				if err := b.MergeRigid(g, left, right); err != nil {
					return nil, err
				}
			}
			merged = len(rigid)
		}
	}

	m, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", input, err)
	}
	if err := skmesh.WriteFile(output, m); err != nil {
		return nil, err
	}
	logger.Info("written", "file", output, "vertices", len(m.Vertices), "triangles", m.Triangles(), "bones", len(m.Bones))

	return &Summary{
		Input:    input,
		Output:   output,
		Version:  version,
		Vertices: len(m.Vertices),
		Indices:  len(m.Indices),
		Bones:    len(m.Bones),
		Merged:   merged,
		Skin:     sk.Report,
	}, nil
}
