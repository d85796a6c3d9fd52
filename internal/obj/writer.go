// Package obj converts extracted scene geometry to Wavefront text
// meshes and remaps prop meshes for the engine's static loader.
package obj

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"wartimes-fbx-exporter/internal/fbx"
	"wartimes-fbx-exporter/internal/scene"
)

// MinVersion is the oldest container revision the static converter
// accepts.
const MinVersion = 7100

// Stats summarizes one conversion.
type Stats struct {
	Geometries int
	Vertices   int
	Polygons   int
	Scale      float64
}

// Encode renders geometries as OBJ text. Output is centered on X/Y with
// the base at Z=0, scaled so the largest extent matches targetSize, and
// swapped from Z-up to Y-up (x, z, -y). Multiple geometries merge into
// one file with per-object groups and running v/vn offsets.
func Encode(geos []*scene.Geometry, targetSize float64) (string, Stats) {
	if targetSize <= 0 {
		targetSize = 1
	}
	minV, maxV := bounds(geos)
	center := [3]float64{(minV[0] + maxV[0]) / 2, (minV[1] + maxV[1]) / 2, minV[2]}
	scale := autoScale(minV, maxV, targetSize)

	stats := Stats{Geometries: len(geos), Scale: scale}
	for _, g := range geos {
		stats.Vertices += len(g.Positions)
		stats.Polygons += len(g.Polygons)
	}

	var b strings.Builder
	if len(geos) == 1 {
		writeSingle(&b, geos[0], scale, center)
	} else {
		writeMerged(&b, geos, scale, center)
	}
	return b.String(), stats
}

// ConvertFile converts one container file to an OBJ text mesh on disk.
func ConvertFile(input, output string, targetSize float64, logger *log.Logger) (Stats, error) {
	root, version, err := fbx.ParseFile(input)
	if err != nil {
		return Stats{}, err
	}
	if version < MinVersion {
		return Stats{}, fmt.Errorf("obj: container version %d not supported (need >= %d)", version, MinVersion)
	}

	s, err := scene.Extract(root, version, logger)
	if err != nil {
		return Stats{}, err
	}
	if len(s.Geometries) == 0 {
		return Stats{}, fmt.Errorf("obj: no mesh geometries in %s", input)
	}

	text, stats := Encode(s.Geometries, targetSize)
	if err := os.WriteFile(output, []byte(text), 0644); err != nil {
		return Stats{}, fmt.Errorf("obj: write %s: %w", output, err)
	}
	return stats, nil
}

func writeSingle(b *strings.Builder, g *scene.Geometry, scale float64, center [3]float64) {
	fmt.Fprintf(b, "# Converted from FBX: %s\n", g.Name)
	fmt.Fprintf(b, "# Vertices: %d\n\n", len(g.Positions))

	writeVertices(b, g, scale, center)
	if len(g.Normals) > 0 {
		writeNormals(b, g)
	}
	writeFaces(b, g, 0, 0)
}

func writeMerged(b *strings.Builder, geos []*scene.Geometry, scale float64, center [3]float64) {
	b.WriteString("# Converted from FBX (merged geometries)\n")
	fmt.Fprintf(b, "# Total geometries: %d\n\n", len(geos))

	vertOff := 0
	normOff := 0
	for _, g := range geos {
		fmt.Fprintf(b, "o %s\n\n", g.Name)

		writeVertices(b, g, scale, center)
		if len(g.Normals) > 0 {
			writeNormals(b, g)
		}
		writeFaces(b, g, vertOff, normOff)

		vertOff += len(g.Positions)
		normOff += len(g.Normals)
		b.WriteByte('\n')
	}
}

// writeVertices emits centered, scaled control points in the engine's
// Y-up basis.
func writeVertices(b *strings.Builder, g *scene.Geometry, scale float64, center [3]float64) {
	for _, p := range g.Positions {
		fmt.Fprintf(b, "v %.6f %.6f %.6f\n",
			(p[0]-center[0])*scale,
			(p[2]-center[2])*scale,
			-(p[1]-center[1])*scale)
	}
	b.WriteByte('\n')
}

func writeNormals(b *strings.Builder, g *scene.Geometry) {
	for _, n := range g.Normals {
		fmt.Fprintf(b, "vn %.6f %.6f %.6f\n", n[0], n[2], -n[1])
	}
	b.WriteByte('\n')
}

// writeFaces emits 1-based n-gon faces. Corner-addressed normals walk a
// running counter through the layer (indirected when the reference is
// IndexToDirect); per-vertex layers reuse the position index.
func writeFaces(b *strings.Builder, g *scene.Geometry, vertOff, normOff int) {
	hasNormals := len(g.Normals) > 0
	switch {
	case hasNormals && g.NormalMapping == scene.MapByPolygonVertex:
		counter := 0
		for _, poly := range g.Polygons {
			b.WriteByte('f')
			for _, vi := range poly {
				ni := counter
				if g.NormalRef == scene.RefIndexToDirect && len(g.NormalIndices) > 0 && counter < len(g.NormalIndices) {
					ni = g.NormalIndices[counter]
				}
				fmt.Fprintf(b, " %d//%d", vi+1+vertOff, ni+1+normOff)
				counter++
			}
			b.WriteByte('\n')
		}
	case hasNormals && scene.PerVertex(g.NormalMapping):
		for _, poly := range g.Polygons {
			b.WriteByte('f')
			for _, vi := range poly {
				fmt.Fprintf(b, " %d//%d", vi+1+vertOff, vi+1+normOff)
			}
			b.WriteByte('\n')
		}
	default:
		for _, poly := range g.Polygons {
			b.WriteByte('f')
			for _, vi := range poly {
				fmt.Fprintf(b, " %d", vi+1+vertOff)
			}
			b.WriteByte('\n')
		}
	}
}

func bounds(geos []*scene.Geometry) (minV, maxV [3]float64) {
	minV = [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	maxV = [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, g := range geos {
		for _, p := range g.Positions {
			for i := 0; i < 3; i++ {
				minV[i] = math.Min(minV[i], p[i])
				maxV[i] = math.Max(maxV[i], p[i])
			}
		}
	}
	return minV, maxV
}

// autoScale normalizes the largest bounding-box extent to target.
func autoScale(minV, maxV [3]float64, target float64) float64 {
	maxExtent := 0.0
	for i := 0; i < 3; i++ {
		if e := maxV[i] - minV[i]; e > maxExtent {
			maxExtent = e
		}
	}
	if maxExtent < 1e-6 {
		return 1.0
	}
	return target / maxExtent
}
