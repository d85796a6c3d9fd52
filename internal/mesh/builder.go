package mesh

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"wartimes-fbx-exporter/internal/scene"
	"wartimes-fbx-exporter/internal/skin"
)

// ErrEmptyMesh means assembly produced no vertices or no indices.
var ErrEmptyMesh = errors.New("mesh: empty mesh result")

// Vertex is one GPU vertex: deduplicated corner attributes plus the
// four-bone weight set of its control point.
type Vertex struct {
	Position [3]float64
	Normal   [3]float64
	UV       [2]float64
	Bones    [4]int
	Weights  [4]float64
}

// Mesh is the assembled vertex/index/bone set ready for serialization.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Bones    []skin.Bone
}

// Triangles returns the triangle count.
func (m *Mesh) Triangles() int { return len(m.Indices) / 3 }

// Builder accumulates triangulated geometry. Corners are deduplicated by
// (control point, normal index, uv index) within each added geometry.
type Builder struct {
	vertices []Vertex
	indices  []uint32
	bones    []skin.Bone
	logger   *log.Logger
}

func NewBuilder(logger *log.Logger) *Builder {
	return &Builder{logger: logger}
}

// AddSkinned assembles the resolved skin target: positions divided by the
// detected scale, per-corner attributes resolved through the layer
// addressing, influences attached by control point.
func (b *Builder) AddSkinned(sk *skin.Skinned) error {
	b.bones = sk.Bones
	geo := sk.Geometry
	scale := sk.Scale

	vertexMap := make(map[[3]int]uint32)
	pvc := 0
	for _, poly := range geo.Polygons {
		tri := make([]uint32, 0, len(poly))
		for _, vi := range poly {
			if vi < 0 || vi >= len(geo.Positions) {
				return fmt.Errorf("mesh: geometry %d polygon references control point %d of %d", geo.ID, vi, len(geo.Positions))
			}

			normal, ni := [3]float64{0, 1, 0}, 0
			if len(geo.Normals) > 0 {
				switch geo.NormalMapping {
				case scene.MapByPolygonVertex:
					ni = pvc
					if geo.NormalRef == scene.RefIndexToDirect && len(geo.NormalIndices) > 0 && pvc < len(geo.NormalIndices) {
						ni = geo.NormalIndices[pvc]
					}
				case scene.MapByVertex, scene.MapByVertice:
					ni = vi
				default:
					ni = pvc
				}
				if ni >= 0 && ni < len(geo.Normals) {
					normal = geo.Normals[ni]
				} else {
					normal = [3]float64{0, 1, 0}
				}
			}

			uv, ui := [2]float64{0, 0}, 0
			if len(geo.UVs) > 0 {
				switch geo.UVMapping {
				case scene.MapByPolygonVertex:
					ui = pvc
					if geo.UVRef == scene.RefIndexToDirect && len(geo.UVIndices) > 0 && pvc < len(geo.UVIndices) {
						ui = geo.UVIndices[pvc]
					}
				case scene.MapByVertex, scene.MapByVertice:
					ui = vi
				default:
					ui = pvc
				}
				if ui >= 0 && ui < len(geo.UVs) {
					uv = geo.UVs[ui]
				} else {
					uv = [2]float64{0, 0}
				}
			}

			key := [3]int{vi, ni, ui}
			idx, seen := vertexMap[key]
			if !seen {
				idx = uint32(len(b.vertices))
				vertexMap[key] = idx
				p := geo.Positions[vi]
				v := Vertex{
					Position: [3]float64{p[0] / scale, p[1] / scale, p[2] / scale},
					Normal:   normal,
					UV:       uv,
				}
				for k, in := range sk.Influences[vi] {
					v.Bones[k] = in.Bone
					v.Weights[k] = in.Weight
				}
				b.vertices = append(b.vertices, v)
			}
			tri = append(tri, idx)
			pvc++
		}

		for i := 1; i+1 < len(tri); i++ {
			b.indices = append(b.indices, tri[0], tri[i], tri[i+1])
		}
	}

	b.logger.Info("assembled skinned geometry",
		"geometry", geo.Name,
		"vertices", len(b.vertices),
		"indices", len(b.indices),
		"triangles", len(b.indices)/3,
		"bones", len(b.bones))
	return nil
}

// Build returns the accumulated mesh. An empty vertex or index set is an
// error: the engine rejects such files.
func (b *Builder) Build() (*Mesh, error) {
	if len(b.vertices) == 0 || len(b.indices) == 0 {
		return nil, fmt.Errorf("mesh: %d vertices, %d indices: %w", len(b.vertices), len(b.indices), ErrEmptyMesh)
	}
	return &Mesh{Vertices: b.vertices, Indices: b.indices, Bones: b.bones}, nil
}
