package mesh

import (
	"fmt"
	"strings"

	"wartimes-fbx-exporter/internal/scene"
	"wartimes-fbx-exporter/internal/skin"
)

// Rigid merge targets. Sleeve and attachment geometries carry no skin of
// their own and ride the forearms.
const (
	DefaultLeftBone  = "forearm.L"
	DefaultRightBone = "forearm.R"
)

// FindRigidBones returns the merge target indices: the last bone whose
// name contains each substring, index 0 when none matches.
func FindRigidBones(bones []skin.Bone, leftSub, rightSub string) (left, right int) {
	left, right = -1, -1
	for i, b := range bones {
		if strings.Contains(b.Name, leftSub) {
			left = i
		} else if strings.Contains(b.Name, rightSub) {
			right = i
		}
	}
	if left < 0 {
		left = 0
	}
	if right < 0 {
		right = 0
	}
	return left, right
}

// MergeRigid appends a non-skinned geometry with a rigid one-bone
// binding: vertices on the non-negative X side ride the left bone, the
// rest the right one. Positions are taken as stored; the merge path
// carries no scale.
func (b *Builder) MergeRigid(geo *scene.Geometry, leftBone, rightBone int) error {
	vertexMap := make(map[[3]int]uint32)
	startVerts := len(b.vertices)
	startIndices := len(b.indices)
	pvc := 0

	for _, poly := range geo.Polygons {
		tri := make([]uint32, 0, len(poly))
		for _, vi := range poly {
			if vi < 0 || vi >= len(geo.Positions) {
				return fmt.Errorf("mesh: geometry %d polygon references control point %d of %d", geo.ID, vi, len(geo.Positions))
			}
			pos := geo.Positions[vi]

			normal, ni := [3]float64{0, 1, 0}, 0
			if len(geo.Normals) > 0 {
				if geo.NormalMapping == scene.MapByPolygonVertex {
					ni = pvc
					if geo.NormalRef == scene.RefIndexToDirect && len(geo.NormalIndices) > 0 && pvc < len(geo.NormalIndices) {
						ni = geo.NormalIndices[pvc]
					}
				} else {
					ni = vi
				}
				if ni >= 0 && ni < len(geo.Normals) {
					normal = geo.Normals[ni]
				} else {
					normal = [3]float64{0, 1, 0}
				}
			}

			uv, ui := [2]float64{0, 0}, 0
			if len(geo.UVs) > 0 {
				if geo.UVMapping == scene.MapByPolygonVertex {
					ui = pvc
					if geo.UVRef == scene.RefIndexToDirect && len(geo.UVIndices) > 0 && pvc < len(geo.UVIndices) {
						ui = geo.UVIndices[pvc]
					}
				} else {
					ui = vi
				}
				if ui >= 0 && ui < len(geo.UVs) {
					uv = geo.UVs[ui]
				} else {
					uv = [2]float64{0, 0}
				}
			}

			boneIdx := rightBone
			if pos[0] >= 0 {
				boneIdx = leftBone
			}

			key := [3]int{vi, ni, ui}
			idx, seen := vertexMap[key]
			if !seen {
				idx = uint32(len(b.vertices))
				vertexMap[key] = idx
				b.vertices = append(b.vertices, Vertex{
					Position: pos,
					Normal:   normal,
					UV:       uv,
					Bones:    [4]int{boneIdx, 0, 0, 0},
					Weights:  [4]float64{1, 0, 0, 0},
				})
			}
			tri = append(tri, idx)
			pvc++
		}

		for i := 1; i+1 < len(tri); i++ {
			b.indices = append(b.indices, tri[0], tri[i], tri[i+1])
		}
	}

	b.logger.Info("merged rigid geometry",
		"geometry", geo.Name,
		"vertices", len(b.vertices)-startVerts,
		"triangles", (len(b.indices)-startIndices)/3)
	return nil
}
