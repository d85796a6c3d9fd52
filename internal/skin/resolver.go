package skin

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/charmbracelet/log"

	"wartimes-fbx-exporter/internal/mathutil"
	"wartimes-fbx-exporter/internal/scene"
)

var (
	ErrNoSkinDeformer = errors.New("skin: no skin deformer found")
	ErrNoGeometry     = errors.New("skin: no geometry found")
	ErrBoneCycle      = errors.New("skin: bone hierarchy cycle")
)

// scaleThreshold separates unit-scale exports from centimeter-scale ones.
// A bind rotation column longer than this means the file carries a global
// scale that has to be divided out.
const scaleThreshold = 1.5

// maxInfluences is the per-vertex bone budget of the vertex format.
const maxInfluences = 4

// Bone is one joint of the resolved skeleton. Parent is -1 for roots.
type Bone struct {
	Name        string
	Parent      int
	InvBindPose mathutil.Mat4
	BindPose    mathutil.Mat4
}

// Influence is one bone/weight pair attached to a control point.
type Influence struct {
	Bone   int
	Weight float64
}

// VertexInfluences is the fixed weight set per control point: sorted by
// weight descending, renormalized, zero-padded.
type VertexInfluences [maxInfluences]Influence

// GeometryFallback names the stage that located the target geometry.
type GeometryFallback int

const (
	GeoDirect GeometryFallback = iota
	GeoChildOfModel
	GeoSharedParent
	GeoFirst
)

func (f GeometryFallback) String() string {
	switch f {
	case GeoDirect:
		return "direct"
	case GeoChildOfModel:
		return "child-of-model"
	case GeoSharedParent:
		return "shared-parent"
	case GeoFirst:
		return "first-geometry"
	}
	return "unknown"
}

// Report records the resolution decisions for one file so callers can
// inspect them without scraping log output.
type Report struct {
	SkinID         int64
	SkinName       string
	InfluenceTotal int
	Fallback       GeometryFallback
	GeometryID     int64
	GeometryName   string
	ControlPoints  int
	Scale          float64
}

// Skinned couples the resolved skeleton with its target geometry and the
// per-control-point influences, in final (topologically sorted) bone order.
type Skinned struct {
	Geometry   *scene.Geometry
	Bones      []Bone
	Influences []VertexInfluences
	Scale      float64
	Report     Report
}

// boneCluster is a cluster with its connected bone model resolved.
type boneCluster struct {
	cluster  *scene.Cluster
	modelID  int64
	hasModel bool
	name     string
}

// Resolve picks the authoritative skin deformer, locates its geometry,
// builds the name-sorted bone set with normalized bind poses and gathers
// per-vertex influences, then reorders bones parent-first.
func Resolve(s *scene.Scene, logger *log.Logger) (*Skinned, error) {
	childToParent := s.ChildToParent()

	// The deformer with the most influences is the authoritative one;
	// sleeves and attachments carry small secondary skins.
	var skinID, targetID int64
	var skinName string
	var targetKnown, found bool
	best := 0
	for _, sk := range s.Skins {
		total := 0
		for _, c := range s.Connections {
			if c.Parent != sk.ID {
				continue
			}
			if cl, ok := s.Clusters[c.Child]; ok {
				total += len(cl.Indexes)
			}
		}
		gid, ok := childToParent[sk.ID]
		logger.Debug("skin deformer", "id", sk.ID, "influences", total, "target", gid)
		if total > best {
			best = total
			skinID = sk.ID
			skinName = sk.Name
			targetID = gid
			targetKnown = ok
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("skin: scene has %d skin deformers, none usable: %w", len(s.Skins), ErrNoSkinDeformer)
	}

	geo, fallback := locateGeometry(s, childToParent, skinID, targetID, targetKnown, logger)
	if geo == nil {
		return nil, fmt.Errorf("skin: deformer %d has no target: %w", skinID, ErrNoGeometry)
	}
	logger.Info("selected skin deformer",
		"skin", skinID, "influences", best,
		"geometry", geo.Name, "via", fallback.String())

	// Clusters of the chosen skin, in connection order.
	var bcs []*boneCluster
	for _, c := range s.Connections {
		if c.Parent != skinID {
			continue
		}
		cl, ok := s.Clusters[c.Child]
		if !ok {
			continue
		}
		bc := &boneCluster{cluster: cl, name: cl.Name}
		for _, cc := range s.Connections {
			if cc.Parent != cl.ID {
				continue
			}
			if m, ok := s.Models[cc.Child]; ok {
				bc.modelID = cc.Child
				bc.hasModel = true
				bc.name = m.Name
				break
			}
		}
		bcs = append(bcs, bc)
	}

	// Name order keeps bone indices stable across re-exports.
	sort.SliceStable(bcs, func(i, j int) bool { return bcs[i].name < bcs[j].name })

	boneIndexByModel := make(map[int64]int)
	for i, bc := range bcs {
		if bc.hasModel {
			boneIndexByModel[bc.modelID] = i
		}
		logger.Debug("bone", "index", i, "name", bc.name, "influences", len(bc.cluster.Indexes))
	}

	// Scale detection looks at the first cluster only.
	scale := 1.0
	if len(bcs) > 0 && bcs[0].cluster.TransformLink != nil {
		tfl := mathutil.Mat4FromSlice(bcs[0].cluster.TransformLink)
		col0 := math.Sqrt(tfl[0]*tfl[0] + tfl[4]*tfl[4] + tfl[8]*tfl[8])
		if col0 > scaleThreshold {
			scale = col0
			logger.Info("detected unit scale factor", "scale", scale)
		}
	}

	preBones := make([]Bone, len(bcs))
	for i, bc := range bcs {
		bind := mathutil.Mat4Identity()
		switch {
		case bc.cluster.TransformLink != nil:
			bind = normalizeBind(mathutil.Mat4FromSlice(bc.cluster.TransformLink), scale)
		case bc.hasModel && s.BindPoses[bc.modelID] != nil:
			bind = mathutil.Mat4FromSlice(s.BindPoses[bc.modelID])
		}
		preBones[i] = Bone{
			Name:        bc.name,
			Parent:      -1,
			InvBindPose: bind.Inverse(),
			BindPose:    bind,
		}
	}

	// Parent bone via OO edges: the first parent that is itself a bone.
	parents := make([]int, len(bcs))
	for i := range parents {
		parents[i] = -1
	}
	for i, bc := range bcs {
		if !bc.hasModel {
			continue
		}
		if _, ok := childToParent[bc.modelID]; !ok {
			continue
		}
		for _, c := range s.Connections {
			if c.Child != bc.modelID || c.Type != "OO" {
				continue
			}
			if pi, ok := boneIndexByModel[c.Parent]; ok {
				parents[i] = pi
				break
			}
		}
	}

	influences := gatherInfluences(bcs, len(geo.Positions))

	order, err := topoOrder(parents)
	if err != nil {
		return nil, err
	}
	oldToNew := make([]int, len(order))
	for newIdx, oldIdx := range order {
		oldToNew[oldIdx] = newIdx
	}

	bones := make([]Bone, len(order))
	for newIdx, oldIdx := range order {
		b := preBones[oldIdx]
		if p := parents[oldIdx]; p >= 0 && p < len(parents) {
			b.Parent = oldToNew[p]
		} else {
			b.Parent = -1
		}
		bones[newIdx] = b
	}
	for vi := range influences {
		for k := range influences[vi] {
			if bi := influences[vi][k].Bone; bi < len(oldToNew) {
				influences[vi][k].Bone = oldToNew[bi]
			} else {
				influences[vi][k].Bone = 0
			}
		}
	}

	for i, b := range bones {
		logger.Debug("bone order", "index", i, "name", b.Name, "parent", b.Parent)
	}

	return &Skinned{
		Geometry:   geo,
		Bones:      bones,
		Influences: influences,
		Scale:      scale,
		Report: Report{
			SkinID:         skinID,
			SkinName:       skinName,
			InfluenceTotal: best,
			Fallback:       fallback,
			GeometryID:     geo.ID,
			GeometryName:   geo.Name,
			ControlPoints:  len(geo.Positions),
			Scale:          scale,
		},
	}, nil
}

// locateGeometry resolves the deformer's target through the documented
// fallback chain: direct id, child geometry of the target model, geometry
// sharing the deformer's parent model, first geometry.
func locateGeometry(s *scene.Scene, childToParent map[int64]int64, skinID, targetID int64, targetKnown bool, logger *log.Logger) (*scene.Geometry, GeometryFallback) {
	if targetKnown {
		if geo := s.GeometryByID(targetID); geo != nil {
			return geo, GeoDirect
		}
		for _, c := range s.Connections {
			if c.Parent != targetID {
				continue
			}
			if geo := s.GeometryByID(c.Child); geo != nil {
				return geo, GeoChildOfModel
			}
		}
	}

	if skinParent, ok := childToParent[skinID]; ok {
		for _, g := range s.Geometries {
			if gp, ok := childToParent[g.ID]; ok && gp == skinParent {
				logger.Debug("geometry shares the deformer's model", "geometry", g.Name, "model", gp)
				return g, GeoSharedParent
			}
		}
	}

	if len(s.Geometries) > 0 {
		logger.Warn("could not locate skinned geometry, using first", "geometry", s.Geometries[0].Name)
		return s.Geometries[0], GeoFirst
	}
	return nil, GeoFirst
}

// normalizeBind divides the scale factor out of every element except the
// fourth column, keeping the homogeneous part intact.
func normalizeBind(m mathutil.Mat4, scale float64) mathutil.Mat4 {
	for i := range m {
		if i%4 == 3 {
			continue
		}
		m[i] /= scale
	}
	return m
}

// gatherInfluences scatters cluster weights onto control points and
// reduces each to the four strongest, renormalized.
func gatherInfluences(bcs []*boneCluster, controlPoints int) []VertexInfluences {
	raw := make([][]Influence, controlPoints)
	for boneIdx, bc := range bcs {
		n := min(len(bc.cluster.Indexes), len(bc.cluster.Weights))
		for k := 0; k < n; k++ {
			vi := bc.cluster.Indexes[k]
			if vi < 0 || vi >= controlPoints {
				continue
			}
			raw[vi] = append(raw[vi], Influence{Bone: boneIdx, Weight: bc.cluster.Weights[k]})
		}
	}

	out := make([]VertexInfluences, controlPoints)
	for vi, list := range raw {
		sort.SliceStable(list, func(a, b int) bool { return list[a].Weight > list[b].Weight })
		if len(list) > maxInfluences {
			list = list[:maxInfluences]
		}
		total := 0.0
		for _, in := range list {
			total += in.Weight
		}
		for k, in := range list {
			w := in.Weight
			if total > 0 {
				w /= total
			}
			out[vi][k] = Influence{Bone: in.Bone, Weight: w}
		}
	}
	return out
}

// topoOrder runs a breadth-first pass over the parent array, roots first.
// Visiting fewer bones than exist means a cycle.
func topoOrder(parents []int) ([]int, error) {
	n := len(parents)
	children := make([][]int, n)
	var queue []int
	for i, p := range parents {
		if p < 0 || p >= n {
			queue = append(queue, i)
		} else {
			children[p] = append(children[p], i)
		}
	}

	order := make([]int, 0, n)
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		order = append(order, idx)
		queue = append(queue, children[idx]...)
	}
	if len(order) != n {
		return nil, fmt.Errorf("skin: topological sort visited %d of %d bones: %w", len(order), n, ErrBoneCycle)
	}
	return order, nil
}
