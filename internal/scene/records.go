package scene

import "wartimes-fbx-exporter/internal/mathutil"

// Attribute layer addressing. Some exporters write the legacy
// "ByVertice" or "ByVertexIndex" spellings; all three map to
// per-control-point addressing.
const (
	MapByPolygonVertex = "ByPolygonVertex"
	MapByVertex        = "ByVertex"
	MapByVertice       = "ByVertice"
	MapByVertexIndex   = "ByVertexIndex"
	RefDirect          = "Direct"
	RefIndexToDirect   = "IndexToDirect"
)

// PerVertex reports whether mapping addresses attributes by control
// point rather than by polygon corner.
func PerVertex(mapping string) bool {
	switch mapping {
	case MapByVertex, MapByVertice, MapByVertexIndex:
		return true
	}
	return false
}

// Geometry is one mesh record: control points, polygon loops and the
// per-corner attribute layers as stored in the file.
type Geometry struct {
	ID   int64
	Name string

	Positions [][3]float64
	Polygons  [][]int

	Normals       [][3]float64
	NormalMapping string
	NormalRef     string
	NormalIndices []int

	UVs       [][2]float64
	UVMapping string
	UVRef     string
	UVIndices []int
}

// Model is a scene object. Bones are Model records of class LimbNode.
type Model struct {
	ID    int64
	Name  string
	Class string

	Translation mathutil.Vec3
	Rotation    mathutil.Vec3
	Scaling     mathutil.Vec3
}

// LocalTransform composes the model's Lcl TRS properties.
func (m *Model) LocalTransform() mathutil.Mat4 {
	return mathutil.ComposeTRS(m.Translation, m.Rotation, m.Scaling)
}

// Skin is a skin deformer record. Encounter order matters for tie-breaks,
// so scenes keep them in a slice.
type Skin struct {
	ID   int64
	Name string
}

// Cluster binds one bone to a set of control points. Transform holds the
// mesh-to-bone-space offset, TransformLink the bone's world bind pose;
// either may be absent (nil).
type Cluster struct {
	ID   int64
	Name string

	Indexes []int
	Weights []float64

	Transform     []float64
	TransformLink []float64
}

// Connection is one parent/child edge. Type is OO (object-object) or
// OP (object-property).
type Connection struct {
	Type   string
	Child  int64
	Parent int64
}

// Scene is the extracted object graph of one container file.
type Scene struct {
	Version uint32

	Geometries  []*Geometry
	Models      map[int64]*Model
	Skins       []*Skin
	Clusters    map[int64]*Cluster
	Connections []Connection
	BindPoses   map[int64][]float64
}

// GeometryByID returns the geometry record with the given id, or nil.
func (s *Scene) GeometryByID(id int64) *Geometry {
	for _, g := range s.Geometries {
		if g.ID == id {
			return g
		}
	}
	return nil
}

// ChildToParent builds the child→parent lookup over all connections.
// Later edges overwrite earlier ones, matching document order precedence.
func (s *Scene) ChildToParent() map[int64]int64 {
	m := make(map[int64]int64, len(s.Connections))
	for _, c := range s.Connections {
		m[c.Child] = c.Parent
	}
	return m
}

// NonSkinnedGeometries returns the geometries no skin deformer targets,
// in extraction order. These are merge candidates.
func (s *Scene) NonSkinnedGeometries() []*Geometry {
	skins := make(map[int64]bool, len(s.Skins))
	for _, sk := range s.Skins {
		skins[sk.ID] = true
	}
	skinned := make(map[int64]bool)
	for _, c := range s.Connections {
		if skins[c.Child] {
			skinned[c.Parent] = true
		}
	}
	var out []*Geometry
	for _, g := range s.Geometries {
		if !skinned[g.ID] {
			out = append(out, g)
		}
	}
	return out
}
