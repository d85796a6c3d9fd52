package skin

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wartimes-fbx-exporter/internal/mathutil"
	"wartimes-fbx-exporter/internal/scene"
)

func quietLogger() *log.Logger { return log.New(io.Discard) }

func identityLink() []float64 {
	return []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

func translatedLink(x, y, z float64) []float64 {
	m := identityLink()
	m[12], m[13], m[14] = x, y, z
	return m
}

func scaledLink(s, x, y, z float64) []float64 {
	return []float64{
		s, 0, 0, 0,
		0, s, 0, 0,
		0, 0, s, 0,
		x, y, z, 1,
	}
}

func quadGeometry(id int64) *scene.Geometry {
	return &scene.Geometry{
		ID:   id,
		Name: "Gun",
		Positions: [][3]float64{
			{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		},
		Polygons: [][]int{{0, 1, 2, 3}},
	}
}

// rigScene builds the common fixture: one quad geometry, a three-bone
// chain whose alphabetical order is the reverse of its hierarchy, and a
// skin connected straight to the geometry.
func rigScene() *scene.Scene {
	return &scene.Scene{
		Version:    7400,
		Geometries: []*scene.Geometry{quadGeometry(100)},
		Models: map[int64]*scene.Model{
			200: {ID: 200, Name: "Gun", Class: "Mesh"},
			210: {ID: 210, Name: "c_root", Class: "LimbNode"},
			211: {ID: 211, Name: "b_mid", Class: "LimbNode"},
			212: {ID: 212, Name: "a_tip", Class: "LimbNode"},
		},
		Skins: []*scene.Skin{{ID: 300, Name: "Skin"}},
		Clusters: map[int64]*scene.Cluster{
			310: {ID: 310, Name: "c_root", Indexes: []int{0, 1}, Weights: []float64{1, 0.6}, TransformLink: identityLink()},
			311: {ID: 311, Name: "b_mid", Indexes: []int{1, 2}, Weights: []float64{0.4, 1}, TransformLink: translatedLink(0, 5, 0)},
			312: {ID: 312, Name: "a_tip", Indexes: []int{3}, Weights: []float64{1}, TransformLink: translatedLink(0, 10, 0)},
		},
		Connections: []scene.Connection{
			{Type: "OO", Child: 100, Parent: 200},
			{Type: "OO", Child: 300, Parent: 100},
			{Type: "OO", Child: 310, Parent: 300},
			{Type: "OO", Child: 311, Parent: 300},
			{Type: "OO", Child: 312, Parent: 300},
			{Type: "OO", Child: 210, Parent: 310},
			{Type: "OO", Child: 211, Parent: 311},
			{Type: "OO", Child: 212, Parent: 312},
			{Type: "OO", Child: 210, Parent: 200},
			{Type: "OO", Child: 211, Parent: 210},
			{Type: "OO", Child: 212, Parent: 211},
		},
		BindPoses: map[int64][]float64{},
	}
}

func TestResolveNoSkinDeformer(t *testing.T) {
	s := &scene.Scene{Geometries: []*scene.Geometry{quadGeometry(1)}}
	_, err := Resolve(s, quietLogger())
	assert.ErrorIs(t, err, ErrNoSkinDeformer)

	// A deformer with no cluster influences is not usable either.
	s.Skins = []*scene.Skin{{ID: 300}}
	_, err = Resolve(s, quietLogger())
	assert.ErrorIs(t, err, ErrNoSkinDeformer)
}

func TestResolveNoGeometry(t *testing.T) {
	s := rigScene()
	s.Geometries = nil
	_, err := Resolve(s, quietLogger())
	assert.ErrorIs(t, err, ErrNoGeometry)
}

func TestResolveTopologicalBoneOrder(t *testing.T) {
	sk, err := Resolve(rigScene(), quietLogger())
	require.NoError(t, err)

	// Alphabetical order is tip-first; the output must be parent-first.
	require.Len(t, sk.Bones, 3)
	assert.Equal(t, "c_root", sk.Bones[0].Name)
	assert.Equal(t, "b_mid", sk.Bones[1].Name)
	assert.Equal(t, "a_tip", sk.Bones[2].Name)
	assert.Equal(t, -1, sk.Bones[0].Parent)
	assert.Equal(t, 0, sk.Bones[1].Parent)
	assert.Equal(t, 1, sk.Bones[2].Parent)

	// Influence indices must follow the reorder: vertex 3 is weighted
	// by a_tip alone, which now sits at index 2.
	require.Len(t, sk.Influences, 4)
	assert.Equal(t, 2, sk.Influences[3][0].Bone)
	assert.InDelta(t, 1.0, sk.Influences[3][0].Weight, 1e-12)
}

func TestResolveWeightNormalization(t *testing.T) {
	s := rigScene()
	// Vertex 1 is influenced by c_root (0.6) and b_mid (0.4): already a
	// unit sum. Tighten the fixture to the classic 0.9/0.3 pair instead.
	s.Clusters[310].Weights = []float64{1, 0.9}
	s.Clusters[311].Weights = []float64{0.3, 1}

	sk, err := Resolve(s, quietLogger())
	require.NoError(t, err)

	v1 := sk.Influences[1]
	assert.Equal(t, 0, v1[0].Bone, "c_root carries the larger weight")
	assert.InDelta(t, 0.75, v1[0].Weight, 1e-12)
	assert.Equal(t, 1, v1[1].Bone)
	assert.InDelta(t, 0.25, v1[1].Weight, 1e-12)
	assert.Zero(t, v1[2].Weight)
	assert.Zero(t, v1[3].Weight)
}

func TestResolveInfluenceTruncation(t *testing.T) {
	s := &scene.Scene{
		Geometries: []*scene.Geometry{quadGeometry(100)},
		Models:     map[int64]*scene.Model{},
		Skins:      []*scene.Skin{{ID: 300, Name: "Skin"}},
		Clusters:   map[int64]*scene.Cluster{},
		Connections: []scene.Connection{
			{Type: "OO", Child: 300, Parent: 100},
		},
		BindPoses: map[int64][]float64{},
	}
	weights := []float64{0.5, 0.4, 0.3, 0.2, 0.1}
	for i, w := range weights {
		id := int64(310 + i)
		s.Clusters[id] = &scene.Cluster{
			ID:            id,
			Name:          string(rune('a' + i)),
			Indexes:       []int{0},
			Weights:       []float64{w},
			TransformLink: identityLink(),
		}
		s.Connections = append(s.Connections, scene.Connection{Type: "OO", Child: id, Parent: 300})
	}

	sk, err := Resolve(s, quietLogger())
	require.NoError(t, err)

	v0 := sk.Influences[0]
	sum := 0.0
	for _, in := range v0 {
		sum += in.Weight
	}
	assert.InDelta(t, 1.0, sum, 1e-12, "kept influences renormalize to one")
	assert.InDelta(t, 0.5/1.4, v0[0].Weight, 1e-12)
	assert.InDelta(t, 0.2/1.4, v0[3].Weight, 1e-12)
	for _, in := range v0 {
		assert.NotEqual(t, 4, in.Bone, "the weakest influence is dropped")
	}
}

func TestResolveScaleNormalization(t *testing.T) {
	s := rigScene()
	// Centimeter-unit export: every bind pose carries a factor of 2.
	s.Clusters[310].TransformLink = scaledLink(2, 0, 0, 0)
	s.Clusters[311].TransformLink = scaledLink(2, 0, 10, 0)
	s.Clusters[312].TransformLink = scaledLink(2, 0, 20, 0)

	sk, err := Resolve(s, quietLogger())
	require.NoError(t, err)

	assert.Equal(t, 2.0, sk.Scale)
	assert.Equal(t, 2.0, sk.Report.Scale)

	mid := sk.Bones[1] // b_mid
	assert.InDelta(t, 1.0, mid.BindPose[0], 1e-12, "rotation part normalized")
	assert.InDelta(t, 5.0, mid.BindPose[13], 1e-12, "translation normalized")
	assert.InDelta(t, 1.0, mid.BindPose[15], 1e-12, "homogeneous part untouched")

	// Inverse undoes the normalized bind.
	for i, b := range sk.Bones {
		prod := mathutil.Mat4Mul(b.BindPose, b.InvBindPose)
		assert.True(t, prod.IsIdentity(), "bone %d: bind * inv != identity", i)
	}
}

func TestResolveBindPoseFallback(t *testing.T) {
	s := rigScene()
	s.Clusters[311].TransformLink = nil
	s.BindPoses[211] = translatedLink(0, 7, 0)

	sk, err := Resolve(s, quietLogger())
	require.NoError(t, err)
	assert.InDelta(t, 7.0, sk.Bones[1].BindPose[13], 1e-12)
}

func TestResolvePicksLargestDeformer(t *testing.T) {
	s := rigScene()
	// A sleeve skin with a single influence rides on the same geometry.
	s.Skins = append([]*scene.Skin{{ID: 301, Name: "Sleeve"}}, s.Skins...)
	s.Clusters[320] = &scene.Cluster{ID: 320, Name: "sleeve", Indexes: []int{0}, Weights: []float64{1}, TransformLink: identityLink()}
	s.Connections = append(s.Connections,
		scene.Connection{Type: "OO", Child: 301, Parent: 100},
		scene.Connection{Type: "OO", Child: 320, Parent: 301},
	)

	sk, err := Resolve(s, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, int64(300), sk.Report.SkinID)
	assert.Equal(t, 5, sk.Report.InfluenceTotal)
	assert.Equal(t, "Skin", sk.Report.SkinName)
}

func TestResolveGeometryFallbacks(t *testing.T) {
	t.Run("direct", func(t *testing.T) {
		sk, err := Resolve(rigScene(), quietLogger())
		require.NoError(t, err)
		assert.Equal(t, GeoDirect, sk.Report.Fallback)
		assert.Equal(t, int64(100), sk.Report.GeometryID)
	})

	t.Run("child_of_model", func(t *testing.T) {
		s := rigScene()
		// Rewire the skin under the model instead of the geometry.
		for i, c := range s.Connections {
			if c.Child == 300 {
				s.Connections[i].Parent = 200
			}
		}
		sk, err := Resolve(s, quietLogger())
		require.NoError(t, err)
		assert.Equal(t, GeoChildOfModel, sk.Report.Fallback)
		assert.Equal(t, int64(100), sk.Report.GeometryID)
	})

	t.Run("shared_parent", func(t *testing.T) {
		// Exercised directly: the stage matters when the connection list
		// and the collapsed child→parent map disagree.
		s := &scene.Scene{Geometries: []*scene.Geometry{quadGeometry(100)}}
		ctp := map[int64]int64{100: 555, 300: 555}
		geo, fallback := locateGeometry(s, ctp, 300, 555, true, quietLogger())
		require.NotNil(t, geo)
		assert.Equal(t, GeoSharedParent, fallback)
		assert.Equal(t, int64(100), geo.ID)
	})

	t.Run("first_geometry", func(t *testing.T) {
		s := rigScene()
		// Disconnect the skin entirely: no target edge at all.
		var conns []scene.Connection
		for _, c := range s.Connections {
			if c.Child == 300 {
				continue
			}
			conns = append(conns, c)
		}
		s.Connections = conns
		sk, err := Resolve(s, quietLogger())
		require.NoError(t, err)
		assert.Equal(t, GeoFirst, sk.Report.Fallback)
	})
}

func TestResolveBoneCycle(t *testing.T) {
	s := &scene.Scene{
		Geometries: []*scene.Geometry{quadGeometry(100)},
		Models: map[int64]*scene.Model{
			210: {ID: 210, Name: "a", Class: "LimbNode"},
			211: {ID: 211, Name: "b", Class: "LimbNode"},
		},
		Skins: []*scene.Skin{{ID: 300, Name: "Skin"}},
		Clusters: map[int64]*scene.Cluster{
			310: {ID: 310, Name: "a", Indexes: []int{0}, Weights: []float64{1}, TransformLink: identityLink()},
			311: {ID: 311, Name: "b", Indexes: []int{1}, Weights: []float64{1}, TransformLink: identityLink()},
		},
		Connections: []scene.Connection{
			{Type: "OO", Child: 300, Parent: 100},
			{Type: "OO", Child: 310, Parent: 300},
			{Type: "OO", Child: 311, Parent: 300},
			{Type: "OO", Child: 210, Parent: 310},
			{Type: "OO", Child: 211, Parent: 311},
			// a and b parent each other
			{Type: "OO", Child: 210, Parent: 211},
			{Type: "OO", Child: 211, Parent: 210},
		},
		BindPoses: map[int64][]float64{},
	}
	_, err := Resolve(s, quietLogger())
	assert.ErrorIs(t, err, ErrBoneCycle)
}

func TestGeometryFallbackString(t *testing.T) {
	assert.Equal(t, "direct", GeoDirect.String())
	assert.Equal(t, "child-of-model", GeoChildOfModel.String())
	assert.Equal(t, "shared-parent", GeoSharedParent.String())
	assert.Equal(t, "first-geometry", GeoFirst.String())
	assert.Equal(t, "unknown", GeometryFallback(99).String())
}
