package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wartimes-fbx-exporter/internal/scene"
	"wartimes-fbx-exporter/internal/skin"
)

func TestFindRigidBones(t *testing.T) {
	bones := func(names ...string) []skin.Bone {
		bs := make([]skin.Bone, len(names))
		for i, n := range names {
			bs[i] = skin.Bone{Name: n}
		}
		return bs
	}

	tests := map[string]struct {
		bones       []skin.Bone
		left, right string
		wantL       int
		wantR       int
	}{
		"both_found": {
			bones: bones("root", "forearm.L", "forearm.R"),
			left:  "forearm.L", right: "forearm.R",
			wantL: 1, wantR: 2,
		},
		"last_match_wins": {
			bones: bones("forearm.L", "hand.L", "forearm.L.001", "forearm.R"),
			left:  "forearm.L", right: "forearm.R",
			wantL: 2, wantR: 3,
		},
		"substring_match": {
			bones: bones("root", "DEF-forearm.L.bone", "DEF-forearm.R.bone"),
			left:  "forearm.L", right: "forearm.R",
			wantL: 1, wantR: 2,
		},
		"missing_defaults_to_root": {
			bones: bones("root", "spine"),
			left:  "forearm.L", right: "forearm.R",
			wantL: 0, wantR: 0,
		},
		"empty_skeleton": {
			bones: nil,
			left:  "forearm.L", right: "forearm.R",
			wantL: 0, wantR: 0,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			l, r := FindRigidBones(tc.bones, tc.left, tc.right)
			assert.Equal(t, tc.wantL, l)
			assert.Equal(t, tc.wantR, r)
		})
	}
}

func TestMergeRigidSideSelection(t *testing.T) {
	// A quad straddling the YZ plane: negative X corners ride the right
	// bone, the rest (including x == 0) the left one.
	geo := &scene.Geometry{
		ID:   400,
		Name: "sleeve",
		Positions: [][3]float64{
			{-2, 0, 0},
			{0, 0, 0},
			{1, 1, 0},
			{-1, 1, 0},
		},
		Polygons: [][]int{{0, 1, 2, 3}},
	}

	b := NewBuilder(quietLogger())
	require.NoError(t, b.MergeRigid(geo, 5, 7))

	require.Len(t, b.vertices, 4)
	assert.Equal(t, [4]int{7, 0, 0, 0}, b.vertices[0].Bones)
	assert.Equal(t, [4]int{5, 0, 0, 0}, b.vertices[1].Bones)
	assert.Equal(t, [4]int{5, 0, 0, 0}, b.vertices[2].Bones)
	assert.Equal(t, [4]int{7, 0, 0, 0}, b.vertices[3].Bones)
	for _, v := range b.vertices {
		assert.Equal(t, [4]float64{1, 0, 0, 0}, v.Weights)
	}
}

func TestMergeRigidAppendsAfterSkinned(t *testing.T) {
	b := NewBuilder(quietLogger())
	require.NoError(t, b.AddSkinned(quadSkinned()))

	geo := &scene.Geometry{
		ID:        401,
		Name:      "scope",
		Positions: [][3]float64{{10, 0, 0}, {11, 0, 0}, {11, 1, 0}},
		Polygons:  [][]int{{0, 1, 2}},
	}
	require.NoError(t, b.MergeRigid(geo, 0, 0))

	m, err := b.Build()
	require.NoError(t, err)

	assert.Len(t, m.Vertices, 7)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3, 4, 5, 6}, m.Indices)

	// Merged positions are stored untouched: the skin scale never
	// applies to rigid attachments.
	assert.Equal(t, [3]float64{10, 0, 0}, m.Vertices[4].Position)
}

func TestMergeRigidAttributes(t *testing.T) {
	geo := &scene.Geometry{
		ID:            402,
		Name:          "sleeve",
		Positions:     [][3]float64{{1, 0, 0}, {2, 0, 0}, {2, 1, 0}},
		Polygons:      [][]int{{0, 1, 2}},
		Normals:       [][3]float64{{1, 0, 0}, {0, 0, 1}},
		NormalMapping: scene.MapByPolygonVertex,
		NormalRef:     scene.RefIndexToDirect,
		NormalIndices: []int{1, 1, 0},
		UVs:           [][2]float64{{0, 0}, {0.5, 0}, {0.5, 1}},
		UVMapping:     scene.MapByVertex,
		UVRef:         scene.RefDirect,
	}

	b := NewBuilder(quietLogger())
	require.NoError(t, b.MergeRigid(geo, 1, 2))

	require.Len(t, b.vertices, 3)
	assert.Equal(t, [3]float64{0, 0, 1}, b.vertices[0].Normal)
	assert.Equal(t, [3]float64{0, 0, 1}, b.vertices[1].Normal)
	assert.Equal(t, [3]float64{1, 0, 0}, b.vertices[2].Normal)
	assert.Equal(t, [2]float64{0.5, 0}, b.vertices[1].UV)
}

func TestMergeRigidDeduplicatesWithinGeometry(t *testing.T) {
	geo := &scene.Geometry{
		ID:   403,
		Name: "sleeve",
		Positions: [][3]float64{
			{0, 0, 0},
			{1, 0, 0},
			{1, 1, 0},
			{0, 1, 0},
		},
		Polygons: [][]int{{0, 1, 2}, {0, 2, 3}},
	}

	b := NewBuilder(quietLogger())
	require.NoError(t, b.MergeRigid(geo, 0, 0))

	assert.Len(t, b.vertices, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, b.indices)
}

func TestMergeRigidRejectsBadControlPoint(t *testing.T) {
	geo := &scene.Geometry{
		ID:        404,
		Name:      "broken",
		Positions: [][3]float64{{0, 0, 0}},
		Polygons:  [][]int{{0, 5}},
	}

	b := NewBuilder(quietLogger())
	err := b.MergeRigid(geo, 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "control point 5")
}
