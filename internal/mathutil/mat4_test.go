package mathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// applyRow transforms a point in the row-vector convention (v · M) used
// by scene transforms and bind matrices.
func applyRow(v Vec3, m Mat4) Vec3 {
	return Vec3{
		v[0]*m[0] + v[1]*m[4] + v[2]*m[8] + m[12],
		v[0]*m[1] + v[1]*m[5] + v[2]*m[9] + m[13],
		v[0]*m[2] + v[1]*m[6] + v[2]*m[10] + m[14],
	}
}

func assertVec3InDelta(t *testing.T, want, got Vec3, delta float64) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], delta, "component %d", i)
	}
}

func TestMat4FromSlice(t *testing.T) {
	vals := make([]float64, 16)
	for i := range vals {
		vals[i] = float64(i)
	}
	m := Mat4FromSlice(vals)
	assert.Equal(t, 15.0, m[15])

	assert.True(t, Mat4FromSlice(nil).IsIdentity())
	assert.True(t, Mat4FromSlice([]float64{1, 2, 3}).IsIdentity())
}

func TestMat4MulIdentity(t *testing.T) {
	m := ComposeTRS(Vec3{1, 2, 3}, Vec3{30, 45, 60}, Vec3{2, 2, 2})
	assert.Equal(t, m, Mat4Mul(m, Mat4Identity()))
	assert.Equal(t, m, Mat4Mul(Mat4Identity(), m))
}

func TestMat4Inverse(t *testing.T) {
	m := ComposeTRS(Vec3{5, -3, 12}, Vec3{25, -40, 110}, Vec3{1.5, 1.5, 1.5})
	inv := m.Inverse()

	prod := Mat4Mul(m, inv)
	assert.True(t, prod.IsIdentity(), "m * inv(m) = %v", prod)

	p := Vec3{10, 20, 30}
	back := applyRow(applyRow(p, m), inv)
	assertVec3InDelta(t, p, back, 1e-9)
}

func TestMat4InverseSingular(t *testing.T) {
	var zero Mat4
	assert.True(t, zero.Inverse().IsIdentity())
}

func TestMat4Transpose(t *testing.T) {
	m := Mat4{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}
	want := Mat4{
		1, 5, 9, 13,
		2, 6, 10, 14,
		3, 7, 11, 15,
		4, 8, 12, 16,
	}
	assert.Equal(t, want, m.Transpose())
	assert.Equal(t, m, m.Transpose().Transpose())
}

func TestEulerDegToMat4(t *testing.T) {
	tables := map[string]struct {
		rot  Vec3
		in   Vec3
		want Vec3
	}{
		"x90_y_to_z":  {Vec3{90, 0, 0}, Vec3{0, 1, 0}, Vec3{0, 0, 1}},
		"y90_z_to_x":  {Vec3{0, 90, 0}, Vec3{0, 0, 1}, Vec3{1, 0, 0}},
		"z90_x_to_y":  {Vec3{0, 0, 90}, Vec3{1, 0, 0}, Vec3{0, 1, 0}},
		"identity":    {Vec3{0, 0, 0}, Vec3{1, 2, 3}, Vec3{1, 2, 3}},
		"full_circle": {Vec3{360, 360, 360}, Vec3{1, 2, 3}, Vec3{1, 2, 3}},
	}
	for name, table := range tables {
		t.Run(name, func(t *testing.T) {
			m := EulerDegToMat4(table.rot[0], table.rot[1], table.rot[2])
			assertVec3InDelta(t, table.want, applyRow(table.in, m), 1e-9)
		})
	}
}

func TestComposeTRS(t *testing.T) {
	m := ComposeTRS(Vec3{1, 2, 3}, Vec3{0, 0, 0}, Vec3{2, 2, 2})
	got := applyRow(Vec3{1, 1, 1}, m)
	assertVec3InDelta(t, Vec3{3, 4, 5}, got, 1e-12)

	// Rotation applies before translation.
	m = ComposeTRS(Vec3{10, 0, 0}, Vec3{0, 0, 90}, Vec3{1, 1, 1})
	got = applyRow(Vec3{1, 0, 0}, m)
	assertVec3InDelta(t, Vec3{10, 1, 0}, got, 1e-9)
}

func TestFromMat3TranslationMulPoint(t *testing.T) {
	// MulPoint is the column-vector path used for cluster offsets.
	m := FromMat3Translation(RotZ(Deg2Rad(90)), Vec3{0, 0, 5})
	got := m.MulPoint(Vec3{1, 0, 0})
	require.InDelta(t, 0, got[0], 1e-9)
	require.InDelta(t, 1, got[1], 1e-9)
	require.InDelta(t, 5, got[2], 1e-9)
}
