package mathutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRotYQuarterTurn(t *testing.T) {
	// The yaw remap for prop models: +90° around Y sends (x,y,z) to
	// (z,y,-x).
	r := RotY(Deg2Rad(90))
	got := r.MulVec3(Vec3{1, 2, 3})
	assertVec3InDelta(t, Vec3{3, 2, -1}, got, 1e-12)
}

func TestRotXRotZ(t *testing.T) {
	got := RotX(Deg2Rad(90)).MulVec3(Vec3{0, 1, 0})
	assertVec3InDelta(t, Vec3{0, 0, 1}, got, 1e-12)

	got = RotZ(Deg2Rad(90)).MulVec3(Vec3{1, 0, 0})
	assertVec3InDelta(t, Vec3{0, 1, 0}, got, 1e-12)
}

func TestMat3InverseOfRotation(t *testing.T) {
	r := Mat3Mul(RotY(0.7), RotX(-0.3))
	prod := Mat3Mul(r, r.Inverse())
	id := Mat3Identity()
	for i := 0; i < 9; i++ {
		assert.InDelta(t, id[i], prod[i], 1e-12, "entry %d", i)
	}
	// For pure rotations the inverse is the transpose.
	inv, tr := r.Inverse(), r.Transpose()
	for i := 0; i < 9; i++ {
		assert.InDelta(t, tr[i], inv[i], 1e-12, "entry %d", i)
	}
}

func TestMat3InverseSingular(t *testing.T) {
	var zero Mat3
	assert.Equal(t, Mat3Identity(), zero.Inverse())
}

func TestMat3Diag(t *testing.T) {
	d := Mat3Diag(2, 3, 4)
	got := d.MulVec3(Vec3{1, 1, 1})
	assert.Equal(t, Vec3{2, 3, 4}, got)
	assert.Equal(t, 24.0, d.Det())
}

func TestVec3Ops(t *testing.T) {
	a, b := Vec3{1, 2, 3}, Vec3{4, 5, 6}
	assert.Equal(t, Vec3{5, 7, 9}, a.Add(b))
	assert.Equal(t, Vec3{-3, -3, -3}, a.Sub(b))
	assert.Equal(t, Vec3{2, 4, 6}, a.Scale(2))
	assert.Equal(t, 32.0, a.Dot(b))
	assert.Equal(t, Vec3{-3, 6, -3}, a.Cross(b))
	assert.InDelta(t, math.Sqrt(14), a.Len(), 1e-12)
}

func TestVec3Normalize(t *testing.T) {
	n := Vec3{3, 0, 4}.Normalize()
	assertVec3InDelta(t, Vec3{0.6, 0, 0.8}, n, 1e-12)
	assert.InDelta(t, 1.0, n.Len(), 1e-12)

	// Degenerate input collapses to zero rather than dividing by it.
	assert.Equal(t, Vec3{}, Vec3{0, 1e-13, 0}.Normalize())
}

func TestDeg2Rad(t *testing.T) {
	assert.InDelta(t, math.Pi, Deg2Rad(180), 1e-12)
	assert.Equal(t, 0.0, Deg2Rad(0))
}
