package math

import (
	"math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 1, Y: 2, Z: 3, W: 4}
	n := q.Normalize()

	length := math.Sqrt(n.X*n.X + n.Y*n.Y + n.Z*n.Z + n.W*n.W)
	if math.Abs(length-1.0) > 0.0001 {
		t.Errorf("Normalized quaternion length should be 1, got %v", length)
	}
}

func TestQuatRotate(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{0, 0, 1}, math.Pi/2)
	got := q.Rotate(Vec3{1, 0, 0})
	if got.Distance(Vec3{0, 1, 0}) > 1e-12 {
		t.Errorf("90 degree turn about Z should map X to Y, got %v", got)
	}
}

func TestQuatZUp(t *testing.T) {
	q := QuatZUp()
	if got := q.Array(); got != [4]float64{math.Sqrt2 / 2, 0, 0, -math.Sqrt2 / 2} {
		t.Errorf("QuatZUp().Array() = %v", got)
	}

	// Local +Z must land on world +Y.
	up := q.Rotate(Vec3{0, 0, 1})
	if up.Distance(Vec3{0, 1, 0}) > 1e-12 {
		t.Errorf("QuatZUp maps +Z to %v, want +Y", up)
	}
}
