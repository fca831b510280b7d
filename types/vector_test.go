package types

import (
	"math"
	"testing"
)

func TestVec3Ops(t *testing.T) {
	a := XYZ(1, 2, 3)
	b := XYZ(4, 5, 6)

	if got := a.Add(b); got != (Vec3{5, 7, 9}) {
		t.Fatalf("expected sum to be [5 7 9]; got %v", got)
	}
	if got := b.Sub(a); got != (Vec3{3, 3, 3}) {
		t.Fatalf("expected difference to be [3 3 3]; got %v", got)
	}
	if got := a.Mul(2); got != (Vec3{2, 4, 6}) {
		t.Fatalf("expected scaled vector to be [2 4 6]; got %v", got)
	}
	if got := a.Neg(); got != (Vec3{-1, -2, -3}) {
		t.Fatalf("expected negated vector to be [-1 -2 -3]; got %v", got)
	}
	if got := a.Dot(b); got != 32 {
		t.Fatalf("expected dot product to be 32; got %f", got)
	}
}

func TestVec3Cross(t *testing.T) {
	x := XYZ(1, 0, 0)
	y := XYZ(0, 1, 0)

	if got := x.Cross(y); got != (Vec3{0, 0, 1}) {
		t.Fatalf("expected x cross y to be [0 0 1]; got %v", got)
	}
	if got := y.Cross(x); got != (Vec3{0, 0, -1}) {
		t.Fatalf("expected y cross x to be [0 0 -1]; got %v", got)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := XYZ(0, 3, 4)
	n := v.Normalize()

	if math.Abs(float64(n.Len()-1)) > 1e-6 {
		t.Fatalf("expected normalized vector length to be 1; got %f", n.Len())
	}
	if n != (Vec3{0, 0.6, 0.8}) {
		t.Fatalf("expected normalized vector to be [0 0.6 0.8]; got %v", n)
	}
}

func TestVec3NormalizeZeroVector(t *testing.T) {
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Fatalf("expected normalized zero vector to be the zero vector; got %v", got)
	}
}

func TestVec3Finite(t *testing.T) {
	if !XYZ(1, 2, 3).Finite() {
		t.Fatal("expected finite vector to report Finite() == true")
	}

	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	for _, v := range []Vec3{{nan, 0, 0}, {0, inf, 0}, {0, 0, -inf}} {
		if v.Finite() {
			t.Fatalf("expected %v to report Finite() == false", v)
		}
	}
}

func TestMinMaxVec3(t *testing.T) {
	a := XYZ(1, 5, -3)
	b := XYZ(2, -4, 0)

	if got := MinVec3(a, b); got != (Vec3{1, -4, -3}) {
		t.Fatalf("expected component min to be [1 -4 -3]; got %v", got)
	}
	if got := MaxVec3(a, b); got != (Vec3{2, 5, 0}) {
		t.Fatalf("expected component max to be [2 5 0]; got %v", got)
	}
}
