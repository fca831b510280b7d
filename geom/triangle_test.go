package geom

import (
	"math"
	"testing"

	"github.com/heliotrace/heliotrace/types"
)

func TestNewTriangleDerivedFields(t *testing.T) {
	tri := NewTriangle(
		types.XYZ(0, 0, 0),
		types.XYZ(1, 0, 0),
		types.XYZ(0, 1, 0),
	)

	if tri.Edge1 != (types.Vec3{1, 0, 0}) {
		t.Fatalf("expected edge1 to be [1 0 0]; got %v", tri.Edge1)
	}
	if tri.Edge2 != (types.Vec3{0, 1, 0}) {
		t.Fatalf("expected edge2 to be [0 1 0]; got %v", tri.Edge2)
	}
	if tri.Normal != (types.Vec3{0, 0, 1}) {
		t.Fatalf("expected normal to be [0 0 1]; got %v", tri.Normal)
	}

	expCentroid := types.XYZ(1.0/3.0, 1.0/3.0, 0)
	if tri.Centroid.Sub(expCentroid).Len() > 1e-6 {
		t.Fatalf("expected centroid to be %v; got %v", expCentroid, tri.Centroid)
	}
}

func TestDegenerateTriangleNormal(t *testing.T) {
	// All three vertices on the same line; the normal must degrade to the
	// zero vector instead of NaNs.
	tri := NewTriangle(
		types.XYZ(0, 0, 0),
		types.XYZ(1, 1, 1),
		types.XYZ(2, 2, 2),
	)

	if tri.Normal != (types.Vec3{}) {
		t.Fatalf("expected degenerate triangle normal to be the zero vector; got %v", tri.Normal)
	}
}

func TestTriangleBBox(t *testing.T) {
	tri := NewTriangle(
		types.XYZ(-1, 0, 2),
		types.XYZ(3, -2, 0),
		types.XYZ(0, 1, -1),
	)

	bbox := tri.BBox()
	if bbox[0] != (types.Vec3{-1, -2, -1}) {
		t.Fatalf("expected bbox min to be [-1 -2 -1]; got %v", bbox[0])
	}
	if bbox[1] != (types.Vec3{3, 1, 2}) {
		t.Fatalf("expected bbox max to be [3 1 2]; got %v", bbox[1])
	}
}

func TestTriangleIntersectRay(t *testing.T) {
	tri := NewTriangle(
		types.XYZ(-1, -1, 5),
		types.XYZ(1, -1, 5),
		types.XYZ(0, 1, 5),
	)

	origin := types.XYZ(0, 0, 0)
	up := types.XYZ(0, 0, 1)

	if !tri.IntersectRay(origin, up, 1e-4, math.MaxFloat32) {
		t.Fatal("expected ray through triangle interior to hit")
	}
	if tri.IntersectRay(origin, up.Neg(), 1e-4, math.MaxFloat32) {
		t.Fatal("expected ray pointing away from triangle to miss")
	}
	if tri.IntersectRay(types.XYZ(5, 5, 0), up, 1e-4, math.MaxFloat32) {
		t.Fatal("expected ray outside triangle footprint to miss")
	}
	// Hit beyond tMax must be rejected.
	if tri.IntersectRay(origin, up, 1e-4, 4.0) {
		t.Fatal("expected hit past tMax to be rejected")
	}
}

func TestDegenerateTriangleNeverHits(t *testing.T) {
	tri := NewTriangle(
		types.XYZ(0, 0, 5),
		types.XYZ(1, 1, 5),
		types.XYZ(2, 2, 5),
	)

	dirs := []types.Vec3{
		types.XYZ(0, 0, 1),
		types.XYZ(0, 0, -1),
		types.XYZ(0.5, 0.5, 1).Normalize(),
	}
	for _, dir := range dirs {
		if tri.IntersectRay(types.XYZ(0.5, 0.5, 0), dir, 1e-4, math.MaxFloat32) {
			t.Fatalf("expected zero-area triangle to never hit; dir %v", dir)
		}
	}
}

func TestAABBIntersectRay(t *testing.T) {
	box := NewAABB().
		Include(types.XYZ(-1, -1, -1)).
		Include(types.XYZ(1, 1, 1))

	if !box.IntersectRay(types.XYZ(0, 0, -5), types.XYZ(0, 0, 1), 1e-4, math.MaxFloat32) {
		t.Fatal("expected ray aimed at box to hit")
	}
	if box.IntersectRay(types.XYZ(0, 5, -5), types.XYZ(0, 0, 1), 1e-4, math.MaxFloat32) {
		t.Fatal("expected ray passing beside box to miss")
	}
	// Parallel ray with origin inside the slab.
	if !box.IntersectRay(types.XYZ(0.5, 0.5, -5), types.XYZ(0, 0, 1), 1e-4, math.MaxFloat32) {
		t.Fatal("expected axis-parallel ray through box to hit")
	}
}

func TestAABBLongestAxis(t *testing.T) {
	box := NewAABB().
		Include(types.XYZ(0, 0, 0)).
		Include(types.XYZ(1, 5, 2))

	if got := box.LongestAxis(); got != 1 {
		t.Fatalf("expected longest axis to be 1; got %d", got)
	}
}
