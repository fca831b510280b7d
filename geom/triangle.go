package geom

import (
	"github.com/heliotrace/heliotrace/types"
)

// Triangle is a scene occluder. The edge vectors, face normal and centroid
// are derived from the vertices at construction time and never mutated.
type Triangle struct {
	V0, V1, V2 types.Vec3

	Edge1    types.Vec3
	Edge2    types.Vec3
	Normal   types.Vec3
	Centroid types.Vec3
}

// Construct a triangle from three vertices and calculate its derived fields.
// Degenerate (zero-area) triangles are allowed; their normal is the zero
// vector and they never register a ray hit.
func NewTriangle(v0, v1, v2 types.Vec3) Triangle {
	e1 := v1.Sub(v0)
	e2 := v2.Sub(v0)
	return Triangle{
		V0:       v0,
		V1:       v1,
		V2:       v2,
		Edge1:    e1,
		Edge2:    e2,
		Normal:   e1.Cross(e2).Normalize(),
		Centroid: v0.Add(v1).Add(v2).Mul(1.0 / 3.0),
	}
}

// Get the triangle axis-aligned bounds.
func (t Triangle) BBox() [2]types.Vec3 {
	return [2]types.Vec3{
		types.MinVec3(t.V0, types.MinVec3(t.V1, t.V2)),
		types.MaxVec3(t.V0, types.MaxVec3(t.V1, t.V2)),
	}
}

// Get the triangle center for spatial partitioning purposes.
func (t Triangle) Center() types.Vec3 {
	return t.Centroid
}

const intersectEpsilon = 1e-7

// Test a ray against the triangle using the Moller-Trumbore algorithm and
// report whether it hits within (tMin, tMax). Only the existence of a hit is
// evaluated; rays parallel to the triangle plane and zero-area triangles
// never hit.
func (t Triangle) IntersectRay(origin, dir types.Vec3, tMin, tMax float32) bool {
	h := dir.Cross(t.Edge2)
	det := t.Edge1.Dot(h)
	if det > -intersectEpsilon && det < intersectEpsilon {
		return false
	}

	invDet := 1.0 / det
	s := origin.Sub(t.V0)
	u := invDet * s.Dot(h)
	if u < 0 || u > 1 {
		return false
	}

	q := s.Cross(t.Edge1)
	v := invDet * dir.Dot(q)
	if v < 0 || u+v > 1 {
		return false
	}

	dist := invDet * t.Edge2.Dot(q)
	return dist > tMin && dist < tMax
}
