package geom

import (
	"math"

	"github.com/heliotrace/heliotrace/types"
)

// Axis-aligned bounding box.
type AABB struct {
	Min types.Vec3
	Max types.Vec3
}

// Create an empty AABB that can be extended via Union/Include.
func NewAABB() AABB {
	return AABB{
		Min: types.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: types.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
}

// Extend the AABB to include another AABB.
func (b AABB) Union(other AABB) AABB {
	return AABB{
		Min: types.MinVec3(b.Min, other.Min),
		Max: types.MaxVec3(b.Max, other.Max),
	}
}

// Extend the AABB to include a point.
func (b AABB) Include(p types.Vec3) AABB {
	return AABB{
		Min: types.MinVec3(b.Min, p),
		Max: types.MaxVec3(b.Max, p),
	}
}

// Get the index of the longest AABB axis (0=x, 1=y, 2=z).
func (b AABB) LongestAxis() int {
	side := b.Max.Sub(b.Min)
	axis := 0
	if side[1] > side[axis] {
		axis = 1
	}
	if side[2] > side[axis] {
		axis = 2
	}
	return axis
}

// Test a ray against the AABB using the slab method.
func (b AABB) IntersectRay(origin, dir types.Vec3, tMin, tMax float32) bool {
	for axis := 0; axis < 3; axis++ {
		if dir[axis] == 0 {
			// Ray parallel to the slab; hit only if the origin lies inside it.
			if origin[axis] < b.Min[axis] || origin[axis] > b.Max[axis] {
				return false
			}
			continue
		}

		invDir := 1.0 / dir[axis]
		t0 := (b.Min[axis] - origin[axis]) * invDir
		t1 := (b.Max[axis] - origin[axis]) * invDir
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMin > tMax {
			return false
		}
	}
	return true
}
