package scene

import (
	"errors"
	"time"

	"github.com/heliotrace/heliotrace/geom"
	"github.com/heliotrace/heliotrace/log"
	"github.com/heliotrace/heliotrace/scene/bvh"
	"github.com/heliotrace/heliotrace/types"
)

// The minimum number of triangles that can be stored in a BVH leaf.
const minTrisPerLeaf = 4

var ErrEmptyScene = errors.New("scene: at least one occluder triangle is required")

// Scene packages the occluder geometry in a layout that is usable both for
// host-side traversal and for direct device upload: a BVH node array and an
// unindexed vertex stream with 3 vertices per triangle. Triangles are stored
// in BVH leaf order; leaf nodes reference them by index into Triangles and
// the triangle at index i owns Vertices[3*i : 3*i+3].
type Scene struct {
	Triangles []geom.Triangle
	Vertices  []types.Vec4
	Nodes     []bvh.Node
}

// Build a scene from the supplied occluder triangles. The triangle list must
// contain at least one entry; degenerate triangles are accepted and simply
// never occlude anything.
func Build(triangles []geom.Triangle) (*Scene, error) {
	if len(triangles) == 0 {
		return nil, ErrEmptyScene
	}

	logger := log.New("scene")
	start := time.Now()

	sc := &Scene{
		Triangles: make([]geom.Triangle, 0, len(triangles)),
	}

	// The leaf callback reorders triangles so that each leaf references a
	// contiguous block.
	sc.Nodes = bvh.Build(triangles, minTrisPerLeaf, func(leaf *bvh.Node, items []geom.Triangle) {
		leaf.SetPrimitives(uint32(len(sc.Triangles)), uint32(len(items)))
		sc.Triangles = append(sc.Triangles, items...)
	})

	// Expand triangles into the flat vertex stream uploaded to the device.
	sc.Vertices = make([]types.Vec4, 0, 3*len(sc.Triangles))
	for _, tri := range sc.Triangles {
		sc.Vertices = append(sc.Vertices,
			tri.V0.Vec4(0),
			tri.V1.Vec4(0),
			tri.V2.Vec4(0),
		)
	}

	logger.Debugf(
		"packaged %d triangles into %d bvh nodes in %d ms",
		len(sc.Triangles), len(sc.Nodes), time.Since(start).Nanoseconds()/1e6,
	)

	return sc, nil
}
