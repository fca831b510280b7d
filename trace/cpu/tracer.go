// Package cpu provides a pure-Go fallback tracer used when no OpenCL device
// is available. It executes the same three-stage shadow-ray program as the
// device tracer (ray generation, miss, closest-hit) over the same flat BVH
// layout, with a worker pool standing in for the hardware scheduler.
package cpu

import (
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/heliotrace/heliotrace/geom"
	"github.com/heliotrace/heliotrace/log"
	"github.com/heliotrace/heliotrace/scene"
	"github.com/heliotrace/heliotrace/scene/bvh"
	"github.com/heliotrace/heliotrace/trace"
	"github.com/heliotrace/heliotrace/types"
)

// Traversal stack depth; enough for any tree the builder can produce on
// realistic scenes.
const maxTraversalDepth = 64

type Tracer struct {
	logger log.Logger

	id      string
	workers int

	sceneData *scene.Scene
	stats     trace.Stats
	closed    bool
}

// Create a new cpu tracer. A non-positive worker count selects one worker
// per logical CPU.
func NewTracer(id string, workers int) *Tracer {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Tracer{
		logger:  log.New("cpu tracer"),
		id:      id,
		workers: workers,
	}
}

// Get tracer id.
func (tr *Tracer) Id() string {
	return tr.id
}

// Prepare the tracer for launches. The cpu tracer has no device program to
// compile; Init only validates that the tracer is still usable.
func (tr *Tracer) Init() error {
	if tr.closed {
		return trace.ErrTracerClosed
	}
	tr.logger.Debugf("using %d workers", tr.workers)
	return nil
}

// Upload scene geometry. The cpu tracer traverses the scene in place; no
// copy is made and the scene must not be mutated while launches are running.
func (tr *Tracer) UploadScene(sc *scene.Scene) error {
	if tr.closed {
		return trace.ErrTracerClosed
	}
	tr.sceneData = sc
	return nil
}

// Execute one blocking shadow-ray launch. The flat ray index space is split
// into contiguous chunks, one per worker; the per-face accumulators are the
// only shared mutable state and are updated with atomic adds.
func (tr *Tracer) Dispatch(req *trace.Request) error {
	if tr.closed {
		return trace.ErrTracerClosed
	}
	if tr.sceneData == nil {
		return trace.ErrNoSceneData
	}
	if err := req.Validate(); err != nil {
		return err
	}

	for i := range req.Results {
		req.Results[i] = 0
	}

	rayCount := req.RayCount()
	tr.stats = trace.Stats{RayCount: uint64(rayCount)}
	if rayCount == 0 {
		return nil
	}

	start := time.Now()

	chunk := (rayCount + tr.workers - 1) / tr.workers
	var wg sync.WaitGroup
	for first := 0; first < rayCount; first += chunk {
		last := first + chunk
		if last > rayCount {
			last = rayCount
		}

		wg.Add(1)
		go func(first, last int) {
			defer wg.Done()
			for index := first; index < last; index++ {
				tr.generateRay(req, index)
			}
		}(first, last)
	}
	wg.Wait()

	tr.stats.TraceTime = time.Since(start)
	tr.logger.Debugf("traced %d rays in %d ms", rayCount, tr.stats.TraceTime.Nanoseconds()/1e6)
	return nil
}

// Retrieve last launch statistics.
func (tr *Tracer) Stats() *trace.Stats {
	return &tr.stats
}

// Shutdown the tracer. Safe to call more than once.
func (tr *Tracer) Close() {
	tr.sceneData = nil
	tr.closed = true
}

// The ray generation stage for one flat launch index.
func (tr *Tracer) generateRay(req *trace.Request, index int) {
	faceIndex, sunIndex := trace.DecodeRayIndex(index, req.SunCount())

	// Unreachable under correct launch sizing; kept as a defensive check
	// mirroring the device kernel.
	if faceIndex >= req.FaceCount() || sunIndex >= req.SunCount() {
		tr.logger.Errorf("ray index %d decoded out of range: face %d, sun %d", index, faceIndex, sunIndex)
		return
	}

	normal := req.FaceNormals[faceIndex].Vec3()

	// Sun vectors follow the solar incidence convention (sun towards
	// ground); the shadow ray travels the opposite way.
	rayDir := req.SunDirections[sunIndex].Vec3().Neg()

	// Cull back-facing and near-grazing pairs; the face counts as not
	// illuminated for this sample.
	if normal.Dot(rayDir) <= trace.BackfaceEpsilon {
		return
	}

	origin := req.FaceCentroids[faceIndex].Vec3().Add(normal.Mul(req.RayOffset))

	// The occlusion payload lives on this invocation's stack and is shared
	// with the miss/closest-hit stages through the trace call only.
	var payload uint32
	tr.traceOcclusion(origin, rayDir, &payload)

	if payload == 0 {
		atomicAddFloat32(&req.Results[faceIndex], 1.0)
	}
}

// Trace a single occlusion ray against the scene BVH. The trace terminates
// at the first intersection found and routes the outcome through the
// closest-hit or miss stage.
func (tr *Tracer) traceOcclusion(origin, dir types.Vec3, payload *uint32) {
	sc := tr.sceneData

	var stack [maxTraversalDepth]uint32
	stackIndex := 0
	stack[0] = 0

	for stackIndex >= 0 {
		node := &sc.Nodes[stack[stackIndex]]
		stackIndex--

		bounds := nodeBounds(node)
		if !bounds.IntersectRay(origin, dir, trace.MinTraceDist, math.MaxFloat32) {
			continue
		}

		if node.Leaf() {
			first, count := node.Primitives()
			for i := first; i < first+count; i++ {
				if sc.Triangles[i].IntersectRay(origin, dir, trace.MinTraceDist, math.MaxFloat32) {
					closestHitStage(payload)
					return
				}
			}
			continue
		}

		left, right := node.ChildNodes()
		stack[stackIndex+1] = left
		stack[stackIndex+2] = right
		stackIndex += 2
	}

	missStage(payload)
}

// The miss stage: the ray reached the sun unobstructed.
func missStage(payload *uint32) {
	*payload = 0
}

// The closest-hit stage: any hit means the face is shadowed for this sample;
// no geometric detail of the hit is needed.
func closestHitStage(payload *uint32) {
	*payload = 1
}

func nodeBounds(node *bvh.Node) geom.AABB {
	return geom.AABB{Min: node.Min, Max: node.Max}
}
