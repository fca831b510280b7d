package trace

import (
	"errors"
	"time"

	"github.com/heliotrace/heliotrace/scene"
	"github.com/heliotrace/heliotrace/types"
)

// Trace parameters shared by all tracer implementations. The backface
// epsilon intentionally excludes near-grazing incidence as well as
// back-facing pairs; the minimum trace distance guards against
// self-intersection at the offset ray origin.
const (
	BackfaceEpsilon float32 = 0.001
	MinTraceDist    float32 = 0.0001
)

var (
	ErrNoSceneData     = errors.New("trace: no scene data uploaded")
	ErrInvalidRequest  = errors.New("trace: face, sun and result buffers have inconsistent lengths")
	ErrInvalidOffset   = errors.New("trace: ray offset must be > 0")
	ErrTracerClosed    = errors.New("trace: tracer has been closed")
	ErrNoDeviceProgram = errors.New("trace: device program not found")
)

// Request describes one launch of face_count x sun_count shadow rays. Face
// and sun vectors are stored in device layout (float4-aligned, w unused).
// Results must be sized to the face count; tracers zero it before launching.
type Request struct {
	FaceCentroids []types.Vec4
	FaceNormals   []types.Vec4
	SunDirections []types.Vec4

	// Distance the ray origin is pushed along the face normal to avoid
	// spurious self-intersection with the originating surface.
	RayOffset float32

	// Per-face sun-visible sample accumulators.
	Results []float32
}

// Validate request shape before any tracer work happens.
func (r *Request) Validate() error {
	if len(r.FaceCentroids) != len(r.FaceNormals) || len(r.Results) != len(r.FaceCentroids) {
		return ErrInvalidRequest
	}
	if r.RayOffset <= 0 {
		return ErrInvalidOffset
	}
	return nil
}

// FaceCount returns the number of analyzed faces.
func (r *Request) FaceCount() int {
	return len(r.FaceCentroids)
}

// SunCount returns the number of sun direction samples.
func (r *Request) SunCount() int {
	return len(r.SunDirections)
}

// RayCount returns the total size of the flat launch index space.
func (r *Request) RayCount() int {
	return r.FaceCount() * r.SunCount()
}

// Per-launch statistics. Advisory only; not part of the result contract.
type Stats struct {
	// Time spent uploading scene and launch data.
	UploadTime time.Duration

	// Time spent executing the shadow-ray launch.
	TraceTime time.Duration

	// The number of rays dispatched by the last launch.
	RayCount uint64
}

// Tracer executes shadow-ray launches against an uploaded scene. A tracer is
// single-owner: it serves one analysis call at a time and must be Closed by
// the same owner that Init-ed it. Close is safe to call on a partially
// initialized tracer.
type Tracer interface {
	// Get tracer id.
	Id() string

	// Prepare the tracer for launches (device init, program compile).
	Init() error

	// Upload scene geometry and acceleration structure.
	UploadScene(sc *scene.Scene) error

	// Execute one blocking shadow-ray launch and populate req.Results.
	Dispatch(req *Request) error

	// Retrieve last launch statistics.
	Stats() *Stats

	// Shutdown and cleanup tracer.
	Close()
}

// DecodeRayIndex maps a flat launch index to its (face, sun) pair. The
// mapping is row-major: all sun samples for face 0 first, then face 1 and so
// on. Integer floor-division and modulo are load-bearing here; every tracer
// implementation must use the same pairing.
func DecodeRayIndex(index, sunCount int) (faceIndex, sunIndex int) {
	return index / sunCount, index % sunCount
}
