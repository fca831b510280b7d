// Package solar is the entry point for solar exposure analysis. It owns the
// full lifecycle of one analysis call: input validation, scene acceleration
// build, tracer selection and initialization, the blocking shadow-ray
// dispatch and the teardown of every allocated resource, on success and
// failure paths alike.
package solar

import (
	"fmt"
	"time"

	"github.com/heliotrace/heliotrace/geom"
	"github.com/heliotrace/heliotrace/log"
	"github.com/heliotrace/heliotrace/scene"
	"github.com/heliotrace/heliotrace/trace"
	"github.com/heliotrace/heliotrace/trace/cpu"
	"github.com/heliotrace/heliotrace/trace/opencl"
	"github.com/heliotrace/heliotrace/trace/opencl/device"
	"github.com/heliotrace/heliotrace/types"
)

var logger = log.New("solar")

// AnalysisRequest carries the host-resident inputs for one analysis call.
type AnalysisRequest struct {
	// Parallel per-face sequences; normals must be unit length and are
	// not re-normalized.
	FaceCentroids []types.Vec3
	FaceNormals   []types.Vec3

	// All occluding geometry: the analyzed mesh (if self-shadowing should
	// be modeled) plus surrounding context. At least one triangle is
	// required.
	SceneTriangles []geom.Triangle

	// One unit vector per time-sample following the solar incidence
	// convention (pointing from the sun towards the ground).
	SunDirections []types.Vec3

	// Distance the ray origin is pushed along the face normal to avoid
	// self-intersection. Must be tuned to the scene scale; 0.1 scene
	// units is a reasonable default for building-sized geometry.
	RayOffset float32
}

type config struct {
	forceCPU     bool
	deviceFilter string
	programPath  string
	cpuWorkers   int
}

type Option func(*config)

// Skip device selection and run the analysis on the pure-Go tracer.
func ForceCPU() Option {
	return func(cfg *config) {
		cfg.forceCPU = true
	}
}

// Only select opencl devices whose name contains the given fragment.
func DeviceFilter(name string) Option {
	return func(cfg *config) {
		cfg.deviceFilter = name
	}
}

// Override the device program path (default: kernels/solar.cl relative to
// the working directory).
func ProgramPath(path string) Option {
	return func(cfg *config) {
		cfg.programPath = path
	}
}

// Set the cpu tracer worker count (default: one per logical CPU).
func CPUWorkers(count int) Option {
	return func(cfg *config) {
		cfg.cpuWorkers = count
	}
}

// Analyze computes, for every face, the number of sun direction samples for
// which the face receives direct sun. The returned slice has one accumulator
// per face in input order. Analyze either returns a fully populated result
// or an error; it never returns partial results.
func Analyze(req AnalysisRequest, opts ...Option) ([]float32, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := validate(&req); err != nil {
		return nil, err
	}

	// An empty face set is a valid no-op analysis; no scene build, no
	// tracer, no launch.
	if len(req.FaceCentroids) == 0 {
		return []float32{}, nil
	}

	start := time.Now()

	sc, err := scene.Build(req.SceneTriangles)
	if err != nil {
		return nil, err
	}

	tr, err := selectTracer(&cfg)
	if err != nil {
		return nil, err
	}
	defer tr.Close()

	if err = tr.Init(); err != nil {
		return nil, err
	}
	if err = tr.UploadScene(sc); err != nil {
		return nil, err
	}

	launchReq := &trace.Request{
		FaceCentroids: toVec4(req.FaceCentroids),
		FaceNormals:   toVec4(req.FaceNormals),
		SunDirections: toVec4(req.SunDirections),
		RayOffset:     req.RayOffset,
		Results:       make([]float32, len(req.FaceCentroids)),
	}

	if err = tr.Dispatch(launchReq); err != nil {
		return nil, err
	}

	logger.Noticef(
		"analyzed %d faces x %d sun samples (%d rays) in %d ms using tracer %s",
		launchReq.FaceCount(), launchReq.SunCount(), launchReq.RayCount(),
		time.Since(start).Nanoseconds()/1e6, tr.Id(),
	)

	return launchReq.Results, nil
}

// Validate input shapes before any scene or device work begins.
func validate(req *AnalysisRequest) error {
	if len(req.FaceCentroids) != len(req.FaceNormals) {
		return fmt.Errorf(
			"solar: face centroid count (%d) does not match face normal count (%d)",
			len(req.FaceCentroids), len(req.FaceNormals),
		)
	}
	if len(req.SceneTriangles) == 0 {
		return scene.ErrEmptyScene
	}
	if req.RayOffset <= 0 {
		return trace.ErrInvalidOffset
	}

	for i, c := range req.FaceCentroids {
		if !c.Finite() {
			return fmt.Errorf("solar: face centroid %d is not finite: %v", i, c)
		}
	}
	for i, n := range req.FaceNormals {
		if !n.Finite() {
			return fmt.Errorf("solar: face normal %d is not finite: %v", i, n)
		}
	}
	for i, s := range req.SunDirections {
		if !s.Finite() {
			return fmt.Errorf("solar: sun direction %d is not finite: %v", i, s)
		}
	}
	for i, tri := range req.SceneTriangles {
		if !tri.V0.Finite() || !tri.V1.Finite() || !tri.V2.Finite() {
			return fmt.Errorf("solar: scene triangle %d has non-finite vertices", i)
		}
	}
	return nil
}

// Pick the tracer for this call: the fastest matching opencl GPU device,
// else any matching opencl device, else the pure-Go fallback.
func selectTracer(cfg *config) (trace.Tracer, error) {
	if cfg.forceCPU {
		return cpu.NewTracer("cpu", cfg.cpuWorkers), nil
	}

	devList, err := device.SelectDevices(device.GpuDevice, cfg.deviceFilter)
	if err != nil || len(devList) == 0 {
		devList, err = device.SelectDevices(device.AllDevices, cfg.deviceFilter)
	}
	if err != nil || len(devList) == 0 {
		logger.Notice("no opencl devices available; falling back to cpu tracer")
		return cpu.NewTracer("cpu", cfg.cpuWorkers), nil
	}

	best := devList[0]
	for _, dev := range devList[1:] {
		if dev.Speed > best.Speed {
			best = dev
		}
	}

	logger.Noticef("selected opencl device: %s (%d GFlops approx)", best.Name, best.Speed)
	return opencl.NewTracer(fmt.Sprintf("opencl (%s)", best.Name), best, cfg.programPath), nil
}

func toVec4(in []types.Vec3) []types.Vec4 {
	out := make([]types.Vec4, len(in))
	for i, v := range in {
		out[i] = v.Vec4(0)
	}
	return out
}
