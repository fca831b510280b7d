// Package opencl implements the device tracer. The shadow-ray program is
// compiled at init time for the selected device; scene geometry and the BVH
// are uploaded once per analysis and each dispatch executes one blocking
// face_count x sun_count launch.
package opencl

import (
	"fmt"
	"os"
	"time"

	"github.com/heliotrace/heliotrace/log"
	"github.com/heliotrace/heliotrace/scene"
	"github.com/heliotrace/heliotrace/trace"
	"github.com/heliotrace/heliotrace/trace/opencl/device"
)

// The device program is loaded relative to the working directory; it ships
// with the distribution and must be installed next to the binary.
const DefaultProgramPath = "kernels/solar.cl"

type Tracer struct {
	logger log.Logger

	id          string
	device      *device.Device
	programPath string

	// Compiled kernel handles, indexed by kernelType.
	kernels []*device.Kernel

	// The allocated device buffers.
	buffers *bufferSet

	sceneUploaded bool
	stats         trace.Stats
}

// Create a new opencl tracer bound to the given device. An empty program
// path selects DefaultProgramPath.
func NewTracer(id string, dev *device.Device, programPath string) *Tracer {
	if programPath == "" {
		programPath = DefaultProgramPath
	}
	return &Tracer{
		logger:      log.New(fmt.Sprintf("opencl tracer (%s)", dev.Name)),
		id:          id,
		device:      dev,
		programPath: programPath,
	}
}

// Get tracer id.
func (tr *Tracer) Id() string {
	return tr.id
}

// Initialize the device, compile the shadow-ray program and resolve the
// kernel table. Any failure tears down whatever was allocated so far.
func (tr *Tracer) Init() error {
	if tr.device == nil {
		return trace.ErrTracerClosed
	}

	if _, err := os.Stat(tr.programPath); err != nil {
		return fmt.Errorf(
			"%w: %s; install the kernels directory shipped with the distribution next to the binary or point the tracer at it explicitly",
			trace.ErrNoDeviceProgram, tr.programPath,
		)
	}

	if err := tr.device.Init(tr.programPath); err != nil {
		tr.Close()
		return err
	}

	tr.kernels = make([]*device.Kernel, numKernels)
	for kType := kernelType(0); kType < numKernels; kType++ {
		kernel, err := tr.device.Kernel(kType.String())
		if err != nil {
			tr.Close()
			return err
		}
		tr.kernels[kType] = kernel
	}

	tr.buffers = newBufferSet(tr.device)
	return nil
}

// Upload scene geometry and acceleration structure to the device.
func (tr *Tracer) UploadScene(sc *scene.Scene) error {
	if tr.buffers == nil {
		return trace.ErrTracerClosed
	}

	if err := tr.buffers.UploadSceneData(sc); err != nil {
		return err
	}

	tr.logger.Debugf(
		"uploaded %d vertices (%d bytes) and %d bvh nodes (%d bytes)",
		len(sc.Vertices), tr.buffers.Vertices.Size(),
		len(sc.Nodes), tr.buffers.BvhNodes.Size(),
	)
	tr.sceneUploaded = true
	return nil
}

// Execute one blocking shadow-ray launch and copy the per-face accumulators
// back into req.Results.
func (tr *Tracer) Dispatch(req *trace.Request) error {
	if tr.buffers == nil {
		return trace.ErrTracerClosed
	}
	if !tr.sceneUploaded {
		return trace.ErrNoSceneData
	}
	if err := req.Validate(); err != nil {
		return err
	}

	rayCount := req.RayCount()
	tr.stats = trace.Stats{RayCount: uint64(rayCount)}
	if rayCount == 0 {
		for i := range req.Results {
			req.Results[i] = 0
		}
		return nil
	}

	uploadStart := time.Now()
	if err := tr.buffers.UploadLaunchData(req); err != nil {
		return err
	}
	tr.stats.UploadTime = time.Since(uploadStart)

	// Zero the accumulators on-device before tracing.
	clearKernel := tr.kernels[clearResults]
	err := clearKernel.SetArgs(tr.buffers.Results)
	if err != nil {
		return err
	}
	if _, err = clearKernel.Exec1D(req.FaceCount(), 0); err != nil {
		return err
	}

	// All per-launch parameters are bound once as kernel arguments; they
	// are immutable for the duration of the launch.
	traceKernel := tr.kernels[traceShadowRays]
	err = traceKernel.SetArgs(
		tr.buffers.Vertices,
		tr.buffers.BvhNodes,
		tr.buffers.FaceCentroids,
		tr.buffers.FaceNormals,
		tr.buffers.SunDirections,
		tr.buffers.Results,
		uint32(req.FaceCount()),
		uint32(req.SunCount()),
		req.RayOffset,
	)
	if err != nil {
		return err
	}

	traceTime, err := traceKernel.Exec1D(rayCount, 0)
	if err != nil {
		return err
	}
	tr.stats.TraceTime = traceTime
	tr.logger.Debugf("traced %d rays in %d ms", rayCount, traceTime.Nanoseconds()/1e6)

	return tr.buffers.ReadResults(req)
}

// Retrieve last launch statistics.
func (tr *Tracer) Stats() *trace.Stats {
	return &tr.stats
}

// Shutdown and cleanup the tracer. Safe to call on a partially initialized
// tracer and safe to call more than once.
func (tr *Tracer) Close() {
	if tr.buffers != nil {
		tr.buffers.Release()
		tr.buffers = nil
	}

	if tr.kernels != nil {
		for _, kernel := range tr.kernels {
			if kernel != nil {
				kernel.Release()
			}
		}
		tr.kernels = nil
	}

	if tr.device != nil {
		tr.device.Close()
		tr.device = nil
	}

	tr.sceneUploaded = false
}
