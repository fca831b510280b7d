package opencl

import (
	"github.com/achilleasa/gopencl/v1.2/cl"
	"github.com/heliotrace/heliotrace/scene"
	"github.com/heliotrace/heliotrace/trace"
	"github.com/heliotrace/heliotrace/trace/opencl/device"
)

// The set of device buffers backing one analysis. Scene buffers are written
// once per uploaded scene; launch buffers are rewritten before every
// dispatch.
type bufferSet struct {
	// Scene geometry (read-only for the duration of a launch).
	Vertices *device.Buffer
	BvhNodes *device.Buffer

	// Launch data (read-only for the duration of a launch).
	FaceCentroids *device.Buffer
	FaceNormals   *device.Buffer
	SunDirections *device.Buffer

	// Per-face accumulators; the only buffer rays write to.
	Results *device.Buffer
}

func newBufferSet(dev *device.Device) *bufferSet {
	return &bufferSet{
		Vertices:      dev.Buffer("vertices"),
		BvhNodes:      dev.Buffer("bvhNodes"),
		FaceCentroids: dev.Buffer("faceCentroids"),
		FaceNormals:   dev.Buffer("faceNormals"),
		SunDirections: dev.Buffer("sunDirections"),
		Results:       dev.Buffer("results"),
	}
}

// Upload scene geometry and acceleration structure.
func (bs *bufferSet) UploadSceneData(sc *scene.Scene) error {
	if err := bs.Vertices.AllocateAndWriteData(sc.Vertices, cl.MEM_READ_ONLY); err != nil {
		return err
	}
	return bs.BvhNodes.AllocateAndWriteData(sc.Nodes, cl.MEM_READ_ONLY)
}

// Upload per-launch face and sun data and size the result buffer. The
// request is known to be non-empty by the time this is called.
func (bs *bufferSet) UploadLaunchData(req *trace.Request) error {
	if err := bs.FaceCentroids.AllocateAndWriteData(req.FaceCentroids, cl.MEM_READ_ONLY); err != nil {
		return err
	}
	if err := bs.FaceNormals.AllocateAndWriteData(req.FaceNormals, cl.MEM_READ_ONLY); err != nil {
		return err
	}
	if err := bs.SunDirections.AllocateAndWriteData(req.SunDirections, cl.MEM_READ_ONLY); err != nil {
		return err
	}
	return bs.Results.Allocate(4*req.FaceCount(), cl.MEM_READ_WRITE)
}

// Copy the per-face accumulators back to the host.
func (bs *bufferSet) ReadResults(req *trace.Request) error {
	return bs.Results.ReadData(req.Results)
}

// Release all allocated buffers. Safe to call on unallocated buffers and
// safe to call more than once.
func (bs *bufferSet) Release() {
	for _, buf := range []*device.Buffer{
		bs.Vertices, bs.BvhNodes,
		bs.FaceCentroids, bs.FaceNormals, bs.SunDirections,
		bs.Results,
	} {
		buf.Release()
	}
}
