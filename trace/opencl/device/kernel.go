package device

import (
	"fmt"
	"reflect"
	"time"
	"unsafe"

	"github.com/achilleasa/gopencl/v1.2/cl"
)

// Kernel wraps one compiled kernel entry point.
type Kernel struct {
	device *Device
	handle cl.Kernel
	name   string

	globalWorkSize uint64
	localWorkSize  uint64
}

// Free the kernel handle. Safe to call more than once.
func (k *Kernel) Release() {
	if k.handle != nil {
		cl.ReleaseKernel(k.handle)
		k.handle = nil
	}
}

// Bind the argument list for the next execution. Supported argument types
// are device buffers and 32-bit scalars.
func (k *Kernel) SetArgs(args ...interface{}) error {
	var errCode cl.ErrorCode
	for argIndex, arg := range args {
		switch v := arg.(type) {
		case *Buffer:
			handle := v.Handle()
			errCode = cl.SetKernelArg(k.handle, uint32(argIndex), 8, unsafe.Pointer(&handle))
		case int32:
			errCode = cl.SetKernelArg(k.handle, uint32(argIndex), 4, unsafe.Pointer(&v))
		case uint32:
			errCode = cl.SetKernelArg(k.handle, uint32(argIndex), 4, unsafe.Pointer(&v))
		case float32:
			errCode = cl.SetKernelArg(k.handle, uint32(argIndex), 4, unsafe.Pointer(&v))
		default:
			return fmt.Errorf(
				"opencl device (%s): could not set arg %d for kernel %s; unsupported arg type: %s",
				k.device.Name, argIndex, k.name, reflect.TypeOf(arg).Name(),
			)
		}

		if errCode != cl.SUCCESS {
			return fmt.Errorf(
				"opencl device (%s): could not set arg %d for kernel %s (error: %s; code %d)",
				k.device.Name, argIndex, k.name, ErrorName(errCode), errCode,
			)
		}
	}

	return nil
}

// Execute the kernel over a 1D global work size and block until the device
// reports completion. If localWorkSize is 0 the opencl implementation picks
// the optimal split for the underlying hardware.
func (k *Kernel) Exec1D(globalWorkSize, localWorkSize int) (time.Duration, error) {
	var localSizePtr *uint64

	k.globalWorkSize = uint64(globalWorkSize)
	if localWorkSize != 0 {
		k.localWorkSize = uint64(localWorkSize)
		localSizePtr = &k.localWorkSize
	}

	tick := time.Now()
	errCode := cl.EnqueueNDRangeKernel(
		k.device.cmdQueue,
		k.handle,
		1,
		nil,
		&k.globalWorkSize,
		localSizePtr,
		0,
		nil,
		nil,
	)
	if errCode != cl.SUCCESS {
		return 0, fmt.Errorf("opencl device (%s): unable to execute kernel %s (error: %s; code %d)", k.device.Name, k.name, ErrorName(errCode), errCode)
	}

	// Block on the device completion barrier.
	errCode = cl.Finish(k.device.cmdQueue)
	if errCode != cl.SUCCESS {
		return 0, fmt.Errorf("opencl device (%s): kernel %s did not complete successfully (error: %s; code %d)", k.device.Name, k.name, ErrorName(errCode), errCode)
	}

	return time.Since(tick), nil
}
