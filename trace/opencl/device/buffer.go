package device

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/achilleasa/gopencl/v1.2/cl"
)

// Buffer wraps a device memory allocation.
type Buffer struct {
	// Handle to the opencl buffer object.
	handle cl.Mem

	// The device owning the allocation.
	device *Device

	// A name identifying the buffer in diagnostics.
	name string

	// Allocated size in bytes.
	size int
}

// Get buffer size in bytes.
func (b *Buffer) Size() int {
	return b.size
}

// Get the opencl buffer handle.
func (b *Buffer) Handle() cl.Mem {
	return b.handle
}

// Allocate a buffer with the given size and flags. Any previous allocation
// is released first.
func (b *Buffer) Allocate(size int, flags cl.MemFlags) error {
	var errPtr *int32

	b.Release()

	b.handle = cl.CreateBuffer(*b.device.ctx, flags, cl.MemFlags(size), nil, errPtr)
	if errPtr != nil && cl.ErrorCode(*errPtr) != cl.SUCCESS {
		return fmt.Errorf(
			"opencl device (%s): could not allocate buffer %s of size %d (error: %s; code %d)",
			b.device.Name, b.name, size, ErrorName(cl.ErrorCode(*errPtr)), cl.ErrorCode(*errPtr),
		)
	}

	b.size = size
	return nil
}

// Allocate a buffer large enough to hold the given slice data and copy the
// data from the host pointer. The behavior of this method is undefined if a
// non-slice argument is passed or the argument does not use contiguous
// memory.
func (b *Buffer) AllocateAndWriteData(data interface{}, flags cl.MemFlags) error {
	var errPtr *int32

	b.Release()

	dataPtr, dataLen := sliceData(data)

	b.handle = cl.CreateBuffer(*b.device.ctx, flags|cl.MEM_COPY_HOST_PTR, cl.MemFlags(dataLen), dataPtr, errPtr)
	if errPtr != nil && cl.ErrorCode(*errPtr) != cl.SUCCESS {
		return fmt.Errorf(
			"opencl device (%s): could not allocate buffer %s of size %d (error: %s; code %d)",
			b.device.Name, b.name, dataLen, ErrorName(cl.ErrorCode(*errPtr)), cl.ErrorCode(*errPtr),
		)
	}

	b.size = dataLen
	return nil
}

// Write slice data to the device buffer. The write blocks until the copy
// completes.
func (b *Buffer) WriteData(data interface{}) error {
	dataPtr, dataLen := sliceData(data)

	if dataLen > b.size {
		return fmt.Errorf(
			"opencl device (%s): insufficient buffer space (%d) in %s for copying data of length %d",
			b.device.Name, b.size, b.name, dataLen,
		)
	}

	errCode := cl.EnqueueWriteBuffer(b.device.cmdQueue, b.handle, cl.TRUE, 0, uint64(dataLen), dataPtr, 0, nil, nil)
	if errCode != cl.SUCCESS {
		return fmt.Errorf(
			"opencl device (%s): error copying host data to device buffer %s (error: %s; code %d)",
			b.device.Name, b.name, ErrorName(errCode), errCode,
		)
	}

	return nil
}

// Read the entire device buffer into the supplied host slice. The read
// blocks until the copy completes.
func (b *Buffer) ReadData(hostBuffer interface{}) error {
	dataPtr, _ := sliceData(hostBuffer)

	errCode := cl.EnqueueReadBuffer(b.device.cmdQueue, b.handle, cl.TRUE, 0, uint64(b.size), dataPtr, 0, nil, nil)
	if errCode != cl.SUCCESS {
		return fmt.Errorf(
			"opencl device (%s): error copying device data from %s to host buffer (error: %s; code %d)",
			b.device.Name, b.name, ErrorName(errCode), errCode,
		)
	}

	return nil
}

// Release the buffer allocation. Safe to call on an unallocated buffer.
func (b *Buffer) Release() {
	if b.handle != nil {
		cl.ReleaseMemObject(b.handle)
		b.handle = nil
		b.size = 0
	}
}

// Given an interface{} containing a slice return a pointer to its data and
// its length in bytes.
func sliceData(data interface{}) (unsafe.Pointer, int) {
	reflVal := reflect.ValueOf(data)

	if reflVal.Kind() != reflect.Slice {
		panic("device: sliceData only supports slices")
	}
	if reflVal.Len() == 0 {
		panic("device: sliceData called with an empty slice")
	}

	return unsafe.Pointer(reflVal.Index(0).Addr().Pointer()),
		reflVal.Len() * int(reflect.TypeOf(data).Elem().Size())
}
