package cpu

import (
	"math"
	"sync/atomic"
	"unsafe"
)

// Atomically add a value to a float32 accumulator. Implemented as a
// compare-and-swap loop over the float bit pattern, matching the device
// kernel's atomic accumulation. Addition of small integral increments is
// exact in float32 below 2^24, so the final sum is independent of the order
// in which concurrent rays land their adds.
func atomicAddFloat32(addr *float32, delta float32) {
	bits := (*uint32)(unsafe.Pointer(addr))
	for {
		old := atomic.LoadUint32(bits)
		updated := math.Float32bits(math.Float32frombits(old) + delta)
		if atomic.CompareAndSwapUint32(bits, old, updated) {
			return
		}
	}
}
