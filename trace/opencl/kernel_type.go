package opencl

import "fmt"

type kernelType uint8

// The kernel entry points defined by the device program. Together with the
// stage functions inside the program source they form the executable
// shadow-ray pipeline: traceShadowRays is the ray generation stage and
// routes each traced ray through the closest-hit or miss stage.
const (
	clearResults kernelType = iota
	traceShadowRays
	numKernels
)

// Implements Stringer; map kernel type to the kernel name defined in the
// device program source.
func (kt kernelType) String() string {
	switch kt {
	case clearResults:
		return "clearResults"
	case traceShadowRays:
		return "traceShadowRays"
	default:
		panic(fmt.Sprintf("unsupported kernel type: %d", kt))
	}
}
