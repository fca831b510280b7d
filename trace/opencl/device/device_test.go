package device

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/achilleasa/gopencl/v1.2/cl"
)

const testProgram = `
__kernel void fill(__global float *out, float value) {
	out[get_global_id(0)] = value;
}
`

// Pick any available opencl device, skipping the test when the host has no
// opencl runtime installed.
func testDevice(t *testing.T) *Device {
	t.Helper()

	devList, err := SelectDevices(AllDevices, "")
	if err != nil {
		t.Skipf("skipping: could not enumerate opencl devices: %v", err)
	}
	if len(devList) == 0 {
		t.Skip("skipping: no opencl devices available")
	}
	return devList[0]
}

func testProgramFile(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.cl")
	if err := os.WriteFile(path, []byte(testProgram), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDeviceInit(t *testing.T) {
	dev := testDevice(t)

	if err := dev.Init(testProgramFile(t)); err != nil {
		t.Fatalf("error initializing device '%s': %v", dev.Name, err)
	}
	defer dev.Close()

	if dev.Name == "" {
		t.Fatal("expected enumerated device to have a name")
	}
}

func TestDeviceInitMissingProgram(t *testing.T) {
	dev := testDevice(t)
	defer dev.Close()

	if err := dev.Init(filepath.Join(t.TempDir(), "missing.cl")); err == nil {
		t.Fatal("expected device init to fail for a missing program file")
	}
}

func TestUnknownKernel(t *testing.T) {
	dev := testDevice(t)
	if err := dev.Init(testProgramFile(t)); err != nil {
		t.Fatal(err)
	}
	defer dev.Close()

	if _, err := dev.Kernel("unknownKernel"); err == nil {
		t.Fatal("expected an error while loading an unknown kernel")
	}
}

func TestKernelRoundtrip(t *testing.T) {
	dev := testDevice(t)
	if err := dev.Init(testProgramFile(t)); err != nil {
		t.Fatal(err)
	}
	defer dev.Close()

	kernel, err := dev.Kernel("fill")
	if err != nil {
		t.Fatal(err)
	}
	defer kernel.Release()

	const count = 64
	buf := dev.Buffer("out")
	defer buf.Release()
	if err = buf.Allocate(count*4, cl.MEM_READ_WRITE); err != nil {
		t.Fatal(err)
	}

	if err = kernel.SetArgs(buf, float32(2.5)); err != nil {
		t.Fatal(err)
	}
	if _, err = kernel.Exec1D(count, 0); err != nil {
		t.Fatal(err)
	}

	out := make([]float32, count)
	if err = buf.ReadData(out); err != nil {
		t.Fatal(err)
	}
	for i, v := range out {
		if v != 2.5 {
			t.Fatalf("expected out[%d] to be 2.5; got %f", i, v)
		}
	}
}

func TestBufferWriteAndRead(t *testing.T) {
	dev := testDevice(t)
	if err := dev.Init(testProgramFile(t)); err != nil {
		t.Fatal(err)
	}
	defer dev.Close()

	data := []float32{1, 2, 3, 4}

	buf := dev.Buffer("test")
	defer buf.Release()
	if err := buf.AllocateAndWriteData(data, cl.MEM_READ_ONLY); err != nil {
		t.Fatal(err)
	}

	if expSize := len(data) * 4; buf.Size() != expSize {
		t.Fatalf("expected buffer size to be %d; got %d", expSize, buf.Size())
	}

	out := make([]float32, len(data))
	if err := buf.ReadData(out); err != nil {
		t.Fatal(err)
	}
	for i := range data {
		if out[i] != data[i] {
			t.Fatalf("expected out[%d] to be %f; got %f", i, data[i], out[i])
		}
	}
}
