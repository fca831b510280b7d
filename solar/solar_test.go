package solar

import (
	"math"
	"strings"
	"testing"

	"github.com/heliotrace/heliotrace/geom"
	"github.com/heliotrace/heliotrace/scene"
	"github.com/heliotrace/heliotrace/trace"
	"github.com/heliotrace/heliotrace/types"
)

func overheadOccluder() geom.Triangle {
	return geom.NewTriangle(
		types.XYZ(-100, -100, 5),
		types.XYZ(100, -100, 5),
		types.XYZ(0, 100, 5),
	)
}

func farAwayTriangle() geom.Triangle {
	return geom.NewTriangle(
		types.XYZ(1000, 1000, 1000),
		types.XYZ(1001, 1000, 1000),
		types.XYZ(1000, 1001, 1000),
	)
}

func upFacingRequest(tris []geom.Triangle) AnalysisRequest {
	return AnalysisRequest{
		FaceCentroids:  []types.Vec3{{0, 0, 0}},
		FaceNormals:    []types.Vec3{{0, 0, 1}},
		SceneTriangles: tris,
		SunDirections:  []types.Vec3{{0, 0, -1}},
		RayOffset:      0.1,
	}
}

// End-to-end occlusion check through the public entry point.
func TestAnalyze(t *testing.T) {
	results, err := Analyze(upFacingRequest([]geom.Triangle{overheadOccluder()}), ForceCPU())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0] != 0 {
		t.Fatalf("expected occluded face to accumulate 0; got %v", results)
	}

	results, err = Analyze(upFacingRequest([]geom.Triangle{farAwayTriangle()}), ForceCPU())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0] != 1 {
		t.Fatalf("expected unoccluded face to accumulate 1; got %v", results)
	}
}

// An empty face set is a valid no-op analysis; the result is empty but
// non-nil and no tracer is ever stood up.
func TestAnalyzeEmptyFaceSet(t *testing.T) {
	req := AnalysisRequest{
		SceneTriangles: []geom.Triangle{farAwayTriangle()},
		SunDirections:  []types.Vec3{{0, 0, -1}},
		RayOffset:      0.1,
	}

	results, err := Analyze(req, ForceCPU())
	if err != nil {
		t.Fatal(err)
	}
	if results == nil || len(results) != 0 {
		t.Fatalf("expected empty non-nil result; got %v", results)
	}
}

// An empty sun set yields an all-zero result of face count length.
func TestAnalyzeEmptySunSet(t *testing.T) {
	req := upFacingRequest([]geom.Triangle{farAwayTriangle()})
	req.SunDirections = nil

	results, err := Analyze(req, ForceCPU())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0] != 0 {
		t.Fatalf("expected all-zero result; got %v", results)
	}
}

func TestAnalyzeValidation(t *testing.T) {
	mismatched := upFacingRequest([]geom.Triangle{farAwayTriangle()})
	mismatched.FaceNormals = nil
	if _, err := Analyze(mismatched, ForceCPU()); err == nil ||
		!strings.Contains(err.Error(), "does not match") {
		t.Fatalf("expected length mismatch error; got %v", err)
	}

	noScene := upFacingRequest(nil)
	if _, err := Analyze(noScene, ForceCPU()); err != scene.ErrEmptyScene {
		t.Fatalf("expected ErrEmptyScene; got %v", err)
	}

	badOffset := upFacingRequest([]geom.Triangle{farAwayTriangle()})
	badOffset.RayOffset = 0
	if _, err := Analyze(badOffset, ForceCPU()); err != trace.ErrInvalidOffset {
		t.Fatalf("expected ErrInvalidOffset; got %v", err)
	}

	nan := float32(math.NaN())
	badNormal := upFacingRequest([]geom.Triangle{farAwayTriangle()})
	badNormal.FaceNormals = []types.Vec3{{0, 0, nan}}
	if _, err := Analyze(badNormal, ForceCPU()); err == nil ||
		!strings.Contains(err.Error(), "not finite") {
		t.Fatalf("expected non-finite normal error; got %v", err)
	}

	badSun := upFacingRequest([]geom.Triangle{farAwayTriangle()})
	badSun.SunDirections = []types.Vec3{{nan, 0, 0}}
	if _, err := Analyze(badSun, ForceCPU()); err == nil ||
		!strings.Contains(err.Error(), "not finite") {
		t.Fatalf("expected non-finite sun direction error; got %v", err)
	}
}
