package cmd

import (
	"bytes"
	"fmt"
	"math/rand"
	"time"

	"github.com/heliotrace/heliotrace/geom"
	"github.com/heliotrace/heliotrace/solar"
	"github.com/heliotrace/heliotrace/types"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Benchmark the full analysis path over a synthetic scene: a horizontal grid
// of upward-facing faces under a field of randomly placed occluder slabs,
// analyzed for a fan of sun directions sweeping across the sky.
func Bench(ctx *cli.Context) error {
	setupLogging(ctx)

	gridSide := ctx.Int("grid-side")
	occluders := ctx.Int("occluders")
	sunSamples := ctx.Int("sun-samples")

	if gridSide <= 0 || sunSamples <= 0 {
		return fmt.Errorf("grid-side and sun-samples must be positive")
	}

	rng := rand.New(rand.NewSource(ctx.Int64("seed")))

	req := solar.AnalysisRequest{
		FaceCentroids:  make([]types.Vec3, 0, gridSide*gridSide),
		FaceNormals:    make([]types.Vec3, 0, gridSide*gridSide),
		SceneTriangles: make([]geom.Triangle, 0, 2*occluders),
		SunDirections:  make([]types.Vec3, 0, sunSamples),
		RayOffset:      0.1,
	}

	// One face per grid cell, unit spacing, at ground level.
	for x := 0; x < gridSide; x++ {
		for y := 0; y < gridSide; y++ {
			req.FaceCentroids = append(req.FaceCentroids, types.XYZ(float32(x), float32(y), 0))
			req.FaceNormals = append(req.FaceNormals, types.XYZ(0, 0, 1))
		}
	}

	// Quad slabs of random size floating at random heights over the grid.
	side := float32(gridSide)
	for i := 0; i < occluders; i++ {
		cx := rng.Float32() * side
		cy := rng.Float32() * side
		cz := 2 + rng.Float32()*10
		hw := 0.5 + rng.Float32()*2
		hh := 0.5 + rng.Float32()*2

		v0 := types.XYZ(cx-hw, cy-hh, cz)
		v1 := types.XYZ(cx+hw, cy-hh, cz)
		v2 := types.XYZ(cx+hw, cy+hh, cz)
		v3 := types.XYZ(cx-hw, cy+hh, cz)
		req.SceneTriangles = append(req.SceneTriangles,
			geom.NewTriangle(v0, v1, v2),
			geom.NewTriangle(v0, v2, v3),
		)
	}
	if len(req.SceneTriangles) == 0 {
		// A scene needs at least one triangle; park one outside all ray paths.
		req.SceneTriangles = append(req.SceneTriangles, geom.NewTriangle(
			types.XYZ(1e6, 1e6, 1e6),
			types.XYZ(1e6+1, 1e6, 1e6),
			types.XYZ(1e6, 1e6+1, 1e6),
		))
	}

	// East-to-west sweep at varying elevation; the vectors point from the
	// sun towards the ground per the solar incidence convention.
	for i := 0; i < sunSamples; i++ {
		frac := float32(i) / float32(sunSamples)
		req.SunDirections = append(
			req.SunDirections,
			types.XYZ(1-2*frac, 0.2, -0.3-0.7*frac).Normalize(),
		)
	}

	opts := make([]solar.Option, 0)
	if ctx.Bool("cpu") {
		opts = append(opts, solar.ForceCPU())
	}
	if dev := ctx.String("device"); dev != "" {
		opts = append(opts, solar.DeviceFilter(dev))
	}
	if path := ctx.String("kernel"); path != "" {
		opts = append(opts, solar.ProgramPath(path))
	}

	start := time.Now()
	results, err := solar.Analyze(req, opts...)
	if err != nil {
		logger.Error(err)
		return err
	}
	elapsed := time.Since(start)

	var sunlit int
	for _, acc := range results {
		if acc > 0 {
			sunlit++
		}
	}

	faceCount := len(req.FaceCentroids)
	rayCount := faceCount * sunSamples
	displayBenchStats(faceCount, sunSamples, rayCount, len(req.SceneTriangles), sunlit, elapsed)
	return nil
}

func displayBenchStats(faces, suns, rays, tris, sunlit int, elapsed time.Duration) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Faces", "Sun samples", "Rays", "Triangles", "Sunlit faces", "Time", "MRays/sec"})
	table.Append([]string{
		fmt.Sprintf("%d", faces),
		fmt.Sprintf("%d", suns),
		fmt.Sprintf("%d", rays),
		fmt.Sprintf("%d", tris),
		fmt.Sprintf("%d", sunlit),
		fmt.Sprintf("%s", elapsed),
		fmt.Sprintf("%.2f", float64(rays)/elapsed.Seconds()/1e6),
	})
	table.Render()

	logger.Noticef("benchmark statistics\n%s", buf.String())
}
