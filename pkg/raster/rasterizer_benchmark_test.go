package raster

import "testing"

// benchTriangleVerts is TestScanlineEdgeEquationEquivalence's triangle scaled
// up by 8: a mid-sized triangle in a 256x256 frame whose bounding box is
// square enough that Adaptive picks EdgeEquation over Scanline (see
// selectAdaptiveMode's aspect-ratio cutoff).
func benchTriangleVerts() (v0, v1, v2 ShaderOutput) {
	v0 = ShaderOutput{X: 16, Y: 16, Z: 0.5, W: 1}
	v1 = ShaderOutput{X: 240, Y: 40, Z: 0.5, W: 1}
	v2 = ShaderOutput{X: 80, Y: 224, Z: 0.5, W: 1}
	return v0, v1, v2
}

// BenchmarkTriangleScanline, BenchmarkTriangleEdgeEquation, and
// BenchmarkTriangleAdaptive fill the same triangle under each TriRasterMode
// so the three fill strategies can be compared directly.
func BenchmarkTriangleScanline(b *testing.B) {
	v0, v1, v2 := benchTriangleVerts()
	ctx := newTestContext(256, 256)
	prog := newFlatProgram(0xff00ff00)
	r := NewRasterizer()
	r.Mode = TriRasterModeScanline

	for b.Loop() {
		r.Triangle(ctx, prog, v0, v1, v2)
	}
}

func BenchmarkTriangleEdgeEquation(b *testing.B) {
	v0, v1, v2 := benchTriangleVerts()
	ctx := newTestContext(256, 256)
	prog := newFlatProgram(0xff00ff00)
	r := NewRasterizer()
	r.Mode = TriRasterModeEdgeEquation

	for b.Loop() {
		r.Triangle(ctx, prog, v0, v1, v2)
	}
}

func BenchmarkTriangleAdaptive(b *testing.B) {
	v0, v1, v2 := benchTriangleVerts()
	ctx := newTestContext(256, 256)
	prog := newFlatProgram(0xff00ff00)
	r := NewRasterizer()
	r.Mode = TriRasterModeAdaptive

	for b.Loop() {
		r.Triangle(ctx, prog, v0, v1, v2)
	}
}
