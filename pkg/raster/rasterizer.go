package raster

import (
	"math"
	"runtime"
	"sync"
)

// TriRasterMode selects which triangle-fill strategy Rasterizer.Triangle uses.
type TriRasterMode int

const (
	TriRasterModeScanline TriRasterMode = iota
	TriRasterModeEdgeEquation
	TriRasterModeAdaptive
)

// adaptiveAspectLow/High bound the bounding-box aspect ratio Adaptive mode
// treats as "square enough" to prefer the edge-equation block rasterizer;
// triangles outside that band fall back to scanline.
const (
	adaptiveAspectLow  = 0.4
	adaptiveAspectHigh = 1.6
)

// Rasterizer walks already screen-space-transformed, already-clipped
// primitives into a Context's frame buffer. It holds no vertex/fragment
// program binding of its own; Renderer drives it with one FragmentProgram
// per draw.
type Rasterizer struct {
	Mode    TriRasterMode
	Workers int // 0 means runtime.GOMAXPROCS(0)
}

// NewRasterizer returns a Rasterizer defaulting to adaptive triangle fill.
func NewRasterizer() *Rasterizer {
	return &Rasterizer{Mode: TriRasterModeAdaptive}
}

func (r *Rasterizer) workerCount() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Point draws a single screen-space point.
func (r *Rasterizer) Point(ctx *Context, prog FragmentProgram, v ShaderOutput) {
	x, y := int(v.X), int(v.Y)
	if !ctx.InScissor(x, y) {
		return
	}
	p := PixelInterpolant{X: x, Y: y}
	p.Z = v.Z
	p.W = v.W
	if v.W != 0 {
		p.InvW = 1 / v.W
	}
	for i := 0; i < prog.ParamsCount(); i++ {
		p.Param[i] = v.Params[i]
		p.ParamOverW[i] = v.Params[i] * p.InvW
	}
	prog.DrawPixel(ctx, p)
}

// Line draws a screen-space segment with Bresenham's algorithm, lerping
// every shader parameter linearly from v0 to v1 across the run of pixels.
func (r *Rasterizer) Line(ctx *Context, prog FragmentProgram, v0, v1 ShaderOutput) {
	x0, y0 := int(v0.X), int(v0.Y)
	x1, y1 := int(v1.X), int(v1.Y)

	dx := x1 - x0
	dy := y1 - y0
	absDx := abs(dx)
	absDy := abs(dy)

	steps := absDx
	if absDy > steps {
		steps = absDy
	}
	if steps == 0 {
		r.Point(ctx, prog, v0)
		return
	}

	// A negative run is driven off dx's sign, matching the line-major branch
	// the source takes on |dx| (its absDx<0 check is always false; the
	// equivalent, working test is dx<0).
	sx := 1
	if dx < 0 {
		sx = -1
	}
	sy := 1
	if dy < 0 {
		sy = -1
	}

	err := absDx - absDy
	x, y := x0, y0
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		if ctx.InScissor(x, y) {
			v := Lerp(t, v0, v1)
			p := PixelInterpolant{X: x, Y: y}
			p.Z = v.Z
			p.W = v.W
			if v.W != 0 {
				p.InvW = 1 / v.W
			}
			for k := 0; k < prog.ParamsCount(); k++ {
				p.Param[k] = v.Params[k]
				p.ParamOverW[k] = v.Params[k] * p.InvW
			}
			prog.DrawPixel(ctx, p)
		}

		e2 := 2 * err
		if e2 > -absDy {
			err -= absDy
			x += sx
		}
		if e2 < absDx {
			err += absDx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Triangle fills v0, v1, v2 (already screen-space, already front-facing and
// within the frame) according to r.Mode, dispatching Adaptive per triangle
// based on the bounding-box aspect ratio. A triangle with non-positive
// AreaTwice is dropped here whatever the Renderer's cull mode. An unknown
// Mode panics.
func (r *Rasterizer) Triangle(ctx *Context, prog FragmentProgram, v0, v1, v2 ShaderOutput) {
	tri := NewTriangleEquation(v0, v1, v2, prog.ParamsCount())
	if tri.AreaTwice <= 0 {
		return
	}

	minX, minY, maxX, maxY := triangleBounds(v0, v1, v2, ctx)
	if minX >= maxX || minY >= maxY {
		return
	}

	mode := r.Mode
	if mode == TriRasterModeAdaptive {
		mode = selectAdaptiveMode(minX, minY, maxX, maxY)
	}

	switch mode {
	case TriRasterModeScanline:
		r.rasterScanline(ctx, prog, &tri, v0, v1, v2, minY, maxY)
	case TriRasterModeEdgeEquation:
		r.rasterEdgeEquation(ctx, prog, &tri, minX, minY, maxX, maxY)
	default:
		panic("raster: invalid triangle raster mode")
	}
}

func triangleBounds(v0, v1, v2 ShaderOutput, ctx *Context) (minX, minY, maxX, maxY int) {
	fMinX := math.Min(v0.X, math.Min(v1.X, v2.X))
	fMinY := math.Min(v0.Y, math.Min(v1.Y, v2.Y))
	fMaxX := math.Max(v0.X, math.Max(v1.X, v2.X))
	fMaxY := math.Max(v0.Y, math.Max(v1.Y, v2.Y))

	minX = int(math.Floor(fMinX))
	minY = int(math.Floor(fMinY))
	maxX = int(math.Ceil(fMaxX))
	maxY = int(math.Ceil(fMaxY))

	if minX < ctx.Scissor.X {
		minX = ctx.Scissor.X
	}
	if minY < ctx.Scissor.Y {
		minY = ctx.Scissor.Y
	}
	if maxX > ctx.Scissor.X+ctx.Scissor.W {
		maxX = ctx.Scissor.X + ctx.Scissor.W
	}
	if maxY > ctx.Scissor.Y+ctx.Scissor.H {
		maxY = ctx.Scissor.Y + ctx.Scissor.H
	}
	return
}

// selectAdaptiveMode picks edge-equation for roughly square bounding boxes
// and scanline for boxes that are noticeably wider or taller than they are
// the other dimension.
func selectAdaptiveMode(minX, minY, maxX, maxY int) TriRasterMode {
	w := float64(maxX - minX)
	h := float64(maxY - minY)
	if w <= 0 || h <= 0 {
		return TriRasterModeScanline
	}
	aspect := w / h
	if aspect > adaptiveAspectLow && aspect < adaptiveAspectHigh {
		return TriRasterModeEdgeEquation
	}
	return TriRasterModeScanline
}

// rasterScanline sorts v0..v2 by screen Y, splits into flat-top/flat-bottom
// halves at a synthesized 4th vertex when neither is already flat, and fills
// each half a scanline at a time via FragmentProgram.DrawSpan. Rows are
// independent, so they are handed out to a bounded worker pool.
func (r *Rasterizer) rasterScanline(ctx *Context, prog FragmentProgram, tri *TriangleEquation, v0, v1, v2 ShaderOutput, clipMinY, clipMaxY int) {
	top, mid, bot := sortByY(v0, v1, v2)

	type span struct{ xLeft, xRight, y int }
	var spans []span

	collect := func(yTop, yBot int, fromA, toA, fromB, toB ShaderOutput) {
		if yTop >= yBot {
			return
		}
		denomA := toA.Y - fromA.Y
		denomB := toB.Y - fromB.Y
		for y := yTop; y < yBot; y++ {
			if y < clipMinY || y >= clipMaxY {
				continue
			}
			yf := float64(y) + 0.5
			var xa, xb float64
			if denomA != 0 {
				xa = fromA.X + (toA.X-fromA.X)*(yf-fromA.Y)/denomA
			} else {
				xa = fromA.X
			}
			if denomB != 0 {
				xb = fromB.X + (toB.X-fromB.X)*(yf-fromB.Y)/denomB
			} else {
				xb = fromB.X
			}
			xLeft, xRight := xa, xb
			if xLeft > xRight {
				xLeft, xRight = xRight, xLeft
			}
			xl, xr := int(math.Floor(xLeft+0.5)), int(math.Floor(xRight+0.5))
			xl = ctx.Scissor.ClampX(xl)
			xr = ctx.Scissor.ClampX(xr)
			if xl < xr {
				spans = append(spans, span{xLeft: xl, xRight: xr, y: y})
			}
		}
	}

	if top.Y == mid.Y {
		// Flat top.
		collect(int(math.Floor(top.Y)), int(math.Ceil(bot.Y)), top, bot, mid, bot)
	} else if mid.Y == bot.Y {
		// Flat bottom.
		collect(int(math.Floor(top.Y)), int(math.Ceil(bot.Y)), top, mid, top, bot)
	} else {
		// Synthesize the 4th vertex splitting the triangle at mid.Y.
		t := (mid.Y - top.Y) / (bot.Y - top.Y)
		split := Lerp(t, top, bot)
		collect(int(math.Floor(top.Y)), int(math.Ceil(mid.Y)), top, mid, top, split)
		collect(int(math.Floor(mid.Y)), int(math.Ceil(bot.Y)), mid, bot, split, bot)
	}

	r.parallelFor(len(spans), func(i int) {
		s := spans[i]
		prog.DrawSpan(ctx, tri, s.xLeft, s.y, s.xRight)
	})
}

// sortByY returns v0..v2 ordered by ascending screen Y.
func sortByY(v0, v1, v2 ShaderOutput) (top, mid, bot ShaderOutput) {
	a, b, c := v0, v1, v2
	if a.Y > b.Y {
		a, b = b, a
	}
	if b.Y > c.Y {
		b, c = c, b
	}
	if a.Y > b.Y {
		a, b = b, a
	}
	return a, b, c
}

// rasterEdgeEquation walks the bounding box in blockSize x blockSize tiles,
// classifying each block by its 4 corners: fully outside is skipped, fully
// inside is filled without a per-pixel edge test, and partially covered
// blocks are filled with the test enabled. Blocks are independent, so they
// are handed out to a bounded worker pool.
func (r *Rasterizer) rasterEdgeEquation(ctx *Context, prog FragmentProgram, tri *TriangleEquation, minX, minY, maxX, maxY int) {
	type block struct {
		x, y      int
		testEdges bool
	}
	var blocks []block

	for y := minY; y < maxY; y += blockSize {
		for x := minX; x < maxX; x += blockSize {
			corners := [4][2]float64{
				{float64(x), float64(y)},
				{float64(x + blockSize), float64(y)},
				{float64(x), float64(y + blockSize)},
				{float64(x + blockSize), float64(y + blockSize)},
			}
			in := 0
			for _, c := range corners {
				inside := true
				for e := 0; e < 3; e++ {
					if !tri.Edges[e].TestAt(c[0], c[1]) {
						inside = false
						break
					}
				}
				if inside {
					in++
				}
			}
			if in == 0 {
				if !blockMayStraddle(tri, x, y) {
					continue
				}
				blocks = append(blocks, block{x: x, y: y, testEdges: true})
				continue
			}
			blocks = append(blocks, block{x: x, y: y, testEdges: in != 4})
		}
	}

	r.parallelFor(len(blocks), func(i int) {
		b := blocks[i]
		prog.DrawBlock(ctx, tri, b.x, b.y, b.testEdges)
	})
}

// blockMayStraddle reports whether a block with all 4 corners outside one
// or more edges might still contain covered pixels (a thin triangle feature
// slicing through the block's interior without enclosing a corner).
func blockMayStraddle(tri *TriangleEquation, x, y int) bool {
	for e := 0; e < 3; e++ {
		edge := tri.Edges[e]
		v00 := edge.Evaluate(float64(x), float64(y))
		v10 := edge.Evaluate(float64(x+blockSize), float64(y))
		v01 := edge.Evaluate(float64(x), float64(y+blockSize))
		v11 := edge.Evaluate(float64(x+blockSize), float64(y+blockSize))
		if v00 < 0 && v10 < 0 && v01 < 0 && v11 < 0 {
			return false
		}
	}
	return true
}

// parallelFor runs fn(i) for i in [0, n) across a bounded goroutine pool,
// splitting the index range into contiguous, disjoint chunks so no two
// workers ever touch the same row or block.
func (r *Rasterizer) parallelFor(n int, fn func(i int)) {
	if n == 0 {
		return
	}
	workers := r.workerCount()
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * n / workers
		end := (w + 1) * n / workers
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}
