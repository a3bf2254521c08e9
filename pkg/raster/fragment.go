package raster

// FragmentProgram is the user-supplied program invoked per covered pixel.
// ParamsCount must be a compile-time-stable value not exceeding MaxParams;
// it is checked against MaxParams when the program is bound (see
// Renderer.BindFragmentProgram), the closest Go equivalent of the source's
// static_assert on a template parameter.
//
// DrawPixel is the only method most programs need to implement: it performs
// depth test, depth write, shading, and color write using the Context handed
// to it (the core holds no global buffer pointers — see spec.md §5/§9).
// DrawSpan and DrawBlock have working defaults (DefaultDrawSpan,
// DefaultDrawBlock) that embed naturally into a program's own methods of the
// same name; programs only need to override them to fuse the interpolant
// walk with custom per-pixel work.
type FragmentProgram interface {
	ParamsCount() int
	DrawPixel(ctx *Context, p PixelInterpolant)
	DrawSpan(ctx *Context, tri *TriangleEquation, xLeft, y, xRight int)
	DrawBlock(ctx *Context, tri *TriangleEquation, x, y int, testEdges bool)
}

// FragmentProgramBase gives a concrete FragmentProgram the default DrawSpan
// and DrawBlock implementations by embedding. A program embeds this and
// overrides only DrawPixel (and ParamsCount, typically via a constant).
//
// Go has no compile-time CRTP, so the "Derived" type is supplied explicitly
// via the Self field: FragmentProgramBase{Self: prog}.
type FragmentProgramBase struct {
	Self FragmentProgram
}

// DrawSpan fills [xLeft, xRight) of scanline y with Self.DrawPixel, stepping
// a single PixelInterpolant one pixel at a time.
func (b FragmentProgramBase) DrawSpan(ctx *Context, tri *TriangleEquation, xLeft, y, xRight int) {
	DefaultDrawSpan(ctx, b.Self, tri, xLeft, y, xRight)
}

// DrawBlock fills a blockSize x blockSize tile at (x, y) with Self.DrawPixel,
// testing edges per pixel when testEdges is set (a partially-covered block)
// and skipping the test entirely when the block is known fully covered.
func (b FragmentProgramBase) DrawBlock(ctx *Context, tri *TriangleEquation, x, y int, testEdges bool) {
	DefaultDrawBlock(ctx, b.Self, tri, x, y, testEdges)
}

// DefaultDrawSpan is the core's reference span filler: initialize a
// PixelInterpolant at the span's first pixel center and step +X once per
// column, calling prog.DrawPixel for each.
func DefaultDrawSpan(ctx *Context, prog FragmentProgram, tri *TriangleEquation, xLeft, y, xRight int) {
	xf := float64(xLeft) + 0.5
	yf := float64(y) + 0.5

	p := NewPixelInterpolant(tri, xf, yf, prog.ParamsCount())
	p.Y = y
	for x := xLeft; x < xRight; x++ {
		p.X = x
		prog.DrawPixel(ctx, p)
		p.StepX(prog.ParamsCount(), 1)
	}
}

// DefaultDrawBlock is the core's reference block filler. When testEdges is
// false every pixel in the block is known inside the triangle and is
// emitted without an edge test; when true, per-pixel edge tests gate
// emission. On both paths pixels outside ctx.Scissor are skipped, since a
// block can overhang the scissor rect. Both paths keep a single incrementally-stepped PixelInterpolant (and,
// when testing, a parallel incrementally-stepped edge evaluation) so
// division stays out of the inner loop except for the unavoidable w = 1/invw
// recovery per pixel.
func DefaultDrawBlock(ctx *Context, prog FragmentProgram, tri *TriangleEquation, x, y int, testEdges bool) {
	xf := float64(x) + 0.5
	yf := float64(y) + 0.5

	rowPixel := NewPixelInterpolant(tri, xf, yf, prog.ParamsCount())
	var rowEdge edgeEval
	if testEdges {
		rowEdge = newEdgeEval(tri, xf, yf)
	}

	for row := y; row < y+blockSize; row++ {
		pixel := rowPixel
		edge := rowEdge

		for col := x; col < x+blockSize; col++ {
			if (!testEdges || edge.insideTriangle()) && ctx.InScissor(col, row) {
				pixel.X = col
				pixel.Y = row
				prog.DrawPixel(ctx, pixel)
			}
			pixel.StepX(prog.ParamsCount(), 1)
			if testEdges {
				edge = edge.stepX(1)
			}
		}

		rowPixel.StepY(prog.ParamsCount(), 1)
		if testEdges {
			rowEdge = rowEdge.stepY(1)
		}
	}
}
