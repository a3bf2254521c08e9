package raster

import "math"

// FrameBuffer is the core's row-major color + depth plane pair, sized
// H x W. Color is packed 0x00RRGGBB; Depth is one float32 per pixel,
// initialized to +Inf. Row 0 is the top of the image.
type FrameBuffer struct {
	Width, Height int
	Color         []uint32
	Depth         []float32
}

// NewFrameBuffer allocates a cleared frame buffer of the given size.
func NewFrameBuffer(width, height int) *FrameBuffer {
	fb := &FrameBuffer{Width: width, Height: height}
	fb.Resize(width, height)
	return fb
}

// Resize reallocates the buffers, clearing color to zero and depth to +Inf.
func (fb *FrameBuffer) Resize(width, height int) {
	fb.Width, fb.Height = width, height
	fb.Color = make([]uint32, width*height)
	fb.Depth = make([]float32, width*height)
	for i := range fb.Depth {
		fb.Depth[i] = float32(math.Inf(1))
	}
}

// Viewport is the pixel-space origin/extent and the derived affine used to
// map NDC into screen space.
type Viewport struct {
	X, Y, W, H int

	ScaleX, ScaleY float64
	TransX, TransY float64
}

// NewViewport computes the derived half-extent/center affine for (x, y, w, h).
func NewViewport(x, y, w, h int) Viewport {
	return Viewport{
		X: x, Y: y, W: w, H: h,
		ScaleX: float64(w) / 2,
		ScaleY: float64(h) / 2,
		TransX: float64(x) + float64(w)/2,
		TransY: float64(y) + float64(h)/2,
	}
}

// DepthRange is the target interval of the post-transform z.
type DepthRange struct {
	N, F float64
}

// ScissorRect is the axis-aligned pixel extent filtering all fragment
// emission. An empty rect disables drawing entirely.
type ScissorRect struct {
	X, Y, W, H int
}

// Test reports whether (x, y) lies in [X, X+W) x [Y, Y+H).
func (s ScissorRect) Test(x, y int) bool {
	return x >= s.X && x < s.X+s.W && y >= s.Y && y < s.Y+s.H
}

// ClampX clamps v to [X, X+W], the scissor's X extent; used by the
// scanline rasterizer to bound a span before handing it to DrawSpan.
func (s ScissorRect) ClampX(v int) int {
	if v < s.X {
		return s.X
	}
	if v > s.X+s.W {
		return s.X + s.W
	}
	return v
}

// ClampY clamps v against the scissor's Y extent.
func (s ScissorRect) ClampY(v int) int {
	if v < s.Y {
		return s.Y
	}
	if v > s.Y+s.H {
		return s.Y + s.H
	}
	return v
}

// Context is the explicit, per-draw handle a FragmentProgram receives in
// place of the source's global buffer pointers (spec.md §9): the frame and
// depth buffers plus the active scissor rect. Renderer constructs one
// Context per flushed batch and hands it to the Rasterizer, which threads it
// through every DrawPixel/DrawSpan/DrawBlock call.
type Context struct {
	Frame   *FrameBuffer
	Scissor ScissorRect
}

// DepthTest reports whether z passes the depth test at (x, y) under the
// "smaller wins" convention (see SPEC_FULL.md §9), without writing.
func (c *Context) DepthTest(x, y int, z float32) bool {
	idx := y*c.Frame.Width + x
	return z < c.Frame.Depth[idx]
}

// DepthWrite writes z unconditionally at (x, y).
func (c *Context) DepthWrite(x, y int, z float32) {
	c.Frame.Depth[y*c.Frame.Width+x] = z
}

// SetColor writes a packed 0x00RRGGBB color at (x, y).
func (c *Context) SetColor(x, y int, rgb uint32) {
	c.Frame.Color[y*c.Frame.Width+x] = rgb
}

// InScissor reports whether (x, y) passes the bound scissor test.
func (c *Context) InScissor(x, y int) bool {
	return c.Scissor.Test(x, y)
}
