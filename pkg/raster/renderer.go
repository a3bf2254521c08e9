package raster

import "unsafe"

// CullMode selects which screen-space winding Renderer discards before a
// triangle batch reaches the rasterizer.
type CullMode int

const (
	CullNone CullMode = iota
	CullCCW           // discard counter-clockwise-facing triangles
	CullCW            // discard clockwise-facing triangles
)

// Renderer is the pipeline driver: it assembles vertices from bound
// attribute streams through a vertex cache, clips each batch against the six
// canonical clip planes, applies the viewport transform and face culling,
// and hands surviving primitives to a Rasterizer. Default state mirrors the
// source engine: CullCW, depth range [1, 100], adaptive triangle fill.
type Renderer struct {
	viewport   Viewport
	depthRange DepthRange
	scissor    ScissorRect
	cullMode   CullMode

	attribs      attribTable
	vertexProg   VertexProgram
	fragmentProg FragmentProgram

	frame *FrameBuffer
	rast  *Rasterizer

	vertices []ShaderOutput
	indices  []int32
	cache    *vertexCache
}

// NewRenderer wires a Renderer to the given frame buffer.
func NewRenderer(frame *FrameBuffer) *Renderer {
	r := &Renderer{
		frame:      frame,
		rast:       NewRasterizer(),
		cullMode:   CullCW,
		depthRange: DepthRange{N: 1, F: 100},
		cache:      newVertexCache(),
	}
	r.scissor = ScissorRect{X: 0, Y: 0, W: frame.Width, H: frame.Height}
	return r
}

// SetViewport sets the pixel-space viewport and resizes the frame buffer to
// match its extent.
func (r *Renderer) SetViewport(x, y, w, h int) {
	r.viewport = NewViewport(x, y, w, h)
	r.frame.Resize(w, h)
	r.scissor = ScissorRect{X: 0, Y: 0, W: w, H: h}
}

// SetDepthRange sets the target post-transform z interval. Default (1, 100).
func (r *Renderer) SetDepthRange(n, f float64) {
	r.depthRange = DepthRange{N: n, F: f}
}

// SetScissorRect narrows fragment emission to a sub-rectangle of the
// viewport.
func (r *Renderer) SetScissorRect(x, y, w, h int) {
	r.scissor = ScissorRect{X: x, Y: y, W: w, H: h}
}

// SetCullMode sets which winding is discarded before rasterization.
func (r *Renderer) SetCullMode(mode CullMode) {
	r.cullMode = mode
}

// SetTriRasterMode selects the triangle-fill strategy.
func (r *Renderer) SetTriRasterMode(mode TriRasterMode) {
	r.rast.Mode = mode
}

// BindVertexProgram installs the program invoked once per unique vertex
// index during assembly. Panics if prog reports more attributes than
// MaxAttribs.
func (r *Renderer) BindVertexProgram(prog VertexProgram) {
	if prog.AttribCount() > MaxAttribs {
		panic("raster: vertex program attribute count exceeds MaxAttribs")
	}
	r.vertexProg = prog
}

// BindFragmentProgram installs the program invoked per covered pixel.
// Panics if prog reports more parameters than MaxParams, the closest Go
// equivalent of a static_assert on a template's parameter count.
func (r *Renderer) BindFragmentProgram(prog FragmentProgram) {
	if prog.ParamsCount() > MaxParams {
		panic("raster: fragment program parameter count exceeds MaxParams")
	}
	r.fragmentProg = prog
}

// SetVertexAttribPointer binds a strided attribute stream at slot. Panics if
// slot is out of range.
func (r *Renderer) SetVertexAttribPointer(slot, stride int, buffer unsafe.Pointer) {
	r.attribs.bind(slot, stride, buffer)
}

// DrawElements assembles, clips, transforms, culls, and rasterizes the
// primitives named by indices, in batches of up to flushThreshold
// primitives. A -1 index sentinel marks a primitive already discarded by
// clipping or culling and is skipped by the rasterizer.
func (r *Renderer) DrawElements(mode Primitive, indices []int32) {
	if r.vertexProg == nil || r.fragmentProg == nil {
		panic("raster: DrawElements called before binding both programs")
	}

	stride := mode.Stride()
	r.vertices = r.vertices[:0]
	r.indices = r.indices[:0]
	r.cache.clear()

	for _, elemIdx := range indices {
		vertexIdx := r.cache.lookup(elemIdx)
		if vertexIdx == -1 {
			in := r.attribs.pointers(r.vertexProg.AttribCount(), int(elemIdx))
			out := r.vertexProg.Process(in)

			vertexIdx = int32(len(r.vertices))
			r.vertices = append(r.vertices, out)
			r.cache.set(elemIdx, vertexIdx)
		}
		r.indices = append(r.indices, vertexIdx)

		if len(r.indices)/stride >= flushThreshold {
			r.flush(mode)
			r.vertices = r.vertices[:0]
			r.indices = r.indices[:0]
			r.cache.clear()
		}
	}
	r.flush(mode)
}

// flush runs one batch through clip -> transform+cull -> raster.
func (r *Renderer) flush(mode Primitive) {
	if len(r.indices) == 0 {
		return
	}

	switch mode {
	case PrimitivePoint:
		r.clipPoints()
	case PrimitiveLine:
		r.clipLines()
	case PrimitiveTriangle:
		r.clipTriangles()
	}

	r.transformVertices()

	ctx := &Context{Frame: r.frame, Scissor: r.scissor}
	switch mode {
	case PrimitivePoint:
		for _, idx := range r.indices {
			if idx == -1 {
				continue
			}
			r.rast.Point(ctx, r.fragmentProg, r.vertices[idx])
		}
	case PrimitiveLine:
		for i := 0; i+1 < len(r.indices); i += 2 {
			i0, i1 := r.indices[i], r.indices[i+1]
			if i0 == -1 || i1 == -1 {
				continue
			}
			r.rast.Line(ctx, r.fragmentProg, r.vertices[i0], r.vertices[i1])
		}
	case PrimitiveTriangle:
		r.cullTriangles()
		for i := 0; i+2 < len(r.indices); i += 3 {
			i0, i1, i2 := r.indices[i], r.indices[i+1], r.indices[i+2]
			if i0 == -1 || i1 == -1 || i2 == -1 {
				continue
			}
			r.rast.Triangle(ctx, r.fragmentProg, r.vertices[i0], r.vertices[i1], r.vertices[i2])
		}
	}
}

func (r *Renderer) clipMasks() []int {
	masks := make([]int, len(r.vertices))
	for i, v := range r.vertices {
		masks[i] = outcode(v)
	}
	return masks
}

func (r *Renderer) clipPoints() {
	masks := r.clipMasks()
	for i, idx := range r.indices {
		if idx != -1 && masks[idx] != 0 {
			r.indices[i] = -1
		}
	}
}

func (r *Renderer) clipLines() {
	masks := r.clipMasks()
	for i := 0; i+1 < len(r.indices); i += 2 {
		idx0, idx1 := r.indices[i], r.indices[i+1]
		if idx0 == -1 || idx1 == -1 {
			continue
		}
		mask := masks[idx0] | masks[idx1]
		if mask == 0 {
			continue
		}

		v0, v1 := r.vertices[idx0], r.vertices[idx1]
		a, b, fullyClipped := clipLine(v0, v1, mask)
		if fullyClipped {
			r.indices[i], r.indices[i+1] = -1, -1
			continue
		}
		if masks[idx0] != 0 {
			r.indices[i] = int32(len(r.vertices))
			r.vertices = append(r.vertices, a)
		}
		if masks[idx1] != 0 {
			r.indices[i+1] = int32(len(r.vertices))
			r.vertices = append(r.vertices, b)
		}
	}
}

func (r *Renderer) clipTriangles() {
	masks := r.clipMasks()
	n := len(r.indices)
	for i := 0; i < n; i += 3 {
		idx0, idx1, idx2 := r.indices[i], r.indices[i+1], r.indices[i+2]
		if idx0 == -1 || idx1 == -1 || idx2 == -1 {
			continue
		}
		mask := masks[idx0] | masks[idx1] | masks[idx2]
		if mask == 0 {
			continue
		}

		emit := func(v ShaderOutput) int32 {
			idx := int32(len(r.vertices))
			r.vertices = append(r.vertices, v)
			return idx
		}
		lookup := func(idx int32) ShaderOutput { return r.vertices[idx] }

		clipper := NewTriangleClipper(idx0, idx1, idx2, emit, lookup)
		for _, pl := range clipPlanes {
			if mask&pl.mask != 0 {
				clipper.ClipToPlane(pl.a, pl.b, pl.c, pl.d)
			}
		}

		if clipper.FullyClipped() {
			r.indices[i], r.indices[i+1], r.indices[i+2] = -1, -1, -1
			continue
		}

		ring := clipper.Ring()
		r.indices[i], r.indices[i+1], r.indices[i+2] = ring[0], ring[1], ring[2]
		r.indices = fanTriangulate(ring, r.indices)
	}
}

// transformVertices performs the perspective divide and viewport transform
// on every assembled vertex in place. Only X, Y, Z are divided by W; W
// itself is left as the original clip-space w (the rasterizer's
// TriangleEquation recovers 1/w from it directly), and Params are left
// undivided since the rasterizer's ParameterEquation carries its own
// perspective-correct (value/w) weighting. Vertices produced by clipping are
// already in the same clip-space convention, so one pass after clipping
// transforms the whole batch, including any newly emitted vertices.
func (r *Renderer) transformVertices() {
	for i := range r.vertices {
		v := &r.vertices[i]
		invw := 1 / v.W
		v.X *= invw
		v.Y *= invw
		v.Z *= invw

		v.X = r.viewport.ScaleX*v.X + r.viewport.TransX
		v.Y = r.viewport.ScaleY*v.Y + r.viewport.TransY
		v.Z = 0.5*(r.depthRange.F-r.depthRange.N)*v.Z + 0.5*(r.depthRange.N+r.depthRange.F)
	}
}

// cullTriangles discards triangles facing the wrong way under r.cullMode,
// in screen space, using the same signed-area sense as the source engine:
// facing = (v0-v1) x (v2-v1). Note this is evaluated on post-divide X/Y,
// and any triangle with non-positive signed area is dropped again by
// Rasterizer.Triangle (from the AreaTwice that NewTriangleEquation computes)
// regardless of cull mode, matching the source's
// rasterizer-level degenerate-triangle guard.
func (r *Renderer) cullTriangles() {
	if r.cullMode == CullNone {
		return
	}
	for i := 0; i+2 < len(r.indices); i += 3 {
		idx0, idx1, idx2 := r.indices[i], r.indices[i+1], r.indices[i+2]
		if idx0 == -1 || idx1 == -1 || idx2 == -1 {
			continue
		}
		v0, v1, v2 := r.vertices[idx0], r.vertices[idx1], r.vertices[idx2]
		facing := (v0.X-v1.X)*(v2.Y-v1.Y) - (v2.X-v1.X)*(v0.Y-v1.Y)

		if facing > 0 && r.cullMode == CullCW {
			r.indices[i], r.indices[i+1], r.indices[i+2] = -1, -1, -1
		} else if facing <= 0 && r.cullMode == CullCCW {
			r.indices[i], r.indices[i+1], r.indices[i+2] = -1, -1, -1
		}
	}
}
