package raster

// Clip outcode bits, one per violated canonical clip plane.
const (
	clipPosX = 0x01
	clipNegX = 0x02
	clipPosY = 0x04
	clipNegY = 0x08
	clipPosZ = 0x10
	clipNegZ = 0x20
)

// clipPlane is one of the six canonical homogeneous clip planes, in the
// order the outcode bits above test them.
type clipPlane struct {
	mask       int
	a, b, c, d float64
}

var clipPlanes = [6]clipPlane{
	{clipPosX, -1, 0, 0, 1},
	{clipNegX, 1, 0, 0, 1},
	{clipPosY, 0, -1, 0, 1},
	{clipNegY, 0, 1, 0, 1},
	{clipPosZ, 0, 0, -1, 1},
	{clipNegZ, 0, 0, 1, 1},
}

// outcode returns the 6-bit mask of planes v lies outside of.
func outcode(v ShaderOutput) int {
	mask := 0
	if v.W-v.X < 0 {
		mask |= clipPosX
	}
	if v.X+v.W < 0 {
		mask |= clipNegX
	}
	if v.W-v.Y < 0 {
		mask |= clipPosY
	}
	if v.Y+v.W < 0 {
		mask |= clipNegY
	}
	if v.W-v.Z < 0 {
		mask |= clipPosZ
	}
	if v.Z+v.W < 0 {
		mask |= clipNegZ
	}
	return mask
}

// LineClipper clips one segment against the violated planes in turn,
// intersecting a running parameter interval [t0, t1] along v0 -> v1.
type LineClipper struct {
	v0, v1       ShaderOutput
	t0, t1       float64
	FullyClipped bool
}

// NewLineClipper starts a clip with the full [0, 1] interval.
func NewLineClipper(v0, v1 ShaderOutput) *LineClipper {
	return &LineClipper{v0: v0, v1: v1, t0: 0, t1: 1}
}

// ClipToPlane intersects the running interval against one plane equation
// A*x + B*y + C*z + D*w = 0.
func (l *LineClipper) ClipToPlane(a, b, c, d float64) {
	if l.FullyClipped {
		return
	}
	value0 := Plane(l.v0, a, b, c, d)
	value1 := Plane(l.v1, a, b, c, d)

	if value0 < 0 && value1 < 0 {
		l.FullyClipped = true
		return
	}

	t := -value0 / (value1 - value0)
	if value0 < 0 {
		l.t0 = max(l.t0, t)
	} else {
		l.t1 = min(l.t1, t)
	}
}

// Endpoints returns the clipped segment's new endpoints.
func (l *LineClipper) Endpoints() (ShaderOutput, ShaderOutput) {
	return Lerp(l.t0, l.v0, l.v1), Lerp(l.t1, l.v0, l.v1)
}

// clipLine runs a full LineClipper pass against every plane flagged in mask.
func clipLine(v0, v1 ShaderOutput, mask int) (a, b ShaderOutput, fullyClipped bool) {
	clipper := NewLineClipper(v0, v1)
	for _, pl := range clipPlanes {
		if mask&pl.mask != 0 {
			clipper.ClipToPlane(pl.a, pl.b, pl.c, pl.d)
		}
	}
	if clipper.FullyClipped {
		return ShaderOutput{}, ShaderOutput{}, true
	}
	a, b = clipper.Endpoints()
	return a, b, false
}

// TriangleClipper implements Sutherland-Hodgman clipping of a triangle
// (stored as a ring of indices into a caller-owned emitted-vertex buffer)
// against the violated planes in turn, with fan retriangulation performed
// by the caller once clipping against all planes is done.
type TriangleClipper struct {
	ring   []int32
	emit   func(ShaderOutput) int32
	lookup func(int32) ShaderOutput
}

// NewTriangleClipper starts a clip with the ring (idx0, idx1, idx2). emit
// appends a new Lerp-created vertex to the caller's emitted-vertex buffer
// and returns its index; lookup fetches a vertex by index.
func NewTriangleClipper(idx0, idx1, idx2 int32, emit func(ShaderOutput) int32, lookup func(int32) ShaderOutput) *TriangleClipper {
	return &TriangleClipper{
		ring:   []int32{idx0, idx1, idx2},
		emit:   emit,
		lookup: lookup,
	}
}

// FullyClipped reports whether the ring has collapsed below a triangle.
func (c *TriangleClipper) FullyClipped() bool {
	return len(c.ring) < 3
}

// ClipToPlane walks the current ring, keeping vertices on the inside
// half-space of the plane and inserting a Lerp-created vertex wherever the
// ring crosses the plane.
func (c *TriangleClipper) ClipToPlane(a, b, c2, d float64) {
	if c.FullyClipped() {
		return
	}

	n := len(c.ring)
	result := make([]int32, 0, n+1)

	prevIdx := c.ring[n-1]
	prevV := c.lookup(prevIdx)
	prevValue := Plane(prevV, a, b, c2, d)

	for i := 0; i < n; i++ {
		curIdx := c.ring[i]
		curV := c.lookup(curIdx)
		curValue := Plane(curV, a, b, c2, d)

		if prevValue >= 0 {
			result = append(result, prevIdx)
		}

		if sign(prevValue) != sign(curValue) {
			t := -prevValue / (curValue - prevValue)
			newV := Lerp(t, prevV, curV)
			newIdx := c.emit(newV)
			result = append(result, newIdx)
		}

		prevIdx, prevV, prevValue = curIdx, curV, curValue
	}

	c.ring = result
}

// Ring returns the current polygon ring of emitted-vertex indices.
func (c *TriangleClipper) Ring() []int32 {
	return c.ring
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// fanTriangulate expands a convex ring (r0 ... rn-1) into triangles
// (r0, rj-1, rj) for j = 2..n-1, appending them to out.
func fanTriangulate(ring []int32, out []int32) []int32 {
	if len(ring) < 3 {
		return out
	}
	r0 := ring[0]
	for j := 2; j < len(ring); j++ {
		out = append(out, r0, ring[j-1], ring[j])
	}
	return out
}
