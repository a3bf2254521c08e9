package raster

// EdgeEquation is the linear functional f(x, y) = A*x + B*y + C for one
// triangle edge, plus a deterministic tie-break used to make fill rules
// agree exactly on shared edges between adjacent triangles.
type EdgeEquation struct {
	A, B, C float64
	Tie     bool
}

// initEdge builds the edge equation for the directed edge v0 -> v1 in
// screen space.
func initEdge(v0, v1 ShaderOutput) EdgeEquation {
	a := v0.Y - v1.Y
	b := v1.X - v0.X
	c := -(a*(v0.X+v1.X) + b*(v0.Y+v1.Y)) / 2
	var tie bool
	if a != 0 {
		tie = a > 0
	} else {
		tie = b < 0
	}
	return EdgeEquation{A: a, B: b, C: c, Tie: tie}
}

// Evaluate returns f(x, y).
func (e EdgeEquation) Evaluate(x, y float64) float64 {
	return e.A*x + e.B*y + e.C
}

// StepX returns value stepped by step_size units along +X.
func (e EdgeEquation) StepX(value, step float64) float64 {
	return value + e.A*step
}

// StepY returns value stepped by step_size units along +Y.
func (e EdgeEquation) StepY(value, step float64) float64 {
	return value + e.B*step
}

// Test applies the tie-broken fill rule to an already-evaluated value.
func (e EdgeEquation) Test(v float64) bool {
	return v > 0 || (v == 0 && e.Tie)
}

// TestAt evaluates and tests f(x, y) in one call.
func (e EdgeEquation) TestAt(x, y float64) bool {
	return e.Test(e.Evaluate(x, y))
}

// ParameterEquation is a linear functional over screen (x, y) recovered from
// three edge equations weighted by a per-vertex value and normalized by
// 1/(2*area). It evaluates a barycentric-interpolated attribute at any
// screen point without recomputing barycentric weights per pixel.
type ParameterEquation struct {
	A, B, C float64
}

func initParam(p0, p1, p2 float64, e0, e1, e2 EdgeEquation, factor float64) ParameterEquation {
	return ParameterEquation{
		A: factor * (p0*e0.A + p1*e1.A + p2*e2.A),
		B: factor * (p0*e0.B + p1*e1.B + p2*e2.B),
		C: factor * (p0*e0.C + p1*e1.C + p2*e2.C),
	}
}

// Evaluate returns the interpolated value at (x, y).
func (p ParameterEquation) Evaluate(x, y float64) float64 {
	return p.A*x + p.B*y + p.C
}

// StepX returns value stepped by step_size units along +X.
func (p ParameterEquation) StepX(value, step float64) float64 {
	return value + p.A*step
}

// StepY returns value stepped by step_size units along +Y.
func (p ParameterEquation) StepY(value, step float64) float64 {
	return value + p.B*step
}

// TriangleEquation is the per-triangle precomputation shared by every pixel
// the triangle rasterizes: the three edge equations, the signed twice-area
// (the raster-time back-face test), and perspective-aware parameter
// equations for 1/w, z/w, and each active vertex parameter (value/w).
//
// Perspective-correct recovery at any screen point is
// value = (value/w) * (1/invw).
type TriangleEquation struct {
	Edges       [3]EdgeEquation
	AreaTwice   float64
	InvW        ParameterEquation
	ZOverW      ParameterEquation
	Params      [MaxParams]ParameterEquation
	paramsCount int
}

// NewTriangleEquation precomputes the triangle equation for v0, v1, v2 in
// screen space, activating the first paramsCount parameter slots. If the
// triangle's signed twice-area is not positive, AreaTwice is set but the
// parameter equations are left zeroed — callers must check AreaTwice before
// using the rest of the struct (mirrors the source's early return).
func NewTriangleEquation(v0, v1, v2 ShaderOutput, paramsCount int) TriangleEquation {
	var tri TriangleEquation
	tri.paramsCount = paramsCount
	tri.Edges[0] = initEdge(v1, v2)
	tri.Edges[1] = initEdge(v2, v0)
	tri.Edges[2] = initEdge(v0, v1)
	tri.AreaTwice = tri.Edges[0].C + tri.Edges[1].C + tri.Edges[2].C

	if tri.AreaTwice <= 0 {
		return tri
	}

	factor := 1.0 / tri.AreaTwice
	invw0, invw1, invw2 := 1.0/v0.W, 1.0/v1.W, 1.0/v2.W

	tri.InvW = initParam(invw0, invw1, invw2, tri.Edges[0], tri.Edges[1], tri.Edges[2], factor)
	tri.ZOverW = initParam(v0.Z*invw0, v1.Z*invw1, v2.Z*invw2, tri.Edges[0], tri.Edges[1], tri.Edges[2], factor)
	for i := 0; i < paramsCount; i++ {
		tri.Params[i] = initParam(
			v0.Params[i]*invw0, v1.Params[i]*invw1, v2.Params[i]*invw2,
			tri.Edges[0], tri.Edges[1], tri.Edges[2], factor,
		)
	}
	return tri
}

// ParamsCount reports how many parameter equations were activated.
func (t TriangleEquation) ParamsCount() int { return t.paramsCount }

// edgeEval is the incrementally-steppable evaluation of all three edge
// equations at a moving point, used by the edge-equation block rasterizer
// to classify block corners and to test individual pixels.
type edgeEval struct {
	values [3]float64
	tri    *TriangleEquation
}

func newEdgeEval(tri *TriangleEquation, x, y float64) edgeEval {
	var e edgeEval
	e.tri = tri
	for i := range e.values {
		e.values[i] = tri.Edges[i].Evaluate(x, y)
	}
	return e
}

func (e edgeEval) stepX(step float64) edgeEval {
	var n edgeEval
	n.tri = e.tri
	for i := range e.values {
		n.values[i] = e.tri.Edges[i].StepX(e.values[i], step)
	}
	return n
}

func (e edgeEval) stepY(step float64) edgeEval {
	var n edgeEval
	n.tri = e.tri
	for i := range e.values {
		n.values[i] = e.tri.Edges[i].StepY(e.values[i], step)
	}
	return n
}

func (e edgeEval) insideTriangle() bool {
	return e.tri.Edges[0].Test(e.values[0]) &&
		e.tri.Edges[1].Test(e.values[1]) &&
		e.tri.Edges[2].Test(e.values[2])
}
