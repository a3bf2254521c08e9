package raster

// PixelInterpolant is the per-pixel accumulated state used by every
// triangle-fill strategy: z, z/w, 1/w, w, and each active parameter's
// (value, value/w), plus a back-reference to the TriangleEquation it was
// built from. Unit steps in ±X/±Y increment each stored (.../w) quantity by
// the matching ParameterEquation's A or B coefficient, then recompute
// w = 1/invw and value = (value/w)*w — keeping division out of the inner
// loop except for that unavoidable reciprocal.
type PixelInterpolant struct {
	X, Y int

	Z      float64
	ZOverW float64
	W      float64
	InvW   float64

	Param      [MaxParams]float64
	ParamOverW [MaxParams]float64

	tri *TriangleEquation
}

// NewPixelInterpolant builds the interpolant at screen point (x, y) for the
// given triangle, activating paramsCount parameters.
func NewPixelInterpolant(tri *TriangleEquation, x, y float64, paramsCount int) PixelInterpolant {
	var p PixelInterpolant
	p.tri = tri
	p.InvW = tri.InvW.Evaluate(x, y)
	p.W = 1 / p.InvW
	p.ZOverW = tri.ZOverW.Evaluate(x, y)
	p.Z = p.ZOverW * p.W
	for i := 0; i < paramsCount; i++ {
		p.ParamOverW[i] = tri.Params[i].Evaluate(x, y)
		p.Param[i] = p.ParamOverW[i] * p.W
	}
	return p
}

// StepX advances the interpolant by step screen-space units along +X
// (negative step moves along -X).
func (p *PixelInterpolant) StepX(paramsCount int, step float64) {
	p.InvW = p.tri.InvW.StepX(p.InvW, step)
	p.W = 1 / p.InvW
	p.ZOverW = p.tri.ZOverW.StepX(p.ZOverW, step)
	p.Z = p.ZOverW * p.W
	for i := 0; i < paramsCount; i++ {
		p.ParamOverW[i] = p.tri.Params[i].StepX(p.ParamOverW[i], step)
		p.Param[i] = p.ParamOverW[i] * p.W
	}
}

// StepY advances the interpolant by step screen-space units along +Y.
func (p *PixelInterpolant) StepY(paramsCount int, step float64) {
	p.InvW = p.tri.InvW.StepY(p.InvW, step)
	p.W = 1 / p.InvW
	p.ZOverW = p.tri.ZOverW.StepY(p.ZOverW, step)
	p.Z = p.ZOverW * p.W
	for i := 0; i < paramsCount; i++ {
		p.ParamOverW[i] = p.tri.Params[i].StepY(p.ParamOverW[i], step)
		p.Param[i] = p.ParamOverW[i] * p.W
	}
}
