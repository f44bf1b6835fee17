package graph

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func sCurve3(t float64) float64 {
	return t * t * (3 - 2*t)
}

func cubic(n0, n1, n2, n3, t float64) float64 {
	p := (n3 - n2) - (n0 - n1)
	q := (n0 - n1) - p
	r := n2 - n0
	return p*t*t*t + q*t*t + r*t + n1
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}

// curveValue interpolates through the control points with a Catmull-Rom
// cubic. Below the first and above the last point it continues the boundary
// segment linearly.
func curveValue(cp []ControlPoint, v float64) float64 {
	n := len(cp)
	pos := 0
	for pos < n && v >= cp[pos].In {
		pos++
	}
	if pos == 0 {
		return extrapolate(cp[0], cp[1], v)
	}
	if pos == n {
		return extrapolate(cp[n-2], cp[n-1], v)
	}

	i0 := clampIndex(pos-2, n)
	i1 := clampIndex(pos-1, n)
	i2 := clampIndex(pos, n)
	i3 := clampIndex(pos+1, n)

	t := (v - cp[i1].In) / (cp[i2].In - cp[i1].In)
	return cubic(cp[i0].Out, cp[i1].Out, cp[i2].Out, cp[i3].Out, t)
}

func extrapolate(p0, p1 ControlPoint, v float64) float64 {
	slope := (p1.Out - p0.Out) / (p1.In - p0.In)
	if v < p0.In {
		return p0.Out + slope*(v-p0.In)
	}
	return p1.Out + slope*(v-p1.In)
}

// terraceValue finds the pair of levels bracketing v and eases between them
// with a quadratic, so the curve is flat at the lower level and steep at the
// upper one. invert flips the easing direction.
func terraceValue(levels []float64, invert bool, v float64) float64 {
	n := len(levels)
	pos := 0
	for pos < n && v >= levels[pos] {
		pos++
	}
	i0 := clampIndex(pos-1, n)
	i1 := clampIndex(pos, n)
	if i0 == i1 {
		return levels[i1]
	}

	lo, hi := levels[i0], levels[i1]
	t := (v - lo) / (hi - lo)
	if invert {
		t = 1 - t
		lo, hi = hi, lo
	}
	return lerp(lo, hi, t*t)
}

// exponentValue maps v from [-1,1] onto [0,1], raises it to e and maps back.
func exponentValue(v, e float64) float64 {
	return math.Pow(math.Abs((v+1)/2), e)*2 - 1
}

// selectValue returns input b while the control lies within [lower, upper]
// and input a outside it. With a falloff the edges of the window become
// s-curve blends of width 2*falloff centred on each bound.
func (g *Graph) selectValue(n *node, pt mgl64.Vec3) float64 {
	lower, upper, falloff := n.x, n.y, n.z
	ctl := g.eval(n.c, pt)

	if falloff <= 0 {
		if ctl < lower || ctl > upper {
			return g.eval(n.a, pt)
		}
		return g.eval(n.b, pt)
	}

	switch {
	case ctl < lower-falloff:
		return g.eval(n.a, pt)
	case ctl < lower+falloff:
		lc, uc := lower-falloff, lower+falloff
		t := sCurve3((ctl - lc) / (uc - lc))
		return lerp(g.eval(n.a, pt), g.eval(n.b, pt), t)
	case ctl < upper-falloff:
		return g.eval(n.b, pt)
	case ctl < upper+falloff:
		lc, uc := upper-falloff, upper+falloff
		t := sCurve3((ctl - lc) / (uc - lc))
		return lerp(g.eval(n.b, pt), g.eval(n.a, pt), t)
	}
	return g.eval(n.a, pt)
}

// Fixed sub-unit offsets keep the three displacement lookups of one point
// off the lattice and decorrelated from each other.
var turbulenceOffsets = [3]mgl64.Vec3{
	{12414.0 / 65536.0, 65124.0 / 65536.0, 31337.0 / 65536.0},
	{26519.0 / 65536.0, 18128.0 / 65536.0, 60493.0 / 65536.0},
	{53820.0 / 65536.0, 11213.0 / 65536.0, 44845.0 / 65536.0},
}

func turbulencePoint(n *node, pt mgl64.Vec3) mgl64.Vec3 {
	power := n.x
	return mgl64.Vec3{
		pt[0] + n.warp[0].Sample(pt.Add(turbulenceOffsets[0]))*power,
		pt[1] + n.warp[1].Sample(pt.Add(turbulenceOffsets[1]))*power,
		pt[2] + n.warp[2].Sample(pt.Add(turbulenceOffsets[2]))*power,
	}
}
