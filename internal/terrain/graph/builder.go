package graph

import (
	"fmt"
	"math"

	"planetgen.ai/internal/terrain/noise"
)

// TurbulenceParams configures the three fractal fields that displace the
// input coordinate of a wrapped node.
type TurbulenceParams struct {
	Seed      int64
	Frequency float64
	Power     float64
	Roughness int
}

// Builder appends validated nodes to an arena. The first failure is kept and
// every later call becomes a no-op returning InvalidNode, so assembly code can
// run straight through and check once in Build.
type Builder struct {
	backend noise.Backend
	nodes   []node
	caches  int
	err     error
}

func NewBuilder(backend noise.Backend) *Builder {
	return &Builder{backend: backend}
}

func (b *Builder) Err() error { return b.err }

func (b *Builder) fail(kind Kind, format string, args ...any) NodeID {
	if b.err == nil {
		b.err = fmt.Errorf("%w: %s node %d: %s", ErrConfig, kind, len(b.nodes), fmt.Sprintf(format, args...))
	}
	return InvalidNode
}

func (b *Builder) valid(ids ...NodeID) bool {
	for _, id := range ids {
		if id < 0 || int(id) >= len(b.nodes) {
			if b.err == nil {
				b.err = fmt.Errorf("%w: unknown input node %d", ErrConfig, id)
			}
			return false
		}
	}
	return true
}

func (b *Builder) push(n node) NodeID {
	b.nodes = append(b.nodes, n)
	return NodeID(len(b.nodes) - 1)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (b *Builder) Constant(v float64) NodeID {
	if b.err != nil {
		return InvalidNode
	}
	if !finite(v) {
		return b.fail(KindConstant, "value %v is not finite", v)
	}
	return b.push(node{kind: KindConstant, x: v})
}

func (b *Builder) Fractal(p noise.Params) NodeID {
	if b.err != nil {
		return InvalidNode
	}
	f, err := noise.NewFractal(b.backend, p)
	if err != nil {
		return b.fail(KindFractal, "%v", err)
	}
	return b.push(node{kind: KindFractal, prim: f})
}

func (b *Builder) Ridged(p noise.Params) NodeID {
	if b.err != nil {
		return InvalidNode
	}
	f, err := noise.NewRidged(b.backend, p)
	if err != nil {
		return b.fail(KindRidged, "%v", err)
	}
	return b.push(node{kind: KindRidged, prim: f})
}

func (b *Builder) Billow(p noise.Params) NodeID {
	if b.err != nil {
		return InvalidNode
	}
	f, err := noise.NewBillow(b.backend, p)
	if err != nil {
		return b.fail(KindBillow, "%v", err)
	}
	return b.push(node{kind: KindBillow, prim: f})
}

func (b *Builder) Cellular(p noise.CellularParams) NodeID {
	if b.err != nil {
		return InvalidNode
	}
	if !finite(p.Displacement) {
		return b.fail(KindCellular, "displacement %v is not finite", p.Displacement)
	}
	f, err := noise.NewCellular(p)
	if err != nil {
		return b.fail(KindCellular, "%v", err)
	}
	return b.push(node{kind: KindCellular, prim: f})
}

// Curve needs at least four control points with strictly increasing inputs.
func (b *Builder) Curve(src NodeID, points []ControlPoint) NodeID {
	if b.err != nil || !b.valid(src) {
		return InvalidNode
	}
	if len(points) < 4 {
		return b.fail(KindCurve, "need at least 4 control points, got %d", len(points))
	}
	for i, p := range points {
		if !finite(p.In, p.Out) {
			return b.fail(KindCurve, "control point %d is not finite", i)
		}
		if i > 0 && !(p.In > points[i-1].In) {
			return b.fail(KindCurve, "control point inputs must be strictly increasing (%v after %v)", p.In, points[i-1].In)
		}
	}
	cp := append([]ControlPoint(nil), points...)
	return b.push(node{kind: KindCurve, a: src, curve: cp})
}

// Terrace needs at least two strictly increasing levels.
func (b *Builder) Terrace(src NodeID, levels []float64, invert bool) NodeID {
	if b.err != nil || !b.valid(src) {
		return InvalidNode
	}
	if len(levels) < 2 {
		return b.fail(KindTerrace, "need at least 2 levels, got %d", len(levels))
	}
	for i, v := range levels {
		if !finite(v) {
			return b.fail(KindTerrace, "level %d is not finite", i)
		}
		if i > 0 && !(v > levels[i-1]) {
			return b.fail(KindTerrace, "levels must be strictly increasing (%v after %v)", v, levels[i-1])
		}
	}
	lv := append([]float64(nil), levels...)
	return b.push(node{kind: KindTerrace, a: src, terrace: lv, invert: invert})
}

func (b *Builder) Clamp(src NodeID, lo, hi float64) NodeID {
	if b.err != nil || !b.valid(src) {
		return InvalidNode
	}
	if !finite(lo, hi) || lo > hi {
		return b.fail(KindClamp, "invalid bounds [%v,%v]", lo, hi)
	}
	return b.push(node{kind: KindClamp, a: src, x: lo, y: hi})
}

func (b *Builder) ScaleBias(src NodeID, scale, bias float64) NodeID {
	if b.err != nil || !b.valid(src) {
		return InvalidNode
	}
	if !finite(scale, bias) {
		return b.fail(KindScaleBias, "scale %v bias %v not finite", scale, bias)
	}
	return b.push(node{kind: KindScaleBias, a: src, x: scale, y: bias})
}

func (b *Builder) Exponent(src NodeID, e float64) NodeID {
	if b.err != nil || !b.valid(src) {
		return InvalidNode
	}
	if !finite(e) || e <= 0 {
		return b.fail(KindExponent, "exponent must be finite and > 0, got %v", e)
	}
	return b.push(node{kind: KindExponent, a: src, x: e})
}

func (b *Builder) binary(kind Kind, x, y NodeID) NodeID {
	if b.err != nil || !b.valid(x, y) {
		return InvalidNode
	}
	return b.push(node{kind: kind, a: x, b: y})
}

func (b *Builder) Min(x, y NodeID) NodeID      { return b.binary(KindMin, x, y) }
func (b *Builder) Max(x, y NodeID) NodeID      { return b.binary(KindMax, x, y) }
func (b *Builder) Add(x, y NodeID) NodeID      { return b.binary(KindAdd, x, y) }
func (b *Builder) Multiply(x, y NodeID) NodeID { return b.binary(KindMultiply, x, y) }

// Blend cross-fades from x to y as control moves from -1 to 1.
func (b *Builder) Blend(x, y, control NodeID) NodeID {
	if b.err != nil || !b.valid(x, y, control) {
		return InvalidNode
	}
	return b.push(node{kind: KindBlend, a: x, b: y, c: control})
}

// Select yields y while control is within [lower, upper] and x outside it.
// The falloff is capped at half the window width.
func (b *Builder) Select(x, y, control NodeID, lower, upper, falloff float64) NodeID {
	if b.err != nil || !b.valid(x, y, control) {
		return InvalidNode
	}
	if !finite(lower, upper, falloff) || !(lower < upper) {
		return b.fail(KindSelect, "invalid bounds [%v,%v]", lower, upper)
	}
	if falloff < 0 {
		return b.fail(KindSelect, "falloff must be >= 0, got %v", falloff)
	}
	if half := (upper - lower) / 2; falloff > half {
		falloff = half
	}
	return b.push(node{kind: KindSelect, a: x, b: y, c: control, x: lower, y: upper, z: falloff})
}

func (b *Builder) Turbulence(src NodeID, p TurbulenceParams) NodeID {
	if b.err != nil || !b.valid(src) {
		return InvalidNode
	}
	if !finite(p.Power) {
		return b.fail(KindTurbulence, "power %v is not finite", p.Power)
	}
	n := node{kind: KindTurbulence, a: src, x: p.Power}
	for axis := range n.warp {
		f, err := noise.NewFractal(b.backend, noise.Params{
			Seed:        noise.DeriveSeed(p.Seed, uint64(axis)),
			Frequency:   p.Frequency,
			Octaves:     p.Roughness,
			Persistence: noise.DefaultPersistence,
			Lacunarity:  noise.DefaultLacunarity,
		})
		if err != nil {
			return b.fail(KindTurbulence, "%v", err)
		}
		n.warp[axis] = f
	}
	return b.push(n)
}

// Cache memoizes the last (point, value) pair of src.
func (b *Builder) Cache(src NodeID) NodeID {
	if b.err != nil || !b.valid(src) {
		return InvalidNode
	}
	slot := b.caches
	b.caches++
	return b.push(node{kind: KindCache, a: src, slot: slot})
}

// Build freezes the arena with root as the evaluation entry point.
func (b *Builder) Build(root NodeID) (*Graph, error) {
	if b.err != nil {
		return nil, b.err
	}
	if !b.valid(root) {
		return nil, b.err
	}
	return &Graph{nodes: b.nodes, root: root, memo: make([]memo, b.caches)}, nil
}
