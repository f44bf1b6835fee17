package graph

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"planetgen.ai/internal/terrain/noise"
)

// countingSource returns x and counts its evaluations.
type countingSource struct{ calls int }

func (c *countingSource) Sample(pt mgl64.Vec3) float64 {
	c.calls++
	return pt[0]
}

func (b *Builder) source(p primitive) NodeID {
	return b.push(node{kind: KindFractal, prim: p})
}

func mustBuild(t *testing.T, b *Builder, root NodeID) *Graph {
	t.Helper()
	g, err := b.Build(root)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return g
}

func at(x float64) mgl64.Vec3 { return mgl64.Vec3{x, 0, 0} }

func TestCurvePassesThroughControlPoints(t *testing.T) {
	b := NewBuilder(noise.BackendOpenSimplex)
	src := b.source(&countingSource{})
	pts := []ControlPoint{{-2, -1.625}, {-1, -1.375}, {0, -0.375}, {0.0625, 0.125}, {0.125, 0.25}, {0.25, 1}, {0.5, 0.25}, {0.75, 0.25}, {1, 0.5}, {2, 0.5}}
	g := mustBuild(t, b, b.Curve(src, pts))
	for _, p := range pts {
		if v := g.Eval(at(p.In)); math.Abs(v-p.Out) > 1e-12 {
			t.Fatalf("curve(%v)=%v want %v", p.In, v, p.Out)
		}
	}
	// Beyond the ends the boundary segments continue linearly.
	if v := g.Eval(at(-3)); math.Abs(v-(-1.875)) > 1e-12 {
		t.Fatalf("curve(-3)=%v want -1.875", v)
	}
	if v := g.Eval(at(3)); math.Abs(v-0.5) > 1e-12 {
		t.Fatalf("curve(3)=%v want 0.5", v)
	}
}

func TestCurveRejectsMalformedPoints(t *testing.T) {
	cases := map[string][]ControlPoint{
		"too few":        {{0, 0}, {1, 1}, {2, 2}},
		"not increasing": {{0, 0}, {1, 1}, {1, 2}, {2, 3}},
		"decreasing":     {{0, 0}, {2, 1}, {1, 2}, {3, 3}},
		"nan":            {{0, 0}, {math.NaN(), 1}, {2, 2}, {3, 3}},
	}
	for name, pts := range cases {
		b := NewBuilder(noise.BackendOpenSimplex)
		c := b.Curve(b.Constant(0), pts)
		if c != InvalidNode {
			t.Fatalf("%s: expected invalid node", name)
		}
		if _, err := b.Build(c); !errors.Is(err, ErrConfig) {
			t.Fatalf("%s: expected ErrConfig, got %v", name, err)
		}
	}
}

func TestTerrace(t *testing.T) {
	b := NewBuilder(noise.BackendOpenSimplex)
	src := b.source(&countingSource{})
	levels := []float64{-1, -0.5, 0, 1}
	g := mustBuild(t, b, b.Terrace(src, levels, false))
	for _, l := range levels {
		if v := g.Eval(at(l)); v != l {
			t.Fatalf("terrace(%v)=%v", l, v)
		}
	}
	// Quadratic easing between 0 and 1.
	if v := g.Eval(at(0.5)); math.Abs(v-0.25) > 1e-12 {
		t.Fatalf("terrace(0.5)=%v want 0.25", v)
	}
	// Outside the levels the nearest level is returned.
	if v := g.Eval(at(5)); v != 1 {
		t.Fatalf("terrace(5)=%v want 1", v)
	}
	if v := g.Eval(at(-5)); v != -1 {
		t.Fatalf("terrace(-5)=%v want -1", v)
	}

	b = NewBuilder(noise.BackendOpenSimplex)
	src = b.source(&countingSource{})
	g = mustBuild(t, b, b.Terrace(src, levels, true))
	if v := g.Eval(at(0.5)); math.Abs(v-0.75) > 1e-12 {
		t.Fatalf("inverted terrace(0.5)=%v want 0.75", v)
	}

	b = NewBuilder(noise.BackendOpenSimplex)
	if _, err := b.Build(b.Terrace(b.Constant(0), []float64{1}, false)); !errors.Is(err, ErrConfig) {
		t.Fatalf("single level: expected ErrConfig, got %v", err)
	}
}

func TestArithmeticNodes(t *testing.T) {
	b := NewBuilder(noise.BackendOpenSimplex)
	x := b.source(&countingSource{})
	two := b.Constant(2)
	cases := []struct {
		name string
		id   NodeID
		in   float64
		want float64
	}{
		{"clamp high", b.Clamp(x, -1, 1), 3, 1},
		{"clamp low", b.Clamp(x, -1, 1), -3, -1},
		{"clamp pass", b.Clamp(x, -1, 1), 0.5, 0.5},
		{"scale bias", b.ScaleBias(x, 0.5, 0.25), 1, 0.75},
		{"exponent", b.Exponent(x, 2), 0, -0.5},
		{"exponent top", b.Exponent(x, 1.375), 1, 1},
		{"min", b.Min(x, two), 3, 2},
		{"max", b.Max(x, two), 3, 3},
		{"add", b.Add(x, two), 3, 5},
		{"multiply", b.Multiply(x, two), 3, 6},
	}
	g := mustBuild(t, b, x)
	for _, c := range cases {
		if v := g.EvalNode(c.id, at(c.in)); math.Abs(v-c.want) > 1e-12 {
			t.Fatalf("%s(%v)=%v want %v", c.name, c.in, v, c.want)
		}
	}
}

func TestBlend(t *testing.T) {
	b := NewBuilder(noise.BackendOpenSimplex)
	ctl := b.source(&countingSource{})
	id := b.Blend(b.Constant(-0.5), b.Constant(0.5), ctl)
	g := mustBuild(t, b, id)
	for _, c := range [][2]float64{{-1, -0.5}, {0, 0}, {1, 0.5}} {
		if v := g.Eval(at(c[0])); math.Abs(v-c[1]) > 1e-12 {
			t.Fatalf("blend(control=%v)=%v want %v", c[0], v, c[1])
		}
	}
}

func TestSelectHardStep(t *testing.T) {
	b := NewBuilder(noise.BackendOpenSimplex)
	ctl := b.source(&countingSource{})
	g := mustBuild(t, b, b.Select(b.Constant(-1), b.Constant(1), ctl, 0, 1000, 0))
	cases := [][2]float64{{-0.001, -1}, {0, 1}, {0.5, 1}, {1000, 1}, {1000.5, -1}}
	for _, c := range cases {
		if v := g.Eval(at(c[0])); v != c[1] {
			t.Fatalf("select(control=%v)=%v want %v", c[0], v, c[1])
		}
	}
}

func TestSelectFalloffIsSmoothAndCapped(t *testing.T) {
	b := NewBuilder(noise.BackendOpenSimplex)
	ctl := b.source(&countingSource{})
	g := mustBuild(t, b, b.Select(b.Constant(-1), b.Constant(1), ctl, 0, 1000, 0.25))
	if v := g.Eval(at(-0.25)); v != -1 {
		t.Fatalf("below band: %v", v)
	}
	if v := g.Eval(at(0)); math.Abs(v) > 1e-12 {
		t.Fatalf("midpoint of band should blend evenly, got %v", v)
	}
	if v := g.Eval(at(0.25)); v != 1 {
		t.Fatalf("above band: %v", v)
	}
	prev := -2.0
	for c := -0.3; c <= 0.3; c += 0.01 {
		v := g.Eval(at(c))
		if v < prev-1e-12 {
			t.Fatalf("select not monotone at %v: %v < %v", c, v, prev)
		}
		prev = v
	}

	b = NewBuilder(noise.BackendOpenSimplex)
	ctl = b.source(&countingSource{})
	id := b.Select(b.Constant(-1), b.Constant(1), ctl, 0, 1, 5)
	g = mustBuild(t, b, id)
	if f := g.nodes[id].z; f != 0.5 {
		t.Fatalf("falloff not capped to half window: %v", f)
	}
}

func TestSelectRejectsBadBounds(t *testing.T) {
	b := NewBuilder(noise.BackendOpenSimplex)
	c := b.Constant(0)
	if _, err := b.Build(b.Select(c, c, c, 1, 0, 0)); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestCacheSharedSubgraph(t *testing.T) {
	src := &countingSource{}
	b := NewBuilder(noise.BackendOpenSimplex)
	shared := b.Cache(b.ScaleBias(b.source(src), 2, 0))
	left := b.ScaleBias(shared, 1, 1)
	right := b.ScaleBias(shared, -1, 0)
	g := mustBuild(t, b, b.Add(left, right))

	pt := at(0.3)
	direct := g.Clone().EvalNode(shared, pt)
	src.calls = 0
	got := g.Eval(pt)
	if src.calls != 1 {
		t.Fatalf("shared subgraph evaluated %d times, want 1", src.calls)
	}
	if want := (direct + 1) + (-direct); got != want {
		t.Fatalf("combined %v want %v", got, want)
	}
	if l, r := g.EvalNode(left, pt), g.EvalNode(right, pt); l != direct+1 || r != -direct {
		t.Fatalf("paths disagree with direct evaluation: %v %v %v", l, r, direct)
	}
	if src.calls != 1 {
		t.Fatalf("memo missed on repeated point: %d calls", src.calls)
	}

	g.Eval(at(0.4))
	if src.calls != 2 {
		t.Fatalf("memo should refresh on a new point: %d calls", src.calls)
	}
}

func TestCloneHasPrivateMemo(t *testing.T) {
	src := &countingSource{}
	b := NewBuilder(noise.BackendOpenSimplex)
	g := mustBuild(t, b, b.Cache(b.source(src)))
	g.Eval(at(1))
	c := g.Clone()
	c.Eval(at(1))
	if src.calls != 2 {
		t.Fatalf("clone reused parent memo: %d calls", src.calls)
	}
	g.Clone().Eval(at(1))
	if src.calls != 3 {
		t.Fatalf("second clone shared a memo: %d calls", src.calls)
	}
}

func TestTurbulence(t *testing.T) {
	b := NewBuilder(noise.BackendOpenSimplex)
	x := b.source(&countingSource{})
	still := b.Turbulence(x, TurbulenceParams{Seed: 1, Frequency: 4, Power: 0, Roughness: 2})
	warped := b.Turbulence(x, TurbulenceParams{Seed: 1, Frequency: 4, Power: 0.25, Roughness: 2})
	g := mustBuild(t, b, warped)

	moved := false
	for i := 0; i < 16; i++ {
		pt := mgl64.Vec3{float64(i) * 0.13, float64(i) * 0.07, 0}
		if v := g.EvalNode(still, pt); v != pt[0] {
			t.Fatalf("zero power moved the point: %v vs %v", v, pt[0])
		}
		v := g.EvalNode(warped, pt)
		if math.Abs(v-pt[0]) > 0.25*3 {
			t.Fatalf("displacement %v larger than power bound", v-pt[0])
		}
		if v != pt[0] {
			moved = true
		}
		if v != g.Clone().EvalNode(warped, pt) {
			t.Fatalf("turbulence not deterministic")
		}
	}
	if !moved {
		t.Fatalf("turbulence never displaced a point")
	}

	b = NewBuilder(noise.BackendOpenSimplex)
	if _, err := b.Build(b.Turbulence(b.Constant(0), TurbulenceParams{Frequency: 1, Power: 1, Roughness: 0})); !errors.Is(err, ErrConfig) {
		t.Fatalf("zero roughness: expected ErrConfig, got %v", err)
	}
}

func TestBuilderKeepsFirstError(t *testing.T) {
	b := NewBuilder(noise.BackendOpenSimplex)
	bad := b.Fractal(noise.Params{Frequency: -1, Octaves: 1, Persistence: 0.5, Lacunarity: 2})
	if bad != InvalidNode {
		t.Fatalf("expected invalid node")
	}
	first := b.Err()
	if !errors.Is(first, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", first)
	}
	b.Exponent(b.Constant(0), -1)
	if b.Err() != first {
		t.Fatalf("later failure replaced first error: %v", b.Err())
	}
	if _, err := b.Build(bad); err != first {
		t.Fatalf("Build returned %v want %v", err, first)
	}

	b = NewBuilder(noise.BackendOpenSimplex)
	if _, err := b.Build(b.Add(0, 7)); !errors.Is(err, ErrConfig) {
		t.Fatalf("dangling reference: expected ErrConfig, got %v", err)
	}
}

func TestKindString(t *testing.T) {
	if KindSelect.String() != "select" || KindCache.String() != "cache" {
		t.Fatalf("unexpected names %s %s", KindSelect, KindCache)
	}
}
