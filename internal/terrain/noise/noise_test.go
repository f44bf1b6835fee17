package noise

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

var backends = []Backend{BackendOpenSimplex, BackendPerlin}

func TestDeriveSeedDistinctStreams(t *testing.T) {
	seen := map[int64]string{}
	for _, base := range []int64{0, 1, 2, 10, 11, 12, 42, -7} {
		for stream := uint64(0); stream < 32; stream++ {
			s := DeriveSeed(base, stream)
			if prev, ok := seen[s]; ok {
				t.Fatalf("seed collision: base=%d stream=%d collides with %s", base, stream, prev)
			}
			seen[s] = "derived"
		}
	}
	if DeriveSeed(5, 3) != DeriveSeed(5, 3) {
		t.Fatalf("DeriveSeed not deterministic")
	}
}

func TestParseBackend(t *testing.T) {
	cases := map[string]Backend{
		"":            BackendOpenSimplex,
		"opensimplex": BackendOpenSimplex,
		" Perlin ":    BackendPerlin,
	}
	for in, want := range cases {
		got, err := ParseBackend(in)
		if err != nil {
			t.Fatalf("ParseBackend(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseBackend(%q)=%q want %q", in, got, want)
		}
	}
	if _, err := ParseBackend("value"); err == nil {
		t.Fatalf("expected unknown backend rejected")
	}
}

func TestParamsValidate(t *testing.T) {
	ok := Params{Frequency: 1, Octaves: 4, Persistence: 0.5, Lacunarity: 2}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid params rejected: %v", err)
	}
	bad := []Params{
		{Frequency: 0, Octaves: 4, Persistence: 0.5, Lacunarity: 2},
		{Frequency: -1, Octaves: 4, Persistence: 0.5, Lacunarity: 2},
		{Frequency: math.Inf(1), Octaves: 4, Persistence: 0.5, Lacunarity: 2},
		{Frequency: math.NaN(), Octaves: 4, Persistence: 0.5, Lacunarity: 2},
		{Frequency: 1, Octaves: 0, Persistence: 0.5, Lacunarity: 2},
		{Frequency: 1, Octaves: MaxOctaves + 1, Persistence: 0.5, Lacunarity: 2},
		{Frequency: 1, Octaves: 4, Persistence: 0, Lacunarity: 2},
		{Frequency: 1, Octaves: 4, Persistence: 1.5, Lacunarity: 2},
		{Frequency: 1, Octaves: 4, Persistence: 0.5, Lacunarity: 0.5},
		{Frequency: 1, Octaves: 4, Persistence: 0.5, Lacunarity: 100},
	}
	for i, p := range bad {
		if err := p.Validate(); err == nil {
			t.Fatalf("case %d: expected error for %+v", i, p)
		}
	}
}

func TestFractalDeterministic(t *testing.T) {
	for _, b := range backends {
		p := Params{Seed: 42, Frequency: 0.4, Octaves: 8, Persistence: 0.5, Lacunarity: 2.208984375}
		f1, err := NewFractal(b, p)
		if err != nil {
			t.Fatalf("%s: %v", b, err)
		}
		f2, _ := NewFractal(b, p)
		pt := mgl64.Vec3{1.25, -0.75, 0}
		if f1.Sample(pt) != f2.Sample(pt) {
			t.Fatalf("%s: fractal not reproducible", b)
		}
		if f1.Sample(pt) != f1.Sample(pt) {
			t.Fatalf("%s: fractal not deterministic across calls", b)
		}
	}
}

func TestFractalSeedSensitivity(t *testing.T) {
	for _, b := range backends {
		a, _ := NewFractal(b, Params{Seed: 1, Frequency: 1.3, Octaves: 4, Persistence: 0.5, Lacunarity: 2})
		c, _ := NewFractal(b, Params{Seed: 2, Frequency: 1.3, Octaves: 4, Persistence: 0.5, Lacunarity: 2})
		differ := false
		for i := 0; i < 16; i++ {
			pt := mgl64.Vec3{float64(i) * 0.37, float64(i) * -0.21, 0}
			if a.Sample(pt) != c.Sample(pt) {
				differ = true
				break
			}
		}
		if !differ {
			t.Fatalf("%s: seeds 1 and 2 produced identical fields", b)
		}
	}
}

func TestFractalContinuity(t *testing.T) {
	for _, b := range backends {
		f, _ := NewFractal(b, Params{Seed: 7, Frequency: 1, Octaves: 3, Persistence: 0.5, Lacunarity: 2})
		v1 := f.Sample(mgl64.Vec3{0.5, 0.5, 0})
		v2 := f.Sample(mgl64.Vec3{0.5001, 0.5, 0})
		if math.Abs(v1-v2) >= 0.05 {
			t.Fatalf("%s: fractal not continuous: %f vs %f", b, v1, v2)
		}
	}
}

func TestPerlinWrapsNegativeCoordinates(t *testing.T) {
	s := newPerlinSource(99)
	rng := rand.New(rand.NewSource(12345))
	for i := 0; i < 500; i++ {
		x := rng.Float64()*200000 - 100000
		y := rng.Float64()*200000 - 100000
		v := s.Eval3(x, y, 0)
		if math.IsNaN(v) || math.Abs(v) > 1.5 {
			t.Fatalf("Eval3(%f,%f)=%f out of range", x, y, v)
		}
		if w := s.Eval3(x+perlinPeriod, y, 0); math.Abs(w-v) > 1e-6 {
			t.Fatalf("Eval3 not periodic at x=%f: %f vs %f", x, v, w)
		}
	}
}

func TestRidgedSingleOctaveRange(t *testing.T) {
	for _, b := range backends {
		r, err := NewRidged(b, Params{Seed: 31, Frequency: 3.67, Octaves: 1, Persistence: RidgedPersistence(2.14), Lacunarity: 2.14})
		if err != nil {
			t.Fatalf("%s: %v", b, err)
		}
		rng := rand.New(rand.NewSource(1))
		for i := 0; i < 1000; i++ {
			pt := mgl64.Vec3{rng.Float64()*4 - 2, rng.Float64()*4 - 2, 0}
			v := r.Sample(pt)
			if v < -1-1e-9 || v > 0.25+1e-9 {
				t.Fatalf("%s: one-octave ridged %f outside [-1,0.25]", b, v)
			}
		}
	}
}

func TestBillowBounded(t *testing.T) {
	for _, b := range backends {
		f, _ := NewBillow(b, Params{Seed: 60, Frequency: 16.63, Octaves: 6, Persistence: 0.5, Lacunarity: 2.16})
		rng := rand.New(rand.NewSource(2))
		for i := 0; i < 1000; i++ {
			v := f.Sample(mgl64.Vec3{rng.Float64()*4 - 2, rng.Float64()*4 - 2, 0})
			if v < -2 || v > 3 {
				t.Fatalf("%s: billow %f outside [-2,3]", b, v)
			}
		}
	}
}

func TestCellularDistanceMode(t *testing.T) {
	c, err := NewCellular(CellularParams{Seed: 81, Frequency: 4, Octaves: 1, Distance: true})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 300; i++ {
		v := c.Sample(mgl64.Vec3{rng.Float64()*4 - 2, rng.Float64()*4 - 2, 0})
		// Nearest feature is never farther than a cell diagonal.
		if v < -1 || v > 2 {
			t.Fatalf("cellular distance %f outside [-1,2]", v)
		}
	}
	if _, err := NewCellular(CellularParams{Frequency: 0, Octaves: 1}); err == nil {
		t.Fatalf("expected zero frequency rejected")
	}
}

func TestCellularNearScanMatchesWideScan(t *testing.T) {
	c, _ := NewCellular(CellularParams{Seed: 17, Frequency: 1, Octaves: 1, Distance: true, Displacement: 0.5})
	l := &c.layers[0]
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 2000; i++ {
		pt := mgl64.Vec3{rng.Float64()*40 - 20, rng.Float64()*40 - 20, rng.Float64()*40 - 20}
		wideDist, wideCell := l.nearest(pt, 2)
		want := math.Sqrt(wideDist)*math.Sqrt(3) - 1 + 0.5*(unit(Hash3(l.value, wideCell[0], wideCell[1], wideCell[2]))*2-1)
		if got := l.eval(pt, c.p); got != want {
			t.Fatalf("pt %v: eval %v, 5x5x5 scan %v", pt, got, want)
		}
	}
}

func TestCellularValueModeIsPiecewiseConstant(t *testing.T) {
	c, _ := NewCellular(CellularParams{Seed: 5, Frequency: 1, Octaves: 1, Displacement: 1})
	// Two points very close together almost always fall in the same cell.
	a := c.Sample(mgl64.Vec3{0.3, 0.3, 0})
	b := c.Sample(mgl64.Vec3{0.3 + 1e-9, 0.3, 0})
	if a != b {
		t.Fatalf("value mode changed across a tiny step: %f vs %f", a, b)
	}
	if a < -1 || a > 1 {
		t.Fatalf("cell value %f outside [-1,1]", a)
	}
}
