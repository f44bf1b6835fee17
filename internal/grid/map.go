package grid

import (
	"context"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"planetgen.ai/internal/terrain/graph"
	"planetgen.ai/internal/terrain/noise"
	"planetgen.ai/internal/terrain/planet"
	"planetgen.ai/internal/terrain/sampler"
)

const (
	// MaxSide bounds width and height, and the lattice steps along each axis.
	MaxSide = 1 << 16
	// MaxSeedBytes bounds the seed. SeedFromString only weights this many bytes.
	MaxSeedBytes = 256
)

type Options struct {
	Seed    string  `json:"seed"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Spacing float64 `json:"spacing"`
	Chaos   float64 `json:"chaos"`
}

func (o Options) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{{"width", o.Width}, {"height", o.Height}, {"spacing", o.Spacing}} {
		if !(f.v > 0) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s must be finite and > 0, got %v", graph.ErrConfig, f.name, f.v)
		}
	}
	if o.Width < 1 || o.Height < 1 || o.Width > MaxSide || o.Height > MaxSide {
		return fmt.Errorf("%w: size %vx%v outside [1,%d]", graph.ErrConfig, o.Width, o.Height, MaxSide)
	}
	if o.Width/o.Spacing > MaxSide || o.Height/o.Spacing > MaxSide {
		return fmt.Errorf("%w: spacing %v gives more than %d steps across %vx%v", graph.ErrConfig, o.Spacing, MaxSide, o.Width, o.Height)
	}
	if len(o.Seed) > MaxSeedBytes {
		return fmt.Errorf("%w: seed is %d bytes, limit is %d", graph.ErrConfig, len(o.Seed), MaxSeedBytes)
	}
	if !(o.Chaos >= 0 && o.Chaos <= 1) {
		return fmt.Errorf("%w: chaos must be in [0,1], got %v", graph.ErrConfig, o.Chaos)
	}
	return nil
}

// Terrain selects the model a map is sampled from.
type Terrain struct {
	Style   planet.Style
	Backend noise.Backend
	Window  sampler.Window
	Workers int
}

// Map pairs generated points with their elevations by position.
type Map struct {
	Options
	SeedValue uint64          `json:"seed_value"`
	Points    []mgl64.Vec2    `json:"points"`
	Elevation []float64       `json:"elevation"`
	Stats     sampler.Summary `json:"stats"`
}

// Generate lays out the jittered lattice for opt and samples the planet for
// its seed at every point.
func Generate(ctx context.Context, opt Options, tr Terrain) (*Map, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	seed := SeedFromString(opt.Seed)
	points := Jitter(seed, Lattice(opt.Width, opt.Height, opt.Spacing), opt.Spacing, opt.Chaos)

	p, err := planet.Build(int64(seed), tr.Style, tr.Backend)
	if err != nil {
		return nil, err
	}
	f, err := sampler.NewField(p.Graph, sampler.Options{
		Width:   int(opt.Width),
		Height:  int(opt.Height),
		Window:  tr.Window,
		Workers: tr.Workers,
	})
	if err != nil {
		return nil, err
	}
	elev, err := f.Sample(ctx, points)
	if err != nil {
		return nil, fmt.Errorf("seed %q: %w", opt.Seed, err)
	}
	return &Map{
		Options:   opt,
		SeedValue: seed,
		Points:    points,
		Elevation: elev,
		Stats:     sampler.Stats(elev, tr.Style.SeaLevel),
	}, nil
}
