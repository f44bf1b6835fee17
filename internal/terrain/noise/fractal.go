package noise

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Fractal sums octaves of smooth noise; each octave multiplies frequency by
// lacunarity and amplitude by persistence. The sum is not normalized.
type Fractal struct {
	p      Params
	layers []Source
}

func NewFractal(b Backend, p Params) (*Fractal, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Fractal{p: p, layers: p.layers(b)}, nil
}

func (f *Fractal) Sample(pt mgl64.Vec3) float64 {
	pt = pt.Mul(f.p.Frequency)
	amp := 1.0
	sum := 0.0
	for _, l := range f.layers {
		sum += l.Eval3(pt[0], pt[1], pt[2]) * amp
		amp *= f.p.Persistence
		pt = pt.Mul(f.p.Lacunarity)
	}
	return sum
}

// Billow is Fractal with every octave folded to 2|n|-1, recentred by +0.5.
type Billow struct {
	p      Params
	layers []Source
}

func NewBillow(b Backend, p Params) (*Billow, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Billow{p: p, layers: p.layers(b)}, nil
}

func (f *Billow) Sample(pt mgl64.Vec3) float64 {
	pt = pt.Mul(f.p.Frequency)
	amp := 1.0
	sum := 0.0
	for _, l := range f.layers {
		n := l.Eval3(pt[0], pt[1], pt[2])
		sum += (2*math.Abs(n) - 1) * amp
		amp *= f.p.Persistence
		pt = pt.Mul(f.p.Lacunarity)
	}
	return sum + 0.5
}

const (
	ridgeOffset = 1.0
	ridgeGain   = 2.0
)

// Ridged is ridged-multifractal noise. Each octave is (1-|n|)^2, weighted by
// the previous octave's signal so ridges stay sharp and valleys stay smooth.
// Octave amplitudes decay by Persistence; callers that leave it unset get the
// classic spectral weights lacunarity^-i.
type Ridged struct {
	p       Params
	layers  []Source
	weights []float64
}

// RidgedPersistence is the spectral persistence used when a ridged primitive
// does not set one.
func RidgedPersistence(lacunarity float64) float64 {
	return 1 / lacunarity
}

func NewRidged(b Backend, p Params) (*Ridged, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	w := make([]float64, p.Octaves)
	amp := 1.0
	for i := range w {
		w[i] = amp
		amp *= p.Persistence
	}
	return &Ridged{p: p, layers: p.layers(b), weights: w}, nil
}

func (f *Ridged) Sample(pt mgl64.Vec3) float64 {
	pt = pt.Mul(f.p.Frequency)
	sum := 0.0
	weight := 1.0
	for i, l := range f.layers {
		signal := ridgeOffset - math.Abs(l.Eval3(pt[0], pt[1], pt[2]))
		signal *= signal
		signal *= weight

		weight = signal * ridgeGain
		if weight > 1 {
			weight = 1
		} else if weight < 0 {
			weight = 0
		}

		sum += signal * f.weights[i]
		pt = pt.Mul(f.p.Lacunarity)
	}
	return sum*1.25 - 1
}
