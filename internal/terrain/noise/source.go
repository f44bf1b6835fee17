package noise

import (
	"fmt"
	"math"
	"strings"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// Backend names the smooth gradient noise every layer is built from.
type Backend string

const (
	BackendOpenSimplex Backend = "opensimplex"
	BackendPerlin      Backend = "perlin"
)

func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case "", BackendOpenSimplex:
		return BackendOpenSimplex, nil
	case BackendPerlin:
		return BackendPerlin, nil
	}
	return "", fmt.Errorf("unknown noise backend %q", s)
}

// Source is one seeded layer of smooth noise, roughly in [-1,1].
// Implementations are read-only after construction and safe for concurrent use.
type Source interface {
	Eval3(x, y, z float64) float64
}

func NewSource(b Backend, seed int64) Source {
	if b == BackendPerlin {
		return newPerlinSource(seed)
	}
	return opensimplex.New(seed)
}

// perlinPeriod is the lattice period of go-perlin's permutation table.
const perlinPeriod = 256.0

type perlinSource struct {
	p *perlin.Perlin
}

func newPerlinSource(seed int64) perlinSource {
	// One octave: the fractal layering happens in this package.
	return perlinSource{p: perlin.NewPerlin(2, 2, 1, seed)}
}

// go-perlin offsets lattice coordinates by a fixed positive constant and
// truncates toward zero, so far negative inputs break its interpolation.
// The lattice repeats every 256 cells; folding into [0,256) is exact.
func wrapPeriod(v float64) float64 {
	return v - perlinPeriod*math.Floor(v/perlinPeriod)
}

func (s perlinSource) Eval3(x, y, z float64) float64 {
	return s.p.Noise3D(wrapPeriod(x), wrapPeriod(y), wrapPeriod(z))
}
