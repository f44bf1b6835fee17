package noise

import (
	"fmt"
	"math"
)

const (
	MaxOctaves = 30

	DefaultPersistence = 0.5
	DefaultLacunarity  = 2.0
)

// Params configures a multi-octave primitive.
type Params struct {
	Seed        int64
	Frequency   float64
	Octaves     int
	Persistence float64
	Lacunarity  float64
}

func (p Params) Validate() error {
	if !(p.Frequency > 0) || math.IsInf(p.Frequency, 0) {
		return fmt.Errorf("frequency must be finite and > 0, got %v", p.Frequency)
	}
	if p.Octaves < 1 || p.Octaves > MaxOctaves {
		return fmt.Errorf("octaves must be in [1,%d], got %d", MaxOctaves, p.Octaves)
	}
	if !(p.Persistence > 0 && p.Persistence <= 1) {
		return fmt.Errorf("persistence must be in (0,1], got %v", p.Persistence)
	}
	if !(p.Lacunarity >= 1 && p.Lacunarity <= 16) {
		return fmt.Errorf("lacunarity must be in [1,16], got %v", p.Lacunarity)
	}
	return nil
}

// layers builds one independently seeded source per octave.
func (p Params) layers(b Backend) []Source {
	out := make([]Source, p.Octaves)
	for i := range out {
		out[i] = NewSource(b, DeriveSeed(p.Seed, uint64(i)))
	}
	return out
}
