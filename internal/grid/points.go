package grid

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// Lattice places points every spacing units inside width x height, skipping
// the outer border. Points are ordered column by column. It returns nil when
// either axis holds more than MaxSide steps.
func Lattice(width, height, spacing float64) []mgl64.Vec2 {
	fc, fr, ok := steps(width, height, spacing)
	if !ok || fc > MaxSide || fr > MaxSide {
		return nil
	}
	cols, rows := int(fc), int(fr)
	out := make([]mgl64.Vec2, 0, (cols-1)*(rows-1))
	for c := 1; c < cols; c++ {
		for r := 1; r < rows; r++ {
			out = append(out, mgl64.Vec2{float64(c) * spacing, float64(r) * spacing})
		}
	}
	return out
}

// Jitter moves every coordinate by up to chaos*spacing/2 in either direction.
// Offsets come from a source seeded with seed, drawn x then y per point, so
// the result is reproducible.
func Jitter(seed uint64, points []mgl64.Vec2, spacing, chaos float64) []mgl64.Vec2 {
	rng := rand.New(rand.NewSource(int64(seed)))
	out := make([]mgl64.Vec2, len(points))
	for i, p := range points {
		dx := (rng.Float64() - 0.5) * chaos * spacing
		dy := (rng.Float64() - 0.5) * chaos * spacing
		out[i] = mgl64.Vec2{p[0] + dx, p[1] + dy}
	}
	return out
}

// PointCount is the number of lattice points for width x height at spacing,
// without building them. It saturates at math.MaxInt, and counts above 2^53
// are approximate.
func PointCount(width, height, spacing float64) int {
	cols, rows, ok := steps(width, height, spacing)
	if !ok {
		return 0
	}
	n := (cols - 1) * (rows - 1)
	if n >= math.MaxInt {
		return math.MaxInt
	}
	return int(n)
}

// steps counts whole spacing steps along each axis in float64 so that tiny
// spacings cannot overflow int.
func steps(width, height, spacing float64) (cols, rows float64, ok bool) {
	if !(spacing > 0) {
		return 0, 0, false
	}
	cols, rows = math.Floor(width/spacing), math.Floor(height/spacing)
	return cols, rows, cols >= 2 && rows >= 2
}
