package noise

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// CellularParams configures Worley noise. Feature points are jittered inside
// every unit lattice cell.
type CellularParams struct {
	Seed      int64
	Frequency float64
	Octaves   int
	// Displacement scales the per-cell random value added to the output.
	Displacement float64
	// Distance makes the output the distance to the nearest feature point
	// (pits joined along polygon edges) instead of a flat per-cell value.
	Distance bool
}

func (p CellularParams) Validate() error {
	return Params{
		Seed:        p.Seed,
		Frequency:   p.Frequency,
		Octaves:     p.Octaves,
		Persistence: DefaultPersistence,
		Lacunarity:  DefaultLacunarity,
	}.Validate()
}

type cellLayer struct {
	jitter [3]int64
	value  int64
}

type Cellular struct {
	p      CellularParams
	layers []cellLayer
}

func NewCellular(p CellularParams) (*Cellular, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("cellular: %w", err)
	}
	c := &Cellular{p: p, layers: make([]cellLayer, p.Octaves)}
	for i := range c.layers {
		base := DeriveSeed(p.Seed, uint64(i))
		c.layers[i] = cellLayer{
			jitter: [3]int64{DeriveSeed(base, 0), DeriveSeed(base, 1), DeriveSeed(base, 2)},
			value:  DeriveSeed(base, 3),
		}
	}
	return c, nil
}

func (c *Cellular) Sample(pt mgl64.Vec3) float64 {
	pt = pt.Mul(c.p.Frequency)
	amp := 1.0
	sum := 0.0
	for i := range c.layers {
		sum += c.layers[i].eval(pt, c.p) * amp
		amp *= DefaultPersistence
		pt = pt.Mul(DefaultLacunarity)
	}
	return sum
}

func (l *cellLayer) eval(pt mgl64.Vec3, p CellularParams) float64 {
	// Features outside the 3x3x3 block lie more than one unit away on some
	// axis, so the wider scan only matters when nothing inside is that close.
	minDist, cell := l.nearest(pt, 1)
	if minDist >= 1 {
		minDist, cell = l.nearest(pt, 2)
	}

	v := 0.0
	if p.Distance {
		v = math.Sqrt(minDist)*math.Sqrt(3) - 1
	}
	return v + p.Displacement*(unit(Hash3(l.value, cell[0], cell[1], cell[2]))*2-1)
}

// nearest returns the squared distance to the closest feature point within
// reach cells of pt on every axis, and the cell holding it.
func (l *cellLayer) nearest(pt mgl64.Vec3, reach int64) (float64, [3]int64) {
	cx := int64(math.Floor(pt[0]))
	cy := int64(math.Floor(pt[1]))
	cz := int64(math.Floor(pt[2]))

	minDist := math.MaxFloat64
	var cell [3]int64
	for z := cz - reach; z <= cz+reach; z++ {
		for y := cy - reach; y <= cy+reach; y++ {
			for x := cx - reach; x <= cx+reach; x++ {
				feature := mgl64.Vec3{
					float64(x) + unit(Hash3(l.jitter[0], x, y, z)),
					float64(y) + unit(Hash3(l.jitter[1], x, y, z)),
					float64(z) + unit(Hash3(l.jitter[2], x, y, z)),
				}
				d := feature.Sub(pt)
				if dist := d.Dot(d); dist < minDist {
					minDist = dist
					cell = [3]int64{x, y, z}
				}
			}
		}
	}
	return minDist, cell
}
