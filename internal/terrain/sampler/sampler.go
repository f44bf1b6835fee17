package sampler

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/dgravesa/go-parallel/parallel"
	"github.com/go-gl/mathgl/mgl64"

	"planetgen.ai/internal/terrain/graph"
)

// Window is the rectangle of the field's own domain that a sampling grid
// spans.
type Window struct {
	MinX float64 `yaml:"min_x" json:"min_x"`
	MaxX float64 `yaml:"max_x" json:"max_x"`
	MinY float64 `yaml:"min_y" json:"min_y"`
	MaxY float64 `yaml:"max_y" json:"max_y"`
}

func DefaultWindow() Window {
	return Window{MinX: -2, MaxX: 2, MinY: -2, MaxY: 2}
}

func (w Window) Validate() error {
	for _, v := range []float64{w.MinX, w.MaxX, w.MinY, w.MaxY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: window bound %v is not finite", graph.ErrConfig, v)
		}
	}
	if !(w.MinX < w.MaxX) || !(w.MinY < w.MaxY) {
		return fmt.Errorf("%w: empty window [%v,%v]x[%v,%v]", graph.ErrConfig, w.MinX, w.MaxX, w.MinY, w.MaxY)
	}
	return nil
}

type Options struct {
	// Width and Height set the grid resolution across the window. They do
	// not change the window itself.
	Width  int
	Height int
	Window Window
	// Workers > 1 samples in parallel, each worker on its own graph clone.
	Workers int
}

// Field maps grid coordinates onto a window of an elevation graph.
type Field struct {
	g   *graph.Graph
	opt Options

	mu     sync.Mutex
	clones []*graph.Graph
	// par serializes parallel runs, which share the clones.
	par sync.Mutex
}

func NewField(g *graph.Graph, opt Options) (*Field, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil graph", graph.ErrConfig)
	}
	if opt.Width <= 0 || opt.Height <= 0 {
		return nil, fmt.Errorf("%w: grid size must be positive, got %dx%d", graph.ErrConfig, opt.Width, opt.Height)
	}
	if opt.Window == (Window{}) {
		opt.Window = DefaultWindow()
	}
	if err := opt.Window.Validate(); err != nil {
		return nil, err
	}
	if opt.Workers < 0 {
		opt.Workers = 0
	}
	return &Field{g: g, opt: opt}, nil
}

// Coord converts a grid point into the field's domain. The grid point is
// truncated to a cell index and clamped into [0,width)x[0,height); cell i
// maps to min + i*(max-min)/size, so the far edge of the window is never
// reached.
func (f *Field) Coord(p mgl64.Vec2) mgl64.Vec3 {
	w := f.opt.Window
	ix := cellIndex(p[0], f.opt.Width)
	iy := cellIndex(p[1], f.opt.Height)
	return mgl64.Vec3{
		w.MinX + (w.MaxX-w.MinX)/float64(f.opt.Width)*float64(ix),
		w.MinY + (w.MaxY-w.MinY)/float64(f.opt.Height)*float64(iy),
		0,
	}
}

func cellIndex(v float64, size int) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v >= float64(size) {
		return size - 1
	}
	return int(v)
}

// At evaluates the field directly at a domain coordinate, bypassing the grid.
func (f *Field) At(x, y float64) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.g.Eval(mgl64.Vec3{x, y, 0})
	if err := check(v); err != nil {
		return 0, fmt.Errorf("at (%v,%v): %w", x, y, err)
	}
	return v, nil
}

// Sample returns one elevation per point, in input order.
func (f *Field) Sample(ctx context.Context, points []mgl64.Vec2) ([]float64, error) {
	out := make([]float64, len(points))
	if f.opt.Workers > 1 && len(points) > 1 {
		f.sampleParallel(ctx, points, out)
	} else {
		f.mu.Lock()
		for i, p := range points {
			if i%1024 == 0 && ctx.Err() != nil {
				break
			}
			out[i] = f.g.Eval(f.Coord(p))
		}
		f.mu.Unlock()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i, v := range out {
		if err := check(v); err != nil {
			return nil, fmt.Errorf("point %d (%v,%v): %w", i, points[i][0], points[i][1], err)
		}
	}
	return out, nil
}

func (f *Field) sampleParallel(ctx context.Context, points []mgl64.Vec2, out []float64) {
	f.par.Lock()
	defer f.par.Unlock()
	parallel.For(len(points), func(i, grID int) {
		if ctx.Err() != nil {
			return
		}
		g := f.clone(grID)
		out[i] = g.Eval(f.Coord(points[i]))
	})
}

// clone returns the private graph of one worker goroutine.
func (f *Field) clone(grID int) *graph.Graph {
	f.mu.Lock()
	defer f.mu.Unlock()
	for len(f.clones) <= grID {
		f.clones = append(f.clones, nil)
	}
	if f.clones[grID] == nil {
		f.clones[grID] = f.g.Clone()
	}
	return f.clones[grID]
}

func check(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: elevation %v", graph.ErrCompute, v)
	}
	return nil
}
