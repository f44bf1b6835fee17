package graph

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"planetgen.ai/internal/terrain/noise"
)

// NodeID addresses a node inside the arena of one Graph.
type NodeID int32

const InvalidNode NodeID = -1

type Kind uint8

const (
	KindConstant Kind = iota
	KindFractal
	KindRidged
	KindBillow
	KindCellular
	KindCurve
	KindTerrace
	KindClamp
	KindScaleBias
	KindExponent
	KindMin
	KindMax
	KindAdd
	KindMultiply
	KindBlend
	KindSelect
	KindTurbulence
	KindCache
)

var kindNames = [...]string{
	KindConstant:   "constant",
	KindFractal:    "fractal",
	KindRidged:     "ridged",
	KindBillow:     "billow",
	KindCellular:   "cellular",
	KindCurve:      "curve",
	KindTerrace:    "terrace",
	KindClamp:      "clamp",
	KindScaleBias:  "scale_bias",
	KindExponent:   "exponent",
	KindMin:        "min",
	KindMax:        "max",
	KindAdd:        "add",
	KindMultiply:   "multiply",
	KindBlend:      "blend",
	KindSelect:     "select",
	KindTurbulence: "turbulence",
	KindCache:      "cache",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// ControlPoint maps one input value of a Curve to its output.
type ControlPoint struct {
	In  float64
	Out float64
}

type primitive interface {
	Sample(pt mgl64.Vec3) float64
}

// node is immutable once built. Fields are interpreted per kind:
//
//	a, b, c   inputs (c is the control signal of blend/select)
//	x, y, z   constant value, clamp bounds, scale/bias, exponent,
//	          select lower/upper/falloff, turbulence power
type node struct {
	kind    Kind
	a, b, c NodeID
	x, y, z float64

	prim    primitive
	curve   []ControlPoint
	terrace []float64
	invert  bool
	warp    [3]*noise.Fractal
	slot    int
}

type memo struct {
	valid bool
	pt    mgl64.Vec3
	v     float64
}

// Graph is an immutable node arena plus the per-instance cache memos.
// A Graph must not be evaluated from more than one goroutine; use Clone to
// get an instance for each worker.
type Graph struct {
	nodes []node
	root  NodeID
	memo  []memo
}

func (g *Graph) Root() NodeID { return g.root }
func (g *Graph) Len() int     { return len(g.nodes) }

func (g *Graph) Kind(id NodeID) Kind { return g.nodes[id].kind }

// Clone shares the node arena and noise sources and starts with empty memos.
func (g *Graph) Clone() *Graph {
	return &Graph{nodes: g.nodes, root: g.root, memo: make([]memo, len(g.memo))}
}

// Eval evaluates the root node at pt.
func (g *Graph) Eval(pt mgl64.Vec3) float64 {
	return g.eval(g.root, pt)
}

// EvalNode evaluates an arbitrary node of the arena at pt.
func (g *Graph) EvalNode(id NodeID, pt mgl64.Vec3) float64 {
	return g.eval(id, pt)
}

func (g *Graph) eval(id NodeID, pt mgl64.Vec3) float64 {
	n := &g.nodes[id]
	switch n.kind {
	case KindConstant:
		return n.x
	case KindFractal, KindRidged, KindBillow, KindCellular:
		return n.prim.Sample(pt)
	case KindCurve:
		return curveValue(n.curve, g.eval(n.a, pt))
	case KindTerrace:
		return terraceValue(n.terrace, n.invert, g.eval(n.a, pt))
	case KindClamp:
		v := g.eval(n.a, pt)
		if v < n.x {
			return n.x
		}
		if v > n.y {
			return n.y
		}
		return v
	case KindScaleBias:
		return g.eval(n.a, pt)*n.x + n.y
	case KindExponent:
		return exponentValue(g.eval(n.a, pt), n.x)
	case KindMin:
		a, b := g.eval(n.a, pt), g.eval(n.b, pt)
		if b < a {
			return b
		}
		return a
	case KindMax:
		a, b := g.eval(n.a, pt), g.eval(n.b, pt)
		if b > a {
			return b
		}
		return a
	case KindAdd:
		return g.eval(n.a, pt) + g.eval(n.b, pt)
	case KindMultiply:
		return g.eval(n.a, pt) * g.eval(n.b, pt)
	case KindBlend:
		a, b := g.eval(n.a, pt), g.eval(n.b, pt)
		t := (g.eval(n.c, pt) + 1) / 2
		return lerp(a, b, t)
	case KindSelect:
		return g.selectValue(n, pt)
	case KindTurbulence:
		return g.eval(n.a, turbulencePoint(n, pt))
	case KindCache:
		m := &g.memo[n.slot]
		if m.valid && m.pt == pt {
			return m.v
		}
		v := g.eval(n.a, pt)
		*m = memo{valid: true, pt: pt, v: v}
		return v
	}
	panic(fmt.Sprintf("graph: unknown node kind %d", n.kind))
}
