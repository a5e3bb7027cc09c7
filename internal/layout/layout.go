// Package layout positions the nodes of a graph. Every mode is a Layout strategy
// writing into the Pos slice of the attribute arena, finishing with Fit so the
// result lies inside the canvas.
package layout

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/psidex/kgviz/internal/graph"
)

type Mode string

const (
	Force        Mode = "force"
	Radial       Mode = "radial"
	Circular     Mode = "circular"
	Grid         Mode = "grid"
	Hierarchical Mode = "hierarchical"
)

var Modes = []Mode{Force, Radial, Circular, Grid, Hierarchical}

func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown layout %q", s)
}

// Direction is the flow of a hierarchical layout: rank 0 sits at the named edge.
type Direction string

const (
	TopBottom Direction = "TB"
	BottomTop Direction = "BT"
	LeftRight Direction = "LR"
	RightLeft Direction = "RL"
)

func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case TopBottom, BottomTop, LeftRight, RightLeft:
		return d, nil
	}
	return "", fmt.Errorf("unknown direction %q: must be TB, BT, LR or RL", s)
}

const (
	DefaultWidth      = 960
	DefaultHeight     = 600
	DefaultPadding    = 40
	DefaultIterations = 300
)

// Config is shared by every mode. Zero values fall back to the defaults above.
type Config struct {
	Width   float64
	Height  float64
	Padding float64

	// Direction only applies to Hierarchical.
	Direction Direction
	// Iterations is how many ticks a frozen force layout runs for.
	Iterations int
	// Refine runs a short force pass constrained to the layout's geometry after
	// Hierarchical and Radial placement.
	Refine bool
	// Centrality ranks nodes when picking radial centers and hierarchy roots.
	Centrality []float64
	Force      ForceParams
	Seed       int64
}

// WithDefaults fills unset fields.
func (c Config) WithDefaults() Config {
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultHeight
	}
	if c.Padding == 0 {
		c.Padding = DefaultPadding
	}
	// A canvas smaller than its padding degrades to no padding.
	if c.Padding < 0 || c.Padding*2 >= math.Min(c.Width, c.Height) {
		c.Padding = 0
	}
	if c.Direction == "" {
		c.Direction = TopBottom
	}
	if c.Iterations <= 0 {
		c.Iterations = DefaultIterations
	}
	c.Force = c.Force.withDefaults()
	return c
}

// Layout is a positioning strategy.
type Layout interface {
	Mode() Mode
	Apply(g *graph.Graph, attrs *graph.Attrs, cfg Config)
}

// New returns the strategy for mode.
func New(mode Mode) (Layout, error) {
	switch mode {
	case Force:
		return forceLayout{}, nil
	case Radial:
		return radialLayout{}, nil
	case Circular:
		return circularLayout{}, nil
	case Grid:
		return gridLayout{}, nil
	case Hierarchical:
		return hierarchicalLayout{}, nil
	}
	return nil, fmt.Errorf("unknown layout %q", mode)
}

func finish(g *graph.Graph, attrs *graph.Attrs, cfg Config) {
	FitGraph(g, attrs.Pos, cfg)
}

// FitGraph fits the free nodes of g to the canvas, then restores caller-fixed
// positions which are already in canvas coordinates. Fixed nodes take no part in
// the fit.
func FitGraph(g *graph.Graph, pos []r2.Vec, cfg Config) {
	cfg = cfg.WithDefaults()
	free := make([]r2.Vec, 0, len(g.Nodes))
	for i, n := range g.Nodes {
		if n.Fixed == nil {
			free = append(free, pos[i])
		}
	}
	Fit(free, cfg.Width, cfg.Height, cfg.Padding)

	k := 0
	for i, n := range g.Nodes {
		if n.Fixed != nil {
			pos[i] = n.Fixed.Vec()
			continue
		}
		pos[i] = free[k]
		k++
	}
}

// refineSimulation starts a constrained pass over a layout that is still in its own
// coordinate space. Fixed nodes hold their layout position there, their canvas
// position is restored by finish.
func refineSimulation(g *graph.Graph, attrs *graph.Attrs, cfg Config) *Simulation {
	sim := NewSimulation(g, attrs, cfg)
	for i, n := range g.Nodes {
		if n.Fixed != nil {
			sim.Pin(i, attrs.Pos[i])
		}
	}
	return sim
}

// mostCentral returns the index with the highest score, the lowest index on ties.
func mostCentral(centrality []float64, candidates []int) int {
	best := candidates[0]
	for _, i := range candidates[1:] {
		if score(centrality, i) > score(centrality, best) {
			best = i
		}
	}
	return best
}

func score(centrality []float64, i int) float64 {
	if i < len(centrality) {
		return centrality[i]
	}
	return 0
}

// groupOrder returns node indices ordered by group, then index.
func groupOrder(n int, groups []int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	group := func(i int) int {
		if i < len(groups) {
			return groups[i]
		}
		return 0
	}
	sort.SliceStable(order, func(a, b int) bool {
		return group(order[a]) < group(order[b])
	})
	return order
}

// ring places count points evenly on a circle of radius r around c.
func ring(c r2.Vec, r float64, count int) []r2.Vec {
	out := make([]r2.Vec, count)
	for k := range out {
		theta := 2 * math.Pi * float64(k) / float64(count)
		out[k] = r2.Vec{X: c.X + r*math.Cos(theta), Y: c.Y + r*math.Sin(theta)}
	}
	return out
}
