package graph

import "gonum.org/v1/gonum/spatial/r2"

// Attrs is the computed-attribute arena for a Graph. Every node slice is indexed by
// the node's arena index, every edge slice by the edge's position in Graph.Edges.
type Attrs struct {
	Degree     []int
	Centrality []float64
	Group      []int
	Radius     []float64
	Color      []string
	Pos        []r2.Vec

	Width     []float64
	EdgeColor []string
}

// NewAttrs allocates an arena sized for g.
func NewAttrs(g *Graph) *Attrs {
	n, m := len(g.Nodes), len(g.Edges)
	return &Attrs{
		Degree:     make([]int, n),
		Centrality: make([]float64, n),
		Group:      make([]int, n),
		Radius:     make([]float64, n),
		Color:      make([]string, n),
		Pos:        make([]r2.Vec, n),
		Width:      make([]float64, m),
		EdgeColor:  make([]string, m),
	}
}

// Positions returns a copy of the node positions keyed by node ID.
func (a *Attrs) Positions(g *Graph) map[string]r2.Vec {
	out := make(map[string]r2.Vec, len(g.Nodes))
	for i, n := range g.Nodes {
		out[n.ID] = a.Pos[i]
	}
	return out
}
