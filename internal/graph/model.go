// Package graph holds the node/edge model shared by every graph visualization, the
// normalizer that turns caller data into a consistent Graph, and the per-node
// attribute arena that analytics and layout passes write into.
package graph

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/psidex/kgviz/internal/lib"
)

// Point is an optional fixed position supplied by the caller.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Vec converts p to the vector type used by the layout engine.
func (p Point) Vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// Node is a caller-supplied vertex. It is never mutated once normalized, computed
// values live in Attrs.
type Node struct {
	ID    string            `json:"id" yaml:"id"`
	Label string            `json:"label,omitempty" yaml:"label,omitempty"`
	Type  string            `json:"type,omitempty" yaml:"type,omitempty"`
	Size  float64           `json:"size,omitempty" yaml:"size,omitempty"`
	Fixed *Point            `json:"fixed,omitempty" yaml:"fixed,omitempty"`
	Data  map[string]string `json:"data,omitempty" yaml:"data,omitempty"`
}

// Edge connects two nodes by ID.
type Edge struct {
	ID       string  `json:"id,omitempty" yaml:"id,omitempty"`
	Source   string  `json:"source" yaml:"source"`
	Target   string  `json:"target" yaml:"target"`
	Type     string  `json:"type,omitempty" yaml:"type,omitempty"`
	Weight   float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
	Directed bool    `json:"directed,omitempty" yaml:"directed,omitempty"`
	Label    string  `json:"label,omitempty" yaml:"label,omitempty"`
}

// Graph is a normalized node/edge set. Edge endpoints are guaranteed to exist.
type Graph struct {
	Nodes []Node
	Edges []Edge

	// Src and Dst hold the arena index of each edge's endpoints.
	Src []int
	Dst []int

	index *lib.Interner
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.Nodes)
}

// Index returns the arena index of the node with the given ID.
func (g *Graph) Index(id string) (int, bool) {
	return g.index.Index(id)
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.index.Index(id)
	if !ok {
		return Node{}, false
	}
	return g.Nodes[i], true
}

// EdgeIndex returns the position of the edge with the given ID.
func (g *Graph) EdgeIndex(id string) (int, bool) {
	for i := range g.Edges {
		if g.Edges[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// IncidentEdges returns the indices of every edge touching node i.
func (g *Graph) IncidentEdges(i int) []int {
	var out []int
	for e := range g.Edges {
		if g.Src[e] == i || g.Dst[e] == i {
			out = append(out, e)
		}
	}
	return out
}

// EffectiveWeight returns the edge weight, treating unset or negative weights as 1.
func (e Edge) EffectiveWeight() float64 {
	if e.Weight <= 0 {
		return 1
	}
	return e.Weight
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	c := n
	if n.Fixed != nil {
		p := *n.Fixed
		c.Fixed = &p
	}
	if n.Data != nil {
		c.Data = make(map[string]string, len(n.Data))
		for k, v := range n.Data {
			c.Data[k] = v
		}
	}
	return c
}
