package graph

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/simple"
)

// Neighbor is a weighted adjacency entry.
type Neighbor struct {
	Node   int
	Weight float64
}

// Adjacency is the index-based view of a Graph used by analytics and layout.
// Self loops are left out of every list.
type Adjacency struct {
	// Out follows edges as traversed: directed edges one way, undirected both ways.
	Out [][]int
	// In is Out reversed.
	In [][]int
	// Weighted ignores direction and merges parallel edges by summing their weights.
	Weighted [][]Neighbor
	// Parents lists the sources of edges pointing at each node, treating undirected
	// edges as pointing from Source to Target. Hierarchical ranking reads it.
	Parents  [][]int
	Children [][]int
}

// NewAdjacency builds every adjacency list for g in one pass over its edges.
func NewAdjacency(g *Graph) *Adjacency {
	n := len(g.Nodes)
	a := &Adjacency{
		Out:      make([][]int, n),
		In:       make([][]int, n),
		Weighted: make([][]Neighbor, n),
		Parents:  make([][]int, n),
		Children: make([][]int, n),
	}

	weights := make([]map[int]float64, n)
	outSeen := make([]map[int]bool, n)
	childSeen := make([]map[int]bool, n)
	for i := 0; i < n; i++ {
		weights[i] = map[int]float64{}
		outSeen[i] = map[int]bool{}
		childSeen[i] = map[int]bool{}
	}

	addOut := func(from, to int) {
		if outSeen[from][to] {
			return
		}
		outSeen[from][to] = true
		a.Out[from] = append(a.Out[from], to)
		a.In[to] = append(a.In[to], from)
	}

	for e, edge := range g.Edges {
		s, t := g.Src[e], g.Dst[e]
		if s == t {
			continue
		}
		addOut(s, t)
		if !edge.Directed {
			addOut(t, s)
		}
		if !childSeen[s][t] {
			childSeen[s][t] = true
			a.Children[s] = append(a.Children[s], t)
			a.Parents[t] = append(a.Parents[t], s)
		}
		w := edge.EffectiveWeight()
		weights[s][t] += w
		weights[t][s] += w
	}

	for i := 0; i < n; i++ {
		for j := range weights[i] {
			a.Weighted[i] = append(a.Weighted[i], Neighbor{Node: j, Weight: weights[i][j]})
		}
		// Map iteration order is random, keep the lists deterministic.
		ns := a.Weighted[i]
		sort.Slice(ns, func(x, y int) bool { return ns[x].Node < ns[y].Node })
	}

	return a
}

// WeightedDegree returns the summed incident weight of every node.
func (a *Adjacency) WeightedDegree() []float64 {
	k := make([]float64, len(a.Weighted))
	for i, ns := range a.Weighted {
		for _, nb := range ns {
			k[i] += nb.Weight
		}
	}
	return k
}

// Gonum converts the weighted undirected view to a gonum graph. Node IDs are arena
// indices.
func (a *Adjacency) Gonum() *simple.WeightedUndirectedGraph {
	ug := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for i := range a.Weighted {
		ug.AddNode(simple.Node(int64(i)))
	}
	for i, ns := range a.Weighted {
		for _, nb := range ns {
			if nb.Node <= i {
				continue
			}
			ug.SetWeightedEdge(simple.WeightedEdge{
				F: simple.Node(int64(i)),
				T: simple.Node(int64(nb.Node)),
				W: nb.Weight,
			})
		}
	}
	return ug
}
