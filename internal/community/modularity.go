package community

import (
	"math"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"

	kg "github.com/psidex/kgviz/internal/graph"
)

// Modularity scores a partition of the weighted undirected view of adj. groups is
// indexed by node and must hold consecutive ids starting at 0. A graph without edges
// scores 0.
func Modularity(adj *kg.Adjacency, groups []int) float64 {
	return modularity(adj.Gonum(), groups)
}

func modularity(ug *simple.WeightedUndirectedGraph, groups []int) float64 {
	if ug.Edges().Len() == 0 {
		return 0
	}
	q := community.Q(ug, partition(groups), 1)
	if math.IsNaN(q) {
		return 0
	}
	return q
}

func partition(groups []int) [][]graph.Node {
	count := 0
	for _, c := range groups {
		if c+1 > count {
			count = c + 1
		}
	}
	parts := make([][]graph.Node, count)
	for i, c := range groups {
		parts[c] = append(parts[c], simple.Node(int64(i)))
	}
	return parts
}
