package centrality

import (
	"gonum.org/v1/gonum/mat"

	"github.com/psidex/kgviz/internal/graph"
)

// EigenvectorScores runs power iteration on the dense weighted adjacency matrix.
// Undirected edges are mirrored, directed edges credit their target. The vector is
// L2-renormalized each step and iteration stops early if it collapses to zero.
func EigenvectorScores(g *graph.Graph, iterations int) []float64 {
	n := len(g.Nodes)
	if n == 0 {
		return []float64{}
	}

	a := mat.NewDense(n, n, nil)
	for e, edge := range g.Edges {
		s, t := g.Src[e], g.Dst[e]
		if s == t {
			continue
		}
		w := edge.EffectiveWeight()
		a.Set(t, s, a.At(t, s)+w)
		if !edge.Directed {
			a.Set(s, t, a.At(s, t)+w)
		}
	}

	x := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		x.SetVec(i, 1)
	}
	next := mat.NewVecDense(n, nil)

	for it := 0; it < iterations; it++ {
		next.MulVec(a, x)
		norm := mat.Norm(next, 2)
		if norm == 0 {
			// No incoming weight anywhere, e.g. an edgeless or acyclic directed graph.
			return make([]float64, n)
		}
		next.ScaleVec(1/norm, next)
		x, next = next, x
	}

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = x.AtVec(i)
	}
	return normalize(scores)
}
