// Package centrality estimates per-node importance scores normalized to [0, 1]. The
// scores only drive visual sizing, so betweenness and closeness are cheap BFS
// approximations rather than exact all-pairs computations.
package centrality

import (
	"fmt"
	"math/rand"

	"github.com/psidex/kgviz/internal/graph"
)

// Kind names a centrality measure.
type Kind string

const (
	Degree      Kind = "degree"
	Closeness   Kind = "closeness"
	Betweenness Kind = "betweenness"
	Eigenvector Kind = "eigenvector"
)

// Kinds lists every supported measure.
var Kinds = []Kind{Degree, Closeness, Betweenness, Eigenvector}

// ParseKind validates a measure name. The empty string means Degree.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case "":
		return Degree, nil
	case Degree, Closeness, Betweenness, Eigenvector:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown centrality %q: must be degree, closeness, betweenness or eigenvector", s)
	}
}

// DegreeMode selects which endpoint of a directed edge is credited by Degree.
type DegreeMode string

const (
	DegreeAll DegreeMode = "all"
	DegreeIn  DegreeMode = "in"
	DegreeOut DegreeMode = "out"
)

const (
	defaultSamples    = 100
	defaultIterations = 20
)

// Options tunes the estimators. The zero value is usable.
type Options struct {
	DegreeMode DegreeMode
	// Samples bounds the number of (source, target) pairs used by Betweenness.
	Samples int
	// Iterations is the number of power-iteration steps used by Eigenvector.
	Iterations int
	Seed       int64
}

func (o Options) samples() int {
	if o.Samples <= 0 {
		return defaultSamples
	}
	return o.Samples
}

func (o Options) iterations() int {
	if o.Iterations <= 0 {
		return defaultIterations
	}
	return o.Iterations
}

// Compute returns the normalized score of every node, indexed by arena index.
func Compute(g *graph.Graph, adj *graph.Adjacency, kind Kind, o Options) []float64 {
	switch kind {
	case Closeness:
		return ClosenessScores(adj)
	case Betweenness:
		return BetweennessScores(adj, o.samples(), rand.New(rand.NewSource(o.Seed)))
	case Eigenvector:
		return EigenvectorScores(g, o.iterations())
	default:
		return normalize(toFloat(Degrees(g, o.DegreeMode)))
	}
}

// normalize divides every value by the maximum in place. All-zero input stays zero.
func normalize(values []float64) []float64 {
	max := 0.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		return values
	}
	for i := range values {
		values[i] /= max
	}
	return values
}

func toFloat(ints []int) []float64 {
	out := make([]float64, len(ints))
	for i, v := range ints {
		out[i] = float64(v)
	}
	return out
}
