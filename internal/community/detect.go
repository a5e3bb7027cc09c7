// Package community groups nodes by greedy modularity optimisation. It runs the
// local-moving phase of Louvain only: nodes move to the neighbouring community
// with the best gain until a full pass makes no move.
package community

import (
	"log/slog"

	"github.com/psidex/kgviz/internal/graph"
	"github.com/psidex/kgviz/internal/lib"
)

const defaultMaxPasses = 100

type Options struct {
	// MaxPasses bounds the number of passes over the nodes.
	MaxPasses int
}

// Result is a partition of the nodes.
type Result struct {
	// Groups holds the community of every node, numbered from 0 in node order.
	Groups     []int
	Modularity float64
	Passes     int
	// History is the modularity after each pass.
	History []float64
}

// Count returns the number of communities.
func (r Result) Count() int {
	count := 0
	for _, c := range r.Groups {
		if c+1 > count {
			count = c + 1
		}
	}
	return count
}

// Detect partitions the nodes of adj. Self loops are ignored and a graph without
// edges yields singleton communities.
func Detect(adj *graph.Adjacency, o Options, logger *slog.Logger) Result {
	logger = lib.LoggerOr(logger)
	maxPasses := o.MaxPasses
	if maxPasses <= 0 {
		maxPasses = defaultMaxPasses
	}

	n := len(adj.Weighted)
	k := adj.WeightedDegree()
	m2 := 0.0
	for _, w := range k {
		m2 += w
	}

	comm := make([]int, n)
	sumTot := make([]float64, n)
	for i := range comm {
		comm[i] = i
		sumTot[i] = k[i]
	}

	res := Result{}
	if m2 == 0 {
		res.Groups = renumber(comm)
		return res
	}

	ug := adj.Gonum()
	links := make(map[int]float64)

	for res.Passes < maxPasses {
		res.Passes++
		moves := 0

		for i := 0; i < n; i++ {
			if len(adj.Weighted[i]) == 0 {
				continue
			}
			own := comm[i]
			sumTot[own] -= k[i]

			clear(links)
			for _, nb := range adj.Weighted[i] {
				links[comm[nb.Node]] += nb.Weight
			}

			gain := func(c int) float64 {
				return (links[c] - k[i]*sumTot[c]/m2) / m2
			}

			best, bestGain := own, gain(own)
			// Neighbour order keeps ties deterministic.
			for _, nb := range adj.Weighted[i] {
				c := comm[nb.Node]
				if g := gain(c); g > bestGain {
					best, bestGain = c, g
				}
			}

			comm[i] = best
			sumTot[best] += k[i]
			if best != own {
				moves++
			}
		}

		groups := renumber(comm)
		res.History = append(res.History, modularity(ug, groups))
		logger.Debug("community pass", "pass", res.Passes, "moves", moves, "modularity", res.History[len(res.History)-1])
		if moves == 0 {
			break
		}
	}

	res.Groups = renumber(comm)
	res.Modularity = res.History[len(res.History)-1]
	return res
}

// renumber maps community labels to consecutive ids in order of first appearance.
func renumber(comm []int) []int {
	ids := make(map[int]int)
	out := make([]int, len(comm))
	for i, c := range comm {
		id, ok := ids[c]
		if !ok {
			id = len(ids)
			ids[c] = id
		}
		out[i] = id
	}
	return out
}
