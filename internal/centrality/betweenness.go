package centrality

import (
	"math/rand"
	"sort"

	"github.com/psidex/kgviz/internal/graph"
	"github.com/psidex/kgviz/internal/lib"
)

type pair struct{ s, t int }

// BetweennessScores approximates betweenness from shortest paths between at most
// samples (source, target) pairs. When the graph has no more ordered pairs than
// samples every pair is used and rng is ignored. Every node strictly inside a
// shortest s-t path receives sigma(s,v)*sigma(v,t)/sigma(s,t).
func BetweennessScores(adj *graph.Adjacency, samples int, rng *rand.Rand) []float64 {
	n := len(adj.Out)
	scores := make([]float64, n)
	if n < 2 {
		return scores
	}

	pairs := pickPairs(n, samples, rng)
	// Group by source so each BFS is reused for every target sampled from it.
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].s < pairs[j].s })

	b := newBrandes(n)
	current := -1
	for _, p := range pairs {
		if p.s != current {
			b.forward(adj.Out, p.s)
			current = p.s
		}
		b.accumulate(p.t, scores)
	}

	return normalize(scores)
}

func pickPairs(n, samples int, rng *rand.Rand) []pair {
	if total := n * (n - 1); total <= samples {
		pairs := make([]pair, 0, total)
		for s := 0; s < n; s++ {
			for t := 0; t < n; t++ {
				if s != t {
					pairs = append(pairs, pair{s, t})
				}
			}
		}
		return pairs
	}

	pairs := make([]pair, 0, samples)
	for len(pairs) < samples {
		s, t := rng.Intn(n), rng.Intn(n)
		if s == t {
			continue
		}
		pairs = append(pairs, pair{s, t})
	}
	return pairs
}

// brandes holds the per-source BFS state reused across targets.
type brandes struct {
	dist    []int
	sigma   []float64
	preds   [][]int
	toward  []float64
	touched []int
	queue   *lib.Queue[int]
}

func newBrandes(n int) *brandes {
	return &brandes{
		dist:   make([]int, n),
		sigma:  make([]float64, n),
		preds:  make([][]int, n),
		toward: make([]float64, n),
		queue:  lib.NewQueue[int](n),
	}
}

// forward counts shortest paths from s to every node.
func (b *brandes) forward(next [][]int, s int) {
	for i := range b.dist {
		b.dist[i] = -1
		b.sigma[i] = 0
		b.preds[i] = b.preds[i][:0]
	}
	b.dist[s] = 0
	b.sigma[s] = 1
	b.queue.Reset()
	b.queue.Enqueue(s)

	for {
		v, ok := b.queue.Dequeue()
		if !ok {
			return
		}
		for _, w := range next[v] {
			if b.dist[w] < 0 {
				b.dist[w] = b.dist[v] + 1
				b.queue.Enqueue(w)
			}
			if b.dist[w] == b.dist[v]+1 {
				b.sigma[w] += b.sigma[v]
				b.preds[w] = append(b.preds[w], v)
			}
		}
	}
}

// accumulate walks the shortest-path DAG back from t and credits intermediates.
func (b *brandes) accumulate(t int, scores []float64) {
	if b.dist[t] <= 0 {
		return
	}
	total := b.sigma[t]

	// toward[v] is the number of shortest paths from v to t.
	for _, v := range b.touched {
		b.toward[v] = 0
	}
	b.touched = b.touched[:0]

	b.toward[t] = 1
	b.touched = append(b.touched, t)
	frontier := []int{t}
	for len(frontier) > 0 {
		var up []int
		for _, w := range frontier {
			for _, v := range b.preds[w] {
				if b.toward[v] == 0 {
					b.touched = append(b.touched, v)
					up = append(up, v)
				}
				b.toward[v] += b.toward[w]
			}
		}
		frontier = up
	}

	for _, v := range b.touched {
		if v == t || b.dist[v] == 0 {
			continue
		}
		scores[v] += b.sigma[v] * b.toward[v] / total
	}
}
