package centrality

import (
	"github.com/psidex/kgviz/internal/graph"
	"github.com/psidex/kgviz/internal/lib"
)

// ClosenessScores runs a BFS from every node over the traversal adjacency.
// closeness = reachable / sum(distance to reachable), normalized by the maximum.
// A node that reaches nothing scores 0.
func ClosenessScores(adj *graph.Adjacency) []float64 {
	n := len(adj.Out)
	scores := make([]float64, n)
	dist := make([]int, n)
	queue := lib.NewQueue[int](n)

	for s := 0; s < n; s++ {
		bfsDistances(adj.Out, s, dist, queue)

		reachable, sum := 0, 0
		for v, d := range dist {
			if v == s || d < 0 {
				continue
			}
			reachable++
			sum += d
		}
		if sum > 0 {
			scores[s] = float64(reachable) / float64(sum)
		}
	}

	return normalize(scores)
}

// bfsDistances fills dist with hop counts from s, -1 marks unreachable nodes.
func bfsDistances(next [][]int, s int, dist []int, queue *lib.Queue[int]) {
	for i := range dist {
		dist[i] = -1
	}
	dist[s] = 0
	queue.Reset()
	queue.Enqueue(s)

	for {
		v, ok := queue.Dequeue()
		if !ok {
			return
		}
		for _, w := range next[v] {
			if dist[w] < 0 {
				dist[w] = dist[v] + 1
				queue.Enqueue(w)
			}
		}
	}
}
