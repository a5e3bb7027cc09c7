package layout

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/psidex/kgviz/internal/graph"
	"github.com/psidex/kgviz/internal/lib"
)

const (
	rankGap = 100
	slotGap = 60
)

// Ranks assigns every node a layer. Roots are the nodes without parents, or the top
// centrality decile when every node has one. Layers grow by breadth-first
// relaxation (rank = max(current, parent+1)) along the edges that remain after
// dropping the back edges of a depth-first walk from the roots, so a node is strictly
// below each direct predecessor except where a cycle had to be cut. Nodes no root
// reaches start a new walk from the most central of them.
func Ranks(adj *graph.Adjacency, centrality []float64) []int {
	n := len(adj.Children)
	rank := make([]int, n)
	if n == 0 {
		return rank
	}

	roots := rootsOf(adj, centrality)
	back := backEdges(adj, roots, centrality)

	indeg := make([]int, n)
	for v, children := range adj.Children {
		for _, w := range children {
			if !back[[2]int{v, w}] {
				indeg[w]++
			}
		}
	}

	queue := lib.NewQueue[int](n)
	for i := 0; i < n; i++ {
		if indeg[i] == 0 {
			queue.Enqueue(i)
		}
	}
	for {
		v, ok := queue.Dequeue()
		if !ok {
			break
		}
		for _, w := range adj.Children[v] {
			if back[[2]int{v, w}] {
				continue
			}
			rank[w] = max(rank[w], rank[v]+1)
			if indeg[w]--; indeg[w] == 0 {
				queue.Enqueue(w)
			}
		}
	}

	return rank
}

// BackEdges reports, for the same walk Ranks uses, which parent->child pairs were cut
// to break cycles. Self loops are never listed since Adjacency omits them.
func BackEdges(adj *graph.Adjacency, centrality []float64) map[[2]int]bool {
	return backEdges(adj, rootsOf(adj, centrality), centrality)
}

func rootsOf(adj *graph.Adjacency, centrality []float64) []int {
	var roots []int
	for i, parents := range adj.Parents {
		if len(parents) == 0 {
			roots = append(roots, i)
		}
	}
	if len(roots) > 0 {
		return roots
	}
	return byCentrality(len(adj.Parents), centrality)[:int(math.Ceil(float64(len(adj.Parents))/10))]
}

// byCentrality orders node indices by descending centrality, then index.
func byCentrality(n int, centrality []float64) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return score(centrality, order[a]) > score(centrality, order[b])
	})
	return order
}

func backEdges(adj *graph.Adjacency, roots []int, centrality []float64) map[[2]int]bool {
	const (
		unvisited = iota
		onStack
		done
	)
	n := len(adj.Children)
	state := make([]int, n)
	back := map[[2]int]bool{}

	type frame struct{ v, next int }
	walk := func(root int) {
		if state[root] != unvisited {
			return
		}
		state[root] = onStack
		stack := []frame{{v: root}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := adj.Children[top.v]
			if top.next == len(children) {
				state[top.v] = done
				stack = stack[:len(stack)-1]
				continue
			}
			w := children[top.next]
			top.next++
			switch state[w] {
			case onStack:
				back[[2]int{top.v, w}] = true
			case unvisited:
				state[w] = onStack
				stack = append(stack, frame{v: w})
			}
		}
	}

	for _, r := range roots {
		walk(r)
	}
	for _, v := range byCentrality(n, centrality) {
		walk(v)
	}
	return back
}

type hierarchicalLayout struct{}

func (hierarchicalLayout) Mode() Mode { return Hierarchical }

func (hierarchicalLayout) Apply(g *graph.Graph, attrs *graph.Attrs, cfg Config) {
	cfg = cfg.WithDefaults()
	adj := graph.NewAdjacency(g)
	rank := Ranks(adj, cfg.Centrality)
	bands := orderBands(adj, rank)

	vertical := cfg.Direction == TopBottom || cfg.Direction == BottomTop
	flip := cfg.Direction == BottomTop || cfg.Direction == RightLeft
	place := func(r int, slot, size int) r2.Vec {
		along := float64(r) * rankGap
		if flip {
			along = -along
		}
		across := (float64(slot) - float64(size-1)/2) * slotGap
		if vertical {
			return r2.Vec{X: across, Y: along}
		}
		return r2.Vec{X: along, Y: across}
	}

	for r, band := range bands {
		for slot, i := range band {
			attrs.Pos[i] = place(r, slot, len(band))
		}
	}

	if cfg.Refine && len(g.Edges) > 0 {
		anchors := make([]r2.Vec, len(attrs.Pos))
		copy(anchors, attrs.Pos)
		sim := refineSimulation(g, attrs, cfg)
		sim.Constrain = func(i int, p r2.Vec) r2.Vec {
			// Nodes may only slide along their band.
			if vertical {
				p.Y = anchors[i].Y
			} else {
				p.X = anchors[i].X
			}
			return p
		}
		sim.Run(cfg.Iterations / 3)
		sim.CopyTo(attrs)
	}

	finish(g, attrs, cfg)
}

// orderBands groups nodes by rank and orders each band by the mean slot of the
// node's parents in earlier bands. Nodes without such parents keep index order.
func orderBands(adj *graph.Adjacency, rank []int) [][]int {
	top := 0
	for _, r := range rank {
		top = max(top, r)
	}
	bands := make([][]int, top+1)
	for i, r := range rank {
		bands[r] = append(bands[r], i)
	}

	slot := make([]float64, len(rank))
	for r, band := range bands {
		bary := make(map[int]float64, len(band))
		for k, i := range band {
			sum, count := 0.0, 0
			for _, p := range adj.Parents[i] {
				if rank[p] < r {
					sum += slot[p]
					count++
				}
			}
			if count > 0 {
				bary[i] = sum / float64(count)
			} else {
				bary[i] = (float64(k) + 0.5) / float64(len(band))
			}
		}
		sort.SliceStable(band, func(a, b int) bool { return bary[band[a]] < bary[band[b]] })
		for k, i := range band {
			slot[i] = (float64(k) + 0.5) / float64(len(band))
		}
	}
	return bands
}
