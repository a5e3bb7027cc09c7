package layout

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/psidex/kgviz/internal/graph"
	"github.com/psidex/kgviz/internal/lib"
)

const ringGap = 100

type radialLayout struct{}

func (radialLayout) Mode() Mode { return Radial }

// Apply puts the most central node in the middle and every other node on a ring
// whose index is its hop distance from it, ignoring edge direction. Unreachable
// nodes share the outermost ring.
func (radialLayout) Apply(g *graph.Graph, attrs *graph.Attrs, cfg Config) {
	cfg = cfg.WithDefaults()
	n := len(g.Nodes)
	if n == 0 {
		return
	}
	adj := graph.NewAdjacency(g)

	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	dist := Hops(adj, mostCentral(cfg.Centrality, all))

	outer := 0
	for _, d := range dist {
		outer = max(outer, d)
	}
	for i, d := range dist {
		if d < 0 {
			dist[i] = outer + 1
		}
	}

	rings := map[int][]int{}
	for _, i := range groupOrder(n, attrs.Group) {
		rings[dist[i]] = append(rings[dist[i]], i)
	}
	radii := make([]float64, n)
	for d, members := range rings {
		r := float64(d) * ringGap
		for k, p := range ring(r2.Vec{}, r, len(members)) {
			attrs.Pos[members[k]] = p
			radii[members[k]] = r
		}
	}

	if cfg.Refine && len(g.Edges) > 0 {
		sim := refineSimulation(g, attrs, cfg)
		sim.Constrain = func(i int, p r2.Vec) r2.Vec {
			// Nodes may only slide around their ring.
			l := r2.Norm(p)
			if l == 0 || radii[i] == 0 {
				return r2.Vec{}
			}
			return r2.Scale(radii[i]/l, p)
		}
		sim.Run(cfg.Iterations / 3)
		sim.CopyTo(attrs)
	}

	finish(g, attrs, cfg)
}

// Hops returns the undirected hop distance of every node from src, -1 when
// unreachable.
func Hops(adj *graph.Adjacency, src int) []int {
	n := len(adj.Weighted)
	dist := make([]int, n)
	for i := range dist {
		dist[i] = -1
	}
	dist[src] = 0
	queue := lib.NewQueue[int](n)
	queue.Enqueue(src)
	for {
		v, ok := queue.Dequeue()
		if !ok {
			return dist
		}
		for _, nb := range adj.Weighted[v] {
			if dist[nb.Node] < 0 {
				dist[nb.Node] = dist[v] + 1
				queue.Enqueue(nb.Node)
			}
		}
	}
}

type circularLayout struct{}

func (circularLayout) Mode() Mode { return Circular }

func (circularLayout) Apply(g *graph.Graph, attrs *graph.Attrs, cfg Config) {
	cfg = cfg.WithDefaults()
	order := groupOrder(len(g.Nodes), attrs.Group)
	for k, p := range ring(r2.Vec{}, ringGap, len(order)) {
		attrs.Pos[order[k]] = p
	}
	finish(g, attrs, cfg)
}

type gridLayout struct{}

func (gridLayout) Mode() Mode { return Grid }

func (gridLayout) Apply(g *graph.Graph, attrs *graph.Attrs, cfg Config) {
	cfg = cfg.WithDefaults()
	order := groupOrder(len(g.Nodes), attrs.Group)
	cols := GridColumns(len(order))
	for k, i := range order {
		attrs.Pos[i] = r2.Vec{X: float64(k%cols) * slotGap, Y: float64(k/cols) * slotGap}
	}
	finish(g, attrs, cfg)
}

// GridColumns is ceil(sqrt(n)), at least 1.
func GridColumns(n int) int {
	cols := 1
	for cols*cols < n {
		cols++
	}
	return cols
}
