package centrality

import "github.com/psidex/kgviz/internal/graph"

// Degrees counts incident edges per node. Undirected edges credit both endpoints,
// directed edges are credited according to mode. Self loops count once.
func Degrees(g *graph.Graph, mode DegreeMode) []int {
	deg := make([]int, len(g.Nodes))
	for e, edge := range g.Edges {
		s, t := g.Src[e], g.Dst[e]
		if s == t {
			deg[s]++
			continue
		}
		if !edge.Directed {
			deg[s]++
			deg[t]++
			continue
		}
		switch mode {
		case DegreeIn:
			deg[t]++
		case DegreeOut:
			deg[s]++
		default:
			deg[s]++
			deg[t]++
		}
	}
	return deg
}
