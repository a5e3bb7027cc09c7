package community

import (
	"fmt"
	"testing"

	"github.com/psidex/kgviz/internal/graph"
)

func adjacency(n int, edges [][2]int) *graph.Adjacency {
	nodes := make([]graph.Node, n)
	for i := range nodes {
		nodes[i] = graph.Node{ID: fmt.Sprint(i)}
	}
	es := make([]graph.Edge, len(edges))
	for i, e := range edges {
		es[i] = graph.Edge{Source: fmt.Sprint(e[0]), Target: fmt.Sprint(e[1])}
	}
	return graph.NewAdjacency(graph.Normalize(nodes, es, nil))
}

// twoCliques joins two 4-cliques {0..3} and {4..7} with a single bridge 3-4.
func twoCliques() *graph.Adjacency {
	var edges [][2]int
	for _, base := range []int{0, 4} {
		for i := 0; i < 4; i++ {
			for j := i + 1; j < 4; j++ {
				edges = append(edges, [2]int{base + i, base + j})
			}
		}
	}
	edges = append(edges, [2]int{3, 4})
	return adjacency(8, edges)
}

func TestDetect_EdgelessGivesSingletons(t *testing.T) {
	adj := adjacency(4, nil)
	for run := 0; run < 2; run++ {
		res := Detect(adj, Options{}, nil)
		for i, c := range res.Groups {
			if c != i {
				t.Errorf("run %d: Groups = %v, want singletons", run, res.Groups)
				break
			}
		}
		if res.Modularity != 0 {
			t.Errorf("run %d: Modularity = %v, want 0", run, res.Modularity)
		}
	}
}

func TestDetect_SplitsTwoCliques(t *testing.T) {
	res := Detect(twoCliques(), Options{}, nil)

	if res.Count() != 2 {
		t.Fatalf("found %d communities (%v), want 2", res.Count(), res.Groups)
	}
	for i := 1; i < 4; i++ {
		if res.Groups[i] != res.Groups[0] {
			t.Errorf("node %d not with node 0: %v", i, res.Groups)
		}
		if res.Groups[4+i] != res.Groups[4] {
			t.Errorf("node %d not with node 4: %v", 4+i, res.Groups)
		}
	}
	if res.Groups[0] != 0 || res.Groups[4] != 1 {
		t.Errorf("ids not renumbered in node order: %v", res.Groups)
	}
	if res.Modularity <= 0.3 {
		t.Errorf("Modularity = %v, want > 0.3", res.Modularity)
	}
}

func TestDetect_HistoryNonDecreasing(t *testing.T) {
	adj := adjacency(10, [][2]int{
		{0, 1}, {1, 2}, {2, 0}, {2, 3}, {3, 4}, {4, 5}, {5, 3},
		{5, 6}, {6, 7}, {7, 8}, {8, 6}, {9, 0},
	})
	res := Detect(adj, Options{}, nil)

	if len(res.History) != res.Passes {
		t.Fatalf("History has %d entries for %d passes", len(res.History), res.Passes)
	}
	base := Modularity(adj, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
	prev := base
	for i, q := range res.History {
		if q < prev-1e-12 {
			t.Errorf("modularity decreased at pass %d: %v -> %v", i+1, prev, q)
		}
		prev = q
	}
}

func TestDetect_MaxPasses(t *testing.T) {
	res := Detect(twoCliques(), Options{MaxPasses: 1}, nil)
	if res.Passes != 1 {
		t.Errorf("Passes = %d, want 1", res.Passes)
	}
}

func TestRenumber(t *testing.T) {
	got := renumber([]int{7, 7, 2, 9, 2})
	want := []int{0, 0, 1, 2, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("renumber = %v, want %v", got, want)
		}
	}
}
