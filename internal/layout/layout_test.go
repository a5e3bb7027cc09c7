package layout

import (
	"fmt"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/psidex/kgviz/internal/graph"
)

func chain(ids []string, edges [][2]string) *graph.Graph {
	nodes := make([]graph.Node, len(ids))
	for i, id := range ids {
		nodes[i] = graph.Node{ID: id}
	}
	es := make([]graph.Edge, len(edges))
	for i, e := range edges {
		es[i] = graph.Edge{Source: e[0], Target: e[1], Directed: true}
	}
	return graph.Normalize(nodes, es, nil)
}

func TestRanks_Chain(t *testing.T) {
	g := chain([]string{"A", "B", "C"}, [][2]string{{"A", "B"}, {"B", "C"}})
	rank := Ranks(graph.NewAdjacency(g), nil)

	want := []int{0, 1, 2}
	for i := range want {
		if rank[i] != want[i] {
			t.Fatalf("Ranks = %v, want %v", rank, want)
		}
	}
}

func TestRanks_CycleTerminates(t *testing.T) {
	g := chain([]string{"A", "B", "C"}, [][2]string{{"A", "B"}, {"B", "C"}, {"C", "A"}})
	adj := graph.NewAdjacency(g)
	rank := Ranks(adj, []float64{1, 0.5, 0.5})

	want := []int{0, 1, 2}
	for i := range want {
		if rank[i] != want[i] {
			t.Fatalf("Ranks = %v, want %v", rank, want)
		}
	}
	back := BackEdges(adj, []float64{1, 0.5, 0.5})
	if len(back) != 1 || !back[[2]int{2, 0}] {
		t.Errorf("BackEdges = %v, want only C->A", back)
	}
}

func TestRanks_StrictlyBelowPredecessors(t *testing.T) {
	// A small DAG with converging paths of different lengths.
	g := chain(
		[]string{"a", "b", "c", "d", "e", "f", "g"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}, {"a", "d"}, {"e", "d"}, {"d", "f"}, {"b", "f"}, {"g", "a"}},
	)
	rank := Ranks(graph.NewAdjacency(g), nil)

	for e := range g.Edges {
		s, d := g.Src[e], g.Dst[e]
		if rank[d] <= rank[s] {
			t.Errorf("edge %s: rank %d not below predecessor rank %d", g.Edges[e].ID, rank[d], rank[s])
		}
	}
}

func TestRanks_UnreachedComponentGetsOwnRoot(t *testing.T) {
	g := chain(
		[]string{"a", "b", "x", "y"},
		[][2]string{{"a", "b"}, {"x", "y"}, {"y", "x"}},
	)
	rank := Ranks(graph.NewAdjacency(g), []float64{0, 0, 0.2, 0.9})

	if rank[3] != 0 || rank[2] != 1 {
		t.Errorf("cycle component ranks x=%d y=%d, want y as the new root", rank[2], rank[3])
	}
}

func testGraph(n int) *graph.Graph {
	ids := make([]string, n)
	var edges [][2]string
	for i := range ids {
		ids[i] = fmt.Sprintf("n%d", i)
		if i > 0 {
			edges = append(edges, [2]string{ids[(i-1)/2], ids[i]})
		}
	}
	if n > 4 {
		edges = append(edges, [2]string{ids[n-1], ids[1]})
	}
	return chain(ids, edges)
}

func TestApply_WithinBounds(t *testing.T) {
	cfg := Config{Width: 800, Height: 500, Padding: 30, Refine: true, Seed: 7}
	for _, mode := range Modes {
		for _, n := range []int{2, 5, 17} {
			t.Run(fmt.Sprintf("%s/%d", mode, n), func(t *testing.T) {
				g := testGraph(n)
				attrs := graph.NewAttrs(g)
				l, err := New(mode)
				if err != nil {
					t.Fatal(err)
				}
				l.Apply(g, attrs, cfg)

				for i, p := range attrs.Pos {
					if math.IsNaN(p.X) || math.IsNaN(p.Y) {
						t.Fatalf("node %d has NaN position", i)
					}
					if p.X < 30 || p.X > 770 || p.Y < 30 || p.Y > 470 {
						t.Errorf("node %d at %v outside the padded canvas", i, p)
					}
				}
			})
		}
	}
}

func TestApply_SingleNodeCentered(t *testing.T) {
	for _, mode := range Modes {
		g := chain([]string{"only"}, nil)
		attrs := graph.NewAttrs(g)
		l, _ := New(mode)
		l.Apply(g, attrs, Config{Width: 400, Height: 200})

		if attrs.Pos[0] != (r2.Vec{X: 200, Y: 100}) {
			t.Errorf("%s: single node at %v, want center", mode, attrs.Pos[0])
		}
	}
}

func TestApply_FixedNodeKeepsPosition(t *testing.T) {
	g := graph.Normalize(
		[]graph.Node{{ID: "a", Fixed: &graph.Point{X: 50, Y: 60}}, {ID: "b"}, {ID: "c"}},
		[]graph.Edge{{Source: "a", Target: "b"}, {Source: "b", Target: "c"}},
		nil,
	)
	for _, mode := range Modes {
		attrs := graph.NewAttrs(g)
		l, _ := New(mode)
		l.Apply(g, attrs, Config{})
		if attrs.Pos[0] != (r2.Vec{X: 50, Y: 60}) {
			t.Errorf("%s: fixed node moved to %v", mode, attrs.Pos[0])
		}
	}
}

func TestApply_FixedNodeLeavesFitToFreeNodes(t *testing.T) {
	g := graph.Normalize(
		[]graph.Node{{ID: "root"}, {ID: "b"}, {ID: "c"}, {ID: "d"}, {ID: "z", Fixed: &graph.Point{X: 900, Y: 550}}},
		[]graph.Edge{
			{Source: "root", Target: "b", Directed: true},
			{Source: "root", Target: "c", Directed: true},
			{Source: "b", Target: "d", Directed: true},
		},
		nil,
	)
	const w, h, pad = 960.0, 600.0, 40.0
	for _, mode := range Modes {
		for _, refine := range []bool{false, true} {
			t.Run(fmt.Sprintf("%s/refine=%v", mode, refine), func(t *testing.T) {
				attrs := graph.NewAttrs(g)
				l, _ := New(mode)
				l.Apply(g, attrs, Config{Width: w, Height: h, Padding: pad, Refine: refine, Seed: 3})

				if attrs.Pos[4] != (r2.Vec{X: 900, Y: 550}) {
					t.Errorf("fixed node moved to %v", attrs.Pos[4])
				}
				b := Bounds(attrs.Pos[:4])
				const eps = 1e-6
				spansX := math.Abs(b.Min.X-pad) < eps && math.Abs(b.Max.X-(w-pad)) < eps
				spansY := math.Abs(b.Min.Y-pad) < eps && math.Abs(b.Max.Y-(h-pad)) < eps
				if !spansX && !spansY {
					t.Errorf("free nodes span %v, want the full padded canvas on one axis", b)
				}
			})
		}
	}
}

func TestHierarchical_Directions(t *testing.T) {
	g := chain([]string{"A", "B", "C"}, [][2]string{{"A", "B"}, {"B", "C"}})

	tests := []struct {
		dir   Direction
		ahead func(a, c r2.Vec) bool
	}{
		{TopBottom, func(a, c r2.Vec) bool { return a.Y < c.Y }},
		{BottomTop, func(a, c r2.Vec) bool { return a.Y > c.Y }},
		{LeftRight, func(a, c r2.Vec) bool { return a.X < c.X }},
		{RightLeft, func(a, c r2.Vec) bool { return a.X > c.X }},
	}
	for _, tt := range tests {
		attrs := graph.NewAttrs(g)
		hierarchicalLayout{}.Apply(g, attrs, Config{Direction: tt.dir})
		if !tt.ahead(attrs.Pos[0], attrs.Pos[2]) {
			t.Errorf("%s: root at %v, leaf at %v", tt.dir, attrs.Pos[0], attrs.Pos[2])
		}
	}
}

func TestRadial_CenterIsMostCentral(t *testing.T) {
	g := chain([]string{"a", "hub", "b", "c"}, [][2]string{{"hub", "a"}, {"hub", "b"}, {"hub", "c"}})
	attrs := graph.NewAttrs(g)
	radialLayout{}.Apply(g, attrs, Config{Width: 600, Height: 600, Centrality: []float64{0.3, 1, 0.3, 0.3}})

	// Fit centers the bounding box, so the hub is only known to be equidistant
	// from its ring.
	r := r2.Norm(r2.Sub(attrs.Pos[0], attrs.Pos[1]))
	if r == 0 {
		t.Fatalf("leaf placed on the hub")
	}
	for _, i := range []int{2, 3} {
		if d := r2.Norm(r2.Sub(attrs.Pos[i], attrs.Pos[1])); math.Abs(d-r) > 1e-6 {
			t.Errorf("node %d at distance %v, want %v", i, d, r)
		}
	}
}

func TestFit(t *testing.T) {
	pos := []r2.Vec{{X: -10, Y: 0}, {X: 10, Y: 5}}
	Fit(pos, 100, 100, 10)

	if pos[0].X != 10 || pos[1].X != 90 {
		t.Errorf("x extent = %v..%v, want 10..90", pos[0].X, pos[1].X)
	}
	// Uniform scaling keeps the aspect ratio: 5 units of y scale by 4.
	if math.Abs((pos[1].Y-pos[0].Y)-20) > 1e-9 || math.Abs((pos[0].Y+pos[1].Y)/2-50) > 1e-9 {
		t.Errorf("y = %v, %v; want 20 apart around 50", pos[0].Y, pos[1].Y)
	}

	same := []r2.Vec{{X: 3, Y: 3}, {X: 3, Y: 3}}
	Fit(same, 100, 60, 10)
	for _, p := range same {
		if p != (r2.Vec{X: 50, Y: 30}) {
			t.Errorf("zero-extent layout at %v, want center", p)
		}
	}
}

func TestGridColumns(t *testing.T) {
	for n, want := range map[int]int{0: 1, 1: 1, 2: 2, 4: 2, 5: 3, 10: 4} {
		if got := GridColumns(n); got != want {
			t.Errorf("GridColumns(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestSimulation_PinTickAndStop(t *testing.T) {
	g := graph.Normalize(
		[]graph.Node{{ID: "a"}, {ID: "b"}, {ID: "c", Fixed: &graph.Point{X: 1, Y: 1}}},
		[]graph.Edge{{Source: "a", Target: "b"}, {Source: "b", Target: "c"}},
		nil,
	)
	sim := NewSimulation(g, graph.NewAttrs(g), Config{})

	ticks := 0
	off := sim.OnTick(func(*Simulation) { ticks++ })

	target := r2.Vec{X: 123, Y: 45}
	sim.Pin(0, target)
	sim.Reheat()
	for i := 0; i < 5; i++ {
		sim.Tick()
	}
	if sim.Positions()[0] != target {
		t.Errorf("pinned node moved to %v", sim.Positions()[0])
	}
	if sim.Alpha() < ReheatAlpha/2 {
		t.Errorf("alpha = %v after reheat", sim.Alpha())
	}
	if ticks != 5 {
		t.Errorf("listener saw %d ticks, want 5", ticks)
	}

	off()
	sim.Tick()
	if ticks != 5 {
		t.Errorf("listener still called after off()")
	}

	if !sim.Unpin(0) {
		t.Errorf("Unpin of a dragged node should free it")
	}
	if sim.Unpin(2) {
		t.Errorf("Unpin of a caller-fixed node should keep it pinned")
	}

	sim.Stop()
	if sim.Tick() || sim.Running() {
		t.Errorf("stopped simulation still running")
	}
}

func TestSimulation_CoolsDown(t *testing.T) {
	g := testGraph(6)
	sim := NewSimulation(g, graph.NewAttrs(g), Config{})
	for i := 0; i < DefaultIterations+5; i++ {
		sim.Tick()
	}
	if sim.Running() {
		t.Errorf("alpha = %v, simulation should have cooled", sim.Alpha())
	}
}

func TestParse(t *testing.T) {
	if _, err := ParseMode("spiral"); err == nil {
		t.Errorf("ParseMode(spiral) should fail")
	}
	if m, err := ParseMode("radial"); err != nil || m != Radial {
		t.Errorf("ParseMode(radial) = %q, %v", m, err)
	}
	if _, err := ParseDirection("XY"); err == nil {
		t.Errorf("ParseDirection(XY) should fail")
	}
}
