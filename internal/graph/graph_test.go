package graph

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestNormalize_DefaultsIDsAndLabels(t *testing.T) {
	g := Normalize([]Node{{}, {ID: "b"}, {ID: "c", Label: "Cee"}}, nil, nil)

	want := []struct{ id, label string }{
		{"node-0", "node-0"},
		{"b", "b"},
		{"c", "Cee"},
	}
	if g.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", g.Len(), len(want))
	}
	for i, w := range want {
		if g.Nodes[i].ID != w.id || g.Nodes[i].Label != w.label {
			t.Errorf("node %d = (%q, %q), want (%q, %q)", i, g.Nodes[i].ID, g.Nodes[i].Label, w.id, w.label)
		}
	}
}

func TestNormalize_DropsDanglingEdges(t *testing.T) {
	var buf bytes.Buffer
	nodes := []Node{{ID: "a"}, {ID: "b"}}
	edges := []Edge{
		{Source: "a", Target: "b"},
		{ID: "ghost", Source: "a", Target: "zzz"},
		{Source: "nope", Target: "b"},
	}

	g := Normalize(nodes, edges, testLogger(&buf))

	if len(g.Edges) != 1 {
		t.Fatalf("kept %d edges, want 1", len(g.Edges))
	}
	if g.Edges[0].ID != "a-b-0" {
		t.Errorf("default edge id = %q, want %q", g.Edges[0].ID, "a-b-0")
	}
	if g.Edges[0].Weight != 1 {
		t.Errorf("default weight = %v, want 1", g.Edges[0].Weight)
	}
	logs := buf.String()
	if strings.Count(logs, "dropping edge with unknown endpoint") != 2 {
		t.Errorf("expected two warnings, got logs:\n%s", logs)
	}
	if !strings.Contains(logs, "target=zzz") {
		t.Errorf("warning should name the missing target, got:\n%s", logs)
	}
}

func TestNormalize_DuplicateNodesAndEdges(t *testing.T) {
	var buf bytes.Buffer
	g := Normalize(
		[]Node{{ID: "a", Label: "first"}, {ID: "a", Label: "second"}, {ID: "b"}},
		[]Edge{{ID: "e", Source: "a", Target: "b"}, {ID: "e", Source: "b", Target: "a"}},
		testLogger(&buf),
	)

	if g.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", g.Len())
	}
	if n, _ := g.Node("a"); n.Label != "first" {
		t.Errorf("duplicate node should keep the first, got label %q", n.Label)
	}
	if g.Edges[0].ID == g.Edges[1].ID {
		t.Errorf("duplicate edge ids should be renamed, both are %q", g.Edges[0].ID)
	}
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	nodes := []Node{{Data: map[string]string{"k": "v"}, Fixed: &Point{X: 1, Y: 2}}}
	edges := []Edge{{Source: "node-0", Target: "node-0"}}

	g := Normalize(nodes, edges, nil)
	g.Nodes[0].Data["k"] = "changed"
	g.Nodes[0].Fixed.X = 99

	if nodes[0].ID != "" {
		t.Errorf("input node ID was assigned: %q", nodes[0].ID)
	}
	if nodes[0].Data["k"] != "v" {
		t.Errorf("input data map was shared")
	}
	if nodes[0].Fixed.X != 1 {
		t.Errorf("input fixed point was shared")
	}
	if edges[0].ID != "" || edges[0].Weight != 0 {
		t.Errorf("input edge was mutated: %+v", edges[0])
	}
}

func TestGraph_IndexAndIncidentEdges(t *testing.T) {
	g := Normalize(
		[]Node{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		[]Edge{{Source: "a", Target: "b"}, {Source: "b", Target: "c"}, {Source: "c", Target: "a"}},
		nil,
	)

	b, ok := g.Index("b")
	if !ok || b != 1 {
		t.Fatalf("Index(b) = %d, %v", b, ok)
	}
	if got := g.IncidentEdges(b); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("IncidentEdges(b) = %v, want [0 1]", got)
	}
	if _, ok := g.EdgeIndex("c-a-2"); !ok {
		t.Errorf("EdgeIndex(c-a-2) not found")
	}
}

func TestAdjacency(t *testing.T) {
	g := Normalize(
		[]Node{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}},
		[]Edge{
			{Source: "a", Target: "b", Directed: true, Weight: 2},
			{Source: "a", Target: "b", Directed: true, Weight: 3},
			{Source: "b", Target: "c"},
			{Source: "c", Target: "c"},
		},
		nil,
	)
	adj := NewAdjacency(g)

	if len(adj.Out[0]) != 1 || adj.Out[0][0] != 1 {
		t.Errorf("Out[a] = %v, want [1]", adj.Out[0])
	}
	if len(adj.Out[1]) != 1 || adj.Out[1][0] != 2 {
		t.Errorf("Out[b] = %v, directed edge must not be followed backwards", adj.Out[1])
	}
	if len(adj.Out[2]) != 1 || adj.Out[2][0] != 1 {
		t.Errorf("Out[c] = %v, want [1] (undirected back edge, no self loop)", adj.Out[2])
	}
	if len(adj.Weighted[0]) != 1 || adj.Weighted[0][0].Weight != 5 {
		t.Errorf("Weighted[a] = %v, want parallel edges merged to 5", adj.Weighted[0])
	}
	if len(adj.Weighted[3]) != 0 {
		t.Errorf("isolated node has neighbours: %v", adj.Weighted[3])
	}
	if len(adj.Parents[1]) != 1 || adj.Parents[1][0] != 0 {
		t.Errorf("Parents[b] = %v, want [0]", adj.Parents[1])
	}

	k := adj.WeightedDegree()
	if k[1] != 6 {
		t.Errorf("weighted degree of b = %v, want 6", k[1])
	}

	ug := adj.Gonum()
	if ug.Nodes().Len() != 4 {
		t.Errorf("gonum graph has %d nodes, want 4", ug.Nodes().Len())
	}
	if w, ok := ug.Weight(0, 1); !ok || w != 5 {
		t.Errorf("gonum weight(a,b) = %v, %v; want 5", w, ok)
	}
}
