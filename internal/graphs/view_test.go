package graphs

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/psidex/kgviz/internal/graph"
	"github.com/psidex/kgviz/internal/layout"
)

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func sampleData() ([]graph.Node, []graph.Edge) {
	nodes := []graph.Node{
		{ID: "a", Label: "Alpha", Type: "person", Data: map[string]string{"role": "lead", "age": "41"}},
		{ID: "b", Label: "Beta", Type: "person"},
		{ID: "c", Label: "Gamma", Type: "org"},
		{ID: "d", Label: "Delta", Type: "org", Fixed: &graph.Point{X: 100, Y: 100}},
	}
	edges := []graph.Edge{
		{Source: "a", Target: "b", Weight: 3},
		{Source: "b", Target: "c", Type: "works-at"},
		{Source: "c", Target: "d", Directed: true},
	}
	return nodes, edges
}

func newView(t *testing.T, kind Kind, o Options, buf *bytes.Buffer) *View {
	t.Helper()
	nodes, edges := sampleData()
	var logger *slog.Logger
	if buf != nil {
		logger = testLogger(buf)
	}
	v, err := New(kind, nodes, edges, o, logger)
	if err != nil {
		t.Fatalf("New(%s): %v", kind, err)
	}
	return v
}

func TestNew_UnknownKind(t *testing.T) {
	_, err := New("pie", nil, nil, Options{}, nil)
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("err = %v, want ErrUnknownKind", err)
	}
}

func TestUpdateData_DanglingEdgeDropped(t *testing.T) {
	var buf bytes.Buffer
	v := newView(t, Network, Options{}, &buf)

	nodes, edges := sampleData()
	edges = append(edges, graph.Edge{ID: "broken", Source: "a", Target: "nowhere"})
	v.UpdateData(nodes, edges)

	if _, ok := v.Graph().EdgeIndex("broken"); ok {
		t.Errorf("dangling edge was kept")
	}
	if len(v.Graph().Edges) != 3 {
		t.Errorf("kept %d edges, want 3", len(v.Graph().Edges))
	}
	if !strings.Contains(buf.String(), "level=WARN") || !strings.Contains(buf.String(), "edge=broken") {
		t.Errorf("expected a warning naming the edge, got:\n%s", buf.String())
	}
	if err := v.Render(&bytes.Buffer{}); err != nil {
		t.Errorf("Render after bad update: %v", err)
	}
}

func TestView_PositionsInsideCanvas(t *testing.T) {
	for _, kind := range Kinds {
		v := newView(t, kind, Options{Width: 500, Height: 400, Padding: 20}, nil)
		for i, p := range v.Attrs().Pos {
			if v.Graph().Nodes[i].Fixed != nil {
				continue
			}
			if p.X < 20 || p.X > 480 || p.Y < 20 || p.Y > 380 {
				t.Errorf("%s: node %d at %v outside canvas", kind, i, p)
			}
		}
	}
}

func TestView_KindDefaults(t *testing.T) {
	tree := newView(t, Tree, Options{}, nil)
	if tree.Options().Layout != layout.Hierarchical || tree.Options().Backend != "echarts-tree" {
		t.Errorf("tree options = %+v", tree.Options())
	}
	causal := newView(t, Causal, Options{Directed: false}, nil)
	if !causal.Options().Directed || causal.Options().Direction != layout.LeftRight {
		t.Errorf("causal options = %+v", causal.Options())
	}
	for _, e := range causal.Scene().Edges {
		if !e.Directed {
			t.Errorf("causal edge %s not drawn directed", e.ID)
		}
	}
}

func TestView_Styling(t *testing.T) {
	v := newView(t, Network, Options{MinRadius: 5, MaxRadius: 20, MaxEdgeWidth: 5}, nil)
	a := v.Attrs()

	for i, r := range a.Radius {
		if r < 5 || r > 20 {
			t.Errorf("radius[%d] = %v outside [5,20]", i, r)
		}
	}
	// b and c share the highest degree.
	if a.Radius[1] != 20 {
		t.Errorf("most central node radius = %v, want 20", a.Radius[1])
	}
	if a.Width[0] != 5 || a.Width[1] != 1 {
		t.Errorf("edge widths = %v, want heaviest 5 and lightest 1", a.Width)
	}
	for i, c := range a.Color {
		if c == "" {
			t.Errorf("node %d has no colour", i)
		}
	}
}

func TestUpdateOptions(t *testing.T) {
	var buf bytes.Buffer
	v := newView(t, Generic, Options{}, &buf)

	bad := "spiral"
	v.UpdateOptions(PartialOptions{Layout: &bad})
	if v.Options().Layout != layout.Force {
		t.Errorf("unknown layout replaced the previous one: %q", v.Options().Layout)
	}
	if !strings.Contains(buf.String(), "invalid option") {
		t.Errorf("expected a warning, got:\n%s", buf.String())
	}

	grid := "grid"
	width := 300.0
	v.UpdateOptions(PartialOptions{Layout: &grid, Width: &width})
	if v.Options().Layout != layout.Grid || v.Options().Width != 300 {
		t.Errorf("options = %+v", v.Options())
	}
	if v.Options().Height != layout.DefaultHeight {
		t.Errorf("unset field changed: height = %v", v.Options().Height)
	}
}

func TestResize(t *testing.T) {
	v := newView(t, Generic, Options{Layout: layout.Grid}, nil)
	v.Resize(200, 0)
	if v.Options().Width != 200 || v.Options().Height != layout.DefaultHeight {
		t.Errorf("size = %vx%v", v.Options().Width, v.Options().Height)
	}
	for i, p := range v.Attrs().Pos {
		if v.Graph().Nodes[i].Fixed == nil && p.X > 200 {
			t.Errorf("node %d at %v after resize", i, p)
		}
	}
}

func TestDispatch_HoverAndUnknownNode(t *testing.T) {
	var buf bytes.Buffer
	v := newView(t, Network, Options{}, &buf)

	u, err := v.Dispatch(Event{Type: EventHover, Node: "a"})
	if err != nil {
		t.Fatal(err)
	}
	if u.Tooltip == nil || u.Tooltip.Title != "Alpha" || u.Tooltip.Type != "person" {
		t.Fatalf("tooltip = %+v", u.Tooltip)
	}
	if len(u.Tooltip.Fields) != 2 || u.Tooltip.Fields[0].Key != "age" {
		t.Errorf("fields = %+v, want sorted by key", u.Tooltip.Fields)
	}

	u, err = v.Dispatch(Event{Type: EventHover, Node: "ghost"})
	if err != nil || u.Tooltip != nil {
		t.Errorf("unknown node hover = %+v, %v", u, err)
	}
	if !strings.Contains(buf.String(), "node=ghost") {
		t.Errorf("expected a warning for the unknown node")
	}

	u, _ = v.Dispatch(Event{Type: EventUnhover, Node: "a"})
	if !u.HideTooltip {
		t.Errorf("unhover should hide the tooltip")
	}
}

func TestDispatch_DragWithSimulation(t *testing.T) {
	v := newView(t, Network, Options{Simulate: true}, nil)
	if !v.Simulating() {
		t.Fatal("expected a live simulation")
	}

	ticks := 0
	off := v.On(EventTick, func(u Update) {
		ticks++
		if len(u.Positions) != 4 {
			t.Errorf("tick carried %d positions", len(u.Positions))
		}
	})

	u, err := v.Dispatch(Event{Type: EventDrag, Node: "b", X: 42, Y: 24})
	if err != nil {
		t.Fatal(err)
	}
	if len(u.Edges) != 2 {
		t.Errorf("drag reported edges %v, want the 2 incident edges", u.Edges)
	}
	for i := 0; i < 3; i++ {
		v.Tick()
	}
	if p := v.Positions()["b"]; p.X != 42 || p.Y != 24 {
		t.Errorf("dragged node at %v, want pinned at (42,24)", p)
	}
	if ticks != 3 {
		t.Errorf("tick handler ran %d times, want 3", ticks)
	}

	if _, err := v.Dispatch(Event{Type: EventDragEnd, Node: "b"}); err != nil {
		t.Fatal(err)
	}
	off()
	v.Tick()
	if ticks != 3 {
		t.Errorf("handler ran after off()")
	}
}

func TestScene_FitsLiveSimulation(t *testing.T) {
	v := newView(t, Network, Options{Simulate: true, Width: 400, Height: 300, Padding: 20}, nil)
	if _, err := v.Dispatch(Event{Type: EventDrag, Node: "b", X: 5000, Y: -5000}); err != nil {
		t.Fatal(err)
	}
	v.Tick()

	raw := v.SimulationScene()
	fitted := v.Scene()
	for i, n := range fitted.Nodes {
		if n.ID == "d" {
			if n.X != 100 || n.Y != 100 {
				t.Errorf("fixed node at (%v,%v), want (100,100)", n.X, n.Y)
			}
			continue
		}
		if n.X < 20 || n.X > 380 || n.Y < 20 || n.Y > 280 {
			t.Errorf("node %s at (%v,%v) outside the padded canvas", n.ID, n.X, n.Y)
		}
		if n.ID == "b" && (raw.Nodes[i].X != 5000 || raw.Nodes[i].Y != -5000) {
			t.Errorf("simulation scene moved the dragged node to (%v,%v)", raw.Nodes[i].X, raw.Nodes[i].Y)
		}
	}
	if p := v.Positions()["b"]; p.X != 5000 {
		t.Errorf("Scene changed the simulation positions: b at %v", p)
	}
}

func TestDispatch_ZoomClamped(t *testing.T) {
	v := newView(t, Network, Options{MinZoom: 0.5, MaxZoom: 4}, nil)

	tests := []struct{ k, want float64 }{{10, 4}, {0.01, 0.5}, {2, 2}}
	for _, tt := range tests {
		u, _ := v.Dispatch(Event{Type: EventZoom, K: tt.k, X: 5, Y: 6})
		if u.Transform == nil || u.Transform.K != tt.want {
			t.Errorf("zoom %v -> %+v, want k=%v", tt.k, u.Transform, tt.want)
		}
	}
}

func TestClickHandlers(t *testing.T) {
	v := newView(t, Network, Options{}, nil)
	var clicked []string
	v.On(EventClick, func(u Update) { clicked = append(clicked, u.Event.Node) })

	v.Dispatch(Event{Type: EventClick, Node: "c"})
	v.Dispatch(Event{Type: EventClick, Node: "nope"})
	if len(clicked) != 1 || clicked[0] != "c" {
		t.Errorf("clicked = %v, want [c]", clicked)
	}
}

func TestHighlight(t *testing.T) {
	v := newView(t, Network, Options{}, nil)

	v.HighlightEdges("a-b-0")
	s := v.Scene()
	for _, n := range s.Nodes {
		want := n.ID != "a" && n.ID != "b"
		if n.Dimmed != want {
			t.Errorf("node %s dimmed = %v, want %v", n.ID, n.Dimmed, want)
		}
	}
	for _, e := range s.Edges {
		if e.Dimmed != (e.ID != "a-b-0") {
			t.Errorf("edge %s dimmed = %v", e.ID, e.Dimmed)
		}
	}

	v.ClearHighlight()
	for _, n := range v.Scene().Nodes {
		if n.Dimmed {
			t.Errorf("node %s still dimmed after clear", n.ID)
		}
	}
}

func TestHighlight_Replaces(t *testing.T) {
	v := newView(t, Network, Options{}, nil)

	dimmed := func() map[string]bool {
		m := map[string]bool{}
		s := v.Scene()
		for _, n := range s.Nodes {
			m[n.ID] = n.Dimmed
		}
		for _, e := range s.Edges {
			m[e.ID] = e.Dimmed
		}
		return m
	}

	v.HighlightEdges("a-b-0")
	v.HighlightEdges("c-d-2")
	got := dimmed()
	for id, want := range map[string]bool{
		"a": true, "b": true, "c": false, "d": false,
		"a-b-0": true, "b-c-1": true, "c-d-2": false,
	} {
		if got[id] != want {
			t.Errorf("after second HighlightEdges: %s dimmed = %v, want %v", id, got[id], want)
		}
	}

	// A node selection keeps the edge selection and lights edges between selected nodes.
	v.HighlightNodes("a", "b")
	got = dimmed()
	for id, want := range map[string]bool{
		"a": false, "b": false, "c": false, "d": false,
		"a-b-0": false, "b-c-1": true, "c-d-2": false,
	} {
		if got[id] != want {
			t.Errorf("after HighlightNodes: %s dimmed = %v, want %v", id, got[id], want)
		}
	}

	v.HighlightNodes()
	if got = dimmed(); got["a"] != true || got["c"] != false {
		t.Errorf("clearing the node selection kept a lit: %v", got)
	}

	v.UpdateData([]graph.Node{{ID: "c"}, {ID: "d"}}, nil)
	// The highlighted edge is gone, so its endpoints no longer count.
	for _, n := range v.Scene().Nodes {
		if n.Dimmed {
			t.Errorf("node %s dimmed with nothing highlighted", n.ID)
		}
	}
}

func TestDestroy(t *testing.T) {
	sheet := NewStylesheet(DefaultCSS)
	v := newView(t, Network, Options{Stylesheet: sheet, Simulate: true}, nil)
	if !sheet.Active() {
		t.Fatal("stylesheet not acquired")
	}

	v.Destroy()
	v.Destroy()
	if sheet.Active() {
		t.Errorf("stylesheet still held after Destroy")
	}
	if err := v.Render(&bytes.Buffer{}); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Render err = %v, want ErrDestroyed", err)
	}
	if _, err := v.Dispatch(Event{Type: EventClick}); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Dispatch err = %v, want ErrDestroyed", err)
	}
	if v.Tick() || v.Simulating() {
		t.Errorf("simulation still running")
	}
	v.UpdateData(nil, nil)
	v.Resize(10, 10)
	v.HighlightNodes("a")
}

func TestStylesheet(t *testing.T) {
	sheet := NewStylesheet("body{}")
	if sheet.Active() || sheet.CSS() != "" {
		t.Fatal("new stylesheet should be inactive")
	}
	h1, h2 := sheet.Acquire(), sheet.Acquire()
	h1.Release()
	h1.Release()
	if !sheet.Active() || h2.CSS() != "body{}" {
		t.Errorf("double release dropped another holder")
	}
	h2.Release()
	if sheet.Active() {
		t.Errorf("stylesheet active with no holders")
	}
	var none *StyleHandle
	none.Release()
}

func TestRender_Backends(t *testing.T) {
	tests := []struct {
		backend string
		want    []string
	}{
		{"echarts", []string{"echarts.min.js", `"layout":"none"`, `"name":"a"`}},
		{"echarts-tree", []string{`"type":"tree"`, `"name":"Alpha"`}},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		v := newView(t, Network, Options{Backend: tt.backend, Title: "Sample"}, nil)
		if err := v.Render(&out); err != nil {
			t.Fatalf("%s: %v", tt.backend, err)
		}
		for _, w := range tt.want {
			if !strings.Contains(out.String(), w) {
				t.Errorf("%s output missing %q", tt.backend, w)
			}
		}
	}
}

func TestRender_AdjacencyJSON(t *testing.T) {
	var out bytes.Buffer
	v := newView(t, Network, Options{Backend: "json"}, nil)
	if err := v.Render(&out); err != nil {
		t.Fatal(err)
	}
	var got map[string][]string
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if strings.Join(got["b"], ",") != "a,c" {
		t.Errorf("b -> %v, want [a c]", got["b"])
	}
	if len(got["d"]) != 0 {
		t.Errorf("directed edge c->d listed under d: %v", got["d"])
	}
	if FileExtension("json") != ".json" || FileExtension("echarts") != ".html" {
		t.Errorf("unexpected file extensions")
	}
}

func TestForest(t *testing.T) {
	s := &Scene{
		Nodes: []SceneNode{{ID: "r", Label: "r"}, {ID: "x", Label: "x"}, {ID: "y", Label: "y"}, {ID: "p", Label: "p"}, {ID: "q", Label: "q"}},
		Edges: []SceneEdge{{Source: "r", Target: "x"}, {Source: "r", Target: "y"}, {Source: "x", Target: "y"}, {Source: "p", Target: "q"}, {Source: "q", Target: "p"}},
	}
	roots := Forest(s)
	if len(roots) != 2 {
		t.Fatalf("got %d roots, want 2", len(roots))
	}
	if roots[0].Name != "r" || len(roots[0].Children) != 2 {
		t.Errorf("first root = %+v", roots[0])
	}
	if roots[1].Name != "p" || len(roots[1].Children) != 1 {
		t.Errorf("cycle root = %+v", roots[1])
	}
}

func TestChart(t *testing.T) {
	v := newView(t, Network, Options{}, nil)
	if c, err := v.Chart(); err != nil || c == nil {
		t.Errorf("Chart() = %v, %v", c, err)
	}
	v.UpdateOptions(PartialOptions{Backend: ptr("json")})
	if _, err := v.Chart(); !errors.Is(err, ErrNotChart) {
		t.Errorf("json backend err = %v, want ErrNotChart", err)
	}
}

func ptr[T any](v T) *T { return &v }
