package source

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/psidex/kgviz/internal/graph"
	"github.com/psidex/kgviz/internal/layout"
)

const yamlDoc = `
title: Deck
visualizations:
  - kind: network
    title: People
    nodes:
      - id: a
        label: Alice
        type: person
        data: {team: graph}
      - id: b
        fixed: {x: 10, y: 20}
    edges:
      - {source: a, target: b, weight: 2}
    options:
      layout: radial
      force: {charge: -50}
  - kind: timeline
    timeline:
      - {date: "2024-01-01", title: kickoff}
  - kind: code
    code:
      language: cypher
      code: "MATCH (n) RETURN n"
      highlight: [1]
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_YAML(t *testing.T) {
	doc, err := Load(context.Background(), writeFile(t, "deck.yaml", yamlDoc))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "Deck" || len(doc.Visualizations) != 3 {
		t.Fatalf("doc = %+v", doc)
	}

	net := doc.Visualizations[0]
	if !net.IsGraph() || net.Options.Layout != layout.Radial || net.Options.Force.Charge != -50 {
		t.Errorf("network = %+v", net)
	}
	if net.Nodes[0].Data["team"] != "graph" || net.Nodes[1].Fixed == nil || net.Nodes[1].Fixed.Y != 20 {
		t.Errorf("nodes = %+v", net.Nodes)
	}
	if net.Edges[0].Weight != 2 {
		t.Errorf("edge weight = %v", net.Edges[0].Weight)
	}
	if doc.Visualizations[1].IsGraph() || doc.Visualizations[1].Timeline[0].Title != "kickoff" {
		t.Errorf("timeline = %+v", doc.Visualizations[1])
	}
	if doc.Visualizations[2].Code.Highlight[0] != 1 {
		t.Errorf("code = %+v", doc.Visualizations[2].Code)
	}
	if o := net.ChartOptions(); o.Title != "People" {
		t.Errorf("chart title = %q", o.Title)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name, file, content, want string
	}{
		{"unknown extension", "deck.txt", "", "unknown document format"},
		{"bad json", "deck.json", "{", "decoding json"},
		{"unknown kind", "deck.json", `{"visualizations": [{"kind": "pie"}]}`, `unknown kind "pie"`},
		{"missing chart data", "deck.yml", "visualizations:\n  - kind: radar\n", "radar has no radar data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), writeFile(t, tt.file, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}

	_, err := FormatOf("x.csv")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("FormatOf err = %v", err)
	}
}

func TestEncodeDecode_JSONAndYAML(t *testing.T) {
	doc := &Document{Title: "t", Visualizations: []Visualization{{
		Kind:  "graph",
		Nodes: []graph.Node{{ID: "x"}, {ID: "y"}},
		Edges: []graph.Edge{{Source: "x", Target: "y", Directed: true}},
	}}}
	for _, f := range []Format{JSON, YAML} {
		var buf bytes.Buffer
		if err := Encode(&buf, doc, f); err != nil {
			t.Fatalf("%s: %v", f, err)
		}
		got, err := Decode(&buf, f)
		if err != nil {
			t.Fatalf("%s: %v", f, err)
		}
		if len(got.Visualizations[0].Edges) != 1 || !got.Visualizations[0].Edges[0].Directed {
			t.Errorf("%s: decoded %+v", f, got)
		}
	}
}

func TestDB_ReplaceAndLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kg.db")

	db, err := OpenDB(path)
	if err != nil {
		t.Fatal(err)
	}
	nodes := []graph.Node{
		{ID: "a", Label: "Alice", Type: "person", Size: 3, Data: map[string]string{"role": "lead"}},
		{ID: "b", Fixed: &graph.Point{X: 1, Y: 2}},
	}
	edges := []graph.Edge{{ID: "e1", Source: "a", Target: "b", Weight: 0.5, Directed: true, Label: "knows"}}
	if err := db.Replace(ctx, nodes, edges); err != nil {
		t.Fatal(err)
	}
	// A second replace must not duplicate rows.
	if err := db.Replace(ctx, nodes, edges); err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	doc, err := Load(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	v := doc.Visualizations[0]
	if doc.Title != "kg" || v.Kind != "network" {
		t.Errorf("doc = %+v", doc)
	}
	if len(v.Nodes) != 2 || v.Nodes[0].Data["role"] != "lead" || v.Nodes[0].Fixed != nil {
		t.Errorf("nodes = %+v", v.Nodes)
	}
	if v.Nodes[1].Fixed == nil || v.Nodes[1].Fixed.X != 1 {
		t.Errorf("fixed position lost: %+v", v.Nodes[1])
	}
	if len(v.Edges) != 1 || !v.Edges[0].Directed || v.Edges[0].Weight != 0.5 || v.Edges[0].Label != "knows" {
		t.Errorf("edges = %+v", v.Edges)
	}
}
