// Package graphology serializes graph scenes in graphology's JSON format, ready for
// graph.import() and a sigma.js renderer.
package graphology

import (
	"encoding/json"
	"io"

	"github.com/psidex/kgviz/internal/graphs"
)

// Graphology is a graphs.Backend producing serialized graphology JSON. Dimmed
// elements are marked hidden so sigma skips them.
type Graphology struct{}

var _ graphs.Backend = Graphology{}

func init() {
	graphs.RegisterBackend(Graphology{})
}

func (Graphology) Name() string      { return "graphology" }
func (Graphology) Extension() string { return ".json" }

// Serialize converts a scene.
func Serialize(s *graphs.Scene) SerializedGraph {
	sg := SerializedGraph{
		Attributes: Attributes{Name: s.Title, Modularity: s.Modularity},
		Options:    Options{Type: "mixed", Multi: true, AllowSelfLoops: true},
		Nodes:      make([]Node, len(s.Nodes)),
		Edges:      make([]Edge, len(s.Edges)),
	}
	for i, n := range s.Nodes {
		// sigma's y axis points up.
		y := s.Height - n.Y
		sg.Nodes[i] = Node{
			Key: n.ID,
			Attributes: NodeAttributes{
				X:          n.X,
				Y:          y,
				Size:       n.Radius,
				Label:      n.Label,
				Color:      n.Color,
				Type:       n.Type,
				Community:  n.Group,
				Centrality: n.Centrality,
				Hidden:     n.Dimmed,
				Fixed:      n.Fixed,
			},
		}
	}
	for i, e := range s.Edges {
		sg.Edges[i] = Edge{
			Key:        e.ID,
			Source:     e.Source,
			Target:     e.Target,
			Undirected: !e.Directed,
			Attributes: EdgeAttributes{
				Size:   e.Width,
				Color:  e.Color,
				Label:  e.Label,
				Weight: e.Weight,
				Hidden: e.Dimmed,
			},
		}
	}
	return sg
}

func (Graphology) Render(w io.Writer, s *graphs.Scene) error {
	marshalled, err := json.Marshal(Serialize(s))
	if err != nil {
		return err
	}
	_, err = w.Write(marshalled)
	return err
}
