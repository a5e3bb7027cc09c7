// Package vis renders graph scenes as standalone vis-network pages. Physics is off:
// nodes are drawn where the layout engine put them.
package vis

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/psidex/kgviz/internal/graphs"
)

const dimOpacity = 0.15

// vis-network does not apply node opacity to labels.
const dimLabelColor = "rgba(52, 52, 52, 0.15)"

// Vis is a graphs.Backend producing vis-network HTML.
type Vis struct{}

var _ graphs.Backend = Vis{}

func init() {
	graphs.RegisterBackend(Vis{})
}

func (Vis) Name() string { return "vis" }

func (Vis) Render(w io.Writer, s *graphs.Scene) error {
	networkJson, err := json.Marshal(toNetwork(s))
	if err != nil {
		return err
	}
	optionsJson, err := json.Marshal(options())
	if err != nil {
		return err
	}

	title := s.Title
	if title == "" {
		title = "kgviz " + string(s.Kind)
	}

	_, err = fmt.Fprintf(w, page,
		html.EscapeString(title),
		s.CSS,
		int(s.Width), int(s.Height),
		networkJson,
		optionsJson,
	)
	return err
}

func toNetwork(s *graphs.Scene) network {
	n := network{
		Nodes: make([]node, len(s.Nodes)),
		Edges: make([]edge, len(s.Edges)),
	}
	for i, sn := range s.Nodes {
		opacity := 1.0
		var f *font
		if sn.Dimmed {
			opacity = dimOpacity
			f = &font{Color: dimLabelColor}
		}
		n.Nodes[i] = node{
			ID:      sn.ID,
			Label:   sn.Label,
			Title:   title(sn),
			Group:   sn.Group,
			X:       sn.X,
			Y:       sn.Y,
			Size:    sn.Radius,
			Color:   color{Background: sn.Color, Border: sn.Color},
			Fixed:   sn.Fixed,
			Opacity: opacity,
			Font:    f,
		}
	}
	for i, se := range s.Edges {
		opacity := 1.0
		if se.Dimmed {
			opacity = dimOpacity
		}
		e := edge{
			ID:    se.ID,
			From:  se.Source,
			To:    se.Target,
			Label: se.Label,
			Title: se.Type,
			Width: se.Width,
			Color: edgeColor{Color: se.Color, Opacity: opacity},
		}
		if se.Directed {
			e.Arrows = "to"
		}
		n.Edges[i] = e
	}
	return n
}

// title is the plain-text hover text vis shows for a node.
func title(n graphs.SceneNode) string {
	lines := []string{n.Label}
	if n.Type != "" {
		lines = append(lines, n.Type)
	}
	for _, f := range n.Fields {
		lines = append(lines, f.Key+": "+f.Value)
	}
	return strings.Join(lines, "\n")
}

func options() map[string]any {
	return map[string]any{
		"physics": map[string]any{"enabled": false},
		"interaction": map[string]any{
			"hover":       true,
			"dragNodes":   true,
			"zoomView":    true,
			"dragView":    true,
			"multiselect": true,
		},
		"nodes": map[string]any{"shape": "dot"},
		"edges": map[string]any{"smooth": false},
	}
}
