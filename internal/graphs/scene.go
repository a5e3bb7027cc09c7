package graphs

import (
	"sort"

	"github.com/psidex/kgviz/internal/graph"
)

// Field is one tooltip line.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SceneNode is a node with everything a backend needs to draw it.
type SceneNode struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	Type       string  `json:"type,omitempty"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Radius     float64 `json:"radius"`
	Color      string  `json:"color"`
	Group      int     `json:"group"`
	Centrality float64 `json:"centrality"`
	Degree     int     `json:"degree"`
	Fixed      bool    `json:"fixed,omitempty"`
	Dimmed     bool    `json:"dimmed,omitempty"`
	Fields     []Field `json:"fields,omitempty"`
}

type SceneEdge struct {
	ID       string  `json:"id"`
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Label    string  `json:"label,omitempty"`
	Type     string  `json:"type,omitempty"`
	Weight   float64 `json:"weight"`
	Width    float64 `json:"width"`
	Color    string  `json:"color"`
	Directed bool    `json:"directed,omitempty"`
	Dimmed   bool    `json:"dimmed,omitempty"`
}

// Scene is a fully computed, backend independent snapshot of a View.
type Scene struct {
	Kind   Kind    `json:"kind"`
	Title  string  `json:"title,omitempty"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	// Categories names each colour category, indexed by SceneNode category.
	Categories []Category   `json:"categories"`
	Nodes      []SceneNode  `json:"nodes"`
	Edges      []SceneEdge  `json:"edges"`
	CSS        string       `json:"-"`
	Transform  Transform    `json:"transform"`
	Modularity float64      `json:"modularity"`
	categoryOf map[string]int
}

// Category is a legend entry.
type Category struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// CategoryOf returns the legend index of a node.
func (s *Scene) CategoryOf(n SceneNode) int {
	return s.categoryOf[n.ID]
}

// tooltipFields returns the node's data fields in key order.
func tooltipFields(n graph.Node) []Field {
	fields := make([]Field, 0, len(n.Data))
	for k, v := range n.Data {
		fields = append(fields, Field{Key: k, Value: v})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Key < fields[j].Key })
	return fields
}
