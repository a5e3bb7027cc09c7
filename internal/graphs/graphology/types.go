package graphology

type NodeAttributes struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Size       float64 `json:"size"`
	Label      string  `json:"label"`
	Color      string  `json:"color"`
	Type       string  `json:"nodeType,omitempty"`
	Community  int     `json:"community"`
	Centrality float64 `json:"centrality"`
	Hidden     bool    `json:"hidden,omitempty"`
	Fixed      bool    `json:"fixed,omitempty"`
}

type Node struct {
	Key        string         `json:"key"`
	Attributes NodeAttributes `json:"attributes"`
}

type EdgeAttributes struct {
	Size   float64 `json:"size"`
	Color  string  `json:"color"`
	Label  string  `json:"label,omitempty"`
	Weight float64 `json:"weight"`
	Hidden bool    `json:"hidden,omitempty"`
}

type Edge struct {
	Key        string         `json:"key"`
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	Undirected bool           `json:"undirected,omitempty"`
	Attributes EdgeAttributes `json:"attributes"`
}

// Options is the graph-level options block of the serialization format.
type Options struct {
	Type           string `json:"type"`
	Multi          bool   `json:"multi"`
	AllowSelfLoops bool   `json:"allowSelfLoops"`
}

type Attributes struct {
	Name       string  `json:"name,omitempty"`
	Modularity float64 `json:"modularity"`
}

// SerializedGraph is graphology's JSON import/export format.
type SerializedGraph struct {
	Attributes Attributes `json:"attributes"`
	Options    Options    `json:"options"`
	Nodes      []Node     `json:"nodes"`
	Edges      []Edge     `json:"edges"`
}
