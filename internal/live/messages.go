package live

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/psidex/kgviz/internal/graphs"
)

// Message types sent by the server.
const (
	TypeNode        = "node"
	TypeEdge        = "edge"
	TypeTick        = "tick"
	TypeTooltip     = "tooltip"
	TypeHideTooltip = "hidetooltip"
	TypeClick       = "click"
	TypeDrag        = "drag"
	TypeZoom        = "zoom"
	TypeHighlight   = "highlight"
	TypeDone        = "done"
	TypeError       = "error"
)

// TypeClose is the client message that ends a session.
const TypeClose = "close"

// Message is the envelope of every frame the server writes.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func pointOf(v r2.Vec) point {
	return point{X: v.X, Y: v.Y}
}

type nodeAttributes struct {
	Label string  `json:"label"`
	Type  string  `json:"nodeType,omitempty"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Size  float64 `json:"size"`
	Color string  `json:"color"`
	Group int     `json:"community"`
	Fixed bool    `json:"fixed,omitempty"`
}

type node struct {
	Key        string         `json:"key"`
	Attributes nodeAttributes `json:"attributes"`
}

type edge struct {
	Key      string  `json:"key"`
	Source   string  `json:"from"`
	Target   string  `json:"to"`
	Width    float64 `json:"width"`
	Color    string  `json:"color"`
	Label    string  `json:"label,omitempty"`
	Directed bool    `json:"directed,omitempty"`
}

func nodeMessage(n graphs.SceneNode) Message {
	return Message{Type: TypeNode, Data: node{
		Key: n.ID,
		Attributes: nodeAttributes{
			Label: n.Label,
			Type:  n.Type,
			X:     n.X,
			Y:     n.Y,
			Size:  n.Radius,
			Color: n.Color,
			Group: n.Group,
			Fixed: n.Fixed,
		},
	}}
}

func edgeMessage(e graphs.SceneEdge) Message {
	return Message{Type: TypeEdge, Data: edge{
		Key:      e.ID,
		Source:   e.Source,
		Target:   e.Target,
		Width:    e.Width,
		Color:    e.Color,
		Label:    e.Label,
		Directed: e.Directed,
	}}
}

type tick struct {
	Positions map[string]point `json:"positions"`
}

type drag struct {
	Node  string   `json:"node"`
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
	End   bool     `json:"end,omitempty"`
	Edges []string `json:"edges"`
}

type doneData struct {
	Reason string `json:"reason"`
}

type errorData struct {
	Message string `json:"message"`
}

// updateMessage converts a View update to the frame describing it.
func updateMessage(u graphs.Update) (Message, bool) {
	switch u.Event.Type {
	case graphs.EventTick:
		t := tick{Positions: make(map[string]point, len(u.Positions))}
		for id, p := range u.Positions {
			t.Positions[id] = pointOf(p)
		}
		return Message{Type: TypeTick, Data: t}, true
	case graphs.EventHover:
		if u.Tooltip == nil {
			return Message{}, false
		}
		return Message{Type: TypeTooltip, Data: u.Tooltip}, true
	case graphs.EventUnhover:
		return Message{Type: TypeHideTooltip, Data: map[string]string{"node": u.Event.Node}}, true
	case graphs.EventClick:
		return Message{Type: TypeClick, Data: map[string]string{"node": u.Event.Node}}, true
	case graphs.EventDrag, graphs.EventDragEnd:
		return Message{Type: TypeDrag, Data: drag{
			Node:  u.Event.Node,
			X:     u.Event.X,
			Y:     u.Event.Y,
			End:   u.Event.Type == graphs.EventDragEnd,
			Edges: u.Edges,
		}}, true
	case graphs.EventZoom:
		return Message{Type: TypeZoom, Data: u.Transform}, true
	case graphs.EventHighlight, graphs.EventClear:
		return Message{Type: TypeHighlight, Data: u.Highlight}, true
	}
	return Message{}, false
}
