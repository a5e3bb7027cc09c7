package graphs

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// EventType names an interaction.
type EventType string

const (
	EventHover     EventType = "hover"
	EventUnhover   EventType = "unhover"
	EventClick     EventType = "click"
	EventDrag      EventType = "drag"
	EventDragEnd   EventType = "dragend"
	EventZoom      EventType = "zoom"
	EventHighlight EventType = "highlight"
	EventClear     EventType = "clear"
	EventTick      EventType = "tick"
)

// Event is an interaction coming from the display surface.
type Event struct {
	Type EventType `json:"type"`
	Node string    `json:"node,omitempty"`
	Edge string    `json:"edge,omitempty"`
	// X and Y are the pointer position for drags, the pan offset for zooms.
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`
	// K is the requested zoom factor.
	K float64 `json:"k,omitempty"`
	// Nodes and Edges are the targets of a highlight.
	Nodes []string `json:"nodes,omitempty"`
	Edges []string `json:"edges,omitempty"`
}

// Tooltip is what a hover shows.
type Tooltip struct {
	Node   string  `json:"node"`
	Title  string  `json:"title"`
	Type   string  `json:"type,omitempty"`
	Fields []Field `json:"fields,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Transform is the pan/zoom state of the canvas.
type Transform struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	K float64 `json:"k"`
}

// Update describes the effect of an event.
type Update struct {
	Event Event `json:"event"`
	// Tooltip is set by hover, HideTooltip by unhover.
	Tooltip     *Tooltip `json:"tooltip,omitempty"`
	HideTooltip bool     `json:"hideTooltip,omitempty"`
	// Edges lists the edges to redraw after a drag.
	Edges     []string          `json:"edges,omitempty"`
	Transform *Transform        `json:"transform,omitempty"`
	Positions map[string]r2.Vec `json:"positions,omitempty"`
	Highlight *HighlightState   `json:"highlight,omitempty"`
}

// HighlightState is the set of emphasised elements, empty when nothing is
// highlighted.
type HighlightState struct {
	Nodes []string `json:"nodes"`
	Edges []string `json:"edges"`
}

// Handler receives updates for the event types it is registered for.
type Handler func(Update)

// On registers h for events of type t. The returned func removes it.
func (v *View) On(t EventType, h Handler) (off func()) {
	if v.destroyed {
		v.logger.Warn("On called on destroyed view", "event", t)
		return func() {}
	}
	id := v.nextHandler
	v.nextHandler++
	if v.handlers[t] == nil {
		v.handlers[t] = map[int]Handler{}
	}
	v.handlers[t][id] = h
	return func() { delete(v.handlers[t], id) }
}

func (v *View) emit(u Update) {
	for _, h := range v.handlers[u.Event.Type] {
		h(u)
	}
}

// Dispatch applies an interaction event and notifies the handlers registered for
// its type. Events naming unknown nodes are logged and ignored.
func (v *View) Dispatch(e Event) (Update, error) {
	if v.destroyed {
		return Update{}, ErrDestroyed
	}
	u := Update{Event: e}

	switch e.Type {
	case EventHover:
		i, ok := v.nodeIndex(e)
		if !ok {
			return u, nil
		}
		n := v.g.Nodes[i]
		u.Tooltip = &Tooltip{
			Node:   n.ID,
			Title:  n.Label,
			Type:   n.Type,
			Fields: tooltipFields(n),
			X:      v.attrs.Pos[i].X,
			Y:      v.attrs.Pos[i].Y,
		}

	case EventUnhover:
		u.HideTooltip = true

	case EventClick:
		if e.Node != "" {
			if _, ok := v.nodeIndex(e); !ok {
				return u, nil
			}
		}

	case EventDrag:
		i, ok := v.nodeIndex(e)
		if !ok {
			return u, nil
		}
		p := r2.Vec{X: e.X, Y: e.Y}
		v.attrs.Pos[i] = p
		if v.sim != nil {
			v.sim.Pin(i, p)
			v.sim.Reheat()
		}
		u.Edges = v.incidentEdgeIDs(i)

	case EventDragEnd:
		i, ok := v.nodeIndex(e)
		if !ok {
			return u, nil
		}
		if v.sim != nil {
			v.sim.Unpin(i)
			v.sim.Cool()
		}
		u.Edges = v.incidentEdgeIDs(i)

	case EventZoom:
		k := e.K
		if k == 0 || math.IsNaN(k) {
			k = v.transform.K
		}
		v.transform = Transform{
			X: e.X,
			Y: e.Y,
			K: math.Min(math.Max(k, v.opts.MinZoom), v.opts.MaxZoom),
		}
		t := v.transform
		u.Transform = &t

	case EventHighlight:
		v.setHighlight(e.Nodes, e.Edges)
		u.Highlight = v.highlightState()

	case EventClear:
		v.setHighlight(nil, nil)
		u.Highlight = v.highlightState()

	default:
		v.logger.Warn("ignoring unknown event", "type", e.Type)
		return u, nil
	}

	v.emit(u)
	return u, nil
}

func (v *View) nodeIndex(e Event) (int, bool) {
	i, ok := v.g.Index(e.Node)
	if !ok {
		v.logger.Warn("event for unknown node", "type", e.Type, "node", e.Node)
	}
	return i, ok
}

func (v *View) incidentEdgeIDs(i int) []string {
	incident := v.g.IncidentEdges(i)
	ids := make([]string, len(incident))
	for k, e := range incident {
		ids[k] = v.g.Edges[e].ID
	}
	return ids
}
