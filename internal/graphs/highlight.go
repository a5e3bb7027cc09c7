package graphs

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/psidex/kgviz/internal/graph"
	"github.com/psidex/kgviz/internal/layout"
)

// HighlightNodes replaces the highlighted nodes and dims everything not lit. The edge
// selection is kept. Unknown IDs are logged and skipped.
func (v *View) HighlightNodes(ids ...string) {
	if v.destroyed {
		v.logger.Warn("HighlightNodes called on destroyed view")
		return
	}
	v.selectNodes(ids)
	v.deriveHighlight()
	v.emit(Update{Event: Event{Type: EventHighlight, Nodes: ids}, Highlight: v.highlightState()})
}

// HighlightEdges replaces the highlighted edges, lighting their endpoints too. The
// node selection is kept.
func (v *View) HighlightEdges(ids ...string) {
	if v.destroyed {
		v.logger.Warn("HighlightEdges called on destroyed view")
		return
	}
	v.selectEdges(ids)
	v.deriveHighlight()
	v.emit(Update{Event: Event{Type: EventHighlight, Edges: ids}, Highlight: v.highlightState()})
}

// ClearHighlight removes every emphasis.
func (v *View) ClearHighlight() {
	if v.destroyed {
		v.logger.Warn("ClearHighlight called on destroyed view")
		return
	}
	v.setHighlight(nil, nil)
	v.emit(Update{Event: Event{Type: EventClear}, Highlight: v.highlightState()})
}

// setHighlight replaces both selections.
func (v *View) setHighlight(nodes, edges []string) {
	v.selectNodes(nodes)
	v.selectEdges(edges)
	v.deriveHighlight()
}

func (v *View) selectNodes(ids []string) {
	v.selNodes.Clear()
	for _, id := range ids {
		if _, ok := v.g.Index(id); !ok {
			v.logger.Warn("highlight of unknown node", "node", id)
			continue
		}
		v.selNodes.Add(id)
	}
}

func (v *View) selectEdges(ids []string) {
	v.hiEdges.Clear()
	for _, id := range ids {
		if _, ok := v.g.EdgeIndex(id); !ok {
			v.logger.Warn("highlight of unknown edge", "edge", id)
			continue
		}
		v.hiEdges.Add(id)
	}
}

// deriveHighlight rebuilds hiNodes from the node selection and the edge endpoints.
func (v *View) deriveHighlight() {
	v.hiNodes.Clear()
	for _, id := range v.selNodes.AsSlice() {
		v.hiNodes.Add(id)
	}
	for _, id := range v.hiEdges.AsSlice() {
		e, ok := v.g.EdgeIndex(id)
		if !ok {
			continue
		}
		v.hiNodes.Add(v.g.Edges[e].Source)
		v.hiNodes.Add(v.g.Edges[e].Target)
	}
}

// edgeLit reports whether an edge is drawn at full strength: it was highlighted
// itself or both its endpoints were selected as nodes.
func (v *View) edgeLit(e graph.Edge) bool {
	return v.hiEdges.Contains(e.ID) || (v.selNodes.Contains(e.Source) && v.selNodes.Contains(e.Target))
}

// pruneHighlight drops highlighted IDs that disappeared in a data update.
func (v *View) pruneHighlight() {
	if !v.highlighting() {
		return
	}
	for _, id := range v.selNodes.AsSlice() {
		if _, ok := v.g.Index(id); !ok {
			v.selNodes.Remove(id)
		}
	}
	for _, id := range v.hiEdges.AsSlice() {
		if _, ok := v.g.EdgeIndex(id); !ok {
			v.hiEdges.Remove(id)
		}
	}
	v.deriveHighlight()
}

func (v *View) highlighting() bool {
	return v.hiNodes.Size() > 0 || v.hiEdges.Size() > 0
}

func (v *View) highlightState() *HighlightState {
	return &HighlightState{Nodes: v.hiNodes.AsSlice(), Edges: v.hiEdges.AsSlice()}
}

// Scene snapshots the View for a backend. While a simulation is live the positions
// are a fitted copy of the simulation's, so a rendered frame stays on the canvas.
func (v *View) Scene() *Scene {
	pos := v.attrs.Pos
	if v.sim != nil {
		pos = append([]r2.Vec(nil), pos...)
		layout.FitGraph(v.g, pos, v.opts.layoutConfig(nil))
	}
	return v.scene(pos)
}

// SimulationScene is Scene with the raw simulation positions, the coordinate space
// of tick updates and drag events.
func (v *View) SimulationScene() *Scene {
	return v.scene(v.attrs.Pos)
}

func (v *View) scene(pos []r2.Vec) *Scene {
	s := &Scene{
		Kind:       v.kind,
		Title:      v.opts.Title,
		Width:      v.opts.Width,
		Height:     v.opts.Height,
		Nodes:      make([]SceneNode, len(v.g.Nodes)),
		Edges:      make([]SceneEdge, len(v.g.Edges)),
		CSS:        v.style.CSS(),
		Transform:  v.transform,
		Modularity: v.modularity,
		categoryOf: make(map[string]int, len(v.g.Nodes)),
	}
	dim := v.highlighting()

	categories := map[string]int{}
	for i, n := range v.g.Nodes {
		name := n.Type
		if v.opts.ColorBy == ColorByGroup {
			name = fmt.Sprintf("group %d", v.attrs.Group[i])
		} else if name == "" {
			name = "node"
		}
		c, ok := categories[name]
		if !ok {
			c = len(s.Categories)
			categories[name] = c
			s.Categories = append(s.Categories, Category{Name: name, Color: v.attrs.Color[i]})
		}
		s.categoryOf[n.ID] = c

		s.Nodes[i] = SceneNode{
			ID:         n.ID,
			Label:      n.Label,
			Type:       n.Type,
			X:          pos[i].X,
			Y:          pos[i].Y,
			Radius:     v.attrs.Radius[i],
			Color:      v.attrs.Color[i],
			Group:      v.attrs.Group[i],
			Centrality: v.attrs.Centrality[i],
			Degree:     v.attrs.Degree[i],
			Fixed:      n.Fixed != nil,
			Dimmed:     dim && !v.hiNodes.Contains(n.ID),
			Fields:     tooltipFields(n),
		}
	}

	for i, e := range v.g.Edges {
		lit := v.edgeLit(e)
		s.Edges[i] = SceneEdge{
			ID:       e.ID,
			Source:   e.Source,
			Target:   e.Target,
			Label:    e.Label,
			Type:     e.Type,
			Weight:   e.EffectiveWeight(),
			Width:    v.attrs.Width[i],
			Color:    v.attrs.EdgeColor[i],
			Directed: e.Directed || v.opts.Directed,
			Dimmed:   dim && !lit,
		}
	}
	return s
}
