// Package graphs is the engine shared by the network, graph, tree and causal
// components: a View normalizes caller data, runs the analytics and layout passes,
// tracks interaction state and renders through a pluggable Backend.
package graphs

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/go-echarts/go-echarts/v2/components"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/psidex/kgviz/internal/centrality"
	"github.com/psidex/kgviz/internal/community"
	"github.com/psidex/kgviz/internal/graph"
	"github.com/psidex/kgviz/internal/layout"
	"github.com/psidex/kgviz/internal/lib"
)

// View is one graph visualization. It is owned by a single goroutine.
type View struct {
	kind    Kind
	opts    Options
	logger  *slog.Logger
	backend Backend
	style   *StyleHandle

	nodes []graph.Node
	edges []graph.Edge

	g          *graph.Graph
	adj        *graph.Adjacency
	attrs      *graph.Attrs
	modularity float64
	sim        *layout.Simulation
	simOff     func()

	handlers    map[EventType]map[int]Handler
	nextHandler int
	transform   Transform
	// selNodes and hiEdges are what the caller asked for, hiNodes adds the
	// endpoints of hiEdges and is rebuilt on every change.
	selNodes lib.Set
	hiNodes  lib.Set
	hiEdges  lib.Set

	destroyed bool
}

// New builds a View and runs the full pipeline once. Malformed data is logged and
// dropped rather than returned as an error.
func New(kind Kind, nodes []graph.Node, edges []graph.Edge, o Options, logger *slog.Logger) (*View, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}
	v := &View{
		kind:      kind,
		logger:    lib.LoggerOr(logger).With("view", string(kind)),
		handlers:  map[EventType]map[int]Handler{},
		transform: Transform{K: 1},
		selNodes:  lib.NewSet(),
		hiNodes:   lib.NewSet(),
		hiEdges:   lib.NewSet(),
	}

	v.setOptions(o.withDefaults(kind), Defaults(kind))
	if o.Stylesheet != nil {
		v.style = o.Stylesheet.Acquire()
	}
	v.setData(nodes, edges)
	v.rebuild()
	return v, nil
}

func (v *View) setOptions(o Options, previous Options) {
	o, warnings := o.validate(v.kind, previous)
	for _, w := range warnings {
		v.logger.Warn("invalid option", "warning", w)
	}
	v.opts = o
	v.backend, _ = lookupBackend(o.Backend)
}

func (v *View) setData(nodes []graph.Node, edges []graph.Edge) {
	v.nodes = append([]graph.Node(nil), nodes...)
	v.edges = append([]graph.Edge(nil), edges...)
}

// rebuild runs normalize, analytics, styling and layout from scratch.
func (v *View) rebuild() {
	v.stopSimulation()

	v.g = graph.Normalize(v.nodes, v.edges, v.logger)
	v.adj = graph.NewAdjacency(v.g)
	v.attrs = graph.NewAttrs(v.g)

	v.attrs.Degree = centrality.Degrees(v.g, v.opts.DegreeMode)
	v.attrs.Centrality = centrality.Compute(v.g, v.adj, v.opts.Centrality, centrality.Options{
		DegreeMode: v.opts.DegreeMode,
		Samples:    v.opts.Samples,
		Seed:       v.opts.Seed,
	})
	res := community.Detect(v.adj, community.Options{}, v.logger)
	copy(v.attrs.Group, res.Groups)
	v.modularity = res.Modularity

	v.applyStyle()
	v.layout()
	v.pruneHighlight()

	v.logger.Debug("view rebuilt",
		"nodes", len(v.g.Nodes), "edges", len(v.g.Edges),
		"communities", res.Count(), "layout", v.opts.Layout)
}

// layout positions the nodes, or starts a live simulation when requested.
func (v *View) layout() {
	cfg := v.opts.layoutConfig(v.attrs.Centrality)

	if v.opts.Simulate && v.opts.Layout == layout.Force {
		v.sim = layout.NewSimulation(v.g, v.attrs, cfg)
		v.sim.CopyTo(v.attrs)
		v.simOff = v.sim.OnTick(func(s *layout.Simulation) {
			s.CopyTo(v.attrs)
			v.emit(Update{Event: Event{Type: EventTick}, Positions: v.Positions()})
		})
		return
	}

	l, err := layout.New(v.opts.Layout)
	if err != nil {
		// validate already replaced unknown modes.
		v.logger.Error("layout unavailable", "err", err)
		return
	}
	clear(v.attrs.Pos)
	l.Apply(v.g, v.attrs, cfg)
}

func (v *View) stopSimulation() {
	if v.sim == nil {
		return
	}
	v.simOff()
	v.sim.Stop()
	v.sim, v.simOff = nil, nil
}

// applyStyle derives radius and colour for every node and width and colour for every
// edge.
func (v *View) applyStyle() {
	o := v.opts
	for i, n := range v.g.Nodes {
		r := o.MinRadius + (o.MaxRadius-o.MinRadius)*v.attrs.Centrality[i]
		if n.Size > 0 {
			r = math.Min(math.Max(n.Size, o.MinRadius), o.MaxRadius)
		}
		v.attrs.Radius[i] = r
	}

	types := lib.NewInterner()
	for i, n := range v.g.Nodes {
		key := v.attrs.Group[i]
		if o.ColorBy == ColorByType {
			key = types.Intern(n.Type)
		}
		v.attrs.Color[i] = o.Palette[key%len(o.Palette)]
	}

	maxWeight := 0.0
	for _, e := range v.g.Edges {
		maxWeight = math.Max(maxWeight, e.EffectiveWeight())
	}
	edgeTypes := lib.NewInterner()
	for i, e := range v.g.Edges {
		// Width grows linearly with weight, the heaviest edge gets MaxEdgeWidth.
		w := 1.0
		if maxWeight > 1 {
			w = 1 + (o.MaxEdgeWidth-1)*(e.EffectiveWeight()-1)/(maxWeight-1)
		}
		v.attrs.Width[i] = math.Max(w, 1)
		if e.Type == "" {
			v.attrs.EdgeColor[i] = "#999999"
		} else {
			v.attrs.EdgeColor[i] = o.Palette[edgeTypes.Intern(e.Type)%len(o.Palette)]
		}
	}
}

// Render writes the View through its backend.
func (v *View) Render(w io.Writer) error {
	if v.destroyed {
		return ErrDestroyed
	}
	if err := v.backend.Render(w, v.Scene()); err != nil {
		return fmt.Errorf("rendering %s with %s: %w", v.kind, v.backend.Name(), err)
	}
	return nil
}

// Chart returns the View as a go-echarts chart so several visualizations can share
// one page.
func (v *View) Chart() (components.Charter, error) {
	if v.destroyed {
		return nil, ErrDestroyed
	}
	cb, ok := v.backend.(ChartBackend)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotChart, v.backend.Name())
	}
	return cb.Charter(v.Scene()), nil
}

// UpdateData replaces the nodes and edges and recomputes everything.
func (v *View) UpdateData(nodes []graph.Node, edges []graph.Edge) {
	if v.destroyed {
		v.logger.Warn("UpdateData called on destroyed view")
		return
	}
	v.setData(nodes, edges)
	v.rebuild()
}

// UpdateOptions merges p into the current options and recomputes everything. Names
// that do not parse are logged and the previous value is kept.
func (v *View) UpdateOptions(p PartialOptions) {
	if v.destroyed {
		v.logger.Warn("UpdateOptions called on destroyed view")
		return
	}
	v.setOptions(p.Apply(v.opts).withDefaults(v.kind), v.opts)
	v.rebuild()
}

// Resize changes the canvas and lays the nodes out again. A zero dimension keeps
// its current value.
func (v *View) Resize(width, height float64) {
	if v.destroyed {
		v.logger.Warn("Resize called on destroyed view")
		return
	}
	if width > 0 {
		v.opts.Width = width
	}
	if height > 0 {
		v.opts.Height = height
	}
	v.stopSimulation()
	v.layout()
}

// Tick advances a live simulation by one step, notifying EventTick handlers. It
// reports whether the simulation is still running.
func (v *View) Tick() bool {
	if v.destroyed || v.sim == nil {
		return false
	}
	return v.sim.Tick()
}

// Simulating reports whether the View owns a live simulation.
func (v *View) Simulating() bool {
	return !v.destroyed && v.sim != nil
}

// Destroy stops the simulation, drops every handler and releases the stylesheet.
// Any later call is a no-op or returns ErrDestroyed.
func (v *View) Destroy() {
	if v.destroyed {
		return
	}
	v.stopSimulation()
	clear(v.handlers)
	v.style.Release()
	v.destroyed = true
}

func (v *View) Kind() Kind { return v.kind }

func (v *View) Options() Options { return v.opts }

// Graph returns the normalized graph. Callers must not modify it.
func (v *View) Graph() *graph.Graph { return v.g }

// Attrs returns the computed attributes. Callers must not modify them.
func (v *View) Attrs() *graph.Attrs { return v.attrs }

// Positions returns the current position of every node by ID.
func (v *View) Positions() map[string]r2.Vec {
	return v.attrs.Positions(v.g)
}
