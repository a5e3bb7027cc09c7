package charts

import (
	"io"
	"log/slog"

	echarts "github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/psidex/kgviz/internal/graph"
	"github.com/psidex/kgviz/internal/graphs"
	"github.com/psidex/kgviz/internal/layout"
)

type Step struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Transition moves Value units from one step to another. A zero Value counts as 1.
type Transition struct {
	Source string  `json:"source" yaml:"source"`
	Target string  `json:"target" yaml:"target"`
	Value  float64 `json:"value,omitempty" yaml:"value,omitempty"`
}

type ProcessData struct {
	Steps       []Step       `json:"steps" yaml:"steps"`
	Transitions []Transition `json:"transitions" yaml:"transitions"`
}

// Flow is a merged, acyclic transition between two steps.
type Flow struct {
	Source string
	Target string
	Value  float64
}

// ProcessFlow draws steps as sankey columns. Transitions with unknown steps are
// dropped, as are self loops and transitions that would close a cycle.
type ProcessFlow struct {
	base
	g     *graph.Graph
	depth []int
	flows []Flow
}

func NewProcessFlow(data ProcessData, o Options, logger *slog.Logger) *ProcessFlow {
	p := &ProcessFlow{base: newBase("process", o, logger)}
	p.build(data)
	return p
}

func (p *ProcessFlow) build(data ProcessData) {
	nodes := make([]graph.Node, len(data.Steps))
	for i, s := range data.Steps {
		nodes[i] = graph.Node{ID: s.ID, Label: s.Label}
	}
	edges := make([]graph.Edge, len(data.Transitions))
	for i, t := range data.Transitions {
		edges[i] = graph.Edge{Source: t.Source, Target: t.Target, Weight: t.Value, Directed: true}
	}

	p.g = graph.Normalize(nodes, edges, p.logger)
	adj := graph.NewAdjacency(p.g)
	back := layout.BackEdges(adj, nil)
	p.depth = layout.Ranks(adj, nil)

	merged := map[[2]int]int{}
	p.flows = p.flows[:0]
	for e, edge := range p.g.Edges {
		key := [2]int{p.g.Src[e], p.g.Dst[e]}
		if key[0] == key[1] || back[key] {
			p.logger.Warn("dropping transition that closes a cycle",
				"source", edge.Source, "target", edge.Target)
			continue
		}
		if i, ok := merged[key]; ok {
			p.flows[i].Value += edge.EffectiveWeight()
			continue
		}
		merged[key] = len(p.flows)
		p.flows = append(p.flows, Flow{Source: edge.Source, Target: edge.Target, Value: edge.EffectiveWeight()})
	}
}

// UpdateData replaces the steps and transitions.
func (p *ProcessFlow) UpdateData(data ProcessData) {
	if !p.alive("UpdateData") {
		return
	}
	p.build(data)
}

// Flows returns the transitions that will be drawn.
func (p *ProcessFlow) Flows() []Flow { return p.flows }

// Depth returns the column of a step.
func (p *ProcessFlow) Depth(id string) (int, bool) {
	i, ok := p.g.Index(id)
	if !ok {
		return 0, false
	}
	return p.depth[i], true
}

func (p *ProcessFlow) Chart() *echarts.Sankey {
	nodes := make([]opts.SankeyNode, len(p.g.Nodes))
	labels := make(map[string]string, len(p.g.Nodes))
	for i, n := range p.g.Nodes {
		depth := p.depth[i]
		nodes[i] = opts.SankeyNode{
			Name:      n.ID,
			Depth:     &depth,
			ItemStyle: &opts.ItemStyle{Color: p.color(depth)},
		}
		labels[n.ID] = n.Label
	}
	links := make([]opts.SankeyLink, len(p.flows))
	for i, f := range p.flows {
		links[i] = opts.SankeyLink{Source: f.Source, Target: f.Target, Value: float32(f.Value)}
	}

	sankey := echarts.NewSankey()
	sankey.SetGlobalOptions(append(p.globals(),
		echarts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
	)...)
	sankey.AddSeries("process", nodes, links,
		echarts.WithLabelOpts(opts.Label{
			Show:      opts.Bool(true),
			Formatter: opts.FuncOpts(graphs.LookupFunc(labels, "p.name")),
		}),
		echarts.WithLineStyleOpts(opts.LineStyle{Color: "source", Curveness: 0.5}),
	)
	return sankey
}

func (p *ProcessFlow) Render(w io.Writer) error {
	if p.destroyed {
		return ErrDestroyed
	}
	return p.render(w, p.Chart())
}
