package graphs

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/event"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const dimOpacity = 0.15

// EChartsBackend renders a Scene as a go-echarts graph series. Coordinates come from
// the layout engine, echarts only draws them.
type EChartsBackend struct{}

var _ Backend = EChartsBackend{}

func (EChartsBackend) Name() string { return "echarts" }

func (b EChartsBackend) Render(w io.Writer, s *Scene) error {
	return renderPage(w, s, b.Chart(s))
}

func (b EChartsBackend) Charter(s *Scene) components.Charter { return b.Chart(s) }

// renderPage puts a single chart on a go-echarts page.
func renderPage(w io.Writer, s *Scene, chart components.Charter) error {
	page := components.NewPage()
	page.SetPageTitle(pageTitle(s))
	page.AddCharts(chart)
	return page.Render(w)
}

func pageTitle(s *Scene) string {
	if s.Title != "" {
		return s.Title
	}
	return "kgviz " + string(s.Kind)
}

func px(v float64) string {
	return fmt.Sprintf("%dpx", int(v))
}

// Chart builds the go-echarts graph so callers can combine several Views on one page.
func (EChartsBackend) Chart(s *Scene) *charts.Graph {
	nodes := make([]opts.GraphNode, len(s.Nodes))
	labels := make(map[string]string, len(s.Nodes))
	tips := make(map[string]string, len(s.Nodes)+len(s.Edges))
	for i, n := range s.Nodes {
		style := &opts.ItemStyle{Color: n.Color}
		if n.Dimmed {
			style.Opacity = opts.Float(dimOpacity)
		}
		nodes[i] = opts.GraphNode{
			Name:       n.ID,
			X:          nonZero(n.X),
			Y:          nonZero(n.Y),
			Value:      float32(n.Centrality),
			Fixed:      opts.Bool(n.Fixed),
			Category:   s.CategoryOf(n),
			SymbolSize: n.Radius * 2,
			ItemStyle:  style,
		}
		labels[n.ID] = n.Label
		tips[n.ID] = tooltipHTML(n)
	}

	links := make([]opts.GraphLink, len(s.Edges))
	for i, e := range s.Edges {
		style := &opts.LineStyle{Color: e.Color, Width: float32(e.Width)}
		if e.Dimmed {
			style.Opacity = opts.Float(dimOpacity)
		}
		links[i] = opts.GraphLink{
			Source:    e.Source,
			Target:    e.Target,
			Value:     float32(e.Weight),
			LineStyle: style,
		}
		if e.Label != "" {
			links[i].Label = &opts.EdgeLabel{Show: opts.Bool(true), Formatter: e.Label}
		}
		tips[e.Source+">"+e.Target] = html.EscapeString(edgeTitle(e))
	}

	categories := make([]*opts.GraphCategory, len(s.Categories))
	for i, c := range s.Categories {
		categories[i] = &opts.GraphCategory{Name: c.Name, ItemStyle: &opts.ItemStyle{Color: c.Color}}
	}

	chartOpts := opts.GraphChart{
		// "none" keeps the precomputed coordinates.
		Layout:             "none",
		Roam:               opts.Bool(true),
		Draggable:          opts.Bool(true),
		FocusNodeAdjacency: opts.Bool(true),
		Categories:         categories,
	}
	if anyDirected(s) {
		chartOpts.EdgeSymbol = []string{"none", "arrow"}
		chartOpts.EdgeSymbolSize = []int{0, 8}
	}

	graph := charts.NewGraph()
	graph.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: pageTitle(s),
			Width:     px(s.Width),
			Height:    px(s.Height),
		}),
		charts.WithTitleOpts(opts.Title{Title: s.Title}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(len(categories) > 1),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:      opts.Bool(true),
			Formatter: opts.FuncOpts(LookupFunc(tips, "p.dataType === 'edge' ? p.data.source + '>' + p.data.target : p.name")),
		}),
		charts.WithEventListeners(
			event.Listener{
				EventName: "click",
				Handler:   opts.FuncOpts(dispatchFunc("click")),
			},
			event.Listener{
				EventName: "mouseover",
				Handler:   opts.FuncOpts(dispatchFunc("hover")),
			},
			event.Listener{
				EventName: "mouseout",
				Handler:   opts.FuncOpts(dispatchFunc("unhover")),
			},
		),
	)
	if s.CSS != "" {
		graph.AddCustomizedHeaders("<style>" + s.CSS + "</style>")
	}

	graph.AddSeries(
		"graph",
		nodes,
		links,
		charts.WithGraphChartOpts(chartOpts),
		charts.WithLabelOpts(opts.Label{
			Show:      opts.Bool(true),
			Color:     "black",
			Position:  "right",
			Formatter: opts.FuncOpts(LookupFunc(labels, "p.name")),
		}),
		charts.WithLineStyleOpts(opts.LineStyle{Curveness: 0.1}),
		charts.WithEmphasisOpts(opts.Emphasis{
			Label: &opts.Label{Show: opts.Bool(true), FontWeight: "bold"},
		}),
	)
	return graph
}

// EChartsTreeBackend renders a Scene with the echarts tree series. Nodes keep the
// first parent that reaches them, roots are nodes no edge points at.
type EChartsTreeBackend struct{}

var _ Backend = EChartsTreeBackend{}

func (EChartsTreeBackend) Name() string { return "echarts-tree" }

func (b EChartsTreeBackend) Render(w io.Writer, s *Scene) error {
	return renderPage(w, s, b.Chart(s))
}

func (b EChartsTreeBackend) Charter(s *Scene) components.Charter { return b.Chart(s) }

// Chart builds the go-echarts tree.
func (EChartsTreeBackend) Chart(s *Scene) *charts.Tree {
	roots := Forest(s)
	data := make([]opts.TreeData, len(roots))
	for i, r := range roots {
		data[i] = *r
	}

	tree := charts.NewTree()
	tree.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: pageTitle(s),
			Width:     px(s.Width),
			Height:    px(s.Height),
		}),
		charts.WithTitleOpts(opts.Title{Title: s.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	if s.CSS != "" {
		tree.AddCustomizedHeaders("<style>" + s.CSS + "</style>")
	}
	tree.AddSeries(
		"tree",
		data,
		charts.WithTreeOpts(opts.TreeChart{
			Layout:            "orthogonal",
			Orient:            "TB",
			Roam:              opts.Bool(true),
			ExpandAndCollapse: opts.Bool(true),
			InitialTreeDepth:  -1,
			Label:             &opts.Label{Show: opts.Bool(true), Position: "top"},
			Left:              "5%",
			Right:             "5%",
			Top:               "10%",
			Bottom:            "10%",
		}),
	)
	return tree
}

// Forest turns the scene into echarts tree data. Every node appears exactly once:
// under the first edge that reaches it from a root in breadth-first order, or as a
// root of its own when nothing reaches it.
func Forest(s *Scene) []*opts.TreeData {
	byID := make(map[string]*opts.TreeData, len(s.Nodes))
	children := make(map[string][]string)
	hasParent := make(map[string]bool)
	for _, n := range s.Nodes {
		d := &opts.TreeData{
			Name:       n.Label,
			Value:      n.ID,
			SymbolSize: n.Radius,
			ItemStyle:  &opts.ItemStyle{Color: n.Color},
		}
		if n.Dimmed {
			d.ItemStyle.Opacity = opts.Float(dimOpacity)
		}
		byID[n.ID] = d
	}
	for _, e := range s.Edges {
		if e.Source == e.Target {
			continue
		}
		children[e.Source] = append(children[e.Source], e.Target)
		hasParent[e.Target] = true
	}

	placed := make(map[string]bool, len(s.Nodes))
	var roots []*opts.TreeData
	grow := func(root string) {
		placed[root] = true
		roots = append(roots, byID[root])
		queue := []string{root}
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			for _, c := range children[id] {
				if placed[c] {
					continue
				}
				placed[c] = true
				byID[id].Children = append(byID[id].Children, byID[c])
				queue = append(queue, c)
			}
		}
	}
	for _, n := range s.Nodes {
		if !hasParent[n.ID] && !placed[n.ID] {
			grow(n.ID)
		}
	}
	// Whatever is left sits on a cycle.
	for _, n := range s.Nodes {
		if !placed[n.ID] {
			grow(n.ID)
		}
	}
	return roots
}

func anyDirected(s *Scene) bool {
	for _, e := range s.Edges {
		if e.Directed {
			return true
		}
	}
	return false
}

// nonZero nudges 0 away from zero, echarts drops omitted coordinates.
func nonZero(v float64) float32 {
	if v == 0 {
		return 0.01
	}
	return float32(v)
}

func edgeTitle(e SceneEdge) string {
	if e.Label != "" {
		return fmt.Sprintf("%s → %s: %s", e.Source, e.Target, e.Label)
	}
	return fmt.Sprintf("%s → %s", e.Source, e.Target)
}

func tooltipHTML(n SceneNode) string {
	var sb strings.Builder
	sb.WriteString(`<div class="kgviz-tooltip"><b>`)
	sb.WriteString(html.EscapeString(n.Label))
	sb.WriteString(`</b>`)
	if n.Type != "" {
		sb.WriteString(`<span class="kgviz-type">`)
		sb.WriteString(html.EscapeString(n.Type))
		sb.WriteString(`</span><br>`)
	}
	for _, f := range n.Fields {
		fmt.Fprintf(&sb, "%s: %s<br>", html.EscapeString(f.Key), html.EscapeString(f.Value))
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

// LookupFunc returns a JS formatter resolving key against an embedded table.
func LookupFunc(table map[string]string, key string) string {
	b, _ := json.Marshal(table)
	return fmt.Sprintf("function (p) { var t = %s; var k = %s; return t[k] !== undefined ? t[k] : k; }", b, key)
}

// dispatchFunc forwards an echarts event to a live session socket when the page has
// one (window.kgvizSend), so the server-side View sees the interaction.
func dispatchFunc(eventType string) string {
	return fmt.Sprintf(
		"function (p) { if (p.dataType === 'node' && window.kgvizSend) { window.kgvizSend({type: %q, node: p.name}); } }",
		eventType,
	)
}
