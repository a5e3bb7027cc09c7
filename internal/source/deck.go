package source

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/go-echarts/go-echarts/v2/components"

	"github.com/psidex/kgviz/internal/charts"
	"github.com/psidex/kgviz/internal/graphs"
	"github.com/psidex/kgviz/internal/layout"
	"github.com/psidex/kgviz/internal/lib"
)

type destroyer interface {
	Destroy()
}

// entry is one built visualization. chart is nil for code blocks.
type entry struct {
	component destroyer
	chart     func() (components.Charter, error)
	block     *charts.CodeBlock
}

// Deck is a document built into components, ready to render onto one page.
type Deck struct {
	title   string
	css     string
	views   []*graphs.View
	entries []entry
}

// Merge fills the zero fields of o that config can set from defaults. An empty default
// backend leaves every kind on its own renderer.
func Merge(o, defaults graphs.Options) graphs.Options {
	if o.Width <= 0 {
		o.Width = defaults.Width
	}
	if o.Height <= 0 {
		o.Height = defaults.Height
	}
	if o.Padding <= 0 {
		o.Padding = defaults.Padding
	}
	if o.Layout == "" {
		o.Layout = defaults.Layout
	}
	if o.Iterations <= 0 {
		o.Iterations = defaults.Iterations
	}
	if o.Force == (layout.ForceParams{}) {
		o.Force = defaults.Force
	}
	if o.Seed == 0 {
		o.Seed = defaults.Seed
	}
	if o.Backend == "" {
		o.Backend = defaults.Backend
	}
	if len(o.Palette) == 0 {
		o.Palette = defaults.Palette
	}
	return o
}

// Build creates a component for every visualization in doc. Graph visualizations
// inherit zero options from defaults. The document is validated first, so a chart
// kind without its data is an error rather than a panic.
func Build(doc *Document, defaults graphs.Options, sheet *graphs.Stylesheet, logger *slog.Logger) (*Deck, error) {
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("building deck: %w", err)
	}
	logger = lib.LoggerOr(logger)

	d := &Deck{title: doc.Title}
	if sheet != nil {
		d.css = sheet.CSS()
	}

	for i, v := range doc.Visualizations {
		vlog := logger.With("visualization", i, "kind", v.Kind)

		if v.IsGraph() {
			kind, _ := graphs.ParseKind(v.Kind)
			o := Merge(v.Options, defaults)
			if v.Title != "" {
				o.Title = v.Title
			}
			o.Stylesheet = sheet
			view, err := graphs.New(kind, v.Nodes, v.Edges, o, vlog)
			if err != nil {
				d.Close()
				return nil, fmt.Errorf("visualization %d: %w", i, err)
			}
			d.views = append(d.views, view)
			d.entries = append(d.entries, entry{component: view, chart: view.Chart})
			continue
		}

		co := v.ChartOptions()
		co.Stylesheet = sheet
		if len(co.Palette) == 0 {
			co.Palette = defaults.Palette
		}

		var e entry
		switch v.Kind {
		case KindRadar:
			r := charts.NewRadar(*v.Radar, co, vlog)
			e = entry{component: r, chart: charter(r.Chart)}
		case KindTimeline:
			t := charts.NewTimeline(v.Timeline, co, vlog)
			e = entry{component: t, chart: charter(t.Chart)}
		case KindProcess:
			p := charts.NewProcessFlow(*v.Process, co, vlog)
			e = entry{component: p, chart: charter(p.Chart)}
		case KindComparison:
			c := charts.NewComparison(*v.Comparison, co, vlog)
			e = entry{component: c, chart: charter(c.Chart)}
		case KindCode:
			b := charts.NewCodeBlock(*v.Code, co, vlog)
			e = entry{component: b, block: b}
		default:
			d.Close()
			return nil, fmt.Errorf("visualization %d: unknown kind %q", i, v.Kind)
		}
		d.entries = append(d.entries, e)
	}
	return d, nil
}

func charter[C components.Charter](chart func() C) func() (components.Charter, error) {
	return func() (components.Charter, error) {
		return chart(), nil
	}
}

// Views returns the graph visualizations in document order.
func (d *Deck) Views() []*graphs.View {
	return d.views
}

// Len returns the number of components in the deck.
func (d *Deck) Len() int {
	return len(d.entries)
}

// Render writes every component onto one page, charts in document order followed by
// the code blocks. Graph views must use a chart backend.
func (d *Deck) Render(w io.Writer) error {
	page := charts.NewPage(d.title)
	page.CSS = d.css
	for _, e := range d.entries {
		if e.block != nil {
			page.AddBlocks(e.block)
			continue
		}
		c, err := e.chart()
		if err != nil {
			return err
		}
		page.AddCharts(c)
	}
	return page.Render(w)
}

// Close destroys every component.
func (d *Deck) Close() {
	for _, e := range d.entries {
		e.component.Destroy()
	}
}
