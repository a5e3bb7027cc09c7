// Package charts holds the non-graph components: radar, timeline, process flow,
// comparison and code block. Each shares the View surface of the graph components
// (Render, UpdateData, UpdateOptions, Resize, Destroy) and renders through
// go-echarts, except the code block which builds its own HTML.
package charts

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	echarts "github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/psidex/kgviz/internal/graphs"
	"github.com/psidex/kgviz/internal/lib"
)

const (
	DefaultWidth  = 960
	DefaultHeight = 540
)

// ErrDestroyed is returned by Render after Destroy.
var ErrDestroyed = graphs.ErrDestroyed

// Options configures any chart component.
type Options struct {
	Title   string   `json:"title,omitempty" yaml:"title,omitempty" mapstructure:"title"`
	Width   float64  `json:"width,omitempty" yaml:"width,omitempty" mapstructure:"width"`
	Height  float64  `json:"height,omitempty" yaml:"height,omitempty" mapstructure:"height"`
	Palette []string `json:"palette,omitempty" yaml:"palette,omitempty" mapstructure:"palette"`

	Stylesheet *graphs.Stylesheet `json:"-" yaml:"-" mapstructure:"-"`
	// Now replaces time.Now when a timeline date cannot be parsed.
	Now func() time.Time `json:"-" yaml:"-" mapstructure:"-"`
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if len(o.Palette) == 0 {
		o.Palette = graphs.DefaultPalette
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// PartialOptions is an UpdateOptions patch: nil fields are left unchanged.
type PartialOptions struct {
	Title   *string  `json:"title,omitempty"`
	Width   *float64 `json:"width,omitempty"`
	Height  *float64 `json:"height,omitempty"`
	Palette []string `json:"palette,omitempty"`
}

// base carries the state every component shares.
type base struct {
	name      string
	opts      Options
	logger    *slog.Logger
	style     *graphs.StyleHandle
	destroyed bool
}

func newBase(name string, o Options, logger *slog.Logger) base {
	b := base{
		name:   name,
		opts:   o.withDefaults(),
		logger: lib.LoggerOr(logger).With("chart", name),
	}
	if o.Stylesheet != nil {
		b.style = o.Stylesheet.Acquire()
	}
	return b
}

// alive logs and reports false when the component was destroyed.
func (b *base) alive(method string) bool {
	if b.destroyed {
		b.logger.Warn(method + " called on destroyed chart")
		return false
	}
	return true
}

// UpdateOptions merges p into the current options.
func (b *base) UpdateOptions(p PartialOptions) {
	if !b.alive("UpdateOptions") {
		return
	}
	if p.Title != nil {
		b.opts.Title = *p.Title
	}
	if p.Palette != nil {
		b.opts.Palette = p.Palette
	}
	b.Resize(deref(p.Width), deref(p.Height))
}

// Resize changes the canvas. A zero or negative dimension keeps its current value.
func (b *base) Resize(width, height float64) {
	if !b.alive("Resize") {
		return
	}
	if width > 0 {
		b.opts.Width = width
	}
	if height > 0 {
		b.opts.Height = height
	}
}

// Destroy releases the stylesheet. Render returns ErrDestroyed afterwards.
func (b *base) Destroy() {
	if b.destroyed {
		return
	}
	b.style.Release()
	b.destroyed = true
}

func (b *base) Options() Options { return b.opts }

func (b *base) color(i int) string {
	return b.opts.Palette[i%len(b.opts.Palette)]
}

// globals are the options every go-echarts component starts from.
func (b *base) globals() []echarts.GlobalOpts {
	return []echarts.GlobalOpts{
		echarts.WithInitializationOpts(opts.Initialization{
			PageTitle: b.pageTitle(),
			Width:     fmt.Sprintf("%dpx", int(b.opts.Width)),
			Height:    fmt.Sprintf("%dpx", int(b.opts.Height)),
		}),
		echarts.WithTitleOpts(opts.Title{Title: b.opts.Title}),
		echarts.WithColorsOpts(opts.Colors(b.opts.Palette)),
	}
}

func (b *base) pageTitle() string {
	if b.opts.Title != "" {
		return b.opts.Title
	}
	return "kgviz " + b.name
}

type headered interface {
	AddCustomizedHeaders(headers ...string)
}

// render writes chart as a standalone page.
func (b *base) render(w io.Writer, chart components.Charter) error {
	if b.destroyed {
		return ErrDestroyed
	}
	if css := b.style.CSS(); css != "" {
		if h, ok := chart.(headered); ok {
			h.AddCustomizedHeaders("<style>" + css + "</style>")
		}
	}
	page := components.NewPage()
	page.SetPageTitle(b.pageTitle())
	page.AddCharts(chart)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("rendering %s: %w", b.name, err)
	}
	return nil
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
