package charts

import (
	"io"
	"log/slog"
	"strings"

	echarts "github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Industries maps the industry keys used in comparison data to display names.
var Industries = map[string]string{
	"finance":       "Financial Services",
	"healthcare":    "Healthcare",
	"retail":        "Retail",
	"manufacturing": "Manufacturing",
	"telecom":       "Telecommunications",
	"energy":        "Energy & Utilities",
	"government":    "Public Sector",
	"media":         "Media & Entertainment",
	"logistics":     "Transport & Logistics",
	"pharma":        "Life Sciences",
}

// ComparisonItem is one bar group, identified by an industry key.
type ComparisonItem struct {
	Key    string    `json:"key" yaml:"key"`
	Values []float64 `json:"values" yaml:"values"`
}

type ComparisonData struct {
	// Metrics names each value position, one bar series per metric.
	Metrics []string         `json:"metrics" yaml:"metrics"`
	Items   []ComparisonItem `json:"items" yaml:"items"`
	// Names overrides Industries for this chart.
	Names map[string]string `json:"names,omitempty" yaml:"names,omitempty"`
}

// Comparison draws grouped bars, one group per industry.
type Comparison struct {
	base
	data   ComparisonData
	labels []string
}

func NewComparison(data ComparisonData, o Options, logger *slog.Logger) *Comparison {
	c := &Comparison{base: newBase("comparison", o, logger)}
	c.resolve(data)
	return c
}

// IndustryName looks key up in names, then Industries, case-insensitively.
func IndustryName(key string, names map[string]string) (string, bool) {
	if name, ok := names[key]; ok {
		return name, true
	}
	k := strings.ToLower(strings.TrimSpace(key))
	if name, ok := names[k]; ok {
		return name, true
	}
	name, ok := Industries[k]
	return name, ok
}

func (c *Comparison) resolve(data ComparisonData) {
	c.data = ComparisonData{
		Metrics: data.Metrics,
		Items:   make([]ComparisonItem, len(data.Items)),
		Names:   data.Names,
	}
	c.labels = make([]string, len(data.Items))
	for i, it := range data.Items {
		name, ok := IndustryName(it.Key, data.Names)
		if !ok {
			c.logger.Warn("unknown industry key, using it as the label", "key", it.Key)
			name = it.Key
		}
		c.labels[i] = name

		if len(it.Values) != len(data.Metrics) {
			c.logger.Warn("comparison item length does not match metrics",
				"key", it.Key, "values", len(it.Values), "metrics", len(data.Metrics))
		}
		values := make([]float64, len(data.Metrics))
		copy(values, it.Values)
		c.data.Items[i] = ComparisonItem{Key: it.Key, Values: values}
	}
}

// UpdateData replaces the items and metrics.
func (c *Comparison) UpdateData(data ComparisonData) {
	if !c.alive("UpdateData") {
		return
	}
	c.resolve(data)
}

// Labels returns the display name of every item.
func (c *Comparison) Labels() []string { return c.labels }

func (c *Comparison) Chart() *echarts.Bar {
	bar := echarts.NewBar()
	bar.SetGlobalOptions(append(c.globals(),
		echarts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		echarts.WithLegendOpts(opts.Legend{Show: opts.Bool(len(c.data.Metrics) > 1), Bottom: "0"}),
		echarts.WithYAxisOpts(opts.YAxis{Type: "value"}),
	)...)
	bar.SetXAxis(c.labels)

	for m, metric := range c.data.Metrics {
		data := make([]opts.BarData, len(c.data.Items))
		for i, it := range c.data.Items {
			data[i] = opts.BarData{Name: c.labels[i], Value: it.Values[m]}
		}
		bar.AddSeries(metric, data,
			echarts.WithItemStyleOpts(opts.ItemStyle{Color: c.color(m)}),
		)
	}
	return bar
}

func (c *Comparison) Render(w io.Writer) error {
	if c.destroyed {
		return ErrDestroyed
	}
	return c.render(w, c.Chart())
}
