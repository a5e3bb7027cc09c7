package charts

import (
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	echarts "github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// DefaultLane holds events without a category.
const DefaultLane = "events"

// dateLayouts are tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"02 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2006",
	"January 2006",
	"2006-01",
	"2006",
}

// TimelineEvent is one dated entry. Category places it on a lane.
type TimelineEvent struct {
	Date        string `json:"date" yaml:"date"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string `json:"category,omitempty" yaml:"category,omitempty"`
}

// DatedEvent is a TimelineEvent with its date resolved.
type DatedEvent struct {
	TimelineEvent
	At time.Time
	// Estimated is set when Date did not parse and At came from the clock.
	Estimated bool
}

// Timeline places events on a time axis, one lane per category.
type Timeline struct {
	base
	events []DatedEvent
	lanes  []string
}

func NewTimeline(events []TimelineEvent, o Options, logger *slog.Logger) *Timeline {
	t := &Timeline{base: newBase("timeline", o, logger)}
	t.resolve(events)
	return t
}

// ParseDate reads the date formats timelines accept.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if at, err := time.Parse(layout, s); err == nil {
			return at, true
		}
	}
	return time.Time{}, false
}

func (t *Timeline) resolve(events []TimelineEvent) {
	t.events = make([]DatedEvent, len(events))
	t.lanes = nil
	seen := map[string]bool{}
	for i, e := range events {
		at, ok := ParseDate(e.Date)
		if !ok {
			at = t.opts.Now()
			t.logger.Warn("unparseable timeline date, using current time",
				"event", e.Title, "date", e.Date)
		}
		if e.Category == "" {
			e.Category = DefaultLane
		}
		if !seen[e.Category] {
			seen[e.Category] = true
			t.lanes = append(t.lanes, e.Category)
		}
		t.events[i] = DatedEvent{TimelineEvent: e, At: at, Estimated: !ok}
	}
	sort.SliceStable(t.events, func(a, b int) bool {
		return t.events[a].At.Before(t.events[b].At)
	})
}

// UpdateData replaces the events.
func (t *Timeline) UpdateData(events []TimelineEvent) {
	if !t.alive("UpdateData") {
		return
	}
	t.resolve(events)
}

// Events returns the events in chronological order.
func (t *Timeline) Events() []DatedEvent { return t.events }

// Lanes returns the categories in first-seen order.
func (t *Timeline) Lanes() []string { return t.lanes }

func (t *Timeline) Chart() *echarts.Scatter {
	scatter := echarts.NewScatter()
	scatter.SetGlobalOptions(append(t.globals(),
		echarts.WithXAxisOpts(opts.XAxis{Type: "time"}),
		echarts.WithYAxisOpts(opts.YAxis{Type: "category", Data: t.lanes}),
		echarts.WithTooltipOpts(opts.Tooltip{
			Show:      opts.Bool(true),
			Trigger:   "item",
			Formatter: opts.FuncOpts("function (p) { return p.name + '<br>' + p.value[0].slice(0, 10); }"),
		}),
		echarts.WithLegendOpts(opts.Legend{Show: opts.Bool(len(t.lanes) > 1), Bottom: "0"}),
	)...)

	for lane, name := range t.lanes {
		var data []opts.ScatterData
		for _, e := range t.events {
			if e.Category != name {
				continue
			}
			data = append(data, opts.ScatterData{
				Name:       e.Title,
				Value:      []interface{}{e.At.Format(time.RFC3339), lane},
				SymbolSize: 14,
			})
		}
		scatter.AddSeries(name, data,
			echarts.WithItemStyleOpts(opts.ItemStyle{Color: t.color(lane)}),
			echarts.WithLabelOpts(opts.Label{
				Show:      opts.Bool(true),
				Position:  "top",
				Formatter: opts.FuncOpts("function (p) { return p.name; }"),
			}),
		)
	}
	return scatter
}

func (t *Timeline) Render(w io.Writer) error {
	if t.destroyed {
		return ErrDestroyed
	}
	return t.render(w, t.Chart())
}
