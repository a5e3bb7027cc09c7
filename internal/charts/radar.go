package charts

import (
	"io"
	"log/slog"
	"math"

	echarts "github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Indicator is one radar axis. A zero Max is derived from the data.
type Indicator struct {
	Name string  `json:"name" yaml:"name"`
	Max  float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// RadarSeries is one polygon, with a value per indicator.
type RadarSeries struct {
	Name   string    `json:"name" yaml:"name"`
	Values []float64 `json:"values" yaml:"values"`
}

type RadarData struct {
	Indicators []Indicator   `json:"indicators" yaml:"indicators"`
	Series     []RadarSeries `json:"series" yaml:"series"`
}

// Radar compares several series across shared indicators.
type Radar struct {
	base
	data RadarData
}

func NewRadar(data RadarData, o Options, logger *slog.Logger) *Radar {
	r := &Radar{base: newBase("radar", o, logger)}
	r.data = r.normalize(data)
	return r
}

// normalize pads or truncates every series to the indicator count and resolves
// missing maxima to the largest value on that axis, or 1 when the axis is empty.
func (r *Radar) normalize(data RadarData) RadarData {
	out := RadarData{
		Indicators: append([]Indicator(nil), data.Indicators...),
		Series:     make([]RadarSeries, len(data.Series)),
	}
	n := len(out.Indicators)
	for i, s := range data.Series {
		if len(s.Values) != n {
			r.logger.Warn("radar series length does not match indicators",
				"series", s.Name, "values", len(s.Values), "indicators", n)
		}
		values := make([]float64, n)
		copy(values, s.Values)
		out.Series[i] = RadarSeries{Name: s.Name, Values: values}
	}

	for j := range out.Indicators {
		if out.Indicators[j].Max > 0 {
			continue
		}
		peak := 0.0
		for _, s := range out.Series {
			peak = math.Max(peak, s.Values[j])
		}
		if peak == 0 {
			peak = 1
		}
		out.Indicators[j].Max = peak
	}
	return out
}

// UpdateData replaces the indicators and series.
func (r *Radar) UpdateData(data RadarData) {
	if !r.alive("UpdateData") {
		return
	}
	r.data = r.normalize(data)
}

// Data returns the normalized data.
func (r *Radar) Data() RadarData { return r.data }

func (r *Radar) Chart() *echarts.Radar {
	indicators := make([]*opts.Indicator, len(r.data.Indicators))
	for i, ind := range r.data.Indicators {
		indicators[i] = &opts.Indicator{Name: ind.Name, Max: float32(ind.Max)}
	}

	radar := echarts.NewRadar()
	radar.SetGlobalOptions(append(r.globals(),
		echarts.WithRadarComponentOpts(opts.RadarComponent{
			Indicator:   indicators,
			Shape:       "polygon",
			SplitNumber: 5,
		}),
		echarts.WithLegendOpts(opts.Legend{Show: opts.Bool(len(r.data.Series) > 1), Bottom: "0"}),
		echarts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
	)...)

	for i, s := range r.data.Series {
		radar.AddSeries(s.Name, []opts.RadarData{{Name: s.Name, Value: s.Values}},
			echarts.WithItemStyleOpts(opts.ItemStyle{Color: r.color(i)}),
			echarts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(0.2)}),
		)
	}
	return radar
}

func (r *Radar) Render(w io.Writer) error {
	if r.destroyed {
		return ErrDestroyed
	}
	return r.render(w, r.Chart())
}
