package graphs

import (
	"fmt"

	"github.com/psidex/kgviz/internal/centrality"
	"github.com/psidex/kgviz/internal/layout"
)

// Kind is one of the visualization components that share the graph engine.
type Kind string

const (
	Network Kind = "network"
	Generic Kind = "graph"
	Tree    Kind = "tree"
	Causal  Kind = "causal"
)

var Kinds = []Kind{Network, Generic, Tree, Causal}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// ColorBy selects what node colours encode.
type ColorBy string

const (
	ColorByGroup ColorBy = "group"
	ColorByType  ColorBy = "type"
)

// Options configures a View. Zero values are filled from the kind's defaults.
type Options struct {
	Title   string  `json:"title,omitempty" yaml:"title,omitempty" mapstructure:"title"`
	Width   float64 `json:"width,omitempty" yaml:"width,omitempty" mapstructure:"width"`
	Height  float64 `json:"height,omitempty" yaml:"height,omitempty" mapstructure:"height"`
	Padding float64 `json:"padding,omitempty" yaml:"padding,omitempty" mapstructure:"padding"`

	Layout     layout.Mode      `json:"layout,omitempty" yaml:"layout,omitempty" mapstructure:"layout"`
	Direction  layout.Direction `json:"direction,omitempty" yaml:"direction,omitempty" mapstructure:"direction"`
	Iterations int              `json:"iterations,omitempty" yaml:"iterations,omitempty" mapstructure:"iterations"`
	// Simulate keeps the force simulation running so it can be ticked and dragged.
	Simulate bool               `json:"simulate,omitempty" yaml:"simulate,omitempty" mapstructure:"simulate"`
	Refine   bool               `json:"refine,omitempty" yaml:"refine,omitempty" mapstructure:"refine"`
	Force    layout.ForceParams `json:"force,omitempty" yaml:"force,omitempty" mapstructure:"force"`
	Seed     int64              `json:"seed,omitempty" yaml:"seed,omitempty" mapstructure:"seed"`

	Backend string `json:"backend,omitempty" yaml:"backend,omitempty" mapstructure:"backend"`

	Centrality centrality.Kind       `json:"centrality,omitempty" yaml:"centrality,omitempty" mapstructure:"centrality"`
	DegreeMode centrality.DegreeMode `json:"degreeMode,omitempty" yaml:"degreeMode,omitempty" mapstructure:"degreeMode"`
	Samples    int                   `json:"samples,omitempty" yaml:"samples,omitempty" mapstructure:"samples"`

	ColorBy      ColorBy  `json:"colorBy,omitempty" yaml:"colorBy,omitempty" mapstructure:"colorBy"`
	Palette      []string `json:"palette,omitempty" yaml:"palette,omitempty" mapstructure:"palette"`
	MinRadius    float64  `json:"minRadius,omitempty" yaml:"minRadius,omitempty" mapstructure:"minRadius"`
	MaxRadius    float64  `json:"maxRadius,omitempty" yaml:"maxRadius,omitempty" mapstructure:"maxRadius"`
	MaxEdgeWidth float64  `json:"maxEdgeWidth,omitempty" yaml:"maxEdgeWidth,omitempty" mapstructure:"maxEdgeWidth"`
	// Directed draws arrows on every edge, not only on edges marked directed.
	Directed bool `json:"directed,omitempty" yaml:"directed,omitempty" mapstructure:"directed"`

	MinZoom float64 `json:"minZoom,omitempty" yaml:"minZoom,omitempty" mapstructure:"minZoom"`
	MaxZoom float64 `json:"maxZoom,omitempty" yaml:"maxZoom,omitempty" mapstructure:"maxZoom"`

	// Stylesheet is owned by whoever created the View and is only borrowed here.
	Stylesheet *Stylesheet `json:"-" yaml:"-" mapstructure:"-"`
}

// DefaultPalette is a colour-blind friendly categorical palette.
var DefaultPalette = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f",
	"#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac",
}

// Defaults returns the options a kind starts from.
func Defaults(kind Kind) Options {
	o := Options{
		Width:        layout.DefaultWidth,
		Height:       layout.DefaultHeight,
		Padding:      layout.DefaultPadding,
		Layout:       layout.Force,
		Direction:    layout.TopBottom,
		Iterations:   layout.DefaultIterations,
		Backend:      "echarts",
		Centrality:   centrality.Degree,
		DegreeMode:   centrality.DegreeAll,
		ColorBy:      ColorByGroup,
		Palette:      DefaultPalette,
		MinRadius:    6,
		MaxRadius:    24,
		MaxEdgeWidth: 6,
		MinZoom:      0.1,
		MaxZoom:      8,
	}
	switch kind {
	case Generic:
		o.ColorBy = ColorByType
	case Tree:
		o.Layout = layout.Hierarchical
		o.Backend = "echarts-tree"
		o.ColorBy = ColorByType
	case Causal:
		o.Layout = layout.Hierarchical
		o.Direction = layout.LeftRight
		o.Directed = true
		o.Centrality = centrality.Betweenness
		o.ColorBy = ColorByType
	}
	return o
}

// withDefaults fills every zero field of o from the kind's defaults.
func (o Options) withDefaults(kind Kind) Options {
	d := Defaults(kind)
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.Padding <= 0 {
		o.Padding = d.Padding
	}
	if o.Layout == "" {
		o.Layout = d.Layout
	}
	if o.Direction == "" {
		o.Direction = d.Direction
	}
	if o.Iterations <= 0 {
		o.Iterations = d.Iterations
	}
	if o.Backend == "" {
		o.Backend = d.Backend
	}
	if o.Centrality == "" {
		o.Centrality = d.Centrality
	}
	if o.DegreeMode == "" {
		o.DegreeMode = d.DegreeMode
	}
	if o.ColorBy == "" {
		o.ColorBy = d.ColorBy
	}
	if len(o.Palette) == 0 {
		o.Palette = d.Palette
	}
	if o.MinRadius <= 0 {
		o.MinRadius = d.MinRadius
	}
	if o.MaxRadius < o.MinRadius {
		o.MaxRadius = max(d.MaxRadius, o.MinRadius)
	}
	if o.MaxEdgeWidth < 1 {
		o.MaxEdgeWidth = d.MaxEdgeWidth
	}
	if o.MinZoom <= 0 {
		o.MinZoom = d.MinZoom
	}
	if o.MaxZoom < o.MinZoom {
		o.MaxZoom = max(d.MaxZoom, o.MinZoom)
	}
	if kind == Causal {
		o.Directed = true
	}
	return o
}

// validate replaces names that do not parse with the kind's defaults, returning a
// warning for each replacement.
func (o Options) validate(kind Kind, previous Options) (Options, []string) {
	var warnings []string
	if _, err := layout.ParseMode(string(o.Layout)); err != nil {
		warnings = append(warnings, fmt.Sprintf("%v, keeping %q", err, previous.Layout))
		o.Layout = previous.Layout
	}
	if _, err := layout.ParseDirection(string(o.Direction)); err != nil {
		warnings = append(warnings, fmt.Sprintf("%v, keeping %q", err, previous.Direction))
		o.Direction = previous.Direction
	}
	if _, err := centrality.ParseKind(string(o.Centrality)); err != nil {
		warnings = append(warnings, fmt.Sprintf("%v, keeping %q", err, previous.Centrality))
		o.Centrality = previous.Centrality
	}
	switch o.DegreeMode {
	case centrality.DegreeAll, centrality.DegreeIn, centrality.DegreeOut:
	default:
		warnings = append(warnings, fmt.Sprintf("unknown degree mode %q, keeping %q", o.DegreeMode, previous.DegreeMode))
		o.DegreeMode = previous.DegreeMode
	}
	switch o.ColorBy {
	case ColorByGroup, ColorByType:
	default:
		warnings = append(warnings, fmt.Sprintf("unknown colorBy %q, keeping %q", o.ColorBy, previous.ColorBy))
		o.ColorBy = previous.ColorBy
	}
	if _, ok := lookupBackend(o.Backend); !ok {
		warnings = append(warnings, fmt.Sprintf("unknown backend %q, keeping %q", o.Backend, previous.Backend))
		o.Backend = previous.Backend
	}
	return o, warnings
}

// PartialOptions is an UpdateOptions patch: nil fields are left unchanged.
type PartialOptions struct {
	Title        *string             `json:"title,omitempty"`
	Width        *float64            `json:"width,omitempty"`
	Height       *float64            `json:"height,omitempty"`
	Padding      *float64            `json:"padding,omitempty"`
	Layout       *string             `json:"layout,omitempty"`
	Direction    *string             `json:"direction,omitempty"`
	Iterations   *int                `json:"iterations,omitempty"`
	Simulate     *bool               `json:"simulate,omitempty"`
	Refine       *bool               `json:"refine,omitempty"`
	Force        *layout.ForceParams `json:"force,omitempty"`
	Seed         *int64              `json:"seed,omitempty"`
	Backend      *string             `json:"backend,omitempty"`
	Centrality   *string             `json:"centrality,omitempty"`
	DegreeMode   *string             `json:"degreeMode,omitempty"`
	Samples      *int                `json:"samples,omitempty"`
	ColorBy      *string             `json:"colorBy,omitempty"`
	Palette      []string            `json:"palette,omitempty"`
	MinRadius    *float64            `json:"minRadius,omitempty"`
	MaxRadius    *float64            `json:"maxRadius,omitempty"`
	MaxEdgeWidth *float64            `json:"maxEdgeWidth,omitempty"`
	Directed     *bool               `json:"directed,omitempty"`
	MinZoom      *float64            `json:"minZoom,omitempty"`
	MaxZoom      *float64            `json:"maxZoom,omitempty"`
}

// Apply returns o with every set field of p copied over.
func (p PartialOptions) Apply(o Options) Options {
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	if p.Title != nil {
		o.Title = *p.Title
	}
	set(&o.Width, p.Width)
	set(&o.Height, p.Height)
	set(&o.Padding, p.Padding)
	if p.Layout != nil {
		o.Layout = layout.Mode(*p.Layout)
	}
	if p.Direction != nil {
		o.Direction = layout.Direction(*p.Direction)
	}
	if p.Iterations != nil {
		o.Iterations = *p.Iterations
	}
	if p.Simulate != nil {
		o.Simulate = *p.Simulate
	}
	if p.Refine != nil {
		o.Refine = *p.Refine
	}
	if p.Force != nil {
		o.Force = *p.Force
	}
	if p.Seed != nil {
		o.Seed = *p.Seed
	}
	if p.Backend != nil {
		o.Backend = *p.Backend
	}
	if p.Centrality != nil {
		o.Centrality = centrality.Kind(*p.Centrality)
	}
	if p.DegreeMode != nil {
		o.DegreeMode = centrality.DegreeMode(*p.DegreeMode)
	}
	if p.Samples != nil {
		o.Samples = *p.Samples
	}
	if p.ColorBy != nil {
		o.ColorBy = ColorBy(*p.ColorBy)
	}
	if p.Palette != nil {
		o.Palette = p.Palette
	}
	set(&o.MinRadius, p.MinRadius)
	set(&o.MaxRadius, p.MaxRadius)
	set(&o.MaxEdgeWidth, p.MaxEdgeWidth)
	if p.Directed != nil {
		o.Directed = *p.Directed
	}
	set(&o.MinZoom, p.MinZoom)
	set(&o.MaxZoom, p.MaxZoom)
	return o
}

func (o Options) layoutConfig(centrality []float64) layout.Config {
	return layout.Config{
		Width:      o.Width,
		Height:     o.Height,
		Padding:    o.Padding,
		Direction:  o.Direction,
		Iterations: o.Iterations,
		Refine:     o.Refine,
		Centrality: centrality,
		Force:      o.Force,
		Seed:       o.Seed,
	}
}
