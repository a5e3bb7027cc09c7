// Package source loads visualization documents from JSON or YAML files and graph data
// from SQLite databases.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/psidex/kgviz/internal/charts"
	"github.com/psidex/kgviz/internal/graph"
	"github.com/psidex/kgviz/internal/graphs"
)

// Chart kinds accepted next to the graph kinds.
const (
	KindRadar      = "radar"
	KindTimeline   = "timeline"
	KindProcess    = "process"
	KindComparison = "comparison"
	KindCode       = "code"
)

// ErrUnknownFormat is returned for files whose extension names no known format.
var ErrUnknownFormat = errors.New("unknown document format")

// Format is a document encoding.
type Format string

const (
	JSON   Format = "json"
	YAML   Format = "yaml"
	SQLite Format = "sqlite"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	case ".db", ".sqlite", ".sqlite3":
		return SQLite, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

// Visualization is one component of a document. Graph kinds read Nodes and Edges, the
// chart kinds read their own field.
type Visualization struct {
	Kind    string         `json:"kind" yaml:"kind"`
	Title   string         `json:"title,omitempty" yaml:"title,omitempty"`
	Nodes   []graph.Node   `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Edges   []graph.Edge   `json:"edges,omitempty" yaml:"edges,omitempty"`
	Options graphs.Options `json:"options,omitempty" yaml:"options,omitempty"`

	Radar      *charts.RadarData      `json:"radar,omitempty" yaml:"radar,omitempty"`
	Timeline   []charts.TimelineEvent `json:"timeline,omitempty" yaml:"timeline,omitempty"`
	Process    *charts.ProcessData    `json:"process,omitempty" yaml:"process,omitempty"`
	Comparison *charts.ComparisonData `json:"comparison,omitempty" yaml:"comparison,omitempty"`
	Code       *charts.CodeData       `json:"code,omitempty" yaml:"code,omitempty"`
}

// IsGraph reports whether the visualization is drawn by the graph engine.
func (v Visualization) IsGraph() bool {
	_, err := graphs.ParseKind(v.Kind)
	return err == nil
}

// ChartOptions projects the shared options onto a chart component.
func (v Visualization) ChartOptions() charts.Options {
	title := v.Title
	if title == "" {
		title = v.Options.Title
	}
	return charts.Options{
		Title:   title,
		Width:   v.Options.Width,
		Height:  v.Options.Height,
		Palette: v.Options.Palette,
	}
}

// Document is an ordered list of visualizations.
type Document struct {
	Title          string          `json:"title,omitempty" yaml:"title,omitempty"`
	Visualizations []Visualization `json:"visualizations" yaml:"visualizations"`
}

// Validate checks that every visualization names a known kind and carries the data
// that kind needs.
func (d *Document) Validate() error {
	var errs []error
	for i, v := range d.Visualizations {
		var missing bool
		switch v.Kind {
		case KindRadar:
			missing = v.Radar == nil
		case KindTimeline:
			missing = v.Timeline == nil
		case KindProcess:
			missing = v.Process == nil
		case KindComparison:
			missing = v.Comparison == nil
		case KindCode:
			missing = v.Code == nil
		default:
			if !v.IsGraph() {
				errs = append(errs, fmt.Errorf("visualization %d: unknown kind %q", i, v.Kind))
			}
		}
		if missing {
			errs = append(errs, fmt.Errorf("visualization %d: %s has no %s data", i, v.Kind, v.Kind))
		}
	}
	return errors.Join(errs...)
}

// Decode reads a JSON or YAML document.
func Decode(r io.Reader, format Format) (*Document, error) {
	doc := &Document{}
	switch format {
	case JSON:
		if err := json.NewDecoder(r).Decode(doc); err != nil {
			return nil, fmt.Errorf("decoding json document: %w", err)
		}
	case YAML:
		if err := yaml.NewDecoder(r).Decode(doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decoding yaml document: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return doc, nil
}

// Encode writes doc as JSON or YAML.
func Encode(w io.Writer, doc *Document, format Format) error {
	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Load reads a document from a file. A SQLite database becomes a document holding a
// single network visualization titled after the file.
func Load(ctx context.Context, path string) (*Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	if format == SQLite {
		return LoadSQLite(ctx, path)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	doc, err := Decode(bytes.NewReader(b), format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
