package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/psidex/kgviz/internal/graphs"
	"github.com/psidex/kgviz/internal/layout"
	"github.com/psidex/kgviz/internal/source"
)

var renderFlags struct {
	input   string
	output  string
	backend string
	layout  string
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a document to an HTML page",
	Long: `Render every visualization in a document onto one page.

A document holding a single graph is written in its backend's format, so
--backend json gives the adjacency JSON and --backend vis a vis-network page.
Documents with several visualizations need a chart backend (echarts or echarts-tree)
for their graphs.`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderFlags.input, "input", "i", "", "document to render (.json, .yaml, .db)")
	renderCmd.Flags().StringVarP(&renderFlags.output, "output", "o", "", "output file, - for stdout (default: input name with the output extension)")
	renderCmd.Flags().StringVar(&renderFlags.backend, "backend", "", "graph backend: "+strings.Join(graphs.Backends(), ", "))
	renderCmd.Flags().StringVar(&renderFlags.layout, "layout", "", "graph layout: force, radial, circular, grid or hierarchical")
	_ = renderCmd.MarkFlagRequired("input")
}

// applyOverrides sets the command line backend and layout on every graph.
func applyOverrides(doc *source.Document, backend, mode string) error {
	if mode != "" {
		if _, err := layout.ParseMode(mode); err != nil {
			return err
		}
	}
	if backend != "" && !contains(graphs.Backends(), backend) {
		return fmt.Errorf("unknown backend %q, want one of %s", backend, strings.Join(graphs.Backends(), ", "))
	}
	for i := range doc.Visualizations {
		v := &doc.Visualizations[i]
		if !v.IsGraph() {
			continue
		}
		if backend != "" {
			v.Options.Backend = backend
		}
		if mode != "" {
			v.Options.Layout = layout.Mode(mode)
		}
	}
	return nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// outputPath derives the output file from the input when none was given.
func outputPath(input, output, ext string) string {
	if output != "" {
		return output
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ext
}

func writeOutput(path string, render func(io.Writer) error) (err error) {
	if path == "-" {
		return render(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return render(f)
}

func runRender(cmd *cobra.Command, args []string) error {
	doc, err := source.Load(cmd.Context(), renderFlags.input)
	if err != nil {
		return err
	}
	if err := applyOverrides(doc, renderFlags.backend, renderFlags.layout); err != nil {
		return err
	}

	sheet := graphs.NewStylesheet(graphs.DefaultCSS)
	deck, err := source.Build(doc, cfg.Render, sheet, logger)
	if err != nil {
		return err
	}
	defer deck.Close()

	render := deck.Render
	ext := ".html"
	if views := deck.Views(); deck.Len() == 1 && len(views) == 1 {
		render = views[0].Render
		ext = graphs.FileExtension(views[0].Options().Backend)
	}

	out := outputPath(renderFlags.input, renderFlags.output, ext)
	if err := writeOutput(out, render); err != nil {
		return err
	}
	logger.Info("rendered document", "input", renderFlags.input, "output", out, "visualizations", deck.Len())
	return nil
}
