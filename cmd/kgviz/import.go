package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/psidex/kgviz/internal/source"
)

var importFlags struct {
	input  string
	output string
	index  int
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Store a document's graph in a SQLite database",
	Long: `Copy the nodes and edges of one graph visualization into a SQLite database,
replacing whatever graph the database held. The database can then be rendered or
served like any other document.`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importFlags.input, "input", "i", "", "document to import")
	importCmd.Flags().StringVarP(&importFlags.output, "output", "o", "", "database to write (default: input name with .db)")
	importCmd.Flags().IntVar(&importFlags.index, "index", -1, "visualization to import (default: the first graph)")
	_ = importCmd.MarkFlagRequired("input")
}

// pickGraph returns the visualization at index, or the first graph when index is
// negative.
func pickGraph(doc *source.Document, index int) (source.Visualization, error) {
	if index >= 0 {
		if index >= len(doc.Visualizations) {
			return source.Visualization{}, fmt.Errorf("document has %d visualizations, no index %d", len(doc.Visualizations), index)
		}
		v := doc.Visualizations[index]
		if !v.IsGraph() {
			return source.Visualization{}, fmt.Errorf("visualization %d is a %s, not a graph", index, v.Kind)
		}
		return v, nil
	}
	for _, v := range doc.Visualizations {
		if v.IsGraph() {
			return v, nil
		}
	}
	return source.Visualization{}, fmt.Errorf("document has no graph visualization")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	doc, err := source.Load(ctx, importFlags.input)
	if err != nil {
		return err
	}
	v, err := pickGraph(doc, importFlags.index)
	if err != nil {
		return err
	}

	out := outputPath(importFlags.input, importFlags.output, ".db")
	db, err := source.OpenDB(out)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Replace(ctx, v.Nodes, v.Edges); err != nil {
		return err
	}
	logger.Info("imported graph", "input", importFlags.input, "output", out, "nodes", len(v.Nodes), "edges", len(v.Edges))
	return nil
}
