// Command kgviz renders knowledge-graph documents to HTML, serves live graph sessions
// and screenshots rendered pages.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/psidex/kgviz/internal/config"
	_ "github.com/psidex/kgviz/internal/graphs/graphology"
	_ "github.com/psidex/kgviz/internal/graphs/vis"
	"github.com/psidex/kgviz/internal/lib"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	configPath string
	envFiles   []string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "kgviz",
	Short: "Knowledge-graph visualization toolkit",
	Long: `kgviz turns documents of nodes, edges and chart data into interactive pages.

Documents are JSON or YAML files, or SQLite databases holding a single graph.
Settings come from --config, KGVIZ_* environment variables and .env files.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath, envFiles...)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Log.Level = logLevel
		}

		logger = lib.NiceLogger(os.Stderr, cfg.LogLevel())
		for _, warning := range cfg.Validate() {
			logger.Warn("config", "warning", warning)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "env files to load, .env when unset")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	rootCmd.Version = Version

	rootCmd.AddCommand(renderCmd, importCmd, serveCmd, shotCmd, versionCmd)
}
