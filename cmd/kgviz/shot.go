package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/psidex/kgviz/internal/export"
)

var shotFlags struct {
	input    string
	url      string
	output   string
	selector string
	width    int64
	height   int64
}

var shotCmd = &cobra.Command{
	Use:   "shot",
	Short: "Screenshot a rendered page with headless Chrome",
	Args:  cobra.NoArgs,
	RunE:  runShot,
}

func init() {
	shotCmd.Flags().StringVarP(&shotFlags.input, "input", "i", "", "rendered HTML file")
	shotCmd.Flags().StringVar(&shotFlags.url, "url", "", "page URL, instead of --input")
	shotCmd.Flags().StringVarP(&shotFlags.output, "output", "o", "", "PNG to write (default: input name with .png)")
	shotCmd.Flags().StringVar(&shotFlags.selector, "selector", "", "capture only the element matching this CSS selector")
	shotCmd.Flags().Int64Var(&shotFlags.width, "width", 0, "viewport width (default from config)")
	shotCmd.Flags().Int64Var(&shotFlags.height, "height", 0, "viewport height (default from config)")
	shotCmd.MarkFlagsMutuallyExclusive("input", "url")
	shotCmd.MarkFlagsOneRequired("input", "url")
}

func runShot(cmd *cobra.Command, args []string) error {
	o := cfg.Export
	if shotFlags.selector != "" {
		o.Selector = shotFlags.selector
	}
	if shotFlags.width > 0 {
		o.Width = shotFlags.width
	}
	if shotFlags.height > 0 {
		o.Height = shotFlags.height
	}
	shooter := export.NewShooter(o, logger)

	if shotFlags.input != "" {
		out := outputPath(shotFlags.input, shotFlags.output, ".png")
		_, err := shooter.CaptureFile(cmd.Context(), shotFlags.input, out)
		return err
	}

	if shotFlags.output == "" {
		return fmt.Errorf("--output is required with --url")
	}
	shot, err := shooter.Capture(cmd.Context(), shotFlags.url)
	if err != nil {
		return err
	}
	if err := os.WriteFile(shotFlags.output, shot.PNG, 0o644); err != nil {
		return fmt.Errorf("writing screenshot: %w", err)
	}
	return nil
}
