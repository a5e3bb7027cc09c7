package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/psidex/kgviz/internal/layout"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != "127.0.0.1:8080" || cfg.Render.Backend != "" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Live.TickInterval != 50*time.Millisecond || cfg.Export.Settle != 1500*time.Millisecond {
		t.Errorf("duration defaults = %+v %+v", cfg.Live, cfg.Export)
	}
	if w := cfg.Validate(); len(w) != 0 {
		t.Errorf("default config warnings: %v", w)
	}
	if cfg.LogLevel() != slog.LevelInfo {
		t.Errorf("LogLevel() = %v", cfg.LogLevel())
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeFile(t, "kgviz.yaml", `
log:
  level: debug
render:
  layout: radial
  width: 1200
  force:
    charge: -80
live:
  tickInterval: 20ms
server:
  addr: 0.0.0.0:9000
export:
  selector: "#main"
`)
	t.Setenv("KGVIZ_SERVER_ADDR", "127.0.0.1:9999")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Render.Layout != layout.Radial || cfg.Render.Width != 1200 || cfg.Render.Force.Charge != -80 {
		t.Errorf("render = %+v", cfg.Render)
	}
	if cfg.Live.TickInterval != 20*time.Millisecond {
		t.Errorf("tick interval = %v", cfg.Live.TickInterval)
	}
	if cfg.Server.Addr != "127.0.0.1:9999" {
		t.Errorf("env override lost: addr = %q", cfg.Server.Addr)
	}
	if cfg.Export.Selector != "#main" || cfg.LogLevel() != slog.LevelDebug {
		t.Errorf("export = %+v, level = %v", cfg.Export, cfg.LogLevel())
	}
}

func TestLoad_EnvFile(t *testing.T) {
	envFile := writeFile(t, "test.env", "KGVIZ_LOG_LEVEL=warn\n")
	t.Setenv("KGVIZ_LOG_LEVEL", "")
	os.Unsetenv("KGVIZ_LOG_LEVEL")

	cfg, err := Load("", envFile)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel() != slog.LevelWarn {
		t.Errorf("level = %q", cfg.Log.Level)
	}

	if _, err := Load("", filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Errorf("missing env file should fail")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("missing config file should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "not a slog level"},
		{"layout", func(c *Config) { c.Render.Layout = "spiral" }, "render layout"},
		{"backend", func(c *Config) { c.Render.Backend = "d3" }, `render backend "d3"`},
		{"size", func(c *Config) { c.Render.Width = -1 }, "negative"},
		{"tick", func(c *Config) { c.Live.TickInterval = time.Millisecond }, "below the"},
		{"addr", func(c *Config) { c.Server.Addr = "" }, "addr is empty"},
		{"scale", func(c *Config) { c.Export.Scale = 10 }, "export scale"},
		{"settle", func(c *Config) { c.Export.Settle = time.Minute }, "leaves no time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatal(err)
			}
			tt.modify(cfg)
			w := cfg.Validate()
			if len(w) != 1 || !strings.Contains(w[0], tt.want) {
				t.Errorf("Validate() = %v, want one warning containing %q", w, tt.want)
			}
		})
	}
}
