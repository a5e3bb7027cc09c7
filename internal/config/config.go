// Package config loads kgviz settings from a file, the environment and .env files.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/psidex/kgviz/internal/export"
	"github.com/psidex/kgviz/internal/graphs"
	_ "github.com/psidex/kgviz/internal/graphs/graphology"
	_ "github.com/psidex/kgviz/internal/graphs/vis"
	"github.com/psidex/kgviz/internal/layout"
	"github.com/psidex/kgviz/internal/lib"
	"github.com/psidex/kgviz/internal/live"
)

// EnvPrefix namespaces environment overrides, e.g. KGVIZ_SERVER_ADDR.
const EnvPrefix = "KGVIZ"

// Config holds all application configuration.
type Config struct {
	Log    LogConfig      `mapstructure:"log"`
	Render graphs.Options `mapstructure:"render"`
	Live   live.Limits    `mapstructure:"live"`
	Server ServerConfig   `mapstructure:"server"`
	Export export.Options `mapstructure:"export"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type ServerConfig struct {
	Addr      string        `mapstructure:"addr"`
	StaticDir string        `mapstructure:"staticDir"`
	Shutdown  time.Duration `mapstructure:"shutdown"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")

	v.SetDefault("render.width", layout.DefaultWidth)
	v.SetDefault("render.height", layout.DefaultHeight)

	v.SetDefault("live.tickInterval", live.DefaultTickInterval)
	v.SetDefault("live.maxRuntime", live.DefaultMaxRuntime)

	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.staticDir", "public")
	v.SetDefault("server.shutdown", 5*time.Second)

	v.SetDefault("export.width", export.DefaultWidth)
	v.SetDefault("export.height", export.DefaultHeight)
	v.SetDefault("export.scale", 1.0)
	v.SetDefault("export.timeout", export.DefaultTimeout)
	v.SetDefault("export.settle", export.DefaultSettle)
}

// Load reads configuration from path, which may be empty, and the environment. Any
// .env files are loaded into the environment first, without overriding set variables.
func Load(path string, envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && len(envFiles) > 0 {
		return nil, fmt.Errorf("loading env files: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return &cfg, nil
}

// LogLevel parses the configured level, falling back to info.
func (c *Config) LogLevel() slog.Level {
	level, err := lib.ParseSLogLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// Validate checks configuration for issues and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string

	if _, err := lib.ParseSLogLevel(c.Log.Level); err != nil {
		warnings = append(warnings, fmt.Sprintf("log level %q is not a slog level", c.Log.Level))
	}

	if c.Render.Layout != "" {
		if _, err := layout.ParseMode(string(c.Render.Layout)); err != nil {
			warnings = append(warnings, fmt.Sprintf("render layout: %v", err))
		}
	}
	if c.Render.Backend != "" && !known(graphs.Backends(), c.Render.Backend) {
		warnings = append(warnings, fmt.Sprintf("render backend %q is not one of %s", c.Render.Backend, strings.Join(graphs.Backends(), ", ")))
	}
	if c.Render.Width < 0 || c.Render.Height < 0 {
		warnings = append(warnings, fmt.Sprintf("render size %vx%v is negative", c.Render.Width, c.Render.Height))
	}

	if c.Live.TickInterval > 0 && c.Live.TickInterval < live.MinTickInterval {
		warnings = append(warnings, fmt.Sprintf("live tick interval %s is below the %s minimum", c.Live.TickInterval, live.MinTickInterval))
	}

	if c.Server.Addr == "" {
		warnings = append(warnings, "server addr is empty")
	}

	if c.Export.Scale < 0 || c.Export.Scale > 4 {
		warnings = append(warnings, fmt.Sprintf("export scale %.2f is outside recommended range [0, 4]", c.Export.Scale))
	}
	if c.Export.Timeout > 0 && c.Export.Settle >= c.Export.Timeout {
		warnings = append(warnings, fmt.Sprintf("export settle %s leaves no time within the %s timeout", c.Export.Settle, c.Export.Timeout))
	}

	return warnings
}

func known(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
