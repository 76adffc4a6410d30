// Package config loads application configuration the layered way:
// defaults, then impactviz.toml, then IMPACTVIZ_* environment variables,
// then command-line flags.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds all configuration for the application.
type Config struct {
	Records   string `koanf:"records"`   // path to the records JSON file
	Unit      string `koanf:"unit"`      // one-shot: render this unit
	All       bool   `koanf:"all"`       // one-shot: render the merged graph
	Init      bool   `koanf:"init"`      // generate a records template from the cluster
	Web       bool   `koanf:"web"`       // serve the interactive viewer
	Port      int    `koanf:"port"`      // web server port
	Watch     bool   `koanf:"watch"`     // reload records on file change (web mode)
	Open      bool   `koanf:"open"`      // open the browser in web mode
	Output    string `koanf:"output"`    // static image path
	Seed      int64  `koanf:"seed"`      // layout seed
	Verbosity string `koanf:"verbosity"` // debug, info, warn, error
	JSONLogs  bool   `koanf:"json-logs"`
}

// Load loads configuration from defaults, config file, environment
// variables, and flags. Priority: Flags > Env > Config File > Defaults.
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"records":   "container_info.json",
		"unit":      "",
		"all":       false,
		"init":      false,
		"web":       false,
		"port":      8080,
		"watch":     false,
		"open":      true,
		"output":    "impact-graph.png",
		"seed":      42,
		"verbosity": "info",
		"json-logs": false,
	}
	if err := k.Load(makeMapProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Optional config file; absence is fine.
	_ = k.Load(file.Provider("impactviz.toml"), toml.Parser())

	// Environment, e.g. IMPACTVIZ_PORT=9090.
	if err := k.Load(env.Provider("IMPACTVIZ_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, "IMPACTVIZ_")), "_", "-")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LogLevel maps the configured verbosity to a slog level, defaulting to
// info for unrecognized values.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Verbosity) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LayoutSeed returns the configured layout seed as the unsigned value the
// layout source wants.
func (c *Config) LayoutSeed() uint64 {
	return uint64(c.Seed)
}

// Helper to use a map as a koanf provider.
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
