package config

import (
	"log/slog"
	"testing"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Records != "container_info.json" {
		t.Errorf("records = %q", cfg.Records)
	}
	if cfg.Port != 8080 {
		t.Errorf("port = %d", cfg.Port)
	}
	if cfg.Output != "impact-graph.png" {
		t.Errorf("output = %q", cfg.Output)
	}
	if cfg.LayoutSeed() != 42 {
		t.Errorf("seed = %d", cfg.LayoutSeed())
	}
	if cfg.Web || cfg.Watch || cfg.All || cfg.Init {
		t.Errorf("boolean modes should default off: %+v", cfg)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("IMPACTVIZ_PORT", "9191")
	t.Setenv("IMPACTVIZ_VERBOSITY", "debug")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 9191 {
		t.Errorf("port = %d, want env override 9191", cfg.Port)
	}
	if cfg.LogLevel() != slog.LevelDebug {
		t.Errorf("log level = %v, want debug", cfg.LogLevel())
	}
}

func TestLoadFlagsBeatEnv(t *testing.T) {
	t.Setenv("IMPACTVIZ_PORT", "9191")

	f := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.Int("port", 8080, "")
	f.String("unit", "", "")
	if err := f.Parse([]string{"--port=7070", "--unit=node-a"}); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}

	cfg, err := Load(f)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 7070 {
		t.Errorf("port = %d, want flag override 7070", cfg.Port)
	}
	if cfg.Unit != "node-a" {
		t.Errorf("unit = %q", cfg.Unit)
	}
}

func TestLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":    slog.LevelDebug,
		"info":     slog.LevelInfo,
		"warn":     slog.LevelWarn,
		"error":    slog.LevelError,
		"":         slog.LevelInfo,
		"verbose?": slog.LevelInfo,
	}
	for verbosity, want := range cases {
		c := Config{Verbosity: verbosity}
		if got := c.LogLevel(); got != want {
			t.Errorf("LogLevel(%q) = %v, want %v", verbosity, got, want)
		}
	}
}
