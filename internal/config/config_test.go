package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/danmuck/fbxtree/internal/dump"
	"github.com/danmuck/fbxtree/internal/fbxbin"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fbxtree.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	path := writeConfig(t, `
format = "YAML"
show_attributes = false
log_level = "debug"
metrics_out = "/var/lib/node_exporter/fbxtree.prom"
max_depth = 32
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Format != dump.FormatYAML {
		t.Fatalf("unexpected format: %q", cfg.Format)
	}
	if cfg.ShowAttributes {
		t.Fatalf("expected show_attributes=false to override the default")
	}
	if cfg.LogLevel != "debug" || cfg.MetricsOut != "/var/lib/node_exporter/fbxtree.prom" {
		t.Fatalf("unexpected log/metrics settings: %+v", cfg)
	}
	if cfg.Limits.MaxDepth != 32 {
		t.Fatalf("unexpected max depth: %d", cfg.Limits.MaxDepth)
	}
	defaults := fbxbin.DefaultLimits()
	if cfg.Limits.MaxArrayElements != defaults.MaxArrayElements || cfg.Limits.MaxStringBytes != defaults.MaxStringBytes {
		t.Fatalf("undefined keys must keep defaults: %+v", cfg.Limits)
	}
	if cfg.Output != "" {
		t.Fatalf("unexpected output: %q", cfg.Output)
	}
}

func TestLoadEmptyFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"format":      `format = "xml"`,
		"log level":   `log_level = "loud"`,
		"depth":       `max_depth = -1`,
		"unknown key": `colour = "blue"`,
	}
	for name, content := range cases {
		if _, err := Load(writeConfig(t, content)); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
	}
	if _, err := Load(writeConfig(t, `format = `)); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestTemplateLoadsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fbxtree.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("template must round-trip to defaults, got %+v", cfg)
	}
	if err := WriteTemplate(path, false); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
	if err := WriteTemplate(path, true); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}
