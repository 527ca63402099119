package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/fbxtree/internal/dump"
	"github.com/danmuck/fbxtree/internal/fbxbin"
	"github.com/danmuck/fbxtree/internal/logging"
)

var ErrInvalidConfig = errors.New("config: invalid")

// Config holds the resolved fbxtree settings.
type Config struct {
	Format         dump.Format
	Output         string
	ShowAttributes bool
	LogLevel       string
	MetricsOut     string
	Limits         fbxbin.Limits
}

// fileConfig maps fbxtree.toml keys.
type fileConfig struct {
	Format           string `toml:"format"`
	Output           string `toml:"output"`
	ShowAttributes   bool   `toml:"show_attributes"`
	LogLevel         string `toml:"log_level"`
	MetricsOut       string `toml:"metrics_out"`
	MaxArrayElements uint32 `toml:"max_array_elements"`
	MaxStringBytes   uint32 `toml:"max_string_bytes"`
	MaxDepth         int    `toml:"max_depth"`
}

func DefaultConfig() Config {
	return Config{
		Format:         dump.FormatText,
		ShowAttributes: true,
		LogLevel:       "info",
		Limits:         fbxbin.DefaultLimits(),
	}
}

// Load overlays the keys defined in the TOML file at path onto
// DefaultConfig and validates the result.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config %s: %w: unknown key %q", path, ErrInvalidConfig, undecoded[0].String())
	}

	if meta.IsDefined("format") {
		cfg.Format = dump.Format(strings.TrimSpace(raw.Format))
	}
	if meta.IsDefined("output") {
		cfg.Output = strings.TrimSpace(raw.Output)
	}
	if meta.IsDefined("show_attributes") {
		cfg.ShowAttributes = raw.ShowAttributes
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("metrics_out") {
		cfg.MetricsOut = strings.TrimSpace(raw.MetricsOut)
	}
	if meta.IsDefined("max_array_elements") {
		cfg.Limits.MaxArrayElements = raw.MaxArrayElements
	}
	if meta.IsDefined("max_string_bytes") {
		cfg.Limits.MaxStringBytes = raw.MaxStringBytes
	}
	if meta.IsDefined("max_depth") {
		cfg.Limits.MaxDepth = raw.MaxDepth
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate normalises Format and rejects unusable values.
func (c *Config) Validate() error {
	format, err := dump.ParseFormat(string(c.Format))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	c.Format = format
	if _, ok := logging.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.Limits.MaxDepth < 0 {
		return fmt.Errorf("%w: max_depth %d is negative", ErrInvalidConfig, c.Limits.MaxDepth)
	}
	return nil
}
