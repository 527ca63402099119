package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

const templateHeader = `# fbxtree configuration. Command line flags override these values.
# format: text | json | yaml | cbor
# limits: 0 disables a check

`

// Template renders cfg as an fbxtree.toml document.
func Template(cfg Config) (string, error) {
	raw := fileConfig{
		Format:           string(cfg.Format),
		Output:           cfg.Output,
		ShowAttributes:   cfg.ShowAttributes,
		LogLevel:         cfg.LogLevel,
		MetricsOut:       cfg.MetricsOut,
		MaxArrayElements: cfg.Limits.MaxArrayElements,
		MaxStringBytes:   cfg.Limits.MaxStringBytes,
		MaxDepth:         cfg.Limits.MaxDepth,
	}
	var buf bytes.Buffer
	buf.WriteString(templateHeader)
	if err := toml.NewEncoder(&buf).Encode(raw); err != nil {
		return "", fmt.Errorf("render config template: %w", err)
	}
	return buf.String(), nil
}

// WriteTemplate writes the default configuration to path.
func WriteTemplate(path string, overwrite bool) error {
	template, err := Template(DefaultConfig())
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}
