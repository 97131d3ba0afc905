// ABOUTME: Writes a Config back to disk as YAML
// ABOUTME: Used by the init command to produce a starter config file

package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const fileHeader = "# concierge-gateway configuration\n# Generated by concierge-gateway init\n\n"

// WriteFile encodes cfg as YAML at path, creating parent directories.
// Secrets are written as given, so callers should prefer ${VAR} references.
func WriteFile(path string, cfg *Config) error {
	var buf bytes.Buffer
	buf.WriteString(fileHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
