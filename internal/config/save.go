package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WriteDefaultConfig writes the default configuration to path, creating
// parent directories as needed. It refuses to overwrite an existing file.
func WriteDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(Defaults())
	if err != nil {
		return fmt.Errorf("marshaling defaults: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil { //nolint:gosec // config file is not sensitive
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
