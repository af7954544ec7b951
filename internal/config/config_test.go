package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	require.True(t, cfg.StatusBar)
	require.Equal(t, []string{"css"}, cfg.Structural)
	require.Equal(t, 250*time.Millisecond, cfg.WatchDebounce)
	require.Equal(t, "cursor", cfg.Theme.Cursor)
	require.Equal(t, "selected", cfg.Theme.Selection)
	require.False(t, cfg.Debug)
	require.False(t, cfg.Tracing.Enabled)
}

func TestRecursiveTypeSet_EmptyMeansBuiltin(t *testing.T) {
	require.Nil(t, Config{}.RecursiveTypeSet())
}

func TestRecursiveTypeSet_Override(t *testing.T) {
	cfg := Config{RecursiveTypes: []string{"rule", "atrule"}}
	set := cfg.RecursiveTypeSet()
	require.Equal(t, map[string]bool{"rule": true, "atrule": true}, set)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var cfg Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	require.Equal(t, Defaults().Theme, cfg.Theme)
	require.Equal(t, Defaults().Structural, cfg.Structural)
}

func TestWriteDefaultConfig_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))
	require.Error(t, WriteDefaultConfig(path))
}
