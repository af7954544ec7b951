// Package config provides configuration types, defaults, and persistence
// for vimshot.
package config

import (
	"time"

	"github.com/zjrosen/vimshot/internal/render"
	"github.com/zjrosen/vimshot/internal/tracing"
)

// Config is the top-level configuration, populated from the config file and
// flags via viper.
type Config struct {
	// Language is the default language id when none is given on the
	// command line.
	Language string `mapstructure:"language" yaml:"language"`

	// Theme holds the effect class names emitted in HTML output.
	Theme render.Theme `mapstructure:"theme" yaml:"theme"`

	// StatusBar toggles the decorative mode line trailer.
	StatusBar bool `mapstructure:"status_bar" yaml:"status_bar"`

	// Structural lists languages whose grammars group rule structure into
	// nested nodes (kept intact through effect application).
	Structural []string `mapstructure:"structural" yaml:"structural"`

	// RecursiveTypes is the set of node types that always keep nested
	// structure. Overrides the built-in table when non-empty.
	RecursiveTypes []string `mapstructure:"recursive_types" yaml:"recursive_types"`

	// WatchDebounce is the quiet period before a changed file re-renders.
	WatchDebounce time.Duration `mapstructure:"watch_debounce" yaml:"watch_debounce"`

	// Debug enables the debug log (also VIMSHOT_DEBUG).
	Debug bool `mapstructure:"debug" yaml:"debug"`

	// LogPath is the debug log file location.
	LogPath string `mapstructure:"log_path" yaml:"log_path"`

	// Tracing configures the tracing subsystem.
	Tracing tracing.Config `mapstructure:"tracing" yaml:"tracing"`
}

// Defaults returns the stock configuration.
func Defaults() Config {
	return Config{
		Language:      "",
		Theme:         render.DefaultTheme(),
		StatusBar:     true,
		Structural:    []string{"css"},
		WatchDebounce: 250 * time.Millisecond,
		Debug:         false,
		LogPath:       "vimshot.log",
		Tracing:       tracing.DefaultConfig(),
	}
}

// RecursiveTypeSet converts the configured type list to the lookup table
// the adapter wants. Nil means "use the built-in default table".
func (c Config) RecursiveTypeSet() map[string]bool {
	if len(c.RecursiveTypes) == 0 {
		return nil
	}
	set := make(map[string]bool, len(c.RecursiveTypes))
	for _, t := range c.RecursiveTypes {
		set[t] = true
	}
	return set
}
