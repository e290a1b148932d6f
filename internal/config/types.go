// Package config provides leapviz configuration.
// Values are layered from defaults, leapviz.yaml, LEAPVIZ_ environment
// variables and explicitly set command-line flags, in increasing priority.
package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// Config holds all configuration options.
type Config struct {
	Output   string        `koanf:"output"`
	Grammar  string        `koanf:"grammar"`
	TabWidth int           `koanf:"tab_width"`
	Verbose  bool          `koanf:"verbose"`
	LogLevel string        `koanf:"log_level"`
	Plugins  PluginsConfig `koanf:"plugins"`
	Layout   LayoutConfig  `koanf:"layout"`

	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

// PluginsConfig selects the built-in render plugins.
type PluginsConfig struct {
	Enabled []string `koanf:"enabled"`
}

// LayoutConfig is the space passed to plugins before rendering.
type LayoutConfig struct {
	Width  int `koanf:"width"`
	Height int `koanf:"height"`
}

// Output modes.
const (
	OutputAuto     = "auto"
	OutputText     = "text"
	OutputJSON     = "json"
	OutputMarkdown = "markdown"
)

// Literal grammars for fallback drill text.
const (
	GrammarMalloy = "malloy"
	GrammarSQL    = "sql"
)

var (
	outputModes = []string{OutputAuto, OutputText, OutputJSON, OutputMarkdown}
	grammars    = []string{GrammarMalloy, GrammarSQL}
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !slices.Contains(outputModes, c.Output) {
		return fmt.Errorf("invalid output %q (expected %s)", c.Output, strings.Join(outputModes, "|"))
	}
	if !slices.Contains(grammars, c.Grammar) {
		return fmt.Errorf("invalid grammar %q (expected %s)", c.Grammar, strings.Join(grammars, "|"))
	}
	if c.TabWidth <= 0 {
		return fmt.Errorf("tab_width must be positive, got %d", c.TabWidth)
	}
	if c.Layout.Width < 0 || c.Layout.Height < 0 {
		return fmt.Errorf("layout must not be negative, got %dx%d", c.Layout.Width, c.Layout.Height)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns the log level. Verbose forces debug.
func (c *Config) Level() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", s, err)
	}
	return level, nil
}
