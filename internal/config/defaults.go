package config

// Default configuration values.
const (
	DefaultOutput   = OutputAuto
	DefaultGrammar  = GrammarMalloy
	DefaultTabWidth = 2
	DefaultLogLevel = "warn"
	DefaultWidth    = 80
	DefaultHeight   = 24
)

// DefaultPlugins are enabled when the config names none.
var DefaultPlugins = []string{"color_scale"}

func defaults() map[string]any {
	return map[string]any{
		"output":          DefaultOutput,
		"grammar":         DefaultGrammar,
		"tab_width":       DefaultTabWidth,
		"verbose":         false,
		"log_level":       DefaultLogLevel,
		"plugins.enabled": DefaultPlugins,
		"layout.width":    DefaultWidth,
		"layout.height":   DefaultHeight,
	}
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Output:   DefaultOutput,
		Grammar:  DefaultGrammar,
		TabWidth: DefaultTabWidth,
		LogLevel: DefaultLogLevel,
		Plugins:  PluginsConfig{Enabled: append([]string(nil), DefaultPlugins...)},
		Layout:   LayoutConfig{Width: DefaultWidth, Height: DefaultHeight},
	}
}
