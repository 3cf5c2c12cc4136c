package entities

// Config represents tmplkit configuration, usually loaded from tmplkit.yaml.
type Config struct {
	// LogLevel is the logging verbosity level ("debug", "info", "warn", "error").
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`

	// LogFormat selects the slog handler ("text" or "json").
	LogFormat string `json:"log_format,omitempty" yaml:"log_format,omitempty" validate:"omitempty,oneof=text json"`

	// ModulePaths are directories searched for WASM dependencies, in order.
	ModulePaths []string `json:"module_paths,omitempty" yaml:"module_paths,omitempty" validate:"dive,required"`

	// Engines holds per-engine options keyed by engine name.
	Engines map[string]Locals `json:"engines,omitempty" yaml:"engines,omitempty"`

	// Extensions maps additional file extensions to engine names, e.g. ".md": "wasm".
	Extensions map[string]string `json:"extensions,omitempty" yaml:"extensions,omitempty" validate:"dive,keys,required,endkeys,required"`

	// Disabled lists engine names that must not take part in chains.
	Disabled []string `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// ConfigOption is a functional option for configuring tmplkit settings.
type ConfigOption func(*Config)

// WithLogLevel sets the logging level.
func WithLogLevel(level string) ConfigOption {
	return func(c *Config) {
		if level != "" {
			c.LogLevel = level
		}
	}
}

// WithModulePaths appends WASM module search paths.
func WithModulePaths(paths ...string) ConfigOption {
	return func(c *Config) {
		c.ModulePaths = append(c.ModulePaths, paths...)
	}
}

// WithEngineOptions sets the options of one engine.
func WithEngineOptions(engine string, opts Locals) ConfigOption {
	return func(c *Config) {
		if c.Engines == nil {
			c.Engines = make(map[string]Locals)
		}
		c.Engines[engine] = opts
	}
}

// WithExtension routes ext to engine.
func WithExtension(ext, engine string) ConfigOption {
	return func(c *Config) {
		if c.Extensions == nil {
			c.Extensions = make(map[string]string)
		}
		c.Extensions[ext] = engine
	}
}

// NewConfig creates a Config with defaults and applies the given options.
func NewConfig(opts ...ConfigOption) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// EngineOptions returns the options for engine, never nil.
func (c Config) EngineOptions(engine string) Locals {
	if opts, ok := c.Engines[engine]; ok && opts != nil {
		return opts
	}
	return Locals{}
}

// IsDisabled reports whether engine is listed in Disabled.
func (c Config) IsDisabled(engine string) bool {
	for _, name := range c.Disabled {
		if name == engine {
			return true
		}
	}
	return false
}
