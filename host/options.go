package host

import "log/slog"

// executorConfig holds configuration for the Executor.
type executorConfig struct {
	logger         *slog.Logger
	hostModuleName string
}

func defaultExecutorConfig() executorConfig {
	return executorConfig{
		logger:         slog.Default(),
		hostModuleName: "tmplkit_host",
	}
}

// Option defines a functional option for configuring the Executor.
type Option func(*executorConfig)

// WithLogger routes guest log_message calls to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *executorConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHostModuleName overrides the name of the host module guests import from.
func WithHostModuleName(name string) Option {
	return func(c *executorConfig) {
		if name != "" {
			c.hostModuleName = name
		}
	}
}
