// Package log configures structured logging (slog) for tmplkit.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Attribute keys shared by every component.
const (
	KeyEngine   = "engine"
	KeyFile     = "file"
	KeyRenderID = "render_id"
)

// HandlerOption configures the logger built by New.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	writer    io.Writer
	format    string
	level     slog.Level
	addSource bool
}

// defaultHandlerConfig returns the default configuration.
func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		writer: os.Stderr,
		format: "text",
		level:  slog.LevelInfo,
	}
}

// WithLevel sets the minimum log level to report.
func WithLevel(level slog.Level) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithLevelName sets the level from its name ("debug", "info", "warn", "error").
// Unknown names leave the level unchanged.
func WithLevelName(name string) HandlerOption {
	return func(c *handlerConfig) {
		var level slog.Level
		if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err == nil {
			c.level = level
		}
	}
}

// WithFormat selects "text" or "json" output.
func WithFormat(format string) HandlerOption {
	return func(c *handlerConfig) {
		if format == "json" || format == "text" {
			c.format = format
		}
	}
}

// WithWriter sets the destination of log records.
func WithWriter(w io.Writer) HandlerOption {
	return func(c *handlerConfig) {
		if w != nil {
			c.writer = w
		}
	}
}

// WithSource enables reporting of source location (file/line).
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// New builds a logger with the given options.
func New(opts ...HandlerOption) *slog.Logger {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     cfg.level,
		AddSource: cfg.addSource,
	}

	var handler slog.Handler
	if cfg.format == "json" {
		handler = slog.NewJSONHandler(cfg.writer, handlerOpts)
	} else {
		handler = slog.NewTextHandler(cfg.writer, handlerOpts)
	}
	return slog.New(handler)
}

// Setup builds a logger and installs it as the slog default.
func Setup(opts ...HandlerOption) *slog.Logger {
	logger := New(opts...)
	slog.SetDefault(logger)
	return logger
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
