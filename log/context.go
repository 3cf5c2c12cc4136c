package log

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger stored in ctx, or the slog default.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// ForEngine scopes logger to an engine and file.
func ForEngine(logger *slog.Logger, engine, file string) *slog.Logger {
	return logger.With(KeyEngine, engine, KeyFile, file)
}
