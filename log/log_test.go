package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithWriter(&buf), WithFormat("json"), WithLevelName("debug"))

	ForEngine(logger, "gotext", "a.tmpl").Debug("evaluated", KeyRenderID, "r-1")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "evaluated", record["msg"])
	assert.Equal(t, "DEBUG", record["level"])
	assert.Equal(t, "gotext", record[KeyEngine])
	assert.Equal(t, "a.tmpl", record[KeyFile])
	assert.Equal(t, "r-1", record[KeyRenderID])
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithWriter(&buf), WithLevel(slog.LevelWarn))

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithLevelName_Unknown(t *testing.T) {
	cfg := defaultHandlerConfig()
	WithLevelName("chatty")(&cfg)
	WithFormat("xml")(&cfg)
	assert.Equal(t, slog.LevelInfo, cfg.level)
	assert.Equal(t, "text", cfg.format)
}

func TestContextLogger(t *testing.T) {
	logger := Discard()
	ctx := WithLogger(context.Background(), logger)

	assert.Same(t, logger, FromContext(ctx))
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}
