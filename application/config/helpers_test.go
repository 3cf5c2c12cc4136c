package config_test

import (
	"testing"

	"github.com/reglet-dev/tmplkit/application/config"
	"github.com/reglet-dev/tmplkit/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	cfg := config.Config{
		"name": "site",
		"site": map[string]any{
			"title": "Docs",
			"meta":  entities.Locals{"lang": "en"},
		},
		"count": 3,
	}

	tests := []struct {
		path  string
		want  any
		found bool
	}{
		{path: "name", want: "site", found: true},
		{path: "site.title", want: "Docs", found: true},
		{path: "site.meta.lang", want: "en", found: true},
		{path: "count", want: 3, found: true},
		{path: "site.missing", found: false},
		{path: "name.deeper", found: false},
		{path: "", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := config.Lookup(cfg, tt.path)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetString(t *testing.T) {
	cfg := config.Config{"site": map[string]any{"title": "Docs"}, "count": 3}

	s, ok := config.GetString(cfg, "site.title")
	assert.True(t, ok)
	assert.Equal(t, "Docs", s)

	_, ok = config.GetString(cfg, "count")
	assert.False(t, ok)

	assert.Equal(t, "fallback", config.GetStringDefault(cfg, "site.author", "fallback"))
	assert.Equal(t, "fallback", config.GetStringDefault(cfg, "count", "fallback"))
	assert.Equal(t, "fallback", config.GetStringDefault(nil, "site.title", "fallback"))
}

func TestSet(t *testing.T) {
	t.Run("creates intermediate maps", func(t *testing.T) {
		cfg := config.Config{}
		require.NoError(t, config.Set(cfg, "site.meta.lang", "en"))
		require.NoError(t, config.Set(cfg, "site.title", "Docs"))
		require.NoError(t, config.Set(cfg, "env", "prod"))

		assert.Equal(t, config.Config{
			"site": map[string]any{
				"meta":  map[string]any{"lang": "en"},
				"title": "Docs",
			},
			"env": "prod",
		}, cfg)
	})

	t.Run("descends into existing maps", func(t *testing.T) {
		meta := entities.Locals{"lang": "en"}
		cfg := config.Config{"meta": meta}
		require.NoError(t, config.Set(cfg, "meta.lang", "fr"))
		assert.Equal(t, "fr", meta["lang"])
	})

	t.Run("refuses to overwrite a scalar", func(t *testing.T) {
		cfg := config.Config{"site": "plain"}
		err := config.Set(cfg, "site.title", "Docs")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "site is a string")
		assert.Equal(t, "plain", cfg["site"])
	})

	t.Run("rejects empty segments", func(t *testing.T) {
		cfg := config.Config{}
		for _, path := range []string{"", "a..b", ".a", "a."} {
			assert.Error(t, config.Set(cfg, path, "x"), path)
		}
		assert.Empty(t, cfg)
	})

	t.Run("nil map", func(t *testing.T) {
		assert.Error(t, config.Set(nil, "a", "x"))
	})
}
