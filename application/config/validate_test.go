package config_test

import (
	"errors"
	"testing"

	"github.com/reglet-dev/tmplkit/application/config"
	"github.com/reglet-dev/tmplkit/domain/entities"
	domainerrors "github.com/reglet-dev/tmplkit/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sanitizeOptions struct {
	Policy string   `json:"policy" validate:"required,oneof=strict ugc"`
	Allow  []string `json:"allow"`
}

func TestDecode(t *testing.T) {
	var opts sanitizeOptions
	err := config.Decode(config.Config{"policy": "ugc", "allow": []any{"svg"}}, &opts)
	require.NoError(t, err)
	assert.Equal(t, "ugc", opts.Policy)
	assert.Equal(t, []string{"svg"}, opts.Allow)
}

func TestDecode_ValidationFailure(t *testing.T) {
	var opts sanitizeOptions
	err := config.Decode(config.Config{"policy": "loose"}, &opts)
	require.Error(t, err)

	var cfgErr *domainerrors.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "sanitizeOptions.Policy", cfgErr.Field)
	assert.Contains(t, err.Error(), "oneof")
}

func TestDecode_TypeMismatch(t *testing.T) {
	var opts sanitizeOptions
	err := config.Decode(config.Config{"policy": 12}, &opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal config into struct")
}

func TestValidate_Config(t *testing.T) {
	good := entities.NewConfig(entities.WithModulePaths("modules"))
	assert.NoError(t, config.Validate(good))

	bad := entities.Config{LogLevel: "loud"}
	err := config.Validate(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LogLevel")
}
