// Package testutil provides assertions shared by tmplkit tests.
package testutil

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/tmplkit/application/template"
	"github.com/reglet-dev/tmplkit/domain/entities"
	"github.com/reglet-dev/tmplkit/domain/errors"
	"github.com/reglet-dev/tmplkit/domain/ports"
)

// AssertJSONEqual compares two JSON strings for equality, ignoring formatting
func AssertJSONEqual(t *testing.T, expected, actual string, msgAndArgs ...interface{}) {
	t.Helper()

	var expectedJSON, actualJSON interface{}
	require.NoError(t, json.Unmarshal([]byte(expected), &expectedJSON), "expected JSON is invalid")
	require.NoError(t, json.Unmarshal([]byte(actual), &actualJSON), "actual JSON is invalid")

	assert.Equal(t, expectedJSON, actualJSON, msgAndArgs...)
}

// AssertRenders evaluates tpl with locals and no render context and compares
// the output with want.
func AssertRenders(t *testing.T, tpl ports.Template, locals entities.Locals, want string, msgAndArgs ...interface{}) {
	t.Helper()

	out, err := template.Evaluate(context.Background(), tpl, nil, locals)
	require.NoError(t, err, msgAndArgs...)
	assert.Equal(t, want, string(out), msgAndArgs...)
}

// AssertErrorDetail asserts that err converts to an ErrorDetail of the given
// type and code.
func AssertErrorDetail(t *testing.T, err error, wantType, wantCode string) *entities.ErrorDetail {
	t.Helper()

	require.Error(t, err)
	detail := errors.ToErrorDetail(err)
	require.NotNil(t, detail)
	assert.Equal(t, wantType, detail.Type)
	assert.Equal(t, wantCode, detail.Code)
	return detail
}
