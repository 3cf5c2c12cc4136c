package sanitize_test

import (
	"context"
	"testing"

	"github.com/reglet-dev/tmplkit/application/engine"
	"github.com/reglet-dev/tmplkit/application/library"
	"github.com/reglet-dev/tmplkit/domain/entities"
	"github.com/reglet-dev/tmplkit/infrastructure/engines/sanitize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplate_Evaluate(t *testing.T) {
	const input = `<p onclick="steal()">Hi <b>there</b><script>alert(1)</script></p>`

	tests := []struct {
		name   string
		policy string
		want   string
	}{
		{"default is ugc", "", `<p>Hi <b>there</b></p>`},
		{"ugc", sanitize.PolicyUGC, `<p>Hi <b>there</b></p>`},
		{"strict", sanitize.PolicyStrict, `Hi there`},
	}

	reg := engine.NewRegistry()
	reg.MustRegister(sanitize.Spec())
	libs := library.NewRegistry()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := entities.Locals{}
			if tt.policy != "" {
				opts["policy"] = tt.policy
			}
			tpl, err := reg.New(sanitize.Name, "comment.html.sanitize", []byte(input), engine.Deps{Libraries: libs, Options: opts})
			require.NoError(t, err)

			out, err := tpl.Evaluate(context.Background(), nil, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
		})
	}
}

func TestSpec_RejectsUnknownPolicy(t *testing.T) {
	reg := engine.NewRegistry()
	reg.MustRegister(sanitize.Spec())

	err := reg.ValidateOptions(sanitize.Name, entities.Locals{"policy": "lenient"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oneof")
}

func TestSharedPolicy(t *testing.T) {
	libs := library.NewRegistry()

	a, err := sanitize.SharedPolicy(libs, "")
	require.NoError(t, err)
	b, err := sanitize.SharedPolicy(libs, sanitize.PolicyUGC)
	require.NoError(t, err)
	assert.Same(t, a, b)

	_, err = sanitize.SharedPolicy(libs, "bogus")
	require.Error(t, err)
	assert.False(t, libs.Has("bluemonday.bogus"))
}
