package pongo_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reglet-dev/tmplkit/application/engine"
	"github.com/reglet-dev/tmplkit/application/library"
	"github.com/reglet-dev/tmplkit/domain/entities"
	"github.com/reglet-dev/tmplkit/infrastructure/engines/pongo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type helpers map[string]any

func (h helpers) Helpers() map[string]any { return h }

type service struct {
	Name  string   `json:"name"`
	Ports []int    `json:"ports"`
	Tags  []string `json:"tags"`
}

func newTemplate(t *testing.T, libs *library.Registry, file, src string, opts entities.Locals) *pongo.Template {
	t.Helper()
	reg := engine.NewRegistry()
	reg.MustRegister(pongo.Spec())

	tpl, err := reg.New(pongo.Name, file, []byte(src), engine.Deps{Libraries: libs, Options: opts})
	require.NoError(t, err)
	return tpl.(*pongo.Template)
}

func TestTemplate_Evaluate(t *testing.T) {
	ctx := context.Background()
	libs := library.NewRegistry()

	t.Run("variables and filters", func(t *testing.T) {
		tpl := newTemplate(t, libs, "hello.txt.tpl", `Hello {{ name|upper }}`, nil)

		out, err := tpl.Evaluate(ctx, nil, entities.Locals{"name": "ada"})
		require.NoError(t, err)
		assert.Equal(t, "Hello ADA", string(out))
	})

	t.Run("structs are addressed by json name", func(t *testing.T) {
		src := `{{ svc.name }}:{% for p in svc.ports %}{{ p }}{% if not forloop.Last %},{% endif %}{% endfor %}`
		tpl := newTemplate(t, libs, "svc.tpl", src, nil)

		out, err := tpl.Evaluate(ctx, nil, entities.Locals{
			"svc": service{Name: "web", Ports: []int{80, 443}},
		})
		require.NoError(t, err)
		assert.Equal(t, "web:80,443", string(out))
	})

	t.Run("globals sit under locals", func(t *testing.T) {
		tpl := newTemplate(t, libs, "g.tpl", `{{ env }}/{{ region }}`, entities.Locals{
			"globals": map[string]any{"env": "prod", "region": "eu"},
		})

		out, err := tpl.Evaluate(ctx, nil, entities.Locals{"region": "us"})
		require.NoError(t, err)
		assert.Equal(t, "prod/us", string(out))
	})

	t.Run("context helpers are callable", func(t *testing.T) {
		tpl := newTemplate(t, libs, "h.tpl", `{{ shout("hi") }}`, nil)

		out, err := tpl.Evaluate(ctx, helpers{"shout": strings.ToUpper}, nil)
		require.NoError(t, err)
		assert.Equal(t, "HI", string(out))
	})

	t.Run("syntax errors name the file", func(t *testing.T) {
		tpl := newTemplate(t, libs, "broken.tpl", `{% if %}`, nil)

		_, err := tpl.Evaluate(ctx, nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broken.tpl")
	})
}

func TestTemplate_Include(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "footer.html"), []byte("-- {{ who }}"), 0o600))

	tpl := newTemplate(t, library.NewRegistry(), "page.html.tpl", `body {% include "footer.html" %}`,
		entities.Locals{"root": dir})

	out, err := tpl.Evaluate(context.Background(), nil, entities.Locals{"who": "ops"})
	require.NoError(t, err)
	assert.Equal(t, "body -- ops", string(out))
}

func TestSharedSet_OncePerRegistry(t *testing.T) {
	libs := library.NewRegistry()

	first, err := pongo.SharedSet(libs, "")
	require.NoError(t, err)
	second, err := pongo.SharedSet(libs, "")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.True(t, libs.Has("pongo2"))

	other, err := pongo.SharedSet(library.NewRegistry(), "")
	require.NoError(t, err)
	assert.NotSame(t, first, other)
}

func TestSharedSet_RejectsForeignValue(t *testing.T) {
	libs := library.NewRegistry()
	libs.Set("pongo2", "not a set")

	_, err := pongo.SharedSet(libs, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "holds string")
}
