package wasm_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/reglet-dev/tmplkit/application/engine"
	"github.com/reglet-dev/tmplkit/domain/entities"
	domainerrors "github.com/reglet-dev/tmplkit/domain/errors"
	"github.com/reglet-dev/tmplkit/host"
	"github.com/reglet-dev/tmplkit/infrastructure/engines/wasm"
	"github.com/reglet-dev/tmplkit/infrastructure/resolver"
	"github.com/reglet-dev/tmplkit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// upper is a stand-in guest that uppercases the payload and rejects "fail".
type upper struct {
	export string
	last   wasm.Request
}

func (u *upper) Call(_ context.Context, export string, input []byte) ([]byte, error) {
	u.export = export
	if err := json.Unmarshal(input, &u.last); err != nil {
		return nil, err
	}
	resp := wasm.Response{Output: []byte(strings.ToUpper(string(u.last.Data)))}
	if string(u.last.Data) == "fail" {
		resp = wasm.Response{Error: "refusing to shout"}
	}
	return json.Marshal(resp)
}

type garbage struct{}

func (garbage) Call(context.Context, string, []byte) ([]byte, error) {
	return []byte("not json"), nil
}

func newLoader(modules map[string]any) *host.Loader {
	return host.NewLoader(
		host.WithResolver(resolver.NewStatic(modules)),
		host.WithLoaderLogger(log.Discard()),
	)
}

func TestTemplate_Evaluate(t *testing.T) {
	guest := &upper{}
	loader := newLoader(map[string]any{"upper": guest})

	tpl := wasm.New("note.txt", []byte("hello"), loader, wasm.Options{Module: "upper"})
	out, err := tpl.Evaluate(context.Background(), nil, entities.Locals{"k": "v"})
	require.NoError(t, err)

	assert.Equal(t, "HELLO", string(out))
	assert.Equal(t, wasm.DefaultExport, guest.export)
	assert.Equal(t, "note.txt", guest.last.File)
	assert.Equal(t, "v", guest.last.Locals["k"])
}

func TestTemplate_CustomExport(t *testing.T) {
	guest := &upper{}
	tpl := wasm.New("a", []byte("x"), newLoader(map[string]any{"upper": guest}),
		wasm.Options{Module: "upper", Export: "render"})

	_, err := tpl.Evaluate(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "render", guest.export)
}

func TestTemplate_GuestErrors(t *testing.T) {
	loader := newLoader(map[string]any{"upper": &upper{}, "garbage": garbage{}})

	_, err := wasm.New("a", []byte("fail"), loader, wasm.Options{Module: "upper"}).
		Evaluate(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to shout")

	_, err = wasm.New("a", []byte("x"), loader, wasm.Options{Module: "garbage"}).
		Evaluate(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed response")
}

func TestTemplate_LogsGuestErrors(t *testing.T) {
	loader := newLoader(map[string]any{"upper": &upper{}})

	t.Run("explicit logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.New(log.WithWriter(&buf), log.WithFormat("json"))

		_, err := wasm.New("a", []byte("fail"), loader, wasm.Options{Module: "upper"}).
			WithLogger(logger).
			Evaluate(context.Background(), nil, nil)
		require.Error(t, err)

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "WARN", record["level"])
		assert.Equal(t, "module reported an error", record["msg"])
		assert.Equal(t, "upper", record["module"])
		assert.Equal(t, wasm.DefaultExport, record["export"])
		assert.Equal(t, "refusing to shout", record["error"])
	})

	t.Run("context logger", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := log.WithLogger(context.Background(), log.New(log.WithWriter(&buf)))

		_, err := wasm.New("a", []byte("fail"), loader, wasm.Options{Module: "upper"}).
			Evaluate(ctx, nil, nil)
		require.Error(t, err)
		assert.Contains(t, buf.String(), "module reported an error")
	})

	t.Run("factory uses deps logger", func(t *testing.T) {
		var buf bytes.Buffer
		tpl, err := wasm.Spec().Factory("a", []byte("fail"), engine.Deps{
			Loader:  loader,
			Logger:  log.New(log.WithWriter(&buf)),
			Options: entities.Locals{"module": "upper"},
		})
		require.NoError(t, err)

		_, err = tpl.Evaluate(context.Background(), nil, nil)
		require.Error(t, err)
		assert.Contains(t, buf.String(), "module=upper")
	})
}

func TestTemplate_MissingDependency(t *testing.T) {
	tpl := wasm.New("page.md", nil, newLoader(nil), wasm.Options{Module: "markdown"})

	_, err := tpl.Evaluate(context.Background(), nil, nil)
	require.Error(t, err)

	var missing *domainerrors.DependencyMissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "markdown", missing.Name)
	assert.Equal(t, "page.md", missing.File)
	assert.True(t, errors.Is(err, domainerrors.ErrModuleNotFound))
}

func TestTemplate_NoLoader(t *testing.T) {
	tpl := wasm.New("page.md", nil, nil, wasm.Options{Module: "markdown"})

	_, err := tpl.Evaluate(context.Background(), nil, nil)
	assert.ErrorIs(t, err, domainerrors.ErrDependencyMissing)
}

func TestTemplate_NotCallable(t *testing.T) {
	tpl := wasm.New("a", nil, newLoader(map[string]any{"odd": 42}), wasm.Options{Module: "odd"})

	_, err := tpl.Evaluate(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a callable module")
}

func TestSpec_RequiresModule(t *testing.T) {
	reg := engine.NewRegistry()
	reg.MustRegister(wasm.Spec())

	err := reg.ValidateOptions(wasm.Name, entities.Locals{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Module")

	_, err = reg.ForExtension(".wasm")
	assert.Error(t, err)
}

var _ wasm.Caller = (*host.Module)(nil)
