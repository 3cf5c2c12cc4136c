package host_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"testing/fstest"

	domainerrors "github.com/reglet-dev/tmplkit/domain/errors"
	"github.com/reglet-dev/tmplkit/domain/ports"
	"github.com/reglet-dev/tmplkit/host"
	"github.com/reglet-dev/tmplkit/infrastructure/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var emptyModule = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

type countingResolver struct {
	inner ports.ModuleResolver
	calls int
}

func (c *countingResolver) Resolve(ctx context.Context, name string) (any, error) {
	c.calls++
	return c.inner.Resolve(ctx, name)
}

type brokenResolver struct{}

func (brokenResolver) Resolve(_ context.Context, name string) (any, error) {
	return nil, fmt.Errorf("%s: corrupt archive", name)
}

// LoaderSuite tests the Loader over static and WASM resolvers.
type LoaderSuite struct {
	suite.Suite
	ctx      context.Context
	executor *host.Executor
	static   *resolver.Static
	counter  *countingResolver
	loader   *host.Loader
}

func (s *LoaderSuite) SetupTest() {
	s.ctx = context.Background()

	executor, err := host.NewExecutor(s.ctx)
	s.Require().NoError(err)
	s.executor = executor

	s.static = resolver.NewStatic(map[string]any{"markdown": &struct{ name string }{"md"}})
	s.counter = &countingResolver{inner: s.static}

	wasm := host.NewWasmResolver(executor, fstest.MapFS{
		"minify.wasm": &fstest.MapFile{Data: emptyModule},
	})

	s.loader = host.NewLoader(
		host.WithResolver(s.counter),
		host.WithResolver(wasm),
	)
}

func (s *LoaderSuite) TearDownTest() {
	s.Require().NoError(s.executor.Close(s.ctx))
}

func (s *LoaderSuite) TestRequireStatic() {
	mod, err := s.loader.Require(s.ctx, "markdown", "README.md")
	s.Require().NoError(err)
	s.NotNil(mod)
}

func (s *LoaderSuite) TestRequireIsIdempotent() {
	first, err := s.loader.Require(s.ctx, "markdown", "a.md")
	s.Require().NoError(err)
	second, err := s.loader.Require(s.ctx, "markdown", "b.md")
	s.Require().NoError(err)

	s.Same(first, second)
	s.Equal(1, s.counter.calls)
}

func (s *LoaderSuite) TestRequireWasm() {
	mod, err := s.loader.Require(s.ctx, "minify", "app.js")
	s.Require().NoError(err)

	wasmMod, ok := mod.(*host.Module)
	s.Require().True(ok)
	s.Equal("minify", wasmMod.Name())

	again, err := s.loader.Require(s.ctx, "minify", "other.js")
	s.Require().NoError(err)
	s.Same(mod, again)
	s.Equal([]string{"minify"}, s.loader.Loaded())
}

func (s *LoaderSuite) TestRequireMissing() {
	_, err := s.loader.Require(s.ctx, "definitely-not-installed", "app/style.scss")
	s.Require().Error(err)

	s.True(errors.Is(err, domainerrors.ErrDependencyMissing))
	s.True(errors.Is(err, domainerrors.ErrModuleNotFound))
	s.Contains(err.Error(), "definitely-not-installed")
	s.Contains(err.Error(), "app/style.scss")

	var depErr *domainerrors.DependencyMissingError
	s.Require().True(errors.As(err, &depErr))
	s.Equal("definitely-not-installed", depErr.Name)
	s.Equal("app/style.scss", depErr.File)
	s.Empty(s.loader.Loaded())
}

func (s *LoaderSuite) TestReset() {
	_, err := s.loader.Require(s.ctx, "markdown", "a.md")
	s.Require().NoError(err)
	s.Equal([]string{"markdown"}, s.loader.Loaded())

	s.loader.Reset()
	s.Empty(s.loader.Loaded())

	_, err = s.loader.Require(s.ctx, "markdown", "a.md")
	s.Require().NoError(err)
	s.Equal(2, s.counter.calls)
}

func (s *LoaderSuite) TestTryRequire() {
	ok := s.loader.TryRequire(s.ctx, "markdown", "a.md")
	s.True(ok.OK())
	s.NotNil(ok.Module)

	missing := s.loader.TryRequire(s.ctx, "sass", "a.scss")
	s.False(missing.OK())
	s.Nil(missing.Module)
	s.Equal("sass", missing.Name)
	s.ErrorIs(missing.Err, domainerrors.ErrDependencyMissing)
}

func TestLoaderSuite(t *testing.T) {
	suite.Run(t, new(LoaderSuite))
}

func TestLoader_NoResolvers(t *testing.T) {
	loader := host.NewLoader()

	_, err := loader.Require(context.Background(), "sass", "a.scss")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrDependencyMissing)
	assert.ErrorIs(t, err, domainerrors.ErrModuleNotFound)
}

func TestLoader_BrokenResolverStopsSearch(t *testing.T) {
	fallback := resolver.NewStatic(map[string]any{"sass": "fallback"})
	loader := host.NewLoader(
		host.WithResolver(brokenResolver{}),
		host.WithResolver(fallback),
	)

	_, err := loader.Require(context.Background(), "sass", "a.scss")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrDependencyMissing)
	assert.NotErrorIs(t, err, domainerrors.ErrModuleNotFound)
	assert.Contains(t, err.Error(), "corrupt archive")
}

func TestWasmResolver_InvalidName(t *testing.T) {
	ctx := context.Background()
	executor, err := host.NewExecutor(ctx)
	require.NoError(t, err)
	defer executor.Close(ctx)

	r := host.NewWasmResolver(executor, fstest.MapFS{})
	_, err = r.Resolve(ctx, "../escape")
	assert.ErrorIs(t, err, domainerrors.ErrModuleNotFound)
}
