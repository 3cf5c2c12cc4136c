// Package tmplkit wires the library registry, dependency loader, engine
// registry and pipeline into a ready-to-use renderer.
package tmplkit

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/reglet-dev/tmplkit/application/config"
	"github.com/reglet-dev/tmplkit/application/engine"
	"github.com/reglet-dev/tmplkit/application/library"
	"github.com/reglet-dev/tmplkit/application/pipeline"
	"github.com/reglet-dev/tmplkit/domain/entities"
	"github.com/reglet-dev/tmplkit/domain/errors"
	"github.com/reglet-dev/tmplkit/host"
	"github.com/reglet-dev/tmplkit/infrastructure/engines"
	"github.com/reglet-dev/tmplkit/infrastructure/metrics"
	"github.com/reglet-dev/tmplkit/infrastructure/parser"
	"github.com/reglet-dev/tmplkit/infrastructure/resolver"
)

// Re-exported so callers need a single import.
type (
	Config      = entities.Config
	Locals      = entities.Locals
	ErrorDetail = entities.ErrorDetail
	Result      = pipeline.Result
)

// ErrClosed is returned by Render after Close.
var ErrClosed = errors.ErrClosed

// ToErrorDetail converts err into a structured ErrorDetail.
func ToErrorDetail(err error) *ErrorDetail {
	return errors.ToErrorDetail(err)
}

type kitConfig struct {
	logger     *slog.Logger
	registerer prometheus.Registerer
	modules    map[string]any
	helpers    map[string]any
	specs      []engine.Spec
}

// Option configures a Kit.
type Option func(*kitConfig)

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(c *kitConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics registers evaluation metrics on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *kitConfig) {
		c.registerer = reg
	}
}

// WithModule makes mod available to engines as the dependency name. Static
// modules are consulted before WASM module paths.
func WithModule(name string, mod any) Option {
	return func(c *kitConfig) {
		c.modules[name] = mod
	}
}

// WithHelper exposes fn to engines that accept helper functions.
func WithHelper(name string, fn any) Option {
	return func(c *kitConfig) {
		c.helpers[name] = fn
	}
}

// WithEngine registers an engine alongside the built-ins.
func WithEngine(spec engine.Spec) Option {
	return func(c *kitConfig) {
		c.specs = append(c.specs, spec)
	}
}

// Kit is a configured renderer. Close releases the WASM runtime.
type Kit struct {
	libraries *library.Registry
	loader    *host.Loader
	engines   *engine.Registry
	pipeline  *pipeline.Pipeline
	executor  *host.Executor
	metrics   *metrics.Collector

	mu     sync.RWMutex
	closed bool
}

// New validates cfg and builds a Kit. A WASM runtime is started only when
// cfg lists module paths.
func New(ctx context.Context, cfg Config, opts ...Option) (*Kit, error) {
	kc := kitConfig{
		logger:  slog.Default(),
		modules: map[string]any{},
		helpers: map[string]any{},
	}
	for _, opt := range opts {
		opt(&kc)
	}

	if err := config.Validate(&cfg); err != nil {
		return nil, err
	}

	k := &Kit{
		libraries: library.NewRegistry(),
		engines:   engine.NewRegistry(),
	}
	if err := engines.Register(k.engines); err != nil {
		return nil, err
	}
	for _, spec := range kc.specs {
		if err := k.engines.Register(spec); err != nil {
			return nil, err
		}
	}

	loaderOpts := []host.LoaderOption{
		host.WithLoaderLogger(kc.logger),
		host.WithResolver(resolver.NewStatic(kc.modules)),
	}
	if len(cfg.ModulePaths) > 0 {
		executor, err := host.NewExecutor(ctx, host.WithLogger(kc.logger))
		if err != nil {
			return nil, fmt.Errorf("failed to start wasm runtime: %w", err)
		}
		k.executor = executor
		loaderOpts = append(loaderOpts, host.WithResolver(host.NewWasmResolverFromDirs(executor, cfg.ModulePaths...)))
	}
	k.loader = host.NewLoader(loaderOpts...)

	pipeOpts := []pipeline.Option{
		pipeline.WithConfig(cfg),
		pipeline.WithLibraries(k.libraries),
		pipeline.WithLoader(k.loader),
		pipeline.WithLogger(kc.logger),
	}
	if kc.registerer != nil {
		collector, err := metrics.NewCollector(kc.registerer)
		if err != nil {
			k.closeQuietly(ctx)
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		k.metrics = collector
		pipeOpts = append(pipeOpts, pipeline.WithObserver(collector))
	}
	for name, fn := range kc.helpers {
		pipeOpts = append(pipeOpts, pipeline.WithHelper(name, fn))
	}

	p, err := pipeline.New(k.engines, pipeOpts...)
	if err != nil {
		k.closeQuietly(ctx)
		return nil, err
	}
	k.pipeline = p
	return k, nil
}

// Render evaluates data through the engine chain for file. It fails with
// ErrClosed once Close has been called.
func (k *Kit) Render(ctx context.Context, file string, data []byte, locals Locals) (*Result, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.closed {
		return nil, fmt.Errorf("render %s: %w", file, ErrClosed)
	}
	return k.pipeline.Render(ctx, file, data, locals)
}

// RenderFile reads path from disk and renders it.
func (k *Kit) RenderFile(ctx context.Context, path string, locals Locals) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return k.Render(ctx, path, data, locals)
}

// Engines returns the engine registry.
func (k *Kit) Engines() *engine.Registry {
	return k.engines
}

// Libraries returns the library registry shared by the kit's engines.
func (k *Kit) Libraries() *library.Registry {
	return k.libraries
}

// Loader returns the dependency loader.
func (k *Kit) Loader() *host.Loader {
	return k.loader
}

// Close waits for in-flight renders, drops the loaded dependencies and
// releases the WASM runtime, if one was started. Closing twice is a no-op.
func (k *Kit) Close(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return nil
	}
	k.closed = true

	if k.loader != nil {
		k.loader.Reset()
	}
	if k.executor == nil {
		return nil
	}
	return k.executor.Close(ctx)
}

func (k *Kit) closeQuietly(ctx context.Context) {
	_ = k.Close(ctx)
}

// LoadConfig reads and validates a YAML configuration file. Missing keys keep
// their defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := parser.NewYamlConfigParser().Parse(data)
	if err != nil {
		return Config{}, err
	}
	if err := config.Validate(cfg); err != nil {
		return Config{}, err
	}
	return *cfg, nil
}

// LoadLocals reads a YAML or JSON mapping of locals.
func LoadLocals(path string) (Locals, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read locals: %w", err)
	}
	return parser.NewYamlLocalsParser().Parse(data)
}
