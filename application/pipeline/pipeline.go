// Package pipeline evaluates a file through the chain of engines named by its
// extensions, innermost engine last.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/reglet-dev/tmplkit/application/engine"
	"github.com/reglet-dev/tmplkit/application/template"
	"github.com/reglet-dev/tmplkit/domain/entities"
	"github.com/reglet-dev/tmplkit/domain/errors"
	"github.com/reglet-dev/tmplkit/domain/ports"
	"github.com/reglet-dev/tmplkit/log"
)

// Observer receives one call per engine evaluation.
type Observer interface {
	Observe(engine string, elapsed time.Duration, err error)
}

type pipelineConfig struct {
	libs     ports.LibraryRegistry
	loader   ports.DependencyLoader
	logger   *slog.Logger
	observer Observer
	helpers  map[string]any
	settings entities.Config
}

func defaultPipelineConfig() pipelineConfig {
	return pipelineConfig{
		logger:   slog.Default(),
		helpers:  map[string]any{},
		settings: entities.DefaultConfig(),
	}
}

// Option configures a Pipeline.
type Option func(*pipelineConfig)

// WithLibraries sets the library registry handed to engines.
func WithLibraries(libs ports.LibraryRegistry) Option {
	return func(c *pipelineConfig) {
		c.libs = libs
	}
}

// WithLoader sets the dependency loader handed to engines.
func WithLoader(loader ports.DependencyLoader) Option {
	return func(c *pipelineConfig) {
		c.loader = loader
	}
}

// WithLogger sets the logger. Renders log through a child carrying the render ID.
func WithLogger(logger *slog.Logger) Option {
	return func(c *pipelineConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver reports every evaluation to o.
func WithObserver(o Observer) Option {
	return func(c *pipelineConfig) {
		c.observer = o
	}
}

// WithHelper exposes fn to engines under name.
func WithHelper(name string, fn any) Option {
	return func(c *pipelineConfig) {
		c.helpers[name] = fn
	}
}

// WithConfig supplies engine options, extension mappings and disabled engines.
func WithConfig(cfg entities.Config) Option {
	return func(c *pipelineConfig) {
		c.settings = cfg
	}
}

// Pipeline renders files through engines found in a Registry.
type Pipeline struct {
	engines *engine.Registry
	config  pipelineConfig
}

// New creates a Pipeline over engines. Extension mappings from the config are
// applied to engines, and the options of every configured engine are
// validated up front.
func New(engines *engine.Registry, opts ...Option) (*Pipeline, error) {
	if engines == nil {
		return nil, fmt.Errorf("pipeline: engine registry is required")
	}
	cfg := defaultPipelineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	for ext, name := range cfg.settings.Extensions {
		if err := engines.Map(ext, name); err != nil {
			return nil, fmt.Errorf("pipeline: map %s: %w", ext, err)
		}
	}
	for name, engineOpts := range cfg.settings.Engines {
		if err := engines.ValidateOptions(name, engineOpts); err != nil {
			return nil, err
		}
	}

	return &Pipeline{engines: engines, config: cfg}, nil
}

// Result is the outcome of one render.
type Result struct {
	RenderID string
	File     string

	// ContentType is reported by the last engine in the chain that declares one.
	ContentType string

	Output []byte

	// Engines lists the engines that ran, in evaluation order.
	Engines []string
}

// Chain returns the names of the engines Render would run for file.
func (p *Pipeline) Chain(file string) []string {
	var names []string
	for _, spec := range p.engines.ForPath(file) {
		if !p.config.settings.IsDisabled(spec.Name) {
			names = append(names, spec.Name)
		}
	}
	return names
}

// Render evaluates data through the chain for file. Each step constructs a
// fresh template over the previous step's output. The first failure ends the
// render and is returned as a *errors.EvaluationError wrapping the engine's
// error. A file with no registered extension renders to data unchanged.
func (p *Pipeline) Render(ctx context.Context, file string, data []byte, locals entities.Locals) (*Result, error) {
	res := &Result{
		RenderID: uuid.NewString(),
		File:     file,
		Output:   data,
	}
	if locals == nil {
		locals = entities.Locals{}
	}

	logger := p.config.logger.With(log.KeyRenderID, res.RenderID)
	ctx = log.WithLogger(ctx, logger)
	rc := &Context{RenderID: res.RenderID, File: file, helpers: p.config.helpers}

	for _, spec := range p.engines.ForPath(file) {
		engineLogger := log.ForEngine(logger, spec.Name, file)
		if p.config.settings.IsDisabled(spec.Name) {
			engineLogger.DebugContext(ctx, "engine disabled, skipping")
			continue
		}

		tpl, err := p.engines.New(spec.Name, file, res.Output, engine.Deps{
			Libraries: p.config.libs,
			Loader:    p.config.loader,
			Logger:    engineLogger,
			Options:   p.config.settings.EngineOptions(spec.Name),
		})
		if err != nil {
			return nil, err
		}

		start := time.Now()
		out, err := template.Evaluate(ctx, tpl, rc, locals)
		elapsed := time.Since(start)
		if p.config.observer != nil {
			p.config.observer.Observe(spec.Name, elapsed, err)
		}
		if err != nil {
			engineLogger.ErrorContext(ctx, "evaluation failed", "error", err)
			return nil, &errors.EvaluationError{Engine: spec.Name, File: file, Err: err}
		}
		engineLogger.DebugContext(ctx, "evaluated", "bytes", len(out), "elapsed", elapsed)

		res.Output = out
		res.Engines = append(res.Engines, spec.Name)
		if spec.ContentType != "" {
			res.ContentType = spec.ContentType
		}
	}

	return res, nil
}

// Engines returns the registry the pipeline dispatches through.
func (p *Pipeline) Engines() *engine.Registry {
	return p.engines
}
