package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	domainerrors "github.com/reglet-dev/tmplkit/domain/errors"
	"github.com/reglet-dev/tmplkit/domain/ports"
)

// loaderConfig holds configuration for the Loader.
type loaderConfig struct {
	resolvers []ports.ModuleResolver
	logger    *slog.Logger
}

func defaultLoaderConfig() loaderConfig {
	return loaderConfig{
		logger: slog.Default(),
	}
}

// LoaderOption configures the Loader.
type LoaderOption func(*loaderConfig)

// WithResolver appends a resolver. Resolvers are consulted in the order added.
func WithResolver(r ports.ModuleResolver) LoaderOption {
	return func(c *loaderConfig) {
		if r != nil {
			c.resolvers = append(c.resolvers, r)
		}
	}
}

// WithLoaderLogger sets the logger used to report dependency resolution.
func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(c *loaderConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Loader acquires runtime dependencies by name and caches them, so repeated
// requests for the same name return the same reference.
type Loader struct {
	config loaderConfig

	mu    sync.Mutex
	cache map[string]any
}

// NewLoader creates a new Loader with defaults.
func NewLoader(opts ...LoaderOption) *Loader {
	cfg := defaultLoaderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Loader{
		config: cfg,
		cache:  make(map[string]any),
	}
}

// Require returns the module registered under name. When no resolver can
// provide it, the error is a *errors.DependencyMissingError naming both name
// and file; the resolver's cause stays reachable through errors.Unwrap.
func (l *Loader) Require(ctx context.Context, name, file string) (any, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if mod, ok := l.cache[name]; ok {
		return mod, nil
	}

	var cause error
	for _, r := range l.config.resolvers {
		mod, err := r.Resolve(ctx, name)
		if err == nil {
			l.cache[name] = mod
			l.config.logger.DebugContext(ctx, "dependency loaded", "dependency", name, "file", file)
			return mod, nil
		}
		cause = err
		if !errors.Is(err, domainerrors.ErrModuleNotFound) {
			// Found but unusable: later resolvers must not shadow the failure.
			break
		}
	}

	if cause == nil {
		cause = fmt.Errorf("no resolvers configured: %w", domainerrors.ErrModuleNotFound)
	}
	l.config.logger.WarnContext(ctx, "dependency missing", "dependency", name, "file", file, "error", cause)
	return nil, &domainerrors.DependencyMissingError{Name: name, File: file, Err: cause}
}

// Result is the outcome of TryRequire.
type Result struct {
	Err    error
	Module any
	Name   string
}

// OK reports whether the dependency was acquired.
func (r Result) OK() bool {
	return r.Err == nil
}

// TryRequire attempts to acquire name and reports the outcome instead of
// failing, so callers can choose a fallback.
func (l *Loader) TryRequire(ctx context.Context, name, file string) Result {
	mod, err := l.Require(ctx, name, file)
	return Result{Name: name, Module: mod, Err: err}
}

// Reset forgets every cached module. Later requests resolve again.
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.cache)
}

// Loaded returns the names of cached modules, sorted.
func (l *Loader) Loaded() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	names := make([]string, 0, len(l.cache))
	for name := range l.cache {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var _ ports.DependencyLoader = (*Loader)(nil)
