package engine

import (
	"fmt"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/reglet-dev/tmplkit/application/config"
	"github.com/reglet-dev/tmplkit/application/schema"
	"github.com/reglet-dev/tmplkit/domain/entities"
	"github.com/reglet-dev/tmplkit/domain/errors"
	"github.com/reglet-dev/tmplkit/domain/ports"
)

// registryConfig holds configuration for the Registry.
type registryConfig struct {
	strictMode bool // Fail on duplicate registrations
}

func defaultRegistryConfig() registryConfig {
	return registryConfig{
		strictMode: true,
	}
}

// RegistryOption configures a Registry instance.
type RegistryOption func(*registryConfig)

// WithStrictMode enables/disables strict mode for duplicate registrations.
// Default is true (fail on duplicate names and extensions). When disabled the
// last registration wins.
func WithStrictMode(enabled bool) RegistryOption {
	return func(c *registryConfig) {
		c.strictMode = enabled
	}
}

// Registry stores engine specs by name and extension.
type Registry struct {
	config registryConfig

	mu      sync.RWMutex
	specs   map[string]Spec
	byExt   map[string]string
	schemas map[string][]byte
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	cfg := defaultRegistryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Registry{
		config:  cfg,
		specs:   make(map[string]Spec),
		byExt:   make(map[string]string),
		schemas: make(map[string][]byte),
	}
}

// Register adds an engine.
func (r *Registry) Register(spec Spec) error {
	spec.Name = strings.TrimSpace(spec.Name)
	if spec.Name == "" {
		return fmt.Errorf("engine: name is required")
	}
	if spec.Factory == nil {
		return fmt.Errorf("engine: %q has no factory", spec.Name)
	}
	exts := make([]string, 0, len(spec.Extensions))
	for _, ext := range spec.Extensions {
		if ext = NormalizeExt(ext); ext != "" {
			exts = append(exts, ext)
		}
	}
	spec.Extensions = exts

	// Generate the options schema before taking the lock.
	data, err := schema.GenerateSchema(spec.Options)
	if err != nil {
		return fmt.Errorf("engine: options schema for %q: %w", spec.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.config.strictMode {
		if _, exists := r.specs[spec.Name]; exists {
			return fmt.Errorf("engine: %q already registered", spec.Name)
		}
		for _, ext := range spec.Extensions {
			if owner, exists := r.byExt[ext]; exists {
				return fmt.Errorf("engine: extension %s already handled by %q", ext, owner)
			}
		}
	}

	if prev, exists := r.specs[spec.Name]; exists {
		for _, ext := range prev.Extensions {
			if r.byExt[ext] == prev.Name {
				delete(r.byExt, ext)
			}
		}
	}

	r.specs[spec.Name] = spec
	r.schemas[spec.Name] = data
	for _, ext := range spec.Extensions {
		r.byExt[ext] = spec.Name
	}
	return nil
}

// Map routes ext to the engine registered under name, in addition to the
// extensions its spec declares. In strict mode an extension already handled by
// another engine is an error.
func (r *Registry) Map(ext, name string) error {
	ext = NormalizeExt(ext)
	if ext == "" {
		return fmt.Errorf("engine: empty extension for %q", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.specs[name]; !ok {
		return &errors.EngineNotFoundError{Name: name}
	}
	if owner, exists := r.byExt[ext]; exists && owner != name && r.config.strictMode {
		return fmt.Errorf("engine: extension %s already handled by %q", ext, owner)
	}
	r.byExt[ext] = name
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(spec Spec) {
	if err := r.Register(spec); err != nil {
		panic(err)
	}
}

// Lookup returns the engine registered under name.
func (r *Registry) Lookup(name string) (Spec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.specs[name]
	if !ok {
		return Spec{}, &errors.EngineNotFoundError{Name: name}
	}
	return spec, nil
}

// ForExtension returns the engine handling ext.
func (r *Registry) ForExtension(ext string) (Spec, error) {
	ext = NormalizeExt(ext)

	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := r.byExt[ext]
	if !ok {
		return Spec{}, &errors.EngineNotFoundError{Extension: ext}
	}
	return r.specs[name], nil
}

// ForPath returns the engines for path in evaluation order: extensions are
// read right to left and the chain stops at the first extension no engine
// handles, which is taken to be the output format. "site.yaml.tpl" yields the
// .tpl engine followed by the .yaml engine.
func (r *Registry) ForPath(path string) []Spec {
	exts := Extensions(path)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var chain []Spec
	for i := len(exts) - 1; i >= 0; i-- {
		name, ok := r.byExt[exts[i]]
		if !ok {
			break
		}
		chain = append(chain, r.specs[name])
	}
	return chain
}

// List returns the registered engines sorted by name.
func (r *Registry) List() []entities.EngineInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]entities.EngineInfo, 0, len(r.specs))
	for _, spec := range r.specs {
		infos = append(infos, spec.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Schema returns the JSON schema of the engine's options.
func (r *Registry) Schema(name string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, ok := r.schemas[name]
	if !ok {
		return nil, &errors.EngineNotFoundError{Name: name}
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// ValidateOptions decodes opts into a fresh copy of the engine's options
// struct and runs struct-tag validation on it.
func (r *Registry) ValidateOptions(name string, opts entities.Locals) error {
	spec, err := r.Lookup(name)
	if err != nil {
		return err
	}
	if spec.Options == nil {
		return nil
	}

	t := reflect.TypeOf(spec.Options)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	target := reflect.New(t).Interface()
	if err := config.Decode(opts, target); err != nil {
		return fmt.Errorf("engine %q: %w", name, err)
	}
	return nil
}

// New constructs a template for file using the engine registered under name.
func (r *Registry) New(name, file string, data []byte, deps Deps) (ports.Template, error) {
	spec, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	if deps.Options == nil {
		deps.Options = entities.Locals{}
	}
	tpl, err := spec.Factory(file, data, deps)
	if err != nil {
		return nil, fmt.Errorf("engine %q: construct %s: %w", name, file, err)
	}
	return tpl, nil
}

// NormalizeExt lowercases ext and ensures a leading dot.
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Extensions returns the normalized extensions of path's base name, left to
// right. The leading name segment is never an extension, so ".env.tpl" has
// the single extension ".tpl".
func Extensions(path string) []string {
	base := filepath.Base(path)
	parts := strings.Split(strings.TrimPrefix(base, "."), ".")
	if len(parts) < 2 {
		return nil
	}
	exts := make([]string, 0, len(parts)-1)
	for _, part := range parts[1:] {
		if ext := NormalizeExt(part); ext != "" {
			exts = append(exts, ext)
		}
	}
	return exts
}
