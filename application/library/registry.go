// Package library provides the registry engines use to share heavyweight
// third-party libraries (compilers, template sets, sanitizer policies) across
// template instances.
package library

import (
	"sort"
	"sync"

	"github.com/reglet-dev/tmplkit/domain/ports"
)

// Registry maps library names to loaded library references.
type Registry struct {
	libs  sync.Map // map[string]any
	inits sync.Map // map[string]*onceEntry
}

type onceEntry struct {
	once sync.Once
	lib  any
	err  error
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry, for callers that do not thread
// their own registry through.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Get returns the library stored under name. Absent keys yield (nil, false).
func (r *Registry) Get(name string) (any, bool) {
	return r.libs.Load(name)
}

// Has reports whether a library is stored under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.libs.Load(name)
	return ok
}

// Set stores lib under name, replacing any previous entry.
func (r *Registry) Set(name string, lib any) {
	r.libs.Store(name, lib)
}

// LoadOrStore returns the library under name. When absent, create is called at
// most once per name, even across goroutines, and a successful result is
// stored. A failed create is remembered and returned to later callers.
func (r *Registry) LoadOrStore(name string, create func() (any, error)) (any, error) {
	if lib, ok := r.libs.Load(name); ok {
		return lib, nil
	}

	v, _ := r.inits.LoadOrStore(name, &onceEntry{})
	entry := v.(*onceEntry)
	entry.once.Do(func() {
		entry.lib, entry.err = create()
		if entry.err == nil {
			r.libs.LoadOrStore(name, entry.lib)
		}
	})
	if entry.err != nil {
		return nil, entry.err
	}

	lib, _ := r.libs.Load(name)
	return lib, nil
}

// Names returns the registered library names, sorted.
func (r *Registry) Names() []string {
	var names []string
	r.libs.Range(func(k, _ any) bool {
		names = append(names, k.(string))
		return true
	})
	sort.Strings(names)
	return names
}

// Reset removes every entry. Intended for test teardown.
func (r *Registry) Reset() {
	r.libs.Range(func(k, _ any) bool {
		r.libs.Delete(k)
		return true
	})
	r.inits.Range(func(k, _ any) bool {
		r.inits.Delete(k)
		return true
	})
}

var _ ports.LibraryRegistry = (*Registry)(nil)
