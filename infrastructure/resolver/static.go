// Package resolver provides module resolvers backed by in-process values.
package resolver

import (
	"context"
	"fmt"
	"sort"
	"sync"

	domainerrors "github.com/reglet-dev/tmplkit/domain/errors"
	"github.com/reglet-dev/tmplkit/domain/ports"
)

// Static resolves names to values compiled into the binary, registered the
// same way database/sql drivers are.
type Static struct {
	mu      sync.RWMutex
	modules map[string]any
}

// NewStatic creates a resolver seeded with modules.
func NewStatic(modules map[string]any) *Static {
	s := &Static{modules: make(map[string]any, len(modules))}
	for name, mod := range modules {
		s.modules[name] = mod
	}
	return s
}

// Register makes mod resolvable under name, replacing any previous entry.
func (s *Static) Register(name string, mod any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modules[name] = mod
}

// Resolve returns the module registered under name.
func (s *Static) Resolve(_ context.Context, name string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mod, ok := s.modules[name]
	if !ok {
		return nil, fmt.Errorf("%q is not registered: %w", name, domainerrors.ErrModuleNotFound)
	}
	return mod, nil
}

// Names returns the registered names, sorted.
func (s *Static) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.modules))
	for name := range s.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var _ ports.ModuleResolver = (*Static)(nil)
