package ports

import "context"

// ModuleResolver resolves a dependency name to a loaded module.
// Unknown names produce an error wrapping errors.ErrModuleNotFound.
type ModuleResolver interface {
	Resolve(ctx context.Context, name string) (any, error)
}

// DependencyLoader acquires optional runtime dependencies on behalf of an
// engine processing file.
type DependencyLoader interface {
	// Require returns the module for name or a *errors.DependencyMissingError
	// naming both name and file.
	Require(ctx context.Context, name, file string) (any, error)
}
