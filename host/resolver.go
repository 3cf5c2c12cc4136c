package host

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	domainerrors "github.com/reglet-dev/tmplkit/domain/errors"
	"github.com/reglet-dev/tmplkit/domain/ports"
)

// WasmResolver resolves a dependency name to <name>.wasm found in one of its
// search filesystems and instantiates it in an Executor.
type WasmResolver struct {
	executor *Executor
	paths    []fs.FS
}

// NewWasmResolver creates a resolver searching paths in order.
func NewWasmResolver(executor *Executor, paths ...fs.FS) *WasmResolver {
	return &WasmResolver{executor: executor, paths: paths}
}

// NewWasmResolverFromDirs is NewWasmResolver over directories on disk.
func NewWasmResolverFromDirs(executor *Executor, dirs ...string) *WasmResolver {
	paths := make([]fs.FS, 0, len(dirs))
	for _, dir := range dirs {
		paths = append(paths, os.DirFS(dir))
	}
	return NewWasmResolver(executor, paths...)
}

// Resolve returns the *Module for name.
func (r *WasmResolver) Resolve(ctx context.Context, name string) (any, error) {
	file := name + ".wasm"
	if !fs.ValidPath(file) {
		return nil, fmt.Errorf("invalid module name %q: %w", name, domainerrors.ErrModuleNotFound)
	}

	for _, fsys := range r.paths {
		wasmBytes, err := fs.ReadFile(fsys, file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		return r.executor.LoadModule(ctx, name, wasmBytes)
	}

	return nil, fmt.Errorf("%s not found in %d search path(s): %w", file, len(r.paths), domainerrors.ErrModuleNotFound)
}

var _ ports.ModuleResolver = (*WasmResolver)(nil)
