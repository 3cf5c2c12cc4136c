package host

import (
	"context"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// Executor owns a wazero runtime in which WASM dependencies are instantiated.
type Executor struct {
	runtime wazero.Runtime
	config  executorConfig

	mu      sync.Mutex
	modules map[string]*Module
}

// NewExecutor creates a new executor with the given options.
func NewExecutor(ctx context.Context, opts ...Option) (*Executor, error) {
	cfg := defaultExecutorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	rt := wazero.NewRuntime(ctx)
	wasi_snapshot_preview1.MustInstantiate(ctx, rt)

	e := &Executor{
		runtime: rt,
		config:  cfg,
		modules: make(map[string]*Module),
	}

	if err := e.registerHostFunctions(ctx); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to register host functions: %w", err)
	}

	return e, nil
}

// Close releases resources held by the executor, including every module it loaded.
func (e *Executor) Close(ctx context.Context) error {
	e.mu.Lock()
	e.modules = make(map[string]*Module)
	e.mu.Unlock()
	return e.runtime.Close(ctx)
}

// Module represents an instantiated WASM dependency.
type Module struct {
	name   string
	module api.Module
}

// Name returns the name the module was loaded under.
func (m *Module) Name() string {
	return m.name
}

// HasExport reports whether the module exports a function called name.
func (m *Module) HasExport(name string) bool {
	return m.module.ExportedFunction(name) != nil
}

// LoadModule instantiates wasmBytes under name. Loading a name twice returns
// the module instantiated first.
func (e *Executor) LoadModule(ctx context.Context, name string, wasmBytes []byte) (*Module, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if m, ok := e.modules[name]; ok {
		return m, nil
	}

	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to compile module %q: %w", name, err)
	}

	mod, err := e.runtime.InstantiateModule(ctx, compiled,
		wazero.NewModuleConfig().WithName(name).WithStartFunctions())
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate module %q: %w", name, err)
	}

	// Reactor modules initialize through _initialize instead of _start.
	if init := mod.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(ctx); err != nil {
			_ = mod.Close(ctx)
			return nil, fmt.Errorf("failed to call _initialize on %q: %w", name, err)
		}
	}

	m := &Module{name: name, module: mod}
	e.modules[name] = m
	return m, nil
}

// Call invokes export with input and returns a copy of the bytes the guest
// hands back through the packed ptr/len result.
func (m *Module) Call(ctx context.Context, export string, input []byte) ([]byte, error) {
	packed, err := m.callRaw(ctx, export, input)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", m.name, export, err)
	}
	out, err := m.readPacked(packed)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", m.name, export, err)
	}
	return out, nil
}
