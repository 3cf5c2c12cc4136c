// Package wasm provides an engine that delegates evaluation to a WASM module
// acquired through the dependency loader.
package wasm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/tmplkit/application/config"
	"github.com/reglet-dev/tmplkit/application/engine"
	tmpl "github.com/reglet-dev/tmplkit/application/template"
	"github.com/reglet-dev/tmplkit/domain/entities"
	"github.com/reglet-dev/tmplkit/domain/ports"
	"github.com/reglet-dev/tmplkit/guest"
	"github.com/reglet-dev/tmplkit/log"
)

// Name is the registered engine name.
const Name = "wasm"

// DefaultExport is the guest function called when Options.Export is empty.
const DefaultExport = "evaluate"

// Options configures the engine.
type Options struct {
	// Module is the dependency name, resolved to <module>.wasm on the module paths.
	Module string `json:"module" validate:"required" jsonschema:"required,description=Dependency name of the module"`

	// Export is the guest function to call.
	Export string `json:"export,omitempty" jsonschema:"default=evaluate"`
}

// Request and Response are the JSON documents exchanged with the guest.
type (
	Request  = guest.Request
	Response = guest.Response
)

// Caller is the part of a loaded module the engine needs. *host.Module
// implements it.
type Caller interface {
	Call(ctx context.Context, export string, input []byte) ([]byte, error)
}

// Template hands its payload to a guest module.
type Template struct {
	*tmpl.Base
	loader ports.DependencyLoader
	opts   Options
	logger *slog.Logger
}

// New creates a Template that acquires its module through loader.
func New(file string, data []byte, loader ports.DependencyLoader, opts Options) *Template {
	if opts.Export == "" {
		opts.Export = DefaultExport
	}
	t := &Template{Base: tmpl.New(file, data), loader: loader, opts: opts}
	t.Bind(t)
	return t
}

// WithLogger sets the logger guest failures are reported to. Without one the
// logger carried by the evaluation context is used.
func (t *Template) WithLogger(logger *slog.Logger) *Template {
	t.logger = logger
	return t
}

// Spec returns the registration spec for the engine. It claims no extension:
// files opt in through configuration.
func Spec() engine.Spec {
	return engine.Spec{
		Name:        Name,
		Description: "Delegates to a WASM module",
		Options:     Options{},
		Factory: func(file string, data []byte, deps engine.Deps) (ports.Template, error) {
			var opts Options
			if err := config.Decode(deps.Options, &opts); err != nil {
				return nil, err
			}
			return New(file, data, deps.Loader, opts).WithLogger(deps.Logger), nil
		},
	}
}

// Evaluate requires the module, calls its export with a Request and returns
// the Output of the guest's Response. A Response carrying an error fails the
// evaluation with that message.
func (t *Template) Evaluate(ctx context.Context, _ ports.RenderContext, locals entities.Locals) ([]byte, error) {
	mod, err := t.Require(ctx, t.loader, t.opts.Module)
	if err != nil {
		return nil, err
	}
	caller, ok := mod.(Caller)
	if !ok {
		return nil, fmt.Errorf("dependency %q is a %T, not a callable module", t.opts.Module, mod)
	}

	if locals == nil {
		locals = entities.Locals{}
	}
	input, err := json.Marshal(Request{Data: t.Data(), Locals: locals, File: t.File()})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	logger := t.logger
	if logger == nil {
		logger = log.FromContext(ctx)
	}
	logger = logger.With("module", t.opts.Module, "export", t.opts.Export)

	raw, err := caller.Call(ctx, t.opts.Export, input)
	if err != nil {
		return nil, err
	}
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		logger.WarnContext(ctx, "module returned a malformed response", "bytes", len(raw))
		return nil, fmt.Errorf("module %q: malformed response: %w", t.opts.Module, err)
	}
	if resp.Error != "" {
		logger.WarnContext(ctx, "module reported an error", "error", resp.Error)
		return nil, fmt.Errorf("module %q: %s", t.opts.Module, resp.Error)
	}
	logger.DebugContext(ctx, "module call completed", "bytes", len(resp.Output))
	return resp.Output, nil
}
