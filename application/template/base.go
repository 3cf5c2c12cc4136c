// Package template provides Base, the state every engine embeds, and the
// Evaluate dispatch helper used by the pipeline.
package template

import (
	"context"
	"fmt"

	"github.com/reglet-dev/tmplkit/domain/entities"
	domainerrors "github.com/reglet-dev/tmplkit/domain/errors"
	"github.com/reglet-dev/tmplkit/domain/ports"
)

// Base holds the source payload and its originating path.
// Engines embed *Base (or Base) and override Evaluate.
type Base struct {
	file  string
	data  []byte
	owner string
}

// New creates a Base for file with the given payload. Neither argument is
// validated; their meaning belongs to the engine.
func New(file string, data []byte) *Base {
	return &Base{file: file, data: data}
}

// Bind records the concrete engine type embedding b, so that failures name it.
// It returns b for chaining in constructors.
func (b *Base) Bind(owner any) *Base {
	if owner != nil {
		b.owner = fmt.Sprintf("%T", owner)
	}
	return b
}

// File returns the originating source location.
func (b *Base) File() string {
	return b.file
}

// Data returns the current payload.
func (b *Base) Data() []byte {
	return b.data
}

// SetData replaces the payload.
func (b *Base) SetData(data []byte) {
	b.data = data
}

// Evaluate always fails with *errors.NotImplementedError. The error names the
// bound type; when Bind was never called the type is left empty for the
// package-level Evaluate to fill in. Engines must override it.
func (b *Base) Evaluate(_ context.Context, _ ports.RenderContext, _ entities.Locals) ([]byte, error) {
	return nil, &domainerrors.NotImplementedError{Type: b.owner}
}

// Require acquires the runtime dependency name through loader on behalf of
// this template's file. Failures name both the dependency and the file.
func (b *Base) Require(ctx context.Context, loader ports.DependencyLoader, name string) (any, error) {
	if loader == nil {
		return nil, &domainerrors.DependencyMissingError{
			Name: name,
			File: b.file,
			Err:  fmt.Errorf("no dependency loader configured: %w", domainerrors.ErrModuleNotFound),
		}
	}
	return loader.Require(ctx, name, b.file)
}

var _ ports.Template = (*Base)(nil)
