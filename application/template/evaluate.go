package template

import (
	"context"
	"errors"
	"fmt"

	"github.com/reglet-dev/tmplkit/domain/entities"
	domainerrors "github.com/reglet-dev/tmplkit/domain/errors"
	"github.com/reglet-dev/tmplkit/domain/ports"
)

// Evaluate calls t.Evaluate. A NotImplementedError without a type name is
// completed with the dynamic type of t; every other error is returned as is.
func Evaluate(ctx context.Context, t ports.Template, rc ports.RenderContext, locals entities.Locals) ([]byte, error) {
	if t == nil {
		return nil, &domainerrors.NotImplementedError{Type: "<nil>"}
	}

	out, err := t.Evaluate(ctx, rc, locals)
	if err != nil {
		var ni *domainerrors.NotImplementedError
		if errors.As(err, &ni) && ni.Type == "" {
			ni.Type = fmt.Sprintf("%T", t)
		}
		return nil, err
	}
	return out, nil
}

// Func adapts a plain transformation into a Template. It is the smallest
// possible engine and is handy for tests and one-off chain steps.
type Func struct {
	*Base
	fn func(ctx context.Context, t ports.Template, locals entities.Locals) ([]byte, error)
}

// NewFunc creates a Func template over file and data.
func NewFunc(file string, data []byte, fn func(ctx context.Context, t ports.Template, locals entities.Locals) ([]byte, error)) *Func {
	f := &Func{Base: New(file, data), fn: fn}
	f.Bind(f)
	return f
}

// Evaluate runs the wrapped function, or falls back to Base when it is nil.
func (f *Func) Evaluate(ctx context.Context, rc ports.RenderContext, locals entities.Locals) ([]byte, error) {
	if f.fn == nil {
		return f.Base.Evaluate(ctx, rc, locals)
	}
	return f.fn(ctx, f, locals)
}
