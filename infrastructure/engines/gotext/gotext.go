// Package gotext provides an engine backed by the standard text/template package.
package gotext

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"text/template"
	"unicode"

	"github.com/reglet-dev/tmplkit/application/config"
	"github.com/reglet-dev/tmplkit/application/engine"
	tmpl "github.com/reglet-dev/tmplkit/application/template"
	"github.com/reglet-dev/tmplkit/domain/entities"
	"github.com/reglet-dev/tmplkit/domain/ports"
)

// Name is the registered engine name.
const Name = "gotext"

// Options configures the engine.
type Options struct {
	// Strict fails rendering when a referenced key is missing. Defaults to true.
	Strict *bool `json:"strict,omitempty" jsonschema:"description=Fail on missing keys (default true)"`

	// LeftDelim and RightDelim override the action delimiters.
	LeftDelim  string `json:"left_delim,omitempty" validate:"required_with=RightDelim"`
	RightDelim string `json:"right_delim,omitempty" validate:"required_with=LeftDelim"`
}

func (o Options) strict() bool {
	return o.Strict == nil || *o.Strict
}

// Template renders its payload with text/template.
type Template struct {
	*tmpl.Base
	opts Options
}

// New creates a Template for file.
func New(file string, data []byte, opts Options) *Template {
	t := &Template{Base: tmpl.New(file, data), opts: opts}
	t.Bind(t)
	return t
}

// Spec returns the registration spec for the engine.
func Spec() engine.Spec {
	return engine.Spec{
		Name:        Name,
		Extensions:  []string{".tmpl", ".gotmpl"},
		Description: "Go text/template",
		Options:     Options{},
		Factory: func(file string, data []byte, deps engine.Deps) (ports.Template, error) {
			var opts Options
			if err := config.Decode(deps.Options, &opts); err != nil {
				return nil, err
			}
			return New(file, data, opts), nil
		},
	}
}

// Evaluate executes the payload with locals as the root data. Helpers from
// the render context are available as template functions.
func (t *Template) Evaluate(_ context.Context, rc ports.RenderContext, locals entities.Locals) ([]byte, error) {
	tpl := template.New(t.File())

	if t.opts.strict() {
		tpl = tpl.Option("missingkey=error")
	}
	if t.opts.LeftDelim != "" {
		tpl = tpl.Delims(t.opts.LeftDelim, t.opts.RightDelim)
	}
	if hp, ok := rc.(ports.HelperProvider); ok {
		funcs, err := funcMap(hp.Helpers())
		if err != nil {
			return nil, err
		}
		tpl = tpl.Funcs(funcs)
	}

	tpl, err := tpl.Parse(string(t.Data()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	if locals == nil {
		locals = entities.Locals{}
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, map[string]any(locals)); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

var errorType = reflect.TypeFor[error]()

// funcMap keeps the helpers text/template can call. Values that are not
// functions are skipped. A function with a name that is not an identifier, or
// that does not return one value or a value and an error, is an error.
func funcMap(helpers map[string]any) (template.FuncMap, error) {
	funcs := make(template.FuncMap, len(helpers))
	for name, fn := range helpers {
		if fn == nil {
			continue
		}
		ft := reflect.TypeOf(fn)
		if ft.Kind() != reflect.Func {
			continue
		}
		if !isIdentifier(name) {
			return nil, fmt.Errorf("helper %q: name is not a valid identifier", name)
		}
		switch {
		case ft.NumOut() == 1:
		case ft.NumOut() == 2 && ft.Out(1) == errorType:
		default:
			return nil, fmt.Errorf("helper %q: %s must return one value, or a value and an error", name, ft)
		}
		funcs[name] = fn
	}
	return funcs, nil
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_':
		case i == 0 && !unicode.IsLetter(r):
			return false
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			return false
		}
	}
	return true
}
