// Package pongo provides a Django-syntax engine backed by pongo2.
package pongo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/reglet-dev/tmplkit/application/config"
	"github.com/reglet-dev/tmplkit/application/engine"
	"github.com/reglet-dev/tmplkit/application/library"
	tmpl "github.com/reglet-dev/tmplkit/application/template"
	"github.com/reglet-dev/tmplkit/domain/entities"
	"github.com/reglet-dev/tmplkit/domain/ports"
)

// Name is the registered engine name.
const Name = "pongo"

// Options configures the engine.
type Options struct {
	// Root is the directory {% include %} and {% extends %} are resolved against.
	Root string `json:"root,omitempty" jsonschema:"description=Base directory for includes"`

	// Globals are merged under the locals of every render.
	Globals entities.Locals `json:"globals,omitempty"`
}

// Template renders its payload with pongo2.
type Template struct {
	*tmpl.Base
	set  *pongo2.TemplateSet
	opts Options
}

// New creates a Template that compiles against set.
func New(file string, data []byte, set *pongo2.TemplateSet, opts Options) *Template {
	t := &Template{Base: tmpl.New(file, data), set: set, opts: opts}
	t.Bind(t)
	return t
}

// Spec returns the registration spec for the engine.
func Spec() engine.Spec {
	return engine.Spec{
		Name:        Name,
		Extensions:  []string{".tpl", ".django"},
		Description: "Django-syntax templates (pongo2)",
		Options:     Options{},
		Factory: func(file string, data []byte, deps engine.Deps) (ports.Template, error) {
			var opts Options
			if err := config.Decode(deps.Options, &opts); err != nil {
				return nil, err
			}
			libs := deps.Libraries
			if libs == nil {
				libs = library.Default()
			}
			set, err := SharedSet(libs, opts.Root)
			if err != nil {
				return nil, err
			}
			return New(file, data, set, opts), nil
		},
	}
}

// SharedSet returns the template set for root, creating it once per registry.
func SharedSet(libs ports.LibraryRegistry, root string) (*pongo2.TemplateSet, error) {
	key := "pongo2"
	if root != "" {
		key += ":" + root
	}
	lib, err := libs.LoadOrStore(key, func() (any, error) {
		loader, err := pongo2.NewLocalFileSystemLoader(root)
		if err != nil {
			return nil, fmt.Errorf("pongo: create loader for %q: %w", root, err)
		}
		return pongo2.NewSet(key, loader), nil
	})
	if err != nil {
		return nil, err
	}
	set, ok := lib.(*pongo2.TemplateSet)
	if !ok {
		return nil, fmt.Errorf("pongo: library %q holds %T", key, lib)
	}
	return set, nil
}

// Evaluate compiles the payload and executes it. Helpers from the render
// context are exposed as callable context values.
func (t *Template) Evaluate(_ context.Context, rc ports.RenderContext, locals entities.Locals) ([]byte, error) {
	compiled, err := t.set.FromBytes(t.Data())
	if err != nil {
		return nil, fmt.Errorf("pongo: parse %s: %w", t.File(), err)
	}

	viewContext, err := convertMapToContext(t.opts.Globals.Merge(locals))
	if err != nil {
		return nil, fmt.Errorf("pongo: convert locals: %w", err)
	}
	if hp, ok := rc.(ports.HelperProvider); ok {
		for name, fn := range hp.Helpers() {
			if _, taken := viewContext[name]; !taken && isCallable(fn) {
				viewContext[name] = fn
			}
		}
	}

	out, err := compiled.ExecuteBytes(viewContext)
	if err != nil {
		return nil, fmt.Errorf("pongo: execute %s: %w", t.File(), err)
	}
	return out, nil
}

func isCallable(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.IsValid() && rv.Kind() == reflect.Func
}

func convertMapToContext(in map[string]any) (pongo2.Context, error) {
	out := make(pongo2.Context, len(in))
	for key, value := range in {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		converted, err := convertValue(value)
		if err != nil {
			return nil, err
		}
		out[key] = converted
	}
	return out, nil
}

// convertValue normalizes structs and typed collections into maps and slices
// so pongo2 can address their fields by json name.
func convertValue(value any) (any, error) {
	if value == nil || isCallable(value) {
		return value, nil
	}

	switch v := value.(type) {
	case string, bool, int, int64, float64:
		return v, nil
	case entities.Locals:
		return convertMapToContext(v)
	case map[string]any:
		return convertMapToContext(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			converted, err := convertValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, err
	}
	switch d := decoded.(type) {
	case map[string]any, []any:
		return convertValue(d)
	default:
		return d, nil
	}
}
