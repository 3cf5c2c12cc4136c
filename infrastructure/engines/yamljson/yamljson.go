// Package yamljson provides an engine that converts a YAML document to JSON.
package yamljson

import (
	"context"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/reglet-dev/tmplkit/application/config"
	"github.com/reglet-dev/tmplkit/application/engine"
	tmpl "github.com/reglet-dev/tmplkit/application/template"
	"github.com/reglet-dev/tmplkit/domain/entities"
	"github.com/reglet-dev/tmplkit/domain/ports"
)

// Name is the registered engine name.
const Name = "yaml"

// Options configures the engine.
type Options struct {
	// Indent is the number of spaces per nesting level. Zero emits compact JSON.
	Indent int `json:"indent,omitempty" validate:"min=0,max=8"`
}

// Template converts its YAML payload to JSON. Locals are ignored.
type Template struct {
	*tmpl.Base
	opts Options
}

// New creates a Template.
func New(file string, data []byte, opts Options) *Template {
	t := &Template{Base: tmpl.New(file, data), opts: opts}
	t.Bind(t)
	return t
}

// Spec returns the registration spec for the engine.
func Spec() engine.Spec {
	return engine.Spec{
		Name:        Name,
		Extensions:  []string{".yaml", ".yml"},
		ContentType: "application/json",
		Description: "YAML to JSON",
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

// Evaluate parses the payload as YAML and encodes it as JSON.
func (t *Template) Evaluate(_ context.Context, _ ports.RenderContext, _ entities.Locals) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(t.Data(), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	doc, err := normalize(doc)
	if err != nil {
		return nil, err
	}

	var out []byte
	if t.opts.Indent > 0 {
		out, err = json.MarshalIndent(doc, "", fmt.Sprintf("%*s", t.opts.Indent, ""))
	} else {
		out, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode json: %w", err)
	}
	return out, nil
}

// normalize rewrites maps with non-string keys, which YAML allows and JSON
// does not.
func normalize(v any) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			n, err := normalize(item)
			if err != nil {
				return nil, err
			}
			val[k] = n
		}
		return val, nil
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			n, err := normalize(item)
			if err != nil {
				return nil, err
			}
			switch key := k.(type) {
			case string, bool, int, int64, uint64, float64:
				out[fmt.Sprint(key)] = n
			default:
				return nil, fmt.Errorf("unsupported yaml map key of type %T", k)
			}
		}
		return out, nil
	case []any:
		for i, item := range val {
			n, err := normalize(item)
			if err != nil {
				return nil, err
			}
			val[i] = n
		}
		return val, nil
	default:
		return v, nil
	}
}
