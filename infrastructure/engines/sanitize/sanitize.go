// Package sanitize provides an engine that strips unsafe HTML with bluemonday.
package sanitize

import (
	"context"
	"fmt"

	"github.com/microcosm-cc/bluemonday"

	"github.com/reglet-dev/tmplkit/application/config"
	"github.com/reglet-dev/tmplkit/application/engine"
	"github.com/reglet-dev/tmplkit/application/library"
	tmpl "github.com/reglet-dev/tmplkit/application/template"
	"github.com/reglet-dev/tmplkit/domain/entities"
	"github.com/reglet-dev/tmplkit/domain/ports"
)

// Name is the registered engine name.
const Name = "sanitize"

// Policy names.
const (
	PolicyStrict = "strict"
	PolicyUGC    = "ugc"
)

// Options configures the engine.
type Options struct {
	// Policy is "ugc" (user generated content, the default) or "strict" (no markup).
	Policy string `json:"policy,omitempty" validate:"omitempty,oneof=strict ugc" jsonschema:"enum=strict,enum=ugc"`
}

// Template sanitizes its payload. Locals are ignored.
type Template struct {
	*tmpl.Base
	policy *bluemonday.Policy
}

// New creates a Template that applies policy.
func New(file string, data []byte, policy *bluemonday.Policy) *Template {
	t := &Template{Base: tmpl.New(file, data), policy: policy}
	t.Bind(t)
	return t
}

// Spec returns the registration spec for the engine.
func Spec() engine.Spec {
	return engine.Spec{
		Name:        Name,
		Extensions:  []string{".sanitize"},
		ContentType: "text/html",
		Description: "HTML sanitizer (bluemonday)",
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
			policy, err := SharedPolicy(libs, opts.Policy)
			if err != nil {
				return nil, err
			}
			return New(file, data, policy), nil
		},
	}
}

// SharedPolicy returns the named policy, building it once per registry.
// Policies are safe for concurrent use once built.
func SharedPolicy(libs ports.LibraryRegistry, name string) (*bluemonday.Policy, error) {
	if name == "" {
		name = PolicyUGC
	}
	key := "bluemonday." + name
	lib, err := libs.LoadOrStore(key, func() (any, error) {
		switch name {
		case PolicyStrict:
			return bluemonday.StrictPolicy(), nil
		case PolicyUGC:
			return bluemonday.UGCPolicy(), nil
		default:
			return nil, fmt.Errorf("sanitize: unknown policy %q", name)
		}
	})
	if err != nil {
		return nil, err
	}
	policy, ok := lib.(*bluemonday.Policy)
	if !ok {
		return nil, fmt.Errorf("sanitize: library %q holds %T", key, lib)
	}
	return policy, nil
}

// Evaluate returns the sanitized payload.
func (t *Template) Evaluate(_ context.Context, _ ports.RenderContext, _ entities.Locals) ([]byte, error) {
	return t.policy.SanitizeBytes(t.Data()), nil
}
