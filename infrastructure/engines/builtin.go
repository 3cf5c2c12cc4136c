// Package engines bundles the engines that ship with tmplkit.
package engines

import (
	"github.com/reglet-dev/tmplkit/application/engine"
	"github.com/reglet-dev/tmplkit/infrastructure/engines/gotext"
	"github.com/reglet-dev/tmplkit/infrastructure/engines/pongo"
	"github.com/reglet-dev/tmplkit/infrastructure/engines/sanitize"
	"github.com/reglet-dev/tmplkit/infrastructure/engines/wasm"
	"github.com/reglet-dev/tmplkit/infrastructure/engines/yamljson"
)

// Specs returns the built-in engine specs.
func Specs() []engine.Spec {
	return []engine.Spec{
		gotext.Spec(),
		pongo.Spec(),
		sanitize.Spec(),
		yamljson.Spec(),
		wasm.Spec(),
	}
}

// Register adds every built-in engine to reg.
func Register(reg *engine.Registry) error {
	for _, spec := range Specs() {
		if err := reg.Register(spec); err != nil {
			return err
		}
	}
	return nil
}
