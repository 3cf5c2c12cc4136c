package ports

import (
	"context"

	"github.com/reglet-dev/tmplkit/domain/entities"
)

// Template is the contract every engine fulfils: a source payload, the path it
// came from, and one transformation.
type Template interface {
	// File returns the originating source location. It never changes after construction.
	File() string

	// Data returns the current payload.
	Data() []byte

	// SetData replaces the payload.
	SetData(data []byte)

	// Evaluate transforms Data() and returns the result. Implementations may
	// consult rc and locals and may replace the payload, but never the file.
	Evaluate(ctx context.Context, rc RenderContext, locals entities.Locals) ([]byte, error)
}

// RenderContext is supplied by the pipeline at render time. It is opaque to
// the core; engines type-assert the optional capabilities below.
type RenderContext any

// PathResolver is implemented by render contexts that can map a logical path
// referenced from a template to a concrete location.
type PathResolver interface {
	ResolvePath(logical string) (string, error)
}

// HelperProvider is implemented by render contexts that expose helper
// functions to templates.
type HelperProvider interface {
	Helpers() map[string]any
}
