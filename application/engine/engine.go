// Package engine provides the registry through which the pipeline finds and
// constructs concrete engines by name or by file extension.
package engine

import (
	"log/slog"

	"github.com/reglet-dev/tmplkit/domain/entities"
	"github.com/reglet-dev/tmplkit/domain/ports"
)

// Deps are the collaborators handed to an engine factory.
type Deps struct {
	// Libraries is where engines share heavyweight third-party libraries.
	Libraries ports.LibraryRegistry

	// Loader acquires optional runtime dependencies.
	Loader ports.DependencyLoader

	// Logger is scoped to the engine and file being constructed.
	Logger *slog.Logger

	// Options are the engine options from configuration. Never nil.
	Options entities.Locals
}

// Factory constructs a Template for one source file.
type Factory func(file string, data []byte, deps Deps) (ports.Template, error)

// Spec describes an engine for registration.
type Spec struct {
	// Options is a zero value of the engine's options struct, used to generate
	// its JSON schema and validate configuration. Nil when the engine takes none.
	Options any

	// Factory constructs templates. Required.
	Factory Factory

	Name        string
	ContentType string
	Description string

	// Extensions handled by the engine, with or without the leading dot.
	Extensions []string
}

// Info returns the public description of the spec.
func (s Spec) Info() entities.EngineInfo {
	exts := make([]string, len(s.Extensions))
	copy(exts, s.Extensions)
	return entities.EngineInfo{
		Name:        s.Name,
		Extensions:  exts,
		ContentType: s.ContentType,
		Description: s.Description,
	}
}
