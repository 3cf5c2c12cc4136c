package ports

import "github.com/reglet-dev/tmplkit/domain/entities"

// LocalsParser parses a serialized locals document.
type LocalsParser interface {
	// Parse unmarshals bytes into Locals.
	Parse(data []byte) (entities.Locals, error)
}

// ConfigParser parses a serialized tmplkit configuration.
type ConfigParser interface {
	// Parse unmarshals bytes into a Config, applying defaults for absent fields.
	Parse(data []byte) (*entities.Config, error)
}
