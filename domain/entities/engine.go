package entities

// EngineInfo describes a registered engine.
type EngineInfo struct {
	// Name is the unique engine name (e.g. "gotext").
	Name string `json:"name" yaml:"name"`

	// Extensions lists the file extensions the engine handles, with the leading dot.
	Extensions []string `json:"extensions" yaml:"extensions"`

	// ContentType is the MIME type of the payload the engine produces, if known.
	ContentType string `json:"content_type,omitempty" yaml:"content_type,omitempty"`

	// Description is a human-readable summary.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}
