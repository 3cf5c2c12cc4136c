// Package schema generates JSON schemas describing engine options.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/reglet-dev/tmplkit/domain/errors"
)

// emptySchema describes engines that take no options.
var emptySchema = []byte(`{"type":"object"}`)

// GenerateSchema creates a JSON schema from a Go struct.
// It uses the `invopop/jsonschema` library to reflect on the struct
// and generate a standard JSON Schema (Draft 2020-12). A nil value yields an
// empty object schema.
func GenerateSchema(v any) ([]byte, error) {
	if v == nil {
		out := make([]byte, len(emptySchema))
		copy(out, emptySchema)
		return out, nil
	}

	reflector := jsonschema.Reflector{
		ExpandedStruct: true, // Expand struct definitions inline
	}
	schema := reflector.Reflect(v)

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, &errors.SchemaError{Type: fmt.Sprintf("%T", v), Err: fmt.Errorf("failed to marshal schema: %w", err)}
	}

	return jsonBytes, nil
}
