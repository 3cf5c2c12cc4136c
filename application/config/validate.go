package config

import (
	"encoding/json"
	stdErrors "errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/reglet-dev/tmplkit/domain/errors"
)

// validate is a package-level singleton; validator caches struct metadata.
var validate = validator.New()

// Decode converts a Config map into targetStruct and validates it using
// `validate` struct tags. The map is round-tripped through JSON, so target
// fields are matched by their json tags.
func Decode(config Config, targetStruct any) error {
	jsonBytes, err := json.Marshal(config)
	if err != nil {
		return &errors.ConfigError{Err: fmt.Errorf("failed to marshal config map: %w", err)}
	}

	if err := json.Unmarshal(jsonBytes, targetStruct); err != nil {
		return &errors.ConfigError{Err: fmt.Errorf("failed to unmarshal config into struct: %w", err)}
	}

	return Validate(targetStruct)
}

// Validate runs struct-tag validation on v. The first failing field is
// reported as a *errors.ConfigError.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if stdErrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &errors.ConfigError{
			Field: fe.Namespace(),
			Err:   fmt.Errorf("failed on '%s' (value %v)", fe.Tag(), fe.Value()),
		}
	}
	return &errors.ConfigError{Err: err}
}
