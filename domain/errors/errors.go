// Package errors provides the error taxonomy of the template contract.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/reglet-dev/tmplkit/domain/entities"
)

// Sentinels matched by errors.Is against the typed errors below.
var (
	// ErrNotImplemented marks an engine that did not supply Evaluate.
	ErrNotImplemented = stdErrors.New("evaluate not implemented")

	// ErrDependencyMissing marks a runtime dependency that could not be acquired.
	ErrDependencyMissing = stdErrors.New("dependency missing")

	// ErrModuleNotFound is returned by module resolvers that do not know a name.
	ErrModuleNotFound = stdErrors.New("module not found")

	// ErrEngineNotFound is returned when no engine is registered under a name or extension.
	ErrEngineNotFound = stdErrors.New("engine not found")

	// ErrClosed is returned when rendering through a kit that was closed.
	ErrClosed = stdErrors.New("kit closed")
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// DetailedError is implemented by error types that can describe themselves as
// a structured ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to a structured ErrorDetail.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		detail := de.ToErrorDetail()
		// Keep the outer message; callers usually wrap with the pipeline step.
		detail.Message = err.Error()
		return detail
	}

	return &entities.ErrorDetail{
		Message: err.Error(),
		Type:    "internal",
	}
}

// NotImplementedError is returned when Evaluate is called on a template whose
// concrete type does not override it. It signals a defect in the engine, not a
// transient condition.
type NotImplementedError struct {
	// Type is the concrete type name of the offending template (e.g. "*gotext.Template").
	Type string
}

func (e *NotImplementedError) Error() string {
	if e.Type == "" {
		return "evaluate not implemented"
	}
	return fmt.Sprintf("%s must implement Evaluate", e.Type)
}

// Is reports whether target is ErrNotImplemented.
func (e *NotImplementedError) Is(target error) bool {
	return target == ErrNotImplemented
}

// ToErrorDetail implements DetailedError.
func (e *NotImplementedError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "not_implemented", Code: e.Type}
}

// DependencyMissingError is returned when a runtime dependency needed by an
// engine cannot be acquired while processing File.
type DependencyMissingError struct {
	Err  error
	Name string // Dependency name (e.g. "sass")
	File string // Source file that triggered the need for it
}

func (e *DependencyMissingError) Error() string {
	msg := fmt.Sprintf("dependency %q required by %s is missing", e.Name, e.File)
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *DependencyMissingError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrDependencyMissing.
func (e *DependencyMissingError) Is(target error) bool {
	return target == ErrDependencyMissing
}

// ToErrorDetail implements DetailedError.
func (e *DependencyMissingError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message:    e.Error(),
		Type:       "dependency",
		Code:       e.Name,
		IsNotFound: stdErrors.Is(e.Err, ErrModuleNotFound),
		Details:    map[string]any{"file": e.File},
	}
}

// EngineNotFoundError is returned when an engine lookup fails.
type EngineNotFoundError struct {
	Name      string // Engine name, when looked up by name
	Extension string // Extension, when looked up by extension
}

func (e *EngineNotFoundError) Error() string {
	if e.Extension != "" {
		return fmt.Sprintf("no engine registered for extension %s", e.Extension)
	}
	return fmt.Sprintf("engine %q not registered", e.Name)
}

// Is reports whether target is ErrEngineNotFound.
func (e *EngineNotFoundError) Is(target error) bool {
	return target == ErrEngineNotFound
}

// ToErrorDetail implements DetailedError.
func (e *EngineNotFoundError) ToErrorDetail() *entities.ErrorDetail {
	code := e.Name
	if code == "" {
		code = e.Extension
	}
	return &entities.ErrorDetail{Message: e.Error(), Type: "engine", Code: code, IsNotFound: true}
}

// EvaluationError wraps an engine-specific failure with the engine and file
// that produced it.
type EvaluationError struct {
	Err    error
	Engine string
	File   string
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("%s: evaluate %s: %v", e.Engine, e.File, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *EvaluationError) ToErrorDetail() *entities.ErrorDetail {
	detail := &entities.ErrorDetail{Message: e.Error(), Type: "evaluation", Code: e.Engine}
	var inner DetailedError
	if stdErrors.As(e.Err, &inner) {
		detail.Wrapped = inner.ToErrorDetail()
	}
	return detail
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "config", Code: e.Field}
}

// SchemaError represents a schema generation error.
type SchemaError struct {
	Err  error
	Type string
}

func (e *SchemaError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("schema error for type %s: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("schema error: %v", e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *SchemaError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "config", Code: "schema"}
}
