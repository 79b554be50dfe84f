package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrInvalidSchema indicates a model declaration error.
	ErrInvalidSchema = errors.New("harmony: invalid schema")
	// ErrInvalidConfig indicates a configuration error.
	ErrInvalidConfig = errors.New("harmony: invalid configuration")
	// ErrUnknownReference indicates a reference to a model that does not exist.
	ErrUnknownReference = errors.New("harmony: unknown reference")
	// ErrGenerationFailed indicates a code generation failure.
	ErrGenerationFailed = errors.New("harmony: code generation failed")
)

// SchemaError represents a model declaration error.
type SchemaError struct {
	Model   string // Model name
	Field   string // Field name (if applicable)
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("harmony: schema error")
	if e.Model != "" {
		b.WriteString(" on model ")
		b.WriteString(e.Model)
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for SchemaError.
func (e *SchemaError) Is(target error) bool {
	return target == ErrInvalidSchema
}

// NewSchemaError creates a new SchemaError.
func NewSchemaError(model, field, message string, cause error) *SchemaError {
	return &SchemaError{
		Model:   model,
		Field:   field,
		Message: message,
		Cause:   cause,
	}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("harmony: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("harmony: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// ReferenceError represents a reference to an unknown model.
type ReferenceError struct {
	Model  string // Declaring model
	Field  string // Dotted path of the reference field
	Target string // Missing target model
}

// Error implements the error interface.
func (e *ReferenceError) Error() string {
	return fmt.Sprintf("harmony: reference error on model %s field %s: unknown model %q", e.Model, e.Field, e.Target)
}

// Is reports whether the target matches the sentinel error for ReferenceError.
func (e *ReferenceError) Is(target error) bool {
	return target == ErrUnknownReference
}

// GenerationError represents a code generation error.
type GenerationError struct {
	Phase   string // "format", "write", etc.
	File    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("harmony: generation error")
	if e.Phase != "" {
		b.WriteString(" in phase ")
		b.WriteString(e.Phase)
	}
	if e.File != "" {
		b.WriteString(" (file: ")
		b.WriteString(e.File)
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for GenerationError.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(phase, file, message string, cause error) *GenerationError {
	return &GenerationError{
		Phase:   phase,
		File:    file,
		Message: message,
		Cause:   cause,
	}
}

// IsSchemaError reports whether the error is a SchemaError.
func IsSchemaError(err error) bool {
	var schemaErr *SchemaError
	return errors.As(err, &schemaErr)
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsReferenceError reports whether the error is a ReferenceError.
func IsReferenceError(err error) bool {
	var refErr *ReferenceError
	return errors.As(err, &refErr)
}

// IsGenerationError reports whether the error is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}
