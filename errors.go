package harmony

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Standard sentinel errors for common operations.
var (
	// ErrNotFound is returned when a requested document does not exist.
	ErrNotFound = errors.New("harmony: document not found")

	// ErrNotInitialized is returned when a Persistence is used before Init.
	ErrNotInitialized = errors.New("harmony: persistence not initialized")
)

// StatusError is implemented by errors carrying an HTTP-like status. The
// status is exposed in the "status" extension of GraphQL errors.
type StatusError interface {
	error
	Status() int
}

// StatusOf returns the status of the first StatusError in err's chain,
// or 500.
func StatusOf(err error) int {
	var se StatusError
	if errors.As(err, &se) {
		return se.Status()
	}
	return http.StatusInternalServerError
}

// NotFoundError represents an error when a document is not found.
type NotFoundError struct {
	model string
	id    any
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.id != nil {
		return fmt.Sprintf("harmony: %s not found (_id=%v)", e.model, e.id)
	}
	return fmt.Sprintf("harmony: %s not found", e.model)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Status implements StatusError.
func (e *NotFoundError) Status() int { return http.StatusNotFound }

// Model returns the model name.
func (e *NotFoundError) Model() string { return e.model }

// ID returns the _id that was searched for, if available.
func (e *NotFoundError) ID() any { return e.id }

// NewNotFoundError returns a new NotFoundError for the given model.
func NewNotFoundError(model string, id any) *NotFoundError {
	return &NotFoundError{model: model, id: id}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// ConstraintError represents a storage constraint violation, such as a
// duplicate value on a unique field.
type ConstraintError struct {
	msg  string
	wrap error
}

// Error returns the error string.
func (e ConstraintError) Error() string {
	return fmt.Sprintf("harmony: constraint failed: %s", e.msg)
}

// Unwrap returns the underlying error.
func (e ConstraintError) Unwrap() error { return e.wrap }

// Status implements StatusError.
func (ConstraintError) Status() int { return http.StatusConflict }

// NewConstraintError returns a new ConstraintError with the given message.
func NewConstraintError(msg string, wrap error) error {
	return ConstraintError{msg: msg, wrap: wrap}
}

// IsConstraintError returns true if the error is a ConstraintError.
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var e ConstraintError
	return errors.As(err, &e)
}

// ValidationError represents invalid resolver arguments.
type ValidationError struct {
	Name string // Argument or field name
	Err  error  // Underlying validation error
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("harmony: invalid %q: %s", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error { return e.Err }

// Status implements StatusError.
func (e *ValidationError) Status() int { return http.StatusBadRequest }

// NewValidationError returns a new ValidationError for the given argument.
func NewValidationError(name string, err error) *ValidationError {
	return &ValidationError{Name: name, Err: err}
}

// IsValidationError returns true if the error is a ValidationError.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var e *ValidationError
	return errors.As(err, &e)
}

// AdapterError wraps an error returned by a storage adapter.
type AdapterError struct {
	Adapter string // Adapter name
	Op      string // Operation (e.g. "initialize", "close")
	Err     error  // Underlying error
}

// Error returns the error string.
func (e *AdapterError) Error() string {
	return fmt.Sprintf("harmony: adapter %q: %s: %v", e.Adapter, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *AdapterError) Unwrap() error { return e.Err }

// IsAdapterError returns true if the error is an AdapterError.
func IsAdapterError(err error) bool {
	if err == nil {
		return false
	}
	var e *AdapterError
	return errors.As(err, &e)
}

// AggregateError represents multiple errors collected during an operation.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "harmony: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("harmony: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the collected errors.
func (e *AggregateError) Unwrap() []error { return e.Errors }

// NewAggregateError returns a new AggregateError if there are errors,
// otherwise returns nil.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}
