// Package load turns raw model declarations into canonical property trees.
//
// Declarations come either from Go code (schema.Object, map[string]any,
// one-element []any shorthands and property builders) or from YAML model
// files read by Parse and Files.
package load

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jvdsande/harmony/schema"
	"github.com/jvdsande/harmony/schema/property"
)

// ErrMalformed is matched by every FieldError.
var ErrMalformed = errors.New("load: malformed field declaration")

// FieldError reports a declaration that is neither a property, an object nor
// a one-element array.
type FieldError struct {
	Path  string // Dotted path of the field
	Value any    // Offending declaration
	Cause error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("load: field %q: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("load: field %q: unsupported declaration %T", e.Path, e.Value)
}

// Unwrap returns the underlying error.
func (e *FieldError) Unwrap() error { return e.Cause }

// Is reports whether the target matches ErrMalformed.
func (e *FieldError) Is(target error) bool { return target == ErrMalformed }

// IsFieldError reports whether the error is a FieldError.
func IsFieldError(err error) bool {
	var fe *FieldError
	return errors.As(err, &fe)
}

// Sanitizer normalizes raw declarations.
type Sanitizer struct {
	// Strict returns malformed fields as errors instead of dropping them.
	Strict bool
	// Logger receives the warnings of lenient mode. Defaults to slog.Default.
	Logger *slog.Logger
}

// Sanitize normalizes decl with a lenient Sanitizer.
func Sanitize(name string, decl any, parent *property.Property) (*property.Property, error) {
	return (&Sanitizer{}).Sanitize(name, decl, parent)
}

// Sanitize returns the canonical property tree of decl, named name and
// linked under parent. A nil declaration is an empty schema.
//
// Declarations that are already properties are re-linked copies of
// themselves, so sanitizing a sanitized tree changes nothing but its
// position.
func (s *Sanitizer) Sanitize(name string, decl any, parent *property.Property) (*property.Property, error) {
	if decl == nil {
		decl = schema.Object{}
	}
	p, err := s.build(name, decl)
	if err != nil {
		return nil, err
	}
	return p.Clone(property.Named(name), property.Under(parent)), nil
}

func (s *Sanitizer) build(path string, decl any) (*property.Property, error) {
	switch d := decl.(type) {
	case property.Descriptor:
		p := d.Descriptor()
		if p == nil {
			return nil, &FieldError{Path: path, Value: decl}
		}
		if err := p.Err(); err != nil {
			return nil, &FieldError{Path: path, Value: decl, Cause: err}
		}
		return p, nil
	case schema.Object:
		return s.object(path, d)
	case map[string]any:
		return s.object(path, schema.ObjectOf(d))
	case []any:
		if len(d) != 1 {
			return nil, &FieldError{Path: path, Value: decl, Cause: fmt.Errorf("array shorthand expects one element, got %d", len(d))}
		}
		elem, err := s.build(path+"[]", d[0])
		if err != nil {
			return nil, err
		}
		return property.New(property.TypeArray, property.Config{Of: elem})
	}
	return nil, &FieldError{Path: path, Value: decl}
}

func (s *Sanitizer) object(path string, obj schema.Object) (*property.Property, error) {
	entries := make([]property.Entry, 0, len(obj))
	for _, f := range obj {
		child, err := s.build(path+"."+f.Name, f.Decl)
		if err != nil {
			if s.Strict || !IsFieldError(err) {
				return nil, err
			}
			s.logger().Warn("dropping malformed field", "field", path+"."+f.Name, "error", err)
			continue
		}
		entries = append(entries, property.Field(f.Name, child))
	}
	return property.New(property.TypeSchema, property.Config{Of: entries})
}

func (s *Sanitizer) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
