// Package mixin provides the base mixin implementation for harmony models.
//
// A mixin is a reusable set of fields, scopes and transforms that can be
// shared by several models. Embed Schema and override what you need:
//
//	type Audit struct {
//	    mixin.Schema
//	}
//
//	func (Audit) Fields() schema.Object {
//	    return schema.Object{
//	        schema.F("createdBy", property.String()),
//	    }
//	}
//
// Ready-to-use mixins (timestamps, soft delete, tenant id) live in the
// contrib/mixin package.
package mixin

import (
	"fmt"

	"github.com/jvdsande/harmony/schema"
	"github.com/jvdsande/harmony/schema/crud"
	"github.com/jvdsande/harmony/schema/property"
)

// Schema is the default implementation of schema.Mixin.
type Schema struct{}

// Fields returns the fields of the mixin.
func (Schema) Fields() schema.Object { return nil }

// Scopes returns the scopes of the mixin.
func (Schema) Scopes() map[crud.Kind]schema.ScopeFunc { return nil }

// Transforms returns the transforms of the mixin.
func (Schema) Transforms() map[crud.Kind]schema.TransformFunc { return nil }

var _ schema.Mixin = (*Schema)(nil)

// Apply returns a copy of m with the contributions of its mixins merged in.
// Mixin fields come first, in mixin order, and are overridden by model fields
// of the same name. Mixin scopes and transforms run before the model ones of
// the same kind. Mixin fields need an object schema; other declarations
// are an error.
func Apply(m schema.Model) (schema.Model, error) {
	if len(m.Mixins) == 0 {
		return m, nil
	}
	var (
		fields     schema.Object
		scopes     = make(map[crud.Kind][]schema.ScopeFunc)
		transforms = make(map[crud.Kind][]schema.TransformFunc)
	)
	for _, mx := range m.Mixins {
		fields = append(fields, mx.Fields()...)
		for k, s := range mx.Scopes() {
			scopes[k] = append(scopes[k], s)
		}
		for k, t := range mx.Transforms() {
			transforms[k] = append(transforms[k], t)
		}
	}
	if len(fields) > 0 {
		merged, err := Merge(fields, m.Schema)
		if err != nil {
			return m, err
		}
		m.Schema = merged
	}
	if len(scopes) > 0 {
		merged := make(map[crud.Kind]schema.ScopeFunc, len(scopes))
		for _, k := range crud.Kinds() {
			chain := append(scopes[k], m.Scopes[k])
			if len(scopes[k]) > 0 {
				merged[k] = schema.ChainScopes(chain...)
			} else if m.Scopes[k] != nil {
				merged[k] = m.Scopes[k]
			}
		}
		m.Scopes = merged
	}
	if len(transforms) > 0 {
		merged := make(map[crud.Kind]schema.TransformFunc, len(transforms))
		for _, k := range crud.Kinds() {
			chain := append(transforms[k], m.Transforms[k])
			if len(transforms[k]) > 0 {
				merged[k] = schema.ChainTransforms(chain...)
			} else if m.Transforms[k] != nil {
				merged[k] = m.Transforms[k]
			}
		}
		m.Transforms = merged
	}
	m.Mixins = nil
	return m, nil
}

// Merge prepends fields to a raw model schema. The model schema must be an
// Object, a map[string]any or a schema-typed property.Descriptor.
func Merge(fields schema.Object, decl any) (schema.Object, error) {
	var own schema.Object
	switch d := decl.(type) {
	case nil:
	case schema.Object:
		own = d
	case map[string]any:
		own = schema.ObjectOf(d)
	case property.Descriptor:
		p := d.Descriptor()
		if p == nil {
			break
		}
		if err := p.Err(); err != nil {
			return nil, err
		}
		if p.Type() != property.TypeSchema {
			return nil, fmt.Errorf("mixin fields need an object schema, got %s", p.Type())
		}
		for name, f := range p.Fields().All() {
			own = append(own, schema.F(name, f))
		}
	default:
		return nil, fmt.Errorf("mixin fields need an object schema, got %T", decl)
	}
	out := make(schema.Object, 0, len(fields)+len(own))
	for _, f := range fields {
		if !has(own, f.Name) {
			out = append(out, f)
		}
	}
	return append(out, own...), nil
}

func has(o schema.Object, name string) bool {
	for _, f := range o {
		if f.Name == name {
			return true
		}
	}
	return false
}
