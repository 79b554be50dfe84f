package schema

import (
	"context"
	"slices"

	"github.com/jvdsande/harmony/schema/crud"
	"github.com/jvdsande/harmony/schema/property"
)

// Model is the declaration of one data model.
type Model struct {
	// Name of the model. Types are named after its PascalCase form and root
	// fields after its lowerCamelCase form.
	Name string
	// Schema is the raw field declaration. See Object.
	Schema any
	// Computed declares virtual fields, queries and mutations.
	Computed Computed
	// Scopes rewrite the arguments of the generated CRUD resolvers.
	Scopes map[crud.Kind]ScopeFunc
	// Transforms post-process the outcome of the generated CRUD resolvers.
	Transforms map[crud.Kind]TransformFunc
	// Resolvers override the resolution of main schema fields.
	Resolvers map[string]ResolveFunc
	// Mixins contribute fields, scopes and transforms.
	Mixins []Mixin
	// External models are owned by another federated service.
	External bool
	// Adapter names the storage adapter. Empty uses the default adapter.
	Adapter string
}

// Field is one named entry of an Object declaration.
type Field struct {
	Name string
	// Decl is a property.Descriptor, an Object, a map[string]any or a
	// one-element []any array shorthand.
	Decl any
}

// Object is an ordered nested field declaration.
type Object []Field

// F returns a Field.
func F(name string, decl any) Field {
	return Field{Name: name, Decl: decl}
}

// ObjectOf converts a map declaration to an Object. Go maps carry no
// insertion order, so keys are sorted.
func ObjectOf(m map[string]any) Object {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	out := make(Object, 0, len(names))
	for _, name := range names {
		out = append(out, F(name, m[name]))
	}
	return out
}

// Computed groups the virtual declarations of a model.
type Computed struct {
	// Fields are added to the output type of the model.
	Fields []ComputedField
	// Queries are added to the Query type.
	Queries []ComputedField
	// Mutations are added to the Mutation type.
	Mutations []ComputedField
}

// ComputedField declares a resolver-backed field.
type ComputedField struct {
	Name string
	// Type is the raw declaration of the result. Ignored when Extends is set.
	Type any
	// Args is the raw declaration of the arguments. Ignored when Extends is set.
	Args any
	// Extends reuses the type and arguments of a generated CRUD field.
	Extends crud.Kind
	// Mode restricts the exposure of a computed field.
	Mode        property.Mode
	Description string
	Resolve     ResolveFunc
	Scopes      []ScopeFunc
	Transforms  []TransformFunc
}

// ResolveParams are the inputs of a resolver call.
type ResolveParams struct {
	// Source is the parent value, a map[string]any for model documents.
	Source any
	// Args are the field arguments, possibly rewritten by scopes.
	Args map[string]any
	// Info is the executor specific resolve info.
	Info any
	// Resolvers gives access to the CRUD resolvers of every model.
	Resolvers Resolvers
}

// Resolvers exposes the generated CRUD resolvers of every model.
type Resolvers interface {
	// Scoped returns the resolver of kind k of model, scopes applied,
	// or nil if the model is unknown.
	Scoped(model string, k crud.Kind) ResolveFunc
	// Unscoped returns the resolver of kind k of model without scopes,
	// or nil if the model is unknown.
	Unscoped(model string, k crud.Kind) ResolveFunc
}

// ResolveFunc resolves a field.
type ResolveFunc func(ctx context.Context, p ResolveParams) (any, error)

// ScopeFunc may rewrite the arguments of a resolver call before it runs.
// Returning nil arguments keeps the current ones.
type ScopeFunc func(ctx context.Context, p ResolveParams) (map[string]any, error)

// Outcome is the result seen by transforms.
type Outcome struct {
	Value any
	Err   error
}

// TransformFunc post-processes an outcome. It may replace Value and set or
// clear Err. Returning an error stops the remaining transforms.
type TransformFunc func(ctx context.Context, p ResolveParams, out *Outcome) error

// Mixin contributes reusable fields, scopes and transforms to models.
type Mixin interface {
	Fields() Object
	Scopes() map[crud.Kind]ScopeFunc
	Transforms() map[crud.Kind]TransformFunc
}

// ChainScopes returns a scope running scopes in order. The first error stops
// the chain.
func ChainScopes(scopes ...ScopeFunc) ScopeFunc {
	return func(ctx context.Context, p ResolveParams) (map[string]any, error) {
		for _, scope := range scopes {
			if scope == nil {
				continue
			}
			args, err := scope(ctx, p)
			if err != nil {
				return nil, err
			}
			if args != nil {
				p.Args = args
			}
		}
		return p.Args, nil
	}
}

// ChainTransforms returns a transform running transforms in order. The first
// error stops the chain.
func ChainTransforms(transforms ...TransformFunc) TransformFunc {
	return func(ctx context.Context, p ResolveParams, out *Outcome) error {
		for _, transform := range transforms {
			if transform == nil {
				continue
			}
			if err := transform(ctx, p, out); err != nil {
				return err
			}
		}
		return nil
	}
}
