package gen

import (
	"context"
	"fmt"
	"maps"

	"github.com/jvdsande/harmony/compiler/load"
	"github.com/jvdsande/harmony/schema"
	"github.com/jvdsande/harmony/schema/crud"
	"github.com/jvdsande/harmony/schema/mixin"
	"github.com/jvdsande/harmony/schema/property"
)

// Model is the compiled form of a schema.Model. It is never modified after
// Compile returns.
type Model struct {
	// Name is the declared model name.
	Name string
	// Adapter names the storage adapter, the default one applied.
	Adapter string
	// External models are owned by another federated service.
	External bool
	// Schemas are the property views of the model.
	Schemas Schemas
	// Resolvers are the wrapped declared resolvers.
	Resolvers Resolvers
	// Scopes and Transforms of the generated CRUD resolvers, mixins merged.
	Scopes     map[crud.Kind]schema.ScopeFunc
	Transforms map[crud.Kind]schema.TransformFunc
	// Base maps the generated root fields to their kind.
	Base map[string]crud.Kind
	// Keys are the federation keys of the output type.
	Keys []string
}

// Schemas groups the four property views of a model.
type Schemas struct {
	// Main holds the stored fields, _id first.
	Main *property.Property
	// Computed holds the resolver-backed fields of the output type.
	Computed *property.Property
	// Queries and Mutations hold the root fields of the model.
	Queries   *property.Property
	Mutations *property.Property
}

// Resolvers groups the declared resolvers of a model, keyed by field name.
// Generated CRUD fields are not listed; see Model.Base.
type Resolvers struct {
	Computed  map[string]schema.ResolveFunc
	Queries   map[string]schema.ResolveFunc
	Mutations map[string]schema.ResolveFunc
	// Custom override the resolution of main fields.
	Custom map[string]schema.ResolveFunc
}

// TypeName returns the GraphQL object type of the model.
func (m *Model) TypeName() string { return property.Pascal(m.Name) }

// FieldName returns the generated root field of kind k.
func (m *Model) FieldName(k crud.Kind) string {
	return property.LowerCamel(m.Name) + k.Suffix()
}

// ID returns the _id property of the model.
func (m *Model) ID() *property.Property { return m.Schemas.Main.Field("_id") }

// compiler compiles the models of one graph.
type compiler struct {
	cfg *Config
	san *load.Sanitizer
}

func (c *compiler) compile(decl schema.Model) (*Model, error) {
	decl, err := mixin.Apply(decl)
	if err != nil {
		return nil, NewSchemaError(decl.Name, "", "cannot apply mixins", err)
	}
	m := &Model{
		Name:       decl.Name,
		Adapter:    decl.Adapter,
		External:   decl.External,
		Scopes:     maps.Clone(decl.Scopes),
		Transforms: maps.Clone(decl.Transforms),
		Base:       make(map[string]crud.Kind),
		Resolvers: Resolvers{
			Computed:  make(map[string]schema.ResolveFunc),
			Queries:   make(map[string]schema.ResolveFunc),
			Mutations: make(map[string]schema.ResolveFunc),
			Custom:    make(map[string]schema.ResolveFunc),
		},
	}
	if m.Adapter == "" {
		m.Adapter = c.cfg.DefaultAdapter
	}
	for k := range m.Scopes {
		if !k.Valid() {
			return nil, NewSchemaError(m.Name, "", fmt.Sprintf("scope for unknown %s", k), nil)
		}
	}
	if m.Schemas.Main, err = c.main(decl); err != nil {
		return nil, err
	}
	m.Keys = []string{"_id"}
	for name, f := range m.Schemas.Main.Fields().All() {
		if f.Federation().Primary {
			m.Keys = append(m.Keys, name)
		}
	}
	for name, fn := range decl.Resolvers {
		if m.Schemas.Main.Field(name) == nil {
			return nil, NewSchemaError(m.Name, name, "resolver for unknown field", nil)
		}
		m.Resolvers.Custom[name] = fn
	}
	if m.Schemas.Computed, err = c.group(m, decl.Name, decl.Computed.Fields, m.Resolvers.Computed); err != nil {
		return nil, err
	}
	if m.Schemas.Queries, err = c.root(m, decl, crud.Queries(), decl.Computed.Queries, "Query", m.Resolvers.Queries); err != nil {
		return nil, err
	}
	if m.Schemas.Mutations, err = c.root(m, decl, crud.Mutations(), decl.Computed.Mutations, "Mutation", m.Resolvers.Mutations); err != nil {
		return nil, err
	}
	return m, nil
}

// main sanitizes the stored fields and puts a required _id first.
func (c *compiler) main(decl schema.Model) (*property.Property, error) {
	p, err := c.san.Sanitize(decl.Name, decl.Schema, nil)
	if err != nil {
		return nil, NewSchemaError(decl.Name, "", "invalid schema", err)
	}
	if p.Type() != property.TypeSchema {
		return nil, NewSchemaError(decl.Name, "", fmt.Sprintf("schema must be an object, got %s", p.Type()), nil)
	}
	id := property.ID().Required()
	if declared := p.Field("_id"); declared != nil {
		if declared.Type() != property.TypeID {
			return nil, NewSchemaError(decl.Name, "_id", fmt.Sprintf("must be an id, got %s", declared.Type()), nil)
		}
		id = property.From(declared).Required()
	}
	if decl.External {
		id = id.External()
	}
	entries := []property.Entry{property.Field("_id", id)}
	for name, f := range p.Fields().All() {
		if name != "_id" {
			entries = append(entries, property.Field(name, f))
		}
	}
	return property.New(property.TypeSchema, property.Config{Name: decl.Name, Of: entries})
}

// root builds the Query or Mutation fields of a model: one generated field
// per kind, then the declared ones, which replace generated fields of the
// same name.
func (c *compiler) root(m *Model, decl schema.Model, kinds []crud.Kind, declared []schema.ComputedField, suffix string, resolvers map[string]schema.ResolveFunc) (*property.Property, error) {
	var base []property.Entry
	if !m.External {
		for _, k := range kinds {
			if c.cfg.Strict && m.Scopes[k] == nil {
				c.cfg.logger().Debug("hiding unscoped field", "model", m.Name, "kind", k)
				continue
			}
			p, err := ExtendField(k, m.Name)
			if err != nil {
				return nil, err
			}
			name := m.FieldName(k)
			base = append(base, property.Field(name, p))
			m.Base[name] = k
		}
	}
	p, err := c.group(m, property.Pascal(decl.Name)+suffix, declared, resolvers)
	if err != nil {
		return nil, err
	}
	for name := range p.Fields().All() {
		delete(m.Base, name)
	}
	entries := base
	for name, f := range p.Fields().All() {
		entries = append(entries, property.Field(name, f))
	}
	return property.New(property.TypeSchema, property.Config{Name: p.Name(), Of: entries})
}

// group compiles declared fields into a schema named name and registers
// their resolvers.
func (c *compiler) group(m *Model, name string, fields []schema.ComputedField, resolvers map[string]schema.ResolveFunc) (*property.Property, error) {
	entries := make([]property.Entry, 0, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return nil, NewSchemaError(m.Name, "", "computed field has no name", nil)
		}
		p, err := c.computed(m, f)
		if err != nil {
			if !c.cfg.Strict && load.IsFieldError(err) {
				c.cfg.logger().Warn("dropping malformed computed field", "model", m.Name, "field", f.Name, "error", err)
				continue
			}
			return nil, err
		}
		entries = append(entries, property.Field(f.Name, p))
		if fn := resolveOf(m.Name, f); fn != nil {
			resolvers[f.Name] = Pipeline(fn, f.Scopes, f.Transforms)
		}
	}
	return property.New(property.TypeSchema, property.Config{Name: name, Of: entries})
}

func (c *compiler) computed(m *Model, f schema.ComputedField) (*property.Property, error) {
	var b *property.Builder
	if f.Extends != 0 {
		if m.External {
			return nil, NewSchemaError(m.Name, f.Name, "external models cannot extend CRUD fields", nil)
		}
		p, err := ExtendField(f.Extends, m.Name)
		if err != nil {
			err.(*SchemaError).Field = f.Name
			return nil, err
		}
		b = property.From(p)
	} else {
		if f.Type == nil {
			return nil, NewSchemaError(m.Name, f.Name, "computed field has neither a type nor extends", nil)
		}
		p, err := c.san.Sanitize(f.Name, f.Type, nil)
		if err != nil {
			return nil, err
		}
		b = property.From(p)
		if f.Args != nil {
			args, err := c.san.Sanitize("", f.Args, nil)
			if err != nil {
				return nil, err
			}
			if args.Type() != property.TypeSchema {
				return nil, NewSchemaError(m.Name, f.Name, fmt.Sprintf("arguments must be an object, got %s", args.Type()), nil)
			}
			b.WithArgs(args)
		}
	}
	if f.Mode != 0 {
		b.WithMode(f.Mode)
	}
	if f.Description != "" {
		b.Describe(f.Description)
	}
	p := b.Descriptor()
	if err := p.Err(); err != nil {
		return nil, NewSchemaError(m.Name, f.Name, "invalid computed field", err)
	}
	return p, nil
}

// resolveOf returns the resolver of a declared field. Fields extending a
// CRUD kind without their own resolver delegate to the scoped generated
// resolver of that kind. Fields with neither are resolved by the executor
// default and get no entry.
func resolveOf(model string, f schema.ComputedField) schema.ResolveFunc {
	if f.Resolve != nil {
		return f.Resolve
	}
	if !f.Extends.Valid() {
		return nil
	}
	kind := f.Extends
	return func(ctx context.Context, p schema.ResolveParams) (any, error) {
		if p.Resolvers == nil {
			return nil, nil
		}
		base := p.Resolvers.Scoped(model, kind)
		if base == nil {
			return nil, nil
		}
		return base(ctx, p)
	}
}
