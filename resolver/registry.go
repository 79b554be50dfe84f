package resolver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jvdsande/harmony/adapter"
	"github.com/jvdsande/harmony/compiler/gen"
	"github.com/jvdsande/harmony/schema"
	"github.com/jvdsande/harmony/schema/crud"
)

// Adapters maps adapter names to adapters.
type Adapters map[string]adapter.Adapter

// Map holds resolvers by GraphQL type name and field name.
type Map map[string]map[string]schema.ResolveFunc

func (m Map) set(typeName, field string, fn schema.ResolveFunc) {
	if m[typeName] == nil {
		m[typeName] = make(map[string]schema.ResolveFunc)
	}
	m[typeName][field] = fn
}

// Bundle holds the generated CRUD resolvers of one model.
type Bundle struct {
	// Scoped resolvers run the model scopes, the adapter call and the
	// model transforms.
	Scoped map[crud.Kind]schema.ResolveFunc
	// Unscoped resolvers skip the scopes.
	Unscoped map[crud.Kind]schema.ResolveFunc
}

// Registry holds the CRUD bundles of every model of a graph. It implements
// schema.Resolvers.
type Registry struct {
	graph    *gen.Graph
	adapters Adapters
	cfg      config
	bundles  map[string]*Bundle
}

// NewRegistry builds the bundles of every non-external model of g.
func NewRegistry(g *gen.Graph, adapters Adapters, opts ...Option) (*Registry, error) {
	if g == nil {
		return nil, gen.NewConfigError("Graph", nil, "graph is required")
	}
	r := &Registry{
		graph:    g,
		adapters: adapters,
		cfg:      config{logger: slog.Default()},
		bundles:  make(map[string]*Bundle, len(g.Models)),
	}
	for _, opt := range opts {
		opt(&r.cfg)
	}
	r.cfg.logger = r.cfg.logger.With("component", "resolver")
	var missing []string
	for _, m := range g.Models {
		if m.External {
			continue
		}
		if adapters[m.Adapter] == nil {
			missing = append(missing, m.Name)
		}
		r.bundles[m.Name] = r.bundle(m)
	}
	if len(missing) > 0 {
		r.cfg.logger.Warn("no adapter for models, CRUD resolvers return empty results", "models", missing)
	}
	return r, nil
}

func (r *Registry) bundle(m *gen.Model) *Bundle {
	b := &Bundle{
		Scoped:   make(map[crud.Kind]schema.ResolveFunc, 9),
		Unscoped: make(map[crud.Kind]schema.ResolveFunc, 9),
	}
	for _, k := range crud.Kinds() {
		base := r.base(m, k)
		transforms := []schema.TransformFunc{m.Transforms[k]}
		b.Scoped[k] = r.inject(gen.Pipeline(base, []schema.ScopeFunc{m.Scopes[k]}, transforms))
		b.Unscoped[k] = r.inject(gen.Pipeline(base, nil, transforms))
	}
	return b
}

// base calls the adapter of m with the arguments of the call.
func (r *Registry) base(m *gen.Model, k crud.Kind) schema.ResolveFunc {
	return func(ctx context.Context, p schema.ResolveParams) (any, error) {
		a := r.adapters[m.Adapter]
		if a == nil {
			return empty(k), nil
		}
		return adapter.Call(ctx, a, k, adapter.Params{
			Model:  m.Name,
			Args:   p.Args,
			Source: p.Source,
			Info:   p.Info,
		})
	}
}

// empty is the result of kind k without an adapter.
func empty(k crud.Kind) any {
	if k.IsList() {
		return []adapter.Entity{}
	}
	return nil
}

// inject passes the registry to fn.
func (r *Registry) inject(fn schema.ResolveFunc) schema.ResolveFunc {
	if fn == nil {
		return nil
	}
	return func(ctx context.Context, p schema.ResolveParams) (any, error) {
		p.Resolvers = r
		return fn(ctx, p)
	}
}

// Bundle returns the CRUD bundle of model, or nil.
func (r *Registry) Bundle(model string) *Bundle {
	if m := r.graph.Model(model); m != nil {
		return r.bundles[m.Name]
	}
	return nil
}

// Scoped implements schema.Resolvers.
func (r *Registry) Scoped(model string, k crud.Kind) schema.ResolveFunc {
	if b := r.Bundle(model); b != nil {
		return b.Scoped[k]
	}
	return nil
}

// Unscoped implements schema.Resolvers.
func (r *Registry) Unscoped(model string, k crud.Kind) schema.ResolveFunc {
	if b := r.Bundle(model); b != nil {
		return b.Unscoped[k]
	}
	return nil
}

// Map returns the resolver map of the graph.
func (r *Registry) Map() (Map, error) {
	out := Map{}
	var entities []string
	for _, m := range r.graph.Models {
		typeName := m.TypeName()
		if err := r.references(out, m); err != nil {
			return nil, err
		}
		for name, fn := range m.Resolvers.Custom {
			out.set(typeName, name, r.inject(fn))
		}
		for name, fn := range m.Resolvers.Computed {
			out.set(typeName, name, r.inject(fn))
		}
		for name, fn := range m.Resolvers.Queries {
			out.set("Query", name, r.inject(fn))
		}
		for name, fn := range m.Resolvers.Mutations {
			out.set("Mutation", name, r.inject(fn))
		}
		for name, k := range m.Base {
			root := "Query"
			if k.IsMutation() {
				root = "Mutation"
			}
			out.set(root, name, r.Scoped(m.Name, k))
		}
		if !m.External {
			out.set(typeName, "__resolveReference", r.entity(m))
			entities = append(entities, m.Name)
		}
	}
	if !r.cfg.federationScopes && len(entities) > 0 {
		r.cfg.logger.Info("__resolveReference bypasses model scopes", "models", entities)
	}
	return out, nil
}

// entity returns the federation entity resolver of m. The source is the
// entity representation sent by the gateway.
func (r *Registry) entity(m *gen.Model) schema.ResolveFunc {
	read := r.Unscoped(m.Name, crud.Read)
	if r.cfg.federationScopes {
		read = r.Scoped(m.Name, crud.Read)
	}
	return func(ctx context.Context, p schema.ResolveParams) (any, error) {
		rep := adapter.EntityOf(p.Source)
		if rep == nil || rep["_id"] == nil {
			return nil, gen.GraphQLError(fmt.Errorf("resolver: %s reference without _id", m.TypeName()))
		}
		return read(ctx, schema.ResolveParams{
			Source: p.Source,
			Args:   map[string]any{"filter": map[string]any{"_id": rep["_id"]}},
			Info:   p.Info,
		})
	}
}

// Build returns the resolver map of g.
func Build(g *gen.Graph, adapters Adapters, opts ...Option) (Map, error) {
	r, err := NewRegistry(g, adapters, opts...)
	if err != nil {
		return nil, err
	}
	return r.Map()
}

var _ schema.Resolvers = (*Registry)(nil)
