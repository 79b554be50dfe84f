package gen

import (
	"errors"
	"strings"

	"github.com/jvdsande/harmony/compiler/load"
	"github.com/jvdsande/harmony/schema"
	"github.com/jvdsande/harmony/schema/property"
)

// Graph is the registry of compiled models. It is built once by Compile
// and passed to the printer and the resolver wiring, which look models up
// by name instead of holding pointers between them.
type Graph struct {
	*Config
	// Models in declaration order.
	Models []*Model
	index  map[string]*Model
}

// Compile compiles models into a Graph. Owners of identifiers and
// references are assigned once every model is known, so models may
// reference each other in any order, cycles included.
func Compile(models []schema.Model, opts ...Option) (*Graph, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	g := &Graph{Config: cfg, index: make(map[string]*Model, len(models))}
	c := &compiler{cfg: cfg, san: &load.Sanitizer{Strict: cfg.Strict, Logger: cfg.logger()}}
	for _, decl := range models {
		if strings.TrimSpace(decl.Name) == "" {
			return nil, NewSchemaError("", "", "model has no name", nil)
		}
		key := property.Pascal(decl.Name)
		if _, ok := g.index[key]; ok {
			return nil, NewSchemaError(decl.Name, "", "duplicate model", nil)
		}
		m, err := c.compile(decl)
		if err != nil {
			return nil, err
		}
		g.Models = append(g.Models, m)
		g.index[key] = m
	}
	if err := g.assignOwners(); err != nil {
		return nil, err
	}
	g.logCycles()
	return g, nil
}

// Model returns the model named name, or nil.
func (g *Graph) Model(name string) *Model {
	return g.index[property.Pascal(name)]
}

// assignOwners tags every identifier and reference without an owner with
// the adapter of the model it identifies: the referenced model for
// references, the declaring model otherwise.
func (g *Graph) assignOwners() error {
	var errs []error
	for _, m := range g.Models {
		owner := func(p *property.Property) string {
			if !p.Type().IsReference() {
				return m.Adapter
			}
			target := g.Model(p.Target())
			if target == nil {
				errs = append(errs, &ReferenceError{Model: m.Name, Field: path(p), Target: p.Target()})
				return m.Adapter
			}
			if target.Adapter != "" {
				return target.Adapter
			}
			return m.Adapter
		}
		s := &m.Schemas
		s.Main = s.Main.Clone(property.Owners(owner))
		s.Computed = s.Computed.Clone(property.Owners(owner))
		s.Queries = s.Queries.Clone(property.Owners(owner))
		s.Mutations = s.Mutations.Clone(property.Owners(owner))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	for _, m := range g.Models {
		for _, root := range []*property.Property{m.Schemas.Main, m.Schemas.Computed} {
			var err error
			root.Walk(func(p *property.Property) bool {
				if err != nil || p.Type() != property.TypeReversedReference {
					return err == nil
				}
				target := g.Model(p.Target())
				if !target.External && target.Schemas.Main.Field(p.On()) == nil {
					err = NewSchemaError(m.Name, path(p), "reversed reference on unknown field "+target.Name+"."+p.On(), nil)
				}
				return true
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// Adapters returns the owners of the identifiers in use, in first-use
// order. Identifiers without owner are left out.
func (g *Graph) Adapters() []string {
	var (
		out  []string
		seen = make(map[string]bool)
	)
	for _, m := range g.Models {
		for _, root := range []*property.Property{m.Schemas.Main, m.Schemas.Computed, m.Schemas.Queries, m.Schemas.Mutations} {
			root.Walk(func(p *property.Property) bool {
				if o := p.Owner(); o != "" && !seen[o] {
					seen[o] = true
					out = append(out, o)
				}
				return true
			})
		}
	}
	return out
}

// path returns the dotted path of p below its root.
func path(p *property.Property) string {
	var parts []string
	for n := p; n != nil && n.Parent() != nil; n = n.Parent() {
		if n.Name() != "" {
			parts = append(parts, n.Name())
		}
	}
	var b strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		b.WriteString(parts[i])
		if i > 0 {
			b.WriteByte('.')
		}
	}
	return b.String()
}
