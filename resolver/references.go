package resolver

import (
	"context"

	"github.com/jvdsande/harmony/adapter"
	"github.com/jvdsande/harmony/compiler/gen"
	"github.com/jvdsande/harmony/schema"
	"github.com/jvdsande/harmony/schema/property"
)

// reference describes how a field of an object type is resolved.
type reference struct {
	target  *gen.Model
	field   string
	foreign string
	many    bool
}

// references adds a resolver for every output reference field of the
// stored schema of m, nested objects included.
func (r *Registry) references(out Map, m *gen.Model) error {
	var err error
	m.Schemas.Main.Walk(func(p *property.Property) bool {
		if err != nil {
			return false
		}
		if p.Type() != property.TypeSchema {
			return true
		}
		for name, f := range p.Fields().All() {
			if !f.Exposed(false) {
				continue
			}
			ref, ok, rerr := r.reference(m, f)
			if rerr != nil {
				err = rerr
				return false
			}
			if ok {
				out.set(p.GraphQLName(), name, r.resolveReference(ref))
			}
		}
		return true
	})
	return err
}

func (r *Registry) reference(m *gen.Model, f *property.Property) (reference, bool, error) {
	node, many := f, false
	if f.Type() == property.TypeArray {
		node, many = f.Elem(), true
	}
	ref := reference{many: many}
	switch node.Type() {
	case property.TypeReference:
		ref.field, ref.foreign = f.Name(), "_id"
	case property.TypeReversedReference:
		ref.field, ref.foreign = "_id", node.On()
	default:
		return ref, false, nil
	}
	ref.target = r.graph.Model(node.Target())
	if ref.target == nil {
		return ref, false, &gen.ReferenceError{Model: m.Name, Field: f.Name(), Target: node.Target()}
	}
	return ref, true, nil
}

func (r *Registry) resolveReference(ref reference) schema.ResolveFunc {
	return func(ctx context.Context, p schema.ResolveParams) (any, error) {
		source := adapter.EntityOf(p.Source)
		if ref.target.External {
			return stubs(ref, source), nil
		}
		a := r.adapters[ref.target.Adapter]
		if a == nil || source == nil {
			if ref.many {
				return []adapter.Entity{}, nil
			}
			return nil, nil
		}
		params := adapter.RefParams{
			Model:            ref.target.Name,
			Source:           source,
			FieldName:        ref.field,
			ForeignFieldName: ref.foreign,
			Info:             p.Info,
		}
		if ref.many {
			docs, err := a.ResolveRefs(ctx, params)
			if err != nil {
				return nil, gen.GraphQLError(err)
			}
			return docs, nil
		}
		doc, err := a.ResolveRef(ctx, params)
		if err != nil {
			return nil, gen.GraphQLError(err)
		}
		if doc == nil {
			return nil, nil
		}
		return doc, nil
	}
}

// stubs returns the entity representations of the external models
// referenced from source. The owning service resolves the other fields.
func stubs(ref reference, source adapter.Entity) any {
	typeName := ref.target.TypeName()
	stub := func(id any) adapter.Entity {
		return adapter.Entity{"__typename": typeName, "_id": id}
	}
	var value any
	if source != nil && ref.foreign == "_id" {
		value = source[ref.field]
	}
	if !ref.many {
		if value == nil {
			return nil
		}
		return stub(value)
	}
	ids, _ := value.([]any)
	out := make([]adapter.Entity, 0, len(ids))
	for _, id := range ids {
		if id != nil {
			out = append(out, stub(id))
		}
	}
	return out
}
