// Package adapter defines the storage contract behind the generated CRUD
// resolvers.
//
// An Adapter serves every model configured with its name. The resolver
// package calls it with the arguments of the generated root fields:
//
//	read       {filter, skip, sort}
//	readMany   {filter, skip, limit, sort}
//	count      {filter}
//	create     {record}
//	createMany {records}
//	update     {record}   record._id selects the document
//	updateMany {records}
//	delete     {_id}
//	deleteMany {_ids}
//
// Filters use the GraphQL shape of {Model}FilterInput; the filter package
// turns them into a query document that adapters can evaluate or translate.
// Adapters report successful writes to the Events given at initialization.
package adapter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jvdsande/harmony/compiler/gen"
	"github.com/jvdsande/harmony/schema/crud"
)

// Entity is a stored document.
type Entity = map[string]any

// Adapter is implemented by storage backends.
type Adapter interface {
	// Initialize prepares the storage of the given models.
	Initialize(ctx context.Context, p InitParams) error
	// Close releases the resources of the adapter.
	Close(ctx context.Context) error

	// ResolveBatch returns the documents of p.Model whose p.FieldName is one
	// of p.Keys, in any order.
	ResolveBatch(ctx context.Context, p BatchParams) ([]Entity, error)
	// ResolveRef returns the first document of p.Model whose
	// p.ForeignFieldName matches the p.FieldName value of p.Source.
	ResolveRef(ctx context.Context, p RefParams) (Entity, error)
	// ResolveRefs returns every such document.
	ResolveRefs(ctx context.Context, p RefParams) ([]Entity, error)

	Read(ctx context.Context, p Params) (Entity, error)
	ReadMany(ctx context.Context, p Params) ([]Entity, error)
	Count(ctx context.Context, p Params) (int, error)
	Create(ctx context.Context, p Params) (Entity, error)
	CreateMany(ctx context.Context, p Params) ([]Entity, error)
	Update(ctx context.Context, p Params) (Entity, error)
	UpdateMany(ctx context.Context, p Params) ([]Entity, error)
	Delete(ctx context.Context, p Params) (Entity, error)
	DeleteMany(ctx context.Context, p Params) ([]Entity, error)
}

// InitParams are passed to Initialize.
type InitParams struct {
	// Models are the models stored by the adapter.
	Models []*gen.Model
	Events Events
	Logger *slog.Logger
}

// Call dispatches a CRUD call of kind k to a. List kinds return []Entity,
// Count returns an int and the others an Entity.
func Call(ctx context.Context, a Adapter, k crud.Kind, p Params) (any, error) {
	switch k {
	case crud.Read:
		return single(a.Read(ctx, p))
	case crud.ReadMany:
		return a.ReadMany(ctx, p)
	case crud.Count:
		return a.Count(ctx, p)
	case crud.Create:
		return single(a.Create(ctx, p))
	case crud.CreateMany:
		return a.CreateMany(ctx, p)
	case crud.Update:
		return single(a.Update(ctx, p))
	case crud.UpdateMany:
		return a.UpdateMany(ctx, p)
	case crud.Delete:
		return single(a.Delete(ctx, p))
	case crud.DeleteMany:
		return a.DeleteMany(ctx, p)
	default:
		return nil, fmt.Errorf("adapter: unknown operation %s", k)
	}
}

// single turns a nil Entity into a nil interface so resolvers see null.
func single(e Entity, err error) (any, error) {
	if e == nil {
		return nil, err
	}
	return e, err
}

// EntityOf returns v as an Entity, or nil when v is not a document.
func EntityOf(v any) Entity {
	switch v := v.(type) {
	case map[string]any:
		return v
	default:
		return nil
	}
}

// Clone returns a deep copy of e. Nested objects and lists are copied;
// other values are shared.
func Clone(e Entity) Entity {
	if e == nil {
		return nil
	}
	out := make(Entity, len(e))
	for k, v := range e {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return Clone(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
