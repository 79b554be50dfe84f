// Package mixin provides common mixin implementations for harmony models.
//
// These mixins are OPTIONAL and provided as convenient starting points.
// Users are encouraged to create their own mixins tailored to their needs.
//
// Available mixins:
//   - CreateTime: Adds a createdAt date stamped on creation
//   - UpdateTime: Adds an updatedAt date stamped on every write
//   - Time: Combines CreateTime and UpdateTime
//   - ID: Generates UUID document ids on creation
//   - SoftDelete: Adds deletedAt and hides deleted documents from reads
//   - TenantID: Adds tenantId and isolates tenants through privacy.TenantRule
//   - TimeSoftDelete: Combines Time and SoftDelete
//
// Usage:
//
//	schema.Model{
//	    Name:   "invoice",
//	    Mixins: []schema.Mixin{mixin.Time{}, mixin.SoftDelete{}},
//	}
//
// Custom mixins:
//
// For project-specific needs, define your own mixins:
//
//	type AuditMixin struct {
//	    mixin.Schema
//	}
//
//	func (AuditMixin) Fields() schema.Object {
//	    return schema.Object{
//	        schema.F("createdBy", property.String()),
//	    }
//	}
package mixin

import (
	"context"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/jvdsande/harmony/privacy"
	"github.com/jvdsande/harmony/schema"
	"github.com/jvdsande/harmony/schema/crud"
	"github.com/jvdsande/harmony/schema/mixin"
	"github.com/jvdsande/harmony/schema/property"
)

// Clock returns the current time. A nil Clock uses time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

// CreateTime adds a createdAt date set when documents are created.
// The field is output only.
type CreateTime struct {
	mixin.Schema
	Clock Clock
}

// Fields of the create time mixin.
func (CreateTime) Fields() schema.Object {
	return schema.Object{
		schema.F("createdAt", property.Date().WithMode(property.Output)),
	}
}

// Scopes of the create time mixin.
func (m CreateTime) Scopes() map[crud.Kind]schema.ScopeFunc {
	return stamp(map[string]func() any{"createdAt": func() any { return m.Clock.now() }}, crud.Create, crud.CreateMany)
}

// create time mixin must implement `Mixin` interface.
var _ schema.Mixin = (*CreateTime)(nil)

// UpdateTime adds an updatedAt date set on every create and update.
type UpdateTime struct {
	mixin.Schema
	Clock Clock
}

// Fields of the update time mixin.
func (UpdateTime) Fields() schema.Object {
	return schema.Object{
		schema.F("updatedAt", property.Date().WithMode(property.Output)),
	}
}

// Scopes of the update time mixin.
func (m UpdateTime) Scopes() map[crud.Kind]schema.ScopeFunc {
	return stamp(map[string]func() any{"updatedAt": func() any { return m.Clock.now() }},
		crud.Create, crud.CreateMany, crud.Update, crud.UpdateMany)
}

// update time mixin must implement `Mixin` interface.
var _ schema.Mixin = (*UpdateTime)(nil)

// Time composes CreateTime and UpdateTime mixins.
// Provides both createdAt and updatedAt fields.
//
// This is the most common mixin for tracking document timestamps.
type Time struct {
	mixin.Schema
	Clock Clock
}

// Fields of the time mixin.
func (m Time) Fields() schema.Object {
	return append(CreateTime{Clock: m.Clock}.Fields(), UpdateTime{Clock: m.Clock}.Fields()...)
}

// Scopes of the time mixin.
func (m Time) Scopes() map[crud.Kind]schema.ScopeFunc {
	return merge(CreateTime{Clock: m.Clock}.Scopes(), UpdateTime{Clock: m.Clock}.Scopes())
}

// time mixin must implement `Mixin` interface.
var _ schema.Mixin = (*Time)(nil)

// ID generates a random UUID for created documents that carry no _id.
// Uses github.com/google/uuid for UUID generation.
type ID struct{ mixin.Schema }

// Scopes of the ID mixin.
func (ID) Scopes() map[crud.Kind]schema.ScopeFunc {
	return stamp(map[string]func() any{"_id": func() any { return uuid.NewString() }}, crud.Create, crud.CreateMany)
}

// id mixin must implement `Mixin` interface.
var _ schema.Mixin = (*ID)(nil)

// SoftDelete adds a deletedAt date. Documents are deleted by setting it
// through an update, and read calls skip documents where it is set.
type SoftDelete struct{ mixin.Schema }

// Fields of the SoftDelete mixin.
func (SoftDelete) Fields() schema.Object {
	return schema.Object{
		schema.F("deletedAt", property.Date()),
	}
}

// Scopes of the SoftDelete mixin.
func (SoftDelete) Scopes() map[crud.Kind]schema.ScopeFunc {
	hide := func(_ context.Context, p schema.ResolveParams) (map[string]any, error) {
		args := maps.Clone(p.Args)
		if args == nil {
			args = map[string]any{}
		}
		f, _ := args["filter"].(map[string]any)
		f = maps.Clone(f)
		if f == nil {
			f = map[string]any{}
		}
		ops, _ := f["_operators"].(map[string]any)
		ops = maps.Clone(ops)
		if ops == nil {
			ops = map[string]any{}
		}
		if _, ok := ops["deletedAt"]; !ok {
			ops["deletedAt"] = map[string]any{"exists": false}
		}
		f["_operators"] = ops
		args["filter"] = f
		return args, nil
	}
	return map[crud.Kind]schema.ScopeFunc{crud.Read: hide, crud.ReadMany: hide, crud.Count: hide}
}

// soft delete mixin must implement `Mixin` interface.
var _ schema.Mixin = (*SoftDelete)(nil)

// TenantID adds a tenantId field for multi-tenancy support.
// Reads are restricted to the viewer tenant and writes to another tenant
// are denied, see privacy.TenantRule.
type TenantID struct{ mixin.Schema }

// Fields of the TenantID mixin.
func (TenantID) Fields() schema.Object {
	return schema.Object{
		schema.F("tenantId", property.String()),
	}
}

// Scopes of the TenantID mixin.
func (TenantID) Scopes() map[crud.Kind]schema.ScopeFunc {
	return privacy.Policy{privacy.TenantRule("tenantId")}.Scopes(
		crud.Read, crud.ReadMany, crud.Count,
		crud.Create, crud.CreateMany, crud.Update, crud.UpdateMany,
	)
}

// tenant id mixin must implement `Mixin` interface.
var _ schema.Mixin = (*TenantID)(nil)

// TimeSoftDelete composes Time and SoftDelete mixins.
// Provides createdAt, updatedAt and deletedAt fields.
type TimeSoftDelete struct {
	mixin.Schema
	Clock Clock
}

// Fields of the TimeSoftDelete mixin.
func (m TimeSoftDelete) Fields() schema.Object {
	return append(Time{Clock: m.Clock}.Fields(), SoftDelete{}.Fields()...)
}

// Scopes of the TimeSoftDelete mixin.
func (m TimeSoftDelete) Scopes() map[crud.Kind]schema.ScopeFunc {
	return merge(Time{Clock: m.Clock}.Scopes(), SoftDelete{}.Scopes())
}

// time soft delete mixin must implement `Mixin` interface.
var _ schema.Mixin = (*TimeSoftDelete)(nil)

// stamp returns scopes setting the given fields on the records of write
// calls. Creates keep values set by the caller, updates always overwrite.
func stamp(values map[string]func() any, kinds ...crud.Kind) map[crud.Kind]schema.ScopeFunc {
	out := make(map[crud.Kind]schema.ScopeFunc, len(kinds))
	for _, k := range kinds {
		keep := k == crud.Create || k == crud.CreateMany
		set := func(rec map[string]any) map[string]any {
			rec = maps.Clone(rec)
			if rec == nil {
				rec = map[string]any{}
			}
			for field, value := range values {
				if _, ok := rec[field]; ok && keep {
					continue
				}
				rec[field] = value()
			}
			return rec
		}
		out[k] = func(_ context.Context, p schema.ResolveParams) (map[string]any, error) {
			args := maps.Clone(p.Args)
			if args == nil {
				args = map[string]any{}
			}
			if k.IsList() {
				list, _ := args["records"].([]any)
				recs := make([]any, len(list))
				for i, v := range list {
					rec, _ := v.(map[string]any)
					recs[i] = set(rec)
				}
				args["records"] = recs
			} else {
				rec, _ := args["record"].(map[string]any)
				args["record"] = set(rec)
			}
			return args, nil
		}
	}
	return out
}

// merge chains the scopes of several mixins, kind by kind.
func merge(scopes ...map[crud.Kind]schema.ScopeFunc) map[crud.Kind]schema.ScopeFunc {
	out := make(map[crud.Kind]schema.ScopeFunc)
	for _, k := range crud.Kinds() {
		var chain []schema.ScopeFunc
		for _, m := range scopes {
			if s := m[k]; s != nil {
				chain = append(chain, s)
			}
		}
		switch len(chain) {
		case 0:
		case 1:
			out[k] = chain[0]
		default:
			out[k] = schema.ChainScopes(chain...)
		}
	}
	return out
}
