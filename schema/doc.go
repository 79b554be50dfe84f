// Package schema provides the building blocks for declaring harmony models.
//
// # Overview
//
// A model is declared once and compiled into GraphQL types, filter and
// operator inputs, CRUD root fields and resolvers:
//
//	schema.Model{
//	    Name:    "book",
//	    Adapter: "memory",
//	    Schema: schema.Object{
//	        schema.F("title", property.String().Required()),
//	        schema.F("tags", []any{property.String()}),
//	        schema.F("author", property.Reference("author")),
//	        schema.F("meta", schema.Object{
//	            schema.F("pages", property.Number()),
//	        }),
//	    },
//	    Scopes: map[crud.Kind]schema.ScopeFunc{
//	        crud.Create: requireEditor,
//	    },
//	}
//
// # Field Declarations
//
// The property package provides builders for every field type:
//
//	property.String()                       // String
//	property.Number()                       // Number
//	property.Float()                        // Float
//	property.Boolean()                      // Boolean
//	property.ID()                           // {Adapter}ID
//	property.JSON()                         // JSON
//	property.Date()                         // Date
//	property.Reference("author")            // the Author type
//	property.ReversedReference("book").On("author")
//	property.Raw("Money")                   // a type declared elsewhere
//
// A nested schema.Object declares a nested object type, and a one-element
// []any declares a list of its element.
//
// # Scopes and Transforms
//
// Scopes run before the generated CRUD resolver of their kind and may
// rewrite its arguments or reject the call. Transforms run after it and may
// replace the value or the error. The privacy package builds scopes from
// access rules.
//
// # Mixins
//
// The mixin package provides the base mixin implementation; ready-to-use
// mixins live in contrib/mixin:
//
//	mixin.Time{}        // createdAt, updatedAt
//	mixin.ID{}          // UUID document ids
//	mixin.SoftDelete{}  // deletedAt, hidden from reads
//	mixin.TenantID{}    // Multi-tenant isolation
//
// For detailed documentation on each subpackage, see their respective package docs.
package schema
