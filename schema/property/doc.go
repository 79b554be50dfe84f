// Package property provides the typed intermediate representation of model
// fields and the fluent builders used to declare them.
//
// # Declaring fields
//
//	property.String().Required()
//	property.Number().Indexed()
//	property.Reference("Author")
//	property.ReversedReference("Book").On("author")
//	property.Array(property.String())
//	property.Schema(
//	    property.Field("street", property.String()),
//	    property.Field("zip", property.Number()),
//	)
//
// Builders are mutable; Descriptor freezes them into a *Property. A Property
// is never modified after construction: placing it in a tree, renaming it or
// tagging its owning adapter goes through Clone.
//
// # GraphQL rendering
//
// Every Property derives its GraphQL types from its tag:
//
//	string, number, float, boolean, json, date   String, Number, Float, Boolean, JSON, Date
//	id                                           {Owner}ID
//	reference, reversed-reference                target type (output), {Owner}ID (input)
//	schema                                       {GraphQLName} / {GraphQLName}Input
//	array                                        [elem]
//	raw                                          literal
//
// GraphQLName concatenates the PascalCase names of the node and all its
// ancestors, so the field "address" of model "user" yields the types
// UserAddress and UserAddressInput.
package property
