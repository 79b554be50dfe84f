package gen

import (
	"fmt"

	"github.com/jvdsande/harmony/schema/crud"
	"github.com/jvdsande/harmony/schema/property"
)

// ExtendField returns the result type and arguments of the generated CRUD
// field of kind k on model. Computed queries and mutations declaring
// Extends share this shape with the generated field, so both print the
// same SDL.
//
//	read        M      (filter: MFilterInput, skip: Int, sort: JSON)
//	readMany    [M]    (filter: MFilterInput, skip: Int, limit: Int, sort: JSON)
//	count       Number (filter: MFilterInput)
//	create      M      (record: MCreateInput!)
//	createMany  [M]    (records: [MCreateInput!]!)
//	update      M      (record: MUpdateInput!)
//	updateMany  [M]    (records: [MUpdateInput!]!)
//	delete      M      (_id: ID!)
//	deleteMany  [M]    (_ids: [ID!]!)
//
// Identifier arguments are printed with the ID scalar of the model adapter
// once the graph has tagged owners.
func ExtendField(k crud.Kind, model string) (*property.Property, error) {
	if !k.Valid() {
		return nil, NewSchemaError(model, "", fmt.Sprintf("cannot extend %s", k), nil)
	}
	typ := property.Pascal(model)
	var (
		filter = property.Field("filter", property.Raw(typ+"FilterInput"))
		skip   = property.Field("skip", property.Raw("Int"))
		limit  = property.Field("limit", property.Raw("Int"))
		sort   = property.Field("sort", property.JSON())
		create = property.Raw(typ + "CreateInput").Required()
		update = property.Raw(typ + "UpdateInput").Required()
	)
	var (
		b    *property.Builder
		args []property.Entry
	)
	switch k {
	case crud.Read:
		b, args = property.Raw(typ), []property.Entry{filter, skip, sort}
	case crud.ReadMany:
		b, args = property.Array(property.Raw(typ)), []property.Entry{filter, skip, limit, sort}
	case crud.Count:
		b, args = property.Number(), []property.Entry{filter}
	case crud.Create:
		b, args = property.Raw(typ), []property.Entry{property.Field("record", create)}
	case crud.CreateMany:
		b, args = property.Array(property.Raw(typ)), []property.Entry{property.Field("records", property.Array(create).Required())}
	case crud.Update:
		b, args = property.Raw(typ), []property.Entry{property.Field("record", update)}
	case crud.UpdateMany:
		b, args = property.Array(property.Raw(typ)), []property.Entry{property.Field("records", property.Array(update).Required())}
	case crud.Delete:
		b, args = property.Raw(typ), []property.Entry{property.Field("_id", property.ID().Required())}
	case crud.DeleteMany:
		b, args = property.Array(property.Raw(typ)), []property.Entry{property.Field("_ids", property.Array(property.ID().Required()).Required())}
	}
	return b.WithArgs(property.Schema(args...)).Descriptor(), nil
}
