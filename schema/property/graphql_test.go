package property_test

import (
	"testing"

	"github.com/jvdsande/harmony/schema/property"

	"github.com/stretchr/testify/assert"
)

func TestGraphQLTypes(t *testing.T) {
	root := property.Schema(
		property.Field("title", property.String().Required()),
		property.Field("pages", property.Number()),
		property.Field("price", property.Float()),
		property.Field("draft", property.Boolean()),
		property.Field("meta", property.JSON()),
		property.Field("published", property.Date()),
		property.Field("author", property.Reference("author")),
		property.Field("tags", property.Array(property.String().Required())),
		property.Field("address", property.Schema(
			property.Field("zip_code", property.String()),
		)),
		property.Field("money", property.Raw("Money")),
	).Descriptor().Clone(
		property.Named("book"),
		property.Owners(func(*property.Property) string { return "mongo_store" }),
	)

	tests := []struct {
		field      string
		output     string
		input      string
		graphQLNam string
	}{
		{"title", "String!", "String!", "BookTitle"},
		{"pages", "Number", "Number", "BookPages"},
		{"price", "Float", "Float", "BookPrice"},
		{"draft", "Boolean", "Boolean", "BookDraft"},
		{"meta", "JSON", "JSON", "BookMeta"},
		{"published", "Date", "Date", "BookPublished"},
		{"author", "Author", "MongoStoreID", "BookAuthor"},
		{"tags", "[String!]", "[String!]", "BookTags"},
		{"address", "BookAddress", "BookAddressInput", "BookAddress"},
		{"money", "Money", "Money", "BookMoney"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			p := root.Field(tt.field)
			assert.Equal(t, tt.output, p.GraphQLType())
			assert.Equal(t, tt.input, p.GraphQLInputType())
			assert.Equal(t, tt.graphQLNam, p.GraphQLName())
		})
	}
	assert.Equal(t, "BookAddressZipCode", root.Field("address").Field("zip_code").GraphQLName())
}

func TestIDScalar(t *testing.T) {
	assert.Equal(t, "ID", property.IDScalar(""))
	assert.Equal(t, "MemoryID", property.IDScalar("memory"))
	assert.Equal(t, "ID", property.ID().Descriptor().GraphQLType())
}

func TestNaming(t *testing.T) {
	assert.Equal(t, "BookStore", property.Pascal("book_store"))
	assert.Equal(t, "BookStore", property.Pascal("bookStore"))
	assert.Equal(t, "Id", property.Pascal("_id"))
	assert.Equal(t, "", property.Pascal(""))
	assert.Equal(t, "bookStore", property.LowerCamel("BookStore"))
	assert.Equal(t, "", property.LowerCamel(""))
}

func TestGraphQLSchema_Modes(t *testing.T) {
	root := property.Schema(
		property.Field("out", property.String().WithMode(property.Output)),
		property.Field("in", property.String().WithMode(property.Input)),
		property.Field("unset", property.String()),
		property.Field("both", property.String().WithMode(property.Both)),
		property.Field("empty", property.Schema()),
	).Descriptor().Clone(property.Named("thing"))

	assert.Equal(t, "  out: String\n  unset: String\n  both: String\n", root.GraphQLSchema())
	assert.Equal(t, "  in: String\n  unset: String\n  both: String\n", root.GraphQLInputSchema())
	assert.False(t, root.Field("empty").Printable(false))
	assert.True(t, root.Printable(true))
}

func TestGraphQLField(t *testing.T) {
	p := property.Reference("user").
		Provides("name").
		Requires("email").
		External().
		WithArgs(property.Schema(
			property.Field("lang", property.String().Required()),
			property.Field("limit", property.Raw("Int")),
		)).
		Describe(`the "owner"`).
		Named("owner").
		Descriptor()
	assert.Equal(t, `owner(lang: String!, limit: Int): User @external @provides(fields: "name") @requires(fields: "email")`, p.GraphQLField())
	assert.Equal(t, "owner: ID", p.GraphQLInputField())

	root := property.Schema(property.Field("owner", p)).Descriptor()
	assert.Contains(t, root.GraphQLSchema(), `  "the \"owner\""`+"\n")
}
