package gen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvdsande/harmony/compiler/gen"
	"github.com/jvdsande/harmony/schema"
	"github.com/jvdsande/harmony/schema/crud"
	"github.com/jvdsande/harmony/schema/property"
)

func TestExtendField(t *testing.T) {
	tests := []struct {
		kind crud.Kind
		want string
	}{
		{crud.Read, "x(filter: BookStoreFilterInput, skip: Int, sort: JSON): BookStore"},
		{crud.ReadMany, "x(filter: BookStoreFilterInput, skip: Int, limit: Int, sort: JSON): [BookStore]"},
		{crud.Count, "x(filter: BookStoreFilterInput): Number"},
		{crud.Create, "x(record: BookStoreCreateInput!): BookStore"},
		{crud.CreateMany, "x(records: [BookStoreCreateInput!]!): [BookStore]"},
		{crud.Update, "x(record: BookStoreUpdateInput!): BookStore"},
		{crud.UpdateMany, "x(records: [BookStoreUpdateInput!]!): [BookStore]"},
		{crud.Delete, "x(_id: ID!): BookStore"},
		{crud.DeleteMany, "x(_ids: [ID!]!): [BookStore]"},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			p, err := gen.ExtendField(tt.kind, "book_store")
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Clone(property.Named("x")).GraphQLField())
		})
	}

	t.Run("aliases", func(t *testing.T) {
		for alias, kind := range map[crud.Kind]crud.Kind{crud.Get: crud.Read, crud.List: crud.ReadMany, crud.Edit: crud.Update, crud.EditMany: crud.UpdateMany} {
			a, err := gen.ExtendField(alias, "book")
			require.NoError(t, err)
			b, err := gen.ExtendField(kind, "book")
			require.NoError(t, err)
			assert.Equal(t, b.String(), a.String())
		}
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := gen.ExtendField(0, "book")
		assert.True(t, gen.IsSchemaError(err))
	})
}

func TestExtendField_MatchesGenerated(t *testing.T) {
	g, err := gen.Compile([]schema.Model{{
		Name:    "book",
		Adapter: "memory",
		Computed: schema.Computed{
			Mutations: []schema.ComputedField{
				{Name: "bookPatch", Extends: crud.Update},
				{Name: "bookRemove", Extends: crud.Delete},
			},
		},
	}})
	require.NoError(t, err)
	mutations := g.Model("book").Schemas.Mutations

	strip := func(p *property.Property) string {
		return p.Clone(property.Named("f")).GraphQLField()
	}
	assert.Equal(t, strip(mutations.Field("bookUpdate")), strip(mutations.Field("bookPatch")))
	assert.Equal(t, strip(mutations.Field("bookDelete")), strip(mutations.Field("bookRemove")))
	assert.Equal(t, "f(_id: MemoryID!): Book", strip(mutations.Field("bookRemove")))
}
