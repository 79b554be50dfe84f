package gen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvdsande/harmony/compiler/gen"
	"github.com/jvdsande/harmony/schema"
	"github.com/jvdsande/harmony/schema/property"
)

func TestViews(t *testing.T) {
	g, err := gen.Compile([]schema.Model{{
		Name:    "book",
		Adapter: "memory",
		Schema: schema.Object{
			schema.F("title", property.String().Required()),
			schema.F("meta", schema.Object{schema.F("pages", property.Number().Required())}),
			schema.F("rank", property.Number().WithMode(property.Output)),
		},
	}})
	require.NoError(t, err)
	book := g.Model("book")

	t.Run("Filter", func(t *testing.T) {
		f := book.Filter()
		assert.Equal(t, "BookFilter", f.GraphQLName())
		assert.Equal(t, "  _id: MemoryID\n"+
			"  title: String\n"+
			"  meta: BookFilterMetaInput\n"+
			"  _and: [BookFilterInput]\n"+
			"  _or: [BookFilterInput]\n"+
			"  _nor: [BookFilterInput]\n"+
			"  _operators: BookOperatorsInput\n", f.GraphQLInputSchema())
		assert.Equal(t, "  pages: Number\n", f.Field("meta").GraphQLInputSchema())
	})

	t.Run("Create", func(t *testing.T) {
		c := book.Create()
		assert.Equal(t, "  _id: MemoryID\n"+
			"  title: String!\n"+
			"  meta: BookCreateMetaInput\n", c.GraphQLInputSchema())
		assert.Equal(t, "  pages: Number!\n", c.Field("meta").GraphQLInputSchema())
	})

	t.Run("Update", func(t *testing.T) {
		u := book.Update()
		assert.Equal(t, "  _id: MemoryID!\n"+
			"  title: String\n"+
			"  meta: BookUpdateMetaInput\n", u.GraphQLInputSchema())
	})

	t.Run("Valid", func(t *testing.T) {
		for _, view := range []*property.Property{book.Filter(), book.Create(), book.Update(), book.Operators()} {
			assert.NoError(t, view.Err(), view.GraphQLName())
		}
	})

	t.Run("Main untouched", func(t *testing.T) {
		assert.True(t, book.Schemas.Main.Field("title").IsRequired())
		assert.Equal(t, "  _id: MemoryID!\n"+
			"  title: String!\n"+
			"  meta: BookMeta\n"+
			"  rank: Number\n", book.Schemas.Main.GraphQLSchema())
	})
}
