package graphql_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/jvdsande/harmony/compiler/gen"
	"github.com/jvdsande/harmony/contrib/graphql"
	"github.com/jvdsande/harmony/schema"
	"github.com/jvdsande/harmony/schema/crud"
	"github.com/jvdsande/harmony/schema/property"
)

func library() []schema.Model {
	return []schema.Model{
		{
			Name:    "book",
			Adapter: "memory",
			Schema: schema.Object{
				schema.F("title", property.String().Required().Describe("Full title")),
				schema.F("isbn", property.String().Primary()),
				schema.F("tags", []any{property.String()}),
				schema.F("meta", schema.Object{schema.F("pages", property.Number())}),
				schema.F("empty", schema.Object{}),
				schema.F("author", property.Reference("author")),
				schema.F("owner", property.Reference("user").Provides("email")),
			},
			Computed: schema.Computed{
				Mutations: []schema.ComputedField{{Name: "bookPatch", Extends: crud.Update}},
			},
		},
		{
			Name:    "author",
			Adapter: "memory",
			Schema: schema.Object{
				schema.F("name", property.String()),
				schema.F("books", []any{property.ReversedReference("book").On("author")}),
			},
		},
		{
			Name:     "user",
			External: true,
			Schema: schema.Object{
				schema.F("email", property.String().External()),
			},
			Computed: schema.Computed{
				Queries: []schema.ComputedField{{Name: "me", Type: property.Reference("user")}},
			},
		},
	}
}

func printSDL(t *testing.T, models []schema.Model) string {
	t.Helper()
	g, err := gen.Compile(models)
	require.NoError(t, err)
	sdl, err := graphql.Print(g)
	require.NoError(t, err)
	return sdl
}

// block returns the definition starting with head, or "".
func block(sdl, head string) string {
	i := strings.Index(sdl, head+" {\n")
	if i < 0 {
		return ""
	}
	end := strings.Index(sdl[i:], "\n}\n")
	return sdl[i : i+end+3]
}

func TestPrint(t *testing.T) {
	sdl := printSDL(t, library())

	assert.True(t, strings.HasPrefix(sdl, "scalar Date\nscalar JSON\nscalar Number\nscalar MemoryID\n\n"))
	assert.Equal(t, `type Book @key(fields: "_id") @key(fields: "isbn") {
  _id: MemoryID!
  "Full title"
  title: String!
  isbn: String
  tags: [String]
  meta: BookMeta
  author: Author
  owner: User @provides(fields: "email")
}
`, block(sdl, `type Book @key(fields: "_id") @key(fields: "isbn")`))
	assert.Equal(t, "type BookMeta {\n  pages: Number\n}\n", block(sdl, "type BookMeta"))
	assert.NotContains(t, sdl, "BookEmpty")

	assert.Equal(t, `input BookFilterInput {
  _id: MemoryID
  "Full title"
  title: String
  isbn: String
  tags: [String]
  meta: BookFilterMetaInput
  author: MemoryID
  owner: MemoryID
  _and: [BookFilterInput]
  _or: [BookFilterInput]
  _nor: [BookFilterInput]
  _operators: BookOperatorsInput
}
`, block(sdl, "input BookFilterInput"))
	assert.Contains(t, block(sdl, "input BookCreateInput"), "  title: String!\n")
	assert.Contains(t, block(sdl, "input BookUpdateInput"), "  _id: MemoryID!\n")
	assert.Equal(t, "input BookUpdateMetaInput {\n  pages: Number\n}\n", block(sdl, "input BookUpdateMetaInput"))
	assert.Equal(t, `input BookOperatorsTitleInput {
  eq: String
  neq: String
  exists: Boolean
  regex: String
  in: [String]
  nin: [String]
}
`, block(sdl, "input BookOperatorsTitleInput"))
	assert.Contains(t, block(sdl, "input BookOperatorsTagsInput"), "  some: BookOperatorsTagsSomeInput\n")

	assert.Equal(t, `extend type Query {
  book(filter: BookFilterInput, skip: Int, sort: JSON): Book
  bookList(filter: BookFilterInput, skip: Int, limit: Int, sort: JSON): [Book]
  bookCount(filter: BookFilterInput): Number
}
`, block(sdl, "extend type Query"))
	assert.Contains(t, sdl, "  authorDelete(_id: MemoryID!): Author\n")

	assert.Contains(t, block(sdl, `type Author @key(fields: "_id")`), "  books: [Book]\n")
	assert.NotContains(t, block(sdl, "input AuthorCreateInput"), "books")

	require.NoError(t, graphql.Validate(sdl), sdl)
}

func TestPrint_Deterministic(t *testing.T) {
	g, err := gen.Compile(library())
	require.NoError(t, err)
	first, err := graphql.Print(g)
	require.NoError(t, err)
	for range 5 {
		again, err := graphql.Print(g)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestPrint_Modes(t *testing.T) {
	sdl := printSDL(t, []schema.Model{{
		Name:    "item",
		Adapter: "memory",
		Schema: schema.Object{
			schema.F("shown", property.String().WithMode(property.Output)),
			schema.F("written", property.String().WithMode(property.Input)),
			schema.F("plain", property.String()),
			schema.F("both", property.String().WithMode(property.Both)),
		},
	}})

	fields := func(head string) []string {
		var out []string
		for _, line := range strings.Split(block(sdl, head), "\n")[1:] {
			if name, _, ok := strings.Cut(strings.TrimSpace(line), ":"); ok && !strings.HasPrefix(name, "_") {
				out = append(out, name)
			}
		}
		return out
	}
	assert.Equal(t, []string{"shown", "plain", "both"}, fields(`type Item @key(fields: "_id")`))
	for _, head := range []string{"input ItemFilterInput", "input ItemCreateInput", "input ItemUpdateInput", "input ItemOperatorsInput"} {
		assert.Equal(t, []string{"written", "plain", "both"}, fields(head), head)
	}
}

func TestPrint_External(t *testing.T) {
	sdl := printSDL(t, library())
	assert.Equal(t, `extend type User @key(fields: "_id") {
  _id: ID! @external
  email: String @external
}
`, block(sdl, `extend type User @key(fields: "_id")`))
	for _, name := range []string{"UserFilterInput", "UserCreateInput", "UserUpdateInput", "UserOperatorsInput", "userList", "userCreate", "\ntype User "} {
		assert.NotContains(t, sdl, name)
	}
	assert.Contains(t, sdl, "extend type Query {\n  me: User\n}\n")
}

func TestPrint_ExtendsMatchesBase(t *testing.T) {
	sdl := printSDL(t, library())
	mutations := block(sdl, "extend type Mutation")
	assert.Contains(t, mutations, "  bookUpdate(record: BookUpdateInput!): Book\n")
	assert.Contains(t, mutations, "  bookPatch(record: BookUpdateInput!): Book\n")
}

func TestPrint_Options(t *testing.T) {
	g, err := gen.Compile([]schema.Model{{Name: "note"}})
	require.NoError(t, err)
	sdl, err := graphql.Print(g, graphql.WithHeader("generated\ndo not edit"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sdl, "# generated\n# do not edit\n\nscalar Date\n"))
	require.NoError(t, graphql.Validate(sdl))

	_, err = graphql.Print(nil)
	assert.True(t, gen.IsConfigError(err))
}

func TestValidate(t *testing.T) {
	err := graphql.Validate("type Thing @key(fields: \"_id\") {\n  _id: ID!\n  owner: Missing\n}\n")
	require.Error(t, err)
	var list gqlerror.List
	require.True(t, errors.As(err, &list))
	assert.NotEmpty(t, list)

	err = graphql.Validate("type {")
	require.Error(t, err)
	assert.True(t, errors.As(err, &list))
}
