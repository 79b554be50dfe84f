package sql_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvdsande/harmony"
	"github.com/jvdsande/harmony/adapter"
	"github.com/jvdsande/harmony/adapter/sql"
	"github.com/jvdsande/harmony/compiler/gen"
)

func TestSQLite(t *testing.T) {
	ctx := context.Background()
	a, err := sql.Open(sql.SQLite, "file:"+filepath.Join(t.TempDir(), "harmony.db"))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, a.Close(ctx)) })
	require.NoError(t, a.Initialize(ctx, adapter.InitParams{Models: []*gen.Model{{Name: "book"}, {Name: "author"}}}))

	params := func(model string, args map[string]any) adapter.Params {
		return adapter.Params{Model: model, Args: args}
	}

	_, err = a.CreateMany(ctx, params("author", map[string]any{"records": []any{
		map[string]any{"_id": "a1", "name": "Herbert"},
		map[string]any{"_id": "a2", "name": "Austen"},
	}}))
	require.NoError(t, err)
	_, err = a.CreateMany(ctx, params("book", map[string]any{"records": []any{
		map[string]any{"_id": "b1", "title": "Dune", "author": "a1", "scores": []any{1, 2, 3}},
		map[string]any{"_id": "b2", "title": "Emma", "author": "a2", "scores": []any{1, -2}},
		map[string]any{"_id": "b3", "title": "Ubik", "author": "a1", "scores": []any{}},
	}}))
	require.NoError(t, err)

	t.Run("duplicate", func(t *testing.T) {
		_, err := a.Create(ctx, params("book", map[string]any{"record": map[string]any{"_id": "b1"}}))
		assert.True(t, harmony.IsConstraintError(err))
	})

	t.Run("all elements", func(t *testing.T) {
		docs, err := a.ReadMany(ctx, params("book", map[string]any{
			"filter": map[string]any{"_operators": map[string]any{"scores": map[string]any{"all": map[string]any{"gt": 0}}}},
		}))
		require.NoError(t, err)
		var titles []any
		for _, d := range docs {
			titles = append(titles, d["title"])
		}
		assert.Equal(t, []any{"Dune", "Ubik"}, titles)
	})

	t.Run("update", func(t *testing.T) {
		doc, err := a.Update(ctx, params("book", map[string]any{"record": map[string]any{"_id": "b2", "title": "Persuasion"}}))
		require.NoError(t, err)
		assert.Equal(t, "a2", doc["author"])

		doc, err = a.Read(ctx, params("book", map[string]any{"filter": map[string]any{"_id": "b2"}}))
		require.NoError(t, err)
		assert.Equal(t, "Persuasion", doc["title"])
	})

	t.Run("references", func(t *testing.T) {
		author, err := a.ResolveRef(ctx, adapter.RefParams{Model: "author", Source: adapter.Entity{"author": "a2"}, FieldName: "author", ForeignFieldName: "_id"})
		require.NoError(t, err)
		assert.Equal(t, "Austen", author["name"])

		books, err := a.ResolveRefs(ctx, adapter.RefParams{Model: "book", Source: adapter.Entity{"_id": "a1"}, FieldName: "_id", ForeignFieldName: "author"})
		require.NoError(t, err)
		assert.Len(t, books, 2)
	})

	t.Run("delete", func(t *testing.T) {
		docs, err := a.DeleteMany(ctx, params("book", map[string]any{"_ids": []any{"b1", "missing", "b3"}}))
		require.NoError(t, err)
		assert.Len(t, docs, 2)

		n, err := a.Count(ctx, params("book", nil))
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}
