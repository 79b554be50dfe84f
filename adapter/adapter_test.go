package adapter_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvdsande/harmony/adapter"
	"github.com/jvdsande/harmony/schema/crud"
)

// fake answers every CRUD call with the name of the method.
type fake struct {
	adapter.Adapter
	missing bool
}

func (f fake) one(name string) (adapter.Entity, error) {
	if f.missing {
		return nil, nil
	}
	return adapter.Entity{"op": name}, nil
}

func (f fake) many(name string) ([]adapter.Entity, error) {
	return []adapter.Entity{{"op": name}}, nil
}

func (f fake) Read(context.Context, adapter.Params) (adapter.Entity, error) { return f.one("read") }
func (f fake) ReadMany(context.Context, adapter.Params) ([]adapter.Entity, error) {
	return f.many("readMany")
}
func (f fake) Count(context.Context, adapter.Params) (int, error)             { return 7, nil }
func (f fake) Create(context.Context, adapter.Params) (adapter.Entity, error) { return f.one("create") }
func (f fake) CreateMany(context.Context, adapter.Params) ([]adapter.Entity, error) {
	return f.many("createMany")
}
func (f fake) Update(context.Context, adapter.Params) (adapter.Entity, error) { return f.one("update") }
func (f fake) UpdateMany(context.Context, adapter.Params) ([]adapter.Entity, error) {
	return f.many("updateMany")
}
func (f fake) Delete(context.Context, adapter.Params) (adapter.Entity, error) { return f.one("delete") }
func (f fake) DeleteMany(context.Context, adapter.Params) ([]adapter.Entity, error) {
	return f.many("deleteMany")
}

func TestCall(t *testing.T) {
	ctx := context.Background()
	for _, k := range crud.Kinds() {
		t.Run(k.String(), func(t *testing.T) {
			v, err := adapter.Call(ctx, fake{}, k, adapter.Params{Model: "book"})
			require.NoError(t, err)
			switch {
			case k == crud.Count:
				assert.Equal(t, 7, v)
			case k.IsList():
				require.IsType(t, []adapter.Entity{}, v)
				assert.Len(t, v, 1)
			default:
				require.IsType(t, adapter.Entity{}, v)
			}
		})
	}

	t.Run("nil document", func(t *testing.T) {
		v, err := adapter.Call(ctx, fake{missing: true}, crud.Read, adapter.Params{})
		require.NoError(t, err)
		assert.Nil(t, v, "a missing document is an untyped nil")
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := adapter.Call(ctx, fake{}, crud.Kind(0), adapter.Params{})
		assert.Error(t, err)
	})
}

func TestEntityOf(t *testing.T) {
	assert.Equal(t, adapter.Entity{"a": 1}, adapter.EntityOf(map[string]any{"a": 1}))
	assert.Nil(t, adapter.EntityOf("doc"))
	assert.Nil(t, adapter.EntityOf(nil))
}

func TestClone(t *testing.T) {
	orig := adapter.Entity{
		"title": "Dune",
		"meta":  map[string]any{"pages": 412},
		"tags":  []any{"sf", map[string]any{"k": "v"}},
	}
	c := adapter.Clone(orig)
	require.Equal(t, orig, c)

	c["meta"].(map[string]any)["pages"] = 1
	c["tags"].([]any)[1].(map[string]any)["k"] = "changed"
	c["title"] = "Emma"
	assert.Equal(t, 412, orig["meta"].(map[string]any)["pages"])
	assert.Equal(t, "v", orig["tags"].([]any)[1].(map[string]any)["k"])
	assert.Equal(t, "Dune", orig["title"])

	assert.Nil(t, adapter.Clone(nil))
}

func TestParams(t *testing.T) {
	t.Run("pagination", func(t *testing.T) {
		p := adapter.Params{Args: map[string]any{"skip": 2.0, "limit": int64(5), "sort": map[string]any{"title": 1}}}
		assert.Equal(t, 2, p.Skip())
		assert.Equal(t, 5, p.Limit())
		assert.Equal(t, map[string]any{"title": 1}, p.Sort())
		assert.Nil(t, p.Filter())

		p = adapter.Params{Args: map[string]any{"skip": -3, "limit": 1.5}}
		assert.Zero(t, p.Skip(), "negative values are clamped")
		assert.Zero(t, p.Limit(), "fractions are ignored")
	})

	t.Run("filter", func(t *testing.T) {
		p := adapter.Params{Args: map[string]any{"filter": map[string]any{"title": "Dune"}}}
		assert.Equal(t, map[string]any{"title": "Dune"}, p.Filter())
	})

	t.Run("record", func(t *testing.T) {
		p := adapter.Params{Model: "book", Args: map[string]any{"record": map[string]any{"title": "Dune"}}}
		r, err := p.Record()
		require.NoError(t, err)
		assert.Equal(t, "Dune", r["title"])

		_, err = adapter.Params{Model: "book"}.Record()
		assert.ErrorContains(t, err, "book")
	})

	t.Run("records", func(t *testing.T) {
		p := adapter.Params{Args: map[string]any{"records": []any{map[string]any{"a": 1}, map[string]any{"a": 2}}}}
		rs, err := p.Records()
		require.NoError(t, err)
		assert.Len(t, rs, 2)

		p = adapter.Params{Args: map[string]any{"records": []map[string]any{{"a": 1}}}}
		rs, err = p.Records()
		require.NoError(t, err)
		assert.Len(t, rs, 1)

		p = adapter.Params{Args: map[string]any{"records": []any{"nope"}}}
		_, err = p.Records()
		assert.ErrorContains(t, err, "records[0]")

		_, err = adapter.Params{}.Records()
		assert.Error(t, err)
	})

	t.Run("ids", func(t *testing.T) {
		p := adapter.Params{Args: map[string]any{"_id": "1", "_ids": []string{"1", "2"}}}
		id, err := p.ID()
		require.NoError(t, err)
		assert.Equal(t, "1", id)
		ids, err := p.IDs()
		require.NoError(t, err)
		assert.Equal(t, []any{"1", "2"}, ids)

		_, err = adapter.Params{Args: map[string]any{"_id": nil}}.ID()
		assert.Error(t, err)
		_, err = adapter.Params{}.IDs()
		assert.Error(t, err)
	})

	t.Run("ref value", func(t *testing.T) {
		p := adapter.RefParams{Source: adapter.Entity{"author": "a1"}, FieldName: "author"}
		assert.Equal(t, "a1", p.Value())
		assert.Nil(t, adapter.RefParams{FieldName: "author"}.Value())
	})
}

func TestInt(t *testing.T) {
	tests := []struct {
		in   any
		want int
		ok   bool
	}{
		{3, 3, true},
		{int32(4), 4, true},
		{int64(5), 5, true},
		{6.0, 6, true},
		{6.5, 0, false},
		{"7", 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		n, ok := adapter.Int(tt.in)
		assert.Equal(t, tt.want, n, "%v", tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
	}
}
