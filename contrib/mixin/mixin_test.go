package mixin_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvdsande/harmony/adapter"
	"github.com/jvdsande/harmony/adapter/memory"
	"github.com/jvdsande/harmony/compiler/gen"
	"github.com/jvdsande/harmony/contrib/mixin"
	"github.com/jvdsande/harmony/privacy"
	"github.com/jvdsande/harmony/resolver"
	"github.com/jvdsande/harmony/schema"
	"github.com/jvdsande/harmony/schema/crud"
	"github.com/jvdsande/harmony/schema/property"
)

var epoch = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func clock() time.Time { return epoch }

func run(t *testing.T, scopes map[crud.Kind]schema.ScopeFunc, k crud.Kind, args map[string]any) map[string]any {
	t.Helper()
	scope := scopes[k]
	require.NotNil(t, scope, "no scope for %s", k)
	out, err := scope(context.Background(), schema.ResolveParams{Args: args})
	require.NoError(t, err)
	return out
}

func TestCreateTimeMixin(t *testing.T) {
	m := mixin.CreateTime{Clock: clock}

	t.Run("field", func(t *testing.T) {
		fields := m.Fields()
		require.Len(t, fields, 1)
		assert.Equal(t, "createdAt", fields[0].Name)
		d := fields[0].Decl.(property.Descriptor).Descriptor()
		assert.Equal(t, property.TypeDate, d.Type())
		assert.Equal(t, property.Output, d.Mode())
	})

	t.Run("stamps creates", func(t *testing.T) {
		rec := map[string]any{"title": "Dune"}
		out := run(t, m.Scopes(), crud.Create, map[string]any{"record": rec})
		assert.Equal(t, map[string]any{"title": "Dune", "createdAt": epoch}, out["record"])
		assert.NotContains(t, rec, "createdAt", "input records are not mutated")
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		explicit := epoch.Add(-time.Hour)
		out := run(t, m.Scopes(), crud.CreateMany, map[string]any{"records": []any{
			map[string]any{"createdAt": explicit},
			map[string]any{},
		}})
		assert.Equal(t, []any{
			map[string]any{"createdAt": explicit},
			map[string]any{"createdAt": epoch},
		}, out["records"])
	})

	t.Run("no update scope", func(t *testing.T) {
		assert.NotContains(t, m.Scopes(), crud.Update)
	})
}

func TestUpdateTimeMixin(t *testing.T) {
	m := mixin.UpdateTime{Clock: clock}

	out := run(t, m.Scopes(), crud.Update, map[string]any{"record": map[string]any{"_id": "1", "updatedAt": "stale"}})
	assert.Equal(t, map[string]any{"_id": "1", "updatedAt": epoch}, out["record"], "updates overwrite")

	out = run(t, m.Scopes(), crud.UpdateMany, map[string]any{"records": []any{map[string]any{"_id": "1"}}})
	assert.Equal(t, []any{map[string]any{"_id": "1", "updatedAt": epoch}}, out["records"])
}

func TestTimeMixin(t *testing.T) {
	m := mixin.Time{Clock: clock}
	require.Len(t, m.Fields(), 2)

	out := run(t, m.Scopes(), crud.Create, map[string]any{"record": map[string]any{}})
	assert.Equal(t, map[string]any{"createdAt": epoch, "updatedAt": epoch}, out["record"])

	out = run(t, m.Scopes(), crud.Update, map[string]any{"record": map[string]any{"_id": "1"}})
	assert.Equal(t, map[string]any{"_id": "1", "updatedAt": epoch}, out["record"])
}

func TestIDMixin(t *testing.T) {
	m := mixin.ID{}
	assert.Empty(t, m.Fields())

	out := run(t, m.Scopes(), crud.Create, map[string]any{"record": map[string]any{}})
	id, ok := out["record"].(map[string]any)["_id"].(string)
	require.True(t, ok)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)

	out = run(t, m.Scopes(), crud.Create, map[string]any{"record": map[string]any{"_id": "fixed"}})
	assert.Equal(t, "fixed", out["record"].(map[string]any)["_id"])
}

func TestSoftDeleteMixin(t *testing.T) {
	m := mixin.SoftDelete{}
	for _, k := range crud.Queries() {
		out := run(t, m.Scopes(), k, map[string]any{"filter": map[string]any{"title": "Dune"}})
		assert.Equal(t, map[string]any{
			"title":      "Dune",
			"_operators": map[string]any{"deletedAt": map[string]any{"exists": false}},
		}, out["filter"], k.String())
	}

	explicit := map[string]any{"_operators": map[string]any{"deletedAt": map[string]any{"exists": true}}}
	out := run(t, m.Scopes(), crud.ReadMany, map[string]any{"filter": explicit})
	assert.Equal(t, explicit, out["filter"], "explicit deletedAt operators are kept")
}

func TestTenantIDMixin(t *testing.T) {
	m := mixin.TenantID{}
	ctx := privacy.WithViewer(context.Background(), &privacy.SimpleViewer{UserID: "u1", TenantID: "t1"})

	out, err := m.Scopes()[crud.ReadMany](ctx, schema.ResolveParams{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"tenantId": "t1"}, out["filter"])

	_, err = m.Scopes()[crud.Update](ctx, schema.ResolveParams{Args: map[string]any{
		"record": map[string]any{"_id": "1", "tenantId": "t2"},
	}})
	assert.True(t, privacy.IsForbidden(err))
	assert.NotContains(t, m.Scopes(), crud.Delete)
}

func TestMixins_Resolvers(t *testing.T) {
	g, err := gen.Compile([]schema.Model{{
		Name:    "note",
		Adapter: "memory",
		Schema:  schema.Object{schema.F("text", property.String())},
		Mixins:  []schema.Mixin{mixin.ID{}, mixin.TimeSoftDelete{Clock: clock}},
	}})
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"_id", "createdAt", "updatedAt", "deletedAt", "text"},
		g.Model("note").Schemas.Main.Fields().Names(),
	)

	m, err := resolver.Build(g, resolver.Adapters{"memory": memory.New()})
	require.NoError(t, err)
	ctx := context.Background()

	created, err := m["Mutation"]["noteCreate"](ctx, schema.ResolveParams{Args: map[string]any{
		"record": map[string]any{"text": "hello"},
	}})
	require.NoError(t, err)
	note := adapter.EntityOf(created)
	assert.Equal(t, epoch, note["createdAt"])
	id := note["_id"]
	require.NotEmpty(t, id)

	_, err = m["Mutation"]["noteCreate"](ctx, schema.ResolveParams{Args: map[string]any{
		"record": map[string]any{"text": "bye"},
	}})
	require.NoError(t, err)

	_, err = m["Mutation"]["noteUpdate"](ctx, schema.ResolveParams{Args: map[string]any{
		"record": map[string]any{"_id": id, "deletedAt": epoch},
	}})
	require.NoError(t, err)

	count, err := m["Query"]["noteCount"](ctx, schema.ResolveParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, count, "soft deleted notes are hidden")
}
