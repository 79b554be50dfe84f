package privacy_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvdsande/harmony/privacy"
	"github.com/jvdsande/harmony/schema"
	"github.com/jvdsande/harmony/schema/crud"
)

func viewer(id, tenant string, roles ...string) context.Context {
	return privacy.WithViewer(context.Background(), &privacy.SimpleViewer{UserID: id, Roles: roles, TenantID: tenant})
}

func eval(ctx context.Context, rule privacy.Rule, k crud.Kind, args map[string]any) (*privacy.Request, error) {
	r := privacy.NewRequest(k, schema.ResolveParams{Args: args})
	return r, rule.Eval(ctx, r)
}

func TestViewerContext(t *testing.T) {
	t.Parallel()

	assert.Nil(t, privacy.ViewerFromContext(context.Background()))
	v := privacy.ViewerFromContext(viewer("u1", "t1", "admin"))
	require.NotNil(t, v)
	assert.Equal(t, "u1", v.GetID())
	assert.Equal(t, "t1", v.GetTenantID())
	assert.Equal(t, []string{"admin"}, v.GetRoles())
}

func TestRoleRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ctx  context.Context
		rule privacy.Rule
		want error
	}{
		{"no viewer denied", context.Background(), privacy.DenyIfNoViewer(), privacy.Deny},
		{"viewer skips", viewer("u1", ""), privacy.DenyIfNoViewer(), privacy.Skip},
		{"role allows", viewer("u1", "", "admin"), privacy.HasRole("admin"), privacy.Allow},
		{"missing role skips", viewer("u1", "", "user"), privacy.HasRole("admin"), privacy.Skip},
		{"role without viewer skips", context.Background(), privacy.HasRole("admin"), privacy.Skip},
		{"any role allows", viewer("u1", "", "moderator"), privacy.HasAnyRole("admin", "moderator"), privacy.Allow},
		{"no role matches", viewer("u1", ""), privacy.HasAnyRole("admin", "moderator"), privacy.Skip},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := eval(tt.ctx, tt.rule, crud.Read, nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestOnKinds(t *testing.T) {
	t.Parallel()

	rule := privacy.DenyKindsRule(crud.Delete, crud.DeleteMany)
	_, err := eval(context.Background(), rule, crud.Delete, nil)
	assert.ErrorIs(t, err, privacy.Deny)
	_, err = eval(context.Background(), rule, crud.Read, nil)
	assert.ErrorIs(t, err, privacy.Skip)
}

func TestIsOwner(t *testing.T) {
	t.Parallel()

	rule := privacy.IsOwner("ownerId")
	tests := []struct {
		name string
		ctx  context.Context
		kind crud.Kind
		args map[string]any
		want error
	}{
		{"owner creates", viewer("u1", ""), crud.Create, map[string]any{"record": map[string]any{"ownerId": "u1"}}, privacy.Allow},
		{"other owner", viewer("u1", ""), crud.Create, map[string]any{"record": map[string]any{"ownerId": "u2"}}, privacy.Skip},
		{"field unset", viewer("u1", ""), crud.Update, map[string]any{"record": map[string]any{"_id": "1"}}, privacy.Skip},
		{
			name: "every record owned",
			ctx:  viewer("7", ""),
			kind: crud.CreateMany,
			args: map[string]any{"records": []any{map[string]any{"ownerId": 7}, map[string]any{"ownerId": "7"}}},
			want: privacy.Allow,
		},
		{
			name: "one record foreign",
			ctx:  viewer("u1", ""),
			kind: crud.CreateMany,
			args: map[string]any{"records": []any{map[string]any{"ownerId": "u1"}, map[string]any{"ownerId": "u2"}}},
			want: privacy.Skip,
		},
		{"no viewer", context.Background(), crud.Create, map[string]any{"record": map[string]any{"ownerId": "u1"}}, privacy.Skip},
		{"reads skip", viewer("u1", ""), crud.Read, nil, privacy.Skip},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := eval(tt.ctx, rule, tt.kind, tt.args)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestOwnerFilter(t *testing.T) {
	t.Parallel()

	rule := privacy.OwnerFilter("ownerId")
	r, err := eval(viewer("u1", ""), rule, crud.ReadMany, map[string]any{"limit": 10})
	assert.ErrorIs(t, err, privacy.Skip)
	assert.Equal(t, map[string]any{"ownerId": "u1"}, r.Args["filter"])
	assert.Equal(t, 10, r.Args["limit"])

	_, err = eval(context.Background(), rule, crud.Count, nil)
	assert.ErrorIs(t, err, privacy.Deny)

	r, err = eval(context.Background(), rule, crud.Create, nil)
	assert.ErrorIs(t, err, privacy.Skip)
	assert.NotContains(t, r.Args, "filter")
}

func TestTenantRule(t *testing.T) {
	t.Parallel()

	rule := privacy.TenantRule("tenantId")

	t.Run("reads are filtered", func(t *testing.T) {
		t.Parallel()
		r, err := eval(viewer("u1", "t1"), rule, crud.Read, nil)
		assert.ErrorIs(t, err, privacy.Skip)
		assert.Equal(t, map[string]any{"tenantId": "t1"}, r.Args["filter"])
	})

	t.Run("creates are stamped", func(t *testing.T) {
		t.Parallel()
		rec := map[string]any{"title": "Dune"}
		r, err := eval(viewer("u1", "t1"), rule, crud.Create, map[string]any{"record": rec})
		assert.ErrorIs(t, err, privacy.Skip)
		assert.Equal(t, "t1", r.Records()[0]["tenantId"])
		assert.NotContains(t, rec, "tenantId")
	})

	t.Run("updates are not stamped", func(t *testing.T) {
		t.Parallel()
		r, err := eval(viewer("u1", "t1"), rule, crud.Update, map[string]any{"record": map[string]any{"_id": "1"}})
		assert.ErrorIs(t, err, privacy.Skip)
		assert.NotContains(t, r.Records()[0], "tenantId")
	})

	t.Run("foreign tenant denied", func(t *testing.T) {
		t.Parallel()
		_, err := eval(viewer("u1", "t1"), rule, crud.UpdateMany, map[string]any{
			"records": []any{map[string]any{"_id": "1", "tenantId": "t2"}},
		})
		assert.ErrorIs(t, err, privacy.Deny)
	})

	t.Run("no tenant skips", func(t *testing.T) {
		t.Parallel()
		r, err := eval(viewer("u1", ""), rule, crud.Read, nil)
		assert.ErrorIs(t, err, privacy.Skip)
		assert.NotContains(t, r.Args, "filter")
	})
}
