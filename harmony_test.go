package harmony_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvdsande/harmony"
	"github.com/jvdsande/harmony/adapter"
	"github.com/jvdsande/harmony/adapter/memory"
	"github.com/jvdsande/harmony/schema"
	"github.com/jvdsande/harmony/schema/crud"
	"github.com/jvdsande/harmony/schema/property"
)

func models() []schema.Model {
	return []schema.Model{
		{
			Name: "book",
			Schema: schema.Object{
				schema.F("title", property.String().Required()),
				schema.F("author", property.Reference("author")),
			},
		},
		{
			Name:    "author",
			Adapter: "memory",
			Schema:  schema.Object{schema.F("name", property.String())},
		},
	}
}

// stub records the lifecycle calls of an adapter.
type stub struct {
	*memory.Adapter
	mu       sync.Mutex
	models   []string
	initErr  error
	closeErr error
	closed   bool
}

func (s *stub) Initialize(ctx context.Context, p adapter.InitParams) error {
	s.mu.Lock()
	for _, m := range p.Models {
		s.models = append(s.models, m.Name)
	}
	s.mu.Unlock()
	if s.initErr != nil {
		return s.initErr
	}
	return s.Adapter.Initialize(ctx, p)
}

func (s *stub) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	if s.closeErr != nil {
		return s.closeErr
	}
	return s.Adapter.Close(ctx)
}

func TestPersistence(t *testing.T) {
	ctx := context.Background()
	store := &stub{Adapter: memory.New()}
	var events []string
	p, err := harmony.New(models(),
		harmony.WithAdapter("memory", store),
		harmony.WithDefaultAdapter("memory"),
		harmony.WithConcurrency(2),
		harmony.WithLogger(slog.New(slog.DiscardHandler)),
		harmony.WithEvents(adapter.EventFunc(func(_ context.Context, model string, _ adapter.Entity, removed bool) {
			if !removed {
				events = append(events, model)
			}
		})),
	)
	require.NoError(t, err)

	_, err = p.Schema()
	assert.ErrorIs(t, err, harmony.ErrNotInitialized)
	_, err = p.Resolvers()
	assert.ErrorIs(t, err, harmony.ErrNotInitialized)
	assert.Nil(t, p.Graph())

	require.NoError(t, p.Init(ctx))
	require.NoError(t, p.Init(ctx), "init is idempotent")
	assert.ElementsMatch(t, []string{"book", "author"}, store.models)

	sdl, err := p.Schema()
	require.NoError(t, err)
	assert.Contains(t, sdl, "type Book")
	assert.Contains(t, sdl, "scalar MemoryID")

	resolvers, err := p.Resolvers()
	require.NoError(t, err)
	created, err := resolvers["Mutation"]["authorCreate"](ctx, schema.ResolveParams{Args: map[string]any{
		"record": map[string]any{"name": "Herbert"},
	}})
	require.NoError(t, err)
	assert.Equal(t, "Herbert", adapter.EntityOf(created)["name"])
	assert.Equal(t, []string{"author"}, events)
	assert.NotNil(t, p.Registry().Unscoped("author", crud.Read))

	require.NoError(t, p.Close(ctx))
	assert.True(t, store.closed)
}

func TestPersistence_Options(t *testing.T) {
	tests := []struct {
		name string
		opts []harmony.Option
	}{
		{"nil logger", []harmony.Option{harmony.WithLogger(nil)}},
		{"empty default adapter", []harmony.Option{harmony.WithDefaultAdapter("")}},
		{"nil adapter", []harmony.Option{harmony.WithAdapter("memory", nil)}},
		{"unnamed adapter", []harmony.Option{harmony.WithAdapter("", memory.New())}},
		{"duplicate adapter", []harmony.Option{harmony.WithAdapter("m", memory.New()), harmony.WithAdapter("m", memory.New())}},
		{"nil events", []harmony.Option{harmony.WithEvents(nil)}},
		{"negative concurrency", []harmony.Option{harmony.WithConcurrency(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := harmony.New(nil, tt.opts...)
			assert.Error(t, err)
		})
	}
}

func TestPersistence_InitErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("compile error", func(t *testing.T) {
		p, err := harmony.New([]schema.Model{{Name: "book", Schema: schema.Object{
			schema.F("author", property.Reference("writer")),
		}}})
		require.NoError(t, err)
		require.Error(t, p.Init(ctx))
		assert.Nil(t, p.Graph())
	})

	t.Run("adapter error closes the others", func(t *testing.T) {
		good := &stub{Adapter: memory.New()}
		bad := &stub{Adapter: memory.New(), initErr: errors.New("unreachable")}
		p, err := harmony.New(models(),
			harmony.WithAdapter("memory", good),
			harmony.WithAdapter("remote", bad),
			harmony.WithDefaultAdapter("memory"),
			harmony.WithLogger(slog.New(slog.DiscardHandler)),
		)
		require.NoError(t, err)
		err = p.Init(ctx)
		require.Error(t, err)
		assert.True(t, harmony.IsAdapterError(err))

		var ae *harmony.AdapterError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, "remote", ae.Adapter)
		assert.Equal(t, "initialize", ae.Op)
		assert.True(t, good.closed, "initialized adapters are closed")
		assert.False(t, bad.closed)
		assert.ErrorIs(t, p.Close(ctx), harmony.ErrNotInitialized)
	})
}

func TestPersistence_CloseErrors(t *testing.T) {
	ctx := context.Background()
	a := &stub{Adapter: memory.New(), closeErr: errors.New("a")}
	b := &stub{Adapter: memory.New(), closeErr: errors.New("b")}
	var buf bytes.Buffer
	p, err := harmony.New(models(),
		harmony.WithAdapter("memory", a),
		harmony.WithAdapter("other", b),
		harmony.WithDefaultAdapter("memory"),
		harmony.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
	)
	require.NoError(t, err)
	require.NoError(t, p.Init(ctx))

	err = p.Close(ctx)
	var agg *harmony.AggregateError
	require.ErrorAs(t, err, &agg)
	assert.Len(t, agg.Errors, 2)
	assert.True(t, a.closed)
	assert.True(t, b.closed)
	assert.Contains(t, buf.String(), "persistence initialized")
	assert.Empty(t, b.models, "adapters without models are still initialized")
}
