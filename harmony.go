package harmony

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jvdsande/harmony/adapter"
	"github.com/jvdsande/harmony/compiler/gen"
	"github.com/jvdsande/harmony/contrib/graphql"
	"github.com/jvdsande/harmony/resolver"
	"github.com/jvdsande/harmony/schema"
)

// Persistence compiles a set of models into a GraphQL schema and the
// resolvers serving it, and manages the lifecycle of their adapters.
type Persistence struct {
	models []schema.Model
	cfg    *Config
	log    *slog.Logger
	events *adapter.Broadcaster

	mu        sync.RWMutex
	graph     *gen.Graph
	sdl       string
	registry  *resolver.Registry
	resolvers resolver.Map
	open      []string
}

// New returns a Persistence for models. Nothing is compiled before Init.
func New(models []schema.Model, opts ...Option) (*Persistence, error) {
	cfg := &Config{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	p := &Persistence{
		models: slices.Clone(models),
		cfg:    cfg,
		log:    cfg.logger().With("component", "harmony"),
		events: &adapter.Broadcaster{},
	}
	for _, e := range cfg.Events {
		p.events.Subscribe(e)
	}
	return p, nil
}

// Init compiles the models, prints the schema, builds the resolvers and
// initializes every adapter. Calling Init again is a no-op.
func (p *Persistence) Init(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.graph != nil {
		return nil
	}
	opts := []gen.Option{gen.WithLogger(p.cfg.logger()), gen.WithStrict(p.cfg.Strict)}
	if p.cfg.DefaultAdapter != "" {
		opts = append(opts, gen.WithDefaultAdapter(p.cfg.DefaultAdapter))
	}
	g, err := gen.Compile(p.models, opts...)
	if err != nil {
		return err
	}
	sdl, err := graphql.Print(g)
	if err != nil {
		return err
	}
	registry, err := resolver.NewRegistry(g, p.cfg.Adapters,
		resolver.WithLogger(p.cfg.logger()),
		resolver.WithFederationScopes(p.cfg.FederationScopes),
	)
	if err != nil {
		return err
	}
	resolvers, err := registry.Map()
	if err != nil {
		return err
	}
	open, err := p.initialize(ctx, g)
	if err != nil {
		p.close(context.WithoutCancel(ctx), open)
		return err
	}
	p.graph, p.sdl, p.registry, p.resolvers, p.open = g, sdl, registry, resolvers, open
	p.log.Info("persistence initialized", "models", len(g.Models), "adapters", len(open))
	return nil
}

// initialize runs the Initialize method of every adapter concurrently and
// returns the names of the adapters that succeeded.
func (p *Persistence) initialize(ctx context.Context, g *gen.Graph) ([]string, error) {
	names := slices.Sorted(maps.Keys(p.cfg.Adapters))
	ok := make([]bool, len(names))
	eg, ctx := errgroup.WithContext(ctx)
	if p.cfg.Concurrency > 0 {
		eg.SetLimit(p.cfg.Concurrency)
	}
	for i, name := range names {
		eg.Go(func() error {
			params := adapter.InitParams{
				Models: modelsOf(g, name),
				Events: p.events,
				Logger: p.cfg.logger().With("adapter", name),
			}
			if err := p.cfg.Adapters[name].Initialize(ctx, params); err != nil {
				return &AdapterError{Adapter: name, Op: "initialize", Err: err}
			}
			ok[i] = true
			p.log.Debug("adapter initialized", "adapter", name, "models", len(params.Models))
			return nil
		})
	}
	err := eg.Wait()
	var open []string
	for i, name := range names {
		if ok[i] {
			open = append(open, name)
		}
	}
	return open, err
}

func modelsOf(g *gen.Graph, name string) []*gen.Model {
	var out []*gen.Model
	for _, m := range g.Models {
		if m.Adapter == name && !m.External {
			out = append(out, m)
		}
	}
	return out
}

// Schema returns the printed SDL document.
func (p *Persistence) Schema() (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.graph == nil {
		return "", ErrNotInitialized
	}
	return p.sdl, nil
}

// Resolvers returns the resolver map.
func (p *Persistence) Resolvers() (resolver.Map, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.graph == nil {
		return nil, ErrNotInitialized
	}
	return p.resolvers, nil
}

// Graph returns the compiled graph, or nil before Init.
func (p *Persistence) Graph() *gen.Graph {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.graph
}

// Registry returns the CRUD resolvers of every model, or nil before Init.
func (p *Persistence) Registry() *resolver.Registry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.registry
}

// Subscribe registers e for the writes of every adapter and returns a
// function removing it.
func (p *Persistence) Subscribe(e adapter.Events) (unsubscribe func()) {
	return p.events.Subscribe(e)
}

// Close closes the initialized adapters concurrently. Every adapter is
// closed even when some fail; the failures are returned together.
func (p *Persistence) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.graph == nil {
		return ErrNotInitialized
	}
	err := p.close(ctx, p.open)
	p.open = nil
	return err
}

func (p *Persistence) close(ctx context.Context, names []string) error {
	errs := make([]error, len(names))
	var eg errgroup.Group
	if p.cfg.Concurrency > 0 {
		eg.SetLimit(p.cfg.Concurrency)
	}
	for i, name := range names {
		eg.Go(func() error {
			if err := p.cfg.Adapters[name].Close(ctx); err != nil {
				errs[i] = &AdapterError{Adapter: name, Op: "close", Err: err}
				return nil
			}
			p.log.Debug("adapter closed", "adapter", name)
			return nil
		})
	}
	_ = eg.Wait()
	return NewAggregateError(errs...)
}
