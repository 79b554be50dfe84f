// Package resolver wires a compiled graph to storage adapters.
//
// Build returns one resolver map for the whole graph:
//
//	m, err := resolver.Build(g, resolver.Adapters{"memory": memory.New()})
//	m["Query"]["bookList"]     // generated CRUD resolver, scopes applied
//	m["Book"]["author"]        // reference resolver
//	m["Book"]["__resolveReference"]
//
// Every resolver receives the Registry through schema.ResolveParams, so
// user resolvers can call the CRUD resolvers of any model:
//
//	func(ctx context.Context, p schema.ResolveParams) (any, error) {
//	    count := p.Resolvers.Unscoped("book", crud.Count)
//	    return count(ctx, schema.ResolveParams{Args: map[string]any{"filter": f}})
//	}
//
// # Federation
//
// __resolveReference is registered on every non-external model. It reads
// the entity by _id with the unscoped read resolver: entity lookups from the
// gateway carry no viewer, so model scopes are bypassed. Build logs this at
// INFO for each model. Deployments propagating the viewer across services
// should use WithFederationScopes(true).
package resolver
