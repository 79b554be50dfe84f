// Package harmony declares data models once and derives from them a GraphQL
// schema, the resolvers serving it and the storage adapters behind them.
//
// A Persistence ties the pieces together:
//
//	p, err := harmony.New(models,
//	    harmony.WithAdapter("memory", memory.New()),
//	    harmony.WithDefaultAdapter("memory"),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := p.Init(ctx); err != nil {
//	    return err
//	}
//	defer p.Close(ctx)
//
//	sdl, _ := p.Schema()        // the SDL document
//	resolvers, _ := p.Resolvers() // resolvers by type and field name
//
// The schema and the resolvers are handed to a GraphQL executor; harmony
// ships none. Models are declared with the schema and schema/property
// packages, compiled by compiler/gen, printed by contrib/graphql and wired
// by the resolver package.
//
// # Errors
//
// Errors returned by adapters and user callbacks carry an HTTP-like status
// through the StatusError interface. NotFoundError maps to 404,
// ValidationError to 400 and ConstraintError to 409. Other errors map to
// 500.
package harmony
