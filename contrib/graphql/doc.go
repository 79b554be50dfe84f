// Package graphql prints the GraphQL SDL of a compiled harmony graph and
// provides the gqlgen glue needed to serve it.
//
// # Usage
//
//	g, err := gen.Compile(models, gen.WithDefaultAdapter("memory"))
//	if err != nil {
//	    log.Fatalf("compiling models: %v", err)
//	}
//	sdl, err := graphql.Print(g)
//	if err != nil {
//	    log.Fatalf("printing schema: %v", err)
//	}
//	if err := graphql.Validate(sdl); err != nil {
//	    log.Fatalf("invalid schema: %v", err)
//	}
//
// # Document Layout
//
// The document starts with the scalar preamble:
//
//	scalar Date
//	scalar JSON
//	scalar Number
//	scalar MemoryID
//
// One identifier scalar is declared per adapter in use, in the order
// adapters first appear in the graph. Then, for every model in declaration
// order:
//   - the object type, with one @key per federation key, and its nested
//     object types
//   - the BookFilterInput, BookCreateInput, BookUpdateInput and
//     BookOperatorsInput input types and their nested inputs
//   - input types nested in field arguments
//   - extend type Query and extend type Mutation blocks
//
// Types without fields are never printed. External models only print an
// extension of the entity owned by another service:
//
//	extend type User @key(fields: "_id") {
//	  _id: UserServiceID! @external
//	  email: String @external
//	}
//
// # Validation
//
// Validate loads the document with gqlparser together with the Apollo
// federation directives (@key, @external, @requires, @provides) and a Query
// root. Errors are returned as a gqlerror.List.
//
// # gqlgen
//
// Date and Number are bound to MarshalDate/UnmarshalDate and
// MarshalNumber/UnmarshalNumber of this package, JSON to graphql.Any and
// identifier scalars to graphql.ID. InjectHarmonyBindings writes these
// bindings into a gqlgen.yml, leaving the keys it does not manage as they
// were:
//
//	cfg, err := graphql.LoadGQLGenConfig("gqlgen.yml")
//	if err != nil {
//	    return err
//	}
//	cfg.InjectHarmonyBindings(g, "schema.graphql")
//	return cfg.Save("gqlgen.yml")
package graphql
