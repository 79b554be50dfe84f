// Package gen compiles harmony model declarations.
//
// # Architecture
//
// The compilation pipeline follows this flow:
//
//	[]schema.Model (Go code or YAML files)
//	        ↓
//	   mixin.Apply + load.Sanitizer
//	        ↓
//	   Model (main, computed, queries and mutations views)
//	        ↓
//	   Graph (registry, owner tagging, reference checks)
//	        ↓
//	   contrib/graphql.Print (SDL) and resolver.Build (resolver map)
//
// # Key Types
//
//   - Graph: the registry of compiled models, looked up by name
//   - Model: one compiled model with its property views and resolvers
//   - References: the gonum graph of model references
//
// # Views
//
// Every model exposes derived views, built from the main schema on demand:
//
//   - Filter: {Model}FilterInput with _and, _or, _nor and _operators
//   - Create: {Model}CreateInput, _id optional
//   - Update: {Model}UpdateInput, _id required, other fields optional
//   - Operators: {Model}OperatorsInput, the comparison operators of every field
//
// # Error Handling
//
// The package uses structured error types:
//
//   - SchemaError: invalid model declarations
//   - ConfigError: invalid options
//   - ReferenceError: references to unknown models
//   - GenerationError: Go code generation failures
//
// Example error handling:
//
//	g, err := gen.Compile(models, gen.WithDefaultAdapter("memory"))
//	if err != nil {
//	    if gen.IsReferenceError(err) {
//	        // a model references an undeclared model
//	    }
//	    return err
//	}
//
// # Configuration
//
// Configuration is done via the functional options pattern:
//
//	g, err := gen.Compile(models,
//	    gen.WithStrict(true),
//	    gen.WithLogger(logger),
//	)
//
// In strict mode malformed fields fail compilation, and generated CRUD
// fields are only exposed for the kinds a model declares a scope for.
package gen
