// Command harmony compiles YAML model declarations into a GraphQL schema and
// companion artifacts.
//
// The CLI supports:
//   - print: Print the SDL document, optionally watching the model files
//   - validate: Compile the models and validate the SDL
//   - graph: Export the model reference graph as DOT
//   - gogen: Generate Go structs for the model output types
//   - gqlgen: Inject the harmony scalar bindings into gqlgen.yml
//
// Usage:
//
//	harmony [--config harmony.yaml] <command>
package main

func main() {
	Execute()
}
