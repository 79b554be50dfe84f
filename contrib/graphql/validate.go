package graphql

import (
	"errors"
	"strings"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
)

// federationPrelude declares what a federated subgraph schema may use
// without defining it.
const federationPrelude = `scalar _Any
scalar _FieldSet

directive @key(fields: _FieldSet!) repeatable on OBJECT | INTERFACE
directive @external on FIELD_DEFINITION | OBJECT
directive @requires(fields: _FieldSet!) on FIELD_DEFINITION
directive @provides(fields: _FieldSet!) on FIELD_DEFINITION
directive @extends on OBJECT | INTERFACE

type _Service {
  sdl: String
}

type Query {
  _service: _Service!
}
`

// Validate loads sdl together with the federation prelude and reports
// every problem found as a gqlerror.List. Types that sdl only extends,
// such as external entities, are declared empty first.
func Validate(sdl string) error {
	doc, err := parser.ParseSchema(&ast.Source{Name: "schema.graphql", Input: sdl})
	if err != nil {
		return errorList(err)
	}
	var prelude strings.Builder
	prelude.WriteString(federationPrelude)
	declared := map[string]bool{"Query": true}
	for _, def := range doc.Definitions {
		declared[def.Name] = true
	}
	for _, ext := range doc.Extensions {
		if declared[ext.Name] || ext.Kind != ast.Object {
			continue
		}
		declared[ext.Name] = true
		prelude.WriteString("\ntype " + ext.Name + "\n")
	}
	_, err = gqlparser.LoadSchema(
		&ast.Source{Name: "federation.graphql", Input: prelude.String()},
		&ast.Source{Name: "schema.graphql", Input: sdl},
	)
	if err != nil {
		return errorList(err)
	}
	return nil
}

func errorList(err error) gqlerror.List {
	var list gqlerror.List
	if errors.As(err, &list) {
		return list
	}
	var gqlErr *gqlerror.Error
	if errors.As(err, &gqlErr) {
		return gqlerror.List{gqlErr}
	}
	return gqlerror.List{gqlerror.Wrap(err)}
}
