package load

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/jvdsande/harmony/schema"
	"github.com/jvdsande/harmony/schema/crud"
	"github.com/jvdsande/harmony/schema/property"
)

// Parse decodes a YAML model file:
//
//	models:
//	  - name: book
//	    adapter: memory
//	    schema:
//	      title: string!
//	      tags: [string]
//	      author: {type: reference, of: author}
//	      reviews: {type: reversed-reference, of: review, on: book}
//	      meta:
//	        pages: number
//	    computed:
//	      queries:
//	        - name: bookByTitle
//	          extends: read
//
// A scalar value names a property type, with a trailing "!" for required
// fields. A mapping with a "type" key naming a property type declares a
// property with options; any other mapping is a nested object. A one-element
// sequence is an array. Field order follows the file.
func Parse(data []byte) ([]schema.Model, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("load: decode yaml: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, nodeErr(root, "expected a mapping with a models key")
	}
	list := lookup(root, "models")
	if list == nil {
		return nil, nil
	}
	if list.Kind != yaml.SequenceNode {
		return nil, nodeErr(list, "models must be a sequence")
	}
	models := make([]schema.Model, 0, len(list.Content))
	for _, n := range list.Content {
		m, err := parseModel(n)
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return models, nil
}

// File reads and parses one YAML model file.
func File(path string) ([]schema.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load: read %s: %w", path, err)
	}
	models, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return models, nil
}

// Files reads the given files concurrently and returns their models in
// argument order.
func Files(ctx context.Context, paths ...string) ([]schema.Model, error) {
	results := make([][]schema.Model, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			models, err := File(path)
			if err != nil {
				return err
			}
			results[i] = models
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var models []schema.Model
	for _, r := range results {
		models = append(models, r...)
	}
	return models, nil
}

func parseModel(n *yaml.Node) (schema.Model, error) {
	var m schema.Model
	if n.Kind != yaml.MappingNode {
		return m, nodeErr(n, "model must be a mapping")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1]
		var err error
		switch key {
		case "name":
			m.Name = val.Value
		case "adapter":
			m.Adapter = val.Value
		case "external":
			err = val.Decode(&m.External)
		case "schema":
			m.Schema, err = parseDecl(val)
		case "computed":
			m.Computed, err = parseComputed(val)
		default:
			err = nodeErr(n.Content[i], "unknown model key %q", key)
		}
		if err != nil {
			return m, err
		}
	}
	if m.Name == "" {
		return m, nodeErr(n, "model has no name")
	}
	return m, nil
}

func parseComputed(n *yaml.Node) (schema.Computed, error) {
	var c schema.Computed
	if n.Kind != yaml.MappingNode {
		return c, nodeErr(n, "computed must be a mapping")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1]
		fields, err := parseComputedFields(val)
		if err != nil {
			return c, err
		}
		switch key {
		case "fields":
			c.Fields = fields
		case "queries":
			c.Queries = fields
		case "mutations":
			c.Mutations = fields
		default:
			return c, nodeErr(n.Content[i], "unknown computed group %q", key)
		}
	}
	return c, nil
}

func parseComputedFields(n *yaml.Node) ([]schema.ComputedField, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, nodeErr(n, "computed group must be a sequence")
	}
	fields := make([]schema.ComputedField, 0, len(n.Content))
	for _, item := range n.Content {
		if item.Kind != yaml.MappingNode {
			return nil, nodeErr(item, "computed field must be a mapping")
		}
		var f schema.ComputedField
		for i := 0; i+1 < len(item.Content); i += 2 {
			key, val := item.Content[i].Value, item.Content[i+1]
			var err error
			switch key {
			case "name":
				f.Name = val.Value
			case "description":
				f.Description = val.Value
			case "extends":
				if f.Extends, err = crud.Parse(val.Value); err != nil {
					err = wrapNode(val, err)
				}
			case "mode":
				if f.Mode, err = parseMode(val.Value); err != nil {
					err = wrapNode(val, err)
				}
			case "type":
				f.Type, err = parseDecl(val)
			case "args":
				f.Args, err = parseDecl(val)
			default:
				err = nodeErr(item.Content[i], "unknown computed key %q", key)
			}
			if err != nil {
				return nil, err
			}
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// parseDecl converts a YAML node to a raw declaration understood by
// Sanitize.
func parseDecl(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return parseScalar(n)
	case yaml.SequenceNode:
		if len(n.Content) != 1 {
			return nil, nodeErr(n, "array shorthand expects one element, got %d", len(n.Content))
		}
		elem, err := parseDecl(n.Content[0])
		if err != nil {
			return nil, err
		}
		return []any{elem}, nil
	case yaml.MappingNode:
		if t := lookup(n, "type"); t != nil && t.Kind == yaml.ScalarNode {
			if _, err := property.ParseType(t.Value); err == nil {
				return parseProperty(n)
			}
		}
		obj := make(schema.Object, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			decl, err := parseDecl(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj = append(obj, schema.F(n.Content[i].Value, decl))
		}
		return obj, nil
	case yaml.AliasNode:
		return parseDecl(n.Alias)
	}
	return nil, nodeErr(n, "unsupported node")
}

func parseScalar(n *yaml.Node) (*property.Builder, error) {
	name, required := strings.CutSuffix(strings.TrimSpace(n.Value), "!")
	t, err := property.ParseType(name)
	if err != nil {
		return nil, wrapNode(n, err)
	}
	var b *property.Builder
	switch t {
	case property.TypeString:
		b = property.String()
	case property.TypeNumber:
		b = property.Number()
	case property.TypeFloat:
		b = property.Float()
	case property.TypeBoolean:
		b = property.Boolean()
	case property.TypeID:
		b = property.ID()
	case property.TypeJSON:
		b = property.JSON()
	case property.TypeDate:
		b = property.Date()
	default:
		return nil, nodeErr(n, "type %q needs the long form {type: %s, of: ...}", name, name)
	}
	if required {
		b.Required()
	}
	return b, nil
}

// yamlProperty is the long form of a property declaration.
type yamlProperty struct {
	Type        string    `yaml:"type"`
	Of          yaml.Node `yaml:"of"`
	On          string    `yaml:"on"`
	Mode        string    `yaml:"mode"`
	Required    bool      `yaml:"required"`
	Unique      bool      `yaml:"unique"`
	Indexed     bool      `yaml:"indexed"`
	External    bool      `yaml:"external"`
	Primary     bool      `yaml:"primary"`
	Provides    string    `yaml:"provides"`
	Requires    string    `yaml:"requires"`
	Description string    `yaml:"description"`
	Args        yaml.Node `yaml:"args"`
}

func parseProperty(n *yaml.Node) (*property.Builder, error) {
	var y yamlProperty
	if err := n.Decode(&y); err != nil {
		return nil, wrapNode(n, err)
	}
	t, err := property.ParseType(y.Type)
	if err != nil {
		return nil, wrapNode(n, err)
	}
	var b *property.Builder
	switch t {
	case property.TypeReference:
		b = property.Reference(y.Of.Value)
	case property.TypeReversedReference:
		b = property.ReversedReference(y.Of.Value).On(y.On)
	case property.TypeRaw:
		b = property.Raw(y.Of.Value)
	case property.TypeArray, property.TypeSchema:
		if y.Of.Kind == 0 {
			return nil, nodeErr(n, "%s needs an of key", t)
		}
		decl, err := parseDecl(&y.Of)
		if err != nil {
			return nil, err
		}
		elem, err := Sanitize("", decl, nil)
		if err != nil {
			return nil, wrapNode(n, err)
		}
		if t == property.TypeArray {
			b = property.Array(elem)
		} else {
			if elem.Type() != property.TypeSchema {
				return nil, nodeErr(n, "schema expects a mapping, got %s", elem.Type())
			}
			entries := make([]property.Entry, 0, elem.Fields().Len())
			for name, child := range elem.Fields().All() {
				entries = append(entries, property.Field(name, child))
			}
			b = property.Schema(entries...)
		}
	default:
		if b, err = parseScalar(&yaml.Node{Kind: yaml.ScalarNode, Value: y.Type, Line: n.Line, Column: n.Column}); err != nil {
			return nil, err
		}
	}
	if y.Mode != "" {
		mode, err := parseMode(y.Mode)
		if err != nil {
			return nil, wrapNode(n, err)
		}
		b.WithMode(mode)
	}
	if y.Required {
		b.Required()
	}
	if y.Unique {
		b.Unique()
	}
	if y.Indexed {
		b.Indexed()
	}
	if y.External {
		b.External()
	}
	if y.Primary {
		b.Primary()
	}
	if y.Provides != "" {
		b.Provides(y.Provides)
	}
	if y.Requires != "" {
		b.Requires(y.Requires)
	}
	if y.Description != "" {
		b.Describe(y.Description)
	}
	if y.Args.Kind != 0 {
		decl, err := parseDecl(&y.Args)
		if err != nil {
			return nil, err
		}
		args, err := Sanitize("", decl, nil)
		if err != nil {
			return nil, wrapNode(n, err)
		}
		b.WithArgs(args)
	}
	return b, nil
}

func parseMode(s string) (property.Mode, error) {
	switch s {
	case "", "inherit":
		return 0, nil
	case "input":
		return property.Input, nil
	case "output":
		return property.Output, nil
	case "both":
		return property.Both, nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

func lookup(n *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func nodeErr(n *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("load: line %d: %s", n.Line, fmt.Sprintf(format, args...))
}

func wrapNode(n *yaml.Node, err error) error {
	return fmt.Errorf("load: line %d: %w", n.Line, err)
}
