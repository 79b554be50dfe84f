package graphql

import (
	"strings"

	"github.com/jvdsande/harmony/compiler/gen"
	"github.com/jvdsande/harmony/schema/property"
)

// builtinScalars are declared before the identifier scalars of the
// adapters.
var builtinScalars = []string{"Date", "JSON", "Number"}

// PrintOption configures Print.
type PrintOption func(*printConfig)

type printConfig struct {
	header string
}

// WithHeader prints text as a comment block at the top of the document.
func WithHeader(text string) PrintOption {
	return func(c *printConfig) { c.header = text }
}

// Print renders the SDL document of g: the scalar preamble, then for each
// model in declaration order its object types, its input types and its
// Query and Mutation extensions. Printing the same graph twice gives the
// same bytes.
func Print(g *gen.Graph, opts ...PrintOption) (string, error) {
	if g == nil {
		return "", gen.NewConfigError("Graph", nil, "graph cannot be nil")
	}
	cfg := &printConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	p := &printer{seen: make(map[string]bool)}
	if cfg.header != "" {
		for _, line := range strings.Split(strings.TrimRight(cfg.header, "\n"), "\n") {
			p.b.WriteString("# " + line + "\n")
		}
		p.b.WriteString("\n")
	}
	for _, name := range builtinScalars {
		p.b.WriteString("scalar " + name + "\n")
	}
	for _, owner := range g.Adapters() {
		p.b.WriteString("scalar " + property.IDScalar(owner) + "\n")
	}
	p.b.WriteString("\n")
	for _, m := range g.Models {
		if err := p.model(m); err != nil {
			return "", err
		}
	}
	return strings.TrimRight(p.b.String(), "\n") + "\n", nil
}

type printer struct {
	b    strings.Builder
	seen map[string]bool
	args []*property.Property
}

func (p *printer) model(m *gen.Model) error {
	body := m.Schemas.Main.GraphQLSchema() + m.Schemas.Computed.GraphQLSchema()
	if m.External {
		p.block("extend type "+m.TypeName()+key("_id"), body)
	} else {
		head := "type " + m.TypeName()
		for _, k := range m.Keys {
			head += key(k)
		}
		p.block(head, body)
	}
	p.outputs(m.Schemas.Main)
	p.outputs(m.Schemas.Computed)
	p.outputs(m.Schemas.Queries)
	p.outputs(m.Schemas.Mutations)
	if !m.External {
		for _, view := range []*property.Property{m.Filter(), m.Create(), m.Update(), m.Operators()} {
			if err := view.Err(); err != nil {
				return gen.NewSchemaError(m.Name, "", "cannot build "+view.GraphQLName()+" input", err)
			}
			p.block("input "+view.GraphQLName()+"Input", view.GraphQLInputSchema())
			p.inputs(view)
		}
	}
	for _, args := range p.args {
		p.inputs(args)
	}
	p.args = p.args[:0]
	p.block("extend type Query", m.Schemas.Queries.GraphQLSchema())
	p.block("extend type Mutation", m.Schemas.Mutations.GraphQLSchema())
	return nil
}

// block writes a type definition. Definitions without fields are skipped,
// as are names already written.
func (p *printer) block(head, body string) {
	if body == "" {
		return
	}
	if !strings.HasPrefix(head, "extend ") {
		name := strings.Fields(head)[1]
		if p.seen[name] {
			return
		}
		p.seen[name] = true
	}
	p.b.WriteString(head + " {\n" + body + "}\n\n")
}

// outputs writes the object types nested in the fields of root and
// records their arguments.
func (p *printer) outputs(root *property.Property) {
	for _, f := range root.OutputFields() {
		if f.Args() != nil {
			p.args = append(p.args, f.Args())
		}
		t := elem(f)
		if t.Type() != property.TypeSchema {
			continue
		}
		p.block("type "+t.GraphQLName(), t.GraphQLSchema())
		p.outputs(t)
	}
}

// inputs writes the input types nested in the fields of root.
func (p *printer) inputs(root *property.Property) {
	for _, f := range root.InputFields() {
		t := elem(f)
		if t.Type() != property.TypeSchema {
			continue
		}
		p.block("input "+t.GraphQLName()+"Input", t.GraphQLInputSchema())
		p.inputs(t)
	}
}

func elem(p *property.Property) *property.Property {
	for p.Type() == property.TypeArray {
		p = p.Elem()
	}
	return p
}

func key(fields string) string {
	return ` @key(fields: "` + fields + `")`
}
