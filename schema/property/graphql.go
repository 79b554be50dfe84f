package property

import (
	"strings"

	"github.com/go-openapi/inflect"
)

var scalarNames = map[Type]string{
	TypeString:  "String",
	TypeNumber:  "Number",
	TypeFloat:   "Float",
	TypeBoolean: "Boolean",
	TypeJSON:    "JSON",
	TypeDate:    "Date",
}

// Pascal returns s in PascalCase: "book_store" and "bookStore" both give
// "BookStore".
func Pascal(s string) string {
	if s == "" {
		return ""
	}
	return inflect.Camelize(s)
}

// LowerCamel returns s in lowerCamelCase.
func LowerCamel(s string) string {
	if s == "" {
		return ""
	}
	return inflect.CamelizeDownFirst(s)
}

// IDScalar returns the identifier scalar of the adapter named owner.
func IDScalar(owner string) string {
	return Pascal(owner) + "ID"
}

// GraphQLName returns the PascalCase concatenation of the names of p and
// all its ancestors. Nested types are named after it.
func (p *Property) GraphQLName() string {
	var parts []string
	for n := p; n != nil; n = n.parent {
		parts = append(parts, Pascal(n.name))
	}
	var b strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		b.WriteString(parts[i])
	}
	return b.String()
}

// GraphQLType returns the type of p in an object type.
func (p *Property) GraphQLType() string {
	return p.withBang(p.baseType(false))
}

// GraphQLInputType returns the type of p in an input object.
func (p *Property) GraphQLInputType() string {
	return p.withBang(p.baseType(true))
}

func (p *Property) withBang(t string) string {
	if p.required {
		return t + "!"
	}
	return t
}

func (p *Property) baseType(input bool) string {
	switch p.typ {
	case TypeID:
		return IDScalar(p.owner)
	case TypeReference, TypeReversedReference:
		if input {
			return IDScalar(p.owner)
		}
		return Pascal(p.target)
	case TypeSchema:
		if input {
			return p.GraphQLName() + "Input"
		}
		return p.GraphQLName()
	case TypeArray:
		if input {
			return "[" + p.elem.GraphQLInputType() + "]"
		}
		return "[" + p.elem.GraphQLType() + "]"
	case TypeRaw:
		return p.literal
	}
	return scalarNames[p.typ]
}

// Exposed reports whether p belongs to the input (or output) view of its
// schema.
func (p *Property) Exposed(input bool) bool {
	if input {
		return p.EffectiveMode().Has(Input)
	}
	return p.EffectiveMode().Has(Output)
}

// Printable reports whether p renders to at least one field in the given
// view. Empty schemas, and arrays of them, are not printable.
func (p *Property) Printable(input bool) bool {
	switch p.typ {
	case TypeSchema:
		for _, child := range p.fields.All() {
			if child.Exposed(input) && child.Printable(input) {
				return true
			}
		}
		return false
	case TypeArray:
		return p.elem.Printable(input)
	}
	return true
}

// OutputFields returns the children of a schema node printed in its object
// type, in declaration order.
func (p *Property) OutputFields() []*Property { return p.viewFields(false) }

// InputFields returns the children of a schema node printed in its input
// object, in declaration order.
func (p *Property) InputFields() []*Property { return p.viewFields(true) }

func (p *Property) viewFields(input bool) []*Property {
	var out []*Property
	for _, child := range p.fields.All() {
		if child.Exposed(input) && child.Printable(input) {
			out = append(out, child)
		}
	}
	return out
}

// GraphQLField renders p as an object type field definition, arguments and
// federation directives included.
func (p *Property) GraphQLField() string {
	var b strings.Builder
	b.WriteString(p.name)
	if p.args != nil {
		if args := p.args.InputFields(); len(args) > 0 {
			b.WriteByte('(')
			for i, a := range args {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(a.name)
				b.WriteString(": ")
				b.WriteString(a.GraphQLInputType())
			}
			b.WriteByte(')')
		}
	}
	b.WriteString(": ")
	b.WriteString(p.GraphQLType())
	if p.fed.External {
		b.WriteString(" @external")
	}
	if p.fed.Provides != "" {
		b.WriteString(` @provides(fields: "` + p.fed.Provides + `")`)
	}
	if p.fed.Requires != "" {
		b.WriteString(` @requires(fields: "` + p.fed.Requires + `")`)
	}
	return b.String()
}

// GraphQLInputField renders p as an input object field definition.
func (p *Property) GraphQLInputField() string {
	return p.name + ": " + p.GraphQLInputType()
}

// GraphQLSchema renders the object type body of a schema node.
func (p *Property) GraphQLSchema() string {
	var b strings.Builder
	for _, f := range p.OutputFields() {
		writeDescription(&b, f.desc)
		b.WriteString("  " + f.GraphQLField() + "\n")
	}
	return b.String()
}

// GraphQLInputSchema renders the input object body of a schema node.
func (p *Property) GraphQLInputSchema() string {
	var b strings.Builder
	for _, f := range p.InputFields() {
		writeDescription(&b, f.desc)
		b.WriteString("  " + f.GraphQLInputField() + "\n")
	}
	return b.String()
}

var descriptionEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func writeDescription(b *strings.Builder, desc string) {
	if desc == "" {
		return
	}
	b.WriteString(`  "` + descriptionEscaper.Replace(desc) + "\"\n")
}
