package property

import "strings"

// String returns a compact structural rendering of p, e.g.
//
//	schema{_id: id<memory>!, title: string!, tags: [string]}
//
// Two trees with the same String have the same shape and configuration.
func (p *Property) String() string {
	var b strings.Builder
	p.write(&b)
	return b.String()
}

func (p *Property) write(b *strings.Builder) {
	if p == nil {
		b.WriteString("<nil>")
		return
	}
	switch p.typ {
	case TypeSchema:
		b.WriteString("schema{")
		i := 0
		for name, child := range p.fields.All() {
			if i > 0 {
				b.WriteString(", ")
			}
			i++
			b.WriteString(name)
			b.WriteString(": ")
			child.write(b)
		}
		b.WriteByte('}')
	case TypeArray:
		b.WriteByte('[')
		p.elem.write(b)
		b.WriteByte(']')
	case TypeReference, TypeReversedReference:
		b.WriteString(p.typ.String() + "(" + p.target)
		if p.on != "" {
			b.WriteString("." + p.on)
		}
		b.WriteByte(')')
	case TypeRaw:
		b.WriteString("raw(" + p.literal + ")")
	default:
		b.WriteString(p.typ.String())
	}
	if p.owner != "" {
		b.WriteString("<" + p.owner + ">")
	}
	if p.required {
		b.WriteByte('!')
	}
	if p.mode != 0 {
		b.WriteString(" @" + p.mode.String())
	}
	if p.unique {
		b.WriteString(" @unique")
	}
	if p.indexed {
		b.WriteString(" @indexed")
	}
	if p.fed.Primary {
		b.WriteString(" @primary")
	}
	if p.fed.External {
		b.WriteString(" @external")
	}
	if p.fed.Provides != "" {
		b.WriteString(" @provides(" + p.fed.Provides + ")")
	}
	if p.fed.Requires != "" {
		b.WriteString(" @requires(" + p.fed.Requires + ")")
	}
	if p.args != nil {
		b.WriteString(" args")
		p.args.write(b)
	}
}
