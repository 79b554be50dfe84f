package property

import "fmt"

// Builder configures a Property. Modifiers update the builder in place and
// return it; Descriptor returns a new frozen Property on every call.
type Builder struct {
	desc *Property
}

func newBuilder(t Type, of any) *Builder {
	p, err := New(t, Config{Of: of})
	if err != nil {
		p = &Property{typ: t, err: err}
	}
	return &Builder{desc: p}
}

// String returns a builder for a string field.
func String() *Builder { return newBuilder(TypeString, nil) }

// Number returns a builder for a number field.
func Number() *Builder { return newBuilder(TypeNumber, nil) }

// Float returns a builder for a float field.
func Float() *Builder { return newBuilder(TypeFloat, nil) }

// Boolean returns a builder for a boolean field.
func Boolean() *Builder { return newBuilder(TypeBoolean, nil) }

// ID returns a builder for an identifier field.
func ID() *Builder { return newBuilder(TypeID, nil) }

// JSON returns a builder for an opaque JSON field.
func JSON() *Builder { return newBuilder(TypeJSON, nil) }

// Date returns a builder for a date field.
func Date() *Builder { return newBuilder(TypeDate, nil) }

// Reference returns a builder for a field holding the _id of a target model.
func Reference(target string) *Builder { return newBuilder(TypeReference, target) }

// ReversedReference returns a builder for a field resolving the target
// documents whose On field holds the _id of the source.
//
//	property.ReversedReference("Book").On("author")
func ReversedReference(target string) *Builder {
	b := newBuilder(TypeReversedReference, target)
	if b.desc.err == nil {
		b.desc.mode = Output
	}
	return b
}

// Array returns a builder for a list of elem.
func Array(elem Descriptor) *Builder { return newBuilder(TypeArray, elem) }

// Schema returns a builder for a nested object.
func Schema(entries ...Entry) *Builder { return newBuilder(TypeSchema, entries) }

// Raw returns a builder for a field printed with a literal GraphQL type.
func Raw(typeName string) *Builder { return newBuilder(TypeRaw, typeName) }

// From returns a builder seeded with a copy of d.
func From(d Descriptor) *Builder {
	return &Builder{desc: d.Descriptor().Clone()}
}

// Named sets the local name.
func (b *Builder) Named(name string) *Builder {
	b.desc.name = name
	return b
}

// Required marks the field as non-nullable.
func (b *Builder) Required() *Builder {
	b.desc.required = true
	return b
}

// Unique marks the field as unique.
func (b *Builder) Unique() *Builder {
	b.desc.unique = true
	return b
}

// Indexed marks the field as indexed.
func (b *Builder) Indexed() *Builder {
	b.desc.indexed = true
	return b
}

// External marks the field as owned by another federated service.
func (b *Builder) External() *Builder {
	b.desc.fed.External = true
	return b
}

// Primary adds the field to the federation keys of its model.
func (b *Builder) Primary() *Builder {
	b.desc.fed.Primary = true
	return b
}

// Provides sets the @provides selection of a reference field.
func (b *Builder) Provides(fields string) *Builder {
	b.desc.fed.Provides = fields
	return b
}

// Requires sets the @requires selection of a field.
func (b *Builder) Requires(fields string) *Builder {
	b.desc.fed.Requires = fields
	return b
}

// WithArgs sets the argument schema of the field.
func (b *Builder) WithArgs(args Descriptor) *Builder {
	if args == nil {
		b.desc.args = nil
		return b
	}
	a := args.Descriptor()
	if a.typ != TypeSchema {
		b.desc.err = fmt.Errorf("%w: arguments must be a schema, got %s", ErrInvalid, a.typ)
		return b
	}
	b.desc.args = a.clone(a.name, b.desc, &cloneConfig{})
	return b
}

// WithMode sets the exposure of the field.
func (b *Builder) WithMode(m Mode) *Builder {
	b.desc.mode = m
	return b
}

// On sets the foreign field of a reversed reference.
func (b *Builder) On(field string) *Builder {
	b.desc.on = field
	return b
}

// Describe sets the documentation string.
func (b *Builder) Describe(text string) *Builder {
	b.desc.desc = text
	return b
}

// Descriptor returns a frozen copy of the configured Property.
func (b *Builder) Descriptor() *Property {
	p := b.desc.Clone()
	if p.err == nil && p.typ == TypeReversedReference && p.on == "" {
		p.err = fmt.Errorf("%w: reversed reference to %q has no foreign field", ErrInvalid, p.target)
	}
	return p
}
