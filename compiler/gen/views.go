package gen

import "github.com/jvdsande/harmony/schema/property"

// Filter returns the {Model}Filter input view: every input field optional,
// the _and, _or and _nor combinators and the _operators field.
func (m *Model) Filter() *property.Property {
	typ := m.TypeName()
	entries := m.inputEntries(property.Optional())
	self := property.Raw(typ + "FilterInput")
	entries = append(entries,
		property.Field("_and", property.Array(self)),
		property.Field("_or", property.Array(self)),
		property.Field("_nor", property.Array(self)),
	)
	if ops := m.Operators(); ops.Printable(true) {
		entries = append(entries, property.Field("_operators", property.Raw(ops.GraphQLName()+"Input")))
	}
	return m.view(typ+"Filter", entries)
}

// Create returns the {Model}Create input view. _id is optional, other
// fields keep their required flag.
func (m *Model) Create() *property.Property {
	entries := m.inputEntries()
	entries[0] = property.Field("_id", m.ID().Clone(property.Optional()))
	return m.view(m.TypeName()+"Create", entries)
}

// Update returns the {Model}Update input view. _id is required, other
// fields are optional.
func (m *Model) Update() *property.Property {
	entries := m.inputEntries(property.Optional())
	entries[0] = property.Field("_id", m.ID())
	return m.view(m.TypeName()+"Update", entries)
}

// inputEntries returns the main fields, _id first, cloned with opts.
func (m *Model) inputEntries(opts ...property.CloneOption) []property.Entry {
	main := m.Schemas.Main.Clone(opts...)
	entries := make([]property.Entry, 0, main.Fields().Len()+4)
	for name, f := range main.Fields().All() {
		entries = append(entries, property.Field(name, f))
	}
	return entries
}

// view builds a named input schema. A construction failure is reported by
// the Err method of the returned property.
func (m *Model) view(name string, entries []property.Entry) *property.Property {
	return property.Schema(entries...).Named(name).Descriptor()
}
