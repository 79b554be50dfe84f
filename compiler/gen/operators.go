package gen

import "github.com/jvdsande/harmony/schema/property"

// Operators returns the {Model}Operators input schema: for every filterable
// main field, the comparison operators applicable to its type.
//
//	scalar                                  eq, neq, exists
//	number, float, date, id, references     + gte, lte, gt, lt
//	string                                  + regex
//	scalar                                  + in, nin
//	array                                   exists, some, all
//	schema                                  match
//
// The schema is derived from the main schema on every call.
func (m *Model) Operators() *property.Property {
	var entries []property.Entry
	for name, f := range m.Schemas.Main.Fields().All() {
		if !f.Exposed(true) {
			continue
		}
		if ops := operatorsOf(f); ops != nil {
			entries = append(entries, property.Field(name, ops))
		}
	}
	return m.view(m.TypeName()+"Operators", entries)
}

// OperatorNames returns the operator vocabulary of p, in declaration order.
func OperatorNames(p *property.Property) []string {
	ops := operatorsOf(p)
	if ops == nil {
		return nil
	}
	return ops.Descriptor().Fields().Names()
}

func operatorsOf(p *property.Property) *property.Builder {
	switch p.Type() {
	case property.TypeSchema:
		var match []property.Entry
		for name, child := range p.Fields().All() {
			if !child.Exposed(true) {
				continue
			}
			if ops := operatorsOf(child); ops != nil {
				match = append(match, property.Field(name, ops))
			}
		}
		if len(match) == 0 {
			return nil
		}
		return property.Schema(property.Field("match", property.Schema(match...)))
	case property.TypeArray:
		entries := []property.Entry{property.Field("exists", property.Boolean())}
		if elem := operatorsOf(p.Elem()); elem != nil {
			entries = append(entries,
				property.Field("some", elem),
				property.Field("all", elem),
			)
		}
		return property.Schema(entries...)
	case property.TypeInvalid:
		return nil
	}
	self := property.From(p.Clone(property.Optional(), property.Under(nil))).Describe("")
	entries := []property.Entry{
		property.Field("eq", self),
		property.Field("neq", self),
		property.Field("exists", property.Boolean()),
	}
	if p.Type().IsOrdered() {
		entries = append(entries,
			property.Field("gte", self),
			property.Field("lte", self),
			property.Field("gt", self),
			property.Field("lt", self),
		)
	}
	if p.Type() == property.TypeString {
		entries = append(entries, property.Field("regex", property.String()))
	}
	entries = append(entries,
		property.Field("in", property.Array(self)),
		property.Field("nin", property.Array(self)),
	)
	return property.Schema(entries...)
}
