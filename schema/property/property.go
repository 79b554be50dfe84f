package property

import (
	"errors"
	"fmt"
	"strings"
)

// Type is the tag of a Property.
type Type uint8

// Property types.
const (
	TypeInvalid Type = iota
	TypeString
	TypeNumber
	TypeFloat
	TypeBoolean
	TypeID
	TypeJSON
	TypeDate
	TypeReference
	TypeReversedReference
	TypeArray
	TypeSchema
	TypeRaw
)

var typeNames = [...]string{
	TypeInvalid:           "invalid",
	TypeString:            "string",
	TypeNumber:            "number",
	TypeFloat:             "float",
	TypeBoolean:           "boolean",
	TypeID:                "id",
	TypeJSON:              "json",
	TypeDate:              "date",
	TypeReference:         "reference",
	TypeReversedReference: "reversed-reference",
	TypeArray:             "array",
	TypeSchema:            "schema",
	TypeRaw:               "raw",
}

// String returns the lower-case tag of t.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// ParseType returns the Type tagged s.
func ParseType(s string) (Type, error) {
	for t := TypeString; t <= TypeRaw; t++ {
		if typeNames[t] == s {
			return t, nil
		}
	}
	return TypeInvalid, fmt.Errorf("property: unknown type %q", s)
}

// IsScalar reports whether t is neither an array nor a nested schema.
func (t Type) IsScalar() bool {
	return t != TypeInvalid && t != TypeArray && t != TypeSchema
}

// IsOrdered reports whether values of t support range comparisons.
func (t Type) IsOrdered() bool {
	switch t {
	case TypeNumber, TypeFloat, TypeDate, TypeID, TypeReference, TypeReversedReference:
		return true
	}
	return false
}

// IsReference reports whether t points at another model.
func (t Type) IsReference() bool {
	return t == TypeReference || t == TypeReversedReference
}

// hasOwner reports whether the wire form of t depends on an adapter.
func (t Type) hasOwner() bool {
	return t == TypeID || t.IsReference()
}

// Mode is the set of directions a field is exposed in.
type Mode uint8

// Field modes. The zero Mode inherits from the parent.
const (
	Input Mode = 1 << iota
	Output

	Both = Input | Output
)

// Has reports whether m contains every direction of o.
func (m Mode) Has(o Mode) bool { return m&o == o }

// String returns a readable form of m.
func (m Mode) String() string {
	switch m {
	case 0:
		return "inherit"
	case Input:
		return "input"
	case Output:
		return "output"
	case Both:
		return "both"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// Federation holds the federation annotations of a field.
type Federation struct {
	Primary  bool
	External bool
	Provides string
	Requires string
}

// ErrInvalid is wrapped by every construction error.
var ErrInvalid = errors.New("property: invalid property")

// Property is the typed description of one schema field.
//
// A Property is never modified once it is returned by a Builder or by New.
// Operations that place a node in a tree (naming, re-parenting, owner
// tagging) return new nodes through Clone.
type Property struct {
	typ      Type
	name     string
	parent   *Property
	mode     Mode
	fields   *Fields
	elem     *Property
	target   string
	literal  string
	on       string
	args     *Property
	owner    string
	desc     string
	required bool
	unique   bool
	indexed  bool
	fed      Federation
	err      error
}

// Config is the input of New.
type Config struct {
	// Name is the local field name.
	Name string
	// Of is the payload: []Entry or *Fields for TypeSchema, a Descriptor for
	// TypeArray, the target model name for references and the literal GraphQL
	// type for TypeRaw.
	Of any
	// Mode is the exposure of the field. Zero inherits from Parent.
	Mode Mode
	// Parent is the enclosing node.
	Parent *Property
}

// New is the Property factory.
func New(t Type, c Config) (*Property, error) {
	p := &Property{typ: t, name: c.Name, mode: c.Mode, parent: c.Parent}
	switch t {
	case TypeSchema:
		p.fields = newFields(0)
		switch of := c.Of.(type) {
		case nil:
		case []Entry:
			for _, e := range of {
				if e.Property == nil {
					return nil, fmt.Errorf("%w: field %q of %q has no descriptor", ErrInvalid, e.Name, c.Name)
				}
				p.fields.set(e.Name, e.Property.Descriptor().clone(e.Name, p, &cloneConfig{}))
			}
		case *Fields:
			for name, child := range of.All() {
				p.fields.set(name, child.clone(name, p, &cloneConfig{}))
			}
		default:
			return nil, fmt.Errorf("%w: schema %q expects fields, got %T", ErrInvalid, c.Name, c.Of)
		}
	case TypeArray:
		d, ok := c.Of.(Descriptor)
		if !ok || d == nil {
			return nil, fmt.Errorf("%w: array %q expects an element descriptor, got %T", ErrInvalid, c.Name, c.Of)
		}
		elem := d.Descriptor()
		p.elem = elem.clone(elem.name, p, &cloneConfig{})
		if p.mode == 0 {
			p.mode = elem.mode
		}
	case TypeReference, TypeReversedReference:
		target, ok := c.Of.(string)
		if !ok || target == "" {
			return nil, fmt.Errorf("%w: %s %q expects a target model name", ErrInvalid, t, c.Name)
		}
		p.target = target
	case TypeRaw:
		literal, ok := c.Of.(string)
		if !ok || strings.TrimSpace(literal) == "" {
			return nil, fmt.Errorf("%w: raw %q expects a type name", ErrInvalid, c.Name)
		}
		p.literal = literal
	case TypeString, TypeNumber, TypeFloat, TypeBoolean, TypeID, TypeJSON, TypeDate:
	default:
		return nil, fmt.Errorf("%w: unknown type %d", ErrInvalid, uint8(t))
	}
	return p, nil
}

// Descriptor is implemented by values that describe a Property.
type Descriptor interface {
	Descriptor() *Property
}

// Descriptor returns p itself, so built properties can be used wherever a
// builder is accepted.
func (p *Property) Descriptor() *Property { return p }

// Type returns the tag of p.
func (p *Property) Type() Type { return p.typ }

// Name returns the local field name.
func (p *Property) Name() string { return p.name }

// Parent returns the enclosing node, or nil for a root.
func (p *Property) Parent() *Property { return p.parent }

// Mode returns the mode set on p itself. See EffectiveMode.
func (p *Property) Mode() Mode { return p.mode }

// EffectiveMode returns the first mode set on p or its ancestors,
// defaulting to Both.
func (p *Property) EffectiveMode() Mode {
	for n := p; n != nil; n = n.parent {
		if n.mode != 0 {
			return n.mode
		}
	}
	return Both
}

// Fields returns the children of a schema node.
func (p *Property) Fields() *Fields { return p.fields }

// Field returns the named child of a schema node, or nil.
func (p *Property) Field(name string) *Property { return p.fields.Get(name) }

// Elem returns the element of an array node.
func (p *Property) Elem() *Property { return p.elem }

// Target returns the referenced model name.
func (p *Property) Target() string { return p.target }

// On returns the field of the target model holding the key of a reversed
// reference.
func (p *Property) On() string { return p.on }

// Literal returns the GraphQL type of a raw node.
func (p *Property) Literal() string { return p.literal }

// Args returns the argument schema, or nil.
func (p *Property) Args() *Property { return p.args }

// Owner returns the adapter that owns the identifiers of an id or
// reference node.
func (p *Property) Owner() string { return p.owner }

// Description returns the documentation string.
func (p *Property) Description() string { return p.desc }

// IsRequired reports whether the field is non-nullable.
func (p *Property) IsRequired() bool { return p.required }

// IsUnique reports whether the field is declared unique.
func (p *Property) IsUnique() bool { return p.unique }

// IsIndexed reports whether the field is declared indexed.
func (p *Property) IsIndexed() bool { return p.indexed }

// Federation returns the federation annotations.
func (p *Property) Federation() Federation { return p.fed }

// Err returns the error recorded while building p.
func (p *Property) Err() error { return p.err }

// Root returns the topmost ancestor of p.
func (p *Property) Root() *Property {
	n := p
	for n.parent != nil {
		n = n.parent
	}
	return n
}

// Walk calls fn for p and every descendant in declaration order, including
// array elements and argument schemas. Returning false skips the children.
func (p *Property) Walk(fn func(*Property) bool) {
	if p == nil || !fn(p) {
		return
	}
	for _, child := range p.fields.All() {
		child.Walk(fn)
	}
	p.elem.Walk(fn)
	p.args.Walk(fn)
}

// CloneOption configures Clone.
type CloneOption func(*cloneConfig)

type cloneConfig struct {
	named    bool
	name     string
	under    bool
	parent   *Property
	optional bool
	owner    func(*Property) string
}

// Named renames the cloned root.
func Named(name string) CloneOption {
	return func(c *cloneConfig) { c.named, c.name = true, name }
}

// Under re-parents the cloned root.
func Under(parent *Property) CloneOption {
	return func(c *cloneConfig) { c.under, c.parent = true, parent }
}

// Optional clears the required flag on the cloned tree, arguments excluded.
func Optional() CloneOption {
	return func(c *cloneConfig) { c.optional = true }
}

// Owners fills the owner of every id and reference node of the cloned tree
// that has none.
func Owners(fn func(*Property) string) CloneOption {
	return func(c *cloneConfig) { c.owner = fn }
}

// Clone returns a deep copy of p. Modes are preserved and children are
// re-linked to the copy.
func (p *Property) Clone(opts ...CloneOption) *Property {
	c := &cloneConfig{}
	for _, opt := range opts {
		opt(c)
	}
	name, parent := p.name, p.parent
	if c.named {
		name = c.name
	}
	if c.under {
		parent = c.parent
	}
	return p.clone(name, parent, c)
}

func (p *Property) clone(name string, parent *Property, c *cloneConfig) *Property {
	n := new(Property)
	*n = *p
	n.name, n.parent = name, parent
	if c.optional {
		n.required = false
	}
	if c.owner != nil && n.owner == "" && n.typ.hasOwner() {
		n.owner = c.owner(n)
	}
	if p.fields != nil {
		n.fields = newFields(p.fields.Len())
		for childName, child := range p.fields.All() {
			n.fields.set(childName, child.clone(childName, n, c))
		}
	}
	if p.elem != nil {
		n.elem = p.elem.clone(p.elem.name, n, c)
	}
	if p.args != nil {
		n.args = p.args.clone(p.args.name, n, &cloneConfig{owner: c.owner})
	}
	return n
}
