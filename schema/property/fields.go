package property

import "iter"

// Fields is the ordered set of children of a schema node. Iteration follows
// insertion order. A nil *Fields is empty.
type Fields struct {
	names []string
	props map[string]*Property
}

func newFields(n int) *Fields {
	return &Fields{names: make([]string, 0, n), props: make(map[string]*Property, n)}
}

// set adds or replaces a child. Replacing keeps the original position.
func (f *Fields) set(name string, p *Property) {
	if _, ok := f.props[name]; !ok {
		f.names = append(f.names, name)
	}
	f.props[name] = p
}

// Len returns the number of children.
func (f *Fields) Len() int {
	if f == nil {
		return 0
	}
	return len(f.names)
}

// Get returns the named child, or nil.
func (f *Fields) Get(name string) *Property {
	if f == nil {
		return nil
	}
	return f.props[name]
}

// Names returns the child names in insertion order.
func (f *Fields) Names() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.names...)
}

// All iterates over the children in insertion order.
func (f *Fields) All() iter.Seq2[string, *Property] {
	return func(yield func(string, *Property) bool) {
		if f == nil {
			return
		}
		for _, name := range f.names {
			if !yield(name, f.props[name]) {
				return
			}
		}
	}
}

// Entry is a named field used to build schemas.
type Entry struct {
	Name     string
	Property Descriptor
}

// Field returns an Entry for d named name.
func Field(name string, d Descriptor) Entry {
	return Entry{Name: name, Property: d}
}
