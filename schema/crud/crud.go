// Package crud defines the closed set of CRUD operations generated for every
// model, together with their historical aliases.
//
//	crud.Read       // book
//	crud.ReadMany   // bookList
//	crud.Count      // bookCount
//	crud.Create     // bookCreate
//	crud.UpdateMany // bookUpdateMany
//
// Aliases resolve to the same Kind value, so a switch over the nine
// canonical kinds is exhaustive:
//
//	crud.Get == crud.Read
//	crud.List == crud.ReadMany
package crud

import "fmt"

// Kind is one of the nine generated CRUD operations.
type Kind uint8

// The CRUD kinds, in generation order.
const (
	Read Kind = iota + 1
	ReadMany
	Count
	Create
	CreateMany
	Update
	UpdateMany
	Delete
	DeleteMany
)

// Aliases accepted wherever a Kind is named.
const (
	Get      = Read
	List     = ReadMany
	Edit     = Update
	EditMany = UpdateMany
)

var names = [...]string{
	Read:       "read",
	ReadMany:   "readMany",
	Count:      "count",
	Create:     "create",
	CreateMany: "createMany",
	Update:     "update",
	UpdateMany: "updateMany",
	Delete:     "delete",
	DeleteMany: "deleteMany",
}

var suffixes = [...]string{
	Read:       "",
	ReadMany:   "List",
	Count:      "Count",
	Create:     "Create",
	CreateMany: "CreateMany",
	Update:     "Update",
	UpdateMany: "UpdateMany",
	Delete:     "Delete",
	DeleteMany: "DeleteMany",
}

var aliases = map[string]Kind{
	"get":      Get,
	"list":     List,
	"edit":     Edit,
	"editMany": EditMany,
}

// Kinds returns all kinds in generation order.
func Kinds() []Kind {
	return []Kind{Read, ReadMany, Count, Create, CreateMany, Update, UpdateMany, Delete, DeleteMany}
}

// Queries returns the kinds exposed on the Query type.
func Queries() []Kind {
	return []Kind{Read, ReadMany, Count}
}

// Mutations returns the kinds exposed on the Mutation type.
func Mutations() []Kind {
	return []Kind{Create, CreateMany, Update, UpdateMany, Delete, DeleteMany}
}

// Valid reports whether k is one of the nine kinds.
func (k Kind) Valid() bool {
	return k >= Read && k <= DeleteMany
}

// String returns the canonical name of k.
func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return names[k]
}

// Suffix returns the root field suffix appended to the lower-camel model name.
func (k Kind) Suffix() string {
	if !k.Valid() {
		return ""
	}
	return suffixes[k]
}

// IsMutation reports whether k writes data.
func (k Kind) IsMutation() bool {
	return k >= Create && k <= DeleteMany
}

// IsList reports whether k yields a list of entities.
func (k Kind) IsList() bool {
	switch k {
	case ReadMany, CreateMany, UpdateMany, DeleteMany:
		return true
	}
	return false
}

// Parse returns the Kind named s, accepting aliases.
func Parse(s string) (Kind, error) {
	for k := Read; k <= DeleteMany; k++ {
		if names[k] == s {
			return k, nil
		}
	}
	if k, ok := aliases[s]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("crud: unknown kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("crud: invalid kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
