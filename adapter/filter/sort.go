package filter

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// SortKey orders documents by one field path.
type SortKey struct {
	Path       string
	Descending bool
}

// SortKeys parses a sort argument. It accepts an object mapping field paths
// to a direction, applied in key order, or a list of such objects, applied
// in list order. Directions are 1, -1, "asc" or "desc".
func SortKeys(spec any) ([]SortKey, error) {
	switch s := spec.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		keys := make([]SortKey, 0, len(s))
		for _, path := range slices.Sorted(maps.Keys(s)) {
			desc, err := direction(path, s[path])
			if err != nil {
				return nil, err
			}
			keys = append(keys, SortKey{Path: path, Descending: desc})
		}
		return keys, nil
	case []any:
		var keys []SortKey
		for _, item := range s {
			more, err := SortKeys(item)
			if err != nil {
				return nil, err
			}
			keys = append(keys, more...)
		}
		return keys, nil
	default:
		return nil, fmt.Errorf("%w: sort must be an object or a list, got %T", ErrInvalid, spec)
	}
}

func direction(path string, v any) (bool, error) {
	if n, ok := number(v); ok && (n == 1 || n == -1) {
		return n < 0, nil
	}
	if s, ok := v.(string); ok {
		switch strings.ToLower(s) {
		case "asc", "ascending":
			return false, nil
		case "desc", "descending":
			return true, nil
		}
	}
	return false, fmt.Errorf("%w: sort direction of %s must be 1, -1, asc or desc, got %v", ErrInvalid, path, v)
}

// Sort orders docs in place by keys. Missing values sort first; values
// that do not compare keep their relative order.
func Sort(docs []map[string]any, keys []SortKey) {
	if len(keys) == 0 {
		return
	}
	slices.SortStableFunc(docs, func(a, b map[string]any) int {
		for _, k := range keys {
			av, aok := lookup(a, k.Path)
			bv, bok := lookup(b, k.Path)
			var c int
			switch {
			case !aok && !bok:
			case !aok:
				c = -1
			case !bok:
				c = 1
			default:
				c, _ = compare(av, bv)
			}
			if k.Descending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
}

// Page returns the window of docs starting at skip and holding at most
// limit documents. A zero limit keeps every remaining document.
func Page[T any](docs []T, skip, limit int) []T {
	if skip >= len(docs) {
		return docs[:0]
	}
	docs = docs[skip:]
	if limit > 0 && limit < len(docs) {
		docs = docs[:limit]
	}
	return docs
}
