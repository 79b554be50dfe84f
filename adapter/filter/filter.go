// Package filter translates the GraphQL filter arguments of generated
// queries into a Mongo-style query document and evaluates such documents
// against stored entities.
//
// A filter argument
//
//	{
//	  "title": "Dune",
//	  "_or": [{"year": 1965}, {"year": 1966}],
//	  "_operators": {
//	    "pages": {"gt": 300},
//	    "tags": {"all": {"regex": "^sf"}},
//	    "meta": {"match": {"isbn": {"exists": true}}}
//	  }
//	}
//
// sanitizes to
//
//	{
//	  "title": "Dune",
//	  "$or": [{"year": 1965}, {"year": 1966}],
//	  "pages": {"$gt": 300},
//	  "tags": {"$not": {"$elemMatch": {"$nor": [{"$regex": "^sf"}]}}},
//	  "meta.isbn": {"$exists": true}
//	}
package filter

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ErrInvalid is wrapped by every error returned by Sanitize.
var ErrInvalid = errors.New("filter: invalid filter")

// Query is a Mongo-style query document.
type Query = map[string]any

var combinators = map[string]string{
	"_and": "$and",
	"_or":  "$or",
	"_nor": "$nor",
}

var operators = map[string]string{
	"eq":     "$eq",
	"neq":    "$ne",
	"exists": "$exists",
	"gt":     "$gt",
	"gte":    "$gte",
	"lt":     "$lt",
	"lte":    "$lte",
	"in":     "$in",
	"nin":    "$nin",
	"regex":  "$regex",
}

// Sanitize converts a GraphQL filter argument into a query document. A nil
// filter matches every document.
func Sanitize(filter map[string]any) (Query, error) {
	q := Query{}
	if err := sanitize(q, "", filter); err != nil {
		return nil, err
	}
	return q, nil
}

func sanitize(q Query, prefix string, filter map[string]any) error {
	for _, key := range slices.Sorted(maps.Keys(filter)) {
		v := filter[key]
		switch {
		case combinators[key] != "":
			list, err := clauses(key, v)
			if err != nil {
				return err
			}
			add(q, combinators[key], list)
		case key == "_operators":
			ops, ok := v.(map[string]any)
			if !ok {
				return fmt.Errorf("%w: _operators must be an object, got %T", ErrInvalid, v)
			}
			if err := fieldOperators(q, prefix, ops); err != nil {
				return err
			}
		default:
			path := prefix + key
			if nested, ok := v.(map[string]any); ok {
				if err := sanitize(q, path+".", nested); err != nil {
					return err
				}
				continue
			}
			add(q, path, v)
		}
	}
	return nil
}

func clauses(key string, v any) ([]any, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a list, got %T", ErrInvalid, key, v)
	}
	out := make([]any, 0, len(list))
	for i, item := range list {
		f, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] must be an object, got %T", ErrInvalid, key, i, item)
		}
		sub, err := Sanitize(f)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, nil
}

// fieldOperators adds the clauses of an _operators object, one entry per
// field path.
func fieldOperators(q Query, prefix string, ops map[string]any) error {
	for _, field := range slices.Sorted(maps.Keys(ops)) {
		fieldOps, ok := ops[field].(map[string]any)
		if !ok {
			return fmt.Errorf("%w: operators of %s%s must be an object, got %T", ErrInvalid, prefix, field, ops[field])
		}
		path := prefix + field
		if match, ok := fieldOps["match"]; ok {
			nested, ok := match.(map[string]any)
			if !ok {
				return fmt.Errorf("%w: %s.match must be an object, got %T", ErrInvalid, path, match)
			}
			if err := fieldOperators(q, path+".", nested); err != nil {
				return err
			}
			fieldOps = without(fieldOps, "match")
		}
		if len(fieldOps) == 0 {
			continue
		}
		clause, err := valueOperators(path, fieldOps)
		if err != nil {
			return err
		}
		add(q, path, clause)
	}
	return nil
}

// valueOperators converts the operators applying to one value.
func valueOperators(path string, ops map[string]any) (Query, error) {
	clause := Query{}
	for _, name := range slices.Sorted(maps.Keys(ops)) {
		arg := ops[name]
		switch name {
		case "some", "all":
			elemOps, ok := arg.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: %s.%s must be an object, got %T", ErrInvalid, path, name, arg)
			}
			elem, err := elementClause(path, elemOps)
			if err != nil {
				return nil, err
			}
			if name == "some" {
				merge(clause, Query{"$elemMatch": elem})
			} else {
				merge(clause, All(elem))
			}
		case "match":
			return nil, fmt.Errorf("%w: %s: match is only allowed on objects", ErrInvalid, path)
		default:
			op, ok := operators[name]
			if !ok {
				return nil, fmt.Errorf("%w: %s: unknown operator %q", ErrInvalid, path, name)
			}
			merge(clause, Query{op: arg})
		}
	}
	return clause, nil
}

// elementClause converts the operators of an array element. Object
// elements use match and yield a document clause.
func elementClause(path string, ops map[string]any) (Query, error) {
	if match, ok := ops["match"]; ok {
		nested, ok := match.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s.match must be an object, got %T", ErrInvalid, path, match)
		}
		q := Query{}
		if err := fieldOperators(q, "", nested); err != nil {
			return nil, err
		}
		if rest := without(ops, "match"); len(rest) > 0 {
			clause, err := valueOperators(path, rest)
			if err != nil {
				return nil, err
			}
			merge(q, clause)
		}
		return q, nil
	}
	return valueOperators(path, ops)
}

// All returns the clause matching arrays whose every element satisfies
// clause: no element matches the negation of clause. Empty arrays match.
func All(clause Query) Query {
	return Query{"$not": Query{"$elemMatch": Query{"$nor": []any{clause}}}}
}

// add sets q[key], moving conflicting clauses under $and.
func add(q Query, key string, v any) {
	existing, ok := q[key]
	if !ok {
		q[key] = v
		return
	}
	if key == "$and" || key == "$or" || key == "$nor" {
		if key == "$and" {
			q[key] = append(existing.([]any), v.([]any)...)
			return
		}
		add(q, "$and", []any{Query{key: v}})
		return
	}
	a, aok := existing.(Query)
	b, bok := v.(Query)
	if aok && bok && disjoint(a, b) {
		merge(a, b)
		return
	}
	add(q, "$and", []any{Query{key: v}})
}

func merge(dst, src Query) {
	for k, v := range src {
		dst[k] = v
	}
}

func disjoint(a, b Query) bool {
	for k := range b {
		if _, ok := a[k]; ok {
			return false
		}
	}
	return true
}

func without(m map[string]any, key string) map[string]any {
	out := maps.Clone(m)
	delete(out, key)
	return out
}
