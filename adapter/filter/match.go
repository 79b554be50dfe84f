package filter

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"
)

// Match reports whether doc satisfies q.
//
// Field keys are dotted paths; a path crossing an array collects the
// values of every element. A clause on an array field matches when the
// array itself or any of its elements satisfies it, except for $elemMatch
// and $exists, which apply to the array. Operators: $and, $or, $nor, $not,
// $eq, $ne, $exists, $gt, $gte, $lt, $lte, $in, $nin, $regex, $elemMatch.
func Match(q Query, doc map[string]any) (bool, error) {
	return matchClause(doc, true, q)
}

func matchClause(v any, found bool, clause map[string]any) (bool, error) {
	for key, arg := range clause {
		ok, err := matchKey(v, found, key, arg)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matchKey(v any, found bool, key string, arg any) (bool, error) {
	if !strings.HasPrefix(key, "$") {
		doc, ok := v.(map[string]any)
		if !ok {
			return false, nil
		}
		fv, ffound := lookup(doc, key)
		if sub, ok := arg.(map[string]any); ok && isOperatorClause(sub) {
			return matchClause(fv, ffound, sub)
		}
		return matchOp(fv, ffound, "$eq", arg)
	}
	switch key {
	case "$and", "$or", "$nor":
		list, ok := arg.([]any)
		if !ok {
			return false, fmt.Errorf("%w: %s expects a list, got %T", ErrInvalid, key, arg)
		}
		for _, item := range list {
			sub, ok := item.(map[string]any)
			if !ok {
				return false, fmt.Errorf("%w: %s expects objects, got %T", ErrInvalid, key, item)
			}
			ok, err := matchClause(v, found, sub)
			if err != nil {
				return false, err
			}
			switch {
			case key == "$and" && !ok:
				return false, nil
			case key == "$or" && ok:
				return true, nil
			case key == "$nor" && ok:
				return false, nil
			}
		}
		return key != "$or", nil
	case "$not":
		sub, ok := arg.(map[string]any)
		if !ok {
			return false, fmt.Errorf("%w: $not expects an object, got %T", ErrInvalid, arg)
		}
		ok, err := matchClause(v, found, sub)
		return !ok, err
	default:
		return matchOp(v, found, key, arg)
	}
}

func matchOp(v any, found bool, op string, arg any) (bool, error) {
	switch op {
	case "$exists":
		want, ok := arg.(bool)
		if !ok {
			return false, fmt.Errorf("%w: $exists expects a boolean, got %T", ErrInvalid, arg)
		}
		return (found && v != nil) == want, nil
	case "$eq":
		return anyValue(v, func(x any) bool { return equal(x, arg) }), nil
	case "$ne":
		return !anyValue(v, func(x any) bool { return equal(x, arg) }), nil
	case "$gt", "$gte", "$lt", "$lte":
		if !found || v == nil {
			return false, nil
		}
		return anyValue(v, func(x any) bool {
			c, ok := compare(x, arg)
			if !ok {
				return false
			}
			switch op {
			case "$gt":
				return c > 0
			case "$gte":
				return c >= 0
			case "$lt":
				return c < 0
			default:
				return c <= 0
			}
		}), nil
	case "$in", "$nin":
		list, ok := arg.([]any)
		if !ok {
			return false, fmt.Errorf("%w: %s expects a list, got %T", ErrInvalid, op, arg)
		}
		in := anyValue(v, func(x any) bool {
			for _, want := range list {
				if equal(x, want) {
					return true
				}
			}
			return false
		})
		return in == (op == "$in"), nil
	case "$regex":
		re, err := pattern(arg)
		if err != nil {
			return false, err
		}
		return anyValue(v, func(x any) bool {
			s, ok := x.(string)
			return ok && re.MatchString(s)
		}), nil
	case "$elemMatch":
		sub, ok := arg.(map[string]any)
		if !ok {
			return false, fmt.Errorf("%w: $elemMatch expects an object, got %T", ErrInvalid, arg)
		}
		list, ok := v.([]any)
		if !ok {
			return false, nil
		}
		for _, elem := range list {
			ok, err := matchClause(elem, true, sub)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("%w: unknown operator %q", ErrInvalid, op)
	}
}

// lookup resolves a dotted path. Crossing an array collects the values of
// its elements.
func lookup(doc map[string]any, path string) (any, bool) {
	head, rest, nested := strings.Cut(path, ".")
	v, ok := doc[head]
	if !ok || !nested {
		return v, ok
	}
	switch v := v.(type) {
	case map[string]any:
		return lookup(v, rest)
	case []any:
		var (
			out   []any
			found bool
		)
		for _, elem := range v {
			m, ok := elem.(map[string]any)
			if !ok {
				continue
			}
			if ev, ok := lookup(m, rest); ok {
				found = true
				if list, ok := ev.([]any); ok {
					out = append(out, list...)
				} else {
					out = append(out, ev)
				}
			}
		}
		return out, found
	default:
		return nil, false
	}
}

func isOperatorClause(m map[string]any) bool {
	if len(m) == 0 {
		return false
	}
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return false
		}
	}
	return true
}

// anyValue applies fn to v, then to each element when v is an array.
func anyValue(v any, fn func(any) bool) bool {
	if fn(v) {
		return true
	}
	if list, ok := v.([]any); ok {
		for _, elem := range list {
			if fn(elem) {
				return true
			}
		}
	}
	return false
}

func equal(a, b any) bool {
	if fa, ok := number(a); ok {
		fb, ok := number(b)
		return ok && fa == fb
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	return reflect.DeepEqual(a, b)
}

// compare orders numbers, strings and times. Mixed kinds do not compare.
func compare(a, b any) (int, bool) {
	if fa, ok := number(a); ok {
		fb, ok := number(b)
		if !ok {
			return 0, false
		}
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	}
	switch a := a.(type) {
	case string:
		b, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(a, b), true
	case time.Time:
		b, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return a.Compare(b), true
	}
	return 0, false
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// pattern compiles a $regex argument. A string of the form /expr/flags
// supports the i, m and s flags.
func pattern(arg any) (*regexp.Regexp, error) {
	switch p := arg.(type) {
	case *regexp.Regexp:
		return p, nil
	case string:
		if len(p) > 1 && p[0] == '/' {
			if end := strings.LastIndexByte(p, '/'); end > 0 {
				expr, flags := p[1:end], p[end+1:]
				if strings.Trim(flags, "ims") == "" {
					if flags != "" {
						expr = "(?" + flags + ")" + expr
					}
					p = expr
				}
			}
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: $regex: %w", ErrInvalid, err)
		}
		return re, nil
	default:
		return nil, fmt.Errorf("%w: $regex expects a string, got %T", ErrInvalid, arg)
	}
}
