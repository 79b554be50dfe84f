package adapter

import (
	"fmt"
	"math"
)

// Params are the inputs of a CRUD call.
type Params struct {
	// Model is the name of the model.
	Model string
	// Args are the field arguments after scopes.
	Args map[string]any
	// Source is the parent value of the field.
	Source any
	// Info is the executor specific resolve info.
	Info any
}

// Filter returns the filter argument, or nil.
func (p Params) Filter() map[string]any {
	f, _ := p.Args["filter"].(map[string]any)
	return f
}

// Skip returns the skip argument, 0 when absent.
func (p Params) Skip() int {
	n, _ := Int(p.Args["skip"])
	return max(n, 0)
}

// Limit returns the limit argument, 0 when absent.
func (p Params) Limit() int {
	n, _ := Int(p.Args["limit"])
	return max(n, 0)
}

// Sort returns the sort argument.
func (p Params) Sort() any {
	return p.Args["sort"]
}

// Record returns the record argument.
func (p Params) Record() (Entity, error) {
	r, ok := p.Args["record"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("adapter: %s: record argument is required", p.Model)
	}
	return r, nil
}

// Records returns the records argument.
func (p Params) Records() ([]Entity, error) {
	list, ok := p.Args["records"].([]any)
	if !ok {
		if typed, ok := p.Args["records"].([]map[string]any); ok {
			return typed, nil
		}
		return nil, fmt.Errorf("adapter: %s: records argument is required", p.Model)
	}
	out := make([]Entity, 0, len(list))
	for i, v := range list {
		r, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("adapter: %s: records[%d] is %T, not an object", p.Model, i, v)
		}
		out = append(out, r)
	}
	return out, nil
}

// ID returns the _id argument.
func (p Params) ID() (any, error) {
	id, ok := p.Args["_id"]
	if !ok || id == nil {
		return nil, fmt.Errorf("adapter: %s: _id argument is required", p.Model)
	}
	return id, nil
}

// IDs returns the _ids argument.
func (p Params) IDs() ([]any, error) {
	switch ids := p.Args["_ids"].(type) {
	case []any:
		return ids, nil
	case []string:
		out := make([]any, len(ids))
		for i, id := range ids {
			out[i] = id
		}
		return out, nil
	default:
		return nil, fmt.Errorf("adapter: %s: _ids argument is required", p.Model)
	}
}

// RefParams are the inputs of ResolveRef and ResolveRefs.
type RefParams struct {
	// Model is the name of the referenced model.
	Model string
	// Source is the document holding the reference.
	Source Entity
	// FieldName is the field of Source holding the value to look up.
	FieldName string
	// ForeignFieldName is the field of the referenced documents compared
	// to that value.
	ForeignFieldName string
	Info             any
}

// Value returns the looked up value of the source document.
func (p RefParams) Value() any {
	if p.Source == nil {
		return nil
	}
	return p.Source[p.FieldName]
}

// BatchParams are the inputs of ResolveBatch.
type BatchParams struct {
	Model     string
	FieldName string
	Keys      []any
}

// Int converts a numeric argument to an int.
func Int(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
