package sql

import (
	"bytes"
	"fmt"
	"math"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/jvdsande/harmony/adapter"
)

// encode serializes a document. Map keys are sorted so equal documents
// encode to equal bytes.
func encode(doc adapter.Entity) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("adapter/sql: encode document: %w", err)
	}
	return buf.Bytes(), nil
}

// decode deserializes a document. Integers decode as int64 and floats as
// float64.
func decode(b []byte) (adapter.Entity, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.UseLooseInterfaceDecoding(true)
	v, err := dec.DecodeInterface()
	if err != nil {
		return nil, fmt.Errorf("adapter/sql: decode document: %w", err)
	}
	doc, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("adapter/sql: decode document: unexpected %T", v)
	}
	return normalize(doc).(map[string]any), nil
}

// normalize widens the numbers of a decoded value to int64 and float64.
func normalize(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, item := range v {
			v[k] = normalize(item)
		}
		return v
	case []any:
		for i, item := range v {
			v[i] = normalize(item)
		}
		return v
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		if v <= math.MaxInt64 {
			return int64(v)
		}
		return v
	case float32:
		return float64(v)
	default:
		return v
	}
}
