// Package dataloader provides the helpers adapters use to answer batch
// lookups: results must come back in the order of the requested keys, one
// entry per key.
//
//	func (a *Adapter) ResolveBatch(ctx context.Context, p adapter.BatchParams) ([]adapter.Entity, error) {
//	    docs, err := a.query(ctx, p.Model, p.FieldName, p.Keys)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return dataloader.OrderByKeysNoError(dataloader.Keys(p.Keys), docs, func(d adapter.Entity) string {
//	        return dataloader.Key(d[p.FieldName])
//	    }), nil
//	}
//
// Document values arrive with loosely typed keys (an _id may be a string,
// an int64 or a float64 depending on the storage), so Key normalizes them
// to comparable strings first.
package dataloader

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrNotFound is returned when an entity is not found in a batch result.
var ErrNotFound = errors.New("dataloader: entity not found")

// KeyFunc extracts a key from an entity.
type KeyFunc[K comparable, V any] func(V) K

// Key returns the normalized form of a document key. Numbers of any Go
// type compare equal when their values do; strings never equal numbers.
func Key(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return "s:" + v
	case int:
		return "n:" + strconv.FormatInt(int64(v), 10)
	case int32:
		return "n:" + strconv.FormatInt(int64(v), 10)
	case int64:
		return "n:" + strconv.FormatInt(v, 10)
	case uint64:
		return "n:" + strconv.FormatUint(v, 10)
	case float64:
		return "n:" + strconv.FormatFloat(v, 'g', -1, 64)
	case float32:
		return "n:" + strconv.FormatFloat(float64(v), 'g', -1, 32)
	case bool:
		return "b:" + strconv.FormatBool(v)
	case time.Time:
		return "t:" + v.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return "s:" + v.String()
	default:
		return fmt.Sprintf("%T:%v", v, v)
	}
}

// Keys normalizes every key with Key.
func Keys(keys []any) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = Key(k)
	}
	return out
}

// OrderByKeys reorders entities to match the order of requested keys.
// When several entities share a key the first one wins. Missing entities
// are represented as zero values with corresponding errors.
func OrderByKeys[K comparable, V any](keys []K, values []V, keyFn KeyFunc[K, V]) ([]V, []error) {
	lookup := make(map[K]V, len(values))
	for _, v := range values {
		k := keyFn(v)
		if _, ok := lookup[k]; !ok {
			lookup[k] = v
		}
	}

	result := make([]V, len(keys))
	errs := make([]error, len(keys))
	for i, key := range keys {
		if v, ok := lookup[key]; ok {
			result[i] = v
		} else {
			errs[i] = ErrNotFound
		}
	}
	return result, errs
}

// OrderByKeysNoError reorders entities to match the order of requested keys.
// Returns zero values for missing entities without errors.
func OrderByKeysNoError[K comparable, V any](keys []K, values []V, keyFn KeyFunc[K, V]) []V {
	result, _ := OrderByKeys(keys, values, keyFn)
	return result
}

// GroupByKey groups entities by a key function.
// Useful for reversed references where several documents hold the same
// foreign key.
func GroupByKey[K comparable, V any](values []V, keyFn KeyFunc[K, V]) map[K][]V {
	result := make(map[K][]V)
	for _, v := range values {
		key := keyFn(v)
		result[key] = append(result[key], v)
	}
	return result
}

// OrderGroupsByKeys reorders grouped entities to match the order of requested keys.
// Returns a slice of slices where each inner slice contains entities for that key.
func OrderGroupsByKeys[K comparable, V any](keys []K, groups map[K][]V) [][]V {
	result := make([][]V, len(keys))
	for i, key := range keys {
		result[i] = groups[key]
	}
	return result
}
