package loader

import (
	"encoding/json"
	"fmt"
)

// Record is one constructed row bound for a table. Values is total over
// the table's declared columns: every column name is present as a key,
// with nil standing in for absent document values. Compound document
// values (lists, nested mappings) never survive into a Record; they are
// canonicalized to a JSON string first.
type Record struct {
	Table  string
	Values map[string]any
}

// canonicalValue returns v unchanged for scalars and a stable JSON
// serialization for lists and mappings. json.Marshal writes object keys
// in sorted order, so the same input always yields the same string.
func canonicalValue(v any) (any, error) {
	switch v.(type) {
	case []any, map[string]any, map[any]any:
		norm := normalizeValue(v)
		b, err := json.Marshal(norm)
		if err != nil {
			return nil, fmt.Errorf("canonicalize value: %w", err)
		}
		return string(b), nil
	default:
		return v, nil
	}
}

// normalizeValue rewrites any map[any]any nodes produced by the YAML
// decoder into map[string]any so json.Marshal accepts them.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = normalizeValue(elem)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = normalizeValue(elem)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[fmt.Sprint(k)] = normalizeValue(elem)
		}
		return out
	default:
		return v
	}
}
