package internal

import "fmt"

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
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
	}
	return 0, false
}

// normalizeValue turns an animatable input into float64, string, *Node or []any
// (for arrays, whose entries are float64, string or *Node).
func normalizeValue(v any) (any, error) {
	if f, ok := toFloat(v); ok {
		return f, nil
	}

	switch val := v.(type) {
	case string, *Node:
		return val, nil
	case []float64:
		out := make([]any, len(val))
		for i, f := range val {
			out[i] = f
		}
		return out, nil
	case []int:
		out := make([]any, len(val))
		for i, n := range val {
			out[i] = float64(n)
		}
		return out, nil
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			item, err := normalizeValue(item)
			if err != nil {
				return nil, err
			}
			if _, nested := item.([]any); nested {
				return nil, fmt.Errorf("%w: nested array", ErrValueType)
			}
			out[i] = item
		}
		return out, nil
	}

	return nil, fmt.Errorf("%w: %T", ErrValueType, v)
}

// arity is the number of leaves a normalized value animates.
func arity(v any) int {
	if items, ok := v.([]any); ok {
		return len(items)
	}
	return 1
}

func elementAt(v any, i int) any {
	if items, ok := v.([]any); ok {
		return items[i]
	}
	return v
}

// resolveValue replaces nodes in a normalized value by their current values.
func resolveValue(v any) (any, error) {
	switch val := v.(type) {
	case *Node:
		return normalizeValue(val.Value())
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			if node, ok := item.(*Node); ok {
				resolved, err := normalizeValue(node.Value())
				if err != nil {
					return nil, err
				}
				if _, nested := resolved.([]any); nested {
					return nil, fmt.Errorf("%w: nested array", ErrValueType)
				}
				item = resolved
			}
			out[i] = item
		}
		return out, nil
	}
	return v, nil
}

// Plain converts a node value into what callers get back: arrays of numbers
// become []float64.
func Plain(v any) any {
	items, ok := v.([]any)
	if !ok {
		return v
	}

	floats := make([]float64, len(items))
	for i, item := range items {
		f, ok := item.(float64)
		if !ok {
			return items
		}
		floats[i] = f
	}
	return floats
}
