package catalog

import (
	"encoding/json"
	"strconv"
)

// Normalize applies the list rule to a decoded JSON value in place: an object
// is a list if and only if its keys are exactly "0".."n-1" for some n > 0.
// Keys must be canonical decimal integers, so "01" keeps an object an object.
// An empty object stays an object.
func Normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, x := range t {
			t[k] = Normalize(x)
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		if !isDenseIndex(keys) {
			return t
		}
		list := make([]any, len(t))
		for k, x := range t {
			i, _ := strconv.Atoi(k)
			list[i] = x
		}
		return list
	case []any:
		for i := range t {
			t[i] = Normalize(t[i])
		}
		return t
	default:
		return v
	}
}

func isDenseIndex(keys []string) bool {
	if len(keys) == 0 {
		return false
	}
	seen := make([]bool, len(keys))
	for _, k := range keys {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 || i >= len(keys) || strconv.Itoa(i) != k || seen[i] {
			return false
		}
		seen[i] = true
	}
	return true
}

// convertNumbers replaces json.Number values with int64 when integral and
// float64 otherwise
func convertNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, x := range t {
			t[k] = convertNumbers(x)
		}
		return t
	case []any:
		for i := range t {
			t[i] = convertNumbers(t[i])
		}
		return t
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}
