// Package canonical produces deterministic JSON encodings. Object keys are
// emitted in lexicographic order regardless of map iteration order, so two
// set-equal maps always encode to identical bytes.
package canonical

import (
	"encoding/json"
	"sort"
)

// Marshal encodes v as canonical JSON.
func Marshal(v any) ([]byte, error) {
	return appendValue(nil, v)
}

func appendValue(dst []byte, v any) ([]byte, error) {
	if v == nil {
		return append(dst, "null"...), nil
	}

	switch val := v.(type) {
	case map[string]any:
		return appendMap(dst, val)
	case []any:
		return appendSlice(dst, val)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return append(dst, b...), nil
	}
}

func appendMap(dst []byte, m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	dst = append(dst, '{')
	for i, k := range keys {
		if i > 0 {
			dst = append(dst, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		dst = append(dst, kb...)
		dst = append(dst, ':')
		dst, err = appendValue(dst, m[k])
		if err != nil {
			return nil, err
		}
	}
	return append(dst, '}'), nil
}

func appendSlice(dst []byte, s []any) ([]byte, error) {
	var err error
	dst = append(dst, '[')
	for i, v := range s {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst, err = appendValue(dst, v)
		if err != nil {
			return nil, err
		}
	}
	return append(dst, ']'), nil
}
