package fetchkit

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"github.com/gorilla/schema"

	"github.com/fetchkit/fetchkit/internal/canonical"
)

var queryEncoder = schema.NewEncoder()

// EncodeQuery serializes query into a percent-encoded query string with no
// leading separator. query may be a map[string]any or a struct; structs are
// encoded through gorilla/schema using `schema:"name"` tags.
//
// For maps:
//   - entries with a nil value are skipped entirely
//   - slice values emit one key=value pair per element, in element order
//   - nested map values are serialized as a single canonical-JSON value and
//     percent-encoded as one query value
//   - scalars are stringified and encoded with standard query rules
//     (space becomes '+', reserved characters are percent-escaped)
//
// Go maps have no insertion order, so map entries are emitted in sorted key
// order. The wire order never affects cache addressing; see NewKey.
// Empty or all-skipped input yields the empty string.
func EncodeQuery(query any) (string, error) {
	if query == nil {
		return "", nil
	}
	switch q := query.(type) {
	case map[string]any:
		return encodeQueryMap(q)
	case url.Values:
		return q.Encode(), nil
	default:
		return encodeQueryStruct(query)
	}
}

func encodeQueryMap(m map[string]any) (string, error) {
	if len(m) == 0 {
		return "", nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		v := m[k]
		if v == nil {
			continue
		}
		switch val := v.(type) {
		case []any:
			for _, elem := range val {
				appendPair(&b, k, formatScalar(elem))
			}
		case []string:
			for _, elem := range val {
				appendPair(&b, k, elem)
			}
		case map[string]any:
			enc, err := canonical.Marshal(val)
			if err != nil {
				return "", fmt.Errorf("fetchkit: encode query value %q: %w", k, err)
			}
			appendPair(&b, k, string(enc))
		default:
			if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice {
				for i := 0; i < rv.Len(); i++ {
					appendPair(&b, k, formatScalar(rv.Index(i).Interface()))
				}
				continue
			}
			appendPair(&b, k, formatScalar(v))
		}
	}
	return b.String(), nil
}

func encodeQueryStruct(v any) (string, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return "", nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return "", fmt.Errorf("fetchkit: unsupported query type %T", v)
	}
	values := url.Values{}
	if err := queryEncoder.Encode(rv.Interface(), values); err != nil {
		return "", fmt.Errorf("fetchkit: encode query: %w", err)
	}
	return values.Encode(), nil
}

// queryToMap flattens a query value to a parameter object so cache keys
// address struct-typed and map-typed queries identically.
func queryToMap(query any) (map[string]any, error) {
	if query == nil {
		return nil, nil
	}
	if m, ok := query.(map[string]any); ok {
		return m, nil
	}
	data, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("fetchkit: query is not representable as a parameter object: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("fetchkit: query is not representable as a parameter object: %w", err)
	}
	return m, nil
}

func appendPair(b *strings.Builder, key, value string) {
	if b.Len() > 0 {
		b.WriteByte('&')
	}
	b.WriteString(url.QueryEscape(key))
	b.WriteByte('=')
	b.WriteString(url.QueryEscape(value))
}
