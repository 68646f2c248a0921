package fetchkit

import (
	"strings"

	"github.com/fetchkit/fetchkit/internal/canonical"
)

// Key addresses one cached call. Its canonical form is the ordered sequence
// [group, endpoint, params?, query?] where params and query, when present,
// are objects with lexicographically sorted keys. Two calls with set-equal
// parameters produce structurally identical keys no matter what order the
// caller supplied them in.
//
// The key doubles as both the read/write address used by the store and the
// unit of invalidation.
type Key struct {
	Group    string
	Endpoint string
	// Params and Query hold the filtered parameter objects. They are nil
	// when the corresponding part is absent from the key.
	Params map[string]any
	Query  map[string]any
}

// NewKey builds a cache key from group, endpoint, and the call's path and
// query parameters. Entries with nil values are dropped; a part that ends
// up empty is omitted from the key entirely.
func NewKey(group, endpoint string, params, query map[string]any) Key {
	return Key{
		Group:    group,
		Endpoint: endpoint,
		Params:   filterKeyPart(params),
		Query:    filterKeyPart(query),
	}
}

// GroupKey returns the prefix key covering every entry in group.
func GroupKey(group string) Key {
	return Key{Group: group}
}

func filterKeyPart(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if v == nil {
			continue
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Parts returns the key as its ordered sequence form.
func (k Key) Parts() []any {
	parts := []any{k.Group}
	if k.Endpoint != "" {
		parts = append(parts, k.Endpoint)
	}
	if k.Params != nil {
		parts = append(parts, k.Params)
	}
	if k.Query != nil {
		parts = append(parts, k.Query)
	}
	return parts
}

// String renders the canonical JSON form of the key, e.g.
// ["users","get",{"id":"123"}]. Set-equal inputs always render to
// byte-identical strings, so the string is safe to use as a store key.
func (k Key) String() string {
	b, err := canonical.Marshal(k.Parts())
	if err != nil {
		// Key parts are strings and scalar-valued maps; canonical JSON
		// encoding of those cannot fail outside of caller-supplied values
		// like channels. Surface the broken key rather than hide it.
		return "!invalid-key"
	}
	return string(b)
}

// Equal reports whether two keys are structurally equal.
func (k Key) Equal(other Key) bool {
	return k.String() == other.String()
}

// HasPrefix reports whether k falls under prefix, e.g. every key in group
// "users" has prefix GroupKey("users").
func (k Key) HasPrefix(prefix Key) bool {
	return MatchesPrefix(k.String(), prefix.String())
}

// MatchesPrefix reports whether the canonical key entry falls under the
// canonical key prefix. Matching is boundary-exact on key elements:
// ["users"] matches ["users","list"] and ["users"] itself, but not
// ["users2","list"].
func MatchesPrefix(entry, prefix string) bool {
	if entry == prefix {
		return true
	}
	// Drop the closing bracket so the prefix can extend, then require the
	// next element to start cleanly.
	p := strings.TrimSuffix(prefix, "]")
	if !strings.HasPrefix(entry, p) {
		return false
	}
	rest := entry[len(p):]
	return strings.HasPrefix(rest, ",") || rest == "]"
}
