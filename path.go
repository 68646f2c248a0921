package fetchkit

import (
	"fmt"
	"strconv"
	"strings"
)

// paramSigil introduces a named parameter token in a path template.
// A token runs from the sigil to the next '/' or the end of the template.
const paramSigil = ':'

// Params is the per-call set of path parameter values, keyed by the names
// declared in the template. Values are scalars (string or number).
type Params map[string]any

// ExtractParamNames returns the parameter names declared in template, in
// the order their tokens appear. Duplicate names are kept as-is; a
// template that declares ":id" twice expects "id" once but substitutes it
// at both positions.
func ExtractParamNames(template string) []string {
	var names []string
	for i := 0; i < len(template); i++ {
		if template[i] != paramSigil {
			continue
		}
		end := strings.IndexByte(template[i+1:], '/')
		if end < 0 {
			end = len(template) - i - 1
		}
		if end > 0 {
			names = append(names, template[i+1:i+1+end])
		}
		i += end
	}
	return names
}

// SubstitutePath replaces every parameter token in template with the
// matching value from params. The first declared parameter missing from
// params aborts the substitution with a MissingParameterError; no partial
// result is returned. A template without tokens is returned unchanged.
//
// Values are stringified with their natural decimal or text representation.
// No escaping is applied; query values are the serializer's concern and
// path values are expected to be URL-safe scalars.
func SubstitutePath(template string, params Params) (string, error) {
	names := ExtractParamNames(template)
	if len(names) == 0 {
		return template, nil
	}

	for _, name := range names {
		if _, ok := params[name]; !ok {
			return "", &MissingParameterError{Parameter: name}
		}
	}

	var b strings.Builder
	b.Grow(len(template))
	for i := 0; i < len(template); i++ {
		if template[i] != paramSigil {
			b.WriteByte(template[i])
			continue
		}
		end := strings.IndexByte(template[i+1:], '/')
		if end < 0 {
			end = len(template) - i - 1
		}
		if end == 0 {
			// Bare sigil with no identifier, keep it literal.
			b.WriteByte(template[i])
			continue
		}
		name := template[i+1 : i+1+end]
		b.WriteString(formatScalar(params[name]))
		i += end
	}
	return b.String(), nil
}

// formatScalar renders a parameter or query value as text. Floats use the
// shortest decimal form, so float64(1) renders as "1".
func formatScalar(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
