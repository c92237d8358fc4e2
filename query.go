package restless

import "net/url"

// ParseQuery decodes a raw query string into a flat key-to-value map with
// JSON-like values: a single-valued key becomes a string, a repeated key
// becomes a []any of strings. A malformed escape sequence surfaces the
// decode error; the dispatch pipeline wraps it in a QueryDecodeError.
func ParseQuery(raw string) (map[string]any, error) {
	parsed, err := url.ParseQuery(raw)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, len(parsed))
	for key, vals := range parsed {
		switch len(vals) {
		case 0:
			out[key] = ""
		case 1:
			out[key] = vals[0]
		default:
			many := make([]any, len(vals))
			for i, v := range vals {
				many[i] = v
			}
			out[key] = many
		}
	}
	return out, nil
}
