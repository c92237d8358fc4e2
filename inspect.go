package restless

import (
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned when a request body is not valid JSON.
var ErrInvalidJSON = errors.New("invalid JSON")

// ErrBodyNotObject is returned when a request body parses as JSON but its
// root is an array or scalar rather than an object.
var ErrBodyNotObject = errors.New("request body must be a JSON object")

// field is one top-level entry of a JSON object body, in document order.
type field struct {
	key   string
	value any
}

// parseObject parses raw as a JSON object and returns its top-level fields
// in document order. Validity is checked with gjson before committing to a
// full parse; values are materialized as JSON-like Go values (string,
// float64, bool, nil, map[string]any, []any).
func parseObject(raw []byte) ([]field, error) {
	if !gjson.ValidBytes(raw) {
		return nil, jsonError(raw)
	}

	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return nil, ErrBodyNotObject
	}

	var fields []field
	doc.ForEach(func(key, value gjson.Result) bool {
		fields = append(fields, field{key: key.String(), value: value.Value()})
		return true
	})
	return fields, nil
}

// jsonError recovers the standard library's parse diagnostic for invalid
// JSON, since gjson validates without reporting positions.
func jsonError(raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return ErrInvalidJSON
}
