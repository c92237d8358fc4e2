package restless

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spf13/cast"
)

// Schema validates and coerces a ParamSet against a JSON Schema. A Schema
// is compiled once at endpoint construction and is immutable afterwards,
// so it may be shared by any number of concurrent dispatches.
//
// Coercion runs before validation: a top-level property declared as
// "number", "integer", or "boolean" whose current value is a string is
// converted in place when possible. The string "42" therefore satisfies a
// numeric field and the handler observes float64(42). Unconvertible values
// are left untouched for the validator to reject.
type Schema struct {
	source   string
	compiled *jsonschema.Schema
	coerce   map[string]coerceKind
}

type coerceKind int

const (
	coerceNumber coerceKind = iota
	coerceInteger
	coerceBool
)

// ParseSchema compiles a JSON Schema document.
func ParseSchema(schemaJSON string) (*Schema, error) {
	var doc any
	if err := json.Unmarshal([]byte(schemaJSON), &doc); err != nil {
		return nil, fmt.Errorf("invalid schema JSON: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat()
	compiler.AssertContent()
	if err := compiler.AddResource("schema.json", doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	return &Schema{
		source:   schemaJSON,
		compiled: compiled,
		coerce:   coercions(doc),
	}, nil
}

// MustSchema is like ParseSchema but panics on an invalid document. Use at
// route-registration time.
func MustSchema(schemaJSON string) *Schema {
	s, err := ParseSchema(schemaJSON)
	if err != nil {
		panic("restless: " + err.Error())
	}
	return s
}

// Source returns the schema document the Schema was compiled from.
func (s *Schema) Source() string { return s.source }

// Process coerces and validates params in place. A validation failure
// returns a *ValidationError carrying the validator's structured reason;
// params keep whatever coercions were applied, but the pipeline aborts so
// no partially coerced set ever reaches a handler.
func (s *Schema) Process(params *ParamSet) error {
	for key, kind := range s.coerce {
		v, ok := params.Get(key)
		if !ok {
			continue
		}
		str, ok := v.(string)
		if !ok {
			continue
		}
		switch kind {
		case coerceNumber, coerceInteger:
			// Whole float64 values satisfy "integer" in JSON Schema.
			if f, err := cast.ToFloat64E(str); err == nil {
				params.Set(key, f)
			}
		case coerceBool:
			if b, err := cast.ToBoolE(str); err == nil {
				params.Set(key, b)
			}
		}
	}

	if err := s.compiled.Validate(params.Map()); err != nil {
		if verr, ok := err.(*jsonschema.ValidationError); ok {
			return &ValidationError{Reason: verr}
		}
		return fmt.Errorf("validate parameters: %w", err)
	}
	return nil
}

// coercions extracts the coercible top-level properties from a parsed
// schema document.
func coercions(doc any) map[string]coerceKind {
	root, ok := doc.(map[string]any)
	if !ok {
		return nil
	}
	props, ok := root["properties"].(map[string]any)
	if !ok {
		return nil
	}

	out := make(map[string]coerceKind)
	for name, raw := range props {
		prop, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		typ, ok := prop["type"].(string)
		if !ok {
			continue
		}
		switch typ {
		case "number":
			out[name] = coerceNumber
		case "integer":
			out[name] = coerceInteger
		case "boolean":
			out[name] = coerceBool
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
