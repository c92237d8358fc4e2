package restless

import (
	"errors"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrNoMatch signals that the endpoint's pattern did not match the request
// path. It is a routing miss, not a call failure: an outer router should
// catch it with errors.Is and try the next candidate endpoint. When
// TryDispatch returns ErrNoMatch, the parameter set and request are
// untouched.
var ErrNoMatch = errors.New("endpoint does not match")

// QueryDecodeError reports a malformed query string. The parameter set is
// left exactly as it was before the merge attempt.
type QueryDecodeError struct {
	Err error
}

func (e *QueryDecodeError) Error() string { return "decode query string: " + e.Err.Error() }
func (e *QueryDecodeError) Unwrap() error { return e.Err }

// BodyDecodeError reports a request body that could not be merged: a body
// read failure, an invalid byte encoding, malformed JSON, or a body whose
// root is not a JSON object. Message carries the diagnostic.
type BodyDecodeError struct {
	Message string
}

// NewBodyDecodeError creates a BodyDecodeError with the given diagnostic.
func NewBodyDecodeError(message string) *BodyDecodeError {
	return &BodyDecodeError{Message: message}
}

func (e *BodyDecodeError) Error() string { return "decode request body: " + e.Message }

// ValidationError reports a schema validation failure. Reason is the
// validator's full structured error; Fields flattens it to field-level
// detail for rendering a response.
type ValidationError struct {
	Reason *jsonschema.ValidationError
}

func (e *ValidationError) Error() string { return "invalid parameters: " + e.Reason.Error() }
func (e *ValidationError) Unwrap() error { return e.Reason }

// FieldError is one field-level validation failure.
type FieldError struct {
	// Field is the dot-joined path to the offending value, empty for
	// root-level failures such as a missing required property.
	Field string

	// Message is the validator's description of the failure.
	Message string
}

// Fields flattens the validator's error tree into leaf failures in
// document order.
func (e *ValidationError) Fields() []FieldError {
	var out []FieldError
	collectFields(e.Reason, &out)
	return out
}

func collectFields(verr *jsonschema.ValidationError, out *[]FieldError) {
	if verr == nil {
		return
	}
	if len(verr.Causes) == 0 {
		*out = append(*out, FieldError{
			Field:   strings.Join(verr.InstanceLocation, "."),
			Message: verr.Error(),
		})
		return
	}
	for _, cause := range verr.Causes {
		collectFields(cause, out)
	}
}
