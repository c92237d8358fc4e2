package restless

import "net/http"

// Method is the HTTP verb an endpoint is declared for.
type Method string

// HTTP verbs supported by endpoint declarations.
const (
	MethodGet     Method = http.MethodGet
	MethodPost    Method = http.MethodPost
	MethodPut     Method = http.MethodPut
	MethodPatch   Method = http.MethodPatch
	MethodDelete  Method = http.MethodDelete
	MethodHead    Method = http.MethodHead
	MethodOptions Method = http.MethodOptions
)

// String returns the verb as sent on the wire.
func (m Method) String() string { return string(m) }
