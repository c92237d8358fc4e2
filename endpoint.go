package restless

import (
	"sort"
	"unicode/utf8"
)

// HandlerFunc is an endpoint's business logic. It receives the call's
// Client and the finalized parameter view, populates the response through
// the Client, and returns an error to abort the call. The pipeline treats
// the error as opaque: after hooks are skipped and the error propagates to
// the caller unchanged.
type HandlerFunc func(c *Client, params Params) error

// Endpoint is one declared API operation: an HTTP method, a compiled path
// pattern, an optional schema, and a handler.
//
// Build an Endpoint at route-registration time, attach its handler with
// Handle, and never mutate it afterwards; a built endpoint is safe to
// share across any number of concurrent dispatches.
//
// Example:
//
//	ep := restless.Get("/users/:id").
//	    Describe("Fetch a user by id").
//	    Params(`{"type": "object", "properties": {"id": {"type": "string"}}}`).
//	    Handle(func(c *restless.Client, p restless.Params) error {
//	        return c.JSON(200, store.User(p.String("id")))
//	    })
type Endpoint struct {
	method  Method
	pattern *Pattern
	desc    string
	schema  *Schema
	handler HandlerFunc
	sealed  bool
}

// NewEndpoint creates an endpoint for the given method and path template.
// It panics on an invalid template: endpoints are declared at registration
// time, where a bad template is a programming error.
func NewEndpoint(method Method, template string) *Endpoint {
	return &Endpoint{
		method:  method,
		pattern: MustPattern(template, true),
	}
}

// Build creates an endpoint and applies a configuration callback before
// returning it. The callback must attach a handler.
//
// Example:
//
//	ep := restless.Build(restless.MethodPost, "/items", func(e *restless.Endpoint) {
//	    e.Params(itemSchema)
//	    e.Handle(createItem)
//	})
func Build(method Method, template string, build func(*Endpoint)) *Endpoint {
	e := NewEndpoint(method, template)
	build(e)
	if e.handler == nil {
		panic("restless: Build callback did not attach a handler")
	}
	return e
}

// Get creates a GET endpoint for the given path template.
func Get(template string) *Endpoint { return NewEndpoint(MethodGet, template) }

// Post creates a POST endpoint for the given path template.
func Post(template string) *Endpoint { return NewEndpoint(MethodPost, template) }

// Put creates a PUT endpoint for the given path template.
func Put(template string) *Endpoint { return NewEndpoint(MethodPut, template) }

// Patch creates a PATCH endpoint for the given path template.
func Patch(template string) *Endpoint { return NewEndpoint(MethodPatch, template) }

// Delete creates a DELETE endpoint for the given path template.
func Delete(template string) *Endpoint { return NewEndpoint(MethodDelete, template) }

// Describe attaches a human-readable description. The description is
// stored for documentation tooling and never interpreted by the pipeline.
func (e *Endpoint) Describe(desc string) *Endpoint {
	e.mutable()
	e.desc = desc
	return e
}

// Params attaches a parameter schema from a JSON Schema document. It
// panics on an invalid document; use ParamsSchema with ParseSchema for a
// non-panicking path.
func (e *Endpoint) Params(schemaJSON string) *Endpoint {
	return e.ParamsSchema(MustSchema(schemaJSON))
}

// ParamsSchema attaches a pre-compiled parameter schema.
func (e *Endpoint) ParamsSchema(s *Schema) *Endpoint {
	e.mutable()
	e.schema = s
	return e
}

// Handle attaches the handler and seals the endpoint. Any further
// configuration call panics.
func (e *Endpoint) Handle(h HandlerFunc) *Endpoint {
	e.mutable()
	e.handler = h
	e.sealed = true
	return e
}

func (e *Endpoint) mutable() {
	if e.sealed {
		panic("restless: endpoint cannot be modified after Handle")
	}
}

// Method returns the endpoint's HTTP verb.
func (e *Endpoint) Method() Method { return e.method }

// Path returns the endpoint's path template.
func (e *Endpoint) Path() string { return e.pattern.String() }

// Description returns the description attached with Describe.
func (e *Endpoint) Description() string { return e.desc }

// Matches reports whether the endpoint would accept the given method and
// path. Outer routers use it to probe candidates without dispatching.
func (e *Endpoint) Matches(method Method, path string) bool {
	if method != e.method {
		return false
	}
	_, ok := e.pattern.Match(path)
	return ok
}

// TryDispatch matches restPath against the endpoint's pattern and, on a
// match, runs the full dispatch pipeline:
//
//	match -> apply captures -> before hooks -> query merge -> body merge
//	-> before-validation hooks -> validate/coerce -> after-validation
//	hooks -> handler -> after hooks -> response
//
// A pattern miss returns ErrNoMatch with params and request untouched, so
// an outer router can try sibling endpoints. Any other error aborts the
// remainder of the pipeline immediately and is returned as-is (hook and
// handler errors) or as one of the typed kinds (QueryDecodeError,
// BodyDecodeError, ValidationError).
//
// params carries captures seeded by enclosing scopes; the three parameter
// sources merge into it first-writer-wins, so path captures beat query
// values and query values beat body values. call may be nil.
func (e *Endpoint) TryDispatch(restPath string, params *ParamSet, req Request, call *CallContext) (*Response, error) {
	caps, ok := e.pattern.Match(restPath)
	if !ok {
		return nil, ErrNoMatch
	}
	if e.handler == nil {
		panic("restless: endpoint has no handler")
	}

	e.pattern.ApplyCaptures(params, caps)
	return e.dispatch(params, req, call)
}

// dispatch runs the pipeline after a successful pattern match.
func (e *Endpoint) dispatch(params *ParamSet, req Request, call *CallContext) (*Response, error) {
	client := newClient(e, req)

	if err := runHooks(call.beforeHooks(), client); err != nil {
		return nil, err
	}

	if err := e.mergeQuery(params, client.Request); err != nil {
		return nil, err
	}
	if err := e.mergeBody(params, client.Request); err != nil {
		return nil, err
	}

	if err := runHooks(call.beforeValidationHooks(), client); err != nil {
		return nil, err
	}

	if err := e.validate(params); err != nil {
		return nil, err
	}

	if err := runHooks(call.afterValidationHooks(), client); err != nil {
		return nil, err
	}

	if err := e.handler(client, params.Freeze()); err != nil {
		return nil, err
	}

	if err := runHooks(call.afterHooks(), client); err != nil {
		return nil, err
	}

	return client.response, nil
}

// mergeQuery parses the query string, if any, and inserts each key not
// already present. The parse completes before any insert, so a decode
// failure leaves params exactly as they were.
func (e *Endpoint) mergeQuery(params *ParamSet, req Request) error {
	raw, ok := req.RawQuery()
	if !ok || raw == "" {
		return nil
	}

	parsed, err := ParseQuery(raw)
	if err != nil {
		return &QueryDecodeError{Err: err}
	}

	// Sorted so the merge order, and with it ParamSet iteration order, is
	// deterministic.
	keys := make([]string, 0, len(parsed))
	for k := range parsed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		params.SetIfAbsent(k, parsed[k])
	}
	return nil
}

// mergeBody reads a JSON-typed body, if the request declares one, and
// inserts each top-level key not already present. An empty body
// contributes nothing. A body whose root is not a JSON object is rejected.
func (e *Endpoint) mergeBody(params *ParamSet, req Request) error {
	if !req.IsJSONBody() {
		return nil
	}

	raw, err := req.Body()
	if err != nil {
		return NewBodyDecodeError(err.Error())
	}
	if !utf8.Valid(raw) {
		return NewBodyDecodeError("invalid UTF-8 sequence")
	}
	if len(raw) == 0 {
		return nil
	}

	fields, err := parseObject(raw)
	if err != nil {
		return NewBodyDecodeError(err.Error())
	}
	for _, f := range fields {
		params.SetIfAbsent(f.key, f.value)
	}
	return nil
}

// validate runs the endpoint's schema over params. Without a schema,
// validation trivially succeeds and params are untouched.
func (e *Endpoint) validate(params *ParamSet) error {
	if e.schema == nil {
		return nil
	}
	return e.schema.Process(params)
}
