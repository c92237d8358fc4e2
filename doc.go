// Package restless is the request-dispatch core of a REST endpoint
// framework. It matches an incoming request against a declared endpoint,
// assembles a unified parameter set from path captures, the query string,
// and the body, validates and coerces that set against a JSON Schema, runs
// an ordered chain of lifecycle hooks, invokes the handler, and produces a
// response.
//
// # Quick Start
//
// Declare an endpoint with a method, a path template, an optional schema,
// and a handler:
//
//	ep := restless.Get("/users/:id").
//	    Describe("Fetch a user by id").
//	    Handle(func(c *restless.Client, p restless.Params) error {
//	        return c.JSON(200, store.User(p.String("id")))
//	    })
//
// Dispatch a request through it:
//
//	resp, err := ep.TryDispatch("/users/7", restless.NewParams(), restless.HTTPRequest(r), nil)
//	if errors.Is(err, restless.ErrNoMatch) {
//	    // not this endpoint's request; try the next candidate
//	}
//
// # The Dispatch Pipeline
//
// TryDispatch runs a fixed sequence:
//
//  1. Match the remaining path against the compiled pattern. A miss
//     returns ErrNoMatch and touches nothing.
//  2. Apply path captures to the parameter set.
//  3. Run before hooks.
//  4. Merge query-string parameters.
//  5. Merge top-level keys of a JSON body.
//  6. Run before-validation hooks.
//  7. Validate and coerce against the endpoint's schema.
//  8. Run after-validation hooks.
//  9. Invoke the handler with the frozen parameter view.
//  10. Run after hooks and extract the response.
//
// The first error at any stage aborts everything after it. No stage
// retries or recovers.
//
// # Parameter Precedence
//
// The three parameter sources merge first-writer-wins: path captures beat
// query values, query values beat body values. A key set by an earlier
// source is never overwritten by a later one, including keys seeded into
// the set by an enclosing scope before dispatch.
//
// # Schemas and Coercion
//
// An endpoint schema is a JSON Schema document, compiled once at
// registration time:
//
//	ep := restless.Post("/items").
//	    Params(`{
//	        "type": "object",
//	        "properties": {"name": {"type": "string"}, "count": {"type": "number"}},
//	        "required": ["name"]
//	    }`).
//	    Handle(createItem)
//
// Top-level string values are coerced to declared number, integer, and
// boolean types before validation, so the query-string value "42"
// satisfies a numeric field and the handler observes float64(42). An
// endpoint without a schema skips validation entirely.
//
// # Lifecycle Hooks
//
// Cross-cutting concerns hook into four fixed phases relative to
// parameter availability and validation guarantees:
//
//	call := restless.NewCallContext(
//	    restless.WithBefore(authenticate),            // before any merging
//	    restless.WithBeforeValidation(auditParams),   // all sources merged
//	    restless.WithAfterValidation(stampIdentity),  // params are valid
//	    restless.WithAfter(shapeResponse),            // handler has run
//	)
//
// Within a phase, hooks run in registration order; a hook error aborts the
// remaining chain, the handler, and the call. The CallContext is built
// once and shared read-only by every dispatch; LoggingHooks returns a
// prebuilt slog-backed hook set.
//
// # Errors
//
// Every failure is a value from a closed taxonomy:
//
//   - ErrNoMatch: a routing miss, checkable with errors.Is; never a call
//     failure.
//   - QueryDecodeError: malformed query string.
//   - BodyDecodeError: body read failure, invalid encoding, malformed
//     JSON, or a non-object body root.
//   - ValidationError: schema failure carrying the validator's structured
//     reason; Fields flattens it for response rendering.
//   - Hook and handler errors pass through opaque.
//
// Translating terminal errors into HTTP responses (400 and friends) is the
// embedding layer's job, as is choosing among multiple endpoints when
// several could match.
//
// # Thread Safety
//
// A built Endpoint, its Schema, and a CallContext are immutable and safe
// for concurrent use. A ParamSet, Client, and Response belong to exactly
// one in-flight call and must not be shared.
package restless
