package restless

// Hook is one lifecycle callback. It receives the call's Client and may
// mutate it; returning an error aborts the remaining chain and the call.
type Hook func(*Client) error

// CallContext holds the four ordered lifecycle hook phases shared by every
// dispatch:
//
//   - before: runs before any parameter merging. Hooks observe only the
//     raw request and whatever the path captures and outer scopes seeded.
//   - before validation: runs after path, query, and body parameters are
//     all merged, before validation.
//   - after validation: runs after successful validation and coercion.
//   - after: runs after the handler produced its result.
//
// Within a phase, hooks run in registration order. Build a CallContext
// once with NewCallContext; it is read-only afterwards and safe to share
// across concurrent dispatches. A nil *CallContext is valid and runs no
// hooks.
type CallContext struct {
	before           []Hook
	beforeValidation []Hook
	afterValidation  []Hook
	after            []Hook
}

// Option configures a CallContext.
type Option func(*CallContext)

// NewCallContext creates a CallContext with the given options.
//
// Example:
//
//	call := restless.NewCallContext(
//	    restless.WithBefore(authenticate),
//	    restless.WithAfter(attachRequestID),
//	)
func NewCallContext(opts ...Option) *CallContext {
	cc := &CallContext{}
	for _, opt := range opts {
		opt(cc)
	}
	return cc
}

// WithBefore appends a hook to the before phase. Before hooks run ahead of
// query and body merging, so auth checks here reject a call before any
// body I/O happens.
//
// Example:
//
//	restless.WithBefore(func(c *restless.Client) error {
//	    if !authorized(c.Request) {
//	        return errors.New("unauthorized")
//	    }
//	    return nil
//	})
func WithBefore(h Hook) Option {
	return func(cc *CallContext) {
		cc.before = append(cc.before, h)
	}
}

// WithBeforeValidation appends a hook to the before-validation phase.
// These hooks are the last to observe parameters prior to validation and
// coercion.
func WithBeforeValidation(h Hook) Option {
	return func(cc *CallContext) {
		cc.beforeValidation = append(cc.beforeValidation, h)
	}
}

// WithAfterValidation appends a hook to the after-validation phase. These
// hooks run only for calls whose parameters passed the endpoint's schema.
func WithAfterValidation(h Hook) Option {
	return func(cc *CallContext) {
		cc.afterValidation = append(cc.afterValidation, h)
	}
}

// WithAfter appends a hook to the after phase, which runs once the handler
// has produced its result. Use it for response shaping:
//
//	restless.WithAfter(func(c *restless.Client) error {
//	    c.SetHeader("X-Request-ID", newRequestID())
//	    return nil
//	})
//
// After hooks do not run when the handler or an earlier stage failed.
func WithAfter(h Hook) Option {
	return func(cc *CallContext) {
		cc.after = append(cc.after, h)
	}
}

// Phase accessors are nil-receiver safe so a nil CallContext dispatches
// with no hooks.

func (cc *CallContext) beforeHooks() []Hook {
	if cc == nil {
		return nil
	}
	return cc.before
}

func (cc *CallContext) beforeValidationHooks() []Hook {
	if cc == nil {
		return nil
	}
	return cc.beforeValidation
}

func (cc *CallContext) afterValidationHooks() []Hook {
	if cc == nil {
		return nil
	}
	return cc.afterValidation
}

func (cc *CallContext) afterHooks() []Hook {
	if cc == nil {
		return nil
	}
	return cc.after
}

// runHooks executes one phase in registration order, stopping at the first
// error.
func runHooks(hooks []Hook, c *Client) error {
	for _, h := range hooks {
		if err := h(c); err != nil {
			return err
		}
	}
	return nil
}
