package restless

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

// testRequest is a minimal Request implementation for pipeline tests.
type testRequest struct {
	query    string
	jsonBody bool
	body     []byte
	bodyErr  error
}

func (r *testRequest) Path() string             { return "" }
func (r *testRequest) RawQuery() (string, bool) { return r.query, r.query != "" }
func (r *testRequest) IsJSONBody() bool         { return r.jsonBody }
func (r *testRequest) Body() ([]byte, error)    { return r.body, r.bodyErr }

// recordingHandler captures the parameters the pipeline hands to it.
type recordingHandler struct {
	calls  int
	params Params
	err    error
}

func (h *recordingHandler) handle(c *Client, p Params) error {
	h.calls++
	h.params = p
	return h.err
}

func TestEndpoint_TryDispatch(t *testing.T) {
	t.Run("invokes the handler with merged parameters", func(t *testing.T) {
		h := &recordingHandler{}
		ep := Get("/users/:id").Handle(h.handle)

		resp, err := ep.TryDispatch("/users/7", NewParams(), &testRequest{query: "active=true"}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if h.calls != 1 {
			t.Fatalf("handler calls = %d, want 1", h.calls)
		}
		if got := h.params.String("id"); got != "7" {
			t.Errorf("id = %q, want %q", got, "7")
		}
		if got := h.params.String("active"); got != "true" {
			t.Errorf("active = %q, want %q", got, "true")
		}
		if resp == nil {
			t.Fatal("response is nil")
		}
	})

	t.Run("returns ErrNoMatch without side effects", func(t *testing.T) {
		h := &recordingHandler{}
		ep := Get("/users/:id").Handle(h.handle)

		params := NewParams()
		_, err := ep.TryDispatch("/items/7", params, &testRequest{query: "active=true"}, nil)

		if !errors.Is(err, ErrNoMatch) {
			t.Fatalf("error = %v, want ErrNoMatch", err)
		}
		if h.calls != 0 {
			t.Error("handler ran on a miss")
		}
		if params.Len() != 0 {
			t.Errorf("params mutated on a miss: %v", params.Keys())
		}
	})

	t.Run("path captures beat query and body values", func(t *testing.T) {
		h := &recordingHandler{}
		ep := Post("/things/:id").Handle(h.handle)

		req := &testRequest{
			query:    "id=999&active=true",
			jsonBody: true,
			body:     []byte(`{"id": 5, "active": false, "name": "x"}`),
		}
		_, err := ep.TryDispatch("/things/7", NewParams(), req, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := h.params.String("id"); got != "7" {
			t.Errorf("id = %q, want path capture %q", got, "7")
		}
		if got, _ := h.params.Get("active"); got != "true" {
			t.Errorf("active = %v, want query value %q", got, "true")
		}
		if got, _ := h.params.Get("name"); got != "x" {
			t.Errorf("name = %v, want body value %q", got, "x")
		}
	})

	t.Run("outer scope seeds beat path captures", func(t *testing.T) {
		h := &recordingHandler{}
		ep := Get("/things/:id").Handle(h.handle)

		params := NewParams()
		params.Set("id", "outer")
		_, err := ep.TryDispatch("/things/7", params, &testRequest{}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := h.params.String("id"); got != "outer" {
			t.Errorf("id = %q, want %q", got, "outer")
		}
	})

	t.Run("absent query and body leave parameters untouched", func(t *testing.T) {
		h := &recordingHandler{}
		ep := Get("/users/:id").Handle(h.handle)

		_, err := ep.TryDispatch("/users/7", NewParams(), &testRequest{}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := h.params.Keys(); len(got) != 1 || got[0] != "id" {
			t.Errorf("keys = %v, want [id]", got)
		}
	})

	t.Run("malformed query yields QueryDecodeError and no partial merge", func(t *testing.T) {
		h := &recordingHandler{}
		ep := Get("/users/:id").Handle(h.handle)

		params := NewParams()
		_, err := ep.TryDispatch("/users/7", params, &testRequest{query: "ok=1&bad=%zz"}, nil)

		var qerr *QueryDecodeError
		if !errors.As(err, &qerr) {
			t.Fatalf("error = %v, want *QueryDecodeError", err)
		}
		if h.calls != 0 {
			t.Error("handler ran after a decode failure")
		}
		if params.Has("ok") {
			t.Error("partial query merge leaked into params")
		}
	})

	t.Run("empty JSON body contributes nothing", func(t *testing.T) {
		h := &recordingHandler{}
		ep := Post("/items").Handle(h.handle)

		_, err := ep.TryDispatch("/items", NewParams(), &testRequest{jsonBody: true}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if h.params.Len() != 0 {
			t.Errorf("params = %v, want empty", h.params.Keys())
		}
	})

	t.Run("non-JSON body is ignored", func(t *testing.T) {
		h := &recordingHandler{}
		ep := Post("/items").Handle(h.handle)

		req := &testRequest{body: []byte(`{"name": "x"}`)} // no JSON content type
		_, err := ep.TryDispatch("/items", NewParams(), req, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if h.params.Has("name") {
			t.Error("body merged despite missing JSON flag")
		}
	})

	t.Run("body read failure yields BodyDecodeError", func(t *testing.T) {
		ep := Post("/items").Handle((&recordingHandler{}).handle)

		req := &testRequest{jsonBody: true, bodyErr: errors.New("connection reset")}
		_, err := ep.TryDispatch("/items", NewParams(), req, nil)

		var berr *BodyDecodeError
		if !errors.As(err, &berr) {
			t.Fatalf("error = %v, want *BodyDecodeError", err)
		}
		if berr.Message != "connection reset" {
			t.Errorf("message = %q, want the read error text", berr.Message)
		}
	})

	t.Run("invalid UTF-8 body yields the fixed diagnostic", func(t *testing.T) {
		ep := Post("/items").Handle((&recordingHandler{}).handle)

		req := &testRequest{jsonBody: true, body: []byte{0xff, 0xfe}}
		_, err := ep.TryDispatch("/items", NewParams(), req, nil)

		var berr *BodyDecodeError
		if !errors.As(err, &berr) {
			t.Fatalf("error = %v, want *BodyDecodeError", err)
		}
		if berr.Message != "invalid UTF-8 sequence" {
			t.Errorf("message = %q, want %q", berr.Message, "invalid UTF-8 sequence")
		}
	})

	t.Run("malformed JSON body yields BodyDecodeError", func(t *testing.T) {
		h := &recordingHandler{}
		ep := Post("/items").Handle(h.handle)

		req := &testRequest{jsonBody: true, body: []byte(`{"name": `)}
		_, err := ep.TryDispatch("/items", NewParams(), req, nil)

		var berr *BodyDecodeError
		if !errors.As(err, &berr) {
			t.Fatalf("error = %v, want *BodyDecodeError", err)
		}
		if h.calls != 0 {
			t.Error("handler ran after a body decode failure")
		}
	})

	t.Run("array-rooted body is rejected", func(t *testing.T) {
		ep := Post("/items").Handle((&recordingHandler{}).handle)

		req := &testRequest{jsonBody: true, body: []byte(`[{"name": "x"}]`)}
		_, err := ep.TryDispatch("/items", NewParams(), req, nil)

		var berr *BodyDecodeError
		if !errors.As(err, &berr) {
			t.Fatalf("error = %v, want *BodyDecodeError", err)
		}
	})

	t.Run("no schema skips validation without mutating parameters", func(t *testing.T) {
		h := &recordingHandler{}
		ep := Get("/items").Handle(h.handle)

		_, err := ep.TryDispatch("/items", NewParams(), &testRequest{query: "count=42"}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got, _ := h.params.Get("count"); got != "42" {
			t.Errorf("count = %v (%T), want untouched string", got, got)
		}
	})

	t.Run("schema coerces string parameters before the handler", func(t *testing.T) {
		h := &recordingHandler{}
		ep := Get("/items").
			Params(`{"type": "object", "properties": {"count": {"type": "number"}}}`).
			Handle(h.handle)

		_, err := ep.TryDispatch("/items", NewParams(), &testRequest{query: "count=42"}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got, _ := h.params.Get("count"); got != float64(42) {
			t.Errorf("count = %v (%T), want float64(42)", got, got)
		}
	})

	t.Run("schema failure aborts before the handler", func(t *testing.T) {
		h := &recordingHandler{}
		ep := Post("/items").
			Params(`{"type": "object", "properties": {"name": {"type": "string"}}, "required": ["name"]}`).
			Handle(h.handle)

		req := &testRequest{jsonBody: true, body: []byte(`{"name": 5}`)}
		_, err := ep.TryDispatch("/items", NewParams(), req, nil)

		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("error = %v, want *ValidationError", err)
		}
		if h.calls != 0 {
			t.Error("handler ran after a validation failure")
		}
		fields := verr.Fields()
		if len(fields) == 0 || fields[0].Field != "name" {
			t.Errorf("fields = %v, want detail for %q", fields, "name")
		}
	})

	t.Run("before hooks observe parameters without query or body merges", func(t *testing.T) {
		params := NewParams()
		req := &testRequest{query: "active=true", jsonBody: true, body: []byte(`{"name": "x"}`)}

		var beforeSaw, beforeValidationSaw []string
		call := NewCallContext(
			WithBefore(func(*Client) error {
				beforeSaw = params.Keys()
				return nil
			}),
			WithBeforeValidation(func(*Client) error {
				beforeValidationSaw = params.Keys()
				return nil
			}),
		)

		ep := Post("/users/:id").Handle((&recordingHandler{}).handle)
		_, err := ep.TryDispatch("/users/7", params, req, call)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if fmt.Sprint(beforeSaw) != "[id]" {
			t.Errorf("before phase saw %v, want only path captures", beforeSaw)
		}
		if fmt.Sprint(beforeValidationSaw) != "[id active name]" {
			t.Errorf("before-validation phase saw %v, want all three sources", beforeValidationSaw)
		}
	})

	t.Run("before-validation hook error skips validation and handler", func(t *testing.T) {
		boom := errors.New("rejected")
		h := &recordingHandler{}
		var afterValidationRan bool

		call := NewCallContext(
			WithBeforeValidation(func(*Client) error { return boom }),
			WithAfterValidation(func(*Client) error { afterValidationRan = true; return nil }),
		)

		// The schema would fail; the hook error must win by running first.
		ep := Post("/items").
			Params(`{"type": "object", "required": ["name"]}`).
			Handle(h.handle)

		_, err := ep.TryDispatch("/items", NewParams(), &testRequest{}, call)
		if !errors.Is(err, boom) {
			t.Fatalf("error = %v, want the hook error", err)
		}
		if afterValidationRan {
			t.Error("after-validation hook ran")
		}
		if h.calls != 0 {
			t.Error("handler ran")
		}
	})

	t.Run("handler error skips after hooks", func(t *testing.T) {
		boom := errors.New("handler failed")
		h := &recordingHandler{err: boom}
		var afterRan bool

		call := NewCallContext(
			WithAfter(func(*Client) error { afterRan = true; return nil }),
		)

		ep := Get("/items").Handle(h.handle)
		_, err := ep.TryDispatch("/items", NewParams(), &testRequest{}, call)

		if !errors.Is(err, boom) {
			t.Fatalf("error = %v, want the handler error", err)
		}
		if afterRan {
			t.Error("after hook ran despite handler failure")
		}
	})

	t.Run("handler receives a frozen view", func(t *testing.T) {
		params := NewParams()
		ep := Get("/users/:id").Handle(func(c *Client, p Params) error {
			params.Set("late", true)
			if p.Has("late") {
				return errors.New("view reflects later mutation")
			}
			return nil
		})

		if _, err := ep.TryDispatch("/users/7", params, &testRequest{}, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("response reflects handler output", func(t *testing.T) {
		ep := Get("/users/:id").Handle(func(c *Client, p Params) error {
			return c.JSON(201, map[string]string{"id": p.String("id")})
		})

		resp, err := ep.TryDispatch("/users/7", NewParams(), &testRequest{}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Status() != 201 {
			t.Errorf("status = %d, want 201", resp.Status())
		}
		if got := string(resp.Bytes()); got != `{"id":"7"}` {
			t.Errorf("body = %s", got)
		}
		if ct := resp.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
	})

	t.Run("panics without a handler", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		ep := Get("/items")
		_, _ = ep.TryDispatch("/items", NewParams(), &testRequest{}, nil)
	})
}

func TestEndpoint_Builder(t *testing.T) {
	t.Run("Build applies the configuration callback", func(t *testing.T) {
		ep := Build(MethodPost, "/items", func(e *Endpoint) {
			e.Describe("Create an item")
			e.Handle(func(*Client, Params) error { return nil })
		})
		if ep.Method() != MethodPost {
			t.Errorf("method = %v", ep.Method())
		}
		if ep.Description() != "Create an item" {
			t.Errorf("description = %q", ep.Description())
		}
		if ep.Path() != "/items" {
			t.Errorf("path = %q", ep.Path())
		}
	})

	t.Run("Build panics without a handler", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		Build(MethodGet, "/items", func(*Endpoint) {})
	})

	t.Run("configuration after Handle panics", func(t *testing.T) {
		ep := Get("/items").Handle(func(*Client, Params) error { return nil })
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		ep.Describe("too late")
	})

	t.Run("invalid template panics at construction", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		Get("/users/:")
	})

	t.Run("invalid schema panics at construction", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		Post("/items").Params(`{"type": `)
	})
}

func TestEndpoint_Matches(t *testing.T) {
	ep := Get("/users/:id").Handle(func(*Client, Params) error { return nil })

	if !ep.Matches(MethodGet, "/users/7") {
		t.Error("expected match")
	}
	if ep.Matches(MethodPost, "/users/7") {
		t.Error("matched wrong method")
	}
	if ep.Matches(MethodGet, "/items/7") {
		t.Error("matched wrong path")
	}
}

func TestEndpoint_ConcurrentDispatch(t *testing.T) {
	ep := Get("/users/:id").
		Params(`{"type": "object", "properties": {"n": {"type": "number"}}}`).
		Handle(func(c *Client, p Params) error {
			return c.JSON(200, map[string]any{"id": p.String("id")})
		})
	call := NewCallContext(
		WithBefore(func(*Client) error { return nil }),
		WithAfter(func(*Client) error { return nil }),
	)

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := fmt.Sprintf("/users/%d", i)
			req := &testRequest{query: fmt.Sprintf("n=%d", i)}
			resp, err := ep.TryDispatch(path, NewParams(), req, call)
			if err != nil {
				t.Errorf("dispatch %d: %v", i, err)
				return
			}
			want := fmt.Sprintf(`{"id":"%d"}`, i)
			if got := string(resp.Bytes()); got != want {
				t.Errorf("dispatch %d: body = %s, want %s", i, got, want)
			}
		}(i)
	}
	wg.Wait()
}
