package restless

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"
)

// Request exposes the slice of an incoming HTTP request the dispatch
// pipeline consumes. The transport layer owns the real request; the
// pipeline only needs the remaining path, the query string, the JSON-body
// flag, and a way to read the body to completion.
type Request interface {
	// Path returns the not-yet-consumed portion of the request path,
	// relative to the endpoint's mount point.
	Path() string

	// RawQuery returns the raw query string and whether one is present.
	RawQuery() (string, bool)

	// IsJSONBody reports whether the request declares a JSON-typed body.
	IsJSONBody() bool

	// Body reads the request body to completion. It may block on I/O.
	Body() ([]byte, error)
}

// HTTPRequest adapts a *net/http.Request to the Request capability. The
// JSON-body flag is derived from the Content-Type header: application/json
// or any +json media type.
func HTTPRequest(r *http.Request) Request {
	return &httpRequest{r: r}
}

type httpRequest struct {
	r *http.Request
}

func (h *httpRequest) Path() string { return h.r.URL.Path }

func (h *httpRequest) RawQuery() (string, bool) {
	return h.r.URL.RawQuery, h.r.URL.RawQuery != ""
}

func (h *httpRequest) IsJSONBody() bool {
	ct := h.r.Header.Get("Content-Type")
	if ct == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func (h *httpRequest) Body() ([]byte, error) {
	if h.r.Body == nil {
		return nil, nil
	}
	return io.ReadAll(h.r.Body)
}

// Client binds one in-flight request to its in-progress response and the
// endpoint serving it. Exactly one Client exists per call; it is threaded
// linearly through the hook phases and the handler, each of which may
// mutate it, and is never shared across calls.
type Client struct {
	// Endpoint is the endpoint serving this call.
	Endpoint *Endpoint

	// Request is the request being served.
	Request Request

	response *Response
}

func newClient(e *Endpoint, req Request) *Client {
	return &Client{Endpoint: e, Request: req, response: NewResponse()}
}

// Response returns the in-progress response.
func (c *Client) Response() *Response { return c.response }

// SetResponse replaces the in-progress response. Hooks use this to swap in
// a prepared response wholesale; most callers mutate the existing one.
func (c *Client) SetResponse(r *Response) { c.response = r }

// SetStatus sets the response status code.
func (c *Client) SetStatus(code int) { c.response.SetStatus(code) }

// SetHeader sets a response header, replacing any existing values.
func (c *Client) SetHeader(key, value string) { c.response.Header().Set(key, value) }

// Text writes a plain-text response with the given status.
func (c *Client) Text(code int, body string) {
	c.response.SetStatus(code)
	c.response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.response.WriteString(body)
}

// JSON serializes v into the response body with the given status and a
// JSON content type.
func (c *Client) JSON(code int, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.response.SetStatus(code)
	c.response.Header().Set("Content-Type", "application/json")
	_, err = c.response.Write(data)
	return err
}
