package restless

import (
	"bytes"
	"net/http"
)

// Response is the in-progress output of a dispatch: a status code, headers,
// and a body buffer. Handlers populate it through the Client helpers or
// directly; the pipeline extracts it when the call completes. A Response
// belongs to a single call and is not safe for concurrent use.
type Response struct {
	status int
	header http.Header
	body   bytes.Buffer
}

// NewResponse creates an empty Response with status 200.
func NewResponse() *Response {
	return &Response{
		status: http.StatusOK,
		header: make(http.Header),
	}
}

// Status returns the response status code.
func (r *Response) Status() int { return r.status }

// SetStatus sets the response status code.
func (r *Response) SetStatus(code int) { r.status = code }

// Header returns the header map for direct manipulation.
func (r *Response) Header() http.Header { return r.header }

// Write appends p to the body. Implements io.Writer.
func (r *Response) Write(p []byte) (int, error) {
	return r.body.Write(p)
}

// WriteString appends s to the body.
func (r *Response) WriteString(s string) {
	r.body.WriteString(s)
}

// Bytes returns the body accumulated so far.
func (r *Response) Bytes() []byte { return r.body.Bytes() }

// Len returns the body length in bytes.
func (r *Response) Len() int { return r.body.Len() }

// Emit writes the response to an http.ResponseWriter: headers first, then
// the status code, then the body.
func (r *Response) Emit(w http.ResponseWriter) error {
	for key, vals := range r.header {
		for _, v := range vals {
			w.Header().Add(key, v)
		}
	}
	w.WriteHeader(r.status)
	_, err := w.Write(r.body.Bytes())
	return err
}
