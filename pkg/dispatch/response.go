package dispatch

import (
	"bytes"
	"net/http"
	"strconv"
)

// Response accumulates the reply for a request. The transport adapter writes
// it to the wire once the context finalizes.
type Response struct {
	status  int
	headers http.Header
	body    bytes.Buffer
}

// NewResponse returns a Response with status 200 and empty headers.
func NewResponse() *Response {
	return &Response{status: http.StatusOK, headers: make(http.Header)}
}

func (r *Response) Status() int { return r.status }

func (r *Response) SetStatus(status int) { r.status = status }

func (r *Response) Headers() http.Header { return r.headers }

// Body exposes the response body buffer.
func (r *Response) Body() *bytes.Buffer { return &r.body }

// Write appends to the body, satisfying io.Writer.
func (r *Response) Write(p []byte) (int, error) { return r.body.Write(p) }

// WriteString appends a string to the body.
func (r *Response) WriteString(s string) (int, error) { return r.body.WriteString(s) }

// SetContentType sets the Content-Type header.
func (r *Response) SetContentType(ct string) { r.headers.Set("Content-Type", ct) }

// ContentType returns the Content-Type header.
func (r *Response) ContentType() string { return r.headers.Get("Content-Type") }

// ContentLength returns the current body size.
func (r *Response) ContentLength() int { return r.body.Len() }

// Redirect sets a Location header and status. A zero status defaults to 302.
func (r *Response) Redirect(location string, status int) {
	if status == 0 {
		status = http.StatusFound
	}
	r.headers.Set("Location", location)
	r.status = status
}

// FinalizeHeaders stamps Content-Length from the body size when absent.
func (r *Response) FinalizeHeaders() {
	if r.headers.Get("Content-Length") == "" {
		r.headers.Set("Content-Length", strconv.Itoa(r.body.Len()))
	}
}
