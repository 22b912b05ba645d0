package dispatch

import (
	"io"
	"net/http"
	"net/url"
)

// Request is the framework-level view of an inbound request. The transport
// adapter fills it in; the owning Context holds it for the request lifetime.
// No wire parsing happens here.
type Request struct {
	// Method is the request verb (GET, POST, ...).
	Method string

	// URI is the full request URI; scheme and host seed generated URIs.
	URI *url.URL

	// Path is the decoded request path with a leading slash.
	Path string

	// Captures are the leading matched segments consumed by a capture action.
	Captures []string

	// Args are the trailing positional path segments.
	Args []string

	// Params holds the query parameters in wire order.
	Params Params

	// Headers are the inbound protocol headers.
	Headers http.Header

	// Body is the request body stream, if any.
	Body io.Reader

	// RemoteAddr identifies the peer.
	RemoteAddr string

	ctx *Context // non-owning backref, set when the context is created
}

// Context returns the request's owning context. The relation is non-owning:
// the Context owns the Request, never the other way around.
func (r *Request) Context() *Context { return r.ctx }

// QueryParam returns the first query value for key, or def when absent.
func (r *Request) QueryParam(key, def string) string {
	if v, ok := r.Params.Get(key); ok {
		return v
	}
	return def
}
