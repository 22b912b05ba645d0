// Package http adapts the standard library's HTTP server to the dispatch
// engine: it translates inbound requests into dispatch requests, blocks on
// asynchronous exchanges, and writes finalized responses back to the wire.
package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/dispatch"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler receives translated requests. The root application satisfies it.
type Handler interface {
	HandleRequest(tr dispatch.Transport, req *dispatch.Request, res *dispatch.Response)
}

// Option configures the adapter.
type Option func(*adapter)

// WithLogger sets the adapter's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMetrics mounts a Prometheus scrape endpoint at /metrics for reg.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(a *adapter) { a.metrics = reg }
}

type adapter struct {
	handler Handler
	logger  *slog.Logger
	metrics *prometheus.Registry
}

// NewHandler builds the http.Handler serving the application. Every path is
// routed through the dispatch engine except /health and, when enabled,
// /metrics.
func NewHandler(h Handler, opts ...Option) http.Handler {
	a := &adapter{handler: h, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(a)
	}

	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	if a.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(a.metrics, promhttp.HandlerOpts{}))
	}
	r.Handle("/*", http.HandlerFunc(a.serve))
	return r
}

// serve runs one exchange. Detached requests keep this goroutine parked until
// another goroutine finalizes the transport or the client goes away.
func (a *adapter) serve(w http.ResponseWriter, r *http.Request) {
	req := translate(r)
	res := dispatch.NewResponse()
	tr := NewTransport()

	a.handler.HandleRequest(tr, req, res)

	if tr.Async() {
		select {
		case <-tr.Done():
		case <-r.Context().Done():
			a.logger.Warn("client gone before async completion",
				"path", req.Path, "remote", req.RemoteAddr)
			return
		}
	}

	res.FinalizeHeaders()
	header := w.Header()
	for key, values := range res.Headers() {
		for _, v := range values {
			header.Add(key, v)
		}
	}
	w.WriteHeader(res.Status())
	if _, err := w.Write(res.Body().Bytes()); err != nil {
		a.logger.Warn("failed to write response", "path", req.Path, "err", err)
	}

	a.logger.Debug("request served",
		"method", req.Method, "path", req.Path,
		"status", res.Status(), "elapsed", tr.Elapsed())
}

// translate maps an http.Request onto the engine's request type.
func translate(r *http.Request) *dispatch.Request {
	uri := *r.URL
	if uri.Host == "" {
		uri.Host = r.Host
	}
	if uri.Scheme == "" {
		uri.Scheme = "http"
		if r.TLS != nil {
			uri.Scheme = "https"
		}
	}

	return &dispatch.Request{
		Method:     r.Method,
		URI:        &uri,
		Path:       r.URL.Path,
		Params:     parseQuery(r.URL.RawQuery),
		Headers:    r.Header,
		Body:       r.Body,
		RemoteAddr: r.RemoteAddr,
	}
}

// parseQuery decodes the raw query while preserving wire order, which
// url.Values would lose.
func parseQuery(rawQuery string) dispatch.Params {
	var params dispatch.Params
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		k, err := url.QueryUnescape(key)
		if err != nil {
			continue
		}
		v, err := url.QueryUnescape(value)
		if err != nil {
			continue
		}
		params = params.Add(k, v)
	}
	return params
}
