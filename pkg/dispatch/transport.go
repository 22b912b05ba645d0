package dispatch

import "time"

// Transport is the engine-side contract the context needs from the layer
// that owns the actual socket and protocol handling: an async/finalized
// status pair, a finalize hook, and an elapsed-time reader for profiling.
//
// Finalize must be idempotent from the transport's perspective; the context
// additionally guards it with the Finalized flag so double completion
// signals from racing or buggy callers degrade to a logged no-op.
type Transport interface {
	// SetAsync marks the underlying request as asynchronous: the transport
	// must keep it open after the synchronous chain returns.
	SetAsync()

	// Async reports whether SetAsync was called.
	Async() bool

	// Finalized reports whether the request has already been completed.
	Finalized() bool

	// Finalize completes the request (e.g. flushes the response).
	Finalize()

	// Elapsed returns the time since the request arrived.
	Elapsed() time.Duration
}
