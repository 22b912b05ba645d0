package http

import (
	"sync"
	"time"
)

// Transport implements dispatch.Transport for one HTTP exchange. The serving
// goroutine blocks on Done when the context detaches, so finalization may
// arrive from another goroutine; all state is mutex-guarded.
type Transport struct {
	mu        sync.Mutex
	start     time.Time
	async     bool
	finalized bool
	done      chan struct{}
}

// NewTransport starts the request clock.
func NewTransport() *Transport {
	return &Transport{
		start: time.Now(),
		done:  make(chan struct{}),
	}
}

// SetAsync marks the exchange as asynchronous.
func (t *Transport) SetAsync() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.async = true
}

// Async reports whether the exchange was detached.
func (t *Transport) Async() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.async
}

// Finalized reports whether the response was sealed.
func (t *Transport) Finalized() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.finalized
}

// Finalize seals the response and releases the serving goroutine.
func (t *Transport) Finalize() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.finalized {
		return
	}
	t.finalized = true
	close(t.done)
}

// Elapsed returns the time since the exchange started.
func (t *Transport) Elapsed() time.Duration {
	return time.Since(t.start)
}

// Done is closed when the exchange finalizes.
func (t *Transport) Done() <-chan struct{} {
	return t.done
}
