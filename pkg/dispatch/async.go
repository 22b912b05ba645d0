package dispatch

// AsyncPhase is the context's position in the suspend/resume state machine:
// Sync -> Detached (one or more unmatched DetachAsync calls) -> Sync again
// once every detachment is matched -> Finalized.
type AsyncPhase int

const (
	// PhaseSync is the default strictly call/return execution mode.
	PhaseSync AsyncPhase = iota

	// PhaseDetached means the request is suspended: the synchronous chain
	// returned and completion is owed to a later AttachAsync.
	PhaseDetached

	// PhaseFinalized is terminal: the response was handed to the transport.
	PhaseFinalized
)

func (p AsyncPhase) String() string {
	switch p {
	case PhaseSync:
		return "sync"
	case PhaseDetached:
		return "detached"
	case PhaseFinalized:
		return "finalized"
	}
	return "unknown"
}

// Phase returns the context's current async phase.
func (c *Context) Phase() AsyncPhase {
	switch {
	case c.transport.Finalized():
		return PhaseFinalized
	case c.asyncDetached > 0:
		return PhaseDetached
	default:
		return PhaseSync
	}
}

// DetachAsync suspends the request: the current synchronous chain may return
// without finalizing, and the remaining pipeline completes once a matching
// AttachAsync arrives. Detachments nest; each call requires its own
// AttachAsync (e.g. one handler waiting on two independent async operations).
func (c *Context) DetachAsync() {
	c.asyncDetached++
	c.transport.SetAsync()
}

// AttachAsync resolves one detachment. When the last detachment resolves, the
// pending queue is replayed strictly in enqueue order through Execute,
// stopping early if a component signals completion (returns false) or
// re-detaches. Once the queue drains without re-detaching, the application's
// after-dispatch notification fires and the request finalizes.
//
// Attaching to an already finalized request, or without a matching
// DetachAsync, is a logged no-op.
func (c *Context) AttachAsync() {
	if c.asyncDetached == 0 {
		c.logger.Warn("trying to async attach without a matching detach, skipping")
		return
	}
	c.asyncDetached--
	if c.asyncDetached > 0 {
		return
	}

	if c.transport.Finalized() {
		c.logger.Warn("trying to async attach to a finalized request, skipping")
		return
	}

	for c.asyncCursor < len(c.pendingAsync) {
		code := c.pendingAsync[c.asyncCursor]
		c.asyncCursor++
		if !c.Execute(code) {
			break // chain finished
		}
		if c.asyncDetached > 0 {
			return
		}
	}

	if c.transport.Async() {
		c.app.AfterDispatch(c)
		c.Finalize()
	}
}

// enqueueAsync schedules the remaining chain components to run after the
// request re-attaches. The dispatcher calls this when a chain step leaves the
// context detached.
func (c *Context) enqueueAsync(codes ...Component) {
	c.pendingAsync = append(c.pendingAsync, codes...)
}

// asyncActive reports whether an unmatched DetachAsync is outstanding.
func (c *Context) asyncActive() bool { return c.asyncDetached > 0 }
