package ports

// Stats receives profiling spans from the execution engine. A span is opened
// per executed component with a label derived from its reverse path.
//
// Implementations may be entirely absent: the engine skips all profiling
// bookkeeping when no Stats is attached to a context.
type Stats interface {
	// ProfileStart opens a span for the given label.
	ProfileStart(label string)

	// ProfileEnd closes the span previously opened for label.
	ProfileEnd(label string)

	// Report renders a human-readable summary of the recorded spans.
	// Backends that export elsewhere (e.g. Prometheus) may return "".
	Report() string
}
