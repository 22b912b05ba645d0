// Package ports defines the interfaces (hexagonal "ports") that decouple the
// arbor core from its infrastructure adapters: request profiling backends and
// session persistence stores.
//
// Adapters live under pkg/adapters. The contract test in this package lets
// any SessionStore implementation verify its behavior against the expected
// semantics.
package ports
