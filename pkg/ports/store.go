package ports

import (
	"context"
	"errors"
)

// ErrSessionNotFound is returned by SessionStore.Load when no session exists
// for the given id.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists session values across requests, keyed by session id.
// Implementations must be safe for concurrent use: many independent request
// contexts may touch the store at once.
type SessionStore interface {
	// Save persists the values for the session, replacing any previous state.
	Save(ctx context.Context, id string, values map[string]any) error

	// Load retrieves the values for the session.
	// Returns ErrSessionNotFound when the session does not exist or expired.
	Load(ctx context.Context, id string) (map[string]any, error)

	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// Touch renews the session's expiration without changing its values.
	Touch(ctx context.Context, id string) error
}
