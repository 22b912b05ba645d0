// Package memory provides an in-process session store, the default for
// development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/arbor/pkg/ports"
)

type record struct {
	values    map[string]any
	expiresAt time.Time
}

// Store implements ports.SessionStore with a mutex-guarded map. Expired
// sessions are dropped lazily on access.
type Store struct {
	mu       sync.Mutex
	sessions map[string]record
	ttl      time.Duration
	now      func() time.Time
}

// Option configures the Store.
type Option func(*Store)

// WithTTL sets the session lifetime. Zero means sessions never expire.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]record),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) deadline() time.Time {
	if s.ttl == 0 {
		return time.Time{}
	}
	return s.now().Add(s.ttl)
}

// live returns the record when present and unexpired, pruning it otherwise.
// Caller holds the mutex.
func (s *Store) live(id string) (record, bool) {
	rec, ok := s.sessions[id]
	if !ok {
		return record{}, false
	}
	if !rec.expiresAt.IsZero() && s.now().After(rec.expiresAt) {
		delete(s.sessions, id)
		return record{}, false
	}
	return rec, true
}

// Save stores a copy of values under id.
func (s *Store) Save(ctx context.Context, id string, values map[string]any) error {
	copied := make(map[string]any, len(values))
	for k, v := range values {
		copied[k] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = record{values: copied, expiresAt: s.deadline()}
	return nil
}

// Load returns a copy of the session values.
func (s *Store) Load(ctx context.Context, id string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.live(id)
	if !ok {
		return nil, ports.ErrSessionNotFound
	}

	copied := make(map[string]any, len(rec.values))
	for k, v := range rec.values {
		copied[k] = v
	}
	return copied, nil
}

// Delete removes the session. Deleting an absent session is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Touch slides the session expiry.
func (s *Store) Touch(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.live(id)
	if !ok {
		return ports.ErrSessionNotFound
	}
	rec.expiresAt = s.deadline()
	s.sessions[id] = rec
	return nil
}

// Len reports the number of stored sessions, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
