// Package stash provides the per-request scratch storage used by the
// dispatch context. A Stash maps string keys to arbitrary values and makes
// no ordering guarantee.
//
// A Stash is deliberately not goroutine-safe: exactly one logical thread of
// control executes a request's handler chain at a time (suspension happens
// only at explicit async boundaries), so locking here would be pure overhead.
package stash

// Stash is a keyed scratch space scoped to a single request.
type Stash struct {
	values map[string]any
}

// New returns an empty Stash.
func New() *Stash {
	return &Stash{values: make(map[string]any)}
}

// FromMap returns a Stash seeded with the given values. The map is copied.
func FromMap(values map[string]any) *Stash {
	s := New()
	s.Merge(values)
	return s
}

// Set inserts or overwrites the value for key.
func (s *Stash) Set(key string, value any) {
	s.values[key] = value
}

// Get returns the value for key, or nil when absent.
func (s *Stash) Get(key string) any {
	return s.values[key]
}

// GetDefault returns the value for key, or def when absent.
func (s *Stash) GetDefault(key string, def any) any {
	if v, ok := s.values[key]; ok {
		return v
	}
	return def
}

// Has reports whether key is present.
func (s *Stash) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Take removes key and returns its value, or nil when absent.
func (s *Stash) Take(key string) any {
	v, ok := s.values[key]
	if ok {
		delete(s.values, key)
	}
	return v
}

// Delete removes key, reporting whether it was present.
func (s *Stash) Delete(key string) bool {
	_, ok := s.values[key]
	delete(s.values, key)
	return ok
}

// Merge inserts every entry of values, overwriting existing keys.
func (s *Stash) Merge(values map[string]any) {
	for k, v := range values {
		s.values[k] = v
	}
}

// Keys returns the stored keys in unspecified order.
func (s *Stash) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of stored entries.
func (s *Stash) Len() int {
	return len(s.values)
}

// Map exposes the underlying map for bulk reads (e.g. view serialization).
// Mutating it mutates the Stash.
func (s *Stash) Map() map[string]any {
	return s.values
}
