package session_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/dispatch"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore keeps sessions in a map and counts Touch calls.
type fakeStore struct {
	sessions map[string]map[string]any
	touched  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: map[string]map[string]any{}}
}

func (s *fakeStore) Save(ctx context.Context, id string, values map[string]any) error {
	s.sessions[id] = values
	return nil
}

func (s *fakeStore) Load(ctx context.Context, id string) (map[string]any, error) {
	values, ok := s.sessions[id]
	if !ok {
		return nil, ports.ErrSessionNotFound
	}
	return values, nil
}

func (s *fakeStore) Delete(ctx context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func (s *fakeStore) Touch(ctx context.Context, id string) error {
	if _, ok := s.sessions[id]; !ok {
		return ports.ErrSessionNotFound
	}
	s.touched++
	return nil
}

type sessionApp struct{}

func (sessionApp) Config(key string, def any) any             { return def }
func (sessionApp) ConfigMap() map[string]any                  { return nil }
func (sessionApp) Translate(l, d, text string, n int) string  { return text }
func (sessionApp) View(name string) dispatch.View             { return nil }
func (sessionApp) AfterDispatch(c *dispatch.Context)          {}

type sessionTransport struct{ finalized bool }

func (t *sessionTransport) SetAsync()              {}
func (t *sessionTransport) Async() bool            { return false }
func (t *sessionTransport) Finalized() bool        { return t.finalized }
func (t *sessionTransport) Finalize()              { t.finalized = true }
func (t *sessionTransport) Elapsed() time.Duration { return 0 }

func newSessionContext(t *testing.T, cookie string) *dispatch.Context {
	t.Helper()
	u, err := url.Parse("http://localhost/")
	require.NoError(t, err)

	headers := http.Header{}
	if cookie != "" {
		headers.Set("Cookie", session.DefaultCookie+"="+cookie)
	}
	req := &dispatch.Request{Method: "GET", URI: u, Path: "/", Headers: headers}
	return dispatch.NewContext(sessionApp{}, dispatch.NewDispatcher(), &sessionTransport{},
		req, dispatch.NewResponse())
}

func TestSession_FreshVisitorStartsEmpty(t *testing.T) {
	store := newFakeStore()
	p := session.New(store)

	c := newSessionContext(t, "")
	require.NoError(t, p.SetupContext(c))

	assert.Nil(t, session.Value(c, "user"))
	assert.Empty(t, session.ID(c))
}

func TestSession_PersistAssignsIDAndCookie(t *testing.T) {
	store := newFakeStore()
	p := session.New(store, session.WithExpiry(time.Hour))

	c := newSessionContext(t, "")
	require.NoError(t, p.SetupContext(c))

	session.SetValue(c, "user", "alice")
	require.NoError(t, p.Persist(c))

	id := session.ID(c)
	require.NotEmpty(t, id)
	assert.Equal(t, map[string]any{"user": "alice"}, store.sessions[id])

	setCookie := c.Response().Headers().Get("Set-Cookie")
	assert.Contains(t, setCookie, session.DefaultCookie+"="+id)
	assert.Contains(t, setCookie, "HttpOnly")
	assert.Contains(t, setCookie, "Max-Age=3600")
}

func TestSession_RoundTripAcrossRequests(t *testing.T) {
	store := newFakeStore()
	p := session.New(store)

	first := newSessionContext(t, "")
	require.NoError(t, p.SetupContext(first))
	session.SetValue(first, "count", 1)
	require.NoError(t, p.Persist(first))

	second := newSessionContext(t, session.ID(first))
	require.NoError(t, p.SetupContext(second))

	assert.Equal(t, session.ID(first), session.ID(second))
	assert.Equal(t, 1, session.Value(second, "count"))
}

func TestSession_ReadOnlyRequestOnlyTouches(t *testing.T) {
	store := newFakeStore()
	store.sessions["abc"] = map[string]any{"user": "bob"}
	p := session.New(store)

	c := newSessionContext(t, "abc")
	require.NoError(t, p.SetupContext(c))
	assert.Equal(t, "bob", session.Value(c, "user"))

	require.NoError(t, p.Persist(c))
	assert.Equal(t, 1, store.touched)
	assert.Empty(t, c.Response().Headers().Get("Set-Cookie"), "no write, no new cookie")
}

func TestSession_UnknownCookieStartsEmpty(t *testing.T) {
	store := newFakeStore()
	p := session.New(store)

	c := newSessionContext(t, "expired")
	require.NoError(t, p.SetupContext(c))

	assert.Nil(t, session.Value(c, "user"))
	assert.Empty(t, session.ID(c))

	// Persisting without writes is a no-op for an unknown session.
	require.NoError(t, p.Persist(c))
	assert.Zero(t, store.touched)
	assert.Empty(t, store.sessions)
}

func TestSession_RemoveAndClear(t *testing.T) {
	store := newFakeStore()
	store.sessions["abc"] = map[string]any{"a": 1, "b": 2}
	p := session.New(store)

	c := newSessionContext(t, "abc")
	require.NoError(t, p.SetupContext(c))

	session.Remove(c, "a")
	require.NoError(t, p.Persist(c))
	assert.Equal(t, map[string]any{"b": 2}, store.sessions["abc"])

	session.Clear(c)
	require.NoError(t, p.Persist(c))
	assert.Empty(t, store.sessions["abc"])
}

func TestSession_CustomCookieName(t *testing.T) {
	store := newFakeStore()
	store.sessions["xyz"] = map[string]any{"user": "carol"}
	p := session.New(store, session.WithCookieName("sid"))

	u, err := url.Parse("http://localhost/")
	require.NoError(t, err)
	headers := http.Header{}
	headers.Set("Cookie", "sid=xyz")
	req := &dispatch.Request{Method: "GET", URI: u, Path: "/", Headers: headers}
	c := dispatch.NewContext(sessionApp{}, dispatch.NewDispatcher(), &sessionTransport{},
		req, dispatch.NewResponse())

	require.NoError(t, p.SetupContext(c))
	assert.Equal(t, "carol", session.Value(c, "user"))
}
