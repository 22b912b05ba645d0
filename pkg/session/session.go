// Package session persists per-visitor state across requests. It plugs into
// the dispatch context: values live in the stash during a request and are
// written back through a ports.SessionStore when the application's
// after-dispatch hook calls Persist.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/dispatch"
	"github.com/aretw0/arbor/pkg/ports"
)

// Stash keys reserved by the plugin. Handlers go through the package helpers
// instead of touching these directly.
const (
	stashData  = "_session"
	stashID    = "_session_id"
	stashDirty = "_session_dirty"
)

// DefaultCookie is the session cookie name.
const DefaultCookie = "arbor_session"

// Plugin loads the visitor's session at context setup and persists it after
// dispatch. One Plugin instance serves all requests.
type Plugin struct {
	store  ports.SessionStore
	logger *slog.Logger
	cookie string
	expiry time.Duration
}

// Option configures the Plugin.
type Option func(*Plugin)

// WithLogger configures a logger for deferred persistence errors.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Plugin) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithCookieName overrides the session cookie name.
func WithCookieName(name string) Option {
	return func(p *Plugin) { p.cookie = name }
}

// WithExpiry sets the cookie lifetime sent to the client. The store applies
// its own TTL independently.
func WithExpiry(expiry time.Duration) Option {
	return func(p *Plugin) { p.expiry = expiry }
}

// New creates the session plugin over a store.
func New(store ports.SessionStore, opts ...Option) *Plugin {
	p := &Plugin{
		store:  store,
		logger: logging.NewNop(),
		cookie: DefaultCookie,
		expiry: 2 * time.Hour,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name identifies the plugin on the context.
func (p *Plugin) Name() string { return "session" }

// SetupContext loads the session identified by the request cookie into the
// context stash. A missing cookie or an expired session starts empty.
func (p *Plugin) SetupContext(c *dispatch.Context) error {
	id := p.requestID(c)
	if id == "" {
		c.SetStash(stashData, map[string]any{})
		return nil
	}

	values, err := p.store.Load(context.Background(), id)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			c.SetStash(stashData, map[string]any{})
			return nil
		}
		return fmt.Errorf("failed to load session %q: %w", id, err)
	}

	c.SetStash(stashData, values)
	c.SetStash(stashID, id)
	return nil
}

// Persist writes the session back to the store and refreshes the cookie.
// Untouched sessions only get their expiry slid. Call it from the
// application's after-dispatch hook.
func (p *Plugin) Persist(c *dispatch.Context) error {
	id, _ := c.StashValue(stashID).(string)

	if c.StashValue(stashDirty) == nil {
		if id == "" {
			return nil
		}
		if err := p.store.Touch(context.Background(), id); err != nil && !errors.Is(err, ports.ErrSessionNotFound) {
			return fmt.Errorf("failed to touch session %q: %w", id, err)
		}
		return nil
	}

	if id == "" {
		id = newID()
		c.SetStash(stashID, id)
	}

	values, _ := c.StashValue(stashData).(map[string]any)
	if err := p.store.Save(context.Background(), id, values); err != nil {
		return fmt.Errorf("failed to save session %q: %w", id, err)
	}

	cookie := &http.Cookie{
		Name:     p.cookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(p.expiry.Seconds()),
	}
	c.Response().Headers().Add("Set-Cookie", cookie.String())
	return nil
}

// requestID extracts the session id from the request cookie header.
func (p *Plugin) requestID(c *dispatch.Context) string {
	req := c.Request()
	if req == nil || req.Headers == nil {
		return ""
	}
	probe := http.Request{Header: req.Headers}
	cookie, err := probe.Cookie(p.cookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func newID() string {
	buf := make([]byte, 16)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}

// Value returns a session value, or nil.
func Value(c *dispatch.Context, key string) any {
	data, _ := c.StashValue(stashData).(map[string]any)
	if data == nil {
		return nil
	}
	return data[key]
}

// SetValue stores a session value and marks the session for persistence.
func SetValue(c *dispatch.Context, key string, value any) {
	data, _ := c.StashValue(stashData).(map[string]any)
	if data == nil {
		data = map[string]any{}
		c.SetStash(stashData, data)
	}
	data[key] = value
	c.SetStash(stashDirty, true)
}

// Remove drops a session value.
func Remove(c *dispatch.Context, key string) {
	data, _ := c.StashValue(stashData).(map[string]any)
	if data == nil {
		return
	}
	if _, ok := data[key]; ok {
		delete(data, key)
		c.SetStash(stashDirty, true)
	}
}

// Clear empties the session.
func Clear(c *dispatch.Context) {
	c.SetStash(stashData, map[string]any{})
	c.SetStash(stashDirty, true)
}

// ID returns the session id, or "" before the first persisted write.
func ID(c *dispatch.Context) string {
	id, _ := c.StashValue(stashID).(string)
	return id
}
