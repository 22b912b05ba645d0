package dispatch

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/stash"
)

// DefaultRecursionLimit bounds the action stack when no explicit limit is
// injected. The application resolves the effective limit once at startup
// from its configuration and passes it down via WithRecursionLimit.
const DefaultRecursionLimit = 1000

// Context aggregates all per-request state: request, response, stash, the
// action stack, accumulated errors, locale, async detachment, plus
// non-owning references to the application, dispatcher and transport.
//
// One Context exists per inbound request; it is created when the request
// arrives and discarded after finalization.
type Context struct {
	app        Application
	dispatcher *Dispatcher
	transport  Transport
	stats      ports.Stats
	logger     *slog.Logger
	plugins    []Plugin

	request  *Request
	response *Response
	stash    *stash.Stash

	stack  []Component
	errs   []string
	state  bool
	locale string
	view   View

	action *Action

	recursionLimit int
	detached       bool

	asyncDetached int
	asyncCursor   int
	pendingAsync  []Component
}

// ContextOption configures a new Context.
type ContextOption func(*Context)

// WithLogger sets the context's structured logger.
func WithLogger(logger *slog.Logger) ContextOption {
	return func(c *Context) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithStats attaches a profiling backend. When absent, the execution engine
// skips all profiling bookkeeping.
func WithStats(stats ports.Stats) ContextOption {
	return func(c *Context) { c.stats = stats }
}

// WithRecursionLimit overrides the action stack bound.
func WithRecursionLimit(limit int) ContextOption {
	return func(c *Context) {
		if limit > 0 {
			c.recursionLimit = limit
		}
	}
}

// WithPlugins attaches the application's plugin list to the context.
func WithPlugins(plugins ...Plugin) ContextOption {
	return func(c *Context) { c.plugins = plugins }
}

// WithLocale sets the initial locale (default "en").
func WithLocale(locale string) ContextOption {
	return func(c *Context) {
		if locale != "" {
			c.locale = locale
		}
	}
}

// NewContext creates the per-request context. The context takes ownership of
// req and res; app, dispatcher and transport are non-owning collaborators.
func NewContext(app Application, dispatcher *Dispatcher, transport Transport, req *Request, res *Response, opts ...ContextOption) *Context {
	c := &Context{
		app:            app,
		dispatcher:     dispatcher,
		transport:      transport,
		request:        req,
		response:       res,
		stash:          stash.New(),
		locale:         "en",
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		recursionLimit: DefaultRecursionLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	if req != nil {
		req.ctx = c
	}
	return c
}

// Error reports whether any error was recorded for this request.
func (c *Context) Error() bool { return len(c.errs) > 0 }

// AppendError records an error string. Passing "" resets the list; this is
// the only implicit way the list is ever cleared.
func (c *Context) AppendError(msg string) {
	if msg == "" {
		c.errs = nil
		return
	}
	c.errs = append(c.errs, msg)
	c.logger.Error(msg)
}

// Errors returns the accumulated error strings in order.
func (c *Context) Errors() []string { return c.errs }

// State reports the completion state of the last executed chain component.
func (c *Context) State() bool { return c.state }

// SetState sets the completion state.
func (c *Context) SetState(state bool) { c.state = state }

// App returns the owning application.
func (c *Context) App() Application { return c.app }

// Dispatcher returns the application's dispatcher.
func (c *Context) Dispatcher() *Dispatcher { return c.dispatcher }

// Transport returns the engine transport backing this request.
func (c *Context) Transport() Transport { return c.transport }

// Logger returns the request-scoped logger.
func (c *Context) Logger() *slog.Logger { return c.logger }

// Request returns the inbound request. Req is a short alias.
func (c *Context) Request() *Request { return c.request }
func (c *Context) Req() *Request     { return c.request }

// Response returns the pending response. Res is a short alias.
func (c *Context) Response() *Response { return c.response }
func (c *Context) Res() *Response      { return c.response }

// Action returns the action currently executing, or the matched action when
// no forward is in flight.
func (c *Context) Action() *Action { return c.action }

// ActionName returns the current action's short name.
func (c *Context) ActionName() string {
	if c.action == nil {
		return ""
	}
	return c.action.Name()
}

// Namespace returns the current action's namespace.
func (c *Context) Namespace() string {
	if c.action == nil {
		return ""
	}
	return c.action.Namespace()
}

// Controller returns the current action's controller.
func (c *Context) Controller() *Controller {
	if c.action == nil {
		return nil
	}
	return c.action.Controller()
}

// ControllerByName looks a controller up in the dispatcher's registry.
func (c *Context) ControllerByName(name string) *Controller {
	return c.dispatcher.controllers[name]
}

// Stash returns the request's scratch storage.
func (c *Context) Stash() *stash.Stash { return c.stash }

// SetStash inserts or overwrites a stash entry.
func (c *Context) SetStash(key string, value any) { c.stash.Set(key, value) }

// StashValue fetches a stash entry, or nil.
func (c *Context) StashValue(key string) any { return c.stash.Get(key) }

// StashDefault fetches a stash entry with a fallback.
func (c *Context) StashDefault(key string, def any) any { return c.stash.GetDefault(key, def) }

// StashTake fetches and removes a stash entry.
func (c *Context) StashTake(key string) any { return c.stash.Take(key) }

// StashRemove removes a stash entry, reporting whether it existed.
func (c *Context) StashRemove(key string) bool { return c.stash.Delete(key) }

// MergeStash inserts every entry of values into the stash.
func (c *Context) MergeStash(values map[string]any) { c.stash.Merge(values) }

// Locale returns the request locale.
func (c *Context) Locale() string { return c.locale }

// SetLocale sets the request locale used by Translate.
func (c *Context) SetLocale(locale string) { c.locale = locale }

// Config looks a configuration value up on the application.
func (c *Context) Config(key string, def any) any { return c.app.Config(key, def) }

// ConfigMap returns the application's full configuration mapping.
func (c *Context) ConfigMap() map[string]any { return c.app.ConfigMap() }

// Translate resolves text through the application using the current locale.
func (c *Context) Translate(domain, text string, n int) string {
	return c.app.Translate(c.locale, domain, text, n)
}

// View looks a view up on the application.
func (c *Context) View(name string) View { return c.app.View(name) }

// CustomView returns the view selected for this request, if any.
func (c *Context) CustomView() View { return c.view }

// SetCustomView selects a view by name for this request, reporting whether
// the view exists.
func (c *Context) SetCustomView(name string) bool {
	c.view = c.app.View(name)
	return c.view != nil
}

// Plugins returns the application plugins attached to this context.
func (c *Context) Plugins() []Plugin { return c.plugins }

// Plugin returns an attached plugin by name, or nil.
func (c *Context) Plugin(name string) Plugin {
	for _, p := range c.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// GetAction resolves an action by name and namespace via the dispatcher.
func (c *Context) GetAction(name, ns string) *Action {
	return c.dispatcher.GetAction(name, ns)
}

// GetActions returns all actions named name along the namespace hierarchy.
func (c *Context) GetActions(name, ns string) []*Action {
	return c.dispatcher.GetActions(name, ns)
}

// Forward runs another action within this context as a synchronous
// sub-dispatch and returns its result. Names without a leading slash resolve
// relative to the current namespace.
func (c *Context) Forward(name string) bool {
	return c.dispatcher.Forward(c, name)
}

// ForwardComponent runs a component within this context.
func (c *Context) ForwardComponent(code Component) bool {
	return c.dispatcher.ForwardComponent(c, code)
}

// Detach forwards to a final action, or - when action is nil - marks the
// context as permanently detached from the normal chain: remaining
// non-cleanup components are skipped.
func (c *Context) Detach(action *Action) {
	if action != nil {
		c.dispatcher.ForwardComponent(c, action)
		return
	}
	c.detached = true
}

// Detached reports whether the context left the normal dispatch flow.
func (c *Context) Detached() bool { return c.detached }

// Depth returns the current action stack size.
func (c *Context) Depth() int { return len(c.stack) }

// Stack returns a copy of the component stack, innermost last.
func (c *Context) Stack() []Component {
	out := make([]Component, len(c.stack))
	copy(out, c.stack)
	return out
}

// Execute is the single synchronous entry point through which all
// controller, filter and action logic runs. It pushes the component onto the
// stack, runs it (profiled when stats are attached), pops, and returns the
// component's result. Push and pop are always paired; the deep-recursion
// early return never pushes.
//
// Passing a nil component is a caller bug and panics.
func (c *Context) Execute(code Component) bool {
	if code == nil {
		panic("dispatch: executing a nil component")
	}

	if len(c.stack) >= c.recursionLimit {
		c.AppendError(fmt.Sprintf("Deep recursion detected (stack size %d) calling %s, %s",
			len(c.stack), code.Reverse(), code.Name()))
		c.SetState(false)
		return false
	}

	c.stack = append(c.stack, code)

	var ret bool
	if c.stats != nil {
		label := c.profileLabel(code)
		if label != "" {
			c.stats.ProfileStart(label)
		}

		ret = code.Execute(c)

		// The component might finalize the request before returning, which
		// discards stats, so check again before closing the span.
		if c.stats != nil && label != "" {
			c.stats.ProfileEnd(label)
		}
	} else {
		ret = code.Execute(c)
	}

	c.stack = c.stack[:len(c.stack)-1]

	return ret
}

// profileLabel derives the profiling span label for a component. Internal
// components (name starting with "_") are excluded; nested calls are
// indented proportionally to the stack depth.
func (c *Context) profileLabel(code Component) string {
	if strings.HasPrefix(code.Name(), "_") {
		return ""
	}

	label := code.Reverse()
	if _, ok := code.(*Action); ok {
		label = "/" + label
	}

	if len(c.stack) > 2 {
		label = strings.Repeat(" ", len(c.stack)-2) + "-> " + label
	}

	return label
}

// Finalize completes the request exactly once: it emits the profiling report
// when stats are attached and hands the request back to the transport.
// Finalizing twice is a logged no-op.
func (c *Context) Finalize() {
	if c.transport.Finalized() {
		c.logger.Warn("trying to finalize a finalized request, skipping")
		return
	}

	if c.stats != nil {
		elapsed := c.transport.Elapsed().Seconds()
		rate := "??"
		if elapsed > 0 {
			rate = strconv.FormatFloat(1.0/elapsed, 'f', 3, 64)
		}
		c.logger.Info("request finished",
			"status", c.response.Status(),
			"content_type", c.response.ContentType(),
			"content_length", c.response.ContentLength(),
			"elapsed", fmt.Sprintf("%.6fs", elapsed),
			"rate", rate+"/s")
		if report := c.stats.Report(); report != "" {
			c.logger.Info("request profile", "report", "\n"+report)
		}
		c.stats = nil
	}

	c.transport.Finalize()
}

// setAction pins the matched action on the context at dispatch time.
func (c *Context) setAction(a *Action) { c.action = a }
