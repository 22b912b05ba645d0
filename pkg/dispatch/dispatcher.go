package dispatch

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
)

// Dispatcher owns the dispatch table: controllers, their actions indexed by
// private (reverse) path and by public mount path. It resolves request paths
// to actions, runs the Begin -> Auto -> Action -> End chain, and renders
// paths back from live route data for URI generation.
//
// Registration happens at startup; after that the table is read-only and
// safe for concurrent request dispatch.
type Dispatcher struct {
	logger *slog.Logger

	controllers map[string]*Controller
	byNs        map[string]*Controller
	byReverse   map[string]*Action
	byPath      map[string]*Action
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets the dispatcher's structured logger.
func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDispatcher creates an empty dispatch table.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		controllers: make(map[string]*Controller),
		byNs:        make(map[string]*Controller),
		byReverse:   make(map[string]*Action),
		byPath:      make(map[string]*Action),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register adds a controller and all of its declared actions to the table.
func (d *Dispatcher) Register(ctl *Controller) error {
	if ctl == nil {
		return fmt.Errorf("registering a nil controller")
	}
	if ctl.Name() == "" {
		return fmt.Errorf("controller has no name")
	}
	if _, dup := d.controllers[ctl.Name()]; dup {
		return fmt.Errorf("controller %q already registered", ctl.Name())
	}
	if owner, dup := d.byNs[ctl.Namespace()]; dup {
		return fmt.Errorf("namespace %q already owned by controller %q", ctl.Namespace(), owner.Name())
	}

	actions := make([]*Action, 0, len(ctl.specs))
	seenReverse := make(map[string]bool, len(ctl.specs))
	seenPath := make(map[string]string, len(ctl.specs))
	for i, spec := range ctl.specs {
		if spec.Name == "" {
			return fmt.Errorf("controller %q: action %d has no name", ctl.Name(), i)
		}
		if spec.Captures < 0 {
			return fmt.Errorf("controller %q: action %q has negative captures", ctl.Name(), spec.Name)
		}

		a := &Action{
			name:       spec.Name,
			ns:         ctl.Namespace(),
			reverse:    joinNs(ctl.Namespace(), spec.Name),
			path:       resolvePath(ctl.Namespace(), spec),
			args:       spec.Args,
			captures:   spec.Captures,
			attributes: spec.Attributes,
			controller: ctl,
			handler:    ctl.handlers[i],
		}

		// Duplicates may come from an earlier controller or from this very
		// batch; nothing is committed until the whole batch validates.
		if _, dup := d.byReverse[a.reverse]; dup || seenReverse[a.reverse] {
			return fmt.Errorf("action %q already registered", a.reverse)
		}
		if other, dup := d.byPath[a.path]; dup {
			return fmt.Errorf("path %q already taken by %q", a.path, other.Reverse())
		}
		if other, dup := seenPath[a.path]; dup {
			return fmt.Errorf("path %q already taken by %q", a.path, other)
		}
		seenReverse[a.reverse] = true
		seenPath[a.path] = a.reverse
		actions = append(actions, a)
	}

	d.controllers[ctl.Name()] = ctl
	d.byNs[ctl.Namespace()] = ctl
	for _, a := range actions {
		d.byReverse[a.reverse] = a
		d.byPath[a.path] = a
		d.logger.Debug("registered action",
			"reverse", a.reverse, "path", "/"+a.path,
			"args", a.args, "captures", a.captures)
	}
	ctl.actions = append(ctl.actions, actions...)
	return nil
}

// resolvePath computes the public mount path of an action spec, without a
// leading slash. Empty means "namespace/name"; a leading "/" is absolute;
// anything else is relative to the namespace.
func resolvePath(ns string, spec ActionSpec) string {
	switch {
	case spec.Path == "":
		return joinNs(ns, spec.Name)
	case strings.HasPrefix(spec.Path, "/"):
		return strings.Trim(spec.Path, "/")
	default:
		return joinNs(ns, strings.Trim(spec.Path, "/"))
	}
}

// Controllers returns a snapshot of the registry of controllers by name. The
// table itself is read-only after startup.
func (d *Dispatcher) Controllers() map[string]*Controller {
	out := make(map[string]*Controller, len(d.controllers))
	for name, ctl := range d.controllers {
		out[name] = ctl
	}
	return out
}

// ActionByPath returns the action registered at the given private path
// ("ns/name", leading slash optional), or nil.
func (d *Dispatcher) ActionByPath(path string) *Action {
	return d.byReverse[strings.Trim(path, "/")]
}

// GetAction resolves an action by short name within an exact namespace.
func (d *Dispatcher) GetAction(name, ns string) *Action {
	if name == "" {
		return nil
	}
	return d.byReverse[joinNs(strings.Trim(ns, "/"), name)]
}

// GetActions returns every action named name along the namespace chain from
// the root down to ns, in that order.
func (d *Dispatcher) GetActions(name, ns string) []*Action {
	if name == "" {
		return nil
	}

	var out []*Action
	for _, prefix := range nsChain(ns) {
		if a := d.byReverse[joinNs(prefix, name)]; a != nil {
			out = append(out, a)
		}
	}
	return out
}

// nsChain expands "a/b/c" into ["", "a", "a/b", "a/b/c"].
func nsChain(ns string) []string {
	ns = strings.Trim(ns, "/")
	chain := []string{""}
	if ns == "" {
		return chain
	}
	parts := strings.Split(ns, "/")
	for i := range parts {
		chain = append(chain, strings.Join(parts[:i+1], "/"))
	}
	return chain
}

// ExpandAction gives dispatch types a chance to substitute an action before
// URI generation (a chained dispatcher would return the full chain here).
// A nil action expands to the context's current one.
func (d *Dispatcher) ExpandAction(c *Context, action *Action) *Action {
	if action == nil {
		return c.Action()
	}
	return action
}

// URIForAction renders the public path for an action plus captures, or ""
// when the action is unknown or the capture count does not match.
func (d *Dispatcher) URIForAction(action *Action, captures []string) string {
	if action == nil {
		return ""
	}
	if action.NumberOfCaptures() != len(captures) {
		return ""
	}

	path := "/" + action.Path()
	if len(captures) > 0 {
		if path == "/" {
			path += strings.Join(captures, "/")
		} else {
			path = path + "/" + strings.Join(captures, "/")
		}
	}
	return path
}

// Forward runs another action within the given context as a synchronous
// sub-dispatch. Names resolve relative to the context's current namespace
// unless they start with "/", which addresses a private path absolutely.
func (d *Dispatcher) Forward(c *Context, name string) bool {
	action := d.resolveName(c, name)
	if action == nil {
		c.AppendError(fmt.Sprintf("Couldn't forward to %q: No such action", name))
		c.SetState(false)
		return false
	}
	return c.Execute(action)
}

// ForwardComponent runs an arbitrary component within the given context.
func (d *Dispatcher) ForwardComponent(c *Context, code Component) bool {
	return c.Execute(code)
}

func (d *Dispatcher) resolveName(c *Context, name string) *Action {
	if name == "" {
		return nil
	}
	if strings.HasPrefix(name, "/") {
		return d.byReverse[strings.Trim(name, "/")]
	}
	if strings.Contains(name, "/") {
		return d.byReverse[name]
	}
	return d.GetAction(name, c.Namespace())
}

// Dispatch resolves the request path to an action and runs its chain. An
// unresolvable path records an error, sets 404 and fails the context; this
// is a local failure, not a panic, so the surrounding engine decides how to
// degrade.
func (d *Dispatcher) Dispatch(c *Context) bool {
	req := c.Request()
	action, rest := d.matchPath(req.Path)
	if action == nil {
		c.Response().SetStatus(http.StatusNotFound)
		c.AppendError(fmt.Sprintf("Unknown resource %q", req.Path))
		c.SetState(false)
		return false
	}

	req.Captures = rest[:action.NumberOfCaptures()]
	req.Args = rest[action.NumberOfCaptures():]
	c.setAction(action)

	d.logger.Debug("dispatching",
		"path", req.Path, "action", action.Reverse(),
		"captures", req.Captures, "args", req.Args)

	chain, endAt := d.chainFor(action)
	return d.runChain(c, chain, endAt)
}

// matchPath finds the registered action whose mount is the longest prefix of
// path and which accepts the remaining segments.
func (d *Dispatcher) matchPath(path string) (*Action, []string) {
	trimmed := strings.Trim(path, "/")
	var segments []string
	if trimmed != "" {
		segments = strings.Split(trimmed, "/")
	}

	for i := len(segments); i >= 0; i-- {
		a, ok := d.byPath[strings.Join(segments[:i], "/")]
		if !ok {
			continue
		}
		rest := segments[i:]
		if a.MatchArgs(len(rest)) {
			return a, rest
		}
	}
	return nil, nil
}

// chainFor assembles the execution chain for a matched action: the nearest
// Begin hook, every Auto hook from the root namespace down, the action
// itself, then the nearest End hook. endAt is the index of the cleanup
// component (or the chain length when there is none).
func (d *Dispatcher) chainFor(action *Action) ([]Component, int) {
	ctl := action.Controller()

	var chain []Component
	if begin := d.nearestHook(ctl.Namespace(), hookBegin); begin != nil {
		chain = append(chain, begin)
	}
	for _, prefix := range nsChain(ctl.Namespace()) {
		if owner, ok := d.byNs[prefix]; ok && owner.auto != nil {
			chain = append(chain, owner.auto)
		}
	}
	chain = append(chain, action)
	endAt := len(chain)
	if end := d.nearestHook(ctl.Namespace(), hookEnd); end != nil {
		chain = append(chain, end)
	}
	return chain, endAt
}

type hookKind int

const (
	hookBegin hookKind = iota
	hookEnd
)

// nearestHook walks the namespace chain leaf-first looking for the closest
// Begin or End hook.
func (d *Dispatcher) nearestHook(ns string, kind hookKind) Component {
	chain := nsChain(ns)
	for i := len(chain) - 1; i >= 0; i-- {
		owner, ok := d.byNs[chain[i]]
		if !ok {
			continue
		}
		switch kind {
		case hookBegin:
			if owner.begin != nil {
				return owner.begin
			}
		case hookEnd:
			if owner.end != nil {
				return owner.end
			}
		}
	}
	return nil
}

// runChain executes chain components in order through the context. A failed
// or detached pre-cleanup component skips straight to the cleanup hook. When
// a step leaves the context async-detached, the remaining components are
// queued for replay on AttachAsync and the chain returns immediately.
func (d *Dispatcher) runChain(c *Context, chain []Component, endAt int) bool {
	i := 0
	for i < len(chain) {
		ok := c.Execute(chain[i])
		c.SetState(ok)
		i++

		if c.asyncActive() {
			c.enqueueAsync(chain[i:]...)
			return ok
		}
		if i < endAt && (!ok || c.Detached()) {
			i = endAt
		}
	}
	return c.State()
}

// TableRow describes one public action for introspection (CLI, OpenAPI, MCP).
type TableRow struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
	Reverse   string `json:"reverse"`
	Path      string `json:"path"`
	Args      int    `json:"args"`
	Captures  int    `json:"captures"`
	Doc       string `json:"doc,omitempty"`
}

// Table returns the public dispatch table sorted by path. Internal
// components (controller hooks) are not listed.
func (d *Dispatcher) Table() []TableRow {
	rows := make([]TableRow, 0, len(d.byReverse))
	for _, a := range d.byReverse {
		rows = append(rows, TableRow{
			Name:      a.Name(),
			Namespace: a.Namespace(),
			Reverse:   a.Reverse(),
			Path:      "/" + a.Path(),
			Args:      a.NumberOfArgs(),
			Captures:  a.NumberOfCaptures(),
			Doc:       a.Attribute("doc", ""),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Path < rows[j].Path })
	return rows
}
