package dispatch

import "strings"

// ActionSpec declares an action on a controller.
type ActionSpec struct {
	// Name is the action's short name, required.
	Name string

	// Path mounts the action at a public path. Empty means the default
	// "namespace/name"; a leading "/" is absolute; anything else is relative
	// to the controller namespace.
	Path string

	// Args is the exact number of trailing positional arguments, or
	// VariableArgs. The zero value means the action takes none.
	Args int

	// Captures is the number of leading path segments the action captures
	// before its positional arguments.
	Captures int

	// Attributes carries free-form registration metadata (e.g. a doc string
	// surfaced in the dispatch table).
	Attributes map[string]string
}

// Controller groups actions under a namespace and optionally contributes
// Begin/Auto/End hooks to the dispatch chain. Hooks are internal components
// (their names start with "_") and never appear in the public dispatch table.
type Controller struct {
	name string
	ns   string

	specs    []ActionSpec
	handlers []HandlerFunc

	// actions is filled by Dispatcher.Register once the specs validate.
	actions []*Action

	begin Component
	auto  Component
	end   Component
}

// NewController creates a controller. The namespace must not carry leading
// or trailing slashes; the root namespace is "".
func NewController(name, ns string) *Controller {
	return &Controller{name: name, ns: strings.Trim(ns, "/")}
}

func (ctl *Controller) Name() string      { return ctl.name }
func (ctl *Controller) Namespace() string { return ctl.ns }

// Actions returns the actions registered for this controller, in declaration
// order. Empty until the controller passes Dispatcher.Register.
func (ctl *Controller) Actions() []*Action {
	out := make([]*Action, len(ctl.actions))
	copy(out, ctl.actions)
	return out
}

// Action declares an action. Validation happens at Dispatcher.Register time.
// Returns the controller for chaining.
func (ctl *Controller) Action(spec ActionSpec, h HandlerFunc) *Controller {
	ctl.specs = append(ctl.specs, spec)
	ctl.handlers = append(ctl.handlers, h)
	return ctl
}

// Begin installs the hook executed before every action in this namespace.
func (ctl *Controller) Begin(h HandlerFunc) *Controller {
	ctl.begin = NewComponentFunc("_BEGIN", joinNs(ctl.ns, "_BEGIN"), h)
	return ctl
}

// Auto installs the hook executed after Begin for this namespace and every
// namespace below it. An Auto returning false skips straight to End.
func (ctl *Controller) Auto(h HandlerFunc) *Controller {
	ctl.auto = NewComponentFunc("_AUTO", joinNs(ctl.ns, "_AUTO"), h)
	return ctl
}

// End installs the cleanup hook, executed even when earlier components fail.
func (ctl *Controller) End(h HandlerFunc) *Controller {
	ctl.end = NewComponentFunc("_END", joinNs(ctl.ns, "_END"), h)
	return ctl
}

func joinNs(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + "/" + name
}
