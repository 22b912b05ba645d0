package dispatch

// VariableArgs marks an action that consumes any number of trailing
// positional arguments.
const VariableArgs = -1

// Action identifies a dispatchable unit: a named handler owned by a
// controller, matched at a public path and addressable by its reverse
// (private) path. Actions are immutable after registration; the dispatch
// table owns them, contexts and stacks only hold references.
type Action struct {
	name       string
	ns         string
	reverse    string
	path       string // public path, no leading slash; "" is the root
	args       int    // exact trailing args, or VariableArgs
	captures   int
	attributes map[string]string
	controller *Controller
	handler    HandlerFunc
}

func (a *Action) Name() string      { return a.name }
func (a *Action) Namespace() string { return a.ns }

// Reverse returns the canonical private path ("ns/name").
func (a *Action) Reverse() string { return a.reverse }

// Path returns the public path the action is mounted at, without a leading
// slash. The root action has an empty path.
func (a *Action) Path() string { return a.path }

// NumberOfArgs returns the exact number of trailing positional arguments the
// action consumes, or VariableArgs.
func (a *Action) NumberOfArgs() int { return a.args }

// NumberOfCaptures returns how many leading path segments the action
// captures before its positional arguments.
func (a *Action) NumberOfCaptures() int { return a.captures }

// Attribute returns a registration attribute, or def when absent.
func (a *Action) Attribute(key, def string) string {
	if v, ok := a.attributes[key]; ok {
		return v
	}
	return def
}

// Controller returns the owning controller (non-owning reference).
func (a *Action) Controller() *Controller { return a.controller }

// MatchArgs reports whether the action accepts count trailing path segments
// (captures plus positional arguments).
func (a *Action) MatchArgs(count int) bool {
	if a.args == VariableArgs {
		return count >= a.captures
	}
	return count == a.captures+a.args
}

// Execute runs the action's handler, making it the context's current action
// for the duration of the call so that namespace-relative lookups and URI
// generation follow forwards correctly.
func (a *Action) Execute(c *Context) bool {
	prev := c.action
	c.action = a
	defer func() { c.action = prev }()
	return a.handler(c)
}
