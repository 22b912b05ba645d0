package dispatch

// HandlerFunc is the execution logic of a component. It returns false to
// signal that the current chain should stop after cleanup.
type HandlerFunc func(c *Context) bool

// Component is a polymorphic unit of execution. Action is the main variant;
// lightweight filters (controller Begin/Auto/End hooks) are ComponentFuncs.
//
// Components whose Name starts with "_" are considered internal and are
// excluded from profiling.
type Component interface {
	// Execute runs the component against the given context.
	Execute(c *Context) bool

	// Name is the component's short identity (e.g. "edit", "_BEGIN").
	Name() string

	// Reverse is the canonical private path (e.g. "blog/edit").
	Reverse() string
}

// ComponentFunc wraps a HandlerFunc into a named Component.
type ComponentFunc struct {
	name    string
	reverse string
	fn      HandlerFunc
}

// NewComponentFunc builds a Component from a function.
func NewComponentFunc(name, reverse string, fn HandlerFunc) *ComponentFunc {
	return &ComponentFunc{name: name, reverse: reverse, fn: fn}
}

func (f *ComponentFunc) Execute(c *Context) bool { return f.fn(c) }
func (f *ComponentFunc) Name() string            { return f.name }
func (f *ComponentFunc) Reverse() string         { return f.reverse }
