package dispatch

// Application is the context's view of the owning application: configuration,
// translation, view lookup and the after-dispatch notification. The concrete
// implementation lives in the root arbor package.
type Application interface {
	// Config returns the configuration value for key, or def when absent.
	Config(key string, def any) any

	// ConfigMap returns the full configuration mapping.
	ConfigMap() map[string]any

	// Translate resolves text in the given locale and domain; n selects a
	// plural form. Unknown entries return text unchanged.
	Translate(locale, domain, text string, n int) string

	// View returns a registered view by name, or nil.
	View(name string) View

	// AfterDispatch is fired once per completed request chain, including
	// async-resumed chains.
	AfterDispatch(c *Context)
}

// View renders a context's stash into its response.
type View interface {
	Name() string
	Render(c *Context) error
}

// Plugin hooks into context creation. Plugins are registered on the
// application and shared across requests, so they must keep per-request
// state in the context's stash.
type Plugin interface {
	Name() string

	// SetupContext prepares the plugin for a new request context.
	SetupContext(c *Context) error
}
