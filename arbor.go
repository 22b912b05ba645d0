package arbor

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/config"
	"github.com/aretw0/arbor/pkg/dispatch"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/stats"
)

// Application is the high-level entry point for the Arbor library. It owns
// the dispatch table, configuration, views, plugins and translations, and
// turns transport-level requests into dispatched contexts.
type Application struct {
	name       string
	logger     *slog.Logger
	dispatcher *dispatch.Dispatcher

	configFile string
	configMap  map[string]any
	settings   config.Settings

	views        map[string]dispatch.View
	plugins      []dispatch.Plugin
	translations map[translationKey]Translation
	afterHooks   []func(*dispatch.Context)

	statsFactory func() ports.Stats

	recursionLimit int
}

// Translation is one catalog entry. Plural is used when the count differs
// from one; an empty Plural falls back to Singular.
type Translation struct {
	Singular string
	Plural   string
}

type translationKey struct {
	locale string
	domain string
	text   string
}

// Option defines a functional option for configuring the Application.
type Option func(*Application)

// WithLogger sets a custom structured logger for the application.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Application) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithConfig merges raw configuration values over whatever a config file
// provided.
func WithConfig(values map[string]any) Option {
	return func(a *Application) {
		for k, v := range values {
			a.configMap[k] = v
		}
	}
}

// WithConfigFile loads configuration from a YAML file. A missing file leaves
// the defaults in place.
func WithConfigFile(path string) Option {
	return func(a *Application) { a.configFile = path }
}

// WithStats installs a per-request profiler factory. Each request gets one
// profiler; its report is logged when the request finalizes.
func WithStats(factory func() ports.Stats) Option {
	return func(a *Application) { a.statsFactory = factory }
}

// WithView registers a named view.
func WithView(v dispatch.View) Option {
	return func(a *Application) {
		if v != nil {
			a.views[v.Name()] = v
		}
	}
}

// WithPlugin attaches a plugin; its SetupContext runs for every request.
func WithPlugin(p dispatch.Plugin) Option {
	return func(a *Application) {
		if p != nil {
			a.plugins = append(a.plugins, p)
		}
	}
}

// WithTranslations loads a catalog for a locale and text domain.
func WithTranslations(locale, domain string, entries map[string]Translation) Option {
	return func(a *Application) {
		for text, tr := range entries {
			a.translations[translationKey{locale, domain, text}] = tr
		}
	}
}

// OnAfterDispatch registers a hook that runs once per request after its chain
// completes, before finalization. Session persistence hangs off this.
func OnAfterDispatch(fn func(*dispatch.Context)) Option {
	return func(a *Application) {
		if fn != nil {
			a.afterHooks = append(a.afterHooks, fn)
		}
	}
}

// New initializes an Application. The recursion limit and stats backend are
// resolved from configuration once, here; requests never consult the
// environment.
func New(name string, opts ...Option) (*Application, error) {
	a := &Application{
		name:         name,
		logger:       logging.NewNop(),
		configMap:    map[string]any{},
		views:        map[string]dispatch.View{},
		translations: map[translationKey]Translation{},
	}

	// First pass so WithConfigFile can register the path before WithConfig
	// overrides land on top of the file contents.
	for _, opt := range opts {
		opt(a)
	}

	if a.configFile != "" {
		loaded, err := config.Load(a.configFile)
		if err != nil {
			return nil, fmt.Errorf("loading config for %q: %w", name, err)
		}
		for k, v := range a.configMap {
			loaded[k] = v
		}
		a.configMap = loaded
	}

	settings, err := config.Decode(a.configMap)
	if err != nil {
		return nil, fmt.Errorf("decoding config for %q: %w", name, err)
	}
	a.settings = settings
	a.recursionLimit = settings.Dispatcher.RecursionLimit

	if a.statsFactory == nil && settings.Stats.Enabled {
		a.statsFactory = func() ports.Stats { return stats.NewMemory() }
	}

	a.dispatcher = dispatch.NewDispatcher(dispatch.WithDispatcherLogger(a.logger))
	a.logger = a.logger.With("app", a.name)
	return a, nil
}

// Name returns the application name.
func (a *Application) Name() string { return a.name }

// Dispatcher exposes the dispatch table for registration and introspection.
func (a *Application) Dispatcher() *dispatch.Dispatcher { return a.dispatcher }

// Settings returns the decoded typed configuration.
func (a *Application) Settings() config.Settings { return a.settings }

// Register adds a controller to the dispatch table.
func (a *Application) Register(ctl *dispatch.Controller) error {
	return a.dispatcher.Register(ctl)
}

// Config resolves a dotted configuration key, returning def when absent.
func (a *Application) Config(key string, def any) any {
	return config.Lookup(a.configMap, key, def)
}

// ConfigMap returns the raw configuration.
func (a *Application) ConfigMap() map[string]any { return a.configMap }

// Translate resolves text in the catalog for locale and domain. Unknown
// entries fall back to the text itself, pluralized entries switch on n.
func (a *Application) Translate(locale, domain, text string, n int) string {
	tr, ok := a.translations[translationKey{locale, domain, text}]
	if !ok {
		return text
	}
	if n != 1 && tr.Plural != "" {
		return tr.Plural
	}
	return tr.Singular
}

// View returns a registered view by name, or nil.
func (a *Application) View(name string) dispatch.View { return a.views[name] }

// AfterDispatch runs the registered hooks and logs the request outcome. The
// engine calls it exactly once per request, whether the chain completed
// synchronously or drained through async resumption.
func (a *Application) AfterDispatch(c *dispatch.Context) {
	for _, hook := range a.afterHooks {
		hook(c)
	}

	if c.Error() {
		a.logger.Error("request finished with errors",
			"path", c.Request().Path,
			"status", c.Response().Status(),
			"errors", c.Errors())
		return
	}
	a.logger.Debug("request finished",
		"path", c.Request().Path,
		"action", c.ActionName(),
		"status", c.Response().Status(),
		"elapsed", c.Transport().Elapsed())
}

// HandleRequest runs one request through plugin setup and the dispatch chain.
// Synchronous requests finalize before it returns; detached requests finalize
// later, when the last AttachAsync drains the pending chain.
func (a *Application) HandleRequest(tr dispatch.Transport, req *dispatch.Request, res *dispatch.Response) {
	opts := []dispatch.ContextOption{
		dispatch.WithLogger(a.logger),
		dispatch.WithRecursionLimit(a.recursionLimit),
		dispatch.WithPlugins(a.plugins...),
	}
	if a.statsFactory != nil {
		opts = append(opts, dispatch.WithStats(a.statsFactory()))
	}
	c := dispatch.NewContext(a, a.dispatcher, tr, req, res, opts...)

	for _, p := range a.plugins {
		if err := p.SetupContext(c); err != nil {
			a.logger.Error("plugin setup failed", "plugin", p.Name(), "err", err)
			c.AppendError(fmt.Sprintf("Plugin %q failed: %s", p.Name(), err))
			res.SetStatus(http.StatusInternalServerError)
			c.SetState(false)
			a.AfterDispatch(c)
			c.Finalize()
			return
		}
	}

	a.dispatcher.Dispatch(c)

	if !tr.Async() {
		a.AfterDispatch(c)
		c.Finalize()
	}
}
