package arbor_test

import (
	"errors"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/dispatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTransport struct {
	async         bool
	finalized     bool
	finalizeCalls int
}

func (t *stubTransport) SetAsync()       { t.async = true }
func (t *stubTransport) Async() bool     { return t.async }
func (t *stubTransport) Finalized() bool { return t.finalized }
func (t *stubTransport) Finalize() {
	t.finalized = true
	t.finalizeCalls++
}
func (t *stubTransport) Elapsed() time.Duration { return 0 }

func newRequest(t *testing.T, rawURL string) *dispatch.Request {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return &dispatch.Request{Method: "GET", URI: u, Path: u.Path, Headers: http.Header{}}
}

func handle(t *testing.T, app *arbor.Application, path string) (*stubTransport, *dispatch.Response) {
	t.Helper()
	tr := &stubTransport{}
	res := dispatch.NewResponse()
	app.HandleRequest(tr, newRequest(t, "http://localhost"+path), res)
	return tr, res
}

func TestApplication_HandleRequest(t *testing.T) {
	app, err := arbor.New("blog")
	require.NoError(t, err)

	blog := dispatch.NewController("Blog", "blog")
	blog.Action(dispatch.ActionSpec{Name: "view", Args: 1}, func(c *dispatch.Context) bool {
		c.Response().WriteString("post " + c.Request().Args[0])
		return true
	})
	require.NoError(t, app.Register(blog))

	tr, res := handle(t, app, "/blog/view/7")
	assert.True(t, tr.Finalized())
	assert.Equal(t, 1, tr.finalizeCalls)
	assert.Equal(t, http.StatusOK, res.Status())
	assert.Equal(t, "post 7", res.Body().String())
}

func TestApplication_UnknownPath(t *testing.T) {
	app, err := arbor.New("blog")
	require.NoError(t, err)

	tr, res := handle(t, app, "/missing")
	assert.True(t, tr.Finalized())
	assert.Equal(t, http.StatusNotFound, res.Status())
}

func TestApplication_ConfigFileAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arbor.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: filed\ndispatcher:\n  recursion_limit: 2\n"), 0o644))

	app, err := arbor.New("blog",
		arbor.WithConfigFile(path),
		arbor.WithConfig(map[string]any{"name": "overridden"}),
	)
	require.NoError(t, err)

	assert.Equal(t, "overridden", app.Config("name", ""))
	assert.Equal(t, 2, app.Settings().Dispatcher.RecursionLimit)
	assert.Equal(t, "fallback", app.Config("absent.key", "fallback"))
}

func TestApplication_RecursionLimitFromConfig(t *testing.T) {
	app, err := arbor.New("blog", arbor.WithConfig(map[string]any{
		"dispatcher": map[string]any{"recursion_limit": 2},
	}))
	require.NoError(t, err)

	loop := dispatch.NewController("Loop", "loop")
	loop.Action(dispatch.ActionSpec{Name: "spin"}, func(c *dispatch.Context) bool {
		return c.Forward("spin")
	})
	require.NoError(t, app.Register(loop))

	_, res := handle(t, app, "/loop/spin")
	assert.Equal(t, http.StatusOK, res.Status(), "recursion failure is an application error, not a transport one")
}

func TestApplication_Translate(t *testing.T) {
	app, err := arbor.New("blog", arbor.WithTranslations("pt-BR", "ui", map[string]arbor.Translation{
		"Hello":  {Singular: "Olá"},
		"%d new": {Singular: "%d novo", Plural: "%d novos"},
	}))
	require.NoError(t, err)

	assert.Equal(t, "Olá", app.Translate("pt-BR", "ui", "Hello", 1))
	assert.Equal(t, "%d novo", app.Translate("pt-BR", "ui", "%d new", 1))
	assert.Equal(t, "%d novos", app.Translate("pt-BR", "ui", "%d new", 3))
	assert.Equal(t, "Hello", app.Translate("en", "ui", "Hello", 1), "unknown locale falls back to the text")
}

type failingPlugin struct{}

func (failingPlugin) Name() string { return "broken" }
func (failingPlugin) SetupContext(c *dispatch.Context) error {
	return errors.New("no backend")
}

func TestApplication_PluginSetupFailure(t *testing.T) {
	app, err := arbor.New("blog", arbor.WithPlugin(failingPlugin{}))
	require.NoError(t, err)

	hit := false
	blog := dispatch.NewController("Blog", "blog")
	blog.Action(dispatch.ActionSpec{Name: "index", Path: "/blog"}, func(c *dispatch.Context) bool {
		hit = true
		return true
	})
	require.NoError(t, app.Register(blog))

	tr, res := handle(t, app, "/blog")
	assert.False(t, hit, "dispatch must not run when plugin setup fails")
	assert.True(t, tr.Finalized())
	assert.Equal(t, http.StatusInternalServerError, res.Status())
}

func TestApplication_AfterDispatchHooks(t *testing.T) {
	var order []string
	app, err := arbor.New("blog",
		arbor.OnAfterDispatch(func(c *dispatch.Context) { order = append(order, "first") }),
		arbor.OnAfterDispatch(func(c *dispatch.Context) { order = append(order, "second") }),
	)
	require.NoError(t, err)

	blog := dispatch.NewController("Blog", "blog")
	blog.Action(dispatch.ActionSpec{Name: "index", Path: "/blog"}, func(c *dispatch.Context) bool {
		order = append(order, "action")
		return true
	})
	require.NoError(t, app.Register(blog))

	handle(t, app, "/blog")
	assert.Equal(t, []string{"action", "first", "second"}, order)
}

func TestApplication_AsyncCompletion(t *testing.T) {
	hooks := 0
	app, err := arbor.New("blog",
		arbor.OnAfterDispatch(func(c *dispatch.Context) { hooks++ }),
	)
	require.NoError(t, err)

	var detached *dispatch.Context
	slow := dispatch.NewController("Slow", "slow")
	slow.Action(dispatch.ActionSpec{Name: "job"}, func(c *dispatch.Context) bool {
		detached = c
		c.DetachAsync()
		return true
	})
	require.NoError(t, app.Register(slow))

	tr, res := handle(t, app, "/slow/job")
	require.NotNil(t, detached)
	assert.False(t, tr.Finalized(), "detached request must not finalize on return")
	assert.Zero(t, hooks)

	detached.Response().WriteString("late")
	detached.AttachAsync()

	assert.True(t, tr.Finalized())
	assert.Equal(t, 1, hooks)
	assert.Equal(t, "late", res.Body().String())
}

func TestApplication_Views(t *testing.T) {
	app, err := arbor.New("blog", arbor.WithView(&jsonView{}))
	require.NoError(t, err)

	assert.NotNil(t, app.View("json"))
	assert.Nil(t, app.View("xml"))
}

type jsonView struct{}

func (jsonView) Name() string                     { return "json" }
func (jsonView) Render(c *dispatch.Context) error { return nil }
