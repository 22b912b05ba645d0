package demo_test

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/internal/demo"
	"github.com/aretw0/arbor/internal/logging"
	httpAdapter "github.com/aretw0/arbor/pkg/adapters/http"
)

func newDemoServer(t *testing.T, configYAML string) *httptest.Server {
	t.Helper()

	path := filepath.Join(t.TempDir(), "arbor.yaml")
	if configYAML != "" {
		require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o644))
	}

	app, registry, err := demo.New(logging.NewNop(), path)
	require.NoError(t, err)

	opts := []httpAdapter.Option{}
	if registry != nil {
		opts = append(opts, httpAdapter.WithMetrics(registry))
	}
	srv := httptest.NewServer(httpAdapter.NewHandler(app, opts...))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, client *http.Client, url string) (int, string) {
	t.Helper()
	res, err := client.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, string(body)
}

func TestDemo_VisitCounter(t *testing.T) {
	srv := newDemoServer(t, "")

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	status, body := get(t, client, srv.URL+"/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Welcome, visitor (1 visit)")

	_, body = get(t, client, srv.URL+"/")
	assert.Contains(t, body, "Welcome, visitor (2 visit)")
}

func TestDemo_BlogPosts(t *testing.T) {
	srv := newDemoServer(t, "")
	client := srv.Client()

	status, body := get(t, client, srv.URL+"/blog")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "/blog/view/1")
	assert.Contains(t, body, "/blog/view/3")

	status, body = get(t, client, srv.URL+"/blog/view/2")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "# Sessions without a framework\n", body)

	status, body = get(t, client, srv.URL+"/blog/view/99")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "no such post: 99")

	res, err := client.Get(srv.URL + "/blog/api")
	require.NoError(t, err)
	apiBody, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
	assert.Contains(t, string(apiBody), "Growing a dispatch tree")

	status, body = get(t, client, srv.URL+"/blog/archive/2024/march")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "archive filter: 2024/march")
}

func TestDemo_EncryptedSessions(t *testing.T) {
	srv := newDemoServer(t, "session:\n  secret: rotate-me\n")

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	_, body := get(t, client, srv.URL+"/")
	assert.Contains(t, body, "(1 visit)")

	_, body = get(t, client, srv.URL+"/")
	assert.Contains(t, body, "(2 visit")
}

func TestDemo_PrometheusBackend(t *testing.T) {
	srv := newDemoServer(t, "stats:\n  enabled: true\n  backend: prometheus\n")
	client := srv.Client()

	status, _ := get(t, client, srv.URL+"/blog")
	require.Equal(t, http.StatusOK, status)

	status, body := get(t, client, srv.URL+"/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "arbor_dispatch_action_duration_seconds")
}

func TestDemo_UnknownSessionStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arbor.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session:\n  store: vault\n"), 0o644))

	_, _, err := demo.New(logging.NewNop(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown session store "vault"`)
}
