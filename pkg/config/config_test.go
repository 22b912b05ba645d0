package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
name: blog
server:
  addr: ":8080"
  shutdown_timeout: 30s
dispatcher:
  recursion_limit: 50
session:
  store: redis
  addr: "localhost:6379"
  expiry: 1h
  secret: rotate-me
stats:
  enabled: true
  backend: prometheus
`

func TestLoad_MissingFileYieldsEmptyMap(t *testing.T) {
	raw, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestLoad_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arbor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	raw, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "blog", raw["name"])
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := config.Parse([]byte("{nope: ["))
	assert.Error(t, err)
}

func TestDecode_OverridesDefaults(t *testing.T) {
	raw, err := config.Parse([]byte(sampleYAML))
	require.NoError(t, err)

	s, err := config.Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, "blog", s.Name)
	assert.Equal(t, ":8080", s.Server.Addr)
	assert.Equal(t, 30*time.Second, s.Server.ShutdownTimeout)
	assert.Equal(t, 50, s.Dispatcher.RecursionLimit)
	assert.Equal(t, "redis", s.Session.Store)
	assert.Equal(t, time.Hour, s.Session.Expiry)
	assert.Equal(t, "rotate-me", s.Session.Secret)
	assert.True(t, s.Stats.Enabled)
	assert.Equal(t, "prometheus", s.Stats.Backend)
}

func TestDecode_EmptyKeepsDefaults(t *testing.T) {
	s, err := config.Decode(map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, config.Default(), s)
}

func TestDefault(t *testing.T) {
	s := config.Default()
	assert.Equal(t, ":3000", s.Server.Addr)
	assert.Equal(t, 1000, s.Dispatcher.RecursionLimit)
	assert.Equal(t, "memory", s.Session.Store)
}

func TestLookup(t *testing.T) {
	raw, err := config.Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "blog", config.Lookup(raw, "name", "fallback"))
	assert.Equal(t, 50, config.Lookup(raw, "dispatcher.recursion_limit", 0))
	assert.Equal(t, ":8080", config.Lookup(raw, "server.addr", ""))

	assert.Equal(t, "d", config.Lookup(raw, "server.missing", "d"))
	assert.Equal(t, "d", config.Lookup(raw, "name.nested", "d"), "scalar cannot be descended into")
	assert.Equal(t, "d", config.Lookup(raw, "", "d"))
	assert.Equal(t, "d", config.Lookup(nil, "anything", "d"))
}
