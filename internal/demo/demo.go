// Package demo assembles the sample blog application served by the arbor CLI.
// It wires sessions, per-request profiling and a couple of controllers so the
// serve, routes and mcp commands have a real dispatch table to work with.
package demo

import (
	"crypto/sha256"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	redisstore "github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/config"
	"github.com/aretw0/arbor/pkg/dispatch"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/aretw0/arbor/pkg/stats"
	"github.com/aretw0/arbor/pkg/views"
)

// New builds the demo application from a config file. The returned registry
// is nil unless the configuration selects the prometheus stats backend.
func New(logger *slog.Logger, configFile string) (*arbor.Application, *prometheus.Registry, error) {
	raw, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}
	settings, err := config.Decode(raw)
	if err != nil {
		return nil, nil, err
	}

	store, err := sessionStore(settings)
	if err != nil {
		return nil, nil, err
	}
	sessions := session.New(store,
		session.WithLogger(logger),
		session.WithExpiry(settings.Session.Expiry),
	)

	opts := []arbor.Option{
		arbor.WithLogger(logger),
		arbor.WithConfig(raw),
		arbor.WithView(&views.JSON{}),
		arbor.WithPlugin(sessions),
		arbor.OnAfterDispatch(func(c *dispatch.Context) {
			if err := sessions.Persist(c); err != nil {
				logger.Error("session persist failed", "err", err)
			}
		}),
		arbor.WithTranslations("pt-BR", "blog", map[string]arbor.Translation{
			"Welcome, visitor": {Singular: "Bem-vindo, visitante"},
			"%d visit":         {Singular: "%d visita", Plural: "%d visitas"},
		}),
	}

	var registry *prometheus.Registry
	if settings.Stats.Enabled && settings.Stats.Backend == "prometheus" {
		registry = prometheus.NewRegistry()
		collector := stats.NewPrometheus(registry)
		opts = append(opts, arbor.WithStats(func() ports.Stats { return collector.PerRequest() }))
	}

	app, err := arbor.New(settings.Name, opts...)
	if err != nil {
		return nil, nil, err
	}
	if err := registerControllers(app); err != nil {
		return nil, nil, err
	}
	return app, registry, nil
}

func sessionStore(settings config.Settings) (ports.SessionStore, error) {
	var store ports.SessionStore
	switch settings.Session.Store {
	case "", "memory":
		store = memory.New(memory.WithTTL(settings.Session.Expiry))
	case "redis":
		store = redisstore.New(settings.Session.Addr, "", 0,
			redisstore.WithTTL(settings.Session.Expiry))
	default:
		return nil, fmt.Errorf("unknown session store %q", settings.Session.Store)
	}

	if secret := settings.Session.Secret; secret != "" {
		key := sha256.Sum256([]byte(secret))
		store = middleware.NewEncryption(middleware.EncryptionConfig{
			ActiveKey: key[:],
		})(store)
	}
	return store, nil
}

func registerControllers(app *arbor.Application) error {
	if err := app.Register(rootController()); err != nil {
		return err
	}
	return app.Register(blogController())
}
