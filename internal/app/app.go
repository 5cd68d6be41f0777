// Package app wires configuration into a running analysis pipeline and HTTP
// router. It is shared by the server and the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kiranshivaraju/medequip/internal/analysis"
	"github.com/kiranshivaraju/medequip/internal/api"
	"github.com/kiranshivaraju/medequip/internal/api/handler"
	mw "github.com/kiranshivaraju/medequip/internal/api/middleware"
	"github.com/kiranshivaraju/medequip/internal/cache"
	"github.com/kiranshivaraju/medequip/internal/config"
	"github.com/kiranshivaraju/medequip/internal/heuristic"
	"github.com/kiranshivaraju/medequip/internal/knowledge"
	"github.com/kiranshivaraju/medequip/internal/store"
	"github.com/kiranshivaraju/medequip/internal/vision"
)

// App holds the long-lived components built from a Config. Store and Cache
// are nil when their backing service is not configured.
type App struct {
	Config  *config.Config
	Service *analysis.Service
	Store   store.Store
	Cache   cache.Cache

	closers []func()
}

// Option adjusts how New builds the App.
type Option func(*options)

type options struct {
	model       analysis.ModelClassifier
	modelSet    bool
	skipBacking bool
}

// WithModel replaces the configured vision model. A nil model forces
// heuristic-only analysis.
func WithModel(m analysis.ModelClassifier) Option {
	return func(o *options) {
		o.model = m
		o.modelSet = true
	}
}

// WithoutBackingServices skips Postgres and Redis even when configured.
func WithoutBackingServices() Option {
	return func(o *options) { o.skipBacking = true }
}

// New connects the configured backing services and builds the analysis
// service. Call Close when done.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Config: cfg}

	if !o.skipBacking {
		if err := a.connect(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}

	model := o.model
	if !o.modelSet {
		client, err := vision.NewFromConfig(ctx, cfg.Vision)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("create vision client: %w", err)
		}
		if client != nil {
			model = client
			slog.Info("vision model configured", "provider", client.Name(), "model", client.Model())
		} else {
			slog.Warn("no vision model credential configured, using heuristic analysis only", "provider", cfg.Vision.Provider)
		}
	}

	if model != nil && a.Cache != nil {
		if mc, ok := model.(vision.ModelClassifier); ok {
			model = vision.NewCachedClassifier(mc, a.Cache, cfg.Redis.ClassificationTTL)
		}
	}

	a.Service = analysis.NewService(model, heuristic.New(), analysis.NewAssembler(knowledge.Default()))
	return a, nil
}

func (a *App) connect(ctx context.Context) error {
	cfg := a.Config

	if cfg.Database.Enabled() {
		pool, err := store.Connect(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		slog.Info("database connected")

		if err := store.RunMigrations(cfg.Database.URL); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		slog.Info("database migrations applied")

		a.Store = store.NewPostgresStore(pool)
	}

	if cfg.Redis.Enabled() {
		redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("create redis cache: %w", err)
		}
		a.closers = append(a.closers, func() { _ = redisCache.Close() })

		if err := redisCache.Ping(ctx); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		slog.Info("redis connected")

		a.Cache = redisCache
	}

	return nil
}

// Router builds the HTTP API. Authentication is enabled only when a store is
// present; rate limiting only when a cache is.
func (a *App) Router() http.Handler {
	services := map[string]handler.Pinger{}
	deps := api.Dependencies{
		AnalyzeHandler: handler.NewAnalyzeHandler(a.Service, a.Config.Upload.MaxBytes),
	}

	if a.Store != nil {
		keys := handler.NewKeys(a.Store)
		deps.Auth = mw.NewAuth(a.Store)
		deps.CreateKeyHandler = keys.Create
		deps.ListKeysHandler = keys.List
		deps.RevokeKeyHandler = keys.Revoke
		services["database"] = a.Store
	}
	if a.Cache != nil {
		deps.RateLimit = mw.NewRateLimit(a.Cache, a.Config.Redis.RateLimitPerMinute)
		services["cache"] = a.Cache
	}
	deps.HealthHandler = handler.NewHealthHandler(a.Service, services)

	return api.NewRouter(deps)
}

// Close releases backing service connections in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
