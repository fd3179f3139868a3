package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/resource-api/internal/api/http"
	"github.com/spec-kit/resource-api/internal/api/http/handlers"
	"github.com/spec-kit/resource-api/internal/auth"
	"github.com/spec-kit/resource-api/internal/config"
	"github.com/spec-kit/resource-api/internal/dispatch"
	"github.com/spec-kit/resource-api/internal/domain"
	"github.com/spec-kit/resource-api/internal/events"
	"github.com/spec-kit/resource-api/internal/observability"
	"github.com/spec-kit/resource-api/internal/persistence"
	"github.com/spec-kit/resource-api/internal/resource"
	"github.com/spec-kit/resource-api/internal/schema"
	"github.com/spec-kit/resource-api/internal/service"
	"github.com/spec-kit/resource-api/internal/store"
	"github.com/spec-kit/resource-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var backend store.Store
	if pool := pg.PoolHandle(); pool != nil {
		backend = store.NewPostgres(pool)
	} else {
		backend = store.NewMemory()
	}
	backend = store.WithTimeout(backend, cfg.App.StoreTimeout())

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(dispatcher, logger)

	tokenStrategy := auth.NewTokenStrategy(cfg.Auth.Secret, cfg.Auth.TokenTTLMinutes, auth.NewRedisDenylist(redis.Client))
	sessionStrategy := auth.NewSessionStrategy(cfg.Auth.Secret, cfg.Auth.CookieTTLMinutes)

	var issuing auth.Strategy = tokenStrategy
	if cfg.Auth.Mode == config.AuthModeCookie {
		issuing = sessionStrategy
	}
	authService := service.NewAuthService(backend, issuing, dispatcher, cfg.Auth.PBKDF2Iterations)
	gate := auth.NewGate(tokenStrategy, sessionStrategy, cfg.Auth.CookieName, cfg.Auth.BearerPrecedence)

	crud := resource.NewService(backend, dispatcher)
	registry := resource.NewRegistry(crud)
	for _, def := range resourceDefinitions() {
		if err := registry.Register(def); err != nil {
			logger.Fatal("failed to register resource", zap.Error(err))
		}
	}

	routes := dispatch.NewDispatcher()
	if err := registry.Mount(routes); err != nil {
		logger.Fatal("failed to mount resource routes", zap.Error(err))
	}

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{DisableStartupMessage: cfg.App.Env == "production"})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:      handlers.NewAuthHandler(authService, cfg.Auth.Mode, cfg.Auth.CookieName),
		Resources: handlers.NewResourcesHandler(routes),
		Gate:      gate,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// resourceDefinitions declares the resource types this deployment serves.
func resourceDefinitions() []resource.Definition {
	return []resource.Definition{
		{
			Name:       "contacts",
			PublicRead: true,
			Schema: schema.Schema{Fields: []schema.Field{
				{Name: "name", Type: schema.TypeString, Required: true, MinLen: schema.IntPtr(1), MaxLen: schema.IntPtr(120)},
				{Name: "email", Type: schema.TypeString, Required: true, Unique: true, Format: schema.FormatEmail},
				{Name: "phone", Type: schema.TypeString, MaxLen: schema.IntPtr(32)},
			}},
		},
		{
			Name:            "orders",
			WritePermission: domain.PermissionWrite,
			Schema: schema.Schema{Fields: []schema.Field{
				{Name: "item", Type: schema.TypeString, Required: true, MinLen: schema.IntPtr(1)},
				{Name: "quantity", Type: schema.TypeInt, Required: true, Min: schema.FloatPtr(1)},
				{Name: "status", Type: schema.TypeString, Default: "pending", Enum: []string{"pending", "paid", "shipped", "cancelled"}},
				{Name: "notes", Type: schema.TypeString, MaxLen: schema.IntPtr(500)},
			}},
		},
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
