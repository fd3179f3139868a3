package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/resource-api/internal/api/http/handlers"
	"github.com/spec-kit/resource-api/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Auth      *handlers.AuthHandler
	Resources *handlers.ResourcesHandler
	Gate      *auth.Gate
}

// RegisterRoutes wires HTTP routes. The auth gate runs on every route but
// never blocks; handlers decide whether anonymous access is acceptable.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Use(cfg.Gate.Handle)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", auth.RequirePrincipal(), cfg.Auth.Logout)
	authGroup.Get("/me", auth.RequirePrincipal(), cfg.Auth.Me)

	app.All("/api/v1/*", cfg.Resources.Handle)
}
