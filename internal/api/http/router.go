package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/line-menu-bot/internal/api/http/handlers"
	"github.com/spec-kit/line-menu-bot/internal/auth"
	"github.com/spec-kit/line-menu-bot/internal/storage"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Webhook        *handlers.WebhookHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	// ContentDir is served read-only under storage.PublicPrefix.
	ContentDir string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/callback", cfg.Webhook.Handle)

	if cfg.ContentDir != "" {
		app.Static(storage.PublicPrefix, cfg.ContentDir, fiber.Static{Browse: false})
	}

	admin := app.Group("/admin")
	admin.Post("/login", cfg.Admin.Login)

	protected := admin.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/intents", cfg.Admin.Intents)
	protected.Get("/metrics", cfg.Admin.Metrics)
	protected.Get("/replies", cfg.Admin.Replies)
}
