package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/lcs-staffing/admin-console/internal/api/http/handlers"
	"github.com/lcs-staffing/admin-console/internal/auth"
	"github.com/lcs-staffing/admin-console/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Jobs           *handlers.JobsHandler
	Admins         *handlers.AdminsHandler
	AuthMiddleware *auth.Middleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/session", cfg.Auth.Session)
	authGroup.Post("/password/reset", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Auth.Logout)

	jobs := app.Group("/jobs", cfg.AuthMiddleware.Handle)
	jobs.Get("/", cfg.Jobs.List)
	jobs.Get("/stream", cfg.Jobs.Stream)
	jobs.Post("/", cfg.Jobs.Create)
	jobs.Get("/:id", cfg.Jobs.Get)
	jobs.Patch("/:id", cfg.Jobs.Update)
	jobs.Delete("/:id", cfg.Jobs.Delete)
	jobs.Put("/:id/status", cfg.Jobs.SetStatus)
	jobs.Post("/:id/items/:list", cfg.Jobs.AddItem)
	jobs.Delete("/:id/items/:list/:index", cfg.Jobs.RemoveItem)

	admins := app.Group("/admins", cfg.AuthMiddleware.Handle)
	admins.Get("/", cfg.Admins.List)
	admins.Get("/active", cfg.Admins.ListActive)
	admins.Post("/", cfg.Admins.Create)
	admins.Patch("/:id/email", cfg.Admins.UpdateEmail)
	admins.Post("/:id/toggle-active", cfg.Admins.ToggleActive)
	admins.Post("/:id/password-reset", cfg.Admins.SendPasswordReset)
}
