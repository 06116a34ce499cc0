package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/content-crm/internal/api/http/handlers"
	"github.com/spec-kit/content-crm/internal/auth"
	"github.com/spec-kit/content-crm/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Workflow       *handlers.WorkflowHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/stats", cfg.Health.Stats)

	app.Post("/auth/login", cfg.Auth.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle)

	protected.Post("/members", auth.RequireRole(domain.RoleAdmin), cfg.Auth.RegisterMember)

	protected.Get("/board", cfg.Tickets.Board)

	tickets := protected.Group("/tickets")
	tickets.Post("", auth.RequireRole(domain.RoleAdmin, domain.RoleManager), cfg.Tickets.CreateTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", auth.RequireRole(domain.RoleAdmin, domain.RoleManager), cfg.Tickets.UpdateTicket)
	tickets.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Tickets.DeleteTicket)
	tickets.Put("/:id/content", cfg.Tickets.SubmitContent)
	tickets.Post("/:id/reviews", cfg.Tickets.AddReview)
	tickets.Post("/:id/transitions", cfg.Workflow.RequestTransition)

	transitions := protected.Group("/transitions")
	transitions.Post("/:token/hours", cfg.Workflow.SupplyHours)
	transitions.Post("/:token/pricing", cfg.Workflow.SupplyPricing)
	transitions.Delete("/:token", cfg.Workflow.CancelPending)
}
