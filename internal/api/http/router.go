package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/platformhq/support-service/internal/api/http/handlers"
	"github.com/platformhq/support-service/internal/auth"
	"github.com/platformhq/support-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Tickets         *handlers.TicketsHandler
	CannedResponses *handlers.CannedResponsesHandler
	Analytics       *handlers.AnalyticsHandler
	Agents          *handlers.AgentsHandler
	AuthMiddleware  *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/agents/login", cfg.Agents.Login)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Post("/:id/messages", cfg.Tickets.AddMessage)
	tickets.Post("/:id/rating", cfg.Tickets.RateTicket)

	// Lifecycle controls are agent-only; customers interact through
	// messages and ratings.
	tickets.Post("/:id/status", auth.RequireAgent(), cfg.Tickets.ChangeStatus)
	tickets.Post("/:id/priority", auth.RequireAgent(), cfg.Tickets.ChangePriority)
	tickets.Post("/:id/assign", auth.RequireAgent(), cfg.Tickets.AssignTicket)
	tickets.Post("/:id/escalate", auth.RequireAgent(), cfg.Tickets.EscalateTicket)

	canned := app.Group("/canned-responses", cfg.AuthMiddleware.Handle, auth.RequireAgent())
	canned.Get("/", cfg.CannedResponses.List)
	canned.Post("/", cfg.CannedResponses.Create)
	canned.Put("/:id", cfg.CannedResponses.Update)
	canned.Delete("/:id", cfg.CannedResponses.Delete)

	analytics := app.Group("/analytics", cfg.AuthMiddleware.Handle, auth.RequireAgent())
	analytics.Get("/overview", cfg.Analytics.Overview)
	analytics.Get("/status-counts", cfg.Analytics.StatusCounts)
	analytics.Get("/agents", cfg.Analytics.AgentPerformance)

	agents := app.Group("/agents", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.AgentRoleSupportLead))
	agents.Post("/", cfg.Agents.Create)
	agents.Get("/", cfg.Agents.List)
}
