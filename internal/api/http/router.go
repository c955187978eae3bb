package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdeskhq/helpdesk-service/internal/api/http/handlers"
	"github.com/helpdeskhq/helpdesk-service/internal/auth"
	"github.com/helpdeskhq/helpdesk-service/internal/domain"
)

// RouteConfig bundles handlers and middleware for route registration.
type RouteConfig struct {
	Auth      *auth.AuthMiddleware
	AuthH     *handlers.AuthHandler
	Tickets   *handlers.TicketsHandler
	Bulk      *handlers.BulkHandler
	Approvals *handlers.ApprovalsHandler
	Tasks     *handlers.TasksHandler
	Health    *handlers.HealthHandler
}

// RegisterRoutes mounts all endpoints.
func RegisterRoutes(app *fiber.App, rc RouteConfig) {
	app.Get("/healthz", rc.Health.Live)
	app.Get("/readyz", rc.Health.Ready)
	app.Get("/metrics", rc.Health.Metrics)

	api := app.Group("/api/v1")
	api.Post("/auth/login", rc.AuthH.Login)

	protected := api.Group("", rc.Auth.Handle)

	tickets := protected.Group("/tickets")
	tickets.Post("", rc.Tickets.CreateTicket)
	tickets.Get("", rc.Tickets.ListTickets)

	// Bulk routes register before :ref so "bulk" never parses as a ref.
	bulk := tickets.Group("/bulk", auth.RequireRole(
		domain.RoleTechnician, domain.RoleSecurityAnalyst, domain.RoleManager,
		domain.RoleAdmin, domain.RoleSuperAdmin,
	))
	bulk.Post("/claim", rc.Bulk.BulkClaim)
	bulk.Post("/status", rc.Bulk.BulkStatus)

	tickets.Get("/:ref", rc.Tickets.GetTicket)
	tickets.Post("/:ref/claim", rc.Tickets.ClaimTicket)
	tickets.Delete("/:ref/claim", rc.Tickets.ReleaseTicket)
	tickets.Patch("/:ref/status", rc.Tickets.UpdateStatus)
	tickets.Put("/:ref/status", rc.Tickets.AssignVendor)
	tickets.Post("/:ref/resolve-close", rc.Tickets.ResolveAndClose)
	tickets.Patch("/:ref/priority", rc.Tickets.UpdatePriority)
	tickets.Post("/:ref/comments", rc.Tickets.AddComment)
	tickets.Post("/:ref/approvals", rc.Approvals.Decide)
	tickets.Get("/:ref/approvals", rc.Approvals.History)

	protected.Patch("/tasks/:id", rc.Tasks.UpdateTask)
}
