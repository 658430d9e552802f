package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Comments       *handlers.CommentsHandler
	Attachments    *handlers.AttachmentsHandler
	Templates      *handlers.TemplatesHandler
	Analytics      *handlers.AnalyticsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/register", cfg.Auth.Register)
	app.Post("/auth/login", cfg.Auth.Login)

	authed := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	authed.Get("/auth/me", cfg.Auth.Me)

	tickets := authed.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Get("/:id/history", cfg.Tickets.History)
	tickets.Post("/:id/comments", cfg.Comments.AddComment)
	tickets.Get("/:id/comments", cfg.Comments.ListComments)
	tickets.Post("/:id/attachments", cfg.Attachments.Upload)

	worker := tickets.Group("", auth.RequireWorker())
	worker.Post("/:id/assign", cfg.Tickets.AssignToSelf)
	worker.Patch("/:id/status", cfg.Tickets.SetStatus)
	worker.Patch("/:id/priority", cfg.Tickets.SetPriority)

	authed.Get("/attachments/:id", cfg.Attachments.Download)
	authed.Delete("/attachments/:id", cfg.Attachments.Delete)

	templates := authed.Group("/templates", auth.RequireWorker())
	templates.Get("", cfg.Templates.List)
	templates.Post("", cfg.Templates.Create)
	templates.Put("/:id", cfg.Templates.Update)
	templates.Delete("/:id", cfg.Templates.Delete)

	authed.Get("/analytics/overview", auth.RequireWorker(), cfg.Analytics.Overview)

	// Read-only catalog endpoints for building ticket forms.
	authed.Get("/custom-fields", cfg.Admin.ListFieldDefinitions)
	authed.Get("/tags", cfg.Admin.ListTags)

	admin := authed.Group("/admin", auth.RequireAdmin())
	admin.Get("/custom-fields", cfg.Admin.ListFieldDefinitions)
	admin.Post("/custom-fields", cfg.Admin.CreateFieldDefinition)
	admin.Put("/custom-fields/:id", cfg.Admin.UpdateFieldDefinition)
	admin.Delete("/custom-fields/:id", cfg.Admin.DeleteFieldDefinition)

	admin.Get("/tags", cfg.Admin.ListTags)
	admin.Post("/tags", cfg.Admin.CreateTag)
	admin.Put("/tags/:id", cfg.Admin.UpdateTag)
	admin.Delete("/tags/:id", cfg.Admin.DeleteTag)

	admin.Get("/settings", cfg.Admin.ListSettings)
	admin.Put("/settings/:category/:key", cfg.Admin.SaveSetting)

	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Patch("/users/:id/role", cfg.Admin.ChangeUserRole)

	admin.Get("/archive", cfg.Admin.ListArchived)
	admin.Post("/archive/run", cfg.Admin.RunArchive)
	admin.Post("/archive/:id/restore", cfg.Admin.RestoreArchived)
}
