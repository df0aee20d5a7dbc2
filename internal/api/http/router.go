package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stuurdean/municipality-dashboards/internal/api/http/handlers"
	"github.com/stuurdean/municipality-dashboards/internal/auth"
	"github.com/stuurdean/municipality-dashboards/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Reports        *handlers.ReportsHandler
	Employees      *handlers.EmployeesHandler
	Analytics      *handlers.AnalyticsHandler
	Export         *handlers.ExportHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Everything under /api/v1 requires an
// authenticated staff principal.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle, auth.RequireStaff())

	reports := api.Group("/reports")
	reports.Get("/", cfg.Reports.ListReports)
	reports.Post("/", cfg.Reports.CreateReport)
	reports.Get("/:id", cfg.Reports.GetReport)
	reports.Patch("/:id/status", cfg.Reports.UpdateStatus)
	reports.Post("/:id/assign", cfg.Reports.Assign)
	reports.Post("/:id/unassign", cfg.Reports.Unassign)
	reports.Get("/:id/comments", cfg.Reports.ListComments)
	reports.Post("/:id/comments", cfg.Reports.AddComment)
	reports.Get("/:id/history", cfg.Reports.ListHistory)
	reports.Delete("/:id", auth.RequireUserType(domain.UserTypeAdmin), cfg.Reports.ArchiveReport)

	api.Get("/employees", cfg.Employees.ListEmployees)
	api.Get("/employees/:id", cfg.Employees.GetEmployee)
	api.Get("/departments", cfg.Employees.ListDepartments)
	api.Get("/assignments/candidates", cfg.Employees.ListCandidates)

	analytics := api.Group("/analytics")
	analytics.Get("/overview", cfg.Analytics.Overview)
	analytics.Get("/trends", cfg.Analytics.Trends)
	analytics.Get("/departments", cfg.Analytics.Departments)
	analytics.Get("/performance", cfg.Analytics.Performance)
	analytics.Get("/categories", cfg.Analytics.Categories)
	analytics.Get("/dashboard", cfg.Analytics.Dashboard)

	api.Get("/export/reports", cfg.Export.ExportReports)
	api.Get("/export/assignees", cfg.Export.ListAssignees)
}
