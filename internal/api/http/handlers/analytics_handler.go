package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stuurdean/municipality-dashboards/internal/service"
)

// AnalyticsHandler serves the dashboard aggregation views. Aggregation
// failures surface as zeroed payloads, never as HTTP errors.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Overview GET /analytics/overview.
func (h *AnalyticsHandler) Overview(c *fiber.Ctx) error {
	overview := h.analytics.Overview(c.UserContext(), timeRange(c))
	return c.JSON(fiber.Map{"data": overview})
}

// Trends GET /analytics/trends.
func (h *AnalyticsHandler) Trends(c *fiber.Ctx) error {
	trends := h.analytics.ReportTrends(c.UserContext(), timeRange(c))
	return c.JSON(fiber.Map{"data": trends})
}

// Departments GET /analytics/departments.
func (h *AnalyticsHandler) Departments(c *fiber.Ctx) error {
	stats := h.analytics.DepartmentStats(c.UserContext())
	return c.JSON(fiber.Map{"data": stats})
}

// Performance GET /analytics/performance.
func (h *AnalyticsHandler) Performance(c *fiber.Ctx) error {
	performance := h.analytics.UserPerformance(c.UserContext())
	return c.JSON(fiber.Map{"data": performance})
}

// Categories GET /analytics/categories.
func (h *AnalyticsHandler) Categories(c *fiber.Ctx) error {
	stats := h.analytics.CategoryStats(c.UserContext())
	return c.JSON(fiber.Map{"data": stats})
}

// Dashboard GET /analytics/dashboard.
func (h *AnalyticsHandler) Dashboard(c *fiber.Ctx) error {
	dashboard := h.analytics.Dashboard(c.UserContext(), timeRange(c))
	return c.JSON(fiber.Map{"data": dashboard})
}

func timeRange(c *fiber.Ctx) string {
	if v := c.Query("timeRange"); v != "" {
		return v
	}
	return service.RangeWeek
}
