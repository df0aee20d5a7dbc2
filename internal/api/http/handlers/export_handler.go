package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/stuurdean/municipality-dashboards/internal/domain"
	"github.com/stuurdean/municipality-dashboards/internal/service"
	apperrors "github.com/stuurdean/municipality-dashboards/pkg/util"
)

// ExportHandler streams filtered report exports as CSV or printable HTML.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs handler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// ExportReports GET /export/reports?format=csv|html.
func (h *ExportHandler) ExportReports(c *fiber.Ctx) error {
	filter := parseExportQuery(c)
	rows, err := h.exports.ReportsForExport(c.UserContext(), filter)
	if err != nil {
		return err
	}

	stamp := time.Now().Format("2006-01-02")
	switch c.Query("format", "csv") {
	case "csv":
		payload, err := h.exports.BuildCSV(rows)
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="reports-export-%s.csv"`, stamp))
		return c.Send(payload)
	case "html":
		payload, err := h.exports.BuildHTML(rows, "Service Reports Export")
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Send(payload)
	default:
		return apperrors.NewValidationError("format must be csv or html", nil)
	}
}

// ListAssignees GET /export/assignees returns staff for the export filter UI.
func (h *ExportHandler) ListAssignees(c *fiber.Ctx) error {
	staff, err := h.exports.AssigneeOptions(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]fiber.Map, 0, len(staff))
	for i := range staff {
		items = append(items, fiber.Map{
			"id":       staff[i].ID,
			"fullName": staff[i].FullName,
			"email":    staff[i].Email,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseExportQuery(c *fiber.Ctx) service.ExportFilter {
	filter := service.ExportFilter{}
	if v := c.Query("status"); v != "" {
		status := domain.ReportStatus(v)
		filter.Status = &status
	}
	if v := c.Query("assignedToId"); v != "" {
		filter.AssignedToID = &v
	}
	if v := c.Query("issueType"); v != "" {
		issueType := domain.IssueType(v)
		filter.IssueType = &issueType
	}
	if v := c.Query("department"); v != "" {
		filter.Department = &v
	}
	if from := parseTime(c.Query("createdFrom")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("createdTo")); to != nil {
		filter.CreatedTo = to
	}
	return filter
}
