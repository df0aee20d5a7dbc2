package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/stuurdean/municipality-dashboards/internal/api/dto"
	"github.com/stuurdean/municipality-dashboards/internal/auth"
	"github.com/stuurdean/municipality-dashboards/internal/domain"
	"github.com/stuurdean/municipality-dashboards/internal/repository"
	"github.com/stuurdean/municipality-dashboards/internal/service"
	apperrors "github.com/stuurdean/municipality-dashboards/pkg/util"
)

// ReportsHandler manages the report lifecycle endpoints.
type ReportsHandler struct {
	reports     *service.ReportService
	assignments *service.AssignmentService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reports *service.ReportService, assignments *service.AssignmentService) *ReportsHandler {
	return &ReportsHandler{reports: reports, assignments: assignments}
}

// CreateReport POST /reports.
func (h *ReportsHandler) CreateReport(c *fiber.Ctx) error {
	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UserID == "" || req.Title == "" || req.IssueType == "" {
		return apperrors.NewValidationError("userId, title, issueType required", nil)
	}

	report, err := h.reports.CreateReport(c.UserContext(), service.ReportCreateInput{
		UserID:         req.UserID,
		MunicipalityID: req.MunicipalityID,
		Title:          req.Title,
		Description:    req.Description,
		IssueType:      req.IssueType,
		ImageURLs:      req.ImageURLs,
		Location:       req.Location,
		Address:        req.Address,
		Priority:       req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": reportResponse(report)})
}

// ListReports GET /reports.
func (h *ReportsHandler) ListReports(c *fiber.Ctx) error {
	filter := parseReportQuery(c)
	reports, err := h.reports.ListReports(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		items = append(items, reportResponse(&reports[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetReport GET /reports/:id.
func (h *ReportsHandler) GetReport(c *fiber.Ctx) error {
	report, err := h.reports.GetReport(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reportResponse(report)})
}

// UpdateStatus PATCH /reports/:id/status.
func (h *ReportsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	entry, err := h.reports.UpdateStatus(c.UserContext(), actor, c.Params("id"), req.Status, req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": historyResponse(entry)})
}

// Assign POST /reports/:id/assign.
func (h *ReportsHandler) Assign(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.EmployeeID == "" {
		return apperrors.NewValidationError("employeeId required", nil)
	}
	if err := h.assignments.Assign(c.UserContext(), actor, c.Params("id"), req.EmployeeID, req.Notes); err != nil {
		return err
	}
	report, err := h.reports.GetReport(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reportResponse(report)})
}

// Unassign POST /reports/:id/unassign.
func (h *ReportsHandler) Unassign(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	if err := h.assignments.Unassign(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	report, err := h.reports.GetReport(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reportResponse(report)})
}

// AddComment POST /reports/:id/comments.
func (h *ReportsHandler) AddComment(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	comment, err := h.reports.AddComment(c.UserContext(), actor, c.Params("id"), req.Content)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// ListComments GET /reports/:id/comments.
func (h *ReportsHandler) ListComments(c *fiber.Ctx) error {
	comments, err := h.reports.Comments(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, commentResponse(&comments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListHistory GET /reports/:id/history.
func (h *ReportsHandler) ListHistory(c *fiber.Ctx) error {
	entries, err := h.reports.History(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.StatusHistoryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, historyResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ArchiveReport DELETE /reports/:id.
func (h *ReportsHandler) ArchiveReport(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	if err := h.reports.ArchiveReport(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func requireActor(c *fiber.Ctx) (service.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return service.Actor{}, apperrors.NewUnauthorized("authentication required")
	}
	return service.Actor{
		ID:       principal.User.ID,
		Email:    principal.User.Email,
		UserType: principal.User.UserType,
	}, nil
}

func parseReportQuery(c *fiber.Ctx) repository.ReportFilter {
	filter := repository.ReportFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.ReportStatus(strings.TrimSpace(part)))
		}
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
	if v := c.Query("mlStatus"); v != "" {
		mlStatus := domain.MLProcessingStatus(v)
		filter.MLStatus = &mlStatus
	}
	if from := parseTime(c.Query("createdFrom")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("createdTo")); to != nil {
		filter.CreatedTo = to
	}
	filter.Limit = parseInt(c.Query("limit"), 0)
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func reportResponse(report *domain.Report) dto.ReportResponse {
	return dto.ReportResponse{
		ID:                      report.ID,
		UserID:                  report.UserID,
		MunicipalityID:          report.MunicipalityID,
		Title:                   report.Title,
		Description:             report.Description,
		IssueType:               report.IssueType,
		ImageURLs:               report.ImageURLs,
		Location:                report.Location,
		Address:                 report.Address,
		AIConfidenceScore:       report.AIConfidenceScore,
		Status:                  report.Status,
		Priority:                report.Priority,
		AssignedTo:              report.AssignedTo,
		AssignedToID:            report.AssignedToID,
		AssignedAt:              report.AssignedAt,
		AssignedDepartment:      report.AssignedDepartment,
		MLProcessingStatus:      report.MLProcessingStatus,
		MLProcessingCompletedAt: report.MLProcessingCompletedAt,
		MLConfidenceScore:       report.MLConfidenceScore,
		MLSuggestions:           report.MLSuggestions,
		ImageClassifications:    report.ImageClassifications,
		TextAnalysis:            report.TextAnalysis,
		MLProcessingError:       report.MLProcessingError,
		Rating:                  report.Rating,
		Feedback:                report.Feedback,
		CreatedAt:               report.CreatedAt,
		UpdatedAt:               report.UpdatedAt,
		ResolvedAt:              report.ResolvedAt,
	}
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:        comment.ID,
		ReportID:  comment.ReportID,
		UserID:    comment.UserID,
		UserEmail: comment.UserEmail,
		UserType:  comment.UserType,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}

func historyResponse(entry *domain.StatusHistory) dto.StatusHistoryResponse {
	return dto.StatusHistoryResponse{
		ID:            entry.ID,
		OldStatus:     entry.OldStatus,
		NewStatus:     entry.NewStatus,
		ChangedBy:     entry.ChangedBy,
		ChangedByUser: entry.ChangedByUser,
		Notes:         entry.Notes,
		Timestamp:     entry.Timestamp,
		Automatic:     entry.Automatic,
	}
}
