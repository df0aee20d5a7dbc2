package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/stuurdean/municipality-dashboards/internal/domain"
	"github.com/stuurdean/municipality-dashboards/internal/events"
	"github.com/stuurdean/municipality-dashboards/internal/repository"
	apperrors "github.com/stuurdean/municipality-dashboards/pkg/util"
)

// Actor identifies the staff member performing a workflow operation. It is
// passed explicitly into every mutation; there is no ambient current user.
type Actor struct {
	ID       string
	Email    string
	UserType domain.UserType
}

// ReportService coordinates the report lifecycle: listing, status changes
// with audit trail, comments and archival.
type ReportService struct {
	reports    repository.ReportRepository
	comments   repository.CommentRepository
	history    repository.StatusHistoryRepository
	dispatcher events.Dispatcher
}

// ReportDependencies bundles repositories for the report service.
type ReportDependencies struct {
	ReportRepo  repository.ReportRepository
	CommentRepo repository.CommentRepository
	HistoryRepo repository.StatusHistoryRepository
	Dispatcher  events.Dispatcher
}

// NewReportService creates the service.
func NewReportService(deps ReportDependencies) *ReportService {
	return &ReportService{
		reports:    deps.ReportRepo,
		comments:   deps.CommentRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
	}
}

// ReportCreateInput describes intake payload.
type ReportCreateInput struct {
	UserID         string
	MunicipalityID string
	Title          string
	Description    string
	IssueType      domain.IssueType
	ImageURLs      []string
	Location       domain.Location
	Address        string
	Priority       domain.ReportPriority
}

// CreateReport registers a new citizen report in submitted state with ML
// enrichment pending.
func (s *ReportService) CreateReport(ctx context.Context, input ReportCreateInput) (*domain.Report, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": priority})
	}
	issueType := input.IssueType
	if issueType == "" {
		issueType = domain.IssueOther
	}

	report := &domain.Report{
		UserID:             input.UserID,
		MunicipalityID:     input.MunicipalityID,
		Title:              input.Title,
		Description:        input.Description,
		IssueType:          issueType,
		ImageURLs:          input.ImageURLs,
		Location:           input.Location,
		Address:            input.Address,
		Status:             domain.ReportStatusSubmitted,
		Priority:           priority,
		MLProcessingStatus: domain.MLStatusPending,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventReportCreated,
		ReportID: report.ID,
		Actor:    events.Actor{UserID: &report.UserID},
		Payload: events.ReportCreatedPayload{
			IssueType: report.IssueType,
			Priority:  report.Priority,
			Title:     report.Title,
		},
	})
	return report, nil
}

// ListReports returns all non-archived reports, newest first.
func (s *ReportService) ListReports(ctx context.Context, filter repository.ReportFilter) ([]domain.Report, error) {
	reports, err := s.reports.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return reports, nil
}

// GetReport fetches one report by ID.
func (s *ReportService) GetReport(ctx context.Context, id string) (*domain.Report, error) {
	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("report", map[string]any{"report_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return report, nil
}

// UpdateStatus changes the report status and appends the audit entry in a
// single transaction. Any known status value is accepted; the lifecycle has
// no enforced transition graph.
func (s *ReportService) UpdateStatus(ctx context.Context, actor Actor, reportID string, newStatus domain.ReportStatus, notes string) (*domain.StatusHistory, error) {
	if !newStatus.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": newStatus})
	}

	entry := &domain.StatusHistory{
		ChangedBy:     actor.ID,
		ChangedByUser: actor.Email,
		Notes:         notes,
	}
	if err := s.reports.UpdateStatus(ctx, reportID, newStatus, entry); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("report", map[string]any{"report_id": reportID})
		}
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventReportStatusChanged,
		ReportID: reportID,
		Actor:    actorMeta(actor),
		Payload: events.ReportStatusChangedPayload{
			OldStatus: domain.ReportStatus(entry.OldStatus),
			NewStatus: newStatus,
			Notes:     notes,
		},
	})
	return entry, nil
}

// AddComment appends a staff note to the report thread.
func (s *ReportService) AddComment(ctx context.Context, actor Actor, reportID, content string) (*domain.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}
	if _, err := s.GetReport(ctx, reportID); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		ReportID:  reportID,
		UserID:    actor.ID,
		UserEmail: actor.Email,
		UserType:  actor.UserType,
		Content:   content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventReportCommentAdded,
		ReportID: reportID,
		Actor:    actorMeta(actor),
		Payload: events.ReportCommentAddedPayload{
			CommentID:      comment.ID,
			ContentPreview: contentPreview(content, 120),
		},
	})
	return comment, nil
}

// Comments lists the report thread, oldest first.
func (s *ReportService) Comments(ctx context.Context, reportID string) ([]domain.Comment, error) {
	comments, err := s.comments.ListByReport(ctx, reportID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	return comments, nil
}

// History lists the audit trail, oldest first.
func (s *ReportService) History(ctx context.Context, reportID string) ([]domain.StatusHistory, error) {
	entries, err := s.history.ListByReport(ctx, reportID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if entries == nil {
		entries = []domain.StatusHistory{}
	}
	return entries, nil
}

// ArchiveReport soft-archives a report so it no longer appears in listings.
// Reports are never hard-deleted.
func (s *ReportService) ArchiveReport(ctx context.Context, actor Actor, reportID string) error {
	if actor.UserType != domain.UserTypeAdmin {
		return apperrors.NewForbidden("admin role required")
	}
	if err := s.reports.Archive(ctx, reportID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("report", map[string]any{"report_id": reportID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func (s *ReportService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func actorMeta(actor Actor) events.Actor {
	id := actor.ID
	return events.Actor{
		UserID:   &id,
		Email:    actor.Email,
		UserType: actor.UserType,
	}
}

func contentPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
