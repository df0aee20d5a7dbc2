package events

import (
	"time"

	"github.com/stuurdean/municipality-dashboards/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventReportCreated       EventType = "report_created"
	EventReportStatusChanged EventType = "report_status_changed"
	EventReportAssigned      EventType = "report_assigned"
	EventReportUnassigned    EventType = "report_unassigned"
	EventReportCommentAdded  EventType = "report_comment_added"
	EventReportMLProcessed   EventType = "report_ml_processed"
)

// Actor encapsulates actor metadata for an event. System events carry no
// user ID.
type Actor struct {
	UserID   *string         `json:"user_id,omitempty"`
	Email    string          `json:"email,omitempty"`
	UserType domain.UserType `json:"user_type,omitempty"`
	System   bool            `json:"system,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ReportID  string      `json:"report_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ReportCreatedPayload payload.
type ReportCreatedPayload struct {
	IssueType domain.IssueType      `json:"issue_type"`
	Priority  domain.ReportPriority `json:"priority"`
	Title     string                `json:"title"`
}

// ReportStatusChangedPayload payload.
type ReportStatusChangedPayload struct {
	OldStatus domain.ReportStatus `json:"old_status"`
	NewStatus domain.ReportStatus `json:"new_status"`
	Notes     string              `json:"notes,omitempty"`
}

// ReportAssignedPayload payload.
type ReportAssignedPayload struct {
	AssigneeID   string `json:"assignee_id"`
	AssigneeName string `json:"assignee_name"`
	Department   string `json:"department,omitempty"`
}

// ReportCommentAddedPayload payload.
type ReportCommentAddedPayload struct {
	CommentID      string `json:"comment_id"`
	ContentPreview string `json:"content_preview"`
}

// ReportMLProcessedPayload payload.
type ReportMLProcessedPayload struct {
	Status     domain.MLProcessingStatus `json:"status"`
	Confidence float64                   `json:"confidence,omitempty"`
	Fallback   bool                      `json:"fallback,omitempty"`
}
