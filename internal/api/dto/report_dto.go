package dto

import (
	"time"

	"github.com/stuurdean/municipality-dashboards/internal/domain"
)

// CreateReportRequest payload for report intake.
type CreateReportRequest struct {
	UserID         string                `json:"userId"`
	MunicipalityID string                `json:"municipalityId"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	IssueType      domain.IssueType      `json:"issueType"`
	ImageURLs      []string              `json:"imageUrls"`
	Location       domain.Location       `json:"location"`
	Address        string                `json:"address"`
	Priority       domain.ReportPriority `json:"priority"`
}

// UpdateStatusRequest payload for lifecycle transitions.
type UpdateStatusRequest struct {
	Status domain.ReportStatus `json:"status"`
	Notes  string              `json:"notes"`
}

// AssignRequest payload for assigning a report.
type AssignRequest struct {
	EmployeeID string `json:"employeeId"`
	Notes      string `json:"notes"`
}

// CreateCommentRequest payload for staff notes.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// ReportResponse is the full report as served to the dashboard.
type ReportResponse struct {
	ID                      string                        `json:"id"`
	UserID                  string                        `json:"userId"`
	MunicipalityID          string                        `json:"municipalityId"`
	Title                   string                        `json:"title"`
	Description             string                        `json:"description"`
	IssueType               domain.IssueType              `json:"issueType"`
	ImageURLs               []string                      `json:"imageUrls"`
	Location                domain.Location               `json:"location"`
	Address                 string                        `json:"address"`
	AIConfidenceScore       float64                       `json:"aiConfidenceScore"`
	Status                  domain.ReportStatus           `json:"status"`
	Priority                domain.ReportPriority         `json:"priority"`
	AssignedTo              *string                       `json:"assignedTo"`
	AssignedToID            *string                       `json:"assignedToId"`
	AssignedAt              *time.Time                    `json:"assignedAt"`
	AssignedDepartment      *string                       `json:"assignedDepartment"`
	MLProcessingStatus      domain.MLProcessingStatus     `json:"mlProcessingStatus"`
	MLProcessingCompletedAt *time.Time                    `json:"mlProcessingCompletedAt,omitempty"`
	MLConfidenceScore       float64                       `json:"mlConfidenceScore"`
	MLSuggestions           []domain.MLSuggestion         `json:"mlSuggestions,omitempty"`
	ImageClassifications    []domain.ImageClassification  `json:"imageClassifications,omitempty"`
	TextAnalysis            *domain.TextAnalysis          `json:"textAnalysis,omitempty"`
	MLProcessingError       *string                       `json:"mlProcessingError,omitempty"`
	Rating                  *float64                      `json:"rating,omitempty"`
	Feedback                *string                       `json:"feedback,omitempty"`
	CreatedAt               time.Time                     `json:"createdAt"`
	UpdatedAt               time.Time                     `json:"updatedAt"`
	ResolvedAt              *time.Time                    `json:"resolvedAt,omitempty"`
}

// CommentResponse represents one staff note.
type CommentResponse struct {
	ID        string          `json:"id"`
	ReportID  string          `json:"reportId"`
	UserID    string          `json:"userId"`
	UserEmail string          `json:"userEmail"`
	UserType  domain.UserType `json:"userType"`
	Content   string          `json:"content"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// StatusHistoryResponse represents one audit trail entry.
type StatusHistoryResponse struct {
	ID            string    `json:"id"`
	OldStatus     string    `json:"oldStatus"`
	NewStatus     string    `json:"newStatus"`
	ChangedBy     string    `json:"changedBy"`
	ChangedByUser string    `json:"changedByUser"`
	Notes         string    `json:"notes,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	Automatic     bool      `json:"automatic,omitempty"`
}
