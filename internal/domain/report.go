package domain

import "time"

// ReportStatus enumerates lifecycle states for citizen reports. The string
// values are a wire contract shared with the mobile intake apps and must not
// be renamed. ASSIGNED is upper-case for historical reasons.
type ReportStatus string

const (
	ReportStatusSubmitted          ReportStatus = "submitted"
	ReportStatusAIProcessed        ReportStatus = "ai_processed"
	ReportStatusUnderReview        ReportStatus = "under_review"
	ReportStatusInProgress         ReportStatus = "in_progress"
	ReportStatusResolved           ReportStatus = "resolved"
	ReportStatusClosed             ReportStatus = "closed"
	ReportStatusRejected           ReportStatus = "rejected"
	ReportStatusVerificationNeeded ReportStatus = "verification_needed"
	ReportStatusAssigned           ReportStatus = "ASSIGNED"
)

// Valid reports whether s is a known status value.
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusSubmitted, ReportStatusAIProcessed, ReportStatusUnderReview,
		ReportStatusInProgress, ReportStatusResolved, ReportStatusClosed,
		ReportStatusRejected, ReportStatusVerificationNeeded, ReportStatusAssigned:
		return true
	}
	return false
}

// Terminal reports whether s counts as resolved for analytics purposes.
func (s ReportStatus) Terminal() bool {
	return s == ReportStatusResolved || s == ReportStatusClosed
}

// Pending reports whether s counts as in-flight for analytics purposes.
func (s ReportStatus) Pending() bool {
	switch s {
	case ReportStatusAssigned, ReportStatusInProgress, ReportStatusUnderReview,
		ReportStatusAIProcessed, ReportStatusVerificationNeeded:
		return true
	}
	return false
}

// ReportPriority enumerates urgency levels.
type ReportPriority string

const (
	PriorityCritical ReportPriority = "critical"
	PriorityHigh     ReportPriority = "high"
	PriorityMedium   ReportPriority = "medium"
	PriorityLow      ReportPriority = "low"
)

// Valid reports whether p is a known priority value.
func (p ReportPriority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// IssueType enumerates report categories assigned at intake.
type IssueType string

const (
	IssuePothole       IssueType = "pothole"
	IssueWaterLeak     IssueType = "water_leak"
	IssueGarbage       IssueType = "garbage"
	IssueStreetLight   IssueType = "street_light"
	IssueTrafficSignal IssueType = "traffic_signal"
	IssueDrainage      IssueType = "drainage"
	IssueVegetation    IssueType = "vegetation"
	IssueOther         IssueType = "other"
)

// Location is a geographic point captured at intake.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Geohash   string  `json:"geohash,omitempty"`
}

// Report is the aggregate for a citizen-submitted service issue.
type Report struct {
	ID             string
	UserID         string
	MunicipalityID string
	Title          string
	Description    string
	IssueType      IssueType
	ImageURLs      []string
	Location       Location
	Address        string

	AIConfidenceScore float64

	Status             ReportStatus
	Priority           ReportPriority
	AssignedTo         *string
	AssignedToID       *string
	AssignedAt         *time.Time
	AssignedDepartment *string

	MLProcessingStatus      MLProcessingStatus
	MLProcessingCompletedAt *time.Time
	MLConfidenceScore       float64
	MLSuggestions           []MLSuggestion
	ImageClassifications    []ImageClassification
	TextAnalysis            *TextAnalysis
	MLProcessingError       *string

	Rating   *float64
	Feedback *string

	CreatedAt  time.Time
	UpdatedAt  time.Time
	ResolvedAt *time.Time
	ArchivedAt *time.Time
}
