package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stuurdean/municipality-dashboards/internal/domain"
	"github.com/stuurdean/municipality-dashboards/internal/events"
	"github.com/stuurdean/municipality-dashboards/internal/repository"
	apperrors "github.com/stuurdean/municipality-dashboards/pkg/util"
)

// WorkloadBand classifies an employee's load for display. Bands are purely
// presentational; assignment is never blocked by workload.
type WorkloadBand string

const (
	WorkloadLight    WorkloadBand = "light"
	WorkloadModerate WorkloadBand = "moderate"
	WorkloadHeavy    WorkloadBand = "heavy"
)

// WorkloadSummary is the current/max ratio shown next to each candidate.
type WorkloadSummary struct {
	Current int          `json:"current"`
	Max     int          `json:"max"`
	Percent float64      `json:"percent"`
	Band    WorkloadBand `json:"band"`
}

// SummarizeWorkload derives the display band: light <60%, moderate 60-85%,
// heavy >=85%.
func SummarizeWorkload(current, max int) WorkloadSummary {
	summary := WorkloadSummary{Current: current, Max: max}
	if max > 0 {
		summary.Percent = float64(current) / float64(max) * 100
	}
	switch {
	case summary.Percent < 60:
		summary.Band = WorkloadLight
	case summary.Percent < 85:
		summary.Band = WorkloadModerate
	default:
		summary.Band = WorkloadHeavy
	}
	return summary
}

// AssignmentCandidate pairs an employee with their workload summary.
type AssignmentCandidate struct {
	Employee domain.User
	Workload WorkloadSummary
}

// CandidateFilter narrows the assignment candidate list. Search is a
// case-insensitive substring match over name, email and department;
// Department is an exact match. Filters apply in sequence.
type CandidateFilter struct {
	Search     string
	Department string
}

// AssignmentService orchestrates employee selection and the side effects of
// assigning or unassigning a report.
type AssignmentService struct {
	reports    repository.ReportRepository
	directory  *DirectoryService
	dispatcher events.Dispatcher
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	ReportRepo repository.ReportRepository
	Directory  *DirectoryService
	Dispatcher events.Dispatcher
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		reports:    deps.ReportRepo,
		directory:  deps.Directory,
		dispatcher: deps.Dispatcher,
	}
}

// Candidates lists active employees matching the filter, each with a
// workload summary.
func (s *AssignmentService) Candidates(ctx context.Context, filter CandidateFilter) ([]AssignmentCandidate, error) {
	employees, err := s.directory.ActiveEmployees(ctx, nil)
	if err != nil {
		return nil, err
	}

	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		matched := employees[:0]
		for _, emp := range employees {
			if strings.Contains(strings.ToLower(emp.FullName), search) ||
				strings.Contains(strings.ToLower(emp.Email), search) ||
				strings.Contains(strings.ToLower(emp.Department), search) {
				matched = append(matched, emp)
			}
		}
		employees = matched
	}
	if filter.Department != "" {
		matched := employees[:0]
		for _, emp := range employees {
			if emp.Department == filter.Department {
				matched = append(matched, emp)
			}
		}
		employees = matched
	}

	candidates := make([]AssignmentCandidate, 0, len(employees))
	for _, emp := range employees {
		candidates = append(candidates, AssignmentCandidate{
			Employee: emp,
			Workload: SummarizeWorkload(emp.CurrentWorkload, emp.MaxWorkload),
		})
	}
	return candidates, nil
}

// Assign attaches a report to an employee, recording the audit history entry
// and a thread comment atomically with the assignment itself. Workload
// counters are not adjusted; they are display-only. No workload cap is
// enforced: assignment past maxWorkload is allowed.
func (s *AssignmentService) Assign(ctx context.Context, actor Actor, reportID, employeeID, notes string) error {
	employee, err := s.directory.EmployeeByID(ctx, employeeID)
	if err != nil {
		return err
	}

	historyNotes := fmt.Sprintf("Assigned to %s", employee.FullName)
	commentBody := fmt.Sprintf("Report assigned to %s", employee.FullName)
	if strings.TrimSpace(notes) != "" {
		historyNotes += ": " + notes
		commentBody += "\n\nNotes: " + notes
	}

	// assignment is tracked as a pseudo-status in the audit trail; oldStatus
	// stays empty to match the stored document schema
	entry := &domain.StatusHistory{
		OldStatus:     "",
		NewStatus:     domain.HistoryStatusAssigned,
		ChangedBy:     actor.ID,
		ChangedByUser: actor.Email,
		Notes:         historyNotes,
	}
	comment := &domain.Comment{
		UserID:    actor.ID,
		UserEmail: actor.Email,
		UserType:  actor.UserType,
		Content:   commentBody,
	}

	if err := s.reports.Assign(ctx, reportID, employee, entry, comment); err != nil {
		return apperrors.MapError(err)
	}

	s.publishEvent(ctx, actor, events.Event{
		Type:     events.EventReportAssigned,
		ReportID: reportID,
		Payload: events.ReportAssignedPayload{
			AssigneeID:   employee.ID,
			AssigneeName: employee.FullName,
			Department:   employee.Department,
		},
	})
	return nil
}

// Unassign clears the report's assignee, with the same audit side effects.
func (s *AssignmentService) Unassign(ctx context.Context, actor Actor, reportID string) error {
	entry := &domain.StatusHistory{
		OldStatus:     domain.HistoryStatusAssigned,
		NewStatus:     domain.HistoryStatusUnassigned,
		ChangedBy:     actor.ID,
		ChangedByUser: actor.Email,
		Notes:         "Report unassigned",
	}
	comment := &domain.Comment{
		UserID:    actor.ID,
		UserEmail: actor.Email,
		UserType:  actor.UserType,
		Content:   "Report unassigned from previous employee",
	}

	if err := s.reports.Unassign(ctx, reportID, entry, comment); err != nil {
		return apperrors.MapError(err)
	}

	s.publishEvent(ctx, actor, events.Event{
		Type:     events.EventReportUnassigned,
		ReportID: reportID,
		Payload:  events.ReportAssignedPayload{},
	})
	return nil
}

func (s *AssignmentService) publishEvent(ctx context.Context, actor Actor, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Actor = actorMeta(actor)
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
