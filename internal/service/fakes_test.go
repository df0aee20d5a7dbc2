package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/stuurdean/municipality-dashboards/internal/domain"
	"github.com/stuurdean/municipality-dashboards/internal/repository"
)

// fakeStore is an in-memory stand-in for the Postgres repositories. It
// mirrors the transactional semantics of the real implementations: audit
// entries and comments land together with the report mutation.
type fakeStore struct {
	seq      int
	reports  map[string]*domain.Report
	history  []domain.StatusHistory
	comments []domain.Comment
	users    map[string]*domain.User
	listErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		reports: map[string]*domain.Report{},
		users:   map[string]*domain.User{},
	}
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeStore) addUser(user domain.User) *domain.User {
	if user.ID == "" {
		user.ID = f.nextID("user")
	}
	stored := user
	f.users[user.ID] = &stored
	return &stored
}

func (f *fakeStore) addReport(report domain.Report) *domain.Report {
	if report.ID == "" {
		report.ID = f.nextID("report")
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}
	stored := report
	f.reports[report.ID] = &stored
	return &stored
}

type fakeReportRepo struct{ store *fakeStore }

func (r *fakeReportRepo) Create(_ context.Context, report *domain.Report) error {
	report.ID = r.store.nextID("report")
	report.CreatedAt = time.Now()
	report.UpdatedAt = report.CreatedAt
	stored := *report
	r.store.reports[report.ID] = &stored
	return nil
}

func (r *fakeReportRepo) GetByID(_ context.Context, id string) (*domain.Report, error) {
	report, ok := r.store.reports[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *report
	return &copied, nil
}

func (r *fakeReportRepo) List(_ context.Context, filter repository.ReportFilter) ([]domain.Report, error) {
	if r.store.listErr != nil {
		return nil, r.store.listErr
	}
	var result []domain.Report
	for _, report := range r.store.reports {
		if !filter.IncludeArchived && report.ArchivedAt != nil {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, report.Status) {
			continue
		}
		if filter.AssignedToID != nil && (report.AssignedToID == nil || *report.AssignedToID != *filter.AssignedToID) {
			continue
		}
		if filter.IssueType != nil && report.IssueType != *filter.IssueType {
			continue
		}
		if filter.Department != nil && (report.AssignedDepartment == nil || *report.AssignedDepartment != *filter.Department) {
			continue
		}
		if filter.MLStatus != nil && report.MLProcessingStatus != *filter.MLStatus {
			continue
		}
		if filter.CreatedFrom != nil && report.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && report.CreatedAt.After(*filter.CreatedTo) {
			continue
		}
		result = append(result, *report)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (r *fakeReportRepo) UpdateStatus(_ context.Context, id string, newStatus domain.ReportStatus, entry *domain.StatusHistory) error {
	report, ok := r.store.reports[id]
	if !ok {
		return pgx.ErrNoRows
	}
	entry.ReportID = id
	entry.OldStatus = string(report.Status)
	entry.NewStatus = string(newStatus)
	entry.ID = r.store.nextID("history")
	entry.Timestamp = time.Now()

	report.Status = newStatus
	if newStatus.Terminal() && report.ResolvedAt == nil {
		now := time.Now()
		report.ResolvedAt = &now
	}
	r.store.history = append(r.store.history, *entry)
	return nil
}

func (r *fakeReportRepo) Assign(_ context.Context, id string, assignee *domain.User, entry *domain.StatusHistory, comment *domain.Comment) error {
	report, ok := r.store.reports[id]
	if !ok {
		return pgx.ErrNoRows
	}
	now := time.Now()
	report.AssignedTo = &assignee.FullName
	report.AssignedToID = &assignee.ID
	report.AssignedAt = &now
	if assignee.Department != "" {
		dept := assignee.Department
		report.AssignedDepartment = &dept
	} else {
		report.AssignedDepartment = nil
	}

	entry.ReportID = id
	entry.ID = r.store.nextID("history")
	entry.Timestamp = now
	r.store.history = append(r.store.history, *entry)

	comment.ReportID = id
	comment.ID = r.store.nextID("comment")
	comment.CreatedAt = now
	r.store.comments = append(r.store.comments, *comment)
	return nil
}

func (r *fakeReportRepo) Unassign(_ context.Context, id string, entry *domain.StatusHistory, comment *domain.Comment) error {
	report, ok := r.store.reports[id]
	if !ok {
		return pgx.ErrNoRows
	}
	report.AssignedTo = nil
	report.AssignedToID = nil
	report.AssignedAt = nil
	report.AssignedDepartment = nil

	entry.ReportID = id
	entry.ID = r.store.nextID("history")
	entry.Timestamp = time.Now()
	r.store.history = append(r.store.history, *entry)

	comment.ReportID = id
	comment.ID = r.store.nextID("comment")
	r.store.comments = append(r.store.comments, *comment)
	return nil
}

func (r *fakeReportRepo) Archive(_ context.Context, id string) error {
	report, ok := r.store.reports[id]
	if !ok || report.ArchivedAt != nil {
		return pgx.ErrNoRows
	}
	now := time.Now()
	report.ArchivedAt = &now
	return nil
}

func (r *fakeReportRepo) MarkMLProcessing(_ context.Context, id string) error {
	report, ok := r.store.reports[id]
	if !ok || report.MLProcessingStatus != domain.MLStatusPending {
		return pgx.ErrNoRows
	}
	report.MLProcessingStatus = domain.MLStatusProcessing
	return nil
}

func (r *fakeReportRepo) CompleteClassification(_ context.Context, id string, update repository.ClassificationUpdate, entry *domain.StatusHistory) error {
	report, ok := r.store.reports[id]
	if !ok {
		return pgx.ErrNoRows
	}
	oldStatus := report.Status
	newStatus := oldStatus
	if oldStatus == domain.ReportStatusSubmitted {
		newStatus = domain.ReportStatusAIProcessed
	}
	now := time.Now()
	report.MLProcessingStatus = domain.MLStatusCompleted
	report.MLProcessingCompletedAt = &now
	report.MLProcessingError = nil
	report.AIConfidenceScore = update.AIConfidenceScore
	report.MLConfidenceScore = update.MLConfidenceScore
	report.MLSuggestions = update.MLSuggestions
	report.ImageClassifications = update.ImageClassifications
	report.TextAnalysis = update.TextAnalysis
	report.Status = newStatus

	if entry != nil && newStatus != oldStatus {
		entry.ReportID = id
		entry.OldStatus = string(oldStatus)
		entry.NewStatus = string(newStatus)
		entry.Automatic = true
		entry.ID = r.store.nextID("history")
		entry.Timestamp = now
		r.store.history = append(r.store.history, *entry)
	}
	return nil
}

func (r *fakeReportRepo) FailClassification(_ context.Context, id string, reason string) error {
	report, ok := r.store.reports[id]
	if !ok {
		return pgx.ErrNoRows
	}
	report.MLProcessingStatus = domain.MLStatusFailed
	report.MLProcessingError = &reason
	return nil
}

type fakeCommentRepo struct{ store *fakeStore }

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	comment.ID = r.store.nextID("comment")
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = comment.CreatedAt
	r.store.comments = append(r.store.comments, *comment)
	return nil
}

func (r *fakeCommentRepo) ListByReport(_ context.Context, reportID string) ([]domain.Comment, error) {
	var result []domain.Comment
	for _, comment := range r.store.comments {
		if comment.ReportID == reportID {
			result = append(result, comment)
		}
	}
	return result, nil
}

type fakeHistoryRepo struct{ store *fakeStore }

func (r *fakeHistoryRepo) ListByReport(_ context.Context, reportID string) ([]domain.StatusHistory, error) {
	var result []domain.StatusHistory
	for _, entry := range r.store.history {
		if entry.ReportID == reportID {
			result = append(result, entry)
		}
	}
	return result, nil
}

type fakeUserRepo struct{ store *fakeStore }

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	user.ID = r.store.nextID("user")
	user.CreatedAt = time.Now()
	stored := *user
	r.store.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.store.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *user
	r.store.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.store.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.store.users {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	var result []domain.User
	for _, user := range r.store.users {
		if len(filter.UserTypes) > 0 && !containsUserType(filter.UserTypes, user.UserType) {
			continue
		}
		if filter.IsActive != nil && user.IsActive != *filter.IsActive {
			continue
		}
		if filter.Department != nil && user.Department != *filter.Department {
			continue
		}
		result = append(result, *user)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].FullName < result[j].FullName
	})
	return result, nil
}

func (r *fakeUserRepo) SetActive(_ context.Context, id string, active bool) error {
	user, ok := r.store.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.IsActive = active
	return nil
}

func containsStatus(statuses []domain.ReportStatus, status domain.ReportStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func containsUserType(types []domain.UserType, userType domain.UserType) bool {
	for _, t := range types {
		if t == userType {
			return true
		}
	}
	return false
}
