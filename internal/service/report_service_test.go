package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stuurdean/municipality-dashboards/internal/domain"
	"github.com/stuurdean/municipality-dashboards/internal/repository"
	apperrors "github.com/stuurdean/municipality-dashboards/pkg/util"
)

func newReportService(store *fakeStore) *ReportService {
	return NewReportService(ReportDependencies{
		ReportRepo:  &fakeReportRepo{store: store},
		CommentRepo: &fakeCommentRepo{store: store},
		HistoryRepo: &fakeHistoryRepo{store: store},
	})
}

var staffActor = Actor{ID: "user-staff", Email: "staff@city.example", UserType: domain.UserTypeEmployee}
var adminActor = Actor{ID: "user-admin", Email: "admin@city.example", UserType: domain.UserTypeAdmin}

func TestCreateReportDefaults(t *testing.T) {
	store := newFakeStore()
	svc := newReportService(store)

	report, err := svc.CreateReport(context.Background(), ReportCreateInput{
		UserID: "resident-1",
		Title:  "Pothole on Main Street",
	})
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	if report.Status != domain.ReportStatusSubmitted {
		t.Errorf("expected submitted status, got %s", report.Status)
	}
	if report.Priority != domain.PriorityMedium {
		t.Errorf("expected medium priority default, got %s", report.Priority)
	}
	if report.IssueType != domain.IssueOther {
		t.Errorf("expected other issue type default, got %s", report.IssueType)
	}
	if report.MLProcessingStatus != domain.MLStatusPending {
		t.Errorf("expected pending ML status, got %s", report.MLProcessingStatus)
	}
}

func TestListReportsStableOrder(t *testing.T) {
	store := newFakeStore()
	svc := newReportService(store)

	// same created_at for every report, so ordering must fall back to id
	createdAt := time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 20; i++ {
		store.addReport(domain.Report{Status: domain.ReportStatusSubmitted, CreatedAt: createdAt})
	}

	first, err := svc.ListReports(context.Background(), repository.ReportFilter{})
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	second, err := svc.ListReports(context.Background(), repository.ReportFilter{})
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(first) != 20 || len(second) != 20 {
		t.Fatalf("lengths = %d/%d, want 20/20", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("order changed between calls at index %d: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
}

func TestCreateReportRequiresTitle(t *testing.T) {
	svc := newReportService(newFakeStore())
	if _, err := svc.CreateReport(context.Background(), ReportCreateInput{UserID: "resident-1"}); err == nil {
		t.Fatal("expected validation error for missing title")
	}
}

func TestUpdateStatusRecordsHistory(t *testing.T) {
	store := newFakeStore()
	svc := newReportService(store)
	report := store.addReport(domain.Report{Status: domain.ReportStatusSubmitted})

	entry, err := svc.UpdateStatus(context.Background(), staffActor, report.ID, domain.ReportStatusInProgress, "crew dispatched")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if entry.OldStatus != "submitted" || entry.NewStatus != "in_progress" {
		t.Errorf("history old/new = %q/%q, want submitted/in_progress", entry.OldStatus, entry.NewStatus)
	}
	if entry.ChangedBy != staffActor.ID || entry.ChangedByUser != staffActor.Email {
		t.Errorf("history actor = %q/%q", entry.ChangedBy, entry.ChangedByUser)
	}

	updated, err := svc.GetReport(context.Background(), report.ID)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if updated.Status != domain.ReportStatusInProgress {
		t.Errorf("stored status = %s, want in_progress", updated.Status)
	}

	trail, err := svc.History(context.Background(), report.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(trail) != 1 {
		t.Fatalf("history entries = %d, want 1", len(trail))
	}
}

func TestUpdateStatusSetsResolvedAt(t *testing.T) {
	store := newFakeStore()
	svc := newReportService(store)
	report := store.addReport(domain.Report{Status: domain.ReportStatusInProgress})

	if _, err := svc.UpdateStatus(context.Background(), staffActor, report.ID, domain.ReportStatusResolved, ""); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	updated, _ := svc.GetReport(context.Background(), report.ID)
	if updated.ResolvedAt == nil {
		t.Error("expected resolvedAt to be set on resolved status")
	}
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
	store := newFakeStore()
	svc := newReportService(store)
	report := store.addReport(domain.Report{Status: domain.ReportStatusSubmitted})

	_, err := svc.UpdateStatus(context.Background(), staffActor, report.ID, "escalated", "")
	if err == nil {
		t.Fatal("expected validation error for unknown status")
	}
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "VALIDATION_FAILED" {
		t.Errorf("expected VALIDATION_FAILED, got %v", err)
	}
	if len(store.history) != 0 {
		t.Error("no history entry should be written on rejection")
	}
}

func TestGetReportNotFound(t *testing.T) {
	svc := newReportService(newFakeStore())
	_, err := svc.GetReport(context.Background(), "missing")
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestAddCommentRequiresContent(t *testing.T) {
	store := newFakeStore()
	svc := newReportService(store)
	report := store.addReport(domain.Report{Status: domain.ReportStatusSubmitted})

	if _, err := svc.AddComment(context.Background(), staffActor, report.ID, "   "); err == nil {
		t.Fatal("expected validation error for blank content")
	}
	comment, err := svc.AddComment(context.Background(), staffActor, report.ID, "Inspected, scheduling repair")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if comment.UserEmail != staffActor.Email || comment.UserType != domain.UserTypeEmployee {
		t.Errorf("comment attribution = %q/%q", comment.UserEmail, comment.UserType)
	}
}

func TestArchiveReportAdminOnly(t *testing.T) {
	store := newFakeStore()
	svc := newReportService(store)
	report := store.addReport(domain.Report{Status: domain.ReportStatusClosed})

	err := svc.ArchiveReport(context.Background(), staffActor, report.ID)
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "FORBIDDEN" {
		t.Errorf("expected FORBIDDEN for employee, got %v", err)
	}

	if err := svc.ArchiveReport(context.Background(), adminActor, report.ID); err != nil {
		t.Fatalf("ArchiveReport as admin: %v", err)
	}

	reports, err := svc.ListReports(context.Background(), repository.ReportFilter{})
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(reports) != 0 {
		t.Errorf("archived report still listed, got %d reports", len(reports))
	}

	// archived reports remain readable by ID
	if _, err := svc.GetReport(context.Background(), report.ID); err != nil {
		t.Errorf("GetReport after archive: %v", err)
	}
}
