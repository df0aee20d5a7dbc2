package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stuurdean/municipality-dashboards/internal/domain"
)

func TestBuildCSVQuotesAndDefaults(t *testing.T) {
	store := newFakeStore()
	svc := NewExportService(&fakeReportRepo{store: store}, NewDirectoryService(&fakeUserRepo{store: store}))

	name := "Maya Okafor"
	dept := "Roads"
	rows := []ReportExportRow{
		flattenReport(domain.Report{
			ID:          "report-1",
			Title:       `Pothole, deep "crater" on Main`,
			Description: "line one\nline two",
			IssueType:   domain.IssuePothole,
			Status:      domain.ReportStatusInProgress,
			Priority:    domain.PriorityHigh,
			AssignedTo:  &name, AssignedDepartment: &dept,
			Address:   "12 Main Street",
			CreatedAt: time.Date(2024, time.March, 8, 10, 0, 0, 0, time.UTC),
		}),
		flattenReport(domain.Report{
			ID:        "report-2",
			Title:     "Unassigned one",
			IssueType: domain.IssueGarbage,
			Status:    domain.ReportStatusSubmitted,
			Priority:  domain.PriorityLow,
			Location:  domain.Location{Latitude: -33.92584, Longitude: 18.42322},
			CreatedAt: time.Date(2024, time.March, 9, 10, 0, 0, 0, time.UTC),
		}),
	}

	payload, err := svc.BuildCSV(rows)
	if err != nil {
		t.Fatalf("BuildCSV: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	if err != nil {
		t.Fatalf("round-trip parse: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want header + 2 rows", len(records))
	}
	if records[0][0] != "ID" || records[0][6] != "Assigned To" {
		t.Errorf("header = %v", records[0])
	}

	first := records[1]
	if first[1] != `Pothole, deep "crater" on Main` {
		t.Errorf("title not preserved through quoting: %q", first[1])
	}
	if first[2] != "line one\nline two" {
		t.Errorf("multiline description not preserved: %q", first[2])
	}
	if first[6] != "Maya Okafor" || first[7] != "Roads" {
		t.Errorf("assignee columns = %q/%q", first[6], first[7])
	}
	if first[8] != "2024-03-08" {
		t.Errorf("created date = %q, want 2024-03-08", first[8])
	}

	second := records[2]
	if second[6] != "Unassigned" || second[7] != "Unassigned" {
		t.Errorf("unassigned defaults = %q/%q", second[6], second[7])
	}
	if second[10] != "-33.92584, 18.42322" {
		t.Errorf("coordinate fallback = %q", second[10])
	}
}

func TestBuildHTMLContainsRows(t *testing.T) {
	store := newFakeStore()
	svc := NewExportService(&fakeReportRepo{store: store}, NewDirectoryService(&fakeUserRepo{store: store}))

	rows := []ReportExportRow{{
		ID: "report-1", Title: "Broken <street> light", Category: "street_light",
		Status: "submitted", Priority: "medium", AssignedTo: "Unassigned",
		Department: "Unassigned", CreatedAt: "2024-03-08", Location: "12 Main Street",
	}}
	payload, err := svc.BuildHTML(rows, "Service Reports Export")
	if err != nil {
		t.Fatalf("BuildHTML: %v", err)
	}
	html := string(payload)
	if !strings.Contains(html, "<title>Service Reports Export</title>") {
		t.Error("title missing")
	}
	if !strings.Contains(html, "1 reports exported") {
		t.Error("summary count missing")
	}
	if !strings.Contains(html, "Broken &lt;street&gt; light") {
		t.Error("row content not escaped into document")
	}
	if strings.Contains(html, "Broken <street> light") {
		t.Error("unescaped markup leaked into document")
	}
}

func TestReportsForExportAppliesStatusFilter(t *testing.T) {
	store := newFakeStore()
	store.addReport(domain.Report{Status: domain.ReportStatusResolved, IssueType: domain.IssuePothole, CreatedAt: time.Now().Add(-time.Hour)})
	store.addReport(domain.Report{Status: domain.ReportStatusSubmitted, IssueType: domain.IssuePothole, CreatedAt: time.Now()})
	svc := NewExportService(&fakeReportRepo{store: store}, NewDirectoryService(&fakeUserRepo{store: store}))

	status := domain.ReportStatusResolved
	rows, err := svc.ReportsForExport(context.Background(), ExportFilter{Status: &status})
	if err != nil {
		t.Fatalf("ReportsForExport: %v", err)
	}
	if len(rows) != 1 || rows[0].Status != "resolved" {
		t.Errorf("rows = %+v, want single resolved row", rows)
	}
}
