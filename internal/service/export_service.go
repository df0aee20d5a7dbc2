package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/stuurdean/municipality-dashboards/internal/domain"
	"github.com/stuurdean/municipality-dashboards/internal/repository"
	apperrors "github.com/stuurdean/municipality-dashboards/pkg/util"
)

// ExportFilter narrows the report set for an export run.
type ExportFilter struct {
	Status       *domain.ReportStatus
	AssignedToID *string
	IssueType    *domain.IssueType
	Department   *string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

// ReportExportRow is one flattened report for CSV/HTML output.
type ReportExportRow struct {
	ID          string
	Title       string
	Description string
	Category    string
	Status      string
	Priority    string
	AssignedTo  string
	Department  string
	CreatedAt   string
	ResolvedAt  string
	Location    string
	Rating      string
	Feedback    string
}

// ExportService flattens filtered reports into CSV or a printable HTML
// document. The HTML output is meant for browser print-to-PDF; it is not a
// PDF encoder.
type ExportService struct {
	reports   repository.ReportRepository
	directory *DirectoryService
}

// NewExportService creates the service.
func NewExportService(reports repository.ReportRepository, directory *DirectoryService) *ExportService {
	return &ExportService{reports: reports, directory: directory}
}

// ReportsForExport loads and flattens reports matching the filter, newest
// first.
func (s *ExportService) ReportsForExport(ctx context.Context, filter ExportFilter) ([]ReportExportRow, error) {
	repoFilter := repository.ReportFilter{
		AssignedToID: filter.AssignedToID,
		IssueType:    filter.IssueType,
		Department:   filter.Department,
		CreatedFrom:  filter.CreatedFrom,
		CreatedTo:    filter.CreatedTo,
	}
	if filter.Status != nil {
		repoFilter.Statuses = []domain.ReportStatus{*filter.Status}
	}

	reports, err := s.reports.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	rows := make([]ReportExportRow, 0, len(reports))
	for _, report := range reports {
		rows = append(rows, flattenReport(report))
	}
	return rows, nil
}

// AssigneeOptions lists staff for the export filter dropdown.
func (s *ExportService) AssigneeOptions(ctx context.Context) ([]domain.User, error) {
	return s.directory.ActiveStaff(ctx)
}

// BuildCSV renders rows as CSV with quoted/escaped text fields.
func (s *ExportService) BuildCSV(rows []ReportExportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"ID", "Title", "Description", "Category", "Status", "Priority",
		"Assigned To", "Department", "Created Date", "Resolved Date",
		"Location", "Rating", "Feedback",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, row := range rows {
		record := []string{
			row.ID, row.Title, row.Description, row.Category, row.Status, row.Priority,
			row.AssignedTo, row.Department, row.CreatedAt, row.ResolvedAt,
			row.Location, row.Rating, row.Feedback,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildHTML renders rows as a standalone HTML document for print-to-PDF.
func (s *ExportService) BuildHTML(rows []ReportExportRow, title string) ([]byte, error) {
	var buf bytes.Buffer
	data := struct {
		Title       string
		GeneratedOn string
		Count       int
		Rows        []ReportExportRow
	}{
		Title:       title,
		GeneratedOn: time.Now().Format("2006-01-02"),
		Count:       len(rows),
		Rows:        rows,
	}
	if err := exportTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func flattenReport(report domain.Report) ReportExportRow {
	row := ReportExportRow{
		ID:          report.ID,
		Title:       report.Title,
		Description: report.Description,
		Category:    string(report.IssueType),
		Status:      string(report.Status),
		Priority:    string(report.Priority),
		AssignedTo:  "Unassigned",
		Department:  "Unassigned",
		CreatedAt:   report.CreatedAt.Format("2006-01-02"),
		Location:    report.Address,
	}
	if report.AssignedTo != nil && *report.AssignedTo != "" {
		row.AssignedTo = *report.AssignedTo
	}
	if report.AssignedDepartment != nil && *report.AssignedDepartment != "" {
		row.Department = *report.AssignedDepartment
	}
	if report.ResolvedAt != nil {
		row.ResolvedAt = report.ResolvedAt.Format("2006-01-02")
	}
	if row.Location == "" {
		row.Location = fmt.Sprintf("%.5f, %.5f", report.Location.Latitude, report.Location.Longitude)
	}
	if report.Rating != nil {
		row.Rating = strconv.FormatFloat(*report.Rating, 'f', -1, 64)
	}
	if report.Feedback != nil {
		row.Feedback = *report.Feedback
	}
	return row
}

var exportTemplate = template.Must(template.New("export").Parse(`<!DOCTYPE html>
<html>
  <head>
    <title>{{.Title}}</title>
    <style>
      body { font-family: Arial, sans-serif; margin: 20px; }
      h1 { color: #333; border-bottom: 2px solid #333; padding-bottom: 10px; }
      table { width: 100%; border-collapse: collapse; margin-top: 20px; }
      th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
      th { background-color: #f5f5f5; font-weight: bold; }
      tr:nth-child(even) { background-color: #f9f9f9; }
      .summary { background-color: #f0f8ff; padding: 15px; border-radius: 5px; margin-bottom: 20px; }
    </style>
  </head>
  <body>
    <h1>{{.Title}}</h1>
    <div>Generated on: {{.GeneratedOn}}</div>
    <div class="summary"><strong>Summary:</strong> {{.Count}} reports exported</div>
    <table>
      <thead>
        <tr>
          <th>ID</th><th>Title</th><th>Category</th><th>Status</th><th>Priority</th>
          <th>Assigned To</th><th>Department</th><th>Created Date</th><th>Location</th><th>Rating</th>
        </tr>
      </thead>
      <tbody>
        {{range .Rows}}
        <tr>
          <td>{{.ID}}</td><td>{{.Title}}</td><td>{{.Category}}</td><td>{{.Status}}</td><td>{{.Priority}}</td>
          <td>{{.AssignedTo}}</td><td>{{.Department}}</td><td>{{.CreatedAt}}</td><td>{{.Location}}</td><td>{{if .Rating}}{{.Rating}}{{else}}N/A{{end}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>
  </body>
</html>
`))
