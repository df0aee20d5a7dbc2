package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stuurdean/municipality-dashboards/internal/domain"
	"github.com/stuurdean/municipality-dashboards/internal/observability"
)

func newAnalyticsFixture(store *fakeStore, now time.Time) *AnalyticsService {
	svc := NewAnalyticsService(AnalyticsDependencies{
		ReportRepo: &fakeReportRepo{store: store},
		UserRepo:   &fakeUserRepo{store: store},
		Metrics:    observability.NewMetrics(),
	})
	svc.now = func() time.Time { return now }
	return svc
}

func day(yy int, mm time.Month, dd int) time.Time {
	return time.Date(yy, mm, dd, 12, 0, 0, 0, time.UTC)
}

func TestCategoryTrend(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		previous int
		want     int
	}{
		{"both zero", 0, 0, 0},
		{"new category", 5, 0, 100},
		{"doubled", 10, 5, 100},
		{"halved", 5, 10, -50},
		{"flat", 7, 7, 0},
		{"third more", 4, 3, 33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := categoryTrend(tt.current, tt.previous); got != tt.want {
				t.Errorf("categoryTrend(%d, %d) = %d, want %d", tt.current, tt.previous, got, tt.want)
			}
		})
	}
}

func TestAverageResolutionDays(t *testing.T) {
	created := day(2024, time.January, 1)
	resolved := day(2024, time.January, 4)
	reports := []domain.Report{
		{Status: domain.ReportStatusResolved, CreatedAt: created, ResolvedAt: &resolved},
		{Status: domain.ReportStatusSubmitted, CreatedAt: created},
	}
	if got := averageResolutionDays(reports); got != 3.0 {
		t.Errorf("averageResolutionDays = %v, want 3.0", got)
	}
	if got := averageResolutionDays(nil); got != 0 {
		t.Errorf("averageResolutionDays(nil) = %v, want 0", got)
	}
}

func TestReportTrendsZeroFilled(t *testing.T) {
	now := day(2024, time.March, 10)
	store := newFakeStore()
	store.addReport(domain.Report{Status: domain.ReportStatusSubmitted, CreatedAt: day(2024, time.March, 8)})
	store.addReport(domain.Report{Status: domain.ReportStatusResolved, CreatedAt: day(2024, time.March, 8)})
	svc := newAnalyticsFixture(store, now)

	trends := svc.ReportTrends(context.Background(), RangeWeek)
	// 7 days back plus today, one bucket per calendar day
	if len(trends) != 8 {
		t.Fatalf("trend buckets = %d, want 8", len(trends))
	}
	if trends[0].Date != "2024-03-03" || trends[len(trends)-1].Date != "2024-03-10" {
		t.Errorf("range = %s..%s", trends[0].Date, trends[len(trends)-1].Date)
	}

	var busy, quiet *domain.ReportTrend
	for i := range trends {
		switch trends[i].Date {
		case "2024-03-08":
			busy = &trends[i]
		case "2024-03-05":
			quiet = &trends[i]
		}
	}
	if busy == nil || busy.Created != 2 || busy.Resolved != 1 {
		t.Errorf("busy day = %+v", busy)
	}
	if quiet == nil || quiet.Created != 0 || quiet.Resolved != 0 || quiet.Pending != 0 {
		t.Errorf("quiet day should be zero-filled, got %+v", quiet)
	}
}

func TestOverviewCounts(t *testing.T) {
	now := day(2024, time.March, 10)
	store := newFakeStore()
	rating := 4.0
	resolvedAt := day(2024, time.March, 9)
	store.addReport(domain.Report{Status: domain.ReportStatusResolved, CreatedAt: day(2024, time.March, 8), ResolvedAt: &resolvedAt, Rating: &rating})
	store.addReport(domain.Report{Status: domain.ReportStatusInProgress, CreatedAt: day(2024, time.March, 9)})
	store.addReport(domain.Report{Status: domain.ReportStatusSubmitted, CreatedAt: day(2024, time.March, 9)})
	// outside the window
	store.addReport(domain.Report{Status: domain.ReportStatusSubmitted, CreatedAt: day(2024, time.January, 1)})
	store.addUser(domain.User{FullName: "Maya Okafor", UserType: domain.UserTypeEmployee, IsActive: true})
	store.addUser(domain.User{FullName: "Site Admin", UserType: domain.UserTypeAdmin, IsActive: true})
	store.addUser(domain.User{FullName: "A Resident", UserType: domain.UserTypeResident, IsActive: true})
	svc := newAnalyticsFixture(store, now)

	overview := svc.Overview(context.Background(), RangeWeek)
	if overview.TotalReports != 3 {
		t.Errorf("totalReports = %d, want 3", overview.TotalReports)
	}
	if overview.ResolvedReports != 1 {
		t.Errorf("resolvedReports = %d, want 1", overview.ResolvedReports)
	}
	if overview.PendingReports != 1 {
		t.Errorf("pendingReports = %d, want 1 (submitted is not pending)", overview.PendingReports)
	}
	if overview.ActiveUsers != 2 {
		t.Errorf("activeUsers = %d, want 2 staff", overview.ActiveUsers)
	}
	if overview.AverageResolutionTime != 1.0 {
		t.Errorf("averageResolutionTime = %v, want 1.0", overview.AverageResolutionTime)
	}
	if overview.SatisfactionRate != 4.0 {
		t.Errorf("satisfactionRate = %v, want 4.0", overview.SatisfactionRate)
	}
}

func TestOverviewSwallowsStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("connection refused")
	metrics := observability.NewMetrics()
	svc := NewAnalyticsService(AnalyticsDependencies{
		ReportRepo: &fakeReportRepo{store: store},
		UserRepo:   &fakeUserRepo{store: store},
		Metrics:    metrics,
	})

	overview := svc.Overview(context.Background(), RangeWeek)
	if overview != (domain.AnalyticsOverview{}) {
		t.Errorf("expected zeroed overview on failure, got %+v", overview)
	}
	if metrics.AggregationFailures("overview") != 1 {
		t.Error("aggregation failure not counted")
	}
}

func TestUserPerformanceMatchesByID(t *testing.T) {
	now := day(2024, time.March, 10)
	store := newFakeStore()
	maya := store.addUser(domain.User{FullName: "Maya Okafor", UserType: domain.UserTypeEmployee, Department: "Roads", IsActive: true})
	store.addUser(domain.User{FullName: "Johan van Wyk", UserType: domain.UserTypeEmployee, Department: "Water", IsActive: true})

	resolvedAt := day(2024, time.March, 9)
	name := maya.FullName
	store.addReport(domain.Report{
		Status: domain.ReportStatusResolved, CreatedAt: day(2024, time.March, 7),
		ResolvedAt: &resolvedAt, AssignedTo: &name, AssignedToID: &maya.ID,
	})
	store.addReport(domain.Report{
		Status: domain.ReportStatusInProgress, CreatedAt: day(2024, time.March, 8),
		AssignedTo: &name, AssignedToID: &maya.ID,
	})
	svc := newAnalyticsFixture(store, now)

	performance := svc.UserPerformance(context.Background())
	if len(performance) != 1 {
		t.Fatalf("performance rows = %d, want 1 (staff without assignments excluded)", len(performance))
	}
	row := performance[0]
	if row.UserID != maya.ID || row.AssignedReports != 2 || row.CompletedReports != 1 {
		t.Errorf("row = %+v", row)
	}
	if row.CompletionRate != 50.0 {
		t.Errorf("completionRate = %v, want 50.0", row.CompletionRate)
	}
	if row.AverageResolutionTime != 2.0 {
		t.Errorf("averageResolutionTime = %v, want 2.0", row.AverageResolutionTime)
	}
}

func TestCategoryStatsWindows(t *testing.T) {
	now := day(2024, time.June, 30)
	store := newFakeStore()
	// current window: last 30 days
	store.addReport(domain.Report{IssueType: domain.IssuePothole, Status: domain.ReportStatusSubmitted, CreatedAt: day(2024, time.June, 20)})
	store.addReport(domain.Report{IssueType: domain.IssuePothole, Status: domain.ReportStatusSubmitted, CreatedAt: day(2024, time.June, 25)})
	store.addReport(domain.Report{IssueType: domain.IssueGarbage, Status: domain.ReportStatusSubmitted, CreatedAt: day(2024, time.June, 10)})
	// previous window: 30-60 days back
	store.addReport(domain.Report{IssueType: domain.IssuePothole, Status: domain.ReportStatusSubmitted, CreatedAt: day(2024, time.May, 10)})
	svc := newAnalyticsFixture(store, now)

	stats := svc.CategoryStats(context.Background())
	if len(stats) != 2 {
		t.Fatalf("categories = %d, want 2", len(stats))
	}
	if stats[0].Category != "pothole" || stats[0].Count != 2 {
		t.Errorf("top category = %+v", stats[0])
	}
	if stats[0].Trend != 100 {
		t.Errorf("pothole trend = %d, want 100 (1 -> 2)", stats[0].Trend)
	}
	if stats[1].Category != "garbage" || stats[1].Trend != 100 {
		t.Errorf("new category trend = %+v, want 100", stats[1])
	}
}

func TestDepartmentStatsSkipsUnassigned(t *testing.T) {
	now := day(2024, time.March, 10)
	store := newFakeStore()
	roads := "Roads"
	resolvedAt := day(2024, time.March, 6)
	store.addReport(domain.Report{
		Status: domain.ReportStatusResolved, CreatedAt: day(2024, time.March, 4),
		ResolvedAt: &resolvedAt, AssignedDepartment: &roads,
	})
	store.addReport(domain.Report{Status: domain.ReportStatusSubmitted, CreatedAt: day(2024, time.March, 5), AssignedDepartment: &roads})
	store.addReport(domain.Report{Status: domain.ReportStatusSubmitted, CreatedAt: day(2024, time.March, 5)})
	svc := newAnalyticsFixture(store, now)

	stats := svc.DepartmentStats(context.Background())
	if len(stats) != 1 {
		t.Fatalf("departments = %d, want 1 (unassigned excluded)", len(stats))
	}
	if stats[0].Department != "Roads" || stats[0].TotalReports != 2 || stats[0].Resolved != 1 {
		t.Errorf("department stats = %+v", stats[0])
	}
	if stats[0].AverageResolutionTime != 2.0 {
		t.Errorf("averageResolutionTime = %v, want 2.0", stats[0].AverageResolutionTime)
	}
}

func TestDashboardAggregatesAllViews(t *testing.T) {
	now := day(2024, time.March, 10)
	store := newFakeStore()
	store.addReport(domain.Report{IssueType: domain.IssuePothole, Status: domain.ReportStatusSubmitted, CreatedAt: day(2024, time.March, 9)})
	svc := newAnalyticsFixture(store, now)

	stats := svc.Dashboard(context.Background(), RangeWeek)
	if stats.Overview.TotalReports != 1 {
		t.Errorf("overview.totalReports = %d, want 1", stats.Overview.TotalReports)
	}
	if len(stats.Trends) != 8 {
		t.Errorf("trend buckets = %d, want 8", len(stats.Trends))
	}
	if len(stats.Categories) != 1 {
		t.Errorf("categories = %d, want 1", len(stats.Categories))
	}
}
