package service

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/stuurdean/municipality-dashboards/internal/domain"
	"github.com/stuurdean/municipality-dashboards/internal/observability"
	"github.com/stuurdean/municipality-dashboards/internal/repository"
)

const (
	RangeWeek    = "7d"
	RangeMonth   = "30d"
	RangeQuarter = "90d"
)

const hoursPerDay = 24

// AnalyticsService derives dashboard statistics by scanning the report and
// user collections in memory. Every aggregation swallows errors and degrades
// to zeroed results; failures surface only through logs and metrics.
type AnalyticsService struct {
	reports  repository.ReportRepository
	users    repository.UserRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
	metrics  *observability.Metrics
	now      func() time.Time
}

// AnalyticsDependencies bundles collaborators.
type AnalyticsDependencies struct {
	ReportRepo repository.ReportRepository
	UserRepo   repository.UserRepository
	Cache      *redis.Client
	CacheTTL   time.Duration
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// NewAnalyticsService creates the service.
func NewAnalyticsService(deps AnalyticsDependencies) *AnalyticsService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{
		reports:  deps.ReportRepo,
		users:    deps.UserRepo,
		cache:    deps.Cache,
		cacheTTL: deps.CacheTTL,
		logger:   logger,
		metrics:  deps.Metrics,
		now:      time.Now,
	}
}

// Overview counts report volume in the date window, active staff, the mean
// resolution time across all ever-resolved reports (not window-limited) and
// the satisfaction rate from citizen ratings.
func (s *AnalyticsService) Overview(ctx context.Context, timeRange string) domain.AnalyticsOverview {
	var overview domain.AnalyticsOverview
	if s.cacheGet(ctx, "analytics:overview:"+timeRange, &overview) {
		return overview
	}

	start, end := s.dateRange(timeRange)

	var windowReports, allReports []domain.Report
	var staff []domain.User

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		windowReports, err = s.reports.List(gctx, repository.ReportFilter{CreatedFrom: &start, CreatedTo: &end})
		return err
	})
	g.Go(func() error {
		var err error
		allReports, err = s.reports.List(gctx, repository.ReportFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		staff, err = s.users.List(gctx, repository.UserFilter{
			UserTypes: []domain.UserType{domain.UserTypeEmployee, domain.UserTypeAdmin},
		})
		return err
	})
	if err := g.Wait(); err != nil {
		s.aggregationFailed("overview", err)
		return domain.AnalyticsOverview{}
	}

	resolved := 0
	pending := 0
	for _, report := range windowReports {
		if report.Status.Terminal() {
			resolved++
		} else if report.Status.Pending() {
			pending++
		}
	}

	overview = domain.AnalyticsOverview{
		TotalReports:          len(windowReports),
		ResolvedReports:       resolved,
		PendingReports:        pending,
		ActiveUsers:           len(staff),
		AverageResolutionTime: round1(averageResolutionDays(allReports)),
		SatisfactionRate:      round1(satisfactionRate(windowReports)),
	}
	s.cacheSet(ctx, "analytics:overview:"+timeRange, overview)
	return overview
}

// ReportTrends buckets report counts by calendar day across the range. Every
// day in range gets a bucket, zero-filled when no reports exist.
func (s *AnalyticsService) ReportTrends(ctx context.Context, timeRange string) []domain.ReportTrend {
	var trends []domain.ReportTrend
	if s.cacheGet(ctx, "analytics:trends:"+timeRange, &trends) {
		return trends
	}

	start, end := s.dateRange(timeRange)
	reports, err := s.reports.List(ctx, repository.ReportFilter{CreatedFrom: &start, CreatedTo: &end})
	if err != nil {
		s.aggregationFailed("trends", err)
		return []domain.ReportTrend{}
	}

	byDate := map[string]*domain.ReportTrend{}
	for _, report := range reports {
		date := report.CreatedAt.Format("2006-01-02")
		bucket, ok := byDate[date]
		if !ok {
			bucket = &domain.ReportTrend{Date: date}
			byDate[date] = bucket
		}
		bucket.Created++
		if report.Status.Terminal() {
			bucket.Resolved++
		} else if report.Status.Pending() {
			bucket.Pending++
		}
	}

	trends = []domain.ReportTrend{}
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		date := day.Format("2006-01-02")
		if bucket, ok := byDate[date]; ok {
			trends = append(trends, *bucket)
		} else {
			trends = append(trends, domain.ReportTrend{Date: date})
		}
	}
	s.cacheSet(ctx, "analytics:trends:"+timeRange, trends)
	return trends
}

// DepartmentStats groups reports by assigned department, skipping
// unassigned ones, ordered by volume.
func (s *AnalyticsService) DepartmentStats(ctx context.Context) []domain.DepartmentStats {
	reports, err := s.reports.List(ctx, repository.ReportFilter{})
	if err != nil {
		s.aggregationFailed("departments", err)
		return []domain.DepartmentStats{}
	}

	byDept := map[string]*domain.DepartmentStats{}
	resolutionAcc := map[string][]float64{}
	for _, report := range reports {
		dept := "Unassigned"
		if report.AssignedDepartment != nil && *report.AssignedDepartment != "" {
			dept = *report.AssignedDepartment
		}
		stats, ok := byDept[dept]
		if !ok {
			stats = &domain.DepartmentStats{Department: dept}
			byDept[dept] = stats
		}
		stats.TotalReports++
		if report.Status.Terminal() {
			stats.Resolved++
			if report.ResolvedAt != nil {
				resolutionAcc[dept] = append(resolutionAcc[dept], resolutionDays(report))
			}
		}
	}

	result := []domain.DepartmentStats{}
	for dept, stats := range byDept {
		if dept == "Unassigned" {
			continue
		}
		if days := resolutionAcc[dept]; len(days) > 0 {
			total := 0.0
			for _, d := range days {
				total += d
			}
			stats.AverageResolutionTime = round1(total / float64(len(days)))
		}
		result = append(result, *stats)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].TotalReports > result[j].TotalReports
	})
	return result
}

// UserPerformance computes per-employee completion figures for staff with at
// least one assigned report, top 10 by completion rate.
func (s *AnalyticsService) UserPerformance(ctx context.Context) []domain.UserPerformance {
	var reports []domain.Report
	var staff []domain.User

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		reports, err = s.reports.List(gctx, repository.ReportFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		staff, err = s.users.List(gctx, repository.UserFilter{
			UserTypes: []domain.UserType{domain.UserTypeEmployee, domain.UserTypeAdmin},
		})
		return err
	})
	if err := g.Wait(); err != nil {
		s.aggregationFailed("performance", err)
		return []domain.UserPerformance{}
	}

	result := []domain.UserPerformance{}
	for _, user := range staff {
		assigned := 0
		completed := 0
		var resolutionTotal float64
		resolvedWithTime := 0
		for _, report := range reports {
			if report.AssignedToID == nil || *report.AssignedToID != user.ID {
				continue
			}
			assigned++
			if report.Status.Terminal() {
				completed++
				if report.ResolvedAt != nil {
					resolutionTotal += resolutionDays(report)
					resolvedWithTime++
				}
			}
		}
		if assigned == 0 {
			continue
		}

		perf := domain.UserPerformance{
			UserID:           user.ID,
			UserName:         user.FullName,
			Department:       user.Department,
			AssignedReports:  assigned,
			CompletedReports: completed,
			CompletionRate:   round1(float64(completed) / float64(assigned) * 100),
		}
		if perf.Department == "" {
			perf.Department = "Unassigned"
		}
		if resolvedWithTime > 0 {
			perf.AverageResolutionTime = round1(resolutionTotal / float64(resolvedWithTime))
		}
		result = append(result, perf)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CompletionRate > result[j].CompletionRate
	})
	if len(result) > 10 {
		result = result[:10]
	}
	return result
}

// CategoryStats compares the last 30 days against the 30 before, per issue
// type, top 8 by current count. Trend is (current-previous)/previous*100;
// a category absent from the previous period but present now reads as 100.
func (s *AnalyticsService) CategoryStats(ctx context.Context) []domain.CategoryStats {
	reports, err := s.reports.List(ctx, repository.ReportFilter{Limit: 1000})
	if err != nil {
		s.aggregationFailed("categories", err)
		return []domain.CategoryStats{}
	}

	now := s.now()
	currentStart := now.AddDate(0, 0, -30)
	previousStart := now.AddDate(0, 0, -60)

	currentCounts := map[string]int{}
	previousCounts := map[string]int{}
	for _, report := range reports {
		category := string(report.IssueType)
		if category == "" {
			category = string(domain.IssueOther)
		}
		switch {
		case !report.CreatedAt.Before(currentStart):
			currentCounts[category]++
		case !report.CreatedAt.Before(previousStart):
			previousCounts[category]++
		}
	}

	result := []domain.CategoryStats{}
	for category, count := range currentCounts {
		result = append(result, domain.CategoryStats{
			Category: category,
			Count:    count,
			Trend:    categoryTrend(count, previousCounts[category]),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	if len(result) > 8 {
		result = result[:8]
	}
	return result
}

// Dashboard loads the five analytics views concurrently and resolves them
// together, the way the dashboard landing page consumes them.
func (s *AnalyticsService) Dashboard(ctx context.Context, timeRange string) domain.DashboardStats {
	var stats domain.DashboardStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats.Overview = s.Overview(gctx, timeRange)
		return nil
	})
	g.Go(func() error {
		stats.Trends = s.ReportTrends(gctx, timeRange)
		return nil
	})
	g.Go(func() error {
		stats.Departments = s.DepartmentStats(gctx)
		return nil
	})
	g.Go(func() error {
		stats.Performance = s.UserPerformance(gctx)
		return nil
	})
	g.Go(func() error {
		stats.Categories = s.CategoryStats(gctx)
		return nil
	})
	_ = g.Wait()
	return stats
}

func categoryTrend(current, previous int) int {
	if previous > 0 {
		return int(math.Round(float64(current-previous) / float64(previous) * 100))
	}
	if current > 0 {
		return 100
	}
	return 0
}

func resolutionDays(report domain.Report) float64 {
	return report.ResolvedAt.Sub(report.CreatedAt).Hours() / hoursPerDay
}

func averageResolutionDays(reports []domain.Report) float64 {
	total := 0.0
	count := 0
	for _, report := range reports {
		if report.Status.Terminal() && report.ResolvedAt != nil {
			total += resolutionDays(report)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

func satisfactionRate(reports []domain.Report) float64 {
	total := 0.0
	count := 0
	for _, report := range reports {
		if report.Rating != nil {
			total += *report.Rating
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func (s *AnalyticsService) dateRange(timeRange string) (time.Time, time.Time) {
	now := s.now()
	days := 7
	switch timeRange {
	case RangeMonth:
		days = 30
	case RangeQuarter:
		days = 90
	}
	start := now.AddDate(0, 0, -days)
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, int(999*time.Millisecond), now.Location())
	return start, end
}

func (s *AnalyticsService) aggregationFailed(view string, err error) {
	s.logger.Warn("aggregation failed", zap.String("view", view), zap.Error(err))
	if s.metrics != nil {
		s.metrics.RecordAggregationFailure(view)
	}
}

func (s *AnalyticsService) cacheGet(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (s *AnalyticsService) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	// cache write failures are non-fatal; the next read recomputes
	_ = s.cache.Set(ctx, key, raw, s.cacheTTL).Err()
}
