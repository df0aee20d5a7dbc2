package domain

// AnalyticsOverview summarizes report volume for a date window. Resolution
// time is a mean over all ever-resolved reports, not window-limited.
type AnalyticsOverview struct {
	TotalReports          int     `json:"totalReports"`
	ResolvedReports       int     `json:"resolvedReports"`
	PendingReports        int     `json:"pendingReports"`
	ActiveUsers           int     `json:"activeUsers"`
	AverageResolutionTime float64 `json:"averageResolutionTime"`
	SatisfactionRate      float64 `json:"satisfactionRate"`
}

// ReportTrend is one calendar-day bucket of report counts.
type ReportTrend struct {
	Date     string `json:"date"`
	Created  int    `json:"created"`
	Resolved int    `json:"resolved"`
	Pending  int    `json:"pending"`
}

// DepartmentStats aggregates reports per assigned department.
type DepartmentStats struct {
	Department            string  `json:"department"`
	TotalReports          int     `json:"totalReports"`
	Resolved              int     `json:"resolved"`
	AverageResolutionTime float64 `json:"averageResolutionTime"`
}

// UserPerformance aggregates per-employee completion figures.
type UserPerformance struct {
	UserID                string  `json:"userId"`
	UserName              string  `json:"userName"`
	Department            string  `json:"department"`
	AssignedReports       int     `json:"assignedReports"`
	CompletedReports      int     `json:"completedReports"`
	CompletionRate        float64 `json:"completionRate"`
	AverageResolutionTime float64 `json:"averageResolutionTime"`
}

// CategoryStats holds current-period counts and trend vs the prior period.
type CategoryStats struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
	Trend    int    `json:"trend"`
}

// DashboardStats bundles the five analytics views loaded together by the
// dashboard landing page.
type DashboardStats struct {
	Overview    AnalyticsOverview `json:"overview"`
	Trends      []ReportTrend     `json:"trends"`
	Departments []DepartmentStats `json:"departments"`
	Performance []UserPerformance `json:"performance"`
	Categories  []CategoryStats   `json:"categories"`
}
