package pages

import (
	"time"

	"gritgym/internal/domain/analytics"
)

// AnalyticsView is the analytics screen.
type AnalyticsView struct {
	analytics.Report
	StatusDistribution []analytics.StatusSlice
	RevenueByStatus    []analytics.StatusSlice
	Total              int
	FetchFailed        bool
}

// Percent returns part as a whole-number share of the total payments.
func (v AnalyticsView) Percent(part int) int {
	if v.Total == 0 {
		return 0
	}
	return part * 100 / v.Total
}

// AnalyticsPage controls the analytics screen for one render pass.
type AnalyticsPage struct {
	base
}

// NewAnalyticsPage creates the controller; now is sampled once by the caller.
func NewAnalyticsPage(deps Deps, now time.Time) *AnalyticsPage {
	return &AnalyticsPage{base: newBase("analytics", deps, now)}
}

// View aggregates the loaded payments.
func (a *AnalyticsPage) View() AnalyticsView {
	report := analytics.Compute(a.payments, a.deps.Location)
	return AnalyticsView{
		Report:             report,
		StatusDistribution: report.Summary.StatusDistribution(),
		RevenueByStatus:    report.Summary.RevenueByStatus(),
		Total:              len(a.payments),
		FetchFailed:        a.fetchFailed,
	}
}

// Share is Percent for chart values carried as float64 counts.
func (v AnalyticsView) Share(value float64) int {
	return v.Percent(int(value))
}
