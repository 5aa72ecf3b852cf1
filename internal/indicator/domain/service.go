package domain

import "context"

// Service assembles the composite indicators for a period token. It never
// returns an error to callers: when the store or a sub-computation fails the
// affected section degrades to its documented empty default so one broken
// sub-indicator cannot blank the whole dashboard.
type Service interface {
	GetAllIndicators(ctx context.Context, periodToken string) Indicators
	DailyCostReport(ctx context.Context) DailyCostReport
}
