// Package dataset provides subscriber snapshot loading and eligibility
// filtering. The engine only ever sees the filtered, eligible population.
package dataset

import (
	"time"

	"go.uber.org/zap"

	"churn-engine/core/types"
	"churn-engine/internal/logging"
)

// Filter applies the eligibility rules of the engine contract
type Filter struct {
	// EarliestStart excludes records starting before this date. The
	// source feed produces spurious pre-2004 stops, so the boundary is
	// configurable rather than assumed.
	EarliestStart time.Time
}

// NewFilter creates a filter with the given validity cutoff
func NewFilter(earliestStart time.Time) *Filter {
	return &Filter{EarliestStart: earliestStart}
}

// Apply returns the eligible records and a quality report of exclusions.
// Exclusions are diagnostics, never fatal errors.
func (f *Filter) Apply(records []types.SubscriberRecord) ([]types.SubscriberRecord, types.QualityReport) {
	report := types.QualityReport{TotalRecords: len(records)}
	eligible := make([]types.SubscriberRecord, 0, len(records))

	for _, r := range records {
		if r.CustomerID == "" {
			report.MissingCustomerID++
			continue
		}
		if r.TenureDays < 0 {
			report.NegativeTenure++
			continue
		}
		if r.StartDate.Before(f.EarliestStart) {
			report.PreCutoffStart++
			continue
		}
		eligible = append(eligible, r)
	}
	report.Eligible = len(eligible)

	if report.Excluded() > 0 {
		logging.Warn("excluded ineligible subscriber records",
			zap.Int("total", report.TotalRecords),
			zap.Int("negative_tenure", report.NegativeTenure),
			zap.Int("pre_cutoff_start", report.PreCutoffStart),
			zap.Int("missing_customer_id", report.MissingCustomerID),
		)
	}

	return eligible, report
}
