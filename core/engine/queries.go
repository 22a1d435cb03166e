// Package engine - query surface over a computed result
package engine

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"churn-engine/core/revenue"
	"churn-engine/core/survival"
	"churn-engine/core/types"
	"churn-engine/internal/errors"
	"churn-engine/internal/logging"
)

// Curve returns the survival curve of a stratum
func (r *Result) Curve(key types.StratumKey) (*types.SurvivalCurve, error) {
	curve, ok := r.Table.Curve(key)
	if !ok {
		return nil, errors.NoData("no curve for stratum").WithContext("stratum", key.String())
	}
	return curve, nil
}

// Survival returns the probability of surviving to a tenure in a stratum
func (r *Result) Survival(key types.StratumKey, tenure int) (float64, error) {
	curve, err := r.Curve(key)
	if err != nil {
		return 0, err
	}
	s, ok := curve.Survival(tenure)
	if !ok {
		return 0, errors.Query("tenure must be non-negative").WithContext("tenure", tenure)
	}
	return s, nil
}

// Hazard returns the hazard at a tenure, resolved through the bucket
// whose range contains it. A no-data error means the hazard is undefined
// there (zero cumulative population).
func (r *Result) Hazard(key types.StratumKey, tenure int) (float64, error) {
	curve, err := r.Curve(key)
	if err != nil {
		return 0, err
	}
	b, ok := curve.BucketAt(tenure)
	if !ok {
		return 0, errors.Query("tenure must be non-negative").WithContext("tenure", tenure)
	}
	if !b.HazardDefined {
		return 0, errors.NoData("hazard undefined: no population at risk").WithContext("tenure", tenure)
	}
	return b.Hazard, nil
}

// ConditionalSurvival returns the probability of surviving to t1 given
// survival to t0 already observed
func (r *Result) ConditionalSurvival(key types.StratumKey, t0, t1 int) (float64, error) {
	curve, err := r.Curve(key)
	if err != nil {
		return 0, err
	}
	return survival.Conditional(curve, t0, t1)
}

// ProjectRevenue computes expected revenue per customer for a stratum over
// a horizon. With a non-nil cohort reference tenure the projection is for
// an existing cohort that already survived to that tenure. A stratum
// without a revenue rate yields a no-data error, never a silent zero.
func (r *Result) ProjectRevenue(key types.StratumKey, horizonDays int, cohortReferenceTenure *int) (decimal.Decimal, error) {
	curve, err := r.Curve(key)
	if err != nil {
		return decimal.Zero, err
	}
	rate, ok := r.Rates.Rate(key)
	if !ok {
		return decimal.Zero, errors.NoData("no revenue rate for stratum").WithContext("stratum", key.String())
	}

	projector := revenue.NewProjector(curve, rate)
	if cohortReferenceTenure != nil {
		return projector.ForCohort(horizonDays, *cohortReferenceTenure)
	}
	return projector.PerStart(horizonDays)
}

// ProjectionReport builds the aggregate revenue projection report across
// all computed strata for one horizon. Strata without a revenue rate are
// skipped with a warning.
func (r *Result) ProjectionReport(horizonDays int) ([]types.ProjectionRow, error) {
	rows := make([]types.ProjectionRow, 0, len(r.Table.Curves))
	for _, keyStr := range r.Table.StratumKeys() {
		curve := r.Table.Curves[keyStr]
		rate, ok := r.Rates.Rate(curve.Stratum)
		if !ok {
			logging.Warn("skipping stratum without revenue rate",
				zap.String("stratum", keyStr),
			)
			continue
		}
		row, err := revenue.NewProjector(curve, rate).Row(horizonDays)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
