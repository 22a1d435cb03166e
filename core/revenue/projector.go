// Package revenue - revenue projection over a survival curve
package revenue

import (
	"github.com/shopspring/decimal"

	"churn-engine/core/types"
	"churn-engine/internal/errors"
)

// Projector combines one stratum's survival curve with its revenue rate
type Projector struct {
	curve *types.SurvivalCurve
	rate  types.RevenueRate
}

// NewProjector creates a projector for one stratum
func NewProjector(curve *types.SurvivalCurve, rate types.RevenueRate) *Projector {
	return &Projector{curve: curve, rate: rate}
}

// PerStart computes the expected revenue per starting customer over a
// horizon: the sum over buckets before the horizon of
// daily_revenue * survival(tenure) * days, where days is the bucket span
// clipped to the horizon. A bucket whose span crosses the horizon only
// counts the portion inside it.
func (p *Projector) PerStart(horizonDays int) (decimal.Decimal, error) {
	if horizonDays <= 0 {
		return decimal.Zero, errors.Newf(errors.TypeQuery, "horizon must be positive, got %d", horizonDays)
	}

	total := decimal.Zero
	for i := range p.curve.Buckets {
		b := &p.curve.Buckets[i]
		if b.Tenure >= horizonDays {
			break
		}
		days := b.SpanDays()
		if remaining := horizonDays - b.Tenure; days > remaining {
			days = remaining
		}
		term := p.rate.DailyRevenue.
			Mul(decimal.NewFromFloat(b.Survival)).
			Mul(decimal.NewFromInt(int64(days)))
		total = total.Add(term)
	}
	return total, nil
}

// ForCohort computes the expected revenue per customer of an existing
// cohort that has already survived to refTenure. Each term's survival is
// conditioned on survival at the reference tenure and the summation
// window shifts to [refTenure, refTenure+horizon).
func (p *Projector) ForCohort(horizonDays, refTenure int) (decimal.Decimal, error) {
	if horizonDays <= 0 {
		return decimal.Zero, errors.Newf(errors.TypeQuery, "horizon must be positive, got %d", horizonDays)
	}
	if refTenure < 0 {
		return decimal.Zero, errors.Newf(errors.TypeQuery, "reference tenure must be non-negative, got %d", refTenure)
	}

	s0, ok := p.curve.Survival(refTenure)
	if !ok {
		return decimal.Zero, errors.NoData("no bucket covers reference tenure").WithContext("tenure", refTenure)
	}
	if s0 == 0 {
		return decimal.Zero, errors.NoData("survival at reference tenure is zero").WithContext("tenure", refTenure)
	}

	windowEnd := refTenure + horizonDays
	total := decimal.Zero
	for i := range p.curve.Buckets {
		b := &p.curve.Buckets[i]
		if b.Tenure >= windowEnd {
			break
		}
		if b.EndTenure < refTenure {
			continue
		}
		start := b.Tenure
		if start < refTenure {
			start = refTenure
		}
		end := b.EndTenure
		if end > windowEnd-1 {
			end = windowEnd - 1
		}
		days := end - start + 1
		if days <= 0 {
			continue
		}
		term := p.rate.DailyRevenue.
			Mul(decimal.NewFromFloat(b.Survival / s0)).
			Mul(decimal.NewFromInt(int64(days)))
		total = total.Add(term)
	}
	return total, nil
}

// Row builds the aggregate projection report row for the stratum:
// total revenue across all starts plus the per-start and per-active
// ratios. Per-active is zero when the stratum has no active customers.
func (p *Projector) Row(horizonDays int) (types.ProjectionRow, error) {
	perStart, err := p.PerStart(horizonDays)
	if err != nil {
		return types.ProjectionRow{}, err
	}

	numSubs := p.curve.TotalPopulation
	numActive := p.curve.ActiveCount
	total := perStart.Mul(decimal.NewFromInt(int64(numSubs)))

	row := types.ProjectionRow{
		Stratum:         p.curve.Stratum,
		HorizonDays:     horizonDays,
		NumSubs:         numSubs,
		NumActive:       numActive,
		Revenue:         total,
		RevenuePerStart: perStart,
	}
	if numActive > 0 {
		row.RevenuePerActive = total.Div(decimal.NewFromInt(int64(numActive)))
	}
	return row, nil
}
