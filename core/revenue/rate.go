// Package revenue derives revenue rates and projects expected revenue
// over a survival curve.
package revenue

import (
	"time"

	"github.com/shopspring/decimal"

	"churn-engine/core/types"
)

// DaysPerMonth converts a monthly fee into a daily revenue figure
var DaysPerMonth = decimal.NewFromFloat(30.4)

// DeriveRates computes one daily revenue rate per stratum from the
// average monthly fee of recent eligible starts. Recency is a trailing
// window ending at the latest start date in the population; strata with
// no starts in the window get no rate, so projections there report no
// data instead of a silent zero.
func DeriveRates(records []types.SubscriberRecord, strat types.Stratification, windowDays int) (types.RateTable, error) {
	if len(records) == 0 {
		return types.RateTable{}, nil
	}

	var latest time.Time
	for i := range records {
		if records[i].StartDate.After(latest) {
			latest = records[i].StartDate
		}
	}
	windowStart := latest.AddDate(0, 0, -windowDays)

	type accum struct {
		stratum types.StratumKey
		sum     decimal.Decimal
		count   int
	}
	sums := make(map[string]*accum)

	for i := range records {
		r := &records[i]
		if r.StartDate.Before(windowStart) {
			continue
		}
		key, err := strat.KeyFor(r)
		if err != nil {
			return nil, err
		}
		keyStr := key.String()
		a, ok := sums[keyStr]
		if !ok {
			a = &accum{stratum: key}
			sums[keyStr] = a
		}
		a.sum = a.sum.Add(r.MonthlyFee)
		a.count++
	}

	rates := make(types.RateTable, len(sums))
	for keyStr, a := range sums {
		if a.count == 0 {
			continue
		}
		avgMonthly := a.sum.Div(decimal.NewFromInt(int64(a.count)))
		rates[keyStr] = types.RevenueRate{
			Stratum:      a.stratum,
			DailyRevenue: avgMonthly.Div(DaysPerMonth),
			SampleSize:   a.count,
		}
	}

	return rates, nil
}
