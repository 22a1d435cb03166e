// Package types - Revenue rate and projection types
package types

import "github.com/shopspring/decimal"

// RevenueRate is the daily revenue figure of one stratum, derived from
// the average monthly fee of recent eligible starts
type RevenueRate struct {
	// Stratum identifies the population the rate applies to
	Stratum StratumKey `json:"stratum"`

	// DailyRevenue is the average monthly fee divided by days per month
	DailyRevenue decimal.Decimal `json:"daily_revenue"`

	// SampleSize is the number of recent starts behind the average
	SampleSize int `json:"sample_size"`
}

// RateTable maps canonical stratum keys to revenue rates
type RateTable map[string]RevenueRate

// Rate returns the revenue rate for a stratum key
func (t RateTable) Rate(key StratumKey) (RevenueRate, bool) {
	r, ok := t[key.String()]
	return r, ok
}

// ProjectionRow is one stratum's revenue projection over a horizon
type ProjectionRow struct {
	// Stratum identifies the projected population
	Stratum StratumKey `json:"stratum"`

	// HorizonDays is the projection horizon in days
	HorizonDays int `json:"horizon_days"`

	// NumSubs is the total eligible population of the stratum
	NumSubs int `json:"numsubs"`

	// NumActive is the count currently active
	NumActive int `json:"numactive"`

	// Revenue is the total projected revenue over the horizon
	Revenue decimal.Decimal `json:"revenue"`

	// RevenuePerStart is Revenue divided by NumSubs
	RevenuePerStart decimal.Decimal `json:"revenue_per_start"`

	// RevenuePerActive is Revenue divided by NumActive; zero when the
	// stratum has no active customers
	RevenuePerActive decimal.Decimal `json:"revenue_per_active"`
}
