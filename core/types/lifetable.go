// Package types - Life table and survival curve types
package types

import "sort"

// LifeTableBucket is one (stratum, tenure) row of a life table.
// For a fixed stratum, buckets sorted by tenure tile [0, tail] with no
// gaps and no overlaps.
type LifeTableBucket struct {
	// Stratum identifies the curve this bucket belongs to
	Stratum StratumKey `json:"stratum"`

	// Tenure is the first day covered by this bucket
	Tenure int `json:"tenure"`

	// Population is the count of customers entering this exact tenure
	Population int `json:"population"`

	// Events is the count of terminal events at this tenure
	Events int `json:"events"`

	// CumulativePopulation is the count still at risk at this tenure or later
	CumulativePopulation int `json:"cumulative_population"`

	// Hazard is Events / CumulativePopulation; valid only when HazardDefined
	Hazard float64 `json:"hazard"`

	// HazardDefined is false when CumulativePopulation is zero. An
	// undefined hazard is skipped in the survival product, never treated
	// as zero.
	HazardDefined bool `json:"hazard_defined"`

	// Survival is the probability of reaching this tenure unstopped
	Survival float64 `json:"survival"`

	// EndTenure is the last day covered by this bucket
	EndTenure int `json:"end_tenure"`

	// UnboundedTail marks the terminal bucket, whose survival value is
	// returned for any query beyond the last observed tenure
	UnboundedTail bool `json:"unbounded_tail,omitempty"`
}

// SpanDays is the number of days this bucket covers
func (b *LifeTableBucket) SpanDays() int {
	return b.EndTenure - b.Tenure + 1
}

// Contains reports whether a tenure falls inside this bucket's range
func (b *LifeTableBucket) Contains(tenure int) bool {
	if tenure < b.Tenure {
		return false
	}
	return b.UnboundedTail || tenure <= b.EndTenure
}

// SurvivalCurve is the ordered bucket sequence for one stratum
type SurvivalCurve struct {
	// Stratum identifies the curve
	Stratum StratumKey `json:"stratum"`

	// Buckets are sorted ascending by tenure and tile [0, tail]
	Buckets []LifeTableBucket `json:"buckets"`

	// TotalPopulation is the eligible population of the stratum
	TotalPopulation int `json:"total_population"`

	// ActiveCount is the number of eligible records still active
	ActiveCount int `json:"active_count"`
}

// BucketAt returns the bucket whose range contains the tenure.
// Gap-filling guarantees every non-negative tenure maps to exactly one
// bucket, so ok is false only for negative tenure or an empty curve.
func (c *SurvivalCurve) BucketAt(tenure int) (*LifeTableBucket, bool) {
	if tenure < 0 || len(c.Buckets) == 0 {
		return nil, false
	}
	// Last bucket with Tenure <= tenure.
	idx := sort.Search(len(c.Buckets), func(i int) bool {
		return c.Buckets[i].Tenure > tenure
	}) - 1
	if idx < 0 {
		return nil, false
	}
	b := &c.Buckets[idx]
	if !b.Contains(tenure) {
		return nil, false
	}
	return b, true
}

// Survival returns the probability of surviving to a tenure. At a
// bucket's start tenure that is the stored entry value: the events there
// have not been survived yet. Strictly inside the span the events at the
// bucket's start are behind the customer, so the value steps down to
// entry times (1 - hazard) and stays there until the next bucket.
func (c *SurvivalCurve) Survival(tenure int) (float64, bool) {
	b, ok := c.BucketAt(tenure)
	if !ok {
		return 0, false
	}
	if tenure == b.Tenure || !b.HazardDefined {
		return b.Survival, true
	}
	if b.Hazard >= 1 {
		return 0, true
	}
	return b.Survival * (1 - b.Hazard), true
}

// LifeTable holds the curves of every computed stratum, keyed by the
// canonical stratum string
type LifeTable struct {
	// Stratification is the grouping that produced the table
	Stratification Stratification `json:"stratification,omitempty"`

	// Curves maps canonical stratum keys to their curves
	Curves map[string]*SurvivalCurve `json:"curves"`
}

// NewLifeTable creates an empty life table
func NewLifeTable(strat Stratification) *LifeTable {
	return &LifeTable{
		Stratification: strat,
		Curves:         make(map[string]*SurvivalCurve),
	}
}

// Curve returns the curve for a stratum key
func (t *LifeTable) Curve(key StratumKey) (*SurvivalCurve, bool) {
	c, ok := t.Curves[key.String()]
	return c, ok
}

// StratumKeys returns the canonical keys in sorted order
func (t *LifeTable) StratumKeys() []string {
	keys := make([]string, 0, len(t.Curves))
	for k := range t.Curves {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
