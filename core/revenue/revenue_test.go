package revenue

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"churn-engine/core/types"
	"churn-engine/internal/errors"
)

func flatCurve() *types.SurvivalCurve {
	stratum := types.GlobalStratum()
	return &types.SurvivalCurve{
		Stratum: stratum,
		Buckets: []types.LifeTableBucket{
			{Tenure: 0, EndTenure: 299, Survival: 1, Hazard: 0, HazardDefined: true},
			{Tenure: 300, EndTenure: 599, Survival: 0.8, Hazard: 0.2, HazardDefined: true},
			{Tenure: 600, EndTenure: 100599, Survival: 0.5, HazardDefined: true, UnboundedTail: true},
		},
		TotalPopulation: 10,
		ActiveCount:     4,
	}
}

func rate(daily float64) types.RevenueRate {
	return types.RevenueRate{
		Stratum:      types.GlobalStratum(),
		DailyRevenue: decimal.NewFromFloat(daily),
		SampleSize:   10,
	}
}

// TestPerStartClipsBucketAtHorizon proves a bucket crossing the horizon
// only contributes the days inside it
func TestPerStartClipsBucketAtHorizon(t *testing.T) {
	p := NewProjector(flatCurve(), rate(2))

	// 300 days at survival 1 plus the 65 days of the second bucket that
	// fall before day 365, at survival 0.8.
	got, err := p.PerStart(365)
	if err != nil {
		t.Fatalf("PerStart failed: %v", err)
	}
	want := decimal.NewFromFloat(2 * (300*1.0 + 65*0.8))
	if !got.Equal(want) {
		t.Errorf("PerStart(365) = %s, want %s", got, want)
	}
}

// TestPerStartLinearInRate proves projection scales linearly with the
// daily revenue rate
func TestPerStartLinearInRate(t *testing.T) {
	curve := flatCurve()
	one, err := NewProjector(curve, rate(1)).PerStart(730)
	if err != nil {
		t.Fatalf("PerStart failed: %v", err)
	}
	three, err := NewProjector(curve, rate(3)).PerStart(730)
	if err != nil {
		t.Fatalf("PerStart failed: %v", err)
	}
	if !three.Equal(one.Mul(decimal.NewFromInt(3))) {
		t.Errorf("tripling the rate gave %s, want %s", three, one.Mul(decimal.NewFromInt(3)))
	}
}

// TestPerStartRejectsNonPositiveHorizon proves horizon validation
func TestPerStartRejectsNonPositiveHorizon(t *testing.T) {
	p := NewProjector(flatCurve(), rate(1))
	for _, h := range []int{0, -10} {
		if _, err := p.PerStart(h); err == nil || !errors.IsType(err, errors.TypeQuery) {
			t.Errorf("PerStart(%d): expected query error, got %v", h, err)
		}
	}
}

// TestForCohortAtZeroMatchesPerStart proves the cohort projection at
// reference tenure zero reduces to the per-start projection
func TestForCohortAtZeroMatchesPerStart(t *testing.T) {
	p := NewProjector(flatCurve(), rate(2))

	perStart, err := p.PerStart(365)
	if err != nil {
		t.Fatalf("PerStart failed: %v", err)
	}
	cohort, err := p.ForCohort(365, 0)
	if err != nil {
		t.Fatalf("ForCohort failed: %v", err)
	}
	if !cohort.Equal(perStart) {
		t.Errorf("ForCohort(365, 0) = %s, want PerStart value %s", cohort, perStart)
	}
}

// TestForCohortShiftsAndConditions proves the cohort window starts at the
// reference tenure and every term is conditioned on survival there
func TestForCohortShiftsAndConditions(t *testing.T) {
	p := NewProjector(flatCurve(), rate(1))

	// Reference tenure 300: s0 = 0.8. Window [300, 400): 100 days of the
	// second bucket at conditional survival 0.8/0.8 = 1.
	got, err := p.ForCohort(100, 300)
	if err != nil {
		t.Fatalf("ForCohort failed: %v", err)
	}
	want := decimal.NewFromInt(100)
	if !got.Equal(want) {
		t.Errorf("ForCohort(100, 300) = %s, want %s", got, want)
	}

	// Window [300, 700): 300 days at 1.0 plus 100 tail days at 0.5/0.8.
	got, err = p.ForCohort(400, 300)
	if err != nil {
		t.Fatalf("ForCohort failed: %v", err)
	}
	want = decimal.NewFromInt(300).Add(
		decimal.NewFromFloat(0.5 / 0.8).Mul(decimal.NewFromInt(100)))
	if !got.Equal(want) {
		t.Errorf("ForCohort(400, 300) = %s, want %s", got, want)
	}
}

// TestForCohortZeroSurvivalReference proves conditioning on a dead
// cohort is a no-data error
func TestForCohortZeroSurvivalReference(t *testing.T) {
	curve := &types.SurvivalCurve{
		Stratum: types.GlobalStratum(),
		Buckets: []types.LifeTableBucket{
			{Tenure: 0, EndTenure: 9, Survival: 1, Hazard: 1, HazardDefined: true},
			{Tenure: 10, EndTenure: 1009, Survival: 0, UnboundedTail: true},
		},
	}
	p := NewProjector(curve, rate(1))

	_, err := p.ForCohort(100, 50)
	if err == nil || !errors.IsNoData(err) {
		t.Errorf("expected no-data error for zero-survival reference, got %v", err)
	}
}

// TestRowAggregates proves the report row is per-start times population
// with the per-active ratio guarded against zero
func TestRowAggregates(t *testing.T) {
	p := NewProjector(flatCurve(), rate(2))

	row, err := p.Row(365)
	if err != nil {
		t.Fatalf("Row failed: %v", err)
	}
	perStart, _ := p.PerStart(365)
	if !row.Revenue.Equal(perStart.Mul(decimal.NewFromInt(10))) {
		t.Errorf("Revenue = %s, want per-start %s times 10", row.Revenue, perStart)
	}
	if !row.RevenuePerStart.Equal(perStart) {
		t.Errorf("RevenuePerStart = %s, want %s", row.RevenuePerStart, perStart)
	}
	if !row.RevenuePerActive.Equal(row.Revenue.Div(decimal.NewFromInt(4))) {
		t.Errorf("RevenuePerActive = %s, want revenue over 4", row.RevenuePerActive)
	}

	empty := flatCurve()
	empty.ActiveCount = 0
	row, err = NewProjector(empty, rate(2)).Row(365)
	if err != nil {
		t.Fatalf("Row failed: %v", err)
	}
	if !row.RevenuePerActive.IsZero() {
		t.Errorf("RevenuePerActive = %s with no active customers, want 0", row.RevenuePerActive)
	}
}

// TestDeriveRatesTrailingWindow proves only starts inside the trailing
// window feed the average and strata without recent starts get no rate
func TestDeriveRatesTrailingWindow(t *testing.T) {
	latest := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	records := []types.SubscriberRecord{
		{CustomerID: "a", StartDate: latest, Market: "Gotham", MonthlyFee: decimal.NewFromInt(30)},
		{CustomerID: "b", StartDate: latest.AddDate(0, 0, -100), Market: "Gotham", MonthlyFee: decimal.NewFromInt(60)},
		// Outside the 365-day window; must not pull the average down.
		{CustomerID: "c", StartDate: latest.AddDate(0, 0, -400), Market: "Gotham", MonthlyFee: decimal.NewFromInt(1)},
		// Stale stratum: only pre-window starts.
		{CustomerID: "d", StartDate: latest.AddDate(0, 0, -400), Market: "Metropolis", MonthlyFee: decimal.NewFromInt(50)},
	}

	rates, err := DeriveRates(records, types.Stratification{"market"}, 365)
	if err != nil {
		t.Fatalf("DeriveRates failed: %v", err)
	}

	gotham, ok := rates.Rate(types.StratumKey{Dimensions: []string{"market"}, Values: []string{"Gotham"}})
	if !ok {
		t.Fatal("missing rate for Gotham")
	}
	if gotham.SampleSize != 2 {
		t.Errorf("sample size = %d, want 2 (window should exclude the old start)", gotham.SampleSize)
	}
	want := decimal.NewFromInt(45).Div(DaysPerMonth)
	if !gotham.DailyRevenue.Equal(want) {
		t.Errorf("daily revenue = %s, want %s", gotham.DailyRevenue, want)
	}

	if _, ok := rates.Rate(types.StratumKey{Dimensions: []string{"market"}, Values: []string{"Metropolis"}}); ok {
		t.Error("got a rate for a stratum with no starts inside the window")
	}
}

// TestDeriveRatesEmptyInput proves an empty snapshot yields an empty
// rate table, not an error
func TestDeriveRatesEmptyInput(t *testing.T) {
	rates, err := DeriveRates(nil, nil, 365)
	if err != nil {
		t.Fatalf("DeriveRates failed: %v", err)
	}
	if len(rates) != 0 {
		t.Errorf("expected empty rate table, got %d entries", len(rates))
	}
}
