package survival

import (
	"math"
	"math/rand"
	"testing"

	"churn-engine/core/lifetable"
	"churn-engine/core/types"
	"churn-engine/internal/errors"
)

// curveFrom runs the full bucket pipeline over (tenure, population, events)
// triples and computes the curve
func curveFrom(t *testing.T, rows [][3]int) *types.SurvivalCurve {
	t.Helper()
	stratum := types.GlobalStratum()
	buckets := make([]types.LifeTableBucket, 0, len(rows))
	total, active := 0, 0
	for _, r := range rows {
		buckets = append(buckets, types.LifeTableBucket{
			Stratum:    stratum,
			Tenure:     r[0],
			Population: r[1],
			Events:     r[2],
		})
		total += r[1]
		active += r[1] - r[2]
	}
	filled := lifetable.Accumulate(lifetable.FillGaps(stratum, buckets, 1000))
	return ComputeCurve(stratum, filled, total, active)
}

// TestSurvivalStartsAtOne proves survival at tenure zero is exactly 1
func TestSurvivalStartsAtOne(t *testing.T) {
	curve := curveFrom(t, [][3]int{{7, 4, 2}, {30, 6, 1}})

	s, ok := curve.Survival(0)
	if !ok {
		t.Fatal("no bucket at tenure 0")
	}
	if s != 1 {
		t.Errorf("survival(0) = %v, want 1", s)
	}
}

// TestSurvivalNonIncreasing proves survival never rises with tenure
func TestSurvivalNonIncreasing(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	rows := [][3]int{}
	tenure := 0
	for i := 0; i < 200; i++ {
		tenure += 1 + rng.Intn(20)
		pop := 1 + rng.Intn(10)
		rows = append(rows, [3]int{tenure, pop, rng.Intn(pop + 1)})
	}
	curve := curveFrom(t, rows)

	prev := math.Inf(1)
	for _, b := range curve.Buckets {
		if b.Survival > prev {
			t.Fatalf("survival rose from %v to %v at tenure %d", prev, b.Survival, b.Tenure)
		}
		if b.Survival < 0 || b.Survival > 1 {
			t.Fatalf("survival %v outside [0, 1] at tenure %d", b.Survival, b.Tenure)
		}
		prev = b.Survival
	}
}

// TestSurvivalMatchesDirectProduct proves the log-sum accumulation agrees
// with the naive product of (1 - hazard) to within 1e-9
func TestSurvivalMatchesDirectProduct(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	rows := [][3]int{}
	tenure := 0
	for i := 0; i < 500; i++ {
		tenure += 1 + rng.Intn(5)
		pop := 2 + rng.Intn(8)
		rows = append(rows, [3]int{tenure, pop, rng.Intn(pop)})
	}
	curve := curveFrom(t, rows)

	product := 1.0
	for _, b := range curve.Buckets {
		if math.Abs(b.Survival-product) > 1e-9 {
			t.Fatalf("tenure %d: survival = %v, direct product = %v", b.Tenure, b.Survival, product)
		}
		if b.HazardDefined {
			product *= 1 - b.Hazard
		}
	}
}

// TestHazardOneCollapsesCurve proves a hazard of exactly 1 drives all
// later survival to zero without a numeric fault
func TestHazardOneCollapsesCurve(t *testing.T) {
	stratum := types.GlobalStratum()
	curve := ComputeCurve(stratum, []types.LifeTableBucket{
		{Tenure: 0, EndTenure: 9, CumulativePopulation: 4, Hazard: 0.25, HazardDefined: true},
		{Tenure: 10, EndTenure: 19, CumulativePopulation: 3, Hazard: 1, HazardDefined: true},
		{Tenure: 20, EndTenure: 29, HazardDefined: false},
		{Tenure: 30, EndTenure: 39, HazardDefined: false, UnboundedTail: true},
	}, 4, 0)

	s, ok := curve.Survival(10)
	if !ok || s != 0.75 {
		t.Fatalf("survival entering the hazard-1 bucket = %v (ok=%v), want 0.75", s, ok)
	}
	for _, tenure := range []int{20, 30, 5000} {
		s, ok = curve.Survival(tenure)
		if !ok {
			t.Fatalf("no bucket at tenure %d", tenure)
		}
		if s != 0 {
			t.Errorf("survival(%d) = %v after hazard 1, want exactly 0", tenure, s)
		}
	}
}

// TestUndefinedHazardIsIdentity proves a bucket with undefined hazard is
// skipped in the product rather than treated as hazard zero or one
func TestUndefinedHazardIsIdentity(t *testing.T) {
	stratum := types.GlobalStratum()
	curve := ComputeCurve(stratum, []types.LifeTableBucket{
		{Tenure: 0, EndTenure: 9, CumulativePopulation: 2, Hazard: 0.5, HazardDefined: true},
		{Tenure: 10, EndTenure: 19, HazardDefined: false},
		{Tenure: 20, EndTenure: 29, HazardDefined: false, UnboundedTail: true},
	}, 2, 0)

	s10, _ := curve.Survival(10)
	s20, _ := curve.Survival(20)
	if s10 != 0.5 || s20 != 0.5 {
		t.Errorf("survival(10)=%v survival(20)=%v, want both 0.5 across the undefined bucket", s10, s20)
	}
}

// TestConditionalOfSelfIsOne proves conditional(t0, t0) = 1
func TestConditionalOfSelfIsOne(t *testing.T) {
	curve := curveFrom(t, [][3]int{{10, 4, 1}, {50, 4, 2}})

	for _, tenure := range []int{0, 10, 49, 50, 5000} {
		p, err := Conditional(curve, tenure, tenure)
		if err != nil {
			t.Fatalf("Conditional(%d, %d) failed: %v", tenure, tenure, err)
		}
		if p != 1 {
			t.Errorf("Conditional(%d, %d) = %v, want 1", tenure, tenure, p)
		}
	}
}

// TestConditionalRatio proves conditional survival is s(t)/s(t0)
func TestConditionalRatio(t *testing.T) {
	curve := curveFrom(t, [][3]int{{10, 4, 2}, {50, 4, 2}})

	s10, _ := curve.Survival(10)
	s51, _ := curve.Survival(51)
	want := s51 / s10

	p, err := Conditional(curve, 10, 51)
	if err != nil {
		t.Fatalf("Conditional failed: %v", err)
	}
	if math.Abs(p-want) > 1e-12 {
		t.Errorf("Conditional(10, 51) = %v, want %v", p, want)
	}
}

// TestConditionalRejectsInvalidWindow proves t < t0 and negative t0 are
// query errors
func TestConditionalRejectsInvalidWindow(t *testing.T) {
	curve := curveFrom(t, [][3]int{{10, 4, 1}})

	if _, err := Conditional(curve, 100, 50); err == nil || !errors.IsType(err, errors.TypeQuery) {
		t.Errorf("expected query error for t < t0, got %v", err)
	}
	if _, err := Conditional(curve, -1, 50); err == nil || !errors.IsType(err, errors.TypeQuery) {
		t.Errorf("expected query error for negative t0, got %v", err)
	}
}

// TestConditionalUndefinedPastCollapse proves conditioning on a tenure
// with zero survival returns a no-data error, not a division fault
func TestConditionalUndefinedPastCollapse(t *testing.T) {
	stratum := types.GlobalStratum()
	curve := ComputeCurve(stratum, []types.LifeTableBucket{
		{Tenure: 0, EndTenure: 9, CumulativePopulation: 3, Hazard: 1, HazardDefined: true},
		{Tenure: 10, EndTenure: 19, HazardDefined: false, UnboundedTail: true},
	}, 3, 0)

	_, err := Conditional(curve, 11, 20)
	if err == nil {
		t.Fatal("expected error conditioning on zero survival")
	}
	if !errors.IsNoData(err) {
		t.Errorf("expected no-data error, got %v", err)
	}
}

// TestTailBucketAnswersBeyondObservation proves queries past the last
// observed tenure resolve through the unbounded tail bucket: the entry
// value exactly at the last event tenure, the post-event value from the
// next day on, flat forever after
func TestTailBucketAnswersBeyondObservation(t *testing.T) {
	curve := curveFrom(t, [][3]int{{10, 2, 1}, {20, 2, 1}})

	// Hazards: 1/4 at tenure 10, 1/2 at tenure 20.
	entry, ok := curve.Survival(20)
	if !ok {
		t.Fatal("no bucket at last observed tenure")
	}
	if math.Abs(entry-0.75) > 1e-12 {
		t.Errorf("survival(20) = %v, want 0.75", entry)
	}

	for _, tenure := range []int{21, 900, 90000} {
		s, ok := curve.Survival(tenure)
		if !ok {
			t.Fatalf("tail bucket did not cover tenure %d", tenure)
		}
		if math.Abs(s-0.375) > 1e-12 {
			t.Errorf("survival(%d) = %v, want 0.375 past the last event", tenure, s)
		}
	}
}
