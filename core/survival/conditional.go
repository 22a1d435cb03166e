// Package survival - conditional survival queries
package survival

import (
	"churn-engine/core/types"
	"churn-engine/internal/errors"
)

// Conditional returns the probability of surviving to tenure t given
// survival to the reference tenure t0 has already been observed.
//
// The lookup resolves each tenure through the bucket whose range contains
// it, so callers never need an exact match on an observed tenure value.
// The result is 1 when t equals t0 and undefined (a no-data error) when
// survival at t0 is zero.
func Conditional(curve *types.SurvivalCurve, t0, t int) (float64, error) {
	if t0 < 0 || t < t0 {
		return 0, errors.Newf(errors.TypeQuery, "invalid conditional query: t0=%d, t=%d", t0, t)
	}

	s0, ok := curve.Survival(t0)
	if !ok {
		return 0, errors.NoData("no bucket covers reference tenure").WithContext("tenure", t0)
	}
	if s0 == 0 {
		return 0, errors.NoData("survival at reference tenure is zero").WithContext("tenure", t0)
	}

	s, ok := curve.Survival(t)
	if !ok {
		return 0, errors.NoData("no bucket covers query tenure").WithContext("tenure", t)
	}

	ratio := s / s0
	// Guard against float jitter; survival is non-increasing so the true
	// ratio is always within [0, 1].
	if ratio > 1 {
		ratio = 1
	}
	return ratio, nil
}
