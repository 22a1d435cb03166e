// Package survival computes survival curves and answers survival queries.
package survival

import (
	"math"

	"churn-engine/core/types"
)

// ComputeCurve fills survival probabilities over a gap-filled, accumulated
// bucket list and returns the finished curve.
//
// Survival at tenure t is the product of (1 - hazard) over all buckets
// before t, with survival(0) = 1. The product is accumulated as a forward
// running sum of log terms and exponentiated per bucket, which survives
// curves spanning thousands of buckets without underflow. Buckets with an
// undefined hazard contribute nothing to the sum (multiplicative
// identity). A hazard of exactly 1 collapses all later survival to zero
// without a numeric fault.
func ComputeCurve(stratum types.StratumKey, buckets []types.LifeTableBucket, totalPopulation, activeCount int) *types.SurvivalCurve {
	out := make([]types.LifeTableBucket, len(buckets))
	copy(out, buckets)

	logSum := 0.0
	collapsed := false

	for i := range out {
		if collapsed {
			out[i].Survival = 0
		} else {
			out[i].Survival = math.Exp(logSum)
		}

		if !out[i].HazardDefined {
			continue
		}
		if out[i].Hazard >= 1 {
			collapsed = true
			continue
		}
		logSum += math.Log1p(-out[i].Hazard)
	}

	return &types.SurvivalCurve{
		Stratum:         stratum,
		Buckets:         out,
		TotalPopulation: totalPopulation,
		ActiveCount:     activeCount,
	}
}
