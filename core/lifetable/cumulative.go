// Package lifetable - cumulative population and hazard
package lifetable

import "churn-engine/core/types"

// Accumulate computes cumulative at-risk population and per-bucket hazard.
// Cumulative population at tenure t is the suffix sum of population over
// buckets at tenure >= t, computed in one reverse pass over the sorted
// list. Hazard is events over cumulative population where the denominator
// is positive, and left undefined otherwise.
//
// A new slice is returned; the input is not modified.
func Accumulate(buckets []types.LifeTableBucket) []types.LifeTableBucket {
	out := make([]types.LifeTableBucket, len(buckets))
	copy(out, buckets)

	cumulative := 0
	for i := len(out) - 1; i >= 0; i-- {
		cumulative += out[i].Population
		out[i].CumulativePopulation = cumulative
		if cumulative > 0 {
			out[i].Hazard = float64(out[i].Events) / float64(cumulative)
			out[i].HazardDefined = true
		}
	}

	return out
}
