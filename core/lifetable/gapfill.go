// Package lifetable - bucket gap filling
package lifetable

import "churn-engine/core/types"

// DefaultTailSentinelDays is the span assigned to the unbounded tail
// bucket when no sentinel is configured
const DefaultTailSentinelDays = 100000

// FillGaps closes gaps in the observed tenure domain so the bucket ranges
// tile [0, tail] exactly. Each bucket's end tenure runs to the day before
// the next observed tenure. The last bucket becomes the unbounded tail:
// its survival value answers every query past the observation horizon.
// A zero-population lead bucket is prepended when nothing was observed at
// tenure zero.
//
// Input buckets must be sorted ascending by tenure. A new slice is
// returned; the input is not modified.
func FillGaps(stratum types.StratumKey, buckets []types.LifeTableBucket, tailSentinelDays int) []types.LifeTableBucket {
	if tailSentinelDays <= 0 {
		tailSentinelDays = DefaultTailSentinelDays
	}
	if len(buckets) == 0 {
		return nil
	}

	filled := make([]types.LifeTableBucket, 0, len(buckets)+1)

	if buckets[0].Tenure > 0 {
		filled = append(filled, types.LifeTableBucket{
			Stratum:   stratum,
			Tenure:    0,
			EndTenure: buckets[0].Tenure - 1,
		})
	}

	for i, b := range buckets {
		if i+1 < len(buckets) {
			b.EndTenure = buckets[i+1].Tenure - 1
		} else {
			b.EndTenure = b.Tenure + tailSentinelDays
			b.UnboundedTail = true
		}
		filled = append(filled, b)
	}

	return filled
}
