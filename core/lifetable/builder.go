// Package lifetable builds stratified life tables from subscriber records.
// Each stage is a pure transform: it consumes the previous stage's bucket
// list and produces a new one, never mutating its input.
package lifetable

import (
	"sort"

	"churn-engine/core/types"
)

// StratumBuckets is the working bucket list of one stratum as it moves
// through the pipeline
type StratumBuckets struct {
	// Stratum identifies the curve under construction
	Stratum types.StratumKey

	// Buckets are sorted ascending by tenure
	Buckets []types.LifeTableBucket

	// TotalPopulation is the eligible population of the stratum
	TotalPopulation int

	// ActiveCount is the number of eligible records still active
	ActiveCount int
}

// Build groups eligible records into one raw bucket per observed
// (stratum, tenure) pair. Population counts records at that exact tenure;
// events counts those whose stop type denotes a genuine stop. Records
// still active contribute to population only.
func Build(records []types.SubscriberRecord, strat types.Stratification) (map[string]*StratumBuckets, error) {
	byStratum := make(map[string]*StratumBuckets)
	byTenure := make(map[string]map[int]*types.LifeTableBucket)

	for i := range records {
		r := &records[i]
		key, err := strat.KeyFor(r)
		if err != nil {
			return nil, err
		}
		keyStr := key.String()

		sb, ok := byStratum[keyStr]
		if !ok {
			sb = &StratumBuckets{Stratum: key}
			byStratum[keyStr] = sb
			byTenure[keyStr] = make(map[int]*types.LifeTableBucket)
		}

		bucket, ok := byTenure[keyStr][r.TenureDays]
		if !ok {
			bucket = &types.LifeTableBucket{
				Stratum: key,
				Tenure:  r.TenureDays,
			}
			byTenure[keyStr][r.TenureDays] = bucket
		}

		bucket.Population++
		sb.TotalPopulation++
		if r.Stopped() {
			bucket.Events++
		} else {
			sb.ActiveCount++
		}
	}

	// Flatten to sorted slices; no per-customer rows survive this stage.
	for keyStr, buckets := range byTenure {
		sb := byStratum[keyStr]
		sb.Buckets = make([]types.LifeTableBucket, 0, len(buckets))
		for _, b := range buckets {
			sb.Buckets = append(sb.Buckets, *b)
		}
		sort.Slice(sb.Buckets, func(i, j int) bool {
			return sb.Buckets[i].Tenure < sb.Buckets[j].Tenure
		})
	}

	return byStratum, nil
}
