// Package engine orchestrates the life-table pipeline: eligibility
// filtering, per-stratum bucket construction, gap filling, cumulative
// aggregation, survival computation, and revenue rate derivation.
//
// One stratum's pipeline is strictly sequential; strata are independent
// and computed in parallel by a bounded worker pool. A failure in one
// stratum never blocks or corrupts the others.
package engine

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"churn-engine/core/dataset"
	"churn-engine/core/lifetable"
	"churn-engine/core/revenue"
	"churn-engine/core/survival"
	"churn-engine/core/types"
	"churn-engine/internal/errors"
	"churn-engine/internal/logging"
)

// Options configures one computation run
type Options struct {
	// EarliestStart excludes records starting before this date
	EarliestStart time.Time

	// Stratification lists the grouping dimensions (empty = global curve)
	Stratification types.Stratification

	// TailSentinelDays is the span of the unbounded tail bucket
	TailSentinelDays int

	// RateWindowDays selects recent starts for revenue rate derivation
	RateWindowDays int

	// MaxWorkers bounds parallel stratum computation (0 = GOMAXPROCS)
	MaxWorkers int
}

// StratumError records a failure isolated to one stratum
type StratumError struct {
	// Stratum is the canonical key of the failed stratum
	Stratum string `json:"stratum"`

	// Message describes the failure
	Message string `json:"message"`
}

// Result is the output of one computation run over a snapshot
type Result struct {
	// RunID uniquely identifies the run
	RunID string `json:"run_id"`

	// Table holds the survival curve of every computed stratum
	Table *types.LifeTable `json:"table"`

	// Rates holds the derived revenue rate per stratum
	Rates types.RateTable `json:"rates"`

	// Quality reports records excluded during eligibility filtering
	Quality types.QualityReport `json:"quality"`

	// Failed lists strata whose pipeline failed; sibling strata are
	// unaffected
	Failed []StratumError `json:"failed,omitempty"`

	// Duration is the wall time of the run
	Duration time.Duration `json:"duration"`
}

// Engine computes survival curves from subscriber snapshots
type Engine struct {
	opts Options
	log  *zap.Logger
}

// New creates an engine for the given options
func New(opts Options) (*Engine, error) {
	if err := opts.Stratification.Validate(); err != nil {
		return nil, errors.Config("invalid stratification", err)
	}
	if opts.TailSentinelDays <= 0 {
		opts.TailSentinelDays = lifetable.DefaultTailSentinelDays
	}
	if opts.RateWindowDays <= 0 {
		opts.RateWindowDays = 365
	}
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = runtime.GOMAXPROCS(0)
	}
	return &Engine{
		opts: opts,
		log:  logging.Named("engine"),
	}, nil
}

// Compute runs the full pipeline over an immutable snapshot. The input
// slice is treated as read-only; all derived tables are built fresh.
func (e *Engine) Compute(ctx context.Context, records []types.SubscriberRecord) (*Result, error) {
	start := time.Now()

	filter := dataset.NewFilter(e.opts.EarliestStart)
	eligible, quality := filter.Apply(records)

	raw, err := lifetable.Build(eligible, e.opts.Stratification)
	if err != nil {
		return nil, errors.Internal("life table construction", err)
	}

	table := types.NewLifeTable(e.opts.Stratification)
	result := &Result{
		RunID:   uuid.New().String(),
		Table:   table,
		Quality: quality,
	}

	e.computeStrata(ctx, raw, result)

	rates, err := revenue.DeriveRates(eligible, e.opts.Stratification, e.opts.RateWindowDays)
	if err != nil {
		return nil, errors.Internal("revenue rate derivation", err)
	}
	result.Rates = rates

	result.Duration = time.Since(start)
	e.log.Info("computation run complete",
		zap.String("run_id", result.RunID),
		zap.Int("strata", len(table.Curves)),
		zap.Int("failed", len(result.Failed)),
		zap.Int("eligible", quality.Eligible),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

// computeStrata runs the per-stratum pipelines on a bounded worker pool
func (e *Engine) computeStrata(ctx context.Context, raw map[string]*lifetable.StratumBuckets, result *Result) {
	workers := e.opts.MaxWorkers
	if len(raw) < workers {
		workers = len(raw)
	}
	if workers == 0 {
		return
	}

	work := make(chan *lifetable.StratumBuckets, len(raw))
	for _, sb := range raw {
		work <- sb
	}
	close(work)

	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sb := range work {
				select {
				case <-ctx.Done():
					return
				default:
				}
				curve, err := e.computeStratum(sb)
				mu.Lock()
				if err != nil {
					result.Failed = append(result.Failed, StratumError{
						Stratum: sb.Stratum.String(),
						Message: err.Error(),
					})
				} else {
					result.Table.Curves[sb.Stratum.String()] = curve
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
}

// computeStratum runs one stratum's sequential pipeline. A panic inside
// the pipeline is converted to a stratum error so sibling strata keep
// computing.
func (e *Engine) computeStratum(sb *lifetable.StratumBuckets) (curve *types.SurvivalCurve, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Stratum(sb.Stratum.String(), fmt.Errorf("panic: %v", r))
		}
	}()

	filled := lifetable.FillGaps(sb.Stratum, sb.Buckets, e.opts.TailSentinelDays)
	accumulated := lifetable.Accumulate(filled)
	curve = survival.ComputeCurve(sb.Stratum, accumulated, sb.TotalPopulation, sb.ActiveCount)

	e.log.Debug("stratum computed",
		zap.String("stratum", sb.Stratum.String()),
		zap.Int("buckets", len(curve.Buckets)),
		zap.Int("population", sb.TotalPopulation),
	)
	return curve, nil
}
