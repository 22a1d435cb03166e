// Package analysis loads declarative analysis definitions from HCL files.
// A definition names one computation setup: stratification dimensions,
// the eligibility cutoff, projection horizons, and the rate window.
package analysis

import (
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"churn-engine/core/engine"
	"churn-engine/core/types"
	"churn-engine/internal/config"
	"churn-engine/internal/errors"
)

// Definition is one named analysis block
type Definition struct {
	// Name labels the analysis
	Name string `hcl:"name,label"`

	// Stratify lists the grouping dimensions (empty = global curve)
	Stratify []string `hcl:"stratify,optional"`

	// EarliestStartDate is the eligibility cutoff (YYYY-MM-DD)
	EarliestStartDate string `hcl:"earliest_start_date,optional"`

	// HorizonsDays are the revenue projection horizons
	HorizonsDays []int `hcl:"horizons_days,optional"`

	// RateWindowDays selects recent starts for rate derivation
	RateWindowDays int `hcl:"rate_window_days,optional"`

	// TailSentinelDays is the span of the unbounded tail bucket
	TailSentinelDays int `hcl:"tail_sentinel_days,optional"`

	// MaxWorkers bounds parallel stratum computation
	MaxWorkers int `hcl:"max_workers,optional"`
}

// File is the root of an analysis definition file
type File struct {
	// Analyses are the named analysis blocks
	Analyses []Definition `hcl:"analysis,block"`
}

// Load parses an analysis definition file
func Load(path string) (*File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Config("read analysis file", err)
	}

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, path)
	if diags.HasErrors() {
		return nil, errors.Config("parse analysis file", diags)
	}

	var file File
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &file); diags.HasErrors() {
		return nil, errors.Config("decode analysis file", diags)
	}

	return &file, nil
}

// Find returns the named definition
func (f *File) Find(name string) (*Definition, bool) {
	for i := range f.Analyses {
		if f.Analyses[i].Name == name {
			return &f.Analyses[i], true
		}
	}
	return nil, false
}

// Options converts a definition into engine options, filling unset fields
// from the application defaults
func (d *Definition) Options(defaults config.AnalysisConfig) (engine.Options, error) {
	dateStr := d.EarliestStartDate
	if dateStr == "" {
		dateStr = defaults.EarliestStartDate
	}
	earliest, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return engine.Options{}, errors.Config("invalid earliest_start_date", err)
	}

	stratify := d.Stratify
	if stratify == nil {
		stratify = defaults.Stratify
	}
	rateWindow := d.RateWindowDays
	if rateWindow == 0 {
		rateWindow = defaults.RateWindowDays
	}
	tail := d.TailSentinelDays
	if tail == 0 {
		tail = defaults.TailSentinelDays
	}
	workers := d.MaxWorkers
	if workers == 0 {
		workers = defaults.MaxWorkers
	}

	return engine.Options{
		EarliestStart:    earliest,
		Stratification:   types.Stratification(stratify),
		TailSentinelDays: tail,
		RateWindowDays:   rateWindow,
		MaxWorkers:       workers,
	}, nil
}

// Horizons returns the projection horizons, falling back to defaults
func (d *Definition) Horizons(defaults config.AnalysisConfig) []int {
	if len(d.HorizonsDays) > 0 {
		return d.HorizonsDays
	}
	return defaults.HorizonsDays
}
