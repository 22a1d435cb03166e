// Package cmd - shared snapshot loading and engine construction
package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"churn-engine/core/dataset"
	"churn-engine/core/engine"
	"churn-engine/core/types"
	"churn-engine/internal/analysis"
	"churn-engine/internal/config"
	"churn-engine/store"
)

var (
	analysisFile string
	analysisName string
	stratifyFlag string
	cutoffFlag   string
	fromDB       bool
	marketFlag   string
	channelFlag  string
)

// addDataFlags registers the flags shared by every computing command
func addDataFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&analysisFile, "analysis", "a", "", "HCL analysis definition file")
	cmd.Flags().StringVar(&analysisName, "name", "", "analysis name inside the definition file")
	cmd.Flags().StringVarP(&stratifyFlag, "stratify", "s", "", "comma-separated stratification dimensions (overrides config)")
	cmd.Flags().StringVar(&cutoffFlag, "cutoff", "", "earliest eligible start date, YYYY-MM-DD (overrides config)")
	cmd.Flags().BoolVar(&fromDB, "db", false, "load the snapshot from Postgres instead of a CSV file")
}

// addStratumFlags registers the flags that select one stratum for queries
func addStratumFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&marketFlag, "market", "", "market value of the queried stratum")
	cmd.Flags().StringVar(&channelFlag, "channel", "", "channel value of the queried stratum")
}

// buildOptions assembles engine options and projection horizons from the
// analysis definition (if any), the config defaults, and flag overrides
func buildOptions() (engine.Options, []int, error) {
	defaults := config.Get().Analysis

	var opts engine.Options
	horizons := defaults.HorizonsDays

	if analysisFile != "" {
		file, err := analysis.Load(analysisFile)
		if err != nil {
			return engine.Options{}, nil, err
		}
		name := analysisName
		if name == "" && len(file.Analyses) == 1 {
			name = file.Analyses[0].Name
		}
		def, ok := file.Find(name)
		if !ok {
			return engine.Options{}, nil, fmt.Errorf("analysis %q not found in %s", name, analysisFile)
		}
		opts, err = def.Options(defaults)
		if err != nil {
			return engine.Options{}, nil, err
		}
		horizons = def.Horizons(defaults)
	} else {
		earliest, err := defaults.EarliestStart()
		if err != nil {
			return engine.Options{}, nil, fmt.Errorf("invalid earliest_start_date in config: %w", err)
		}
		opts = engine.Options{
			EarliestStart:    earliest,
			Stratification:   types.Stratification(defaults.Stratify),
			TailSentinelDays: defaults.TailSentinelDays,
			RateWindowDays:   defaults.RateWindowDays,
			MaxWorkers:       defaults.MaxWorkers,
		}
	}

	if stratifyFlag != "" {
		dims := strings.Split(stratifyFlag, ",")
		for i := range dims {
			dims[i] = strings.TrimSpace(dims[i])
		}
		opts.Stratification = types.Stratification(dims)
	}
	if cutoffFlag != "" {
		parsed, err := parseCutoff(cutoffFlag)
		if err != nil {
			return engine.Options{}, nil, err
		}
		opts.EarliestStart = parsed
	}

	return opts, horizons, nil
}

// loadRecords reads the subscriber snapshot from Postgres or a CSV file
func loadRecords(ctx context.Context, args []string) ([]types.SubscriberRecord, error) {
	if fromDB {
		cfg := config.Get().Storage
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("--db requires storage.database_url in the config")
		}
		st, err := store.New(store.Config{
			URL:             cfg.DatabaseURL,
			Schema:          cfg.Schema,
			SubscriberTable: cfg.SubscriberTable,
		})
		if err != nil {
			return nil, err
		}
		defer st.Close()
		return st.LoadSnapshot(ctx)
	}

	if len(args) == 0 {
		return nil, fmt.Errorf("a snapshot CSV path is required (or pass --db)")
	}
	loaded, err := dataset.ReadCSV(args[0])
	if err != nil {
		return nil, err
	}
	return loaded.Records, nil
}

// computeResult loads the snapshot and runs the engine
func computeResult(ctx context.Context, args []string) (*engine.Result, engine.Options, []int, error) {
	opts, horizons, err := buildOptions()
	if err != nil {
		return nil, engine.Options{}, nil, err
	}

	records, err := loadRecords(ctx, args)
	if err != nil {
		return nil, engine.Options{}, nil, err
	}

	eng, err := engine.New(opts)
	if err != nil {
		return nil, engine.Options{}, nil, err
	}
	result, err := eng.Compute(ctx, records)
	if err != nil {
		return nil, engine.Options{}, nil, err
	}
	return result, opts, horizons, nil
}

func parseCutoff(value string) (time.Time, error) {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --cutoff date: %w", err)
	}
	return parsed, nil
}

// stratumFromFlags builds the queried stratum key from --market/--channel,
// matching the active stratification
func stratumFromFlags(strat types.Stratification) (types.StratumKey, error) {
	if len(strat) == 0 {
		return types.GlobalStratum(), nil
	}
	values := make([]string, len(strat))
	for i, dim := range strat {
		switch dim {
		case types.DimMarket:
			if marketFlag == "" {
				return types.StratumKey{}, fmt.Errorf("--market is required for this stratification")
			}
			values[i] = marketFlag
		case types.DimChannel:
			if channelFlag == "" {
				return types.StratumKey{}, fmt.Errorf("--channel is required for this stratification")
			}
			values[i] = channelFlag
		default:
			return types.StratumKey{}, fmt.Errorf("unknown stratification dimension: %s", dim)
		}
	}
	return types.StratumKey{Dimensions: []string(strat), Values: values}, nil
}
