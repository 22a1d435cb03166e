// Package cmd - compute command
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"churn-engine/core/output"
	"churn-engine/internal/config"
	"churn-engine/store"
)

var (
	outputFormat string
	showDetails  bool
	persist      bool
)

// computeCmd represents the compute command
var computeCmd = &cobra.Command{
	Use:   "compute [snapshot.csv]",
	Short: "Compute survival curves and revenue projections from a snapshot",
	Long: `Run the full life-table pipeline over a subscriber snapshot and
print the survival curves, revenue rates, and projection report.

Examples:
  churn-engine compute subscribers.csv
  churn-engine compute --stratify market subscribers.csv
  churn-engine compute --analysis churn.hcl --name quarterly subscribers.csv
  churn-engine compute --db --persist`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCompute,
}

func init() {
	addDataFlags(computeCmd)
	computeCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format (cli, json, csv)")
	computeCmd.Flags().BoolVarP(&showDetails, "details", "d", false, "show per-bucket life table rows")
	computeCmd.Flags().BoolVar(&persist, "persist", false, "store the run in Postgres")
}

func runCompute(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	result, _, horizons, err := computeResult(ctx, args)
	if err != nil {
		return err
	}

	report, err := output.NewReport(result, horizons)
	if err != nil {
		return err
	}
	report.ShowDetails = showDetails

	format := output.Format(outputFormat)
	if outputFormat == "" {
		format = output.Format(config.Get().Output.DefaultFormat)
	}
	formatter, ok := output.ForFormat(format)
	if !ok {
		return fmt.Errorf("unknown output format: %s", format)
	}
	if err := formatter.Render(os.Stdout, report); err != nil {
		return err
	}

	if persist {
		cfg := config.Get().Storage
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("--persist requires storage.database_url in the config")
		}
		st, err := store.New(store.Config{
			URL:             cfg.DatabaseURL,
			Schema:          cfg.Schema,
			SubscriberTable: cfg.SubscriberTable,
		})
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.EnsureSchema(ctx); err != nil {
			return err
		}
		if err := st.SaveResult(ctx, result, report.Projections); err != nil {
			return err
		}
		fmt.Printf("\nStored run %s in Postgres\n", result.RunID)
	}

	return nil
}
