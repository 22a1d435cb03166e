// Package cmd - revenue projection command
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"churn-engine/core/output"
	"churn-engine/internal/errors"
)

var (
	horizonDays  int
	cohortTenure int
	reportAll    bool
)

// revenueCmd represents the revenue command
var revenueCmd = &cobra.Command{
	Use:   "revenue [snapshot.csv]",
	Short: "Project expected revenue over a horizon",
	Long: `Project expected revenue per customer from the survival curve and
the stratum's derived daily revenue rate. With --cohort-tenure the
projection is for an existing cohort that already survived to that
tenure. With --report the full per-stratum projection report is printed
as CSV.

Examples:
  churn-engine revenue subscribers.csv --horizon 365 --market Gotham --channel Dealer
  churn-engine revenue subscribers.csv --horizon 730 --cohort-tenure 365 --market Gotham --channel Dealer
  churn-engine revenue subscribers.csv --horizon 365 --report`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRevenue,
}

func init() {
	addDataFlags(revenueCmd)
	addStratumFlags(revenueCmd)
	revenueCmd.Flags().IntVarP(&horizonDays, "horizon", "H", 365, "projection horizon in days")
	revenueCmd.Flags().IntVar(&cohortTenure, "cohort-tenure", -1, "project for an existing cohort that survived to this tenure")
	revenueCmd.Flags().BoolVar(&reportAll, "report", false, "print the full per-stratum projection report as CSV")
}

func runRevenue(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	result, opts, _, err := computeResult(ctx, args)
	if err != nil {
		return err
	}

	if reportAll {
		rows, err := result.ProjectionReport(horizonDays)
		if err != nil {
			return err
		}
		return output.WriteProjectionCSV(os.Stdout, opts.Stratification, rows)
	}

	key, err := stratumFromFlags(opts.Stratification)
	if err != nil {
		return err
	}

	var ref *int
	if cohortTenure >= 0 {
		ref = &cohortTenure
	}

	amount, err := result.ProjectRevenue(key, horizonDays, ref)
	if err != nil {
		if errors.IsNoData(err) {
			fmt.Printf("%s: no data (%v)\n", key, err)
			return nil
		}
		return err
	}

	if ref != nil {
		fmt.Printf("%s: expected revenue per customer over %d days given survival to %d = %s\n",
			key, horizonDays, cohortTenure, amount.StringFixed(2))
	} else {
		fmt.Printf("%s: expected revenue per starting customer over %d days = %s\n",
			key, horizonDays, amount.StringFixed(2))
	}
	return nil
}
