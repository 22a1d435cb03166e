// Package cmd - survival query command
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"churn-engine/internal/errors"
)

var (
	queryTenure int
	givenTenure int
)

// survivalCmd represents the survival command
var survivalCmd = &cobra.Command{
	Use:   "survival [snapshot.csv]",
	Short: "Query survival probability at a tenure",
	Long: `Compute the survival curve and report the probability of surviving
to the given tenure. With --given, the probability is conditional on
survival to the reference tenure already observed.

Examples:
  churn-engine survival subscribers.csv --tenure 365
  churn-engine survival subscribers.csv --tenure 730 --given 365
  churn-engine survival subscribers.csv --tenure 365 --market Gotham --channel Dealer`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSurvival,
}

func init() {
	addDataFlags(survivalCmd)
	addStratumFlags(survivalCmd)
	survivalCmd.Flags().IntVarP(&queryTenure, "tenure", "t", 365, "query tenure in days")
	survivalCmd.Flags().IntVarP(&givenTenure, "given", "g", -1, "reference tenure already survived (conditional query)")
}

func runSurvival(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	result, opts, _, err := computeResult(ctx, args)
	if err != nil {
		return err
	}

	key, err := stratumFromFlags(opts.Stratification)
	if err != nil {
		return err
	}

	if givenTenure >= 0 {
		p, err := result.ConditionalSurvival(key, givenTenure, queryTenure)
		if err != nil {
			if errors.IsNoData(err) {
				fmt.Printf("%s: conditional survival undefined (%v)\n", key, err)
				return nil
			}
			return err
		}
		fmt.Printf("%s: P(survive to %d | survived to %d) = %.6f\n", key, queryTenure, givenTenure, p)
		return nil
	}

	p, err := result.Survival(key, queryTenure)
	if err != nil {
		if errors.IsNoData(err) {
			fmt.Printf("%s: survival undefined (%v)\n", key, err)
			return nil
		}
		return err
	}
	fmt.Printf("%s: P(survive to %d) = %.6f\n", key, queryTenure, p)
	return nil
}
