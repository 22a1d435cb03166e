// Package output - terminal report
package output

import (
	"fmt"
	"io"
	"strings"
)

// CLIFormatter renders a human-readable terminal report
type CLIFormatter struct{}

// Format returns the format type
func (f *CLIFormatter) Format() Format {
	return FormatCLI
}

// Render writes the report
func (f *CLIFormatter) Render(w io.Writer, report *Report) error {
	result := report.Result

	fmt.Fprintln(w, "Subscriber Churn Survival Report")
	fmt.Fprintln(w, strings.Repeat("=", 40))
	fmt.Fprintf(w, "Run: %s\n", result.RunID)
	fmt.Fprintf(w, "Eligible: %d of %d records", result.Quality.Eligible, result.Quality.TotalRecords)
	if excluded := result.Quality.Excluded(); excluded > 0 {
		fmt.Fprintf(w, " (%d excluded: %d negative tenure, %d pre-cutoff, %d missing id)",
			excluded,
			result.Quality.NegativeTenure,
			result.Quality.PreCutoffStart,
			result.Quality.MissingCustomerID,
		)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Strata computed: %d\n", len(result.Table.Curves))
	for _, fail := range result.Failed {
		fmt.Fprintf(w, "FAILED %s: %s\n", fail.Stratum, fail.Message)
	}

	fmt.Fprintln(w, "\nSurvival curves")
	fmt.Fprintln(w, strings.Repeat("-", 40))
	for _, keyStr := range result.Table.StratumKeys() {
		curve := result.Table.Curves[keyStr]
		last := curve.Buckets[len(curve.Buckets)-1]
		fmt.Fprintf(w, "%s | subs %d | active %d | buckets %d | tail survival %.4f\n",
			keyStr,
			curve.TotalPopulation,
			curve.ActiveCount,
			len(curve.Buckets),
			last.Survival,
		)
		if report.ShowDetails {
			for i := range curve.Buckets {
				b := &curve.Buckets[i]
				hazard := "-"
				if b.HazardDefined {
					hazard = fmt.Sprintf("%.6f", b.Hazard)
				}
				fmt.Fprintf(w, "  t=%d..%d pop=%d events=%d atrisk=%d hazard=%s survival=%.6f\n",
					b.Tenure, b.EndTenure, b.Population, b.Events,
					b.CumulativePopulation, hazard, b.Survival,
				)
			}
		}
	}

	for _, h := range report.Horizons {
		rows := report.Projections[h]
		if len(rows) == 0 {
			continue
		}
		fmt.Fprintf(w, "\nRevenue projection (%d days)\n", h)
		fmt.Fprintln(w, strings.Repeat("-", 40))
		for _, row := range rows {
			fmt.Fprintf(w, "%s | subs %d | active %d | revenue %s | per start %s | per active %s\n",
				row.Stratum.String(),
				row.NumSubs,
				row.NumActive,
				row.Revenue.StringFixed(2),
				row.RevenuePerStart.StringFixed(2),
				row.RevenuePerActive.StringFixed(2),
			)
		}
	}

	return nil
}
