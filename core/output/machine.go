// Package output - machine-readable renderers
package output

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"churn-engine/core/types"
)

// JSONFormatter renders the full report as indented JSON
type JSONFormatter struct{}

// Format returns the format type
func (f *JSONFormatter) Format() Format {
	return FormatJSON
}

// Render writes the report
func (f *JSONFormatter) Render(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// CSVFormatter renders the stratified life table as CSV
type CSVFormatter struct{}

// Format returns the format type
func (f *CSVFormatter) Format() Format {
	return FormatCSV
}

// Render writes the report
func (f *CSVFormatter) Render(w io.Writer, report *Report) error {
	return WriteLifeTableCSV(w, report.Result.Table)
}

// WriteLifeTableCSV writes every stratum's life table rows. Stratification
// dimensions become leading key columns.
func WriteLifeTableCSV(w io.Writer, table *types.LifeTable) error {
	writer := csv.NewWriter(w)

	header := append([]string{}, table.Stratification...)
	header = append(header,
		"tenure", "population", "events", "cumulative_population",
		"hazard", "survival", "end_tenure", "span_days",
	)
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, keyStr := range table.StratumKeys() {
		curve := table.Curves[keyStr]
		for i := range curve.Buckets {
			b := &curve.Buckets[i]
			row := make([]string, 0, len(header))
			for _, dim := range table.Stratification {
				row = append(row, curve.Stratum.Value(dim))
			}
			hazard := ""
			if b.HazardDefined {
				hazard = strconv.FormatFloat(b.Hazard, 'f', -1, 64)
			}
			row = append(row,
				strconv.Itoa(b.Tenure),
				strconv.Itoa(b.Population),
				strconv.Itoa(b.Events),
				strconv.Itoa(b.CumulativePopulation),
				hazard,
				strconv.FormatFloat(b.Survival, 'f', -1, 64),
				strconv.Itoa(b.EndTenure),
				strconv.Itoa(b.SpanDays()),
			)
			if err := writer.Write(row); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteRateTableCSV writes the revenue rate table
func WriteRateTableCSV(w io.Writer, table *types.LifeTable, rates types.RateTable) error {
	writer := csv.NewWriter(w)

	header := append([]string{}, table.Stratification...)
	header = append(header, "daily_revenue", "sample_size")
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, keyStr := range table.StratumKeys() {
		curve := table.Curves[keyStr]
		rate, ok := rates.Rate(curve.Stratum)
		if !ok {
			continue
		}
		row := make([]string, 0, len(header))
		for _, dim := range table.Stratification {
			row = append(row, curve.Stratum.Value(dim))
		}
		row = append(row, rate.DailyRevenue.String(), strconv.Itoa(rate.SampleSize))
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteProjectionCSV writes the revenue projection report
func WriteProjectionCSV(w io.Writer, strat types.Stratification, rows []types.ProjectionRow) error {
	writer := csv.NewWriter(w)

	header := append([]string{}, strat...)
	header = append(header,
		"horizon_days", "numsubs", "numactive",
		"revenue", "revenue_per_start", "revenue_per_active",
	)
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range rows {
		row := make([]string, 0, len(header))
		for _, dim := range strat {
			row = append(row, r.Stratum.Value(dim))
		}
		row = append(row,
			strconv.Itoa(r.HorizonDays),
			strconv.Itoa(r.NumSubs),
			strconv.Itoa(r.NumActive),
			r.Revenue.StringFixed(2),
			r.RevenuePerStart.StringFixed(2),
			r.RevenuePerActive.StringFixed(2),
		)
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
