// Package output renders computation results for humans and machines.
package output

import (
	"io"

	"churn-engine/core/engine"
	"churn-engine/core/types"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable terminal report
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatCSV is the stratified life table as CSV
	FormatCSV Format = "csv"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given report
	Render(w io.Writer, report *Report) error
}

// Report bundles a computation result with its projection rows for
// rendering
type Report struct {
	// Result is the computed run
	Result *engine.Result `json:"result"`

	// Horizons are the projection horizons included in the report
	Horizons []int `json:"horizons"`

	// Projections maps horizon days to the per-stratum projection rows
	Projections map[int][]types.ProjectionRow `json:"projections"`

	// ShowDetails includes per-bucket life table rows in CLI output
	ShowDetails bool `json:"-"`
}

// NewReport builds a report with projections for each horizon
func NewReport(result *engine.Result, horizons []int) (*Report, error) {
	report := &Report{
		Result:      result,
		Horizons:    horizons,
		Projections: make(map[int][]types.ProjectionRow, len(horizons)),
	}
	for _, h := range horizons {
		rows, err := result.ProjectionReport(h)
		if err != nil {
			return nil, err
		}
		report.Projections[h] = rows
	}
	return report, nil
}

// ForFormat returns the formatter for a format type
func ForFormat(format Format) (Formatter, bool) {
	switch format {
	case FormatCLI:
		return &CLIFormatter{}, true
	case FormatJSON:
		return &JSONFormatter{}, true
	case FormatCSV:
		return &CSVFormatter{}, true
	default:
		return nil, false
	}
}
