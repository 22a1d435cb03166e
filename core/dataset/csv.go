// Package dataset - CSV snapshot reader
package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"churn-engine/core/types"
	"churn-engine/internal/errors"
	"churn-engine/internal/logging"
)

// LoadResult holds a loaded snapshot plus loader-level diagnostics
type LoadResult struct {
	// Records are the parsed subscriber records, unfiltered
	Records []types.SubscriberRecord

	// InvalidRows counts rows dropped for unparseable fields
	InvalidRows int
}

// ReadCSV loads a subscriber snapshot from a CSV file. Required columns:
// customer_id, start_date, tenure. Optional: stop_date, stop_type, market,
// channel, monthly_fee. Header names are matched loosely.
func ReadCSV(path string) (*LoadResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Storage("open snapshot", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, errors.Storage("read snapshot header", err)
	}

	colMap := normalizeHeaders(headers)
	idIdx, ok := findColumn(colMap, []string{"customer_id", "customerid", "subscriber_id", "id"})
	if !ok {
		return nil, errors.Data("missing customer_id column")
	}
	startIdx, ok := findColumn(colMap, []string{"start_date", "startdate", "start"})
	if !ok {
		return nil, errors.Data("missing start_date column")
	}
	tenureIdx, ok := findColumn(colMap, []string{"tenure", "tenure_days", "tenuredays"})
	if !ok {
		return nil, errors.Data("missing tenure column")
	}
	stopDateIdx, _ := findColumn(colMap, []string{"stop_date", "stopdate"})
	stopTypeIdx, _ := findColumn(colMap, []string{"stop_type", "stoptype"})
	marketIdx, _ := findColumn(colMap, []string{"market"})
	channelIdx, _ := findColumn(colMap, []string{"channel"})
	feeIdx, _ := findColumn(colMap, []string{"monthly_fee", "monthlyfee", "fee", "rate_plan_fee"})

	result := &LoadResult{}

	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Storage("read snapshot row", err)
		}
		if len(record) == 0 {
			continue
		}

		customerID := getValue(record, idIdx)
		startDate, err := parseDate(getValue(record, startIdx))
		if err != nil {
			result.InvalidRows++
			continue
		}
		tenure, err := strconv.Atoi(getValue(record, tenureIdx))
		if err != nil {
			result.InvalidRows++
			continue
		}

		sub := types.SubscriberRecord{
			CustomerID: customerID,
			StartDate:  startDate,
			StopType:   types.StopType(getValue(record, stopTypeIdx)),
			Market:     getValue(record, marketIdx),
			Channel:    getValue(record, channelIdx),
			TenureDays: tenure,
		}

		if raw := getValue(record, stopDateIdx); raw != "" {
			stopDate, err := parseDate(raw)
			if err != nil {
				result.InvalidRows++
				continue
			}
			sub.StopDate = stopDate
		}

		if raw := getValue(record, feeIdx); raw != "" {
			fee, err := decimal.NewFromString(raw)
			if err != nil {
				result.InvalidRows++
				continue
			}
			sub.MonthlyFee = fee
		}

		result.Records = append(result.Records, sub)
	}

	logging.Info("loaded subscriber snapshot",
		zap.String("path", path),
		zap.Int("records", len(result.Records)),
		zap.Int("invalid_rows", result.InvalidRows),
	)

	return result, nil
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	layouts := []string{
		"2006-01-02",
		"2006/01/02",
		"01/02/2006",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z07:00",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, errors.Newf(errors.TypeData, "unsupported date format: %s", value)
}

func normalizeHeaders(headers []string) map[string]int {
	result := make(map[string]int, len(headers))
	for idx, header := range headers {
		normalized := normalizeHeader(header)
		if _, exists := result[normalized]; !exists {
			result[normalized] = idx
		}
	}
	return result
}

func normalizeHeader(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.ReplaceAll(value, " ", "")
	value = strings.ReplaceAll(value, "_", "")
	value = strings.ReplaceAll(value, "-", "")
	return value
}

func findColumn(headers map[string]int, names []string) (int, bool) {
	for _, name := range names {
		if idx, ok := headers[normalizeHeader(name)]; ok {
			return idx, true
		}
	}
	return -1, false
}

func getValue(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
