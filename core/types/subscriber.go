// Package types - Subscriber snapshot types
package types

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// StopType classifies how a subscription ended
type StopType string

const (
	// StopVoluntary is a customer-initiated stop
	StopVoluntary StopType = "voluntary"

	// StopInvoluntary is a provider-initiated stop (e.g. non-payment)
	StopInvoluntary StopType = "involuntary"

	// StopMigration is a move to another product, counted as a stop
	StopMigration StopType = "migration"

	// StopNone means the subscription is still active
	StopNone StopType = ""
)

// IsStop reports whether this stop type denotes a genuine terminal event.
// The legacy feed uses both NULL and empty string for active customers, so
// a record counts as stopped only when the type is non-null AND non-empty.
func (s StopType) IsStop() bool {
	return strings.TrimSpace(string(s)) != ""
}

// SubscriberRecord is one row of the read-only subscriber snapshot
type SubscriberRecord struct {
	// CustomerID uniquely identifies the customer
	CustomerID string `json:"customer_id"`

	// StartDate is when the subscription started
	StartDate time.Time `json:"start_date"`

	// StopDate is when the subscription stopped (zero = still active)
	StopDate time.Time `json:"stop_date,omitempty"`

	// StopType classifies the stop; empty means active
	StopType StopType `json:"stop_type,omitempty"`

	// Market is the sales market
	Market string `json:"market"`

	// Channel is the acquisition channel
	Channel string `json:"channel"`

	// MonthlyFee is the monthly subscription fee
	MonthlyFee decimal.Decimal `json:"monthly_fee"`

	// TenureDays is days survived, measured to the stop date or to the
	// analysis cutoff. Negative values are a known feed defect.
	TenureDays int `json:"tenure_days"`
}

// Stopped reports whether the record carries a terminal event
func (r *SubscriberRecord) Stopped() bool {
	return r.StopType.IsStop()
}

// QualityReport counts records excluded from the eligible population
type QualityReport struct {
	// TotalRecords is the snapshot row count
	TotalRecords int `json:"total_records"`

	// Eligible is the count that entered the engine
	Eligible int `json:"eligible"`

	// NegativeTenure counts rows excluded for tenure_days < 0
	NegativeTenure int `json:"negative_tenure"`

	// PreCutoffStart counts rows excluded for starting before the
	// configured earliest eligible start date
	PreCutoffStart int `json:"pre_cutoff_start"`

	// MissingCustomerID counts rows excluded for a blank customer id
	MissingCustomerID int `json:"missing_customer_id"`
}

// Excluded returns the total number of excluded records
func (q QualityReport) Excluded() int {
	return q.TotalRecords - q.Eligible
}
