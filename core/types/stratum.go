// Package types - Stratification types
package types

import (
	"fmt"
	"strings"
)

// Stratification is the ordered list of grouping dimensions.
// Empty means a single global curve.
type Stratification []string

// Known stratification dimensions
const (
	DimMarket  = "market"
	DimChannel = "channel"
)

// Validate checks that every dimension is known
func (s Stratification) Validate() error {
	for _, dim := range s {
		switch dim {
		case DimMarket, DimChannel:
		default:
			return fmt.Errorf("unknown stratification dimension: %s", dim)
		}
	}
	return nil
}

// StratumKey identifies one stratum: the values of the stratification
// dimensions, in dimension order
type StratumKey struct {
	// Dimensions are the grouping dimensions, in order
	Dimensions []string `json:"dimensions,omitempty"`

	// Values are the dimension values for this stratum, aligned with Dimensions
	Values []string `json:"values,omitempty"`
}

// GlobalStratum is the key of the single unstratified curve
func GlobalStratum() StratumKey {
	return StratumKey{}
}

// String returns a canonical representation for map keys and logging
func (k StratumKey) String() string {
	if len(k.Dimensions) == 0 {
		return "(global)"
	}
	parts := make([]string, len(k.Dimensions))
	for i, dim := range k.Dimensions {
		parts[i] = dim + "=" + k.Values[i]
	}
	return strings.Join(parts, ",")
}

// Value returns the value of one dimension, or "" if absent
func (k StratumKey) Value(dim string) string {
	for i, d := range k.Dimensions {
		if d == dim {
			return k.Values[i]
		}
	}
	return ""
}

// KeyFor extracts the stratum key of a record under a stratification
func (s Stratification) KeyFor(r *SubscriberRecord) (StratumKey, error) {
	if len(s) == 0 {
		return GlobalStratum(), nil
	}
	values := make([]string, len(s))
	for i, dim := range s {
		switch dim {
		case DimMarket:
			values[i] = r.Market
		case DimChannel:
			values[i] = r.Channel
		default:
			return StratumKey{}, fmt.Errorf("unknown stratification dimension: %s", dim)
		}
	}
	return StratumKey{Dimensions: []string(s), Values: values}, nil
}
