// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"churn-engine/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Analysis contains survival analysis settings
	Analysis AnalysisConfig `json:"analysis"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Storage contains snapshot and result storage configuration
	Storage StorageConfig `json:"storage"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// AnalysisConfig contains survival analysis settings
type AnalysisConfig struct {
	// EarliestStartDate excludes records starting before this date.
	// The legacy billing feed contains spurious pre-2004 stops, so the
	// exclusion boundary is part of the engine contract.
	EarliestStartDate string `json:"earliest_start_date"`

	// Stratify lists the grouping dimensions (empty = one global curve)
	Stratify []string `json:"stratify,omitempty"`

	// TailSentinelDays is the span assigned to the unbounded tail bucket
	// when materializing end_tenure for output tables
	TailSentinelDays int `json:"tail_sentinel_days"`

	// RateWindowDays selects recent starts for revenue rate derivation
	RateWindowDays int `json:"rate_window_days"`

	// HorizonsDays are the default revenue projection horizons
	HorizonsDays []int `json:"horizons_days"`

	// MaxWorkers bounds parallel stratum computation (0 = GOMAXPROCS)
	MaxWorkers int `json:"max_workers"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format (cli, json, csv)
	DefaultFormat string `json:"default_format"`

	// ShowDetails shows per-bucket life table rows
	ShowDetails bool `json:"show_details"`

	// Precision is the number of decimal places for probabilities
	Precision int `json:"precision"`
}

// StorageConfig contains snapshot and result storage settings
type StorageConfig struct {
	// DatabaseURL is the Postgres connection string (empty = file input only)
	DatabaseURL string `json:"database_url,omitempty"`

	// Schema is the Postgres schema for engine tables
	Schema string `json:"schema"`

	// SubscriberTable is the table holding the subscriber snapshot
	SubscriberTable string `json:"subscriber_table"`

	// PersistResults stores computed tables per run
	PersistResults bool `json:"persist_results"`
}

// EarliestStart parses the configured earliest start date
func (a AnalysisConfig) EarliestStart() (time.Time, error) {
	return time.Parse("2006-01-02", a.EarliestStartDate)
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Analysis: AnalysisConfig{
			EarliestStartDate: "2004-01-01",
			Stratify:          []string{"market", "channel"},
			TailSentinelDays:  100000,
			RateWindowDays:    365,
			HorizonsDays:      []int{365, 730},
			MaxWorkers:        0,
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
			ShowDetails:   false,
			Precision:     6,
		},
		Storage: StorageConfig{
			Schema:          "churn",
			SubscriberTable: "subscribers",
			PersistResults:  false,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
