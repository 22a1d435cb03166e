// Package store loads subscriber snapshots from Postgres and persists
// computed results per run.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"churn-engine/core/engine"
	"churn-engine/core/types"
	"churn-engine/internal/errors"
	"churn-engine/internal/logging"
)

// Config holds Postgres connection settings
type Config struct {
	// URL is the Postgres connection string
	URL string

	// Schema is the schema for engine tables
	Schema string

	// SubscriberTable is the table holding the subscriber snapshot
	SubscriberTable string
}

// Store is a Postgres-backed snapshot source and result sink
type Store struct {
	db     *sql.DB
	schema string
	table  string
}

var identPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// New opens a store connection
func New(cfg Config) (*Store, error) {
	schema := strings.TrimSpace(cfg.Schema)
	if !identPattern.MatchString(schema) {
		return nil, errors.Newf(errors.TypeConfig, "invalid schema name: %s", cfg.Schema)
	}
	table := strings.TrimSpace(cfg.SubscriberTable)
	if !identPattern.MatchString(table) {
		return nil, errors.Newf(errors.TypeConfig, "invalid subscriber table name: %s", cfg.SubscriberTable)
	}

	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, errors.Storage("open database", err)
	}
	return &Store{db: db, schema: schema, table: table}, nil
}

// Close releases the connection
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadSnapshot reads the full subscriber snapshot
func (s *Store) LoadSnapshot(ctx context.Context) ([]types.SubscriberRecord, error) {
	query := fmt.Sprintf(`
		SELECT customer_id, start_date, stop_date, stop_type,
		       market, channel, monthly_fee, tenure
		FROM %s.%s`, s.schema, s.table)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Storage("query subscriber snapshot", err)
	}
	defer rows.Close()

	var records []types.SubscriberRecord
	for rows.Next() {
		var r types.SubscriberRecord
		var stopDate sql.NullTime
		var stopType, market, channel sql.NullString
		var fee sql.NullString

		if err := rows.Scan(&r.CustomerID, &r.StartDate, &stopDate, &stopType,
			&market, &channel, &fee, &r.TenureDays); err != nil {
			return nil, errors.Storage("scan subscriber row", err)
		}
		if stopDate.Valid {
			r.StopDate = stopDate.Time
		}
		r.StopType = types.StopType(stopType.String)
		r.Market = market.String
		r.Channel = channel.String
		if fee.Valid && fee.String != "" {
			parsed, err := decimal.NewFromString(fee.String)
			if err != nil {
				return nil, errors.Storage("parse monthly fee", err)
			}
			r.MonthlyFee = parsed
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("read subscriber snapshot", err)
	}

	logging.Info("loaded subscriber snapshot from database",
		zap.Int("records", len(records)),
		zap.String("table", s.schema+"."+s.table),
	)
	return records, nil
}

// EnsureSchema creates the result tables if they do not exist
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, s.schema),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s.runs (
				id uuid PRIMARY KEY,
				stratification text NOT NULL,
				total_records integer NOT NULL,
				eligible integer NOT NULL,
				negative_tenure integer NOT NULL,
				pre_cutoff_start integer NOT NULL,
				strata integer NOT NULL,
				failed_strata integer NOT NULL,
				duration_ms bigint NOT NULL,
				created_at timestamptz NOT NULL DEFAULT now()
			)`, s.schema),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s.life_table (
				id uuid PRIMARY KEY,
				run_id uuid NOT NULL REFERENCES %s.runs(id) ON DELETE CASCADE,
				stratum text NOT NULL,
				tenure integer NOT NULL,
				population integer NOT NULL,
				events integer NOT NULL,
				cumulative_population integer NOT NULL,
				hazard double precision,
				survival double precision NOT NULL,
				end_tenure integer NOT NULL,
				span_days integer NOT NULL,
				unbounded_tail boolean NOT NULL DEFAULT false
			)`, s.schema, s.schema),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s.revenue_rates (
				id uuid PRIMARY KEY,
				run_id uuid NOT NULL REFERENCES %s.runs(id) ON DELETE CASCADE,
				stratum text NOT NULL,
				daily_revenue numeric(12,6) NOT NULL,
				sample_size integer NOT NULL
			)`, s.schema, s.schema),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s.projections (
				id uuid PRIMARY KEY,
				run_id uuid NOT NULL REFERENCES %s.runs(id) ON DELETE CASCADE,
				stratum text NOT NULL,
				horizon_days integer NOT NULL,
				numsubs integer NOT NULL,
				numactive integer NOT NULL,
				revenue numeric(16,2) NOT NULL,
				revenue_per_start numeric(16,2) NOT NULL,
				revenue_per_active numeric(16,2) NOT NULL
			)`, s.schema, s.schema),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_life_table_run_idx ON %s.life_table (run_id, stratum)`, s.schema, s.schema),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_projections_run_idx ON %s.projections (run_id)`, s.schema, s.schema),
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Storage("ensure schema", err)
		}
	}
	return nil
}

// SaveResult persists one computation run: the run row, every stratum's
// life table, the revenue rates, and the projection rows
func (s *Store) SaveResult(ctx context.Context, result *engine.Result, projections map[int][]types.ProjectionRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Storage("begin transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	runID, err := uuid.Parse(result.RunID)
	if err != nil {
		return errors.Internal("invalid run id", err)
	}

	_, err = tx.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s.runs (
			id, stratification, total_records, eligible, negative_tenure,
			pre_cutoff_start, strata, failed_strata, duration_ms
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`, s.schema),
		runID,
		strings.Join(result.Table.Stratification, ","),
		result.Quality.TotalRecords,
		result.Quality.Eligible,
		result.Quality.NegativeTenure,
		result.Quality.PreCutoffStart,
		len(result.Table.Curves),
		len(result.Failed),
		result.Duration.Milliseconds(),
	)
	if err != nil {
		return errors.Storage("insert run", err)
	}

	bucketSQL := fmt.Sprintf(`
		INSERT INTO %s.life_table (
			id, run_id, stratum, tenure, population, events,
			cumulative_population, hazard, survival, end_tenure,
			span_days, unbounded_tail
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`, s.schema)

	for _, keyStr := range result.Table.StratumKeys() {
		curve := result.Table.Curves[keyStr]
		for i := range curve.Buckets {
			b := &curve.Buckets[i]
			hazard := sql.NullFloat64{}
			if b.HazardDefined {
				hazard = sql.NullFloat64{Float64: b.Hazard, Valid: true}
			}
			if _, err = tx.ExecContext(ctx, bucketSQL,
				uuid.New(), runID, keyStr,
				b.Tenure, b.Population, b.Events, b.CumulativePopulation,
				hazard, b.Survival, b.EndTenure, b.SpanDays(), b.UnboundedTail,
			); err != nil {
				return errors.Storage("insert life table row", err)
			}
		}
	}

	rateSQL := fmt.Sprintf(`
		INSERT INTO %s.revenue_rates (id, run_id, stratum, daily_revenue, sample_size)
		VALUES ($1,$2,$3,$4,$5)`, s.schema)
	for keyStr, rate := range result.Rates {
		if _, err = tx.ExecContext(ctx, rateSQL,
			uuid.New(), runID, keyStr, rate.DailyRevenue.String(), rate.SampleSize,
		); err != nil {
			return errors.Storage("insert revenue rate", err)
		}
	}

	projSQL := fmt.Sprintf(`
		INSERT INTO %s.projections (
			id, run_id, stratum, horizon_days, numsubs, numactive,
			revenue, revenue_per_start, revenue_per_active
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`, s.schema)
	for _, rows := range projections {
		for _, row := range rows {
			if _, err = tx.ExecContext(ctx, projSQL,
				uuid.New(), runID, row.Stratum.String(), row.HorizonDays,
				row.NumSubs, row.NumActive,
				row.Revenue.String(), row.RevenuePerStart.String(), row.RevenuePerActive.String(),
			); err != nil {
				return errors.Storage("insert projection row", err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Storage("commit run", err)
	}

	logging.Info("persisted computation run",
		zap.String("run_id", result.RunID),
		zap.Int("strata", len(result.Table.Curves)),
	)
	return nil
}
