package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pbtrad/balancing-market/internal/domain/models"
	domrepo "github.com/pbtrad/balancing-market/internal/domain/repository"
	pkgch "github.com/pbtrad/balancing-market/pkg/clickhouse"
	applogger "github.com/pbtrad/balancing-market/pkg/logger"
)

// SchemaStatements returns the idempotent DDL for the series and evaluation
// tables. ReplacingMergeTree keyed by the record identity gives idempotent
// last-write-wins upserts; created_at is the replacing version column.
func SchemaStatements(database string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.series_records (
            series_type LowCardinality(String),
            market_type LowCardinality(String),
            region LowCardinality(String),
            time DateTime,
            kind LowCardinality(String),
            value Float64,
            source String,
            created_at DateTime64(3)
        ) ENGINE = ReplacingMergeTree(created_at)
        ORDER BY (series_type, market_type, region, kind, time)`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.forecast_evaluations (
            series_type LowCardinality(String),
            market_type LowCardinality(String),
            model_name String,
            forecast_time DateTime,
            actual_value Float64,
            forecast_value Float64,
            error Float64,
            mae Float64,
            rmse Float64,
            created_at DateTime64(3)
        ) ENGINE = ReplacingMergeTree(created_at)
        ORDER BY (series_type, market_type, model_name, forecast_time)`, database),
	}
}

// CHSeriesStore implements SeriesStore backed by ClickHouse.
type CHSeriesStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

// NewCHSeriesStore creates a ClickHouse-backed series store.
func NewCHSeriesStore(ch *pkgch.Client, database string) *CHSeriesStore {
	return &CHSeriesStore{db: ch.DB(), table: database + ".series_records"}
}

// SetLogger injects a structured logger.
func (s *CHSeriesStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHSeriesStore) Upsert(ctx context.Context, rec models.SeriesRecord) error {
	return s.UpsertBatch(ctx, []models.SeriesRecord{rec})
}

func (s *CHSeriesStore) UpsertBatch(ctx context.Context, recs []models.SeriesRecord) error {
	if len(recs) == 0 {
		return nil
	}

	values := make([]string, 0, len(recs))
	args := make([]interface{}, 0, len(recs)*8)
	for i := range recs {
		rec := recs[i]
		rec.Normalize()
		if err := rec.Validate(); err != nil {
			return err
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			string(rec.SeriesType),
			string(rec.MarketType),
			rec.Region,
			rec.Time,
			string(rec.Kind),
			rec.Value,
			rec.Source,
			rec.CreatedAt,
		)
	}

	q := fmt.Sprintf("INSERT INTO %s (series_type, market_type, region, time, kind, value, source, created_at) VALUES %s",
		s.table, strings.Join(values, ","))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse upsert error",
				applogger.Int("rows", len(recs)),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *CHSeriesStore) Get(ctx context.Context, key models.SeriesKey) (*models.SeriesRecord, error) {
	q := fmt.Sprintf(`
        SELECT series_type, market_type, region, time, kind, value, source, created_at
        FROM %s FINAL
        WHERE series_type = ? AND market_type = ? AND region = ? AND kind = ? AND time = ?
        LIMIT 1
    `, s.table)

	row := s.db.QueryRowContext(ctx, q,
		string(key.SeriesType), string(key.MarketType), key.Region, string(key.Kind), key.Time)

	rec, err := scanSeriesRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	return rec, nil
}

func (s *CHSeriesStore) Range(ctx context.Context, seriesType models.SeriesType, marketType models.MarketType, region string, kind models.RecordKind, window models.TimeWindow) ([]models.SeriesRecord, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT series_type, market_type, region, time, kind, value, source, created_at
        FROM %s FINAL
        WHERE series_type = ? AND market_type = ? AND region = ? AND kind = ?
          AND time >= ? AND time < ?
        ORDER BY time ASC
    `, s.table)

	rows, err := s.db.QueryContext(ctx, q,
		string(seriesType), string(marketType), region, string(kind), window.From, window.To)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	out, err := collectSeriesRecords(rows)
	if err != nil {
		return nil, err
	}
	if s.l != nil {
		s.l.Debug("clickhouse range ok",
			applogger.String("series_type", string(seriesType)),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHSeriesStore) Recent(ctx context.Context, seriesType models.SeriesType, marketType models.MarketType, kind models.RecordKind, limit int) ([]models.SeriesRecord, error) {
	q := fmt.Sprintf(`
        SELECT series_type, market_type, region, time, kind, value, source, created_at
        FROM %s FINAL
        WHERE series_type = ? AND market_type = ? AND kind = ?
        ORDER BY time DESC
        LIMIT ?
    `, s.table)

	rows, err := s.db.QueryContext(ctx, q,
		string(seriesType), string(marketType), string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	return collectSeriesRecords(rows)
}

func (s *CHSeriesStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHSeriesStore) Close() error {
	return nil // connection pool is owned by pkg/clickhouse
}

func scanSeriesRecord(scan func(dest ...interface{}) error) (*models.SeriesRecord, error) {
	var rec models.SeriesRecord
	var seriesType, marketType, kind string
	if err := scan(&seriesType, &marketType, &rec.Region, &rec.Time, &kind, &rec.Value, &rec.Source, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.SeriesType = models.SeriesType(seriesType)
	rec.MarketType = models.MarketType(marketType)
	rec.Kind = models.RecordKind(kind)
	return &rec, nil
}

func collectSeriesRecords(rows *sql.Rows) ([]models.SeriesRecord, error) {
	var out []models.SeriesRecord
	for rows.Next() {
		rec, err := scanSeriesRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan series record: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	return out, nil
}

var _ domrepo.SeriesStore = (*CHSeriesStore)(nil)
