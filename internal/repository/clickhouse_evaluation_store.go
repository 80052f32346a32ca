package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pbtrad/balancing-market/internal/domain/models"
	domrepo "github.com/pbtrad/balancing-market/internal/domain/repository"
	pkgch "github.com/pbtrad/balancing-market/pkg/clickhouse"
)

// CHEvaluationStore implements EvaluationStore backed by ClickHouse.
type CHEvaluationStore struct {
	db    *sql.DB
	table string
}

// NewCHEvaluationStore creates a ClickHouse-backed evaluation store.
func NewCHEvaluationStore(ch *pkgch.Client, database string) *CHEvaluationStore {
	return &CHEvaluationStore{db: ch.DB(), table: database + ".forecast_evaluations"}
}

func (s *CHEvaluationStore) Upsert(ctx context.Context, rec models.EvaluationRecord) error {
	q := fmt.Sprintf(`INSERT INTO %s
        (series_type, market_type, model_name, forecast_time, actual_value, forecast_value, error, mae, rmse, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)

	_, err := s.db.ExecContext(ctx, q,
		string(rec.SeriesType),
		string(rec.MarketType),
		rec.ModelName,
		rec.ForecastTime,
		rec.ActualValue,
		rec.ForecastValue,
		rec.Error,
		rec.MAE,
		rec.RMSE,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *CHEvaluationStore) Get(ctx context.Context, key models.EvaluationKey) (*models.EvaluationRecord, error) {
	q := fmt.Sprintf(`
        SELECT series_type, market_type, model_name, forecast_time, actual_value, forecast_value, error, mae, rmse, created_at
        FROM %s FINAL
        WHERE series_type = ? AND market_type = ? AND model_name = ? AND forecast_time = ?
        LIMIT 1
    `, s.table)

	row := s.db.QueryRowContext(ctx, q,
		string(key.SeriesType), string(key.MarketType), key.ModelName, key.ForecastTime)

	var rec models.EvaluationRecord
	var seriesType, marketType string
	err := row.Scan(&seriesType, &marketType, &rec.ModelName, &rec.ForecastTime,
		&rec.ActualValue, &rec.ForecastValue, &rec.Error, &rec.MAE, &rec.RMSE, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	rec.SeriesType = models.SeriesType(seriesType)
	rec.MarketType = models.MarketType(marketType)
	return &rec, nil
}

var _ domrepo.EvaluationStore = (*CHEvaluationStore)(nil)
