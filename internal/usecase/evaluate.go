package usecase

import (
	"context"
	"time"

	"github.com/pbtrad/balancing-market/internal/domain/models"
	domrepo "github.com/pbtrad/balancing-market/internal/domain/repository"
	applogger "github.com/pbtrad/balancing-market/pkg/logger"
)

// Evaluation matches forecasts to observed actuals and persists the scores.
// A pair is evaluated only when both sides exist; missing sides defer, they
// never error.
type Evaluation struct {
	series    domrepo.SeriesStore
	evals     domrepo.EvaluationStore
	modelName string
	metrics   domrepo.Metrics
	logger    *applogger.Logger
}

// NewEvaluation creates the evaluator. modelName labels evaluations of
// records whose source does not name a model.
func NewEvaluation(
	series domrepo.SeriesStore,
	evals domrepo.EvaluationStore,
	modelName string,
	metrics domrepo.Metrics,
	logger *applogger.Logger,
) *Evaluation {
	return &Evaluation{
		series:    series,
		evals:     evals,
		modelName: modelName,
		metrics:   metrics,
		logger:    logger,
	}
}

// Evaluate scores the forecast at forecastTime against its actual. It
// returns nil without error when either side is missing. Re-evaluating an
// already-scored pair overwrites the stored record. An empty modelName
// falls back to the forecast's source, then to the configured default.
func (u *Evaluation) Evaluate(ctx context.Context, seriesType models.SeriesType, marketType models.MarketType, forecastTime time.Time, modelName string) (*models.EvaluationRecord, error) {
	t := forecastTime.UTC().Truncate(time.Second)

	forecast, err := u.series.Get(ctx, models.SeriesKey{
		SeriesType: seriesType,
		MarketType: marketType,
		Region:     models.DefaultRegion,
		Time:       t,
		Kind:       models.KindForecast,
	})
	if err != nil {
		return nil, err
	}
	actual, err := u.series.Get(ctx, models.SeriesKey{
		SeriesType: seriesType,
		MarketType: marketType,
		Region:     models.DefaultRegion,
		Time:       t,
		Kind:       models.KindActual,
	})
	if err != nil {
		return nil, err
	}
	if forecast == nil || actual == nil {
		u.logger.Debug("evaluation deferred",
			applogger.String("series_type", string(seriesType)),
			applogger.Time("forecast_time", t),
		)
		return nil, nil
	}

	if modelName == "" {
		modelName = forecast.Source
	}
	if modelName == "" {
		modelName = u.modelName
	}

	rec := models.NewEvaluation(*forecast, *actual, modelName)
	if err := u.evals.Upsert(ctx, rec); err != nil {
		return nil, err
	}

	u.metrics.RecordEvaluation(string(seriesType), string(marketType), modelName, rec.Error)
	u.logger.Info("forecast evaluated",
		applogger.String("series_type", string(seriesType)),
		applogger.String("model", modelName),
		applogger.Time("forecast_time", t),
		applogger.Float64("abs_error", rec.Error),
	)
	return &rec, nil
}

// SweepRecent evaluates the latest limit actuals of a series. Deferred pairs
// are skipped; store failures abort the sweep.
func (u *Evaluation) SweepRecent(ctx context.Context, seriesType models.SeriesType, marketType models.MarketType, limit int) (int, error) {
	actuals, err := u.series.Recent(ctx, seriesType, marketType, models.KindActual, limit)
	if err != nil {
		return 0, err
	}

	evaluated := 0
	for _, a := range actuals {
		rec, err := u.Evaluate(ctx, seriesType, marketType, a.Time, "")
		if err != nil {
			return evaluated, err
		}
		if rec != nil {
			evaluated++
		}
	}
	return evaluated, nil
}
