package usecase

import (
	"context"
	"time"

	"github.com/pbtrad/balancing-market/internal/domain/models"
	domrepo "github.com/pbtrad/balancing-market/internal/domain/repository"
	"github.com/pbtrad/balancing-market/internal/service/predictor"
	applogger "github.com/pbtrad/balancing-market/pkg/logger"
)

// Forecast generates hourly forecast records over a horizon. The primary
// predictor is the model endpoint; when it fails and fallback is enabled the
// heuristic takes over, tagging records with its own source name.
type Forecast struct {
	primary  domrepo.Predictor
	fallback domrepo.Predictor // nil when fallback is disabled
	store    domrepo.SeriesStore
	metrics  domrepo.Metrics
	logger   *applogger.Logger
	now      func() time.Time
}

// NewForecast creates the forecast engine. fallback may be nil.
func NewForecast(
	primary domrepo.Predictor,
	fallback domrepo.Predictor,
	store domrepo.SeriesStore,
	metrics domrepo.Metrics,
	logger *applogger.Logger,
) *Forecast {
	return &Forecast{
		primary:  primary,
		fallback: fallback,
		store:    store,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Generate produces horizonHours hourly forecasts starting at the current
// hour boundary and persists them in one batch. Either every record is
// written or none.
func (u *Forecast) Generate(ctx context.Context, seriesType models.SeriesType, marketType models.MarketType, horizonHours int) ([]models.SeriesRecord, error) {
	start := time.Now()

	// One clock reading anchors the whole run so the record times always
	// match the hours the features were built for.
	base := u.now().UTC().Truncate(time.Hour)
	features := predictor.Horizon(base, horizonHours)

	values, source, err := u.predict(ctx, features)
	if err != nil {
		return nil, err
	}

	records := make([]models.SeriesRecord, 0, len(features))
	for i := range features {
		records = append(records, models.SeriesRecord{
			SeriesType: seriesType,
			MarketType: marketType,
			Region:     models.DefaultRegion,
			Time:       base.Add(time.Duration(i) * time.Hour),
			Kind:       models.KindForecast,
			Value:      values[i],
			Source:     source,
			CreatedAt:  time.Now().UTC(),
		})
	}

	if err := u.store.UpsertBatch(ctx, records); err != nil {
		return nil, err
	}

	u.metrics.RecordRecordsWritten(string(models.KindForecast), len(records))
	u.metrics.RecordLatency("forecast_run", time.Since(start).Seconds())
	u.logger.Info("forecast run complete",
		applogger.String("series_type", string(seriesType)),
		applogger.String("market_type", string(marketType)),
		applogger.String("source", source),
		applogger.Int("records", len(records)),
	)
	return records, nil
}

// Recent returns the latest limit stored records of a series, newest first.
func (u *Forecast) Recent(ctx context.Context, seriesType models.SeriesType, marketType models.MarketType, kind models.RecordKind, limit int) ([]models.SeriesRecord, error) {
	return u.store.Recent(ctx, seriesType, marketType, kind, limit)
}

func (u *Forecast) predict(ctx context.Context, features []models.FeatureVector) ([]float64, string, error) {
	values, err := u.primary.Predict(ctx, features)
	if err == nil {
		return values, u.primary.Name(), nil
	}

	u.metrics.RecordError("predict")
	if u.fallback == nil {
		u.logger.Error("model predict failed, no fallback", applogger.Error(err))
		return nil, "", models.ErrPredictionUnavailable
	}

	u.logger.Warn("model predict failed, using fallback", applogger.Error(err))
	values, ferr := u.fallback.Predict(ctx, features)
	if ferr != nil {
		return nil, "", models.ErrPredictionUnavailable
	}
	return values, u.fallback.Name(), nil
}
