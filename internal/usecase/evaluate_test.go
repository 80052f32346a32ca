package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/pbtrad/balancing-market/internal/domain/models"
	domrepo "github.com/pbtrad/balancing-market/internal/domain/repository"
	"github.com/pbtrad/balancing-market/internal/repository"
	applogger "github.com/pbtrad/balancing-market/pkg/logger"
)

func newEvaluator(series domrepo.SeriesStore, evals domrepo.EvaluationStore) *Evaluation {
	return NewEvaluation(series, evals, "demand-lstm-v1", domrepo.NopMetrics{}, applogger.Nop())
}

func evalFixture(t *testing.T) (*repository.MemorySeriesStore, *repository.MemoryEvaluationStore, *Evaluation) {
	t.Helper()
	series := repository.NewMemorySeriesStore()
	evals := repository.NewMemoryEvaluationStore()
	return series, evals, newEvaluator(series, evals)
}

func seedPair(t *testing.T, store domrepo.SeriesStore, at time.Time, forecast, actual float64) {
	t.Helper()
	ctx := context.Background()
	rec := models.SeriesRecord{
		SeriesType: models.SeriesDemand,
		MarketType: models.MarketDayAhead,
		Region:     models.DefaultRegion,
		Time:       at,
		Kind:       models.KindForecast,
		Value:      forecast,
		Source:     "demand-lstm-v1",
	}
	if err := store.Upsert(ctx, rec); err != nil {
		t.Fatalf("seed forecast: %v", err)
	}
	rec.Kind = models.KindActual
	rec.Value = actual
	rec.Source = "eirgrid_demand"
	if err := store.Upsert(ctx, rec); err != nil {
		t.Fatalf("seed actual: %v", err)
	}
}

func TestEvaluateMatchedPair(t *testing.T) {
	series := repository.NewMemorySeriesStore()
	evals := repository.NewMemoryEvaluationStore()
	at := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	seedPair(t, series, at, 3800, 4000)

	rec, err := newEvaluator(series, evals).Evaluate(context.Background(),
		models.SeriesDemand, models.MarketDayAhead, at, "")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if rec == nil {
		t.Fatal("expected an evaluation record")
	}
	if rec.Error != 200 || rec.MAE != 200 || rec.RMSE != 200 {
		t.Errorf("error=%v mae=%v rmse=%v, want 200", rec.Error, rec.MAE, rec.RMSE)
	}
	if rec.ModelName != "demand-lstm-v1" {
		t.Errorf("model name = %s (should come from the forecast source)", rec.ModelName)
	}
	if rec.ActualValue != 4000 || rec.ForecastValue != 3800 {
		t.Errorf("values actual=%v forecast=%v", rec.ActualValue, rec.ForecastValue)
	}
	if evals.Len() != 1 {
		t.Errorf("stored %d evaluations", evals.Len())
	}
}

func TestEvaluateDefersWithoutActual(t *testing.T) {
	series := repository.NewMemorySeriesStore()
	evals := repository.NewMemoryEvaluationStore()
	at := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)

	forecast := models.SeriesRecord{
		SeriesType: models.SeriesDemand,
		MarketType: models.MarketDayAhead,
		Time:       at,
		Kind:       models.KindForecast,
		Value:      3800,
		Source:     "demand-lstm-v1",
	}
	series.Upsert(context.Background(), forecast)

	rec, err := newEvaluator(series, evals).Evaluate(context.Background(),
		models.SeriesDemand, models.MarketDayAhead, at, "")
	if err != nil {
		t.Fatalf("deferral must not be an error: %v", err)
	}
	if rec != nil {
		t.Fatalf("got %+v, want nil while actual is missing", rec)
	}
	if evals.Len() != 0 {
		t.Errorf("stored %d evaluations for an unmatched pair", evals.Len())
	}
}

func TestEvaluateDefersWithoutForecast(t *testing.T) {
	series := repository.NewMemorySeriesStore()
	at := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	series.Upsert(context.Background(), models.SeriesRecord{
		SeriesType: models.SeriesDemand,
		MarketType: models.MarketDayAhead,
		Time:       at,
		Kind:       models.KindActual,
		Value:      4000,
		Source:     "eirgrid_demand",
	})

	rec, err := newEvaluator(series, repository.NewMemoryEvaluationStore()).Evaluate(context.Background(),
		models.SeriesDemand, models.MarketDayAhead, at, "")
	if err != nil || rec != nil {
		t.Fatalf("got rec=%v err=%v, want deferral", rec, err)
	}
}

func TestEvaluateRerunOverwrites(t *testing.T) {
	series := repository.NewMemorySeriesStore()
	evals := repository.NewMemoryEvaluationStore()
	at := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	seedPair(t, series, at, 3800, 4000)
	ev := newEvaluator(series, evals)

	if _, err := ev.Evaluate(context.Background(), models.SeriesDemand, models.MarketDayAhead, at, ""); err != nil {
		t.Fatalf("first evaluate: %v", err)
	}

	// Actual got revised; re-evaluation replaces the stored score.
	seedPair(t, series, at, 3800, 4100)
	rec, err := ev.Evaluate(context.Background(), models.SeriesDemand, models.MarketDayAhead, at, "")
	if err != nil {
		t.Fatalf("second evaluate: %v", err)
	}
	if rec.Error != 300 {
		t.Errorf("error = %v, want 300", rec.Error)
	}
	if evals.Len() != 1 {
		t.Errorf("stored %d evaluations, want 1", evals.Len())
	}
}

func TestEvaluateExplicitModelName(t *testing.T) {
	series := repository.NewMemorySeriesStore()
	evals := repository.NewMemoryEvaluationStore()
	at := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	seedPair(t, series, at, 3800, 4000)

	rec, err := newEvaluator(series, evals).Evaluate(context.Background(),
		models.SeriesDemand, models.MarketDayAhead, at, "demand-lstm-v2")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if rec.ModelName != "demand-lstm-v2" {
		t.Errorf("model name = %s, want the explicit override", rec.ModelName)
	}
}

func TestSweepRecentEvaluatesLandedActuals(t *testing.T) {
	series := repository.NewMemorySeriesStore()
	evals := repository.NewMemoryEvaluationStore()
	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	// Three actuals landed, forecasts exist for two of them.
	for h := 0; h < 3; h++ {
		at := base.Add(time.Duration(h) * time.Hour)
		series.Upsert(context.Background(), models.SeriesRecord{
			SeriesType: models.SeriesDemand,
			MarketType: models.MarketDayAhead,
			Time:       at,
			Kind:       models.KindActual,
			Value:      4000,
			Source:     "eirgrid_demand",
		})
		if h < 2 {
			series.Upsert(context.Background(), models.SeriesRecord{
				SeriesType: models.SeriesDemand,
				MarketType: models.MarketDayAhead,
				Time:       at,
				Kind:       models.KindForecast,
				Value:      3900,
				Source:     "demand-lstm-v1",
			})
		}
	}

	n, err := newEvaluator(series, evals).SweepRecent(context.Background(),
		models.SeriesDemand, models.MarketDayAhead, 10)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 2 {
		t.Errorf("evaluated %d pairs, want 2", n)
	}
	if evals.Len() != 2 {
		t.Errorf("stored %d evaluations, want 2", evals.Len())
	}
}
