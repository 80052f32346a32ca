package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pbtrad/balancing-market/internal/domain/models"
	domrepo "github.com/pbtrad/balancing-market/internal/domain/repository"
	"github.com/pbtrad/balancing-market/internal/repository"
	"github.com/pbtrad/balancing-market/internal/service/predictor"
	"github.com/pbtrad/balancing-market/internal/usecase"
	pkghttp "github.com/pbtrad/balancing-market/pkg/http"
	applogger "github.com/pbtrad/balancing-market/pkg/logger"
)

type stubConnector struct {
	name    string
	records []models.SeriesRecord
}

func (s *stubConnector) Name() string { return s.name }

func (s *stubConnector) Fetch(ctx context.Context, window models.TimeWindow) ([]byte, error) {
	return []byte(`{}`), nil
}

func (s *stubConnector) Extract(payload []byte, window models.TimeWindow) ([]models.SeriesRecord, []error) {
	return s.records, nil
}

type fixture struct {
	echo   *echo.Echo
	series *repository.MemorySeriesStore
	evals  *repository.MemoryEvaluationStore
	blobs  *repository.MemoryBlobStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	lg := applogger.Nop()
	series := repository.NewMemorySeriesStore()
	evals := repository.NewMemoryEvaluationStore()
	blobs := repository.NewMemoryBlobStore()
	metrics := domrepo.NopMetrics{}

	actual := models.SeriesRecord{
		SeriesType: models.SeriesDemand,
		MarketType: models.MarketDayAhead,
		Time:       time.Now().UTC().Truncate(time.Hour),
		Kind:       models.KindActual,
		Value:      4000,
		Source:     "eirgrid_demand",
	}
	connectors := []domrepo.Connector{&stubConnector{name: "eirgrid_demand", records: []models.SeriesRecord{actual}}}

	ingestion := usecase.NewIngestion(connectors, series, blobs, nil, metrics, lg)
	forecast := usecase.NewForecast(predictor.NewHeuristic(), nil, series, metrics, lg)
	evaluator := usecase.NewEvaluation(series, evals, "demand-lstm-v1", metrics, lg)
	training := usecase.NewTraining(nil, blobs, time.Millisecond, lg)

	h := NewForecastHandler(ingestion, forecast, evaluator, training, lg)
	e := echo.New()
	h.RegisterRoutes(e)
	return &fixture{echo: e, series: series, evals: evals, blobs: blobs}
}

func (f *fixture) do(t *testing.T, method, target, body string) (*httptest.ResponseRecorder, pkghttp.APIResponse) {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)

	var resp pkghttp.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response json: %v (%s)", err, rec.Body.String())
	}
	return rec, resp
}

func TestTriggerScraperEndpoint(t *testing.T) {
	f := newFixture(t)
	rec, resp := f.do(t, http.MethodPost, "/api/forecast/trigger_scraper", `{}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	data, _ := json.Marshal(resp.Data)
	var report models.IngestionReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("report decode: %v", err)
	}
	if report.RecordsWritten != 1 || len(report.Succeeded) != 1 {
		t.Errorf("report = %+v", report)
	}
	if report.SnapshotKey == "" {
		t.Error("report missing snapshot key")
	}
}

func TestPredictEndpoint(t *testing.T) {
	f := newFixture(t)
	rec, resp := f.do(t, http.MethodPost, "/api/forecast/predict", `{"horizon_hours":24}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	data, _ := json.Marshal(resp.Data)
	var list pkghttp.ListDataResponse
	if err := json.Unmarshal(data, &list); err != nil {
		t.Fatalf("list decode: %v", err)
	}
	if list.Total != 24 {
		t.Errorf("total = %d, want 24", list.Total)
	}
}

func TestPredictEndpointRejectsBadHorizon(t *testing.T) {
	f := newFixture(t)
	rec, resp := f.do(t, http.MethodPost, "/api/forecast/predict", `{"horizon_hours":9999}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("envelope status = %d", rec.Code)
	}
	if resp.Status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.Status)
	}
}

func TestRecentEndpoint(t *testing.T) {
	f := newFixture(t)
	if _, resp := f.do(t, http.MethodPost, "/api/forecast/predict", `{"horizon_hours":6}`); resp.Status != http.StatusOK {
		t.Fatalf("predict failed: %d", resp.Status)
	}

	rec, resp := f.do(t, http.MethodGet, "/api/forecast/recent?series_type=DEMAND&kind=FORECAST&limit=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	data, _ := json.Marshal(resp.Data)
	var list pkghttp.ListDataResponse
	if err := json.Unmarshal(data, &list); err != nil {
		t.Fatalf("list decode: %v", err)
	}
	if list.Total != 3 {
		t.Errorf("total = %d, want 3", list.Total)
	}
}

func TestEvaluateEndpointDeferred(t *testing.T) {
	f := newFixture(t)
	_, resp := f.do(t, http.MethodPost, "/api/forecast/evaluate",
		`{"forecast_time":"2030-01-01T00:00:00Z"}`)

	if resp.Status != http.StatusNotFound {
		t.Errorf("status = %d, want 404 while pair incomplete", resp.Status)
	}
}

func TestEvaluateEndpointMatched(t *testing.T) {
	f := newFixture(t)
	at := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	seed := models.SeriesRecord{
		SeriesType: models.SeriesDemand,
		MarketType: models.MarketDayAhead,
		Time:       at,
		Kind:       models.KindForecast,
		Value:      3800,
		Source:     "demand-lstm-v1",
	}
	f.series.Upsert(context.Background(), seed)
	seed.Kind = models.KindActual
	seed.Value = 4000
	seed.Source = "eirgrid_demand"
	f.series.Upsert(context.Background(), seed)

	rec, resp := f.do(t, http.MethodPost, "/api/forecast/evaluate",
		`{"forecast_time":"2026-03-10T06:00:00Z"}`)
	if rec.Code != http.StatusOK || resp.Status != http.StatusOK {
		t.Fatalf("status = %d/%d: %s", rec.Code, resp.Status, rec.Body.String())
	}

	data, _ := json.Marshal(resp.Data)
	var eval models.EvaluationRecord
	if err := json.Unmarshal(data, &eval); err != nil {
		t.Fatalf("evaluation decode: %v", err)
	}
	if eval.Error != 200 {
		t.Errorf("error = %v, want 200", eval.Error)
	}
}

func TestSweepEndpoint(t *testing.T) {
	f := newFixture(t)
	at := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	seed := models.SeriesRecord{
		SeriesType: models.SeriesDemand,
		MarketType: models.MarketDayAhead,
		Time:       at,
		Kind:       models.KindForecast,
		Value:      3800,
		Source:     "demand-lstm-v1",
	}
	f.series.Upsert(context.Background(), seed)
	seed.Kind = models.KindActual
	seed.Value = 4000
	seed.Source = "eirgrid_demand"
	f.series.Upsert(context.Background(), seed)

	rec, resp := f.do(t, http.MethodPost, "/api/forecast/evaluate/sweep", `{}`)
	if rec.Code != http.StatusOK || resp.Status != http.StatusOK {
		t.Fatalf("status = %d/%d: %s", rec.Code, resp.Status, rec.Body.String())
	}

	data, _ := json.Marshal(resp.Data)
	var out map[string]int
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("sweep decode: %v", err)
	}
	if out["evaluated"] != 1 {
		t.Errorf("evaluated = %d, want 1", out["evaluated"])
	}
	if f.evals.Len() != 1 {
		t.Errorf("stored %d evaluations, want 1", f.evals.Len())
	}
}

func TestSweepEndpointRejectsBadSeries(t *testing.T) {
	f := newFixture(t)
	_, resp := f.do(t, http.MethodPost, "/api/forecast/evaluate/sweep", `{"series_type":"WIND"}`)
	if resp.Status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.Status)
	}
}

func TestUploadDatasetEndpoint(t *testing.T) {
	f := newFixture(t)
	rec, resp := f.do(t, http.MethodPost, "/api/forecast/train/upload",
		`{"dataset_name":"demand_2026q1.csv","content":"time,value\n"}`)
	if rec.Code != http.StatusOK || resp.Status != http.StatusOK {
		t.Fatalf("status = %d/%d: %s", rec.Code, resp.Status, rec.Body.String())
	}

	data, _ := json.Marshal(resp.Data)
	var out map[string]string
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("upload decode: %v", err)
	}
	if out["key"] != "training/demand_2026q1.csv" {
		t.Errorf("key = %s", out["key"])
	}
	stored, err := f.blobs.Get(context.Background(), out["key"])
	if err != nil || string(stored) != "time,value\n" {
		t.Errorf("stored dataset = %q, err %v", stored, err)
	}
}

func TestUploadDatasetEndpointRejectsMissingName(t *testing.T) {
	f := newFixture(t)
	_, resp := f.do(t, http.MethodPost, "/api/forecast/train/upload", `{"content":"x"}`)
	if resp.Status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.Status)
	}
}
