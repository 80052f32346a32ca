package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/pbtrad/balancing-market/internal/domain/models"
	domrepo "github.com/pbtrad/balancing-market/internal/domain/repository"
	"github.com/pbtrad/balancing-market/internal/repository"
	applogger "github.com/pbtrad/balancing-market/pkg/logger"
)

type fakeConnector struct {
	name     string
	payload  []byte
	fetchErr *models.FetchError
	records  []models.SeriesRecord
	parseErr []error
}

func (f *fakeConnector) Name() string { return f.name }

func (f *fakeConnector) Fetch(ctx context.Context, window models.TimeWindow) ([]byte, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.payload, nil
}

func (f *fakeConnector) Extract(payload []byte, window models.TimeWindow) ([]models.SeriesRecord, []error) {
	return f.records, f.parseErr
}

type failingSeriesStore struct {
	*repository.MemorySeriesStore
}

func (s *failingSeriesStore) UpsertBatch(ctx context.Context, recs []models.SeriesRecord) error {
	return models.ErrStoreUnavailable
}

func testActual(hour int, value float64) models.SeriesRecord {
	return models.SeriesRecord{
		SeriesType: models.SeriesDemand,
		MarketType: models.MarketDayAhead,
		Region:     models.DefaultRegion,
		Time:       time.Date(2026, 3, 10, hour, 0, 0, 0, time.UTC),
		Kind:       models.KindActual,
		Value:      value,
		Source:     "test",
	}
}

func dayWindow() models.TimeWindow {
	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return models.TimeWindow{From: from, To: from.Add(24 * time.Hour)}
}

func newIngestion(connectors []domrepo.Connector, store domrepo.SeriesStore, blobs domrepo.BlobStore) *Ingestion {
	return NewIngestion(connectors, store, blobs, nil, domrepo.NopMetrics{}, applogger.Nop())
}

func TestIngestionPartialFailureIsSuccess(t *testing.T) {
	store := repository.NewMemorySeriesStore()
	blobs := repository.NewMemoryBlobStore()

	ok := &fakeConnector{
		name:    "eirgrid_demand",
		payload: []byte(`{"Rows":[]}`),
		records: []models.SeriesRecord{testActual(6, 4000), testActual(7, 4100)},
	}
	down := &fakeConnector{name: "semo_imbalance", fetchErr: models.NewTimeoutError(errors.New("deadline"))}

	report, err := newIngestion([]domrepo.Connector{ok, down}, store, blobs).Run(context.Background(), dayWindow())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(report.Succeeded) != 1 || report.Succeeded[0] != "eirgrid_demand" {
		t.Errorf("succeeded = %v", report.Succeeded)
	}
	fe, ok2 := report.Failed["semo_imbalance"]
	if !ok2 || fe.Kind != models.FetchTimeout {
		t.Errorf("failed = %v", report.Failed)
	}
	if report.RecordsWritten != 2 {
		t.Errorf("records written = %d, want 2", report.RecordsWritten)
	}

	rec, _ := store.Get(context.Background(), testActual(6, 0).Key())
	if rec == nil || rec.Value != 4000 {
		t.Errorf("actual not persisted: %+v", rec)
	}
}

func TestIngestionSnapshotCoversEverySource(t *testing.T) {
	blobs := repository.NewMemoryBlobStore()

	ok := &fakeConnector{name: "a", payload: []byte(`{"x":1}`)}
	down := &fakeConnector{name: "b", fetchErr: models.NewTransportError(502)}

	report, err := newIngestion([]domrepo.Connector{ok, down}, repository.NewMemorySeriesStore(), blobs).
		Run(context.Background(), dayWindow())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.SnapshotKey == "" {
		t.Fatal("report has no snapshot key")
	}

	raw, err := blobs.Get(context.Background(), report.SnapshotKey)
	if err != nil {
		t.Fatalf("snapshot blob: %v", err)
	}
	var snap models.RawSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("snapshot json: %v", err)
	}

	if len(snap.Sources) != 2 {
		t.Fatalf("snapshot covers %d sources, want 2", len(snap.Sources))
	}
	if !snap.Sources["a"].OK() || string(snap.Sources["a"].Payload) != `{"x":1}` {
		t.Errorf("source a = %+v", snap.Sources["a"])
	}
	if snap.Sources["b"].OK() {
		t.Errorf("source b should carry a failure marker, got %+v", snap.Sources["b"])
	}
}

func TestIngestionAllFailedStillWritesSnapshot(t *testing.T) {
	blobs := repository.NewMemoryBlobStore()
	down := &fakeConnector{name: "only", fetchErr: models.NewTimeoutError(errors.New("deadline"))}

	report, err := newIngestion([]domrepo.Connector{down}, repository.NewMemorySeriesStore(), blobs).
		Run(context.Background(), dayWindow())
	if err != nil {
		t.Fatalf("run should not fail on endpoint errors: %v", err)
	}
	if !report.AllFailed() {
		t.Error("expected AllFailed")
	}
	if report.SnapshotKey == "" {
		t.Fatal("snapshot must be written even with zero successful sources")
	}
	keys, _ := blobs.List(context.Background(), "raw/")
	if len(keys) != 1 {
		t.Fatalf("got %d snapshots, want 1", len(keys))
	}
}

func TestIngestionParseErrorsAreSkipped(t *testing.T) {
	store := repository.NewMemorySeriesStore()
	c := &fakeConnector{
		name:     "semo",
		payload:  []byte(`{}`),
		records:  []models.SeriesRecord{testActual(6, 4000)},
		parseErr: []error{errors.New("item 3: bad StartTime")},
	}

	report, err := newIngestion([]domrepo.Connector{c}, store, repository.NewMemoryBlobStore()).
		Run(context.Background(), dayWindow())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.RecordsWritten != 1 {
		t.Errorf("records written = %d, want the good record only", report.RecordsWritten)
	}
}

func TestIngestionStoreUnavailableIsFatal(t *testing.T) {
	store := &failingSeriesStore{repository.NewMemorySeriesStore()}
	c := &fakeConnector{name: "semo", payload: []byte(`{}`), records: []models.SeriesRecord{testActual(6, 4000)}}

	_, err := newIngestion([]domrepo.Connector{c}, store, repository.NewMemoryBlobStore()).
		Run(context.Background(), dayWindow())
	if !errors.Is(err, models.ErrStoreUnavailable) {
		t.Fatalf("got %v, want ErrStoreUnavailable", err)
	}
}
