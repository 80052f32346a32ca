package repository

import (
	"context"

	"github.com/pbtrad/balancing-market/internal/domain/models"
)

// Connector polls one external market-data endpoint. Fetch applies its own
// bounded request timeout and performs no retries; failures come back as
// *models.FetchError. Extract parses a successful payload into series
// records, returning per-record parse errors alongside the good rows.
type Connector interface {
	Name() string
	Fetch(ctx context.Context, window models.TimeWindow) ([]byte, error)
	Extract(payload []byte, window models.TimeWindow) ([]models.SeriesRecord, []error)
}

// SeriesStore owns SeriesRecord persistence and enforces the identity-key
// uniqueness invariant. Upserts to an existing key replace the stored row.
type SeriesStore interface {
	Upsert(ctx context.Context, rec models.SeriesRecord) error
	UpsertBatch(ctx context.Context, recs []models.SeriesRecord) error
	Get(ctx context.Context, key models.SeriesKey) (*models.SeriesRecord, error)
	Range(ctx context.Context, seriesType models.SeriesType, marketType models.MarketType, region string, kind models.RecordKind, window models.TimeWindow) ([]models.SeriesRecord, error)
	Recent(ctx context.Context, seriesType models.SeriesType, marketType models.MarketType, kind models.RecordKind, limit int) ([]models.SeriesRecord, error)
	Health(ctx context.Context) error
	Close() error
}

// EvaluationStore persists forecast evaluations, one row per key.
type EvaluationStore interface {
	Upsert(ctx context.Context, rec models.EvaluationRecord) error
	Get(ctx context.Context, key models.EvaluationKey) (*models.EvaluationRecord, error)
}

// BlobStore is a key-value blob collaborator holding raw snapshots and
// training data.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// Predictor is the external model: one numeric value per feature vector,
// stateless and synchronous.
type Predictor interface {
	Name() string
	Predict(ctx context.Context, features []models.FeatureVector) ([]float64, error)
}

// Publisher emits ingested records to a downstream stream.
type Publisher interface {
	PublishActuals(ctx context.Context, recs []models.SeriesRecord) error
	Close() error
}

// JobLauncher submits and polls external training jobs.
type JobLauncher interface {
	Submit(ctx context.Context, spec models.TrainingJobSpec) (string, error)
	Status(ctx context.Context, jobID string) (models.JobStatus, error)
}

// Metrics records operational measurements.
type Metrics interface {
	RecordFetch(source, outcome string)
	RecordRecordsWritten(kind string, n int)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordEvaluation(seriesType, marketType, model string, absError float64)
}

// NopMetrics discards all measurements. Useful in tests.
type NopMetrics struct{}

func (NopMetrics) RecordFetch(string, string)                       {}
func (NopMetrics) RecordRecordsWritten(string, int)                 {}
func (NopMetrics) RecordError(string)                               {}
func (NopMetrics) RecordLatency(string, float64)                    {}
func (NopMetrics) RecordEvaluation(string, string, string, float64) {}
