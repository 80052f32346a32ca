// Package usecase wires the domain operations: ingestion runs, forecast
// generation, forecast evaluation, and training orchestration.
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pbtrad/balancing-market/internal/domain/models"
	domrepo "github.com/pbtrad/balancing-market/internal/domain/repository"
	applogger "github.com/pbtrad/balancing-market/pkg/logger"
)

// Ingestion coordinates one ingestion run: fan out to every configured
// connector, snapshot the raw responses, then extract and upsert records.
// Endpoint failures are contained per slot; only a store outage fails the run.
type Ingestion struct {
	connectors []domrepo.Connector
	store      domrepo.SeriesStore
	blobs      domrepo.BlobStore
	publisher  domrepo.Publisher // optional
	metrics    domrepo.Metrics
	logger     *applogger.Logger
}

// NewIngestion creates the ingestion coordinator. publisher may be nil when
// the actuals stream is disabled.
func NewIngestion(
	connectors []domrepo.Connector,
	store domrepo.SeriesStore,
	blobs domrepo.BlobStore,
	publisher domrepo.Publisher,
	metrics domrepo.Metrics,
	logger *applogger.Logger,
) *Ingestion {
	return &Ingestion{
		connectors: connectors,
		store:      store,
		blobs:      blobs,
		publisher:  publisher,
		metrics:    metrics,
		logger:     logger,
	}
}

type fetchResult struct {
	name    string
	payload []byte
	err     *models.FetchError
}

// Run executes one ingestion pass over window. The returned report lists
// per-endpoint outcomes; it is non-nil whenever the error is nil.
func (u *Ingestion) Run(ctx context.Context, window models.TimeWindow) (*models.IngestionReport, error) {
	start := time.Now()
	results := make([]fetchResult, len(u.connectors))

	var wg sync.WaitGroup
	for i, c := range u.connectors {
		wg.Add(1)
		go func(slot int, conn domrepo.Connector) {
			defer wg.Done()
			payload, err := conn.Fetch(ctx, window)
			res := fetchResult{name: conn.Name(), payload: payload}
			if err != nil {
				var fe *models.FetchError
				if !errors.As(err, &fe) {
					fe = models.NewMalformedError(err)
				}
				res.err = fe
			}
			results[slot] = res
		}(i, c)
	}
	wg.Wait()

	snapshot := models.NewRawSnapshot(time.Now())
	report := &models.IngestionReport{
		Failed: make(map[string]*models.FetchError),
	}

	for _, res := range results {
		if res.err != nil {
			snapshot.Sources[res.name] = models.SourceResult{Error: res.err.Error()}
			report.Failed[res.name] = res.err
			u.metrics.RecordFetch(res.name, "failure")
			u.metrics.RecordError(string(res.err.Kind))
			u.logger.Warn("source fetch failed",
				applogger.String("source", res.name),
				applogger.String("kind", string(res.err.Kind)),
				applogger.Error(res.err),
			)
			continue
		}
		snapshot.Sources[res.name] = models.SourceResult{Payload: res.payload}
		report.Succeeded = append(report.Succeeded, res.name)
		u.metrics.RecordFetch(res.name, "success")
	}

	// The raw snapshot is written before any derived record so replay can
	// always reconstruct what this run saw.
	blob, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := u.blobs.Put(ctx, snapshot.BlobKey(), blob); err != nil {
		return nil, fmt.Errorf("%w: snapshot write: %v", models.ErrStoreUnavailable, err)
	}
	report.SnapshotKey = snapshot.BlobKey()

	var written []models.SeriesRecord
	for i, res := range results {
		if res.err != nil {
			continue
		}
		records, parseErrs := u.connectors[i].Extract(res.payload, window)
		for _, perr := range parseErrs {
			u.metrics.RecordError("parse")
			u.logger.Warn("record parse skipped",
				applogger.String("source", res.name),
				applogger.Error(perr),
			)
		}
		if len(records) == 0 {
			continue
		}
		if err := u.store.UpsertBatch(ctx, records); err != nil {
			return nil, err
		}
		written = append(written, records...)
	}

	report.RecordsWritten = len(written)
	u.metrics.RecordRecordsWritten(string(models.KindActual), len(written))
	u.metrics.RecordLatency("ingestion_run", time.Since(start).Seconds())

	if u.publisher != nil && len(written) > 0 {
		// Best effort: a stream outage must not fail a run that persisted.
		if err := u.publisher.PublishActuals(ctx, written); err != nil {
			u.metrics.RecordError("publish")
			u.logger.Error("actuals publish failed", applogger.Error(err))
		}
	}

	u.logger.Info("ingestion run complete",
		applogger.Int("sources_ok", len(report.Succeeded)),
		applogger.Int("sources_failed", len(report.Failed)),
		applogger.Int("records_written", report.RecordsWritten),
		applogger.String("snapshot_key", report.SnapshotKey),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return report, nil
}
