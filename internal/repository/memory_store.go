package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/pbtrad/balancing-market/internal/domain/models"
	domrepo "github.com/pbtrad/balancing-market/internal/domain/repository"
)

// MemorySeriesStore is an in-memory SeriesStore for development and tests.
// Upserts to the same key serialize behind one lock; last write wins.
type MemorySeriesStore struct {
	mu   sync.RWMutex
	rows map[models.SeriesKey]models.SeriesRecord
}

// NewMemorySeriesStore creates an empty in-memory series store.
func NewMemorySeriesStore() *MemorySeriesStore {
	return &MemorySeriesStore{rows: make(map[models.SeriesKey]models.SeriesRecord)}
}

func (s *MemorySeriesStore) Upsert(ctx context.Context, rec models.SeriesRecord) error {
	rec.Normalize()
	if err := rec.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.rows[rec.Key()] = rec
	s.mu.Unlock()
	return nil
}

func (s *MemorySeriesStore) UpsertBatch(ctx context.Context, recs []models.SeriesRecord) error {
	for _, rec := range recs {
		if err := s.Upsert(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemorySeriesStore) Get(ctx context.Context, key models.SeriesKey) (*models.SeriesRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.rows[key]; ok {
		return &rec, nil
	}
	return nil, nil
}

func (s *MemorySeriesStore) Range(ctx context.Context, seriesType models.SeriesType, marketType models.MarketType, region string, kind models.RecordKind, window models.TimeWindow) ([]models.SeriesRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.SeriesRecord
	for key, rec := range s.rows {
		if key.SeriesType != seriesType || key.MarketType != marketType || key.Region != region || key.Kind != kind {
			continue
		}
		if !window.Contains(key.Time) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

func (s *MemorySeriesStore) Recent(ctx context.Context, seriesType models.SeriesType, marketType models.MarketType, kind models.RecordKind, limit int) ([]models.SeriesRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.SeriesRecord
	for key, rec := range s.rows {
		if key.SeriesType != seriesType || key.MarketType != marketType || key.Kind != kind {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.After(out[j].Time) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemorySeriesStore) Health(ctx context.Context) error { return nil }

func (s *MemorySeriesStore) Close() error { return nil }

var _ domrepo.SeriesStore = (*MemorySeriesStore)(nil)

// MemoryEvaluationStore is an in-memory EvaluationStore.
type MemoryEvaluationStore struct {
	mu   sync.RWMutex
	rows map[models.EvaluationKey]models.EvaluationRecord
}

// NewMemoryEvaluationStore creates an empty in-memory evaluation store.
func NewMemoryEvaluationStore() *MemoryEvaluationStore {
	return &MemoryEvaluationStore{rows: make(map[models.EvaluationKey]models.EvaluationRecord)}
}

func (s *MemoryEvaluationStore) Upsert(ctx context.Context, rec models.EvaluationRecord) error {
	s.mu.Lock()
	s.rows[rec.Key()] = rec
	s.mu.Unlock()
	return nil
}

func (s *MemoryEvaluationStore) Get(ctx context.Context, key models.EvaluationKey) (*models.EvaluationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.rows[key]; ok {
		return &rec, nil
	}
	return nil, nil
}

// Len reports how many evaluations are stored.
func (s *MemoryEvaluationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

var _ domrepo.EvaluationStore = (*MemoryEvaluationStore)(nil)

// MemoryBlobStore is an in-memory BlobStore.
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryBlobStore creates an empty in-memory blob store.
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

func (s *MemoryBlobStore) Put(ctx context.Context, key string, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	s.mu.Lock()
	s.blobs[key] = cp
	s.mu.Unlock()
	return nil
}

func (s *MemoryBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.blobs[key]; ok {
		return b, nil
	}
	return nil, ErrBlobNotFound
}

func (s *MemoryBlobStore) List(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.blobs {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

var _ domrepo.BlobStore = (*MemoryBlobStore)(nil)
