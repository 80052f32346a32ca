package models

import (
	"fmt"
	"strings"
	"time"
)

// SeriesType categorizes the measured or forecast quantity.
type SeriesType string

const (
	SeriesDemand     SeriesType = "DEMAND"
	SeriesPrice      SeriesType = "PRICE"
	SeriesGeneration SeriesType = "GENERATION"
	SeriesImbalance  SeriesType = "IMBALANCE"
)

// MarketType classifies the trading window.
type MarketType string

const (
	MarketDayAhead  MarketType = "DAM"
	MarketIntraday  MarketType = "IDM"
	MarketBalancing MarketType = "BM"
)

// RecordKind tags a SeriesRecord as a forecast or an observed actual.
type RecordKind string

const (
	KindForecast RecordKind = "FORECAST"
	KindActual   RecordKind = "ACTUAL"
)

// DefaultRegion is used when a source does not scope values to a region.
const DefaultRegion = "ALL"

// SeriesKey is the identity of a SeriesRecord. Upserts with an equal key
// replace rather than duplicate.
type SeriesKey struct {
	SeriesType SeriesType
	MarketType MarketType
	Region     string
	Time       time.Time
	Kind       RecordKind
}

func (k SeriesKey) String() string {
	return fmt.Sprintf("%s/%s/%s/%s/%s",
		k.SeriesType, k.MarketType, k.Region, k.Time.UTC().Format(time.RFC3339), k.Kind)
}

// SeriesRecord is one forecast or actual value for an instant.
// Time is the instant the value applies to; CreatedAt is audit-only.
type SeriesRecord struct {
	SeriesType SeriesType `json:"series_type"`
	MarketType MarketType `json:"market_type"`
	Region     string     `json:"region"`
	Time       time.Time  `json:"time"`
	Kind       RecordKind `json:"kind"`
	Value      float64    `json:"value"`
	Source     string     `json:"source"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Key returns the identity key of the record.
func (r SeriesRecord) Key() SeriesKey {
	return SeriesKey{
		SeriesType: r.SeriesType,
		MarketType: r.MarketType,
		Region:     r.Region,
		Time:       r.Time.UTC().Truncate(time.Second),
		Kind:       r.Kind,
	}
}

// Normalize fills defaults and canonicalizes times.
func (r *SeriesRecord) Normalize() {
	if r.Region == "" {
		r.Region = DefaultRegion
	}
	r.Time = r.Time.UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
}

// Validate rejects records without a complete identity.
func (r SeriesRecord) Validate() error {
	if _, err := ParseSeriesType(string(r.SeriesType)); err != nil {
		return err
	}
	if _, err := ParseMarketType(string(r.MarketType)); err != nil {
		return err
	}
	if r.Kind != KindForecast && r.Kind != KindActual {
		return fmt.Errorf("invalid record kind '%s'", r.Kind)
	}
	if r.Time.IsZero() {
		return fmt.Errorf("record time is required")
	}
	if r.Source == "" {
		return fmt.Errorf("record source is required")
	}
	return nil
}

// TimeWindow is a half-open interval [From, To).
type TimeWindow struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the window.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

// ParseSeriesType parses a series type, case-insensitive.
func ParseSeriesType(s string) (SeriesType, error) {
	switch SeriesType(strings.ToUpper(s)) {
	case SeriesDemand:
		return SeriesDemand, nil
	case SeriesPrice:
		return SeriesPrice, nil
	case SeriesGeneration:
		return SeriesGeneration, nil
	case SeriesImbalance:
		return SeriesImbalance, nil
	default:
		return "", fmt.Errorf("invalid series type '%s'", s)
	}
}

// ParseMarketType parses a market type, case-insensitive.
func ParseMarketType(s string) (MarketType, error) {
	switch MarketType(strings.ToUpper(s)) {
	case MarketDayAhead:
		return MarketDayAhead, nil
	case MarketIntraday:
		return MarketIntraday, nil
	case MarketBalancing:
		return MarketBalancing, nil
	default:
		return "", fmt.Errorf("invalid market type '%s'", s)
	}
}

// ParseRecordKind parses a record kind, case-insensitive.
func ParseRecordKind(s string) (RecordKind, error) {
	switch RecordKind(strings.ToUpper(s)) {
	case KindForecast:
		return KindForecast, nil
	case KindActual:
		return KindActual, nil
	default:
		return "", fmt.Errorf("invalid record kind '%s'", s)
	}
}
