package predictor

import (
	"context"
	"time"

	"github.com/pbtrad/balancing-market/internal/domain/models"
	domrepo "github.com/pbtrad/balancing-market/internal/domain/repository"
)

// HeuristicName identifies fallback forecasts in record sources.
const HeuristicName = "fallback-heuristic"

// baseDemandMW anchors the load shape. The hourly and weekend factors scale
// it into a rough daily demand curve.
const baseDemandMW = 3500.0

// Heuristic produces demand estimates from the hour of day and day of week
// alone. It exists so forecasting degrades instead of stopping when the
// model endpoint is down.
type Heuristic struct{}

// NewHeuristic creates the fallback predictor.
func NewHeuristic() *Heuristic { return &Heuristic{} }

func (h *Heuristic) Name() string { return HeuristicName }

func (h *Heuristic) Predict(_ context.Context, features []models.FeatureVector) ([]float64, error) {
	out := make([]float64, len(features))
	for i, f := range features {
		out[i] = estimateDemand(f)
	}
	return out, nil
}

func estimateDemand(f models.FeatureVector) float64 {
	v := baseDemandMW * hourFactor(f.Hour)
	if f.IsWeekend {
		v *= 0.85
	}
	return v
}

func hourFactor(hour int) float64 {
	switch {
	case hour < 5: // overnight trough
		return 0.7
	case hour < 9: // morning ramp
		return 0.9 + float64(hour-5)*0.1
	case hour < 17:
		return 1.2
	case hour < 21: // evening peak
		return 1.3
	default:
		return 1.0 - float64(hour-21)*0.1
	}
}

// Horizon builds one feature vector per hour boundary, starting at start
// truncated to the hour.
func Horizon(start time.Time, hours int) []models.FeatureVector {
	features := make([]models.FeatureVector, 0, hours)
	base := start.UTC().Truncate(time.Hour)
	for i := 0; i < hours; i++ {
		features = append(features, models.FeaturesForHour(base.Add(time.Duration(i)*time.Hour)))
	}
	return features
}

var _ domrepo.Predictor = (*Heuristic)(nil)
