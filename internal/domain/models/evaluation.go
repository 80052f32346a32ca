package models

import (
	"fmt"
	"time"
)

// EvaluationKey identifies one forecast-vs-actual evaluation. At most one
// EvaluationRecord exists per key; re-evaluation overwrites.
type EvaluationKey struct {
	SeriesType   SeriesType
	MarketType   MarketType
	ModelName    string
	ForecastTime time.Time
}

func (k EvaluationKey) String() string {
	return fmt.Sprintf("%s/%s/%s/%s",
		k.SeriesType, k.MarketType, k.ModelName, k.ForecastTime.UTC().Format(time.RFC3339))
}

// EvaluationRecord scores one forecast against its observed actual.
//
// Error is |actual - forecast|. MAE and RMSE are the single-sample values,
// both equal to Error; aggregate RMSE over many evaluations is a reporting
// concern, computed as sqrt(mean(error^2)) at query time.
type EvaluationRecord struct {
	SeriesType    SeriesType `json:"series_type"`
	MarketType    MarketType `json:"market_type"`
	ModelName     string     `json:"model_name"`
	ForecastTime  time.Time  `json:"forecast_time"`
	ActualValue   float64    `json:"actual_value"`
	ForecastValue float64    `json:"forecast_value"`
	Error         float64    `json:"error"`
	MAE           float64    `json:"mae"`
	RMSE          float64    `json:"rmse"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Key returns the identity key of the evaluation.
func (e EvaluationRecord) Key() EvaluationKey {
	return EvaluationKey{
		SeriesType:   e.SeriesType,
		MarketType:   e.MarketType,
		ModelName:    e.ModelName,
		ForecastTime: e.ForecastTime.UTC().Truncate(time.Second),
	}
}

// NewEvaluation builds an EvaluationRecord from a matched forecast/actual pair.
func NewEvaluation(forecast, actual SeriesRecord, modelName string) EvaluationRecord {
	err := actual.Value - forecast.Value
	if err < 0 {
		err = -err
	}
	return EvaluationRecord{
		SeriesType:    forecast.SeriesType,
		MarketType:    forecast.MarketType,
		ModelName:     modelName,
		ForecastTime:  forecast.Time.UTC(),
		ActualValue:   actual.Value,
		ForecastValue: forecast.Value,
		Error:         err,
		MAE:           err,
		RMSE:          err,
		CreatedAt:     time.Now().UTC(),
	}
}
