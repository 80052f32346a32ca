package models

// Requests for forecast HTTP endpoints. Defined in domain for consistency and reuse.

type TriggerScraperRequest struct {
	From string `query:"from" json:"from"`
	To   string `query:"to" json:"to"`
}

type PredictRequest struct {
	HorizonHours int    `query:"horizon_hours" json:"horizon_hours" default:"24" validate:"gte=1,lte=168"`
	SeriesType   string `query:"series_type" json:"series_type" default:"DEMAND" validate:"oneof=DEMAND PRICE GENERATION IMBALANCE"`
	MarketType   string `query:"market_type" json:"market_type" default:"DAM" validate:"oneof=DAM IDM BM"`
}

type RecentRequest struct {
	SeriesType string `query:"series_type" json:"series_type" default:"DEMAND" validate:"oneof=DEMAND PRICE GENERATION IMBALANCE"`
	MarketType string `query:"market_type" json:"market_type" default:"DAM" validate:"oneof=DAM IDM BM"`
	Kind       string `query:"kind" json:"kind" default:"FORECAST" validate:"oneof=FORECAST ACTUAL"`
	Limit      int    `query:"limit" json:"limit" default:"24" validate:"gte=1,lte=1000"`
}

type EvaluateRequest struct {
	SeriesType   string `query:"series_type" json:"series_type" default:"DEMAND" validate:"oneof=DEMAND PRICE GENERATION IMBALANCE"`
	MarketType   string `query:"market_type" json:"market_type" default:"DAM" validate:"oneof=DAM IDM BM"`
	ForecastTime string `query:"forecast_time" json:"forecast_time" validate:"required"`
	ModelName    string `query:"model_name" json:"model_name"`
}

type SweepRequest struct {
	SeriesType string `query:"series_type" json:"series_type" default:"DEMAND" validate:"oneof=DEMAND PRICE GENERATION IMBALANCE"`
	MarketType string `query:"market_type" json:"market_type" default:"DAM" validate:"oneof=DAM IDM BM"`
	Limit      int    `query:"limit" json:"limit" default:"24" validate:"gte=1,lte=1000"`
}

type UploadDatasetRequest struct {
	DatasetName string `json:"dataset_name" validate:"required"`
	Content     string `json:"content" validate:"required"`
}

type TrainRequest struct {
	JobName       string `json:"job_name" validate:"required"`
	TrainingImage string `json:"training_image" validate:"required"`
	InputDataURI  string `json:"input_data_uri" validate:"required"`
	OutputDataURI string `json:"output_data_uri" validate:"required"`
	MaxRuntimeSec int    `json:"max_runtime_sec" default:"3600" validate:"gte=60,lte=86400"`
}
