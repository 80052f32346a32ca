// Package api exposes the pipeline over HTTP.
package api

import (
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pbtrad/balancing-market/internal/domain/models"
	"github.com/pbtrad/balancing-market/internal/usecase"
	pkghttp "github.com/pbtrad/balancing-market/pkg/http"
	applogger "github.com/pbtrad/balancing-market/pkg/logger"
	"github.com/pbtrad/balancing-market/pkg/util"
)

// ForecastHandler serves the ingestion, forecast, evaluation, and training
// endpoints.
type ForecastHandler struct {
	ingestion *usecase.Ingestion
	forecast  *usecase.Forecast
	evaluator *usecase.Evaluation
	training  *usecase.Training
	logger    *applogger.Logger
}

// NewForecastHandler creates the handler.
func NewForecastHandler(
	ingestion *usecase.Ingestion,
	forecast *usecase.Forecast,
	evaluator *usecase.Evaluation,
	training *usecase.Training,
	logger *applogger.Logger,
) *ForecastHandler {
	return &ForecastHandler{
		ingestion: ingestion,
		forecast:  forecast,
		evaluator: evaluator,
		training:  training,
		logger:    logger,
	}
}

// RegisterRoutes registers the forecast API routes.
func (h *ForecastHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/forecast")
	g.POST("/trigger_scraper", h.TriggerScraper)
	g.POST("/predict", h.Predict)
	g.GET("/recent", h.Recent)
	g.POST("/evaluate", h.Evaluate)
	g.POST("/evaluate/sweep", h.Sweep)
	g.POST("/train", h.Train)
	g.POST("/train/upload", h.UploadDataset)
}

// TriggerScraper runs one ingestion pass. Defaults to today's UTC day window.
func (h *ForecastHandler) TriggerScraper(c echo.Context) error {
	req := new(models.TriggerScraperRequest)
	if verrs := pkghttp.ReadAndValidateRequest(c, req); verrs != nil {
		return pkghttp.BadRequestResponse(c, verrs)
	}

	from, to := util.DayWindow(time.Now())
	window := models.TimeWindow{
		From: util.ParseTimeDefault(req.From, from),
		To:   util.ParseTimeDefault(req.To, to),
	}
	if !window.From.Before(window.To) {
		return pkghttp.AppErrorResponse(c, pkghttp.BadRequestError("from must be before to"))
	}

	report, err := h.ingestion.Run(c.Request().Context(), window)
	if err != nil {
		return h.pipelineError(c, err)
	}
	return pkghttp.SuccessResponse(c, report)
}

// Predict generates and persists a forecast horizon.
func (h *ForecastHandler) Predict(c echo.Context) error {
	req := new(models.PredictRequest)
	if verrs := pkghttp.ReadAndValidateRequest(c, req); verrs != nil {
		return pkghttp.BadRequestResponse(c, verrs)
	}

	records, err := h.forecast.Generate(c.Request().Context(),
		models.SeriesType(req.SeriesType), models.MarketType(req.MarketType), req.HorizonHours)
	if err != nil {
		return h.pipelineError(c, err)
	}
	return pkghttp.ListResponse(c, records, int64(len(records)))
}

// Recent returns the latest stored records of a series, newest first.
func (h *ForecastHandler) Recent(c echo.Context) error {
	req := new(models.RecentRequest)
	if verrs := pkghttp.ReadAndValidateRequest(c, req); verrs != nil {
		return pkghttp.BadRequestResponse(c, verrs)
	}

	records, err := h.forecast.Recent(c.Request().Context(),
		models.SeriesType(req.SeriesType), models.MarketType(req.MarketType),
		models.RecordKind(req.Kind), req.Limit)
	if err != nil {
		return h.pipelineError(c, err)
	}
	return pkghttp.ListResponse(c, records, int64(len(records)))
}

// Evaluate scores one forecast against its actual. 404 when either side is
// still missing.
func (h *ForecastHandler) Evaluate(c echo.Context) error {
	req := new(models.EvaluateRequest)
	if verrs := pkghttp.ReadAndValidateRequest(c, req); verrs != nil {
		return pkghttp.BadRequestResponse(c, verrs)
	}

	forecastTime, ok := util.ParseTime(req.ForecastTime)
	if !ok {
		return pkghttp.AppErrorResponse(c, pkghttp.BadRequestError("invalid forecast_time"))
	}

	rec, err := h.evaluator.Evaluate(c.Request().Context(),
		models.SeriesType(req.SeriesType), models.MarketType(req.MarketType), forecastTime, req.ModelName)
	if err != nil {
		return h.pipelineError(c, err)
	}
	if rec == nil {
		return pkghttp.AppErrorResponse(c, pkghttp.NotFoundError("forecast or actual not yet available"))
	}
	return pkghttp.SuccessResponse(c, rec)
}

// Sweep evaluates the latest actuals of a series against their forecasts.
func (h *ForecastHandler) Sweep(c echo.Context) error {
	req := new(models.SweepRequest)
	if verrs := pkghttp.ReadAndValidateRequest(c, req); verrs != nil {
		return pkghttp.BadRequestResponse(c, verrs)
	}

	n, err := h.evaluator.SweepRecent(c.Request().Context(),
		models.SeriesType(req.SeriesType), models.MarketType(req.MarketType), req.Limit)
	if err != nil {
		return h.pipelineError(c, err)
	}
	return pkghttp.SuccessResponse(c, map[string]int{"evaluated": n})
}

// UploadDataset stages a training dataset in the blob store.
func (h *ForecastHandler) UploadDataset(c echo.Context) error {
	req := new(models.UploadDatasetRequest)
	if verrs := pkghttp.ReadAndValidateRequest(c, req); verrs != nil {
		return pkghttp.BadRequestResponse(c, verrs)
	}

	key, err := h.training.UploadDataset(c.Request().Context(), req.DatasetName, []byte(req.Content))
	if err != nil {
		return h.pipelineError(c, err)
	}
	return pkghttp.SuccessResponse(c, map[string]string{"key": key})
}

// Train submits a training job and waits for it to finish.
func (h *ForecastHandler) Train(c echo.Context) error {
	req := new(models.TrainRequest)
	if verrs := pkghttp.ReadAndValidateRequest(c, req); verrs != nil {
		return pkghttp.BadRequestResponse(c, verrs)
	}

	status, err := h.training.Run(c.Request().Context(), models.TrainingJobSpec{
		JobName:       req.JobName,
		TrainingImage: req.TrainingImage,
		InputDataURI:  req.InputDataURI,
		OutputDataURI: req.OutputDataURI,
		MaxRuntimeSec: req.MaxRuntimeSec,
	})
	if err != nil {
		h.logger.Error("training run failed", applogger.Error(err))
		return pkghttp.AppErrorResponse(c, pkghttp.InternalError("training job failed").WithError(err))
	}
	return pkghttp.SuccessResponse(c, map[string]string{"status": string(status)})
}

func (h *ForecastHandler) pipelineError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, models.ErrStoreUnavailable):
		h.logger.Error("store unavailable", applogger.Error(err))
		return pkghttp.AppErrorResponse(c, pkghttp.UnavailableError("time-series store unavailable").WithError(err))
	case errors.Is(err, models.ErrPredictionUnavailable):
		h.logger.Error("prediction unavailable", applogger.Error(err))
		return pkghttp.AppErrorResponse(c, pkghttp.UnavailableError("prediction service unavailable").WithError(err))
	default:
		h.logger.Error("request failed", applogger.Error(err))
		return pkghttp.AppErrorResponse(c, err)
	}
}
