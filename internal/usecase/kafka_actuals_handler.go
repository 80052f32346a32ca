package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pbtrad/balancing-market/internal/domain/models"
	applogger "github.com/pbtrad/balancing-market/pkg/logger"
)

// ActualsHandler consumes ingested actuals off the stream and triggers
// evaluation of the matching forecast as each observation arrives.
type ActualsHandler struct {
	topic     string
	evaluator *Evaluation
	logger    *applogger.Logger
}

// NewActualsHandler creates the stream handler for the given topic.
func NewActualsHandler(topic string, evaluator *Evaluation, logger *applogger.Logger) *ActualsHandler {
	return &ActualsHandler{topic: topic, evaluator: evaluator, logger: logger}
}

// Topic returns the topic this handler consumes.
func (h *ActualsHandler) Topic() string { return h.topic }

// Handle decodes one actual record and evaluates its forecast. Malformed
// messages are dropped; store failures are returned for retry.
func (h *ActualsHandler) Handle(ctx context.Context, value []byte) error {
	var rec models.SeriesRecord
	if err := json.Unmarshal(value, &rec); err != nil {
		h.logger.Warn("actuals message dropped", applogger.Error(err))
		return nil
	}
	if rec.Kind != models.KindActual {
		return nil
	}
	if err := rec.Validate(); err != nil {
		h.logger.Warn("actuals message invalid", applogger.Error(err))
		return nil
	}

	if _, err := h.evaluator.Evaluate(ctx, rec.SeriesType, rec.MarketType, rec.Time, ""); err != nil {
		return fmt.Errorf("evaluate actual %s: %w", rec.Key(), err)
	}
	return nil
}
