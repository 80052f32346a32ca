// Package predictor provides forecast value sources: an HTTP model endpoint
// and a load-shape heuristic used when no trained model is reachable.
package predictor

import (
	"context"
	"fmt"
	"time"

	"github.com/pbtrad/balancing-market/internal/domain/models"
	domrepo "github.com/pbtrad/balancing-market/internal/domain/repository"
	pkghttp "github.com/pbtrad/balancing-market/pkg/http"
)

// HTTPPredictor calls a deployed model's inference endpoint. One request
// carries the whole feature batch; the endpoint returns one prediction per
// feature vector, in order.
type HTTPPredictor struct {
	client    *pkghttp.Client
	url       string
	modelName string
}

// NewHTTPPredictor creates a predictor for the given inference URL.
func NewHTTPPredictor(url, modelName string, timeout time.Duration) *HTTPPredictor {
	return &HTTPPredictor{
		client:    pkghttp.NewClient(pkghttp.WithTimeout(timeout)),
		url:       url,
		modelName: modelName,
	}
}

func (p *HTTPPredictor) Name() string { return p.modelName }

type predictRequest struct {
	Instances []models.FeatureVector `json:"instances"`
}

type predictResponse struct {
	Predictions []float64 `json:"predictions"`
}

func (p *HTTPPredictor) Predict(ctx context.Context, features []models.FeatureVector) ([]float64, error) {
	if len(features) == 0 {
		return nil, nil
	}

	var out predictResponse
	err := p.client.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodPost,
		URL:    p.url,
		Body:   predictRequest{Instances: features},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("model inference: %w", err)
	}

	if len(out.Predictions) != len(features) {
		return nil, fmt.Errorf("model returned %d predictions for %d features",
			len(out.Predictions), len(features))
	}
	return out.Predictions, nil
}

var _ domrepo.Predictor = (*HTTPPredictor)(nil)
