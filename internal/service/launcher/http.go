// Package launcher talks to the external training-job service.
package launcher

import (
	"context"
	"fmt"
	"time"

	"github.com/pbtrad/balancing-market/internal/domain/models"
	domrepo "github.com/pbtrad/balancing-market/internal/domain/repository"
	pkghttp "github.com/pbtrad/balancing-market/pkg/http"
)

// HTTPLauncher submits training jobs over HTTP and polls their status.
type HTTPLauncher struct {
	client  *pkghttp.Client
	baseURL string
}

// NewHTTPLauncher creates a launcher for the given base URL.
func NewHTTPLauncher(baseURL string, timeout time.Duration) *HTTPLauncher {
	return &HTTPLauncher{
		client:  pkghttp.NewClient(pkghttp.WithTimeout(timeout)),
		baseURL: baseURL,
	}
}

type submitResponse struct {
	JobID string `json:"job_id"`
}

type statusResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

func (l *HTTPLauncher) Submit(ctx context.Context, spec models.TrainingJobSpec) (string, error) {
	var out submitResponse
	err := l.client.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodPost,
		URL:    l.baseURL + "/jobs",
		Body:   spec,
	}, &out)
	if err != nil {
		return "", fmt.Errorf("submit training job: %w", err)
	}
	if out.JobID == "" {
		return "", fmt.Errorf("launcher returned empty job id")
	}
	return out.JobID, nil
}

func (l *HTTPLauncher) Status(ctx context.Context, jobID string) (models.JobStatus, error) {
	var out statusResponse
	err := l.client.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    l.baseURL + "/jobs/" + jobID,
	}, &out)
	if err != nil {
		return "", fmt.Errorf("training job status: %w", err)
	}
	return models.JobStatus(out.Status), nil
}

var _ domrepo.JobLauncher = (*HTTPLauncher)(nil)
