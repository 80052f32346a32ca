package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/pbtrad/balancing-market/internal/domain/models"
	domrepo "github.com/pbtrad/balancing-market/internal/domain/repository"
	applogger "github.com/pbtrad/balancing-market/pkg/logger"
)

// TrainingDataPrefix namespaces uploaded datasets in the blob store.
const TrainingDataPrefix = "training/"

// Training stages datasets, submits model training jobs, and tracks them
// to completion.
type Training struct {
	launcher     domrepo.JobLauncher
	blobs        domrepo.BlobStore
	pollInterval time.Duration
	logger       *applogger.Logger
}

// NewTraining creates the training runner.
func NewTraining(launcher domrepo.JobLauncher, blobs domrepo.BlobStore, pollInterval time.Duration, logger *applogger.Logger) *Training {
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	return &Training{launcher: launcher, blobs: blobs, pollInterval: pollInterval, logger: logger}
}

// UploadDataset stages a training dataset in the blob store under the
// training/ namespace and returns its key.
func (u *Training) UploadDataset(ctx context.Context, name string, data []byte) (string, error) {
	if name == "" {
		return "", fmt.Errorf("dataset name is required")
	}
	if len(data) == 0 {
		return "", fmt.Errorf("dataset %s is empty", name)
	}

	key := TrainingDataPrefix + name
	if err := u.blobs.Put(ctx, key, data); err != nil {
		return "", fmt.Errorf("%w: dataset upload: %v", models.ErrStoreUnavailable, err)
	}
	u.logger.Info("training dataset staged",
		applogger.String("key", key),
		applogger.Int("bytes", len(data)),
	)
	return key, nil
}

// Submit starts a training job and returns its id without waiting.
func (u *Training) Submit(ctx context.Context, spec models.TrainingJobSpec) (string, error) {
	jobID, err := u.launcher.Submit(ctx, spec)
	if err != nil {
		return "", err
	}
	u.logger.Info("training job submitted",
		applogger.String("job_id", jobID),
		applogger.String("job_name", spec.JobName),
	)
	return jobID, nil
}

// Wait polls the job until it reaches a terminal status or ctx is done.
func (u *Training) Wait(ctx context.Context, jobID string) (models.JobStatus, error) {
	ticker := time.NewTicker(u.pollInterval)
	defer ticker.Stop()

	for {
		status, err := u.launcher.Status(ctx, jobID)
		if err != nil {
			return "", err
		}
		if status.Terminal() {
			u.logger.Info("training job finished",
				applogger.String("job_id", jobID),
				applogger.String("status", string(status)),
			)
			return status, nil
		}
		u.logger.Debug("training job in progress",
			applogger.String("job_id", jobID),
			applogger.String("status", string(status)),
		)

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("training wait: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// Run submits a job and blocks until it finishes.
func (u *Training) Run(ctx context.Context, spec models.TrainingJobSpec) (models.JobStatus, error) {
	jobID, err := u.Submit(ctx, spec)
	if err != nil {
		return "", err
	}
	return u.Wait(ctx, jobID)
}
