package training

import (
	"context"
	"fmt"
	"time"

	"img2latex-console/core/models"

	"github.com/sirupsen/logrus"
)

// MinDatasetPairs is the smallest dataset the backend will fine-tune on
const MinDatasetPairs = 5

// datasetCountLimit is the page size used to count dataset pairs
const datasetCountLimit = 100

// Backend is the subset of the API client the submitter needs
type Backend interface {
	SubmitTraining(ctx context.Context, cfg models.TrainingConfig) (*models.SubmitResult, error)
	ListPairs(ctx context.Context, limit int) (*models.PairsPage, error)
}

// InsufficientDatasetError refuses a submission before any network call
type InsufficientDatasetError struct {
	Count    int
	Required int
}

func (e *InsufficientDatasetError) Error() string {
	return fmt.Sprintf("need at least %d image-LaTeX pairs to start training, have %d", e.Required, e.Count)
}

// Submitter creates training jobs
type Submitter struct {
	backend  Backend
	minPairs int
	now      func() time.Time
	logger   logrus.FieldLogger
}

// NewSubmitter creates a submitter requiring at least minPairs dataset pairs
func NewSubmitter(backend Backend, minPairs int, logger logrus.FieldLogger) *Submitter {
	return &Submitter{
		backend:  backend,
		minPairs: minPairs,
		now:      time.Now,
		logger:   logger,
	}
}

// Submit validates the precondition and config, then creates the job.
// The returned job carries cfg unchanged, an empty log and the submission time.
func (s *Submitter) Submit(ctx context.Context, cfg models.TrainingConfig, datasetSize int) (*models.TrainingJob, error) {
	if datasetSize < s.minPairs {
		return nil, &InsufficientDatasetError{Count: datasetSize, Required: s.minPairs}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res, err := s.backend.SubmitTraining(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to submit training job: %w", err)
	}
	if res.ID == "" {
		return nil, fmt.Errorf("failed to submit training job: response carried no job_id")
	}

	status := res.Status
	if status == "" {
		status = models.JobStatusQueued
	}

	job := &models.TrainingJob{
		ID:        res.ID,
		Status:    status,
		Config:    cfg,
		Logs:      []string{},
		CreatedAt: models.NewTimestamp(s.now().UTC()),
	}

	s.logger.WithFields(logrus.Fields{
		"job_id": job.ID,
		"status": job.Status,
	}).Info("Training job submitted")

	return job, nil
}

// DatasetSize fetches the current dataset pair count
func (s *Submitter) DatasetSize(ctx context.Context) (int, error) {
	page, err := s.backend.ListPairs(ctx, datasetCountLimit)
	if err != nil {
		return 0, fmt.Errorf("failed to count dataset pairs: %w", err)
	}
	if page.Total > len(page.Pairs) {
		return page.Total, nil
	}
	return len(page.Pairs), nil
}
