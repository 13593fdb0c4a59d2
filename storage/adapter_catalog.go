package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"img2latex-console/core/models"

	"github.com/sirupsen/logrus"
)

var (
	// ErrNoAdapter is returned when no adapter is available
	ErrNoAdapter           = errors.New("no adapter available")
	ErrAdapterPathRequired = errors.New("adapter_path is required")
	ErrUnknownJob          = errors.New("training job not found")
	ErrJobNotDone          = errors.New("training job has not finished")
)

// ModelBackend is the subset of the API client the catalog needs
type ModelBackend interface {
	Adapters(ctx context.Context) ([]models.Adapter, error)
	SwitchModel(ctx context.Context, adapterPath string) (*models.SwitchResult, error)
}

// JobSource exposes the known training jobs
type JobSource interface {
	Job(id models.JobID) (*models.TrainingJob, bool)
	Jobs() []models.TrainingJob
}

// ArtifactLister lists locally recorded artifacts
type ArtifactLister interface {
	ListArtifacts(ctx context.Context, jobID *models.JobID, artifactType *models.ArtifactType) ([]models.JobArtifact, error)
}

// AdapterCatalog lists the adapters a user can switch the model to
type AdapterCatalog struct {
	backend   ModelBackend
	jobs      JobSource
	artifacts ArtifactLister
	logger    logrus.FieldLogger
}

// NewAdapterCatalog creates a catalog. artifacts may be nil when no local
// store is configured.
func NewAdapterCatalog(backend ModelBackend, jobs JobSource, artifacts ArtifactLister, logger logrus.FieldLogger) *AdapterCatalog {
	return &AdapterCatalog{
		backend:   backend,
		jobs:      jobs,
		artifacts: artifacts,
		logger:    logger,
	}
}

// List merges the backend's adapters with the outputs of finished jobs,
// newest first, one entry per path
func (c *AdapterCatalog) List(ctx context.Context) ([]models.Adapter, error) {
	remote, err := c.backend.Adapters(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch adapters: %w", err)
	}

	byPath := make(map[string]models.Adapter)
	add := func(a models.Adapter) {
		if a.Path == "" {
			return
		}
		if existing, ok := byPath[a.Path]; ok && !a.CreatedAt.After(existing.CreatedAt.Time) {
			return
		}
		byPath[a.Path] = a
	}

	for _, a := range remote {
		add(a)
	}
	for _, job := range c.jobs.Jobs() {
		if job.Status != models.JobStatusDone || job.ArtifactsPath == nil {
			continue
		}
		add(adapterFromJob(&job))
	}
	if c.artifacts != nil {
		adapterType := models.ArtifactTypeAdapter
		recorded, err := c.artifacts.ListArtifacts(ctx, nil, &adapterType)
		if err != nil {
			c.logger.WithError(err).Warn("Failed to list recorded adapters")
		}
		for _, art := range recorded {
			add(models.Adapter{JobID: art.JobID, Path: art.URI, CreatedAt: models.NewTimestamp(art.CreatedAt)})
		}
	}

	adapters := make([]models.Adapter, 0, len(byPath))
	for _, a := range byPath {
		adapters = append(adapters, a)
	}
	sort.Slice(adapters, func(i, j int) bool {
		if adapters[i].CreatedAt.Equal(adapters[j].CreatedAt.Time) {
			return adapters[i].Path < adapters[j].Path
		}
		return adapters[i].CreatedAt.After(adapters[j].CreatedAt.Time)
	})
	return adapters, nil
}

// Latest returns the newest adapter
func (c *AdapterCatalog) Latest(ctx context.Context) (*models.Adapter, error) {
	adapters, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(adapters) == 0 {
		return nil, ErrNoAdapter
	}
	return &adapters[0], nil
}

// Switch points the serving model at adapterPath
func (c *AdapterCatalog) Switch(ctx context.Context, adapterPath string) (*models.SwitchResult, error) {
	if adapterPath == "" {
		return nil, ErrAdapterPathRequired
	}
	res, err := c.backend.SwitchModel(ctx, adapterPath)
	if err != nil {
		return nil, fmt.Errorf("failed to switch model: %w", err)
	}
	c.logger.WithField("adapter_path", adapterPath).Info("Model switched")
	return res, nil
}

// SwitchToJob switches to the adapter produced by a finished job
func (c *AdapterCatalog) SwitchToJob(ctx context.Context, id models.JobID) (*models.SwitchResult, error) {
	job, ok := c.jobs.Job(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, id)
	}
	if job.Status != models.JobStatusDone {
		return nil, fmt.Errorf("%w: %s is %s", ErrJobNotDone, id, job.Status)
	}
	if job.ArtifactsPath == nil || *job.ArtifactsPath == "" {
		return nil, fmt.Errorf("training job %s: %w", id, ErrNoAdapter)
	}
	return c.Switch(ctx, *job.ArtifactsPath)
}

func adapterFromJob(job *models.TrainingJob) models.Adapter {
	created := job.CreatedAt
	if job.UpdatedAt != nil && !job.UpdatedAt.IsZero() {
		created = *job.UpdatedAt
	}
	return models.Adapter{
		JobID: job.ID,
		Path:  *job.ArtifactsPath,
		Config: map[string]any{
			"max_steps":                   job.Config.MaxSteps,
			"learning_rate":               job.Config.LearningRate,
			"batch_size":                  job.Config.BatchSize,
			"gradient_accumulation_steps": job.Config.GradientAccumulationSteps,
		},
		CreatedAt: created,
	}
}
