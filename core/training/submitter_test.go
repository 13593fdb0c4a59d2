package training

import (
	"context"
	"errors"
	"testing"
	"time"

	"img2latex-console/core/models"

	"github.com/sirupsen/logrus/hooks/test"
)

type fakeBackend struct {
	submitted []models.TrainingConfig
	result    *models.SubmitResult
	err       error
	page      *models.PairsPage
}

func (f *fakeBackend) SubmitTraining(ctx context.Context, cfg models.TrainingConfig) (*models.SubmitResult, error) {
	f.submitted = append(f.submitted, cfg)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeBackend) ListPairs(ctx context.Context, limit int) (*models.PairsPage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

func newTestSubmitter(backend Backend) *Submitter {
	logger, _ := test.NewNullLogger()
	s := NewSubmitter(backend, MinDatasetPairs, logger)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*60*60)) }
	return s
}

func TestSubmit(t *testing.T) {
	backend := &fakeBackend{result: &models.SubmitResult{ID: "job-1", Status: models.JobStatusQueued}}
	s := newTestSubmitter(backend)

	cfg := models.TrainingConfig{MaxSteps: 100, LearningRate: 0.0002, BatchSize: 1, GradientAccumulationSteps: 4}
	job, err := s.Submit(context.Background(), cfg, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(backend.submitted) != 1 || backend.submitted[0] != cfg {
		t.Fatalf("expected one submission of %+v, got %+v", cfg, backend.submitted)
	}
	if job.ID != "job-1" || job.Status != models.JobStatusQueued {
		t.Fatalf("unexpected job %+v", job)
	}
	if job.Config != cfg {
		t.Fatalf("expected config to round-trip, got %+v", job.Config)
	}
	if job.Logs == nil || len(job.Logs) != 0 {
		t.Fatalf("expected empty log, got %v", job.Logs)
	}
	want := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	if !job.CreatedAt.Equal(want) || job.CreatedAt.Location() != time.UTC {
		t.Fatalf("expected creation time %v in UTC, got %v", want, job.CreatedAt.Time)
	}
}

func TestSubmit_InsufficientDataset(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"empty dataset", 0},
		{"one short", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{result: &models.SubmitResult{ID: "job-1"}}
			s := newTestSubmitter(backend)

			_, err := s.Submit(context.Background(), models.DefaultTrainingConfig(), tt.size)

			var insufficient *InsufficientDatasetError
			if !errors.As(err, &insufficient) {
				t.Fatalf("expected InsufficientDatasetError, got %v", err)
			}
			if insufficient.Count != tt.size || insufficient.Required != MinDatasetPairs {
				t.Fatalf("unexpected error fields %+v", insufficient)
			}
			if len(backend.submitted) != 0 {
				t.Fatalf("expected no network call, got %d", len(backend.submitted))
			}
		})
	}
}

func TestSubmit_InvalidConfig(t *testing.T) {
	backend := &fakeBackend{result: &models.SubmitResult{ID: "job-1"}}
	s := newTestSubmitter(backend)

	cfg := models.DefaultTrainingConfig()
	cfg.MaxSteps = 0
	if _, err := s.Submit(context.Background(), cfg, 10); err == nil {
		t.Fatalf("expected validation error")
	}
	if len(backend.submitted) != 0 {
		t.Fatalf("expected no network call")
	}
}

func TestSubmit_BackendErrors(t *testing.T) {
	tests := []struct {
		name    string
		backend *fakeBackend
	}{
		{"request fails", &fakeBackend{err: errors.New("connection refused")}},
		{"no job id", &fakeBackend{result: &models.SubmitResult{Status: models.JobStatusQueued}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSubmitter(tt.backend)
			if _, err := s.Submit(context.Background(), models.DefaultTrainingConfig(), 5); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestSubmit_DefaultsStatusToQueued(t *testing.T) {
	s := newTestSubmitter(&fakeBackend{result: &models.SubmitResult{ID: "7"}})

	job, err := s.Submit(context.Background(), models.DefaultTrainingConfig(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Status != models.JobStatusQueued {
		t.Fatalf("expected QUEUED, got %s", job.Status)
	}
}

func TestDatasetSize(t *testing.T) {
	tests := []struct {
		name string
		page *models.PairsPage
		want int
	}{
		{"total reported", &models.PairsPage{Pairs: make([]models.DatasetPair, 3), Total: 120}, 120},
		{"total missing", &models.PairsPage{Pairs: make([]models.DatasetPair, 4)}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSubmitter(&fakeBackend{page: tt.page})
			got, err := s.DatasetSize(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}
