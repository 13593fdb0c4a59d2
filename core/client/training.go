package client

import (
	"context"
	"net/http"

	"img2latex-console/core/models"
)

// SubmitTraining handles POST /api/train
func (c *Client) SubmitTraining(ctx context.Context, cfg models.TrainingConfig) (*models.SubmitResult, error) {
	var out models.SubmitResult
	r := c.request(ctx).SetHeader("Content-Type", "application/json").SetBody(cfg)
	if err := c.send(r, http.MethodPost, "/api/train", "submit training", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTrainingJobs handles GET /api/train
func (c *Client) ListTrainingJobs(ctx context.Context) ([]models.TrainingJob, error) {
	var out []models.TrainingJob
	if err := c.send(c.request(ctx), http.MethodGet, "/api/train", "list training jobs", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetJobStatus handles GET /api/train/{job_id}/status
func (c *Client) GetJobStatus(ctx context.Context, id models.JobID) (*models.TrainingJob, error) {
	var out models.TrainingJob
	r := c.request(ctx).SetPathParam("job_id", id.String())
	if err := c.send(r, http.MethodGet, "/api/train/{job_id}/status", "get job status", &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		out.ID = id
	}
	return &out, nil
}
