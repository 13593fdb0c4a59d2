package client

import (
	"context"
	"net/http"

	"img2latex-console/core/models"
)

// Evaluate handles POST /api/evaluate
func (c *Client) Evaluate(ctx context.Context, req models.EvaluationRequest) (*models.EvaluationReport, error) {
	var out models.EvaluationReport
	r := c.request(ctx).SetHeader("Content-Type", "application/json").SetBody(req)
	if err := c.send(r, http.MethodPost, "/api/evaluate", "evaluate", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SampleImages handles GET /api/sample-images
func (c *Client) SampleImages(ctx context.Context) ([]models.SampleImage, error) {
	var out struct {
		SampleImages []models.SampleImage `json:"sample_images"`
	}
	if err := c.send(c.request(ctx), http.MethodGet, "/api/sample-images", "fetch sample images", &out); err != nil {
		return nil, err
	}
	return out.SampleImages, nil
}
