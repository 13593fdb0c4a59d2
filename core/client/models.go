package client

import (
	"context"
	"net/http"

	"img2latex-console/core/models"
)

// CurrentModel handles GET /api/models/current
func (c *Client) CurrentModel(ctx context.Context) (*models.ModelInfo, error) {
	var out models.ModelInfo
	if err := c.send(c.request(ctx), http.MethodGet, "/api/models/current", "fetch current model", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Adapters handles GET /api/models/adapters
func (c *Client) Adapters(ctx context.Context) ([]models.Adapter, error) {
	var out []models.Adapter
	if err := c.send(c.request(ctx), http.MethodGet, "/api/models/adapters", "fetch adapters", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SwitchModel handles POST /api/models/switch
func (c *Client) SwitchModel(ctx context.Context, adapterPath string) (*models.SwitchResult, error) {
	var out models.SwitchResult
	r := c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.SwitchModelRequest{AdapterPath: adapterPath})
	if err := c.send(r, http.MethodPost, "/api/models/switch", "switch model", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerationSettings handles GET /api/models/settings
func (c *Client) GenerationSettings(ctx context.Context) (*models.GenerationSettings, error) {
	var out models.GenerationSettings
	if err := c.send(c.request(ctx), http.MethodGet, "/api/models/settings", "fetch settings", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateGenerationSettings handles PUT /api/models/settings
func (c *Client) UpdateGenerationSettings(ctx context.Context, s models.GenerationSettings) (*models.GenerationSettings, error) {
	var out models.GenerationSettings
	r := c.request(ctx).SetHeader("Content-Type", "application/json").SetBody(s)
	if err := c.send(r, http.MethodPut, "/api/models/settings", "update settings", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
