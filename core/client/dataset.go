package client

import (
	"context"
	"net/http"
	"strconv"

	"img2latex-console/core/models"
)

// ListPairs handles GET /api/dataset/pairs?limit=N
func (c *Client) ListPairs(ctx context.Context, limit int) (*models.PairsPage, error) {
	var out models.PairsPage
	r := c.request(ctx)
	if limit > 0 {
		r.SetQueryParam("limit", strconv.Itoa(limit))
	}
	if err := c.send(r, http.MethodGet, "/api/dataset/pairs", "list dataset pairs", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CorrectPair handles PUT /api/dataset/pairs/{id}
func (c *Client) CorrectPair(ctx context.Context, id int64, latex string) (*models.DatasetPair, error) {
	var out models.DatasetPair
	r := c.request(ctx).
		SetPathParam("id", strconv.FormatInt(id, 10)).
		SetHeader("Content-Type", "application/json").
		SetBody(models.CorrectPairRequest{LatexText: latex})
	if err := c.send(r, http.MethodPut, "/api/dataset/pairs/{id}", "correct dataset pair", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
