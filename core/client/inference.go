package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"img2latex-console/core/models"
)

// ImageContentType sniffs data and returns its MIME type, or ErrNotImage
func ImageContentType(data []byte) (string, error) {
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrNotImage, contentType)
	}
	return contentType, nil
}

// Infer handles POST /api/infer with the image as multipart field "image"
func (c *Client) Infer(ctx context.Context, filename string, image io.Reader) (*models.InferenceResult, error) {
	data, err := io.ReadAll(image)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	contentType, err := ImageContentType(data)
	if err != nil {
		return nil, err
	}

	var out models.InferenceResult
	r := c.request(ctx).SetMultipartField("image", filepath.Base(filename), contentType, bytes.NewReader(data))
	if err := c.send(r, http.MethodPost, "/api/infer", "infer", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// History handles GET /api/history?limit=N
func (c *Client) History(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	var out []models.HistoryEntry
	r := c.request(ctx)
	if limit > 0 {
		r.SetQueryParam("limit", strconv.Itoa(limit))
	}
	if err := c.send(r, http.MethodGet, "/api/history", "fetch history", &out); err != nil {
		return nil, err
	}
	return out, nil
}
