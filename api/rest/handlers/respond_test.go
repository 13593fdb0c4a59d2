package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"img2latex-console/core/client"
	"img2latex-console/core/dataset"
	"img2latex-console/core/monitoring"
	"img2latex-console/core/training"
	"img2latex-console/storage"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{
			name:       "backend detail",
			err:        fmt.Errorf("failed to submit training job: %w", &client.APIError{Op: "submit training", StatusCode: http.StatusBadRequest, Detail: "Need at least 5 pairs to train"}),
			wantStatus: http.StatusBadRequest,
			wantDetail: "Need at least 5 pairs to train",
		},
		{
			name:       "network failure",
			err:        &client.TransportError{Op: "list training jobs", Err: errors.New("connection refused")},
			wantStatus: http.StatusBadGateway,
			wantDetail: "Network error: connection refused",
		},
		{
			name:       "unknown job",
			err:        fmt.Errorf("%w: 9", monitoring.ErrJobNotFound),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unfinished job",
			err:        fmt.Errorf("%w: 9 is RUNNING", storage.ErrJobNotDone),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "empty correction",
			err:        dataset.ErrEmptyLatex,
			wantStatus: http.StatusBadRequest,
			wantDetail: "latex_text must not be empty",
		},
		{
			name:       "small dataset",
			err:        &training.InsufficientDatasetError{Count: 2, Required: 5},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "anything else",
			err:        errors.New("disk full"),
			wantStatus: http.StatusInternalServerError,
			wantDetail: "disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			var body ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Detail == "" {
				t.Fatalf("expected a detail message")
			}
			if tt.wantDetail != "" && body.Detail != tt.wantDetail {
				t.Fatalf("expected detail %q, got %q", tt.wantDetail, body.Detail)
			}
		})
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 20},
		{"limit=5", 5},
		{"limit=0", 1},
		{"limit=500", 50},
		{"limit=abc", 20},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/v1/history?"+tt.query, nil)
			if got := parseLimit(req, 20, 50); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}
