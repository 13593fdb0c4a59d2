package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"img2latex-console/core/client"
	"img2latex-console/core/dataset"
	"img2latex-console/core/evaluation"
	"img2latex-console/core/monitoring"
	"img2latex-console/core/training"
	"img2latex-console/storage"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Detail   string `json:"detail"`
	Count    *int   `json:"count,omitempty"`
	Required *int   `json:"required,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}

// writeError maps err to a status code and a user-visible detail message
func writeError(w http.ResponseWriter, err error) {
	var insufficient *training.InsufficientDatasetError
	if errors.As(err, &insufficient) {
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Detail:   insufficient.Error(),
			Count:    &insufficient.Count,
			Required: &insufficient.Required,
		})
		return
	}

	switch {
	case errors.Is(err, monitoring.ErrJobNotFound),
		errors.Is(err, storage.ErrUnknownJob),
		errors.Is(err, storage.ErrNoAdapter):
		writeDetail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, client.ErrNotImage),
		errors.Is(err, dataset.ErrEmptyLatex),
		errors.Is(err, evaluation.ErrNoSamples),
		errors.Is(err, storage.ErrAdapterPathRequired):
		writeDetail(w, http.StatusBadRequest, client.Message(err))
	case errors.Is(err, storage.ErrJobNotDone):
		writeDetail(w, http.StatusConflict, err.Error())
	case client.IsTransport(err):
		writeDetail(w, http.StatusBadGateway, client.Message(err))
	case client.StatusCode(err) != 0:
		writeDetail(w, client.StatusCode(err), client.Message(err))
	default:
		writeDetail(w, http.StatusInternalServerError, err.Error())
	}
}

// parseLimit reads ?limit=, falling back to def and clamping to [1, max]
func parseLimit(r *http.Request, def, max int) int {
	limit := def
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		if n, err := strconv.Atoi(limitParam); err == nil {
			limit = n
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > max {
		limit = max
	}
	return limit
}
