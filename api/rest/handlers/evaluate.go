package handlers

import (
	"encoding/json"
	"net/http"

	"img2latex-console/core/client"
	"img2latex-console/core/evaluation"
	"img2latex-console/core/models"
)

// EvaluationHandler handles model evaluation requests
type EvaluationHandler struct {
	api    *client.Client
	runner *evaluation.Runner
}

// NewEvaluationHandler creates a new evaluation handler
func NewEvaluationHandler(api *client.Client, runner *evaluation.Runner) *EvaluationHandler {
	return &EvaluationHandler{api: api, runner: runner}
}

// Evaluate handles POST /v1/evaluate. Without pairs in the body the bundled
// sample images are evaluated.
func (h *EvaluationHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req models.EvaluationRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	var (
		report *models.EvaluationReport
		err    error
	)
	if len(req.Pairs) > 0 {
		report, err = h.runner.Evaluate(r.Context(), req.Pairs)
	} else {
		report, err = h.runner.Run(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// ListSamples handles GET /v1/evaluate/samples
func (h *EvaluationHandler) ListSamples(w http.ResponseWriter, r *http.Request) {
	samples, err := h.api.SampleImages(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": samples,
	})
}
