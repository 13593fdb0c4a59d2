package handlers

import (
	"net/http"
	"time"

	"img2latex-console/core/client"
	"img2latex-console/core/history"
)

const maxUploadSize = 32 << 20

// InferenceHandler handles image recognition and history requests
type InferenceHandler struct {
	api *client.Client
	now func() time.Time
}

// NewInferenceHandler creates a new inference handler
func NewInferenceHandler(api *client.Client) *InferenceHandler {
	return &InferenceHandler{api: api, now: time.Now}
}

// Infer handles POST /v1/infer
func (h *InferenceHandler) Infer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Missing image field")
		return
	}
	defer file.Close()

	result, err := h.api.Infer(r.Context(), header.Filename, file)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GetHistory handles GET /v1/history
func (h *InferenceHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.api.History(r.Context(), parseLimit(r, 20, 50))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": history.Annotate(entries, h.now()),
	})
}
