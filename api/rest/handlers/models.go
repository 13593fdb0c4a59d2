package handlers

import (
	"encoding/json"
	"net/http"

	"img2latex-console/core/client"
	"img2latex-console/core/models"
	"img2latex-console/storage"
)

// ModelHandler handles serving model requests
type ModelHandler struct {
	api     *client.Client
	catalog *storage.AdapterCatalog
}

// NewModelHandler creates a new model handler
func NewModelHandler(api *client.Client, catalog *storage.AdapterCatalog) *ModelHandler {
	return &ModelHandler{api: api, catalog: catalog}
}

// SwitchRequest selects an adapter either by path or by the job that produced it
type SwitchRequest struct {
	AdapterPath string       `json:"adapter_path,omitempty"`
	JobID       models.JobID `json:"job_id,omitempty"`
}

// GetCurrentModel handles GET /v1/models/current
func (h *ModelHandler) GetCurrentModel(w http.ResponseWriter, r *http.Request) {
	info, err := h.api.CurrentModel(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// ListAdapters handles GET /v1/models/adapters
func (h *ModelHandler) ListAdapters(w http.ResponseWriter, r *http.Request) {
	adapters, err := h.catalog.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": adapters,
	})
}

// SwitchModel handles POST /v1/models/switch
func (h *ModelHandler) SwitchModel(w http.ResponseWriter, r *http.Request) {
	var req SwitchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var (
		res *models.SwitchResult
		err error
	)
	if req.JobID != "" && req.AdapterPath == "" {
		res, err = h.catalog.SwitchToJob(r.Context(), req.JobID)
	} else {
		res, err = h.catalog.Switch(r.Context(), req.AdapterPath)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GetSettings handles GET /v1/models/settings
func (h *ModelHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.api.GenerationSettings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// UpdateSettings handles PUT /v1/models/settings
func (h *ModelHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	settings := models.DefaultGenerationSettings()
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.api.UpdateGenerationSettings(r.Context(), settings)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
