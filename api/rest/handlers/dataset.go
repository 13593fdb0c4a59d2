package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"img2latex-console/core/client"
	"img2latex-console/core/dataset"
	"img2latex-console/core/models"

	"github.com/gorilla/mux"
)

// DatasetHandler handles dataset pair requests
type DatasetHandler struct {
	api *client.Client
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(api *client.Client) *DatasetHandler {
	return &DatasetHandler{api: api}
}

// ListPairs handles GET /v1/dataset/pairs
func (h *DatasetHandler) ListPairs(w http.ResponseWriter, r *http.Request) {
	page, err := h.api.ListPairs(r.Context(), parseLimit(r, 50, 100))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// CorrectPair handles PUT /v1/dataset/pairs/{id}
func (h *DatasetHandler) CorrectPair(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid pair id")
		return
	}

	var req models.CorrectPairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	pair, err := dataset.Correct(r.Context(), h.api, id, req.LatexText)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

// ExportPairs handles GET /v1/dataset/export
func (h *DatasetHandler) ExportPairs(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = dataset.FormatCSV
	}
	if format != dataset.FormatCSV && format != dataset.FormatJSONL {
		writeDetail(w, http.StatusBadRequest, fmt.Sprintf("Unsupported export format %q", format))
		return
	}

	page, err := h.api.ListPairs(r.Context(), 100)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", dataset.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=dataset.%s", format))
	dataset.Export(w, page.Pairs, format)
}
