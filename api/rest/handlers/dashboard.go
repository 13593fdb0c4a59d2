package handlers

import (
	"net/http"
	"time"

	"img2latex-console/core/client"
	"img2latex-console/core/models"
	"img2latex-console/core/monitoring"

	"github.com/sirupsen/logrus"
)

// DashboardHandler handles dashboard API requests
type DashboardHandler struct {
	tracker *monitoring.Tracker
	api     *client.Client
	logger  logrus.FieldLogger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(tracker *monitoring.Tracker, api *client.Client, logger logrus.FieldLogger) *DashboardHandler {
	return &DashboardHandler{
		tracker: tracker,
		api:     api,
		logger:  logger,
	}
}

// Summary is the overview shown on the console's landing page
type Summary struct {
	JobsByStatus map[models.JobStatus]int `json:"jobs_by_status"`
	TotalJobs    int                      `json:"total_jobs"`
	ActiveJob    *models.TrainingJob      `json:"active_job,omitempty"`
	Polling      bool                     `json:"polling"`
	DatasetPairs *int                     `json:"dataset_pairs,omitempty"`
	CurrentModel *models.ModelInfo        `json:"current_model,omitempty"`
}

// GetSummary handles GET /v1/dashboard. Jobs may be filtered by creation time
// with start_date and end_date (RFC3339); backend failures leave their field out.
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	var start, end time.Time
	if startDate := r.URL.Query().Get("start_date"); startDate != "" {
		var err error
		start, err = time.Parse(time.RFC3339, startDate)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid start_date format")
			return
		}
	}
	if endDate := r.URL.Query().Get("end_date"); endDate != "" {
		var err error
		end, err = time.Parse(time.RFC3339, endDate)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid end_date format")
			return
		}
	}

	summary := Summary{
		JobsByStatus: map[models.JobStatus]int{},
		Polling:      h.tracker.Polling(),
	}
	for _, job := range h.tracker.Jobs() {
		if !start.IsZero() && job.CreatedAt.Before(start) {
			continue
		}
		if !end.IsZero() && job.CreatedAt.After(end) {
			continue
		}
		summary.JobsByStatus[job.Status]++
		summary.TotalJobs++
	}

	if active := h.tracker.Active(); active != nil {
		active.Logs = []string{}
		summary.ActiveJob = active
	}

	if page, err := h.api.ListPairs(r.Context(), 100); err != nil {
		h.logger.WithError(err).Warn("Dashboard could not count dataset pairs")
	} else {
		total := page.Total
		if len(page.Pairs) > total {
			total = len(page.Pairs)
		}
		summary.DatasetPairs = &total
	}

	if info, err := h.api.CurrentModel(r.Context()); err != nil {
		h.logger.WithError(err).Warn("Dashboard could not fetch current model")
	} else {
		summary.CurrentModel = info
	}

	writeJSON(w, http.StatusOK, summary)
}
