package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"img2latex-console/core/models"
	"img2latex-console/core/monitoring"
	"img2latex-console/core/repository"

	"github.com/gorilla/mux"
)

// JobHandler handles training job requests
type JobHandler struct {
	tracker   *monitoring.Tracker
	jobRepo   *repository.JobRepository
	eventRepo *repository.EventRepository
	logTail   int
}

// NewJobHandler creates a new job handler. The repositories may be nil when
// no local store is configured.
func NewJobHandler(
	tracker *monitoring.Tracker,
	jobRepo *repository.JobRepository,
	eventRepo *repository.EventRepository,
	logTail int,
) *JobHandler {
	return &JobHandler{
		tracker:   tracker,
		jobRepo:   jobRepo,
		eventRepo: eventRepo,
		logTail:   logTail,
	}
}

// JobView is a job as displayed, with its log truncated to the tail
type JobView struct {
	models.TrainingJob
	Active bool `json:"active"`
}

// ActiveJobResponse describes the active job and its polling loop
type ActiveJobResponse struct {
	Job     JobView `json:"job"`
	Polling bool    `json:"polling"`
	Error   string  `json:"error,omitempty"`
}

func (h *JobHandler) view(job *models.TrainingJob, activeID models.JobID) JobView {
	v := JobView{TrainingJob: *job, Active: job.ID == activeID}
	v.Logs = job.LogTail(h.logTail)
	return v
}

func (h *JobHandler) activeID() models.JobID {
	if active := h.tracker.Active(); active != nil {
		return active.ID
	}
	return ""
}

// SubmitJob handles POST /v1/jobs
func (h *JobHandler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	cfg := models.DefaultTrainingConfig()
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	if err := cfg.Validate(); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := h.tracker.SubmitChecked(r.Context(), cfg)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.view(job, job.ID))
}

// ListJobs handles GET /v1/jobs
func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refresh") == "true" {
		if err := h.tracker.Refresh(r.Context()); err != nil {
			writeError(w, err)
			return
		}
	}

	activeID := h.activeID()
	jobs := h.tracker.Jobs()
	items := make([]JobView, 0, len(jobs))
	for i := range jobs {
		items = append(items, h.view(&jobs[i], activeID))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items":         items,
		"active_job_id": activeID,
	})
}

// GetActiveJob handles GET /v1/jobs/active
func (h *JobHandler) GetActiveJob(w http.ResponseWriter, r *http.Request) {
	active := h.tracker.Active()
	if active == nil {
		writeDetail(w, http.StatusNotFound, "No active training job")
		return
	}

	resp := ActiveJobResponse{
		Job:     h.view(active, active.ID),
		Polling: h.tracker.Polling(),
	}
	if err := h.tracker.LastError(); err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// SelectJob handles POST /v1/jobs/{id}/select
func (h *JobHandler) SelectJob(w http.ResponseWriter, r *http.Request) {
	id := models.JobID(mux.Vars(r)["id"])

	job, err := h.tracker.Select(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.view(job, job.ID))
}

// GetJob handles GET /v1/jobs/{id}
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id := models.JobID(mux.Vars(r)["id"])

	if job, ok := h.tracker.Job(id); ok {
		writeJSON(w, http.StatusOK, h.view(job, h.activeID()))
		return
	}

	if h.jobRepo != nil {
		job, err := h.jobRepo.GetJob(r.Context(), id)
		if err == nil {
			writeJSON(w, http.StatusOK, h.view(job, h.activeID()))
			return
		}
		if !errors.Is(err, repository.ErrNotFound) {
			writeError(w, err)
			return
		}
	}

	writeDetail(w, http.StatusNotFound, "Training job not found")
}

// GetJobEvents handles GET /v1/jobs/{id}/events
func (h *JobHandler) GetJobEvents(w http.ResponseWriter, r *http.Request) {
	if h.eventRepo == nil {
		writeDetail(w, http.StatusServiceUnavailable, "Job event store is not configured")
		return
	}

	id := models.JobID(mux.Vars(r)["id"])
	events, err := h.eventRepo.GetJobEvents(r.Context(), id, parseLimit(r, 100, 1000))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": events,
	})
}
