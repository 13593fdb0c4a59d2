package routes

import (
	"net/http"

	"img2latex-console/api/rest/handlers"
	"img2latex-console/core/client"
	"img2latex-console/core/evaluation"
	"img2latex-console/core/monitoring"
	"img2latex-console/core/repository"
	"img2latex-console/storage"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Deps are the services the console API is built from. DB may be nil when
// no local store is configured.
type Deps struct {
	API     *client.Client
	Tracker *monitoring.Tracker
	Catalog *storage.AdapterCatalog
	Runner  *evaluation.Runner
	DB      *repository.DB
	LogTail int
	Logger  logrus.FieldLogger
}

// SetupRoutes configures all API routes
func SetupRoutes(r *mux.Router, deps Deps) {
	var (
		jobRepo   *repository.JobRepository
		eventRepo *repository.EventRepository
	)
	if deps.DB != nil {
		jobRepo = repository.NewJobRepository(deps.DB)
		eventRepo = repository.NewEventRepository(deps.DB)
	}

	jobHandler := handlers.NewJobHandler(deps.Tracker, jobRepo, eventRepo, deps.LogTail)
	inferenceHandler := handlers.NewInferenceHandler(deps.API)
	datasetHandler := handlers.NewDatasetHandler(deps.API)
	evaluationHandler := handlers.NewEvaluationHandler(deps.API, deps.Runner)
	modelHandler := handlers.NewModelHandler(deps.API, deps.Catalog)
	dashboardHandler := handlers.NewDashboardHandler(deps.Tracker, deps.API, deps.Logger)

	api := r.PathPrefix("/v1").Subrouter()

	// Job endpoints
	api.HandleFunc("/jobs", jobHandler.SubmitJob).Methods("POST")
	api.HandleFunc("/jobs", jobHandler.ListJobs).Methods("GET")
	api.HandleFunc("/jobs/active", jobHandler.GetActiveJob).Methods("GET")
	api.HandleFunc("/jobs/{id}", jobHandler.GetJob).Methods("GET")
	api.HandleFunc("/jobs/{id}/select", jobHandler.SelectJob).Methods("POST")
	api.HandleFunc("/jobs/{id}/events", jobHandler.GetJobEvents).Methods("GET")

	// Inference endpoints
	api.HandleFunc("/infer", inferenceHandler.Infer).Methods("POST")
	api.HandleFunc("/history", inferenceHandler.GetHistory).Methods("GET")

	// Dataset endpoints
	api.HandleFunc("/dataset/pairs", datasetHandler.ListPairs).Methods("GET")
	api.HandleFunc("/dataset/pairs/{id}", datasetHandler.CorrectPair).Methods("PUT")
	api.HandleFunc("/dataset/export", datasetHandler.ExportPairs).Methods("GET")

	// Evaluation endpoints
	api.HandleFunc("/evaluate", evaluationHandler.Evaluate).Methods("POST")
	api.HandleFunc("/evaluate/samples", evaluationHandler.ListSamples).Methods("GET")

	// Model endpoints
	api.HandleFunc("/models/current", modelHandler.GetCurrentModel).Methods("GET")
	api.HandleFunc("/models/adapters", modelHandler.ListAdapters).Methods("GET")
	api.HandleFunc("/models/switch", modelHandler.SwitchModel).Methods("POST")
	api.HandleFunc("/models/settings", modelHandler.GetSettings).Methods("GET")
	api.HandleFunc("/models/settings", modelHandler.UpdateSettings).Methods("PUT")

	api.HandleFunc("/dashboard", dashboardHandler.GetSummary).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")
}
