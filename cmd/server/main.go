package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"img2latex-console/api/rest/routes"
	"img2latex-console/config"
	"img2latex-console/core/client"
	"img2latex-console/core/evaluation"
	"img2latex-console/core/monitoring"
	"img2latex-console/core/notify"
	"img2latex-console/core/repository"
	"img2latex-console/core/training"
	"img2latex-console/storage"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	logger := config.NewLogger(cfg.LogLevel)

	api := client.New(cfg.APIURL, cfg.RequestTimeout)

	// Initialize local store
	var (
		db           *repository.DB
		artifactRepo *repository.ArtifactRepository
	)
	if cfg.DatabaseURL != "" {
		db, err = repository.NewDB(cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		artifactRepo = repository.NewArtifactRepository(db)
		logger.WithField("driver", db.Driver).Info("Database connected successfully")
	}

	// Initialize training job tracking
	submitter := training.NewSubmitter(api, cfg.MinDatasetPairs, logger)
	poller := monitoring.NewPoller(api, cfg.PollInterval, cfg.MaxPollFailures, logger)
	tracker := monitoring.NewTracker(submitter, api, poller, logger)

	if db != nil {
		tracker.WithRecorder(repository.NewJobRepository(db))
	}

	if cfg.NATSURL != "" {
		publisher, err := notify.Connect(cfg.NATSURL, cfg.NATSSubject, logger)
		if err != nil {
			logger.WithError(err).Warn("Job notifications disabled")
		} else {
			defer publisher.Close()
			tracker.WithNotifier(publisher)
			logger.WithField("subject", cfg.NATSSubject).Info("Publishing job transitions to NATS")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	if err := tracker.Refresh(ctx); err != nil {
		logger.WithError(err).Warn("Initial job list refresh failed")
	}
	cancel()

	var catalog *storage.AdapterCatalog
	if artifactRepo != nil {
		catalog = storage.NewAdapterCatalog(api, tracker, artifactRepo, logger)
	} else {
		catalog = storage.NewAdapterCatalog(api, tracker, nil, logger)
	}
	runner := evaluation.NewRunner(api, logger)

	r := mux.NewRouter()
	routes.SetupRoutes(r, routes.Deps{
		API:     api,
		Tracker: tracker,
		Catalog: catalog,
		Runner:  runner,
		DB:      db,
		LogTail: cfg.LogTailLines,
		Logger:  logger,
	})

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// Graceful shutdown
	go func() {
		logger.WithField("api_url", cfg.APIURL).Infof("Starting server on port %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}
	tracker.Close()
	logger.Info("Server exited")
}
