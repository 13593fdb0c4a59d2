package evaluation

import (
	"context"
	"errors"
	"fmt"

	"img2latex-console/core/models"

	"github.com/sirupsen/logrus"
)

// ErrNoSamples is returned when there is nothing to evaluate
var ErrNoSamples = errors.New("No sample images available")

// Backend is the subset of the API client the runner needs
type Backend interface {
	SampleImages(ctx context.Context) ([]models.SampleImage, error)
	Evaluate(ctx context.Context, req models.EvaluationRequest) (*models.EvaluationReport, error)
}

// Runner evaluates the serving model against the bundled samples
type Runner struct {
	backend Backend
	logger  logrus.FieldLogger
}

// NewRunner creates an evaluation runner
func NewRunner(backend Backend, logger logrus.FieldLogger) *Runner {
	return &Runner{backend: backend, logger: logger}
}

// Run evaluates every sample image
func (r *Runner) Run(ctx context.Context) (*models.EvaluationReport, error) {
	samples, err := r.backend.SampleImages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch samples: %w", err)
	}
	return r.Evaluate(ctx, BuildPairs(samples))
}

// Evaluate runs an evaluation over pairs and completes the report locally
// where the backend left scores out
func (r *Runner) Evaluate(ctx context.Context, pairs []models.EvaluationPair) (*models.EvaluationReport, error) {
	if len(pairs) == 0 {
		return nil, ErrNoSamples
	}

	report, err := r.backend.Evaluate(ctx, models.EvaluationRequest{Pairs: pairs})
	if err != nil {
		return nil, fmt.Errorf("evaluation failed: %w", err)
	}

	for i := range report.Results {
		res := &report.Results[i]
		if res.Failed() || res.Similarity != nil {
			continue
		}
		score := Similarity(res.GroundTruth, *res.Predicted)
		res.Similarity = &score
	}
	if report.Total == 0 && len(report.Results) > 0 {
		*report = Summarize(report.Results)
	}

	r.logger.WithFields(logrus.Fields{
		"total":              report.Total,
		"exact_matches":      report.ExactMatches,
		"accuracy":           Percent(report.Accuracy),
		"average_similarity": Percent(report.AverageSimilarity),
	}).Info("Evaluation finished")

	return report, nil
}

// BuildPairs turns sample images into evaluation pairs
func BuildPairs(samples []models.SampleImage) []models.EvaluationPair {
	pairs := make([]models.EvaluationPair, 0, len(samples))
	for _, s := range samples {
		pairs = append(pairs, models.EvaluationPair{
			ImagePath:   s.URL,
			GroundTruth: s.ExpectedLatex,
		})
	}
	return pairs
}

// Summarize computes the aggregate scores of results. Accuracy counts exact
// matches over all samples; the average similarity covers scored samples only.
func Summarize(results []models.EvaluationResult) models.EvaluationReport {
	report := models.EvaluationReport{
		Total:   len(results),
		Results: results,
	}

	scored := 0
	sum := 0.0
	for _, res := range results {
		if res.ExactMatch {
			report.ExactMatches++
		}
		if res.Similarity != nil {
			scored++
			sum += *res.Similarity
		}
	}

	if report.Total > 0 {
		report.Accuracy = float64(report.ExactMatches) / float64(report.Total)
	}
	if scored > 0 {
		report.AverageSimilarity = sum / float64(scored)
	}
	return report
}
