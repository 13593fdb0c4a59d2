package models

// EvaluationPair is one image with its expected LaTeX
type EvaluationPair struct {
	ImagePath   string `json:"image_path"`
	GroundTruth string `json:"ground_truth"`
}

// EvaluationRequest is the body of an evaluation run
type EvaluationRequest struct {
	Pairs []EvaluationPair `json:"pairs"`
}

// EvaluationResult is the per-sample outcome of an evaluation
type EvaluationResult struct {
	ImagePath   string   `json:"image_path"`
	GroundTruth string   `json:"ground_truth"`
	Predicted   *string  `json:"predicted"`
	Similarity  *float64 `json:"similarity,omitempty"`
	ExactMatch  bool     `json:"exact_match"`
	Tokens      int      `json:"tokens,omitempty"`
	TimeMS      int64    `json:"time_ms,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// Failed reports whether the sample produced no prediction
func (r EvaluationResult) Failed() bool {
	return r.Error != "" || r.Predicted == nil
}

// EvaluationReport aggregates an evaluation run
type EvaluationReport struct {
	Total             int                `json:"total"`
	ExactMatches      int                `json:"exact_matches"`
	Accuracy          float64            `json:"accuracy"`
	AverageSimilarity float64            `json:"average_similarity"`
	Results           []EvaluationResult `json:"results"`
}

// SampleImage is a bundled evaluation sample
type SampleImage struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	URL           string `json:"url"`
	ExpectedLatex string `json:"expected_latex"`
}
