package dataset

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"img2latex-console/core/models"
)

// ErrEmptyLatex is returned for a correction with no text
var ErrEmptyLatex = errors.New("latex_text must not be empty")

// Corrector is the subset of the API client corrections need
type Corrector interface {
	CorrectPair(ctx context.Context, id int64, latex string) (*models.DatasetPair, error)
}

// Correct replaces the LaTeX of pair id. The returned pair is marked corrected.
func Correct(ctx context.Context, c Corrector, id int64, latex string) (*models.DatasetPair, error) {
	latex = strings.TrimSpace(latex)
	if latex == "" {
		return nil, ErrEmptyLatex
	}

	pair, err := c.CorrectPair(ctx, id, latex)
	if err != nil {
		return nil, fmt.Errorf("failed to update pair %d: %w", id, err)
	}
	pair.IsCorrected = true
	return pair, nil
}
