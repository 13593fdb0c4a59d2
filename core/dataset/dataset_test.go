package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"img2latex-console/core/models"
)

var testPairs = []models.DatasetPair{
	{ID: 1, ImagePath: "uploads/a.png", LatexText: `\frac{a}{b}`, IsCorrected: true},
	{ID: 2, ImagePath: "uploads/b.png", LatexText: "x, y < z"},
}

func TestExport_CSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, testPairs, "CSV"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(records))
	}
	if strings.Join(records[0], ",") != "id,image_path,latex_text,is_corrected" {
		t.Fatalf("unexpected header %v", records[0])
	}
	if records[2][2] != "x, y < z" {
		t.Fatalf("expected comma to survive quoting, got %q", records[2][2])
	}
	if records[1][3] != "true" {
		t.Fatalf("unexpected corrected flag %q", records[1][3])
	}
}

func TestExport_JSONL(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, testPairs, FormatJSONL); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if strings.Contains(lines[1], `\u003c`) {
		t.Fatalf("expected < to be written verbatim, got %s", lines[1])
	}

	var pair models.DatasetPair
	if err := json.Unmarshal([]byte(lines[0]), &pair); err != nil {
		t.Fatalf("decode line: %v", err)
	}
	if pair.LatexText != `\frac{a}{b}` || !pair.IsCorrected {
		t.Fatalf("unexpected pair %+v", pair)
	}
}

func TestExport_UnknownFormat(t *testing.T) {
	if err := Export(&bytes.Buffer{}, testPairs, "xml"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestContentType(t *testing.T) {
	if ContentType(FormatCSV) != "text/csv" || ContentType(FormatJSONL) != "application/x-ndjson" {
		t.Fatalf("unexpected content types")
	}
}

type fakeCorrector struct {
	calls int
	latex string
	err   error
}

func (f *fakeCorrector) CorrectPair(ctx context.Context, id int64, latex string) (*models.DatasetPair, error) {
	f.calls++
	f.latex = latex
	if f.err != nil {
		return nil, f.err
	}
	return &models.DatasetPair{ID: id, LatexText: latex}, nil
}

func TestCorrect(t *testing.T) {
	c := &fakeCorrector{}

	pair, err := Correct(context.Background(), c, 4, "  x^{2}  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.latex != "x^{2}" {
		t.Fatalf("expected trimmed latex to be sent, got %q", c.latex)
	}
	if !pair.IsCorrected || pair.ID != 4 {
		t.Fatalf("unexpected pair %+v", pair)
	}
}

func TestCorrect_Errors(t *testing.T) {
	tests := []struct {
		name      string
		latex     string
		backend   error
		wantErr   error
		wantCalls int
	}{
		{name: "empty", latex: "   ", wantErr: ErrEmptyLatex, wantCalls: 0},
		{name: "backend failure", latex: "x", backend: errors.New("Pair not found"), wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeCorrector{err: tt.backend}
			_, err := Correct(context.Background(), c, 1, tt.latex)
			if err == nil {
				t.Fatalf("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if c.calls != tt.wantCalls {
				t.Fatalf("expected %d backend calls, got %d", tt.wantCalls, c.calls)
			}
		})
	}
}
