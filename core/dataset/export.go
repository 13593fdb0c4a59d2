package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"img2latex-console/core/models"
)

// Export formats
const (
	FormatCSV   = "csv"
	FormatJSONL = "jsonl"
)

// ContentType returns the MIME type of an export format
func ContentType(format string) string {
	if format == FormatJSONL {
		return "application/x-ndjson"
	}
	return "text/csv"
}

// Export writes pairs to w as csv or jsonl
func Export(w io.Writer, pairs []models.DatasetPair, format string) error {
	switch strings.ToLower(format) {
	case FormatCSV:
		return exportCSV(w, pairs)
	case FormatJSONL:
		return exportJSONL(w, pairs)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

func exportCSV(w io.Writer, pairs []models.DatasetPair) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "image_path", "latex_text", "is_corrected"}); err != nil {
		return err
	}
	for _, p := range pairs {
		record := []string{
			strconv.FormatInt(p.ID, 10),
			p.ImagePath,
			p.LatexText,
			strconv.FormatBool(p.IsCorrected),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type exportLine struct {
	ID          int64  `json:"id"`
	ImagePath   string `json:"image_path"`
	LatexText   string `json:"latex_text"`
	IsCorrected bool   `json:"is_corrected"`
}

func exportJSONL(w io.Writer, pairs []models.DatasetPair) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, p := range pairs {
		line := exportLine{ID: p.ID, ImagePath: p.ImagePath, LatexText: p.LatexText, IsCorrected: p.IsCorrected}
		if err := enc.Encode(line); err != nil {
			return err
		}
	}
	return nil
}
