package models

// DatasetPair is one image/LaTeX pair of the correction dataset
type DatasetPair struct {
	ID          int64      `json:"id"`
	ImagePath   string     `json:"image_path"`
	LatexText   string     `json:"latex_text"`
	IsCorrected bool       `json:"is_corrected"`
	CreatedAt   *Timestamp `json:"created_at,omitempty"`
	UpdatedAt   *Timestamp `json:"updated_at,omitempty"`
}

// PairsPage is one page of dataset pairs
type PairsPage struct {
	Pairs []DatasetPair `json:"pairs"`
	Skip  int           `json:"skip"`
	Limit int           `json:"limit"`
	Total int           `json:"total"`
}

// CorrectPairRequest is the body of a dataset correction
type CorrectPairRequest struct {
	LatexText string `json:"latex_text"`
}
