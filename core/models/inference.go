package models

// InferenceResult is the LaTeX returned for one uploaded image
type InferenceResult struct {
	Latex  string `json:"latex"`
	Tokens int    `json:"tokens"`
	TimeMS int64  `json:"time_ms"`
	ID     int64  `json:"id"`
}

// HistoryEntry is one past inference
type HistoryEntry struct {
	ID           int64      `json:"id"`
	ImagePath    string     `json:"image_path"`
	ThumbnailURL string     `json:"thumbnail_url"`
	Latex        string     `json:"latex"`
	Tokens       int        `json:"tokens"`
	TimeMS       int64      `json:"time_ms"`
	CreatedAt    *Timestamp `json:"created_at,omitempty"`
}
