package models

import "time"

// JobEvent records a status transition observed while polling
type JobEvent struct {
	ID         int64      `json:"id"`
	JobID      JobID      `json:"job_id"`
	At         time.Time  `json:"at"`
	FromStatus *JobStatus `json:"from_status,omitempty"`
	ToStatus   JobStatus  `json:"to_status"`
	Reason     string     `json:"reason"`
}

// Transition reasons recorded with job events
const (
	ReasonSubmitted = "submitted"
	ReasonPolled    = "status_polled"
	ReasonRefreshed = "list_refreshed"
)

// ArtifactType represents the type of job artifact
type ArtifactType string

const (
	ArtifactTypeAdapter ArtifactType = "adapter"
)

// JobArtifact is an output of a finished job, recorded when it settles
type JobArtifact struct {
	ID        int64        `json:"id"`
	JobID     JobID        `json:"job_id"`
	Type      ArtifactType `json:"type"`
	URI       string       `json:"uri"`
	CreatedAt time.Time    `json:"created_at"`
}
