package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// JobID is the opaque, server-assigned identifier of a training job.
// The backend may encode it as a JSON number or string.
type JobID string

// UnmarshalJSON accepts both numeric and string identifiers
func (id *JobID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = JobID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid job id %s: %w", string(b), err)
	}
	*id = JobID(n.String())
	return nil
}

func (id JobID) String() string { return string(id) }

// JobStatus represents the lifecycle state of a training job
type JobStatus string

const (
	JobStatusQueued  JobStatus = "QUEUED"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusDone    JobStatus = "DONE"
	JobStatusFailed  JobStatus = "FAILED"
)

// ParseJobStatus normalizes the status spellings used by the backend.
// Unknown values are returned verbatim.
func ParseJobStatus(s string) JobStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "queued", "pending":
		return JobStatusQueued
	case "running":
		return JobStatusRunning
	case "done", "completed", "succeeded":
		return JobStatusDone
	case "failed", "error":
		return JobStatusFailed
	}
	return JobStatus(s)
}

// UnmarshalJSON normalizes the status on decode
func (s *JobStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = ParseJobStatus(raw)
	return nil
}

// IsSettled reports whether no further transitions are expected
func (s JobStatus) IsSettled() bool {
	return s == JobStatusDone || s == JobStatusFailed
}

// IsKnown reports whether s is one of the four lifecycle states
func (s JobStatus) IsKnown() bool {
	switch s {
	case JobStatusQueued, JobStatusRunning, JobStatusDone, JobStatusFailed:
		return true
	}
	return false
}

// Rank orders the known statuses along the lifecycle. Unknown statuses
// return 0 and carry no ordering.
func (s JobStatus) Rank() int {
	switch s {
	case JobStatusRunning:
		return 1
	case JobStatusDone, JobStatusFailed:
		return 2
	}
	return 0
}

// TrainingConfig holds the hyperparameters submitted once per job
type TrainingConfig struct {
	MaxSteps                  int     `json:"max_steps" yaml:"max_steps"`
	LearningRate              float64 `json:"learning_rate" yaml:"learning_rate"`
	BatchSize                 int     `json:"batch_size" yaml:"batch_size"`
	GradientAccumulationSteps int     `json:"gradient_accumulation_steps" yaml:"gradient_accumulation_steps"`
}

// DefaultTrainingConfig mirrors the defaults of the training endpoint
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		MaxSteps:                  100,
		LearningRate:              2e-4,
		BatchSize:                 1,
		GradientAccumulationSteps: 4,
	}
}

// Validate checks that every field is positive
func (c TrainingConfig) Validate() error {
	switch {
	case c.MaxSteps <= 0:
		return fmt.Errorf("max_steps must be positive, got %d", c.MaxSteps)
	case c.LearningRate <= 0:
		return fmt.Errorf("learning_rate must be positive, got %g", c.LearningRate)
	case c.BatchSize <= 0:
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	case c.GradientAccumulationSteps <= 0:
		return fmt.Errorf("gradient_accumulation_steps must be positive, got %d", c.GradientAccumulationSteps)
	}
	return nil
}

// TrainingJob is the latest known snapshot of one training run.
// Snapshots are replaced wholesale, never patched.
type TrainingJob struct {
	ID            JobID          `json:"job_id"`
	Status        JobStatus      `json:"status"`
	Config        TrainingConfig `json:"config"`
	Logs          []string       `json:"logs"`
	ArtifactsPath *string        `json:"artifacts_path,omitempty"`
	CreatedAt     Timestamp      `json:"created_at"`
	UpdatedAt     *Timestamp     `json:"updated_at,omitempty"`
}

// IsSettled reports whether the job reached DONE or FAILED
func (j *TrainingJob) IsSettled() bool {
	return j.Status.IsSettled()
}

// LogTail returns at most the last n log lines
func (j *TrainingJob) LogTail(n int) []string {
	if n <= 0 || len(j.Logs) <= n {
		return j.Logs
	}
	return j.Logs[len(j.Logs)-n:]
}

// Clone returns a deep copy so callers never share the log slice
func (j *TrainingJob) Clone() *TrainingJob {
	if j == nil {
		return nil
	}
	out := *j
	out.Logs = make([]string, len(j.Logs))
	copy(out.Logs, j.Logs)
	if j.ArtifactsPath != nil {
		p := *j.ArtifactsPath
		out.ArtifactsPath = &p
	}
	if j.UpdatedAt != nil {
		t := *j.UpdatedAt
		out.UpdatedAt = &t
	}
	return &out
}

// SubmitResult is the response to a training submission
type SubmitResult struct {
	ID      JobID     `json:"job_id"`
	Status  JobStatus `json:"status"`
	Message string    `json:"message,omitempty"`
}
