package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestJobID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  JobID
	}{
		{name: "string id", input: `"abc-123"`, want: "abc-123"},
		{name: "numeric id", input: `42`, want: "42"},
		{name: "null id", input: `null`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id JobID
			if err := json.Unmarshal([]byte(tt.input), &id); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, id)
			}
		})
	}
}

func TestJobID_UnmarshalJSONRejectsObjects(t *testing.T) {
	var id JobID
	if err := json.Unmarshal([]byte(`{"id":1}`), &id); err == nil {
		t.Fatalf("expected error for object id, got %q", id)
	}
}

func TestParseJobStatus(t *testing.T) {
	tests := []struct {
		input string
		want  JobStatus
	}{
		{"QUEUED", JobStatusQueued},
		{"pending", JobStatusQueued},
		{"running", JobStatusRunning},
		{"Running", JobStatusRunning},
		{"DONE", JobStatusDone},
		{"completed", JobStatusDone},
		{"FAILED", JobStatusFailed},
		{"error", JobStatusFailed},
		{"PAUSED", JobStatus("PAUSED")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseJobStatus(tt.input); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestJobStatus_Lifecycle(t *testing.T) {
	tests := []struct {
		status  JobStatus
		settled bool
		known   bool
		rank    int
	}{
		{JobStatusQueued, false, true, 0},
		{JobStatusRunning, false, true, 1},
		{JobStatusDone, true, true, 2},
		{JobStatusFailed, true, true, 2},
		{JobStatus("PAUSED"), false, false, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if tt.status.IsSettled() != tt.settled {
				t.Fatalf("IsSettled: expected %v", tt.settled)
			}
			if tt.status.IsKnown() != tt.known {
				t.Fatalf("IsKnown: expected %v", tt.known)
			}
			if tt.status.Rank() != tt.rank {
				t.Fatalf("Rank: expected %d, got %d", tt.rank, tt.status.Rank())
			}
		})
	}
}

func TestTrainingConfig_Validate(t *testing.T) {
	if err := DefaultTrainingConfig().Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*TrainingConfig)
	}{
		{"zero max_steps", func(c *TrainingConfig) { c.MaxSteps = 0 }},
		{"negative learning_rate", func(c *TrainingConfig) { c.LearningRate = -1 }},
		{"zero batch_size", func(c *TrainingConfig) { c.BatchSize = 0 }},
		{"zero gradient_accumulation_steps", func(c *TrainingConfig) { c.GradientAccumulationSteps = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultTrainingConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestTrainingJob_Decode(t *testing.T) {
	body := `{
		"job_id": 7,
		"status": "running",
		"config": {"max_steps": 100, "learning_rate": 0.0002, "batch_size": 1, "gradient_accumulation_steps": 4},
		"logs": ["step 1", "step 2"],
		"artifacts_path": null,
		"created_at": "2024-05-01T10:00:00.123456"
	}`

	var job TrainingJob
	if err := json.Unmarshal([]byte(body), &job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if job.ID != "7" {
		t.Fatalf("expected id 7, got %s", job.ID)
	}
	if job.Status != JobStatusRunning {
		t.Fatalf("expected RUNNING, got %s", job.Status)
	}
	if job.Config != DefaultTrainingConfig() {
		t.Fatalf("unexpected config %+v", job.Config)
	}
	if job.ArtifactsPath != nil {
		t.Fatalf("expected no artifacts path")
	}
	want := time.Date(2024, 5, 1, 10, 0, 0, 123456000, time.UTC)
	if !job.CreatedAt.Equal(want) {
		t.Fatalf("expected created_at %v, got %v", want, job.CreatedAt.Time)
	}
}

func TestTrainingJob_LogTail(t *testing.T) {
	job := &TrainingJob{Logs: []string{"a", "b", "c", "d"}}

	tests := []struct {
		n    int
		want int
	}{
		{2, 2},
		{4, 4},
		{10, 4},
		{0, 4},
	}

	for _, tt := range tests {
		got := job.LogTail(tt.n)
		if len(got) != tt.want {
			t.Fatalf("LogTail(%d): expected %d lines, got %d", tt.n, tt.want, len(got))
		}
		if got[len(got)-1] != "d" {
			t.Fatalf("LogTail(%d): expected to end with newest line, got %v", tt.n, got)
		}
	}
}

func TestTrainingJob_Clone(t *testing.T) {
	path := "/adapters/1"
	job := &TrainingJob{ID: "1", Logs: []string{"a"}, ArtifactsPath: &path}

	clone := job.Clone()
	clone.Logs[0] = "changed"
	*clone.ArtifactsPath = "/elsewhere"

	if job.Logs[0] != "a" {
		t.Fatalf("clone shares log slice")
	}
	if *job.ArtifactsPath != "/adapters/1" {
		t.Fatalf("clone shares artifacts path")
	}

	empty := (&TrainingJob{ID: "2"}).Clone()
	if empty.Logs == nil {
		t.Fatalf("expected non-nil logs on clone")
	}

	var nilJob *TrainingJob
	if nilJob.Clone() != nil {
		t.Fatalf("expected nil clone of nil job")
	}
}
