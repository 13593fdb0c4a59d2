package spec

import (
	"os"
	"path/filepath"
	"testing"

	"img2latex-console/core/models"
)

func TestParseTrainingSpec(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    models.TrainingConfig
		wantErr bool
	}{
		{
			name: "full preset",
			yaml: `
training:
  max_steps: 300
  learning_rate: 0.0001
  batch_size: 2
  gradient_accumulation_steps: 8
`,
			want: models.TrainingConfig{MaxSteps: 300, LearningRate: 1e-4, BatchSize: 2, GradientAccumulationSteps: 8},
		},
		{
			name: "partial preset takes defaults",
			yaml: `
training:
  max_steps: 50
`,
			want: models.TrainingConfig{MaxSteps: 50, LearningRate: 2e-4, BatchSize: 1, GradientAccumulationSteps: 4},
		},
		{
			name: "empty preset",
			yaml: ``,
			want: models.DefaultTrainingConfig(),
		},
		{
			name: "explicit zero is rejected",
			yaml: `
training:
  batch_size: 0
`,
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			yaml:    "training: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseTrainingSpec(tt.yaml)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", cfg)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, cfg)
			}
		})
	}
}

func TestMarshalTrainingSpec_RoundTrip(t *testing.T) {
	cfg := models.TrainingConfig{MaxSteps: 100, LearningRate: 2e-4, BatchSize: 1, GradientAccumulationSteps: 4}

	out, err := MarshalTrainingSpec(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "preset.yaml")
	if err := os.WriteFile(path, out, 0o644); err != nil {
		t.Fatalf("write preset: %v", err)
	}

	loaded, err := LoadTrainingSpec(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded != cfg {
		t.Fatalf("expected %+v, got %+v", cfg, loaded)
	}
}

func TestLoadTrainingSpec_MissingFile(t *testing.T) {
	if _, err := LoadTrainingSpec(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
