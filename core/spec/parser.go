package spec

import (
	"fmt"
	"os"

	"img2latex-console/core/models"

	"gopkg.in/yaml.v3"
)

// TrainingSpec represents a YAML training preset
type TrainingSpec struct {
	Training TrainingSpecConfig `yaml:"training"`
}

// TrainingSpecConfig is the training section of the preset.
// Pointers distinguish omitted keys from explicit zeroes.
type TrainingSpecConfig struct {
	MaxSteps                  *int     `yaml:"max_steps,omitempty"`
	LearningRate              *float64 `yaml:"learning_rate,omitempty"`
	BatchSize                 *int     `yaml:"batch_size,omitempty"`
	GradientAccumulationSteps *int     `yaml:"gradient_accumulation_steps,omitempty"`
}

// ParseTrainingSpec parses a YAML preset into a validated TrainingConfig.
// Omitted keys take the endpoint defaults.
func ParseTrainingSpec(specYAML string) (models.TrainingConfig, error) {
	var spec TrainingSpec
	if err := yaml.Unmarshal([]byte(specYAML), &spec); err != nil {
		return models.TrainingConfig{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg := models.DefaultTrainingConfig()
	t := spec.Training
	if t.MaxSteps != nil {
		cfg.MaxSteps = *t.MaxSteps
	}
	if t.LearningRate != nil {
		cfg.LearningRate = *t.LearningRate
	}
	if t.BatchSize != nil {
		cfg.BatchSize = *t.BatchSize
	}
	if t.GradientAccumulationSteps != nil {
		cfg.GradientAccumulationSteps = *t.GradientAccumulationSteps
	}

	if err := cfg.Validate(); err != nil {
		return models.TrainingConfig{}, fmt.Errorf("invalid training spec: %w", err)
	}
	return cfg, nil
}

// LoadTrainingSpec reads and parses a preset file
func LoadTrainingSpec(path string) (models.TrainingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.TrainingConfig{}, fmt.Errorf("read training spec %s: %w", path, err)
	}
	return ParseTrainingSpec(string(data))
}

// MarshalTrainingSpec renders cfg as a preset, the inverse of ParseTrainingSpec
func MarshalTrainingSpec(cfg models.TrainingConfig) ([]byte, error) {
	return yaml.Marshal(struct {
		Training models.TrainingConfig `yaml:"training"`
	}{Training: cfg})
}
