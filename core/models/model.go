package models

// ModelInfo describes the model currently serving inference
type ModelInfo struct {
	Type string `json:"type"`
	Path string `json:"path"`
	Name string `json:"name"`
}

// Adapter is a fine-tuned increment selectable instead of the base model
type Adapter struct {
	JobID     JobID          `json:"job_id"`
	Path      string         `json:"path"`
	Config    map[string]any `json:"config,omitempty"`
	CreatedAt Timestamp      `json:"created_at"`
}

// SwitchModelRequest selects an adapter by path
type SwitchModelRequest struct {
	AdapterPath string `json:"adapter_path"`
}

// SwitchResult is returned after a model switch
type SwitchResult struct {
	Message      string `json:"message"`
	CurrentModel string `json:"current_model"`
}

// GenerationSettings controls decoding during inference
type GenerationSettings struct {
	MaxNewTokens int     `json:"max_new_tokens" yaml:"max_new_tokens"`
	Temperature  float64 `json:"temperature" yaml:"temperature"`
	MinP         float64 `json:"min_p" yaml:"min_p"`
}

// DefaultGenerationSettings mirrors the backend defaults
func DefaultGenerationSettings() GenerationSettings {
	return GenerationSettings{MaxNewTokens: 256, Temperature: 0.7, MinP: 0.1}
}
