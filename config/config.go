package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	// Backend
	APIURL         string        `yaml:"api_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// Server
	ServerPort string `yaml:"server_port"`

	// Local store
	DatabaseURL string `yaml:"database_url"`

	// Notifications
	NATSURL     string `yaml:"nats_url"`
	NATSSubject string `yaml:"nats_subject"`

	// Polling
	PollInterval    time.Duration `yaml:"poll_interval"`
	MaxPollFailures int           `yaml:"max_poll_failures"`

	// Training
	MinDatasetPairs int `yaml:"min_dataset_pairs"`

	// Display
	LogLevel     string `yaml:"log_level"`
	LogTailLines int    `yaml:"log_tail_lines"`
}

// Load loads configuration from environment variables, then overlays the
// YAML file named by CONSOLE_CONFIG when set
func Load() (*Config, error) {
	cfg := &Config{
		APIURL:          getEnv("API_URL", "http://localhost:8000"),
		RequestTimeout:  getDuration("REQUEST_TIMEOUT", 30*time.Second),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		DatabaseURL:     getEnv("DATABASE_URL", "sqlite://img2latex-console.db"),
		NATSURL:         getEnv("NATS_URL", ""),
		NATSSubject:     getEnv("NATS_SUBJECT", "img2latex.train"),
		PollInterval:    getDuration("POLL_INTERVAL", 2*time.Second),
		MaxPollFailures: getInt("MAX_POLL_FAILURES", 5),
		MinDatasetPairs: getInt("MIN_DATASET_PAIRS", 5),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogTailLines:    getInt("LOG_TAIL_LINES", 50),
	}

	if path := os.Getenv("CONSOLE_CONFIG"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays values present in a YAML file onto cfg
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate rejects settings the poller and submitter cannot work with
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api_url is required")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	if c.MaxPollFailures < 0 {
		return fmt.Errorf("max_poll_failures must not be negative, got %d", c.MaxPollFailures)
	}
	if c.MinDatasetPairs < 0 {
		return fmt.Errorf("min_dataset_pairs must not be negative, got %d", c.MinDatasetPairs)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
