package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete worker-service configuration. Queue
// URLs and AWS credentials are environment-only (they differ per
// deployment and carry secrets); everything else comes from the yaml
// file.
type Config struct {
	App     AppConfig     `yaml:"app"`
	Logging LoggingConfig `yaml:"logging"`
	Worker  WorkerConfig  `yaml:"worker"`
	Queue   QueueConfig   `yaml:"queue"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Image   ImageConfig   `yaml:"image"`
	Storage StorageConfig `yaml:"storage"`
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level        string `yaml:"level"`
	Format       string `yaml:"format"`
	Output       string `yaml:"output"`
	EnableCaller bool   `yaml:"enable_caller"`
}

// WorkerConfig holds worker pool configuration
type WorkerConfig struct {
	Concurrency     int           `yaml:"concurrency"`
	AttemptTimeout  time.Duration `yaml:"attempt_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// QueueConfig holds SQS consumption settings. QueueURL and
// DeadLetterQueueURL are populated from the environment, not the file.
type QueueConfig struct {
	QueueURL           string        `yaml:"-"`
	DeadLetterQueueURL string        `yaml:"-"`
	MaxMessages        int           `yaml:"max_messages"`
	WaitTime           time.Duration `yaml:"wait_time"`
	VisibilityTimeout  time.Duration `yaml:"visibility_timeout"`
	MaxReceiveCount    int           `yaml:"max_receive_count"`
}

// FetchConfig holds image download settings
type FetchConfig struct {
	Timeout  time.Duration `yaml:"timeout"`
	MaxBytes int64         `yaml:"max_bytes"`
}

// ImageConfig holds resize settings
type ImageConfig struct {
	MaxEdge int `yaml:"max_edge"`
}

// StorageConfig holds the filesystem store settings
type StorageConfig struct {
	Root string `yaml:"root"`
}

// Environment variable names consumed at load time.
const (
	EnvQueueURL           = "SQS_QUEUE_URL"
	EnvDeadLetterQueueURL = "DEAD_LETTER_QUEUE_URL"
)

// Load reads the yaml configuration file and overlays the
// environment-supplied queue URLs.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.Queue.QueueURL = os.Getenv(EnvQueueURL)
	config.Queue.DeadLetterQueueURL = os.Getenv(EnvDeadLetterQueueURL)

	config.applyDefaults()

	return &config, nil
}

// applyDefaults fills unset optional values.
func (c *Config) applyDefaults() {
	if c.Worker.Concurrency == 0 {
		c.Worker.Concurrency = 4
	}
	if c.Worker.AttemptTimeout == 0 {
		c.Worker.AttemptTimeout = 60 * time.Second
	}
	if c.Worker.ShutdownTimeout == 0 {
		c.Worker.ShutdownTimeout = 30 * time.Second
	}
	if c.Queue.MaxMessages == 0 {
		c.Queue.MaxMessages = 10
	}
	if c.Queue.WaitTime == 0 {
		c.Queue.WaitTime = 20 * time.Second
	}
	if c.Queue.VisibilityTimeout == 0 {
		c.Queue.VisibilityTimeout = 90 * time.Second
	}
	if c.Queue.MaxReceiveCount == 0 {
		c.Queue.MaxReceiveCount = 10
	}
	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = 15 * time.Second
	}
	if c.Fetch.MaxBytes == 0 {
		c.Fetch.MaxBytes = 10 << 20
	}
	if c.Image.MaxEdge == 0 {
		c.Image.MaxEdge = 256
	}
	if c.Storage.Root == "" {
		c.Storage.Root = "."
	}
}

// Validate checks if the configuration is valid for the worker service.
func (c *Config) Validate() error {
	var missing []string
	if c.Queue.QueueURL == "" {
		missing = append(missing, EnvQueueURL)
	}
	if c.Queue.DeadLetterQueueURL == "" {
		missing = append(missing, EnvDeadLetterQueueURL)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if c.Worker.Concurrency <= 0 {
		return fmt.Errorf("worker concurrency must be greater than 0")
	}
	if c.Worker.AttemptTimeout <= 0 {
		return fmt.Errorf("worker attempt_timeout must be greater than 0")
	}
	if c.Queue.MaxMessages < 1 || c.Queue.MaxMessages > 10 {
		return fmt.Errorf("queue max_messages must be between 1 and 10")
	}
	if c.Queue.MaxReceiveCount <= 0 {
		return fmt.Errorf("queue max_receive_count must be greater than 0")
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch timeout must be greater than 0")
	}
	if c.Fetch.MaxBytes <= 0 {
		return fmt.Errorf("fetch max_bytes must be greater than 0")
	}
	if c.Image.MaxEdge <= 0 {
		return fmt.Errorf("image max_edge must be greater than 0")
	}

	return nil
}
