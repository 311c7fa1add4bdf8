// ABOUTME: Configuration loading and parsing for glimpse-server
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the complete glimpse-server configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Media     MediaConfig     `yaml:"media"`
	Assistant AssistantConfig `yaml:"assistant"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// RedisConfig holds the session-blob store configuration.
// When URL is empty the server falls back to an in-process store,
// which does not survive restarts.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// MediaConfig holds uploaded-file storage configuration
type MediaConfig struct {
	Dir           string `yaml:"dir"`
	MaxUploadSize int64  `yaml:"max_upload_size"`
}

// AssistantConfig holds LLM backend configuration
type AssistantConfig struct {
	OllamaHost   string `yaml:"ollama_host"`
	DefaultModel string `yaml:"default_model"`
	HistoryLimit int    `yaml:"history_limit"`

	RequestTimeout time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	RequestTimeoutRaw string `yaml:"request_timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig holds metrics endpoint configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

const (
	defaultHTTPAddr       = "127.0.0.1:8080"
	defaultOllamaHost     = "http://localhost:11434"
	defaultModel          = "llama3"
	defaultHistoryLimit   = 100
	defaultRequestTimeout = 30 * time.Second
	defaultMaxUploadSize  = 64 << 20
)

// Load reads a configuration file from the given path and returns a parsed Config.
// A .env file in the working directory is loaded first, if present.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = defaultHTTPAddr
	}
	if c.Assistant.OllamaHost == "" {
		c.Assistant.OllamaHost = defaultOllamaHost
	}
	if c.Assistant.DefaultModel == "" {
		c.Assistant.DefaultModel = defaultModel
	}
	if c.Assistant.HistoryLimit == 0 {
		c.Assistant.HistoryLimit = defaultHistoryLimit
	}
	if c.Media.MaxUploadSize == 0 {
		c.Media.MaxUploadSize = defaultMaxUploadSize
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Media.Dir == "" {
		return fmt.Errorf("media.dir is required")
	}
	if c.Assistant.HistoryLimit < 0 {
		return fmt.Errorf("assistant.history_limit must not be negative")
	}
	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	cfg.Assistant.RequestTimeout = defaultRequestTimeout
	if cfg.Assistant.RequestTimeoutRaw != "" {
		d, err := time.ParseDuration(cfg.Assistant.RequestTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing request_timeout %q: %w", cfg.Assistant.RequestTimeoutRaw, err)
		}
		cfg.Assistant.RequestTimeout = d
	}
	return nil
}
