// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, defaults, and duration parsing

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "0.0.0.0:8080"

database:
  path: "./test.db"

redis:
  url: "redis://localhost:6379/0"

media:
  dir: "./uploads"
  max_upload_size: 1048576

assistant:
  ollama_host: "http://ollama:11434"
  default_model: "mistral"
  history_limit: 40
  request_timeout: "15s"

logging:
  level: "debug"
  format: "json"

metrics:
  enabled: true
  path: "/metrics"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "0.0.0.0:8080" {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "0.0.0.0:8080")
	}
	if cfg.Database.Path != "./test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "./test.db")
	}
	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Errorf("Redis.URL = %q, want %q", cfg.Redis.URL, "redis://localhost:6379/0")
	}
	if cfg.Assistant.DefaultModel != "mistral" {
		t.Errorf("Assistant.DefaultModel = %q, want %q", cfg.Assistant.DefaultModel, "mistral")
	}
	if cfg.Assistant.HistoryLimit != 40 {
		t.Errorf("Assistant.HistoryLimit = %d, want 40", cfg.Assistant.HistoryLimit)
	}
	if cfg.Assistant.RequestTimeout != 15*time.Second {
		t.Errorf("Assistant.RequestTimeout = %v, want 15s", cfg.Assistant.RequestTimeout)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = false, want true")
	}
}

func TestLoad_Defaults(t *testing.T) {
	configPath := writeConfig(t, `
database:
  path: "./test.db"
media:
  dir: "./uploads"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != defaultHTTPAddr {
		t.Errorf("Server.HTTPAddr = %q, want default %q", cfg.Server.HTTPAddr, defaultHTTPAddr)
	}
	if cfg.Assistant.OllamaHost != defaultOllamaHost {
		t.Errorf("Assistant.OllamaHost = %q, want default %q", cfg.Assistant.OllamaHost, defaultOllamaHost)
	}
	if cfg.Assistant.DefaultModel != defaultModel {
		t.Errorf("Assistant.DefaultModel = %q, want default %q", cfg.Assistant.DefaultModel, defaultModel)
	}
	if cfg.Assistant.HistoryLimit != defaultHistoryLimit {
		t.Errorf("Assistant.HistoryLimit = %d, want default %d", cfg.Assistant.HistoryLimit, defaultHistoryLimit)
	}
	if cfg.Assistant.RequestTimeout != defaultRequestTimeout {
		t.Errorf("Assistant.RequestTimeout = %v, want default %v", cfg.Assistant.RequestTimeout, defaultRequestTimeout)
	}
	if cfg.Media.MaxUploadSize != defaultMaxUploadSize {
		t.Errorf("Media.MaxUploadSize = %d, want default %d", cfg.Media.MaxUploadSize, defaultMaxUploadSize)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("GLIMPSE_TEST_DB", "/tmp/glimpse-env.db")

	configPath := writeConfig(t, `
database:
  path: "${GLIMPSE_TEST_DB}"
media:
  dir: "./uploads"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/glimpse-env.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/glimpse-env.db")
	}
}

func TestLoad_MissingDatabasePath(t *testing.T) {
	configPath := writeConfig(t, `
media:
  dir: "./uploads"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected error for missing database.path")
	}
	if !strings.Contains(err.Error(), "database.path") {
		t.Errorf("error = %v, want mention of database.path", err)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	configPath := writeConfig(t, `
database:
  path: "./test.db"
media:
  dir: "./uploads"
assistant:
  request_timeout: "soon"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected error for invalid duration")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}
