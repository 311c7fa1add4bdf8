// Package config handles configuration loading for glimpse-server.
//
// # Overview
//
// Configuration is loaded from a YAML file with environment variable
// expansion. A .env file in the working directory is loaded first if
// present, so development setups can keep secrets out of the YAML.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	redis:
//	  url: "${GLIMPSE_REDIS_URL}"
//
// # Configuration Sections
//
// Server and storage:
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//	database:
//	  path: "/var/lib/glimpse/glimpse.db"
//	redis:
//	  url: "redis://localhost:6379/0"   # optional; in-memory fallback
//	media:
//	  dir: "/var/lib/glimpse/media"
//	  max_upload_size: 67108864
//
// Assistant backend:
//
//	assistant:
//	  ollama_host: "http://localhost:11434"
//	  default_model: "llama3"
//	  history_limit: 100
//	  request_timeout: "30s"
//
// Logging and metrics:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//	metrics:
//	  enabled: true
//	  path: "/metrics"
package config
