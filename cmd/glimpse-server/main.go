// ABOUTME: Entry point for the glimpse server
// ABOUTME: Loads configuration, sets up logging, and runs until signaled

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/glimpse-chat/glimpse/internal/config"
	"github.com/glimpse-chat/glimpse/internal/server"
)

// version is set at build time.
var version = "dev"

// configPath resolves the config file location.
// Priority: GLIMPSE_CONFIG env var > ./glimpse.yaml
func configPath() string {
	if envPath := os.Getenv("GLIMPSE_CONFIG"); envPath != "" {
		return envPath
	}
	return "glimpse.yaml"
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	path := configPath()

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting glimpse-server",
		"version", version,
		"config", path,
		"http_addr", cfg.Server.HTTPAddr,
	)

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return srv.Run(ctx)
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
