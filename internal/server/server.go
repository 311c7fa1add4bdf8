// ABOUTME: Top-level server assembly: store, kv, LLM bridge, chat, and HTTP API
// ABOUTME: Owns the http.Server lifecycle including graceful shutdown

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/glimpse-chat/glimpse/internal/assistant"
	"github.com/glimpse-chat/glimpse/internal/auth"
	"github.com/glimpse-chat/glimpse/internal/chat"
	"github.com/glimpse-chat/glimpse/internal/config"
	"github.com/glimpse-chat/glimpse/internal/httpapi"
	"github.com/glimpse-chat/glimpse/internal/kv"
	"github.com/glimpse-chat/glimpse/internal/ollama"
	"github.com/glimpse-chat/glimpse/internal/presence"
	"github.com/glimpse-chat/glimpse/internal/room"
	"github.com/glimpse-chat/glimpse/internal/store"
)

// defaultCategories are seeded on first start so uploads have something
// to file under before any are created by hand.
var defaultCategories = []struct{ name, slug string }{
	{"Photos", "photos"},
	{"Videos", "videos"},
	{"Music", "music"},
	{"Other", "other"},
}

// Server wires all components together and runs the HTTP listener.
type Server struct {
	config     *config.Config
	logger     *slog.Logger
	store      *store.SQLiteStore
	kv         kv.Store
	httpServer *http.Server
}

// New assembles the full server from configuration. The kv store backs
// assistant conversation history: Redis when configured, in-process
// memory otherwise.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	sqlStore, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}

	kvStore, err := initKV(cfg, logger)
	if err != nil {
		sqlStore.Close()
		return nil, err
	}

	ctx := context.Background()
	for _, c := range defaultCategories {
		if _, err := sqlStore.EnsureCategory(ctx, c.name, c.slug); err != nil {
			sqlStore.Close()
			kvStore.Close()
			return nil, fmt.Errorf("seeding categories: %w", err)
		}
	}
	if err := sqlStore.PurgeExpiredSessions(ctx); err != nil {
		logger.Warn("purging expired sessions failed", "error", err)
	}

	ollamaClient := ollama.NewClient(cfg.Assistant.OllamaHost, cfg.Assistant.DefaultModel, cfg.Assistant.RequestTimeout, logger)
	bridge := assistant.New(kvStore, ollamaClient, cfg.Assistant.HistoryLimit, logger)
	authMgr := auth.NewManager(sqlStore, logger)

	chatHandler := chat.NewHandler(authMgr, sqlStore, bridge,
		presence.NewTracker(), room.NewBroadcaster(logger), logger)
	apiHandler := httpapi.NewHandler(sqlStore, authMgr, bridge, ollamaClient,
		cfg.Media.Dir, cfg.Media.MaxUploadSize, logger)

	s := &Server{
		config: cfg,
		logger: logger.With("component", "server"),
		store:  sqlStore,
		kv:     kvStore,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/ready", s.handleReady)
	chatHandler.RegisterRoutes(mux)
	apiHandler.RegisterRoutes(mux)
	if cfg.Metrics.Enabled {
		mux.Handle("GET "+cfg.Metrics.Path, promhttp.Handler())
		logger.Info("metrics enabled", "path", cfg.Metrics.Path)
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// initKV picks the conversation history backend.
func initKV(cfg *config.Config, logger *slog.Logger) (kv.Store, error) {
	if cfg.Redis.URL != "" {
		rs, err := kv.NewRedisStore(context.Background(), cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return rs, nil
	}
	logger.Warn("redis.url not set, assistant history is process-local")
	return kv.NewMemoryStore(), nil
}

// Run starts the HTTP server and blocks until the context is canceled
// or the server fails. Shutdown is graceful with a fixed timeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.config.Server.HTTPAddr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		s.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := s.gracefulShutdown()
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown uses a fresh context because the run context is
// already canceled by the time we get here.
func (s *Server) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}

// Shutdown stops the HTTP server and closes the stores.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down")

	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}
	if err := s.kv.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing kv store: %w", err))
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing store: %w", err))
	}
	return errors.Join(errs...)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"ok"}`)
}

// handleReady reports readiness: the process is up and the database
// answers. Liveness stays on /health so a wedged database does not get
// the process killed.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Warn("readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"status":"unavailable"}`)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"ready"}`)
}
