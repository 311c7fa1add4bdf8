// ABOUTME: JSON HTTP API surface: accounts, chatbot, models, and the media library
// ABOUTME: Routes use method-qualified ServeMux patterns; responses are JSON envelopes

package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/glimpse-chat/glimpse/internal/auth"
	"github.com/glimpse-chat/glimpse/internal/metrics"
	"github.com/glimpse-chat/glimpse/internal/store"
)

// Bridge is what the chatbot endpoint needs from the assistant.
type Bridge interface {
	Converse(ctx context.Context, sessionKey, model, userText string) (string, error)
	Reply(ctx context.Context, model, userText string) (string, error)
	ClearHistory(ctx context.Context, sessionKey, model string) error
	DefaultModel() string
}

// ModelLister enumerates the models the LLM backend offers.
type ModelLister interface {
	ListModels(ctx context.Context) []string
}

// Handler serves the JSON API.
type Handler struct {
	store     *store.SQLiteStore
	auth      *auth.Manager
	bridge    Bridge
	models    ModelLister
	mediaDir  string
	maxUpload int64
	logger    *slog.Logger
}

// NewHandler creates the API handler. Pass nil logger for default.
func NewHandler(s *store.SQLiteStore, authMgr *auth.Manager, bridge Bridge, models ModelLister, mediaDir string, maxUpload int64, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:     s,
		auth:      authMgr,
		bridge:    bridge,
		models:    models,
		mediaDir:  mediaDir,
		maxUpload: maxUpload,
		logger:    logger.With("component", "httpapi"),
	}
}

// RegisterRoutes attaches all API endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	route := func(pattern string, handler http.HandlerFunc) {
		mux.HandleFunc(pattern, h.instrument(pattern, handler))
	}

	route("POST /api/signup", h.handleSignup)
	route("POST /api/login", h.handleLogin)
	route("POST /api/logout", h.handleLogout)
	route("GET /api/users", h.auth.RequireUser(h.handleListUsers))

	route("POST /api/chat", h.auth.OptionalUser(h.handleChat))
	route("GET /api/chat/{userID}/messages", h.auth.RequireUser(h.handleThreadHistory))
	route("GET /api/models", h.handleListModels)

	route("GET /api/categories", h.handleListCategories)
	route("POST /api/media", h.auth.RequireUser(h.handleUpload))
	route("GET /api/media", h.handleListPublicMedia)
	route("GET /api/media/mine", h.auth.RequireUser(h.handleListOwnMedia))
	route("GET /api/media/{id}", h.auth.OptionalUser(h.handleGetMedia))
	route("GET /api/media/{id}/file", h.auth.OptionalUser(h.handleMediaFile))
	route("DELETE /api/media/{id}", h.auth.RequireUser(h.handleDeleteMedia))
	route("POST /api/media/{id}/visibility", h.auth.RequireUser(h.handleSetVisibility))
	route("POST /api/media/{id}/like", h.auth.RequireUser(h.handleToggleLike))
	route("GET /api/media/{id}/comments", h.auth.OptionalUser(h.handleListComments))
	route("POST /api/media/{id}/comments", h.auth.RequireUser(h.handleAddComment))

	h.logger.Info("API routes registered")
}

// instrument records request count and latency under the route pattern,
// not the raw path, to keep label cardinality bounded.
func (h *Handler) instrument(pattern string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(sw, r)
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, pattern, strconv.Itoa(sw.status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encoding response failed", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads the request body into v, rejecting unknown garbage
// early with a client error.
func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
