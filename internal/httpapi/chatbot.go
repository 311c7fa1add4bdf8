// ABOUTME: Chatbot endpoints: one-turn chat requests and model discovery
// ABOUTME: Logged-in callers get session-scoped memory; anonymous callers are stateless

package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/glimpse-chat/glimpse/internal/assistant"
	"github.com/glimpse-chat/glimpse/internal/auth"
	"github.com/glimpse-chat/glimpse/internal/metrics"
)

type chatRequest struct {
	Message string `json:"message"`
	Model   string `json:"model,omitempty"`
	Action  string `json:"action,omitempty"`
}

type chatResponse struct {
	Reply string `json:"reply"`
	Model string `json:"model"`
}

// handleChat runs one chatbot turn. With a valid session the turn is
// stateful against that session's history; anonymously it is a one-shot.
// A failing LLM backend still yields 200 with the fixed fallback text,
// because from the user's side that is a chat reply, not a server error.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	model := req.Model
	if model == "" {
		model = h.bridge.DefaultModel()
	}
	sess := auth.SessionFromContext(r.Context())

	if req.Action == "clear" {
		if sess != nil {
			if err := h.bridge.ClearHistory(r.Context(), sess.ID, model); err != nil {
				h.logger.Error("clearing history failed", "error", err)
				h.writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
		}
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		h.writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	start := time.Now()
	var reply string
	var err error
	if sess != nil {
		reply, err = h.bridge.Converse(r.Context(), sess.ID, model, message)
	} else {
		reply, err = h.bridge.Reply(r.Context(), model, message)
	}
	metrics.AssistantLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, assistant.ErrGateway) {
			metrics.AssistantRequests.WithLabelValues("error").Inc()
			fallback := assistant.StatelessFallback
			if sess != nil {
				fallback = assistant.ConverseFallback
			}
			h.writeJSON(w, http.StatusOK, chatResponse{Reply: fallback, Model: model})
			return
		}
		h.logger.Error("chat turn failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	metrics.AssistantRequests.WithLabelValues("ok").Inc()
	h.writeJSON(w, http.StatusOK, chatResponse{Reply: reply, Model: model})
}

// handleListModels reports what the backend offers plus the configured
// default. The backend being down still yields a usable single-entry
// list, so the model picker never renders empty.
func (h *Handler) handleListModels(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"models":  h.models.ListModels(r.Context()),
		"default": h.bridge.DefaultModel(),
	})
}
