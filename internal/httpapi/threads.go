// ABOUTME: Private-thread history endpoint for rendering a conversation on open
// ABOUTME: Resolves the thread exactly like the WebSocket side does

package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/glimpse-chat/glimpse/internal/auth"
	"github.com/glimpse-chat/glimpse/internal/store"
)

type messageResponse struct {
	ID        int64     `json:"id"`
	Sender    string    `json:"sender"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// handleThreadHistory returns the requester's message history with one
// peer, oldest first. The thread is created on first access, matching
// the WebSocket handler, so a fresh conversation returns an empty list.
func (h *Handler) handleThreadHistory(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	peerID, err := strconv.ParseInt(r.PathValue("userID"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if peerID == user.ID {
		h.writeError(w, http.StatusBadRequest, "cannot chat with yourself")
		return
	}

	thread, err := h.store.ResolveThread(r.Context(), user.ID, peerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("resolving thread failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	msgs, err := h.store.ThreadMessages(r.Context(), thread.ID, 0)
	if err != nil {
		h.logger.Error("loading thread history failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		resp = append(resp, messageResponse{ID: m.ID, Sender: m.SenderName, Body: m.Body, CreatedAt: m.CreatedAt})
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"messages": resp})
}
