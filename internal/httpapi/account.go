// ABOUTME: Account endpoints: signup, login, logout, and the user directory
// ABOUTME: Login sets the session cookie; logout invalidates and clears it

package httpapi

import (
	"errors"
	"net/http"

	"github.com/glimpse-chat/glimpse/internal/auth"
	"github.com/glimpse-chat/glimpse/internal/store"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, err := h.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUser) {
			h.writeError(w, http.StatusConflict, "username already taken")
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Fresh accounts are logged in immediately.
	if _, sess, err := h.auth.Login(r.Context(), req.Username, req.Password); err == nil {
		auth.SetSessionCookie(w, r, sess)
	} else {
		h.logger.Error("post-signup login failed", "error", err)
	}

	h.writeJSON(w, http.StatusCreated, userResponse{ID: user.ID, Username: user.Username})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, sess, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.writeError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		h.logger.Error("login failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	auth.SetSessionCookie(w, r, sess)
	h.writeJSON(w, http.StatusOK, userResponse{ID: user.ID, Username: user.Username})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.SessionCookieName); err == nil {
		if err := h.auth.Logout(r.Context(), cookie.Value); err != nil {
			h.logger.Error("logout failed", "error", err)
		}
	}
	auth.ClearSessionCookie(w, r)
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// handleListUsers returns everyone except the requester, sorted by
// username. It backs the "start a private chat" directory.
func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	users, err := h.store.ListUsers(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("listing users failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, userResponse{ID: u.ID, Username: u.Username})
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"users": resp})
}
