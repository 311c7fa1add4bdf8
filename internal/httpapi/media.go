// ABOUTME: Media library endpoints: upload, listing, likes, comments, visibility
// ABOUTME: Private items are indistinguishable from absent ones to non-owners

package httpapi

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/glimpse-chat/glimpse/internal/auth"
	"github.com/glimpse-chat/glimpse/internal/metrics"
	"github.com/glimpse-chat/glimpse/internal/store"
)

type mediaResponse struct {
	ID          string    `json:"id"`
	Owner       string    `json:"owner"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Public      bool      `json:"public"`
	Likes       int64     `json:"likes"`
	CreatedAt   time.Time `json:"created_at"`
}

func toMediaResponse(m *store.Media) mediaResponse {
	return mediaResponse{
		ID:          m.ID,
		Owner:       m.OwnerName,
		Title:       m.Title,
		Description: m.Description,
		ContentType: m.ContentType,
		Public:      m.Public,
		Likes:       m.Likes,
		CreatedAt:   m.CreatedAt,
	}
}

// visibleMedia loads the item and applies the visibility rule: private
// items return ErrNotFound to everyone but their owner, so a 404 never
// confirms existence.
func (h *Handler) visibleMedia(r *http.Request, id string) (*store.Media, error) {
	m, err := h.store.GetMedia(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if !m.Public {
		user := auth.UserFromContext(r.Context())
		if user == nil || user.ID != m.OwnerID {
			return nil, store.ErrNotFound
		}
	}
	return m, nil
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		h.writeError(w, http.StatusBadRequest, "upload too large or malformed")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		title = header.Filename
	}

	m := &store.Media{
		ID:          uuid.New().String(),
		OwnerID:     user.ID,
		Title:       title,
		Description: strings.TrimSpace(r.FormValue("description")),
		ContentType: header.Header.Get("Content-Type"),
		Public:      r.FormValue("public") != "false",
	}
	// Stored under the media ID, not the client's filename.
	m.FileName = m.ID + filepath.Ext(header.Filename)

	var categoryIDs []int64
	for _, slug := range r.Form["category"] {
		cat, err := h.store.GetCategoryBySlug(r.Context(), slug)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				h.writeError(w, http.StatusBadRequest, "unknown category: "+slug)
				return
			}
			h.writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		categoryIDs = append(categoryIDs, cat.ID)
	}

	if err := h.saveFile(file, m.FileName); err != nil {
		h.logger.Error("storing upload failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := h.store.CreateMedia(r.Context(), m, categoryIDs); err != nil {
		os.Remove(filepath.Join(h.mediaDir, m.FileName))
		h.logger.Error("persisting media failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	m.OwnerName = user.Username

	metrics.MediaUploads.Inc()
	h.logger.Info("media uploaded", "media_id", m.ID, "owner", user.Username, "public", m.Public)
	h.writeJSON(w, http.StatusCreated, toMediaResponse(m))
}

func (h *Handler) saveFile(src io.Reader, name string) error {
	if err := os.MkdirAll(h.mediaDir, 0755); err != nil {
		return err
	}
	dst, err := os.Create(filepath.Join(h.mediaDir, name))
	if err != nil {
		return err
	}
	defer dst.Close()
	_, err = io.Copy(dst, src)
	return err
}

func (h *Handler) handleListPublicMedia(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListPublicMedia(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		h.logger.Error("listing media failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.writeMediaList(w, items)
}

func (h *Handler) handleListOwnMedia(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	items, err := h.store.ListUserMedia(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("listing own media failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.writeMediaList(w, items)
}

func (h *Handler) writeMediaList(w http.ResponseWriter, items []*store.Media) {
	resp := make([]mediaResponse, 0, len(items))
	for _, m := range items {
		resp = append(resp, toMediaResponse(m))
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"media": resp})
}

func (h *Handler) handleGetMedia(w http.ResponseWriter, r *http.Request) {
	m, err := h.visibleMedia(r, r.PathValue("id"))
	if err != nil {
		h.mediaError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toMediaResponse(m))
}

func (h *Handler) handleMediaFile(w http.ResponseWriter, r *http.Request) {
	m, err := h.visibleMedia(r, r.PathValue("id"))
	if err != nil {
		h.mediaError(w, err)
		return
	}
	if m.ContentType != "" {
		w.Header().Set("Content-Type", m.ContentType)
	}
	http.ServeFile(w, r, filepath.Join(h.mediaDir, m.FileName))
}

func (h *Handler) handleDeleteMedia(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	m, err := h.visibleMedia(r, r.PathValue("id"))
	if err != nil {
		h.mediaError(w, err)
		return
	}
	if m.OwnerID != user.ID {
		h.writeError(w, http.StatusForbidden, "not the owner")
		return
	}

	if err := h.store.DeleteMedia(r.Context(), m.ID); err != nil {
		h.mediaError(w, err)
		return
	}
	if err := os.Remove(filepath.Join(h.mediaDir, m.FileName)); err != nil && !os.IsNotExist(err) {
		h.logger.Warn("removing media file failed", "error", err, "media_id", m.ID)
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type visibilityRequest struct {
	Public bool `json:"public"`
}

func (h *Handler) handleSetVisibility(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	m, err := h.visibleMedia(r, r.PathValue("id"))
	if err != nil {
		h.mediaError(w, err)
		return
	}
	if m.OwnerID != user.ID {
		h.writeError(w, http.StatusForbidden, "not the owner")
		return
	}

	var req visibilityRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.store.SetMediaVisibility(r.Context(), m.ID, req.Public); err != nil {
		h.mediaError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"id": m.ID, "public": req.Public})
}

func (h *Handler) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	m, err := h.visibleMedia(r, r.PathValue("id"))
	if err != nil {
		h.mediaError(w, err)
		return
	}

	liked, count, err := h.store.ToggleLike(r.Context(), m.ID, user.ID)
	if err != nil {
		h.logger.Error("toggling like failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"liked": liked, "likes": count})
}

type commentRequest struct {
	Body string `json:"body"`
}

type commentResponse struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) handleListComments(w http.ResponseWriter, r *http.Request) {
	m, err := h.visibleMedia(r, r.PathValue("id"))
	if err != nil {
		h.mediaError(w, err)
		return
	}

	comments, err := h.store.MediaComments(r.Context(), m.ID)
	if err != nil {
		h.logger.Error("listing comments failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := make([]commentResponse, 0, len(comments))
	for _, c := range comments {
		resp = append(resp, commentResponse{ID: c.ID, Author: c.AuthorName, Body: c.Body, CreatedAt: c.CreatedAt})
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"comments": resp})
}

func (h *Handler) handleAddComment(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	m, err := h.visibleMedia(r, r.PathValue("id"))
	if err != nil {
		h.mediaError(w, err)
		return
	}

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		h.writeError(w, http.StatusBadRequest, "body is required")
		return
	}

	c := &store.Comment{MediaID: m.ID, AuthorID: user.ID, Body: body}
	if err := h.store.AddComment(r.Context(), c); err != nil {
		h.logger.Error("adding comment failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.writeJSON(w, http.StatusCreated, commentResponse{ID: c.ID, Author: user.Username, Body: c.Body, CreatedAt: c.CreatedAt})
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.store.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("listing categories failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	type categoryResponse struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	resp := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		resp = append(resp, categoryResponse{Name: c.Name, Slug: c.Slug})
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"categories": resp})
}

// mediaError maps store errors onto API responses.
func (h *Handler) mediaError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "media not found")
		return
	}
	h.logger.Error("media operation failed", "error", err)
	h.writeError(w, http.StatusInternalServerError, "internal error")
}
