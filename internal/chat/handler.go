// ABOUTME: WebSocket endpoints for the public room and private threads
// ABOUTME: Wires connections to presence, fan-out, persistence, and the assistant

package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/glimpse-chat/glimpse/internal/assistant"
	"github.com/glimpse-chat/glimpse/internal/auth"
	"github.com/glimpse-chat/glimpse/internal/metrics"
	"github.com/glimpse-chat/glimpse/internal/presence"
	"github.com/glimpse-chat/glimpse/internal/room"
	"github.com/glimpse-chat/glimpse/internal/store"
)

// ThreadStore is what private chat needs from the persistence layer.
type ThreadStore interface {
	ResolveThread(ctx context.Context, userA, userB int64) (*store.Thread, error)
	SaveMessage(ctx context.Context, msg *store.Message) error
}

// Assistant is what the public room needs from the LLM bridge.
type Assistant interface {
	Converse(ctx context.Context, sessionKey, model, userText string) (string, error)
	DefaultModel() string
}

// inboundFrame is the one frame shape clients send: a chat line.
type inboundFrame struct {
	Message string `json:"message"`
}

// Handler serves the WebSocket chat endpoints.
type Handler struct {
	auth      *auth.Manager
	threads   ThreadStore
	assistant Assistant
	presence  *presence.Tracker
	rooms     *room.Broadcaster
	upgrader  websocket.Upgrader
	logger    *slog.Logger
}

// NewHandler creates the chat handler. Pass nil logger for default.
func NewHandler(authMgr *auth.Manager, threads ThreadStore, asst Assistant, pres *presence.Tracker, rooms *room.Broadcaster, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		auth:      authMgr,
		threads:   threads,
		assistant: asst,
		presence:  pres,
		rooms:     rooms,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger.With("component", "chat"),
	}
}

// RegisterRoutes attaches the WebSocket endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/chat", h.handlePublic)
	mux.HandleFunc("GET /ws/chat/{userID}", h.handlePrivate)
}

// handlePublic joins an authenticated user to the shared room: presence
// is updated, a fresh user list goes out to everyone, and each inbound
// frame either fans out to the room or, for "@bot" messages, goes to the
// assistant with the reply delivered to the requester alone.
func (h *Handler) handlePublic(w http.ResponseWriter, r *http.Request) {
	user, sess, err := h.auth.FromRequest(r)
	if err != nil {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", "error", err)
		return
	}

	logger := h.logger.With("username", user.Username, "room", "public")
	c := newClient(conn, logger)

	subID := h.rooms.Join(room.PublicKey, c.send)
	h.presence.Add(user.Username)
	metrics.ActiveConnections.WithLabelValues("public").Inc()

	c.onClose = func() {
		h.rooms.Leave(room.PublicKey, subID)
		h.presence.Remove(user.Username)
		h.rooms.Publish(room.PublicKey, room.UserList(h.presence.Snapshot()))
		metrics.ActiveConnections.WithLabelValues("public").Dec()
		logger.Info("left public room")
	}

	logger.Info("joined public room")
	h.rooms.Publish(room.PublicKey, room.UserList(h.presence.Snapshot()))

	go c.writePump()
	c.readPump(func(data []byte) {
		h.handlePublicFrame(r.Context(), c, user, sess, data)
	})
}

func (h *Handler) handlePublicFrame(ctx context.Context, c *client, user *store.User, sess *store.Session, data []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil || frame.Message == "" {
		metrics.DroppedFrames.Inc()
		c.logger.Warn("dropping malformed frame", "error", err)
		return
	}

	if query, ok := ParseBotQuery(frame.Message); ok {
		h.handleBotQuery(ctx, c, user, sess, frame.Message, query)
		return
	}

	metrics.MessagesBroadcast.WithLabelValues("public").Inc()
	h.rooms.Publish(room.PublicKey, room.ChatMessage(user.Username, frame.Message))
}

// handleBotQuery runs an assistant turn. The user's own message is
// echoed back to them, then the reply (or a fixed fallback when the
// gateway fails) is delivered to the requester only; the rest of the
// room never sees the exchange.
func (h *Handler) handleBotQuery(ctx context.Context, c *client, user *store.User, sess *store.Session, original, query string) {
	c.deliver(room.ChatMessage(user.Username, original))

	start := time.Now()
	reply, err := h.assistant.Converse(ctx, sess.ID, "", query)
	metrics.AssistantLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.AssistantRequests.WithLabelValues("error").Inc()
		c.logger.Error("assistant query failed", "error", err)
		c.deliver(room.ChatMessage(assistant.PlainReplyName, assistant.ConverseFallback))
		return
	}

	metrics.AssistantRequests.WithLabelValues("ok").Inc()
	c.deliver(room.ChatMessage(assistant.ReplyName(h.assistant.DefaultModel()), reply))
}

// handlePrivate connects an authenticated user to their thread with the
// peer named in the path. Messages persist before they fan out, so a
// message is never broadcast that wouldn't survive a rejoin. "@bot"
// queries go to the assistant instead and reach the requester alone.
func (h *Handler) handlePrivate(w http.ResponseWriter, r *http.Request) {
	user, sess, err := h.auth.FromRequest(r)
	if err != nil {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	peerID, err := strconv.ParseInt(r.PathValue("userID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}
	if peerID == user.ID {
		http.Error(w, "cannot chat with yourself", http.StatusBadRequest)
		return
	}

	thread, err := h.threads.ResolveThread(r.Context(), user.ID, peerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		h.logger.Error("resolving thread failed", "error", err, "peer_id", peerID)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", "error", err)
		return
	}

	roomKey := room.PrivateKey(user.ID, peerID)
	logger := h.logger.With("username", user.Username, "room", roomKey)
	c := newClient(conn, logger)

	subID := h.rooms.Join(roomKey, c.send)
	metrics.ActiveConnections.WithLabelValues("private").Inc()

	c.onClose = func() {
		h.rooms.Leave(roomKey, subID)
		metrics.ActiveConnections.WithLabelValues("private").Dec()
		logger.Info("left private thread")
	}

	logger.Info("joined private thread", "thread_id", thread.ID)

	go c.writePump()
	c.readPump(func(data []byte) {
		h.handlePrivateFrame(r.Context(), c, user, sess, thread, roomKey, data)
	})
}

func (h *Handler) handlePrivateFrame(ctx context.Context, c *client, user *store.User, sess *store.Session, thread *store.Thread, roomKey string, data []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil || frame.Message == "" {
		metrics.DroppedFrames.Inc()
		c.logger.Warn("dropping malformed frame", "error", err)
		return
	}

	// Bot queries stay between the requester and the assistant: the peer
	// never sees them and nothing is persisted to the thread.
	if query, ok := ParseBotQuery(frame.Message); ok {
		h.handleBotQuery(ctx, c, user, sess, frame.Message, query)
		return
	}

	msg := &store.Message{
		ThreadID: thread.ID,
		SenderID: user.ID,
		Body:     frame.Message,
	}
	if err := h.threads.SaveMessage(ctx, msg); err != nil {
		// Not persisted means not broadcast; the sender can retry.
		c.logger.Error("persisting message failed", "error", err, "thread_id", thread.ID)
		return
	}

	metrics.MessagesBroadcast.WithLabelValues("private").Inc()
	h.rooms.Publish(roomKey, room.ChatMessage(user.Username, frame.Message))
}
