// ABOUTME: Conversation memory bridge between sessions and the LLM gateway
// ABOUTME: Loads history, assembles the prompt, and persists both turns after success

package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/glimpse-chat/glimpse/internal/kv"
	"github.com/glimpse-chat/glimpse/internal/ollama"
)

// systemPrompt is the fixed instruction prepended to every conversation.
const systemPrompt = "You are a helpful and friendly AI assistant. Provide clear and concise answers."

// Fixed user-facing fallback strings for gateway failures.
const (
	ConverseFallback  = "Sorry, I had a problem processing that."
	StatelessFallback = "Sorry, I'm having trouble connecting to the AI service."
)

// ReplyName formats the username shown on successful assistant replies.
// Fallback errors use PlainReplyName instead, so users can tell a real
// answer from an error notice.
func ReplyName(model string) string {
	return fmt.Sprintf("AI Assistant (%s)", model)
}

// PlainReplyName is the username on fallback error messages.
const PlainReplyName = "AI Assistant"

// ErrGateway marks failures of the LLM backend (unreachable, non-2xx,
// malformed body). Callers map it to a fixed fallback message; anything
// else is an internal storage failure.
var ErrGateway = errors.New("llm gateway failure")

// Gateway is what the bridge needs from the LLM client.
type Gateway interface {
	Chat(ctx context.Context, model string, messages []ollama.Message) (string, error)
	Generate(ctx context.Context, model, text string) (string, error)
	DefaultModel() string
}

// Bridge manages session-scoped conversation state around the gateway.
type Bridge struct {
	store        kv.Store
	gateway      Gateway
	historyLimit int
	logger       *slog.Logger
}

// New creates a bridge. historyLimit bounds stored entries per
// (session, model) pair; zero or negative means unbounded. Pass nil
// logger for default.
func New(store kv.Store, gateway Gateway, historyLimit int, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		store:        store,
		gateway:      gateway,
		historyLimit: historyLimit,
		logger:       logger.With("component", "assistant"),
	}
}

// DefaultModel exposes the gateway's configured default.
func (b *Bridge) DefaultModel() string {
	return b.gateway.DefaultModel()
}

// Converse runs one stateful turn: prior history for (sessionKey, model)
// is loaded, the prompt is assembled as system instruction + history +
// the new user turn, and on success both new turns are appended and
// persisted. On gateway failure the stored history is left untouched and
// the returned error matches ErrGateway.
func (b *Bridge) Converse(ctx context.Context, sessionKey, model, userText string) (string, error) {
	if model == "" {
		model = b.gateway.DefaultModel()
	}

	history, err := loadHistory(ctx, b.store, sessionKey, model)
	if err != nil {
		return "", err
	}

	messages := make([]ollama.Message, 0, len(history)+2)
	messages = append(messages, ollama.Message{Role: ollama.RoleSystem, Content: systemPrompt})
	for _, entry := range history {
		role := ollama.RoleUser
		if entry.Role == RoleAssistant {
			role = ollama.RoleAssistant
		}
		messages = append(messages, ollama.Message{Role: role, Content: entry.Content})
	}
	messages = append(messages, ollama.Message{Role: ollama.RoleUser, Content: userText})

	reply, err := b.gateway.Chat(ctx, model, messages)
	if err != nil {
		b.logger.Error("gateway call failed",
			"error", err,
			"model", model)
		return "", fmt.Errorf("%w: %v", ErrGateway, err)
	}

	history = append(history,
		Entry{Role: RoleHuman, Content: userText},
		Entry{Role: RoleAssistant, Content: reply},
	)
	history = trimHistory(history, b.historyLimit)

	if err := saveHistory(ctx, b.store, sessionKey, model, history); err != nil {
		// The user already has a real reply; losing one history write is
		// recoverable, dropping the reply is not.
		b.logger.Error("persisting history failed",
			"error", err,
			"model", model)
	}

	return reply, nil
}

// Reply runs one stateless turn with no history read or write.
func (b *Bridge) Reply(ctx context.Context, model, userText string) (string, error) {
	if model == "" {
		model = b.gateway.DefaultModel()
	}

	reply, err := b.gateway.Generate(ctx, model, userText)
	if err != nil {
		b.logger.Error("gateway call failed",
			"error", err,
			"model", model)
		return "", fmt.Errorf("%w: %v", ErrGateway, err)
	}
	return reply, nil
}

// ClearHistory drops the stored conversation for (sessionKey, model).
func (b *Bridge) ClearHistory(ctx context.Context, sessionKey, model string) error {
	if model == "" {
		model = b.gateway.DefaultModel()
	}
	return b.store.Delete(ctx, historyKey(sessionKey, model))
}

// History returns the stored entries for (sessionKey, model), oldest first.
func (b *Bridge) History(ctx context.Context, sessionKey, model string) ([]Entry, error) {
	if model == "" {
		model = b.gateway.DefaultModel()
	}
	return loadHistory(ctx, b.store, sessionKey, model)
}
