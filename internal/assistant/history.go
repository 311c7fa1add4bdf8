// ABOUTME: Role-tagged conversation history and its serialized form
// ABOUTME: Entries round-trip through JSON into the session blob store

package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/glimpse-chat/glimpse/internal/kv"
)

// Entry roles. Human turns come from the user; assistant turns are
// replies from the model.
const (
	RoleHuman     = "human"
	RoleAssistant = "assistant"
)

// Entry is one turn of a stored conversation.
type Entry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// historyKey composes the session-scoped storage key for one model's
// conversation. Each (session, model) pair gets its own history.
func historyKey(sessionKey, model string) string {
	return fmt.Sprintf("session:%s:chat_history_%s", sessionKey, model)
}

// loadHistory reads and deserializes the stored history, defaulting to
// empty when nothing is stored yet.
func loadHistory(ctx context.Context, store kv.Store, sessionKey, model string) ([]Entry, error) {
	raw, err := store.Get(ctx, historyKey(sessionKey, model))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading history: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decoding history: %w", err)
	}
	return entries, nil
}

// saveHistory serializes and persists the history under the same key.
func saveHistory(ctx context.Context, store kv.Store, sessionKey, model string, entries []Entry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	if err := store.Put(ctx, historyKey(sessionKey, model), raw); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}

// trimHistory keeps the most recent limit entries. A limit of zero or
// less means unbounded.
func trimHistory(entries []Entry, limit int) []Entry {
	if limit <= 0 || len(entries) <= limit {
		return entries
	}
	return entries[len(entries)-limit:]
}
