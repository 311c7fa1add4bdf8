// ABOUTME: Key-value interface for small per-session blobs
// ABOUTME: Decouples conversation-history storage from any request-session mechanism

package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no stored value
var ErrNotFound = errors.New("key not found")

// Store persists small keyed blobs across requests and connections.
// Keys are opaque to the store; callers compose them from a session
// identifier and a purpose-specific suffix.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store
	Close() error
}
