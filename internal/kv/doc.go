// Package kv provides a small key-value store abstraction for per-session
// blobs, primarily the assistant's serialized conversation history.
//
// Two implementations are provided:
//
//   - RedisStore: backed by Redis, survives restarts
//   - MemoryStore: process-local, used in tests and redis-less deployments
//
// Keys are opaque strings; callers compose them from a session identifier
// plus a purpose-specific suffix so the same store can hold unrelated
// session state without collisions.
package kv
