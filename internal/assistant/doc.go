// Package assistant bridges user sessions to the LLM gateway with
// per-session conversational memory.
//
// # Conversation Memory
//
// Each (session, model) pair owns an ordered history of role-tagged
// entries (human/assistant), serialized as JSON into the kv store under a
// session-scoped key. Converse loads that history, assembles a prompt of
// the fixed system instruction plus the full prior history plus the new
// user turn, and appends both new turns only after the gateway call
// succeeds. A failed call therefore leaves stored history byte-for-byte
// unchanged.
//
// History is bounded by a sliding window (history_limit entries, newest
// kept); without a bound a long-lived session would grow its stored blob
// and its prompt without limit.
//
// # Stateless Variant
//
// Reply sends a single user turn with no history read or write. It backs
// the anonymous chatbot surface.
//
// # Failure Mapping
//
// Gateway failures are wrapped in ErrGateway. Callers surface the fixed
// fallback strings (ConverseFallback, StatelessFallback) under the plain
// "AI Assistant" name so users can tell a real answer from an error
// notice; full detail stays in the server log.
package assistant
