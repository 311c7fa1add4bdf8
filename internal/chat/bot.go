// ABOUTME: Detection of assistant-addressed messages in the public room
// ABOUTME: A message starting with "@bot " (any case) is a query for the assistant

package chat

import "strings"

const botPrefix = "@bot "

// ParseBotQuery reports whether a chat message addresses the assistant
// and, if so, returns the query text following the prefix. The prefix
// match is case-insensitive after trimming surrounding whitespace; the
// query keeps its original casing. A bare "@bot" with no trailing space
// is an ordinary message.
func ParseBotQuery(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < len(botPrefix) {
		return "", false
	}
	if !strings.EqualFold(trimmed[:len(botPrefix)], botPrefix) {
		return "", false
	}
	return trimmed[len(botPrefix):], true
}
