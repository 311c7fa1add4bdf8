// ABOUTME: Tests for assistant-addressed message detection
// ABOUTME: Covers case folding, whitespace, and near-miss prefixes

package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBotQuery(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantQuery string
		wantOK    bool
	}{
		{"plain prefix", "@bot what is Go?", "what is Go?", true},
		{"uppercase prefix", "@BOT what is Go?", "what is Go?", true},
		{"mixed case prefix", "@Bot hello", "hello", true},
		{"leading whitespace", "   @bot hi", "hi", true},
		{"query keeps its case", "@bot What Is GO?", "What Is GO?", true},
		{"bare mention without space", "@bot", "", false},
		{"prefix mid-message", "hey @bot hi", "", false},
		{"ordinary message", "hello room", "", false},
		{"empty", "", "", false},
		{"prefix only", "@bot ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, ok := ParseBotQuery(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantQuery, query)
		})
	}
}
