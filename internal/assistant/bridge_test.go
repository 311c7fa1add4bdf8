// ABOUTME: Tests for the conversation memory bridge
// ABOUTME: Covers prompt assembly, history persistence, failure isolation, and trimming

package assistant

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimpse-chat/glimpse/internal/kv"
	"github.com/glimpse-chat/glimpse/internal/ollama"
)

// fakeGateway records calls and returns a scripted reply or error.
type fakeGateway struct {
	reply         string
	err           error
	lastSent      []ollama.Message
	lastGenerated string
	calls         int
}

func (f *fakeGateway) Chat(_ context.Context, _ string, messages []ollama.Message) (string, error) {
	f.calls++
	f.lastSent = messages
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeGateway) Generate(_ context.Context, _ string, text string) (string, error) {
	f.calls++
	f.lastGenerated = text
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeGateway) DefaultModel() string { return "test-model" }

func TestConverse_AssemblesSystemHistoryAndUserTurn(t *testing.T) {
	store := kv.NewMemoryStore()
	gw := &fakeGateway{reply: "second answer"}
	b := New(store, gw, 0, nil)
	ctx := context.Background()

	// Seed one prior exchange
	gw.reply = "first answer"
	_, err := b.Converse(ctx, "sess", "test-model", "first question")
	require.NoError(t, err)

	gw.reply = "second answer"
	reply, err := b.Converse(ctx, "sess", "test-model", "second question")
	require.NoError(t, err)
	assert.Equal(t, "second answer", reply)

	// system + (human, assistant) + new user turn
	require.Len(t, gw.lastSent, 4)
	assert.Equal(t, ollama.RoleSystem, gw.lastSent[0].Role)
	assert.Equal(t, ollama.RoleUser, gw.lastSent[1].Role)
	assert.Equal(t, "first question", gw.lastSent[1].Content)
	assert.Equal(t, ollama.RoleAssistant, gw.lastSent[2].Role)
	assert.Equal(t, "first answer", gw.lastSent[2].Content)
	assert.Equal(t, ollama.RoleUser, gw.lastSent[3].Role)
	assert.Equal(t, "second question", gw.lastSent[3].Content)
}

func TestConverse_HistoryRoundTripsInOrder(t *testing.T) {
	store := kv.NewMemoryStore()
	gw := &fakeGateway{}
	b := New(store, gw, 0, nil)
	ctx := context.Background()

	const turns = 5
	for i := 0; i < turns; i++ {
		gw.reply = fmt.Sprintf("answer %d", i)
		_, err := b.Converse(ctx, "sess", "test-model", fmt.Sprintf("question %d", i))
		require.NoError(t, err)
	}

	history, err := b.History(ctx, "sess", "test-model")
	require.NoError(t, err)
	require.Len(t, history, turns*2)

	for i := 0; i < turns; i++ {
		assert.Equal(t, Entry{Role: RoleHuman, Content: fmt.Sprintf("question %d", i)}, history[i*2])
		assert.Equal(t, Entry{Role: RoleAssistant, Content: fmt.Sprintf("answer %d", i)}, history[i*2+1])
	}
}

func TestConverse_GatewayFailureLeavesHistoryUntouched(t *testing.T) {
	store := kv.NewMemoryStore()
	gw := &fakeGateway{reply: "hello"}
	b := New(store, gw, 0, nil)
	ctx := context.Background()

	_, err := b.Converse(ctx, "sess", "test-model", "hi")
	require.NoError(t, err)

	before, err := store.Get(ctx, historyKey("sess", "test-model"))
	require.NoError(t, err)

	gw.err = errors.New("connection refused")
	_, err = b.Converse(ctx, "sess", "test-model", "are you there?")
	require.ErrorIs(t, err, ErrGateway)

	after, err := store.Get(ctx, historyKey("sess", "test-model"))
	require.NoError(t, err)
	assert.Equal(t, before, after, "stored history must be byte-for-byte unchanged")
}

func TestConverse_SessionsAndModelsAreIsolated(t *testing.T) {
	store := kv.NewMemoryStore()
	gw := &fakeGateway{reply: "reply"}
	b := New(store, gw, 0, nil)
	ctx := context.Background()

	_, err := b.Converse(ctx, "sess-a", "model-1", "hello from a")
	require.NoError(t, err)

	histB, err := b.History(ctx, "sess-b", "model-1")
	require.NoError(t, err)
	assert.Empty(t, histB)

	histOtherModel, err := b.History(ctx, "sess-a", "model-2")
	require.NoError(t, err)
	assert.Empty(t, histOtherModel)
}

func TestConverse_TrimsToHistoryLimit(t *testing.T) {
	store := kv.NewMemoryStore()
	gw := &fakeGateway{}
	b := New(store, gw, 4, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		gw.reply = fmt.Sprintf("answer %d", i)
		_, err := b.Converse(ctx, "sess", "test-model", fmt.Sprintf("question %d", i))
		require.NoError(t, err)
	}

	history, err := b.History(ctx, "sess", "test-model")
	require.NoError(t, err)
	require.Len(t, history, 4)

	// Oldest turns dropped, most recent kept in order
	assert.Equal(t, "question 3", history[0].Content)
	assert.Equal(t, "answer 3", history[1].Content)
	assert.Equal(t, "question 4", history[2].Content)
	assert.Equal(t, "answer 4", history[3].Content)
}

func TestConverse_EmptyModelUsesGatewayDefault(t *testing.T) {
	store := kv.NewMemoryStore()
	gw := &fakeGateway{reply: "reply"}
	b := New(store, gw, 0, nil)
	ctx := context.Background()

	_, err := b.Converse(ctx, "sess", "", "hi")
	require.NoError(t, err)

	history, err := b.History(ctx, "sess", "test-model")
	require.NoError(t, err)
	assert.Len(t, history, 2, "history stored under the default model")
}

func TestReply_IsStateless(t *testing.T) {
	store := kv.NewMemoryStore()
	gw := &fakeGateway{reply: "one-shot"}
	b := New(store, gw, 0, nil)
	ctx := context.Background()

	reply, err := b.Reply(ctx, "test-model", "hi")
	require.NoError(t, err)
	assert.Equal(t, "one-shot", reply)

	// Single-turn generate, no system prompt or history
	assert.Equal(t, "hi", gw.lastGenerated)
	assert.Nil(t, gw.lastSent, "stateless path must not assemble a chat prompt")

	history, err := b.History(ctx, "sess", "test-model")
	require.NoError(t, err)
	assert.Empty(t, history, "stateless path must not write history")
}

func TestReply_GatewayFailure(t *testing.T) {
	b := New(kv.NewMemoryStore(), &fakeGateway{err: errors.New("boom")}, 0, nil)

	_, err := b.Reply(context.Background(), "test-model", "hi")
	assert.ErrorIs(t, err, ErrGateway)
}

func TestClearHistory_RemovesOnlyThatModel(t *testing.T) {
	store := kv.NewMemoryStore()
	gw := &fakeGateway{reply: "reply"}
	b := New(store, gw, 0, nil)
	ctx := context.Background()

	_, err := b.Converse(ctx, "sess", "model-1", "hi")
	require.NoError(t, err)
	_, err = b.Converse(ctx, "sess", "model-2", "hi")
	require.NoError(t, err)

	require.NoError(t, b.ClearHistory(ctx, "sess", "model-1"))

	hist1, err := b.History(ctx, "sess", "model-1")
	require.NoError(t, err)
	assert.Empty(t, hist1)

	hist2, err := b.History(ctx, "sess", "model-2")
	require.NoError(t, err)
	assert.Len(t, hist2, 2)
}

func TestReplyName(t *testing.T) {
	assert.Equal(t, "AI Assistant (llama3)", ReplyName("llama3"))
	assert.Equal(t, "AI Assistant", PlainReplyName)
}
