// ABOUTME: Tests for the Ollama HTTP client
// ABOUTME: Uses httptest servers to cover success, fallback, and error paths

package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "default-model", 5*time.Second, nil)
}

func TestListModels_ReturnsNamesFromTags(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/tags", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]string{
				{"name": "llama3"},
				{"name": "mistral"},
			},
		})
	}))

	models := c.ListModels(context.Background())
	assert.Equal(t, []string{"llama3", "mistral"}, models)
}

func TestListModels_FallsBackOnServerError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	assert.Equal(t, []string{"default-model"}, c.ListModels(context.Background()))
}

func TestListModels_FallsBackOnMalformedBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))

	assert.Equal(t, []string{"default-model"}, c.ListModels(context.Background()))
}

func TestListModels_FallsBackOnUnreachableHost(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "default-model", 200*time.Millisecond, nil)

	assert.Equal(t, []string{"default-model"}, c.ListModels(context.Background()))
}

func TestListModels_FallsBackOnEmptyList(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"models": []any{}})
	}))

	assert.Equal(t, []string{"default-model"}, c.ListModels(context.Background()))
}

func TestChat_SendsMessagesAndReturnsReply(t *testing.T) {
	var gotBody map[string]any
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"content": "  hello back  "},
		})
	}))

	reply, err := c.Chat(context.Background(), "llama3", []Message{
		{Role: RoleSystem, Content: "be helpful"},
		{Role: RoleUser, Content: "hi"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello back", reply, "reply is trimmed")

	assert.Equal(t, "llama3", gotBody["model"])
	assert.Equal(t, false, gotBody["stream"])
	msgs, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
}

func TestChat_DefaultsModelWhenEmpty(t *testing.T) {
	var gotModel string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotModel, _ = body["model"].(string)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"content": "ok"},
		})
	}))

	_, err := c.Chat(context.Background(), "", []Message{{Role: RoleUser, Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "default-model", gotModel)
}

func TestChat_ErrorOnNon2xx(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))

	_, err := c.Chat(context.Background(), "nope", []Message{{Role: RoleUser, Content: "hi"}})
	assert.Error(t, err)
}

func TestGenerate_SendsSingleUserTurn(t *testing.T) {
	var gotBody map[string]any
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"content": "one-shot reply"},
		})
	}))

	reply, err := c.Generate(context.Background(), "llama3", "just this")
	require.NoError(t, err)
	assert.Equal(t, "one-shot reply", reply)

	msgs, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 1)
	turn, ok := msgs[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, RoleUser, turn["role"])
	assert.Equal(t, "just this", turn["content"])
}

func TestChat_ErrorOnMalformedBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not valid"))
	}))

	_, err := c.Chat(context.Background(), "llama3", []Message{{Role: RoleUser, Content: "hi"}})
	assert.Error(t, err)
}
