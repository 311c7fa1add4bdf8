// ABOUTME: HTTP client for an Ollama-compatible text-generation backend
// ABOUTME: Wraps GET /api/tags and non-streaming POST /api/chat with explicit errors

package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Message is a single turn in a chat request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat roles understood by the backend.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Client talks to an Ollama server over HTTP.
type Client struct {
	host         string
	defaultModel string
	httpClient   *http.Client
	logger       *slog.Logger
}

// NewClient creates a client for the given host (e.g. "http://localhost:11434").
// The timeout bounds every request; pass nil logger for default.
func NewClient(host, defaultModel string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		host:         strings.TrimRight(host, "/"),
		defaultModel: defaultModel,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       logger.With("component", "ollama"),
	}
}

// DefaultModel returns the configured fallback model name.
func (c *Client) DefaultModel() string {
	return c.defaultModel
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// ListModels fetches the available model names from GET /api/tags.
// On any failure it falls back to the single configured default model,
// so callers always get a usable, non-empty list.
func (c *Client) ListModels(ctx context.Context) []string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/api/tags", nil)
	if err != nil {
		return []string{c.defaultModel}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("model listing failed, using default model", "error", err)
		return []string{c.defaultModel}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("model listing failed, using default model", "status", resp.StatusCode)
		return []string{c.defaultModel}
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		c.logger.Warn("model listing returned malformed body, using default model", "error", err)
		return []string{c.defaultModel}
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	if len(names) == 0 {
		return []string{c.defaultModel}
	}
	return names
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

// Chat sends the message sequence to POST /api/chat with streaming disabled
// and returns the assistant's reply text. Non-2xx responses and malformed
// bodies are errors; the caller decides how to surface them.
func (c *Client) Chat(ctx context.Context, model string, messages []Message) (string, error) {
	if model == "" {
		model = c.defaultModel
	}

	body, err := json.Marshal(chatRequest{
		Model:    model,
		Messages: messages,
		Stream:   false,
	})
	if err != nil {
		return "", fmt.Errorf("encoding chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling chat endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Read a little of the body for the server-side log
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error("chat endpoint returned error status",
			"status", resp.StatusCode,
			"model", model,
			"body", string(snippet))
		return "", fmt.Errorf("chat endpoint returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding chat response: %w", err)
	}

	return strings.TrimSpace(parsed.Message.Content), nil
}

// Generate sends a single user turn with no prior context. This is the
// stateless path used by the anonymous chatbot surface.
func (c *Client) Generate(ctx context.Context, model, text string) (string, error) {
	return c.Chat(ctx, model, []Message{{Role: RoleUser, Content: text}})
}
