// ABOUTME: Shared test harness for the JSON API: real store and auth, fake LLM bridge
// ABOUTME: Helpers for JSON and multipart requests with optional session cookies

package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/glimpse-chat/glimpse/internal/auth"
	"github.com/glimpse-chat/glimpse/internal/store"
)

type fakeBridge struct {
	reply        string
	err          error
	lastSession  string
	lastModel    string
	lastText     string
	statelessHit bool
	clearedKey   string
}

func (f *fakeBridge) Converse(_ context.Context, sessionKey, model, userText string) (string, error) {
	f.lastSession, f.lastModel, f.lastText = sessionKey, model, userText
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeBridge) Reply(_ context.Context, model, userText string) (string, error) {
	f.statelessHit = true
	f.lastModel, f.lastText = model, userText
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeBridge) ClearHistory(_ context.Context, sessionKey, model string) error {
	f.clearedKey = sessionKey + "/" + model
	return nil
}

func (f *fakeBridge) DefaultModel() string { return "test-model" }

type fakeModels struct{ models []string }

func (f *fakeModels) ListModels(context.Context) []string { return f.models }

type apiEnv struct {
	server   *httptest.Server
	store    *store.SQLiteStore
	auth     *auth.Manager
	bridge   *fakeBridge
	mediaDir string
}

func setupAPI(t *testing.T) *apiEnv {
	t.Helper()

	dir := t.TempDir()
	s, err := store.NewSQLiteStore(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	authMgr := auth.NewManager(s, nil)
	bridge := &fakeBridge{reply: "assistant reply"}
	mediaDir := filepath.Join(dir, "media")

	h := NewHandler(s, authMgr, bridge, &fakeModels{models: []string{"llama3", "mistral"}}, mediaDir, 8<<20, nil)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &apiEnv{server: srv, store: s, auth: authMgr, bridge: bridge, mediaDir: mediaDir}
}

func (e *apiEnv) registerAndLogin(t *testing.T, username string) (*store.User, string) {
	t.Helper()
	_, err := e.auth.Register(context.Background(), username, "password-"+username)
	require.NoError(t, err)
	user, sess, err := e.auth.Login(context.Background(), username, "password-"+username)
	require.NoError(t, err)
	return user, sess.ID
}

// do sends a request with an optional session cookie and decodes the
// JSON response body into out (when non-nil).
func (e *apiEnv) do(t *testing.T, method, path, sessionID string, body any, out any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: sessionID})
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

// upload posts a multipart file with the given form fields.
func (e *apiEnv) upload(t *testing.T, sessionID, filename string, content []byte, fields map[string][]string, out any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	for key, values := range fields {
		for _, v := range values {
			require.NoError(t, mw.WriteField(key, v))
		}
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, e.server.URL+"/api/media", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: sessionID})
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}
