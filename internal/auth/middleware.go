// ABOUTME: Session cookie handling and HTTP middleware for authentication
// ABOUTME: Puts the resolved user and session on the request context

package auth

import (
	"context"
	"net/http"

	"github.com/glimpse-chat/glimpse/internal/store"
)

// SessionCookieName is the cookie holding the opaque session ID.
const SessionCookieName = "glimpse_session"

type contextKey string

const (
	userContextKey    contextKey = "auth.user"
	sessionContextKey contextKey = "auth.session"
)

// SetSessionCookie writes the session cookie for a fresh login.
func SetSessionCookie(w http.ResponseWriter, r *http.Request, sess *store.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest resolves the request's session cookie to a user. Returns
// store.ErrNotFound when there is no cookie or the session is unknown
// or expired.
func (m *Manager) FromRequest(r *http.Request) (*store.User, *store.Session, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil, store.ErrNotFound
	}
	return m.Resolve(r.Context(), cookie.Value)
}

// RequireUser wraps a handler to require a valid session, rejecting
// anonymous requests with 401.
func (m *Manager) RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, sess, err := m.FromRequest(r)
		if err != nil {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		next(w, r.WithContext(withIdentity(r.Context(), user, sess)))
	}
}

// OptionalUser wraps a handler, attaching the user when a valid session
// is present and passing the request through anonymously otherwise.
func (m *Manager) OptionalUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if user, sess, err := m.FromRequest(r); err == nil {
			r = r.WithContext(withIdentity(r.Context(), user, sess))
		}
		next(w, r)
	}
}

func withIdentity(ctx context.Context, user *store.User, sess *store.Session) context.Context {
	ctx = context.WithValue(ctx, userContextKey, user)
	return context.WithValue(ctx, sessionContextKey, sess)
}

// UserFromContext returns the authenticated user, or nil for anonymous
// requests.
func UserFromContext(ctx context.Context) *store.User {
	user, _ := ctx.Value(userContextKey).(*store.User)
	return user
}

// SessionFromContext returns the request's session, or nil.
func SessionFromContext(ctx context.Context) *store.Session {
	sess, _ := ctx.Value(sessionContextKey).(*store.Session)
	return sess
}
