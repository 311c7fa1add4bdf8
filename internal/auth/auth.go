// ABOUTME: Account registration and login with bcrypt password hashing
// ABOUTME: Sessions are opaque server-side records referenced by a cookie

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/glimpse-chat/glimpse/internal/store"
)

// SessionDuration is how long a login session stays valid.
const SessionDuration = 7 * 24 * time.Hour

const minPasswordLength = 8

// ErrInvalidCredentials covers both unknown usernames and wrong
// passwords, so a login failure doesn't reveal which one it was.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Store is what the manager needs from the persistence layer.
type Store interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*store.User, error)
	GetUser(ctx context.Context, id int64) (*store.User, error)
	GetUserByUsername(ctx context.Context, username string) (*store.User, error)
	CreateSession(ctx context.Context, sess *store.Session) error
	GetSession(ctx context.Context, id string) (*store.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// Manager handles registration, login, and session resolution.
type Manager struct {
	store  Store
	logger *slog.Logger
}

// NewManager creates an auth manager. Pass nil logger for default.
func NewManager(s Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:  s,
		logger: logger.With("component", "auth"),
	}
}

// Register creates a new account with a bcrypt-hashed password.
// Returns store.ErrDuplicateUser if the username is taken.
func (m *Manager) Register(ctx context.Context, username, password string) (*store.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user, err := m.store.CreateUser(ctx, username, string(hash))
	if err != nil {
		return nil, err
	}

	m.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login verifies the password and opens a new session. Returns
// ErrInvalidCredentials on unknown username or password mismatch.
func (m *Manager) Login(ctx context.Context, username, password string) (*store.User, *store.Session, error) {
	user, err := m.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	now := time.Now()
	sess := &store.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(SessionDuration),
	}
	if err := m.store.CreateSession(ctx, sess); err != nil {
		return nil, nil, fmt.Errorf("creating session: %w", err)
	}

	m.logger.Info("user logged in", "user_id", user.ID, "username", user.Username)
	return user, sess, nil
}

// Logout deletes the session. Unknown sessions are a no-op.
func (m *Manager) Logout(ctx context.Context, sessionID string) error {
	return m.store.DeleteSession(ctx, sessionID)
}

// Resolve maps a session ID to its user. Returns store.ErrNotFound for
// unknown or expired sessions.
func (m *Manager) Resolve(ctx context.Context, sessionID string) (*store.User, *store.Session, error) {
	sess, err := m.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	user, err := m.store.GetUser(ctx, sess.UserID)
	if err != nil {
		return nil, nil, err
	}
	return user, sess, nil
}
