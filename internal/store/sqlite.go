// ABOUTME: SQLite-backed persistence using modernc.org/sqlite
// ABOUTME: Users, sessions, private threads, and messages with schema creation on open

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the single persistent store for accounts, private chat,
// and the media library.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) the database at the given path.
// The schema is created if it doesn't exist. Parent directories are
// created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TEXT NOT NULL,
			expires_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS threads (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			low_user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			high_user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TEXT NOT NULL,
			UNIQUE(low_user_id, high_user_id),
			CHECK(low_user_id < high_user_id)
		);

		CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			thread_id INTEGER NOT NULL REFERENCES threads(id) ON DELETE CASCADE,
			sender_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			body TEXT NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_messages_thread_time
			ON messages(thread_id, created_at);

		CREATE TABLE IF NOT EXISTS categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			slug TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS media (
			id TEXT PRIMARY KEY,
			owner_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			file_name TEXT NOT NULL,
			content_type TEXT NOT NULL DEFAULT '',
			public INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_media_owner ON media(owner_id);

		CREATE TABLE IF NOT EXISTS media_categories (
			media_id TEXT NOT NULL REFERENCES media(id) ON DELETE CASCADE,
			category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
			PRIMARY KEY (media_id, category_id)
		);

		CREATE TABLE IF NOT EXISTS likes (
			media_id TEXT NOT NULL REFERENCES media(id) ON DELETE CASCADE,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TEXT NOT NULL,
			PRIMARY KEY (media_id, user_id)
		);

		CREATE TABLE IF NOT EXISTS comments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			media_id TEXT NOT NULL REFERENCES media(id) ON DELETE CASCADE,
			author_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			body TEXT NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_comments_media_time
			ON comments(media_id, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Ping verifies the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// isConstraintViolation checks if the error is a SQLite UNIQUE constraint violation
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "constraint failed")
}

// --- Users ---

// CreateUser inserts a new account. Returns ErrDuplicateUser if the
// username is taken.
func (s *SQLiteStore) CreateUser(ctx context.Context, username, passwordHash string) (*User, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)`,
		username, passwordHash, now.Format(time.RFC3339))
	if err != nil {
		if isConstraintViolation(err) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("inserting user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading user id: %w", err)
	}

	s.logger.Debug("created user", "id", id, "username", username)
	return &User{ID: id, Username: username, PasswordHash: passwordHash, CreatedAt: now}, nil
}

// GetUser retrieves a user by ID. Returns ErrNotFound if absent.
func (s *SQLiteStore) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = ?`, id))
}

// GetUserByUsername retrieves a user by username. Returns ErrNotFound if absent.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username))
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*User, error) {
	var u User
	var createdAt string
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	u.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &u, nil
}

// ListUsers returns all users ordered by username. excludeID skips one
// user (the requester); pass zero to include everyone.
func (s *SQLiteStore) ListUsers(ctx context.Context, excludeID int64) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users
		 WHERE id != ? ORDER BY username`, excludeID)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		var u User
		var createdAt string
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		users = append(users, &u)
	}
	return users, rows.Err()
}

// --- Sessions ---

// CreateSession persists a login session.
func (s *SQLiteStore) CreateSession(ctx context.Context, sess *Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		sess.ID, sess.UserID,
		sess.CreatedAt.UTC().Format(time.RFC3339),
		sess.ExpiresAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID. Returns ErrNotFound if absent
// or expired.
func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*Session, error) {
	var sess Session
	var createdAt, expiresAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at, expires_at FROM sessions WHERE id = ?`, id).
		Scan(&sess.ID, &sess.UserID, &createdAt, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}

	sess.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	sess.ExpiresAt, err = time.Parse(time.RFC3339, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("parsing expires_at: %w", err)
	}

	if time.Now().After(sess.ExpiresAt) {
		return nil, ErrNotFound
	}
	return &sess, nil
}

// DeleteSession removes a session. Deleting an absent session is not an error.
func (s *SQLiteStore) DeleteSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// PurgeExpiredSessions removes all sessions past their expiry.
func (s *SQLiteStore) PurgeExpiredSessions(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < ?`,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("purging sessions: %w", err)
	}
	return nil
}

// --- Threads ---

// ResolveThread finds or creates the private thread between two users.
// The pair is normalized so argument order doesn't matter; concurrent
// resolution for the same pair converges on one thread. Returns
// ErrNotFound if either user doesn't exist.
func (s *SQLiteStore) ResolveThread(ctx context.Context, userA, userB int64) (*Thread, error) {
	if userA == userB {
		return nil, fmt.Errorf("cannot open a thread with yourself")
	}
	low, high := userA, userB
	if low > high {
		low, high = high, low
	}

	if thread, err := s.threadByPair(ctx, low, high); err == nil {
		return thread, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	// Both ends must exist before we create anything.
	for _, id := range []int64{low, high} {
		if _, err := s.GetUser(ctx, id); err != nil {
			return nil, err
		}
	}

	err := s.createThread(ctx, low, high)
	if errors.Is(err, ErrDuplicateThread) {
		// Lost the race to a concurrent resolver; the winner's row is ours too.
		return s.threadByPair(ctx, low, high)
	}
	if err != nil {
		return nil, err
	}
	return s.threadByPair(ctx, low, high)
}

// createThread inserts a thread row for a normalized pair. Returns
// ErrDuplicateThread if the pair already has one.
func (s *SQLiteStore) createThread(ctx context.Context, low, high int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO threads (low_user_id, high_user_id, created_at) VALUES (?, ?, ?)`,
		low, high, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicateThread
		}
		return fmt.Errorf("inserting thread: %w", err)
	}
	s.logger.Debug("created thread", "low", low, "high", high)
	return nil
}

func (s *SQLiteStore) threadByPair(ctx context.Context, low, high int64) (*Thread, error) {
	var t Thread
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, low_user_id, high_user_id, created_at FROM threads
		 WHERE low_user_id = ? AND high_user_id = ?`, low, high).
		Scan(&t.ID, &t.LowUserID, &t.HighUserID, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying thread: %w", err)
	}
	t.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &t, nil
}

// --- Messages ---

// SaveMessage persists one private chat message. The store assigns ID
// and CreatedAt.
func (s *SQLiteStore) SaveMessage(ctx context.Context, msg *Message) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (thread_id, sender_id, body, created_at) VALUES (?, ?, ?, ?)`,
		msg.ThreadID, msg.SenderID, msg.Body, now.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}
	msg.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading message id: %w", err)
	}
	msg.CreatedAt = now
	return nil
}

// ThreadMessages returns a thread's messages ordered oldest first, with
// sender usernames populated. limit bounds the result; zero or negative
// means all.
func (s *SQLiteStore) ThreadMessages(ctx context.Context, threadID int64, limit int) ([]*Message, error) {
	query := `
		SELECT m.id, m.thread_id, m.sender_id, u.username, m.body, m.created_at
		FROM messages m JOIN users u ON u.id = m.sender_id
		WHERE m.thread_id = ?
		ORDER BY m.created_at ASC, m.id ASC
	`
	args := []any{threadID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		var m Message
		var createdAt string
		if err := rows.Scan(&m.ID, &m.ThreadID, &m.SenderID, &m.SenderName, &m.Body, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		m.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		msgs = append(msgs, &m)
	}
	return msgs, rows.Err()
}
