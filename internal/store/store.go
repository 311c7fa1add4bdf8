// ABOUTME: Core data types and sentinel errors for the persistence layer
// ABOUTME: Users, sessions, private threads, messages, media, and social metadata

package store

import (
	"errors"
	"time"
)

// Sentinel errors returned by store operations.
var (
	// ErrNotFound indicates the requested record doesn't exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateThread indicates a thread already exists for the user pair.
	ErrDuplicateThread = errors.New("thread already exists")

	// ErrDuplicateUser indicates the username is already taken.
	ErrDuplicateUser = errors.New("username already exists")
)

// User is a registered account. PasswordHash is a bcrypt hash and never
// leaves the server.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Session is a server-side login session referenced by an opaque cookie ID.
type Session struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Thread is a private conversation between exactly two users. The pair is
// stored normalized (LowUserID < HighUserID) so each pair maps to exactly
// one thread regardless of who opened it.
type Thread struct {
	ID         int64
	LowUserID  int64
	HighUserID int64
	CreatedAt  time.Time
}

// Message is one persisted chat message within a private thread.
type Message struct {
	ID         int64
	ThreadID   int64
	SenderID   int64
	SenderName string // populated on reads via join, not stored
	Body       string
	CreatedAt  time.Time
}

// Category is a content label media items can be filed under.
type Category struct {
	ID   int64
	Name string
	Slug string
}

// Media is an uploaded item. FileName is the stored name on disk under
// the media directory; Public controls visibility to non-owners.
type Media struct {
	ID          string
	OwnerID     int64
	OwnerName   string // populated on reads via join
	Title       string
	Description string
	FileName    string
	ContentType string
	Public      bool
	Likes       int64 // populated on reads via subquery
	CreatedAt   time.Time
}

// Comment is one user remark on a media item.
type Comment struct {
	ID         int64
	MediaID    string
	AuthorID   int64
	AuthorName string // populated on reads via join
	Body       string
	CreatedAt  time.Time
}
