// ABOUTME: Media library persistence: items, categories, likes, and comments
// ABOUTME: Visibility is enforced by callers; the store exposes raw records

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// mediaColumns is the shared select list for media reads. The likes
// subquery keeps counts consistent with the likes table without a
// separate counter column.
const mediaColumns = `
	m.id, m.owner_id, u.username, m.title, m.description, m.file_name,
	m.content_type, m.public, m.created_at,
	(SELECT COUNT(*) FROM likes l WHERE l.media_id = m.id)
`

// CreateMedia inserts a media item and files it under the given
// categories. The caller assigns the ID (a UUID) and has already stored
// the file on disk.
func (s *SQLiteStore) CreateMedia(ctx context.Context, m *Media, categoryIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO media (id, owner_id, title, description, file_name, content_type, public, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.OwnerID, m.Title, m.Description, m.FileName, m.ContentType,
		boolToInt(m.Public), now.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting media: %w", err)
	}

	for _, catID := range categoryIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO media_categories (media_id, category_id) VALUES (?, ?)`,
			m.ID, catID); err != nil {
			return fmt.Errorf("filing media under category: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing media: %w", err)
	}
	m.CreatedAt = now

	s.logger.Debug("created media", "id", m.ID, "owner", m.OwnerID, "public", m.Public)
	return nil
}

// GetMedia retrieves one media item by ID. Returns ErrNotFound if absent.
func (s *SQLiteStore) GetMedia(ctx context.Context, id string) (*Media, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+mediaColumns+` FROM media m JOIN users u ON u.id = m.owner_id WHERE m.id = ?`, id)
	m, err := scanMedia(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return m, err
}

// ListPublicMedia returns public items newest first, optionally filtered
// to one category slug.
func (s *SQLiteStore) ListPublicMedia(ctx context.Context, categorySlug string) ([]*Media, error) {
	query := `SELECT ` + mediaColumns + ` FROM media m JOIN users u ON u.id = m.owner_id`
	var args []any
	if categorySlug != "" {
		query += `
			JOIN media_categories mc ON mc.media_id = m.id
			JOIN categories c ON c.id = mc.category_id AND c.slug = ?`
		args = append(args, categorySlug)
	}
	query += ` WHERE m.public = 1 ORDER BY m.created_at DESC, m.id DESC`

	return s.queryMedia(ctx, query, args...)
}

// ListUserMedia returns everything a user owns, newest first, including
// private items. Callers gate this to the owner.
func (s *SQLiteStore) ListUserMedia(ctx context.Context, ownerID int64) ([]*Media, error) {
	return s.queryMedia(ctx,
		`SELECT `+mediaColumns+` FROM media m JOIN users u ON u.id = m.owner_id
		 WHERE m.owner_id = ? ORDER BY m.created_at DESC, m.id DESC`, ownerID)
}

func (s *SQLiteStore) queryMedia(ctx context.Context, query string, args ...any) ([]*Media, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying media: %w", err)
	}
	defer rows.Close()

	var items []*Media
	for rows.Next() {
		m, err := scanMedia(rows.Scan)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func scanMedia(scan func(...any) error) (*Media, error) {
	var m Media
	var public int
	var createdAt string
	err := scan(&m.ID, &m.OwnerID, &m.OwnerName, &m.Title, &m.Description,
		&m.FileName, &m.ContentType, &public, &createdAt, &m.Likes)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning media: %w", err)
	}
	m.Public = public != 0
	m.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &m, nil
}

// SetMediaVisibility flips an item between public and private. Returns
// ErrNotFound if the item doesn't exist.
func (s *SQLiteStore) SetMediaVisibility(ctx context.Context, id string, public bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE media SET public = ? WHERE id = ?`, boolToInt(public), id)
	if err != nil {
		return fmt.Errorf("updating media visibility: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMedia removes an item and, via cascade, its likes, comments,
// and category links. Returns ErrNotFound if the item doesn't exist.
func (s *SQLiteStore) DeleteMedia(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting media: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Likes ---

// ToggleLike adds the user's like if absent and removes it if present.
// Returns whether the item is liked after the toggle and the new count.
func (s *SQLiteStore) ToggleLike(ctx context.Context, mediaID string, userID int64) (liked bool, count int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM likes WHERE media_id = ? AND user_id = ?`, mediaID, userID)
	if err != nil {
		return false, 0, fmt.Errorf("removing like: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, 0, fmt.Errorf("reading affected rows: %w", err)
	}

	if removed == 0 {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO likes (media_id, user_id, created_at) VALUES (?, ?, ?)`,
			mediaID, userID, time.Now().UTC().Format(time.RFC3339)); err != nil {
			return false, 0, fmt.Errorf("inserting like: %w", err)
		}
		liked = true
	}

	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM likes WHERE media_id = ?`, mediaID).Scan(&count); err != nil {
		return false, 0, fmt.Errorf("counting likes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, 0, fmt.Errorf("committing like toggle: %w", err)
	}
	return liked, count, nil
}

// UserLikes reports whether the user currently likes the item.
func (s *SQLiteStore) UserLikes(ctx context.Context, mediaID string, userID int64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM likes WHERE media_id = ? AND user_id = ?`,
		mediaID, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("querying like: %w", err)
	}
	return n > 0, nil
}

// --- Comments ---

// AddComment persists a comment. The store assigns ID and CreatedAt.
func (s *SQLiteStore) AddComment(ctx context.Context, c *Comment) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO comments (media_id, author_id, body, created_at) VALUES (?, ?, ?, ?)`,
		c.MediaID, c.AuthorID, c.Body, now.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("inserting comment: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading comment id: %w", err)
	}
	c.CreatedAt = now
	return nil
}

// MediaComments returns an item's comments oldest first with author
// usernames populated.
func (s *SQLiteStore) MediaComments(ctx context.Context, mediaID string) ([]*Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.media_id, c.author_id, u.username, c.body, c.created_at
		 FROM comments c JOIN users u ON u.id = c.author_id
		 WHERE c.media_id = ?
		 ORDER BY c.created_at ASC, c.id ASC`, mediaID)
	if err != nil {
		return nil, fmt.Errorf("querying comments: %w", err)
	}
	defer rows.Close()

	var comments []*Comment
	for rows.Next() {
		var c Comment
		var createdAt string
		if err := rows.Scan(&c.ID, &c.MediaID, &c.AuthorID, &c.AuthorName, &c.Body, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		c.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}

// --- Categories ---

// EnsureCategory creates the category if it doesn't exist and returns
// the stored record either way.
func (s *SQLiteStore) EnsureCategory(ctx context.Context, name, slug string) (*Category, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO categories (name, slug) VALUES (?, ?)`, name, slug)
	if err != nil {
		return nil, fmt.Errorf("inserting category: %w", err)
	}
	return s.GetCategoryBySlug(ctx, slug)
}

// GetCategoryBySlug retrieves one category. Returns ErrNotFound if absent.
func (s *SQLiteStore) GetCategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	var c Category
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, slug FROM categories WHERE slug = ?`, slug).
		Scan(&c.ID, &c.Name, &c.Slug)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying category: %w", err)
	}
	return &c, nil
}

// ListCategories returns all categories ordered by name.
func (s *SQLiteStore) ListCategories(ctx context.Context) ([]*Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, slug FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var cats []*Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		cats = append(cats, &c)
	}
	return cats, rows.Err()
}

// MediaCategories returns the categories an item is filed under.
func (s *SQLiteStore) MediaCategories(ctx context.Context, mediaID string) ([]*Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.slug FROM categories c
		 JOIN media_categories mc ON mc.category_id = c.id
		 WHERE mc.media_id = ? ORDER BY c.name`, mediaID)
	if err != nil {
		return nil, fmt.Errorf("querying media categories: %w", err)
	}
	defer rows.Close()

	var cats []*Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		cats = append(cats, &c)
	}
	return cats, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
