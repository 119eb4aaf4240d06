package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/marksrv/marksrv/internal/model"
)

// InsertBookmark inserts a new bookmark row.
func (s *Store) InsertBookmark(ctx context.Context, b model.Bookmark) error {
	tagsJSON, _ := json.Marshal(b.Tags)
	if b.Tags == nil {
		tagsJSON = []byte("[]")
	}
	_, err := s.q.ExecContext(ctx,
		"INSERT INTO bookmarks (id, title, url, user_id, tags, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		b.ID, b.Title, b.URL, b.UserID, string(tagsJSON), b.CreatedAt.Format(time.RFC3339))
	return err
}

// FindBookmark fetches a bookmark by primary key.
func (s *Store) FindBookmark(ctx context.Context, id string) (model.Bookmark, error) {
	row := s.q.QueryRowContext(ctx,
		"SELECT id, title, url, user_id, tags, created_at FROM bookmarks WHERE id = ?", id)

	var b model.Bookmark
	var tagsJSON, createdAt string
	if err := row.Scan(&b.ID, &b.Title, &b.URL, &b.UserID, &tagsJSON, &createdAt); err != nil {
		return model.Bookmark{}, scanErr(err, "bookmark", id)
	}
	if err := json.Unmarshal([]byte(tagsJSON), &b.Tags); err != nil {
		b.Tags = []string{}
	}
	b.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return b, nil
}

// UpdateBookmarkOwner rewrites the owning user of a bookmark. Used by
// the tree mapper during cross-owner subtree moves.
func (s *Store) UpdateBookmarkOwner(ctx context.Context, id, userID string) error {
	res, err := s.q.ExecContext(ctx,
		"UPDATE bookmarks SET user_id = ? WHERE id = ?", userID, id)
	if err != nil {
		return err
	}
	return requireRow(res, "bookmark", id)
}

// DeleteBookmark removes the bookmark row only.
func (s *Store) DeleteBookmark(ctx context.Context, id string) error {
	_, err := s.q.ExecContext(ctx, "DELETE FROM bookmarks WHERE id = ?", id)
	return err
}

// CountBookmarksByUser returns the number of bookmarks owned by a user.
func (s *Store) CountBookmarksByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bookmarks WHERE user_id = ?", userID).Scan(&n)
	return n, err
}
