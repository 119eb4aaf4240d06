package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/marksrv/marksrv/internal/model"
)

// folderColumns selects the folder row joined against the tree index so
// ParentID reflects the authoritative edge.
const folderColumns = `
	SELECT f.id, f.title, f.user_id, t.parent_folder_id
	FROM folders f
	LEFT JOIN tree_index t ON t.type = 'folder' AND t.item_id = f.id
`

// InsertFolder inserts a new folder row. The folder is unattached until
// the tree mapper records an edge for it.
func (s *Store) InsertFolder(ctx context.Context, f model.Folder) error {
	_, err := s.q.ExecContext(ctx,
		"INSERT INTO folders (id, title, user_id) VALUES (?, ?, ?)",
		f.ID, f.Title, f.UserID)
	return err
}

// FindFolder fetches a folder by primary key.
func (s *Store) FindFolder(ctx context.Context, id string) (model.Folder, error) {
	row := s.q.QueryRowContext(ctx, folderColumns+" WHERE f.id = ?", id)
	return scanFolder(row, id)
}

// FindRootFolder returns the user's unique parentless folder. Zero rows
// yield ErrNotFound, more than one ErrAmbiguousResult; both indicate a
// data-integrity violation for a provisioned user.
func (s *Store) FindRootFolder(ctx context.Context, userID string) (model.Folder, error) {
	rows, err := s.q.QueryContext(ctx,
		folderColumns+" WHERE f.user_id = ? AND t.item_id IS NULL", userID)
	if err != nil {
		return model.Folder{}, err
	}
	defer rows.Close()

	var found []model.Folder
	for rows.Next() {
		var f model.Folder
		var parentID sql.NullString
		if err := rows.Scan(&f.ID, &f.Title, &f.UserID, &parentID); err != nil {
			return model.Folder{}, err
		}
		found = append(found, f)
	}
	if err := rows.Err(); err != nil {
		return model.Folder{}, err
	}

	switch len(found) {
	case 0:
		return model.Folder{}, fmt.Errorf("root folder of user %q: %w", userID, model.ErrNotFound)
	case 1:
		return found[0], nil
	default:
		return model.Folder{}, fmt.Errorf("root folder of user %q: %w", userID, model.ErrAmbiguousResult)
	}
}

// UpdateFolder rewrites title and owner of an existing folder.
func (s *Store) UpdateFolder(ctx context.Context, f model.Folder) error {
	res, err := s.q.ExecContext(ctx,
		"UPDATE folders SET title = ?, user_id = ? WHERE id = ?",
		f.Title, f.UserID, f.ID)
	if err != nil {
		return err
	}
	return requireRow(res, "folder", f.ID)
}

// DeleteFolder removes the folder row only; edges and descendants are
// the tree mapper's concern.
func (s *Store) DeleteFolder(ctx context.Context, id string) error {
	_, err := s.q.ExecContext(ctx, "DELETE FROM folders WHERE id = ?", id)
	return err
}

func scanFolder(row *sql.Row, id string) (model.Folder, error) {
	var f model.Folder
	var parentID sql.NullString
	if err := row.Scan(&f.ID, &f.Title, &f.UserID, &parentID); err != nil {
		return model.Folder{}, scanErr(err, "folder", id)
	}
	if parentID.Valid {
		f.ParentID = &parentID.String
	}
	return f, nil
}

// requireRow maps a zero-row update/delete to ErrNotFound.
func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(kind, id)
	}
	return nil
}
