package storage

import (
	"context"
	"time"

	"github.com/marksrv/marksrv/internal/model"
)

// InsertPublicFolder inserts a public token row. The UNIQUE(folder_id)
// constraint keeps tokens at one per folder.
func (s *Store) InsertPublicFolder(ctx context.Context, pf model.PublicFolder) error {
	_, err := s.q.ExecContext(ctx,
		"INSERT INTO public_folders (id, folder_id, created_at) VALUES (?, ?, ?)",
		pf.ID, pf.FolderID, pf.CreatedAt.Format(time.RFC3339))
	return err
}

// FindPublicFolder resolves a public token.
func (s *Store) FindPublicFolder(ctx context.Context, token string) (model.PublicFolder, error) {
	row := s.q.QueryRowContext(ctx,
		"SELECT id, folder_id, created_at FROM public_folders WHERE id = ?", token)
	return scanPublicFolder(row.Scan, token)
}

// FindPublicFolderByFolder returns the folder's active token, if any.
func (s *Store) FindPublicFolderByFolder(ctx context.Context, folderID string) (model.PublicFolder, error) {
	row := s.q.QueryRowContext(ctx,
		"SELECT id, folder_id, created_at FROM public_folders WHERE folder_id = ?", folderID)
	return scanPublicFolder(row.Scan, folderID)
}

// DeletePublicFolder removes a token row.
func (s *Store) DeletePublicFolder(ctx context.Context, token string) error {
	_, err := s.q.ExecContext(ctx, "DELETE FROM public_folders WHERE id = ?", token)
	return err
}

func scanPublicFolder(scan func(...any) error, id string) (model.PublicFolder, error) {
	var pf model.PublicFolder
	var createdAt string
	if err := scan(&pf.ID, &pf.FolderID, &createdAt); err != nil {
		return model.PublicFolder{}, scanErr(err, "public folder", id)
	}
	pf.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return pf, nil
}
