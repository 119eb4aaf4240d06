package storage

import (
	"context"

	"github.com/marksrv/marksrv/internal/model"
)

// InsertShare inserts a new share row.
func (s *Store) InsertShare(ctx context.Context, sh model.Share) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO shares (id, folder_id, owner, participant, participant_type, can_write, can_share)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sh.ID, sh.FolderID, sh.Owner, sh.Participant, string(sh.ParticipantType),
		boolInt(sh.CanWrite), boolInt(sh.CanShare))
	return err
}

// FindShare fetches a share by primary key.
func (s *Store) FindShare(ctx context.Context, id string) (model.Share, error) {
	row := s.q.QueryRowContext(ctx,
		"SELECT id, folder_id, owner, participant, participant_type, can_write, can_share FROM shares WHERE id = ?", id)
	sh, err := scanShare(row.Scan)
	if err != nil {
		return model.Share{}, scanErr(err, "share", id)
	}
	return sh, nil
}

// FindSharesByFolder returns all shares granting access to a folder.
func (s *Store) FindSharesByFolder(ctx context.Context, folderID string) ([]model.Share, error) {
	return s.queryShares(ctx,
		"SELECT id, folder_id, owner, participant, participant_type, can_write, can_share FROM shares WHERE folder_id = ?",
		folderID)
}

// FindSharesByOwnerAndUser returns the shares of the given owner that
// have fanned out into a mount for the given user. Group membership is
// not consulted here; a share is visible to a user exactly when a mount
// exists.
func (s *Store) FindSharesByOwnerAndUser(ctx context.Context, owner, userID string) ([]model.Share, error) {
	return s.queryShares(ctx,
		`SELECT s.id, s.folder_id, s.owner, s.participant, s.participant_type, s.can_write, s.can_share
		 FROM shares s
		 JOIN shared_folders sf ON sf.share_id = s.id
		 WHERE s.owner = ? AND sf.user_id = ?`,
		owner, userID)
}

// DeleteShare removes the share row only; mounts are removed by the
// tree mapper.
func (s *Store) DeleteShare(ctx context.Context, id string) error {
	_, err := s.q.ExecContext(ctx, "DELETE FROM shares WHERE id = ?", id)
	return err
}

// InsertSharedFolder inserts a mount row. The UNIQUE(folder_id, user_id)
// constraint rejects a second mount for the same pair.
func (s *Store) InsertSharedFolder(ctx context.Context, sf model.SharedFolder) error {
	_, err := s.q.ExecContext(ctx,
		"INSERT INTO shared_folders (id, folder_id, user_id, title, share_id) VALUES (?, ?, ?, ?, ?)",
		sf.ID, sf.FolderID, sf.UserID, sf.Title, sf.ShareID)
	return err
}

// FindSharedFolder fetches a mount by primary key.
func (s *Store) FindSharedFolder(ctx context.Context, id string) (model.SharedFolder, error) {
	row := s.q.QueryRowContext(ctx,
		"SELECT id, folder_id, user_id, title, share_id FROM shared_folders WHERE id = ?", id)

	var sf model.SharedFolder
	if err := row.Scan(&sf.ID, &sf.FolderID, &sf.UserID, &sf.Title, &sf.ShareID); err != nil {
		return model.SharedFolder{}, scanErr(err, "shared folder", id)
	}
	return sf, nil
}

// FindSharedFolderByFolderAndUser fetches the user's mount of the given
// origin folder, if any.
func (s *Store) FindSharedFolderByFolderAndUser(ctx context.Context, folderID, userID string) (model.SharedFolder, error) {
	row := s.q.QueryRowContext(ctx,
		"SELECT id, folder_id, user_id, title, share_id FROM shared_folders WHERE folder_id = ? AND user_id = ?",
		folderID, userID)

	var sf model.SharedFolder
	if err := row.Scan(&sf.ID, &sf.FolderID, &sf.UserID, &sf.Title, &sf.ShareID); err != nil {
		return model.SharedFolder{}, scanErr(err, "shared folder", folderID)
	}
	return sf, nil
}

// FindSharedFoldersByShare returns every mount created by a share.
func (s *Store) FindSharedFoldersByShare(ctx context.Context, shareID string) ([]model.SharedFolder, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT id, folder_id, user_id, title, share_id FROM shared_folders WHERE share_id = ?", shareID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mounts []model.SharedFolder
	for rows.Next() {
		var sf model.SharedFolder
		if err := rows.Scan(&sf.ID, &sf.FolderID, &sf.UserID, &sf.Title, &sf.ShareID); err != nil {
			return nil, err
		}
		mounts = append(mounts, sf)
	}
	return mounts, rows.Err()
}

// UpdateSharedFolder rewrites the recipient-local title of a mount.
func (s *Store) UpdateSharedFolder(ctx context.Context, sf model.SharedFolder) error {
	res, err := s.q.ExecContext(ctx,
		"UPDATE shared_folders SET title = ? WHERE id = ?", sf.Title, sf.ID)
	if err != nil {
		return err
	}
	return requireRow(res, "shared folder", sf.ID)
}

// DeleteSharedFolder removes the mount row only.
func (s *Store) DeleteSharedFolder(ctx context.Context, id string) error {
	_, err := s.q.ExecContext(ctx, "DELETE FROM shared_folders WHERE id = ?", id)
	return err
}

func (s *Store) queryShares(ctx context.Context, query string, args ...any) ([]model.Share, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shares []model.Share
	for rows.Next() {
		sh, err := scanShare(rows.Scan)
		if err != nil {
			return nil, err
		}
		shares = append(shares, sh)
	}
	return shares, rows.Err()
}

func scanShare(scan func(...any) error) (model.Share, error) {
	var sh model.Share
	var ptype string
	var canWrite, canShare int
	if err := scan(&sh.ID, &sh.FolderID, &sh.Owner, &sh.Participant, &ptype, &canWrite, &canShare); err != nil {
		return model.Share{}, err
	}
	sh.ParticipantType = model.ParticipantType(ptype)
	sh.CanWrite = canWrite == 1
	sh.CanShare = canShare == 1
	return sh, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
