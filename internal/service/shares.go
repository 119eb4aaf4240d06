package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/marksrv/marksrv/internal/events"
	"github.com/marksrv/marksrv/internal/model"
	"github.com/marksrv/marksrv/internal/storage"
)

// FanoutError records a group member for whom mount creation failed
// during group-share fan-out.
type FanoutError struct {
	Participant string `json:"participant"`
	Reason      string `json:"reason"`
}

// CreateShare shares a folder with a user or a group. A user share
// creates the share record and the recipient's mount atomically. A
// group share creates the share record first and then fans out one
// mount per member, skipping the owner and members who already hold a
// mount of this folder; per-member failures are collected and returned
// without rolling back mounts already created.
func (s *FolderService) CreateShare(ctx context.Context, folderID, participant string, ptype model.ParticipantType, canWrite, canShare bool) (model.Share, []FanoutError, error) {
	folder, err := s.store.FindFolder(ctx, folderID)
	if err != nil {
		return model.Share{}, nil, err
	}

	if ptype != model.ParticipantUser && ptype != model.ParticipantGroup {
		return model.Share{}, nil, fmt.Errorf("only users and groups are allowed as participants: %w", model.ErrUnsupportedOperation)
	}
	if ptype == model.ParticipantUser && participant == folder.UserID {
		return model.Share{}, nil, fmt.Errorf("cannot share with oneself: %w", model.ErrUnsupportedOperation)
	}

	share := model.NewShare(model.NewShareParams{
		FolderID:        folderID,
		Owner:           folder.UserID,
		Participant:     participant,
		ParticipantType: ptype,
		CanWrite:        canWrite,
		CanShare:        canShare,
	})

	if ptype == model.ParticipantUser {
		err := s.store.Tx(ctx, func(tx *storage.Store) error {
			if err := tx.InsertShare(ctx, share); err != nil {
				return err
			}
			return s.addSharedFolder(ctx, tx, share, folder, participant)
		})
		if err != nil {
			return model.Share{}, nil, err
		}
		return share, nil, nil
	}

	group, err := s.groups.GetGroup(ctx, participant)
	if err != nil {
		return model.Share{}, nil, err
	}
	if group == nil {
		return model.Share{}, nil, fmt.Errorf("group %q: %w", participant, model.ErrNotFound)
	}

	if err := s.store.InsertShare(ctx, share); err != nil {
		return model.Share{}, nil, err
	}

	// Best-effort fan-out: each mount is its own transaction, and one
	// member's failure never unwinds mounts already created.
	var failures []FanoutError
	for _, member := range group.Members {
		if member == folder.UserID {
			continue
		}
		_, err := s.store.FindSharedFolderByFolderAndUser(ctx, folder.ID, member)
		if err == nil {
			continue
		}
		if !errors.Is(err, model.ErrNotFound) {
			failures = append(failures, FanoutError{Participant: member, Reason: err.Error()})
			continue
		}

		err = s.store.Tx(ctx, func(tx *storage.Store) error {
			return s.addSharedFolder(ctx, tx, share, folder, member)
		})
		if err != nil {
			log.Warn().Err(err).
				Str("share", share.ID).
				Str("member", member).
				Msg("group share fan-out failed for member")
			failures = append(failures, FanoutError{Participant: member, Reason: err.Error()})
		}
	}
	return share, failures, nil
}

// AddSharedFolder mounts an existing share into a recipient's tree,
// directly under their root folder.
func (s *FolderService) AddSharedFolder(ctx context.Context, share model.Share, folder model.Folder, userID string) error {
	return s.store.Tx(ctx, func(tx *storage.Store) error {
		return s.addSharedFolder(ctx, tx, share, folder, userID)
	})
}

func (s *FolderService) addSharedFolder(ctx context.Context, tx *storage.Store, share model.Share, folder model.Folder, userID string) error {
	_, err := tx.FindSharedFolderByFolderAndUser(ctx, folder.ID, userID)
	if err == nil {
		return fmt.Errorf("folder %q is already shared with user %q: %w", folder.ID, userID, model.ErrUnsupportedOperation)
	}
	if !errors.Is(err, model.ErrNotFound) {
		return err
	}

	root, err := tx.FindRootFolder(ctx, userID)
	if err != nil {
		return err
	}

	mount := model.NewSharedFolder(model.NewSharedFolderParams{
		FolderID: folder.ID,
		UserID:   userID,
		Title:    folder.Title,
		ShareID:  share.ID,
	})
	if err := tx.InsertSharedFolder(ctx, mount); err != nil {
		return err
	}
	if err := s.tree.Bind(tx).Move(ctx, model.NodeTypeShare, mount.ID, root.ID); err != nil {
		return err
	}

	s.events.Dispatch(events.Event{Kind: events.KindCreate, NodeType: model.NodeTypeShare, NodeID: mount.ID})
	return nil
}

// DeleteShare removes a share and every mount it fanned out to.
func (s *FolderService) DeleteShare(ctx context.Context, shareID string) error {
	if _, err := s.store.FindShare(ctx, shareID); err != nil {
		return err
	}
	return s.tree.DeleteShare(ctx, shareID)
}

// FindShareByDescendantAndUser returns the share, if any, through which
// userID can see folder: either a share of the folder itself or of one
// of its ancestors. Returns (nil, nil) when the folder is not reachable
// via any share to that user.
func (s *FolderService) FindShareByDescendantAndUser(ctx context.Context, folder model.Folder, userID string) (*model.Share, error) {
	shares, err := s.store.FindSharesByOwnerAndUser(ctx, folder.UserID, userID)
	if err != nil {
		return nil, err
	}
	for _, share := range shares {
		if share.FolderID == folder.ID {
			return &share, nil
		}
		ok, err := s.tree.HasDescendant(ctx, share.FolderID, model.NodeTypeFolder, folder.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			return &share, nil
		}
	}
	return nil, nil
}
