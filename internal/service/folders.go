package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/marksrv/marksrv/internal/events"
	"github.com/marksrv/marksrv/internal/model"
	"github.com/marksrv/marksrv/internal/storage"
)

// GetRootFolder returns the user's unique parentless folder. A missing
// or duplicated root is a data-integrity violation and is returned as
// an error, never papered over with a substitute.
func (s *FolderService) GetRootFolder(ctx context.Context, userID string) (model.Folder, error) {
	root, err := s.store.FindRootFolder(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user", userID).Msg("root folder lookup failed")
		return model.Folder{}, err
	}
	return root, nil
}

// CreateRootFolder provisions a root folder for a user that has none.
// It refuses to create a second root.
func (s *FolderService) CreateRootFolder(ctx context.Context, userID string) (model.Folder, error) {
	_, err := s.store.FindRootFolder(ctx, userID)
	switch {
	case err == nil:
		return model.Folder{}, fmt.Errorf("user %q already has a root folder: %w", userID, model.ErrUnsupportedOperation)
	case !errors.Is(err, model.ErrNotFound):
		return model.Folder{}, err
	}

	root := model.NewFolder(model.NewFolderParams{UserID: userID})
	if err := s.store.InsertFolder(ctx, root); err != nil {
		return model.Folder{}, err
	}
	s.events.Dispatch(events.Event{Kind: events.KindCreate, NodeType: model.NodeTypeFolder, NodeID: root.ID})
	return root, nil
}

// FindByID fetches a folder by primary key.
func (s *FolderService) FindByID(ctx context.Context, id string) (model.Folder, error) {
	return s.store.FindFolder(ctx, id)
}

// Create makes a new folder under parentFolderID. The folder inherits
// its owner from the parent.
func (s *FolderService) Create(ctx context.Context, title, parentFolderID string) (model.Folder, error) {
	parent, err := s.store.FindFolder(ctx, parentFolderID)
	if err != nil {
		return model.Folder{}, err
	}

	folder := model.NewFolder(model.NewFolderParams{Title: title, UserID: parent.UserID})
	err = s.store.Tx(ctx, func(tx *storage.Store) error {
		if err := tx.InsertFolder(ctx, folder); err != nil {
			return err
		}
		return s.tree.Bind(tx).Move(ctx, model.NodeTypeFolder, folder.ID, parentFolderID)
	})
	if err != nil {
		return model.Folder{}, err
	}

	folder.ParentID = &parent.ID
	s.events.Dispatch(events.Event{Kind: events.KindCreate, NodeType: model.NodeTypeFolder, NodeID: folder.ID})
	return folder, nil
}

// FindSharedFolderOrFolder resolves the effective view of a folder for
// a viewer: the raw folder for its owner or an anonymous caller, the
// viewer's mount when one exists, and the raw folder again when the
// viewer reaches it inside an ancestor's share without a direct mount.
func (s *FolderService) FindSharedFolderOrFolder(ctx context.Context, userID, folderID string) (model.FolderView, error) {
	folder, err := s.store.FindFolder(ctx, folderID)
	if err != nil {
		return model.FolderView{}, err
	}
	if userID == "" || userID == folder.UserID {
		return model.FolderView{Folder: folder}, nil
	}

	mount, err := s.store.FindSharedFolderByFolderAndUser(ctx, folder.ID, userID)
	switch {
	case err == nil:
		return model.FolderView{Folder: folder, Mount: &mount}, nil
	case errors.Is(err, model.ErrNotFound):
		return model.FolderView{Folder: folder}, nil
	default:
		return model.FolderView{}, err
	}
}

// DeleteSharedFolderOrFolder deletes what folderID means to the caller:
// the owner (or an anonymous caller) deletes the real subtree, a viewer
// with a direct mount only unshares for themself, and a viewer deep
// inside someone else's share deletes the real subtree. Write access is
// assumed to have been validated upstream.
func (s *FolderService) DeleteSharedFolderOrFolder(ctx context.Context, userID, folderID string) error {
	folder, err := s.store.FindFolder(ctx, folderID)
	if err != nil {
		return err
	}

	if userID == "" || userID == folder.UserID {
		return s.tree.DeleteEntry(ctx, model.NodeTypeFolder, folder.ID)
	}

	mount, err := s.store.FindSharedFolderByFolderAndUser(ctx, folder.ID, userID)
	switch {
	case err == nil:
		return s.tree.DeleteEntry(ctx, model.NodeTypeShare, mount.ID)
	case !errors.Is(err, model.ErrNotFound):
		return err
	}

	// Subfolder of a share: the real subtree goes.
	return s.tree.DeleteEntry(ctx, model.NodeTypeFolder, folder.ID)
}

// UpdateSharedFolderOrFolder renames and/or moves a folder as seen by
// the caller. A direct mount holder only changes their mount's local
// title and position. Otherwise the real folder is mutated, and a move
// under a parent with a different owner transfers ownership of the
// whole subtree first.
func (s *FolderService) UpdateSharedFolderOrFolder(ctx context.Context, userID, folderID string, title, parentFolderID *string) (model.FolderView, error) {
	folder, err := s.store.FindFolder(ctx, folderID)
	if err != nil {
		return model.FolderView{}, err
	}

	if userID != "" && userID != folder.UserID {
		mount, err := s.store.FindSharedFolderByFolderAndUser(ctx, folder.ID, userID)
		switch {
		case err == nil:
			return s.updateMount(ctx, folder, mount, title, parentFolderID)
		case !errors.Is(err, model.ErrNotFound):
			return model.FolderView{}, err
		}
	}

	if title != nil {
		folder.Title = *title
		if err := s.store.UpdateFolder(ctx, folder); err != nil {
			return model.FolderView{}, err
		}
		s.events.Dispatch(events.Event{Kind: events.KindUpdate, NodeType: model.NodeTypeFolder, NodeID: folder.ID})
	}
	if parentFolderID != nil {
		parent, err := s.store.FindFolder(ctx, *parentFolderID)
		if err != nil {
			return model.FolderView{}, err
		}
		err = s.store.Tx(ctx, func(tx *storage.Store) error {
			mapper := s.tree.Bind(tx)
			if parent.UserID != folder.UserID {
				if err := mapper.ChangeFolderOwner(ctx, folder, parent.UserID); err != nil {
					return err
				}
				folder.UserID = parent.UserID
			}
			return mapper.Move(ctx, model.NodeTypeFolder, folder.ID, parent.ID)
		})
		if err != nil {
			return model.FolderView{}, err
		}
		folder.ParentID = &parent.ID
		s.events.Dispatch(events.Event{Kind: events.KindUpdate, NodeType: model.NodeTypeFolder, NodeID: folder.ID})
	}

	return model.FolderView{Folder: folder}, nil
}

func (s *FolderService) updateMount(ctx context.Context, folder model.Folder, mount model.SharedFolder, title, parentFolderID *string) (model.FolderView, error) {
	if title != nil {
		mount.Title = *title
		if err := s.store.UpdateSharedFolder(ctx, mount); err != nil {
			return model.FolderView{}, err
		}
	}
	if parentFolderID != nil {
		if err := s.tree.Move(ctx, model.NodeTypeShare, mount.ID, *parentFolderID); err != nil {
			return model.FolderView{}, err
		}
	}
	s.events.Dispatch(events.Event{Kind: events.KindUpdate, NodeType: model.NodeTypeShare, NodeID: mount.ID})
	return model.FolderView{Folder: folder, Mount: &mount}, nil
}

// CreateFolderPublicToken returns the folder's public token, creating
// one on first use. Repeat calls return the same token.
func (s *FolderService) CreateFolderPublicToken(ctx context.Context, folderID string) (string, error) {
	if _, err := s.store.FindFolder(ctx, folderID); err != nil {
		return "", err
	}

	existing, err := s.store.FindPublicFolderByFolder(ctx, folderID)
	switch {
	case err == nil:
		return existing.ID, nil
	case !errors.Is(err, model.ErrNotFound):
		return "", err
	}

	pf := model.NewPublicFolder(folderID)
	if err := s.store.InsertPublicFolder(ctx, pf); err != nil {
		return "", err
	}
	return pf.ID, nil
}

// DeleteFolderPublicToken revokes the folder's public token.
func (s *FolderService) DeleteFolderPublicToken(ctx context.Context, folderID string) error {
	pf, err := s.store.FindPublicFolderByFolder(ctx, folderID)
	if err != nil {
		return err
	}
	return s.store.DeletePublicFolder(ctx, pf.ID)
}

// FindFolderByPublicToken resolves a public token to its folder.
func (s *FolderService) FindFolderByPublicToken(ctx context.Context, token string) (model.Folder, error) {
	pf, err := s.store.FindPublicFolder(ctx, token)
	if err != nil {
		return model.Folder{}, err
	}
	return s.store.FindFolder(ctx, pf.FolderID)
}

// Children lists the ordered child nodes of a folder.
func (s *FolderService) Children(ctx context.Context, folderID string) ([]model.TreeNode, error) {
	return s.tree.Children(ctx, folderID)
}

// SetChildOrder repositions a node among its siblings.
func (s *FolderService) SetChildOrder(ctx context.Context, t model.NodeType, itemID string, index int) error {
	return s.tree.SetChildOrder(ctx, t, itemID, index)
}

// ImportFile delegates a bookmark file upload to the importer
// collaborator, targeting the given destination folder.
func (s *FolderService) ImportFile(ctx context.Context, userID string, file io.Reader, folderID string) (ImportResult, error) {
	if s.importer == nil {
		return ImportResult{}, fmt.Errorf("file import: %w", model.ErrUnsupportedOperation)
	}
	return s.importer.ImportFile(ctx, userID, file, folderID)
}
