package service

import (
	"context"

	"github.com/marksrv/marksrv/internal/events"
	"github.com/marksrv/marksrv/internal/model"
	"github.com/marksrv/marksrv/internal/storage"
)

// CreateBookmark places a new bookmark inside parentFolderID. The
// bookmark inherits its owner from the parent folder.
func (s *FolderService) CreateBookmark(ctx context.Context, title, url string, tags []string, parentFolderID string) (model.Bookmark, error) {
	parent, err := s.store.FindFolder(ctx, parentFolderID)
	if err != nil {
		return model.Bookmark{}, err
	}

	bookmark := model.NewBookmark(model.NewBookmarkParams{
		Title:  title,
		URL:    url,
		UserID: parent.UserID,
		Tags:   tags,
	})
	err = s.store.Tx(ctx, func(tx *storage.Store) error {
		if err := tx.InsertBookmark(ctx, bookmark); err != nil {
			return err
		}
		return s.tree.Bind(tx).Move(ctx, model.NodeTypeBookmark, bookmark.ID, parentFolderID)
	})
	if err != nil {
		return model.Bookmark{}, err
	}

	s.events.Dispatch(events.Event{Kind: events.KindCreate, NodeType: model.NodeTypeBookmark, NodeID: bookmark.ID})
	return bookmark, nil
}

// FindBookmark fetches a bookmark by primary key.
func (s *FolderService) FindBookmark(ctx context.Context, id string) (model.Bookmark, error) {
	return s.store.FindBookmark(ctx, id)
}

// DeleteBookmark removes a bookmark and its tree entry.
func (s *FolderService) DeleteBookmark(ctx context.Context, id string) error {
	if _, err := s.store.FindBookmark(ctx, id); err != nil {
		return err
	}
	return s.tree.DeleteEntry(ctx, model.NodeTypeBookmark, id)
}

// MoveBookmark reparents a bookmark under another folder.
func (s *FolderService) MoveBookmark(ctx context.Context, id, parentFolderID string) error {
	if _, err := s.store.FindBookmark(ctx, id); err != nil {
		return err
	}
	if err := s.tree.Move(ctx, model.NodeTypeBookmark, id, parentFolderID); err != nil {
		return err
	}
	s.events.Dispatch(events.Event{Kind: events.KindUpdate, NodeType: model.NodeTypeBookmark, NodeID: id})
	return nil
}
