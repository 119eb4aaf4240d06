// Package tree maintains the parent/child structure over folders,
// bookmarks and shared-folder mounts. It is the single writer of the
// tree index; services never touch edges directly.
package tree

import (
	"context"
	"errors"
	"fmt"

	"github.com/marksrv/marksrv/internal/model"
	"github.com/marksrv/marksrv/internal/storage"
)

// maxAncestorWalk bounds parent-link walks so a corrupted index cannot
// loop forever.
const maxAncestorWalk = 10000

// Mapper enforces the forest invariants: single parent, no cycles,
// ordered siblings. All mutating operations run in one transaction.
type Mapper struct {
	store *storage.Store
}

// New creates a Mapper over the given store.
func New(store *storage.Store) *Mapper {
	return &Mapper{store: store}
}

// Bind returns a Mapper issuing its statements through the given store
// handle, typically one obtained inside storage.Store.Tx. It lets a
// service compose entity writes and structural changes into a single
// atomic scope.
func (m *Mapper) Bind(s *storage.Store) *Mapper {
	return &Mapper{store: s}
}

// Move detaches the node from its current parent, if any, and attaches
// it at the end of newParentID's children. It fails with
// ErrUnsupportedOperation before any mutation when the target parent
// does not exist or when the move would create a cycle.
func (m *Mapper) Move(ctx context.Context, t model.NodeType, itemID, newParentID string) error {
	return m.store.Tx(ctx, func(tx *storage.Store) error {
		if _, err := tx.FindFolder(ctx, newParentID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return fmt.Errorf("move target %q does not exist: %w", newParentID, model.ErrUnsupportedOperation)
			}
			return err
		}

		switch t {
		case model.NodeTypeFolder:
			onPath, err := onAncestorPath(ctx, tx, newParentID, itemID)
			if err != nil {
				return err
			}
			if onPath {
				return fmt.Errorf("cannot move folder %q into its own subtree: %w", itemID, model.ErrUnsupportedOperation)
			}
		case model.NodeTypeShare:
			// A mount resolves to its origin folder's subtree, so
			// placing it under a folder inside that subtree is as
			// cyclic as moving the origin folder there.
			mount, err := tx.FindSharedFolder(ctx, itemID)
			if err != nil {
				return err
			}
			onPath, err := onAncestorPath(ctx, tx, newParentID, mount.FolderID)
			if err != nil {
				return err
			}
			if onPath {
				return fmt.Errorf("cannot move mount %q into its shared subtree: %w", itemID, model.ErrUnsupportedOperation)
			}
		}

		if err := tx.DeleteTreeNode(ctx, t, itemID); err != nil {
			return err
		}
		ord, err := tx.MaxChildOrder(ctx, newParentID)
		if err != nil {
			return err
		}
		return tx.InsertTreeNode(ctx, model.TreeNode{
			Type:           t,
			ItemID:         itemID,
			ParentFolderID: newParentID,
			Order:          ord + 1,
		})
	})
}

// onAncestorPath walks parent links from startFolderID up to a root and
// reports whether folderID lies on that path. This is the cycle check:
// a folder may not become a child of its own descendant or of itself.
func onAncestorPath(ctx context.Context, s *storage.Store, startFolderID, folderID string) (bool, error) {
	cur := startFolderID
	for range maxAncestorWalk {
		if cur == folderID {
			return true, nil
		}
		parent, ok, err := s.TreeParent(ctx, model.NodeTypeFolder, cur)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
		cur = parent
	}
	return false, fmt.Errorf("ancestor walk from folder %q exceeded %d steps", startFolderID, maxAncestorWalk)
}

// DeleteEntry removes a node from the tree. Folder deletion cascades to
// all descendant edges and their backing entities, including shares of
// the deleted folders. Mount deletion removes only the mount (and its
// share, if this was the share's last mount) and never touches the
// origin folder or its contents.
func (m *Mapper) DeleteEntry(ctx context.Context, t model.NodeType, itemID string) error {
	return m.store.Tx(ctx, func(tx *storage.Store) error {
		return m.deleteEntry(ctx, tx, t, itemID)
	})
}

func (m *Mapper) deleteEntry(ctx context.Context, tx *storage.Store, t model.NodeType, itemID string) error {
	switch t {
	case model.NodeTypeFolder:
		return m.deleteFolderEntry(ctx, tx, itemID)
	case model.NodeTypeBookmark:
		if err := tx.DeleteTreeNode(ctx, t, itemID); err != nil {
			return err
		}
		return tx.DeleteBookmark(ctx, itemID)
	case model.NodeTypeShare:
		return m.deleteMountEntry(ctx, tx, itemID)
	default:
		return fmt.Errorf("node type %q: %w", t, model.ErrUnsupportedOperation)
	}
}

func (m *Mapper) deleteFolderEntry(ctx context.Context, tx *storage.Store, folderID string) error {
	children, err := tx.TreeChildren(ctx, folderID)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := m.deleteEntry(ctx, tx, child.Type, child.ItemID); err != nil {
			return err
		}
	}

	// Shares of this folder go with it, mounts included.
	shares, err := tx.FindSharesByFolder(ctx, folderID)
	if err != nil {
		return err
	}
	for _, share := range shares {
		if err := m.deleteShare(ctx, tx, share.ID); err != nil {
			return err
		}
	}

	// An active public token does not outlive its folder.
	pf, err := tx.FindPublicFolderByFolder(ctx, folderID)
	switch {
	case err == nil:
		if err := tx.DeletePublicFolder(ctx, pf.ID); err != nil {
			return err
		}
	case !errors.Is(err, model.ErrNotFound):
		return err
	}

	if err := tx.DeleteTreeNode(ctx, model.NodeTypeFolder, folderID); err != nil {
		return err
	}
	return tx.DeleteFolder(ctx, folderID)
}

func (m *Mapper) deleteMountEntry(ctx context.Context, tx *storage.Store, mountID string) error {
	mount, err := tx.FindSharedFolder(ctx, mountID)
	if err != nil {
		return err
	}
	if err := tx.DeleteTreeNode(ctx, model.NodeTypeShare, mountID); err != nil {
		return err
	}
	if err := tx.DeleteSharedFolder(ctx, mountID); err != nil {
		return err
	}

	// The share record is cascaded once its last mount is gone.
	remaining, err := tx.FindSharedFoldersByShare(ctx, mount.ShareID)
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		return tx.DeleteShare(ctx, mount.ShareID)
	}
	return nil
}

// DeleteShare removes every mount created by the given share, then the
// share record itself. Origin folders are untouched.
func (m *Mapper) DeleteShare(ctx context.Context, shareID string) error {
	return m.store.Tx(ctx, func(tx *storage.Store) error {
		return m.deleteShare(ctx, tx, shareID)
	})
}

func (m *Mapper) deleteShare(ctx context.Context, tx *storage.Store, shareID string) error {
	mounts, err := tx.FindSharedFoldersByShare(ctx, shareID)
	if err != nil {
		return err
	}
	for _, mount := range mounts {
		if err := tx.DeleteTreeNode(ctx, model.NodeTypeShare, mount.ID); err != nil {
			return err
		}
		if err := tx.DeleteSharedFolder(ctx, mount.ID); err != nil {
			return err
		}
	}
	return tx.DeleteShare(ctx, shareID)
}

// HasDescendant reports whether the node (t, itemID) is reachable from
// ancestorFolderID by following child edges. Mount boundaries are not
// crossed; a mount's descendants belong to the origin owner's tree.
func (m *Mapper) HasDescendant(ctx context.Context, ancestorFolderID string, t model.NodeType, itemID string) (bool, error) {
	children, err := m.store.TreeChildren(ctx, ancestorFolderID)
	if err != nil {
		return false, err
	}
	for _, child := range children {
		if child.Type == t && child.ItemID == itemID {
			return true, nil
		}
		if child.Type == model.NodeTypeFolder {
			found, err := m.HasDescendant(ctx, child.ItemID, t, itemID)
			if err != nil {
				return false, err
			}
			if found {
				return true, nil
			}
		}
	}
	return false, nil
}

// ChangeFolderOwner rewrites the owning user of the folder and of every
// descendant folder and bookmark beneath it, atomically. Mounts under
// the subtree keep their recipients. Used only during cross-owner
// moves.
func (m *Mapper) ChangeFolderOwner(ctx context.Context, folder model.Folder, newUserID string) error {
	return m.store.Tx(ctx, func(tx *storage.Store) error {
		return m.changeFolderOwner(ctx, tx, folder, newUserID)
	})
}

func (m *Mapper) changeFolderOwner(ctx context.Context, tx *storage.Store, folder model.Folder, newUserID string) error {
	folder.UserID = newUserID
	if err := tx.UpdateFolder(ctx, folder); err != nil {
		return err
	}

	children, err := tx.TreeChildren(ctx, folder.ID)
	if err != nil {
		return err
	}
	for _, child := range children {
		switch child.Type {
		case model.NodeTypeBookmark:
			if err := tx.UpdateBookmarkOwner(ctx, child.ItemID, newUserID); err != nil {
				return err
			}
		case model.NodeTypeFolder:
			sub, err := tx.FindFolder(ctx, child.ItemID)
			if err != nil {
				return err
			}
			if err := m.changeFolderOwner(ctx, tx, sub, newUserID); err != nil {
				return err
			}
		}
	}
	return nil
}

// Children returns the ordered child edges of a folder.
func (m *Mapper) Children(ctx context.Context, folderID string) ([]model.TreeNode, error) {
	return m.store.TreeChildren(ctx, folderID)
}

// SetChildOrder repositions a child among its siblings, compacting ord
// values to a dense 0..n-1 sequence.
func (m *Mapper) SetChildOrder(ctx context.Context, t model.NodeType, itemID string, index int) error {
	return m.store.Tx(ctx, func(tx *storage.Store) error {
		node, err := tx.FindTreeNode(ctx, t, itemID)
		if err != nil {
			return err
		}
		siblings, err := tx.TreeChildren(ctx, node.ParentFolderID)
		if err != nil {
			return err
		}

		reordered := make([]model.TreeNode, 0, len(siblings))
		for _, sib := range siblings {
			if sib.Type == t && sib.ItemID == itemID {
				continue
			}
			reordered = append(reordered, sib)
		}
		if index < 0 {
			index = 0
		}
		if index > len(reordered) {
			index = len(reordered)
		}
		reordered = append(reordered[:index], append([]model.TreeNode{node}, reordered[index:]...)...)

		for i, sib := range reordered {
			if err := tx.SetTreeNodeOrder(ctx, sib.Type, sib.ItemID, i); err != nil {
				return err
			}
		}
		return nil
	})
}
