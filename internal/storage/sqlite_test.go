package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/marksrv/marksrv/internal/model"
	"github.com/marksrv/marksrv/internal/storage"
)

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "marksrv.db")
	s, err := storage.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_FolderRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	folder := model.NewFolder(model.NewFolderParams{Title: "Development", UserID: "alice"})
	if err := s.InsertFolder(ctx, folder); err != nil {
		t.Fatalf("failed to insert: %v", err)
	}

	got, err := s.FindFolder(ctx, folder.ID)
	if err != nil {
		t.Fatalf("failed to find: %v", err)
	}
	if got.Title != "Development" || got.UserID != "alice" {
		t.Errorf("unexpected folder: %+v", got)
	}
	if got.ParentID != nil {
		t.Errorf("unattached folder should have nil ParentID, got %v", *got.ParentID)
	}
}

func TestStore_FindFolder_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.FindFolder(context.Background(), "missing")
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_FindRootFolder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// No root yet
	_, err := s.FindRootFolder(ctx, "alice")
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	root := model.NewFolder(model.NewFolderParams{UserID: "alice"})
	if err := s.InsertFolder(ctx, root); err != nil {
		t.Fatalf("failed to insert root: %v", err)
	}

	// A child with an edge must not be mistaken for a root.
	child := model.NewFolder(model.NewFolderParams{Title: "Sub", UserID: "alice"})
	if err := s.InsertFolder(ctx, child); err != nil {
		t.Fatalf("failed to insert child: %v", err)
	}
	err = s.InsertTreeNode(ctx, model.TreeNode{
		Type: model.NodeTypeFolder, ItemID: child.ID, ParentFolderID: root.ID,
	})
	if err != nil {
		t.Fatalf("failed to insert edge: %v", err)
	}

	got, err := s.FindRootFolder(ctx, "alice")
	if err != nil {
		t.Fatalf("failed to find root: %v", err)
	}
	if got.ID != root.ID {
		t.Errorf("root mismatch: got %q, want %q", got.ID, root.ID)
	}

	// A second parentless folder is an integrity violation.
	second := model.NewFolder(model.NewFolderParams{UserID: "alice"})
	if err := s.InsertFolder(ctx, second); err != nil {
		t.Fatalf("failed to insert second root: %v", err)
	}
	_, err = s.FindRootFolder(ctx, "alice")
	if !errors.Is(err, model.ErrAmbiguousResult) {
		t.Errorf("expected ErrAmbiguousResult, got %v", err)
	}
}

func TestStore_SharedFolderUniquePerPair(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := model.NewSharedFolder(model.NewSharedFolderParams{
		FolderID: "f1", UserID: "bob", Title: "Projects", ShareID: "s1",
	})
	if err := s.InsertSharedFolder(ctx, first); err != nil {
		t.Fatalf("failed to insert mount: %v", err)
	}

	dup := model.NewSharedFolder(model.NewSharedFolderParams{
		FolderID: "f1", UserID: "bob", Title: "Projects again", ShareID: "s2",
	})
	if err := s.InsertSharedFolder(ctx, dup); err == nil {
		t.Error("expected unique constraint violation for duplicate (folder, user) mount")
	}
}

func TestStore_FindSharesByOwnerAndUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	share := model.NewShare(model.NewShareParams{
		FolderID: "f1", Owner: "alice", Participant: "bob",
		ParticipantType: model.ParticipantUser, CanWrite: true,
	})
	if err := s.InsertShare(ctx, share); err != nil {
		t.Fatalf("failed to insert share: %v", err)
	}

	// No mount yet: the share is not visible to bob.
	shares, err := s.FindSharesByOwnerAndUser(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(shares) != 0 {
		t.Fatalf("expected no visible shares before mount, got %d", len(shares))
	}

	mount := model.NewSharedFolder(model.NewSharedFolderParams{
		FolderID: "f1", UserID: "bob", Title: "Projects", ShareID: share.ID,
	})
	if err := s.InsertSharedFolder(ctx, mount); err != nil {
		t.Fatalf("failed to insert mount: %v", err)
	}

	shares, err = s.FindSharesByOwnerAndUser(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(shares) != 1 || shares[0].ID != share.ID {
		t.Errorf("unexpected shares: %+v", shares)
	}
	if !shares[0].CanWrite {
		t.Error("CanWrite lost in round trip")
	}
}

func TestStore_TreeChildrenOrdered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	nodes := []model.TreeNode{
		{Type: model.NodeTypeBookmark, ItemID: "b2", ParentFolderID: "f1", Order: 1},
		{Type: model.NodeTypeFolder, ItemID: "f2", ParentFolderID: "f1", Order: 0},
		{Type: model.NodeTypeShare, ItemID: "m1", ParentFolderID: "f1", Order: 2},
	}
	for _, n := range nodes {
		if err := s.InsertTreeNode(ctx, n); err != nil {
			t.Fatalf("failed to insert edge: %v", err)
		}
	}

	children, err := s.TreeChildren(ctx, "f1")
	if err != nil {
		t.Fatalf("failed to list children: %v", err)
	}
	if len(children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(children))
	}
	wantOrder := []string{"f2", "b2", "m1"}
	for i, id := range wantOrder {
		if children[i].ItemID != id {
			t.Errorf("position %d: got %q, want %q", i, children[i].ItemID, id)
		}
	}

	ord, err := s.MaxChildOrder(ctx, "f1")
	if err != nil {
		t.Fatalf("MaxChildOrder failed: %v", err)
	}
	if ord != 2 {
		t.Errorf("expected max order 2, got %d", ord)
	}

	ord, err = s.MaxChildOrder(ctx, "empty")
	if err != nil {
		t.Fatalf("MaxChildOrder failed: %v", err)
	}
	if ord != -1 {
		t.Errorf("expected -1 for empty folder, got %d", ord)
	}
}

func TestStore_TxRollback(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	folder := model.NewFolder(model.NewFolderParams{Title: "Doomed", UserID: "alice"})
	err := s.Tx(ctx, func(tx *storage.Store) error {
		if err := tx.InsertFolder(ctx, folder); err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected error from Tx")
	}

	_, err = s.FindFolder(ctx, folder.ID)
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected rollback to discard the insert, got %v", err)
	}
}

func TestStore_PublicFolderSingleTokenPerFolder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	pf := model.NewPublicFolder("f1")
	if err := s.InsertPublicFolder(ctx, pf); err != nil {
		t.Fatalf("failed to insert token: %v", err)
	}
	if err := s.InsertPublicFolder(ctx, model.NewPublicFolder("f1")); err == nil {
		t.Error("expected unique constraint violation for second token on same folder")
	}

	got, err := s.FindPublicFolderByFolder(ctx, "f1")
	if err != nil {
		t.Fatalf("failed to find token: %v", err)
	}
	if got.ID != pf.ID {
		t.Errorf("token mismatch: got %q, want %q", got.ID, pf.ID)
	}
}
