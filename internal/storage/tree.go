package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/marksrv/marksrv/internal/model"
)

// Tree index access. The tree mapper is the sole caller of the write
// operations below; services read structure through the mapper.

// InsertTreeNode records an edge. The (type, item_id) primary key
// guarantees a single parent per node.
func (s *Store) InsertTreeNode(ctx context.Context, n model.TreeNode) error {
	_, err := s.q.ExecContext(ctx,
		"INSERT INTO tree_index (type, item_id, parent_folder_id, ord) VALUES (?, ?, ?, ?)",
		string(n.Type), n.ItemID, n.ParentFolderID, n.Order)
	return err
}

// DeleteTreeNode removes the edge for a node, detaching it. Detaching a
// node that has no edge is a no-op.
func (s *Store) DeleteTreeNode(ctx context.Context, t model.NodeType, itemID string) error {
	_, err := s.q.ExecContext(ctx,
		"DELETE FROM tree_index WHERE type = ? AND item_id = ?", string(t), itemID)
	return err
}

// FindTreeNode returns the edge for a node. Roots and unattached nodes
// have none and yield ErrNotFound.
func (s *Store) FindTreeNode(ctx context.Context, t model.NodeType, itemID string) (model.TreeNode, error) {
	row := s.q.QueryRowContext(ctx,
		"SELECT type, item_id, parent_folder_id, ord FROM tree_index WHERE type = ? AND item_id = ?",
		string(t), itemID)

	var n model.TreeNode
	var typ string
	if err := row.Scan(&typ, &n.ItemID, &n.ParentFolderID, &n.Order); err != nil {
		return model.TreeNode{}, scanErr(err, "tree node", itemID)
	}
	n.Type = model.NodeType(typ)
	return n, nil
}

// TreeParent returns the parent folder id of a node, or ok=false for a
// node with no edge (a root).
func (s *Store) TreeParent(ctx context.Context, t model.NodeType, itemID string) (string, bool, error) {
	n, err := s.FindTreeNode(ctx, t, itemID)
	if errors.Is(err, model.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return n.ParentFolderID, true, nil
}

// TreeChildren returns the ordered child edges of a folder.
func (s *Store) TreeChildren(ctx context.Context, parentFolderID string) ([]model.TreeNode, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT type, item_id, parent_folder_id, ord FROM tree_index WHERE parent_folder_id = ? ORDER BY ord, item_id",
		parentFolderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var children []model.TreeNode
	for rows.Next() {
		var n model.TreeNode
		var typ string
		if err := rows.Scan(&typ, &n.ItemID, &n.ParentFolderID, &n.Order); err != nil {
			return nil, err
		}
		n.Type = model.NodeType(typ)
		children = append(children, n)
	}
	return children, rows.Err()
}

// MaxChildOrder returns the highest ord among a folder's children, or
// -1 when the folder is empty.
func (s *Store) MaxChildOrder(ctx context.Context, parentFolderID string) (int, error) {
	var ord sql.NullInt64
	err := s.q.QueryRowContext(ctx,
		"SELECT MAX(ord) FROM tree_index WHERE parent_folder_id = ?", parentFolderID).Scan(&ord)
	if err != nil {
		return 0, err
	}
	if !ord.Valid {
		return -1, nil
	}
	return int(ord.Int64), nil
}

// SetTreeNodeOrder rewrites the sibling position of an edge.
func (s *Store) SetTreeNodeOrder(ctx context.Context, t model.NodeType, itemID string, ord int) error {
	res, err := s.q.ExecContext(ctx,
		"UPDATE tree_index SET ord = ? WHERE type = ? AND item_id = ?", ord, string(t), itemID)
	if err != nil {
		return err
	}
	return requireRow(res, "tree node", itemID)
}
