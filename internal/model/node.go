package model

// NodeType identifies the kind of entry stored in the tree index.
type NodeType string

const (
	NodeTypeFolder   NodeType = "folder"
	NodeTypeBookmark NodeType = "bookmark"
	NodeTypeShare    NodeType = "share"
)

// TreeNode is a typed edge in the tree index. For NodeTypeShare the
// item id refers to a SharedFolder mount, not the origin folder. The
// tree mapper is the sole writer of these records; entity tables never
// hold the authoritative parent pointer.
type TreeNode struct {
	Type           NodeType `json:"type"`
	ItemID         string   `json:"itemId"`
	ParentFolderID string   `json:"parentFolderId"`
	Order          int      `json:"order"`
}
