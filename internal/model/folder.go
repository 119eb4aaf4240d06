package model

// Folder represents an owned container for bookmarks and sub-folders.
// ParentID mirrors the tree index for convenience; the tree index is the
// source of truth. It is nil only for a user's root folder.
type Folder struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	UserID   string  `json:"userId"`
	ParentID *string `json:"parentId"`
}

// NewFolderParams holds parameters for creating a new Folder.
type NewFolderParams struct {
	Title  string
	UserID string
}

// NewFolder creates a Folder with generated UUID. The folder is not
// attached anywhere until the tree mapper moves it under a parent.
func NewFolder(params NewFolderParams) Folder {
	return Folder{
		ID:     GenerateUUID(),
		Title:  params.Title,
		UserID: params.UserID,
	}
}
