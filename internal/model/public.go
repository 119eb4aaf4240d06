package model

import "time"

// PublicFolder grants anonymous read access to a folder. The ID doubles
// as the opaque public token; at most one exists per folder.
type PublicFolder struct {
	ID        string    `json:"id"`
	FolderID  string    `json:"folderId"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewPublicFolder creates a PublicFolder with a freshly generated token.
func NewPublicFolder(folderID string) PublicFolder {
	return PublicFolder{
		ID:        GenerateUUID(),
		FolderID:  folderID,
		CreatedAt: time.Now(),
	}
}
