package model

import "time"

// Bookmark represents a saved URL. Bookmarks are leaf nodes; their
// position in a folder is recorded in the tree index, not here.
type Bookmark struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	UserID    string    `json:"userId"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewBookmarkParams holds parameters for creating a new Bookmark.
type NewBookmarkParams struct {
	Title  string
	URL    string
	UserID string
	Tags   []string
}

// NewBookmark creates a Bookmark with generated UUID and timestamp.
func NewBookmark(params NewBookmarkParams) Bookmark {
	tags := params.Tags
	if tags == nil {
		tags = []string{}
	}

	return Bookmark{
		ID:        GenerateUUID(),
		Title:     params.Title,
		URL:       params.URL,
		UserID:    params.UserID,
		Tags:      tags,
		CreatedAt: time.Now(),
	}
}
