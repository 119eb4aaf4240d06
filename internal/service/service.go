// Package service orchestrates folder, share and public-token
// operations on top of the entity store and the tree mapper.
// Authorization is the caller's concern; operations here validate
// structure and ownership semantics only.
package service

import (
	"context"
	"io"

	"github.com/marksrv/marksrv/internal/events"
	"github.com/marksrv/marksrv/internal/groups"
	"github.com/marksrv/marksrv/internal/storage"
	"github.com/marksrv/marksrv/internal/tree"
)

// ImportResult summarizes a bookmark file import.
type ImportResult struct {
	ImportedFolders   int      `json:"importedFolders"`
	ImportedBookmarks int      `json:"importedBookmarks"`
	Errors            []string `json:"errors"`
}

// FileImporter parses an uploaded bookmark file into a destination
// folder. Implemented by the importer package.
type FileImporter interface {
	ImportFile(ctx context.Context, userID string, file io.Reader, folderID string) (ImportResult, error)
}

// FolderService exposes the folder/share operations consumed by the
// API layer.
type FolderService struct {
	store    *storage.Store
	tree     *tree.Mapper
	groups   groups.Directory
	events   events.Dispatcher
	importer FileImporter
}

// New creates a FolderService. importer may be nil when file import is
// not wired (ImportFile then fails).
func New(store *storage.Store, mapper *tree.Mapper, dir groups.Directory, dispatcher events.Dispatcher, importer FileImporter) *FolderService {
	return &FolderService{
		store:    store,
		tree:     mapper,
		groups:   dir,
		events:   dispatcher,
		importer: importer,
	}
}
