// Package importer parses Netscape bookmark HTML files and loads their
// folders and bookmarks into a destination folder.
package importer

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/marksrv/marksrv/internal/model"
	"github.com/marksrv/marksrv/internal/service"
	"github.com/marksrv/marksrv/internal/storage"
	"github.com/marksrv/marksrv/internal/tree"
)

// ParsedFolder is a folder entry from a bookmark file. ParentID refers
// to another parsed folder's ID, nil meaning top level of the file.
type ParsedFolder struct {
	ID       string
	Title    string
	ParentID *string
}

// ParsedBookmark is a bookmark entry from a bookmark file. FolderID
// refers to a parsed folder, nil meaning top level of the file.
type ParsedBookmark struct {
	Title     string
	URL       string
	CreatedAt time.Time
	FolderID  *string
}

// Parse reads Netscape bookmark HTML and returns its folders and
// bookmarks. Folders appear before their children.
func Parse(r io.Reader) ([]ParsedFolder, []ParsedBookmark, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", model.ErrParse, err)
	}

	var folders []ParsedFolder
	var bookmarks []ParsedBookmark

	// Track current folder stack for hierarchy
	var folderStack []*string     // stack of parsed folder IDs, nil = top level
	var pendingFolder *ParsedFolder // folder waiting to be pushed on next DL

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				title := getTextContent(n)
				if title != "" {
					var parentID *string
					if len(folderStack) > 0 {
						parentID = folderStack[len(folderStack)-1]
					}
					folders = append(folders, ParsedFolder{
						ID:       model.GenerateUUID(),
						Title:    title,
						ParentID: parentID,
					})
					// Pushed onto the stack when the matching DL shows up
					pendingFolder = &folders[len(folders)-1]
				}
				return

			case "a":
				href := getAttr(n, "href")
				if href == "" {
					// Skip bookmarks without URL
					return
				}

				title := getTextContent(n)
				if title == "" {
					title = href // fallback to URL as title
				}

				var folderID *string
				if len(folderStack) > 0 {
					folderID = folderStack[len(folderStack)-1]
				}

				createdAt := time.Now()
				if addDate := getAttr(n, "add_date"); addDate != "" {
					if ts, err := strconv.ParseInt(addDate, 10, 64); err == nil {
						createdAt = time.Unix(ts, 0)
					}
				}

				bookmarks = append(bookmarks, ParsedBookmark{
					Title:     title,
					URL:       href,
					CreatedAt: createdAt,
					FolderID:  folderID,
				})
				return

			case "dl":
				pushedFolder := false
				if pendingFolder != nil {
					id := pendingFolder.ID
					folderStack = append(folderStack, &id)
					pendingFolder = nil
					pushedFolder = true
				}

				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}

				if pushedFolder && len(folderStack) > 0 {
					folderStack = folderStack[:len(folderStack)-1]
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return folders, bookmarks, nil
}

// Importer loads parsed bookmark files into the store, one entity per
// transaction, collecting per-item errors instead of aborting.
type Importer struct {
	store *storage.Store
	tree  *tree.Mapper

	// MaxBookmarksPerUser rejects imports that would push a user past
	// the quota. Zero means unlimited.
	MaxBookmarksPerUser int
}

// New creates an Importer.
func New(store *storage.Store, mapper *tree.Mapper, maxBookmarksPerUser int) *Importer {
	return &Importer{store: store, tree: mapper, MaxBookmarksPerUser: maxBookmarksPerUser}
}

// ImportFile parses the file and creates its folders and bookmarks
// under the destination folder, which must belong to userID.
func (im *Importer) ImportFile(ctx context.Context, userID string, file io.Reader, folderID string) (service.ImportResult, error) {
	var result service.ImportResult

	dest, err := im.store.FindFolder(ctx, folderID)
	if err != nil {
		return result, err
	}
	if dest.UserID != userID {
		return result, fmt.Errorf("folder %q does not belong to user %q: %w", folderID, userID, model.ErrUnauthorizedAccess)
	}

	folders, bookmarks, err := Parse(file)
	if err != nil {
		return result, err
	}

	if im.MaxBookmarksPerUser > 0 {
		count, err := im.store.CountBookmarksByUser(ctx, userID)
		if err != nil {
			return result, err
		}
		if count+len(bookmarks) > im.MaxBookmarksPerUser {
			return result, fmt.Errorf("import of %d bookmarks: %w", len(bookmarks), model.ErrUserLimitExceeded)
		}
	}

	// Parsed ids -> created folder ids. Parse order guarantees a
	// parent is created before its children.
	created := make(map[string]string, len(folders))
	for _, pf := range folders {
		folder := model.NewFolder(model.NewFolderParams{Title: pf.Title, UserID: userID})
		parentID := dest.ID
		if pf.ParentID != nil {
			mapped, ok := created[*pf.ParentID]
			if !ok {
				result.Errors = append(result.Errors, fmt.Sprintf("folder %q: parent was not imported", pf.Title))
				continue
			}
			parentID = mapped
		}

		err := im.store.Tx(ctx, func(tx *storage.Store) error {
			if err := tx.InsertFolder(ctx, folder); err != nil {
				return err
			}
			return im.tree.Bind(tx).Move(ctx, model.NodeTypeFolder, folder.ID, parentID)
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("folder %q: %v", pf.Title, err))
			continue
		}
		created[pf.ID] = folder.ID
		result.ImportedFolders++
	}

	for _, pb := range bookmarks {
		bookmark := model.NewBookmark(model.NewBookmarkParams{
			Title:  pb.Title,
			URL:    pb.URL,
			UserID: userID,
		})
		bookmark.CreatedAt = pb.CreatedAt

		parentID := dest.ID
		if pb.FolderID != nil {
			mapped, ok := created[*pb.FolderID]
			if !ok {
				result.Errors = append(result.Errors, fmt.Sprintf("bookmark %q: folder was not imported", pb.Title))
				continue
			}
			parentID = mapped
		}

		err := im.store.Tx(ctx, func(tx *storage.Store) error {
			if err := tx.InsertBookmark(ctx, bookmark); err != nil {
				return err
			}
			return im.tree.Bind(tx).Move(ctx, model.NodeTypeBookmark, bookmark.ID, parentID)
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("bookmark %q: %v", pb.Title, err))
			continue
		}
		result.ImportedBookmarks++
	}

	return result, nil
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}
