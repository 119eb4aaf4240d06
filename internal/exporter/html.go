// Package exporter renders a user's bookmark tree as Netscape bookmark
// HTML, the format browsers exchange.
package exporter

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/marksrv/marksrv/internal/model"
	"github.com/marksrv/marksrv/internal/storage"
	"github.com/marksrv/marksrv/internal/tree"
)

// Exporter walks the tree index and renders entities as HTML. Shared
// mounts are exported under their recipient-local title, with contents
// resolved from the origin folder.
type Exporter struct {
	store *storage.Store
	tree  *tree.Mapper
}

// New creates an Exporter.
func New(store *storage.Store, mapper *tree.Mapper) *Exporter {
	return &Exporter{store: store, tree: mapper}
}

// Export renders the full tree of the given user.
func (e *Exporter) Export(ctx context.Context, userID string) (string, error) {
	root, err := e.store.FindRootFolder(ctx, userID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	if err := e.writeChildren(ctx, &b, root.ID, 1, map[string]bool{root.ID: true}); err != nil {
		return "", err
	}

	b.WriteString("</DL><p>\n")
	return b.String(), nil
}

// writeChildren recursively writes the child nodes of a folder. onPath
// holds the folder ids of the current walk; mounts held by different
// users can make a folder reachable from inside its own contents, and
// such a folder is rendered empty on re-entry instead of recursing.
func (e *Exporter) writeChildren(ctx context.Context, b *strings.Builder, folderID string, indent int, onPath map[string]bool) error {
	prefix := strings.Repeat("    ", indent)

	children, err := e.tree.Children(ctx, folderID)
	if err != nil {
		return err
	}

	for _, child := range children {
		switch child.Type {
		case model.NodeTypeFolder:
			folder, err := e.store.FindFolder(ctx, child.ItemID)
			if err != nil {
				return err
			}
			if err := e.writeFolder(ctx, b, folder.Title, folder.ID, indent, onPath); err != nil {
				return err
			}

		case model.NodeTypeShare:
			mount, err := e.store.FindSharedFolder(ctx, child.ItemID)
			if err != nil {
				return err
			}
			// Contents come from the origin folder's real subtree.
			if err := e.writeFolder(ctx, b, mount.Title, mount.FolderID, indent, onPath); err != nil {
				return err
			}

		case model.NodeTypeBookmark:
			bookmark, err := e.store.FindBookmark(ctx, child.ItemID)
			if err != nil {
				return err
			}
			fmt.Fprintf(b,
				"%s<DT><A HREF=\"%s\" ADD_DATE=\"%d\">%s</A>\n",
				prefix,
				html.EscapeString(bookmark.URL),
				bookmark.CreatedAt.Unix(),
				html.EscapeString(bookmark.Title),
			)
		}
	}
	return nil
}

func (e *Exporter) writeFolder(ctx context.Context, b *strings.Builder, title, folderID string, indent int, onPath map[string]bool) error {
	prefix := strings.Repeat("    ", indent)
	fmt.Fprintf(b, "%s<DT><H3>%s</H3>\n", prefix, html.EscapeString(title))
	fmt.Fprintf(b, "%s<DL><p>\n", prefix)
	if !onPath[folderID] {
		onPath[folderID] = true
		if err := e.writeChildren(ctx, b, folderID, indent+1, onPath); err != nil {
			return err
		}
		delete(onPath, folderID)
	}
	fmt.Fprintf(b, "%s</DL><p>\n", prefix)
	return nil
}
