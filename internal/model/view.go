package model

// FolderView is the resolved view of a folder for a particular viewer:
// the raw folder when the viewer owns it (or is anonymous), or the
// viewer's mount when one exists for that folder.
type FolderView struct {
	Folder Folder
	Mount  *SharedFolder
}

// Mounted reports whether the view goes through a SharedFolder mount.
func (v FolderView) Mounted() bool {
	return v.Mount != nil
}

// Title returns the viewer-local title: the mount's title override when
// mounted, the folder's own title otherwise.
func (v FolderView) Title() string {
	if v.Mount != nil {
		return v.Mount.Title
	}
	return v.Folder.Title
}
