package model

// ParticipantType distinguishes user shares from group shares.
type ParticipantType string

const (
	ParticipantUser  ParticipantType = "user"
	ParticipantGroup ParticipantType = "group"
)

// Share is a grant of access to a folder, targeting a user or a group.
// A group share fans out into one SharedFolder mount per member.
type Share struct {
	ID              string          `json:"id"`
	FolderID        string          `json:"folderId"`
	Owner           string          `json:"owner"`
	Participant     string          `json:"participant"`
	ParticipantType ParticipantType `json:"participantType"`
	CanWrite        bool            `json:"canWrite"`
	CanShare        bool            `json:"canShare"`
}

// NewShareParams holds parameters for creating a new Share.
type NewShareParams struct {
	FolderID        string
	Owner           string
	Participant     string
	ParticipantType ParticipantType
	CanWrite        bool
	CanShare        bool
}

// NewShare creates a Share with generated UUID.
func NewShare(params NewShareParams) Share {
	return Share{
		ID:              GenerateUUID(),
		FolderID:        params.FolderID,
		Owner:           params.Owner,
		Participant:     params.Participant,
		ParticipantType: params.ParticipantType,
		CanWrite:        params.CanWrite,
		CanShare:        params.CanShare,
	}
}

// SharedFolder is the recipient-side mount of a shared folder. It is a
// view into the owner's subtree, not a copy: descendants are resolved
// by walking the origin folder's real children.
type SharedFolder struct {
	ID       string `json:"id"`
	FolderID string `json:"folderId"`
	UserID   string `json:"userId"`
	Title    string `json:"title"`
	ShareID  string `json:"shareId"`
}

// NewSharedFolderParams holds parameters for creating a new mount.
type NewSharedFolderParams struct {
	FolderID string
	UserID   string
	Title    string
	ShareID  string
}

// NewSharedFolder creates a SharedFolder mount with generated UUID.
// The title is seeded from the origin folder and may be renamed by the
// recipient without affecting the origin.
func NewSharedFolder(params NewSharedFolderParams) SharedFolder {
	return SharedFolder{
		ID:       GenerateUUID(),
		FolderID: params.FolderID,
		UserID:   params.UserID,
		Title:    params.Title,
		ShareID:  params.ShareID,
	}
}
