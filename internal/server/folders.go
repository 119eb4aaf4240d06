package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marksrv/marksrv/internal/model"
)

// FolderResponse is the effective view of a folder for the caller.
type FolderResponse struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	UserID   string  `json:"userId"`
	ParentID *string `json:"parentId,omitempty"`
	Mounted  bool    `json:"mounted"`
	MountID  string  `json:"mountId,omitempty"`
}

func folderResponse(view model.FolderView) FolderResponse {
	resp := FolderResponse{
		ID:       view.Folder.ID,
		Title:    view.Title(),
		UserID:   view.Folder.UserID,
		ParentID: view.Folder.ParentID,
		Mounted:  view.Mounted(),
	}
	if view.Mount != nil {
		resp.MountID = view.Mount.ID
	}
	return resp
}

func (s *Server) handleCreateRoot(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	if user == "" {
		writeError(w, model.ErrUnauthorizedAccess)
		return
	}
	root, err := s.svc.CreateRootFolder(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, folderResponse(model.FolderView{Folder: root}))
}

func (s *Server) handleGetRoot(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	if user == "" {
		writeError(w, model.ErrUnauthorizedAccess)
		return
	}
	root, err := s.svc.GetRootFolder(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, folderResponse(model.FolderView{Folder: root}))
}

// CreateFolderRequest creates a folder under a parent.
type CreateFolderRequest struct {
	Title          string `json:"title"`
	ParentFolderID string `json:"parentFolderId"`
}

func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	var req CreateFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	folder, err := s.svc.Create(r.Context(), req.Title, req.ParentFolderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, folderResponse(model.FolderView{Folder: folder}))
}

func (s *Server) handleGetFolder(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.FindSharedFolderOrFolder(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, folderResponse(view))
}

// UpdateFolderRequest renames and/or moves a folder. Omitted fields are
// left unchanged.
type UpdateFolderRequest struct {
	Title          *string `json:"title"`
	ParentFolderID *string `json:"parentFolderId"`
}

func (s *Server) handleUpdateFolder(w http.ResponseWriter, r *http.Request) {
	var req UpdateFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	view, err := s.svc.UpdateSharedFolderOrFolder(r.Context(), userID(r), chi.URLParam(r, "id"), req.Title, req.ParentFolderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, folderResponse(view))
}

func (s *Server) handleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteSharedFolderOrFolder(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChildResponse is one entry of a folder listing.
type ChildResponse struct {
	Type   string `json:"type"`
	ItemID string `json:"itemId"`
	Order  int    `json:"order"`
}

// ReorderChildRequest repositions one child of a folder among its
// siblings.
type ReorderChildRequest struct {
	Type   string `json:"type"`
	ItemID string `json:"itemId"`
	Index  int    `json:"index"`
}

func (s *Server) handleReorderChild(w http.ResponseWriter, r *http.Request) {
	var req ReorderChildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	folderID := chi.URLParam(r, "id")
	children, err := s.svc.Children(r.Context(), folderID)
	if err != nil {
		writeError(w, err)
		return
	}
	member := false
	for _, child := range children {
		if string(child.Type) == req.Type && child.ItemID == req.ItemID {
			member = true
			break
		}
	}
	if !member {
		writeError(w, fmt.Errorf("%s %q is not a child of folder %q: %w",
			req.Type, req.ItemID, folderID, model.ErrUnsupportedOperation))
		return
	}

	if err := s.svc.SetChildOrder(r.Context(), model.NodeType(req.Type), req.ItemID, req.Index); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFolderChildren(w http.ResponseWriter, r *http.Request) {
	children, err := s.svc.Children(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]ChildResponse, 0, len(children))
	for _, child := range children {
		resp = append(resp, ChildResponse{Type: string(child.Type), ItemID: child.ItemID, Order: child.Order})
	}
	writeJSON(w, http.StatusOK, resp)
}
