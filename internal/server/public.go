package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marksrv/marksrv/internal/model"
)

// PublicTokenResponse carries the opaque token for a published folder.
type PublicTokenResponse struct {
	Token string `json:"token"`
}

func (s *Server) handleCreatePublicToken(w http.ResponseWriter, r *http.Request) {
	token, err := s.svc.CreateFolderPublicToken(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PublicTokenResponse{Token: token})
}

func (s *Server) handleDeletePublicToken(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteFolderPublicToken(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PublicFolderResponse is the anonymous read view of a published folder.
type PublicFolderResponse struct {
	Folder   FolderResponse  `json:"folder"`
	Children []ChildResponse `json:"children"`
}

func (s *Server) handleGetPublicFolder(w http.ResponseWriter, r *http.Request) {
	folder, err := s.svc.FindFolderByPublicToken(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, err)
		return
	}
	children, err := s.svc.Children(r.Context(), folder.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := PublicFolderResponse{
		Folder:   folderResponse(model.FolderView{Folder: folder}),
		Children: make([]ChildResponse, 0, len(children)),
	}
	for _, child := range children {
		resp.Children = append(resp.Children, ChildResponse{Type: string(child.Type), ItemID: child.ItemID, Order: child.Order})
	}
	writeJSON(w, http.StatusOK, resp)
}
