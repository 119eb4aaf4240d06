package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marksrv/marksrv/internal/model"
)

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	if user == "" {
		writeError(w, model.ErrUnauthorizedAccess)
		return
	}
	defer r.Body.Close()

	result, err := s.svc.ImportFile(r.Context(), user, r.Body, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	if user == "" {
		writeError(w, model.ErrUnauthorizedAccess)
		return
	}

	doc, err := s.exporter.Export(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="bookmarks.html"`)
	_, _ = w.Write([]byte(doc))
}

// CreateBookmarkRequest places a bookmark inside a folder.
type CreateBookmarkRequest struct {
	Title          string   `json:"title"`
	URL            string   `json:"url"`
	Tags           []string `json:"tags"`
	ParentFolderID string   `json:"parentFolderId"`
}

func (s *Server) handleCreateBookmark(w http.ResponseWriter, r *http.Request) {
	var req CreateBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	bookmark, err := s.svc.CreateBookmark(r.Context(), req.Title, req.URL, req.Tags, req.ParentFolderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bookmark)
}

func (s *Server) handleDeleteBookmark(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteBookmark(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
