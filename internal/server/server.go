// Package server exposes the folder service over HTTP. Authentication
// is out of scope; the X-User header names the acting user and an
// absent header means an anonymous caller.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/marksrv/marksrv/internal/exporter"
	"github.com/marksrv/marksrv/internal/model"
	"github.com/marksrv/marksrv/internal/service"
)

// Server routes HTTP requests to the folder service.
type Server struct {
	router   *chi.Mux
	svc      *service.FolderService
	exporter *exporter.Exporter
}

// New creates the Server and mounts all routes.
func New(svc *service.FolderService, exp *exporter.Exporter) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	s := &Server{router: router, svc: svc, exporter: exp}

	router.Route("/api", func(r chi.Router) {
		r.Post("/root", s.handleCreateRoot)
		r.Get("/root", s.handleGetRoot)

		r.Post("/folders", s.handleCreateFolder)
		r.Get("/folders/{id}", s.handleGetFolder)
		r.Patch("/folders/{id}", s.handleUpdateFolder)
		r.Delete("/folders/{id}", s.handleDeleteFolder)
		r.Get("/folders/{id}/children", s.handleFolderChildren)
		r.Patch("/folders/{id}/children", s.handleReorderChild)

		r.Post("/folders/{id}/shares", s.handleCreateShare)
		r.Delete("/shares/{id}", s.handleDeleteShare)

		r.Post("/folders/{id}/publictoken", s.handleCreatePublicToken)
		r.Delete("/folders/{id}/publictoken", s.handleDeletePublicToken)
		r.Get("/public/{token}", s.handleGetPublicFolder)

		r.Post("/folders/{id}/import", s.handleImport)
		r.Get("/export", s.handleExport)

		r.Post("/bookmarks", s.handleCreateBookmark)
		r.Delete("/bookmarks/{id}", s.handleDeleteBookmark)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// userID returns the acting user, "" for anonymous callers.
func userID(r *http.Request) string {
	return r.Header.Get("X-User")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warn().Err(err).Msg("failed to encode response")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain error kinds onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrUnsupportedOperation), errors.Is(err, model.ErrParse):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrUnauthorizedAccess):
		status = http.StatusForbidden
	case errors.Is(err, model.ErrUserLimitExceeded):
		status = http.StatusConflict
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
