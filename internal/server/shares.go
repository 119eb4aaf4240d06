package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marksrv/marksrv/internal/model"
	"github.com/marksrv/marksrv/internal/service"
)

// CreateShareRequest shares a folder with a user or group.
type CreateShareRequest struct {
	Participant string `json:"participant"`
	Type        string `json:"type"` // "user" or "group"
	CanWrite    bool   `json:"canWrite"`
	CanShare    bool   `json:"canShare"`
}

// CreateShareResponse returns the share and any per-member fan-out
// failures for group shares.
type CreateShareResponse struct {
	Share    model.Share           `json:"share"`
	Failures []service.FanoutError `json:"failures,omitempty"`
}

func (s *Server) handleCreateShare(w http.ResponseWriter, r *http.Request) {
	var req CreateShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	share, failures, err := s.svc.CreateShare(r.Context(), chi.URLParam(r, "id"),
		req.Participant, model.ParticipantType(req.Type), req.CanWrite, req.CanShare)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateShareResponse{Share: share, Failures: failures})
}

func (s *Server) handleDeleteShare(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteShare(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
