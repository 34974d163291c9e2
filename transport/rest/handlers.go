package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/ninarow-backend/internal/apperror"
	"github.com/rocketscienceinc/ninarow-backend/internal/entity"
	"github.com/rocketscienceinc/ninarow-backend/internal/repository"
)

// sessionResponse pairs a session with the status derived from its current
// board, the same shape the websocket replies use.
type sessionResponse struct {
	Session *entity.Session `json:"session"`
	Status  entity.Status   `json:"status"`
}

func (that *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

func (that *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleGetSession")

	id := chi.URLParam(r, "id")

	session, err := that.sessions.GetByID(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSessionNotFound):
			http.Error(w, "session not found", http.StatusNotFound)
		case errors.Is(err, apperror.ErrInvalidConfig):
			log.Error("stored session is not usable", "sessionID", id, "error", err)
			http.Error(w, "stored session is not usable", http.StatusInternalServerError)
		default:
			log.Error("failed to get session", "sessionID", id, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}

		return
	}

	that.writeJSON(w, http.StatusOK, sessionResponse{Session: session, Status: session.Status()})
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}
