package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

type sessionResponse struct {
	Session *entity.View       `json:"session,omitempty"`
	Result  *entity.MoveResult `json:"result,omitempty"`
	Error   string             `json:"error,omitempty"`
}

type positionResponse struct {
	Position entity.Position `json:"position"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrInvalidPosition), errors.Is(err, apperror.ErrInvalidMode):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrIllegalMove), errors.Is(err, apperror.ErrNoAvailableMoves):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

func (that *Server) writeSession(w http.ResponseWriter, session *entity.Session, result *entity.MoveResult) {
	view := session.View()
	that.writeJSON(w, http.StatusOK, sessionResponse{Session: &view, Result: result})
}

// writeError - rejections keep the current session and move result in the body when known.
func (that *Server) writeError(w http.ResponseWriter, err error, session *entity.Session, result *entity.MoveResult) {
	status := statusFor(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "error", err)
		message = http.StatusText(status)
	}

	response := sessionResponse{Result: result, Error: message}
	if session != nil {
		view := session.View()
		response.Session = &view
	}

	that.writeJSON(w, status, response)
}
