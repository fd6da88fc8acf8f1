package rest

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

type modeRequest struct {
	Mode string `json:"mode"`
}

type moveRequest struct {
	Position *int `json:"position"`
}

func decode(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode request: %w", err)
	}

	return nil
}

func (that *Server) createSession(w http.ResponseWriter, r *http.Request) {
	request := modeRequest{Mode: string(entity.ModePvP)}
	if err := decode(r, &request); err != nil {
		that.writeJSON(w, http.StatusBadRequest, sessionResponse{Error: err.Error()})
		return
	}

	session, err := that.sessions.CreateSession(r.Context(), entity.Mode(request.Mode))
	if err != nil {
		that.writeError(w, err, nil, nil)
		return
	}

	view := session.View()
	that.writeJSON(w, http.StatusCreated, sessionResponse{Session: &view})
}

func (that *Server) getSession(w http.ResponseWriter, r *http.Request) {
	session, err := that.sessions.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err, nil, nil)
		return
	}

	that.writeSession(w, session, nil)
}

func (that *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := that.sessions.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeError(w, err, nil, nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *Server) submitMove(w http.ResponseWriter, r *http.Request) {
	var request moveRequest
	if err := decode(r, &request); err != nil {
		that.writeJSON(w, http.StatusBadRequest, sessionResponse{Error: err.Error()})
		return
	}

	if request.Position == nil {
		that.writeError(w, fmt.Errorf("%w: position is required", apperror.ErrInvalidPosition), nil, nil)
		return
	}

	session, result, err := that.sessions.SubmitMove(r.Context(), chi.URLParam(r, "id"), entity.Position(*request.Position))
	if err != nil {
		var rejected *entity.MoveResult
		if session != nil {
			rejected = &result
		}
		that.writeError(w, err, session, rejected)
		return
	}

	that.writeSession(w, session, &result)
}

func (that *Server) requestComputerMove(w http.ResponseWriter, r *http.Request) {
	position, err := that.sessions.RequestComputerMove(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err, nil, nil)
		return
	}

	that.writeJSON(w, http.StatusOK, positionResponse{Position: position})
}

func (that *Server) playComputerTurn(w http.ResponseWriter, r *http.Request) {
	session, result, err := that.sessions.PlayComputerTurn(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err, session, nil)
		return
	}

	that.writeSession(w, session, &result)
}

func (that *Server) reset(w http.ResponseWriter, r *http.Request) {
	session, err := that.sessions.Reset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err, nil, nil)
		return
	}

	that.writeSession(w, session, nil)
}

func (that *Server) resetScore(w http.ResponseWriter, r *http.Request) {
	session, err := that.sessions.ResetScore(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err, nil, nil)
		return
	}

	that.writeSession(w, session, nil)
}

func (that *Server) setMode(w http.ResponseWriter, r *http.Request) {
	var request modeRequest
	if err := decode(r, &request); err != nil {
		that.writeJSON(w, http.StatusBadRequest, sessionResponse{Error: err.Error()})
		return
	}

	session, err := that.sessions.SetMode(r.Context(), chi.URLParam(r, "id"), entity.Mode(request.Mode))
	if err != nil {
		that.writeError(w, err, nil, nil)
		return
	}

	that.writeSession(w, session, nil)
}
