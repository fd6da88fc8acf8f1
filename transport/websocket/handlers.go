package websocket

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

var errSessionRequired = errors.New("session_id is required")

func (that *Server) handleNewSession(ctx context.Context, conn *connection, action string, payload requestPayload) error {
	mode := entity.ModePvP
	if payload.Mode != "" {
		mode = entity.Mode(payload.Mode)
	}

	session, err := that.sessions.CreateSession(ctx, mode)
	if err != nil {
		that.sendError(conn, action, err)
		return nil
	}

	return conn.send(action, sessionPayload(session, nil))
}

func (that *Server) handleGetSession(ctx context.Context, conn *connection, action string, payload requestPayload) error {
	return that.withSession(conn, action, payload, func(id string) (*entity.Session, error) {
		return that.sessions.GetSession(ctx, id)
	})
}

func (that *Server) handleTurn(ctx context.Context, conn *connection, action string, payload requestPayload) error {
	if payload.SessionID == "" {
		that.sendError(conn, action, errSessionRequired)
		return nil
	}

	position, err := payload.position()
	if err != nil {
		that.sendError(conn, action, err)
		return nil
	}

	return that.turn(ctx, conn, action, payload.SessionID, position)
}

func (that *Server) turn(ctx context.Context, conn *connection, action, id string, position entity.Position) error {
	session, result, err := that.sessions.SubmitMove(ctx, id, position)
	if err != nil {
		reply := responsePayload{Error: err.Error()}
		if session != nil {
			reply = sessionPayload(session, &result)
			reply.Error = err.Error()
		}

		return conn.send(action, reply)
	}

	if err = conn.send(action, sessionPayload(session, &result)); err != nil {
		return err
	}

	if session.AwaitingComputer() {
		return that.scheduleComputerTurn(ctx, conn, session)
	}

	return nil
}

// scheduleComputerTurn - plays the computer's move after the think delay.
// The turn always completes, even if the client is gone by then, unless the
// session was reset or moved on in the meantime.
func (that *Server) scheduleComputerTurn(ctx context.Context, conn *connection, session *entity.Session) error {
	log := that.logger.With("method", "scheduleComputerTurn", "sessionID", session.ID)

	if err := conn.send(actionThinking, sessionPayload(session, nil)); err != nil {
		return err
	}

	detached := context.WithoutCancel(ctx)
	id, ticket, wait := session.ID, session.Ticket(), that.delay()

	that.pending.Add(1)
	go func() {
		defer that.pending.Done()

		time.Sleep(wait)

		played, result, err := that.sessions.PlayScheduledComputerTurn(detached, id, ticket)
		if errors.Is(err, apperror.ErrStaleTurn) {
			log.Debug("dropping computer turn scheduled before a reset or move")
			return
		}

		if err != nil {
			log.Error("computer failed to make turn", "error", err)
			that.sendError(conn, actionTurn, err)
			return
		}

		if err = conn.send(actionTurn, sessionPayload(played, &result)); err != nil {
			log.Warn("failed to deliver computer turn", "error", err)
		}
	}()

	return nil
}

func (that *Server) handleComputerMove(ctx context.Context, conn *connection, action string, payload requestPayload) error {
	if payload.SessionID == "" {
		that.sendError(conn, action, errSessionRequired)
		return nil
	}

	position, err := that.sessions.RequestComputerMove(ctx, payload.SessionID)
	if err != nil {
		that.sendError(conn, action, err)
		return nil
	}

	return conn.send(action, responsePayload{Position: &position})
}

func (that *Server) handleReset(ctx context.Context, conn *connection, action string, payload requestPayload) error {
	return that.withSession(conn, action, payload, func(id string) (*entity.Session, error) {
		return that.sessions.Reset(ctx, id)
	})
}

func (that *Server) handleScoreReset(ctx context.Context, conn *connection, action string, payload requestPayload) error {
	return that.withSession(conn, action, payload, func(id string) (*entity.Session, error) {
		return that.sessions.ResetScore(ctx, id)
	})
}

func (that *Server) handleMode(ctx context.Context, conn *connection, action string, payload requestPayload) error {
	return that.withSession(conn, action, payload, func(id string) (*entity.Session, error) {
		return that.sessions.SetMode(ctx, id, entity.Mode(payload.Mode))
	})
}

// handleKey - keyboard input: 1..9 play a cell, r resets, m toggles the mode.
// Keys are ignored once the game has ended.
func (that *Server) handleKey(ctx context.Context, conn *connection, action string, payload requestPayload) error {
	command, ok := entity.ParseKey(payload.Key)
	if !ok {
		that.sendError(conn, action, fmt.Errorf("unknown key %q", payload.Key))
		return nil
	}

	return that.withSession(conn, action, payload, func(id string) (*entity.Session, error) {
		session, err := that.sessions.GetSession(ctx, id)
		if err != nil || session.IsTerminal() {
			return session, err
		}

		switch command.Action {
		case entity.KeyReset:
			return that.sessions.Reset(ctx, id)
		case entity.KeyToggleMode:
			return that.sessions.SetMode(ctx, id, session.Mode.Toggle())
		default:
			return nil, that.turn(ctx, conn, actionTurn, id, command.Position)
		}
	})
}

// withSession - runs fetch for the payload's session and replies with the result.
// A nil session with a nil error means the reply was already sent.
func (that *Server) withSession(conn *connection, action string, payload requestPayload, fetch func(id string) (*entity.Session, error)) error {
	if payload.SessionID == "" {
		that.sendError(conn, action, errSessionRequired)
		return nil
	}

	session, err := fetch(payload.SessionID)
	if err != nil {
		that.sendError(conn, action, err)
		return nil
	}

	if session == nil {
		return nil
	}

	return conn.send(action, sessionPayload(session, nil))
}
