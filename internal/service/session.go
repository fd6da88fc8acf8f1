package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

type SessionService interface {
	CreateSession(ctx context.Context, mode entity.Mode) (*entity.Session, error)
	GetSession(ctx context.Context, id string) (*entity.Session, error)
	DeleteSession(ctx context.Context, id string) error

	SubmitMove(ctx context.Context, id string, position entity.Position) (*entity.Session, entity.MoveResult, error)
	RequestComputerMove(ctx context.Context, id string) (entity.Position, error)
	PlayComputerTurn(ctx context.Context, id string) (*entity.Session, entity.MoveResult, error)
	PlayScheduledComputerTurn(ctx context.Context, id string, ticket entity.TurnTicket) (*entity.Session, entity.MoveResult, error)

	Reset(ctx context.Context, id string) (*entity.Session, error)
	ResetScore(ctx context.Context, id string) (*entity.Session, error)
	SetMode(ctx context.Context, id string, mode entity.Mode) (*entity.Session, error)
}

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

type sessionService struct {
	logger *slog.Logger

	sessionRepo sessionRepo
	botService  BotService

	// serializes load-modify-store cycles and the bot's random source
	mu sync.Mutex
}

func NewSessionService(logger *slog.Logger, sessionRepo sessionRepo, botService BotService) SessionService {
	return &sessionService{
		logger:      logger.With("component", "session-service"),
		sessionRepo: sessionRepo,
		botService:  botService,
	}
}

func (that *sessionService) CreateSession(ctx context.Context, mode entity.Mode) (*entity.Session, error) {
	session, err := entity.NewSession(uuid.NewString(), mode)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err = that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	that.logger.Info("session created", "sessionID", session.ID, "mode", session.Mode)

	return session, nil
}

func (that *sessionService) GetSession(ctx context.Context, id string) (*entity.Session, error) {
	session, err := that.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

func (that *sessionService) DeleteSession(ctx context.Context, id string) error {
	if err := that.sessionRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

func (that *sessionService) SubmitMove(ctx context.Context, id string, position entity.Position) (*entity.Session, entity.MoveResult, error) {
	var result entity.MoveResult

	session, err := that.modify(ctx, id, func(session *entity.Session) error {
		var moveErr error
		result, moveErr = session.SubmitMove(position)
		return moveErr
	})
	if err != nil {
		return session, result, fmt.Errorf("failed to make move: %w", err)
	}

	return session, result, nil
}

func (that *sessionService) RequestComputerMove(ctx context.Context, id string) (entity.Position, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, err := that.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("failed to get session: %w", err)
	}

	if session.IsTerminal() || session.Turn == entity.Empty {
		return 0, apperror.ErrNoAvailableMoves
	}

	position, err := that.botService.ChooseMove(session.Board, session.Turn)
	if err != nil {
		return 0, fmt.Errorf("failed to choose move: %w", err)
	}

	return position, nil
}

func (that *sessionService) PlayComputerTurn(ctx context.Context, id string) (*entity.Session, entity.MoveResult, error) {
	return that.playComputer(ctx, id, nil)
}

// PlayScheduledComputerTurn - plays the computer's move only if the session is still
// at the ticket's position, otherwise fails with ErrStaleTurn.
func (that *sessionService) PlayScheduledComputerTurn(
	ctx context.Context, id string, ticket entity.TurnTicket,
) (*entity.Session, entity.MoveResult, error) {
	return that.playComputer(ctx, id, &ticket)
}

func (that *sessionService) playComputer(
	ctx context.Context, id string, ticket *entity.TurnTicket,
) (*entity.Session, entity.MoveResult, error) {
	log := that.logger.With("method", "playComputer", "sessionID", id)

	var result entity.MoveResult

	session, err := that.modify(ctx, id, func(session *entity.Session) error {
		if ticket != nil && !session.Matches(*ticket) {
			return apperror.ErrStaleTurn
		}

		if !session.AwaitingComputer() {
			return apperror.ErrNotYourTurn
		}

		position, err := that.botService.ChooseMove(session.Board, session.Turn)
		if err != nil {
			return fmt.Errorf("failed to choose move: %w", err)
		}

		result, err = session.SubmitComputerMove(position)
		return err
	})
	if err != nil {
		return session, result, fmt.Errorf("computer failed to make move: %w", err)
	}

	log.Debug("computer moved", "position", result.Position, "outcome", result.Outcome.State)

	return session, result, nil
}

func (that *sessionService) Reset(ctx context.Context, id string) (*entity.Session, error) {
	session, err := that.modify(ctx, id, func(session *entity.Session) error {
		session.Reset()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reset session: %w", err)
	}

	return session, nil
}

func (that *sessionService) ResetScore(ctx context.Context, id string) (*entity.Session, error) {
	session, err := that.modify(ctx, id, func(session *entity.Session) error {
		session.ResetScore()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reset score: %w", err)
	}

	return session, nil
}

func (that *sessionService) SetMode(ctx context.Context, id string, mode entity.Mode) (*entity.Session, error) {
	session, err := that.modify(ctx, id, func(session *entity.Session) error {
		return session.SetMode(mode)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set mode: %w", err)
	}

	return session, nil
}

// modify - loads the session, applies change and stores it only if change succeeded.
func (that *sessionService) modify(ctx context.Context, id string, change func(session *entity.Session) error) (*entity.Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, err := that.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if err = change(session); err != nil {
		if isRejection(err) {
			that.logger.Debug("session change rejected", "sessionID", id, "error", err)
		} else {
			that.logger.Error("session change failed", "sessionID", id, "error", err)
		}
		return session, err
	}

	if err = that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	return session, nil
}

// isRejection - expected outcomes of bad input, not failures.
func isRejection(err error) bool {
	return errors.Is(err, apperror.ErrIllegalMove) ||
		errors.Is(err, apperror.ErrInvalidPosition) ||
		errors.Is(err, apperror.ErrInvalidMode)
}
