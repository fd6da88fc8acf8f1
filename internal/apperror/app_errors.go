package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrIllegalMove     = errors.New("illegal move")
	ErrInvalidPosition = errors.New("invalid position")
	ErrInvalidMode     = errors.New("invalid game mode")
	ErrSessionNotFound = errors.New("session not found")

	ErrNoAvailableMoves = errors.New("no available moves")
)

// Every rejection below is also an ErrIllegalMove.
var (
	ErrCellOccupied = fmt.Errorf("%w: cell is already occupied", ErrIllegalMove)
	ErrGameFinished = fmt.Errorf("%w: game is already finished", ErrIllegalMove)
	ErrNotYourTurn  = fmt.Errorf("%w: it's not your turn", ErrIllegalMove)
	ErrStaleTurn    = fmt.Errorf("%w: board changed since the turn was scheduled", ErrIllegalMove)
)
