package service

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

const (
	DefaultRandomMoveChance    = 0.3
	DefaultRandomMoveThreshold = 6
)

// Randomizer - source of the bot's random decisions. *rand.Rand satisfies it.
type Randomizer interface {
	Float64() float64
	Intn(n int) int
}

type BotService interface {
	ChooseMove(board entity.Board, side entity.Mark) (entity.Position, error)
}

type botService struct {
	rng       Randomizer
	chance    float64
	threshold int
}

// NewBotService - with probability chance, while more than threshold cells are empty,
// the bot plays a random empty cell instead of the searched one.
func NewBotService(rng Randomizer, chance float64, threshold int) BotService {
	return &botService{
		rng:       rng,
		chance:    chance,
		threshold: threshold,
	}
}

func (that *botService) ChooseMove(board entity.Board, side entity.Mark) (entity.Position, error) {
	if !side.IsSide() {
		return 0, fmt.Errorf("%w: mark %q", apperror.ErrIllegalMove, side)
	}

	availableCells := board.EmptyPositions()
	if len(availableCells) == 0 || entity.Winner(board) != entity.Empty {
		return 0, apperror.ErrNoAvailableMoves
	}

	if that.rng.Float64() < that.chance && len(availableCells) > that.threshold {
		return availableCells[that.rng.Intn(len(availableCells))], nil
	}

	move, err := tictactoe.New(side).BestMove(board)
	if err != nil {
		return 0, fmt.Errorf("failed to search best move: %w", err)
	}

	return move, nil
}
