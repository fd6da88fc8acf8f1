package service

import (
	"math/rand"
	"testing"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRandomizer - returns the same draws every time.
type fixedRandomizer struct {
	float float64
	index int

	intnCalls int
}

func (that *fixedRandomizer) Float64() float64 {
	return that.float
}

func (that *fixedRandomizer) Intn(n int) int {
	that.intnCalls++
	return that.index % n
}

func TestBotService_ChooseMove(t *testing.T) {
	boards := []entity.Board{
		{},
		{4: entity.First},
		{0: entity.First, 4: entity.Second, 8: entity.First},
		{0: entity.First, 1: entity.First, 4: entity.Second},
	}

	t.Run("Chance zero always plays the searched move", func(t *testing.T) {
		// Given: a bot that never plays randomly
		bot := NewBotService(rand.New(rand.NewSource(1)), 0, DefaultRandomMoveThreshold)

		for _, board := range boards {
			// When: the bot chooses a move
			move, err := bot.ChooseMove(board, entity.Second)
			require.NoError(t, err)

			// Then: it matches the search
			expected, err := tictactoe.New(entity.Second).BestMove(board)
			require.NoError(t, err)
			assert.Equal(t, expected, move, "board %v", board)
		}
	})

	t.Run("Chance one plays a random empty cell in the early game", func(t *testing.T) {
		for seed := int64(0); seed < 20; seed++ {
			// Given: a bot that always plays randomly
			bot := NewBotService(rand.New(rand.NewSource(seed)), 1, DefaultRandomMoveThreshold)
			board := entity.Board{4: entity.First}

			// When: more than six cells are empty
			move, err := bot.ChooseMove(board, entity.Second)

			// Then: the move is one of the empty cells
			require.NoError(t, err)
			assert.Contains(t, board.EmptyPositions(), move)
		}
	})

	t.Run("Random pick indexes the empty cells", func(t *testing.T) {
		rng := &fixedRandomizer{float: 0, index: 3}
		bot := NewBotService(rng, DefaultRandomMoveChance, DefaultRandomMoveThreshold)

		move, err := bot.ChooseMove(entity.Board{0: entity.First}, entity.Second)

		require.NoError(t, err)
		assert.Equal(t, entity.Position(4), move)
		assert.Equal(t, 1, rng.intnCalls)
	})

	t.Run("Draw above the chance uses the search", func(t *testing.T) {
		rng := &fixedRandomizer{float: 0.5}
		bot := NewBotService(rng, DefaultRandomMoveChance, DefaultRandomMoveThreshold)

		move, err := bot.ChooseMove(entity.Board{4: entity.First}, entity.Second)

		require.NoError(t, err)
		assert.Equal(t, entity.Position(0), move)
		assert.Zero(t, rng.intnCalls)
	})

	t.Run("Threshold switches randomness off late in the game", func(t *testing.T) {
		// Given: six empty cells and a bot that would always play randomly
		rng := &fixedRandomizer{float: 0, index: 0}
		bot := NewBotService(rng, 1, DefaultRandomMoveThreshold)
		board := entity.Board{
			entity.First, entity.First, entity.Empty,
			entity.Empty, entity.Second, entity.Empty,
			entity.Empty, entity.Empty, entity.Empty,
		}

		// When: the bot chooses
		move, err := bot.ChooseMove(board, entity.Second)

		// Then: it blocks instead of playing randomly
		require.NoError(t, err)
		assert.Equal(t, entity.Position(2), move)
		assert.Zero(t, rng.intnCalls)
	})

	t.Run("Finished board has no moves", func(t *testing.T) {
		bot := NewBotService(&fixedRandomizer{}, 0, DefaultRandomMoveThreshold)
		board := entity.Board{
			entity.First, entity.First, entity.First,
			entity.Second, entity.Second, entity.Empty,
			entity.Empty, entity.Empty, entity.Empty,
		}

		_, err := bot.ChooseMove(board, entity.Second)

		require.ErrorIs(t, err, apperror.ErrNoAvailableMoves)
	})
}
