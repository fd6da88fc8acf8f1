package tictactoe

import (
	"math"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

const winScore = 10

// Search - exhaustive minimax with alpha-beta pruning for one maximizing side.
// It is not safe for concurrent use; create one per goroutine.
type Search struct {
	maximizer entity.Mark
	minimizer entity.Mark
	pruning   bool

	nodes int
}

type Option func(*Search)

// WithoutPruning - plain minimax, used to cross-check the pruned search.
func WithoutPruning() Option {
	return func(search *Search) {
		search.pruning = false
	}
}

func New(maximizer entity.Mark, opts ...Option) *Search {
	search := &Search{
		maximizer: maximizer,
		minimizer: maximizer.Opponent(),
		pruning:   true,
	}

	for _, opt := range opts {
		opt(search)
	}

	return search
}

// Nodes - positions evaluated since the search was created.
func (that *Search) Nodes() int {
	return that.nodes
}

// Evaluate - minimax value of board with the given side to move.
// Wins score 10-depth, losses depth-10, draws 0. The board is restored on return.
func (that *Search) Evaluate(board *entity.Board, depth int, maximizing bool, alpha, beta int) int {
	that.nodes++

	switch entity.Winner(*board) {
	case that.maximizer:
		return winScore - depth
	case that.minimizer:
		return depth - winScore
	}

	if board.IsFull() {
		return 0
	}

	if maximizing {
		best := math.MinInt
		for _, position := range board.EmptyPositions() {
			score := that.try(board, position, that.maximizer, func() int {
				return that.Evaluate(board, depth+1, false, alpha, beta)
			})

			best = max(best, score)
			alpha = max(alpha, score)
			if that.pruning && beta <= alpha {
				break
			}
		}

		return best
	}

	best := math.MaxInt
	for _, position := range board.EmptyPositions() {
		score := that.try(board, position, that.minimizer, func() int {
			return that.Evaluate(board, depth+1, true, alpha, beta)
		})

		best = min(best, score)
		beta = min(beta, score)
		if that.pruning && beta <= alpha {
			break
		}
	}

	return best
}

// BestMove - the maximizer's move with the highest value; ties go to the lowest position.
func (that *Search) BestMove(board entity.Board) (entity.Position, error) {
	if entity.OutcomeOf(board).IsTerminal() {
		return 0, apperror.ErrNoAvailableMoves
	}

	trial := board.Clone()
	bestMove, bestScore := entity.Position(-1), math.MinInt

	for _, position := range trial.EmptyPositions() {
		score := that.try(&trial, position, that.maximizer, func() int {
			return that.Evaluate(&trial, 0, false, math.MinInt, math.MaxInt)
		})

		if score > bestScore {
			bestMove, bestScore = position, score
		}
	}

	return bestMove, nil
}

// try - places mark for the duration of explore and clears it afterwards.
func (that *Search) try(board *entity.Board, position entity.Position, mark entity.Mark, explore func() int) int {
	board[position] = mark
	defer func() {
		board[position] = entity.Empty
	}()

	return explore()
}
