package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

// Mark - the content of a single cell.
type Mark string

const (
	Empty  Mark = ""
	First  Mark = "X"
	Second Mark = "O"
)

// Opponent - returns the other side. Empty has no opponent.
func (that Mark) Opponent() Mark {
	switch that {
	case First:
		return Second
	case Second:
		return First
	default:
		return Empty
	}
}

func (that Mark) IsSide() bool {
	return that == First || that == Second
}

// Position - row-major cell index on the 3x3 grid.
type Position int

const BoardSize = 9

func (that Position) Validate() error {
	if that < 0 || that >= BoardSize {
		return fmt.Errorf("%w: %d", apperror.ErrInvalidPosition, int(that))
	}

	return nil
}

// Board - all nine cells. The zero value is an empty board.
type Board [BoardSize]Mark

// Place - puts mark on an empty cell of a board that has not been won yet.
func (that *Board) Place(position Position, mark Mark) error {
	if err := position.Validate(); err != nil {
		return err
	}

	if !mark.IsSide() {
		return fmt.Errorf("%w: mark %q", apperror.ErrIllegalMove, mark)
	}

	if Winner(*that) != Empty {
		return apperror.ErrGameFinished
	}

	if that[position] != Empty {
		return fmt.Errorf("%w: position %d", apperror.ErrCellOccupied, position)
	}

	that[position] = mark

	return nil
}

func (that *Board) IsFull() bool {
	for _, cell := range that {
		if cell == Empty {
			return false
		}
	}

	return true
}

// EmptyPositions - empty cells in ascending order.
func (that *Board) EmptyPositions() []Position {
	positions := make([]Position, 0, BoardSize)
	for i, cell := range that {
		if cell == Empty {
			positions = append(positions, Position(i))
		}
	}

	return positions
}

func (that *Board) CountEmpty() int {
	count := 0
	for _, cell := range that {
		if cell == Empty {
			count++
		}
	}

	return count
}

// Clone - value copy, safe to mutate independently.
func (that *Board) Clone() Board {
	return *that
}
