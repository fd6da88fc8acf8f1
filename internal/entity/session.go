package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

// Mode - who controls each side.
type Mode string

const (
	ModePvP Mode = "pvp"
	ModeAI  Mode = "ai"
)

func ParseMode(raw string) (Mode, error) {
	switch mode := Mode(raw); mode {
	case ModePvP, ModeAI:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrInvalidMode, raw)
	}
}

func (that Mode) Toggle() Mode {
	if that == ModeAI {
		return ModePvP
	}
	return ModeAI
}

type Controller string

const (
	Human    Controller = "human"
	Computer Controller = "computer"
)

// Controller - in ai mode the second side belongs to the computer.
func (that Mode) Controller(mark Mark) Controller {
	if that == ModeAI && mark == Second {
		return Computer
	}
	return Human
}

// ScoreTally - wins per mark and draws, kept across board resets.
type ScoreTally struct {
	FirstWins  int `json:"x"`
	SecondWins int `json:"o"`
	Draws      int `json:"draw"`
}

func (that *ScoreTally) record(outcome GameOutcome) {
	switch {
	case outcome.State == Draw:
		that.Draws++
	case outcome.State == Won && outcome.Winner == First:
		that.FirstWins++
	case outcome.State == Won && outcome.Winner == Second:
		that.SecondWins++
	}
}

// MoveResult - reply to a move request, accepted or not.
type MoveResult struct {
	Accepted       bool        `json:"accepted"`
	Position       Position    `json:"position"`
	Outcome        GameOutcome `json:"outcome"`
	SideToMoveNext Mark        `json:"side_to_move_next,omitempty"`
}

// Session - one game table: board, side to move, mode and score tally.
// The side to move is Empty once the game is terminal.
type Session struct {
	ID    string     `json:"id"`
	Mode  Mode       `json:"mode"`
	Board Board      `json:"board"`
	Turn  Mark       `json:"side_to_move"`
	Score ScoreTally `json:"score"`

	// bumped by every reset, so positions from an earlier game never match
	Round int `json:"round"`
}

// TurnTicket - the position a deferred computer turn was scheduled for.
type TurnTicket struct {
	Round int
	Board Board
}

func NewSession(id string, mode Mode) (*Session, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}

	return &Session{
		ID:   id,
		Mode: mode,
		Turn: First,
	}, nil
}

func (that *Session) Outcome() GameOutcome {
	return OutcomeOf(that.Board)
}

func (that *Session) IsTerminal() bool {
	return that.Outcome().IsTerminal()
}

// ToMove - controller of the side to move, empty when terminal.
func (that *Session) ToMove() Controller {
	if that.Turn == Empty {
		return ""
	}
	return that.Mode.Controller(that.Turn)
}

func (that *Session) AwaitingComputer() bool {
	return that.ToMove() == Computer
}

// SubmitMove - a human move. Rejected while the computer is to move.
func (that *Session) SubmitMove(position Position) (MoveResult, error) {
	return that.submit(Human, position)
}

// SubmitComputerMove - feeds back the move chosen for the computer side.
func (that *Session) SubmitComputerMove(position Position) (MoveResult, error) {
	return that.submit(Computer, position)
}

func (that *Session) submit(by Controller, position Position) (MoveResult, error) {
	rejected := MoveResult{
		Position:       position,
		Outcome:        that.Outcome(),
		SideToMoveNext: that.Turn,
	}

	if err := position.Validate(); err != nil {
		return rejected, err
	}

	if rejected.Outcome.IsTerminal() || that.Turn == Empty {
		return rejected, apperror.ErrGameFinished
	}

	if that.ToMove() != by {
		return rejected, apperror.ErrNotYourTurn
	}

	if err := that.Board.Place(position, that.Turn); err != nil {
		return rejected, err
	}

	outcome := that.Outcome()
	if outcome.IsTerminal() {
		that.Score.record(outcome)
		that.Turn = Empty
	} else {
		that.Turn = that.Turn.Opponent()
	}

	return MoveResult{
		Accepted:       true,
		Position:       position,
		Outcome:        outcome,
		SideToMoveNext: that.Turn,
	}, nil
}

// WinningLine - set only when the game has been won.
func (that *Session) WinningLine() (WinLine, bool) {
	return WinningLine(that.Board)
}

// Reset - clears the board and gives the move to First. Scores are kept.
func (that *Session) Reset() {
	that.Board = Board{}
	that.Turn = First
	that.Round++
}

func (that *Session) Ticket() TurnTicket {
	return TurnTicket{Round: that.Round, Board: that.Board}
}

// Matches - the session is still at the position the ticket was taken for.
func (that *Session) Matches(ticket TurnTicket) bool {
	return that.Round == ticket.Round && that.Board == ticket.Board
}

func (that *Session) ResetScore() {
	that.Score = ScoreTally{}
}

// SetMode - switches mode and starts a fresh board.
func (that *Session) SetMode(mode Mode) error {
	if _, err := ParseMode(string(mode)); err != nil {
		return err
	}

	that.Mode = mode
	that.Reset()

	return nil
}

// View - read-only snapshot for presentation layers.
type View struct {
	ID          string      `json:"id"`
	Mode        Mode        `json:"mode"`
	Board       Board       `json:"board"`
	SideToMove  Mark        `json:"side_to_move,omitempty"`
	ToMove      Controller  `json:"to_move,omitempty"`
	Outcome     GameOutcome `json:"outcome"`
	WinningLine []Position  `json:"winning_line,omitempty"`
	Score       ScoreTally  `json:"score"`
}

func (that *Session) View() View {
	view := View{
		ID:         that.ID,
		Mode:       that.Mode,
		Board:      that.Board.Clone(),
		SideToMove: that.Turn,
		ToMove:     that.ToMove(),
		Outcome:    that.Outcome(),
		Score:      that.Score,
	}

	if line, ok := that.WinningLine(); ok {
		view.WinningLine = line[:]
	}

	return view
}
