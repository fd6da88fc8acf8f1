package entity

// WinLine - three cells that win when they hold the same mark.
type WinLine [3]Position

// rows, then columns, then diagonals. The order decides which line is reported.
var winLines = [8]WinLine{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// WinLines - a copy of the eight winning lines in scan order.
func WinLines() [8]WinLine {
	return winLines
}

// WinningLine - the first satisfied line in scan order.
func WinningLine(board Board) (WinLine, bool) {
	for _, line := range winLines {
		a, b, c := board[line[0]], board[line[1]], board[line[2]]
		if a != Empty && a == b && b == c {
			return line, true
		}
	}

	return WinLine{}, false
}

// Winner - the mark holding the first satisfied line, Empty if none.
func Winner(board Board) Mark {
	line, ok := WinningLine(board)
	if !ok {
		return Empty
	}

	return board[line[0]]
}

func IsDraw(board Board) bool {
	return Winner(board) == Empty && board.IsFull()
}

type OutcomeState string

const (
	InProgress OutcomeState = "in_progress"
	Won        OutcomeState = "won"
	Draw       OutcomeState = "draw"
)

// GameOutcome - derived from a board, never stored.
type GameOutcome struct {
	State  OutcomeState `json:"state"`
	Winner Mark         `json:"winner,omitempty"`
}

func OutcomeOf(board Board) GameOutcome {
	if winner := Winner(board); winner != Empty {
		return GameOutcome{State: Won, Winner: winner}
	}

	if board.IsFull() {
		return GameOutcome{State: Draw}
	}

	return GameOutcome{State: InProgress}
}

func (that GameOutcome) IsTerminal() bool {
	return that.State != InProgress
}
