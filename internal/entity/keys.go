package entity

import "strings"

type KeyAction string

const (
	KeyMove       KeyAction = "move"
	KeyReset      KeyAction = "reset"
	KeyToggleMode KeyAction = "toggle_mode"
)

type KeyCommand struct {
	Action   KeyAction
	Position Position
}

// ParseKey - digits 1..9 pick a cell row by row, r resets, m toggles the mode.
func ParseKey(key string) (KeyCommand, bool) {
	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		return KeyCommand{Action: KeyMove, Position: Position(key[0] - '1')}, true
	}

	switch strings.ToLower(key) {
	case "r":
		return KeyCommand{Action: KeyReset}, true
	case "m":
		return KeyCommand{Action: KeyToggleMode}, true
	default:
		return KeyCommand{}, false
	}
}
