package websocket

import (
	"fmt"
	"math"

	"github.com/mitchellh/mapstructure"
	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

const (
	actionNew          = "session:new"
	actionGet          = "session:get"
	actionTurn         = "session:turn"
	actionComputerMove = "session:computer-move"
	actionThinking     = "session:thinking"
	actionReset        = "session:reset"
	actionScoreReset   = "session:score-reset"
	actionMode         = "session:mode"
	actionKey          = "session:key"
	actionError        = "error"
)

// Message - a websocket message with an action type and a payload.
type Message struct {
	Action  string                 `json:"action"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

type requestPayload struct {
	SessionID string   `mapstructure:"session_id"`
	Mode      string   `mapstructure:"mode"`
	Position  *float64 `mapstructure:"position"`
	Key       string   `mapstructure:"key"`
}

type responsePayload struct {
	Session  *entity.View       `json:"session,omitempty"`
	Result   *entity.MoveResult `json:"result,omitempty"`
	Position *entity.Position   `json:"position,omitempty"`
	Error    string             `json:"error,omitempty"`
}

type response struct {
	Action  string          `json:"action"`
	Payload responsePayload `json:"payload"`
}

func decodePayload(raw map[string]interface{}) (requestPayload, error) {
	var payload requestPayload
	if err := mapstructure.Decode(raw, &payload); err != nil {
		return requestPayload{}, fmt.Errorf("failed to decode payload: %w", err)
	}

	return payload, nil
}

// position - JSON numbers arrive as float64; only whole cell indexes are accepted.
func (that requestPayload) position() (entity.Position, error) {
	if that.Position == nil {
		return 0, fmt.Errorf("%w: position is required", apperror.ErrInvalidPosition)
	}

	raw := *that.Position
	if math.Trunc(raw) != raw || raw < 0 || raw >= entity.BoardSize {
		return 0, fmt.Errorf("%w: %v", apperror.ErrInvalidPosition, raw)
	}

	return entity.Position(raw), nil
}

func sessionPayload(session *entity.Session, result *entity.MoveResult) responsePayload {
	view := session.View()
	return responsePayload{Session: &view, Result: result}
}
