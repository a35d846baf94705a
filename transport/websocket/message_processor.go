package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-online/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-online/internal/client"
	"github.com/rocketscienceinc/tictactoe-online/internal/entity"
	"github.com/rocketscienceinc/tictactoe-online/internal/session"
	"github.com/rocketscienceinc/tictactoe-online/internal/tictactoe"
)

const codeInternal = "internal"

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	maxMessageSize = 4096
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type PlayerPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Payload is what clients send, each action reads the fields it needs.
type Payload struct {
	Player   *PlayerPayload `json:"player,omitempty"`
	RoomCode string         `json:"roomCode,omitempty"`
	Cell     *int           `json:"cell,omitempty"`
	Board    *entity.Board  `json:"board,omitempty"`
	Symbol   entity.Mark    `json:"symbol,omitempty"`
}

type ResponsePayload struct {
	Player *entity.Player `json:"player,omitempty"`
	State  *client.State  `json:"state,omitempty"`
	Cell   *int           `json:"cell,omitempty"`
	Action string         `json:"action,omitempty"`
	Error  string         `json:"error,omitempty"`
	Code   string         `json:"code,omitempty"`
}

// connection is one browser. Writes are serialised, everything else is owned by the read loop.
type connection struct {
	conn    *ws.Conn
	writeMu sync.Mutex

	player  *entity.Player
	name    string
	session *session.Session
	rnd     *rand.Rand
}

func (that *connection) sendMessage(action string, payload ResponsePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	response, err := json.Marshal(Message{Action: action, Payload: body})
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	return that.write(ws.TextMessage, response)
}

func (that *connection) sendState(state client.State) error {
	return that.sendMessage(actionRoomState, ResponsePayload{State: &state})
}

func (that *connection) write(messageType int, data []byte) error {
	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err := that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err := that.conn.WriteMessage(messageType, data); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *connection) playerID() string {
	if that.player == nil {
		return ""
	}
	return that.player.ID
}

// errorCode maps domain errors to stable codes the browser can switch on.
func errorCode(err error) string {
	switch {
	case errors.Is(err, apperror.ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, apperror.ErrRoomFull):
		return "room_full"
	case errors.Is(err, apperror.ErrRoomCodeTaken):
		return "room_code_taken"
	case errors.Is(err, apperror.ErrNoRoom):
		return "no_room"
	case errors.Is(err, apperror.ErrWaitingForOpponent):
		return "waiting_for_opponent"
	case errors.Is(err, apperror.ErrGameFinished):
		return "game_finished"
	case errors.Is(err, apperror.ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, apperror.ErrOpponentDisconnected):
		return "opponent_disconnected"
	case errors.Is(err, apperror.ErrCellOccupied):
		return "cell_occupied"
	case errors.Is(err, apperror.ErrInvalidCell):
		return "invalid_cell"
	case errors.Is(err, apperror.ErrInvalidMark):
		return "invalid_mark"
	case errors.Is(err, tictactoe.ErrBoardFull):
		return "board_full"
	case errors.Is(err, errNotConnected):
		return "not_connected"
	case errors.Is(err, errBadPayload):
		return "bad_payload"
	default:
		return codeInternal
	}
}
