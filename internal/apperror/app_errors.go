package apperror

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-online/internal/entity"
)

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room is full")
	ErrRoomCodeTaken = errors.New("room code is already taken")
	ErrInvalidMark   = entity.ErrInvalidMark
)

// Client side move guards.
var (
	ErrNoRoom               = errors.New("not in a room")
	ErrGameFinished         = errors.New("game is already finished")
	ErrNotYourTurn          = errors.New("it's not your turn")
	ErrCellOccupied         = errors.New("cell is already occupied")
	ErrInvalidCell          = errors.New("invalid cell index")
	ErrOpponentDisconnected = errors.New("opponent is disconnected")
	ErrWaitingForOpponent   = errors.New("waiting for an opponent")
)

// StoreError wraps any failure of the room store.
type StoreError struct {
	Op  string
	Err error
}

func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

func (that *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", that.Op, that.Err)
}

func (that *StoreError) Unwrap() error {
	return that.Err
}
