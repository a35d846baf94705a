package tictactoe

import (
	"errors"

	"github.com/rocketscienceinc/tictactoe-online/internal/apperror"
)

var (
	ErrCellOccupied = apperror.ErrCellOccupied
	ErrInvalidCell  = apperror.ErrInvalidCell
	ErrBoardFull    = errors.New("no free cell left")
)
