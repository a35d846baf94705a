package entity

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrInvalidMark  = errors.New("invalid mark")
	ErrInvalidBoard = errors.New("invalid board")
)

// Mark is the content of a single board cell, and also a player's symbol.
type Mark string

const (
	PlayerX   Mark = "X"
	PlayerO   Mark = "O"
	EmptyCell Mark = ""
)

// Opposite returns the symbol of the other player.
func (that Mark) Opposite() Mark {
	if that == PlayerX {
		return PlayerO
	}
	return PlayerX
}

func (that Mark) IsPlayer() bool {
	return that == PlayerX || that == PlayerO
}

// MarshalJSON encodes an empty cell as null.
func (that Mark) MarshalJSON() ([]byte, error) {
	if that == EmptyCell {
		return []byte("null"), nil
	}
	return json.Marshal(string(that))
}

func (that *Mark) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*that = EmptyCell
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidMark, data)
	}

	switch mark := Mark(raw); mark {
	case PlayerX, PlayerO, EmptyCell:
		*that = mark
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMark, raw)
	}
}

// Board holds the 9 cells, index i maps to row i/3 and column i%3.
type Board [9]Mark

// UnmarshalJSON accepts exactly 9 cells. null leaves the board untouched.
func (that *Board) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var cells []Mark
	if err := json.Unmarshal(data, &cells); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBoard, err)
	}

	if len(cells) != len(that) {
		return fmt.Errorf("%w: %d cells", ErrInvalidBoard, len(cells))
	}

	copy(that[:], cells)

	return nil
}

func (that Board) IsEmpty() bool {
	for _, cell := range that {
		if cell != EmptyCell {
			return false
		}
	}
	return true
}

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}
	return true
}

// Winner is the outcome stored on a room: none, a player symbol, or a tie.
type Winner string

const (
	WinnerNone Winner = ""
	WinnerX    Winner = "X"
	WinnerO    Winner = "O"
	WinnerTie  Winner = "tie"
)

func WinnerOf(mark Mark) Winner {
	switch mark {
	case PlayerX:
		return WinnerX
	case PlayerO:
		return WinnerO
	default:
		return WinnerNone
	}
}

func (that Winner) MarshalJSON() ([]byte, error) {
	if that == WinnerNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(that))
}

func (that *Winner) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*that = WinnerNone
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid winner: %s", data)
	}

	switch winner := Winner(raw); winner {
	case WinnerNone, WinnerX, WinnerO, WinnerTie:
		*that = winner
		return nil
	default:
		return fmt.Errorf("invalid winner: %q", raw)
	}
}
