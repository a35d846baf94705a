package tictactoe

import (
	"github.com/rocketscienceinc/tictactoe-online/internal/entity"
)

// WinLines are checked in this order, the first complete one wins.
var WinLines = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Result is the outcome of a board. Line is set only for a win.
type Result struct {
	Winner entity.Winner
	Line   []int
}

func (that Result) IsOver() bool {
	return that.Winner != entity.WinnerNone
}

func (that Result) IsTie() bool {
	return that.Winner == entity.WinnerTie
}

// CheckWinner returns the winning mark and line, a tie when the board is full, or an empty result.
func CheckWinner(board entity.Board) Result {
	for _, line := range WinLines {
		a, b, c := board[line[0]], board[line[1]], board[line[2]]
		if a != entity.EmptyCell && a == b && b == c {
			return Result{
				Winner: entity.WinnerOf(a),
				Line:   []int{line[0], line[1], line[2]},
			}
		}
	}

	if board.IsFull() {
		return Result{Winner: entity.WinnerTie}
	}

	return Result{}
}

// PlaceMark returns a copy of board with mark written to cell.
func PlaceMark(board entity.Board, mark entity.Mark, cell int) (entity.Board, error) {
	if cell < 0 || cell >= len(board) {
		return board, ErrInvalidCell
	}

	if !mark.IsPlayer() {
		return board, entity.ErrInvalidMark
	}

	if board[cell] != entity.EmptyCell {
		return board, ErrCellOccupied
	}

	board[cell] = mark

	return board, nil
}
