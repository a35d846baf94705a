package tictactoe

import (
	"math/rand"

	"github.com/rocketscienceinc/tictactoe-online/internal/entity"
)

var corners = []int{0, 2, 6, 8}

const center = 4

// AIMove picks the cell for the computer player: win, block, center, a corner, anything.
func AIMove(board entity.Board, ai, human entity.Mark, rnd *rand.Rand) (int, error) {
	free := freeCells(board)
	if len(free) == 0 {
		return 0, ErrBoardFull
	}

	if cell, ok := completingCell(board, ai); ok {
		return cell, nil
	}

	if cell, ok := completingCell(board, human); ok {
		return cell, nil
	}

	if board[center] == entity.EmptyCell {
		return center, nil
	}

	freeCorners := make([]int, 0, len(corners))
	for _, cell := range corners {
		if board[cell] == entity.EmptyCell {
			freeCorners = append(freeCorners, cell)
		}
	}

	if len(freeCorners) > 0 {
		return freeCorners[rnd.Intn(len(freeCorners))], nil
	}

	return free[rnd.Intn(len(free))], nil
}

// completingCell finds a free cell that gives mark a full line.
func completingCell(board entity.Board, mark entity.Mark) (int, bool) {
	for _, line := range WinLines {
		count, empty := 0, -1
		for _, cell := range line {
			switch board[cell] {
			case mark:
				count++
			case entity.EmptyCell:
				empty = cell
			}
		}

		if count == 2 && empty >= 0 {
			return empty, true
		}
	}

	return 0, false
}

func freeCells(board entity.Board) []int {
	cells := make([]int, 0, len(board))
	for i, cell := range board {
		if cell == entity.EmptyCell {
			cells = append(cells, i)
		}
	}
	return cells
}
