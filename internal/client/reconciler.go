package client

import (
	"github.com/rocketscienceinc/tictactoe-online/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-online/internal/entity"
	"github.com/rocketscienceinc/tictactoe-online/internal/realtime"
	"github.com/rocketscienceinc/tictactoe-online/internal/tictactoe"
)

// ApplyRoom mirrors a room snapshot onto the local state.
func ApplyRoom(state State, room *entity.Room) State {
	online := state.Online
	online.Room = room

	if room.IsPlaying() && online.Mode == ModeWaiting && room.Player2ID != "" {
		online.Mode = ModePlaying
		online.OpponentConnected = true
		online.OpponentDisconnected = false
	}

	game := state.Game
	game.Board = room.Board
	game.CurrentPlayer = room.CurrentPlayer

	// A cleared board wins over a stale finished status.
	if room.Board.IsEmpty() {
		game.Winner = entity.WinnerNone
		game.IsGameActive = true
		game.WinningLine = nil
	} else {
		game.Winner = room.Winner
		game.IsGameActive = room.Winner == entity.WinnerNone
		game.WinningLine = tictactoe.CheckWinner(room.Board).Line
	}

	return State{Game: game, Online: online}
}

// ApplyCreated is the state right after this player created room.
func ApplyCreated(state State, room *entity.Room) State {
	state.Online.RoomCode = room.ID
	state.Online.PlayerSymbol = entity.PlayerX
	state.Online.Mode = ModeWaiting
	state.Online.OpponentConnected = false
	state.Online.OpponentDisconnected = false

	return ApplyRoom(state, room)
}

// ApplyJoined is the state right after this player joined or rejoined room.
func ApplyJoined(state State, room *entity.Room) State {
	state.Online.RoomCode = room.ID
	state.Online.PlayerSymbol = room.SymbolOf(state.Online.PlayerID)
	state.Online.OpponentConnected = room.HasBothPlayers()
	state.Online.OpponentDisconnected = false

	if room.IsPlaying() {
		state.Online.Mode = ModePlaying
	} else {
		state.Online.Mode = ModeWaiting
	}

	return ApplyRoom(state, room)
}

// ApplyOpponentDisconnected pauses the game, only while playing with a connected opponent.
func ApplyOpponentDisconnected(state State) State {
	if state.Online.Mode != ModePlaying || !state.Online.OpponentConnected {
		return state
	}

	state.Online.OpponentDisconnected = true
	state.Online.OpponentConnected = false

	return state
}

func ApplyOpponentReconnected(state State) State {
	state.Online.OpponentDisconnected = false
	state.Online.OpponentConnected = true

	return state
}

func ApplyChannelStatus(state State, status realtime.ChannelStatus) State {
	if status == realtime.StatusSubscribed {
		state.Online.ConnectionStatus = Connected
	} else {
		state.Online.ConnectionStatus = Disconnected
	}

	return state
}

// ApplyRoomDeleted handles the room vanishing under the player.
func ApplyRoomDeleted(state State) State {
	return Reset(state)
}

// ProposeMove returns the board to submit when this player marks cell.
func ProposeMove(state State, cell int) (entity.Board, error) {
	online := state.Online

	switch {
	case online.Room == nil || !online.PlayerSymbol.IsPlayer():
		return state.Game.Board, apperror.ErrNoRoom
	case online.Mode != ModePlaying || !online.Room.HasBothPlayers():
		return state.Game.Board, apperror.ErrWaitingForOpponent
	case state.Game.Winner != entity.WinnerNone || !state.Game.IsGameActive:
		return state.Game.Board, apperror.ErrGameFinished
	case state.Game.CurrentPlayer != online.PlayerSymbol:
		return state.Game.Board, apperror.ErrNotYourTurn
	case online.OpponentDisconnected:
		return state.Game.Board, apperror.ErrOpponentDisconnected
	}

	return tictactoe.PlaceMark(state.Game.Board, online.PlayerSymbol, cell)
}
