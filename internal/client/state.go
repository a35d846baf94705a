package client

import (
	"github.com/rocketscienceinc/tictactoe-online/internal/entity"
)

type Mode string

const (
	ModeCreate  Mode = "create"
	ModeWaiting Mode = "waiting"
	ModePlaying Mode = "playing"
)

type ConnectionStatus string

const (
	Disconnected ConnectionStatus = "disconnected"
	Connecting   ConnectionStatus = "connecting"
	Connected    ConnectionStatus = "connected"
)

// GameState is what the board renders.
type GameState struct {
	Board         entity.Board  `json:"board"`
	CurrentPlayer entity.Mark   `json:"currentPlayer"`
	Winner        entity.Winner `json:"winner"`
	IsGameActive  bool          `json:"isGameActive"`
	WinningLine   []int         `json:"winningLine"`
	IsAIThinking  bool          `json:"isAiThinking"`
}

// OnlineState is the local view of the room and of the opponent.
type OnlineState struct {
	Mode                 Mode             `json:"mode"`
	RoomCode             string           `json:"roomCode"`
	PlayerName           string           `json:"playerName"`
	Room                 *entity.Room     `json:"room"`
	PlayerID             string           `json:"playerId"`
	PlayerSymbol         entity.Mark      `json:"playerSymbol"`
	OpponentConnected    bool             `json:"opponentConnected"`
	OpponentDisconnected bool             `json:"opponentDisconnected"`
	ConnectionStatus     ConnectionStatus `json:"connectionStatus"`
}

// State is derived from room snapshots and presence signals, it holds no authority of its own.
type State struct {
	Game   GameState   `json:"game"`
	Online OnlineState `json:"online"`
}

func NewGameState() GameState {
	return GameState{
		CurrentPlayer: entity.PlayerX,
		IsGameActive:  true,
	}
}

func NewState(playerID, playerName string) State {
	return State{
		Game: NewGameState(),
		Online: OnlineState{
			Mode:             ModeCreate,
			PlayerName:       entity.NormalizeName(playerName),
			PlayerID:         playerID,
			ConnectionStatus: Disconnected,
		},
	}
}

// Reset drops the room and keeps the player identity.
func Reset(state State) State {
	return NewState(state.Online.PlayerID, state.Online.PlayerName)
}

func (that State) InRoom() bool {
	return that.Online.Room != nil
}

func (that State) RoomID() string {
	if that.Online.Room == nil {
		return ""
	}
	return that.Online.Room.ID
}
