package entity

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"
)

type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

const (
	RoomCodeLength   = 6
	RoomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	MaxNameLength = 20
)

// Room is the shared record both participants of a match write to.
type Room struct {
	ID            string
	CreatedAt     time.Time
	Player1ID     string
	Player2ID     string
	Player1Name   string
	Player2Name   string
	CurrentPlayer Mark
	Board         Board
	Winner        Winner
	Status        Status
}

func NewRoom(id, playerID, playerName string, createdAt time.Time) *Room {
	return &Room{
		ID:            id,
		CreatedAt:     createdAt,
		Player1ID:     playerID,
		Player1Name:   NormalizeName(playerName),
		CurrentPlayer: PlayerX,
		Status:        StatusWaiting,
	}
}

func (that *Room) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Room) IsPlaying() bool {
	return that.Status == StatusPlaying
}

func (that *Room) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Room) HasBothPlayers() bool {
	return that.Player1ID != "" && that.Player2ID != ""
}

// OpponentOf returns the id of whichever participant is not playerID.
func (that *Room) OpponentOf(playerID string) string {
	switch playerID {
	case that.Player1ID:
		return that.Player2ID
	case that.Player2ID:
		return that.Player1ID
	default:
		return ""
	}
}

// SymbolOf returns X for the room creator, O for the second participant.
func (that *Room) SymbolOf(playerID string) Mark {
	switch {
	case playerID == "":
		return EmptyCell
	case playerID == that.Player1ID:
		return PlayerX
	case playerID == that.Player2ID:
		return PlayerO
	default:
		return EmptyCell
	}
}

// NameOf returns the display name of the participant with the given id.
func (that *Room) NameOf(playerID string) string {
	switch {
	case playerID == "":
		return ""
	case playerID == that.Player1ID:
		return that.Player1Name
	case playerID == that.Player2ID:
		return that.Player2Name
	default:
		return ""
	}
}

// NormalizeName trims the display name and truncates it to MaxNameLength runes.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) <= MaxNameLength {
		return name
	}

	return strings.TrimSpace(string([]rune(name)[:MaxNameLength]))
}

// NormalizeCode canonicalises a user-typed invite code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func IsValidCode(code string) bool {
	if len(code) != RoomCodeLength {
		return false
	}

	for _, r := range code {
		if !strings.ContainsRune(RoomCodeAlphabet, r) {
			return false
		}
	}

	return true
}

// roomJSON is the wire shape of a room, nullable columns are pointers.
type roomJSON struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	Player1ID     *string   `json:"player1_id"`
	Player2ID     *string   `json:"player2_id"`
	Player1Name   *string   `json:"player1_name"`
	Player2Name   *string   `json:"player2_name"`
	CurrentPlayer Mark      `json:"current_player"`
	Board         Board     `json:"board"`
	Winner        Winner    `json:"winner"`
	Status        Status    `json:"status"`
}

func (that Room) MarshalJSON() ([]byte, error) {
	return json.Marshal(roomJSON{
		ID:            that.ID,
		CreatedAt:     that.CreatedAt,
		Player1ID:     nullable(that.Player1ID),
		Player2ID:     nullable(that.Player2ID),
		Player1Name:   nullable(that.Player1Name),
		Player2Name:   nullable(that.Player2Name),
		CurrentPlayer: that.CurrentPlayer,
		Board:         that.Board,
		Winner:        that.Winner,
		Status:        that.Status,
	})
}

func (that *Room) UnmarshalJSON(data []byte) error {
	var wire roomJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*that = Room{
		ID:            wire.ID,
		CreatedAt:     wire.CreatedAt,
		Player1ID:     deref(wire.Player1ID),
		Player2ID:     deref(wire.Player2ID),
		Player1Name:   deref(wire.Player1Name),
		Player2Name:   deref(wire.Player2Name),
		CurrentPlayer: wire.CurrentPlayer,
		Board:         wire.Board,
		Winner:        wire.Winner,
		Status:        wire.Status,
	}

	return nil
}

func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
