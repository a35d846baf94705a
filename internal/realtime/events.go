package realtime

import (
	"github.com/rocketscienceinc/tictactoe-online/internal/entity"
)

// Event is one of RowChanged, PresenceSync, PresenceJoined, PresenceLeft, StatusChanged.
type Event interface {
	isEvent()
}

type RowKind string

const (
	RowInsert RowKind = "INSERT"
	RowUpdate RowKind = "UPDATE"
	RowDelete RowKind = "DELETE"
)

// RowChanged carries the new row for inserts and updates. For deletes only Room.ID is set.
type RowChanged struct {
	Kind RowKind
	Room *entity.Room
}

// PresenceSync is the full snapshot of members announced on the room.
type PresenceSync struct {
	Members []string
}

type PresenceJoined struct {
	Key string
}

type PresenceLeft struct {
	Key string
}

type ChannelStatus string

const (
	StatusSubscribed ChannelStatus = "SUBSCRIBED"
	StatusClosed     ChannelStatus = "CLOSED"
	StatusError      ChannelStatus = "CHANNEL_ERROR"
)

type StatusChanged struct {
	Status ChannelStatus
	Err    error
}

func (RowChanged) isEvent()     {}
func (PresenceSync) isEvent()   {}
func (PresenceJoined) isEvent() {}
func (PresenceLeft) isEvent()   {}
func (StatusChanged) isEvent()  {}

func ChangesTopic(roomID string) string {
	return "room:" + roomID + ":changes"
}

func PresenceTopic(roomID string) string {
	return "room:" + roomID + ":presence"
}

// PresenceKey is the hash holding member/session -> last announce time in unix ms.
func PresenceKey(roomID string) string {
	return "presence:" + roomID
}
