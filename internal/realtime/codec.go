package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-online/internal/entity"
)

var (
	ErrUnknownEvent   = errors.New("unknown realtime event")
	ErrMalformedEvent = errors.New("malformed realtime event")
)

const (
	presenceJoin  = "join"
	presenceLeave = "leave"
)

type rowMessage struct {
	Type RowKind      `json:"type"`
	New  *entity.Room `json:"new,omitempty"`
	Old  *rowKey      `json:"old,omitempty"`
}

type rowKey struct {
	ID string `json:"id"`
}

type presenceMessage struct {
	Event string `json:"event"`
	Key   string `json:"key"`
}

// EncodeRowChange builds the payload published on ChangesTopic.
func EncodeRowChange(kind RowKind, room *entity.Room) ([]byte, error) {
	msg := rowMessage{Type: kind}

	switch kind {
	case RowInsert, RowUpdate:
		msg.New = room
	case RowDelete:
		msg.Old = &rowKey{ID: room.ID}
	default:
		return nil, fmt.Errorf("%w: row kind %q", ErrUnknownEvent, kind)
	}

	return json.Marshal(msg)
}

func encodePresence(event, key string) ([]byte, error) {
	return json.Marshal(presenceMessage{Event: event, Key: key})
}

// Decode validates a payload received on one of the room topics.
func Decode(topic string, payload []byte) (Event, error) {
	switch {
	case strings.HasSuffix(topic, ":changes"):
		return decodeRow(payload)
	case strings.HasSuffix(topic, ":presence"):
		return decodePresence(payload)
	default:
		return nil, fmt.Errorf("%w: topic %q", ErrUnknownEvent, topic)
	}
}

func decodeRow(payload []byte) (Event, error) {
	var msg rowMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}

	switch msg.Type {
	case RowInsert, RowUpdate:
		if msg.New == nil || msg.New.ID == "" {
			return nil, fmt.Errorf("%w: %s without new row", ErrMalformedEvent, msg.Type)
		}
		return RowChanged{Kind: msg.Type, Room: msg.New}, nil
	case RowDelete:
		if msg.Old == nil || msg.Old.ID == "" {
			return nil, fmt.Errorf("%w: DELETE without old id", ErrMalformedEvent)
		}
		return RowChanged{Kind: RowDelete, Room: &entity.Room{ID: msg.Old.ID}}, nil
	default:
		return nil, fmt.Errorf("%w: row type %q", ErrUnknownEvent, msg.Type)
	}
}

func decodePresence(payload []byte) (Event, error) {
	var msg presenceMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}

	if msg.Key == "" {
		return nil, fmt.Errorf("%w: presence %q without key", ErrMalformedEvent, msg.Event)
	}

	switch msg.Event {
	case presenceJoin:
		return PresenceJoined{Key: msg.Key}, nil
	case presenceLeave:
		return PresenceLeft{Key: msg.Key}, nil
	default:
		return nil, fmt.Errorf("%w: presence event %q", ErrUnknownEvent, msg.Event)
	}
}
