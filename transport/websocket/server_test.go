package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-online/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-online/internal/client"
	"github.com/rocketscienceinc/tictactoe-online/internal/entity"
	"github.com/rocketscienceinc/tictactoe-online/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-online/internal/presence"
	"github.com/rocketscienceinc/tictactoe-online/internal/realtime"
	"github.com/rocketscienceinc/tictactoe-online/internal/session"
)

const roomCode = "AB12CD"

type memoryRooms struct {
	mu      sync.Mutex
	rooms   map[string]*entity.Room
	players map[string]*entity.Player
	moves   []entity.Board
}

func newMemoryRooms() *memoryRooms {
	return &memoryRooms{
		rooms:   make(map[string]*entity.Room),
		players: make(map[string]*entity.Player),
	}
}

func (that *memoryRooms) GetOrCreatePlayer(_ context.Context, playerID string) (*entity.Player, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if playerID == "" {
		playerID = "generated"
	}

	player, ok := that.players[playerID]
	if !ok {
		player = &entity.Player{ID: playerID}
		that.players[playerID] = player
	}

	copied := *player
	return &copied, nil
}

func (that *memoryRooms) ForgetRoom(_ context.Context, playerID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if player, ok := that.players[playerID]; ok {
		player.RoomID = ""
	}
	return nil
}

func (that *memoryRooms) CreateRoom(_ context.Context, playerID, playerName string) (*entity.Room, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room := entity.NewRoom(roomCode, playerID, playerName, time.Now())
	that.rooms[room.ID] = room
	that.players[playerID] = &entity.Player{ID: playerID, Name: playerName, RoomID: room.ID}

	copied := *room
	return &copied, nil
}

func (that *memoryRooms) JoinRoom(_ context.Context, code, playerID, playerName string) (*entity.Room, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[code]
	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	switch playerID {
	case room.Player1ID, room.Player2ID:
	default:
		if room.Player2ID != "" {
			return nil, apperror.ErrRoomFull
		}
		room.Player2ID = playerID
		room.Player2Name = playerName
		room.Status = entity.StatusPlaying
	}

	copied := *room
	return &copied, nil
}

func (that *memoryRooms) MakeMove(_ context.Context, roomID string, board entity.Board, mover entity.Mark) (*entity.Room, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[roomID]
	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	that.moves = append(that.moves, board)
	room.Board = board
	room.CurrentPlayer = mover.Opposite()

	copied := *room
	return &copied, nil
}

func (that *memoryRooms) ResetGame(_ context.Context, roomID string) (*entity.Room, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[roomID]
	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	room.Board = entity.Board{}
	copied := *room
	return &copied, nil
}

func (that *memoryRooms) movesCount() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.moves)
}

type fakeSubscription struct {
	events chan realtime.Event

	mu     sync.Mutex
	closed bool
}

func (that *fakeSubscription) Events() <-chan realtime.Event { return that.events }

func (that *fakeSubscription) Track(context.Context, string) error { return nil }

func (that *fakeSubscription) Untrack(context.Context, string) error { return nil }

func (that *fakeSubscription) Members(context.Context) ([]string, error) { return nil, nil }

func (that *fakeSubscription) Close() error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.closed = true
	return nil
}

func (that *fakeSubscription) isClosed() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.closed
}

type fakeBroker struct {
	mu   sync.Mutex
	subs []*fakeSubscription
}

func (that *fakeBroker) Subscribe(context.Context, string) (realtime.Subscription, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	sub := &fakeSubscription{events: make(chan realtime.Event, 8)}
	that.subs = append(that.subs, sub)

	return sub, nil
}

func (that *fakeBroker) last() *fakeSubscription {
	that.mu.Lock()
	defer that.mu.Unlock()

	if len(that.subs) == 0 {
		return nil
	}
	return that.subs[len(that.subs)-1]
}

type harness struct {
	t      *testing.T
	url    string
	conn   *ws.Conn
	rooms  *memoryRooms
	broker *fakeBroker
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	rooms := newMemoryRooms()
	broker := &fakeBroker{}
	options := session.Options{Presence: presence.Config{
		HeartbeatTimeout: time.Minute,
		PollInterval:     time.Minute,
		GracePeriod:      time.Minute,
	}}

	server := New(slog.New(slog.NewJSONHandler(io.Discard, nil)), rooms, broker, options, metrics.New())

	httpServer := httptest.NewServer(server)
	t.Cleanup(httpServer.Close)

	h := &harness{
		t:      t,
		url:    "ws" + strings.TrimPrefix(httpServer.URL, "http"),
		rooms:  rooms,
		broker: broker,
	}

	return h.dial()
}

// dial opens another socket to the same server.
func (that *harness) dial() *harness {
	that.t.Helper()

	conn, _, err := ws.DefaultDialer.Dial(that.url, nil)
	require.NoError(that.t, err)
	that.t.Cleanup(func() { _ = conn.Close() })

	return &harness{t: that.t, url: that.url, conn: conn, rooms: that.rooms, broker: that.broker}
}

func (that *harness) send(action string, payload any) {
	that.t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(that.t, err)
	require.NoError(that.t, that.conn.WriteJSON(Message{Action: action, Payload: body}))
}

// expect reads messages until one with action arrives.
func (that *harness) expect(action string) ResponsePayload {
	that.t.Helper()

	require.NoError(that.t, that.conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	for {
		var message Message
		require.NoError(that.t, that.conn.ReadJSON(&message))

		if message.Action != action {
			continue
		}

		var payload ResponsePayload
		require.NoError(that.t, json.Unmarshal(message.Payload, &payload))

		return payload
	}
}

func (that *harness) connect(id, name string) *entity.Player {
	that.t.Helper()

	that.send(actionConnect, Payload{Player: &PlayerPayload{ID: id, Name: name}})

	return that.expect(actionConnect).Player
}

func TestServer_Connect(t *testing.T) {
	t.Run("New player gets an id", func(t *testing.T) {
		h := newHarness(t)

		player := h.connect("", "Ann")

		require.NotNil(t, player)
		assert.Equal(t, "generated", player.ID)
	})

	t.Run("Actions before connect are rejected", func(t *testing.T) {
		h := newHarness(t)

		h.send(actionRoomCreate, Payload{})

		response := h.expect(actionError)
		assert.Equal(t, "not_connected", response.Code)
		assert.Equal(t, actionRoomCreate, response.Action)
	})

	t.Run("Remembered room is rejoined", func(t *testing.T) {
		// Given: Ann created a room on an earlier connection
		h := newHarness(t)
		h.connect("ann", "Ann")
		h.send(actionRoomCreate, Payload{})
		h.expect(actionRoomState)

		// When: Ann connects again on a new socket
		second := h.dial()
		second.send(actionConnect, Payload{Player: &PlayerPayload{ID: "ann"}})
		second.expect(actionConnect)

		// Then: Ann is put back into the room
		state := second.expect(actionRoomState).State
		require.NotNil(t, state)
		assert.Equal(t, roomCode, state.Online.RoomCode)
		assert.Equal(t, "Ann", state.Online.PlayerName)
	})
}

func TestServer_CreateAndPlay(t *testing.T) {
	// Given: Ann connected
	h := newHarness(t)
	h.connect("ann", "Ann")

	// When: Ann creates a room
	h.send(actionRoomCreate, Payload{})

	// Then: Ann waits in it as X
	state := h.expect(actionRoomState).State
	require.NotNil(t, state)
	assert.Equal(t, client.ModeWaiting, state.Online.Mode)
	assert.Equal(t, roomCode, state.Online.RoomCode)
	assert.Equal(t, entity.PlayerX, state.Online.PlayerSymbol)

	// When: the row shows Bob joined
	sub := h.broker.last()
	require.NotNil(t, sub)

	joined := &entity.Room{
		ID:            roomCode,
		Player1ID:     "ann",
		Player2ID:     "bob",
		Player1Name:   "Ann",
		Player2Name:   "Bob",
		CurrentPlayer: entity.PlayerX,
		Status:        entity.StatusPlaying,
	}
	sub.events <- realtime.RowChanged{Kind: realtime.RowUpdate, Room: joined}

	// Then: the pushed state is playing
	state = h.expect(actionRoomState).State
	require.NotNil(t, state)
	assert.Equal(t, client.ModePlaying, state.Online.Mode)

	// When: Ann plays the center
	cell := 4
	h.send(actionRoomMove, Payload{Cell: &cell})

	// Then: the proposed board is written
	assert.Eventually(t, func() bool {
		return h.rooms.movesCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	// When: Ann leaves
	h.send(actionRoomLeave, Payload{})

	// Then: the state is reset and the subscription released
	for {
		state = h.expect(actionRoomState).State
		if !state.InRoom() {
			break
		}
	}
	assert.Equal(t, client.ModeCreate, state.Online.Mode)
	assert.True(t, sub.isClosed())
}

func TestServer_Errors(t *testing.T) {
	t.Run("Unknown room", func(t *testing.T) {
		h := newHarness(t)
		h.connect("bob", "Bob")

		h.send(actionRoomJoin, Payload{RoomCode: "zz99zz"})

		assert.Equal(t, "room_not_found", h.expect(actionError).Code)
	})

	t.Run("Invalid code", func(t *testing.T) {
		h := newHarness(t)
		h.connect("bob", "Bob")

		h.send(actionRoomJoin, Payload{RoomCode: "nope"})

		assert.Equal(t, "room_not_found", h.expect(actionError).Code)
	})

	t.Run("Name is required", func(t *testing.T) {
		h := newHarness(t)
		h.connect("bob", "")

		h.send(actionRoomCreate, Payload{})

		assert.Equal(t, "bad_payload", h.expect(actionError).Code)
	})

	t.Run("Move outside a room", func(t *testing.T) {
		h := newHarness(t)
		h.connect("bob", "Bob")

		cell := 0
		h.send(actionRoomMove, Payload{Cell: &cell})

		assert.Equal(t, "no_room", h.expect(actionError).Code)
	})

	t.Run("Move before the opponent arrives", func(t *testing.T) {
		h := newHarness(t)
		h.connect("ann", "Ann")
		h.send(actionRoomCreate, Payload{})
		h.expect(actionRoomState)

		cell := 0
		h.send(actionRoomMove, Payload{Cell: &cell})

		assert.Equal(t, "waiting_for_opponent", h.expect(actionError).Code)
		assert.Zero(t, h.rooms.movesCount())
	})

	t.Run("Unknown action", func(t *testing.T) {
		h := newHarness(t)

		h.send("room:explode", Payload{})

		assert.Equal(t, "bad_payload", h.expect(actionError).Code)
	})
}

func TestServer_AIMove(t *testing.T) {
	t.Run("Picks the center of an empty board", func(t *testing.T) {
		h := newHarness(t)

		h.send(actionAIMove, Payload{Board: &entity.Board{}, Symbol: entity.PlayerO})

		response := h.expect(actionAIMove)
		require.NotNil(t, response.Cell)
		assert.Equal(t, 4, *response.Cell)
	})

	t.Run("Short board is a bad payload", func(t *testing.T) {
		h := newHarness(t)

		// When: the board carries a single cell
		h.send(actionAIMove, map[string]any{"board": []any{"X"}, "symbol": "O"})

		// Then: it is rejected rather than padded
		response := h.expect(actionError)
		assert.Equal(t, actionAIMove, response.Action)
		assert.Equal(t, "bad_payload", response.Code)
	})
}
