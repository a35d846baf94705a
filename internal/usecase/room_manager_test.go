package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-online/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-online/internal/entity"
	"github.com/rocketscienceinc/tictactoe-online/internal/repository"
	mockedUseCase "github.com/rocketscienceinc/tictactoe-online/mocks/usecase"
)

var (
	errRedisDown = errors.New("redis down")
	errNoEntropy = errors.New("no entropy")
)

const (
	x = entity.PlayerX
	o = entity.PlayerO
	e = entity.EmptyCell
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func fixedCode(code string) func() (string, error) {
	return func() (string, error) {
		return code, nil
	}
}

func fixedPlayerID() string {
	return "generated-id"
}

// memoryRooms is an in-process room table that applies patches like the redis store does.
type memoryRooms struct {
	rooms map[string]*entity.Room
}

func newMemoryRooms() *memoryRooms {
	return &memoryRooms{rooms: make(map[string]*entity.Room)}
}

func (that *memoryRooms) Insert(_ context.Context, room *entity.Room) (*entity.Room, error) {
	if _, ok := that.rooms[room.ID]; ok {
		return nil, apperror.NewStoreError("insert", apperror.ErrRoomCodeTaken)
	}

	stored := *room
	that.rooms[room.ID] = &stored

	return room, nil
}

func (that *memoryRooms) GetByID(_ context.Context, id string) (*entity.Room, error) {
	room, ok := that.rooms[id]
	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	copied := *room

	return &copied, nil
}

func (that *memoryRooms) Update(_ context.Context, id string, patch entity.RoomPatch) (*entity.Room, error) {
	room, ok := that.rooms[id]
	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	patch.Apply(room)
	copied := *room

	return &copied, nil
}

type memoryPlayers map[string]*entity.Player

func (that memoryPlayers) CreateOrUpdate(_ context.Context, player *entity.Player) error {
	that[player.ID] = player
	return nil
}

func (that memoryPlayers) GetByID(_ context.Context, id string) (*entity.Player, error) {
	player, ok := that[id]
	if !ok {
		return nil, repository.ErrPlayerNotFound
	}
	return player, nil
}

func newManager(code string) (*RoomManager, *memoryRooms, memoryPlayers) {
	rooms := newMemoryRooms()
	players := memoryPlayers{}

	manager := NewRoomManager(discardLogger(), rooms, players, fixedCode(code), fixedPlayerID)
	manager.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	return manager, rooms, players
}

func TestRoomManager_EndToEnd(t *testing.T) {
	ctx := context.Background()
	manager, _, players := newManager("AB12CD")

	// Given: Ann creates a room
	room, err := manager.CreateRoom(ctx, "ann", "Ann")
	require.NoError(t, err)

	// Then: the room waits for an opponent with an empty board and X to move
	assert.Equal(t, "AB12CD", room.ID)
	assert.Equal(t, entity.StatusWaiting, room.Status)
	assert.Equal(t, "Ann", room.Player1Name)
	assert.Equal(t, entity.Board{}, room.Board)
	assert.Equal(t, x, room.CurrentPlayer)
	assert.Equal(t, "AB12CD", players["ann"].RoomID)

	// When: Bob joins with a lower case code
	room, err = manager.JoinRoom(ctx, "ab12cd", "bob", "Bob")
	require.NoError(t, err)

	// Then: the game is playing
	assert.Equal(t, entity.StatusPlaying, room.Status)
	assert.Equal(t, "Bob", room.Player2Name)
	assert.Equal(t, "bob", room.Player2ID)

	// When: X plays the center
	room, err = manager.MakeMove(ctx, room.ID, entity.Board{e, e, e, e, x, e, e, e, e}, x)
	require.NoError(t, err)

	// Then: the board reflects the mark and it is O's turn
	assert.Equal(t, x, room.Board[4])
	assert.Equal(t, o, room.CurrentPlayer)
	assert.Equal(t, entity.StatusPlaying, room.Status)
	assert.Equal(t, entity.WinnerNone, room.Winner)
}

func TestRoomManager_CreateRoom(t *testing.T) {
	ctx := context.Background()

	t.Run("Code collision is surfaced without retry", func(t *testing.T) {
		// Given: a store rejecting the generated code
		mockRoomRepo := mockedUseCase.NewMockroomRepo(t)
		mockPlayerRepo := mockedUseCase.NewMockplayerRepo(t)
		manager := NewRoomManager(discardLogger(), mockRoomRepo, mockPlayerRepo, fixedCode("AB12CD"), fixedPlayerID)

		mockRoomRepo.EXPECT().
			Insert(mock.Anything, mock.AnythingOfType("*entity.Room")).
			Return(nil, apperror.NewStoreError("insert", apperror.ErrRoomCodeTaken)).
			Once()

		// When: creating a room
		room, err := manager.CreateRoom(ctx, "ann", "Ann")

		// Then: the store error is returned
		require.ErrorIs(t, err, apperror.ErrRoomCodeTaken)

		var storeErr *apperror.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Nil(t, room)
	})

	t.Run("Name is trimmed and truncated", func(t *testing.T) {
		manager, _, _ := newManager("AB12CD")

		room, err := manager.CreateRoom(ctx, "ann", "   Annabelle-Christina-Longname  ")
		require.NoError(t, err)

		assert.Equal(t, "Annabelle-Christina-", room.Player1Name)
	})

	t.Run("Code generator failure", func(t *testing.T) {
		mockRoomRepo := mockedUseCase.NewMockroomRepo(t)
		mockPlayerRepo := mockedUseCase.NewMockplayerRepo(t)
		manager := NewRoomManager(discardLogger(), mockRoomRepo, mockPlayerRepo, func() (string, error) {
			return "", errNoEntropy
		}, fixedPlayerID)

		_, err := manager.CreateRoom(ctx, "ann", "Ann")

		require.ErrorIs(t, err, errNoEntropy)
	})

	t.Run("Empty player id", func(t *testing.T) {
		manager, _, _ := newManager("AB12CD")

		_, err := manager.CreateRoom(ctx, "", "Ann")

		require.ErrorIs(t, err, ErrEmptyPlayerID)
	})

	t.Run("Failing profile store does not fail the room", func(t *testing.T) {
		mockRoomRepo := mockedUseCase.NewMockroomRepo(t)
		mockPlayerRepo := mockedUseCase.NewMockplayerRepo(t)
		manager := NewRoomManager(discardLogger(), mockRoomRepo, mockPlayerRepo, fixedCode("AB12CD"), fixedPlayerID)

		mockRoomRepo.EXPECT().
			Insert(mock.Anything, mock.AnythingOfType("*entity.Room")).
			RunAndReturn(func(_ context.Context, room *entity.Room) (*entity.Room, error) {
				return room, nil
			}).
			Once()
		mockPlayerRepo.EXPECT().
			CreateOrUpdate(mock.Anything, &entity.Player{ID: "ann", Name: "Ann", RoomID: "AB12CD"}).
			Return(errRedisDown).
			Once()

		room, err := manager.CreateRoom(ctx, "ann", "Ann")

		require.NoError(t, err)
		assert.Equal(t, "AB12CD", room.ID)
	})
}

func TestRoomManager_JoinRoom(t *testing.T) {
	ctx := context.Background()

	t.Run("Third identity gets RoomFull", func(t *testing.T) {
		// Given: a room with two players
		manager, _, _ := newManager("AB12CD")
		_, err := manager.CreateRoom(ctx, "ann", "Ann")
		require.NoError(t, err)
		_, err = manager.JoinRoom(ctx, "AB12CD", "bob", "Bob")
		require.NoError(t, err)

		// When: Carl tries to join
		_, err = manager.JoinRoom(ctx, "AB12CD", "carl", "Carl")

		// Then: RoomFull is returned
		require.ErrorIs(t, err, apperror.ErrRoomFull)
	})

	t.Run("Unknown code gets RoomNotFound", func(t *testing.T) {
		manager, _, _ := newManager("AB12CD")

		_, err := manager.JoinRoom(ctx, "ZZZZZZ", "bob", "Bob")

		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})

	t.Run("Joining twice is idempotent", func(t *testing.T) {
		// Given: Bob already joined
		manager, _, _ := newManager("AB12CD")
		_, err := manager.CreateRoom(ctx, "ann", "Ann")
		require.NoError(t, err)
		first, err := manager.JoinRoom(ctx, "AB12CD", "bob", "Bob")
		require.NoError(t, err)

		// When: Bob joins again with a new name
		second, err := manager.JoinRoom(ctx, "AB12CD", "bob", "Bobby")
		require.NoError(t, err)

		// Then: same slot, still playing, only the name changed
		assert.Equal(t, first.Player1ID, second.Player1ID)
		assert.Equal(t, first.Player2ID, second.Player2ID)
		assert.Equal(t, entity.StatusPlaying, second.Status)
		assert.Equal(t, "Bobby", second.Player2Name)
	})

	t.Run("Host rejoin keeps a waiting room waiting", func(t *testing.T) {
		manager, _, _ := newManager("AB12CD")
		_, err := manager.CreateRoom(ctx, "ann", "Ann")
		require.NoError(t, err)

		room, err := manager.JoinRoom(ctx, "AB12CD", "ann", "Annie")
		require.NoError(t, err)

		assert.Equal(t, entity.StatusWaiting, room.Status)
		assert.Equal(t, "Annie", room.Player1Name)
		assert.Empty(t, room.Player2ID)
	})

	t.Run("Host rejoin of a playing room keeps it playing", func(t *testing.T) {
		manager, _, _ := newManager("AB12CD")
		_, err := manager.CreateRoom(ctx, "ann", "Ann")
		require.NoError(t, err)
		_, err = manager.JoinRoom(ctx, "AB12CD", "bob", "Bob")
		require.NoError(t, err)

		room, err := manager.JoinRoom(ctx, "AB12CD", "ann", "Ann")
		require.NoError(t, err)

		assert.Equal(t, entity.StatusPlaying, room.Status)
	})

	t.Run("Rejoining a decided game keeps it finished", func(t *testing.T) {
		manager, rooms, _ := newManager("AB12CD")
		_, err := manager.CreateRoom(ctx, "ann", "Ann")
		require.NoError(t, err)
		_, err = manager.JoinRoom(ctx, "AB12CD", "bob", "Bob")
		require.NoError(t, err)
		_, err = manager.MakeMove(ctx, "AB12CD", entity.Board{x, x, x, o, o, e, e, e, e}, x)
		require.NoError(t, err)

		room, err := manager.JoinRoom(ctx, "AB12CD", "bob", "Bob")
		require.NoError(t, err)

		assert.Equal(t, entity.StatusFinished, room.Status)
		assert.Equal(t, entity.WinnerX, rooms.rooms["AB12CD"].Winner)
	})

	t.Run("Store failure on update", func(t *testing.T) {
		mockRoomRepo := mockedUseCase.NewMockroomRepo(t)
		mockPlayerRepo := mockedUseCase.NewMockplayerRepo(t)
		manager := NewRoomManager(discardLogger(), mockRoomRepo, mockPlayerRepo, fixedCode("AB12CD"), fixedPlayerID)

		mockRoomRepo.EXPECT().
			GetByID(mock.Anything, "AB12CD").
			Return(&entity.Room{ID: "AB12CD", Player1ID: "ann", Status: entity.StatusWaiting, CurrentPlayer: x}, nil).
			Once()
		mockRoomRepo.EXPECT().
			Update(mock.Anything, "AB12CD", entity.RoomPatch{
				Player2ID:   entity.Ptr("bob"),
				Player2Name: entity.Ptr("Bob"),
				Status:      entity.Ptr(entity.StatusPlaying),
			}).
			Return(nil, apperror.NewStoreError("update", errRedisDown)).
			Once()

		_, err := manager.JoinRoom(ctx, "AB12CD", "bob", " Bob ")

		require.ErrorIs(t, err, errRedisDown)
	})
}

func TestRoomManager_MakeMove(t *testing.T) {
	ctx := context.Background()

	t.Run("Winning move keeps the mover as current player", func(t *testing.T) {
		manager, _, _ := newManager("AB12CD")
		_, err := manager.CreateRoom(ctx, "ann", "Ann")
		require.NoError(t, err)
		_, err = manager.JoinRoom(ctx, "AB12CD", "bob", "Bob")
		require.NoError(t, err)

		room, err := manager.MakeMove(ctx, "AB12CD", entity.Board{o, o, o, x, x, e, x, e, e}, o)
		require.NoError(t, err)

		assert.Equal(t, entity.WinnerO, room.Winner)
		assert.Equal(t, entity.StatusFinished, room.Status)
		assert.Equal(t, o, room.CurrentPlayer)
	})

	t.Run("Tie finishes the game", func(t *testing.T) {
		manager, _, _ := newManager("AB12CD")
		_, err := manager.CreateRoom(ctx, "ann", "Ann")
		require.NoError(t, err)

		room, err := manager.MakeMove(ctx, "AB12CD", entity.Board{x, o, x, x, o, o, o, x, x}, x)
		require.NoError(t, err)

		assert.Equal(t, entity.WinnerTie, room.Winner)
		assert.Equal(t, entity.StatusFinished, room.Status)
		assert.Equal(t, x, room.CurrentPlayer)
	})

	t.Run("Vanished room", func(t *testing.T) {
		manager, _, _ := newManager("AB12CD")

		_, err := manager.MakeMove(ctx, "AB12CD", entity.Board{x}, x)

		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})

	t.Run("Invalid mover", func(t *testing.T) {
		manager, _, _ := newManager("AB12CD")

		_, err := manager.MakeMove(ctx, "AB12CD", entity.Board{x}, e)

		require.ErrorIs(t, err, apperror.ErrInvalidMark)
	})
}

func TestRoomManager_ResetGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Reset clears the board and flips the opener", func(t *testing.T) {
		// Given: a game X won
		manager, _, _ := newManager("AB12CD")
		_, err := manager.CreateRoom(ctx, "ann", "Ann")
		require.NoError(t, err)
		_, err = manager.JoinRoom(ctx, "AB12CD", "bob", "Bob")
		require.NoError(t, err)
		finished, err := manager.MakeMove(ctx, "AB12CD", entity.Board{x, x, x, o, o, e, e, e, e}, x)
		require.NoError(t, err)
		require.Equal(t, x, finished.CurrentPlayer)

		// When: resetting
		room, err := manager.ResetGame(ctx, "AB12CD")
		require.NoError(t, err)

		// Then: fresh board, no winner, playing, O opens
		assert.True(t, room.Board.IsEmpty())
		assert.Equal(t, entity.WinnerNone, room.Winner)
		assert.Equal(t, entity.StatusPlaying, room.Status)
		assert.Equal(t, o, room.CurrentPlayer)

		// When: resetting again
		room, err = manager.ResetGame(ctx, "AB12CD")
		require.NoError(t, err)

		// Then: X opens again
		assert.Equal(t, x, room.CurrentPlayer)
	})

	t.Run("Vanished room", func(t *testing.T) {
		manager, _, _ := newManager("AB12CD")

		_, err := manager.ResetGame(ctx, "AB12CD")

		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})
}

func TestRoomManager_GetOrCreatePlayer(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates a new player when playerID is empty", func(t *testing.T) {
		manager, _, players := newManager("AB12CD")

		player, err := manager.GetOrCreatePlayer(ctx, "")
		require.NoError(t, err)

		assert.Equal(t, "generated-id", player.ID)
		assert.Contains(t, players, "generated-id")
	})

	t.Run("Unknown id is kept", func(t *testing.T) {
		manager, _, players := newManager("AB12CD")

		player, err := manager.GetOrCreatePlayer(ctx, "ann")
		require.NoError(t, err)

		assert.Equal(t, "ann", player.ID)
		assert.Contains(t, players, "ann")
	})

	t.Run("ForgetRoom clears the remembered room", func(t *testing.T) {
		manager, _, players := newManager("AB12CD")
		_, err := manager.CreateRoom(ctx, "ann", "Ann")
		require.NoError(t, err)

		require.NoError(t, manager.ForgetRoom(ctx, "ann"))
		require.NoError(t, manager.ForgetRoom(ctx, "nobody"))

		assert.Empty(t, players["ann"].RoomID)
		assert.Equal(t, "Ann", players["ann"].Name)
	})

	t.Run("Returns existing player when playerID is known", func(t *testing.T) {
		mockRoomRepo := mockedUseCase.NewMockroomRepo(t)
		mockPlayerRepo := mockedUseCase.NewMockplayerRepo(t)
		manager := NewRoomManager(discardLogger(), mockRoomRepo, mockPlayerRepo, fixedCode("AB12CD"), fixedPlayerID)

		existing := &entity.Player{ID: "ann", Name: "Ann", RoomID: "AB12CD"}
		mockPlayerRepo.EXPECT().
			GetByID(mock.Anything, "ann").
			Return(existing, nil).
			Once()

		player, err := manager.GetOrCreatePlayer(ctx, "ann")

		require.NoError(t, err)
		assert.Equal(t, existing, player)
	})

	t.Run("Returns error if the profile store fails", func(t *testing.T) {
		mockRoomRepo := mockedUseCase.NewMockroomRepo(t)
		mockPlayerRepo := mockedUseCase.NewMockplayerRepo(t)
		manager := NewRoomManager(discardLogger(), mockRoomRepo, mockPlayerRepo, fixedCode("AB12CD"), fixedPlayerID)

		mockPlayerRepo.EXPECT().
			GetByID(mock.Anything, "ann").
			Return(nil, errRedisDown).
			Once()

		player, err := manager.GetOrCreatePlayer(ctx, "ann")

		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, player)
	})
}
