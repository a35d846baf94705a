package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-online/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-online/internal/entity"
	"github.com/rocketscienceinc/tictactoe-online/internal/tictactoe"
)

var ErrEmptyPlayerID = errors.New("player id is empty")

type roomRepo interface {
	Insert(ctx context.Context, room *entity.Room) (*entity.Room, error)
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	Update(ctx context.Context, id string, patch entity.RoomPatch) (*entity.Room, error)
}

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

// RoomManager encodes every room transition as a row write. It never retries.
type RoomManager struct {
	logger *slog.Logger

	roomRepo   roomRepo
	playerRepo playerRepo

	generateCode func() (string, error)
	newPlayerID  func() string
	now          func() time.Time
}

func NewRoomManager(
	logger *slog.Logger,
	roomRepo roomRepo,
	playerRepo playerRepo,
	generateCode func() (string, error),
	newPlayerID func() string,
) *RoomManager {
	return &RoomManager{
		logger: logger.With("component", "room_manager"),

		roomRepo:   roomRepo,
		playerRepo: playerRepo,

		generateCode: generateCode,
		newPlayerID:  newPlayerID,
		now:          time.Now,
	}
}

// CreateRoom inserts a waiting room owned by playerID. A code collision is returned as is.
func (that *RoomManager) CreateRoom(ctx context.Context, playerID, playerName string) (*entity.Room, error) {
	log := that.logger.With("method", "CreateRoom", "player_id", playerID)

	if playerID == "" {
		return nil, ErrEmptyPlayerID
	}

	code, err := that.generateCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate room code: %w", err)
	}

	createdAt := that.now().UTC().Truncate(time.Millisecond)

	room, err := that.roomRepo.Insert(ctx, entity.NewRoom(code, playerID, playerName, createdAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	that.rememberRoom(ctx, playerID, room.Player1Name, room.ID)

	log.Info("room created", "room_id", room.ID)

	return room, nil
}

// JoinRoom claims the free slot of a room, or rejoins it when playerID already holds a slot.
func (that *RoomManager) JoinRoom(ctx context.Context, roomCode, playerID, playerName string) (*entity.Room, error) {
	log := that.logger.With("method", "JoinRoom", "player_id", playerID)

	if playerID == "" {
		return nil, ErrEmptyPlayerID
	}

	room, err := that.roomRepo.GetByID(ctx, entity.NormalizeCode(roomCode))
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	name := entity.NormalizeName(playerName)

	var patch entity.RoomPatch

	switch playerID {
	case room.Player1ID:
		patch.Player1Name = &name
		if room.Player2ID != "" {
			patch.Status = rejoinStatus(room)
		}
	case room.Player2ID:
		patch.Player2Name = &name
		patch.Status = rejoinStatus(room)
	default:
		if room.Player2ID != "" {
			return nil, fmt.Errorf("%w: room %s", apperror.ErrRoomFull, room.ID)
		}

		patch.Player2ID = &playerID
		patch.Player2Name = &name
		patch.Status = entity.Ptr(entity.StatusPlaying)
	}

	updated, err := that.roomRepo.Update(ctx, room.ID, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to join room: %w", err)
	}

	that.rememberRoom(ctx, playerID, name, updated.ID)

	log.Info("room joined", "room_id", updated.ID, "status", updated.Status)

	return updated, nil
}

// rejoinStatus keeps a decided game finished, anything else with both players is playing.
func rejoinStatus(room *entity.Room) *entity.Status {
	if room.IsFinished() {
		return entity.Ptr(entity.StatusFinished)
	}
	return entity.Ptr(entity.StatusPlaying)
}

// MakeMove replaces the whole board with the mover's proposal and derives the outcome from it.
func (that *RoomManager) MakeMove(ctx context.Context, roomID string, board entity.Board, mover entity.Mark) (*entity.Room, error) {
	log := that.logger.With("method", "MakeMove", "room_id", roomID)

	if !mover.IsPlayer() {
		return nil, fmt.Errorf("%w: mover %q", apperror.ErrInvalidMark, mover)
	}

	result := tictactoe.CheckWinner(board)

	patch := entity.RoomPatch{
		Board:         &board,
		Winner:        &result.Winner,
		Status:        entity.Ptr(entity.StatusPlaying),
		CurrentPlayer: entity.Ptr(mover.Opposite()),
	}

	if result.IsOver() {
		patch.Status = entity.Ptr(entity.StatusFinished)
		patch.CurrentPlayer = &mover
	}

	room, err := that.roomRepo.Update(ctx, roomID, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to make move: %w", err)
	}

	log.Debug("move applied", "mover", mover, "winner", room.Winner, "status", room.Status)

	return room, nil
}

// ResetGame clears the board and hands the first move to the other symbol.
func (that *RoomManager) ResetGame(ctx context.Context, roomID string) (*entity.Room, error) {
	log := that.logger.With("method", "ResetGame", "room_id", roomID)

	room, err := that.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	updated, err := that.roomRepo.Update(ctx, roomID, entity.RoomPatch{
		Board:         &entity.Board{},
		CurrentPlayer: entity.Ptr(room.CurrentPlayer.Opposite()),
		Winner:        entity.Ptr(entity.WinnerNone),
		Status:        entity.Ptr(entity.StatusPlaying),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reset game: %w", err)
	}

	log.Debug("game reset", "opener", updated.CurrentPlayer)

	return updated, nil
}

// rememberRoom is best effort, a lost profile only costs the player an automatic rejoin.
func (that *RoomManager) rememberRoom(ctx context.Context, playerID, name, roomID string) {
	log := that.logger.With("method", "rememberRoom", "player_id", playerID)

	player := &entity.Player{ID: playerID, Name: name, RoomID: roomID}
	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		log.Warn("failed to remember room", "room_id", roomID, "error", err)
	}
}
