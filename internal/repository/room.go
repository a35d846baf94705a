package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-online/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-online/internal/entity"
	"github.com/rocketscienceinc/tictactoe-online/internal/realtime"
)

const (
	createdIndexKey  = "rooms:created"
	finishedIndexKey = "rooms:finished"
)

const (
	fieldID            = "id"
	fieldCreatedAt     = "created_at"
	fieldPlayer1ID     = "player1_id"
	fieldPlayer2ID     = "player2_id"
	fieldPlayer1Name   = "player1_name"
	fieldPlayer2Name   = "player2_name"
	fieldCurrentPlayer = "current_player"
	fieldBoard         = "board"
	fieldWinner        = "winner"
	fieldStatus        = "status"
)

type RoomRepository interface {
	Insert(ctx context.Context, room *entity.Room) (*entity.Room, error)
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	Update(ctx context.Context, id string, patch entity.RoomPatch) (*entity.Room, error)
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int, error)
	DeleteFinished(ctx context.Context) (int, error)
}

// dbRoom keeps one hash per room and publishes every write on the room's changes topic.
type dbRoom struct {
	client *redis.Client
}

func NewRoomRepository(client *redis.Client) RoomRepository {
	return &dbRoom{
		client: client,
	}
}

func roomKey(id string) string {
	return "room:" + id
}

func (that *dbRoom) Insert(ctx context.Context, room *entity.Room) (*entity.Room, error) {
	key := roomKey(room.ID)

	fields, err := roomFields(room)
	if err != nil {
		return nil, apperror.NewStoreError("insert", err)
	}

	payload, err := realtime.EncodeRowChange(realtime.RowInsert, room)
	if err != nil {
		return nil, apperror.NewStoreError("insert", err)
	}

	err = that.client.Watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}

		if exists > 0 {
			return apperror.ErrRoomCodeTaken
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, fields...)
			pipe.ZAdd(ctx, createdIndexKey, redis.Z{Score: float64(room.CreatedAt.UnixMilli()), Member: room.ID})
			pipe.Publish(ctx, realtime.ChangesTopic(room.ID), payload)
			return nil
		})

		return err
	}, key)
	if err != nil {
		return nil, apperror.NewStoreError("insert", err)
	}

	return room, nil
}

func (that *dbRoom) GetByID(ctx context.Context, id string) (*entity.Room, error) {
	values, err := that.client.HGetAll(ctx, roomKey(id)).Result()
	if err != nil {
		return nil, apperror.NewStoreError("get", err)
	}

	if len(values) == 0 {
		return nil, apperror.ErrRoomNotFound
	}

	room, err := roomFromFields(values)
	if err != nil {
		return nil, apperror.NewStoreError("get", err)
	}

	return room, nil
}

// Update applies patch atomically and returns the resulting row. An empty patch is a plain read.
func (that *dbRoom) Update(ctx context.Context, id string, patch entity.RoomPatch) (*entity.Room, error) {
	if patch.IsEmpty() {
		return that.GetByID(ctx, id)
	}

	key := roomKey(id)

	var updated *entity.Room

	err := that.client.Watch(ctx, func(tx *redis.Tx) error {
		values, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}

		if len(values) == 0 {
			return apperror.ErrRoomNotFound
		}

		room, err := roomFromFields(values)
		if err != nil {
			return err
		}

		patch.Apply(room)

		fields, err := patchFields(patch)
		if err != nil {
			return err
		}

		payload, err := realtime.EncodeRowChange(realtime.RowUpdate, room)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, fields...)
			if room.IsFinished() {
				pipe.SAdd(ctx, finishedIndexKey, id)
			} else {
				pipe.SRem(ctx, finishedIndexKey, id)
			}
			pipe.Publish(ctx, realtime.ChangesTopic(id), payload)
			return nil
		})
		if err != nil {
			return err
		}

		updated = room

		return nil
	}, key)

	if errors.Is(err, apperror.ErrRoomNotFound) {
		return nil, apperror.ErrRoomNotFound
	}

	if err != nil {
		return nil, apperror.NewStoreError("update", err)
	}

	return updated, nil
}

// DeleteCreatedBefore removes rooms created before cutoff and returns how many were deleted.
func (that *dbRoom) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	ids, err := that.client.ZRangeByScore(ctx, createdIndexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(cutoff.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, apperror.NewStoreError("delete", err)
	}

	return that.deleteAll(ctx, ids)
}

func (that *dbRoom) DeleteFinished(ctx context.Context) (int, error) {
	ids, err := that.client.SMembers(ctx, finishedIndexKey).Result()
	if err != nil {
		return 0, apperror.NewStoreError("delete", err)
	}

	return that.deleteAll(ctx, ids)
}

func (that *dbRoom) deleteAll(ctx context.Context, ids []string) (int, error) {
	deleted := 0

	for _, id := range ids {
		ok, err := that.delete(ctx, id)
		if err != nil {
			return deleted, apperror.NewStoreError("delete", err)
		}

		if ok {
			deleted++
		}
	}

	return deleted, nil
}

func (that *dbRoom) delete(ctx context.Context, id string) (bool, error) {
	payload, err := realtime.EncodeRowChange(realtime.RowDelete, &entity.Room{ID: id})
	if err != nil {
		return false, err
	}

	var removed *redis.IntCmd

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.Del(ctx, roomKey(id))
		pipe.Del(ctx, realtime.PresenceKey(id))
		pipe.ZRem(ctx, createdIndexKey, id)
		pipe.SRem(ctx, finishedIndexKey, id)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete room %s: %w", id, err)
	}

	if removed.Val() == 0 {
		return false, nil
	}

	if err = that.client.Publish(ctx, realtime.ChangesTopic(id), payload).Err(); err != nil {
		return true, fmt.Errorf("failed to publish delete of room %s: %w", id, err)
	}

	return true, nil
}

func roomFields(room *entity.Room) ([]any, error) {
	board, err := json.Marshal(room.Board)
	if err != nil {
		return nil, fmt.Errorf("could not marshal board: %w", err)
	}

	return []any{
		fieldID, room.ID,
		fieldCreatedAt, room.CreatedAt.UnixMilli(),
		fieldPlayer1ID, room.Player1ID,
		fieldPlayer2ID, room.Player2ID,
		fieldPlayer1Name, room.Player1Name,
		fieldPlayer2Name, room.Player2Name,
		fieldCurrentPlayer, string(room.CurrentPlayer),
		fieldBoard, board,
		fieldWinner, string(room.Winner),
		fieldStatus, string(room.Status),
	}, nil
}

func patchFields(patch entity.RoomPatch) ([]any, error) {
	fields := make([]any, 0, 14)

	if patch.Player1Name != nil {
		fields = append(fields, fieldPlayer1Name, *patch.Player1Name)
	}
	if patch.Player2ID != nil {
		fields = append(fields, fieldPlayer2ID, *patch.Player2ID)
	}
	if patch.Player2Name != nil {
		fields = append(fields, fieldPlayer2Name, *patch.Player2Name)
	}
	if patch.CurrentPlayer != nil {
		fields = append(fields, fieldCurrentPlayer, string(*patch.CurrentPlayer))
	}
	if patch.Board != nil {
		board, err := json.Marshal(*patch.Board)
		if err != nil {
			return nil, fmt.Errorf("could not marshal board: %w", err)
		}
		fields = append(fields, fieldBoard, board)
	}
	if patch.Winner != nil {
		fields = append(fields, fieldWinner, string(*patch.Winner))
	}
	if patch.Status != nil {
		fields = append(fields, fieldStatus, string(*patch.Status))
	}

	return fields, nil
}

func roomFromFields(values map[string]string) (*entity.Room, error) {
	createdAt, err := strconv.ParseInt(values[fieldCreatedAt], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", fieldCreatedAt, err)
	}

	var board entity.Board
	if err = json.Unmarshal([]byte(values[fieldBoard]), &board); err != nil {
		return nil, fmt.Errorf("could not unmarshal board: %w", err)
	}

	currentPlayer := entity.Mark(values[fieldCurrentPlayer])
	if !currentPlayer.IsPlayer() {
		return nil, fmt.Errorf("%w: current player %q", entity.ErrInvalidMark, currentPlayer)
	}

	return &entity.Room{
		ID:            values[fieldID],
		CreatedAt:     time.UnixMilli(createdAt).UTC(),
		Player1ID:     values[fieldPlayer1ID],
		Player2ID:     values[fieldPlayer2ID],
		Player1Name:   values[fieldPlayer1Name],
		Player2Name:   values[fieldPlayer2Name],
		CurrentPlayer: currentPlayer,
		Board:         board,
		Winner:        entity.Winner(values[fieldWinner]),
		Status:        entity.Status(values[fieldStatus]),
	}, nil
}
