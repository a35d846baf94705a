package janitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const DefaultRoomTTL = time.Hour

type roomStore interface {
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int, error)
	DeleteFinished(ctx context.Context) (int, error)
}

// Result is the outcome of one collection pass.
type Result struct {
	DeletedOld      int       `json:"deletedOldGames"`
	DeletedFinished int       `json:"deletedFinishedGames"`
	Timestamp       time.Time `json:"timestamp"`
}

func (that Result) Total() int {
	return that.DeletedOld + that.DeletedFinished
}

// Janitor removes abandoned and finished rooms.
type Janitor struct {
	logger  *slog.Logger
	store   roomStore
	roomTTL time.Duration
	now     func() time.Time
}

func New(logger *slog.Logger, store roomStore, roomTTL time.Duration) *Janitor {
	if roomTTL <= 0 {
		roomTTL = DefaultRoomTTL
	}

	return &Janitor{
		logger:  logger.With("component", "janitor"),
		store:   store,
		roomTTL: roomTTL,
		now:     time.Now,
	}
}

// Run deletes rooms older than the room TTL, then every finished room.
func (that *Janitor) Run(ctx context.Context) (Result, error) {
	log := that.logger.With("method", "Run")

	now := that.now().UTC()
	cutoff := now.Add(-that.roomTTL)

	deletedOld, err := that.store.DeleteCreatedBefore(ctx, cutoff)
	if err != nil {
		return Result{}, fmt.Errorf("failed to delete old rooms: %w", err)
	}

	deletedFinished, err := that.store.DeleteFinished(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to delete finished rooms: %w", err)
	}

	result := Result{
		DeletedOld:      deletedOld,
		DeletedFinished: deletedFinished,
		Timestamp:       now,
	}

	if result.Total() == 0 {
		log.Debug("nothing to collect", "cutoff", cutoff)
		return result, nil
	}

	log.Info("rooms collected", "old", deletedOld, "finished", deletedFinished, "total", result.Total(), "cutoff", cutoff)

	return result, nil
}
