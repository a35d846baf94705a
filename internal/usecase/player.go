package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-online/internal/entity"
	"github.com/rocketscienceinc/tictactoe-online/internal/repository"
)

// GetOrCreatePlayer returns the stored profile of playerID, or a new one when the id is unknown or empty.
func (that *RoomManager) GetOrCreatePlayer(ctx context.Context, playerID string) (*entity.Player, error) {
	if playerID != "" {
		player, err := that.playerRepo.GetByID(ctx, playerID)
		if err == nil {
			return player, nil
		}

		if !errors.Is(err, repository.ErrPlayerNotFound) {
			return nil, fmt.Errorf("failed to get player: %w", err)
		}
	} else {
		playerID = that.newPlayerID()
	}

	player := &entity.Player{ID: playerID}
	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	return player, nil
}

// ForgetRoom clears the remembered room after the player leaves it.
func (that *RoomManager) ForgetRoom(ctx context.Context, playerID string) error {
	player, err := that.playerRepo.GetByID(ctx, playerID)
	if errors.Is(err, repository.ErrPlayerNotFound) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get player: %w", err)
	}

	player.RoomID = ""
	if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	return nil
}
