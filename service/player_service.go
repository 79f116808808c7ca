package service

import (
	"context"
	"fmt"
	"time"

	"seedbot/models"

	log "github.com/sirupsen/logrus"
)

type playerService struct {
	uowFactory UnitOfWorkFactory
}

// NewPlayerService creates a new player service
func NewPlayerService(uowFactory UnitOfWorkFactory) PlayerService {
	return &playerService{
		uowFactory: uowFactory,
	}
}

// Register links a Discord account to a player identity. The player
// must already have a ledger row, which accrual creates on their first
// observed seeding tick. Re-registering the same pair is a no-op;
// registering a new identity moves the link.
func (s *playerService) Register(ctx context.Context, discordID int64, playerID string) (*models.Player, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	player, err := uow.PlayerRepository().GetByPlayerIDForUpdate(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock player: %w", err)
	}
	if player == nil {
		return nil, fmt.Errorf("%w: seed on one of the servers first", ErrPlayerNotFound)
	}

	if player.DiscordID != nil {
		if *player.DiscordID == discordID {
			return player, nil
		}
		return nil, ErrAlreadyLinked
	}

	// Release any previous identity this account was linked to.
	current, err := uow.PlayerRepository().GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing link: %w", err)
	}
	if current != nil {
		if err := uow.PlayerRepository().UnlinkDiscord(ctx, discordID); err != nil {
			return nil, fmt.Errorf("failed to release previous link: %w", err)
		}
	}

	if err := uow.PlayerRepository().LinkDiscord(ctx, playerID, discordID); err != nil {
		return nil, fmt.Errorf("failed to link player: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"playerID":  playerID,
		"discordID": discordID,
	}).Info("Registered player")

	player.DiscordID = &discordID
	return player, nil
}

// Unlink removes the Discord association. The player's banked time is untouched.
func (s *playerService) Unlink(ctx context.Context, discordID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	player, err := uow.PlayerRepository().GetByDiscordID(ctx, discordID)
	if err != nil {
		return fmt.Errorf("failed to get player: %w", err)
	}
	if player == nil {
		return ErrNotRegistered
	}

	if err := uow.PlayerRepository().UnlinkDiscord(ctx, discordID); err != nil {
		return fmt.Errorf("failed to unlink: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetByDiscordID retrieves the player linked to a Discord account.
func (s *playerService) GetByDiscordID(ctx context.Context, discordID int64) (*models.Player, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	player, err := uow.PlayerRepository().GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if player == nil {
		return nil, ErrNotRegistered
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return player, nil
}

// GrantSeederTime credits banked hours by admin action. Both the
// balance and the lifetime total are raised.
func (s *playerService) GrantSeederTime(ctx context.Context, playerID string, hours int64) (*models.Player, error) {
	if hours <= 0 {
		return nil, fmt.Errorf("grant amount must be positive")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	player, err := uow.PlayerRepository().GetByPlayerIDForUpdate(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock player: %w", err)
	}
	if player == nil {
		return nil, ErrPlayerNotFound
	}

	amount := time.Duration(hours) * time.Hour
	if err := uow.PlayerRepository().AddSeederTime(ctx, playerID, amount); err != nil {
		return nil, fmt.Errorf("failed to grant seeder time: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"playerID": playerID,
		"hours":    hours,
	}).Info("Granted seeder time")

	player.SeedingBalance += amount
	player.TotalSeedingTime += amount
	return player, nil
}

// SetHidden toggles a player's leaderboard exclusion.
func (s *playerService) SetHidden(ctx context.Context, playerID string, hidden bool) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	player, err := uow.PlayerRepository().GetByPlayerID(ctx, playerID)
	if err != nil {
		return fmt.Errorf("failed to get player: %w", err)
	}
	if player == nil {
		return ErrPlayerNotFound
	}

	if err := uow.PlayerRepository().SetHidden(ctx, playerID, hidden); err != nil {
		return fmt.Errorf("failed to set hidden: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
