package service

import (
	"context"
	"fmt"
	"time"

	"seedbot/models"

	log "github.com/sirupsen/logrus"
)

type vipService struct {
	uowFactory UnitOfWorkFactory
	fleet      ServerFleet

	// rewardHours is how many hours of VIP one banked hour buys.
	rewardHours        int64
	neverExpiresCutoff time.Time

	now func() time.Time
}

// NewVIPService creates a new VIP service
func NewVIPService(uowFactory UnitOfWorkFactory, fleet ServerFleet, rewardHours int64, neverExpiresCutoff time.Time) VIPService {
	return &vipService{
		uowFactory:         uowFactory,
		fleet:              fleet,
		rewardHours:        rewardHours,
		neverExpiresCutoff: neverExpiresCutoff,
		now:                time.Now,
	}
}

// Redeem converts banked hours into VIP time on every endpoint. The
// player's row stays locked for the whole exchange so the balance
// checked is the balance debited, and the debit only lands after every
// endpoint accepted the grant.
func (s *vipService) Redeem(ctx context.Context, discordID int64, hours int64) (*models.RedeemResult, error) {
	if hours <= 0 {
		return nil, fmt.Errorf("redeem amount must be positive")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	player, err := uow.PlayerRepository().GetByDiscordIDForUpdate(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock player: %w", err)
	}
	if player == nil {
		return nil, ErrNotRegistered
	}

	if player.BankedHours() < hours {
		return nil, fmt.Errorf("%w: have %d hour(s) banked, need %d", ErrInsufficientBalance, player.BankedHours(), hours)
	}

	// Read the current expiration from every endpoint. Disagreement or
	// an unreachable endpoint aborts before anything is spent.
	expiration, err := s.fleet.VIPExpiration(ctx, player.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("failed to read current expiration: %w", err)
	}

	now := s.now()

	// Extend remaining VIP rather than overwrite it. An expired or
	// absent entry starts from now.
	base := now
	if expiration != nil && expiration.After(now) {
		base = *expiration
	}
	vipHours := hours * s.rewardHours
	newExpiration := base.Add(time.Duration(vipHours) * time.Hour)

	// A grant at or past the cutoff never expires. If the extension
	// would land there, the hours bought would change nothing, so no
	// grant is issued and nothing is debited.
	if !newExpiration.Before(s.neverExpiresCutoff) {
		if err := uow.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		result := &models.RedeemResult{
			NewBalance:   player.SeedingBalance,
			NeverExpires: true,
		}
		if expiration != nil {
			result.NewExpiration = *expiration
		}
		return result, nil
	}

	if err := s.fleet.GrantVIP(ctx, player.PlayerID, player.PlayerName, newExpiration); err != nil {
		return nil, fmt.Errorf("failed to grant on all endpoints, nothing was debited: %w", err)
	}

	spent := time.Duration(hours) * time.Hour
	if err := uow.PlayerRepository().DeductBalance(ctx, player.PlayerID, spent); err != nil {
		return nil, fmt.Errorf("failed to deduct redeemed time: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"playerID":      player.PlayerID,
		"hours":         hours,
		"newExpiration": newExpiration,
	}).Info("Redeemed seeding time for VIP")

	return &models.RedeemResult{
		HoursSpent:      hours,
		VIPHoursGranted: vipHours,
		NewExpiration:   newExpiration,
		NewBalance:      player.SeedingBalance - spent,
	}, nil
}

// Status reports the player's ledger row and agreed VIP state.
func (s *vipService) Status(ctx context.Context, discordID int64) (*models.Player, *models.VIPStatus, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	player, err := uow.PlayerRepository().GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get player: %w", err)
	}
	if player == nil {
		return nil, nil, ErrNotRegistered
	}

	if err := uow.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	expiration, err := s.fleet.VIPExpiration(ctx, player.PlayerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read expiration: %w", err)
	}

	status := &models.VIPStatus{Expiration: expiration}
	if expiration != nil {
		status.Expired = expiration.Before(s.now())
		status.NeverExpires = !expiration.Before(s.neverExpiresCutoff)
	}
	return player, status, nil
}
