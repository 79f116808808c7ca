package service

import (
	"context"
	"time"

	"seedbot/models"
	"seedbot/rcon"
)

// PlayerRepository defines player ledger data access
type PlayerRepository interface {
	// GetByPlayerID retrieves a player by game-server identity, nil if absent
	GetByPlayerID(ctx context.Context, playerID string) (*models.Player, error)

	// GetByPlayerIDForUpdate retrieves a player and locks the row for the transaction
	GetByPlayerIDForUpdate(ctx context.Context, playerID string) (*models.Player, error)

	// GetByDiscordID retrieves a player by linked Discord account, nil if absent
	GetByDiscordID(ctx context.Context, discordID int64) (*models.Player, error)

	// GetByDiscordIDForUpdate retrieves a player by Discord account and locks the row
	GetByDiscordIDForUpdate(ctx context.Context, discordID int64) (*models.Player, error)

	// ApplyAccrual credits one tick of seeding time to balance and total,
	// creating the player if needed, and returns the updated row
	ApplyAccrual(ctx context.Context, playerID, playerName string, increment time.Duration, observedAt time.Time) (*models.Player, error)

	// AddSeederTime credits banked time, raising the lifetime total equally
	AddSeederTime(ctx context.Context, playerID string, amount time.Duration) error

	// DeductBalance debits banked time, failing with ErrInsufficientBalance
	// if the balance would go negative
	DeductBalance(ctx context.Context, playerID string, amount time.Duration) error

	// LinkDiscord associates a Discord account with a player identity
	LinkDiscord(ctx context.Context, playerID string, discordID int64) error

	// UnlinkDiscord removes the association for a Discord account
	UnlinkDiscord(ctx context.Context, discordID int64) error

	// SetHidden toggles leaderboard exclusion
	SetHidden(ctx context.Context, playerID string, hidden bool) error
}

// SeedingSessionRepository defines seeding session data access
type SeedingSessionRepository interface {
	// Upsert records or extends a session keyed by (player, server, start)
	Upsert(ctx context.Context, playerID, server string, start, end time.Time) error

	// GetByPlayer retrieves a player's sessions, most recent first
	GetByPlayer(ctx context.Context, playerID string) ([]*models.SeedingSession, error)

	// Leaderboard aggregates seeded time per player since the cutoff
	Leaderboard(ctx context.Context, since time.Time, limit int) ([]*models.LeaderboardEntry, error)
}

// UnitOfWork represents a database transaction scope
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	PlayerRepository() PlayerRepository
	SeedingSessionRepository() SeedingSessionRepository
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// ServerFleet is the cross-endpoint control-API surface the services
// depend on. *rcon.Fleet is the production implementation.
type ServerFleet interface {
	URLs() []string
	Rosters(ctx context.Context) map[string]rcon.Outcome[[]rcon.Player]
	VIPExpiration(ctx context.Context, playerID string) (*time.Time, error)
	GrantVIP(ctx context.Context, playerID, description string, expiration time.Time) error
	MessagePlayer(ctx context.Context, serverURL, playerID, message string) error
}

// VIPService handles redeeming banked time for VIP status
type VIPService interface {
	// Redeem converts banked hours into VIP time across every endpoint
	Redeem(ctx context.Context, discordID int64, hours int64) (*models.RedeemResult, error)

	// Status reports the player's balance and current VIP expiration
	Status(ctx context.Context, discordID int64) (*models.Player, *models.VIPStatus, error)
}

// TransferService handles moving banked time between players
type TransferService interface {
	// Gift moves banked hours from one linked player to another atomically
	Gift(ctx context.Context, senderDiscordID, recipientDiscordID, hours int64) (*models.GiftResult, error)
}

// PlayerService handles player identity and account management
type PlayerService interface {
	// Register links a Discord account to an existing player identity
	Register(ctx context.Context, discordID int64, playerID string) (*models.Player, error)

	// Unlink removes the Discord association for an account
	Unlink(ctx context.Context, discordID int64) error

	// GetByDiscordID retrieves the player linked to a Discord account
	GetByDiscordID(ctx context.Context, discordID int64) (*models.Player, error)

	// GrantSeederTime credits banked time to a player by admin action
	GrantSeederTime(ctx context.Context, playerID string, hours int64) (*models.Player, error)

	// SetHidden toggles a player's leaderboard exclusion
	SetHidden(ctx context.Context, playerID string, hidden bool) error
}

// StatsService reports aggregate seeding statistics
type StatsService interface {
	// Leaderboard returns top seeders since the cutoff
	Leaderboard(ctx context.Context, since time.Time, limit int) ([]*models.LeaderboardEntry, error)
}
