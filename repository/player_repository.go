package repository

import (
	"context"
	"fmt"
	"time"

	"seedbot/database"
	"seedbot/models"
	"seedbot/service"

	"github.com/jackc/pgx/v5"
)

// PlayerRepository implements the service.PlayerRepository interface
type PlayerRepository struct {
	q queryable
}

// NewPlayerRepository creates a new player repository
func NewPlayerRepository(db *database.DB) *PlayerRepository {
	return &PlayerRepository{q: db.Pool}
}

// newPlayerRepositoryWithTx creates a new player repository bound to a transaction
func newPlayerRepositoryWithTx(tx queryable) *PlayerRepository {
	return &PlayerRepository{q: tx}
}

const playerColumns = `
	player_id,
	discord_id,
	player_name,
	seeding_time_balance,
	total_seeding_time,
	last_seed_check,
	hidden,
	created_at,
	updated_at
`

func scanPlayer(row pgx.Row) (*models.Player, error) {
	var player models.Player
	var balanceSeconds, totalSeconds int64

	err := row.Scan(
		&player.PlayerID,
		&player.DiscordID,
		&player.PlayerName,
		&balanceSeconds,
		&totalSeconds,
		&player.LastSeedCheck,
		&player.Hidden,
		&player.CreatedAt,
		&player.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	player.SeedingBalance = time.Duration(balanceSeconds) * time.Second
	player.TotalSeedingTime = time.Duration(totalSeconds) * time.Second
	return &player, nil
}

// GetByPlayerID retrieves a player by their game-server identity.
// Returns nil when no record exists.
func (r *PlayerRepository) GetByPlayerID(ctx context.Context, playerID string) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE player_id = $1`

	player, err := scanPlayer(r.q.QueryRow(ctx, query, playerID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player %s: %w", playerID, err)
	}
	return player, nil
}

// GetByPlayerIDForUpdate retrieves a player and takes a row lock held
// until the surrounding transaction ends.
func (r *PlayerRepository) GetByPlayerIDForUpdate(ctx context.Context, playerID string) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE player_id = $1 FOR UPDATE`

	player, err := scanPlayer(r.q.QueryRow(ctx, query, playerID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock player %s: %w", playerID, err)
	}
	return player, nil
}

// GetByDiscordID retrieves a player by their linked Discord account.
// Returns nil when no player is linked to the account.
func (r *PlayerRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE discord_id = $1`

	player, err := scanPlayer(r.q.QueryRow(ctx, query, discordID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player by discord ID %d: %w", discordID, err)
	}
	return player, nil
}

// GetByDiscordIDForUpdate retrieves a player by linked Discord account
// and takes a row lock held until the surrounding transaction ends.
func (r *PlayerRepository) GetByDiscordIDForUpdate(ctx context.Context, discordID int64) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE discord_id = $1 FOR UPDATE`

	player, err := scanPlayer(r.q.QueryRow(ctx, query, discordID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock player by discord ID %d: %w", discordID, err)
	}
	return player, nil
}

// ApplyAccrual credits one tick's worth of seeding time to both the
// banked balance and the lifetime total, creating the player on first
// observation. Returns the row as it stands after the credit.
func (r *PlayerRepository) ApplyAccrual(ctx context.Context, playerID, playerName string, increment time.Duration, observedAt time.Time) (*models.Player, error) {
	query := `
		INSERT INTO players (player_id, player_name, seeding_time_balance, total_seeding_time, last_seed_check)
		VALUES ($1, $2, $3, $3, $4)
		ON CONFLICT (player_id) DO UPDATE SET
			player_name = EXCLUDED.player_name,
			seeding_time_balance = players.seeding_time_balance + EXCLUDED.seeding_time_balance,
			total_seeding_time = players.total_seeding_time + EXCLUDED.total_seeding_time,
			last_seed_check = EXCLUDED.last_seed_check,
			updated_at = NOW()
		RETURNING ` + playerColumns

	player, err := scanPlayer(r.q.QueryRow(ctx, query, playerID, playerName, int64(increment.Seconds()), observedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to apply accrual for player %s: %w", playerID, err)
	}
	return player, nil
}

// AddSeederTime credits banked time to a player. The lifetime total is
// raised by the same amount so the balance never exceeds it.
func (r *PlayerRepository) AddSeederTime(ctx context.Context, playerID string, amount time.Duration) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE players
		SET seeding_time_balance = seeding_time_balance + $1,
		    total_seeding_time = total_seeding_time + $1,
		    updated_at = NOW()
		WHERE player_id = $2
	`

	result, err := r.q.Exec(ctx, query, int64(amount.Seconds()), playerID)
	if err != nil {
		return fmt.Errorf("failed to add seeder time for player %s: %w", playerID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("player %s not found", playerID)
	}
	return nil
}

// DeductBalance debits banked time, failing if the balance would go
// negative. The conditional update is a second line of defense behind
// the caller's locked balance check.
func (r *PlayerRepository) DeductBalance(ctx context.Context, playerID string, amount time.Duration) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE players
		SET seeding_time_balance = seeding_time_balance - $1,
		    updated_at = NOW()
		WHERE player_id = $2
		  AND seeding_time_balance >= $1
	`

	result, err := r.q.Exec(ctx, query, int64(amount.Seconds()), playerID)
	if err != nil {
		return fmt.Errorf("failed to deduct balance for player %s: %w", playerID, err)
	}
	if result.RowsAffected() == 0 {
		player, err := r.GetByPlayerID(ctx, playerID)
		if err != nil {
			return fmt.Errorf("failed to check player: %w", err)
		}
		if player == nil {
			return fmt.Errorf("player %s not found", playerID)
		}
		return fmt.Errorf("%w: have %s banked, need %s", service.ErrInsufficientBalance, player.SeedingBalance, amount)
	}
	return nil
}

// LinkDiscord records the Discord account owning this player identity
func (r *PlayerRepository) LinkDiscord(ctx context.Context, playerID string, discordID int64) error {
	query := `
		UPDATE players
		SET discord_id = $1, updated_at = NOW()
		WHERE player_id = $2
	`

	result, err := r.q.Exec(ctx, query, discordID, playerID)
	if err != nil {
		return fmt.Errorf("failed to link discord ID %d to player %s: %w", discordID, playerID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("player %s not found", playerID)
	}
	return nil
}

// UnlinkDiscord clears the Discord association; the ledger itself is untouched
func (r *PlayerRepository) UnlinkDiscord(ctx context.Context, discordID int64) error {
	query := `
		UPDATE players
		SET discord_id = NULL, updated_at = NOW()
		WHERE discord_id = $1
	`

	result, err := r.q.Exec(ctx, query, discordID)
	if err != nil {
		return fmt.Errorf("failed to unlink discord ID %d: %w", discordID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("no player linked to discord ID %d", discordID)
	}
	return nil
}

// SetHidden toggles leaderboard exclusion for a player
func (r *PlayerRepository) SetHidden(ctx context.Context, playerID string, hidden bool) error {
	query := `
		UPDATE players
		SET hidden = $1, updated_at = NOW()
		WHERE player_id = $2
	`

	result, err := r.q.Exec(ctx, query, hidden, playerID)
	if err != nil {
		return fmt.Errorf("failed to set hidden for player %s: %w", playerID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("player %s not found", playerID)
	}
	return nil
}
