package testutil

import (
	"context"
	"testing"
	"time"

	"seedbot/database"

	"github.com/stretchr/testify/require"
)

// PlayerParams controls the shape of a seeded test player
type PlayerParams struct {
	PlayerID   string
	PlayerName string
	DiscordID  *int64
	Balance    time.Duration
	Total      time.Duration
	Hidden     bool
}

// InsertPlayer writes a player row directly, bypassing the repositories
func InsertPlayer(t *testing.T, db *database.DB, p PlayerParams) {
	t.Helper()

	if p.Total < p.Balance {
		p.Total = p.Balance
	}
	_, err := db.Pool.Exec(context.Background(), `
		INSERT INTO players (player_id, discord_id, player_name, seeding_time_balance, total_seeding_time, hidden)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.PlayerID, p.DiscordID, p.PlayerName, int64(p.Balance.Seconds()), int64(p.Total.Seconds()), p.Hidden)
	require.NoError(t, err)
}

// DiscordID returns a pointer for inline test fixtures
func DiscordID(id int64) *int64 {
	return &id
}
