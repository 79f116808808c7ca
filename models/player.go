package models

import (
	"time"
)

// Player represents one game-server identity and its seeding ledger.
// A player record is created the first time an unknown identity is
// observed seeding and is never deleted; unlinking only clears the
// Discord association.
type Player struct {
	PlayerID         string        `db:"player_id"`
	DiscordID        *int64        `db:"discord_id"` // Optional linked Discord account, unique when present
	PlayerName       string        `db:"player_name"`
	SeedingBalance   time.Duration `db:"seeding_time_balance"` // Unspent banked seeding time
	TotalSeedingTime time.Duration `db:"total_seeding_time"`   // Lifetime accrued seeding time
	LastSeedCheck    time.Time     `db:"last_seed_check"`
	Hidden           bool          `db:"hidden"` // Excluded from leaderboard aggregation only
	CreatedAt        time.Time     `db:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at"`
}

// BankedHours returns the number of whole hours of unspent seeding
// time available for redemption.
func (p *Player) BankedHours() int64 {
	return int64(p.SeedingBalance / time.Hour)
}
