package models

import (
	"time"
)

// LeaderboardEntry is one aggregated row of seeding time over a
// reporting period. Hidden players are excluded at query time.
type LeaderboardEntry struct {
	PlayerID   string
	PlayerName string
	SeededTime time.Duration
}
