package models

import (
	"time"
)

// SeedingSession is one contiguous seeding interval for one player on
// one server. The row is extended forward while the player remains on
// the roster; a session is closed by omission, its last written
// end_time standing as the close point.
type SeedingSession struct {
	ID        int64     `db:"id"`
	PlayerID  string    `db:"player_id"`
	Server    string    `db:"server"`
	StartTime time.Time `db:"start_time"`
	EndTime   time.Time `db:"end_time"`
}

// Duration returns the length of the session interval.
func (s *SeedingSession) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}
