package repository

import (
	"context"
	"fmt"
	"time"

	"seedbot/database"
	"seedbot/models"

	"github.com/jackc/pgx/v5"
)

// SeedingSessionRepository implements the service.SeedingSessionRepository interface
type SeedingSessionRepository struct {
	q queryable
}

// NewSeedingSessionRepository creates a new seeding session repository
func NewSeedingSessionRepository(db *database.DB) *SeedingSessionRepository {
	return &SeedingSessionRepository{q: db.Pool}
}

// newSeedingSessionRepositoryWithTx creates a new seeding session repository bound to a transaction
func newSeedingSessionRepositoryWithTx(tx queryable) *SeedingSessionRepository {
	return &SeedingSessionRepository{q: tx}
}

// Upsert records or extends a seeding session. The (player, server,
// start) key makes re-applying the same tick a no-op beyond moving
// end_time forward.
func (r *SeedingSessionRepository) Upsert(ctx context.Context, playerID, server string, start, end time.Time) error {
	query := `
		INSERT INTO seeding_sessions (player_id, server, start_time, end_time)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (player_id, server, start_time) DO UPDATE SET
			end_time = EXCLUDED.end_time
	`

	_, err := r.q.Exec(ctx, query, playerID, server, start, end)
	if err != nil {
		return fmt.Errorf("failed to upsert seeding session for player %s on %s: %w", playerID, server, err)
	}
	return nil
}

// GetByPlayer retrieves a player's sessions, most recent first.
func (r *SeedingSessionRepository) GetByPlayer(ctx context.Context, playerID string) ([]*models.SeedingSession, error) {
	query := `
		SELECT id, player_id, server, start_time, end_time
		FROM seeding_sessions
		WHERE player_id = $1
		ORDER BY start_time DESC
	`

	rows, err := r.q.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions for player %s: %w", playerID, err)
	}
	defer rows.Close()

	var sessions []*models.SeedingSession
	for rows.Next() {
		var s models.SeedingSession
		if err := rows.Scan(&s.ID, &s.PlayerID, &s.Server, &s.StartTime, &s.EndTime); err != nil {
			return nil, fmt.Errorf("failed to scan seeding session: %w", err)
		}
		sessions = append(sessions, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read seeding sessions: %w", err)
	}
	return sessions, nil
}

// Leaderboard aggregates seeded time per player since the cutoff,
// excluding hidden players, highest first.
func (r *SeedingSessionRepository) Leaderboard(ctx context.Context, since time.Time, limit int) ([]*models.LeaderboardEntry, error) {
	query := `
		SELECT s.player_id,
		       p.player_name,
		       COALESCE(SUM(EXTRACT(EPOCH FROM (s.end_time - s.start_time)))::BIGINT, 0) AS seeded_seconds
		FROM seeding_sessions s
		JOIN players p ON p.player_id = s.player_id
		WHERE s.end_time >= $1
		  AND NOT p.hidden
		GROUP BY s.player_id, p.player_name
		ORDER BY seeded_seconds DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	entries, err := scanLeaderboard(rows)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func scanLeaderboard(rows pgx.Rows) ([]*models.LeaderboardEntry, error) {
	var entries []*models.LeaderboardEntry
	for rows.Next() {
		var entry models.LeaderboardEntry
		var seconds int64
		if err := rows.Scan(&entry.PlayerID, &entry.PlayerName, &seconds); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entry.SeededTime = time.Duration(seconds) * time.Second
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}
	return entries, nil
}
