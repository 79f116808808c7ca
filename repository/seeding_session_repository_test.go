package repository

import (
	"context"
	"testing"
	"time"

	"seedbot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedingSessionRepository_UpsertExtendsSession(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewSeedingSessionRepository(testDB.DB)
	ctx := context.Background()

	testutil.InsertPlayer(t, testDB.DB, testutil.PlayerParams{PlayerID: "steam-1", PlayerName: "Seeder"})

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	server := "https://rcon-1.example.com"

	require.NoError(t, repo.Upsert(ctx, "steam-1", server, start, start.Add(3*time.Minute)))
	require.NoError(t, repo.Upsert(ctx, "steam-1", server, start, start.Add(6*time.Minute)))

	sessions, err := repo.GetByPlayer(ctx, "steam-1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, server, sessions[0].Server)
	assert.True(t, sessions[0].StartTime.Equal(start))
	assert.True(t, sessions[0].EndTime.Equal(start.Add(6*time.Minute)))
}

func TestSeedingSessionRepository_SeparateSessionsPerStart(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewSeedingSessionRepository(testDB.DB)
	ctx := context.Background()

	testutil.InsertPlayer(t, testDB.DB, testutil.PlayerParams{PlayerID: "steam-1", PlayerName: "Seeder"})

	server := "https://rcon-1.example.com"
	morning := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Upsert(ctx, "steam-1", server, morning, morning.Add(time.Hour)))
	require.NoError(t, repo.Upsert(ctx, "steam-1", server, evening, evening.Add(30*time.Minute)))

	sessions, err := repo.GetByPlayer(ctx, "steam-1")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	// Most recent first
	assert.True(t, sessions[0].StartTime.Equal(evening))
	assert.True(t, sessions[1].StartTime.Equal(morning))
}

func TestSeedingSessionRepository_Leaderboard(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewSeedingSessionRepository(testDB.DB)
	ctx := context.Background()

	testutil.InsertPlayer(t, testDB.DB, testutil.PlayerParams{PlayerID: "steam-1", PlayerName: "Top"})
	testutil.InsertPlayer(t, testDB.DB, testutil.PlayerParams{PlayerID: "steam-2", PlayerName: "Second"})
	testutil.InsertPlayer(t, testDB.DB, testutil.PlayerParams{PlayerID: "steam-3", PlayerName: "Ghost", Hidden: true})

	server := "https://rcon-1.example.com"
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Upsert(ctx, "steam-1", server, base, base.Add(2*time.Hour)))
	require.NoError(t, repo.Upsert(ctx, "steam-2", server, base, base.Add(time.Hour)))
	require.NoError(t, repo.Upsert(ctx, "steam-3", server, base, base.Add(5*time.Hour)))
	// Too old to count
	require.NoError(t, repo.Upsert(ctx, "steam-2", server, base.AddDate(0, -2, 0), base.AddDate(0, -2, 0).Add(10*time.Hour)))

	entries, err := repo.Leaderboard(ctx, base.AddDate(0, -1, 0), 10)
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "Top", entries[0].PlayerName)
	assert.Equal(t, 2*time.Hour, entries[0].SeededTime)
	assert.Equal(t, "Second", entries[1].PlayerName)
	assert.Equal(t, time.Hour, entries[1].SeededTime)
}

func TestSeedingSessionRepository_LeaderboardLimit(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewSeedingSessionRepository(testDB.DB)
	ctx := context.Background()

	server := "https://rcon-1.example.com"
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"steam-1", "steam-2", "steam-3"} {
		testutil.InsertPlayer(t, testDB.DB, testutil.PlayerParams{PlayerID: id, PlayerName: id})
		require.NoError(t, repo.Upsert(ctx, id, server, base, base.Add(time.Duration(i+1)*time.Hour)))
	}

	entries, err := repo.Leaderboard(ctx, base.AddDate(0, 0, -1), 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "steam-3", entries[0].PlayerID)
	assert.Equal(t, "steam-2", entries[1].PlayerID)
}
