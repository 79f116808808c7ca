package repository

import (
	"context"
	"testing"
	"time"

	"seedbot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_CommitPersists(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	factory := NewUnitOfWorkFactory(testDB.DB)
	ctx := context.Background()

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	_, err := uow.PlayerRepository().ApplyAccrual(ctx, "steam-1", "Seeder", 3*time.Minute, time.Now())
	require.NoError(t, err)
	require.NoError(t, uow.Commit())

	player, err := NewPlayerRepository(testDB.DB).GetByPlayerID(ctx, "steam-1")
	require.NoError(t, err)
	require.NotNil(t, player)
	assert.Equal(t, 3*time.Minute, player.SeedingBalance)
}

func TestUnitOfWork_RollbackDiscards(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	factory := NewUnitOfWorkFactory(testDB.DB)
	ctx := context.Background()

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	_, err := uow.PlayerRepository().ApplyAccrual(ctx, "steam-1", "Seeder", 3*time.Minute, time.Now())
	require.NoError(t, err)
	require.NoError(t, uow.Rollback())

	player, err := NewPlayerRepository(testDB.DB).GetByPlayerID(ctx, "steam-1")
	require.NoError(t, err)
	assert.Nil(t, player)
}

func TestUnitOfWork_CrossRepositoryAtomicity(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	factory := NewUnitOfWorkFactory(testDB.DB)
	ctx := context.Background()

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	_, err := uow.PlayerRepository().ApplyAccrual(ctx, "steam-1", "Seeder", 3*time.Minute, start)
	require.NoError(t, err)
	require.NoError(t, uow.SeedingSessionRepository().Upsert(ctx, "steam-1", "https://rcon-1.example.com", start, start.Add(3*time.Minute)))
	require.NoError(t, uow.Rollback())

	// Neither the credit nor the session survived
	player, err := NewPlayerRepository(testDB.DB).GetByPlayerID(ctx, "steam-1")
	require.NoError(t, err)
	assert.Nil(t, player)

	sessions, err := NewSeedingSessionRepository(testDB.DB).GetByPlayer(ctx, "steam-1")
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
