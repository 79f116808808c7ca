package service

import (
	"context"
	"testing"
	"time"

	"seedbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupPlayerTest(t *testing.T) (*MockUnitOfWork, PlayerService) {
	t.Helper()

	uow := NewMockUnitOfWork()
	factory := new(MockUnitOfWorkFactory)
	factory.On("Create").Return(uow)
	return uow, NewPlayerService(factory)
}

func TestRegister_LinksUnclaimedPlayer(t *testing.T) {
	uow, svc := setupPlayerTest(t)

	unclaimed := &models.Player{PlayerID: "steam-1", PlayerName: "Seeder"}
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Rollback").Return(nil)
	uow.On("Commit").Return(nil)
	uow.PlayerRepo.On("GetByPlayerIDForUpdate", mock.Anything, "steam-1").Return(unclaimed, nil)
	uow.PlayerRepo.On("GetByDiscordID", mock.Anything, int64(111)).Return(nil, nil)
	uow.PlayerRepo.On("LinkDiscord", mock.Anything, "steam-1", int64(111)).Return(nil)

	player, err := svc.Register(context.Background(), 111, "steam-1")
	require.NoError(t, err)

	require.NotNil(t, player.DiscordID)
	assert.Equal(t, int64(111), *player.DiscordID)
	uow.AssertExpectations(t)
}

func TestRegister_UnknownPlayer(t *testing.T) {
	uow, svc := setupPlayerTest(t)

	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Rollback").Return(nil)
	uow.PlayerRepo.On("GetByPlayerIDForUpdate", mock.Anything, "steam-1").Return(nil, nil)

	_, err := svc.Register(context.Background(), 111, "steam-1")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestRegister_SamePairIsNoop(t *testing.T) {
	uow, svc := setupPlayerTest(t)

	mine := int64(111)
	claimed := &models.Player{PlayerID: "steam-1", PlayerName: "Seeder", DiscordID: &mine}
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Rollback").Return(nil)
	uow.PlayerRepo.On("GetByPlayerIDForUpdate", mock.Anything, "steam-1").Return(claimed, nil)

	player, err := svc.Register(context.Background(), 111, "steam-1")
	require.NoError(t, err)
	assert.Equal(t, "steam-1", player.PlayerID)

	uow.PlayerRepo.AssertNotCalled(t, "LinkDiscord", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegister_ClaimedBySomeoneElse(t *testing.T) {
	uow, svc := setupPlayerTest(t)

	other := int64(999)
	claimed := &models.Player{PlayerID: "steam-1", PlayerName: "Seeder", DiscordID: &other}
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Rollback").Return(nil)
	uow.PlayerRepo.On("GetByPlayerIDForUpdate", mock.Anything, "steam-1").Return(claimed, nil)

	_, err := svc.Register(context.Background(), 111, "steam-1")
	assert.ErrorIs(t, err, ErrAlreadyLinked)
}

func TestRegister_MovesLinkToNewIdentity(t *testing.T) {
	uow, svc := setupPlayerTest(t)

	mine := int64(111)
	previous := &models.Player{PlayerID: "steam-old", PlayerName: "Seeder", DiscordID: &mine}
	fresh := &models.Player{PlayerID: "steam-new", PlayerName: "Seeder"}

	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Rollback").Return(nil)
	uow.On("Commit").Return(nil)
	uow.PlayerRepo.On("GetByPlayerIDForUpdate", mock.Anything, "steam-new").Return(fresh, nil)
	uow.PlayerRepo.On("GetByDiscordID", mock.Anything, int64(111)).Return(previous, nil)
	uow.PlayerRepo.On("UnlinkDiscord", mock.Anything, int64(111)).Return(nil)
	uow.PlayerRepo.On("LinkDiscord", mock.Anything, "steam-new", int64(111)).Return(nil)

	_, err := svc.Register(context.Background(), 111, "steam-new")
	require.NoError(t, err)
	uow.PlayerRepo.AssertExpectations(t)
}

func TestUnlink_NotRegistered(t *testing.T) {
	uow, svc := setupPlayerTest(t)

	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Rollback").Return(nil)
	uow.PlayerRepo.On("GetByDiscordID", mock.Anything, int64(111)).Return(nil, nil)

	err := svc.Unlink(context.Background(), 111)
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestGrantSeederTime(t *testing.T) {
	uow, svc := setupPlayerTest(t)

	player := &models.Player{PlayerID: "steam-1", PlayerName: "Seeder", SeedingBalance: time.Hour, TotalSeedingTime: 2 * time.Hour}
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Rollback").Return(nil)
	uow.On("Commit").Return(nil)
	uow.PlayerRepo.On("GetByPlayerIDForUpdate", mock.Anything, "steam-1").Return(player, nil)
	uow.PlayerRepo.On("AddSeederTime", mock.Anything, "steam-1", 3*time.Hour).Return(nil)

	updated, err := svc.GrantSeederTime(context.Background(), "steam-1", 3)
	require.NoError(t, err)

	assert.Equal(t, 4*time.Hour, updated.SeedingBalance)
	assert.Equal(t, 5*time.Hour, updated.TotalSeedingTime)
}

func TestGrantSeederTime_RejectsNonPositive(t *testing.T) {
	_, svc := setupPlayerTest(t)

	_, err := svc.GrantSeederTime(context.Background(), "steam-1", 0)
	assert.Error(t, err)
}

func TestSetHidden_UnknownPlayer(t *testing.T) {
	uow, svc := setupPlayerTest(t)

	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Rollback").Return(nil)
	uow.PlayerRepo.On("GetByPlayerID", mock.Anything, "steam-1").Return(nil, nil)

	err := svc.SetHidden(context.Background(), "steam-1", true)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}
