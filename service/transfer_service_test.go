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

func setupTransferTest(t *testing.T) (*MockUnitOfWork, TransferService) {
	t.Helper()

	uow := NewMockUnitOfWork()
	factory := new(MockUnitOfWorkFactory)
	factory.On("Create").Return(uow)
	return uow, NewTransferService(factory)
}

func giftFixtures() (*models.Player, *models.Player) {
	senderID, recipientID := int64(111), int64(222)
	sender := &models.Player{
		PlayerID:       "steam-1",
		PlayerName:     "Sender",
		DiscordID:      &senderID,
		SeedingBalance: 5 * time.Hour,
	}
	recipient := &models.Player{
		PlayerID:       "steam-2",
		PlayerName:     "Recipient",
		DiscordID:      &recipientID,
		SeedingBalance: 30 * time.Minute,
	}
	return sender, recipient
}

func TestGift_Success(t *testing.T) {
	uow, svc := setupTransferTest(t)
	sender, recipient := giftFixtures()

	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Rollback").Return(nil)
	uow.On("Commit").Return(nil)
	uow.PlayerRepo.On("GetByDiscordIDForUpdate", mock.Anything, int64(111)).Return(sender, nil)
	uow.PlayerRepo.On("GetByDiscordIDForUpdate", mock.Anything, int64(222)).Return(recipient, nil)
	uow.PlayerRepo.On("DeductBalance", mock.Anything, "steam-1", 2*time.Hour).Return(nil)
	uow.PlayerRepo.On("AddSeederTime", mock.Anything, "steam-2", 2*time.Hour).Return(nil)

	result, err := svc.Gift(context.Background(), 111, 222, 2)
	require.NoError(t, err)

	assert.Equal(t, int64(2), result.Hours)
	assert.Equal(t, "Recipient", result.RecipientName)
	assert.Equal(t, 3*time.Hour, result.SenderBalance)
	assert.Equal(t, 2*time.Hour+30*time.Minute, result.RecipientBalance)

	uow.AssertExpectations(t)
	uow.PlayerRepo.AssertExpectations(t)
}

func TestGift_SelfGift(t *testing.T) {
	uow, svc := setupTransferTest(t)

	_, err := svc.Gift(context.Background(), 111, 111, 1)
	assert.ErrorIs(t, err, ErrSelfGift)
	uow.AssertNotCalled(t, "Begin", mock.Anything)
}

func TestGift_NonPositiveHours(t *testing.T) {
	_, svc := setupTransferTest(t)

	_, err := svc.Gift(context.Background(), 111, 222, 0)
	assert.Error(t, err)
}

func TestGift_InsufficientBalance(t *testing.T) {
	uow, svc := setupTransferTest(t)
	sender, recipient := giftFixtures()
	sender.SeedingBalance = 90 * time.Minute // only one whole hour banked

	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Rollback").Return(nil)
	uow.PlayerRepo.On("GetByDiscordIDForUpdate", mock.Anything, int64(111)).Return(sender, nil)
	uow.PlayerRepo.On("GetByDiscordIDForUpdate", mock.Anything, int64(222)).Return(recipient, nil)

	_, err := svc.Gift(context.Background(), 111, 222, 2)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	uow.PlayerRepo.AssertNotCalled(t, "DeductBalance", mock.Anything, mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit")
}

func TestGift_SenderNotRegistered(t *testing.T) {
	uow, svc := setupTransferTest(t)
	_, recipient := giftFixtures()

	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Rollback").Return(nil)
	uow.PlayerRepo.On("GetByDiscordIDForUpdate", mock.Anything, int64(111)).Return(nil, nil)
	uow.PlayerRepo.On("GetByDiscordIDForUpdate", mock.Anything, int64(222)).Return(recipient, nil)

	_, err := svc.Gift(context.Background(), 111, 222, 1)
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestGift_RecipientNotRegistered(t *testing.T) {
	uow, svc := setupTransferTest(t)
	sender, _ := giftFixtures()

	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Rollback").Return(nil)
	uow.PlayerRepo.On("GetByDiscordIDForUpdate", mock.Anything, int64(111)).Return(sender, nil)
	uow.PlayerRepo.On("GetByDiscordIDForUpdate", mock.Anything, int64(222)).Return(nil, nil)

	_, err := svc.Gift(context.Background(), 111, 222, 1)
	assert.ErrorIs(t, err, ErrNotRegistered)
	uow.PlayerRepo.AssertNotCalled(t, "DeductBalance", mock.Anything, mock.Anything, mock.Anything)
}
