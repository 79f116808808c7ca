package service

import (
	"context"
	"fmt"
	"time"

	"seedbot/models"
)

type transferService struct {
	uowFactory UnitOfWorkFactory
}

// NewTransferService creates a new transfer service
func NewTransferService(uowFactory UnitOfWorkFactory) TransferService {
	return &transferService{
		uowFactory: uowFactory,
	}
}

func (s *transferService) Gift(ctx context.Context, senderDiscordID, recipientDiscordID, hours int64) (*models.GiftResult, error) {
	// Validate inputs
	if hours <= 0 {
		return nil, fmt.Errorf("gift amount must be positive")
	}
	if senderDiscordID == recipientDiscordID {
		return nil, ErrSelfGift
	}

	// Create unit of work
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	// Lock both rows in a fixed order so concurrent gifts between the
	// same pair cannot deadlock.
	first, second := senderDiscordID, recipientDiscordID
	if second < first {
		first, second = second, first
	}
	players := make(map[int64]*models.Player, 2)
	for _, discordID := range []int64{first, second} {
		player, err := uow.PlayerRepository().GetByDiscordIDForUpdate(ctx, discordID)
		if err != nil {
			return nil, fmt.Errorf("failed to lock player: %w", err)
		}
		players[discordID] = player
	}

	sender := players[senderDiscordID]
	if sender == nil {
		return nil, fmt.Errorf("sender: %w", ErrNotRegistered)
	}
	recipient := players[recipientDiscordID]
	if recipient == nil {
		return nil, fmt.Errorf("recipient: %w", ErrNotRegistered)
	}

	// Check whole banked hours, not raw balance: partial hours are not giftable
	if sender.BankedHours() < hours {
		return nil, fmt.Errorf("%w: have %d hour(s) banked, need %d", ErrInsufficientBalance, sender.BankedHours(), hours)
	}

	amount := time.Duration(hours) * time.Hour

	if err := uow.PlayerRepository().DeductBalance(ctx, sender.PlayerID, amount); err != nil {
		return nil, fmt.Errorf("failed to deduct gift amount: %w", err)
	}

	// Credit raises the recipient's lifetime total too, keeping the
	// balance within it.
	if err := uow.PlayerRepository().AddSeederTime(ctx, recipient.PlayerID, amount); err != nil {
		return nil, fmt.Errorf("failed to add gift amount: %w", err)
	}

	// Commit the transaction
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.GiftResult{
		Hours:            hours,
		RecipientName:    recipient.PlayerName,
		SenderBalance:    sender.SeedingBalance - amount,
		RecipientBalance: recipient.SeedingBalance + amount,
	}, nil
}
