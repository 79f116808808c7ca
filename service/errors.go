package service

import "errors"

var (
	// ErrInsufficientBalance indicates a debit larger than the banked balance
	ErrInsufficientBalance = errors.New("insufficient seeding balance")

	// ErrPlayerNotFound indicates no player record exists for the given identity
	ErrPlayerNotFound = errors.New("player not found")

	// ErrNotRegistered indicates the Discord account has no linked player
	ErrNotRegistered = errors.New("no player registered for this account")

	// ErrAlreadyLinked indicates the player identity belongs to a different Discord account
	ErrAlreadyLinked = errors.New("player is already linked to another account")

	// ErrSelfGift indicates a gift where sender and recipient are the same player
	ErrSelfGift = errors.New("cannot gift seeding time to yourself")
)
