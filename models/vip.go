package models

import (
	"time"
)

// VIPStatus is the agreed privileged-status view across all endpoints
// for one player.
type VIPStatus struct {
	Expiration   *time.Time // nil when no endpoint holds a VIP entry
	Expired      bool
	NeverExpires bool
}

// RedeemResult describes the outcome of a successful redemption.
type RedeemResult struct {
	HoursSpent      int64
	VIPHoursGranted int64
	NewExpiration   time.Time
	NewBalance      time.Duration
	// NeverExpires is set when the redemption was short-circuited
	// because the resulting expiration would sit at or past the
	// never-expires cutoff; no grant was issued and no time was
	// debited.
	NeverExpires bool
}

// GiftResult describes the outcome of a banked-time gift.
type GiftResult struct {
	Hours            int64
	RecipientName    string
	SenderBalance    time.Duration
	RecipientBalance time.Duration
}
