package rcon

import (
	"context"
	"fmt"
	"time"
)

// Fleet spans every configured endpoint and exposes the cross-endpoint
// operations the services need. Reads that feed ledger decisions are
// collapsed through Agree; grants are all-or-nothing.
type Fleet struct {
	endpoints []Endpoint
}

// NewFleet creates a fleet over the given endpoints.
func NewFleet(endpoints ...Endpoint) *Fleet {
	return &Fleet{endpoints: endpoints}
}

// URLs returns the identifiers of all configured endpoints.
func (f *Fleet) URLs() []string {
	urls := make([]string, 0, len(f.endpoints))
	for _, e := range f.endpoints {
		urls = append(urls, e.URL())
	}
	return urls
}

// Rosters fetches the live player roster from every endpoint. Each
// endpoint's outcome is reported independently; callers decide what a
// partial result means.
func (f *Fleet) Rosters(ctx context.Context) map[string]Outcome[[]Player] {
	return FanOut(ctx, f.endpoints, func(ctx context.Context, e Endpoint) ([]Player, error) {
		return e.Players(ctx)
	})
}

// VIPExpiration reads the player's VIP expiration from every endpoint
// and returns the single agreed value: nil when no endpoint holds an
// entry. Disagreement yields ErrInconsistent.
func (f *Fleet) VIPExpiration(ctx context.Context, playerID string) (*time.Time, error) {
	results := FanOut(ctx, f.endpoints, func(ctx context.Context, e Endpoint) (*time.Time, error) {
		return e.VIPExpiration(ctx, playerID)
	})
	return Agree(results, func(a, b *time.Time) bool {
		if a == nil || b == nil {
			return a == nil && b == nil
		}
		return a.Equal(*b)
	})
}

// GrantVIP writes the VIP entry to every endpoint. Every endpoint is
// attempted even after a failure; if any write did not land the whole
// operation fails with a *GrantError naming the endpoints that
// rejected it.
func (f *Fleet) GrantVIP(ctx context.Context, playerID, description string, expiration time.Time) error {
	results := FanOut(ctx, f.endpoints, func(ctx context.Context, e Endpoint) (struct{}, error) {
		return struct{}{}, e.GrantVIP(ctx, playerID, description, expiration)
	})

	failures := make(map[string]error)
	for url, outcome := range results {
		if outcome.Err != nil {
			failures[url] = outcome.Err
		}
	}
	if len(failures) > 0 {
		return &GrantError{Failures: failures, Total: len(f.endpoints)}
	}
	return nil
}

// MessagePlayer sends an in-game message through one endpoint. A
// player is only ever connected to a single server, so this is
// inherently endpoint-scoped.
func (f *Fleet) MessagePlayer(ctx context.Context, serverURL, playerID, message string) error {
	for _, e := range f.endpoints {
		if e.URL() == serverURL {
			return e.MessagePlayer(ctx, playerID, message)
		}
	}
	return fmt.Errorf("no configured endpoint with URL %s", serverURL)
}
