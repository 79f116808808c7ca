package rcon

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Endpoint is one control-API instance. *Client is the HTTP
// implementation; tests substitute fakes.
type Endpoint interface {
	URL() string
	Players(ctx context.Context) ([]Player, error)
	VIPExpiration(ctx context.Context, playerID string) (*time.Time, error)
	GrantVIP(ctx context.Context, playerID, description string, expiration time.Time) error
	MessagePlayer(ctx context.Context, playerID, message string) error
}

// Outcome is one endpoint's result of a fanned-out operation.
type Outcome[T any] struct {
	Value T
	Err   error
}

// ErrInconsistent indicates the endpoints disagree on a value that
// must match everywhere. It is never resolved automatically.
var ErrInconsistent = errors.New("endpoints disagree on privileged status")

// FanOut invokes op once per endpoint, concurrently, and returns every
// endpoint's outcome keyed by URL. One endpoint's failure does not
// cancel the others.
func FanOut[T any](ctx context.Context, endpoints []Endpoint, op func(context.Context, Endpoint) (T, error)) map[string]Outcome[T] {
	outcomes := make([]Outcome[T], len(endpoints))

	g, ctx := errgroup.WithContext(ctx)
	for i, endpoint := range endpoints {
		g.Go(func() error {
			value, err := op(ctx, endpoint)
			outcomes[i] = Outcome[T]{Value: value, Err: err}
			return nil
		})
	}
	g.Wait()

	results := make(map[string]Outcome[T], len(endpoints))
	for i, endpoint := range endpoints {
		results[endpoint.URL()] = outcomes[i]
	}
	return results
}

// Agree collapses a fan-out result map into a single value. Any
// per-endpoint read error aborts the comparison; values that do not
// all satisfy equal yield ErrInconsistent.
func Agree[T any](results map[string]Outcome[T], equal func(a, b T) bool) (T, error) {
	var zero T

	var errs error
	for url, outcome := range results {
		if outcome.Err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", url, outcome.Err))
		}
	}
	if errs != nil {
		return zero, fmt.Errorf("failed to read from all endpoints: %w", errs)
	}

	urls := sortedKeys(results)
	if len(urls) == 0 {
		return zero, errors.New("no endpoints configured")
	}

	first := results[urls[0]].Value
	for _, url := range urls[1:] {
		if !equal(first, results[url].Value) {
			return zero, fmt.Errorf("%w (checked %s)", ErrInconsistent, strings.Join(urls, ", "))
		}
	}
	return first, nil
}

// GrantError reports an all-or-nothing write that did not land on
// every endpoint. Every endpoint was attempted; Failures holds the
// per-endpoint errors so callers can surface exactly which grants did
// apply, since a partially-applied grant is a user-visible
// inconsistency.
type GrantError struct {
	Failures map[string]error
	Total    int
}

func (e *GrantError) Error() string {
	urls := sortedKeys(e.Failures)
	parts := make([]string, 0, len(urls))
	for _, url := range urls {
		parts = append(parts, fmt.Sprintf("%s: %v", url, e.Failures[url]))
	}
	return fmt.Sprintf("grant failed on %d of %d endpoints: %s", len(e.Failures), e.Total, strings.Join(parts, "; "))
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
