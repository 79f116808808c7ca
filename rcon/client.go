// Package rcon talks to CRCON control-API endpoints and coordinates
// operations that must span every configured endpoint.
package rcon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/flowchartsman/retry"
	log "github.com/sirupsen/logrus"
)

const (
	// requestTimeout bounds connection setup and time-to-first-byte.
	// There is deliberately no deadline on reading the response body:
	// rosters and VIP lists can be large.
	requestTimeout = 15 * time.Second

	maxAttempts       = 4
	initialRetryDelay = 100 * time.Millisecond
	maxRetryDelay     = 5 * time.Second
)

// QueryError is a logical failure reported by the endpoint itself via
// the "failed" flag in its response envelope. It is never retried.
type QueryError struct {
	Endpoint string
	Query    string
	Command  string
	Err      string
}

func (e *QueryError) Error() string {
	if e.Command != "" {
		return fmt.Sprintf("endpoint %s reported command %q failed: %s", e.Endpoint, e.Command, e.Err)
	}
	return fmt.Sprintf("endpoint %s reported query %q failed: %s", e.Endpoint, e.Query, e.Err)
}

// Player is one roster entry as reported by an endpoint.
type Player struct {
	Name     string `json:"name"`
	PlayerID string `json:"player_id"`
}

// envelope is the response wrapper every CRCON query returns. The
// failed flag must be checked independently of the HTTP status.
type envelope struct {
	Command string          `json:"command"`
	Failed  bool            `json:"failed"`
	Error   string          `json:"error"`
	Result  json.RawMessage `json:"result"`
}

// vipEntry is one row of the get_vip_ids result.
type vipEntry struct {
	PlayerID      string  `json:"player_id"`
	Description   string  `json:"description"`
	VIPExpiration *string `json:"vip_expiration"`
}

// Client issues authenticated requests against a single CRCON endpoint.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a client for one endpoint. baseURL must not carry
// a trailing slash.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext:           (&net.Dialer{Timeout: requestTimeout}).DialContext,
				TLSHandshakeTimeout:   requestTimeout,
				ResponseHeaderTimeout: requestTimeout,
			},
		},
	}
}

// URL returns the endpoint's base URL, used as its identifier in
// fan-out result maps.
func (c *Client) URL() string {
	return c.baseURL
}

// request performs one authenticated call, retrying transport and
// HTTP-status failures with jittered backoff. A failed=true envelope
// is surfaced immediately as a *QueryError.
func (c *Client) request(ctx context.Context, method, query string, body any) (json.RawMessage, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s payload: %w", query, err)
		}
	}

	var result json.RawMessage
	retrier := retry.NewRetrier(maxAttempts, initialRetryDelay, maxRetryDelay)
	err := retrier.RunContext(ctx, func(ctx context.Context) error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api/"+query, reader)
		if err != nil {
			return retry.Stop(fmt.Errorf("failed to build request: %w", err))
		}
		req.Header.Set("Authorization", "bearer "+c.apiKey)
		req.Header.Set("Connection", "keep-alive")
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			log.WithField("endpoint", c.baseURL).Debugf("Request %q failed, may retry: %v", query, err)
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			// Drain so the connection can be reused across retries.
			io.Copy(io.Discard, resp.Body)
			return fmt.Errorf("endpoint %s returned status %d for %q", c.baseURL, resp.StatusCode, query)
		}

		var env envelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			return fmt.Errorf("failed to decode %q response: %w", query, err)
		}
		if env.Failed {
			return retry.Stop(&QueryError{Endpoint: c.baseURL, Query: query, Command: env.Command, Err: env.Error})
		}
		result = env.Result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) get(ctx context.Context, query string, out any) error {
	raw, err := c.request(ctx, http.MethodGet, query, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %q result: %w", query, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, query string, body any) error {
	_, err := c.request(ctx, http.MethodPost, query, body)
	return err
}

// Players fetches the live roster.
func (c *Client) Players(ctx context.Context) ([]Player, error) {
	var players []Player
	if err := c.get(ctx, "get_players", &players); err != nil {
		return nil, err
	}
	return players, nil
}

// VIPExpiration returns the expiration of the player's VIP entry, or
// nil when the endpoint holds none. Malformed VIP rows are skipped;
// some CRCON versions emit entries with unparseable expirations.
func (c *Client) VIPExpiration(ctx context.Context, playerID string) (*time.Time, error) {
	var entries []vipEntry
	if err := c.get(ctx, "get_vip_ids", &entries); err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.PlayerID != playerID {
			continue
		}
		if entry.VIPExpiration == nil {
			return nil, nil
		}
		expiration, err := parseExpiration(*entry.VIPExpiration)
		if err != nil {
			log.WithField("endpoint", c.baseURL).Errorf("Skipping VIP entry with bad expiration for %s: %v", entry.PlayerID, err)
			continue
		}
		return &expiration, nil
	}
	return nil, nil
}

// GrantVIP adds or updates the player's VIP entry on this endpoint.
func (c *Client) GrantVIP(ctx context.Context, playerID, description string, expiration time.Time) error {
	return c.post(ctx, "add_vip", map[string]string{
		"player_id":   playerID,
		"description": description,
		"expiration":  expiration.UTC().Format(time.RFC3339),
	})
}

// MessagePlayer sends an in-game message to a connected player.
func (c *Client) MessagePlayer(ctx context.Context, playerID, message string) error {
	return c.post(ctx, "message_player", map[string]string{
		"player_id": playerID,
		"message":   message,
	})
}

// expirationLayouts covers the timestamp shapes CRCON has been seen to
// emit for vip_expiration.
var expirationLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999Z07:00",
	"2006-01-02T15:04:05",
}

func parseExpiration(s string) (time.Time, error) {
	for _, layout := range expirationLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized expiration %q", s)
}
