package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultNeverExpiresCutoff matches the far-future expiration CRCON
// writes for indefinite VIP (now + 200 years). Anything at or beyond
// this instant is treated as a non-expiring grant.
var DefaultNeverExpiresCutoff = time.Date(2200, time.January, 1, 0, 0, 0, 0, time.UTC)

// SeedingWindow is an optional time-of-day window (UTC) during which
// accrual ticks run. Start and End are offsets from midnight. A window
// with Start after End crosses midnight; Start equal to End means
// always active.
type SeedingWindow struct {
	Set   bool
	Start time.Duration
	End   time.Duration
}

// Contains reports whether the given instant falls inside the window.
// The window is half-open: the start minute is in, the end minute is
// out, in both the same-day and midnight-crossing cases.
func (w SeedingWindow) Contains(t time.Time) bool {
	if !w.Set || w.Start == w.End {
		return true
	}
	utc := t.UTC()
	now := time.Duration(utc.Hour())*time.Hour +
		time.Duration(utc.Minute())*time.Minute +
		time.Duration(utc.Second())*time.Second
	if w.Start <= w.End {
		return w.Start <= now && now < w.End
	}
	return w.Start <= now || now < w.End
}

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// Control-API endpoint configuration
	RCONURLs   []string // Base URLs of the CRCON instances to keep in sync
	RCONAPIKey string

	// Seeding configuration
	SeedingThreshold int           // Server qualifies as seeding below this player count
	TickInterval     time.Duration // How often rosters are polled
	SeedingWindow    SeedingWindow

	// VIP configuration
	VIPRewardHours     int64 // Hours of VIP granted per seeded hour redeemed
	NeverExpiresCutoff time.Time

	// Player messaging
	AllowPlayerMessages bool
	RewardMessage       string

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RCONAPIKey:  os.Getenv("RCON_API_KEY"),

		// Seeding defaults
		SeedingThreshold: 20,
		TickInterval:     3 * time.Minute,

		// VIP defaults
		VIPRewardHours:     1,
		NeverExpiresCutoff: DefaultNeverExpiresCutoff,

		AllowPlayerMessages: os.Getenv("ALLOW_PLAYER_MESSAGES") != "false",
		RewardMessage:       "Thanks for seeding! You have banked another hour of seeding time.",

		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Parse RCON endpoint URLs
	if urls := os.Getenv("RCON_URLS"); urls != "" {
		for _, u := range strings.Split(urls, ",") {
			u = strings.TrimSpace(strings.TrimRight(u, "/"))
			if u != "" {
				config.RCONURLs = append(config.RCONURLs, u)
			}
		}
	}

	// Override defaults if environment variables are set
	if threshold := os.Getenv("SEEDING_THRESHOLD"); threshold != "" {
		parsed, err := strconv.Atoi(threshold)
		if err != nil {
			return nil, fmt.Errorf("invalid SEEDING_THRESHOLD %q: %w", threshold, err)
		}
		config.SeedingThreshold = parsed
	}
	if interval := os.Getenv("SEEDING_TICK_INTERVAL"); interval != "" {
		parsed, err := time.ParseDuration(interval)
		if err != nil {
			return nil, fmt.Errorf("invalid SEEDING_TICK_INTERVAL %q: %w", interval, err)
		}
		config.TickInterval = parsed
	}
	if hours := os.Getenv("VIP_REWARD_HOURS"); hours != "" {
		parsed, err := strconv.ParseInt(hours, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid VIP_REWARD_HOURS %q: %w", hours, err)
		}
		config.VIPRewardHours = parsed
	}
	if msg := os.Getenv("SEEDER_REWARD_MESSAGE"); msg != "" {
		config.RewardMessage = msg
	}

	window, err := parseSeedingWindow(os.Getenv("SEEDING_START_TIME_UTC"), os.Getenv("SEEDING_END_TIME_UTC"))
	if err != nil {
		return nil, err
	}
	config.SeedingWindow = window

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if len(config.RCONURLs) == 0 {
			return nil, fmt.Errorf("RCON_URLS is required")
		}
		if config.RCONAPIKey == "" {
			return nil, fmt.Errorf("RCON_API_KEY is required")
		}
	}

	return config, nil
}

// parseSeedingWindow parses "HH:MM" start and end times. Both must be
// set for the window to take effect.
func parseSeedingWindow(start, end string) (SeedingWindow, error) {
	if start == "" || end == "" {
		return SeedingWindow{}, nil
	}

	parse := func(s string) (time.Duration, error) {
		t, err := time.Parse("15:04", s)
		if err != nil {
			return 0, fmt.Errorf("invalid seeding window time %q: %w", s, err)
		}
		return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
	}

	startOffset, err := parse(start)
	if err != nil {
		return SeedingWindow{}, err
	}
	endOffset, err := parse(end)
	if err != nil {
		return SeedingWindow{}, err
	}

	return SeedingWindow{Set: true, Start: startOffset, End: endOffset}, nil
}
