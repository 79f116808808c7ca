package service

import (
	"context"
	"time"

	"seedbot/models"
	"seedbot/rcon"

	"github.com/stretchr/testify/mock"
)

// MockPlayerRepository is a mock implementation of PlayerRepository
type MockPlayerRepository struct {
	mock.Mock
}

func (m *MockPlayerRepository) GetByPlayerID(ctx context.Context, playerID string) (*models.Player, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *MockPlayerRepository) GetByPlayerIDForUpdate(ctx context.Context, playerID string) (*models.Player, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *MockPlayerRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.Player, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *MockPlayerRepository) GetByDiscordIDForUpdate(ctx context.Context, discordID int64) (*models.Player, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *MockPlayerRepository) ApplyAccrual(ctx context.Context, playerID, playerName string, increment time.Duration, observedAt time.Time) (*models.Player, error) {
	args := m.Called(ctx, playerID, playerName, increment, observedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *MockPlayerRepository) AddSeederTime(ctx context.Context, playerID string, amount time.Duration) error {
	args := m.Called(ctx, playerID, amount)
	return args.Error(0)
}

func (m *MockPlayerRepository) DeductBalance(ctx context.Context, playerID string, amount time.Duration) error {
	args := m.Called(ctx, playerID, amount)
	return args.Error(0)
}

func (m *MockPlayerRepository) LinkDiscord(ctx context.Context, playerID string, discordID int64) error {
	args := m.Called(ctx, playerID, discordID)
	return args.Error(0)
}

func (m *MockPlayerRepository) UnlinkDiscord(ctx context.Context, discordID int64) error {
	args := m.Called(ctx, discordID)
	return args.Error(0)
}

func (m *MockPlayerRepository) SetHidden(ctx context.Context, playerID string, hidden bool) error {
	args := m.Called(ctx, playerID, hidden)
	return args.Error(0)
}

// MockSeedingSessionRepository is a mock implementation of SeedingSessionRepository
type MockSeedingSessionRepository struct {
	mock.Mock
}

func (m *MockSeedingSessionRepository) Upsert(ctx context.Context, playerID, server string, start, end time.Time) error {
	args := m.Called(ctx, playerID, server, start, end)
	return args.Error(0)
}

func (m *MockSeedingSessionRepository) GetByPlayer(ctx context.Context, playerID string) ([]*models.SeedingSession, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SeedingSession), args.Error(1)
}

func (m *MockSeedingSessionRepository) Leaderboard(ctx context.Context, since time.Time, limit int) ([]*models.LeaderboardEntry, error) {
	args := m.Called(ctx, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LeaderboardEntry), args.Error(1)
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
	PlayerRepo  *MockPlayerRepository
	SessionRepo *MockSeedingSessionRepository
}

// NewMockUnitOfWork creates a unit of work with fresh repository mocks
func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		PlayerRepo:  new(MockPlayerRepository),
		SessionRepo: new(MockSeedingSessionRepository),
	}
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) PlayerRepository() PlayerRepository {
	return m.PlayerRepo
}

func (m *MockUnitOfWork) SeedingSessionRepository() SeedingSessionRepository {
	return m.SessionRepo
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockServerFleet is a mock implementation of ServerFleet
type MockServerFleet struct {
	mock.Mock
}

func (m *MockServerFleet) URLs() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

func (m *MockServerFleet) Rosters(ctx context.Context) map[string]rcon.Outcome[[]rcon.Player] {
	args := m.Called(ctx)
	return args.Get(0).(map[string]rcon.Outcome[[]rcon.Player])
}

func (m *MockServerFleet) VIPExpiration(ctx context.Context, playerID string) (*time.Time, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockServerFleet) GrantVIP(ctx context.Context, playerID, description string, expiration time.Time) error {
	args := m.Called(ctx, playerID, description, expiration)
	return args.Error(0)
}

func (m *MockServerFleet) MessagePlayer(ctx context.Context, serverURL, playerID, message string) error {
	args := m.Called(ctx, serverURL, playerID, message)
	return args.Error(0)
}
