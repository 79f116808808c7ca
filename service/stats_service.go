package service

import (
	"context"
	"fmt"
	"time"

	"seedbot/models"
)

type statsService struct {
	uowFactory UnitOfWorkFactory
}

// NewStatsService creates a new stats service
func NewStatsService(uowFactory UnitOfWorkFactory) StatsService {
	return &statsService{
		uowFactory: uowFactory,
	}
}

// Leaderboard returns the top seeders by time seeded since the cutoff.
func (s *statsService) Leaderboard(ctx context.Context, since time.Time, limit int) ([]*models.LeaderboardEntry, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := uow.SeedingSessionRepository().Leaderboard(ctx, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return entries, nil
}
