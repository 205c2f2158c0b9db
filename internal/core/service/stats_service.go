package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/crewlink/crewlink-api/internal/core/domain"
	"github.com/crewlink/crewlink-api/internal/core/ports"
)

// StatsService re-derives the denormalized per-user counts the badge layer
// reads. Counts are always recomputed from the work record collection, never
// incremented in place, so a lost recompute task only delays convergence.
type StatsService struct {
	works ports.WorkRepository
	users ports.UserRepository
	log   zerolog.Logger
}

func NewStatsService(works ports.WorkRepository, users ports.UserRepository, log zerolog.Logger) *StatsService {
	return &StatsService{works: works, users: users, log: log}
}

// Recompute counts the user's work records and received verifications and
// writes them onto the user document.
func (s *StatsService) Recompute(ctx context.Context, userID string) error {
	works, err := s.works.CountByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("recompute stats: works: %w", err)
	}

	verifications, err := s.works.CountVerificationsFor(ctx, userID)
	if err != nil {
		return fmt.Errorf("recompute stats: verifications: %w", err)
	}

	stats := domain.UserStats{
		Works:         int(works),
		Verifications: int(verifications),
		RecomputedAt:  time.Now().UTC(),
	}
	if err := s.users.UpdateStats(ctx, userID, stats); err != nil {
		return fmt.Errorf("recompute stats: update: %w", err)
	}

	s.log.Debug().
		Str("user", userID).
		Int("works", stats.Works).
		Int("verifications", stats.Verifications).
		Msg("user stats recomputed")

	return nil
}
