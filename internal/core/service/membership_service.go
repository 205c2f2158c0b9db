package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/crewlink/crewlink-api/internal/core/domain"
	"github.com/crewlink/crewlink-api/internal/core/ports"
)

// MembershipService reconciles event membership at read time and applies
// explicit two-sided verifications.
type MembershipService struct {
	works       ports.WorkRepository
	connections ports.ConnectionService
	stats       ports.StatsEnqueuer
	log         zerolog.Logger
}

func NewMembershipService(
	works ports.WorkRepository,
	connections ports.ConnectionService,
	stats ports.StatsEnqueuer,
	log zerolog.Logger,
) *MembershipService {
	return &MembershipService{works: works, connections: connections, stats: stats, log: log}
}

// ReconcileEventMembership loads the anchor record and every sibling sharing
// its slug, and classifies each participant as invited, verified, or
// verifiable. Read-only: it never caches or writes the derived view, so
// rerunning over unchanged state always converges to the same result.
func (s *MembershipService) ReconcileEventMembership(ctx context.Context, workID string) ([]domain.Member, error) {
	anchor, err := s.works.FindByID(ctx, workID)
	if err != nil {
		return nil, fmt.Errorf("reconcile membership: %w", err)
	}

	siblings, err := s.works.FindSiblings(ctx, anchor.Slug, anchor.UserID)
	if err != nil {
		return nil, fmt.Errorf("reconcile membership: siblings: %w", err)
	}

	return domain.ClassifyMembership(anchor.ClaimSet(), siblings), nil
}

// VerifyCoworker records an explicit confirmation that coworkerID worked the
// job on workID. Three mutations are issued as independent best-effort
// writes: only the first (the anchor claim) can fail the call. A crash
// between writes leaves an asymmetric state that a later reconciliation or
// re-verification converges.
func (s *MembershipService) VerifyCoworker(ctx context.Context, workID, coworkerID, verifierID, slug string) error {
	anchor, err := s.works.FindByID(ctx, workID)
	if err != nil {
		return fmt.Errorf("verify coworker: %w", err)
	}

	if err := s.works.AddCoworker(ctx, workID, domain.UserRef(coworkerID)); err != nil {
		return fmt.Errorf("verify coworker: claim write: %w", err)
	}

	if err := s.works.AddVerifier(ctx, slug, coworkerID, verifierID); err != nil {
		s.log.Warn().Err(err).
			Str("slug", slug).
			Str("coworker", coworkerID).
			Str("verifier", verifierID).
			Msg("verifier write failed, state converges on next verification")
	}

	if _, err := s.connections.EnsureCoworkerConnection(ctx, coworkerID, anchor.UserID); err != nil {
		s.log.Warn().Err(err).
			Str("coworker", coworkerID).
			Str("owner", anchor.UserID).
			Msg("coworker connection upsert failed")
	}

	s.stats.Enqueue(ports.RecomputeTask{UserID: coworkerID, Reason: "verified"})

	s.log.Info().
		Str("work_id", workID).
		Str("coworker", coworkerID).
		Str("verifier", verifierID).
		Msg("coworker verified")

	return nil
}
