package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/crewlink/crewlink-api/internal/core/domain"
	"github.com/crewlink/crewlink-api/internal/core/ports"
)

// ConnectionService manages the pairwise relationship graph.
type ConnectionService struct {
	repo ports.ConnectionRepository
	log  zerolog.Logger
}

func NewConnectionService(repo ports.ConnectionRepository, log zerolog.Logger) *ConnectionService {
	return &ConnectionService{repo: repo, log: log}
}

// Request inserts a PENDING edge between the two identifiers.
//
// TODO: the duplicate lookup is direction-specific while Disconnect matches
// both orderings, so A→B and B→A can coexist as PENDING; canonicalizing the
// pair here needs a product call before changing the behavior.
func (s *ConnectionService) Request(ctx context.Context, in ports.ConnectionRequestInput) (*domain.Connection, error) {
	existing, err := s.repo.FindDirected(ctx, in.From, in.To)
	if err != nil && !errors.Is(err, domain.ErrConnectionNotFound) {
		return nil, fmt.Errorf("request connection: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrDuplicateRequest
	}

	connType := in.Type
	if connType == "" {
		connType = domain.ConnectionTypeF2F
	}

	conn := &domain.Connection{
		From:       in.From,
		To:         in.To,
		Status:     domain.ConnectionPending,
		Type:       connType,
		IsCoworker: in.IsCoworker,
		CreatedAt:  time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("request connection: %w", err)
	}

	s.log.Info().
		Str("from", in.From.String()).
		Str("to", in.To.String()).
		Str("type", connType).
		Msg("connection requested")

	return created, nil
}

// Accept settles a pending edge at CONNECTED. When the edge's "to" endpoint
// is a raw email, it is resolved to the accepting user in the same update.
func (s *ConnectionService) Accept(ctx context.Context, connectionID string, userID string) (*domain.Connection, error) {
	edge, err := s.repo.FindByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if !edge.Status.CanTransitionTo(domain.ConnectionConnected) {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidConnectionState, edge.Status, domain.ConnectionConnected)
	}

	accepted, err := s.repo.Accept(ctx, connectionID, userID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("accept connection: %w", err)
	}

	s.log.Info().Str("connection_id", connectionID).Str("user", userID).Msg("connection accepted")
	return accepted, nil
}

// Disconnect flips every non-terminal edge between the two users to
// DISCONNECTED, matching both orderings of the pair. Idempotent: no edges
// to flip is not an error.
func (s *ConnectionService) Disconnect(ctx context.Context, userA, userB string) error {
	edges, err := s.repo.FindBetween(ctx, domain.UserRef(userA), domain.UserRef(userB))
	if err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}

	now := time.Now().UTC()
	flipped := 0
	for _, edge := range edges {
		if !edge.Status.CanTransitionTo(domain.ConnectionDisconnected) {
			continue
		}
		if err := s.repo.SetStatus(ctx, edge.ID, domain.ConnectionDisconnected, now); err != nil {
			return fmt.Errorf("disconnect: %w", err)
		}
		flipped++
	}

	s.log.Info().Str("user_a", userA).Str("user_b", userB).Int("edges", flipped).Msg("disconnected")
	return nil
}

// EnsureCoworkerConnection finds or creates an edge between the two users,
// always settling at CONNECTED with the coworker flag set. Verification
// always implies a connection.
func (s *ConnectionService) EnsureCoworkerConnection(ctx context.Context, userA, userB string) (*domain.Connection, error) {
	edges, err := s.repo.FindBetween(ctx, domain.UserRef(userA), domain.UserRef(userB))
	if err != nil {
		return nil, fmt.Errorf("ensure coworker connection: %w", err)
	}

	now := time.Now().UTC()
	for _, edge := range edges {
		switch edge.Status {
		case domain.ConnectionConnected:
			if edge.IsCoworker {
				return edge, nil
			}
			return s.repo.MarkCoworkerConnected(ctx, edge.ID, now)
		case domain.ConnectionPending:
			return s.repo.MarkCoworkerConnected(ctx, edge.ID, now)
		}
	}

	conn := &domain.Connection{
		From:        domain.UserRef(userA),
		To:          domain.UserRef(userB),
		Status:      domain.ConnectionConnected,
		Type:        domain.ConnectionTypeF2F,
		IsCoworker:  true,
		CreatedAt:   now,
		ConnectedAt: &now,
	}
	return s.repo.Create(ctx, conn)
}
