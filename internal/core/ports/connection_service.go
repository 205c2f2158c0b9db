package ports

import (
	"context"

	"github.com/crewlink/crewlink-api/internal/core/domain"
)

// ConnectionRequestInput carries the parameters of a connect request.
type ConnectionRequestInput struct {
	From       domain.Identifier
	To         domain.Identifier
	Type       string // f2f, b2f, f2b
	IsCoworker bool
}

// ConnectionService manages the pairwise relationship graph.
type ConnectionService interface {
	// Request inserts a PENDING edge. Fails with domain.ErrDuplicateRequest
	// when an edge with the same (from, to) ordering already exists.
	Request(ctx context.Context, in ConnectionRequestInput) (*domain.Connection, error)
	// Accept marks the edge connected, resolving a raw-email "to" endpoint
	// to the accepting user.
	Accept(ctx context.Context, connectionID string, userID string) (*domain.Connection, error)
	// Disconnect flips every non-terminal edge between the two users to
	// DISCONNECTED, matching both orderings.
	Disconnect(ctx context.Context, userA, userB string) error
	// EnsureCoworkerConnection finds or creates an edge between the two
	// users, always settling at CONNECTED with the coworker flag set.
	EnsureCoworkerConnection(ctx context.Context, userA, userB string) (*domain.Connection, error)
}
