package ports

import (
	"context"
	"time"

	"github.com/crewlink/crewlink-api/internal/core/domain"
)

// ConnectionRepository defines persistence operations for relationship edges.
type ConnectionRepository interface {
	Create(ctx context.Context, c *domain.Connection) (*domain.Connection, error)
	FindByID(ctx context.Context, id string) (*domain.Connection, error)
	// FindDirected looks up an edge with this exact (from, to) ordering,
	// any status.
	FindDirected(ctx context.Context, from, to domain.Identifier) (*domain.Connection, error)
	// FindBetween returns every edge whose endpoints are (a, b) in either
	// ordering.
	FindBetween(ctx context.Context, a, b domain.Identifier) ([]*domain.Connection, error)
	// Accept marks the edge connected and, when its "to" endpoint is a raw
	// email, resolves it to userID in the same update.
	Accept(ctx context.Context, id string, userID string, at time.Time) (*domain.Connection, error)
	// SetStatus applies status and stamps connected_at/disconnected_at as
	// appropriate.
	SetStatus(ctx context.Context, id string, status domain.ConnectionStatus, at time.Time) error
	// MarkCoworkerConnected settles the edge at CONNECTED with the coworker
	// flag set. Idempotent.
	MarkCoworkerConnected(ctx context.Context, id string, at time.Time) (*domain.Connection, error)
}
