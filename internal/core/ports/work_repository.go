package ports

import (
	"context"

	"github.com/crewlink/crewlink-api/internal/core/domain"
)

// WorkRepository defines persistence operations for work records.
type WorkRepository interface {
	// Create inserts the record and returns it with the store-assigned ID.
	Create(ctx context.Context, w *domain.WorkRecord) (*domain.WorkRecord, error)
	FindByID(ctx context.Context, id string) (*domain.WorkRecord, error)
	// FindSiblings returns every record sharing slug, excluding the one
	// owned by excludeUserID.
	FindSiblings(ctx context.Context, slug string, excludeUserID string) ([]*domain.WorkRecord, error)
	FindBySlugAndUser(ctx context.Context, slug string, userID string) (*domain.WorkRecord, error)
	// AddCoworker appends id to the record's claim set (set semantics: a
	// duplicate add is a no-op).
	AddCoworker(ctx context.Context, workID string, id domain.Identifier) error
	// ReplaceCoworker upgrades a claim in place: removes old from the claim
	// set and adds replacement. Used when an email invite is accepted.
	ReplaceCoworker(ctx context.Context, workID string, old, replacement domain.Identifier) error
	// AddVerifier appends verifierID to the verifier list of the record
	// matched by slug + owner (set semantics).
	AddVerifier(ctx context.Context, slug string, userID string, verifierID string) error
	CountByUser(ctx context.Context, userID string) (int64, error)
	// CountVerificationsFor totals the verifier entries across all records
	// owned by userID.
	CountVerificationsFor(ctx context.Context, userID string) (int64, error)
}
