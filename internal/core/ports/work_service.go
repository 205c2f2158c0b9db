package ports

import (
	"context"
	"time"

	"github.com/crewlink/crewlink-api/internal/core/domain"
)

// CreateWorkInput carries all data needed to log a new work record.
type CreateWorkInput struct {
	OwnerID      string
	Title        string
	Role         string
	Caption      string
	From         time.Time
	To           time.Time
	Photos       []string
	PinToProfile bool
	// Coworkers holds raw identifiers — emails or user IDs — of the people
	// the owner claims worked the job with them.
	Coworkers []string
}

// CreateWorkResult is returned by CreateWork.
type CreateWorkResult struct {
	Work *domain.WorkRecord
	// InvitesSent counts the capability tokens handed to the notifier.
	InvitesSent int
}

// WorkService covers work record creation (coworker tagging) and invite
// acceptance.
type WorkService interface {
	CreateWork(ctx context.Context, in CreateWorkInput) (*CreateWorkResult, error)
	// AcceptInvite redeems a capability token on behalf of acceptingUserID:
	// a sibling record is materialized and the tagger's email claim is
	// upgraded to a user reference. Failures after redemption leave the
	// token spent; the caller must re-invite.
	AcceptInvite(ctx context.Context, token string, acceptingUserID string) (*domain.WorkRecord, error)
}

// MembershipService is the read-time reconciler plus explicit verification.
type MembershipService interface {
	// ReconcileEventMembership merges the anchor record's claims with its
	// sibling records into one classified membership view. Read-only.
	ReconcileEventMembership(ctx context.Context, workID string) ([]domain.Member, error)
	// VerifyCoworker records a two-sided confirmation: the coworker joins
	// the anchor owner's claim set, the verifier joins the coworker's
	// sibling record, and a connected coworker edge is ensured.
	VerifyCoworker(ctx context.Context, workID, coworkerID, verifierID, slug string) error
}
