package ports

import (
	"context"

	"github.com/crewlink/crewlink-api/internal/core/domain"
)

// TokenLedger is the consumption side of the single-use guarantee: the
// literal signed token string is persisted at issuance and atomically
// removed at redemption. Presence in the ledger is the second failure
// domain, independent of the token's cryptographic expiry.
type TokenLedger interface {
	Save(ctx context.Context, token string, recipient string, rootWorkID string) error
	// Consume removes the ledger entry for token as a single atomic
	// find-and-delete. Returns domain.ErrTokenConsumed when no entry
	// exists (already redeemed, or never issued).
	Consume(ctx context.Context, token string) error
}

// TokenService issues and single-use-validates signed invite tokens.
type TokenService interface {
	// Issue signs payload and persists the resulting token string into the
	// ledger. The returned string is the capability handed to the notifier.
	Issue(ctx context.Context, payload domain.InvitePayload) (string, error)
	// Redeem verifies signature and expiry (domain.ErrInvalidToken), then
	// consumes the ledger entry (domain.ErrTokenConsumed). A second redeem
	// of the same token always fails after the first success.
	Redeem(ctx context.Context, token string) (*domain.InvitePayload, error)
}
