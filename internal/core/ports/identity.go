package ports

import (
	"context"

	"github.com/crewlink/crewlink-api/internal/core/domain"
)

// IdentityProvider resolves participants to registered accounts. Both
// lookups return domain.ErrUserNotFound for unknown identities.
type IdentityProvider interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

// UserRepository extends IdentityProvider with the write operations the
// auth layer and the stats pipeline need.
type UserRepository interface {
	IdentityProvider
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdateStats(ctx context.Context, userID string, stats domain.UserStats) error
}

// AuthService implements registration and login for the identity provider.
type AuthService interface {
	Register(ctx context.Context, email, password, firstName, lastName string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}

// InviteNotifier delivers a capability token to a tagged coworker. Delivery
// is fire-and-forget: the token is already persisted in the ledger and a
// delivery failure never fails the tagging call.
type InviteNotifier interface {
	SendInvite(ctx context.Context, recipient string, token string, payload domain.InvitePayload) error
}

// RoleRegistry creates role records if absent, keyed by (name, user).
type RoleRegistry interface {
	EnsureRole(ctx context.Context, name string, userID string) error
}
