package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/crewlink/crewlink-api/internal/core/domain"
	"github.com/crewlink/crewlink-api/internal/core/ports"
)

// inviteClaims wraps the capability payload in a standard JWT claim set so
// expiry is enforced by the signature check itself.
type inviteClaims struct {
	Invite domain.InvitePayload `json:"invite"`
	jwt.RegisteredClaims
}

// TokenService issues and redeems single-use capability tokens. A token is
// valid only while both checks pass: HS256 signature with unexpired claims,
// and presence of the literal token string in the consumption ledger.
type TokenService struct {
	ledger ports.TokenLedger
	secret []byte
	ttl    time.Duration
	log    zerolog.Logger
}

const defaultInviteTTL = 14 * 24 * time.Hour

func NewTokenService(ledger ports.TokenLedger, secret string, ttl time.Duration, log zerolog.Logger) *TokenService {
	if ttl <= 0 {
		ttl = defaultInviteTTL
	}
	return &TokenService{ledger: ledger, secret: []byte(secret), ttl: ttl, log: log}
}

// Issue signs the payload and persists the token string into the ledger.
// A ledger write failure invalidates the token (it would be rejected at
// redemption), so it fails the whole call.
func (s *TokenService) Issue(ctx context.Context, payload domain.InvitePayload) (string, error) {
	now := time.Now().UTC()
	claims := inviteClaims{
		Invite: payload,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign invite token: %w", err)
	}

	if err := s.ledger.Save(ctx, token, payload.Recipient, payload.RootWorkID); err != nil {
		return "", fmt.Errorf("persist invite token: %w", err)
	}

	s.log.Debug().
		Str("root_work_id", payload.RootWorkID).
		Str("recipient", payload.Recipient).
		Msg("invite token issued")

	return token, nil
}

// Redeem validates the two failure domains in order: signature and expiry
// first, ledger presence second. The ledger entry is deleted atomically with
// the lookup, so two concurrent redemptions of the same token yield exactly
// one success.
func (s *TokenService) Redeem(ctx context.Context, token string) (*domain.InvitePayload, error) {
	claims := &inviteClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}

	if err := s.ledger.Consume(ctx, token); err != nil {
		if errors.Is(err, domain.ErrTokenConsumed) {
			return nil, domain.ErrTokenConsumed
		}
		return nil, fmt.Errorf("consume invite token: %w", err)
	}

	return &claims.Invite, nil
}
