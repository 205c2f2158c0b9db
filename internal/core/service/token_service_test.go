package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/crewlink/crewlink-api/internal/core/domain"
)

const testSecret = "test-secret"

func testPayload() domain.InvitePayload {
	return domain.InvitePayload{
		RootWorkID: "w1",
		TaggerID:   "u-owner",
		TaggerName: "Ana Diaz",
		Recipient:  "mate@example.com",
		Title:      "Festival Rigging",
		Role:       "rigger",
		From:       time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		To:         time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
	}
}

// signToken builds a token outside the service, bypassing the ledger.
func signToken(t *testing.T, secret string, expiresAt time.Time) string {
	t.Helper()
	claims := inviteClaims{
		Invite: testPayload(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().UTC().Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func TestTokenService_IssueAndRedeem(t *testing.T) {
	ledger := newStubLedger()
	svc := NewTokenService(ledger, testSecret, time.Hour, discardLogger)

	token, err := svc.Issue(context.Background(), testPayload())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, ok := ledger.entries[token]; !ok {
		t.Fatal("issued token must be persisted in the ledger")
	}

	payload, err := svc.Redeem(context.Background(), token)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if payload.Recipient != "mate@example.com" || payload.RootWorkID != "w1" {
		t.Errorf("payload lost in round trip: %+v", payload)
	}
	if _, ok := ledger.entries[token]; ok {
		t.Error("redemption must delete the ledger entry")
	}
}

func TestTokenService_SingleUse(t *testing.T) {
	ledger := newStubLedger()
	svc := NewTokenService(ledger, testSecret, time.Hour, discardLogger)

	token, err := svc.Issue(context.Background(), testPayload())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Redeem(context.Background(), token); err != nil {
		t.Fatalf("first redeem: %v", err)
	}

	if _, err := svc.Redeem(context.Background(), token); !errors.Is(err, domain.ErrTokenConsumed) {
		t.Errorf("second redeem: got %v, want ErrTokenConsumed", err)
	}
}

func TestTokenService_ExpiredBeforeLedger(t *testing.T) {
	ledger := newStubLedger()
	svc := NewTokenService(ledger, testSecret, time.Hour, discardLogger)

	// Expired but still present in the ledger: expiry wins, and the ledger
	// entry is not burned.
	token := signToken(t, testSecret, time.Now().UTC().Add(-time.Minute))
	ledger.entries[token] = "mate@example.com"

	if _, err := svc.Redeem(context.Background(), token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken", err)
	}
	if _, ok := ledger.entries[token]; !ok {
		t.Error("expired token must not consume its ledger entry")
	}
}

func TestTokenService_BadSignature(t *testing.T) {
	ledger := newStubLedger()
	svc := NewTokenService(ledger, testSecret, time.Hour, discardLogger)

	token := signToken(t, "some-other-secret", time.Now().UTC().Add(time.Hour))
	ledger.entries[token] = "mate@example.com"

	if _, err := svc.Redeem(context.Background(), token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}

func TestTokenService_ValidButNeverIssued(t *testing.T) {
	svc := NewTokenService(newStubLedger(), testSecret, time.Hour, discardLogger)

	// Correctly signed, unexpired, but absent from the ledger.
	token := signToken(t, testSecret, time.Now().UTC().Add(time.Hour))

	if _, err := svc.Redeem(context.Background(), token); !errors.Is(err, domain.ErrTokenConsumed) {
		t.Errorf("got %v, want ErrTokenConsumed", err)
	}
}

func TestTokenService_IssueFailsWhenLedgerFails(t *testing.T) {
	ledger := newStubLedger()
	ledger.saveErr = errors.New("ledger down")
	svc := NewTokenService(ledger, testSecret, time.Hour, discardLogger)

	if _, err := svc.Issue(context.Background(), testPayload()); err == nil {
		t.Error("a token that cannot be persisted must not be handed out")
	}
}
