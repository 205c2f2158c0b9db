package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/crewlink/crewlink-api/internal/core/domain"
	"github.com/crewlink/crewlink-api/internal/core/ports"
)

type workFixture struct {
	svc      *WorkService
	works    *stubWorkRepo
	users    *stubUserRepo
	ledger   *stubLedger
	notifier *stubNotifier
	roles    *stubRoles
	conns    *stubConnService
	stats    *stubStats
	throttle *stubThrottle
}

func newWorkFixture() *workFixture {
	f := &workFixture{
		works:    newStubWorkRepo(),
		users:    newStubUserRepo(),
		ledger:   newStubLedger(),
		notifier: &stubNotifier{},
		roles:    &stubRoles{},
		conns:    &stubConnService{},
		stats:    &stubStats{},
		throttle: newStubThrottle(),
	}
	tokens := NewTokenService(f.ledger, testSecret, time.Hour, discardLogger)
	f.svc = NewWorkService(f.works, f.users, tokens, f.notifier, f.roles, f.conns, f.stats, f.throttle, discardLogger)
	return f
}

func createInput(ownerID string, coworkers ...string) ports.CreateWorkInput {
	return ports.CreateWorkInput{
		OwnerID:   ownerID,
		Title:     "Festival Rigging",
		Role:      "rigger",
		From:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		To:        time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		Coworkers: coworkers,
	}
}

func TestWorkService_CreateWork_ResolvesCoworkers(t *testing.T) {
	f := newWorkFixture()
	f.users.add("u-owner", "owner@x.com", "Ana", "Diaz")
	f.users.add("u-b", "b@x.com", "Ben", "Reyes")

	// b@x.com belongs to a registered user, c@x.com does not, u-b tagged a
	// second time by ID must dedupe against the resolved email.
	res, err := f.svc.CreateWork(context.Background(), createInput("u-owner", "b@x.com", "c@x.com", "u-b"))
	if err != nil {
		t.Fatalf("create work: %v", err)
	}

	claims := res.Work.Coworkers
	if len(claims) != 2 {
		t.Fatalf("expected 2 deduped claims, got %v", claims)
	}
	if !domain.ContainsIdentifier(claims, domain.UserRef("u-b")) {
		t.Error("registered email must be upgraded to a user reference")
	}
	if !domain.ContainsIdentifier(claims, domain.EmailRef("c@x.com")) {
		t.Error("unregistered email must stay a raw email claim")
	}
	if domain.ContainsIdentifier(claims, domain.EmailRef("b@x.com")) {
		t.Error("resolved email must not remain in raw form")
	}

	if res.InvitesSent != 2 || len(f.notifier.sent) != 2 {
		t.Errorf("expected one invite per claim, got sent=%d notified=%d", res.InvitesSent, len(f.notifier.sent))
	}
	if res.Work.AddMethod != domain.AddMethodCreated {
		t.Errorf("add method: got %q", res.Work.AddMethod)
	}
	if !f.stats.has("u-owner") {
		t.Error("owner stats recompute must be enqueued")
	}
	if len(f.roles.ensured) != 1 || f.roles.ensured[0] != "rigger:u-owner" {
		t.Errorf("role registry: %v", f.roles.ensured)
	}
}

func TestWorkService_CreateWork_ThrottleSuppressesDelivery(t *testing.T) {
	f := newWorkFixture()
	f.users.add("u-owner", "owner@x.com", "Ana", "Diaz")
	f.throttle.recent["c@x.com"] = true

	res, err := f.svc.CreateWork(context.Background(), createInput("u-owner", "c@x.com", "d@x.com"))
	if err != nil {
		t.Fatalf("create work: %v", err)
	}

	// The claim is still stored; only the notification is skipped.
	if len(res.Work.Coworkers) != 2 {
		t.Errorf("throttle must not drop claims: %v", res.Work.Coworkers)
	}
	if res.InvitesSent != 1 {
		t.Errorf("invites sent: got %d, want 1", res.InvitesSent)
	}
	if len(f.notifier.sent) != 1 || f.notifier.sent[0].recipient != "d@x.com" {
		t.Errorf("unexpected deliveries: %v", f.notifier.sent)
	}
}

func TestWorkService_CreateWork_UnknownOwner(t *testing.T) {
	f := newWorkFixture()

	if _, err := f.svc.CreateWork(context.Background(), createInput("ghost")); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("got %v, want ErrUserNotFound", err)
	}
}

func TestWorkService_AcceptInvite_UpgradesClaim(t *testing.T) {
	f := newWorkFixture()
	f.users.add("u-owner", "owner@x.com", "Ana", "Diaz")

	res, err := f.svc.CreateWork(context.Background(), createInput("u-owner", "c@x.com"))
	if err != nil {
		t.Fatalf("create work: %v", err)
	}
	token := f.notifier.sent[0].token

	f.users.add("u-c", "c@x.com", "Cam", "Lopez")
	sibling, err := f.svc.AcceptInvite(context.Background(), token, "u-c")
	if err != nil {
		t.Fatalf("accept invite: %v", err)
	}

	if sibling.AddMethod != domain.AddMethodTagged {
		t.Errorf("sibling add method: got %q", sibling.AddMethod)
	}
	if sibling.Slug != res.Work.Slug {
		t.Errorf("sibling slug %q must match root slug %q", sibling.Slug, res.Work.Slug)
	}
	if sibling.UserID != "u-c" {
		t.Errorf("sibling owner: got %q", sibling.UserID)
	}

	root := f.works.works[res.Work.ID]
	if !domain.ContainsIdentifier(root.Coworkers, domain.UserRef("u-c")) {
		t.Error("accepting must upgrade the email claim to a user reference")
	}
	if domain.ContainsIdentifier(root.Coworkers, domain.EmailRef("c@x.com")) {
		t.Error("raw email claim must be gone after acceptance")
	}

	if !f.stats.has("u-c") || !f.stats.has("u-owner") {
		t.Error("both sides must get a stats recompute")
	}

	// Acceptance itself connects the two workers.
	if len(f.conns.ensured) != 1 || f.conns.ensured[0] != [2]string{"u-c", "u-owner"} {
		t.Errorf("coworker connection not ensured on acceptance: %v", f.conns.ensured)
	}

	if _, err := f.svc.AcceptInvite(context.Background(), token, "u-c"); !errors.Is(err, domain.ErrTokenConsumed) {
		t.Errorf("reuse: got %v, want ErrTokenConsumed", err)
	}
}

func TestWorkService_AcceptInvite_ConnectionFailureBestEffort(t *testing.T) {
	f := newWorkFixture()
	f.users.add("u-owner", "owner@x.com", "Ana", "Diaz")

	if _, err := f.svc.CreateWork(context.Background(), createInput("u-owner", "c@x.com")); err != nil {
		t.Fatalf("create work: %v", err)
	}
	token := f.notifier.sent[0].token

	f.conns.ensureErr = errors.New("graph down")
	if _, err := f.svc.AcceptInvite(context.Background(), token, "u-c"); err != nil {
		t.Fatalf("connection upsert failure must not fail acceptance: %v", err)
	}
}

func TestWorkService_AcceptInvite_TokenSpentOnFailure(t *testing.T) {
	f := newWorkFixture()
	f.users.add("u-owner", "owner@x.com", "Ana", "Diaz")

	if _, err := f.svc.CreateWork(context.Background(), createInput("u-owner", "c@x.com")); err != nil {
		t.Fatalf("create work: %v", err)
	}
	token := f.notifier.sent[0].token

	f.works.createErr = errors.New("store down")
	if _, err := f.svc.AcceptInvite(context.Background(), token, "u-c"); err == nil {
		t.Fatal("sibling write failure must surface")
	}

	// The capability is one-shot even when the write after redemption failed.
	f.works.createErr = nil
	if _, err := f.svc.AcceptInvite(context.Background(), token, "u-c"); !errors.Is(err, domain.ErrTokenConsumed) {
		t.Errorf("retry: got %v, want ErrTokenConsumed", err)
	}
}

func TestWorkService_AcceptInvite_InvalidToken(t *testing.T) {
	f := newWorkFixture()

	if _, err := f.svc.AcceptInvite(context.Background(), "not-a-jwt", "u-c"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}
