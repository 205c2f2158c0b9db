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

// InviteThrottle abstracts the duplicate-send suppressor (Redis). It only
// gates notification delivery; claims and tokens are never throttled away
// silently without a log line.
type InviteThrottle interface {
	IsRecent(ctx context.Context, rootWorkID, recipient string) (bool, error)
	Mark(ctx context.Context, rootWorkID, recipient string) error
}

// WorkService orchestrates work record creation, coworker tagging, and
// invite acceptance.
type WorkService struct {
	works       ports.WorkRepository
	users       ports.IdentityProvider
	tokens      ports.TokenService
	notifier    ports.InviteNotifier
	roles       ports.RoleRegistry
	connections ports.ConnectionService
	stats       ports.StatsEnqueuer
	throttle    InviteThrottle
	log         zerolog.Logger
}

func NewWorkService(
	works ports.WorkRepository,
	users ports.IdentityProvider,
	tokens ports.TokenService,
	notifier ports.InviteNotifier,
	roles ports.RoleRegistry,
	connections ports.ConnectionService,
	stats ports.StatsEnqueuer,
	throttle InviteThrottle,
	log zerolog.Logger,
) *WorkService {
	return &WorkService{
		works:       works,
		users:       users,
		tokens:      tokens,
		notifier:    notifier,
		roles:       roles,
		connections: connections,
		stats:       stats,
		throttle:    throttle,
		log:         log,
	}
}

// CreateWork persists the owner's work record with the full claim set, then
// mints a capability token for every tagged coworker. The work write is the
// only operation that can fail the call; token issuance, delivery, role
// creation, and stats recompute are best-effort side effects.
func (s *WorkService) CreateWork(ctx context.Context, in ports.CreateWorkInput) (*ports.CreateWorkResult, error) {
	owner, err := s.users.FindByID(ctx, in.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("create work: resolve owner: %w", err)
	}

	claims := s.resolveCoworkers(ctx, in.Coworkers)

	now := time.Now().UTC()
	work := &domain.WorkRecord{
		UserID:       in.OwnerID,
		Slug:         domain.WorkSlug(in.Title, in.From, in.To),
		Title:        in.Title,
		Role:         in.Role,
		Caption:      in.Caption,
		From:         in.From,
		To:           in.To,
		Photos:       in.Photos,
		PinToProfile: in.PinToProfile,
		AddMethod:    domain.AddMethodCreated,
		Coworkers:    claims,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.works.Create(ctx, work)
	if err != nil {
		s.log.Error().Err(err).Str("owner", in.OwnerID).Msg("failed to create work record")
		return nil, err
	}

	sent := 0
	for _, claim := range claims {
		if s.inviteCoworker(ctx, created, owner, claim) {
			sent++
		}
	}

	if err := s.roles.EnsureRole(ctx, in.Role, in.OwnerID); err != nil {
		s.log.Warn().Err(err).Str("role", in.Role).Str("user", in.OwnerID).Msg("role ensure failed")
	}
	s.stats.Enqueue(ports.RecomputeTask{UserID: in.OwnerID, Reason: "work_created"})

	s.log.Info().
		Str("work_id", created.ID).
		Str("slug", created.Slug).
		Str("owner", in.OwnerID).
		Int("coworkers", len(claims)).
		Int("invites_sent", sent).
		Msg("work record created")

	return &ports.CreateWorkResult{Work: created, InvitesSent: sent}, nil
}

// resolveCoworkers parses raw identifiers and upgrades emails that already
// belong to registered users. The returned set is the owner's claim list,
// stored verbatim — resolved or not.
func (s *WorkService) resolveCoworkers(ctx context.Context, raw []string) []domain.Identifier {
	claims := make([]domain.Identifier, 0, len(raw))
	for _, r := range raw {
		id := domain.ParseIdentifier(r)
		if id.IsZero() {
			continue
		}
		if id.IsEmail() {
			if user, err := s.users.FindByEmail(ctx, id.Email()); err == nil {
				id = domain.UserRef(user.ID)
			}
		}
		if !domain.ContainsIdentifier(claims, id) {
			claims = append(claims, id)
		}
	}
	return claims
}

// inviteCoworker mints a capability token for one claim and hands it to the
// notifier. Returns true when a delivery was dispatched.
func (s *WorkService) inviteCoworker(ctx context.Context, work *domain.WorkRecord, owner *domain.User, claim domain.Identifier) bool {
	recipient := claim.Email()
	if claim.IsUser() {
		user, err := s.users.FindByID(ctx, claim.UserID())
		if err != nil {
			s.log.Warn().Err(err).Str("coworker", claim.String()).Msg("tagged user not resolvable, skipping invite")
			return false
		}
		recipient = user.Email
	}

	if recent, err := s.throttle.IsRecent(ctx, work.ID, recipient); err != nil {
		s.log.Warn().Err(err).Str("recipient", recipient).Msg("invite throttle check failed, sending anyway")
	} else if recent {
		s.log.Debug().Str("recipient", recipient).Str("work_id", work.ID).Msg("invite recently sent, skipping")
		return false
	}

	payload := domain.InvitePayload{
		RootWorkID:   work.ID,
		TaggerID:     owner.ID,
		TaggerName:   owner.FullName(),
		Recipient:    recipient,
		Title:        work.Title,
		Role:         work.Role,
		Caption:      work.Caption,
		From:         work.From,
		To:           work.To,
		Photos:       work.Photos,
		PinToProfile: work.PinToProfile,
	}

	token, err := s.tokens.Issue(ctx, payload)
	if err != nil {
		s.log.Error().Err(err).Str("recipient", recipient).Msg("invite token issue failed")
		return false
	}

	if err := s.notifier.SendInvite(ctx, recipient, token, payload); err != nil {
		// The token stays valid in the ledger; delivery is fire-and-forget.
		s.log.Warn().Err(err).Str("recipient", recipient).Msg("invite delivery failed")
	}
	if err := s.throttle.Mark(ctx, work.ID, recipient); err != nil {
		s.log.Warn().Err(err).Str("recipient", recipient).Msg("failed to mark invite throttle")
	}
	return true
}

// AcceptInvite redeems the capability token and materializes the accepting
// user's sibling record. Every step after redemption leaves the token spent
// on failure — the capability is one-shot and the tagger must re-invite.
func (s *WorkService) AcceptInvite(ctx context.Context, token string, acceptingUserID string) (*domain.WorkRecord, error) {
	payload, err := s.tokens.Redeem(ctx, token)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sibling := &domain.WorkRecord{
		UserID:       acceptingUserID,
		Slug:         domain.WorkSlug(payload.Title, payload.From, payload.To),
		Title:        payload.Title,
		Role:         payload.Role,
		Caption:      payload.Caption,
		From:         payload.From,
		To:           payload.To,
		Photos:       payload.Photos,
		PinToProfile: payload.PinToProfile,
		AddMethod:    domain.AddMethodTagged,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.works.Create(ctx, sibling)
	if err != nil {
		s.log.Error().Err(err).
			Str("root_work_id", payload.RootWorkID).
			Str("user", acceptingUserID).
			Msg("sibling work creation failed after token redemption")
		return nil, fmt.Errorf("accept invite: %w", err)
	}

	// Upgrade the tagger's claim from invited-by-email to onboarded user.
	if payload.RootWorkID != "" {
		err := s.works.ReplaceCoworker(ctx, payload.RootWorkID,
			domain.EmailRef(payload.Recipient), domain.UserRef(acceptingUserID))
		if err != nil && !errors.Is(err, domain.ErrWorkNotFound) {
			s.log.Warn().Err(err).
				Str("root_work_id", payload.RootWorkID).
				Msg("claim upgrade failed, reconciliation will classify by sibling")
		}
	}

	if err := s.roles.EnsureRole(ctx, payload.Role, acceptingUserID); err != nil {
		s.log.Warn().Err(err).Str("role", payload.Role).Str("user", acceptingUserID).Msg("role ensure failed")
	}

	// Accepting an invite connects the two workers; the edge settles at
	// CONNECTED with the coworker flag, same as explicit verification.
	if payload.TaggerID != "" {
		if _, err := s.connections.EnsureCoworkerConnection(ctx, acceptingUserID, payload.TaggerID); err != nil {
			s.log.Warn().Err(err).
				Str("user", acceptingUserID).
				Str("tagger", payload.TaggerID).
				Msg("coworker connection upsert failed")
		}
	}

	s.stats.Enqueue(ports.RecomputeTask{UserID: acceptingUserID, Reason: "invite_accepted"})
	s.stats.Enqueue(ports.RecomputeTask{UserID: payload.TaggerID, Reason: "invite_accepted"})

	s.log.Info().
		Str("work_id", created.ID).
		Str("root_work_id", payload.RootWorkID).
		Str("user", acceptingUserID).
		Msg("invite accepted")

	return created, nil
}
