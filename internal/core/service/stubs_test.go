package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/crewlink/crewlink-api/internal/core/domain"
	"github.com/crewlink/crewlink-api/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// stubWorkRepo is an in-memory ports.WorkRepository.
type stubWorkRepo struct {
	works map[string]*domain.WorkRecord
	seq   int

	createErr      error
	addCoworkerErr error
	addVerifierErr error
}

func newStubWorkRepo() *stubWorkRepo {
	return &stubWorkRepo{works: map[string]*domain.WorkRecord{}}
}

func (r *stubWorkRepo) Create(_ context.Context, w *domain.WorkRecord) (*domain.WorkRecord, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.seq++
	cp := *w
	cp.ID = fmt.Sprintf("w%d", r.seq)
	r.works[cp.ID] = &cp
	return &cp, nil
}

func (r *stubWorkRepo) FindByID(_ context.Context, id string) (*domain.WorkRecord, error) {
	w, ok := r.works[id]
	if !ok {
		return nil, domain.ErrWorkNotFound
	}
	return w, nil
}

func (r *stubWorkRepo) FindSiblings(_ context.Context, slug string, excludeUserID string) ([]*domain.WorkRecord, error) {
	var out []*domain.WorkRecord
	for _, w := range r.works {
		if w.Slug == slug && w.UserID != excludeUserID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *stubWorkRepo) FindBySlugAndUser(_ context.Context, slug string, userID string) (*domain.WorkRecord, error) {
	for _, w := range r.works {
		if w.Slug == slug && w.UserID == userID {
			return w, nil
		}
	}
	return nil, domain.ErrWorkNotFound
}

func (r *stubWorkRepo) AddCoworker(_ context.Context, workID string, id domain.Identifier) error {
	if r.addCoworkerErr != nil {
		return r.addCoworkerErr
	}
	w, ok := r.works[workID]
	if !ok {
		return domain.ErrWorkNotFound
	}
	if !domain.ContainsIdentifier(w.Coworkers, id) {
		w.Coworkers = append(w.Coworkers, id)
	}
	return nil
}

func (r *stubWorkRepo) ReplaceCoworker(_ context.Context, workID string, old, replacement domain.Identifier) error {
	w, ok := r.works[workID]
	if !ok {
		return domain.ErrWorkNotFound
	}
	w.Coworkers = domain.RemoveIdentifier(w.Coworkers, old)
	if !domain.ContainsIdentifier(w.Coworkers, replacement) {
		w.Coworkers = append(w.Coworkers, replacement)
	}
	return nil
}

func (r *stubWorkRepo) AddVerifier(_ context.Context, slug string, userID string, verifierID string) error {
	if r.addVerifierErr != nil {
		return r.addVerifierErr
	}
	for _, w := range r.works {
		if w.Slug == slug && w.UserID == userID {
			if !w.HasVerifier(verifierID) {
				w.Verifiers = append(w.Verifiers, verifierID)
			}
			return nil
		}
	}
	return domain.ErrWorkNotFound
}

func (r *stubWorkRepo) CountByUser(_ context.Context, userID string) (int64, error) {
	var n int64
	for _, w := range r.works {
		if w.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *stubWorkRepo) CountVerificationsFor(_ context.Context, userID string) (int64, error) {
	var n int64
	for _, w := range r.works {
		if w.UserID == userID {
			n += int64(len(w.Verifiers))
		}
	}
	return n, nil
}

// stubUserRepo is an in-memory ports.UserRepository.
type stubUserRepo struct {
	byID  map[string]*domain.User
	seq   int
	stats map[string]domain.UserStats
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: map[string]*domain.User{}, stats: map[string]domain.UserStats{}}
}

func (r *stubUserRepo) add(id, email, first, last string) *domain.User {
	u := &domain.User{ID: id, Email: strings.ToLower(email), FirstName: first, LastName: last}
	r.byID[id] = u
	return u
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	email = strings.ToLower(email)
	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.seq++
	cp := *user
	cp.ID = fmt.Sprintf("u%d", r.seq)
	cp.Email = strings.ToLower(cp.Email)
	r.byID[cp.ID] = &cp
	return &cp, nil
}

func (r *stubUserRepo) UpdateStats(_ context.Context, userID string, stats domain.UserStats) error {
	if _, ok := r.byID[userID]; !ok {
		return domain.ErrUserNotFound
	}
	r.stats[userID] = stats
	return nil
}

// stubLedger is an in-memory ports.TokenLedger.
type stubLedger struct {
	entries map[string]string // token -> recipient
	saveErr error
}

func newStubLedger() *stubLedger {
	return &stubLedger{entries: map[string]string{}}
}

func (l *stubLedger) Save(_ context.Context, token, recipient, _ string) error {
	if l.saveErr != nil {
		return l.saveErr
	}
	l.entries[token] = recipient
	return nil
}

func (l *stubLedger) Consume(_ context.Context, token string) error {
	if _, ok := l.entries[token]; !ok {
		return domain.ErrTokenConsumed
	}
	delete(l.entries, token)
	return nil
}

type sentInvite struct {
	recipient string
	token     string
	payload   domain.InvitePayload
}

// stubNotifier records deliveries.
type stubNotifier struct {
	sent    []sentInvite
	sendErr error
}

func (n *stubNotifier) SendInvite(_ context.Context, recipient, token string, payload domain.InvitePayload) error {
	if n.sendErr != nil {
		return n.sendErr
	}
	n.sent = append(n.sent, sentInvite{recipient: recipient, token: token, payload: payload})
	return nil
}

// stubRoles records EnsureRole calls as "name:userID".
type stubRoles struct {
	ensured []string
	err     error
}

func (r *stubRoles) EnsureRole(_ context.Context, name, userID string) error {
	if r.err != nil {
		return r.err
	}
	r.ensured = append(r.ensured, name+":"+userID)
	return nil
}

// stubStats records enqueued recompute tasks.
type stubStats struct {
	tasks []ports.RecomputeTask
}

func (s *stubStats) Enqueue(task ports.RecomputeTask) {
	s.tasks = append(s.tasks, task)
}

func (s *stubStats) has(userID string) bool {
	for _, t := range s.tasks {
		if t.UserID == userID {
			return true
		}
	}
	return false
}

// stubThrottle keys on recipient only; good enough for tests.
type stubThrottle struct {
	recent map[string]bool
	marked []string
}

func newStubThrottle() *stubThrottle {
	return &stubThrottle{recent: map[string]bool{}}
}

func (t *stubThrottle) IsRecent(_ context.Context, _, recipient string) (bool, error) {
	return t.recent[recipient], nil
}

func (t *stubThrottle) Mark(_ context.Context, _, recipient string) error {
	t.marked = append(t.marked, recipient)
	return nil
}

// stubConnRepo is an in-memory ports.ConnectionRepository.
type stubConnRepo struct {
	conns map[string]*domain.Connection
	seq   int
}

func newStubConnRepo() *stubConnRepo {
	return &stubConnRepo{conns: map[string]*domain.Connection{}}
}

func (r *stubConnRepo) Create(_ context.Context, c *domain.Connection) (*domain.Connection, error) {
	r.seq++
	cp := *c
	cp.ID = fmt.Sprintf("c%d", r.seq)
	r.conns[cp.ID] = &cp
	return &cp, nil
}

func (r *stubConnRepo) FindByID(_ context.Context, id string) (*domain.Connection, error) {
	c, ok := r.conns[id]
	if !ok {
		return nil, domain.ErrConnectionNotFound
	}
	return c, nil
}

func (r *stubConnRepo) FindDirected(_ context.Context, from, to domain.Identifier) (*domain.Connection, error) {
	for _, c := range r.conns {
		if c.From.Equal(from) && c.To.Equal(to) {
			return c, nil
		}
	}
	return nil, domain.ErrConnectionNotFound
}

func (r *stubConnRepo) FindBetween(_ context.Context, a, b domain.Identifier) ([]*domain.Connection, error) {
	var out []*domain.Connection
	for _, c := range r.conns {
		if (c.From.Equal(a) && c.To.Equal(b)) || (c.From.Equal(b) && c.To.Equal(a)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *stubConnRepo) Accept(_ context.Context, id string, userID string, at time.Time) (*domain.Connection, error) {
	c, ok := r.conns[id]
	if !ok {
		return nil, domain.ErrConnectionNotFound
	}
	if c.To.IsEmail() {
		c.To = domain.UserRef(userID)
	}
	c.Status = domain.ConnectionConnected
	c.ConnectedAt = &at
	return c, nil
}

func (r *stubConnRepo) SetStatus(_ context.Context, id string, status domain.ConnectionStatus, at time.Time) error {
	c, ok := r.conns[id]
	if !ok {
		return domain.ErrConnectionNotFound
	}
	c.Status = status
	switch status {
	case domain.ConnectionConnected:
		c.ConnectedAt = &at
	case domain.ConnectionDisconnected:
		c.DisconnectedAt = &at
	}
	return nil
}

func (r *stubConnRepo) MarkCoworkerConnected(_ context.Context, id string, at time.Time) (*domain.Connection, error) {
	c, ok := r.conns[id]
	if !ok {
		return nil, domain.ErrConnectionNotFound
	}
	c.Status = domain.ConnectionConnected
	c.IsCoworker = true
	if c.ConnectedAt == nil {
		c.ConnectedAt = &at
	}
	return c, nil
}

// stubConnService records EnsureCoworkerConnection calls.
type stubConnService struct {
	ensured   [][2]string
	ensureErr error
}

func (s *stubConnService) Request(context.Context, ports.ConnectionRequestInput) (*domain.Connection, error) {
	return nil, nil
}

func (s *stubConnService) Accept(context.Context, string, string) (*domain.Connection, error) {
	return nil, nil
}

func (s *stubConnService) Disconnect(context.Context, string, string) error {
	return nil
}

func (s *stubConnService) EnsureCoworkerConnection(_ context.Context, userA, userB string) (*domain.Connection, error) {
	if s.ensureErr != nil {
		return nil, s.ensureErr
	}
	s.ensured = append(s.ensured, [2]string{userA, userB})
	return &domain.Connection{Status: domain.ConnectionConnected, IsCoworker: true}, nil
}
