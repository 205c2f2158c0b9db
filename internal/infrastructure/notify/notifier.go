// Package notify holds the outbound invite delivery adapter. Transactional
// mail is an external collaborator; this implementation records the delivery
// payload so the mail worker can be swapped in without touching the tagging
// flow.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/crewlink/crewlink-api/internal/core/domain"
)

// LogNotifier emits the invite delivery payload to the structured log.
// Token persistence happens at issuance, so a lost delivery is re-sendable
// by re-tagging; nothing here is load-bearing for the graph state.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendInvite(ctx context.Context, recipient string, token string, payload domain.InvitePayload) error {
	n.log.Info().
		Str("recipient", recipient).
		Str("root_work_id", payload.RootWorkID).
		Str("tagger", payload.TaggerName).
		Str("title", payload.Title).
		Int("token_len", len(token)).
		Msg("invite dispatched")
	return nil
}
