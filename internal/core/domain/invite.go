package domain

import (
	"errors"
	"time"
)

var ErrInvalidToken = errors.New("invalid or expired invite token")
var ErrTokenConsumed = errors.New("invite token already consumed")

// InvitePayload is the signed body of a capability token. It clones enough
// of the tagger's work record to materialize a sibling record for an invitee
// who does not yet hold an account.
type InvitePayload struct {
	RootWorkID   string    `json:"root_work_id"`
	TaggerID     string    `json:"tagger_id"`
	TaggerName   string    `json:"tagger_name"`
	Recipient    string    `json:"recipient"` // invitee email
	Title        string    `json:"title"`
	Role         string    `json:"role"`
	Caption      string    `json:"caption,omitempty"`
	From         time.Time `json:"from"`
	To           time.Time `json:"to"`
	Photos       []string  `json:"photos,omitempty"`
	PinToProfile bool      `json:"pin_to_profile"`
}
