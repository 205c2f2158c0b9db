package domain

import (
	"errors"
	"time"
)

// AddMethod records how a work record came into existence.
const (
	AddMethodCreated = "created" // owner logged the job themselves
	AddMethodTagged  = "tagged"  // materialized by accepting a coworker invite
)

var ErrWorkNotFound = errors.New("work record not found")
var ErrForbidden = errors.New("access forbidden")

// WorkRecord is one participant's document for one job. Multiple records may
// share a Slug; that shared slug is the only thing binding them into one
// logical event — there is no stored event entity.
type WorkRecord struct {
	ID           string       `json:"id" bson:"_id,omitempty"`
	UserID       string       `json:"user_id" bson:"user_id"`
	Slug         string       `json:"slug" bson:"slug"`
	Title        string       `json:"title" bson:"title"`
	Role         string       `json:"role" bson:"role"`
	Caption      string       `json:"caption,omitempty" bson:"caption,omitempty"`
	From         time.Time    `json:"from" bson:"from"`
	To           time.Time    `json:"to" bson:"to"`
	Photos       []string     `json:"photos,omitempty" bson:"photos,omitempty"`
	PinToProfile bool         `json:"pin_to_profile" bson:"pin_to_profile"`
	AddMethod    string       `json:"add_method" bson:"add_method"`
	Coworkers    []Identifier `json:"coworkers" bson:"-"`
	Verifiers    []string     `json:"verifiers" bson:"verifiers"`
	CreatedAt    time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" bson:"updated_at"`
}

// ClaimSet returns the record's coworker claims as a working set the
// reconciler can consume entries from without mutating the record.
func (w *WorkRecord) ClaimSet() []Identifier {
	claims := make([]Identifier, len(w.Coworkers))
	copy(claims, w.Coworkers)
	return claims
}

// HasVerifier reports whether userID already vouched for this record.
func (w *WorkRecord) HasVerifier(userID string) bool {
	for _, v := range w.Verifiers {
		if v == userID {
			return true
		}
	}
	return false
}
