package domain

import (
	"errors"
	"time"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")

// User models a registered account. Only the summary fields are exposed to
// the tagging subsystem; credentials stay inside the auth layer.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	Stats        UserStats `json:"stats"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FullName returns the display name used in invite payloads.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// UserStats carries the denormalized counts the badge layer reads. Produced
// by the recompute pipeline, never written directly by request handlers.
type UserStats struct {
	Works         int       `json:"works" bson:"works"`
	Verifications int       `json:"verifications" bson:"verifications"`
	RecomputedAt  time.Time `json:"recomputed_at" bson:"recomputed_at"`
}
